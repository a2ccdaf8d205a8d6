package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Run database migrations to set up or update the database schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		if err := db.Migrate(); err != nil {
			return err
		}

		fmt.Println("Database migrations completed successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
