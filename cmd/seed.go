package cmd

import (
	"fmt"

	"github.com/jon4hz/bookshelf/internal/bootstrap"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/spf13/cobra"
)

var seedCmdFlags struct {
	Books bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the example users",
	Long:  `Create member@example.com and admin@example.com if they do not exist yet. With --books the catalog is replaced by the sample books.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		if err := db.Migrate(); err != nil {
			return err
		}
		if err := bootstrap.SeedUsers(cmd.Context(), db, password.NewBcrypt(cfg.Auth.BcryptCost), cfg.Seed.Password); err != nil {
			return err
		}
		if seedCmdFlags.Books {
			if err := bootstrap.SeedBooks(cmd.Context(), db); err != nil {
				return err
			}
		}

		fmt.Println("Database seeded successfully!")
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedCmdFlags.Books, "books", false, "Replace the catalog with the sample books")

	rootCmd.AddCommand(seedCmd)
}
