package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Show database statistics",
	Long:  `Display the number of users, roles and books stored in the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		users, err := db.GetAllUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get users: %w", err)
		}
		roles, err := db.GetAllRoles(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get roles: %w", err)
		}
		books, err := db.CountBooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count books: %w", err)
		}

		active := lo.CountBy(users, func(u database.User) bool { return u.Active })

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %s (%s active)\n", humanize.Comma(int64(len(users))), humanize.Comma(int64(active)))
		fmt.Printf("Roles: %s\n", strings.Join(lo.Map(roles, func(r database.Role, _ int) string { return r.Name }), ", "))
		fmt.Printf("Books: %s\n", humanize.Comma(books))

		for _, role := range roles {
			members := lo.CountBy(users, func(u database.User) bool { return u.HasRole(role.Name) })
			fmt.Printf("  %s: %d users\n", role.Name, members)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbStatsCmd)
}
