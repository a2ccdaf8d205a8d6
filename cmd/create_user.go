package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/spf13/cobra"
)

var createUserCmdFlags struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	Long:  `Create a confirmed user account, optionally with roles. Missing roles are created.`,
	Example: `bookshelf create-user --email reader@example.com --password Secret12
bookshelf create-user --email boss@example.com --password Secret12 --role Admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := password.Validate(createUserCmdFlags.Password); err != nil {
			return err
		}

		cfg, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close() //nolint: errcheck

		if err := db.Migrate(); err != nil {
			return err
		}

		digest, err := password.NewBcrypt(cfg.Auth.BcryptCost).Hash(createUserCmdFlags.Password)
		if err != nil {
			return err
		}
		now := time.Now()
		user := &database.User{
			Email:            createUserCmdFlags.Email,
			Active:           true,
			EmailConfirmedAt: &now,
			Password:         digest,
			FirstName:        createUserCmdFlags.FirstName,
			LastName:         createUserCmdFlags.LastName,
		}
		if err := db.CreateUser(cmd.Context(), user, createUserCmdFlags.Roles...); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return fmt.Errorf("a user with the email %s already exists", user.Email)
			}
			return err
		}

		fmt.Printf("Created user %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserCmdFlags.Email, "email", "", "Email address of the user")
	createUserCmd.Flags().StringVar(&createUserCmdFlags.Password, "password", "", "Password of the user")
	createUserCmd.Flags().StringVar(&createUserCmdFlags.FirstName, "first-name", "", "First name of the user")
	createUserCmd.Flags().StringVar(&createUserCmdFlags.LastName, "last-name", "", "Last name of the user")
	createUserCmd.Flags().StringSliceVar(&createUserCmdFlags.Roles, "role", nil, "Role to assign, can be repeated (e.g. --role Admin --role Agent)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createUserCmd)
}
