package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/journal/internal/auth"
	"github.com/mrlokans/journal/internal/database/users"
	"github.com/mrlokans/journal/internal/entrypoint"
)

func newUserCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts",
	}
	cmd.AddCommand(newUserCreateCommand(opts))
	return cmd
}

func newUserCreateCommand(opts *Options) *cobra.Command {
	var username, password, pin string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a local account for AUTH_MODE=local",
		Example: `  journal user create --username anna --password 's3cret-pass'
  journal user create --username anna --password 's3cret-pass' --pin 1234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()

			app, err := entrypoint.Open(cfg, logger.Silent)
			if err != nil {
				return err
			}
			defer app.Close()

			var pinPtr *string
			if pin != "" {
				pinPtr = &pin
			}

			service := auth.NewService(users.NewRepository(app.DB.DB), cfg.Auth)
			created, err := service.CreateUser(username, password, pinPtr)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			if !created {
				return fmt.Errorf("user %q already exists", username)
			}

			user, err := service.GetUserByUsername(username)
			if err == nil && user != nil {
				app.Audit.LogAuth(user.ID, "user_create", "cli", true)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name (3-64 characters: letters, digits, '_' or '-')")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&pin, "pin", "", "Optional 4-8 digit PIN required at login")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
