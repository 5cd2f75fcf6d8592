package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shandysiswandi/storefront/internal/app"
	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(userCreateCmd())

	return cmd
}

func userCreateCmd() *cobra.Command {
	var in usecase.UserCreateInput

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a password account",
		Example: "  storefront user create --email admin@example.com --name Admin --password 'Secret123!' --role admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application := app.NewAdmin()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				application.Stop(ctx)
			}()

			id, err := application.CreateUser(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", id, in.Email, in.Role)

			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.FullName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Role, "role", entity.RoleCustomer, "role: customer, editor or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
