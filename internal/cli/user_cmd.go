package cli

import (
	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserPromoteCmd(app))
	return cmd
}

func newUserPromoteCmd(app *App) *cobra.Command {
	var demote bool
	cmd := &cobra.Command{
		Use:   "promote EMAIL",
		Short: "Grant the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := validation.NormalizeEmail(args[0])
			role := valueobject.RoleAdmin
			if demote {
				role = valueobject.RoleUser
			}
			if err := app.Users.SetRole(cmd.Context(), email, role); err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), app.Color)
			p.success("%s is now %s", email, role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&demote, "demote", false, "revoke the admin role instead")
	return cmd
}
