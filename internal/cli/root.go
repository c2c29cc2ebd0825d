package cli

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
)

// WaitlistAdmin операции над списком доступа.
type WaitlistAdmin interface {
	Add(ctx context.Context, email, name, reason string) (*entity.WaitlistEntry, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)
	FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error)
	List(ctx context.Context, input waitlist.ListInput) ([]*entity.WaitlistEntry, pagination.Page, error)
}

type UserAdmin interface {
	SetRole(ctx context.Context, email string, role valueobject.Role) error
}

// App зависимости команд. Migrate вызывается командой migrate.
type App struct {
	Waitlist WaitlistAdmin
	Users    UserAdmin
	Migrate  func(ctx context.Context) error

	Out   io.Writer
	Color bool
}

// NewRootCmd собирает команду proposalctl со всеми подкомандами.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "proposalctl",
		Short:         "Administrative tasks for the proposal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if app.Out != nil {
		root.SetOut(app.Out)
	}

	root.AddCommand(
		newMigrateCmd(app),
		newWaitlistCmd(app),
		newUserCmd(app),
	)
	return root
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(cmd.Context()); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), app.Color).success("Migrations applied")
			return nil
		},
	}
}
