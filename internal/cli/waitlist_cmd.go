package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
)

func newWaitlistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Manage who may register",
	}
	cmd.AddCommand(
		newWaitlistAddCmd(app),
		newWaitlistRemoveCmd(app),
		newWaitlistToggleCmd(app, "deactivate", "Revoke access for an email or id", func(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
			return app.Waitlist.Deactivate(ctx, id)
		}),
		newWaitlistToggleCmd(app, "reactivate", "Restore access for an email or id", func(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
			return app.Waitlist.Reactivate(ctx, id)
		}),
		newWaitlistListCmd(app),
	)
	return cmd
}

func newWaitlistAddCmd(app *App) *cobra.Command {
	var name, reason string
	cmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Add an email with access granted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Waitlist.Add(cmd.Context(), args[0], name, reason)
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), app.Color).success("%s added (%s)", entry.Email, entry.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&reason, "reason", "", "note stored with the entry")
	return cmd
}

func newWaitlistRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove EMAIL|ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveEntryID(cmd.Context(), app.Waitlist, args[0])
			if err != nil {
				return err
			}
			if err := app.Waitlist.Remove(cmd.Context(), id); err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), app.Color).success("%s removed", args[0])
			return nil
		},
	}
}

type toggleFunc func(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)

func newWaitlistToggleCmd(app *App, use, short string, toggle toggleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EMAIL|ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveEntryID(cmd.Context(), app.Waitlist, args[0])
			if err != nil {
				return err
			}
			entry, err := toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), app.Color)
			fmt.Fprintf(p.w, "%s is now %s\n", entry.Email, p.status(entry.IsActive))
			return nil
		},
	}
}

type listFlags struct {
	page     int
	pageSize int
	active   bool
	pending  bool
}

func (f *listFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.page, "page", 1, "page number")
	fs.IntVar(&f.pageSize, "page-size", 50, "entries per page")
	fs.BoolVar(&f.active, "active", false, "only entries with access")
	fs.BoolVar(&f.pending, "pending", false, "only entries without access")
}

func (f *listFlags) input() (waitlist.ListInput, error) {
	in := waitlist.ListInput{Page: f.page, PageSize: f.pageSize}
	switch {
	case f.active && f.pending:
		return in, fmt.Errorf("--active and --pending are mutually exclusive")
	case f.active:
		v := true
		in.Active = &v
	case f.pending:
		v := false
		in.Active = &v
	}
	return in, nil
}

func newWaitlistListCmd(app *App) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List waitlist entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input()
			if err != nil {
				return err
			}
			entries, page, err := app.Waitlist.List(cmd.Context(), in)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout(), app.Color)
			if len(entries) == 0 {
				fmt.Fprintln(p.w, "No entries found.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.ID.String(),
					e.Email,
					e.Name,
					p.status(e.IsActive),
					e.RequestedAt.Format("2006-01-02"),
				})
			}
			p.table([]string{"ID", "Email", "Name", "Status", "Requested"}, rows)
			fmt.Fprintf(p.w, "page %d/%d, total %d\n", page.Page, page.TotalPages, page.Total)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// resolveEntryID принимает id или email.
func resolveEntryID(ctx context.Context, admin WaitlistAdmin, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	entry, err := admin.FindByEmail(ctx, arg)
	if err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}
