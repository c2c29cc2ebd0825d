package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
	"github.com/ignatzorin/proposal-backend/internal/usecase/waitlist"
)

type fakeWaitlist struct {
	entries   map[uuid.UUID]*entity.WaitlistEntry
	lastInput waitlist.ListInput
}

func newFakeWaitlist() *fakeWaitlist {
	return &fakeWaitlist{entries: map[uuid.UUID]*entity.WaitlistEntry{}}
}

func (f *fakeWaitlist) Add(_ context.Context, email, name, reason string) (*entity.WaitlistEntry, error) {
	e, err := entity.NewWaitlistEntry(email, name, reason, true)
	if err != nil {
		return nil, err
	}
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakeWaitlist) Remove(_ context.Context, id uuid.UUID) error {
	if _, ok := f.entries[id]; !ok {
		return apperror.ErrWaitlistNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeWaitlist) Deactivate(_ context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.ErrWaitlistNotFound
	}
	e.Deactivate(time.Now())
	return e, nil
}

func (f *fakeWaitlist) Reactivate(_ context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.ErrWaitlistNotFound
	}
	e.Activate(time.Now())
	return e, nil
}

func (f *fakeWaitlist) FindByEmail(_ context.Context, email string) (*entity.WaitlistEntry, error) {
	for _, e := range f.entries {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, apperror.ErrWaitlistNotFound
}

func (f *fakeWaitlist) List(_ context.Context, in waitlist.ListInput) ([]*entity.WaitlistEntry, pagination.Page, error) {
	f.lastInput = in
	var out []*entity.WaitlistEntry
	for _, e := range f.entries {
		if in.Active == nil || *in.Active == e.IsActive {
			out = append(out, e)
		}
	}
	return out, pagination.Normalize(in.Page, in.PageSize).Meta(len(out)), nil
}

type fakeUsers struct {
	roles map[string]valueobject.Role
}

func (f *fakeUsers) SetRole(_ context.Context, email string, role valueobject.Role) error {
	if _, ok := f.roles[email]; !ok {
		return apperror.ErrUserNotFound
	}
	f.roles[email] = role
	return nil
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Out = &out
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWaitlistAddAndList(t *testing.T) {
	wl := newFakeWaitlist()
	app := &App{Waitlist: wl}

	out, err := execute(t, app, "waitlist", "add", "Ann@Example.com", "--name", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com added")

	out, err = execute(t, app, "waitlist", "list", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, "Email")
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "page 1/1, total 1")
	require.NotNil(t, wl.lastInput.Active)
	assert.True(t, *wl.lastInput.Active)
	assert.NotContains(t, out, "\x1b[", "без color вывод не содержит ANSI")
}

func TestWaitlistListConflictingFlags(t *testing.T) {
	_, err := execute(t, &App{Waitlist: newFakeWaitlist()}, "waitlist", "list", "--active", "--pending")
	require.Error(t, err)
}

func TestWaitlistDeactivateByEmail(t *testing.T) {
	wl := newFakeWaitlist()
	entry, err := wl.Add(context.Background(), "bob@example.com", "", "")
	require.NoError(t, err)
	app := &App{Waitlist: wl}

	out, err := execute(t, app, "waitlist", "deactivate", "bob@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "bob@example.com is now pending")
	assert.False(t, wl.entries[entry.ID].IsActive)

	out, err = execute(t, app, "waitlist", "reactivate", entry.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "is now active")
	assert.True(t, wl.entries[entry.ID].IsActive)
}

func TestWaitlistRemoveUnknown(t *testing.T) {
	_, err := execute(t, &App{Waitlist: newFakeWaitlist()}, "waitlist", "remove", "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrWaitlistNotFound)
}

func TestUserPromote(t *testing.T) {
	users := &fakeUsers{roles: map[string]valueobject.Role{"eve@example.com": valueobject.RoleUser}}
	app := &App{Users: users}

	out, err := execute(t, app, "user", "promote", " EVE@example.com ")
	require.NoError(t, err)
	assert.Contains(t, out, "eve@example.com is now admin")
	assert.Equal(t, valueobject.RoleAdmin, users.roles["eve@example.com"])

	_, err = execute(t, app, "user", "promote", "eve@example.com", "--demote")
	require.NoError(t, err)
	assert.Equal(t, valueobject.RoleUser, users.roles["eve@example.com"])

	_, err = execute(t, app, "user", "promote", "ghost@example.com")
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestMigrate(t *testing.T) {
	called := false
	app := &App{Migrate: func(context.Context) error { called = true; return nil }}
	out, err := execute(t, app, "migrate")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, "Migrations applied")

	app.Migrate = func(context.Context) error { return errors.New("boom") }
	_, err = execute(t, app, "migrate")
	assert.EqualError(t, err, "boom")
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf, false).table([]string{"A", "Long header"}, [][]string{{"value", "x"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A      Long header", lines[0])
	assert.Equal(t, "value  x", lines[2])
}
