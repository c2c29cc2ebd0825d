package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetRole(ctx context.Context, email string, role valueobject.Role) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) error
	FindSession(ctx context.Context, refreshToken string) (*entity.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type WaitlistFilter struct {
	Active *bool
	Page   pagination.Params
}

type WaitlistRepository interface {
	Create(ctx context.Context, entry *entity.WaitlistEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error)
	FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error)
	List(ctx context.Context, filter WaitlistFilter) ([]*entity.WaitlistEntry, int, error)
	Update(ctx context.Context, entry *entity.WaitlistEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}
