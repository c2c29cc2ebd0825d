package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// pgUniqueViolation код ошибки Postgres при нарушении UNIQUE.
const pgUniqueViolation = "23505"

type UserRepositoryAdapter struct {
	db *sqlx.DB
}

func NewUserRepositoryAdapter(db *sqlx.DB) *UserRepositoryAdapter {
	return &UserRepositoryAdapter{db: db}
}

var (
	_ repository.UserRepository    = (*UserRepositoryAdapter)(nil)
	_ repository.SessionRepository = (*UserRepositoryAdapter)(nil)
)

func (r *UserRepositoryAdapter) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, bio, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Bio, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrEmailTaken
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create user")
	}
	return nil
}

func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `SELECT id, name, email, bio, password_hash, role, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT id, name, email, bio, password_hash, role, created_at, updated_at FROM users WHERE email = $1`, email)
}

func (r *UserRepositoryAdapter) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get user")
	}
	return row.toEntity(), nil
}

func (r *UserRepositoryAdapter) Update(ctx context.Context, u *entity.User) error {
	query := `UPDATE users SET name = $2, bio = $3, password_hash = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Bio, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update user")
	}
	return requireAffected(res, apperror.ErrUserNotFound)
}

func (r *UserRepositoryAdapter) SetRole(ctx context.Context, email string, role valueobject.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`, email, string(role))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update user")
	}
	return requireAffected(res, apperror.ErrUserNotFound)
}

func (r *UserRepositoryAdapter) CreateSession(ctx context.Context, s *entity.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.RefreshToken, s.UserAgent, s.IP, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create session")
	}
	return nil
}

func (r *UserRepositoryAdapter) FindSession(ctx context.Context, refreshToken string) (*entity.Session, error) {
	var s entity.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip, expires_at, created_at
		FROM sessions WHERE refresh_token = $1
	`
	if err := r.db.GetContext(ctx, &s, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSessionNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get session")
	}
	return &s, nil
}

func (r *UserRepositoryAdapter) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete session")
	}
	return nil
}

func (r *UserRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete sessions")
	}
	return res.RowsAffected()
}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Bio          string    `db:"bio"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Bio:          u.Bio,
		PasswordHash: u.PasswordHash,
		Role:         valueobject.Role(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
