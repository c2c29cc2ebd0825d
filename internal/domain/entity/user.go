package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// User фрилансер. Bio идёт в системный промпт модели.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Bio          string
	PasswordHash string
	Role         valueobject.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	email = validation.NormalizeEmail(email)

	if err := validation.ValidateLength("Name", name, 1, validation.MaxNameLength); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         valueobject.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == valueobject.RoleAdmin
}

// UpdateProfile меняет имя и/или bio. nil означает "не менять".
func (u *User) UpdateProfile(name, bio *string) error {
	next := *u
	if name != nil {
		next.Name = strings.TrimSpace(*name)
	}
	if bio != nil {
		next.Bio = strings.TrimSpace(*bio)
	}
	err := validation.First(
		validation.ValidateLength("Name", next.Name, 1, validation.MaxNameLength),
		validation.ValidateLength("Bio", next.Bio, 0, validation.MaxBioLength),
	)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	next.UpdatedAt = time.Now().UTC()
	*u = next
	return nil
}

// Session refresh-сессия пользователя.
type Session struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	RefreshToken string    `db:"refresh_token"`
	UserAgent    string    `db:"user_agent"`
	IP           string    `db:"ip"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
