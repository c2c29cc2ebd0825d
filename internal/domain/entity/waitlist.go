package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// WaitlistEntry email, которому (не)разрешена регистрация.
type WaitlistEntry struct {
	ID          uuid.UUID  `db:"id"`
	Email       string     `db:"email"`
	Name        string     `db:"name"`
	Reason      string     `db:"reason"`
	IsActive    bool       `db:"is_active"`
	RequestedAt time.Time  `db:"requested_at"`
	ActivatedAt *time.Time `db:"activated_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func NewWaitlistEntry(email, name, reason string, active bool) (*WaitlistEntry, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	name = strings.TrimSpace(name)
	reason = strings.TrimSpace(reason)
	err := validation.First(
		validation.ValidateLength("Name", name, 0, validation.MaxNameLength),
		validation.ValidateLength("Reason", reason, 0, validation.MaxDescriptionLength),
	)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	now := time.Now().UTC()
	entry := &WaitlistEntry{
		ID:          uuid.New(),
		Email:       email,
		Name:        name,
		Reason:      reason,
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if active {
		entry.Activate(now)
	}
	return entry, nil
}

// Activate разрешает регистрацию. ActivatedAt хранит время последней активации.
func (w *WaitlistEntry) Activate(now time.Time) {
	w.IsActive = true
	w.ActivatedAt = &now
	w.UpdatedAt = now
}

func (w *WaitlistEntry) Deactivate(now time.Time) {
	w.IsActive = false
	w.UpdatedAt = now
}
