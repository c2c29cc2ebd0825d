package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

const notifyTimeout = 15 * time.Second

type ListInput struct {
	Page     int
	PageSize int
	Active   *bool
}

// Service управляет списком доступа к регистрации.
type Service struct {
	repo     repository.WaitlistRepository
	notifier repository.AdminNotifier
	// gate включён только в production.
	gate bool
	// async запускает фоновые задачи, в тестах подменяется на синхронный вызов.
	async func(func())
}

func NewService(repo repository.WaitlistRepository, notifier repository.AdminNotifier, gate bool) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		gate:     gate,
		async:    goroutine.SafeGo,
	}
}

// GateEnabled сообщает, ограничена ли регистрация списком.
func (s *Service) GateEnabled() bool {
	return s.gate
}

// Add добавляет email в активный список или активирует существующую запись.
func (s *Service) Add(ctx context.Context, email, name, reason string) (*entity.WaitlistEntry, error) {
	email = validation.NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsActive {
			existing.Activate(time.Now().UTC())
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, apperror.Internal(err, "add", "waitlist entry")
			}
		}
		return existing, nil
	case !apperror.IsNotFound(err):
		return nil, apperror.Internal(err, "add", "waitlist entry")
	}

	entry, err := entity.NewWaitlistEntry(email, name, reason, true)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, apperror.Internal(err, "add", "waitlist entry")
	}
	logger.Log.WithField("email", entry.Email).Info("[WAITLIST] Email добавлен в список доступа")
	return entry, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "remove", "waitlist entry")
	}
	return nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	return s.setActive(ctx, id, false, "deactivate")
}

func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) (*entity.WaitlistEntry, error) {
	return s.setActive(ctx, id, true, "reactivate")
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool, verb string) (*entity.WaitlistEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, verb, "waitlist entry")
	}
	now := time.Now().UTC()
	if active {
		entry.Activate(now)
	} else {
		entry.Deactivate(now)
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, apperror.Internal(err, verb, "waitlist entry")
	}
	return entry, nil
}

// FindByEmail для CLI: команды принимают email, а не id.
func (s *Service) FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error) {
	entry, err := s.repo.FindByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.Internal(err, "get", "waitlist entry")
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, input ListInput) ([]*entity.WaitlistEntry, pagination.Page, error) {
	page := pagination.Normalize(input.Page, input.PageSize)
	items, total, err := s.repo.List(ctx, repository.WaitlistFilter{Active: input.Active, Page: page})
	if err != nil {
		return nil, pagination.Page{}, apperror.Internal(err, "list", "waitlist")
	}
	return items, page.Meta(total), nil
}

// RequestAccess публичная заявка. Повторная заявка возвращает существующую
// запись. Письмо администратору отправляется в фоне, его ошибка не
// влияет на результат.
func (s *Service) RequestAccess(ctx context.Context, email, name, reason string) (*entity.WaitlistEntry, bool, error) {
	email = validation.NormalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, apperror.Internal(err, "request", "access")
	}

	entry, err := entity.NewWaitlistEntry(email, name, reason, false)
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if apperror.IsConflict(err) {
			existing, err := s.FindByEmail(ctx, email)
			return existing, false, err
		}
		return nil, false, apperror.Internal(err, "request", "access")
	}

	s.notify(entry)
	return entry, true, nil
}

func (s *Service) notify(entry *entity.WaitlistEntry) {
	if s.notifier == nil {
		return
	}
	snapshot := *entry
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyAccessRequest(ctx, &snapshot); err != nil {
			logger.Log.WithError(err).WithField("email", snapshot.Email).Warn("[WAITLIST] Не удалось уведомить администратора")
		}
	})
}

// CheckAccess вызывается при регистрации. Без gate пропускает всех.
func (s *Service) CheckAccess(ctx context.Context, email string) error {
	if !s.gate {
		return nil
	}
	entry, err := s.repo.FindByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.ErrNotOnWaitlist
		}
		return apperror.Internal(err, "check", "access")
	}
	if !entry.IsActive {
		return apperror.ErrNotOnWaitlist
	}
	return nil
}
