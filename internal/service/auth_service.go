package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// AccessChecker проверяет, разрешена ли регистрация для email.
type AccessChecker interface {
	CheckAccess(ctx context.Context, email string) error
}

// AuthService инкапсулирует регистрацию, вход и профиль.
type AuthService struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	access       AccessChecker
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// SessionMeta сведения о клиенте для новой сессии.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *entity.User
	TokenPair *TokenPair
}

// NewAuthService создаёт сервис аутентификации. access может быть nil,
// тогда регистрация открыта.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, access AccessChecker, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		access:       access,
		tokenManager: tokenManager,
	}
}

// Register создаёт пользователя, если email есть в активном вейтлисте.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	if s.access != nil {
		if err := s.access.CheckAccess(ctx, email); err != nil {
			return nil, err
		}
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperror.ErrEmailTaken
	} else if !apperror.IsNotFound(err) {
		return nil, apperror.Internal(err, "create", "user")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "create", "user")
	}

	user, err := entity.NewUser(in.Name, email, string(passHash))
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err, "create", "user")
	}

	logger.Log.WithField("user_id", user.ID).Info("[AUTH] Зарегистрирован новый пользователь")
	return s.issue(ctx, user, meta)
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal(err, "log in", "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(ctx, user, meta)
}

// Refresh ротирует сессию: старый refresh токен удаляется, выпускается новая пара.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*AuthResult, error) {
	userID, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	session, err := s.sessions.FindSession(ctx, oldToken)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Internal(err, "refresh", "session")
	}
	if session.UserID != userID || session.IsExpired(time.Now()) {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Internal(err, "refresh", "session")
	}

	if err := s.sessions.DeleteSession(ctx, oldToken); err != nil {
		return nil, apperror.Internal(err, "refresh", "session")
	}

	return s.issue(ctx, user, meta)
}

// Logout удаляет сессию. Неизвестный токен не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessions.DeleteSession(ctx, refreshToken); err != nil && !apperror.IsNotFound(err) {
		return apperror.Internal(err, "delete", "session")
	}
	return nil
}

// Me возвращает текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	if userID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "get", "user")
	}
	return user, nil
}

// UpdateProfile меняет имя и bio. nil означает "не менять".
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, bio *string) (*entity.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(name, bio); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err, "update", "profile")
	}
	return user, nil
}

// PurgeExpiredSessions удаляет истёкшие сессии.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, time.Now().UTC())
}

func (s *AuthService) issue(ctx context.Context, user *entity.User, meta SessionMeta) (*AuthResult, error) {
	pair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, apperror.Internal(err, "create", "session")
	}

	session := &entity.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		UserAgent:    meta.UserAgent,
		IP:           meta.IP,
		ExpiresAt:    refreshExp.UTC(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, apperror.Internal(err, "create", "session")
	}

	return &AuthResult{User: user, TokenPair: pair}, nil
}
