// Package auth регистрирует пользователей, выдаёт токены и по токену
// определяет, от чьего имени выполняется запрос.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wealth-management/internal/lib/jwt"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

// Ошибки определения пользователя и входа.
var (
	// ErrUnknownSubject токен валиден, но пользователя с таким email нет.
	ErrUnknownSubject = errors.New("token subject does not match any user")
	// ErrInactive пользователь деактивирован.
	ErrInactive = errors.New("user is inactive")
	// ErrInvalidCredentials неверная пара email/пароль или email уже занят.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, firstName, lastName string) (*models.User, error)
	DeactivateUser(ctx context.Context, id int64) error
}

// Hasher хэширует и сверяет пароли.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Service отвечает за регистрацию, вход и разрешение токена в пользователя.
type Service struct {
	users  UserRepository
	hasher Hasher
	tokens jwt.Maker
	now    func() time.Time
	log    *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, users UserRepository, hasher Hasher, tokens jwt.Maker) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		log:    log,
	}
}

// Resolve проверяет токен и возвращает активного пользователя из его subject.
// Ошибки jwt возвращаются обёрнутыми, их можно проверить через errors.Is.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*models.User, error) {
	const op = "auth.Resolve"

	email, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownSubject)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrInactive)
	}
	return user, nil
}

// Register создаёт активного пользователя с хэшем пароля.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	const op = "auth.Register"

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Email:          in.Email,
		HashedPassword: hashed,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		IsActive:       true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login сверяет пароль и выпускает токен доступа.
// Неизвестный email, неверный пароль и неактивный пользователь неразличимы.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !user.IsActive {
		s.log.Debug("login of inactive user", slog.Int64("user_id", user.ID))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Email, s.now())
	if err != nil {
		s.log.Error("failed to issue token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// UpdateProfile меняет имя и фамилию пользователя. Пустые значения не трогают поле.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.User, error) {
	const op = "auth.UpdateProfile"

	user, err := s.users.UpdateUserProfile(ctx, userID, in.FirstName, in.LastName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Deactivate выключает пользователя. Выданные ранее токены перестают разрешаться.
func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	const op = "auth.Deactivate"

	if err := s.users.DeactivateUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user deactivated", slog.Int64("user_id", userID))
	return nil
}
