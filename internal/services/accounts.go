package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/masudbs-23/hisab-app/internal/storage"
)

// verificationCode is the fixed signup code the app ships with; there is no
// SMS gateway behind it.
const verificationCode = "1234"

const minPasswordLength = 6

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
)

// AccountService handles signup, verification and login against the users
// table. Passwords are stored only as bcrypt hashes.
type AccountService struct {
	repo *storage.Repository
}

func NewAccountService(repo *storage.Repository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) Register(ctx context.Context, email, password string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "user registered", "user_id", id)
	return id, nil
}

func (s *AccountService) Verify(ctx context.Context, email, code string) error {
	if code != verificationCode {
		return ErrInvalidCode
	}
	return s.repo.MarkUserVerified(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *AccountService) Login(ctx context.Context, email, password string) (storage.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return storage.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return storage.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return storage.User{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return storage.User{}, ErrNotVerified
	}
	return u, nil
}
