package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iflow-pos/iflow/internal/shared"
)

const minPasswordLength = 8

// Bootstrapper seeds the per-account documents created at registration.
type Bootstrapper interface {
	CreateDefault(ctx context.Context, account shared.Identity, businessName string) error
}

// Service wraps authentication business rules. Failures are classified
// into the small user-facing set: bad credentials, email taken, weak
// credential; everything else surfaces as-is.
type Service struct {
	repo      Repository
	bootstrap Bootstrapper
	logger    *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, bootstrap Bootstrapper, logger *slog.Logger) *Service {
	return &Service{repo: repo, bootstrap: bootstrap, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (shared.Identity, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return shared.Identity{}, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return shared.Identity{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return shared.Identity{}, shared.ErrInvalidCredentials
	}
	return shared.Identity{ID: account.ID, Email: account.Email}, nil
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email        string
	Password     string
	BusinessName string
}

// Register creates the account and seeds its profile document.
func (s *Service) Register(ctx context.Context, input RegisterInput) (shared.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return shared.Identity{}, fmt.Errorf("auth: invalid email %q", input.Email)
	}
	if len(input.Password) < minPasswordLength {
		return shared.Identity{}, shared.ErrWeakCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return shared.Identity{}, err
	}
	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrEmailTaken) {
			return shared.Identity{}, shared.ErrEmailTaken
		}
		return shared.Identity{}, err
	}

	identity := shared.Identity{ID: account.ID, Email: account.Email}
	if s.bootstrap != nil {
		if err := s.bootstrap.CreateDefault(ctx, identity, input.BusinessName); err != nil {
			// The account exists; the profile document falls back to
			// defaults until the next successful write.
			s.logger.Error("seed profile failed", slog.Any("error", err))
		}
	}
	return identity, nil
}
