package auth

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iflow-pos/iflow/internal/shared"
)

type memRepo struct {
	byEmail map[string]Account
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: make(map[string]Account)}
}

func (r *memRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	acc, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &acc, nil
}

func (r *memRepo) Create(ctx context.Context, account Account) error {
	if _, ok := r.byEmail[account.Email]; ok {
		return shared.ErrEmailTaken
	}
	r.byEmail[account.Email] = account
	return nil
}

type memBootstrap struct {
	calls []string
}

func (b *memBootstrap) CreateDefault(ctx context.Context, account shared.Identity, businessName string) error {
	b.calls = append(b.calls, account.ID+"/"+businessName)
	return nil
}

func TestRegisterCreatesAccountAndProfile(t *testing.T) {
	repo := newMemRepo()
	boot := &memBootstrap{}
	svc := NewService(repo, boot, slog.Default())

	identity, err := svc.Register(context.Background(), RegisterInput{
		Email:        "Shop@Example.COM",
		Password:     "supersecret",
		BusinessName: "Mi Negocio",
	})
	require.NoError(t, err)
	require.NotEmpty(t, identity.ID)
	require.Equal(t, "shop@example.com", identity.Email)
	require.Len(t, boot.calls, 1)

	stored := repo.byEmail["shop@example.com"]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")))
	require.True(t, stored.IsActive)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(newMemRepo(), &memBootstrap{}, slog.Default())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "short"})
	require.ErrorIs(t, err, shared.ErrWeakCredential)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	svc := NewService(newMemRepo(), &memBootstrap{}, slog.Default())
	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "supersecret"})
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memBootstrap{}, slog.Default())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "supersecret"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "supersecret"})
	require.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memBootstrap{}, slog.Default())

	registered, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.c", Password: "supersecret"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(context.Background(), "a@b.c", "supersecret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, identity.ID)

	_, err = svc.Authenticate(context.Background(), "a@b.c", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "missing@b.c", "supersecret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &memBootstrap{}, slog.Default())

	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.byEmail["a@b.c"] = Account{ID: "acc-1", Email: "a@b.c", PasswordHash: string(hash), IsActive: false}

	_, err = svc.Authenticate(context.Background(), "a@b.c", "supersecret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
