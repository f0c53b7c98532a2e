package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/auth"
	"github.com/iflow-pos/iflow/internal/shared"
	_ "github.com/iflow-pos/iflow/testing"
)

type memRepo struct {
	byEmail map[string]auth.Account
}

func (r *memRepo) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	acc, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &acc, nil
}

func (r *memRepo) Create(ctx context.Context, account auth.Account) error {
	if _, ok := r.byEmail[account.Email]; ok {
		return shared.ErrEmailTaken
	}
	r.byEmail[account.Email] = account
	return nil
}

type noopBootstrap struct{}

func (noopBootstrap) CreateDefault(ctx context.Context, account shared.Identity, businessName string) error {
	return nil
}

func newTestRouter(t *testing.T) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	repo := &memRepo{byEmail: make(map[string]auth.Account)}
	service := auth.NewService(repo, noopBootstrap{}, slog.Default())
	handler := auth.NewHandler(slog.Default(), service, sm)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sm.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)

			// Buffer the response so the session cookie commits before
			// the handler's body reaches the client.
			inner := httptest.NewRecorder()
			next.ServeHTTP(inner, req.WithContext(ctx))
			require.NoError(t, sm.Commit(ctx, w, req, sess))
			for k, vals := range inner.Header() {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
			w.WriteHeader(inner.Code)
			_, _ = w.Write(inner.Body.Bytes())
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return r, sm
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"a@b.c","password":"supersecret","businessName":"Mi Negocio"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.ID)
	require.Equal(t, "a@b.c", payload.Email)
}

func TestRegisterWeakPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"email":"a@b.c","password":"short","businessName":"Mi Negocio"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@b.c","password":"supersecret","businessName":"x"}`))
	router.ServeHTTP(httptest.NewRecorder(), register)

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@b.c","password":"supersecret"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, login)

	require.Equal(t, http.StatusOK, res.Code)
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "test_session", cookies[0].Name)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookies[0])
	res = httptest.NewRecorder()
	router.ServeHTTP(res, me)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@b.c","password":"supersecret","businessName":"x"}`))
	router.ServeHTTP(httptest.NewRecorder(), register)

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@b.c","password":"nope-nope"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, login)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogout(t *testing.T) {
	router, _ := newTestRouter(t)

	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@b.c","password":"supersecret","businessName":"x"}`))
	reg := httptest.NewRecorder()
	router.ServeHTTP(reg, register)
	cookie := reg.Result().Cookies()[0]

	logout := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logout.AddCookie(cookie)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, logout)
	require.Equal(t, http.StatusNoContent, res.Code)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookie)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, me)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
