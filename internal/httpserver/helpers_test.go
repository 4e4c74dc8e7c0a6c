package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/feed"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("handler-test-secret")

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memDenylist) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = exp
	return nil
}

func (m *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type testEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Hub      *feed.Hub
	Denylist *memDenylist
	Uploads  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	hub := feed.NewHub(nil)
	t.Cleanup(hub.Close)
	deny := &memDenylist{revoked: map[string]time.Time{}}

	uploads := t.TempDir()
	store, err := storage.NewDiskStore(uploads, "http://cdn.test/uploads")
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		Orders: &OrderHTTP{
			Svc: &service.OrderService{Repo: r, Statuses: &service.StatusResolver{Repo: r}, Events: hub},
			Hub: hub,
		},
		Statuses:   &StatusHTTP{Svc: &service.StatusService{Repo: r}},
		OrderItems: &OrderItemHTTP{Svc: &service.OrderItemService{Repo: r}},
		Catalog:    &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Images: store}},
		Auth:       &AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: testSecret, TokenTTL: time.Hour, Denylist: deny}},
		Users:      &UserHTTP{Svc: &service.UserService{Repo: r}},
		AuthMW:     middleware.NewAuthMiddleware(testSecret, deny),
		Ready:      r.Ping,
		UploadDir:  uploads,
	})

	return &testEnv{E: e, DB: db, Repo: r, Hub: hub, Denylist: deny, Uploads: uploads}
}

// user inserts a user with password "secret" and returns it with a token.
func (env *testEnv) user(t *testing.T, email, role string) (models.User, string) {
	t.Helper()

	pw, err := hash.HashPassword("secret")
	require.NoError(t, err)
	u := models.User{Name: email, Email: email, PasswordHash: pw, Role: role}
	require.NoError(t, env.DB.Create(&u).Error)

	tok, _, err := tokens.NewAccessToken(tokens.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, testSecret, time.Hour)
	require.NoError(t, err)
	return u, tok
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *string         `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
	return env
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	env := decode(t, rec, nil)
	require.Equal(t, "null", string(env.Data))
	require.NotNil(t, env.Error)
	return *env.Error
}

func statusCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(t *testing.T, method, path string, body io.Reader) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, body)
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}
