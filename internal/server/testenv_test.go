package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wikiadmin/internal/auth"
	"wikiadmin/internal/config"
	"wikiadmin/internal/models"
	"wikiadmin/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "secret123"

// envelope mirrors models.Envelope but keeps data raw for typed decoding.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	srv *Server
	app *fiber.App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.OpenDB(t)
	cfg := &config.Config{
		Env:           "test",
		Port:          "0",
		JWTSecret:     "test-secret-with-enough-length-000",
		JWTIssuer:     "wikiadmin-api",
		JWTAudience:   "wikiadmin-client",
		JWTTTLHours:   1,
		UploadDir:     t.TempDir(),
		UploadBaseURL: "/",
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	return &testEnv{t: t, db: db, srv: srv, app: srv.App()}
}

// user inserts an active account with testPassword.
func (e *testEnv) user(username string, role models.Role) *models.User {
	e.t.Helper()
	return testutil.CreateUser(e.t, e.db, username, role, testPassword)
}

// token issues a valid token for u without going through /login.
func (e *testEnv) token(u *models.User) string {
	e.t.Helper()
	token, _, err := e.srv.codec.Issue(auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role}, nil)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) request(method, path, token string, body any) *http.Request {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// do sends the request and decodes the envelope.
func (e *testEnv) do(req *http.Request) (int, envelope) {
	e.t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) call(method, path, token string, body any) (int, envelope) {
	e.t.Helper()
	return e.do(e.request(method, path, token, body))
}

// decode unmarshals the envelope data into dst.
func decode(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}
