package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"snapfeed/internal/config"
	"snapfeed/internal/database"
	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubMailer records outgoing mail instead of dialing SMTP.
type stubMailer struct {
	sent    []string // bodies, in send order
	sendErr error
}

func (m *stubMailer) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, body)
	return nil
}

// testEnv is a fully wired server backed by an in-memory database.
type testEnv struct {
	app    *fiber.App
	server *Server
	db     *gorm.DB
	mailer *stubMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Port:      "0",
		JWTSecret: "test-secret-key-for-handlers",
		Env:       "test",
	}

	mailer := &stubMailer{}
	srv := NewServerWithDeps(cfg, db, nil, mailer)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	srv.SetupRoutes(app)

	return &testEnv{app: app, server: srv, db: db, mailer: mailer}
}

// doJSON performs a JSON request; token, when non-empty, is sent as a Bearer
// header.
func (e *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doMultipart performs a multipart request with a content field and photo
// parts.
func (e *testEnv) doMultipart(t *testing.T, method, path, content string, photos [][]byte, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if content != "" {
		require.NoError(t, w.WriteField("content", content))
	}
	for i, data := range photos {
		part, err := w.CreateFormFile("photo", "photo-"+string(rune('a'+i))+".jpg")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody unmarshals a response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerAndLogin creates a user through the API and returns a session token.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	resp := e.doJSON(t, http.MethodPost, "/api/register", fiber.Map{
		"name":     "Test " + username,
		"email":    username + "@example.com",
		"username": username,
		"password": "password1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = e.doJSON(t, http.MethodPost, "/api/login", fiber.Map{
		"username": username,
		"password": "password1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	require.True(t, ok, "login response should carry a token")
	return token
}
