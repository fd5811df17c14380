package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Emiliocodings/ServiceUsers/config"
	"github.com/Emiliocodings/ServiceUsers/internal/services"
	"github.com/Emiliocodings/ServiceUsers/internal/store/storetest"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(cfg config.Config, out io.Writer) http.Handler {
	logger := slog.New(slog.NewJSONHandler(out, nil))
	svc := services.NewUserService(storetest.NewUserRepository())
	return NewRouter(cfg, logger, svc, okPinger{})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(config.Config{RequestTimeout: time.Second}, io.Discard)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/users/", "", http.StatusOK},
		{http.MethodPost, "/users/", `{"username":"newuser","email":"new@example.com","first_name":"New","last_name":"User","role":"user"}`, http.StatusCreated},
		{http.MethodGet, "/users/1", "", http.StatusOK},
		{http.MethodPut, "/users/1", `{"active":false}`, http.StatusOK},
		{http.MethodDelete, "/users/1", "", http.StatusNoContent},
		{http.MethodGet, "/users/1", "", http.StatusNotFound},
		{http.MethodPatch, "/users/1", `{}`, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		var body io.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, body))
		if rec.Code != tt.want {
			t.Fatalf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	router := newTestRouter(config.Config{}, &buf)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

	out := buf.String()
	if !strings.Contains(out, `"msg":"http request"`) || !strings.Contains(out, `"status":404`) {
		t.Fatalf("expected request log line, got %q", out)
	}
}

func TestRouterCORS(t *testing.T) {
	router := newTestRouter(config.Config{CORSOrigins: []string{"http://localhost:4200"}}, io.Discard)

	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}
