package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/urlresolve"
)

type staticTokens struct {
	token string
}

func (s staticTokens) BearerToken() (string, bool) {
	return s.token, s.token != ""
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	resolver := urlresolve.Resolver{Mode: urlresolve.ModeProduction, BaseURL: srv.URL}
	return New(resolver, opts...)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	previous := logger.Default()
	logger.SetDefault(logger.NewCore(buf, logger.LevelDebug))
	t.Cleanup(func() { logger.SetDefault(previous) })
	return buf
}

type idPayload struct {
	ID int `json:"id"`
}

func TestDoUnwrapsDataEnvelope(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/partners/profile" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":1}}`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/partners/profile")
	if !env.OK || env.Status != 200 || env.Error != "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Data.ID != 1 {
		t.Fatalf("expected unwrapped data, got %+v", env.Data)
	}
}

func TestDoUsesWholePayloadWithoutDataField(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":2}`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/things/2")
	if !env.OK || env.Data.ID != 2 {
		t.Fatalf("expected whole payload decode, got %+v", env)
	}
}

func TestDoServerErrorMessage(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid email"}`))
	}))
	defer srv.Close()

	env := Post[idPayload](context.Background(), newTestClient(srv), "/api/partners/register", map[string]string{"email": "x"})
	if env.OK || env.Status != 400 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Error != "Invalid email" {
		t.Fatalf("expected server error message, got %q", env.Error)
	}
}

func TestDoMessageFieldFallback(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"document expired"}`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/verifications/v1")
	if env.Error != "document expired" {
		t.Fatalf("expected message fallback, got %q", env.Error)
	}
}

func TestDoGenericFailureMessage(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/admin/partners")
	if env.Error != "Request failed: 500" {
		t.Fatalf("expected generic failure message, got %q", env.Error)
	}
}

func TestDoInvalidJSONOnSuccessStatus(t *testing.T) {
	buf := captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"truncated`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/partners/profile")
	if env.OK {
		t.Fatalf("parse failure must not report ok: %+v", env)
	}
	if env.Status != 200 {
		t.Fatalf("status should carry the HTTP code, got %d", env.Status)
	}
	if env.Error != "Invalid response format." {
		t.Fatalf("expected invalid-format error, got %q", env.Error)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("parse failure should log a warning, got %s", buf.String())
	}
}

func TestDoNonJSONErrorBody(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/partners/profile")
	if env.Error != "upstream down" || env.Status != 503 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestDoNonJSONSuccessText(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	env := Get[string](context.Background(), newTestClient(srv), "/api/health")
	if !env.OK || env.Data != "pong" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestDoTimeoutResolvesEnvelope(t *testing.T) {
	captureLogs(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	env := Do[idPayload](context.Background(), newTestClient(srv), "/api/slow", Options{Timeout: 50 * time.Millisecond})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout did not bound the call: %s", elapsed)
	}
	if env.OK || env.Status != 0 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Error != "Request timed out. Please try again." {
		t.Fatalf("expected timeout message, got %q", env.Error)
	}
}

func TestDoNetworkErrorResolvesEnvelope(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/partners/profile")
	if env.OK || env.Status != 0 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Error != "Network error. Please check your connection." {
		t.Fatalf("expected network message, got %q", env.Error)
	}
}

func TestDoBodyReadFailureKeepsStatus(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":`))
	}))
	defer srv.Close()

	env := Get[idPayload](context.Background(), newTestClient(srv), "/api/partners/profile")
	if env.OK {
		t.Fatalf("truncated body must not report ok: %+v", env)
	}
	if env.Status != 200 {
		t.Fatalf("status should carry the HTTP code even when the body read fails, got %d", env.Status)
	}
	if env.Error != "Network error. Please check your connection." {
		t.Fatalf("expected network message, got %q", env.Error)
	}
}

func TestDoInjectsBearerTokenAndRedactsLog(t *testing.T) {
	buf := captureLogs(t)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":9}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, WithTokenSource(staticTokens{token: "abc"}))
	env := Get[idPayload](context.Background(), client, "/api/partners/profile")
	if !env.OK {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	logs := buf.String()
	if strings.Contains(logs, "Bearer abc") || strings.Contains(logs, `"Authorization":"abc`) {
		t.Fatalf("raw token leaked into logs: %s", logs)
	}
	if !strings.Contains(logs, logger.Redacted) {
		t.Fatalf("expected redacted authorization header in logs: %s", logs)
	}
}

func TestDoExplicitTokenOverridesSource(t *testing.T) {
	captureLogs(t)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, WithTokenSource(staticTokens{token: "generic"}))
	Do[map[string]any](context.Background(), client, "/api/admin/profile", Options{Token: "admin-token"})
	if gotAuth != "Bearer admin-token" {
		t.Fatalf("explicit token should win, got %q", gotAuth)
	}
}

func TestDoSerializesBodyAndSetsContentType(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["email"] != "a@b.c" {
			t.Fatalf("unexpected body: %v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	Post[map[string]any](context.Background(), newTestClient(srv), "/api/partners/login", map[string]string{"email": "a@b.c"})
}

func TestDoHeaderOverride(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "text/csv" {
			t.Fatalf("caller header should override default, got %q", ct)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	Do[string](context.Background(), newTestClient(srv), "/api/export", Options{
		Headers: map[string]string{"Content-Type": "text/csv"},
	})
}

func TestDoSendsRequestID(t *testing.T) {
	captureLogs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatalf("expected correlation id header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	Get[map[string]any](context.Background(), newTestClient(srv), "/api/partners/profile")
}
