package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trip-board/backend/internal/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("ok"))
	})
}

func TestRequireToken(t *testing.T) {
	secret := []byte("s3cret")
	valid, err := auth.IssueToken(secret, "board", 0)
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := auth.IssueToken([]byte("other"), "board", 0)

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"valid", http.MethodGet, "Bearer " + valid, http.StatusTeapot},
		{"missing", http.MethodGet, "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "Basic " + valid, http.StatusUnauthorized},
		{"wrong secret", http.MethodGet, "Bearer " + foreign, http.StatusUnauthorized},
		{"preflight", http.MethodOptions, "", http.StatusTeapot},
	}
	h := RequireToken(secret)(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/points", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestErrorRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := ErrorRecovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != ErrInternalError {
		t.Fatalf("error code = %q", body.Error)
	}
	if logs.FilterMessage("Panic recovered").Len() != 1 {
		t.Fatal("panic was not logged")
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logging(zap.New(core))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/points", nil))

	id := rec.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("response has no request id")
	}

	entries := logs.FilterMessage("HTTP request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d access log entries", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["size"] != int64(2) || fields["method"] != "POST" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if fields["request_id"] != id {
		t.Fatalf("logged request id %v, header %q", fields["request_id"], id)
	}
}

func TestLoggingKeepsIncomingRequestID(t *testing.T) {
	h := Logging(zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://app.test"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/points", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}
