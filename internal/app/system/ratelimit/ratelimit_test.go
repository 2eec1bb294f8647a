package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, limit int, d time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	l := New(limit, d)
	t.Cleanup(l.Close)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllow_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Minute)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys are counted separately")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}

	*clock = clock.Add(time.Minute + time.Second)
	if !l.Allow("a") {
		t.Error("request after the window should pass")
	}
	if got := l.Remaining("a"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestAllow_DisabledLimit(t *testing.T) {
	l := New(0, time.Minute)
	defer l.Close()
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatal("a zero limit must not reject")
		}
	}
}

func TestClose_Idempotent(t *testing.T) {
	l := New(1, time.Millisecond)
	select {
	case <-l.Done():
		t.Fatal("Done closed before Close")
	default:
	}
	l.Close()
	l.Close()
	select {
	case <-l.Done():
	default:
		t.Error("Done not closed after Close")
	}
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := Key(r); got != "ip:10.0.0.1" {
		t.Errorf("anonymous key = %q", got)
	}

	r = auth.WithTestUser(r, &auth.SessionUser{ID: "abc"})
	if got := Key(r); got != "user:abc" {
		t.Errorf("user key = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 4.3.2.1 "}, "9.9.9.9:1", "4.3.2.1"},
		{"remote with port", nil, "9.9.9.9:1", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	h := l.Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := auth.WithTestUser(httptest.NewRequest("POST", "/api/upload-image", nil), &auth.SessionUser{ID: "u1"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
	}
}
