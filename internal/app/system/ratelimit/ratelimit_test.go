package ratelimit

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestLimiter_AllowUntilLimit(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("4th hit should be blocked")
	}
	if l.Remaining("k") != 0 {
		t.Errorf("Remaining = %d, want 0", l.Remaining("k"))
	}
	if !l.Allow("other") {
		t.Error("keys are independent")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || l.Allow("k") {
		t.Fatal("expected one hit then block")
	}
	now = now.Add(61 * time.Second)
	if !l.Allow("k") {
		t.Error("expected a fresh window after expiry")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.windows) != 0 {
		t.Errorf("expected expired windows swept, have %d", len(l.windows))
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(50, time.Minute)
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestLoginLimiter_AccountScopedByRole(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()
	req := httptest.NewRequest("POST", "/api/v1/farmer/signin", nil)

	for i := 0; i < 2; i++ {
		if ok, _, _ := ll.Check(req, "farmer", "A@x.com"); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	ok, limitType, msg := ll.Check(req, "farmer", "a@x.com")
	if ok || limitType != LimitAccount || msg == "" {
		t.Errorf("expected account limit, got ok=%v type=%q", ok, limitType)
	}
	if ok, _, _ := ll.Check(req, "user", "a@x.com"); !ok {
		t.Error("a different role is a different account")
	}

	ll.Succeeded("farmer", "a@x.com")
	if ok, _, _ := ll.Check(req, "farmer", "a@x.com"); !ok {
		t.Error("expected reset after success")
	}
}

func TestLoginLimiter_IP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	defer ll.Stop()
	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.1.1.1:5555"

	if ok, _, _ := ll.Check(req, "user", "a@x.com"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, limitType, _ := ll.Check(req, "user", "b@x.com"); ok || limitType != LimitIP {
		t.Errorf("expected IP limit, got ok=%v type=%q", ok, limitType)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"remote addr", "", "", "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded first hop", "203.0.113.5, 10.0.0.1", "", "10.0.0.1:80", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.1:80", "198.51.100.7"},
		{"no port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
