// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter per key. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit hits per key within duration and
// starts a goroutine that sweeps expired windows every 2*duration.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.sweepLoop(duration * 2)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
		}
	}
}

// ClientIP returns the caller's address. chi's RealIP middleware has
// already folded X-Forwarded-For / X-Real-IP into RemoteAddr when it runs
// first; the headers are consulted here for handlers mounted without it.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Limit types reported by LoginLimiter.Check.
const (
	LimitIP      = "ip"
	LimitAccount = "account"
)

// LoginLimiter throttles sign-in attempts per client IP and per account.
// Account keys include the role, so the same email in two role
// collections is counted separately.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter uses 10 attempts per IP per minute and 5 per account per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig builds a limiter with explicit limits.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, accountLimit int, accountWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:      New(ipLimit, ipWindow),
		account: New(accountLimit, accountWindow),
	}
}

func accountKey(role, identifier string) string {
	return role + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// Check records an attempt. When blocked it returns the limit type and a
// user-facing message.
func (ll *LoginLimiter) Check(r *http.Request, role, identifier string) (ok bool, limitType, msg string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, LimitIP, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if identifier != "" && !ll.account.Allow(accountKey(role, identifier)) {
		return false, LimitAccount, "Too many sign-in attempts for this account. Please wait a few minutes."
	}
	return true, "", ""
}

// Succeeded clears the account counter after a successful sign-in.
func (ll *LoginLimiter) Succeeded(role, identifier string) {
	if identifier != "" {
		ll.account.Reset(accountKey(role, identifier))
	}
}

// Stop ends both sweep goroutines.
func (ll *LoginLimiter) Stop() {
	ll.ip.Stop()
	ll.account.Stop()
}
