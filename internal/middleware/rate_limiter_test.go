package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterExhaustsBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 2, time.Hour)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("login:1.2.3.4") {
			t.Fatalf("expected request %d within burst to pass", i+1)
		}
	}
	if limiter.Allow("login:1.2.3.4") {
		t.Fatal("expected request beyond burst to be limited")
	}

	// Other keys are metered independently.
	if !limiter.Allow("login:5.6.7.8") {
		t.Fatal("expected a different address to have its own budget")
	}
	if !limiter.Allow("register:1.2.3.4") {
		t.Fatal("expected a different scope to have its own budget")
	}
}

func TestIPRateLimiterExpiresIdleClients(t *testing.T) {
	current := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	limiter := &ipRateLimiter{
		clients: make(map[string]*client),
		limit:   1,
		burst:   1,
		ttl:     time.Minute,
		now:     func() time.Time { return current },
	}

	limiter.Allow("login:1.2.3.4")
	if len(limiter.clients) != 1 {
		t.Fatalf("expected one tracked client, got %d", len(limiter.clients))
	}

	current = current.Add(2 * time.Minute)
	limiter.Allow("login:5.6.7.8")
	if _, ok := limiter.clients["login:1.2.3.4"]; ok {
		t.Fatal("expected idle client to be expired")
	}
	if _, ok := limiter.clients["login:5.6.7.8"]; !ok {
		t.Fatal("expected active client to be tracked")
	}
}
