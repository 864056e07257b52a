package auth

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testUser() *User {
	return &User{
		ID:       "user-1",
		Email:    "a@x.com",
		Role:     RoleCitizen,
		IsActive: true,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	clock := newFakeClock()
	iss, err := NewIssuer("test-secret", WithIssuerClock(clock.Now))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, expiresAt, err := iss.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got, want := expiresAt, clock.Now().Add(15*time.Minute); !got.Equal(want) {
		t.Fatalf("unexpected expiry: got %v, want %v", got, want)
	}

	claims, err := iss.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != RoleCitizen {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
}

func TestAccessTokenExpires(t *testing.T) {
	clock := newFakeClock()
	iss, err := NewIssuer("test-secret", WithIssuerClock(clock.Now), WithAccessTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if _, err := iss.ParseAndValidate(token); err != nil {
		t.Fatalf("expected token valid before expiry: %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := iss.ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestAccessTokenTamperDetected(t *testing.T) {
	clock := newFakeClock()
	iss, err := NewIssuer("test-secret", WithIssuerClock(clock.Now))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	// Flip one byte inside the payload segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	payload := []byte(parts[1])
	mid := len(payload) / 2
	if payload[mid] == 'A' {
		payload[mid] = 'B'
	} else {
		payload[mid] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := iss.ParseAndValidate(tampered); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	issA, err := NewIssuer("secret-a")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	issB, err := NewIssuer("secret-b")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := issA.AccessToken(testUser())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if _, err := issB.ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseAndValidateGarbage(t *testing.T) {
	iss, err := NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	for _, token := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := iss.ParseAndValidate(token); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestNewRefreshSecret(t *testing.T) {
	a, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	b, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	if len(a) != refreshSecretBytes*2 {
		t.Fatalf("unexpected secret length: %d", len(a))
	}
	if a == b {
		t.Fatalf("refresh secrets must be unique")
	}
}
