package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different key should also work
	if err := limiter.Wait(ctx, "ollama"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "anthropic"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst 1 is consumed
	if limiter.Allow("anthropic") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("gemini") {
		t.Errorf("expected allow for other key")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("openai") {
			t.Fatalf("request %d limited with rate disabled", i)
		}
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	if !limiter.Allow("slow") {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("expected wait to fail once the context expires")
	}
}

func TestLimiter_Nil(t *testing.T) {
	var limiter *Limiter
	if err := limiter.Wait(context.Background(), "any"); err != nil {
		t.Errorf("nil limiter should not block: %v", err)
	}
	if !limiter.Allow("any") {
		t.Error("nil limiter should allow")
	}
}

func TestLimiter_SetKeyRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default
	host := "slow.example.com"

	limiter.SetKeyRate(host, 0.1, 1) // very slow

	if !limiter.Allow(host) {
		t.Errorf("first request should pass")
	}
	if limiter.Allow(host) {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("fast.example.com") {
		t.Errorf("other key should pass")
	}
}

func TestHostKey(t *testing.T) {
	host, err := HostKey("http://example.com/foo")
	if err != nil {
		t.Fatalf("HostKey failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}

	if _, err := HostKey("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
	if _, err := HostKey("/local/path.pdf"); err == nil {
		t.Errorf("expected error for URL without host")
	}
}
