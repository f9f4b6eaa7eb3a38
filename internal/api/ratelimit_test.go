package api

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("sid-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("sid-1") {
		t.Fatal("request over the limit should be denied")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	if !rl.Allow("sid-1") {
		t.Fatal("first key should be allowed")
	}
	if !rl.Allow("sid-2") {
		t.Fatal("a different key must have its own budget")
	}
	if rl.Allow("sid-1") {
		t.Fatal("first key should now be throttled")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 50*time.Millisecond)
	defer rl.Stop()

	if !rl.Allow("sid-1") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("sid-1") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(80 * time.Millisecond)
	if !rl.Allow("sid-1") {
		t.Fatal("request after the window should be allowed again")
	}
}
