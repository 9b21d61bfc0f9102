package middleware

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter_Allow(t *testing.T) {
	limiter := NewFixedWindowLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("phone:998901234567") {
			t.Fatalf("call %d should fit in the window", i+1)
		}
	}
	if limiter.Allow("phone:998901234567") {
		t.Error("fourth call should be rejected")
	}

	// Other keys have their own budget.
	if !limiter.Allow("phone:998907654321") {
		t.Error("a fresh key must not share the exhausted budget")
	}
}

func TestFixedWindowLimiter_WindowReset(t *testing.T) {
	limiter := NewFixedWindowLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("k") {
		t.Fatal("first call should pass")
	}
	if limiter.Allow("k") {
		t.Fatal("second call inside the window should fail")
	}

	time.Sleep(15 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Error("call after the window elapsed should pass again")
	}
}
