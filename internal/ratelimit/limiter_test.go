package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	limiter := NewLimiter("yahoo", 60)

	if limiter.Name() != "yahoo" {
		t.Errorf("Expected name 'yahoo', got '%s'", limiter.Name())
	}

	// Burst of 5 at 60/min
	for i := 0; i < 5; i++ {
		if !limiter.Allow() {
			t.Errorf("Request %d should have been allowed", i)
		}
	}
	if limiter.Allow() {
		t.Error("Request beyond burst should not be allowed immediately")
	}
}

func TestNewLimiterClampsRate(t *testing.T) {
	limiter := NewLimiter("zero", 0)
	if !limiter.Allow() {
		t.Error("First request should be allowed with minimum burst")
	}
}

func TestLimiterWait(t *testing.T) {
	limiter := NewLimiter("test", 120)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if time.Since(start) > 1*time.Second {
		t.Error("Wait took too long")
	}
}

func TestLimiterBackoff(t *testing.T) {
	limiter := NewLimiter("test", 60)

	initial := limiter.GetBackoff()

	limiter.SignalRateLimited()
	after1 := limiter.GetBackoff()
	if after1 <= initial {
		t.Error("Backoff should increase after rate limit signal")
	}

	limiter.SignalRateLimited()
	after2 := limiter.GetBackoff()
	if after2 <= after1 {
		t.Error("Backoff should continue to increase")
	}

	limiter.ResetBackoff()
	if limiter.GetBackoff() != initial {
		t.Error("Backoff should reset to initial value")
	}
}

func TestLimiterBackoffIsCapped(t *testing.T) {
	limiter := NewLimiter("test", 60)
	for i := 0; i < 20; i++ {
		limiter.SignalRateLimited()
	}
	if limiter.GetBackoff() != maxBackoff {
		t.Errorf("Expected backoff capped at %s, got %s", maxBackoff, limiter.GetBackoff())
	}
}

func TestLimiterPausesAfterRateLimit(t *testing.T) {
	limiter := NewLimiter("test", 600)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.SignalRateLimited()
	if limiter.Allow() {
		t.Error("Requests should be refused while paused")
	}

	now = now.Add(time.Second)
	if !limiter.Allow() {
		t.Error("Requests should resume once the pause has elapsed")
	}
}

func TestLimiterWaitHonorsCancellationDuringPause(t *testing.T) {
	limiter := NewLimiter("test", 600)
	for i := 0; i < 15; i++ {
		limiter.SignalRateLimited() // pause of two minutes
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestMultiLimiter(t *testing.T) {
	ml := NewMultiLimiter()

	ml.Add("chart", 60)
	ml.Add("search", 30)

	if ml.Get("chart") == nil {
		t.Error("chart limiter should exist")
	}
	if ml.Get("search") == nil {
		t.Error("search limiter should exist")
	}
	if ml.Get("summary") != nil {
		t.Error("summary limiter should not exist")
	}

	ctx := context.Background()
	if err := ml.Wait(ctx, "chart"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ml.Wait(ctx, "nonexistent"); err != nil {
		t.Errorf("Wait on non-existing limiter should succeed: %v", err)
	}

	ml.SignalRateLimited("search")
	if ml.Get("search").GetBackoff() <= initialBackoff {
		t.Error("SignalRateLimited should reach the named limiter")
	}
	ml.ResetBackoff("search")
	if ml.Get("search").GetBackoff() != initialBackoff {
		t.Error("ResetBackoff should reach the named limiter")
	}
	ml.SignalRateLimited("nonexistent")
}

func TestLimiterContextCancellation(t *testing.T) {
	limiter := NewLimiter("test", 1)
	limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}
