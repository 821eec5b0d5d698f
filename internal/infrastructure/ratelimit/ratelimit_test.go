package ratelimit

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestKeyedLimiterBurst(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(1), 2)

	if !limiter.Allow("session-1") {
		t.Fatal("first request within burst must pass")
	}
	if !limiter.Allow("session-1") {
		t.Fatal("second request within burst must pass")
	}
	if limiter.Allow("session-1") {
		t.Fatal("request beyond burst must be rejected")
	}
}

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(1), 1)

	if !limiter.Allow("session-1") {
		t.Fatal("first key must pass")
	}
	if !limiter.Allow("session-2") {
		t.Fatal("a different key must have its own bucket")
	}
	if limiter.Allow("session-1") {
		t.Fatal("exhausted key must stay limited")
	}
}

func TestKeyedLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewKeyedLimiter(rate.Limit(1), 1)
	limiter.idleTTL = time.Minute

	current := time.Unix(0, 0)
	limiter.now = func() time.Time { return current }

	limiter.Allow("stale")
	if len(limiter.buckets) != 1 {
		t.Fatalf("buckets = %d, want 1", len(limiter.buckets))
	}

	current = current.Add(2 * time.Minute)
	limiter.Allow("fresh")
	if _, ok := limiter.buckets["stale"]; ok {
		t.Fatal("idle bucket must be evicted")
	}
	if _, ok := limiter.buckets["fresh"]; !ok {
		t.Fatal("active bucket must remain")
	}
}
