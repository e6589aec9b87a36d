package services

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(testLogger(t), 3, time.Minute).(*circuitBreaker)

	for i := 0; i < 2; i++ {
		b.RecordFailure()
		if !b.Allow() {
			t.Fatalf("breaker opened after %d failures, threshold is 3", i+1)
		}
	}
	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker still allowing after reaching threshold")
	}
	if got := b.State(); got != "open" {
		t.Fatalf("State()=%q, want open", got)
	}
}

func TestCircuitBreakerHalfOpenAfterCoolDown(t *testing.T) {
	b := NewCircuitBreaker(testLogger(t), 1, time.Minute).(*circuitBreaker)

	now := time.Now()
	b.now = func() time.Time { return now }

	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	// Cool-down not elapsed yet.
	now = now.Add(30 * time.Second)
	if b.Allow() {
		t.Fatal("breaker allowed before cool-down elapsed")
	}

	now = now.Add(31 * time.Second)
	if !b.Allow() {
		t.Fatal("breaker should probe half-open after cool-down")
	}
	if got := b.State(); got != "half_open" {
		t.Fatalf("State()=%q, want half_open", got)
	}
}

func TestCircuitBreakerClosesOnSuccess(t *testing.T) {
	b := NewCircuitBreaker(testLogger(t), 1, time.Nanosecond).(*circuitBreaker)

	b.RecordFailure()
	time.Sleep(time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected half-open probe")
	}
	b.RecordSuccess()
	if got := b.State(); got != "closed" {
		t.Fatalf("State()=%q, want closed", got)
	}
	if !b.Allow() {
		t.Fatal("closed breaker must allow")
	}
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := NewCircuitBreaker(testLogger(t), 5, time.Nanosecond).(*circuitBreaker)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	time.Sleep(time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected half-open probe")
	}
	// A single failure in half-open trips straight back to open.
	b.RecordFailure()
	if got := b.State(); got != "open" {
		t.Fatalf("State()=%q, want open", got)
	}
}

func TestCircuitBreakerSuccessResetsCounter(t *testing.T) {
	b := NewCircuitBreaker(testLogger(t), 2, time.Minute)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	if !b.Allow() {
		t.Fatal("success should reset the consecutive failure counter")
	}
}
