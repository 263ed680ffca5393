package histogram

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsAfterDelay(t *testing.T) {
	s := NewScheduler(20 * time.Millisecond)

	done := make(chan struct{})
	s.Schedule("/a.jpg", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled function never ran")
	}
}

func TestSchedulerNewKeyCancelsPending(t *testing.T) {
	s := NewScheduler(50 * time.Millisecond)

	var aRan, bRan atomic.Bool
	done := make(chan struct{})

	s.Schedule("/a.jpg", func() { aRan.Store(true) })
	s.Schedule("/b.jpg", func() { bRan.Store(true); close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement computation never ran")
	}

	// Give the superseded timer time to fire if it wrongly survived.
	time.Sleep(100 * time.Millisecond)
	if aRan.Load() {
		t.Error("superseded computation ran")
	}
	if !bRan.Load() {
		t.Error("replacement computation did not run")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(30 * time.Millisecond)

	var ran atomic.Bool
	s.Schedule("/a.jpg", func() { ran.Store(true) })
	s.Cancel()

	time.Sleep(100 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled computation ran")
	}
}

func TestSchedulerDefaultDelay(t *testing.T) {
	s := NewScheduler(0)
	if s.delay != DefaultDebounce {
		t.Errorf("delay = %v, want default %v", s.delay, DefaultDebounce)
	}
}
