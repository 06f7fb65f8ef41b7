package render

import (
	"sync/atomic"
	"testing"
	"time"
)

// --- Frame Scheduler Tests ---

func TestScheduler_CoalescesBursts(t *testing.T) {
	s := NewFrameScheduler(5 * time.Millisecond)
	var count int32
	for i := 0; i < 5; i++ {
		s.Request(func() { atomic.AddInt32(&count, 1) })
	}
	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("burst of requests should paint once, painted %d times", got)
	}
	if s.Frames() != 1 {
		t.Fatalf("frames = %d, want 1", s.Frames())
	}
}

func TestScheduler_CancelDropsPending(t *testing.T) {
	s := NewFrameScheduler(10 * time.Millisecond)
	var count int32
	s.Request(func() { atomic.AddInt32(&count, 1) })
	s.Cancel()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&count); got != 0 {
		t.Fatalf("cancelled request still painted %d times", got)
	}
}

func TestScheduler_SequentialRequestsEachRun(t *testing.T) {
	s := NewFrameScheduler(5 * time.Millisecond)
	var count int32
	s.Request(func() { atomic.AddInt32(&count, 1) })
	time.Sleep(40 * time.Millisecond)
	s.Request(func() { atomic.AddInt32(&count, 1) })
	time.Sleep(40 * time.Millisecond)

	if got := atomic.LoadInt32(&count); got != 2 {
		t.Fatalf("separate requests should each paint, painted %d times", got)
	}
}

func TestScheduler_PerformantUntilMeasured(t *testing.T) {
	s := NewFrameScheduler(0)
	if !s.Performant() {
		t.Fatal("scheduler should assume performance before any frame runs")
	}
	if s.FPS() != 0 {
		t.Fatalf("FPS before any frame = %v, want 0", s.FPS())
	}
}

func TestScheduler_SlowFramesFlagged(t *testing.T) {
	s := NewFrameScheduler(0)
	for i := 0; i < 5; i++ {
		s.recordFrame(50 * time.Millisecond)
	}
	if s.Performant() {
		t.Fatalf("20fps should not count as performant, fps=%v", s.FPS())
	}

	fast := NewFrameScheduler(0)
	for i := 0; i < 5; i++ {
		fast.recordFrame(10 * time.Millisecond)
	}
	if !fast.Performant() {
		t.Fatalf("100fps should count as performant, fps=%v", fast.FPS())
	}
}

func TestScheduler_EMASmoothsSpikes(t *testing.T) {
	s := NewFrameScheduler(0)
	s.recordFrame(20 * time.Millisecond)
	s.recordFrame(200 * time.Millisecond)

	// One 5fps spike against a 50fps baseline lands in between, weighted
	// toward the baseline.
	fps := s.FPS()
	if fps <= 5 || fps >= 50 {
		t.Fatalf("smoothed fps = %v, want between the spike and the baseline", fps)
	}
	if fps < 15 || fps > 20 {
		t.Fatalf("smoothed fps = %v, want near 17.9", fps)
	}
}
