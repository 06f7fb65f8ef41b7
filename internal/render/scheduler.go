package render

import (
	"sync"
	"time"
)

const (
	// emaAlpha weights the newest frame in the smoothed frame time.
	emaAlpha = 0.2
	// performantFPS is the floor below which rendering counts as struggling.
	performantFPS = 30.0
)

// FrameScheduler coalesces render requests so a burst of pans and zooms
// paints once, and tracks a smoothed frame rate from the paints it runs.
type FrameScheduler struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	seq    uint64 // generation, stale fires bail out
	frames uint64
	emaSec float64 // smoothed seconds per frame
}

// NewFrameScheduler creates a scheduler with the given coalescing delay.
// Non-positive delays fall back to roughly one 60Hz frame.
func NewFrameScheduler(delay time.Duration) *FrameScheduler {
	if delay <= 0 {
		delay = 16 * time.Millisecond
	}
	return &FrameScheduler{delay: delay}
}

// Request schedules render after the coalescing delay, replacing any
// request still pending. Only the last render of a burst runs.
func (s *FrameScheduler) Request(render func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq, render) })
}

func (s *FrameScheduler) fire(seq uint64, render func()) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	start := time.Now()
	render()
	s.recordFrame(time.Since(start))
}

// Cancel drops any pending request.
func (s *FrameScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

func (s *FrameScheduler) recordFrame(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-6
	}
	s.frames++
	if s.frames == 1 {
		s.emaSec = sec
		return
	}
	s.emaSec = s.emaSec*(1-emaAlpha) + sec*emaAlpha
}

// Frames reports how many renders have run.
func (s *FrameScheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// FPS reports the smoothed frame rate, zero before the first frame.
func (s *FrameScheduler) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 {
		return 0
	}
	return 1 / s.emaSec
}

// Performant reports whether rendering keeps up with interaction. True
// until a measured frame says otherwise.
func (s *FrameScheduler) Performant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 {
		return true
	}
	return 1/s.emaSec >= performantFPS
}
