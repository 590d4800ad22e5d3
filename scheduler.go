package muse

import (
	"sync"
	"time"
)

// Sink consumes rendered beats. Implementations must tolerate beats of
// varying length, since tempo changes between beats.
type Sink interface {
	// WriteBeat blocks until the sink has accepted the whole beat.
	WriteBeat(samples []float64) error

	Close() error
}

// Scheduler connects a BeatRenderer to a Sink through a small buffered
// queue. The producer goroutine renders beats ahead of playback; the
// queue capacity of 2 keeps latency low while absorbing render-time
// jitter. Control changes therefore become audible at most a couple of
// beats after they are made.
type Scheduler struct {
	renderer *BeatRenderer
	sink     Sink

	beats chan []float64
	quit  chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once

	mu  sync.Mutex
	err error
}

func NewScheduler(r *BeatRenderer, sink Sink) *Scheduler {
	return &Scheduler{
		renderer: r,
		sink:     sink,
		beats:    make(chan []float64, 2),
		quit:     make(chan struct{}),
	}
}

// Run starts the producer and consumer goroutines. It returns
// immediately; use Wait to block until playback ends.
func (s *Scheduler) Run() {
	s.wg.Add(2)
	go s.produce()
	go s.consume()
}

func (s *Scheduler) produce() {
	defer s.wg.Done()
	defer close(s.beats)

	for !s.renderer.Finished() {
		buf := s.renderer.RenderNextBeat()
		select {
		case s.beats <- buf:
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) consume() {
	defer s.wg.Done()

	for {
		select {
		case buf, ok := <-s.beats:
			if !ok {
				return
			}
			if err := s.sink.WriteBeat(buf); err != nil {
				s.setErr(err)
				return
			}
		case <-time.After(time.Second):
			// Producer stalled (setup state renders slowly); loop
			// around so a Stop is still noticed promptly.
			select {
			case <-s.quit:
				return
			default:
			}
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// Wait blocks until both goroutines exit, either because the renderer
// finished or because Stop was called, and returns the first sink
// error if any.
func (s *Scheduler) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop aborts playback without waiting for the outro. Safe to call
// more than once and concurrently with Wait.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}
