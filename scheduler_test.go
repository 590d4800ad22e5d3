package muse

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"time"
)

var errWriteFailed = errors.New("write failed")

func TestSchedulerStreamsToSink(t *testing.T) {
	c := NewConductor(rand.New(rand.NewSource(1)))
	r := NewBeatRenderer(c, RendererConfig{Seed: 1})

	var out bytes.Buffer
	sink := NewWriterSink(&out)
	sched := NewScheduler(r, sink)

	c.Start()
	c.TriggerOutro()
	sched.Run()

	done := make(chan error, 1)
	go func() { done <- sched.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("scheduler did not finish")
	}

	if out.Len() == 0 {
		t.Fatal("no PCM reached the sink")
	}
	if out.Len()%4 != 0 {
		t.Errorf("sink received %d bytes, not float32-aligned", out.Len())
	}
}

func TestSchedulerStop(t *testing.T) {
	c := NewConductor(rand.New(rand.NewSource(1)))
	r := NewBeatRenderer(c, RendererConfig{Seed: 1})

	var out bytes.Buffer
	sched := NewScheduler(r, NewWriterSink(&out))

	// Conductor stays in setup: the producer idles on silence blocks
	// until Stop pulls it down.
	sched.Run()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	done := make(chan error, 1)
	go func() { done <- sched.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait after Stop: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not unwind the goroutines")
	}

	// Stop is safe to repeat.
	sched.Stop()
}

type failingSink struct{ err error }

func (s failingSink) WriteBeat([]float64) error { return s.err }
func (s failingSink) Close() error              { return nil }

func TestSchedulerPropagatesSinkError(t *testing.T) {
	c := NewConductor(rand.New(rand.NewSource(1)))
	r := NewBeatRenderer(c, RendererConfig{Seed: 1})

	wantErr := errWriteFailed
	sched := NewScheduler(r, failingSink{err: wantErr})

	c.Start()
	c.TriggerOutro()
	sched.Run()

	// The consumer dies on the first beat; the producer then blocks on
	// the full queue until Stop releases it.
	time.Sleep(100 * time.Millisecond)
	sched.Stop()
	if err := sched.Wait(); err != wantErr {
		t.Fatalf("Wait error = %v, want %v", err, wantErr)
	}
}
