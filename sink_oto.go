package muse

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays beats on the system audio device. The device pulls
// mono float32 LE samples from an internal queue; WriteBeat blocks
// while more than maxQueued bytes are pending, so control changes stay
// within roughly half a second of the speakers.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	queue  *sampleQueue
}

// NewOtoSink opens the default audio device at the given sample rate.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	q := &sampleQueue{maxQueued: sampleRate * 4 / 2} // half a second
	q.cond = sync.NewCond(&q.mu)

	player := ctx.NewPlayer(q)
	player.SetBufferSize(sampleRate * 4 / 10)
	player.Play()

	return &OtoSink{ctx: ctx, player: player, queue: q}, nil
}

func (s *OtoSink) WriteBeat(samples []float64) error {
	b := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
	}
	s.queue.push(b)
	return nil
}

// Close drains what is already queued, then releases the device.
func (s *OtoSink) Close() error {
	deadline := time.Now().Add(2 * time.Second)
	for s.queue.pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	return s.player.Close()
}

// sampleQueue is the byte FIFO between WriteBeat and the audio
// device's reader goroutine. Read never blocks: when the queue runs
// dry it hands the device silence, so an underrun clicks instead of
// stalling the device.
type sampleQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	buf       []byte
	maxQueued int
}

func (q *sampleQueue) push(b []byte) {
	q.mu.Lock()
	for len(q.buf) > q.maxQueued {
		q.cond.Wait()
	}
	q.buf = append(q.buf, b...)
	q.mu.Unlock()
}

func (q *sampleQueue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

func (q *sampleQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(p, q.buf)
	if n > 0 {
		q.buf = q.buf[n:]
		q.cond.Broadcast()
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
