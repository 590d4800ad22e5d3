package muse

import (
	"encoding/binary"
	"io"
	"math"
)

// WriterSink streams beats as raw mono 32-bit float little-endian PCM
// to an io.Writer. Useful for piping into a file or an external player
// and for headless tests.
type WriterSink struct {
	w   io.Writer
	buf []byte
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteBeat(samples []float64) error {
	need := len(samples) * 4
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:need]
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
	}
	_, err := s.w.Write(b)
	return err
}

func (s *WriterSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
