package muse

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestWriterSinkEncoding(t *testing.T) {
	var out bytes.Buffer
	sink := NewWriterSink(&out)

	in := []float64{0, 1, -0.5, 0.25}
	if err := sink.WriteBeat(in); err != nil {
		t.Fatal(err)
	}
	if out.Len() != len(in)*4 {
		t.Fatalf("wrote %d bytes, want %d", out.Len(), len(in)*4)
	}

	b := out.Bytes()
	for i, want := range in {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		got := float64(math.Float32frombits(bits))
		if !almostEqual(got, want, 1e-7) {
			t.Errorf("sample %d decoded as %f, want %f", i, got, want)
		}
	}

	// The scratch buffer is reused across beats without mixing data.
	out.Reset()
	if err := sink.WriteBeat([]float64{0.5}); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 4 {
		t.Fatalf("second beat wrote %d bytes, want 4", out.Len())
	}

	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
}
