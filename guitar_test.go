package muse

import (
	"math/rand"
	"testing"
)

func newTestGuitar() *Guitar {
	return NewGuitar(44100, rand.New(rand.NewSource(1)))
}

func TestKarplusStrong(t *testing.T) {
	g := newTestGuitar()

	out := g.KarplusStrong(196, 0.5, 0.996)
	if len(out) != 22050 {
		t.Fatalf("got %d samples, want 22050", len(out))
	}
	if peak(out) == 0 {
		t.Error("plucked string produced silence")
	}

	// A pluck decays: the last tenth must be quieter than the first.
	head := rms(out[:len(out)/10])
	tail := rms(out[len(out)-len(out)/10:])
	if tail >= head {
		t.Errorf("no decay: head rms %f, tail rms %f", head, tail)
	}
}

func TestKarplusStrongDegenerateFreq(t *testing.T) {
	g := newTestGuitar()

	// Above Nyquist the delay line is under 2 samples and cannot
	// oscillate; the full requested length of silence comes back.
	out := g.KarplusStrong(30000, 0.1, 0.996)
	if len(out) != 4410 {
		t.Fatalf("got %d samples, want 4410", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d is %f, want silence", i, v)
		}
	}
}

func TestSustainToDecay(t *testing.T) {
	if got := sustainToDecay(0); !almostEqual(got, 0.98, 1e-9) {
		t.Errorf("sustain 0 -> %f, want 0.98", got)
	}
	if got := sustainToDecay(100); !almostEqual(got, 0.9999, 1e-9) {
		t.Errorf("sustain 100 -> %f, want 0.9999", got)
	}
	if sustainToDecay(30) >= sustainToDecay(90) {
		t.Error("decay factor not monotonic in sustain")
	}
	// Out-of-range inputs clamp instead of producing decay > 1.
	if got := sustainToDecay(500); got > 0.9999 {
		t.Errorf("sustain 500 -> %f, want clamped", got)
	}
}

func TestPlayNote(t *testing.T) {
	g := newTestGuitar()

	for _, tone := range []Tone{ToneClean, ToneCrunch, ToneDistorted} {
		out := g.PlayNote(196, 0.3, 0.8, tone, 70)
		if len(out) != 13230 {
			t.Fatalf("tone %d: got %d samples, want 13230", tone, len(out))
		}
		if peak(out) == 0 {
			t.Errorf("tone %d: silent note", tone)
		}
		if p := peak(out); p > 0.8+1e-9 {
			t.Errorf("tone %d: peak %f exceeds velocity", tone, p)
		}
	}
}

func TestPlayChord(t *testing.T) {
	g := newTestGuitar()

	freqs := []float64{196, 246.94, 293.66}
	out := g.PlayChord(freqs, 0.4, 0.7, ToneClean, 0.01)
	wantLen := int(44100 * (0.4 + 0.01*3))
	if len(out) != wantLen {
		t.Fatalf("got %d samples, want %d", len(out), wantLen)
	}
	if peak(out) == 0 {
		t.Error("silent chord")
	}

	// The stagger means the last string's onset region carries energy
	// well past the first string's pluck.
	lateStart := int(44100 * 0.05)
	if rms(out[lateStart:lateStart*2]) == 0 {
		t.Error("no energy after strum window")
	}
}
