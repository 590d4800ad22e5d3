package muse

import (
	"math"
	"math/rand"
)

// Waveform selects the oscillator shape used by Synth.Wave.
type Waveform uint8

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	WaveNoise
)

// Synth holds the basic signal generators: oscillators, the ADSR
// envelope, a one-pole low-pass filter and an additive piano voice.
// All durations are in seconds, all buffers are mono float64 samples.
type Synth struct {
	sampleRate float64
	rng        *rand.Rand
}

func NewSynth(sampleRate float64, rng *rand.Rand) *Synth {
	return &Synth{sampleRate: sampleRate, rng: rng}
}

// Wave renders duration seconds of the given waveform at freq Hz.
func (s *Synth) Wave(freq, duration float64, w Waveform, amplitude float64) []float64 {
	n := int(s.sampleRate * duration)
	out := make([]float64, n)

	switch w {
	case WaveSine:
		step := 2 * math.Pi * freq / s.sampleRate
		for i := range out {
			out[i] = amplitude * math.Sin(step*float64(i))
		}
	case WaveSaw:
		for i := range out {
			ft := freq * float64(i) / s.sampleRate
			out[i] = amplitude * 2 * (ft - math.Floor(ft+0.5))
		}
	case WaveSquare:
		step := 2 * math.Pi * freq / s.sampleRate
		for i := range out {
			if math.Sin(step*float64(i)) >= 0 {
				out[i] = amplitude
			} else {
				out[i] = -amplitude
			}
		}
	case WaveTriangle:
		for i := range out {
			ft := freq * float64(i) / s.sampleRate
			saw := 2 * (ft - math.Floor(ft+0.5))
			out[i] = amplitude * (2*abs(saw) - 1)
		}
	case WaveNoise:
		for i := range out {
			out[i] = amplitude * (s.rng.Float64()*2 - 1)
		}
	}

	return out
}

// ADSR applies a linear attack/decay/sustain/release envelope in place
// and returns the buffer. The segment times are in seconds; sustain is
// the plateau level in [0,1]. If the three ramps together exceed the
// buffer, they are scaled down proportionally and the plateau is dropped.
func (s *Synth) ADSR(samples []float64, attack, decay, sustain, release float64) []float64 {
	total := len(samples)
	if total == 0 {
		return samples
	}

	attackN := int(attack * s.sampleRate)
	decayN := int(decay * s.sampleRate)
	releaseN := int(release * s.sampleRate)

	sustainN := total - (attackN + decayN + releaseN)
	if sustainN < 0 {
		scale := float64(total) / float64(attackN+decayN+releaseN)
		attackN = int(float64(attackN) * scale)
		decayN = int(float64(decayN) * scale)
		releaseN = total - attackN - decayN
		sustainN = 0
		sustain = 0
	}

	i := 0
	for k := 0; k < attackN && i < total; k++ {
		samples[i] *= float64(k) / float64(attackN)
		i++
	}
	for k := 0; k < decayN && i < total; k++ {
		samples[i] *= 1 - (1-sustain)*float64(k)/float64(decayN)
		i++
	}
	for k := 0; k < sustainN && i < total; k++ {
		samples[i] *= sustain
		i++
	}
	releaseStart := i
	for ; i < total; i++ {
		frac := float64(i-releaseStart) / float64(total-releaseStart)
		samples[i] *= sustain * (1 - frac)
	}

	return samples
}

// LowPass runs a one-pole RC low-pass filter over the buffer and
// returns a new buffer: y[n] = y[n-1] + alpha*(x[n]-y[n-1]).
func (s *Synth) LowPass(samples []float64, cutoff float64) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}
	dt := 1 / s.sampleRate
	rc := 1 / (2 * math.Pi * cutoff)
	alpha := dt / (rc + dt)

	out[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		out[i] = out[i-1] + alpha*(samples[i]-out[i-1])
	}
	return out
}

// pianoHarmonics models hammered strings: relative amplitude and decay
// rate per harmonic, higher partials dying faster.
var pianoHarmonics = [6]struct {
	mult  float64
	amp   float64
	decay float64
}{
	{1, 1.0, 0.60},
	{2, 0.5, 0.45},
	{3, 0.25, 0.35},
	{4, 0.15, 0.25},
	{5, 0.08, 0.20},
	{6, 0.04, 0.15},
}

// PianoNote synthesizes a piano-like tone with additive harmonics, a
// detuned duplicate of the lowest three partials for natural chorus,
// and a sharp 8ms attack. The result is peak-normalized and scaled by
// velocity.
func (s *Synth) PianoNote(freq, duration, velocity float64) []float64 {
	n := int(s.sampleRate * duration)
	if n < 2 {
		return make([]float64, 2)
	}
	out := make([]float64, n)

	for _, h := range pianoHarmonics {
		hfreq := freq * h.mult
		if hfreq > 10000 {
			continue
		}
		step := 2 * math.Pi * hfreq / s.sampleRate
		for i := range out {
			t := float64(i) / float64(n)
			env := math.Exp(-h.decay * t * 5)
			out[i] += h.amp * math.Sin(step*float64(i)) * env
		}
	}

	// Detuned pair: real pianos have 2-3 strings per note.
	for _, h := range pianoHarmonics[:3] {
		hfreq := freq * h.mult * 1.001
		step := 2 * math.Pi * hfreq / s.sampleRate
		for i := range out {
			t := float64(i) / float64(n)
			env := math.Exp(-h.decay * t * 5)
			out[i] += h.amp * 0.3 * math.Sin(step*float64(i)) * env
		}
	}

	attackN := int(0.008 * s.sampleRate)
	if attackN > n {
		attackN = n
	}
	for i := 0; i < attackN; i++ {
		out[i] *= float64(i) / float64(attackN)
	}

	normalize(out)
	for i := range out {
		out[i] *= velocity
	}
	return out
}
