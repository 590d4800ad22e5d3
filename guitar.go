package muse

import (
	"math"
	"math/rand"
)

// Tone selects the amp voicing applied after string synthesis.
type Tone uint8

const (
	ToneClean Tone = iota
	ToneCrunch
	ToneDistorted
)

// Guitar implements Karplus-Strong plucked string synthesis with a
// cabinet simulation stage.
type Guitar struct {
	sampleRate float64
	rng        *rand.Rand
}

func NewGuitar(sampleRate float64, rng *rand.Rand) *Guitar {
	return &Guitar{sampleRate: sampleRate, rng: rng}
}

// ksReferenceFreq is roughly C3. The Karplus-Strong averaging filter
// runs freq times per second, so shorter delay lines decay faster; the
// decay factor is boosted for every octave above this reference.
const ksReferenceFreq = 130.0

// KarplusStrong renders duration seconds of a plucked string at freq.
// A table shorter than 2 samples cannot oscillate; the requested length
// of silence is returned instead.
func (g *Guitar) KarplusStrong(freq, duration, decayFactor float64) []float64 {
	n := int(g.sampleRate * duration)
	out := make([]float64, n)

	p := int(g.sampleRate / freq)
	if p < 2 {
		return out
	}

	if freq > ksReferenceFreq {
		octavesAbove := math.Log2(freq / ksReferenceFreq)
		decayFactor = clampMax(decayFactor+octavesAbove*0.008, 0.99999)
	}

	table := make([]float64, p)
	for i := range table {
		table[i] = g.rng.Float64()*2 - 1
	}

	// Pre-smooth the noise burst. Fewer passes for very short lines:
	// 3 passes on a 25-sample table destroys the signal.
	passes := clamp(p/30, 1, 3)
	for pass := 0; pass < passes; pass++ {
		smoothed := make([]float64, p)
		for i := range table {
			prev := table[(i-1+p)%p]
			smoothed[i] = 0.5 * (table[i] + prev)
		}
		table = smoothed
	}

	idx := 0
	for i := range out {
		out[i] = table[idx]
		prev := (idx - 1 + p) % p
		table[idx] = decayFactor * 0.5 * (table[idx] + table[prev])
		idx = (idx + 1) % p
	}
	return out
}

// cabinet approximates a guitar cabinet IR with a box-kernel low-pass.
func (g *Guitar) cabinet(samples []float64) []float64 {
	return movingAverage(samples, 10)
}

// overdrive is tube-amp style soft clipping followed by the cabinet,
// which rounds off the harsh upper harmonics of the clipping stage.
func (g *Guitar) overdrive(samples []float64, gain float64) []float64 {
	driven := make([]float64, len(samples))
	for i, v := range samples {
		driven[i] = math.Tanh(v * gain)
	}
	return g.cabinet(driven)
}

// sustainToDecay maps a 0-100 sustain percentage onto the KS decay
// factor: 0 dies almost immediately (0.98), 50 is a normal pluck
// (~0.99), 100 rings nearly forever (0.9999).
func sustainToDecay(sustainPct float64) float64 {
	s := clamp(sustainPct, 0, 100) / 100
	return 0.98 + s*0.0199
}

// PlayNote renders a single picked note. The result is peak-normalized
// before the amp stage and scaled by velocity; a string that produced
// no energy short-circuits to silence.
func (g *Guitar) PlayNote(freq, duration, velocity float64, tone Tone, sustainPct float64) []float64 {
	raw := g.KarplusStrong(freq, duration, sustainToDecay(sustainPct))

	if peak(raw) < 1e-6 {
		return make([]float64, len(raw))
	}
	normalize(raw)

	switch tone {
	case ToneDistorted:
		raw = g.overdrive(raw, 10)
	case ToneCrunch:
		raw = g.overdrive(raw, 4)
	default:
		raw = g.cabinet(raw)
	}

	for i := range raw {
		raw[i] *= velocity
	}
	return raw
}

// PlayChord strums the given strings with onsets staggered by
// strumSpeed seconds per string, peak-normalizes the mix and runs it
// through the amp stage.
func (g *Guitar) PlayChord(freqs []float64, duration, velocity float64, tone Tone, strumSpeed float64) []float64 {
	totalDur := duration + strumSpeed*float64(len(freqs))
	maxSamples := int(g.sampleRate * totalDur)
	mixed := make([]float64, maxSamples)

	for i, f := range freqs {
		offset := clampMin(int(g.sampleRate*float64(i)*strumSpeed), 0)
		str := g.KarplusStrong(f, duration, 0.996)
		for j, v := range str {
			if offset+j >= maxSamples {
				break
			}
			mixed[offset+j] += v
		}
	}

	normalize(mixed)
	for i := range mixed {
		mixed[i] *= velocity
	}

	switch tone {
	case ToneDistorted:
		return g.overdrive(mixed, 8)
	case ToneCrunch:
		return g.overdrive(mixed, 3)
	default:
		return g.cabinet(mixed)
	}
}
