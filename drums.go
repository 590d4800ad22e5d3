package muse

import (
	"math"
	"math/rand"
)

// DrumKit procedurally synthesizes the standard kit pieces.
// Every hit is rendered from scratch; there are no samples involved.
type DrumKit struct {
	sampleRate float64
	rng        *rand.Rand
}

func NewDrumKit(sampleRate float64, rng *rand.Rand) *DrumKit {
	return &DrumKit{sampleRate: sampleRate, rng: rng}
}

// Kick is a sine with an exponential pitch sweep from 150Hz down to
// 50Hz plus a 10ms noise click, under an exp(-10t) amplitude envelope.
func (d *DrumKit) Kick() []float64 {
	const duration = 0.3
	n := int(d.sampleRate * duration)
	out := make([]float64, n)

	phase := 0.0
	clickN := int(0.01 * d.sampleRate)
	for i := range out {
		t := float64(i) / d.sampleRate
		freq := 150*math.Exp(-15*t) + 50
		phase += freq / d.sampleRate
		sig := math.Sin(2 * math.Pi * phase)
		if i < clickN {
			sig += (d.rng.Float64()*2 - 1) * 0.5
		}
		out[i] = sig * math.Exp(-10*t)
	}
	return out
}

// Snare mixes a 180Hz tonal component (decay rate 15) with low-passed
// noise modelling the wires (decay rate 20).
func (d *DrumKit) Snare() []float64 {
	const duration = 0.2
	n := int(d.sampleRate * duration)

	noise := make([]float64, n)
	for i := range noise {
		noise[i] = d.rng.Float64()*2 - 1
	}
	noise = movingAverage(noise, 5)

	out := make([]float64, n)
	for i := range out {
		t := float64(i) / d.sampleRate
		tone := math.Sin(2*math.Pi*180*t) * math.Exp(-15*t)
		wires := noise[i] * math.Exp(-20*t)
		out[i] = (tone*0.5 + wires*0.8) * 0.8
	}
	return out
}

// HiHat is high-passed noise (noise minus its 8-tap moving average).
// Closed hats decay at rate 80 over 80ms; open hats at rate 15 over
// 300ms.
func (d *DrumKit) HiHat(open bool) []float64 {
	duration := 0.08
	decay := 80.0
	if open {
		duration = 0.3
		decay = 15.0
	}
	n := int(d.sampleRate * duration)

	noise := make([]float64, n)
	for i := range noise {
		noise[i] = d.rng.Float64()*2 - 1
	}
	low := movingAverage(noise, 8)

	out := make([]float64, n)
	for i := range out {
		t := float64(i) / d.sampleRate
		out[i] = (noise[i] - low[i]) * math.Exp(-decay*t) * 0.6
	}
	return out
}

// Tom is a sine with a downward pitch bend and decay rate 5.
func (d *DrumKit) Tom(freq, duration float64) []float64 {
	n := int(d.sampleRate * duration)
	out := make([]float64, n)

	phase := 0.0
	for i := range out {
		t := float64(i) / d.sampleRate
		pitch := freq * (1 + 0.5*math.Exp(-10*t))
		phase += pitch / d.sampleRate
		out[i] = math.Sin(2*math.Pi*phase) * math.Exp(-5*t)
	}
	return out
}
