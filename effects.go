package muse

import (
	"math"
	"math/rand"
)

// FX is the master effects chain: distortion, chorus, delay and reverb
// as pure buffer-to-buffer transforms at a fixed sample rate.
type FX struct {
	sampleRate float64
	rng        *rand.Rand
}

func NewFX(sampleRate float64, rng *rand.Rand) *FX {
	return &FX{sampleRate: sampleRate, rng: rng}
}

// cabinetFilter approximates a cabinet IR with a blend of a 12-tap and
// a 30-tap moving average, peak-normalized.
func cabinetFilter(samples []float64) []float64 {
	filtered := movingAverage(samples, 12)
	veryLow := movingAverage(samples, 30)

	out := make([]float64, len(samples))
	for i := range out {
		out[i] = filtered[i]*0.7 + (filtered[i]-veryLow[i]*0.5)*0.3
	}
	normalize(out)
	return out
}

// Distortion applies multi-stage clipping with an asymmetric tube
// stage and a cabinet filter. The output is RMS-matched to the input
// so the perceived loudness does not change, then crossfaded with the
// dry signal by mix.
func (fx *FX) Distortion(samples []float64, gain, mix float64) []float64 {
	inputRMS := rms(samples) + 1e-10

	driven := make([]float64, len(samples))
	for i, v := range samples {
		boosted := v * gain * 0.5
		clipped := math.Tanh(boosted)
		// Tube asymmetry: positive and negative halves get
		// different drive.
		if clipped >= 0 {
			clipped = math.Tanh(clipped * gain * 0.3)
		} else {
			clipped = math.Tanh(clipped * gain * 0.25)
		}
		driven[i] = clamp(clipped*1.5, -1, 1)
	}

	driven = cabinetFilter(driven)

	drivenRMS := rms(driven) + 1e-10
	scale := inputRMS / drivenRMS
	out := make([]float64, len(samples))
	for i := range out {
		out[i] = (1-mix)*samples[i] + mix*driven[i]*scale
	}
	return out
}

// Chorus sums four modulated delay voices over the dry signal. Each
// voice has its own LFO phase, a rate spread of 0.9-1.3x, a depth
// spread of 0.9-1.2x and a base delay between 15 and 23ms; the delayed
// reads are linearly interpolated. The result is tanh soft-clipped.
func (fx *FX) Chorus(samples []float64, rate, depthMs, mix float64) []float64 {
	n := len(samples)
	out := make([]float64, n)
	dryWeight := 1 - mix*0.5
	for i, s := range samples {
		out[i] = s * dryWeight
	}

	const voices = 4
	wetGain := mix * 0.7 / voices

	for voice := 0; voice < voices; voice++ {
		v := float64(voice) / voices
		phaseOffset := 2 * math.Pi * v
		voiceRate := rate * (0.9 + v*0.4)
		voiceDepth := depthMs * (0.9 + v*0.3)
		baseDelayMs := 15.0 + v*8.0

		for i := 0; i < n; i++ {
			t := float64(i) / fx.sampleRate
			lfo := voiceDepth * math.Sin(2*math.Pi*voiceRate*t+phaseOffset)
			delaySamples := (baseDelayMs + lfo) / 1000 * fx.sampleRate

			pos := float64(i) - delaySamples
			idx := int(math.Floor(pos))
			if idx < 0 || idx >= n-1 {
				continue
			}
			frac := pos - float64(idx)
			out[i] += ((1-frac)*samples[idx] + frac*samples[idx+1]) * wetGain
		}
	}

	for i := range out {
		out[i] = math.Tanh(out[i])
	}
	return out
}

// delayKernel is the gentle low-pass applied once more per echo so
// each repeat comes back darker.
var delayKernel = []float64{0.2, 0.3, 0.3, 0.2}

// Delay generates up to 6 echo taps at multiples of the base delay
// with gain feedback^tap, stopping once a tap falls below audibility.
// The blend is soft-clipped and truncated back to the input length.
func (fx *FX) Delay(samples []float64, delayMs, feedback, mix float64) []float64 {
	n := len(samples)
	delaySamples := int(delayMs * fx.sampleRate / 1000)

	extended := make([]float64, n+delaySamples*6)
	copy(extended, samples)

	for tap := 0; tap < 6; tap++ {
		tapStart := delaySamples * (tap + 1)
		tapGain := math.Pow(feedback, float64(tap+1))
		if tapGain < 0.02 {
			break
		}
		if tapStart >= len(extended) {
			break
		}

		available := len(extended) - tapStart
		if available > n {
			available = n
		}
		echo := make([]float64, available)
		for i := range echo {
			echo[i] = samples[i] * tapGain
		}
		// Each successive echo passes through one extra smoothing
		// stage, so later repeats come back darker.
		for pass := 0; pass <= tap; pass++ {
			echo = convolveSame(echo, delayKernel)
		}
		for i, v := range echo {
			extended[tapStart+i] += v
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Tanh(((1-mix)*samples[i] + mix*extended[i]) * 0.9)
	}
	return out
}

// Fixed reverb topology: early reflection taps, eight comb filters at
// irregular delays, two allpass diffusers.
var (
	reverbEarlyDelaysMs = []float64{13, 19, 23, 29, 37, 43}
	reverbEarlyGains    = []float64{0.7, 0.6, 0.5, 0.45, 0.35, 0.3}
	reverbCombDelaysMs  = []float64{47.3, 53.7, 61.3, 71.9, 83.1, 93.7, 103.1, 113.3}
	reverbAllpassMs     = []float64{7.3, 2.7}
)

// Reverb is a large-hall network: early reflections, averaged comb
// filters with per-filter randomized feedback, and cascaded allpass
// diffusers. The wet path is blended early*0.3 + diffused*0.7 and
// low-cut, then added on top of the unattenuated dry signal, so the
// source stays clear at any mix level.
func (fx *FX) Reverb(samples []float64, decay, mix float64) []float64 {
	n := len(samples)
	out := make([]float64, n)
	copy(out, samples)
	if mix == 0 || n == 0 {
		return out
	}

	early := make([]float64, n)
	for k, dMs := range reverbEarlyDelaysMs {
		d := int(dMs * fx.sampleRate / 1000)
		if d >= n {
			continue
		}
		g := reverbEarlyGains[k]
		for i := d; i < n; i++ {
			early[i] += samples[i-d] * g
		}
	}

	combSum := make([]float64, n)
	comb := make([]float64, n)
	for _, dMs := range reverbCombDelaysMs {
		d := int(dMs * fx.sampleRate / 1000)
		g := decay * (0.88 + 0.12*fx.rng.Float64())

		for i := 0; i < n && i < d; i++ {
			comb[i] = 0
		}
		for i := d; i < n; i++ {
			comb[i] = samples[i] + g*comb[i-d]
		}
		for i := range combSum {
			combSum[i] += comb[i]
		}
	}
	invCombs := 1 / float64(len(reverbCombDelaysMs))
	for i := range combSum {
		combSum[i] *= invCombs
	}

	diffused := combSum
	for _, apMs := range reverbAllpassMs {
		d := int(apMs * fx.sampleRate / 1000)
		const g = 0.7
		apOut := make([]float64, n)
		for i := d; i < n; i++ {
			apOut[i] = -g*diffused[i] + diffused[i-d] + g*apOut[i-d]
		}
		diffused = apOut
	}

	wet := make([]float64, n)
	for i := range wet {
		wet[i] = early[i]*0.3 + diffused[i]*0.7
	}
	wet = movingAverage(wet, 8)

	for i := range out {
		out[i] += mix * wet[i]
	}
	return out
}
