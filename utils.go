package muse

import (
	"math"
)

type numeric interface {
	uint8 | int | float64
}

func clampMin[T numeric](v, min T) T {
	if v < min {
		return min
	}
	return v
}

func clampMax[T numeric](v, max T) T {
	if v > max {
		return max
	}
	return v
}

func clamp[T numeric](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// peak returns the largest absolute sample value in the buffer.
func peak(samples []float64) float64 {
	p := 0.0
	for _, v := range samples {
		if a := abs(v); a > p {
			p = a
		}
	}
	return p
}

// normalize scales the buffer to unit peak in place.
// A silent buffer is left untouched.
func normalize(samples []float64) {
	p := peak(samples)
	if p == 0 {
		return
	}
	inv := 1 / p
	for i := range samples {
		samples[i] *= inv
	}
}

// rms returns the root-mean-square level of the buffer.
func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// movingAverage convolves the buffer with a width-sized box kernel,
// producing an output of the same length (kernel centered, zero-padded
// edges).
func movingAverage(samples []float64, width int) []float64 {
	if width < 2 || len(samples) == 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}
	kernel := make([]float64, width)
	for i := range kernel {
		kernel[i] = 1 / float64(width)
	}
	return convolveSame(samples, kernel)
}

// convolveSame convolves samples with a centered kernel.
func convolveSame(samples, kernel []float64) []float64 {
	out := make([]float64, len(samples))
	half := len(kernel) / 2
	for i := range samples {
		sum := 0.0
		for k, kv := range kernel {
			j := i + k - half
			if j >= 0 && j < len(samples) {
				sum += samples[j] * kv
			}
		}
		out[i] = sum
	}
	return out
}
