package muse

import (
	"math"
)

// Classical: a three-voice ensemble of piano, strings and woodwind
// driven by a stochastic sub-beat rhythm and a chord-tone-biased note
// picker.

// rhythmStep places one note inside a beat: both values are fractions
// of the beat (duration may exceed 1.0 for legato).
type rhythmStep struct {
	offset   float64
	duration float64
}

var classicalPatternsHigh = [][]rhythmStep{
	{{0, 0.25}, {0.25, 0.25}, {0.5, 0.5}},              // 2 eighths + quarter
	{{0, 0.5}, {0.5, 0.25}, {0.75, 0.25}},              // quarter + 2 eighths
	{{0, 0.25}, {0.25, 0.25}, {0.5, 0.25}, {0.75, 0.25}}, // running eighths
	{{0, 0.33}, {0.33, 0.33}, {0.66, 0.34}},            // triplet
	{{0, 0.75}, {0.75, 0.25}},                          // dotted quarter + eighth
}

var classicalPatternsMid = [][]rhythmStep{
	{{0, 1}},            // quarter
	{{0, 0.5}, {0.5, 0.5}}, // 2 eighths
	{{0, 0.75}, {0.75, 0.25}},
	{{0, 1.2}}, // legato
}

var classicalPatternsLow = [][]rhythmStep{
	{{0, 1.5}},
	{{0, 1}},
	{{0, 2}}, // very sustained
	{},       // rest
}

// classicalRhythm picks a sub-beat rhythm pattern from the palette for
// the current intensity band.
func (r *BeatRenderer) classicalRhythm(intensity float64) []rhythmStep {
	var palette [][]rhythmStep
	switch {
	case intensity > 0.7:
		palette = classicalPatternsHigh
	case intensity > 0.4:
		palette = classicalPatternsMid
	default:
		palette = classicalPatternsLow
	}
	return palette[r.rng.Intn(len(palette))]
}

func (r *BeatRenderer) renderClassicalLead(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerLead].Active {
		return
	}
	rhythm := r.classicalRhythm(snap.intensity)

	r.renderClassicalPiano(buffer, snap, pos, beatDur, rhythm)
	r.renderClassicalStrings(buffer, snap, beatDur, rhythm)

	// Woodwind is color, not every beat.
	if pos == 0 || (pos == 2 && snap.intensity > 0.5) {
		r.renderClassicalWoodwind(buffer, snap, beatDur)
	}
}

func (r *BeatRenderer) renderClassicalPiano(buffer []float64, snap *beatSnapshot, pos int, beatDur float64, rhythm []rhythmStep) {
	sus := float64(snap.sustainPct)

	for _, step := range rhythm {
		start := int(step.offset * float64(len(buffer)))
		noteDur := beatDur * step.duration * (0.5 + sus/100*0.8)

		freq := r.pickConsonantNote(snap.leadScale, snap.chord)
		piano := r.synth.PianoNote(freq, noteDur, 0.75)

		// Left hand chord under the downbeat.
		if pos == 0 && step.offset == 0 {
			lh := snap.chord
			if len(lh) > 3 {
				lh = lh[:3]
			}
			for _, cf := range lh {
				sig := r.synth.PianoNote(cf/2, beatDur*1.5, 0.45)
				r.mixClip(buffer, sig, start, 0.4)
			}
		}

		// Occasional octave doubling.
		if r.rng.Float64() < 0.15 && snap.intensity > 0.5 {
			oct := r.synth.PianoNote(freq*2, noteDur*0.7, 0.35)
			for i := 0; i < len(piano) && i < len(oct); i++ {
				piano[i] += oct[i]
			}
		}

		piano = r.fx.Reverb(piano, 0.3, 0.25)
		r.mixClip(buffer, piano, start, 0.7)
	}
}

// vibratoVoice renders a sine with slow pitch vibrato via phase
// accumulation.
func (r *BeatRenderer) vibratoVoice(freq, duration, vibRate, vibDepth float64) []float64 {
	n := int(r.sampleRate * duration)
	out := make([]float64, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / r.sampleRate
		vib := 1 + vibDepth*math.Sin(2*math.Pi*vibRate*t)
		phase += freq * vib / r.sampleRate
		out[i] = math.Sin(2 * math.Pi * phase)
	}
	return out
}

func (r *BeatRenderer) renderClassicalStrings(buffer []float64, snap *beatSnapshot, beatDur float64, rhythm []rhythmStep) {
	if len(rhythm) == 0 {
		return
	}
	sus := float64(snap.sustainPct)

	first := rhythm[0]
	strDur := beatDur * clampMin(first.duration, 0.8) * (0.6 + sus/100*0.8)
	start := int(first.offset * float64(len(buffer)))

	freq := r.pickConsonantNote(snap.leadScale, snap.chord)
	n := int(r.sampleRate * strDur)
	if n < 2 {
		return
	}

	v1 := r.vibratoVoice(freq, strDur, 5.5, 0.004)
	v1 = r.synth.ADSR(v1, 0.15, 0.1, 0.85, 0.25)

	v2 := r.vibratoVoice(freq*1.002, strDur, 5.5, 0.004)
	v2 = r.synth.ADSR(v2, 0.2, 0.1, 0.8, 0.3)

	cello := r.vibratoVoice(freq/2, strDur, 4.5, 0.003)
	celloOvertone := r.vibratoVoice(freq, strDur, 4.5, 0.003)
	for i := range cello {
		cello[i] += 0.25 * celloOvertone[i]
	}
	cello = r.synth.ADSR(cello, 0.25, 0.15, 0.8, 0.35)

	strings := make([]float64, n)
	for i := range strings {
		strings[i] = v1[i]*0.35 + v2[i]*0.25 + cello[i]*0.3
	}
	strings = r.fx.Reverb(strings, 0.45, 0.35)
	r.mixClip(buffer, strings, start, 0.6)

	// Harmony voice above the section.
	hfreq := r.pickConsonantNote(snap.leadScale, snap.chord)
	hv := r.vibratoVoice(hfreq, strDur, 5.5, 0.004)
	hv = r.synth.ADSR(hv, 0.25, 0.1, 0.7, 0.3)
	for i := range hv {
		hv[i] *= 0.2
	}
	hv = r.fx.Reverb(hv, 0.4, 0.3)
	r.mixClip(buffer, hv, start, 0.4)
}

func (r *BeatRenderer) renderClassicalWoodwind(buffer []float64, snap *beatSnapshot, beatDur float64) {
	sus := float64(snap.sustainPct)
	dur := beatDur * (0.6 + sus/100*0.6)
	n := int(r.sampleRate * dur)
	if n < 2 {
		return
	}

	freq := r.pickConsonantNote(snap.leadScale, snap.chord)

	ww := make([]float64, n)
	for i := range ww {
		t := float64(i) / r.sampleRate
		ww[i] = math.Sin(2*math.Pi*freq*t)*0.6 +
			math.Sin(2*math.Pi*freq*2*t)*0.2 +
			math.Sin(2*math.Pi*freq*3*t)*0.1
	}

	ww = r.synth.ADSR(ww, 0.12, 0.1, 0.6, 0.2)
	for i := range ww {
		t := float64(i) / r.sampleRate
		ww[i] *= 1 + 0.004*math.Sin(2*math.Pi*5*t)
	}
	ww = r.synth.LowPass(ww, 3500)
	ww = r.fx.Reverb(ww, 0.3, 0.25)
	r.mixClip(buffer, ww, 0, 0.25)
}

func (r *BeatRenderer) renderClassicalCadence(buffer []float64, snap *beatSnapshot, beatDur float64) {
	// String swell: sustained chord with a crescendo-decrescendo arc.
	n := int(r.sampleRate * beatDur * 1.5)
	if n > len(buffer) {
		n = len(buffer)
	}
	if n < 2 {
		return
	}
	top := snap.chord
	if len(top) > 3 {
		top = top[:3]
	}

	swell := make([]float64, n)
	for _, f := range top {
		voice := r.vibratoVoice(f/2, float64(n)/r.sampleRate, 5, 0.005)
		for i := 0; i < len(voice) && i < n; i++ {
			swell[i] += voice[i] * 0.15
		}
	}
	for i := range swell {
		swell[i] *= math.Sin(math.Pi * float64(i) / float64(n))
	}
	swell = r.fx.Reverb(swell, 0.5, 0.4)
	r.mixClip(buffer, swell, 0, 0.5)
}

// renderCadenceFlourish layers a style-specific closing color during
// the cadence phase of the outro.
func (r *BeatRenderer) renderCadenceFlourish(buffer []float64, snap *beatSnapshot, beatDur float64) {
	switch snap.style {
	case StyleClassical:
		r.renderClassicalCadence(buffer, snap, beatDur)
	case StyleRock:
		r.renderRockCadence(buffer, snap, beatDur)
	case StylePop:
		r.renderPopCadence(buffer, snap, beatDur)
	case StyleEDM:
		r.renderEDMCadence(buffer, snap, beatDur)
	}
}
