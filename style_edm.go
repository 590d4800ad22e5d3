package muse

// EDM: synth-only leads alternating saw and square, a 16th-note
// sub-pattern with filter modulation at high intensity.

func (r *BeatRenderer) renderEDMLead(buffer []float64, snap *beatSnapshot, beatDur float64) {
	if !snap.layers[LayerLead].Active {
		return
	}
	scale := snap.leadScale
	freq := r.pickLeadNote(scale)
	baseIdx := r.leadNoteIdx

	wave := WaveSaw
	if r.rng.Float64() <= 0.3 {
		wave = WaveSquare
	}

	if snap.intensity > 0.7 {
		// 16th-note sub-pattern; sustain controls each sub-note.
		subSustain := 0.3 + float64(snap.sustainPct)/100*0.7
		noteDur := beatDur / 4 * subSustain
		step := len(buffer) / 4
		cutoff := 800 + snap.intensity*4000
		for i := 0; i < 4; i++ {
			idx := clamp(baseIdx+r.rng.Intn(3)-1, 0, len(scale)-1)
			sig := r.synth.Wave(scale[idx]*2, noteDur, wave, 0.4)
			sig = r.synth.ADSR(sig, 0.005, 0.05, 0.3, 0.05)
			sig = r.synth.LowPass(sig, cutoff)
			r.mixClip(buffer, sig, step*i, 0.7)
		}
	} else {
		dur := beatDur * (0.3 + float64(snap.sustainPct)/100*1.2)
		sig := r.synth.Wave(freq*2, dur, wave, 0.4)
		sig = r.synth.ADSR(sig, 0.01, 0.1, 0.5, 0.2)
		sig = r.synth.LowPass(sig, 2000+snap.intensity*3000)
		sig = r.fx.Delay(sig, 250, 0.4, snap.delayMix)
		r.mixClip(buffer, sig, 0, 0.7)
	}
}

func (r *BeatRenderer) renderEDMCadence(buffer []float64, snap *beatSnapshot, beatDur float64) {
	// Descending filter sweep on a pad chord.
	top := snap.chord
	if len(top) > 3 {
		top = top[:3]
	}
	for _, f := range top {
		pad := r.synth.Wave(f, beatDur, WaveSaw, 0.15)
		const sweepSteps = 8
		stepSize := len(pad) / sweepSteps
		if stepSize == 0 {
			continue
		}
		for i := 0; i < sweepSteps; i++ {
			cutoff := clampMin(4000-float64(i)/sweepSteps*3500, 200)
			start := i * stepSize
			end := (i + 1) * stepSize
			if end > len(pad) {
				end = len(pad)
			}
			if end > start {
				chunk := r.synth.LowPass(pad[start:end], cutoff)
				copy(pad[start:end], chunk)
			}
		}
		pad = r.synth.ADSR(pad, 0.3, 0.1, 0.6, 0.5)
		r.mixClip(buffer, pad, 0, 0.4)
	}
}
