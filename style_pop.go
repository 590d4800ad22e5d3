package muse

// Pop: down-up strummed clean guitar with chorus shimmer, a punchy
// lead with the occasional octave-jump hook.

func (r *BeatRenderer) renderPopLead(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerLead].Active {
		return
	}
	scale := snap.leadScale
	freq := r.pickLeadNote(scale)
	sus := float64(snap.sustainPct)
	dur := beatDur * (0.2 + sus/100*1.8)

	// Octave-up hook for catchiness.
	if r.rng.Float64() < 0.15 && snap.intensity > 0.5 {
		freq *= 2
	}

	lead := r.guitar.PlayNote(freq, dur, 0.8, ToneClean, sus)
	lead = r.fx.Chorus(lead, 1.5, 3, snap.chorusMix)
	if snap.delayMix > 0 {
		lead = r.fx.Delay(lead, 300, 0.35, snap.delayMix)
	}
	r.mixClip(buffer, lead, 0, 0.8)

	// Eighth-note answer phrase at high intensity.
	if snap.intensity > 0.6 && r.rng.Float64() < 0.6 {
		freq2 := r.pickLeadNote(scale)
		lead2 := r.guitar.PlayNote(freq2, dur*0.5, 0.65, ToneClean, sus)
		lead2 = r.fx.Chorus(lead2, 1.5, 3, snap.chorusMix*0.5)
		r.mixClip(buffer, lead2, len(buffer)/2, 0.6)
	}
}

func (r *BeatRenderer) renderPopRhythm(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerRhythm].Active || len(snap.chord) == 0 {
		return
	}
	sus := float64(snap.sustainPct)
	chord := make([]float64, len(snap.chord))
	for i, f := range snap.chord {
		chord[i] = f * 2
	}
	half := len(buffer) / 2

	// Downstroke: strong, slower strum, accented on beats 1 and 3.
	downVel := 0.6
	if pos%2 == 0 {
		downVel = 0.8
	}
	downDur := beatDur * (0.3 + sus/100*0.4)
	down := r.guitar.PlayChord(chord, downDur, downVel, ToneClean, 0.03)
	down = r.fx.Chorus(down, 1.5, 3, 0.25)
	r.mixClip(buffer, down, 0, 0.75)

	// Upstroke on the "and": lighter, faster, top strings only.
	if snap.intensity > 0.3 {
		upChord := chord
		if len(chord) >= 3 {
			upChord = chord[len(chord)-3:]
		}
		up := r.guitar.PlayChord(upChord, beatDur*0.25, 0.45, ToneClean, 0.015)
		up = r.fx.Chorus(up, 1.5, 3, 0.2)
		r.mixClip(buffer, up, half, 0.55)
	}
}

func (r *BeatRenderer) renderPopCadence(buffer []float64, snap *beatSnapshot, beatDur float64) {
	if len(snap.chord) == 0 {
		return
	}
	// Clean chord with chorus shimmer and a delay tail.
	top := snap.chord
	if len(top) > 3 {
		top = top[:3]
	}
	chord := make([]float64, len(top))
	for i, f := range top {
		chord[i] = f * 2
	}
	sig := r.guitar.PlayChord(chord, beatDur, 0.5, ToneClean, 0.04)
	sig = r.fx.Chorus(sig, 1.5, 3, 0.5)
	sig = r.fx.Delay(sig, 350, 0.4, 0.4)
	r.mixClip(buffer, sig, 0, 0.4)
}
