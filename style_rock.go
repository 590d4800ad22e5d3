package muse

// Rock: heavy power chords with palm-muted chugs, an always-on
// distorted lead, double-tracked rhythm guitar.

func (r *BeatRenderer) renderRockLead(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerLead].Active {
		return
	}
	scale := snap.leadScale
	distPct := float64(snap.distortionPct)
	distGain := distPct / 5
	sus := float64(snap.sustainPct)
	sustainMult := 0.2 + sus/100*1.8

	freq := r.pickLeadNote(scale)

	if snap.intensity > 0.7 {
		// Double-time: two phrases per beat.
		dur := beatDur * 0.5 * sustainMult

		lead1 := r.guitar.PlayNote(freq, dur, 0.9, ToneClean, sus)
		if distPct > 0 {
			lead1 = r.fx.Distortion(lead1, distGain, clampMax(distPct/60, 1))
		}
		r.mixClip(buffer, lead1, 0, 0.9)

		freq2 := r.pickLeadNote(scale)
		lead2 := r.guitar.PlayNote(freq2, dur, 0.8, ToneClean, sus)
		if distPct > 0 {
			lead2 = r.fx.Distortion(lead2, distGain, clampMax(distPct/60, 1))
		}
		r.mixClip(buffer, lead2, len(buffer)/2, 0.8)
	} else {
		dur := beatDur * sustainMult
		lead := r.guitar.PlayNote(freq, dur, 0.8, ToneClean, sus)
		if distPct > 0 {
			lead = r.fx.Distortion(lead, distGain, clampMax(distPct/60, 1))
		}
		if snap.delayMix > 0 {
			lead = r.fx.Delay(lead, 350, 0.45, snap.delayMix)
		}
		r.mixClip(buffer, lead, 0, 0.9)
	}

	if snap.layers[LayerHarmony].Active {
		hfreq := r.pickLeadNote(scale)
		hsig := r.guitar.PlayNote(hfreq, beatDur*0.8, 0.5, ToneCrunch, sus)
		r.mixClip(buffer, hsig, 0, 0.7)
	}
}

func (r *BeatRenderer) renderRockRhythm(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerRhythm].Active || snap.intensity < 0.2 || len(snap.chord) == 0 {
		return
	}
	distPct := float64(snap.distortionPct)
	sus := float64(snap.sustainPct)

	// Power chord: root, fifth, octave, down an octave for weight.
	root := snap.chord[0]
	powerChord := []float64{root, root * 1.5, root * 2}

	if pos == 0 || pos == 2 {
		dur := beatDur * (0.4 + sus/100*0.6)
		sig := r.guitar.PlayChord(powerChord, dur, 0.9, ToneClean, 0.01)
		if distPct > 5 {
			sig = r.fx.Distortion(sig, distPct/7, clampMax(distPct/40, 1))
		}
		r.mixClip(buffer, sig, 0, 0.75)

		// Double-track, slightly detuned for thickness.
		detuned := []float64{root * 1.003, root * 1.5 * 1.003, root * 2 * 1.003}
		sig2 := r.guitar.PlayChord(detuned, dur, 0.7, ToneClean, 0.015)
		if distPct > 5 {
			sig2 = r.fx.Distortion(sig2, distPct/7, clampMax(distPct/40, 1))
		}
		r.mixClip(buffer, sig2, 0, 0.4)
	} else if snap.intensity > 0.5 {
		// Upbeat: shorter, punchier hit.
		sig := r.guitar.PlayChord(powerChord, beatDur*0.3, 0.6, ToneClean, 0.01)
		if distPct > 5 {
			sig = r.fx.Distortion(sig, distPct/7, clampMax(distPct/40, 1))
		}
		r.mixClip(buffer, sig, 0, 0.55)
	}

	// Palm-muted chugging on the off-beats at high intensity.
	if snap.intensity > 0.7 && (pos == 1 || pos == 3) {
		half := len(buffer) / 2
		for sub := 0; sub < 2; sub++ {
			pm := r.guitar.PlayNote(root, beatDur*0.15, 0.5, ToneClean, 10)
			if distPct > 5 {
				pm = r.fx.Distortion(pm, distPct/8, clampMax(distPct/50, 1))
			}
			r.mixClip(buffer, pm, sub*half, 0.5)
		}
	}
}

func (r *BeatRenderer) renderRockCadence(buffer []float64, snap *beatSnapshot, beatDur float64) {
	if len(snap.chord) == 0 {
		return
	}
	// Final power chord ringing out with a heavy delay tail.
	root := snap.chord[0]
	sig := r.guitar.PlayChord([]float64{root, root * 1.5, root * 2}, beatDur*1.2, 0.7, ToneClean, 0.02)
	sig = r.fx.Distortion(sig, 4, 0.5)
	sig = r.fx.Delay(sig, 450, 0.5, 0.6)
	r.mixClip(buffer, sig, 0, 0.5)
}
