package muse

import (
	"math"
	"math/rand"
	"time"
)

// DefaultSampleRate is the only sample rate the engine renders at.
const DefaultSampleRate = 44100

// RendererConfig configures a BeatRenderer.
//
// These settings can't be changed after the renderer is created.
type RendererConfig struct {
	// SampleRate of the produced audio.
	// A zero value assumes 44100.
	SampleRate float64

	// Seed initializes the random source driving every stochastic
	// decision (melody walks, ghost hits, rhythm patterns), making
	// renders reproducible. A zero value means an arbitrary seed.
	Seed int64
}

// BeatRenderer turns conductor state into audio, one beat at a time.
// It owns the instruments, the effects chain and the cross-beat carry
// buffer. It is not safe for concurrent use; the scheduler drives it
// from a single producer goroutine.
type BeatRenderer struct {
	conductor  *Conductor
	sampleRate float64
	rng        *rand.Rand

	synth  *Synth
	guitar *Guitar
	drums  *DrumKit
	fx     *FX

	carry carryBuffer

	beatCount   int
	leadNoteIdx int
	finished    bool
}

func NewBeatRenderer(c *Conductor, config RendererConfig) *BeatRenderer {
	if config.SampleRate == 0 {
		config.SampleRate = DefaultSampleRate
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(config.Seed))

	return &BeatRenderer{
		conductor:  c,
		sampleRate: config.SampleRate,
		rng:        rng,
		synth:      NewSynth(config.SampleRate, rng),
		guitar:     NewGuitar(config.SampleRate, rng),
		drums:      NewDrumKit(config.SampleRate, rng),
		fx:         NewFX(config.SampleRate, rng),
		carry:      newCarryBuffer(int(config.SampleRate * 4)),

		// Start the melody in the middle of a ~14-note scale.
		leadNoteIdx: 7,
	}
}

// Finished reports whether the renderer has observed the finished
// state; the scheduler uses it to stop the producer loop.
func (r *BeatRenderer) Finished() bool { return r.finished }

// RenderNextBeat renders one beat of audio at the tempo in effect when
// the call begins. During setup it returns a short silence buffer
// (throttled to avoid a busy spin); once finished it returns a fixed
// 1024-sample silence buffer.
func (r *BeatRenderer) RenderNextBeat() []float64 {
	if r.conductor.State() == StateSetup {
		time.Sleep(50 * time.Millisecond)
		return make([]float64, int(r.sampleRate*0.1))
	}

	// Advance the state machine: every beat during the outro for a
	// smooth ritardando, every 4 beats while playing.
	switch r.conductor.State() {
	case StateOutro:
		r.conductor.Update()
	case StatePlaying:
		if r.beatCount%4 == 0 {
			r.conductor.Update()
		}
	}

	snap := r.conductor.beatSnapshot()
	if snap.state == StateFinished {
		r.finished = true
		return make([]float64, 1024)
	}

	beatDur := 60 / snap.bpm
	numSamples := int(math.Round(r.sampleRate * beatDur))
	buffer := make([]float64, numSamples)

	r.carry.consume(buffer)

	pos := r.beatCount % 4
	isOutro := snap.state == StateOutro

	r.renderDrums(buffer, &snap, pos)
	r.renderBass(buffer, &snap, pos, beatDur)
	r.renderRiser(buffer, &snap, beatDur)

	switch snap.style {
	case StyleRock:
		r.renderPad(buffer, &snap, pos, beatDur)
		r.renderRockRhythm(buffer, &snap, pos, beatDur)
		r.renderRockLead(buffer, &snap, pos, beatDur)
	case StylePop:
		r.renderPad(buffer, &snap, pos, beatDur)
		r.renderPopRhythm(buffer, &snap, pos, beatDur)
		r.renderPopLead(buffer, &snap, pos, beatDur)
	case StyleEDM:
		r.renderPad(buffer, &snap, pos, beatDur)
		r.renderArp(buffer, &snap, beatDur)
		r.renderEDMLead(buffer, &snap, beatDur)
	case StyleClassical:
		r.renderPad(buffer, &snap, pos, beatDur)
		r.renderArp(buffer, &snap, beatDur)
		r.renderClassicalLead(buffer, &snap, pos, beatDur)
	}

	if isOutro && snap.outroPhase == OutroCadence {
		r.renderCadenceFlourish(buffer, &snap, beatDur)
	}

	// Master chain: reverb (boosted through the ending for a natural
	// tail), soft limiter, outro fade.
	reverbMix := snap.reverbMix
	if isOutro {
		switch snap.outroPhase {
		case OutroCadence:
			reverbMix = clampMax(reverbMix+0.15, 1)
		case OutroRingout:
			reverbMix = clampMax(reverbMix+0.3, 1)
		}
	}
	if reverbMix > 0 {
		buffer = r.fx.Reverb(buffer, 0.5+reverbMix*0.4, reverbMix)
	}

	for i, v := range buffer {
		buffer[i] = math.Tanh(v*0.85) * 0.9
	}
	if isOutro {
		for i := range buffer {
			buffer[i] *= snap.outroVolume
		}
	}

	r.beatCount++
	return buffer
}

// mixClip additively deposits clip*volume into buffer starting at
// offset. Whatever extends past the buffer end goes into the carry
// buffer at the matching relative offset, so no energy is ever
// discarded.
func (r *BeatRenderer) mixClip(buffer, clip []float64, offset int, volume float64) {
	if len(clip) == 0 {
		return
	}
	if offset < len(buffer) {
		writeLen := len(clip)
		if writeLen > len(buffer)-offset {
			writeLen = len(buffer) - offset
		}
		for i := 0; i < writeLen; i++ {
			buffer[offset+i] += clip[i] * volume
		}
		if writeLen < len(clip) {
			r.carry.add(clip[writeLen:], 0, volume)
		}
	} else {
		r.carry.add(clip, offset-len(buffer), volume)
	}
}

// ---- shared layers ----

func (r *BeatRenderer) renderDrums(buffer []float64, snap *beatSnapshot, pos int) {
	numSamples := len(buffer)
	intensity := snap.intensity

	if snap.layers[LayerKick].Active {
		if pos == 0 || (pos == 2 && intensity > 0.5) {
			r.mixClip(buffer, r.drums.Kick(), 0, 0.9)
		}
	}

	if snap.layers[LayerSnare].Active {
		if pos == 2 {
			r.mixClip(buffer, r.drums.Snare(), 0, 0.8)
		}
		// Ghost hit late in the beat.
		if intensity > 0.6 && r.rng.Float64() < 0.2 {
			r.mixClip(buffer, r.drums.Snare(), numSamples*3/4, 0.4*0.4)
		}
		// Tom fill every 16 beats.
		if r.beatCount%16 == 15 && intensity > 0.7 {
			tomHi := r.drums.Tom(150, 0.1)
			tomLo := r.drums.Tom(100, 0.1)
			step := numSamples / 4
			r.mixClip(buffer, tomHi, 0, 0.8)
			r.mixClip(buffer, tomHi, step, 0.7)
			r.mixClip(buffer, tomLo, step*2, 0.8)
			r.mixClip(buffer, tomLo, step*3, 0.7)
		}
	}

	if snap.layers[LayerHiHat].Active {
		vol := 0.4 + intensity*0.3
		r.mixClip(buffer, r.drums.HiHat(false), 0, vol)
		open := intensity > 0.7 && pos == 3
		r.mixClip(buffer, r.drums.HiHat(open), numSamples/2, vol*0.8)
	}
}

func (r *BeatRenderer) renderBass(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerBass].Active || len(snap.chord) == 0 {
		return
	}
	freq := snap.chord[0] / 2
	dur := beatDur * 0.8

	if pos == 0 {
		bass := r.synth.Wave(freq, dur, WaveSaw, 0.6)
		bass = r.synth.LowPass(bass, 300+snap.intensity*200)
		bass = r.synth.ADSR(bass, 0.05, 0.2, 0.6, 0.2)
		r.mixClip(buffer, bass, 0, 0.8)
	} else if pos == 2 && snap.intensity > 0.4 {
		bass := r.synth.Wave(freq, dur/2, WaveSquare, 0.5)
		bass = r.synth.LowPass(bass, 400)
		bass = r.synth.ADSR(bass, 0.03, 0.1, 0, 0.1)
		r.mixClip(buffer, bass, len(buffer)/2, 0.7)
	}
}

func (r *BeatRenderer) renderPad(buffer []float64, snap *beatSnapshot, pos int, beatDur float64) {
	if !snap.layers[LayerPad].Active || pos != 0 {
		return
	}
	for idx, f := range snap.chord {
		pad := r.synth.Wave(f, beatDur*4, WaveSaw, 0.12)
		pad = r.synth.LowPass(pad, 600+float64(idx)*200)
		pad = r.synth.ADSR(pad, 0.8, 0.1, 0.8, 1.0)

		pad2 := r.synth.Wave(f*1.003, beatDur*4, WaveSaw, 0.12)
		pad2 = r.synth.LowPass(pad2, 600)
		pad2 = r.synth.ADSR(pad2, 0.8, 0.1, 0.8, 1.0)

		for i := range pad {
			pad[i] += pad2[i]
		}
		r.mixClip(buffer, pad, 0, 0.6)
	}
}

func (r *BeatRenderer) renderArp(buffer []float64, snap *beatSnapshot, beatDur float64) {
	if !snap.layers[LayerArp].Active || len(snap.chord) == 0 {
		return
	}
	const arpSpeed = 4
	step := len(buffer) / arpSpeed
	for i := 0; i < arpSpeed; i++ {
		noteIdx := (r.beatCount*arpSpeed + i) % len(snap.chord)
		freq := snap.chord[noteIdx] * 4
		sig := r.synth.Wave(freq, 0.1, WaveSquare, 0.1)
		sig = r.synth.ADSR(sig, 0.005, 0.05, 0, 0.05)
		sig = r.synth.LowPass(sig, 2000)
		r.mixClip(buffer, sig, step*i, 0.4)
	}
}

func (r *BeatRenderer) renderRiser(buffer []float64, snap *beatSnapshot, beatDur float64) {
	if !snap.layers[LayerRiser].Active {
		return
	}
	loopPos := r.beatCount % 16
	if loopPos < 12 || snap.intensity <= 0.4 {
		return
	}
	// Noise sweep over the last 4 beats of every 16-beat cycle.
	sweepProgress := float64(loopPos-12) / 4
	sig := r.synth.Wave(100, beatDur, WaveNoise, 0.15*snap.intensity)
	cutoff := 200 + 8000*(sweepProgress+0.125)
	sig = r.synth.LowPass(sig, cutoff)
	r.mixClip(buffer, sig, 0, 0.4)
}

// ---- melody pickers ----

// weightedStep draws one of steps with the given weights.
func (r *BeatRenderer) weightedStep(steps []int, weights []float64) int {
	roll := r.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if roll < acc {
			return steps[i]
		}
	}
	return steps[len(steps)-1]
}

// pickLeadNote walks a stateful index over the lead scale with a
// center bias: 70% pull toward the middle of the range, 20% free
// stepwise motion, 10% wide jump.
func (r *BeatRenderer) pickLeadNote(scale []float64) float64 {
	if len(scale) == 0 {
		return 0
	}
	center := len(scale) / 2
	idx := clamp(r.leadNoteIdx, 0, len(scale)-1)

	roll := r.rng.Float64()
	var step int
	switch {
	case roll < 0.70:
		switch {
		case idx < center-2:
			step = 1 + r.rng.Intn(2)
		case idx > center+2:
			step = -(1 + r.rng.Intn(2))
		default:
			// In the sweet spot, small movements.
			step = r.weightedStep([]int{-1, 0, 1}, []float64{0.35, 0.2, 0.45})
		}
	case roll < 0.90:
		step = r.weightedStep([]int{-2, -1, 1, 2}, []float64{0.15, 0.35, 0.35, 0.15})
	default:
		step = r.weightedStep([]int{-4, -3, 3, 4}, []float64{0.2, 0.3, 0.3, 0.2})
	}

	idx = clamp(idx+step, 0, len(scale)-1)
	r.leadNoteIdx = idx
	return scale[idx]
}

// pickConsonantNote biases note choice toward chord tones: 60% of the
// time it moves to the chord tone nearest (by scale index) to the
// current position, otherwise it falls back to the free lead walk.
func (r *BeatRenderer) pickConsonantNote(scale, chord []float64) float64 {
	var chordIndices []int
	for i, sf := range scale {
		for _, cf := range chord {
			if cf <= 0 {
				continue
			}
			cents := abs(12 * math.Log2(sf/cf))
			octaveCents := math.Mod(cents, 12)
			if octaveCents < 0.5 || octaveCents > 11.5 {
				chordIndices = append(chordIndices, i)
				break
			}
		}
	}

	if r.rng.Float64() < 0.60 && len(chordIndices) > 0 {
		idx := clamp(r.leadNoteIdx, 0, len(scale)-1)
		nearest := chordIndices[0]
		for _, ci := range chordIndices {
			if absInt(ci-idx) < absInt(nearest-idx) {
				nearest = ci
			}
		}
		nearest += r.weightedStep([]int{-1, 0, 1}, []float64{0.25, 0.5, 0.25})
		nearest = clamp(nearest, 0, len(scale)-1)
		r.leadNoteIdx = nearest
		return scale[nearest]
	}
	return r.pickLeadNote(scale)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
