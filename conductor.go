package muse

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/lamusique/muse/musictheory"
)

// State is the playback phase of the Conductor. Transitions only move
// forward: setup -> playing -> outro -> finished.
type State uint8

const (
	StateSetup State = iota
	StatePlaying
	StateOutro
	StateFinished
)

var stateNames = [...]string{
	StateSetup:    "setup",
	StatePlaying:  "playing",
	StateOutro:    "outro",
	StateFinished: "finished",
}

func (s State) String() string { return stateNames[s] }

// OutroPhase is the sub-state of the three-phase ending sequence.
type OutroPhase uint8

const (
	OutroNone OutroPhase = iota
	OutroApproach
	OutroCadence
	OutroRingout
)

var outroPhaseNames = [...]string{
	OutroNone:     "none",
	OutroApproach: "approach",
	OutroCadence:  "cadence",
	OutroRingout:  "ringout",
}

func (p OutroPhase) String() string { return outroPhaseNames[p] }

// Style selects the arrangement personality.
type Style uint8

const (
	StyleRock Style = iota
	StylePop
	StyleEDM
	StyleClassical

	numStyles
)

var styleNames = [...]string{
	StyleRock:      "rock",
	StylePop:       "pop",
	StyleEDM:       "edm",
	StyleClassical: "classical",
}

func (s Style) String() string { return styleNames[s] }

// ErrUnknownStyle is reported for style names outside the closed set.
var ErrUnknownStyle = errors.New("unknown style")

// ParseStyle maps a style name to its enum value.
func ParseStyle(name string) (Style, error) {
	for s, n := range styleNames {
		if n == name {
			return Style(s), nil
		}
	}
	return 0, ErrUnknownStyle
}

// Layer identifies an independently toggleable musical part.
type Layer uint8

const (
	LayerKick Layer = iota
	LayerSnare
	LayerHiHat
	LayerBass
	LayerRhythm
	LayerPad
	LayerArp
	LayerLead
	LayerHarmony
	LayerRiser

	numLayers
)

var layerNames = [...]string{
	LayerKick:    "kick",
	LayerSnare:   "snare",
	LayerHiHat:   "hihat",
	LayerBass:    "bass",
	LayerRhythm:  "rhythm",
	LayerPad:     "pad",
	LayerArp:     "arp",
	LayerLead:    "lead",
	LayerHarmony: "harmony",
	LayerRiser:   "riser",
}

func (l Layer) String() string { return layerNames[l] }

// ErrUnknownLayer is reported for layer names outside the closed set.
var ErrUnknownLayer = errors.New("unknown layer")

// ParseLayer maps a layer name to its enum value.
func ParseLayer(name string) (Layer, error) {
	for l, n := range layerNames {
		if n == name {
			return Layer(l), nil
		}
	}
	return 0, ErrUnknownLayer
}

// LayerState is one layer's activation flag and mix volume.
type LayerState struct {
	Active bool
	Volume float64
}

// ErrUnknownParam is reported by SetParam for unrecognized names.
var ErrUnknownParam = errors.New("unknown parameter")

// ErrUnknownSection is reported by ApplySection for unknown presets.
var ErrUnknownSection = errors.New("unknown section")

// Conductor owns the musical state: tempo, key, current chord, style,
// layer activations, effect levels and the playback state machine
// including the three-phase outro. All mutations happen under a single
// mutex; the renderer reads one consistent snapshot per beat.
type Conductor struct {
	mu sync.Mutex

	state State
	bpm   float64

	key         *musictheory.Key
	progression *musictheory.Progression
	chord       []float64

	style     Style
	intensity float64
	tension   float64

	distortionPct int
	sustainPct    int
	delayMix      float64
	reverbMix     float64
	chorusMix     float64

	layers [numLayers]LayerState

	outroPhase     OutroPhase
	outroStep      int
	outroVolume    float64
	entryBPM       float64
	entryIntensity float64
	preOutroLayers [numLayers]bool

	barCount int
	rng      *rand.Rand
}

// NewConductor creates a conductor in the setup state with the
// original defaults: 110 BPM, C minor, rock style. A nil rng falls
// back to a wall-clock-seeded source.
func NewConductor(rng *rand.Rand) *Conductor {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	key, _ := musictheory.NewKey("C", musictheory.ScaleMinor)
	chord, _ := key.Chord(1, musictheory.ChordOptions{})

	c := &Conductor{
		state:       StateSetup,
		bpm:         110,
		key:         key,
		progression: musictheory.NewProgression(key, rng),
		chord:       chord,
		style:       StyleRock,
		intensity:   0.5,

		distortionPct: 60,
		sustainPct:    70,
		delayMix:      0.4,
		reverbMix:     0.35,
		chorusMix:     0.3,

		outroVolume: 1,
		rng:         rng,
	}

	c.layers = [numLayers]LayerState{
		LayerKick:    {true, 0.9},
		LayerSnare:   {true, 0.7},
		LayerHiHat:   {true, 0.5},
		LayerBass:    {true, 0.8},
		LayerRhythm:  {false, 0.6},
		LayerPad:     {true, 0.5},
		LayerArp:     {false, 0.6},
		LayerLead:    {true, 0.7},
		LayerHarmony: {false, 0.6},
		LayerRiser:   {true, 0.5},
	}
	return c
}

// State returns the current playback state.
func (c *Conductor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start transitions from setup to playing.
func (c *Conductor) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSetup {
		c.state = StatePlaying
		c.barCount = 0
	}
}

// TriggerOutro begins the three-phase ending sequence: approach
// (gentle slowdown, IV->ii), cadence (V7->I authentic cadence) and
// ring-out (deep ritardando with a master fade to silence). It is a
// no-op once the outro has already begun.
func (c *Conductor) TriggerOutro() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateOutro || c.state == StateFinished {
		return
	}

	c.state = StateOutro
	c.outroStep = 0
	c.outroPhase = OutroApproach
	c.outroVolume = 1
	c.entryBPM = c.bpm
	c.entryIntensity = c.intensity

	for l := range c.layers {
		c.preOutroLayers[l] = c.layers[l].Active
	}

	// A riser sounds wrong in an ending.
	c.layers[LayerRiser].Active = false

	// Open the approach on the subdominant.
	if chord, err := c.key.Chord(4, musictheory.ChordOptions{}); err == nil {
		c.chord = chord
	}
}

// Update advances the musical state by one control tick. While
// playing it requests the next chord of the progression; during the
// outro it advances the ending sequence one step.
func (c *Conductor) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateOutro:
		c.updateOutro()
	case StatePlaying:
		phrasePos := c.barCount % 4
		c.chord = c.progression.Next(0.3+c.tension*0.4, phrasePos)
		c.barCount++
	}
}

func (c *Conductor) updateOutro() {
	c.outroStep++

	switch {
	case c.outroStep <= 4: // approach: gentle slowdown, IV -> ii
		c.outroPhase = OutroApproach
		c.bpm = clampMin(c.bpm*0.97, 30)

		progress := float64(c.outroStep) / 4
		c.intensity = c.entryIntensity * (1 - progress*0.6)

		if c.outroStep == 3 {
			// ii, preparing the dominant.
			c.setChord(2, false)
		}

		switch c.outroStep {
		case 1:
			c.layers[LayerKick].Active = false
			c.layers[LayerHiHat].Active = false
			c.layers[LayerRiser].Active = false
		case 2:
			c.layers[LayerSnare].Active = false
			c.layers[LayerArp].Active = false
		case 3:
			c.layers[LayerRhythm].Active = false
		case 4:
			c.layers[LayerBass].Active = false
			c.layers[LayerPad].Active = true
			c.layers[LayerLead].Active = true
			c.layers[LayerHarmony].Active = true
		}

	case c.outroStep <= 8: // cadence: V7 -> I
		c.outroPhase = OutroCadence
		c.bpm = clampMin(c.bpm*0.93, 25)

		progress := float64(c.outroStep-4) / 4
		c.intensity = clampMin(0.35-progress*0.15, 0.1)

		switch c.outroStep {
		case 5:
			// Dominant seventh: maximum tension before resolution.
			c.setChord(5, true)
		case 7:
			// Tonic: resolution.
			c.setChord(1, false)
		}

		c.layers[LayerPad].Active = true
		c.layers[LayerLead].Active = true
		c.layers[LayerHarmony].Active = true

	case c.outroStep <= 15: // ring-out: hold tonic, fade to silence
		c.outroPhase = OutroRingout
		c.bpm = clampMin(c.bpm*0.88, 20)
		c.setChord(1, false)
		c.intensity = clampMin(0.2-float64(c.outroStep-8)*0.025, 0.05)

		// Exponential ease-out so the fade feels natural.
		progress := float64(c.outroStep-8) / 7
		c.outroVolume = clampMin(math.Pow(1-progress, 1.5), 0)

		if c.outroStep >= 11 {
			c.layers[LayerHarmony].Active = false
		}
		if c.outroStep >= 13 {
			c.layers[LayerLead].Active = false
		}

	default:
		c.outroVolume = 0
		c.state = StateFinished
	}
}

func (c *Conductor) setChord(degree int, add7th bool) {
	if chord, err := c.key.Chord(degree, musictheory.ChordOptions{Add7th: add7th}); err == nil {
		c.chord = chord
	}
}

// ApplyStyle reconfigures layers and default effect levels for the
// given style.
func (c *Conductor) ApplyStyle(style Style) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = style

	setActive := func(active ...Layer) {
		on := map[Layer]bool{}
		for _, l := range active {
			on[l] = true
		}
		for l := Layer(0); l < numLayers; l++ {
			c.layers[l].Active = on[l]
		}
	}

	switch style {
	case StyleRock:
		c.layers[LayerKick].Active = true
		c.layers[LayerSnare].Active = true
		c.layers[LayerHiHat].Active = true
		c.layers[LayerBass].Active = true
		c.layers[LayerRhythm].Active = true
		c.layers[LayerPad].Active = false
		c.layers[LayerLead].Active = true
		c.layers[LayerHarmony].Active = false
		c.layers[LayerArp].Active = false
		c.distortionPct = 60
		c.delayMix = 0.2
		c.reverbMix = 0.15
		c.sustainPct = 60

	case StylePop:
		c.layers[LayerKick].Active = true
		c.layers[LayerSnare].Active = true
		c.layers[LayerHiHat].Active = true
		c.layers[LayerBass].Active = true
		c.layers[LayerRhythm].Active = true
		c.layers[LayerPad].Active = true
		c.layers[LayerLead].Active = true
		c.layers[LayerHarmony].Active = false
		c.layers[LayerArp].Active = false
		c.distortionPct = 10
		c.delayMix = 0.3
		c.reverbMix = 0.25
		c.chorusMix = 0.3
		c.sustainPct = 70

	case StyleEDM:
		setActive(LayerKick, LayerSnare, LayerHiHat, LayerBass,
			LayerPad, LayerLead, LayerArp, LayerRiser)
		c.distortionPct = 0
		c.delayMix = 0.4
		c.reverbMix = 0.3
		c.sustainPct = 50

	case StyleClassical:
		setActive(LayerBass, LayerPad, LayerLead, LayerHarmony, LayerArp)
		c.distortionPct = 0
		c.delayMix = 0.15
		c.reverbMix = 0.4
		c.chorusMix = 0.2
		c.sustainPct = 85
	}
}

// SetLayer toggles a layer by name.
func (c *Conductor) SetLayer(name string, active bool) error {
	l, err := ParseLayer(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[l].Active = active
	return nil
}

// SetParam dispatches a pre-validated numeric control value by name.
// Recognized names: bpm, intensity, distortion, delay, reverb, chorus,
// sustain. Percentages are clamped defensively. The key is changed via
// SetKey since it is not numeric.
func (c *Conductor) SetParam(name string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "bpm":
		c.bpm = clampMin(value, 1)
	case "intensity":
		c.intensity = clamp(value/100, 0, 1)
	case "distortion":
		c.distortionPct = clamp(int(value), 0, 100)
	case "delay":
		c.delayMix = clamp(value/100, 0, 1)
	case "reverb":
		c.reverbMix = clamp(value/100, 0, 1)
	case "chorus":
		c.chorusMix = clamp(value/100, 0, 1)
	case "sustain":
		c.sustainPct = clamp(int(value), 0, 100)
	default:
		return ErrUnknownParam
	}
	return nil
}

// SetKey reparses the key (e.g. "A maj", "c#") and rebuilds the
// progression generator around it.
func (c *Conductor) SetKey(desc string) error {
	key, err := musictheory.ParseKey(desc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.progression = musictheory.NewProgression(key, c.rng)
	return nil
}

// ApplySection applies one of the arrangement presets: intro, verse,
// chorus, build, break.
func (c *Conductor) ApplySection(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "intro":
		c.intensity = 0.2
		for l := Layer(0); l < numLayers; l++ {
			c.layers[l].Active = l == LayerPad || l == LayerArp
		}
	case "verse":
		c.intensity = 0.4
		c.layers[LayerPad].Active = true
		c.layers[LayerBass].Active = true
		c.layers[LayerKick].Active = true
		c.layers[LayerHiHat].Active = true
		c.layers[LayerSnare].Active = true
		c.layers[LayerRhythm].Active = c.style == StyleRock || c.style == StylePop
		c.layers[LayerLead].Active = true
		c.layers[LayerArp].Active = false
		c.layers[LayerHarmony].Active = false
		c.layers[LayerRiser].Active = false
	case "chorus":
		c.intensity = 0.8
		for l := Layer(0); l < numLayers; l++ {
			c.layers[l].Active = true
		}
		c.layers[LayerRiser].Active = false
	case "build":
		c.intensity = 0.7
		c.layers[LayerRiser].Active = true
		c.layers[LayerSnare].Active = true
		c.layers[LayerKick].Active = true
		c.layers[LayerLead].Active = true
		c.layers[LayerHarmony].Active = false
	case "break":
		c.intensity = 0.1
		c.layers[LayerPad].Active = true
		for _, l := range []Layer{LayerKick, LayerSnare, LayerHiHat,
			LayerRhythm, LayerLead, LayerHarmony, LayerArp} {
			c.layers[l].Active = false
		}
	default:
		return ErrUnknownSection
	}
	return nil
}

// LayerStatus is one row of the Status report.
type LayerStatus struct {
	Name   string
	Active bool
}

// Status is a read-only snapshot of the conductor for status printing.
type Status struct {
	State         State
	BPM           float64
	Key           string
	Scale         string
	Style         Style
	Intensity     float64
	DistortionPct int
	SustainPct    int
	DelayMix      float64
	ReverbMix     float64
	ChorusMix     float64
	OutroPhase    OutroPhase
	Layers        []LayerStatus
}

// Status returns a consistent snapshot of the public state.
func (c *Conductor) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	layers := make([]LayerStatus, numLayers)
	for l := Layer(0); l < numLayers; l++ {
		layers[l] = LayerStatus{Name: l.String(), Active: c.layers[l].Active}
	}
	return Status{
		State:         c.state,
		BPM:           c.bpm,
		Key:           c.key.RootName,
		Scale:         c.key.Scale.String(),
		Style:         c.style,
		Intensity:     c.intensity,
		DistortionPct: c.distortionPct,
		SustainPct:    c.sustainPct,
		DelayMix:      c.delayMix,
		ReverbMix:     c.reverbMix,
		ChorusMix:     c.chorusMix,
		OutroPhase:    c.outroPhase,
		Layers:        layers,
	}
}

// beatSnapshot is the per-beat view of conductor state consumed by the
// renderer. It is taken once per beat under the conductor lock, so a
// beat never observes a torn control update.
type beatSnapshot struct {
	state         State
	bpm           float64
	chord         []float64
	leadScale     []float64
	style         Style
	intensity     float64
	distortionPct int
	sustainPct    int
	delayMix      float64
	reverbMix     float64
	chorusMix     float64
	layers        [numLayers]LayerState
	outroPhase    OutroPhase
	outroVolume   float64
}

func (c *Conductor) beatSnapshot() beatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	chord := make([]float64, len(c.chord))
	copy(chord, c.chord)

	// Two octaves of the scale shifted down one octave: the lead's
	// mid-range working set.
	raw := c.key.ScaleNotes(2)
	leadScale := make([]float64, len(raw))
	for i, f := range raw {
		leadScale[i] = f / 2
	}

	return beatSnapshot{
		state:         c.state,
		bpm:           c.bpm,
		chord:         chord,
		leadScale:     leadScale,
		style:         c.style,
		intensity:     c.intensity,
		distortionPct: c.distortionPct,
		sustainPct:    c.sustainPct,
		delayMix:      c.delayMix,
		reverbMix:     c.reverbMix,
		chorusMix:     c.chorusMix,
		layers:        c.layers,
		outroPhase:    c.outroPhase,
		outroVolume:   c.outroVolume,
	}
}
