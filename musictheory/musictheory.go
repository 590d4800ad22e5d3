// Package musictheory provides the scale and chord arithmetic behind
// the engine: note-name parsing, equal-temperament frequency
// conversion, diatonic chord construction and progression generation.
//
// All pitches are returned as frequencies in Hz so the synthesis side
// never has to think in note names or MIDI numbers.
package musictheory

import (
	"fmt"
	"math"
	"strings"
)

// ScaleType selects the interval pattern of a scale.
type ScaleType uint8

const (
	ScaleMajor ScaleType = iota
	ScaleMinor
	ScaleHarmonicMinor
	ScalePentatonicMinor
	ScaleBlues
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScaleLocrian
)

var scaleIntervals = [...][]int{
	ScaleMajor:           {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:           {0, 2, 3, 5, 7, 8, 10},
	ScaleHarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	ScalePentatonicMinor: {0, 3, 5, 7, 10},
	ScaleBlues:           {0, 3, 5, 6, 7, 10},
	ScaleDorian:          {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:        {0, 1, 3, 5, 7, 8, 10},
	ScaleLydian:          {0, 2, 4, 6, 7, 9, 11},
	ScaleMixolydian:      {0, 2, 4, 5, 7, 9, 10},
	ScaleLocrian:         {0, 1, 3, 5, 6, 8, 10},
}

var scaleNames = [...]string{
	ScaleMajor:           "major",
	ScaleMinor:           "minor",
	ScaleHarmonicMinor:   "harmonic minor",
	ScalePentatonicMinor: "pentatonic minor",
	ScaleBlues:           "blues",
	ScaleDorian:          "dorian",
	ScalePhrygian:        "phrygian",
	ScaleLydian:          "lydian",
	ScaleMixolydian:      "mixolydian",
	ScaleLocrian:         "locrian",
}

func (s ScaleType) Intervals() []int { return scaleIntervals[s] }

func (s ScaleType) String() string { return scaleNames[s] }

// ChordType selects a fixed chord interval stack, overriding the
// default diatonic construction.
type ChordType uint8

const (
	ChordMajor ChordType = iota
	ChordMinor
	ChordDiminished
	ChordAugmented
	ChordMajor7
	ChordMinor7
	ChordDom7
	ChordMin7Flat5
	ChordSus2
	ChordSus4
)

var chordIntervals = [...][]int{
	ChordMajor:      {0, 4, 7},
	ChordMinor:      {0, 3, 7},
	ChordDiminished: {0, 3, 6},
	ChordAugmented:  {0, 4, 8},
	ChordMajor7:     {0, 4, 7, 11},
	ChordMinor7:     {0, 3, 7, 10},
	ChordDom7:       {0, 4, 7, 10},
	ChordMin7Flat5:  {0, 3, 6, 10},
	ChordSus2:       {0, 2, 7},
	ChordSus4:       {0, 5, 7},
}

func (c ChordType) Intervals() []int { return chordIntervals[c] }

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

const a4Freq = 440.0

// NoteToFreq converts a note name like "C#" at the given octave to a
// frequency in Hz.
func NoteToFreq(name string, octave int) (float64, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	idx := -1
	for i, n := range noteNames {
		if n == key {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0, fmt.Errorf("invalid note name: %q", name)
	}
	semitones := idx - 9 // distance from A
	semitones += (octave - 4) * 12
	return a4Freq * math.Pow(2, float64(semitones)/12), nil
}

// FreqToMIDI converts a frequency to its (fractional) MIDI note number.
func FreqToMIDI(freq float64) float64 {
	return 69 + 12*math.Log2(freq/a4Freq)
}

// MIDIToFreq converts a MIDI note number to a frequency in Hz.
func MIDIToFreq(note float64) float64 {
	return a4Freq * math.Pow(2, (note-69)/12)
}

// Key is a tonal center: a root note plus a scale type. It constructs
// scale frequency sets and diatonic chords.
type Key struct {
	RootName string
	Scale    ScaleType

	rootFreq float64
}

// NewKey builds a key from a root note name (octave 4) and scale type.
func NewKey(root string, scale ScaleType) (*Key, error) {
	freq, err := NoteToFreq(root, 4)
	if err != nil {
		return nil, err
	}
	return &Key{
		RootName: strings.ToUpper(strings.TrimSpace(root)),
		Scale:    scale,
		rootFreq: freq,
	}, nil
}

// ParseKey parses a CLI-style key description such as "A", "c# maj"
// or "D minor". The mode defaults to minor, matching the engine's
// startup key.
func ParseKey(s string) (*Key, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	scale := ScaleMinor
	if len(parts) > 1 && strings.Contains(strings.ToLower(parts[1]), "maj") {
		scale = ScaleMajor
	}
	return NewKey(parts[0], scale)
}

// ScaleNotes returns the scale frequencies across the given number of
// octaves, starting from the key root at octave 4.
func (k *Key) ScaleNotes(octaves int) []float64 {
	intervals := k.Scale.Intervals()
	baseMIDI := math.Round(FreqToMIDI(k.rootFreq))
	freqs := make([]float64, 0, octaves*len(intervals))
	for oct := 0; oct < octaves; oct++ {
		for _, interval := range intervals {
			freqs = append(freqs, MIDIToFreq(baseMIDI+float64(interval+oct*12)))
		}
	}
	return freqs
}

// ChordOptions tweaks Key.Chord. The zero value requests a plain
// diatonic triad.
type ChordOptions struct {
	// Type overrides diatonic construction with a fixed interval stack.
	Type *ChordType

	// Inversion moves the lowest note up an octave this many times.
	Inversion int

	// Add7th stacks a diatonic seventh on top of the triad.
	Add7th bool
}

// Chord returns the frequencies of the chord built on the 1-based
// scale degree (1-7).
func (k *Key) Chord(degree int, opts ChordOptions) ([]float64, error) {
	intervals := k.Scale.Intervals()
	if degree < 1 || degree > len(intervals) {
		return nil, fmt.Errorf("degree must be 1-%d, got %d", len(intervals), degree)
	}

	idx := degree - 1
	rootInterval := intervals[idx]

	var chord []int
	if opts.Type != nil {
		chord = opts.Type.Intervals()
	} else {
		// Diatonic thirds relative to the degree root.
		third := stackedInterval(intervals, idx, 2) - rootInterval
		fifth := stackedInterval(intervals, idx, 4) - rootInterval
		chord = []int{0, third, fifth}
		if opts.Add7th {
			chord = append(chord, stackedInterval(intervals, idx, 6)-rootInterval)
		}
	}

	baseMIDI := int(math.Round(FreqToMIDI(k.rootFreq))) + rootInterval
	notes := make([]int, len(chord))
	for i, interval := range chord {
		notes[i] = baseMIDI + interval
	}

	for inv := 0; inv < opts.Inversion; inv++ {
		notes[0] += 12
		sortInts(notes)
	}

	freqs := make([]float64, len(notes))
	for i, m := range notes {
		freqs[i] = MIDIToFreq(float64(m))
	}
	return freqs, nil
}

// stackedInterval returns the interval of the scale step `offset`
// positions above `idx`, lifted an octave when it wraps.
func stackedInterval(intervals []int, idx, offset int) int {
	j := (idx + offset) % len(intervals)
	interval := intervals[j]
	if j < idx {
		interval += 12
	}
	return interval
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
