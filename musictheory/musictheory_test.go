package musictheory

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestNoteToFreq(t *testing.T) {
	tests := []struct {
		name   string
		octave int
		want   float64
	}{
		{"A", 4, 440},
		{"C", 4, 261.6256},
		{"a", 4, 440},
		{"c#", 5, 554.3653},
		{"A", 3, 220},
		{"E", 2, 82.4069},
	}
	for _, test := range tests {
		got, err := NoteToFreq(test.name, test.octave)
		if err != nil {
			t.Fatalf("NoteToFreq(%q, %d): %v", test.name, test.octave, err)
		}
		if !almostEqual(got, test.want, 0.01) {
			t.Errorf("NoteToFreq(%q, %d)=%f, want %f", test.name, test.octave, got, test.want)
		}
	}

	if _, err := NoteToFreq("H", 4); err == nil {
		t.Error("NoteToFreq(H) should fail")
	}
	if _, err := NoteToFreq("", 4); err == nil {
		t.Error("NoteToFreq of empty name should fail")
	}
}

func TestMIDIRoundtrip(t *testing.T) {
	if got := FreqToMIDI(440); !almostEqual(got, 69, 1e-9) {
		t.Errorf("FreqToMIDI(440)=%f, want 69", got)
	}
	if got := MIDIToFreq(69); !almostEqual(got, 440, 1e-9) {
		t.Errorf("MIDIToFreq(69)=%f, want 440", got)
	}
	for midi := 20.0; midi < 100; midi += 7 {
		if got := FreqToMIDI(MIDIToFreq(midi)); !almostEqual(got, midi, 1e-9) {
			t.Errorf("roundtrip of %f gave %f", midi, got)
		}
	}
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("A maj")
	if err != nil {
		t.Fatal(err)
	}
	if key.RootName != "A" || key.Scale != ScaleMajor {
		t.Errorf("got %s %s, want A major", key.RootName, key.Scale)
	}

	key, err = ParseKey("c#")
	if err != nil {
		t.Fatal(err)
	}
	if key.RootName != "C#" || key.Scale != ScaleMinor {
		t.Errorf("got %s %s, want C# minor", key.RootName, key.Scale)
	}

	if _, err := ParseKey(""); err == nil {
		t.Error("empty key should fail")
	}
	if _, err := ParseKey("X min"); err == nil {
		t.Error("bad root should fail")
	}
}

func TestScaleNotes(t *testing.T) {
	key, err := NewKey("C", ScaleMinor)
	if err != nil {
		t.Fatal(err)
	}

	notes := key.ScaleNotes(2)
	if len(notes) != 14 {
		t.Fatalf("ScaleNotes(2) returned %d notes, want 14", len(notes))
	}
	if !almostEqual(notes[0], 261.6256, 0.01) {
		t.Errorf("first note %f, want C4", notes[0])
	}
	// The second octave restarts one octave up.
	if !almostEqual(notes[7], notes[0]*2, 0.01) {
		t.Errorf("octave note %f, want %f", notes[7], notes[0]*2)
	}
	for i := 1; i < len(notes); i++ {
		if notes[i] <= notes[i-1] {
			t.Errorf("scale not ascending at %d: %f <= %f", i, notes[i], notes[i-1])
		}
	}
}

func TestChordDiatonic(t *testing.T) {
	key, err := NewKey("C", ScaleMajor)
	if err != nil {
		t.Fatal(err)
	}

	// I in C major: C4 E4 G4.
	chord, err := key.Chord(1, ChordOptions{})
	if err != nil {
		t.Fatal(err)
	}
	wantMIDI := []float64{60, 64, 67}
	if len(chord) != len(wantMIDI) {
		t.Fatalf("triad has %d notes", len(chord))
	}
	for i, f := range chord {
		if got := FreqToMIDI(f); !almostEqual(got, wantMIDI[i], 1e-6) {
			t.Errorf("note %d: MIDI %f, want %f", i, got, wantMIDI[i])
		}
	}

	// V7 in a major key is a dominant seventh.
	chord, err = key.Chord(5, ChordOptions{Add7th: true})
	if err != nil {
		t.Fatal(err)
	}
	wantMIDI = []float64{67, 71, 74, 77}
	if len(chord) != 4 {
		t.Fatalf("V7 has %d notes, want 4", len(chord))
	}
	for i, f := range chord {
		if got := FreqToMIDI(f); !almostEqual(got, wantMIDI[i], 1e-6) {
			t.Errorf("V7 note %d: MIDI %f, want %f", i, got, wantMIDI[i])
		}
	}
}

func TestChordInversion(t *testing.T) {
	key, err := NewKey("C", ScaleMajor)
	if err != nil {
		t.Fatal(err)
	}
	chord, err := key.Chord(1, ChordOptions{Inversion: 1})
	if err != nil {
		t.Fatal(err)
	}
	// First inversion of C major: E4 G4 C5.
	if got := FreqToMIDI(chord[0]); !almostEqual(got, 64, 1e-6) {
		t.Errorf("lowest note MIDI %f, want 64 (E4)", got)
	}
	if got := FreqToMIDI(chord[len(chord)-1]); !almostEqual(got, 72, 1e-6) {
		t.Errorf("highest note MIDI %f, want 72 (C5)", got)
	}
}

func TestChordTypeOverride(t *testing.T) {
	key, err := NewKey("A", ScaleMinor)
	if err != nil {
		t.Fatal(err)
	}
	sus4 := ChordSus4
	chord, err := key.Chord(1, ChordOptions{Type: &sus4})
	if err != nil {
		t.Fatal(err)
	}
	wantMIDI := []float64{69, 74, 76}
	for i, f := range chord {
		if got := FreqToMIDI(f); !almostEqual(got, wantMIDI[i], 1e-6) {
			t.Errorf("sus4 note %d: MIDI %f, want %f", i, got, wantMIDI[i])
		}
	}
}

func TestChordBadDegree(t *testing.T) {
	key, err := NewKey("C", ScaleMajor)
	if err != nil {
		t.Fatal(err)
	}
	for _, degree := range []int{0, 8, -1} {
		if _, err := key.Chord(degree, ChordOptions{}); err == nil {
			t.Errorf("degree %d should fail", degree)
		}
	}
}
