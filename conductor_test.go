package muse

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func newTestConductor() *Conductor {
	return NewConductor(rand.New(rand.NewSource(1)))
}

func TestConductorDefaults(t *testing.T) {
	c := newTestConductor()
	s := c.Status()

	if s.State != StateSetup {
		t.Errorf("state %s, want setup", s.State)
	}
	if s.BPM != 110 {
		t.Errorf("bpm %f, want 110", s.BPM)
	}
	if s.Key != "C" || s.Scale != "minor" {
		t.Errorf("key %s %s, want C minor", s.Key, s.Scale)
	}
	if s.Style != StyleRock {
		t.Errorf("style %s, want rock", s.Style)
	}
	if s.DistortionPct != 60 || s.SustainPct != 70 {
		t.Errorf("dist %d sustain %d, want 60/70", s.DistortionPct, s.SustainPct)
	}
}

func TestNewConductorNilRNG(t *testing.T) {
	c1 := NewConductor(nil)
	time.Sleep(time.Millisecond)
	c2 := NewConductor(nil)

	// A nil rng falls back to a wall-clock seed, so two sessions must
	// not replay the same random stream.
	for i := 0; i < 8; i++ {
		if c1.rng.Float64() != c2.rng.Float64() {
			return
		}
	}
	t.Error("nil-rng conductors share an identical random stream")
}

func TestConductorStart(t *testing.T) {
	c := newTestConductor()
	c.Start()
	if got := c.State(); got != StatePlaying {
		t.Fatalf("state %s after Start, want playing", got)
	}
	// Start is idempotent.
	c.Start()
	if got := c.State(); got != StatePlaying {
		t.Fatalf("second Start moved state to %s", got)
	}
}

func TestConductorUpdateAdvancesProgression(t *testing.T) {
	c := newTestConductor()
	c.Start()

	snap1 := c.beatSnapshot()
	c.Update()
	c.Update()
	snap2 := c.beatSnapshot()

	// The 1-5-6-4 loop leaves the tonic by bar 2.
	if almostEqual(snap1.chord[0], snap2.chord[0], 1e-9) {
		t.Error("chord root unchanged after two bars")
	}
}

func TestSetParam(t *testing.T) {
	c := newTestConductor()

	tests := []struct {
		name  string
		value float64
		check func(Status) bool
	}{
		{"bpm", 140, func(s Status) bool { return s.BPM == 140 }},
		{"bpm", -10, func(s Status) bool { return s.BPM == 1 }},
		{"intensity", 80, func(s Status) bool { return almostEqual(s.Intensity, 0.8, 1e-9) }},
		{"intensity", 300, func(s Status) bool { return s.Intensity == 1 }},
		{"distortion", 150, func(s Status) bool { return s.DistortionPct == 100 }},
		{"distortion", -5, func(s Status) bool { return s.DistortionPct == 0 }},
		{"sustain", 45, func(s Status) bool { return s.SustainPct == 45 }},
		{"delay", 50, func(s Status) bool { return almostEqual(s.DelayMix, 0.5, 1e-9) }},
		{"reverb", 25, func(s Status) bool { return almostEqual(s.ReverbMix, 0.25, 1e-9) }},
		{"chorus", 100, func(s Status) bool { return s.ChorusMix == 1 }},
	}
	for _, test := range tests {
		if err := c.SetParam(test.name, test.value); err != nil {
			t.Fatalf("SetParam(%s, %f): %v", test.name, test.value, err)
		}
		if !test.check(c.Status()) {
			t.Errorf("SetParam(%s, %f) not applied", test.name, test.value)
		}
	}

	if err := c.SetParam("nope", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("unknown param error = %v, want ErrUnknownParam", err)
	}
}

func TestSetLayer(t *testing.T) {
	c := newTestConductor()

	if err := c.SetLayer("arp", true); err != nil {
		t.Fatal(err)
	}
	for _, l := range c.Status().Layers {
		if l.Name == "arp" && !l.Active {
			t.Error("arp not activated")
		}
	}
	if err := c.SetLayer("nope", true); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("unknown layer error = %v, want ErrUnknownLayer", err)
	}
}

func TestSetKey(t *testing.T) {
	c := newTestConductor()

	if err := c.SetKey("A maj"); err != nil {
		t.Fatal(err)
	}
	s := c.Status()
	if s.Key != "A" || s.Scale != "major" {
		t.Errorf("key %s %s, want A major", s.Key, s.Scale)
	}

	if err := c.SetKey("X"); err == nil {
		t.Error("bad key accepted")
	}
	// A failed SetKey leaves the key untouched.
	if s := c.Status(); s.Key != "A" {
		t.Errorf("key changed to %s after failed SetKey", s.Key)
	}
}

func TestApplyStyle(t *testing.T) {
	c := newTestConductor()

	c.ApplyStyle(StyleEDM)
	s := c.Status()
	if s.DistortionPct != 0 {
		t.Errorf("edm distortion %d, want 0", s.DistortionPct)
	}
	active := map[string]bool{}
	for _, l := range s.Layers {
		active[l.Name] = l.Active
	}
	if !active["arp"] || active["rhythm"] {
		t.Errorf("edm layers wrong: arp=%v rhythm=%v", active["arp"], active["rhythm"])
	}

	c.ApplyStyle(StyleClassical)
	s = c.Status()
	if s.SustainPct != 85 {
		t.Errorf("classical sustain %d, want 85", s.SustainPct)
	}
	for _, l := range s.Layers {
		if l.Name == "kick" && l.Active {
			t.Error("classical keeps the kick")
		}
	}
}

func TestParseStyleAndLayer(t *testing.T) {
	for want, name := range map[Style]string{
		StyleRock: "rock", StylePop: "pop", StyleEDM: "edm", StyleClassical: "classical",
	} {
		got, err := ParseStyle(name)
		if err != nil || got != want {
			t.Errorf("ParseStyle(%q)=%v, %v", name, got, err)
		}
	}
	if _, err := ParseStyle("jazz"); !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("ParseStyle(jazz) error = %v", err)
	}
	if _, err := ParseLayer("vocals"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("ParseLayer(vocals) error = %v", err)
	}
}

func TestApplySection(t *testing.T) {
	c := newTestConductor()

	if err := c.ApplySection("break"); err != nil {
		t.Fatal(err)
	}
	s := c.Status()
	if !almostEqual(s.Intensity, 0.1, 1e-9) {
		t.Errorf("break intensity %f, want 0.1", s.Intensity)
	}
	for _, l := range s.Layers {
		switch l.Name {
		case "pad":
			if !l.Active {
				t.Error("break drops the pad")
			}
		case "kick", "snare", "lead":
			if l.Active {
				t.Errorf("break keeps %s", l.Name)
			}
		}
	}

	if err := c.ApplySection("chorus"); err != nil {
		t.Fatal(err)
	}
	s = c.Status()
	for _, l := range s.Layers {
		if l.Name == "riser" {
			if l.Active {
				t.Error("chorus section arms the riser")
			}
		} else if !l.Active {
			t.Errorf("chorus section leaves %s off", l.Name)
		}
	}

	if err := c.ApplySection("drop"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("unknown section error = %v", err)
	}
}

func TestOutroSequence(t *testing.T) {
	c := newTestConductor()
	c.Start()
	c.TriggerOutro()

	if got := c.State(); got != StateOutro {
		t.Fatalf("state %s after TriggerOutro, want outro", got)
	}
	snap := c.beatSnapshot()
	if snap.layers[LayerRiser].Active {
		t.Error("riser still armed in the outro")
	}
	// The approach opens on the subdominant: F in C minor.
	if !almostEqual(snap.chord[0], 349.23, 0.01) {
		t.Errorf("approach chord root %f, want F4", snap.chord[0])
	}

	var phases []OutroPhase
	prevBPM := snap.bpm
	prevVolume := 1.0
	for step := 1; c.State() == StateOutro && step < 50; step++ {
		c.Update()
		s := c.beatSnapshot()
		phases = append(phases, s.outroPhase)

		if s.bpm > prevBPM {
			t.Fatalf("step %d: bpm rose %f -> %f", step, prevBPM, s.bpm)
		}
		if s.bpm < 20 {
			t.Fatalf("step %d: bpm %f below floor", step, s.bpm)
		}
		if s.outroVolume > prevVolume {
			t.Fatalf("step %d: volume rose %f -> %f", step, prevVolume, s.outroVolume)
		}
		prevBPM, prevVolume = s.bpm, s.outroVolume
	}

	if got := c.State(); got != StateFinished {
		t.Fatalf("outro never finished, state %s", got)
	}
	if len(phases) != 16 {
		t.Fatalf("outro took %d steps, want 16", len(phases))
	}
	wantPhase := func(step int) OutroPhase {
		switch {
		case step <= 4:
			return OutroApproach
		case step <= 8:
			return OutroCadence
		case step <= 15:
			return OutroRingout
		}
		return OutroRingout // final step flips to finished, phase stays
	}
	for i, p := range phases[:15] {
		if p != wantPhase(i+1) {
			t.Errorf("step %d phase %s, want %s", i+1, p, wantPhase(i+1))
		}
	}

	final := c.beatSnapshot()
	if final.outroVolume != 0 {
		t.Errorf("final volume %f, want 0", final.outroVolume)
	}
}

func TestTriggerOutroIdempotent(t *testing.T) {
	c := newTestConductor()
	c.Start()
	c.TriggerOutro()
	for i := 0; i < 5; i++ {
		c.Update()
	}
	phase := c.Status().OutroPhase
	bpm := c.Status().BPM

	// A second trigger mid-outro must not restart the sequence.
	c.TriggerOutro()
	s := c.Status()
	if s.OutroPhase != phase || s.BPM != bpm {
		t.Errorf("second TriggerOutro reset the outro: phase %s bpm %f", s.OutroPhase, s.BPM)
	}
}

func TestOutroCadenceHarmony(t *testing.T) {
	c := newTestConductor()
	c.Start()
	c.TriggerOutro()

	for i := 0; i < 5; i++ {
		c.Update()
	}
	// Step 5 lands on the dominant seventh: four notes.
	snap := c.beatSnapshot()
	if len(snap.chord) != 4 {
		t.Errorf("cadence chord has %d notes, want a V7", len(snap.chord))
	}

	c.Update()
	c.Update()
	// Step 7 resolves to the tonic triad.
	snap = c.beatSnapshot()
	if len(snap.chord) != 3 {
		t.Errorf("resolution chord has %d notes, want 3", len(snap.chord))
	}
	if !almostEqual(snap.chord[0], 261.63, 0.01) {
		t.Errorf("resolution root %f, want C4", snap.chord[0])
	}
}
