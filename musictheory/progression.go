package musictheory

import (
	"math/rand"
)

// The canonical pop/rock loops the generator cycles through, as scale
// degrees: 1-5-6-4, 6-4-1-5, 1-4-1-5, 1-6-4-5 and a 1-5-2-4 variation.
var commonLoops = [][]int{
	{1, 5, 6, 4},
	{6, 4, 1, 5},
	{1, 4, 1, 5},
	{1, 6, 4, 5},
	{1, 5, 2, 4},
}

// Progression generates standard, pleasing chord progressions by
// walking a four-chord loop, occasionally hopping to another loop at
// phrase boundaries.
type Progression struct {
	key  *Key
	rng  *rand.Rand
	loop []int
}

func NewProgression(key *Key, rng *rand.Rand) *Progression {
	return &Progression{
		key:  key,
		rng:  rng,
		loop: commonLoops[0],
	}
}

// Next returns the chord for the given position (0-3) within the
// current 4-bar phrase. Richness above 0.7 turns the dominant into a
// dominant seventh. At phrase starts there is a 10% chance of
// switching to a different loop.
func (p *Progression) Next(richness float64, positionInPhrase int) []float64 {
	if positionInPhrase == 0 && p.rng.Float64() < 0.1 {
		p.loop = commonLoops[p.rng.Intn(len(commonLoops))]
	}

	degree := p.loop[positionInPhrase%len(p.loop)]

	add7th := degree == 5 && richness > 0.7
	chord, err := p.key.Chord(degree, ChordOptions{Add7th: add7th})
	if err != nil {
		// Loop degrees are always in range; keep the tonic as a
		// safety net.
		chord, _ = p.key.Chord(1, ChordOptions{})
	}
	return chord
}
