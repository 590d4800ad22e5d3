package muse

// carryBuffer holds signal energy whose source clip extends past the
// current beat window: reverb and delay tails, long sustained notes.
// It is exclusively owned by the renderer. The backing slice grows on
// demand with one second of headroom and is reused across beats; the
// logical length tracks the furthest written sample so consume never
// shifts more than it has to.
type carryBuffer struct {
	buf      []float64
	length   int // samples holding live energy
	headroom int
}

func newCarryBuffer(capacity int) carryBuffer {
	return carryBuffer{
		buf:      make([]float64, capacity),
		headroom: DefaultSampleRate,
	}
}

// add deposits clip*volume at the given offset, growing the buffer if
// the tail does not fit.
func (cb *carryBuffer) add(clip []float64, offset int, volume float64) {
	need := offset + len(clip)
	if need > len(cb.buf) {
		grown := make([]float64, need+cb.headroom)
		copy(grown, cb.buf[:cb.length])
		cb.buf = grown
	}
	for i, v := range clip {
		cb.buf[offset+i] += v * volume
	}
	if need > cb.length {
		cb.length = need
	}
}

// consume adds the leading len(dst) carried samples into dst, then
// shifts the remainder to the front of the buffer for the next beat.
func (cb *carryBuffer) consume(dst []float64) {
	if cb.length == 0 {
		return
	}
	overlap := cb.length
	if overlap > len(dst) {
		overlap = len(dst)
	}
	for i := 0; i < overlap; i++ {
		dst[i] += cb.buf[i]
	}

	remaining := cb.length - overlap
	if remaining > 0 {
		copy(cb.buf, cb.buf[overlap:cb.length])
	}
	// Zero the consumed region so stale energy never resurfaces.
	for i := remaining; i < cb.length; i++ {
		cb.buf[i] = 0
	}
	cb.length = remaining
}
