package adjudicator

// WindowPolicy yields the dispute window in blocks for a claim at the given
// round offset.
type WindowPolicy interface {
	Window(offset uint8) uint64
}

// QuadraticWindow grants clamp(offset+1, Min, Max)² blocks, so longer games
// leave more time to respond.
type QuadraticWindow struct {
	Min uint64
	Max uint64
}

func (w QuadraticWindow) Window(offset uint8) uint64 {
	n := uint64(offset) + 1
	if n > w.Max {
		n = w.Max
	}
	if n < w.Min {
		n = w.Min
	}
	return n * n
}

// FixedWindow grants the same number of blocks to every claim.
type FixedWindow uint64

func (w FixedWindow) Window(uint8) uint64 {
	return uint64(w)
}
