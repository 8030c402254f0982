package forecast

// windowBuffer is a fixed-size ring of feature rows backed by one arena.
// Sliding overwrites the oldest row in place, so a rollout allocates nothing
// per step.
type windowBuffer struct {
	arena []float64
	rows  [][]float64 // rows[i] is a view into arena
	view  [][]float64 // chronological order, rebuilt by ordered
	head  int         // index of the oldest row
	width int
}

func newWindowBuffer(initial [][]float64, width int) *windowBuffer {
	n := len(initial)
	b := &windowBuffer{
		arena: make([]float64, n*width),
		rows:  make([][]float64, n),
		view:  make([][]float64, n),
		width: width,
	}
	for i, row := range initial {
		r := b.arena[i*width : (i+1)*width : (i+1)*width]
		copy(r, row)
		b.rows[i] = r
	}
	return b
}

// ordered returns the rows oldest first. The result is only valid until the
// next slide.
func (b *windowBuffer) ordered() [][]float64 {
	n := len(b.rows)
	for i := 0; i < n; i++ {
		b.view[i] = b.rows[(b.head+i)%n]
	}
	return b.view
}

func (b *windowBuffer) last() []float64 {
	n := len(b.rows)
	return b.rows[(b.head+n-1)%n]
}

// slide drops the oldest row and appends a copy of the newest row with the
// target column replaced by value.
func (b *windowBuffer) slide(target int, value float64) {
	last := b.last()
	oldest := b.rows[b.head]
	copy(oldest, last)
	oldest[target] = value
	b.head = (b.head + 1) % len(b.rows)
}
