package cpu

// DefaultMemoryLimit is the default maximum number of cells a tape may grow to.
const DefaultMemoryLimit = 1 << 24

// Memory defines the machine's tape.
//
// Reads beyond the end of the tape yield 0. Writes beyond the end grow it,
// zero-filling the gap. The tape never shrinks.
type Memory struct {
	cells []int64
	limit int64 // Maximum tape length; <= 0 means unbounded.
}

// NewMemory creates a tape holding a private copy of the given image.
func NewMemory(image []int64, limit int) Memory {
	cells := make([]int64, len(image))
	copy(cells, image)
	return Memory{cells: cells, limit: int64(limit)}
}

// Len returns the current tape length.
func (m *Memory) Len() int {
	return len(m.cells)
}

// Load returns the value at the given address.
func (m *Memory) Load(addr int64) (int64, error) {
	if addr < 0 {
		return 0, ErrNegativeAddress
	}
	if addr >= int64(len(m.cells)) {
		return 0, nil
	}
	return m.cells[addr], nil
}

// Store sets the value at the given address, growing the tape if needed.
func (m *Memory) Store(addr, value int64) error {
	if addr < 0 {
		return ErrNegativeAddress
	}

	if addr >= int64(len(m.cells)) {
		if m.limit > 0 && addr >= m.limit {
			return ErrMemoryLimit
		}
		m.grow(addr + 1)
	}

	m.cells[addr] = value
	return nil
}

// Cells returns a copy of the tape contents.
func (m *Memory) Cells() []int64 {
	out := make([]int64, len(m.cells))
	copy(out, m.cells)
	return out
}

// grow extends the tape to at least n cells.
func (m *Memory) grow(n int64) {
	if n <= int64(cap(m.cells)) {
		m.cells = m.cells[:n]
		return
	}

	size := int64(cap(m.cells)) * 2
	if size < n {
		size = n
	}
	if m.limit > 0 && size > m.limit {
		size = m.limit
	}

	cells := make([]int64, n, size)
	copy(cells, m.cells)
	m.cells = cells
}
