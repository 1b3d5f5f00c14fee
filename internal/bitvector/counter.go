package bitvector

// counterMax is the saturation value of a 4-bit cell.
const counterMax = 15

// Counter is a fixed-length vector of 4-bit saturating counters, two per
// byte. Increments saturate at 15 and decrements stop at zero. The
// effective length rounds up to an even number so the vector occupies
// whole bytes.
type Counter struct {
	cells  []uint8
	length uint32
}

// NewCounter creates a Counter with at least the given number of counters.
func NewCounter(length uint32) *Counter {
	length = (length + 1) &^ 1
	return &Counter{
		cells:  make([]uint8, length/2),
		length: length,
	}
}

// Len returns the number of counters.
func (c *Counter) Len() uint32 {
	return c.length
}

// SizeBytes returns the size of the packed payload in bytes.
func (c *Counter) SizeBytes() uint32 {
	return c.length / 2
}

// Get returns the value of the counter at the given index.
func (c *Counter) Get(i uint32) uint8 {
	if i >= c.length {
		return 0
	}
	cell := c.cells[i/2]
	if i%2 == 0 {
		return cell & 0x0f
	}
	return cell >> 4
}

// Increment adds one to the counter at the given index, saturating at 15.
func (c *Counter) Increment(i uint32) {
	if i >= c.length {
		return
	}
	v := c.Get(i)
	if v == counterMax {
		return
	}
	c.put(i, v+1)
}

// Decrement subtracts one from the counter at the given index, stopping
// at zero.
func (c *Counter) Decrement(i uint32) {
	if i >= c.length {
		return
	}
	v := c.Get(i)
	if v == 0 {
		return
	}
	c.put(i, v-1)
}

func (c *Counter) put(i uint32, v uint8) {
	cell := c.cells[i/2]
	if i%2 == 0 {
		cell = (cell & 0xf0) | v
	} else {
		cell = (cell & 0x0f) | (v << 4)
	}
	c.cells[i/2] = cell
}
