package bitvector

import "math/bits"

const wordBits = 64

// BitVector is a fixed-length packed vector of bits. The effective length
// rounds up to a whole byte.
type BitVector struct {
	words  []uint64
	length uint32
}

// New creates a BitVector with at least the given number of bits.
func New(length uint32) *BitVector {
	length = roundToByte(length)
	words := (length + wordBits - 1) / wordBits
	return &BitVector{
		words:  make([]uint64, words),
		length: length,
	}
}

func roundToByte(n uint32) uint32 {
	return (n + 7) &^ 7
}

// Len returns the number of bits in the vector.
func (b *BitVector) Len() uint32 {
	return b.length
}

// SizeBytes returns the size of the packed payload in bytes.
func (b *BitVector) SizeBytes() uint32 {
	return b.length / 8
}

// Set sets the bit at the given index. Out-of-range indexes are ignored.
func (b *BitVector) Set(i uint32) {
	if i >= b.length {
		return
	}
	b.words[i/wordBits] |= 1 << (i % wordBits)
}

// Unset clears the bit at the given index.
func (b *BitVector) Unset(i uint32) {
	if i >= b.length {
		return
	}
	b.words[i/wordBits] &^= 1 << (i % wordBits)
}

// Test returns true if the bit at the given index is set.
func (b *BitVector) Test(i uint32) bool {
	if i >= b.length {
		return false
	}
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Count returns the number of set bits.
func (b *BitVector) Count() uint32 {
	var n int
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return uint32(n)
}
