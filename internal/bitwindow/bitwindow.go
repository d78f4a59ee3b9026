// Package bitwindow walks a big-endian scalar byte string left-to-right
// or right-to-left, emitting fixed-width windows for the scalar
// multiplication ladders. Both iterators operate on public window
// widths and a public (already-blinded, if applicable) scalar length;
// nothing here depends on the scalar's value.
package bitwindow

// LR walks a scalar from the most significant bit. Leading zero bytes
// are skipped on construction; from what remains, windows of width
// bits are emitted from the top. The first window may be shorter than
// width bits if the remaining bit length is not a multiple of width --
// for width values that divide 8 (4 and 8, the only widths this engine
// uses) that never actually happens, but the general iterator supports
// it so the component's contract is not silently narrowed.
type LR struct {
	data      []byte
	width     int
	nrWindows int
	firstBits int
	pos       int // number of windows already emitted
}

// NewLR builds an LR iterator over scalar with the given window width
// (1..8). Leading zero bytes of scalar are skipped.
func NewLR(width int, scalar []byte) *LR {
	data := scalar
	for len(data) > 0 && data[0] == 0 {
		data = data[1:]
	}

	totalBits := len(data) * 8
	it := &LR{data: data, width: width}
	if totalBits == 0 {
		return it
	}

	it.nrWindows = (totalBits + width - 1) / width
	it.firstBits = totalBits - (it.nrWindows-1)*width
	return it
}

// NumWindows returns the total number of windows this iterator will emit.
func (it *LR) NumWindows() int { return it.nrWindows }

// Next returns the next window value (0..2^width-1, or fewer bits for
// the first window) and true, or (0, false) once exhausted.
func (it *LR) Next() (int, bool) {
	if it.pos >= it.nrWindows {
		return 0, false
	}

	width := it.width
	if it.pos == 0 {
		width = it.firstBits
	}

	// Bit offset, counted from the MSB of it.data, of the first bit of
	// this window.
	bitOffset := it.firstBits + (it.pos-1)*it.width
	if it.pos == 0 {
		bitOffset = 0
	}

	v := extractBits(it.data, bitOffset, width)
	it.pos++
	return v, true
}

// RL walks a scalar from the least significant bit, emitting
// ceil(bitlen/width) windows. Leading zero bytes are skipped on
// construction, matching the LR convention.
type RL struct {
	data      []byte
	width     int
	nrWindows int
	pos       int
}

// NewRL builds an RL iterator over scalar with the given window width.
func NewRL(width int, scalar []byte) *RL {
	data := scalar
	for len(data) > 0 && data[0] == 0 {
		data = data[1:]
	}

	totalBits := len(data) * 8
	it := &RL{data: data, width: width}
	if totalBits > 0 {
		it.nrWindows = (totalBits + width - 1) / width
	}
	return it
}

// NumWindows returns the total number of windows this iterator will emit.
func (it *RL) NumWindows() int { return it.nrWindows }

// Next returns the next window value, starting from the least
// significant bits, and true, or (0, false) once exhausted.
func (it *RL) Next() (int, bool) {
	if it.pos >= it.nrWindows {
		return 0, false
	}

	totalBits := len(it.data) * 8
	// Bit offset (from the LSB) of the low end of this window.
	lowFromLSB := it.pos * it.width
	width := it.width
	if lowFromLSB+width > totalBits {
		width = totalBits - lowFromLSB
	}
	bitOffset := totalBits - lowFromLSB - width

	v := extractBits(it.data, bitOffset, width)
	it.pos++
	return v, true
}

// extractBits reads `width` bits from data starting at bitOffset
// (counted from the MSB, bitOffset == 0 is the very first bit of
// data[0]) and returns them as the low bits of an int, MSB-first.
func extractBits(data []byte, bitOffset, width int) int {
	v := 0
	for i := 0; i < width; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		bitIdx := 7 - (bit % 8)
		b := 0
		if byteIdx < len(data) {
			b = int((data[byteIdx] >> uint(bitIdx)) & 1)
		}
		v = (v << 1) | b
	}
	return v
}
