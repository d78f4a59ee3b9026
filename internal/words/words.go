// Package words converts between big-endian byte strings and little-endian
// limb arrays (uint64 words), the wire format used at the package boundary
// and the arithmetic format used internally by the Montgomery engine.
package words

import "encoding/binary"

// BytesToWords decodes the big-endian byte string src into a little-endian
// word array of length n (n = ceil(len(src)/8), or more if the caller wants
// extra high words pre-zeroed). Words beyond src's length are left zero.
func BytesToWords(dst []uint64, src []byte) {
	for i := range dst {
		dst[i] = 0
	}

	// Walk src from the least-significant byte (the end of the slice)
	// towards the most-significant one, packing 8 bytes per word.
	end := len(src)
	for w := 0; end > 0 && w < len(dst); w++ {
		start := end - 8
		if start < 0 {
			start = 0
		}
		var buf [8]byte
		copy(buf[8-(end-start):], src[start:end])
		dst[w] = binary.BigEndian.Uint64(buf[:])
		end = start
	}
}

// WordsToBytes encodes the little-endian word array src as a big-endian
// byte string of exactly len(dst) bytes. If the value does not fit,
// the high bytes are silently truncated (callers must size dst correctly).
func WordsToBytes(dst []byte, src []uint64) {
	for i := range dst {
		dst[i] = 0
	}

	pos := len(dst)
	for w := 0; pos > 0 && w < len(src); w++ {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], src[w])
		n := 8
		if pos < n {
			n = pos
		}
		copy(dst[pos-n:pos], buf[8-n:])
		pos -= n
	}
}

// NumWords returns the number of 64-bit words needed to hold numBytes bytes.
func NumWords(numBytes int) int {
	return (numBytes + 7) / 8
}

// IsZero reports whether all words of a are zero.
func IsZero(a []uint64) bool {
	var acc uint64
	for _, w := range a {
		acc |= w
	}
	return acc == 0
}

// Equal reports whether a and b (same length) are identical.
func Equal(a, b []uint64) bool {
	var acc uint64
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

// Cmp returns -1, 0 or 1 as a is less than, equal to, or greater than b.
// Both must have the same length. Not constant-time; used only on public
// values (moduli, orders, table indices).
func Cmp(a, b []uint64) int {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
