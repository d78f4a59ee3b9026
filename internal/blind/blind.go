// Package blind implements the engine's two side-channel
// countermeasures that are independent of the addition formulae
// themselves: scalar blinding (replacing a secret scalar k with
// k + R*n for a fresh random multiple R of the curve order n before
// it ever reaches the ladder) and projective coordinate blinding
// (rescaling a point's (X, Y, Z) by a random nonzero field element
// before it is used in a secret-dependent computation).
package blind

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/seed"
	"gitlab.com/elliptic-ct/ecws/internal/words"
)

// ErrTooShort is returned when a destination buffer cannot hold the
// blinded scalar.
var ErrTooShort = errors.New("blind: destination buffer too small")

// ScalarFactor derives the random multiplier R used to blind a scalar,
// as the low 32 bits of an HKDF-expanded seed. Using only 32 bits (vs.
// a full-width random value) keeps the blinded scalar only a few bytes
// longer than the order, matching the original construction's
// buffer-sizing contract.
func ScalarFactor(randSeed uint64) (uint32, error) {
	out, err := seed.Expand(randSeed, "ecws-scalar-blind", 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(out), nil
}

// Scalar computes k' = k + R*n and encodes it big-endian into dst. n is
// the curve order, kBytes the scalar to blind (both big-endian). dst
// must be at least max(len(nBytes), len(kBytes)) + 5 bytes, sized to
// hold the order times a 32-bit multiplier plus the original scalar
// without truncation, per the construction's buffer-sizing contract;
// BufferSize returns that minimum length.
func Scalar(dst []byte, kBytes, nBytes []byte, r uint32) error {
	need := BufferSize(len(kBytes), len(nBytes))
	if len(dst) < need {
		return ErrTooShort
	}

	w := words.NumWords(need)
	nWords := make([]uint64, w)
	words.BytesToWords(nWords, nBytes)
	kWords := make([]uint64, w)
	words.BytesToWords(kWords, kBytes)

	rn := mulSmall(nWords, uint64(r))
	sum := addWords(rn, kWords)

	for i := 0; i < len(dst)-need; i++ {
		dst[i] = 0
	}
	words.WordsToBytes(dst[len(dst)-need:], sum)
	return nil
}

// BufferSize returns the byte length needed to hold a blinded scalar
// given the original scalar and order encodings' lengths.
func BufferSize(scalarLen, orderLen int) int {
	n := orderLen
	if scalarLen > n {
		n = scalarLen
	}
	return n + 5
}

// mulSmall returns a*r as a little-endian word slice the same length as a.
func mulSmall(a []uint64, r uint64) []uint64 {
	out := make([]uint64, len(a))
	var carry uint64
	for i, w := range a {
		hi, lo := bits.Mul64(w, r)
		var c uint64
		lo, c = bits.Add64(lo, carry, 0)
		hi, _ = bits.Add64(hi, 0, c)
		out[i] = lo
		carry = hi
	}
	return out
}

func addWords(a, b []uint64) []uint64 {
	out := make([]uint64, len(a))
	var carry uint64
	for i := range a {
		out[i], carry = bits.Add64(a[i], b[i], carry)
	}
	return out
}

// CoordinateMask derives a nonzero field element mask for projective
// coordinate blinding, expanding randSeed via HKDF and reducing the
// (oversized) result modulo ctx's modulus.
func CoordinateMask(ctx *mont.Context, randSeed uint64) (mont.Element, error) {
	wide, err := seed.ExpandElement(randSeed, "ecws-coordinate-blind", ctx.Bytes())
	if err != nil {
		return nil, err
	}

	mask := ctx.NewElement()
	ctx.ReduceWide(mask, wide)
	if ctx.IsZero(mask) {
		// A zero mask would leave the point unblinded; fall back to the
		// Montgomery encoding of 1, still a valid (if degenerate) mask.
		ctx.One(mask)
	}
	return mask, nil
}

// Coordinates rescales (x, y, z) in place by mask: (x,y,z) <- (mask*x,
// mask*y, mask*z). Any nonzero mask yields a point equivalent under the
// projective equivalence relation, so this changes the point's
// representation without changing the point it represents.
func Coordinates(ctx *mont.Context, x, y, z, mask, scratch mont.Element) {
	ctx.Mul(x, x, mask, scratch)
	ctx.Mul(y, y, mask, scratch)
	ctx.Mul(z, z, mask, scratch)
}
