// Package seed derives the masking material used by the engine's
// side-channel countermeasures (scalar blinding's random multiplier,
// projective coordinate blinding's field mask) from a single caller-
// supplied 64-bit seed, via HKDF-SHA256 expansion. The seed is not
// required to be secret on its own -- new_context mixes it with a
// process-level random value -- but expanding it through HKDF rather
// than using it directly keeps the blinding values it feeds
// independent of each other and of the raw seed bits.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Expand derives n bytes of masking material from seed and a domain
// separation label, via HKDF-SHA256 with no salt.
func Expand(seed uint64, label string, n int) ([]byte, error) {
	var ikm [8]byte
	binary.BigEndian.PutUint64(ikm[:], seed)

	r := hkdf.New(sha256.New, ikm[:], nil, []byte(label))
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpandElement derives a width-byte big-endian masking value suitable
// for reduction modulo a field element, deriving more bytes than width
// so that, reduced mod p, the result is statistically close to uniform
// (the standard "extra bits before reduce" construction).
func ExpandElement(seed uint64, label string, width int) ([]byte, error) {
	return Expand(seed, label, width+16)
}
