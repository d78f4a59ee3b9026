// Package mont implements a Montgomery arithmetic context over an
// arbitrary runtime-supplied prime modulus. Field elements are plain
// little-endian limb arrays (Element = []uint64); all arithmetic is
// performed through methods on the owning Context, mirroring the way
// the curve formulae address a Montgomery context by reference rather
// than by an element-bound vtable.
//
// A Context is immutable after construction and safe for concurrent
// read-only use. Elements are not safe for concurrent mutation.
package mont

import (
	"errors"
	"math/bits"

	"gitlab.com/elliptic-ct/ecws/internal/words"
)

// ModulusType tags a handful of well-known moduli so that callers can
// select fast paths (e.g. a precomputed generator table) without
// re-deriving curve identity from the raw bytes on every call.
type ModulusType int

const (
	ModulusGeneric ModulusType = iota
	ModulusP256
)

var p256Modulus = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// Element is a residue modulo Context.p, held as little-endian 64-bit
// limbs in Montgomery form (value * R mod p), except where a function
// doc explicitly says otherwise (e.g. Context.p itself is plain).
type Element = []uint64

// Context holds an immutable Montgomery modulus and its derived
// constants.
type Context struct {
	words int
	bytes int

	p        []uint64 // modulus, plain (not Montgomery form)
	pMinus2  []uint64 // p - 2, plain; exponent for Fermat inversion
	n0inv    uint64   // -p[0]^-1 mod 2^64
	rr       []uint64 // R^2 mod p, plain; multiplying by this enters Montgomery form
	montOne  []uint64 // R mod p; the Montgomery encoding of 1
	modulusT ModulusType
}

// NewContext builds a Montgomery context for the prime whose big-endian
// encoding is p. p must be odd (true of every field characteristic used
// by a short Weierstrass curve) and non-empty.
func NewContext(p []byte) (*Context, error) {
	if len(p) == 0 {
		return nil, errors.New("mont: empty modulus")
	}
	if p[len(p)-1]&1 == 0 {
		return nil, errors.New("mont: modulus must be odd")
	}

	n := words.NumWords(len(p))
	ctx := &Context{
		words: n,
		bytes: len(p),
		p:     make([]uint64, n),
	}
	words.BytesToWords(ctx.p, p)

	ctx.n0inv = invWord(ctx.p[0])

	// pMinus2 = p - 2, used only as a public exponent.
	ctx.pMinus2 = make([]uint64, n)
	borrow := uint64(2)
	for i := 0; i < n; i++ {
		d, b := bits.Sub64(ctx.p[i], borrow, 0)
		ctx.pMinus2[i] = d
		borrow = b
	}

	// R mod p and R^2 mod p, computed by repeated doubling of 1 mod p.
	// This avoids needing a second modulus-sized division primitive.
	one := make([]uint64, n)
	one[0] = 1
	r := ctx.modAdd(one, one) // 2 mod p, seed for doubling up to R
	for i := 0; i < n*64-1; i++ {
		r = ctx.modAdd(r, r)
	}
	ctx.montOne = r // R mod p

	rr := ctx.montOne
	for i := 0; i < n*64; i++ {
		rr = ctx.modAdd(rr, rr)
	}
	ctx.rr = rr // R^2 mod p

	if len(p) == len(p256Modulus) {
		match := true
		for i, b := range p {
			if b != p256Modulus[i] {
				match = false
				break
			}
		}
		if match {
			ctx.modulusT = ModulusP256
		}
	}

	return ctx, nil
}

// Words returns the number of 64-bit limbs in an Element.
func (ctx *Context) Words() int { return ctx.words }

// Bytes returns the canonical big-endian encoding length of the modulus.
func (ctx *Context) Bytes() int { return ctx.bytes }

// ScratchWords returns the number of limbs the scratch Element passed to
// Mul/Square/Inv must have.
func (ctx *Context) ScratchWords() int { return 2*ctx.words + 2 }

// ModulusTag reports whether the modulus matches a well-known curve prime.
func (ctx *Context) ModulusTag() ModulusType { return ctx.modulusT }

// NewElement returns a new zero-valued Element sized for ctx.
func (ctx *Context) NewElement() Element { return make([]uint64, ctx.words) }

// NewScratch returns a new Element sized for use as Mul/Square/Inv scratch.
func (ctx *Context) NewScratch() Element { return make([]uint64, ctx.ScratchWords()) }

// SetSmall sets dst to the Montgomery encoding of the small constant v.
func (ctx *Context) SetSmall(dst Element, v uint64) {
	plain := make([]uint64, ctx.words)
	plain[0] = v
	scratch := ctx.NewScratch()
	ctx.mulReduce(dst, plain, ctx.rr, scratch)
}

// Zero sets dst to the additive identity.
func (ctx *Context) Zero(dst Element) {
	for i := range dst {
		dst[i] = 0
	}
}

// One sets dst to the Montgomery encoding of 1.
func (ctx *Context) One(dst Element) {
	copy(dst, ctx.montOne)
}

// Set copies src into dst.
func (ctx *Context) Set(dst, src Element) { copy(dst, src) }

// FromBytes decodes the canonical big-endian encoding src (length
// ctx.Bytes()) into dst, converting it into Montgomery form. It returns
// an error if the decoded value is not reduced modulo p.
func (ctx *Context) FromBytes(dst Element, src []byte) error {
	plain := make([]uint64, ctx.words)
	words.BytesToWords(plain, src)
	if words.Cmp(plain, ctx.p) >= 0 {
		return errors.New("mont: value not reduced modulo p")
	}
	scratch := ctx.NewScratch()
	ctx.mulReduce(dst, plain, ctx.rr, scratch)
	return nil
}

// ToBytes encodes src (Montgomery form) into dst as a canonical
// big-endian byte string. len(dst) must equal ctx.Bytes().
func (ctx *Context) ToBytes(dst []byte, src Element) error {
	if len(dst) != ctx.bytes {
		return errors.New("mont: destination has wrong length")
	}
	plain := make([]uint64, ctx.words)
	one := make([]uint64, ctx.words)
	one[0] = 1
	scratch := ctx.NewScratch()
	ctx.mulReduce(plain, src, one, scratch) // strips the R factor
	words.WordsToBytes(dst, plain)
	return nil
}

// Add sets dst = a + b mod p.
func (ctx *Context) Add(dst, a, b Element) { copy(dst, ctx.modAdd(a, b)) }

// Sub sets dst = a - b mod p.
func (ctx *Context) Sub(dst, a, b Element) { copy(dst, ctx.modSub(a, b)) }

// Negate sets dst = -a mod p = (0 - a) mod p. Valid in any domain because
// the zero element has the same encoding in both domains.
func (ctx *Context) Negate(dst, a Element) { copy(dst, ctx.modSub(ctx.NewElement(), a)) }

// Mul sets dst = a * b mod p, operating on Montgomery-form operands and
// producing a Montgomery-form result. scratch must have ScratchWords()
// limbs and may alias neither dst, a nor b.
func (ctx *Context) Mul(dst, a, b, scratch Element) { ctx.mulReduce(dst, a, b, scratch) }

// Square sets dst = a * a mod p.
func (ctx *Context) Square(dst, a, scratch Element) { ctx.mulReduce(dst, a, a, scratch) }

// Equal reports whether a == b.
func (ctx *Context) Equal(a, b Element) bool { return words.Equal(a, b) }

// IsZero reports whether a is the additive identity.
func (ctx *Context) IsZero(a Element) bool { return words.IsZero(a) }

// IsOne reports whether a is the Montgomery encoding of 1.
func (ctx *Context) IsOne(a Element) bool { return words.Equal(a, ctx.montOne) }

// Inv sets dst = a^-1 mod p via Fermat's little theorem (a^(p-2)), using
// left-to-right square-and-multiply over the (public) exponent p-2.
// Montgomery multiplication composes correctly across the whole chain,
// so both the accumulator and the result stay in Montgomery form
// throughout -- no extra domain conversion is required.
func (ctx *Context) Inv(dst, a Element, scratch Element) {
	acc := ctx.NewElement()
	ctx.One(acc)

	started := false
	for i := ctx.words - 1; i >= 0; i-- {
		w := ctx.pMinus2[i]
		for bit := 63; bit >= 0; bit-- {
			if started {
				ctx.mulReduce(acc, acc, acc, scratch)
			}
			if (w>>uint(bit))&1 == 1 {
				ctx.mulReduce(acc, acc, a, scratch)
				started = true
			}
		}
	}
	copy(dst, acc)
}

// ReduceWide reduces an arbitrary-length big-endian byte string wide
// modulo p, writing the Montgomery-form result to dst. It is used to
// turn oversized HKDF output into a field element without the
// reduction itself leaking which of the (rare) top-heavy values it saw,
// via the standard bit-serial double-and-add-bit reduction: two modAdds
// per bit of input (double, then add the bit, 0 or 1), so the number of
// modular operations depends only on len(wide), never on its value.
func (ctx *Context) ReduceWide(dst Element, wide []byte) {
	acc := make([]uint64, ctx.words)
	bitEl := make([]uint64, ctx.words)

	for _, b := range wide {
		for bit := 7; bit >= 0; bit-- {
			acc = ctx.modAdd(acc, acc)
			bitEl[0] = uint64((b >> uint(bit)) & 1)
			acc = ctx.modAdd(acc, bitEl)
		}
	}

	scratch := ctx.NewScratch()
	ctx.mulReduce(dst, acc, ctx.rr, scratch)
}

// modAdd and modSub operate on plain (non-Montgomery) values; they are
// also correct on Montgomery-form operands because + and - commute with
// the R-scaling that defines the Montgomery encoding.
func (ctx *Context) modAdd(a, b []uint64) []uint64 {
	n := ctx.words
	sum := make([]uint64, n)
	var carry uint64
	for i := 0; i < n; i++ {
		sum[i], carry = bits.Add64(a[i], b[i], carry)
	}
	if carry != 0 || words.Cmp(sum, ctx.p) >= 0 {
		var borrow uint64
		for i := 0; i < n; i++ {
			sum[i], borrow = bits.Sub64(sum[i], ctx.p[i], borrow)
		}
	}
	return sum
}

func (ctx *Context) modSub(a, b []uint64) []uint64 {
	n := ctx.words
	diff := make([]uint64, n)
	var borrow uint64
	for i := 0; i < n; i++ {
		diff[i], borrow = bits.Sub64(a[i], b[i], borrow)
	}
	if borrow != 0 {
		var carry uint64
		for i := 0; i < n; i++ {
			diff[i], carry = bits.Add64(diff[i], ctx.p[i], carry)
		}
	}
	return diff
}

// mulReduce computes dst = a*b*R^-1 mod p via schoolbook multiplication
// followed by Montgomery reduction (REDC), the textbook two-pass
// (separated, not interleaved CIOS) form. scratch is used as the
// 2n+2-limb working accumulator.
func (ctx *Context) mulReduce(dst, a, b, scratch Element) {
	n := ctx.words
	t := scratch[:2*n+2]
	for i := range t {
		t[i] = 0
	}

	// Schoolbook product into t[0:2n].
	for i := 0; i < n; i++ {
		var carry uint64
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(a[i], b[j])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi, _ = bits.Add64(hi, 0, c)
			lo, c = bits.Add64(lo, carry, 0)
			hi, _ = bits.Add64(hi, 0, c)
			t[i+j] = lo
			carry = hi
		}
		k := i + n
		for carry != 0 {
			var c uint64
			t[k], c = bits.Add64(t[k], carry, 0)
			carry = c
			k++
		}
	}

	// Montgomery reduction: eliminate the low n limbs, one at a time.
	var outerCarry uint64
	for i := 0; i < n; i++ {
		m := t[i] * ctx.n0inv
		var carry uint64
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(m, ctx.p[j])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi, _ = bits.Add64(hi, 0, c)
			lo, c = bits.Add64(lo, carry, 0)
			hi, _ = bits.Add64(hi, 0, c)
			t[i+j] = lo
			carry = hi
		}
		k := i + n
		sum, c := bits.Add64(t[k], carry, outerCarry)
		t[k] = sum
		outerCarry = c
	}

	res := t[n : 2*n]
	if outerCarry != 0 || words.Cmp(res, ctx.p) >= 0 {
		var borrow uint64
		for i := 0; i < n; i++ {
			res[i], borrow = bits.Sub64(res[i], ctx.p[i], borrow)
		}
	}
	copy(dst, res)
}

// invWord computes -x^-1 mod 2^64 via Newton-Raphson, the standard way
// to derive the Montgomery n0' constant from the low limb of the modulus.
func invWord(x uint64) uint64 {
	// x is odd, so it has a unique inverse mod 2^64.
	y := x
	for i := 0; i < 5; i++ {
		y = y * (2 - x*y)
	}
	return -y
}
