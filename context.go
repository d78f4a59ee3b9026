// Package ecws implements a constant-time elliptic curve arithmetic
// engine for short Weierstrass curves y² = x³ - 3x + b over a prime
// field, using the complete addition formulae of Renes, Costello and
// Batina. It is built around a reusable Context (one per curve) and
// Points bound to that Context, matching the lifecycle of the C
// engine it descends from: create a context once, create and free
// many points against it.
package ecws

import (
	"crypto/rand"
	"encoding/binary"

	"gitlab.com/elliptic-ct/ecws/internal/blind"
	"gitlab.com/elliptic-ct/ecws/internal/comb"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
)

// generatorTableWidth is the comb table's window size in bits: one
// subtable per byte of the scalar, matching the original P-256
// tables' 8-bit window.
const generatorTableWidth = 8

// ladderWindowWidth is the window size the generic (non-generator)
// ladder uses, component E.
const ladderWindowWidth = 4

// Context binds a curve (a prime field, the coefficient b, the curve
// order) to the derived Montgomery arithmetic and, when the modulus is
// NIST P-256, a precomputed generator table. All Points created from a
// Context must not be used with any other Context.
type Context struct {
	mont *mont.Context

	b     mont.Element
	n     []byte // curve order, big-endian, public
	gx    mont.Element
	gy    mont.Element
	table *comb.Table // nil unless this is the recognized P-256 generator

	randSeed uint64
}

// NewContext builds a Context for the curve y² = x³ - 3x + b over the
// field of characteristic p, with group order n and generator (gx,
// gy), all big-endian encoded. randSeed seeds this context's blinding
// derivations (see internal/seed); it need not be secret by itself,
// only unpredictable together with the process's own entropy, which
// NewContext mixes in via crypto/rand so that two contexts built from
// the same caller-supplied seed still diverge.
func NewContext(p, b, n, gx, gy []byte, randSeed uint64) (*Context, error) {
	if p == nil || b == nil || n == nil || gx == nil || gy == nil {
		return nil, newErr(KindNull, "curve parameter")
	}

	mctx, err := mont.NewContext(p)
	if err != nil {
		return nil, newErr(KindECCurve, err.Error())
	}

	ctx := &Context{
		mont: mctx,
		n:    append([]byte(nil), n...),
	}

	ctx.b = mctx.NewElement()
	if err := mctx.FromBytes(ctx.b, b); err != nil {
		return nil, newErr(KindValue, "b: "+err.Error())
	}
	ctx.gx = mctx.NewElement()
	if err := mctx.FromBytes(ctx.gx, gx); err != nil {
		return nil, newErr(KindValue, "gx: "+err.Error())
	}
	ctx.gy = mctx.NewElement()
	if err := mctx.FromBytes(ctx.gy, gy); err != nil {
		return nil, newErr(KindValue, "gy: "+err.Error())
	}

	var entropy [8]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		return nil, newErr(KindMemory, "entropy: "+err.Error())
	}
	ctx.randSeed = randSeed ^ binary.LittleEndian.Uint64(entropy[:])

	if mctx.ModulusTag() == mont.ModulusP256 && isP256Generator(mctx, ctx.gx, ctx.gy) {
		// The comb table is sized with blind.BufferSize (the field's byte
		// width plus 5), so generator scalars up to that many bytes long,
		// after leading zero bytes are stripped, fit the table.
		numTables := blind.BufferSize(mctx.Bytes(), len(n))
		table, err := comb.Build(mctx, ctx.b, ctx.gx, ctx.gy, numTables, ctx.randSeed)
		if err != nil {
			return nil, newErr(KindMemory, "generator table: "+err.Error())
		}
		ctx.table = table
	}

	return ctx, nil
}

// isP256Generator reports whether (gx, gy) matches the well-known
// NIST P-256 base point, gating use of the precomputed generator
// table the way ec_ws_scalar's hardcoded mont_Gx/mont_Gy comparison
// does: only the standard generator gets the fast path, so a caller
// supplying an alternate (but still valid) base point for the P-256
// curve transparently falls back to the generic ladder.
func isP256Generator(mctx *mont.Context, gx, gy mont.Element) bool {
	wantX := mctx.NewElement()
	wantY := mctx.NewElement()
	if err := mctx.FromBytes(wantX, p256Gx); err != nil {
		return false
	}
	if err := mctx.FromBytes(wantY, p256Gy); err != nil {
		return false
	}
	return mctx.Equal(gx, wantX) && mctx.Equal(gy, wantY)
}

// FieldBytes returns the byte length of an encoded field element (and
// thus of an encoded point coordinate) for this curve.
func (ctx *Context) FieldBytes() int { return ctx.mont.Bytes() }

// Order returns the curve order, big-endian encoded. The returned
// slice must not be modified.
func (ctx *Context) Order() []byte { return ctx.n }

// nextSeed derives a fresh blinding seed for one call site, mixing
// ctx's immutable base seed with process entropy read fresh every
// time. Context is documented (spec §5) as safe for concurrent
// read-only use, so this must not mutate any Context field; reading
// crypto/rand per call, rather than advancing a shared counter, keeps
// that guarantee without needing a mutex.
func (ctx *Context) nextSeed() uint64 {
	var entropy [8]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		// crypto/rand failures are only possible if the OS entropy
		// source itself is broken, in which case continuing without
		// fresh per-call randomness (falling back to the base seed
		// alone) is preferable to panicking inside a library call.
	}
	z := ctx.randSeed ^ binary.LittleEndian.Uint64(entropy[:])
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
