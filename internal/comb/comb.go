// Package comb builds and queries the precomputed right-to-left window
// table used to accelerate scalar multiplication against a fixed
// generator (component F). Unlike the teacher's codegen step, which
// serializes a table built once offline into an embedded binary, this
// table is built at process-init time by repeated application of the
// engine's own complete addition/doubling formulae -- there is no
// offline tool in this engine's build.
package comb

import (
	"encoding/binary"
	"errors"

	"gitlab.com/elliptic-ct/ecws/internal/curve"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/scatter"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

// Table holds one scatter table per byte position of the scalar, each
// with 256 entries: entry 0 is the affine point-at-infinity encoding
// (0,0); entry d (1..255) is d * 256^tableIndex * G.
type Table struct {
	sub        []*scatter.Table
	wordsPerEl int
}

// Build constructs the comb table for generator (gx, gy) over ctx, one
// subtable per byte of a numTables-byte scalar (a 32-byte P-256 scalar
// needs 32; NewContext builds 37). seed only affects the physical layout scatter.New chooses
// for each subtable, not its logical contents.
func Build(ctx *mont.Context, b, gx, gy mont.Element, numTables int, seed uint64) (*Table, error) {
	wp := workplace.New(ctx)
	wordsPerEl := ctx.Words()
	recordSize := 2 * wordsPerEl * 8

	t := &Table{wordsPerEl: wordsPerEl}

	baseX, baseY := ctx.NewElement(), ctx.NewElement()
	ctx.Set(baseX, gx)
	ctx.Set(baseY, gy)

	for table := 0; table < numTables; table++ {
		records := make([][]byte, 256)
		records[0] = make([]byte, recordSize) // (0,0): affine PAI

		curX, curY := ctx.NewElement(), ctx.NewElement()
		ctx.Set(curX, baseX)
		ctx.Set(curY, baseY)
		records[1] = encodeAffine(curX, curY, wordsPerEl)

		for d := 2; d < 256; d++ {
			// cur = cur + base, both affine (Z implicitly 1): full
			// projective add, then normalize back to affine.
			x3, y3, z3 := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
			one := ctx.NewElement()
			ctx.One(one)
			curve.FullAdd(ctx, wp, x3, y3, z3, curX, curY, one, baseX, baseY, one, b)
			ctx.Set(curX, x3)
			ctx.Set(curY, y3)
			curve.ToAffine(ctx, wp, curX, curY, x3, y3, z3)
			records[d] = encodeAffine(curX, curY, wordsPerEl)
		}

		sub, err := scatter.New(records, recordSize, seed^uint64(table)*0x9e3779b97f4a7c15)
		if err != nil {
			return nil, err
		}
		t.sub = append(t.sub, sub)

		if table == numTables-1 {
			break
		}

		// Advance base by 256 (double 8 times) for the next byte position.
		bx, by, bz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
		one := ctx.NewElement()
		ctx.One(one)
		ctx.Set(bx, baseX)
		ctx.Set(by, baseY)
		ctx.Set(bz, one)
		for i := 0; i < 8; i++ {
			curve.Double(ctx, wp, bx, by, bz, bx, by, bz, b)
		}
		curve.ToAffine(ctx, wp, baseX, baseY, bx, by, bz)
	}

	return t, nil
}

// ErrRange is returned when a byte position or digit is out of range.
var ErrRange = errors.New("comb: index out of range")

// Lookup gathers table[pos][digit] into (x, y), obliviously over the
// 256 entries of subtable pos.
func (t *Table) Lookup(ctx *mont.Context, x, y mont.Element, pos int, digit byte) error {
	if pos < 0 || pos >= len(t.sub) {
		return ErrRange
	}
	rec := make([]byte, 2*t.wordsPerEl*8)
	if err := t.sub[pos].Gather(rec, uint64(digit)); err != nil {
		return err
	}
	decodeAffine(rec, x, y, t.wordsPerEl)
	return nil
}

// NumTables reports how many byte-position subtables the table has.
func (t *Table) NumTables() int { return len(t.sub) }

func encodeAffine(x, y mont.Element, wordsPerEl int) []byte {
	out := make([]byte, 2*wordsPerEl*8)
	for i := 0; i < wordsPerEl; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], x[i])
		binary.LittleEndian.PutUint64(out[(wordsPerEl+i)*8:], y[i])
	}
	return out
}

func decodeAffine(rec []byte, x, y mont.Element, wordsPerEl int) {
	for i := 0; i < wordsPerEl; i++ {
		x[i] = binary.LittleEndian.Uint64(rec[i*8:])
		y[i] = binary.LittleEndian.Uint64(rec[(wordsPerEl+i)*8:])
	}
}
