package ecws

import (
	"encoding/binary"

	"gitlab.com/elliptic-ct/ecws/internal/bitwindow"
	"gitlab.com/elliptic-ct/ecws/internal/blind"
	"gitlab.com/elliptic-ct/ecws/internal/curve"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/scatter"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

// Scalar sets v = k*p, where k is a big-endian scalar. When p is ctx's
// recognized P-256 generator, the precomputed comb table (component F)
// is used instead of the generic windowed ladder (component E); per
// spec.md §4.G, neither blinding is applied on that fast path, since
// the comb's own scatter step already randomizes its accesses. On the
// generic path, both countermeasures are applied before the scalar or
// point ever reaches the ladder: the scalar is blinded to k' = k + R*n
// for a fresh random multiple R of the curve order, and p's projective
// coordinates are rescaled by a fresh random mask.
func (v *Point) Scalar(p *Point, k []byte) error {
	if err := v.assertSameContext(p); err != nil {
		return err
	}
	if k == nil {
		return newErr(KindNull, "scalar")
	}

	ctx := v.ctx
	mctx := ctx.mont

	isGen := false
	if ctx.table != nil {
		g, gerr := NewGeneratorPoint(ctx)
		if gerr == nil {
			if eq, cerr := p.Cmp(g); cerr == nil && eq {
				isGen = true
			}
		}
	}

	var x, y, z mont.Element
	var err error
	if isGen {
		x, y, z, err = ctx.scalarMultGenerator(k)
	} else {
		blindedK, berr := ctx.blindScalar(k)
		if berr != nil {
			return berr
		}
		var bx, by, bz mont.Element
		bx, by, bz, err = ctx.blindPointCoordinates(p)
		if err == nil {
			x, y, z, err = ctx.scalarMultGeneric(bx, by, bz, blindedK)
		}
	}
	if err != nil {
		return err
	}

	mctx.Set(v.x, x)
	mctx.Set(v.y, y)
	mctx.Set(v.z, z)
	v.isValid = true
	return nil
}

// blindScalar derives a fresh R and returns k + R*n, big-endian.
func (ctx *Context) blindScalar(k []byte) ([]byte, error) {
	seed := ctx.nextSeed()
	r, err := blind.ScalarFactor(seed)
	if err != nil {
		return nil, newErr(KindMemory, "scalar blind: "+err.Error())
	}

	out := make([]byte, blind.BufferSize(len(k), len(ctx.n)))
	if err := blind.Scalar(out, k, ctx.n, r); err != nil {
		return nil, newErr(KindMemory, "scalar blind: "+err.Error())
	}
	return out, nil
}

// blindPointCoordinates returns a projective representation of p
// rescaled by a fresh random mask.
func (ctx *Context) blindPointCoordinates(p *Point) (x, y, z mont.Element, err error) {
	mctx := ctx.mont
	seed := ctx.nextSeed()
	mask, merr := blind.CoordinateMask(mctx, seed)
	if merr != nil {
		return nil, nil, nil, newErr(KindMemory, "coordinate blind: "+merr.Error())
	}

	x, y, z = mctx.NewElement(), mctx.NewElement(), mctx.NewElement()
	mctx.Set(x, p.x)
	mctx.Set(y, p.y)
	mctx.Set(z, p.z)
	blind.Coordinates(mctx, x, y, z, mask, workplace.New(mctx).Scratch)
	return x, y, z, nil
}

// scalarMultGeneric implements the fixed 4-bit-window left-to-right
// ladder (component E) against an arbitrary (already blinded) point.
func (ctx *Context) scalarMultGeneric(px, py, pz mont.Element, k []byte) (x, y, z mont.Element, err error) {
	mctx := ctx.mont
	wp := workplace.New(mctx)

	tbl, recordSize, err := ctx.buildGenericTable(px, py, pz)
	if err != nil {
		return nil, nil, nil, err
	}

	accX, accY, accZ := mctx.NewElement(), mctx.NewElement(), mctx.NewElement()
	mctx.Zero(accX)
	mctx.One(accY)
	mctx.Zero(accZ)

	it := bitwindow.NewLR(ladderWindowWidth, k)
	first := true
	rec := make([]byte, recordSize)
	tx, ty, tz := mctx.NewElement(), mctx.NewElement(), mctx.NewElement()

	for {
		w, ok := it.Next()
		if !ok {
			break
		}
		if !first {
			for i := 0; i < ladderWindowWidth; i++ {
				curve.Double(mctx, wp, accX, accY, accZ, accX, accY, accZ, ctx.b)
			}
		}
		first = false

		if err := tbl.Gather(rec, uint64(w)); err != nil {
			return nil, nil, nil, newErr(KindMemory, err.Error())
		}
		decodeProjective(rec, tx, ty, tz, mctx.Words())
		curve.FullAdd(mctx, wp, accX, accY, accZ, accX, accY, accZ, tx, ty, tz, ctx.b)
	}

	return accX, accY, accZ, nil
}

// buildGenericTable builds the 2^ladderWindowWidth-entry scatter table
// {0*P, 1*P, ..., 15*P} for this call's point, entry 0 being the
// canonical projective point at infinity.
func (ctx *Context) buildGenericTable(px, py, pz mont.Element) (*scatter.Table, int, error) {
	mctx := ctx.mont
	wp := workplace.New(mctx)
	wordsPerEl := mctx.Words()
	recordSize := 3 * wordsPerEl * 8

	n := 1 << ladderWindowWidth
	records := make([][]byte, n)
	records[0] = make([]byte, recordSize) // (0,1,0)
	one := mctx.NewElement()
	mctx.One(one)
	encodeProjective(records[0], mctx.NewElement(), one, mctx.NewElement(), wordsPerEl)

	curX, curY, curZ := mctx.NewElement(), mctx.NewElement(), mctx.NewElement()
	mctx.Set(curX, px)
	mctx.Set(curY, py)
	mctx.Set(curZ, pz)
	records[1] = make([]byte, recordSize)
	encodeProjective(records[1], curX, curY, curZ, wordsPerEl)

	for d := 2; d < n; d++ {
		x3, y3, z3 := mctx.NewElement(), mctx.NewElement(), mctx.NewElement()
		curve.FullAdd(mctx, wp, x3, y3, z3, curX, curY, curZ, px, py, pz, ctx.b)
		curX, curY, curZ = x3, y3, z3
		records[d] = make([]byte, recordSize)
		encodeProjective(records[d], curX, curY, curZ, wordsPerEl)
	}

	tbl, err := scatter.New(records, recordSize, ctx.nextSeed())
	if err != nil {
		return nil, 0, newErr(KindMemory, err.Error())
	}
	return tbl, recordSize, nil
}

// scalarMultGenerator implements the right-to-left comb (component F)
// against ctx's precomputed generator table.
func (ctx *Context) scalarMultGenerator(k []byte) (x, y, z mont.Element, err error) {
	mctx := ctx.mont
	wp := workplace.New(mctx)
	numTables := ctx.table.NumTables()

	it := bitwindow.NewRL(generatorTableWidth, k)
	if it.NumWindows() > numTables {
		// The scalar (unblinded on this path) must fit the table built at
		// context construction time, one subtable per byte position.
		return nil, nil, nil, newErr(KindValue, "scalar exceeds generator table width")
	}

	accX, accY, accZ := mctx.NewElement(), mctx.NewElement(), mctx.NewElement()
	mctx.Zero(accX)
	mctx.One(accY)
	mctx.Zero(accZ)

	tx, ty := mctx.NewElement(), mctx.NewElement()
	for i := 0; ; i++ {
		digit, ok := it.Next()
		if !ok {
			break
		}
		if err := ctx.table.Lookup(mctx, tx, ty, i, byte(digit)); err != nil {
			return nil, nil, nil, newErr(KindMemory, err.Error())
		}
		curve.MixAdd(mctx, wp, accX, accY, accZ, accX, accY, accZ, tx, ty, ctx.b)
	}

	return accX, accY, accZ, nil
}

func encodeProjective(out []byte, x, y, z mont.Element, wordsPerEl int) {
	for i := 0; i < wordsPerEl; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], x[i])
		binary.LittleEndian.PutUint64(out[(wordsPerEl+i)*8:], y[i])
		binary.LittleEndian.PutUint64(out[(2*wordsPerEl+i)*8:], z[i])
	}
}

func decodeProjective(rec []byte, x, y, z mont.Element, wordsPerEl int) {
	for i := 0; i < wordsPerEl; i++ {
		x[i] = binary.LittleEndian.Uint64(rec[i*8:])
		y[i] = binary.LittleEndian.Uint64(rec[(wordsPerEl+i)*8:])
		z[i] = binary.LittleEndian.Uint64(rec[(2*wordsPerEl+i)*8:])
	}
}
