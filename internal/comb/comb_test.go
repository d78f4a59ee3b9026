package comb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/elliptic-ct/ecws/internal/comb"
	"gitlab.com/elliptic-ct/ecws/internal/curve"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

var (
	p256P = []byte{
		0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
	p256B = []byte{
		0x5a, 0xc6, 0x35, 0xd8, 0xaa, 0x3a, 0x93, 0xe7, 0xb3, 0xeb, 0xbd, 0x55, 0x76, 0x98, 0x86, 0xbc,
		0x65, 0x1d, 0x06, 0xb0, 0xcc, 0x53, 0xb0, 0xf6, 0x3b, 0xce, 0x3c, 0x3e, 0x27, 0xd2, 0x60, 0x4b,
	}
	p256Gx = []byte{
		0x6b, 0x17, 0xd1, 0xf2, 0xe1, 0x2c, 0x42, 0x47, 0xf8, 0xbc, 0xe6, 0xe5, 0x63, 0xa4, 0x40, 0xf2,
		0x77, 0x03, 0x7d, 0x81, 0x2d, 0xeb, 0x33, 0xa0, 0xf4, 0xa1, 0x39, 0x45, 0xd8, 0x98, 0xc2, 0x96,
	}
	p256Gy = []byte{
		0x4f, 0xe3, 0x42, 0xe2, 0xfe, 0x1a, 0x7f, 0x9b, 0x8e, 0xe7, 0xeb, 0x4a, 0x7c, 0x0f, 0x9e, 0x16,
		0x2b, 0xce, 0x33, 0x57, 0x6b, 0x31, 0x5e, 0xce, 0xcb, 0xb6, 0x40, 0x68, 0x37, 0xbf, 0x51, 0xf5,
	}
)

func setup(t *testing.T) (*mont.Context, mont.Element, mont.Element, mont.Element) {
	ctx, err := mont.NewContext(p256P)
	require.NoError(t, err)

	b := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(b, p256B))
	gx := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(gx, p256Gx))
	gy := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(gy, p256Gy))

	return ctx, b, gx, gy
}

// TestLookupZeroDigitIsPAI checks the comb table's slot-0 convention:
// digit 0 of any subtable must decode to the affine PAI encoding (0,0).
func TestLookupZeroDigitIsPAI(t *testing.T) {
	ctx, b, gx, gy := setup(t)
	tbl, err := comb.Build(ctx, b, gx, gy, 2, 1)
	require.NoError(t, err)

	x, y := ctx.NewElement(), ctx.NewElement()
	require.NoError(t, tbl.Lookup(ctx, x, y, 0, 0))
	require.True(t, ctx.IsZero(x))
	require.True(t, ctx.IsZero(y))
}

// TestLookupDigitOneIsBaseOfThatPosition checks that subtable i, digit
// 1 is 256^i * G, matching the comb's "advance base by 256 between
// subtables" construction.
func TestLookupDigitOneIsBaseOfThatPosition(t *testing.T) {
	ctx, b, gx, gy := setup(t)
	wp := workplace.New(ctx)
	tbl, err := comb.Build(ctx, b, gx, gy, 2, 7)
	require.NoError(t, err)

	x0, y0 := ctx.NewElement(), ctx.NewElement()
	require.NoError(t, tbl.Lookup(ctx, x0, y0, 0, 1))
	require.True(t, ctx.Equal(x0, gx))
	require.True(t, ctx.Equal(y0, gy))

	// Subtable 1, digit 1, must equal 256*G = double(G) eight times.
	one := ctx.NewElement()
	ctx.One(one)
	bx, by, bz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	ctx.Set(bx, gx)
	ctx.Set(by, gy)
	ctx.Set(bz, one)
	for i := 0; i < 8; i++ {
		curve.Double(ctx, wp, bx, by, bz, bx, by, bz, b)
	}
	wantX, wantY := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, wantX, wantY, bx, by, bz)

	x1, y1 := ctx.NewElement(), ctx.NewElement()
	require.NoError(t, tbl.Lookup(ctx, x1, y1, 1, 1))
	require.True(t, ctx.Equal(x1, wantX))
	require.True(t, ctx.Equal(y1, wantY))
}

// TestLookupDigitMatchesRepeatedAdd checks an interior digit (3) of
// subtable 0 against 3G computed independently via FullAdd/Double.
func TestLookupDigitMatchesRepeatedAdd(t *testing.T) {
	ctx, b, gx, gy := setup(t)
	wp := workplace.New(ctx)
	tbl, err := comb.Build(ctx, b, gx, gy, 1, 3)
	require.NoError(t, err)

	one := ctx.NewElement()
	ctx.One(one)
	dx, dy, dz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.Double(ctx, wp, dx, dy, dz, gx, gy, one, b) // 2G
	sx, sy, sz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.FullAdd(ctx, wp, sx, sy, sz, dx, dy, dz, gx, gy, one, b) // 3G
	wantX, wantY := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, wantX, wantY, sx, sy, sz)

	gotX, gotY := ctx.NewElement(), ctx.NewElement()
	require.NoError(t, tbl.Lookup(ctx, gotX, gotY, 0, 3))
	require.True(t, ctx.Equal(gotX, wantX))
	require.True(t, ctx.Equal(gotY, wantY))
}

func TestLookupRejectsOutOfRangePosition(t *testing.T) {
	ctx, b, gx, gy := setup(t)
	tbl, err := comb.Build(ctx, b, gx, gy, 1, 1)
	require.NoError(t, err)

	x, y := ctx.NewElement(), ctx.NewElement()
	require.ErrorIs(t, tbl.Lookup(ctx, x, y, 1, 0), comb.ErrRange)
}

func TestNumTables(t *testing.T) {
	ctx, b, gx, gy := setup(t)
	tbl, err := comb.Build(ctx, b, gx, gy, 5, 1)
	require.NoError(t, err)
	require.Equal(t, 5, tbl.NumTables())
}
