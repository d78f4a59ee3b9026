package curve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/elliptic-ct/ecws/internal/curve"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

// p256 test fixtures, NIST P-256 domain parameters.
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

func setup(t *testing.T) (*mont.Context, *workplace.Workplace, mont.Element, mont.Element, mont.Element) {
	ctx, err := mont.NewContext(p256P)
	require.NoError(t, err)
	wp := workplace.New(ctx)

	b := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(b, p256B))

	gx := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(gx, p256Gx))
	gy := ctx.NewElement()
	require.NoError(t, ctx.FromBytes(gy, p256Gy))

	return ctx, wp, b, gx, gy
}

func TestDoublePAI(t *testing.T) {
	ctx, wp, b, _, _ := setup(t)

	x1, y1, z1 := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	ctx.One(y1) // (0,1,0): PAI

	x3, y3, z3 := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.Double(ctx, wp, x3, y3, z3, x1, y1, z1, b)

	require.True(t, ctx.IsZero(z3))
}

func TestDoubleMatchesFullAdd(t *testing.T) {
	ctx, wp, b, gx, gy := setup(t)
	one := ctx.NewElement()
	ctx.One(one)

	dx, dy, dz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.Double(ctx, wp, dx, dy, dz, gx, gy, one, b)

	ax, ay, az := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.FullAdd(ctx, wp, ax, ay, az, gx, gy, one, gx, gy, one, b)

	// Both represent 2G but may differ in projective representation;
	// compare via the cross-multiplication equality test.
	s := wp.Scratch
	lhs1, rhs1 := ctx.NewElement(), ctx.NewElement()
	ctx.Mul(lhs1, dx, az, s)
	ctx.Mul(rhs1, ax, dz, s)
	require.True(t, ctx.Equal(lhs1, rhs1))

	lhs2, rhs2 := ctx.NewElement(), ctx.NewElement()
	ctx.Mul(lhs2, dy, az, s)
	ctx.Mul(rhs2, ay, dz, s)
	require.True(t, ctx.Equal(lhs2, rhs2))
}

func TestMixAddAffinePAIGuard(t *testing.T) {
	ctx, wp, b, gx, gy := setup(t)
	one := ctx.NewElement()
	ctx.One(one)

	x3, y3, z3 := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	zero := ctx.NewElement()
	curve.MixAdd(ctx, wp, x3, y3, z3, gx, gy, one, zero, zero, b)

	require.True(t, ctx.Equal(x3, gx))
	require.True(t, ctx.Equal(y3, gy))
	require.True(t, ctx.Equal(z3, one))
}

func TestMixAddMatchesFullAdd(t *testing.T) {
	ctx, wp, b, gx, gy := setup(t)
	one := ctx.NewElement()
	ctx.One(one)

	// 2G computed via FullAdd, in affine form, as the mix-add operand.
	twoX, twoY, twoZ := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.FullAdd(ctx, wp, twoX, twoY, twoZ, gx, gy, one, gx, gy, one, b)
	ax, ay := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, ax, ay, twoX, twoY, twoZ)

	// G + 2G via mix_add, vs G + 2G via full_add.
	mx, my, mz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.MixAdd(ctx, wp, mx, my, mz, gx, gy, one, ax, ay, b)

	fx, fy, fz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.FullAdd(ctx, wp, fx, fy, fz, gx, gy, one, twoX, twoY, twoZ, b)

	s := wp.Scratch
	l, r := ctx.NewElement(), ctx.NewElement()
	ctx.Mul(l, mx, fz, s)
	ctx.Mul(r, fx, mz, s)
	require.True(t, ctx.Equal(l, r))

	ctx.Mul(l, my, fz, s)
	ctx.Mul(r, fy, mz, s)
	require.True(t, ctx.Equal(l, r))
}

func TestToAffinePAI(t *testing.T) {
	ctx, wp, _, _, _ := setup(t)
	x1, y1, z1 := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	ctx.One(y1)

	x3, y3 := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, x3, y3, x1, y1, z1)
	require.True(t, ctx.IsZero(x3))
	require.True(t, ctx.IsZero(y3))
}

func TestToAffineIdentity(t *testing.T) {
	ctx, wp, b, gx, gy := setup(t)
	one := ctx.NewElement()
	ctx.One(one)

	x3, y3 := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, x3, y3, gx, gy, one)
	require.True(t, ctx.Equal(x3, gx))
	require.True(t, ctx.Equal(y3, gy))
	_ = b
}

func TestOnCurveAfterDouble(t *testing.T) {
	ctx, wp, b, gx, gy := setup(t)
	one := ctx.NewElement()
	ctx.One(one)

	dx, dy, dz := ctx.NewElement(), ctx.NewElement(), ctx.NewElement()
	curve.Double(ctx, wp, dx, dy, dz, gx, gy, one, b)

	ax, ay := ctx.NewElement(), ctx.NewElement()
	curve.ToAffine(ctx, wp, ax, ay, dx, dy, dz)

	s := wp.Scratch
	lhs := ctx.NewElement()
	ctx.Square(lhs, ay, s)

	x2, x3 := ctx.NewElement(), ctx.NewElement()
	ctx.Square(x2, ax, s)
	ctx.Mul(x3, x2, ax, s)

	threeX := ctx.NewElement()
	ctx.Add(threeX, ax, ax)
	ctx.Add(threeX, threeX, ax)

	rhs := ctx.NewElement()
	ctx.Sub(rhs, x3, threeX)
	ctx.Add(rhs, rhs, b)

	require.True(t, ctx.Equal(lhs, rhs))
}
