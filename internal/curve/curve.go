// Package curve implements the complete projective addition and
// doubling formulae for short Weierstrass curves y² = x³ - 3x + b,
// algorithms 4, 5 and 6 of Renes, Costello and Batina, "Complete
// addition formulas for prime order elliptic curves" (2015).
//
// Every formula here is regular: the sequence of Montgomery operations
// it performs is fixed and does not depend on whether any operand is
// the point at infinity, or on the values of any coordinate. The one
// exception is MixAdd, which returns its projective operand unchanged
// when the affine operand is the (0, 0) encoding. That
// property, not speed, is the reason the steps are laid out exactly as
// numbered in the paper -- the operand renaming from one temporary to
// the next is load-bearing and must not be "simplified".
package curve

import (
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

// Point is a projective (X, Y, Z) triple. Z == 0 represents the point
// at infinity, canonically (0, 1, 0).
type Point struct {
	X, Y, Z mont.Element
}

// Affine is a point with an implicit Z = 1, except that (0, 0) encodes
// the point at infinity (matching the wire encoding at the package
// boundary, per the engine's PAI convention).
type Affine struct {
	X, Y mont.Element
}

// Double sets (x3,y3,z3) = 2*(x1,y1,z1). Algorithm 6. Input and output
// may alias. Correct (and branch-free) when the input is PAI.
func Double(ctx *mont.Context, wp *workplace.Workplace, x3, y3, z3, x1, y1, z1, b mont.Element) {
	t0, t1, t2, t3 := wp.A, wp.B, wp.C, wp.D
	x, y, z := wp.E, wp.F, wp.G
	s := wp.Scratch

	ctx.Set(x, x1)
	ctx.Set(y, y1)
	ctx.Set(z, z1)

	ctx.Mul(t0, x, x, s) // 1
	ctx.Mul(t1, y, y, s)
	ctx.Mul(t2, z, z, s)

	ctx.Mul(t3, x, y, s) // 4
	ctx.Add(t3, t3, t3)
	ctx.Mul(z3, x, z, s)

	ctx.Add(z3, z3, z3) // 7
	ctx.Mul(y3, b, t2, s)
	ctx.Sub(y3, y3, z3)

	ctx.Add(x3, y3, y3) // 10
	ctx.Add(y3, x3, y3)
	ctx.Sub(x3, t1, y3)

	ctx.Add(y3, t1, y3) // 13
	ctx.Mul(y3, x3, y3, s)
	ctx.Mul(x3, x3, t3, s)

	ctx.Add(t3, t2, t2) // 16
	ctx.Add(t2, t2, t3)
	ctx.Mul(z3, b, z3, s)

	ctx.Sub(z3, z3, t2) // 19
	ctx.Sub(z3, z3, t0)
	ctx.Add(t3, z3, z3)

	ctx.Add(z3, z3, t3) // 22
	ctx.Add(t3, t0, t0)
	ctx.Add(t0, t3, t0)

	ctx.Sub(t0, t0, t2) // 25
	ctx.Mul(t0, t0, z3, s)
	ctx.Add(y3, y3, t0)

	ctx.Mul(t0, y, z, s) // 28
	ctx.Add(t0, t0, t0)
	ctx.Mul(z3, t0, z3, s)

	ctx.Sub(x3, x3, z3) // 31
	ctx.Mul(z3, t0, t1, s)
	ctx.Add(z3, z3, z3)

	ctx.Add(z3, z3, z3) // 34
}

// MixAdd sets (x3,y3,z3) = (x1,y1,z1) + (x2,y2), where the second point
// is affine (Z assumed 1). Algorithm 5. Faster than FullAdd, but NOT
// correct when the affine operand is (0,0) (this engine's PAI
// encoding for an affine point), so MixAdd special-cases that itself by
// copying (x1,y1,z1) to the output, which is safe precisely because it
// is a check on public table data, never on a secret-dependent branch
// mid-ladder.
func MixAdd(ctx *mont.Context, wp *workplace.Workplace, x3, y3, z3, x1, y1, z1, x2, y2, b mont.Element) {
	// Affine PAI (our (0,0) encoding) is not a valid input to algorithm 5;
	// this is a check on public table data (never a secret scalar bit or
	// coordinate), so branching on it does not reopen a side channel.
	if ctx.IsZero(x2) && ctx.IsZero(y2) {
		ctx.Set(x3, x1)
		ctx.Set(y3, y1)
		ctx.Set(z3, z1)
		return
	}

	t0, t1, t2, t3, t4 := wp.A, wp.B, wp.C, wp.D, wp.E
	x1c, y1c, z1c := wp.F, wp.G, wp.H
	s := wp.Scratch

	ctx.Set(x1c, x1)
	ctx.Set(y1c, y1)
	ctx.Set(z1c, z1)

	ctx.Mul(t0, x1c, x2, s) // 1
	ctx.Mul(t1, y1c, y2, s)
	ctx.Add(t3, x2, y2)

	ctx.Add(t4, x1c, y1c) // 4
	ctx.Mul(t3, t3, t4, s)
	ctx.Add(t4, t0, t1)

	ctx.Sub(t3, t3, t4) // 7
	ctx.Mul(t4, y2, z1c, s)
	ctx.Add(t4, t4, y1c)

	ctx.Mul(y3, x2, z1c, s) // 10
	ctx.Add(y3, y3, x1c)
	ctx.Mul(z3, b, z1c, s)

	ctx.Sub(x3, y3, z3) // 13
	ctx.Add(z3, x3, x3)
	ctx.Add(x3, x3, z3)

	ctx.Sub(z3, t1, x3) // 16
	ctx.Add(x3, t1, x3)
	ctx.Mul(y3, b, y3, s)

	ctx.Add(t1, z1c, z1c) // 19
	ctx.Add(t2, t1, z1c)
	ctx.Sub(y3, y3, t2)

	ctx.Sub(y3, y3, t0) // 22
	ctx.Add(t1, y3, y3)
	ctx.Add(y3, t1, y3)

	ctx.Add(t1, t0, t0) // 25
	ctx.Add(t0, t1, t0)
	ctx.Sub(t0, t0, t2)

	ctx.Mul(t1, t4, y3, s) // 28
	ctx.Mul(t2, t0, y3, s)
	ctx.Mul(y3, x3, z3, s)

	ctx.Add(y3, y3, t2) // 31
	ctx.Mul(x3, t3, x3, s)
	ctx.Sub(x3, x3, t1)

	ctx.Mul(z3, t4, z3, s) // 34
	ctx.Mul(t1, t3, t0, s)
	ctx.Add(z3, z3, t1)
}

// FullAdd sets (x3,y3,z3) = (x1,y1,z1) + (x2,y2,z2). Algorithm 4. The
// only addition primitive safe when either input may be PAI with an
// unknown Z.
func FullAdd(ctx *mont.Context, wp *workplace.Workplace, x3, y3, z3, x1, y1, z1, x2, y2, z2, b mont.Element) {
	t0, t1, t2, t3, t4 := wp.A, wp.B, wp.C, wp.D, wp.E
	x1c, y1c, z1c := wp.F, wp.G, wp.H
	x2c, y2c, z2c := wp.I, wp.J, wp.K
	s := wp.Scratch

	ctx.Set(x1c, x1)
	ctx.Set(y1c, y1)
	ctx.Set(z1c, z1)
	ctx.Set(x2c, x2)
	ctx.Set(y2c, y2)
	ctx.Set(z2c, z2)

	ctx.Mul(t0, x1c, x2c, s) // 1
	ctx.Mul(t1, y1c, y2c, s)
	ctx.Mul(t2, z1c, z2c, s)

	ctx.Add(t3, x1c, y1c) // 4
	ctx.Add(t4, x2c, y2c)
	ctx.Mul(t3, t3, t4, s)

	ctx.Add(t4, t0, t1) // 7
	ctx.Sub(t3, t3, t4)
	ctx.Add(t4, y1c, z1c)

	ctx.Add(x3, y2c, z2c) // 10
	ctx.Mul(t4, t4, x3, s)
	ctx.Add(x3, t1, t2)

	ctx.Sub(t4, t4, x3) // 13
	ctx.Add(x3, x1c, z1c)
	ctx.Add(y3, x2c, z2c)

	ctx.Mul(x3, x3, y3, s) // 16
	ctx.Add(y3, t0, t2)
	ctx.Sub(y3, x3, y3)

	ctx.Mul(z3, b, t2, s) // 19
	ctx.Sub(x3, y3, z3)
	ctx.Add(z3, x3, x3)

	ctx.Add(x3, x3, z3) // 22
	ctx.Sub(z3, t1, x3)
	ctx.Add(x3, t1, x3)

	ctx.Mul(y3, b, y3, s) // 25
	ctx.Add(t1, t2, t2)
	ctx.Add(t2, t1, t2)

	ctx.Sub(y3, y3, t2) // 28
	ctx.Sub(y3, y3, t0)
	ctx.Add(t1, y3, y3)

	ctx.Add(y3, t1, y3) // 31
	ctx.Add(t1, t0, t0)
	ctx.Add(t0, t1, t0)

	ctx.Sub(t0, t0, t2) // 34
	ctx.Mul(t1, t4, y3, s)
	ctx.Mul(t2, t0, y3, s)

	ctx.Mul(y3, x3, z3, s) // 37
	ctx.Add(y3, y3, t2)
	ctx.Mul(x3, t3, x3, s)

	ctx.Sub(x3, x3, t1) // 40
	ctx.Mul(z3, t4, z3, s)
	ctx.Mul(t1, t3, t0, s)

	ctx.Add(z3, z3, t1) // 43
}

// ToAffine converts (x1,y1,z1) to affine coordinates. If z1 is zero
// (PAI), it writes the canonical (0, 0); otherwise it computes
// A = z1^-1 via Fermat inversion and scales X and Y by A.
func ToAffine(ctx *mont.Context, wp *workplace.Workplace, x3, y3, x1, y1, z1 mont.Element) {
	if ctx.IsZero(z1) {
		ctx.Zero(x3)
		ctx.Zero(y3)
		return
	}

	a := wp.A
	s := wp.Scratch
	ctx.Inv(a, z1, s)
	ctx.Mul(x3, x1, a, s)
	ctx.Mul(y3, y1, a, s)
}
