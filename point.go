package ecws

import (
	"gitlab.com/elliptic-ct/ecws/internal/curve"
	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

// Point is a point on a Context's curve, held internally in projective
// (X, Y, Z) coordinates. The zero value is NOT valid; use NewPoint,
// NewIdentityPoint, NewGeneratorPoint or Clone. A Point must only be
// used with the Context that created it.
type Point struct {
	ctx *Context

	x, y, z mont.Element

	isValid bool
}

// NewPoint returns a new Point set to the point at infinity, ready to
// be populated by Copy or by an operation such as Add, Double or Scalar.
func NewPoint(ctx *Context) (*Point, error) {
	if ctx == nil {
		return nil, newErr(KindNull, "context")
	}
	p := &Point{ctx: ctx}
	p.x = ctx.mont.NewElement()
	p.y = ctx.mont.NewElement()
	p.z = ctx.mont.NewElement()
	ctx.mont.One(p.y)
	p.isValid = true
	return p, nil
}

// NewIdentityPoint is an alias for NewPoint, which already returns the
// point at infinity in its canonical (0, 1, 0) form.
func NewIdentityPoint(ctx *Context) (*Point, error) { return NewPoint(ctx) }

// NewGeneratorPoint returns a new Point set to ctx's generator.
func NewGeneratorPoint(ctx *Context) (*Point, error) {
	p, err := NewPoint(ctx)
	if err != nil {
		return nil, err
	}
	ctx.mont.Set(p.x, ctx.gx)
	ctx.mont.Set(p.y, ctx.gy)
	ctx.mont.One(p.z)
	return p, nil
}

// NewPointXY builds a new Point from big-endian affine coordinates
// (x, y), each ctx.FieldBytes() long. The all-zero encoding (0, 0) is
// this engine's canonical point-at-infinity encoding at the API
// boundary. Any other (x, y) not satisfying y² = x³ - 3x + b is
// rejected with a KindECPoint error, and no point is returned.
func NewPointXY(ctx *Context, x, y []byte) (*Point, error) {
	v, err := NewPoint(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.setAffine(x, y); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Point) setAffine(x, y []byte) error {
	if err := v.assertValid(); err != nil {
		return err
	}
	if len(x) != v.ctx.FieldBytes() || len(y) != v.ctx.FieldBytes() {
		return newErr(KindValue, "coordinate length")
	}

	mctx := v.ctx.mont
	if isAllZero(x) && isAllZero(y) {
		mctx.Zero(v.x)
		mctx.One(v.y)
		mctx.Zero(v.z)
		return nil
	}

	px, py := mctx.NewElement(), mctx.NewElement()
	if err := mctx.FromBytes(px, x); err != nil {
		return newErr(KindValue, "x: "+err.Error())
	}
	if err := mctx.FromBytes(py, y); err != nil {
		return newErr(KindValue, "y: "+err.Error())
	}
	if !v.ctx.isOnCurve(px, py) {
		return newErr(KindECPoint, "point not on curve")
	}

	mctx.Set(v.x, px)
	mctx.Set(v.y, py)
	mctx.One(v.z)
	return nil
}

// isOnCurve reports whether affine (x, y) satisfies y² = x³ - 3x + b.
func (ctx *Context) isOnCurve(x, y mont.Element) bool {
	mctx := ctx.mont
	s := workplace.New(mctx).Scratch

	lhs := mctx.NewElement()
	mctx.Square(lhs, y, s)

	x2, x3 := mctx.NewElement(), mctx.NewElement()
	mctx.Square(x2, x, s)
	mctx.Mul(x3, x2, x, s)

	threeX := mctx.NewElement()
	mctx.Add(threeX, x, x)
	mctx.Add(threeX, threeX, x)

	rhs := mctx.NewElement()
	mctx.Sub(rhs, x3, threeX)
	mctx.Add(rhs, rhs, ctx.b)

	return mctx.Equal(lhs, rhs)
}

// GetXY writes v's affine coordinates, big-endian, into x and y (each
// ctx.FieldBytes() long). The point at infinity is written as (0, 0).
func (v *Point) GetXY(x, y []byte) error {
	if err := v.assertValid(); err != nil {
		return err
	}
	if len(x) != v.ctx.FieldBytes() || len(y) != v.ctx.FieldBytes() {
		return newErr(KindValue, "coordinate length")
	}

	mctx := v.ctx.mont
	wp := workplace.New(mctx)
	ax, ay := mctx.NewElement(), mctx.NewElement()
	curve.ToAffine(mctx, wp, ax, ay, v.x, v.y, v.z)

	if err := mctx.ToBytes(x, ax); err != nil {
		return newErr(KindMemory, err.Error())
	}
	if err := mctx.ToBytes(y, ay); err != nil {
		return newErr(KindMemory, err.Error())
	}
	return nil
}

// Double sets v = 2*p.
func (v *Point) Double(p *Point) error {
	if err := v.assertSameContext(p); err != nil {
		return err
	}
	curve.Double(v.ctx.mont, workplace.New(v.ctx.mont), v.x, v.y, v.z, p.x, p.y, p.z, v.ctx.b)
	v.isValid = true
	return nil
}

// Add sets v = p + q.
func (v *Point) Add(p, q *Point) error {
	if err := v.assertSameContext(p); err != nil {
		return err
	}
	if err := v.assertSameContext(q); err != nil {
		return err
	}
	curve.FullAdd(v.ctx.mont, workplace.New(v.ctx.mont), v.x, v.y, v.z, p.x, p.y, p.z, q.x, q.y, q.z, v.ctx.b)
	v.isValid = true
	return nil
}

// Neg sets v = -p.
func (v *Point) Neg(p *Point) error {
	if err := v.assertSameContext(p); err != nil {
		return err
	}
	mctx := v.ctx.mont
	mctx.Set(v.x, p.x)
	mctx.Negate(v.y, p.y)
	mctx.Set(v.z, p.z)
	v.isValid = true
	return nil
}

// Normalize rescales v's internal representation to Z = 1 (or, for the
// point at infinity, the canonical (0, 1, 0)), without changing the
// point it represents.
func (v *Point) Normalize() error {
	if err := v.assertValid(); err != nil {
		return err
	}
	mctx := v.ctx.mont
	ax, ay := mctx.NewElement(), mctx.NewElement()
	curve.ToAffine(mctx, workplace.New(mctx), ax, ay, v.x, v.y, v.z)

	if mctx.IsZero(v.z) {
		mctx.Zero(v.x)
		mctx.One(v.y)
		mctx.Zero(v.z)
		return nil
	}
	mctx.Set(v.x, ax)
	mctx.Set(v.y, ay)
	mctx.One(v.z)
	return nil
}

// IsPAI reports whether v is the point at infinity.
func (v *Point) IsPAI() (bool, error) {
	if err := v.assertValid(); err != nil {
		return false, err
	}
	return v.ctx.mont.IsZero(v.z), nil
}

// Clone returns a new Point equal to v.
func (v *Point) Clone() (*Point, error) {
	if err := v.assertValid(); err != nil {
		return nil, err
	}
	p := &Point{ctx: v.ctx, isValid: true}
	p.x = v.ctx.mont.NewElement()
	p.y = v.ctx.mont.NewElement()
	p.z = v.ctx.mont.NewElement()
	v.ctx.mont.Set(p.x, v.x)
	v.ctx.mont.Set(p.y, v.y)
	v.ctx.mont.Set(p.z, v.z)
	return p, nil
}

// Copy sets v = src.
func (v *Point) Copy(src *Point) error {
	if err := v.assertSameContext(src); err != nil {
		return err
	}
	mctx := v.ctx.mont
	mctx.Set(v.x, src.x)
	mctx.Set(v.y, src.y)
	mctx.Set(v.z, src.z)
	v.isValid = true
	return nil
}

// Cmp reports whether v and p represent the same curve point
// (X1*Z2 == X2*Z1 and Y1*Z2 == Y2*Z1), independent of their
// projective representations.
func (v *Point) Cmp(p *Point) (bool, error) {
	if err := v.assertSameContext(p); err != nil {
		return false, err
	}
	mctx := v.ctx.mont
	s := workplace.New(mctx).Scratch

	x1z2, x2z1 := mctx.NewElement(), mctx.NewElement()
	y1z2, y2z1 := mctx.NewElement(), mctx.NewElement()
	mctx.Mul(x1z2, v.x, p.z, s)
	mctx.Mul(x2z1, p.x, v.z, s)
	mctx.Mul(y1z2, v.y, p.z, s)
	mctx.Mul(y2z1, p.y, v.z, s)

	return mctx.Equal(x1z2, x2z1) && mctx.Equal(y1z2, y2z1), nil
}

func (v *Point) assertValid() error {
	if v == nil || !v.isValid {
		return newErr(KindECPoint, "use of uninitialized point")
	}
	return nil
}

func (v *Point) assertSameContext(p *Point) error {
	if err := v.assertValid(); err != nil {
		return err
	}
	if p == nil || !p.isValid {
		return newErr(KindECPoint, "use of uninitialized point")
	}
	if p.ctx != v.ctx {
		return newErr(KindECCurve, "points belong to different contexts")
	}
	return nil
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
