// Package workplace provides the scratch-element arena the curve
// formulae thread through every operation, so that the formulae take
// their named temporaries from one arena instead of allocating each of
// them. The field operations of internal/mont still allocate their own
// intermediate results.
package workplace

import "gitlab.com/elliptic-ct/ecws/internal/mont"

// Workplace is a single-threaded arena of scratch field elements, sized
// for one Montgomery context. Every curve formula borrows named slots
// (A..K) for its intermediate values and Scratch for the Montgomery
// multiplier's own working set. No semantic state survives between
// distinct operations: callers must treat the contents of a Workplace
// as garbage as soon as the call that borrowed it returns.
type Workplace struct {
	A, B, C, D, E, F, G, H, I, J, K mont.Element
	Scratch                        mont.Element
}

// New allocates a Workplace for ctx. Go's allocator cannot fail the way
// calloc can, so unlike the C original this constructor has no error
// path; it is kept as a function (rather than a bare struct literal) so
// that callers have one obvious place to later add pooling.
func New(ctx *mont.Context) *Workplace {
	return &Workplace{
		A:       ctx.NewElement(),
		B:       ctx.NewElement(),
		C:       ctx.NewElement(),
		D:       ctx.NewElement(),
		E:       ctx.NewElement(),
		F:       ctx.NewElement(),
		G:       ctx.NewElement(),
		H:       ctx.NewElement(),
		I:       ctx.NewElement(),
		J:       ctx.NewElement(),
		K:       ctx.NewElement(),
		Scratch: ctx.NewScratch(),
	}
}
