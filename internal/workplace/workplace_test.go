package workplace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/elliptic-ct/ecws/internal/mont"
	"gitlab.com/elliptic-ct/ecws/internal/workplace"
)

var smallPrimeBytes = []byte{0x1f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff} // 2^61-1

// TestNewAllocatesIndependentSlots checks that every named slot is its
// own element, not an alias of another slot or of Scratch: writing
// through one must not be observable through any other.
func TestNewAllocatesIndependentSlots(t *testing.T) {
	ctx, err := mont.NewContext(smallPrimeBytes)
	require.NoError(t, err)

	wp := workplace.New(ctx)
	slots := []mont.Element{
		wp.A, wp.B, wp.C, wp.D, wp.E, wp.F, wp.G, wp.H, wp.I, wp.J, wp.K, wp.Scratch,
	}
	for i, s := range slots {
		ctx.SetSmall(s, uint64(i+1))
	}
	for i, s := range slots {
		want := ctx.NewElement()
		ctx.SetSmall(want, uint64(i+1))
		require.True(t, ctx.Equal(s[:len(want)], want), "slot %d was clobbered by a write to another slot", i)
	}
}

func TestNewSlotsStartAtZero(t *testing.T) {
	ctx, err := mont.NewContext(smallPrimeBytes)
	require.NoError(t, err)

	wp := workplace.New(ctx)
	zero := ctx.NewElement()
	require.True(t, ctx.Equal(wp.A, zero))
	require.True(t, ctx.Equal(wp.K, zero))
}
