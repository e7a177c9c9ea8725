package shapes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNCHW(t *testing.T) {
	assert.True(t, IsNCHW([]int64{1, 3, 64, 64}, 3))
	assert.True(t, IsNCHW([]int64{2, 1, 8, 8}, 0), "wantC 0 accepts any channel count")
	assert.False(t, IsNCHW([]int64{3, 64, 64}, 3), "3-D shape is not NCHW")
	assert.False(t, IsNCHW([]int64{1, 4, 64, 64}, 3), "channel mismatch")
	assert.False(t, IsNCHW([]int64{1, 3, 0, 64}, 3), "zero spatial dim")
}

func TestSpatialDivisible(t *testing.T) {
	assert.True(t, SpatialDivisible([]int64{1, 3, 64, 128}, 8))
	assert.False(t, SpatialDivisible([]int64{1, 3, 60, 64}, 8))
	assert.False(t, SpatialDivisible([]int64{1, 3, 64, 64}, 0))
}

func TestMustImage(t *testing.T) {
	require.NotPanics(t, func() {
		MustImage([]int64{1, 3, 256, 256}, 3, 8, "model: encoder")
	})
	require.PanicsWithValue(t,
		"model: encoder: spatial dims 100x100 must be multiples of 8",
		func() { MustImage([]int64{1, 3, 100, 100}, 3, 8, "model: encoder") })
	require.Panics(t, func() { MustImage([]int64{3, 256, 256}, 3, 8, "model: encoder") })
	require.Panics(t, func() { MustImage([]int64{1, 4, 256, 256}, 3, 8, "model: encoder") })
}

func TestMustMatchSpatial(t *testing.T) {
	require.NotPanics(t, func() {
		MustMatchSpatial([]int64{1, 256, 32, 32}, []int64{1, 128, 32, 32}, "model: decoder")
	})
	require.Panics(t, func() {
		MustMatchSpatial([]int64{1, 256, 32, 32}, []int64{1, 256, 64, 64}, "model: decoder")
	})
}

func TestNumel(t *testing.T) {
	assert.Equal(t, int64(64*3*3*3), Numel([]int64{64, 3, 3, 3}))
	assert.Equal(t, int64(1), Numel(nil))
}
