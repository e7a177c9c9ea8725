// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package transforms

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/ts"
)

// checkerboard builds a small deterministic test image.
func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 200
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 0xff})
		}
	}
	return img
}

func TestToTensor_Shape(t *testing.T) {
	x := ToTensor(checkerboard(16, 8))
	defer x.MustDrop()

	assert.Equal(t, []int64{1, 3, 8, 16}, x.MustSize())

	mn := x.MustMin(false)
	defer mn.MustDrop()
	mx := x.MustMax(false)
	defer mx.MustDrop()
	assert.GreaterOrEqual(t, mn.Float64Values()[0], 0.0)
	assert.LessOrEqual(t, mx.Float64Values()[0], 1.0)
}

func TestToTensor_ToImage_RoundTrip(t *testing.T) {
	src := checkerboard(12, 12)

	x := ToTensor(src)
	defer x.MustDrop()

	back, err := ToImage(x)
	require.NoError(t, err)

	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			wr, wg, wb, _ := src.At(x, y).RGBA()
			gr, gg, gb, _ := back.At(x, y).RGBA()
			// One quantization step of slack per channel.
			assert.InDelta(t, wr>>8, gr>>8, 1)
			assert.InDelta(t, wg>>8, gg>>8, 1)
			assert.InDelta(t, wb>>8, gb>>8, 1)
		}
	}
}

func TestToImage_SingleChannel(t *testing.T) {
	x := ts.MustOfSlice([]float32{0, 0.5, 1, 0.25}).MustView([]int64{1, 1, 2, 2}, true)
	defer x.MustDrop()

	img, err := ToImage(x)
	require.NoError(t, err)

	gray, ok := img.(*image.Gray)
	require.True(t, ok, "one channel should decode to grayscale")
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 1).Y)
}

func TestToImage_Clamps(t *testing.T) {
	x := ts.MustOfSlice([]float32{-2, 3, 0.5, 0.5}).MustView([]int64{1, 1, 2, 2}, true)
	defer x.MustDrop()

	img, err := ToImage(x)
	require.NoError(t, err)

	gray := img.(*image.Gray)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
}

func TestToImage_BadShape(t *testing.T) {
	x := ts.MustRandn([]int64{2, 3, 4, 4}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	_, err := ToImage(x)
	assert.Error(t, err, "batch of 2 has no single-image decoding")

	y := ts.MustRandn([]int64{1, 4, 4, 4}, gotch.Float, gotch.CPU)
	defer y.MustDrop()

	_, err = ToImage(y)
	assert.Error(t, err, "4 channels is neither RGB nor grayscale")
}

func TestScaleTanh_RoundTrip(t *testing.T) {
	x := ts.MustOfSlice([]float32{0, 0.25, 0.5, 1}).MustView([]int64{1, 1, 2, 2}, true)
	defer x.MustDrop()

	scaled := ScaleTanh(x)
	defer scaled.MustDrop()
	assert.InDeltaSlice(t, []float64{-1, -0.5, 0, 1}, scaled.Float64Values(), 1e-6)

	back := UnscaleTanh(scaled)
	defer back.MustDrop()
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 1}, back.Float64Values(), 1e-6)
}

func TestNormalize_KnownValues(t *testing.T) {
	x := ts.MustOfSlice([]float32{
		0.485, 0.456, 0.406, // one pixel per channel, at the mean
	}).MustView([]int64{1, 3, 1, 1}, true)
	defer x.MustDrop()

	n := Normalize(x, ImageNetMean, ImageNetStd)
	defer n.MustDrop()
	assert.InDeltaSlice(t, []float64{0, 0, 0}, n.Float64Values(), 1e-6)

	d := Denormalize(n, ImageNetMean, ImageNetStd)
	defer d.MustDrop()
	assert.InDeltaSlice(t, []float64{0.485, 0.456, 0.406}, d.Float64Values(), 1e-6)
}

func TestResize_Dimensions(t *testing.T) {
	out := Resize(checkerboard(20, 10), 8, 8)
	assert.Equal(t, 8, out.Bounds().Dx())
	assert.Equal(t, 8, out.Bounds().Dy())
}

func TestFitStride(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"already aligned", 64, 32, 64, 32},
		{"rounds down", 70, 33, 64, 32},
		{"tiny image snaps up", 5, 70, 8, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FitStride(checkerboard(tt.w, tt.h), 8)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
			assert.Zero(t, out.Bounds().Dx()%8)
			assert.Zero(t, out.Bounds().Dy()%8)
		})
	}
}

func TestFitStride_AlignedIsIdentity(t *testing.T) {
	src := checkerboard(16, 16)
	assert.Same(t, image.Image(src), FitStride(src, 8))
}

func TestResize_BadTarget(t *testing.T) {
	assert.Panics(t, func() { Resize(checkerboard(4, 4), 0, 8) })
	assert.Panics(t, func() { FitStride(checkerboard(4, 4), 0) })
}
