// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

func TestDecoder_MirrorsEncoder(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	enc := NewEncoder(vs.Root().Sub("enc"), 3)
	dec := NewDecoder(vs.Root().Sub("dec"), LatentDim, SkipWidths{})

	tests := []struct{ h, w int64 }{
		{64, 64},
		{96, 64},
		{256, 256},
	}

	for _, tc := range tests {
		x := ts.MustRandn([]int64{1, 3, tc.h, tc.w}, gotch.Float, gotch.CPU)

		lat := enc.ForwardT(x, false)
		out := dec.ForwardT(lat, nil, false)

		assert.Equal(t, []int64{1, 32, tc.h, tc.w}, out.MustSize(),
			"decoder must restore %dx%d exactly", tc.h, tc.w)

		out.MustDrop()
		lat.MustDrop()
		x.MustDrop()
	}
}

func TestDecoder_ForwardFeatures(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	dec := NewDecoder(vs.Root().Sub("dec"), 512, SkipWidths{})

	x := ts.MustRandn([]int64{1, 512, 8, 8}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	out, taps := dec.ForwardFeatures(x, nil, false)
	defer out.MustDrop()
	defer taps.Drop()

	assert.Equal(t, []int64{1, 32, 64, 64}, out.MustSize())
	assert.Equal(t, []int64{1, 256, 8, 8}, taps.Deep.MustSize())
	assert.Equal(t, []int64{1, 128, 16, 16}, taps.Mid.MustSize())
	assert.Equal(t, []int64{1, 64, 32, 32}, taps.Shallow.MustSize())
}

func TestDecoder_SkipValidation(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	dec := NewDecoder(vs.Root().Sub("dec"), 256, SkipWidths{Mid: 128, Shallow: 64})

	x := ts.MustRandn([]int64{1, 256, 4, 4}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	mid := ts.MustRandn([]int64{1, 128, 8, 8}, gotch.Float, gotch.CPU)
	defer mid.MustDrop()
	shallow := ts.MustRandn([]int64{1, 64, 16, 16}, gotch.Float, gotch.CPU)
	defer shallow.MustDrop()

	// Required skips missing entirely.
	require.Panics(t, func() { dec.ForwardT(x, nil, false) })

	// Wrong channel count in the mid slot.
	badChannels := ts.MustRandn([]int64{1, 64, 8, 8}, gotch.Float, gotch.CPU)
	defer badChannels.MustDrop()
	require.Panics(t, func() {
		dec.ForwardT(x, &SkipBundle{Mid: badChannels, Shallow: shallow}, false)
	})

	// Right channels, wrong spatial size.
	badSize := ts.MustRandn([]int64{1, 128, 4, 4}, gotch.Float, gotch.CPU)
	defer badSize.MustDrop()
	require.Panics(t, func() {
		dec.ForwardT(x, &SkipBundle{Mid: badSize, Shallow: shallow}, false)
	})

	// Deep slot not declared but provided.
	deep := ts.MustRandn([]int64{1, 256, 4, 4}, gotch.Float, gotch.CPU)
	defer deep.MustDrop()
	require.Panics(t, func() {
		dec.ForwardT(x, &SkipBundle{Deep: deep, Mid: mid, Shallow: shallow}, false)
	})

	// Correctly filled bundle decodes cleanly.
	out := dec.ForwardT(x, &SkipBundle{Mid: mid, Shallow: shallow}, false)
	defer out.MustDrop()
	assert.Equal(t, []int64{1, 32, 32, 32}, out.MustSize())
}

func TestDecoder_InvalidConstruction(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)

	require.Panics(t, func() { NewDecoder(vs.Root().Sub("a"), 0, SkipWidths{}) })
	require.Panics(t, func() { NewDecoder(vs.Root().Sub("b"), 256, SkipWidths{Mid: -1}) })
}

func TestSkipBundle_DropIsNilSafe(t *testing.T) {
	var s *SkipBundle
	require.NotPanics(t, func() { s.Drop() })

	require.NotPanics(t, func() { (&SkipBundle{}).Drop() })
}
