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

func TestDiscriminator_PatchMap(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	d := NewDiscriminator(vs.Root().Sub("d"), 6)

	x := ts.MustRandn([]int64{2, 6, 64, 64}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	score := d.ForwardT(x, true)
	defer score.MustDrop()

	assert.Equal(t, []int64{2, 1, 4, 4}, score.MustSize(), "one score per 16x16 patch")

	mn, mx := minMax(t, score)
	assert.GreaterOrEqual(t, mn, 0.0, "sigmoid score lower bound")
	assert.LessOrEqual(t, mx, 1.0, "sigmoid score upper bound")
}

func TestDiscriminator_OddInputSizes(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	d := NewDiscriminator(vs.Root().Sub("d"), 6)

	// Stride-2 k3 p1 convs round up, so odd sizes are accepted.
	x := ts.MustRandn([]int64{1, 6, 70, 70}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	score := d.ForwardT(x, true)
	defer score.MustDrop()

	assert.Equal(t, []int64{1, 1, 5, 5}, score.MustSize())
}

func TestDiscriminator_RejectsWrongChannels(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	d := NewDiscriminator(vs.Root().Sub("d"), 6)

	x := ts.MustRandn([]int64{1, 3, 64, 64}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	require.Panics(t, func() { d.ForwardT(x, true) })
}

func TestSNDiscriminator_RawLogits(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	d := NewSNDiscriminator(vs.Root().Sub("snd"), 6)

	// Large-magnitude input: a sigmoid head would pin the output to
	// [0, 1], raw logits will not.
	raw := ts.MustRandn([]int64{2, 6, 64, 64}, gotch.Float, gotch.CPU)
	x := raw.MustMulScalar(ts.FloatScalar(50), true)
	defer x.MustDrop()

	score := d.ForwardT(x, true)
	defer score.MustDrop()

	assert.Equal(t, []int64{2, 1, 4, 4}, score.MustSize())

	mn, mx := minMax(t, score)
	assert.True(t, mn < 0 || mx > 1, "logit map must not be sigmoid-bounded, got [%f, %f]", mn, mx)
}

func TestDiscriminatorMixed_MatchesIndependentRuns(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	d := NewDiscriminatorMixed(vs.Root().Sub("mixed"), 6, 6)

	x1 := ts.MustRandn([]int64{1, 6, 64, 64}, gotch.Float, gotch.CPU)
	defer x1.MustDrop()
	x2 := ts.MustRandn([]int64{1, 6, 64, 64}, gotch.Float, gotch.CPU)
	defer x2.MustDrop()

	o1, o2 := d.ForwardT(x1, x2, false)
	defer o1.MustDrop()
	defer o2.MustDrop()

	want1 := d.D1.ForwardT(x1, false)
	defer want1.MustDrop()
	want2 := d.D2.ForwardT(x2, false)
	defer want2.MustDrop()

	assert.InDeltaSlice(t, want1.Float64Values(), o1.Float64Values(), 1e-7,
		"mixed pass must equal an independent D1 pass")
	assert.InDeltaSlice(t, want2.Float64Values(), o2.Float64Values(), 1e-7,
		"mixed pass must equal an independent D2 pass")
}

func TestDiscriminators_SatisfyPatchScorer(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)

	scorers := []PatchScorer{
		NewDiscriminator(vs.Root().Sub("d"), 6),
		NewSNDiscriminator(vs.Root().Sub("snd"), 6),
	}

	x := ts.MustRandn([]int64{1, 6, 32, 32}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	for _, s := range scorers {
		score := s.ForwardT(x, false)
		assert.Equal(t, []int64{1, 1, 2, 2}, score.MustSize())
		score.MustDrop()
	}
}
