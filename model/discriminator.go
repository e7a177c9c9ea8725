// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/srnet-ml/srnet/block"
	"github.com/srnet-ml/srnet/internal/shapes"
)

// PatchStride is the total spatial reduction of the discriminators:
// each patch score covers a 16x16 input region.
const PatchStride = 16

// PatchScorer is a discriminator scoring an image (pair) into a patch
// map. Both Discriminator and SNDiscriminator satisfy it, so training
// code can swap them freely.
type PatchScorer interface {
	ForwardT(x *ts.Tensor, train bool) *ts.Tensor
}

var (
	_ PatchScorer = (*Discriminator)(nil)
	_ PatchScorer = (*SNDiscriminator)(nil)
)

// Discriminator scores real/fake per patch. Four stride-2
// conv+BN+leaky stages widen 64 -> 512 while reducing 16x, then a
// stride-1 convolution and sigmoid produce a single-channel
// probability map. By convention the input is a channel-concatenated
// image pair (6 channels), for conditional judgments.
type Discriminator struct {
	conv1 *nn.Conv2D
	bn1   *nn.BatchNorm
	conv2 *nn.Conv2D
	bn2   *nn.BatchNorm
	conv3 *nn.Conv2D
	bn3   *nn.BatchNorm
	conv4 *nn.Conv2D
	bn4   *nn.BatchNorm
	conv5 *nn.Conv2D

	inDim int64
}

// NewDiscriminator creates a patch discriminator under path p.
//
// Panics if inDim is not positive.
func NewDiscriminator(p *nn.Path, inDim int64) *Discriminator {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: discriminator in_dim must be positive, got %d", inDim))
	}

	return &Discriminator{
		conv1: downConv(p.Sub("conv1"), inDim, 64),
		bn1:   nn.BatchNorm2D(p.Sub("bn1"), 64, nn.DefaultBatchNormConfig()),
		conv2: downConv(p.Sub("conv2"), 64, 128),
		bn2:   nn.BatchNorm2D(p.Sub("bn2"), 128, nn.DefaultBatchNormConfig()),
		conv3: downConv(p.Sub("conv3"), 128, 256),
		bn3:   nn.BatchNorm2D(p.Sub("bn3"), 256, nn.DefaultBatchNormConfig()),
		conv4: downConv(p.Sub("conv4"), 256, 512),
		bn4:   nn.BatchNorm2D(p.Sub("bn4"), 512, nn.DefaultBatchNormConfig()),
		conv5: headConv(p.Sub("conv5"), 512, 1),

		inDim: inDim,
	}
}

// ForwardT scores x into a patch probability map [N, 1, ceil(H/16),
// ceil(W/16)] with values in (0, 1). The caller owns the result.
func (d *Discriminator) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	shapes.MustImage(x.MustSize(), d.inDim, 1, "model: discriminator")

	out := stage(x, d.conv1, d.bn1, train) // [n, 64, h/2, w/2]
	out2 := stage(out, d.conv2, d.bn2, train)
	out.MustDrop()
	out3 := stage(out2, d.conv3, d.bn3, train)
	out2.MustDrop()
	out4 := stage(out3, d.conv4, d.bn4, train)
	out3.MustDrop()

	score := d.conv5.ForwardT(out4, train) // [n, 1, h/16, w/16]
	out4.MustDrop()

	return score.MustSigmoid(true)
}

// stage runs one conv+BN+leaky discriminator stage.
func stage(x *ts.Tensor, conv *nn.Conv2D, bn *nn.BatchNorm, train bool) *ts.Tensor {
	c := conv.ForwardT(x, train)
	n := bn.ForwardT(c, train)
	c.MustDrop()

	return n.MustLeakyRelu(true)
}

func (d *Discriminator) String() string {
	return fmt.Sprintf("Discriminator(in_channels=%d, stages=[64, 128, 256, 512], patch_stride=%d)",
		d.inDim, PatchStride)
}

// SNDiscriminator is the spectrally normalized discriminator: the same
// depth and channel schedule, but batch normalization is replaced by
// spectral weight normalization and the output stays an unbounded
// logit map. Preferred for hinge or Wasserstein objectives where
// bounded scores and batch statistics hurt.
type SNDiscriminator struct {
	conv1 *block.SNConv2D
	conv2 *block.SNConv2D
	conv3 *block.SNConv2D
	conv4 *block.SNConv2D
	conv5 *nn.Conv2D

	inDim int64
}

// NewSNDiscriminator creates a spectrally normalized patch
// discriminator under path p.
//
// Panics if inDim is not positive.
func NewSNDiscriminator(p *nn.Path, inDim int64) *SNDiscriminator {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: sn discriminator in_dim must be positive, got %d", inDim))
	}

	return &SNDiscriminator{
		conv1: block.NewSNConv2D(p.Sub("conv1"), inDim, 64, 3, 2, 1),
		conv2: block.NewSNConv2D(p.Sub("conv2"), 64, 128, 3, 2, 1),
		conv3: block.NewSNConv2D(p.Sub("conv3"), 128, 256, 3, 2, 1),
		conv4: block.NewSNConv2D(p.Sub("conv4"), 256, 512, 3, 2, 1),
		conv5: headConv(p.Sub("conv5"), 512, 1),

		inDim: inDim,
	}
}

// ForwardT scores x into a raw logit map [N, 1, ceil(H/16),
// ceil(W/16)]. No final activation. The caller owns the result.
func (d *SNDiscriminator) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	shapes.MustImage(x.MustSize(), d.inDim, 1, "model: sn discriminator")

	c1 := d.conv1.ForwardT(x, train)
	a1 := c1.MustLeakyRelu(true)
	c2 := d.conv2.ForwardT(a1, train)
	a1.MustDrop()
	a2 := c2.MustLeakyRelu(true)
	c3 := d.conv3.ForwardT(a2, train)
	a2.MustDrop()
	a3 := c3.MustLeakyRelu(true)
	c4 := d.conv4.ForwardT(a3, train)
	a3.MustDrop()
	a4 := c4.MustLeakyRelu(true)

	out := d.conv5.ForwardT(a4, train)
	a4.MustDrop()

	return out
}

func (d *SNDiscriminator) String() string {
	return fmt.Sprintf("SNDiscriminator(in_channels=%d, stages=[64, 128, 256, 512], patch_stride=%d)",
		d.inDim, PatchStride)
}

// DiscriminatorMixed bundles two independent Discriminators for
// training steps that need two separate judgments, one per input pair
// (for example text region vs whole image). The sub-discriminators
// share nothing; in train mode each updates its own batch-norm
// statistics.
type DiscriminatorMixed struct {
	D1 *Discriminator
	D2 *Discriminator
}

// NewDiscriminatorMixed creates both discriminators under path p.
//
// Panics if either channel count is not positive.
func NewDiscriminatorMixed(p *nn.Path, inDim1, inDim2 int64) *DiscriminatorMixed {
	return &DiscriminatorMixed{
		D1: NewDiscriminator(p.Sub("d1"), inDim1),
		D2: NewDiscriminator(p.Sub("d2"), inDim2),
	}
}

// ForwardT scores both inputs and returns the two patch maps in input
// order, identical to running D1 and D2 separately. The caller owns
// both.
func (d *DiscriminatorMixed) ForwardT(x1, x2 *ts.Tensor, train bool) (*ts.Tensor, *ts.Tensor) {
	o1 := d.D1.ForwardT(x1, train)
	o2 := d.D2.ForwardT(x2, train)

	return o1, o2
}

func (d *DiscriminatorMixed) String() string {
	return fmt.Sprintf("DiscriminatorMixed(d1=%s, d2=%s)", d.D1, d.D2)
}
