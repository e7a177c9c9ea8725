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

// FusionNet composites the stylized text onto the inpainted
// background. It encodes the stylized image and decodes it with every
// skip slot fed from the inpainting decoder's taps, so the background
// detail flows in at three scales.
type FusionNet struct {
	enc  *Encoder
	res  *block.ResidualStack
	dec  *Decoder
	head *nn.Conv2D // 32 -> 3, tanh

	inDim int64
}

// NewFusionNet creates the fusion branch under path p.
//
// Panics if inDim is not positive.
func NewFusionNet(p *nn.Path, inDim int64) *FusionNet {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: fusion in_dim must be positive, got %d", inDim))
	}

	return &FusionNet{
		enc:   NewEncoder(p.Sub("encoder"), inDim),
		res:   block.NewResidualStack(p.Sub("res"), LatentDim),
		dec:   NewDecoder(p.Sub("decoder"), LatentDim, SkipWidths{Deep: 256, Mid: 128, Shallow: 64}),
		head:  headConv(p.Sub("head"), 32, 3),
		inDim: inDim,
	}
}

// ForwardT fuses x (the stylized text image) with the background
// features in fuse, which must fill all three skip slots. Returns the
// composite image [N, 3, H, W] in [-1, 1], owned by the caller.
//
// Panics if fuse is nil or any slot is missing or mis-sized.
func (n *FusionNet) ForwardT(x *ts.Tensor, fuse *SkipBundle, train bool) *ts.Tensor {
	lat := n.enc.ForwardT(x, train)
	r := n.res.ForwardT(lat, train)
	lat.MustDrop()

	out := n.dec.ForwardT(r, fuse, train)
	r.MustDrop()

	raw := n.head.ForwardT(out, train)
	out.MustDrop()

	return raw.MustTanh(true)
}

func (n *FusionNet) String() string {
	return fmt.Sprintf("FusionNet(in_channels=%d, skips=[256, 128, 64])", n.inDim)
}

// ConcatFusionNet is the skip-free fusion variant: instead of feature
// taps it takes the two images themselves, concatenated channel-wise
// (stylized text first, background second), and runs them through a
// plain encode-decode. Useful when the background comes from outside
// the inpainting branch and no feature taps exist.
type ConcatFusionNet struct {
	enc  *Encoder
	res  *block.ResidualStack
	dec  *Decoder
	head *nn.Conv2D // 32 -> 3, tanh

	inDim int64
}

// NewConcatFusionNet creates the variant under path p. inDim is the
// channel count of each of the two inputs; the encoder sees 2*inDim.
//
// Panics if inDim is not positive.
func NewConcatFusionNet(p *nn.Path, inDim int64) *ConcatFusionNet {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: concat fusion in_dim must be positive, got %d", inDim))
	}

	return &ConcatFusionNet{
		enc:   NewEncoder(p.Sub("encoder"), 2*inDim),
		res:   block.NewResidualStack(p.Sub("res"), LatentDim),
		dec:   NewDecoder(p.Sub("decoder"), LatentDim, SkipWidths{}),
		head:  headConv(p.Sub("head"), 32, 3),
		inDim: inDim,
	}
}

// ForwardT fuses the stylized text image with the background image.
// Both must share shape [N, inDim, H, W]. Returns the composite image
// in [-1, 1], owned by the caller.
func (n *ConcatFusionNet) ForwardT(stylized, background *ts.Tensor, train bool) *ts.Tensor {
	shapes.MustMatchSpatial(stylized.MustSize(), background.MustSize(), "model: concat fusion inputs")

	x := ts.MustCat([]ts.Tensor{*stylized, *background}, 1)

	lat := n.enc.ForwardT(x, train)
	x.MustDrop()
	r := n.res.ForwardT(lat, train)
	lat.MustDrop()

	out := n.dec.ForwardT(r, nil, train)
	r.MustDrop()

	raw := n.head.ForwardT(out, train)
	out.MustDrop()

	return raw.MustTanh(true)
}

func (n *ConcatFusionNet) String() string {
	return fmt.Sprintf("ConcatFusionNet(in_channels=2x%d)", n.inDim)
}
