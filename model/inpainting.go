// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/srnet-ml/srnet/block"
)

// InpaintingConfig tunes the background branch.
type InpaintingConfig struct {
	// Dilation inserts three dilated blocks (rates 2, 4, 8) between
	// the residual stack and the decoder, growing the receptive field
	// over large erased regions without further downsampling.
	Dilation bool
}

// DefaultInpaintingConfig returns the standard configuration with the
// dilation stage disabled.
func DefaultInpaintingConfig() *InpaintingConfig {
	return &InpaintingConfig{}
}

// BackgroundInpaintingNet erases the text from the styled image and
// reconstructs the background behind it. It is a self-skipping
// U-shape: the encoder's own taps feed the decoder's mid and shallow
// slots. Besides the background image it returns the decoder taps,
// which FusionNet consumes as its skip connections.
type BackgroundInpaintingNet struct {
	enc  *Encoder
	res  *block.ResidualStack
	dil  []*block.DilatedConvBNReLU
	dec  *Decoder
	head *nn.Conv2D // 32 -> 3, tanh

	inDim int64
}

// NewBackgroundInpaintingNet creates the inpainting branch under path
// p. A nil config means DefaultInpaintingConfig.
//
// Panics if inDim is not positive.
func NewBackgroundInpaintingNet(p *nn.Path, inDim int64, config *InpaintingConfig) *BackgroundInpaintingNet {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: background inpainting in_dim must be positive, got %d", inDim))
	}
	if config == nil {
		config = DefaultInpaintingConfig()
	}

	n := &BackgroundInpaintingNet{
		enc:   NewEncoder(p.Sub("encoder"), inDim),
		res:   block.NewResidualStack(p.Sub("res"), LatentDim),
		dec:   NewDecoder(p.Sub("decoder"), LatentDim, SkipWidths{Mid: 128, Shallow: 64}),
		head:  headConv(p.Sub("head"), 32, 3),
		inDim: inDim,
	}

	if config.Dilation {
		for i, rate := range []int64{2, 4, 8} {
			n.dil = append(n.dil,
				block.NewDilatedConvBNReLU(p.Sub(fmt.Sprintf("dilated%d", i+1)), LatentDim, rate))
		}
	}

	return n
}

// ForwardT inpaints the background of x. It returns the background
// image [N, 3, H, W] in [-1, 1] and the decoder taps (Deep 256ch at
// 1/8, Mid 128ch at 1/4, Shallow 64ch at 1/2). The caller owns both.
func (n *BackgroundInpaintingNet) ForwardT(x *ts.Tensor, train bool) (*ts.Tensor, *SkipBundle) {
	lat, feats := n.enc.ForwardFeatures(x, train)
	out := n.res.ForwardT(lat, train)
	lat.MustDrop()

	for _, d := range n.dil {
		next := d.ForwardT(out, train)
		out.MustDrop()
		out = next
	}

	// The encoder's own taps close the U shape.
	selfSkips := &SkipBundle{Mid: feats.Quarter, Shallow: feats.Half}
	dec, fuse := n.dec.ForwardFeatures(out, selfSkips, train)
	out.MustDrop()
	feats.Drop()

	raw := n.head.ForwardT(dec, train)
	dec.MustDrop()

	return raw.MustTanh(true), fuse
}

func (n *BackgroundInpaintingNet) String() string {
	return fmt.Sprintf("BackgroundInpaintingNet(in_channels=%d, dilation=%v)", n.inDim, len(n.dil) > 0)
}
