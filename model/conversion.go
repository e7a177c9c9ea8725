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

// TextConversionNet renders the target text in the typography of the
// style image. Two independent encoder towers embed the plain text
// rendering and the styled source; their latents concatenate to a
// 512-channel code that two decoders consume. The skeleton decoder
// predicts a single-channel text-shape mask in [0, 1]; the stylize
// decoder paints the glyphs, conditioned on the mask by concatenating
// it (mask first) before the final convolutions.
type TextConversionNet struct {
	textEnc  *Encoder
	textRes  *block.ResidualStack
	styleEnc *Encoder
	styleRes *block.ResidualStack

	skelDec  *Decoder
	skelHead *nn.Conv2D // 32 -> 1, sigmoid

	styleDec *Decoder
	blend    *block.ConvBNReLU // 33 -> 33, mask + paint
	head     *nn.Conv2D        // 33 -> 3, tanh

	inDim int64
}

// NewTextConversionNet creates the conversion branch under path p.
// inDim is the channel count of each of the two input images.
//
// Panics if inDim is not positive.
func NewTextConversionNet(p *nn.Path, inDim int64) *TextConversionNet {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: text conversion in_dim must be positive, got %d", inDim))
	}

	return &TextConversionNet{
		textEnc:  NewEncoder(p.Sub("text_encoder"), inDim),
		textRes:  block.NewResidualStack(p.Sub("text_res"), LatentDim),
		styleEnc: NewEncoder(p.Sub("style_encoder"), inDim),
		styleRes: block.NewResidualStack(p.Sub("style_res"), LatentDim),

		skelDec:  NewDecoder(p.Sub("skeleton_decoder"), 2*LatentDim, SkipWidths{}),
		skelHead: headConv(p.Sub("skeleton_head"), 32, 1),

		styleDec: NewDecoder(p.Sub("stylize_decoder"), 2*LatentDim, SkipWidths{}),
		blend:    block.NewConvBNReLU(p.Sub("blend"), 32+1, 32+1),
		head:     headConv(p.Sub("head"), 32+1, 3),

		inDim: inDim,
	}
}

// headConv is the 3x3 projection closing each branch, activation
// applied by the caller.
func headConv(p *nn.Path, cIn, cOut int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Padding = []int64{1, 1}

	return nn.NewConv2D(p, cIn, cOut, 3, config)
}

// ForwardT converts text into the style of style. Both inputs must
// share batch size and spatial dims. It returns the skeleton mask
// [N, 1, H, W] in [0, 1] and the stylized text image [N, 3, H, W] in
// [-1, 1]; the caller owns both.
func (n *TextConversionNet) ForwardT(text, style *ts.Tensor, train bool) (*ts.Tensor, *ts.Tensor) {
	tsz, ssz := text.MustSize(), style.MustSize()
	if len(tsz) == 4 && len(ssz) == 4 && tsz[0] != ssz[0] {
		panic(fmt.Sprintf("model: text conversion batch sizes differ, %d vs %d", tsz[0], ssz[0]))
	}
	shapes.MustMatchSpatial(tsz, ssz, "model: text conversion inputs")

	t0 := n.textEnc.ForwardT(text, train)
	tLat := n.textRes.ForwardT(t0, train)
	t0.MustDrop()

	s0 := n.styleEnc.ForwardT(style, train)
	sLat := n.styleRes.ForwardT(s0, train)
	s0.MustDrop()

	lat := ts.MustCat([]ts.Tensor{*tLat, *sLat}, 1) // [n, 512, h/8, w/8]
	tLat.MustDrop()
	sLat.MustDrop()

	sk := n.skelDec.ForwardT(lat, nil, train)
	skRaw := n.skelHead.ForwardT(sk, train)
	sk.MustDrop()
	mask := skRaw.MustSigmoid(true) // [n, 1, h, w]

	sty := n.styleDec.ForwardT(lat, nil, train)
	lat.MustDrop()

	mix := ts.MustCat([]ts.Tensor{*mask, *sty}, 1) // [n, 33, h, w]
	sty.MustDrop()
	blended := n.blend.ForwardT(mix, train)
	mix.MustDrop()
	raw := n.head.ForwardT(blended, train)
	blended.MustDrop()

	return mask, raw.MustTanh(true)
}

func (n *TextConversionNet) String() string {
	return fmt.Sprintf("TextConversionNet(in_channels=%d, latent=%d)", n.inDim, 2*LatentDim)
}
