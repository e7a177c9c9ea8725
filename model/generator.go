// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// Generator is the full editing pipeline: text conversion, background
// inpainting and fusion wired together. The branches are exported so a
// training loop can drive them separately; ForwardT runs the standard
// composition.
type Generator struct {
	Conversion *TextConversionNet
	Inpainting *BackgroundInpaintingNet
	Fusion     *FusionNet

	inDim int64
}

// NewGenerator creates the three branches under path p. inDim is the
// channel count of both input images (3 for RGB).
//
// Panics if inDim is not positive.
func NewGenerator(p *nn.Path, inDim int64) *Generator {
	return &Generator{
		Conversion: NewTextConversionNet(p.Sub("conversion"), inDim),
		Inpainting: NewBackgroundInpaintingNet(p.Sub("inpainting"), inDim, nil),
		Fusion:     NewFusionNet(p.Sub("fusion"), inDim),
		inDim:      inDim,
	}
}

// ForwardT edits the text of the style image. text is the plain
// rendering of the replacement string, style the image whose
// typography and background must survive. Both are [N, inDim, H, W]
// in [-1, 1] with H and W divisible by Stride.
//
// It returns, in order, all owned by the caller:
//
//	mask       [N, 1, H, W] text skeleton in [0, 1]
//	stylized   [N, 3, H, W] replacement text in the source style
//	background [N, 3, H, W] inpainted background
//	fused      [N, 3, H, W] final composite
func (g *Generator) ForwardT(text, style *ts.Tensor, train bool) (*ts.Tensor, *ts.Tensor, *ts.Tensor, *ts.Tensor) {
	mask, stylized := g.Conversion.ForwardT(text, style, train)

	background, fuse := g.Inpainting.ForwardT(style, train)

	fused := g.Fusion.ForwardT(stylized, fuse, train)
	fuse.Drop()

	return mask, stylized, background, fused
}

func (g *Generator) String() string {
	return fmt.Sprintf("Generator(in_channels=%d)\n  %s\n  %s\n  %s",
		g.inDim, g.Conversion, g.Inpainting, g.Fusion)
}
