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

const (
	// LatentDim is the channel width of the encoder output.
	LatentDim = 256

	// Stride is the total spatial reduction of the encoder. Encoder
	// inputs must have height and width divisible by it so that the
	// mirrored decoder restores the original resolution exactly.
	Stride = 8
)

// EncoderFeatures carries the intermediate taps of an encoder pass,
// used as skip connections by a downstream decoder.
type EncoderFeatures struct {
	Quarter *ts.Tensor // 128 channels at 1/4 input resolution
	Half    *ts.Tensor // 64 channels at 1/2 input resolution
}

// Drop releases all tensors held by the features.
func (f *EncoderFeatures) Drop() {
	if f == nil {
		return
	}
	if f.Quarter != nil {
		f.Quarter.MustDrop()
		f.Quarter = nil
	}
	if f.Half != nil {
		f.Half.MustDrop()
		f.Half = nil
	}
}

// Encoder is the shared four-stage downsampling trunk. Stage one
// widens the input to 32 channels at full resolution; stages two to
// four each halve the spatial size with a stride-2 convolution and
// then refine with two ConvBNReLU blocks, doubling the width up to
// LatentDim.
//
// Input [N, inDim, H, W] produces output [N, 256, H/8, W/8].
type Encoder struct {
	conv1a, conv1b *block.ConvBNReLU

	down2          *nn.Conv2D
	conv2a, conv2b *block.ConvBNReLU

	down3          *nn.Conv2D
	conv3a, conv3b *block.ConvBNReLU

	down4          *nn.Conv2D
	conv4a, conv4b *block.ConvBNReLU

	inDim int64
}

// NewEncoder creates an Encoder under path p.
//
// Panics if inDim is not positive.
func NewEncoder(p *nn.Path, inDim int64) *Encoder {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: encoder in_dim must be positive, got %d", inDim))
	}

	return &Encoder{
		conv1a: block.NewConvBNReLU(p.Sub("conv1a"), inDim, 32),
		conv1b: block.NewConvBNReLU(p.Sub("conv1b"), 32, 32),

		down2:  downConv(p.Sub("down2"), 32, 64),
		conv2a: block.NewConvBNReLU(p.Sub("conv2a"), 64, 64),
		conv2b: block.NewConvBNReLU(p.Sub("conv2b"), 64, 64),

		down3:  downConv(p.Sub("down3"), 64, 128),
		conv3a: block.NewConvBNReLU(p.Sub("conv3a"), 128, 128),
		conv3b: block.NewConvBNReLU(p.Sub("conv3b"), 128, 128),

		down4:  downConv(p.Sub("down4"), 128, 256),
		conv4a: block.NewConvBNReLU(p.Sub("conv4a"), 256, 256),
		conv4b: block.NewConvBNReLU(p.Sub("conv4b"), 256, 256),

		inDim: inDim,
	}
}

// downConv is the stride-2 halving convolution that opens encoder
// stages two to four. No normalization, leaky ReLU applied by the
// caller.
func downConv(p *nn.Path, cIn, cOut int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{2, 2}
	config.Padding = []int64{1, 1}

	return nn.NewConv2D(p, cIn, cOut, 3, config)
}

// ForwardT encodes x to the latent map.
//
// Panics if x is not NCHW with inDim channels and spatial dims
// divisible by Stride.
func (e *Encoder) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	out, feats := e.ForwardFeatures(x, train)
	feats.Drop()

	return out
}

// ForwardFeatures encodes x and additionally returns the stage-two and
// stage-three taps for use as decoder skip connections. The caller
// owns both return values.
func (e *Encoder) ForwardFeatures(x *ts.Tensor, train bool) (*ts.Tensor, *EncoderFeatures) {
	shapes.MustImage(x.MustSize(), e.inDim, Stride, "model: encoder")

	a := e.conv1a.ForwardT(x, train) // [n, 32, h, w]
	b := e.conv1b.ForwardT(a, train)
	a.MustDrop()

	d2 := e.down2.ForwardT(b, train) // [n, 64, h/2, w/2]
	b.MustDrop()
	r2 := d2.MustLeakyRelu(true)
	c2 := e.conv2a.ForwardT(r2, train)
	r2.MustDrop()
	half := e.conv2b.ForwardT(c2, train)
	c2.MustDrop()

	d3 := e.down3.ForwardT(half, train) // [n, 128, h/4, w/4]
	r3 := d3.MustLeakyRelu(true)
	c3 := e.conv3a.ForwardT(r3, train)
	r3.MustDrop()
	quarter := e.conv3b.ForwardT(c3, train)
	c3.MustDrop()

	d4 := e.down4.ForwardT(quarter, train) // [n, 256, h/8, w/8]
	r4 := d4.MustLeakyRelu(true)
	c4 := e.conv4a.ForwardT(r4, train)
	r4.MustDrop()
	out := e.conv4b.ForwardT(c4, train)
	c4.MustDrop()

	return out, &EncoderFeatures{Quarter: quarter, Half: half}
}

func (e *Encoder) String() string {
	return fmt.Sprintf("Encoder(in_channels=%d, stages=[32, 64, 128, 256], stride=%d)", e.inDim, Stride)
}
