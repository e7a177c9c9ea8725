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

// SkipBundle carries decoder skip connections, one slot per decoder
// stage from coarsest to finest. A nil field means no skip at that
// stage. The same type describes both what a decoder consumes and the
// taps it produces for a downstream decoder.
type SkipBundle struct {
	Deep    *ts.Tensor // joins before stage one, at 1/8 input resolution
	Mid     *ts.Tensor // joins after the first upsample, at 1/4
	Shallow *ts.Tensor // joins after the second upsample, at 1/2
}

// Drop releases all tensors held by the bundle.
func (s *SkipBundle) Drop() {
	if s == nil {
		return
	}
	if s.Deep != nil {
		s.Deep.MustDrop()
		s.Deep = nil
	}
	if s.Mid != nil {
		s.Mid.MustDrop()
		s.Mid = nil
	}
	if s.Shallow != nil {
		s.Shallow.MustDrop()
		s.Shallow = nil
	}
}

// SkipWidths declares the channel count expected from each skip slot.
// A zero width disables the slot; the decoder then rejects a tensor
// arriving there.
type SkipWidths struct {
	Deep, Mid, Shallow int64
}

// Decoder mirrors the Encoder: three transposed-convolution upsamples,
// each preceded by two ConvBNReLU refinements, narrowing 256 -> 128 ->
// 64 -> 32. Skip tensors concatenate channel-wise at their declared
// stage before the refinement convs.
//
// Input [N, inDim, H, W] produces output [N, 32, H*8, W*8].
type Decoder struct {
	conv1a, conv1b *block.ConvBNReLU
	up1            *nn.ConvTranspose2D

	conv2a, conv2b *block.ConvBNReLU
	up2            *nn.ConvTranspose2D

	conv3a, conv3b *block.ConvBNReLU
	up3            *nn.ConvTranspose2D

	conv4a, conv4b *block.ConvBNReLU

	inDim int64
	skips SkipWidths
}

// NewDecoder creates a Decoder under path p. inDim is the channel
// width of the latent input before any deep skip is concatenated.
//
// Panics if inDim is not positive or any skip width is negative.
func NewDecoder(p *nn.Path, inDim int64, skips SkipWidths) *Decoder {
	if inDim <= 0 {
		panic(fmt.Sprintf("model: decoder in_dim must be positive, got %d", inDim))
	}
	if skips.Deep < 0 || skips.Mid < 0 || skips.Shallow < 0 {
		panic(fmt.Sprintf("model: decoder skip widths must be non-negative, got %+v", skips))
	}

	return &Decoder{
		conv1a: block.NewConvBNReLU(p.Sub("conv1a"), inDim+skips.Deep, 256),
		conv1b: block.NewConvBNReLU(p.Sub("conv1b"), 256, 256),
		up1:    upConv(p.Sub("up1"), 256, 128),

		conv2a: block.NewConvBNReLU(p.Sub("conv2a"), 128+skips.Mid, 128),
		conv2b: block.NewConvBNReLU(p.Sub("conv2b"), 128, 128),
		up2:    upConv(p.Sub("up2"), 128, 64),

		conv3a: block.NewConvBNReLU(p.Sub("conv3a"), 64+skips.Shallow, 64),
		conv3b: block.NewConvBNReLU(p.Sub("conv3b"), 64, 64),
		up3:    upConv(p.Sub("up3"), 64, 32),

		conv4a: block.NewConvBNReLU(p.Sub("conv4a"), 32, 32),
		conv4b: block.NewConvBNReLU(p.Sub("conv4b"), 32, 32),

		inDim: inDim,
		skips: skips,
	}
}

// upConv is the stride-2 doubling transposed convolution that closes
// each decoder stage. Output padding 1 makes it the exact inverse of
// the encoder's downConv. Leaky ReLU applied by the caller.
func upConv(p *nn.Path, cIn, cOut int64) *nn.ConvTranspose2D {
	config := nn.DefaultConvTranspose2DConfig()
	config.Stride = []int64{2, 2}
	config.Padding = []int64{1, 1}
	config.OutputPadding = []int64{1, 1}

	return nn.NewConvTranspose2D(p, cIn, cOut, 3, config)
}

// ForwardT decodes x to a 32-channel map at 8x the input resolution.
// fuse may be nil when no skip slot is declared.
func (d *Decoder) ForwardT(x *ts.Tensor, fuse *SkipBundle, train bool) *ts.Tensor {
	out, taps := d.ForwardFeatures(x, fuse, train)
	taps.Drop()

	return out
}

// ForwardFeatures decodes x and additionally returns the output of
// each refinement stage as a SkipBundle for a downstream decoder:
// Deep 256ch at input resolution, Mid 128ch at 2x, Shallow 64ch at 4x.
// The caller owns both return values.
//
// Panics if a declared skip slot receives a nil tensor, an undeclared
// slot receives one, or a skip's channel count or spatial size does
// not match its stage.
func (d *Decoder) ForwardFeatures(x *ts.Tensor, fuse *SkipBundle, train bool) (*ts.Tensor, *SkipBundle) {
	shapes.MustImage(x.MustSize(), d.inDim, 1, "model: decoder")

	in := x
	if deep := skipAt(fuse, 0); d.skips.Deep > 0 || deep != nil {
		checkSkip(x, deep, d.skips.Deep, "deep")
		in = ts.MustCat([]ts.Tensor{*x, *deep}, 1)
	}
	c1 := d.conv1a.ForwardT(in, train)
	if in != x {
		in.MustDrop()
	}
	f1 := d.conv1b.ForwardT(c1, train) // [n, 256, h, w]
	c1.MustDrop()

	u1 := d.up1.Forward(f1) // [n, 128, 2h, 2w]
	a1 := u1.MustLeakyRelu(true)
	in2 := a1
	if mid := skipAt(fuse, 1); d.skips.Mid > 0 || mid != nil {
		checkSkip(a1, mid, d.skips.Mid, "mid")
		in2 = ts.MustCat([]ts.Tensor{*a1, *mid}, 1)
		a1.MustDrop()
	}
	c2 := d.conv2a.ForwardT(in2, train)
	in2.MustDrop()
	f2 := d.conv2b.ForwardT(c2, train) // [n, 128, 2h, 2w]
	c2.MustDrop()

	u2 := d.up2.Forward(f2) // [n, 64, 4h, 4w]
	a2 := u2.MustLeakyRelu(true)
	in3 := a2
	if shallow := skipAt(fuse, 2); d.skips.Shallow > 0 || shallow != nil {
		checkSkip(a2, shallow, d.skips.Shallow, "shallow")
		in3 = ts.MustCat([]ts.Tensor{*a2, *shallow}, 1)
		a2.MustDrop()
	}
	c3 := d.conv3a.ForwardT(in3, train)
	in3.MustDrop()
	f3 := d.conv3b.ForwardT(c3, train) // [n, 64, 4h, 4w]
	c3.MustDrop()

	u3 := d.up3.Forward(f3) // [n, 32, 8h, 8w]
	a3 := u3.MustLeakyRelu(true)
	c4 := d.conv4a.ForwardT(a3, train)
	a3.MustDrop()
	out := d.conv4b.ForwardT(c4, train)
	c4.MustDrop()

	return out, &SkipBundle{Deep: f1, Mid: f2, Shallow: f3}
}

// skipAt reads one slot of a possibly nil bundle.
func skipAt(fuse *SkipBundle, stage int) *ts.Tensor {
	if fuse == nil {
		return nil
	}
	switch stage {
	case 0:
		return fuse.Deep
	case 1:
		return fuse.Mid
	default:
		return fuse.Shallow
	}
}

// checkSkip validates a skip tensor against its declared width and the
// current feature map's spatial size.
func checkSkip(cur, skip *ts.Tensor, want int64, stage string) {
	if want == 0 {
		panic(fmt.Sprintf("model: decoder %s skip not configured but provided", stage))
	}
	if skip == nil {
		panic(fmt.Sprintf("model: decoder %s skip: want %d channels, got none", stage, want))
	}
	size := skip.MustSize()
	if len(size) != 4 || size[1] != want {
		panic(fmt.Sprintf("model: decoder %s skip: want %d channels, got shape %v", stage, want, size))
	}
	shapes.MustMatchSpatial(cur.MustSize(), size, "model: decoder "+stage+" skip")
}

func (d *Decoder) String() string {
	return fmt.Sprintf("Decoder(in_channels=%d, skips=[%d, %d, %d], out_channels=32)",
		d.inDim, d.skips.Deep, d.skips.Mid, d.skips.Shallow)
}
