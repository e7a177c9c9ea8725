// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// ConvBNReLU is the shape-preserving workhorse block of the generator:
// a 3x3 convolution with stride 1 and padding 1, followed by batch
// normalization and leaky ReLU (negative slope 0.01).
//
// Input [N, cIn, H, W] produces output [N, cOut, H, W].
type ConvBNReLU struct {
	conv *nn.Conv2D
	bn   *nn.BatchNorm

	cIn, cOut int64
}

// NewConvBNReLU creates a ConvBNReLU block under path p.
//
// Panics if cIn or cOut is not positive.
func NewConvBNReLU(p *nn.Path, cIn, cOut int64) *ConvBNReLU {
	if cIn <= 0 || cOut <= 0 {
		panic(fmt.Sprintf("block: ConvBNReLU channels must be positive, got %d -> %d", cIn, cOut))
	}

	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{1, 1}
	config.Padding = []int64{1, 1}

	return &ConvBNReLU{
		conv: nn.NewConv2D(p.Sub("conv"), cIn, cOut, 3, config),
		bn:   nn.BatchNorm2D(p.Sub("bn"), cOut, nn.DefaultBatchNormConfig()),
		cIn:  cIn,
		cOut: cOut,
	}
}

// ForwardT applies conv, batch norm and leaky ReLU.
func (b *ConvBNReLU) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c := b.conv.ForwardT(x, train)
	n := b.bn.ForwardT(c, train)
	c.MustDrop()

	return n.MustLeakyRelu(true)
}

// InDim returns the expected input channel count.
func (b *ConvBNReLU) InDim() int64 { return b.cIn }

// OutDim returns the produced output channel count.
func (b *ConvBNReLU) OutDim() int64 { return b.cOut }

func (b *ConvBNReLU) String() string {
	return fmt.Sprintf("ConvBNReLU(in_channels=%d, out_channels=%d, kernel_size=(3, 3), stride=1, padding=1)",
		b.cIn, b.cOut)
}

// DilatedConvBNReLU is the dilated sibling of ConvBNReLU: a 3x3
// convolution whose padding equals its dilation, so the spatial size
// and the channel count are both preserved. The inpainting branch uses
// chains of these to grow the receptive field without downsampling.
type DilatedConvBNReLU struct {
	conv *nn.Conv2D
	bn   *nn.BatchNorm

	dim      int64
	dilation int64
}

// NewDilatedConvBNReLU creates a channel-preserving dilated block
// under path p.
//
// Panics if dim is not positive or dilation is less than 1.
func NewDilatedConvBNReLU(p *nn.Path, dim, dilation int64) *DilatedConvBNReLU {
	if dim <= 0 {
		panic(fmt.Sprintf("block: DilatedConvBNReLU dim must be positive, got %d", dim))
	}
	if dilation < 1 {
		panic(fmt.Sprintf("block: DilatedConvBNReLU dilation must be >= 1, got %d", dilation))
	}

	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{1, 1}
	config.Padding = []int64{dilation, dilation}
	config.Dilation = []int64{dilation, dilation}

	return &DilatedConvBNReLU{
		conv:     nn.NewConv2D(p.Sub("conv"), dim, dim, 3, config),
		bn:       nn.BatchNorm2D(p.Sub("bn"), dim, nn.DefaultBatchNormConfig()),
		dim:      dim,
		dilation: dilation,
	}
}

// ForwardT applies the dilated conv, batch norm and leaky ReLU.
func (b *DilatedConvBNReLU) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c := b.conv.ForwardT(x, train)
	n := b.bn.ForwardT(c, train)
	c.MustDrop()

	return n.MustLeakyRelu(true)
}

func (b *DilatedConvBNReLU) String() string {
	return fmt.Sprintf("DilatedConvBNReLU(dim=%d, kernel_size=(3, 3), dilation=%d, padding=%d)",
		b.dim, b.dilation, b.dilation)
}
