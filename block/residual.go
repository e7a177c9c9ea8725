// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// Residual is a bottleneck residual unit. The main path squeezes the
// channel count to a quarter with a 1x1 convolution, transforms with a
// 3x3 convolution, and expands back with another 1x1 convolution. The
// input is added to the main path output, then the sum is batch
// normalized and activated.
//
// Shape is fully preserved: [N, C, H, W] -> [N, C, H, W].
type Residual struct {
	conv1 *nn.Conv2D // 1x1, C -> C/4
	conv2 *nn.Conv2D // 3x3, C/4 -> C/4
	conv3 *nn.Conv2D // 1x1, C/4 -> C
	bn    *nn.BatchNorm

	dim int64
}

// NewResidual creates a Residual unit under path p.
//
// Panics if dim is not a positive multiple of 4, since the bottleneck
// width is dim/4.
func NewResidual(p *nn.Path, dim int64) *Residual {
	if dim <= 0 || dim%4 != 0 {
		panic(fmt.Sprintf("block: Residual dim must be a positive multiple of 4, got %d", dim))
	}
	mid := dim / 4

	conv3x3 := nn.DefaultConv2DConfig()
	conv3x3.Padding = []int64{1, 1}

	return &Residual{
		conv1: nn.NewConv2D(p.Sub("conv1"), dim, mid, 1, nn.DefaultConv2DConfig()),
		conv2: nn.NewConv2D(p.Sub("conv2"), mid, mid, 3, conv3x3),
		conv3: nn.NewConv2D(p.Sub("conv3"), mid, dim, 1, nn.DefaultConv2DConfig()),
		bn:    nn.BatchNorm2D(p.Sub("bn"), dim, nn.DefaultBatchNormConfig()),
		dim:   dim,
	}
}

// ForwardT runs the bottleneck path, adds the identity, and applies
// batch norm followed by leaky ReLU.
func (r *Residual) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c1 := r.conv1.ForwardT(x, train)
	a1 := c1.MustLeakyRelu(true)
	c2 := r.conv2.ForwardT(a1, train)
	a1.MustDrop()
	a2 := c2.MustLeakyRelu(true)
	c3 := r.conv3.ForwardT(a2, train)
	a2.MustDrop()

	sum := c3.MustAdd(x, true)
	n := r.bn.ForwardT(sum, train)
	sum.MustDrop()

	return n.MustLeakyRelu(true)
}

func (r *Residual) String() string {
	return fmt.Sprintf("Residual(dim=%d, bottleneck=%d)", r.dim, r.dim/4)
}

// ResidualStack chains four Residual units of the same width. Both
// generator branches run their encoder output through one of these
// before decoding.
type ResidualStack struct {
	blocks [4]*Residual

	dim int64
}

// NewResidualStack creates four chained Residual units under path p.
//
// Panics if dim is not a positive multiple of 4.
func NewResidualStack(p *nn.Path, dim int64) *ResidualStack {
	s := &ResidualStack{dim: dim}
	for i := range s.blocks {
		s.blocks[i] = NewResidual(p.Sub(fmt.Sprintf("block%d", i+1)), dim)
	}

	return s
}

// ForwardT applies the four residual units in order.
func (s *ResidualStack) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	out := s.blocks[0].ForwardT(x, train)
	for _, b := range s.blocks[1:] {
		next := b.ForwardT(out, train)
		out.MustDrop()
		out = next
	}

	return out
}

func (s *ResidualStack) String() string {
	return fmt.Sprintf("ResidualStack(dim=%d, blocks=4)", s.dim)
}
