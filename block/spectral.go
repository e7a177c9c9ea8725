// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// normEps keeps power-iteration vectors away from zero norm.
const normEps = 1e-12

// SNConv2D is a 2-D convolution whose weight is spectrally normalized
// on every forward pass. One power-iteration step estimates the
// dominant singular value sigma of the flattened weight matrix, and
// the convolution runs with W/sigma instead of W. This bounds the
// layer's Lipschitz constant, which stabilizes adversarial training.
//
// The left singular vector estimate u persists across calls and is
// refined by each forward pass, exactly like the buffer in the usual
// PyTorch formulation. Gradients flow through W only; u and the
// per-call right vector v are treated as constants.
type SNConv2D struct {
	conv *nn.Conv2D
	u    *ts.Tensor // [cOut], running left singular vector estimate

	cIn, cOut       int64
	kernel          int64
	stride, padding int64
	device          gotch.Device
}

// NewSNConv2D creates a spectrally normalized convolution under path
// p. kernel, stride and padding apply to both spatial dimensions.
//
// Panics if channel counts, kernel or stride are not positive.
func NewSNConv2D(p *nn.Path, cIn, cOut, kernel, stride, padding int64) *SNConv2D {
	if cIn <= 0 || cOut <= 0 {
		panic(fmt.Sprintf("block: SNConv2D channels must be positive, got %d -> %d", cIn, cOut))
	}
	if kernel <= 0 || stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("block: SNConv2D invalid geometry kernel=%d stride=%d padding=%d", kernel, stride, padding))
	}

	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	c := &SNConv2D{
		conv:    nn.NewConv2D(p.Sub("conv"), cIn, cOut, kernel, config),
		cIn:     cIn,
		cOut:    cOut,
		kernel:  kernel,
		stride:  stride,
		padding: padding,
		device:  p.Device(),
	}

	ts.NoGrad(func() {
		u := ts.MustRandn([]int64{cOut}, gotch.Float, c.device)
		c.u = l2normalize(u)
	})

	return c
}

// ForwardT estimates sigma with one power-iteration step, updates the
// persistent u vector, and convolves the input with W/sigma.
func (c *SNConv2D) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	w := c.conv.Ws
	wMat := w.MustView([]int64{c.cOut, -1}, false)

	var v *ts.Tensor
	ts.NoGrad(func() {
		wt := wMat.MustT(false)
		vRaw := wt.MustMv(c.u, true)
		v = l2normalize(vRaw)

		uRaw := wMat.MustMv(v, false)
		uNew := l2normalize(uRaw)
		c.u.Copy_(uNew)
		uNew.MustDrop()
	})

	// sigma = u . (W v), differentiable through W only.
	wv := wMat.MustMv(v, false)
	v.MustDrop()
	sigma := c.u.MustDot(wv, false)
	wv.MustDrop()
	wMat.MustDrop()

	wBar := w.MustDiv(sigma, false)
	sigma.MustDrop()

	out := x.MustConv2d(wBar, c.conv.Bs,
		[]int64{c.stride, c.stride},
		[]int64{c.padding, c.padding},
		[]int64{1, 1}, 1, false)
	wBar.MustDrop()

	return out
}

// EstimateSigma runs iters power-iteration steps from a fresh random
// vector and returns the resulting estimate of the dominant singular
// value of the current weight. It never touches the persistent u, so
// it is safe to call alongside training. The estimate approaches the
// true value from below as iters grows.
func (c *SNConv2D) EstimateSigma(iters int) float64 {
	if iters < 1 {
		iters = 1
	}

	var sigma float64
	ts.NoGrad(func() {
		wMat := c.conv.Ws.MustView([]int64{c.cOut, -1}, false)
		wt := wMat.MustT(false)

		u0 := ts.MustRandn([]int64{c.cOut}, gotch.Float, c.device)
		u := l2normalize(u0)
		var v *ts.Tensor
		for i := 0; i < iters; i++ {
			vRaw := wt.MustMv(u, false)
			if v != nil {
				v.MustDrop()
			}
			v = l2normalize(vRaw)
			uRaw := wMat.MustMv(v, false)
			u.MustDrop()
			u = l2normalize(uRaw)
		}

		wv := wMat.MustMv(v, false)
		v.MustDrop()
		dot := u.MustDot(wv, false)
		wv.MustDrop()
		u.MustDrop()
		wt.MustDrop()
		wMat.MustDrop()

		sigma = dot.Float64Values()[0]
		dot.MustDrop()
	})

	return sigma
}

// Weight returns the raw (unnormalized) convolution weight.
func (c *SNConv2D) Weight() *ts.Tensor { return c.conv.Ws }

func (c *SNConv2D) String() string {
	return fmt.Sprintf("SNConv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, padding=%d)",
		c.cIn, c.cOut, c.kernel, c.kernel, c.stride, c.padding)
}

// l2normalize scales v to unit L2 norm, consuming v.
func l2normalize(v *ts.Tensor) *ts.Tensor {
	n := v.MustNorm(false).MustAddScalar(ts.FloatScalar(normEps), true)
	out := v.MustDiv(n, true)
	n.MustDrop()

	return out
}
