// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package perceptual

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/srnet-ml/srnet/internal/shapes"
	"github.com/srnet-ml/srnet/weights"
)

// NumTaps is the number of feature scales the extractor returns.
const NumTaps = 5

// tapNames lists the returned activations, torchvision convention.
var tapNames = [NumTaps]string{"relu1_1", "relu2_1", "relu3_1", "relu4_1", "relu5_1"}

var _ ts.ModuleT = (*VGG19)(nil)

// VGG19 is the truncated VGG-19 feature extractor. Fields follow the
// conv<block><index> naming of the original architecture; variable
// paths follow the torchvision "features.N" layout.
type VGG19 struct {
	conv11, conv12 *nn.Conv2D // 3->64, 64->64
	conv21, conv22 *nn.Conv2D // 64->128, 128->128
	conv31, conv32 *nn.Conv2D // 128->256, 256->256
	conv33, conv34 *nn.Conv2D // 256->256, 256->256
	conv41, conv42 *nn.Conv2D // 256->512, 512->512
	conv43, conv44 *nn.Conv2D // 512->512, 512->512
	conv51         *nn.Conv2D // 512->512
}

// New creates the extractor under path p. For pretrained torchvision
// weights to resolve by name, p must be the var store root.
func New(p *nn.Path) *VGG19 {
	f := p.Sub("features")

	return &VGG19{
		conv11: vggConv(f, 0, 3, 64),
		conv12: vggConv(f, 2, 64, 64),
		conv21: vggConv(f, 5, 64, 128),
		conv22: vggConv(f, 7, 128, 128),
		conv31: vggConv(f, 10, 128, 256),
		conv32: vggConv(f, 12, 256, 256),
		conv33: vggConv(f, 14, 256, 256),
		conv34: vggConv(f, 16, 256, 256),
		conv41: vggConv(f, 19, 256, 512),
		conv42: vggConv(f, 21, 512, 512),
		conv43: vggConv(f, 23, 512, 512),
		conv44: vggConv(f, 25, 512, 512),
		conv51: vggConv(f, 28, 512, 512),
	}
}

// vggConv registers a 3x3 pad-1 convolution under the torchvision
// sequential index.
func vggConv(f *nn.Path, idx int, cIn, cOut int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Padding = []int64{1, 1}

	return nn.NewConv2D(f.Sub(fmt.Sprintf("%d", idx)), cIn, cOut, 3, config)
}

// LoadPretrained fills the extractor's variables from a converted
// torchvision checkpoint at path and freezes the whole store. vs must
// be the store the extractor was built on.
func (m *VGG19) LoadPretrained(vs *nn.VarStore, path string) error {
	if err := weights.LoadInto(vs, path); err != nil {
		return fmt.Errorf("perceptual: load vgg19: %w", err)
	}
	vs.Freeze()

	return nil
}

// ForwardTaps runs the prefix and returns the activation after the
// first convolution of each scale:
//
//	[0] relu1_1 [N,  64, H,    W   ]
//	[1] relu2_1 [N, 128, H/2,  W/2 ]
//	[2] relu3_1 [N, 256, H/4,  W/4 ]
//	[3] relu4_1 [N, 512, H/8,  W/8 ]
//	[4] relu5_1 [N, 512, H/16, W/16]
//
// The caller owns all five tensors; DropTaps releases them in one
// call.
//
// Panics if x is not [N, 3, H, W] with H and W divisible by 16.
func (m *VGG19) ForwardTaps(x *ts.Tensor) [NumTaps]*ts.Tensor {
	shapes.MustImage(x.MustSize(), 3, 16, "perceptual: vgg19")

	var taps [NumTaps]*ts.Tensor

	c := m.conv11.ForwardT(x, false)
	taps[0] = c.MustRelu(true) // relu1_1

	c = m.conv12.ForwardT(taps[0], false)
	r := c.MustRelu(true)
	p := pool(r) // 1/2

	c = m.conv21.ForwardT(p, false)
	p.MustDrop()
	taps[1] = c.MustRelu(true) // relu2_1

	c = m.conv22.ForwardT(taps[1], false)
	r = c.MustRelu(true)
	p = pool(r) // 1/4

	c = m.conv31.ForwardT(p, false)
	p.MustDrop()
	taps[2] = c.MustRelu(true) // relu3_1

	r = relu(m.conv32, taps[2])
	r = reluConsume(m.conv33, r)
	r = reluConsume(m.conv34, r)
	p = pool(r) // 1/8

	c = m.conv41.ForwardT(p, false)
	p.MustDrop()
	taps[3] = c.MustRelu(true) // relu4_1

	r = relu(m.conv42, taps[3])
	r = reluConsume(m.conv43, r)
	r = reluConsume(m.conv44, r)
	p = pool(r) // 1/16

	c = m.conv51.ForwardT(p, false)
	p.MustDrop()
	taps[4] = c.MustRelu(true) // relu5_1

	return taps
}

// ForwardT returns the deepest tap (relu5_1) only, dropping the rest.
// It exists so the extractor satisfies ts.ModuleT.
func (m *VGG19) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	taps := m.ForwardTaps(x)
	for _, tap := range taps[:NumTaps-1] {
		tap.MustDrop()
	}

	return taps[NumTaps-1]
}

// relu applies conv then ReLU, keeping the input.
func relu(conv *nn.Conv2D, x *ts.Tensor) *ts.Tensor {
	c := conv.ForwardT(x, false)

	return c.MustRelu(true)
}

// reluConsume applies conv then ReLU, dropping the input.
func reluConsume(conv *nn.Conv2D, x *ts.Tensor) *ts.Tensor {
	c := conv.ForwardT(x, false)
	x.MustDrop()

	return c.MustRelu(true)
}

// pool halves spatially with 2x2/2 max pooling, consuming x.
func pool(x *ts.Tensor) *ts.Tensor {
	return x.MustMaxPool2d([]int64{2, 2}, []int64{2, 2}, []int64{0, 0}, []int64{1, 1}, false, true)
}

// TapNames returns the activation names in tap order.
func TapNames() [NumTaps]string { return tapNames }

// DropTaps releases every tensor in taps.
func DropTaps(taps [NumTaps]*ts.Tensor) {
	for _, tap := range taps {
		if tap != nil {
			tap.MustDrop()
		}
	}
}

func (m *VGG19) String() string {
	return fmt.Sprintf("VGG19(prefix=relu5_1, taps=%v)", tapNames)
}
