// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package transforms

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/sugarme/gotch/ts"
)

// ImageNet channel statistics, for extractors pretrained on ImageNet.
var (
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

// ToTensor converts img to a [1, 3, H, W] float tensor with values in
// [0, 1]. The alpha channel, if any, is discarded. The caller owns the
// returned tensor.
func ToTensor(img image.Image) *ts.Tensor {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	data := make([]float32, 3*h*w)
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*w + x
			data[i] = float32(r) / 0xffff
			data[plane+i] = float32(g) / 0xffff
			data[2*plane+i] = float32(b) / 0xffff
		}
	}

	return ts.MustOfSlice(data).MustView([]int64{1, 3, int64(h), int64(w)}, true)
}

// ToImage converts a [1, C, H, W] or [C, H, W] tensor with C of 3 or 1
// back to an image, clamping values into [0, 1]. Three channels produce
// an NRGBA image, one channel a grayscale image. The input is not
// consumed.
func ToImage(t *ts.Tensor) (image.Image, error) {
	size := t.MustSize()
	if len(size) == 4 {
		if size[0] != 1 {
			return nil, fmt.Errorf("transforms: to image: want batch of 1, got shape %v", size)
		}
		size = size[1:]
	}
	if len(size) != 3 || (size[0] != 1 && size[0] != 3) {
		return nil, fmt.Errorf("transforms: to image: want [1|3, H, W] values, got shape %v", size)
	}

	c, h, w := int(size[0]), int(size[1]), int(size[2])

	lo := ts.FloatScalar(0.0)
	defer lo.MustDrop()
	hi := ts.FloatScalar(1.0)
	defer hi.MustDrop()

	clamped := t.MustClamp(lo, hi, false)
	vals := clamped.Float64Values()
	clamped.MustDrop()

	plane := h * w
	if c == 1 {
		img := image.NewGray(image.Rect(0, 0, w, h))
		for i, v := range vals {
			img.Pix[i] = uint8(v*255 + 0.5)
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(vals[i]*255 + 0.5),
				G: uint8(vals[plane+i]*255 + 0.5),
				B: uint8(vals[2*plane+i]*255 + 0.5),
				A: 0xff,
			})
		}
	}
	return img, nil
}

// ScaleTanh maps a [0, 1] tensor into the generator's [-1, 1] value
// space. The input is not consumed; the caller owns the result.
func ScaleTanh(x *ts.Tensor) *ts.Tensor {
	two := ts.FloatScalar(2.0)
	defer two.MustDrop()
	one := ts.FloatScalar(1.0)
	defer one.MustDrop()

	return x.MustMulScalar(two, false).MustSubScalar(one, true)
}

// UnscaleTanh maps a [-1, 1] tensor back into [0, 1].
func UnscaleTanh(x *ts.Tensor) *ts.Tensor {
	one := ts.FloatScalar(1.0)
	defer one.MustDrop()
	half := ts.FloatScalar(0.5)
	defer half.MustDrop()

	return x.MustAddScalar(one, false).MustMulScalar(half, true)
}

// Normalize applies per-channel (x - mean) / std to an NCHW tensor
// with 3 channels. The input is not consumed.
func Normalize(x *ts.Tensor, mean, std [3]float32) *ts.Tensor {
	m := ts.MustOfSlice(mean[:]).MustView([]int64{1, 3, 1, 1}, true)
	defer m.MustDrop()
	s := ts.MustOfSlice(std[:]).MustView([]int64{1, 3, 1, 1}, true)
	defer s.MustDrop()

	return x.MustSub(m, false).MustDiv(s, true)
}

// Denormalize inverts Normalize.
func Denormalize(x *ts.Tensor, mean, std [3]float32) *ts.Tensor {
	m := ts.MustOfSlice(mean[:]).MustView([]int64{1, 3, 1, 1}, true)
	defer m.MustDrop()
	s := ts.MustOfSlice(std[:]).MustView([]int64{1, 3, 1, 1}, true)
	defer s.MustDrop()

	return x.MustMul(s, false).MustAdd(m, true)
}

// Resize resamples img to w by h pixels with Catmull-Rom
// interpolation.
func Resize(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("transforms: resize target %dx%d must be positive", w, h))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// FitStride shrinks img to the nearest dimensions divisible by stride,
// so the result can flow through the encoders without padding. Images
// already aligned are returned unchanged; images smaller than stride
// in either dimension are resized up to stride.
func FitStride(img image.Image, stride int) image.Image {
	if stride <= 0 {
		panic(fmt.Sprintf("transforms: stride must be positive, got %d", stride))
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	fw, fh := w-w%stride, h-h%stride
	if fw == 0 {
		fw = stride
	}
	if fh == 0 {
		fh = stride
	}

	if fw == w && fh == h {
		return img
	}
	return Resize(img, fw, fh)
}
