// Package shapes validates tensor geometry for the image networks.
//
// All networks in this module operate on NCHW tensors whose spatial
// dimensions must survive a fixed number of stride-2 halvings. The
// helpers here turn silent libtorch size errors into panics that name
// the offending call site and the expected geometry.
package shapes

import "fmt"

// IsNCHW reports whether size describes a 4-D batch of channel-first
// images with the given channel count. A wantC of 0 accepts any
// channel count.
func IsNCHW(size []int64, wantC int64) bool {
	if len(size) != 4 {
		return false
	}
	if wantC > 0 && size[1] != wantC {
		return false
	}
	return size[0] > 0 && size[2] > 0 && size[3] > 0
}

// SpatialDivisible reports whether the H and W dimensions of an NCHW
// size are multiples of by.
func SpatialDivisible(size []int64, by int64) bool {
	if len(size) != 4 || by <= 0 {
		return false
	}
	return size[2]%by == 0 && size[3]%by == 0
}

// MustImage panics unless size describes an NCHW batch with wantC
// channels (wantC 0 accepts any) and spatial dimensions divisible by
// stride. The context string prefixes the panic message, conventionally
// "pkg: operation".
//
// Panics if the shape does not satisfy the contract.
func MustImage(size []int64, wantC, stride int64, context string) {
	if len(size) != 4 {
		panic(fmt.Sprintf("%s: want 4-D NCHW input, got %d-D shape %v", context, len(size), size))
	}
	if !IsNCHW(size, wantC) {
		panic(fmt.Sprintf("%s: want NCHW input with %d channels, got shape %v", context, wantC, size))
	}
	if stride > 1 && !SpatialDivisible(size, stride) {
		panic(fmt.Sprintf("%s: spatial dims %dx%d must be multiples of %d", context, size[2], size[3], stride))
	}
}

// MustMatchSpatial panics unless two NCHW sizes agree on H and W.
// Used before channel-wise concatenation of skip connections.
func MustMatchSpatial(a, b []int64, context string) {
	if len(a) != 4 || len(b) != 4 || a[2] != b[2] || a[3] != b[3] {
		panic(fmt.Sprintf("%s: spatial dims %v do not match %v", context, a, b))
	}
}

// Numel returns the number of elements implied by size.
func Numel(size []int64) int64 {
	n := int64(1)
	for _, d := range size {
		n *= d
	}
	return n
}
