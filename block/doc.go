// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package block provides the convolutional building blocks shared by
// the generator and discriminator networks.
//
// # Overview
//
// This package contains:
//   - ConvBNReLU: 3x3 convolution + batch norm + leaky ReLU, shape preserving
//   - DilatedConvBNReLU: dilated variant for enlarging receptive fields
//   - Residual: bottleneck residual unit (1x1 reduce, 3x3, 1x1 expand)
//   - ResidualStack: four chained Residual units
//   - SNConv2D: convolution with spectral weight normalization
//
// All blocks operate on NCHW float tensors and implement ts.ModuleT, so
// they compose with gotch layers and sequences. Constructors register
// their parameters under the given variable-store path.
//
// # Basic Usage
//
//	vs := nn.NewVarStore(gotch.CPU)
//	blk := block.NewConvBNReLU(vs.Root().Sub("blk"), 3, 32)
//
//	y := blk.ForwardT(x, true) // [N, 3, H, W] -> [N, 32, H, W]
//
// # Memory
//
// ForwardT allocates a new output tensor and never consumes its input;
// intermediate tensors are released eagerly. Callers own the returned
// tensor and drop it when done.
package block
