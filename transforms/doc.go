// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package transforms converts between Go images and the NCHW float
// tensors the networks consume, and provides the resampling and value
// scaling steps of the editing pipeline.
//
// # Pipeline
//
// The usual preprocessing chain is:
//
//	img = transforms.FitStride(img, model.Stride) // snap dims
//	x := transforms.ToTensor(img)                 // [1, 3, H, W] in [0, 1]
//	x = transforms.ScaleTanh(x)                   // [-1, 1], generator space
//
// and after inference:
//
//	y = transforms.UnscaleTanh(y)
//	img, err := transforms.ToImage(y)
//
// Normalize/Denormalize with ImageNetMean/ImageNetStd cover extractors
// trained on ImageNet statistics.
package transforms
