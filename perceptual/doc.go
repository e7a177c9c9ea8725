// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package perceptual provides the frozen VGG-19 feature extractor used
// for perceptual and style losses during generator training.
//
// # Overview
//
// The extractor is the torchvision VGG-19 "features" prefix up to and
// including relu5_1, with taps after the first activation of each of
// the five scales (relu1_1, relu2_1, relu3_1, relu4_1, relu5_1). Layer
// variables register under the torchvision names (features.0.weight,
// features.2.bias, ...), so a converted torchvision checkpoint loads
// by name with no mapping step.
//
// # Basic Usage
//
//	vs := nn.NewVarStore(gotch.CPU)
//	vgg := perceptual.New(vs.Root())
//	if err := vgg.LoadPretrained(vs, weightsPath); err != nil {
//	    return err
//	}
//
//	taps := vgg.ForwardTaps(img)
//	defer perceptual.DropTaps(taps)
//
// Pass the var store root (not a sub-path) when the weights come from
// a converted torchvision archive, otherwise the prefixed variable
// names will not resolve.
//
// The extractor applies no input normalization of its own; feed it
// whatever space the loss is defined in, or normalize beforehand with
// package transforms.
package perceptual
