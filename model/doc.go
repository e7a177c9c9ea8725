// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model implements the scene text editing networks: a
// three-branch generator that replaces the text in a styled image
// while preserving background and typography, and the patch
// discriminators used to train it adversarially.
//
// # Overview
//
// The generator is composed of:
//   - TextConversionNet: renders the replacement text in the style of
//     the source image, plus a text skeleton mask
//   - BackgroundInpaintingNet: erases the original text and fills in
//     the background
//   - FusionNet: composites the stylized text onto the inpainted
//     background using the inpainting decoder's feature maps
//
// All three branches share the same encoder/decoder topology built
// from the blocks in package block. Images are NCHW float tensors in
// [-1, 1]; masks are single-channel in [0, 1]. Spatial dimensions must
// be multiples of Stride so the decoders can mirror the encoders
// exactly.
//
// # Basic Usage
//
//	vs := nn.NewVarStore(gotch.CPU)
//	g := model.NewGenerator(vs.Root().Sub("generator"), 3)
//
//	mask, stylized, background, fused := g.ForwardT(text, style, false)
//
// The discriminators (Discriminator, SNDiscriminator,
// DiscriminatorMixed) score 6-channel image pairs into patch maps at
// 1/16 resolution; all satisfy PatchScorer.
//
// # Memory
//
// Forward methods never consume their inputs and return tensors owned
// by the caller. Multi-output methods return feature structs
// (EncoderFeatures, SkipBundle) with a Drop method that releases every
// contained tensor.
package model
