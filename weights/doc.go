// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package weights resolves, downloads and loads pretrained weight
// archives, primarily the converted torchvision VGG-19 checkpoint the
// perceptual extractor depends on.
//
// # Overview
//
// Archives are libtorch named-tensor files (.ot or .pt) loaded into a
// gotch var store by variable name. Fetch is the high-level entry
// point: it answers from the local cache when possible and downloads
// atomically (temp file + rename) when not, with optional SHA-256
// verification.
//
//	path, err := weights.Fetch(ctx, nil) // VGG-19 into the user cache
//	if err != nil {
//	    return err
//	}
//	err = weights.LoadInto(vs, path)
//
// # Errors
//
// Failures wrap the sentinel errors ErrNotFound, ErrUnsupportedFormat
// and ErrChecksumMismatch, so callers can branch with errors.Is.
//
// # Logging
//
// The package logs through log/slog and is silent by default. Call
// SetLogger to see download progress (Info) and cache decisions
// (Debug).
package weights
