// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package weights

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sugarme/gotch/nn"
)

// DefaultVGG19URL points at the converted torchvision VGG-19 archive
// published with ocaml-torch. Entry names follow the torchvision
// state dict (features.0.weight, ...).
const DefaultVGG19URL = "https://github.com/LaurentMazare/ocaml-torch/releases/download/v0.1-unstable/vgg19.ot"

// Common errors.
var (
	ErrNotFound          = errors.New("weight file not found")
	ErrUnsupportedFormat = errors.New("unsupported weight format")
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
)

// SupportedFormat reports whether path names a loadable libtorch
// named-tensor archive (.ot or .pt).
func SupportedFormat(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ot", ".pt":
		return true
	default:
		return false
	}
}

// LoadInto fills vs's variables by name from the archive at path.
// Archive entries without a matching variable are ignored; variables
// without a matching entry make the load fail.
//
// Returned errors wrap ErrUnsupportedFormat or ErrNotFound where they
// apply.
func LoadInto(vs *nn.VarStore, path string) error {
	if !SupportedFormat(path) {
		return fmt.Errorf("weights: load %q: %w (want .ot or .pt)", path, ErrUnsupportedFormat)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("weights: load %q: %w", path, ErrNotFound)
		}
		return fmt.Errorf("weights: load %q: %w", path, err)
	}

	if err := vs.Load(path); err != nil {
		return fmt.Errorf("weights: load %q: %w", path, err)
	}

	Logger().Debug("weights loaded", "path", path)

	return nil
}

// CacheDir returns the per-user directory for downloaded archives,
// creating it if needed.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("weights: resolve cache dir: %w", err)
	}

	dir := filepath.Join(base, "srnet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("weights: create cache dir: %w", err)
	}

	return dir, nil
}

// Resolve returns the path name would occupy under dir and whether a
// file already exists there.
func Resolve(dir, name string) (string, bool) {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return path, false
	}

	return path, !info.IsDir()
}
