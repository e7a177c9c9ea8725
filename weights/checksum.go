// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package weights

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// ChecksumFile computes the hex-encoded SHA-256 digest of the file at
// path without loading it into memory.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("weights: checksum %q: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("weights: checksum %q: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum compares the file's SHA-256 digest against want
// (hex, case insensitive). Returns an error wrapping
// ErrChecksumMismatch when they differ.
func VerifyChecksum(path, want string) error {
	got, err := ChecksumFile(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(got, want) {
		return fmt.Errorf("weights: %q: %w (got %s, want %s)", path, ErrChecksumMismatch, got, want)
	}

	return nil
}
