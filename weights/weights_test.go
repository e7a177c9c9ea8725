// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package weights

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

func TestSupportedFormat(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"vgg19.ot", true},
		{"model.pt", true},
		{"MODEL.OT", true},
		{"model.safetensors", false},
		{"model.gguf", false},
		{"model", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, SupportedFormat(tc.path), "path %q", tc.path)
	}
}

func TestLoadInto_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.ot")

	src := nn.NewVarStore(gotch.CPU)
	srcConv := nn.NewConv2D(src.Root().Sub("conv"), 3, 8, 3, nn.DefaultConv2DConfig())
	require.NoError(t, src.Save(path))

	dst := nn.NewVarStore(gotch.CPU)
	dstConv := nn.NewConv2D(dst.Root().Sub("conv"), 3, 8, 3, nn.DefaultConv2DConfig())

	x := ts.MustRandn([]int64{1, 3, 8, 8}, gotch.Float, gotch.CPU)
	defer x.MustDrop()

	before := dstConv.ForwardT(x, false)
	defer before.MustDrop()

	require.NoError(t, LoadInto(dst, path))

	after := dstConv.ForwardT(x, false)
	defer after.MustDrop()
	want := srcConv.ForwardT(x, false)
	defer want.MustDrop()

	assert.InDeltaSlice(t, want.Float64Values(), after.Float64Values(), 1e-7,
		"loaded conv must reproduce the saved conv")
	assert.NotEqual(t, want.Float64Values(), before.Float64Values(),
		"independently initialized conv should differ before loading")
}

func TestLoadInto_Errors(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)

	err := LoadInto(vs, "model.safetensors")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	err = LoadInto(vs, filepath.Join(t.TempDir(), "missing.ot"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	path, ok := Resolve(dir, "vgg19.ot")
	assert.Equal(t, filepath.Join(dir, "vgg19.ot"), path)
	assert.False(t, ok, "nothing cached yet")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, ok = Resolve(dir, "vgg19.ot")
	assert.True(t, ok)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	_, ok = Resolve(dir, "sub")
	assert.False(t, ok, "directories do not count as cached archives")
}

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("hello weights"), 0o644))

	sum, err := ChecksumFile(path)
	require.NoError(t, err)

	raw := sha256.Sum256([]byte("hello weights"))
	assert.Equal(t, hex.EncodeToString(raw[:]), sum)

	require.NoError(t, VerifyChecksum(path, strings.ToUpper(sum)), "digest compare is case insensitive")

	err = VerifyChecksum(path, strings.Repeat("0", 64))
	require.ErrorIs(t, err, ErrChecksumMismatch)
}
