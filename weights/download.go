// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package weights

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// DownloadOptions tunes a single Download call. The zero value works.
type DownloadOptions struct {
	// SHA256 is the expected hex digest; empty skips verification.
	SHA256 string

	// Client overrides http.DefaultClient.
	Client *http.Client
}

// Download fetches rawURL into dest atomically: the body streams to a
// temp file in dest's directory, is optionally checksum-verified, and
// only then renamed into place. A partial or corrupt download never
// shadows dest.
func Download(ctx context.Context, rawURL, dest string, opts *DownloadOptions) error {
	if opts == nil {
		opts = &DownloadOptions{}
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("weights: create %q: %w", filepath.Dir(dest), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("weights: request %q: %w", rawURL, err)
	}

	Logger().Info("downloading weights", "url", rawURL, "dest", dest)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("weights: download %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weights: download %q: unexpected status %s", rawURL, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("weights: temp file for %q: %w", dest, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("weights: write %q: %w", dest, err)
	}

	if opts.SHA256 != "" {
		if err := VerifyChecksum(tmp.Name(), opts.SHA256); err != nil {
			return err
		}
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("weights: finalize %q: %w", dest, err)
	}

	Logger().Info("weights downloaded", "dest", dest, "bytes", n)

	return nil
}

// FetchOptions tunes a Fetch call. The zero value fetches the VGG-19
// archive into the user cache.
type FetchOptions struct {
	// URL of the archive; defaults to DefaultVGG19URL.
	URL string

	// Dir is the cache directory; defaults to CacheDir().
	Dir string

	// Name is the file name under Dir; defaults to the base name of
	// the URL path.
	Name string

	// SHA256 is the expected hex digest, verified on both cache hits
	// and fresh downloads; empty skips verification.
	SHA256 string

	// Client overrides http.DefaultClient.
	Client *http.Client
}

// Fetch returns a local path for the requested archive, downloading it
// on a cache miss. nil opts is equivalent to the zero value.
func Fetch(ctx context.Context, opts *FetchOptions) (string, error) {
	if opts == nil {
		opts = &FetchOptions{}
	}

	rawURL := opts.URL
	if rawURL == "" {
		rawURL = DefaultVGG19URL
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = CacheDir(); err != nil {
			return "", err
		}
	}

	name := opts.Name
	if name == "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("weights: parse url %q: %w", rawURL, err)
		}
		name = path.Base(u.Path)
	}

	dest, cached := Resolve(dir, name)
	if cached {
		if opts.SHA256 != "" {
			if err := VerifyChecksum(dest, opts.SHA256); err != nil {
				return "", err
			}
		}
		Logger().Debug("weights cache hit", "path", dest)

		return dest, nil
	}

	err := Download(ctx, rawURL, dest, &DownloadOptions{
		SHA256: opts.SHA256,
		Client: opts.Client,
	})
	if err != nil {
		return "", err
	}

	return dest, nil
}
