// Copyright 2026 The srnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Command srnet inspects the scene text editing networks and manages
// their pretrained weights.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"

	"github.com/srnet-ml/srnet/internal/shapes"
	"github.com/srnet-ml/srnet/model"
	"github.com/srnet-ml/srnet/perceptual"
	"github.com/srnet-ml/srnet/weights"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("srnet %s\n", version)
	case "summary":
		runSummary(os.Args[2:])
	case "fetch":
		if err := runFetch(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "srnet: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "srnet: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("srnet - scene text editing networks")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  summary    Print network architectures and parameter counts")
	fmt.Println("  fetch      Download the VGG-19 perceptual weights into the cache")
}

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	inDim := fs.Int64("in", 3, "input image channels")
	fs.Parse(args)

	vs := nn.NewVarStore(gotch.CPU)
	root := vs.Root()

	g := model.NewGenerator(root.Sub("generator"), *inDim)
	d := model.NewDiscriminator(root.Sub("discriminator"), 2**inDim)
	sd := model.NewSNDiscriminator(root.Sub("sn_discriminator"), 2**inDim)
	vgg := perceptual.New(root.Sub("vgg"))

	fmt.Println(g)
	fmt.Println(d)
	fmt.Println(sd)
	fmt.Println(vgg)
	fmt.Printf("\nTrainable parameters: %d\n", paramCount(vs))
}

// paramCount sums the element counts of every trainable variable.
func paramCount(vs *nn.VarStore) int64 {
	var n int64
	for _, v := range vs.TrainableVariables() {
		n += shapes.Numel(v.MustSize())
		v.MustDrop()
	}
	return n
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	rawURL := fs.String("url", weights.DefaultVGG19URL, "archive URL")
	dir := fs.String("dir", "", "cache directory (default: user cache)")
	sha := fs.String("sha256", "", "expected hex digest (empty skips verification)")
	verbose := fs.Bool("v", false, "log progress")
	fs.Parse(args)

	if *verbose {
		weights.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	path, err := weights.Fetch(context.Background(), &weights.FetchOptions{
		URL:    *rawURL,
		Dir:    *dir,
		SHA256: *sha,
	})
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
