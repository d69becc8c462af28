// assetctl builds, inspects, and verifies asset packages, and resolves asset
// names the way a game would.
//
// Usage:
//
//	assetctl pack [flags] -o OUT.pkg DIR
//	assetctl ls PACKAGE
//	assetctl verify PACKAGE
//	assetctl resolve [--config FILE] [--search PRIORITY=DIR]... NAME...
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/meigma/asset"
	"github.com/meigma/asset/format"
	"github.com/meigma/asset/pack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// errUsage is returned for invalid command lines.
var errUsage = errors.New("usage: assetctl pack|ls|verify|resolve [flags] ARGS")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "pack":
		return runPack(ctx, args, stderr)
	case "ls":
		return runList(args, stdout, stderr)
	case "verify":
		return runVerify(args, stdout, stderr)
	case "resolve":
		return runResolve(args, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// newFlagSet returns a flag set with the shared --verbose flag.
func newFlagSet(name string, stderr io.Writer) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet("assetctl "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.BoolP("verbose", "v", false, "log debug output")
	return fs, verbose
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func runPack(ctx context.Context, args []string, stderr io.Writer) error {
	fs, verbose := newFlagSet("pack", stderr)
	out := fs.StringP("output", "o", "", "package file to write")
	zstd := fs.Bool("zstd", false, "compress blobs with zstd when it makes them smaller")
	tail := fs.Uint32("tail", pack.DefaultTailDimension, "largest level edge stored in the mip tail (0 disables)")
	maxFiles := fs.Int("max-files", 0, "maximum number of files (0 uses the default, negative disables)")
	concurrency := fs.Int("concurrency", 0, "blobs compressed at once (0 uses GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || *out == "" {
		return fmt.Errorf("pack needs -o OUT and one directory: %w", errUsage)
	}

	compression := pack.CompressionNone
	if *zstd {
		compression = pack.CompressionZstd
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	err = pack.Create(ctx, fs.Arg(0), f,
		pack.CreateWithCompression(compression),
		pack.CreateWithTailDimension(*tail),
		pack.CreateWithMaxFiles(*maxFiles),
		pack.CreateWithConcurrency(*concurrency),
		pack.CreateWithLogger(newLogger(stderr, *verbose)),
	)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(*out)
		return err
	}
	return nil
}

func openPackage(name string, args []string, stderr io.Writer) (*pack.Package, error) {
	fs, verbose := newFlagSet(name, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s needs one package: %w", name, errUsage)
	}
	return pack.Open(fs.Arg(0), pack.WithLogger(newLogger(stderr, *verbose)))
}

func runList(args []string, stdout, stderr io.Writer) error {
	p, err := openPackage("ls", args, stderr)
	if err != nil {
		return err
	}
	defer p.Close()

	for _, a := range p.Assets() {
		if a.Type == pack.AssetBuffer {
			fmt.Fprintf(stdout, "%-10s %10d bytes  blob %d  %s\n", a.Type, a.Size, a.BaseBlob, a.Path)
			continue
		}
		fmt.Fprintf(stdout, "%-10s %4dx%-4dx%-3d %-20s mips %2d tail %2d layers %3d  blobs %d/%d  %s\n",
			a.Type, a.Width, a.Height, max(a.Depth, 1), format.Format(a.Format),
			a.NumMips, a.NumTailMips, max(a.ArraySize, 1), a.BaseBlob, a.TailBlob, a.Path)
	}
	fmt.Fprintf(stdout, "%d assets, %d blobs\n", p.NumAssets(), p.NumBlobs())
	return nil
}

func runVerify(args []string, stdout, stderr io.Writer) error {
	p, err := openPackage("verify", args, stderr)
	if err != nil {
		return err
	}
	defer p.Close()

	var errs []error
	for i := range p.NumBlobs() {
		idx := uint32(i) //nolint:gosec // blob count fits uint32
		if err := p.VerifyBlob(idx); err != nil {
			errs = append(errs, err)
			continue
		}
		b, _ := p.BlobDesc(idx)
		if b.Compression == pack.CompressionNone {
			continue
		}
		if _, err := p.DecodeBlob(idx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%d of %d blobs failed verification: %w", len(errs), p.NumBlobs(), err)
	}
	fmt.Fprintf(stdout, "%s: %d blobs ok\n", p.Filename(), p.NumBlobs())
	return nil
}

func runResolve(args []string, stdout, stderr io.Writer) error {
	fs, verbose := newFlagSet("resolve", stderr)
	configPath := fs.StringP("config", "c", "", "YAML resolver configuration")
	searches := fs.StringArrayP("search", "s", nil, "search path as PRIORITY=DIR (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("resolve needs at least one name: %w", errUsage)
	}

	cfg := asset.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = asset.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	for _, s := range *searches {
		prio, dir, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("search path %q: want PRIORITY=DIR", s)
		}
		n, err := strconv.Atoi(prio)
		if err != nil {
			return fmt.Errorf("search path %q: %w", s, err)
		}
		cfg.SearchPaths = append(cfg.SearchPaths, asset.SearchPathConfig{Priority: n, Path: dir})
	}

	r, err := asset.NewResolverFromConfig(cfg, asset.WithLogger(newLogger(stderr, *verbose)))
	if err != nil {
		return err
	}
	defer r.Close()

	var errs []error
	for _, name := range fs.Args() {
		v, err := r.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d := v.Descriptor()
		fmt.Fprintf(stdout, "%s\n  backend  %T\n  kind     %s\n  format   %s\n  extent   %dx%dx%d\n  mips     %d (upload at least %d)\n  layers   %d\n  source   %s\n  hash     %016x\n",
			name, v, d.Kind, d.Format, d.Extent.Width, d.Extent.Height, d.Extent.Depth,
			d.MipLevels, d.MinLevelsToUpload, d.NumLayers, d.SourcePath, v.ContentHash())
		_ = v.Close()
	}
	return errors.Join(errs...)
}
