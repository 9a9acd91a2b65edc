package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"photo2pdf/compositor"
	"photo2pdf/config"
	"photo2pdf/contracts"
	"photo2pdf/files_manager"
	"photo2pdf/fpdf_writer"
	"photo2pdf/pdf_writer"
	"photo2pdf/raster"
	"photo2pdf/recents"
	"photo2pdf/store"
	"photo2pdf/verify"
)

var (
	ErrUsage    = errors.New("usage: photo2pdf [flags] <image|dir>...")
	ErrWritePDF = errors.New("failed to write PDF")
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCodeFor(err))
}

func newLogger(w io.Writer, f *cliFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadConfig(f *cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return cfg, nil
}

func openRecents(cfg *config.Config) (*recents.Store, error) {
	path := cfg.RecentsFile
	if path == "" {
		var err error
		if path, err = recents.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return recents.New(path)
}

func serializerFor(backend string) contracts.SerializerFactory {
	if backend == config.BackendNative {
		return pdf_writer.NewSerializer
	}
	return fpdf_writer.NewSerializer
}

// defaultOutputName names the document after a lone input directory.
func defaultOutputName(args []string) string {
	if len(args) != 1 {
		return ""
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return ""
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return ""
	}
	return filepath.Base(abs)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, positional, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	logger := newLogger(stderr, f)

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	history, err := openRecents(cfg)
	if err != nil {
		logger.Warn("export history unavailable", "error", err)
	}
	switch {
	case f.clearRecents:
		if history == nil {
			return err
		}
		return history.Clear()
	case f.listRecents:
		if history == nil {
			return err
		}
		for _, e := range history.List() {
			fmt.Fprintf(stdout, "%s\t%d pages\t%s\n", e.CreatedAt.Format(time.DateTime), e.Pages, e.Path)
		}
		return nil
	}

	opts, err := cfg.ToOptions()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	opts.OutputName = f.output
	if opts.OutputName == "" {
		opts.OutputName = defaultOutputName(positional)
	}

	images, err := files_manager.ResolveInputs(positional)
	if err != nil {
		return err
	}
	logger.Info("composing", "images", len(images), "backend", cfg.Backend, "dpi", opts.DPI)

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	c := compositor.New(
		store.NewFileStore(""),
		raster.NewDecoder(),
		serializerFor(cfg.Backend),
		compositor.WithLogger(logger),
		compositor.WithPrefetch(workers),
	)

	startTime := time.Now()
	res, err := c.Compose(ctx, images, opts)
	if err != nil {
		return err
	}
	if cfg.Verify {
		if err := verify.Check(res.Data, res.PageCount); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Debug("verified", "pages", res.PageCount)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	outPath := filepath.Join(cfg.OutputDir, files_manager.SafeFileName(res.FileName))
	if err := files_manager.WriteFileAtomic(outPath, res.Data); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	logger.Info("export finished", "path", outPath, "pages", res.PageCount, "elapsed", time.Since(startTime))

	if history != nil {
		abs, _ := filepath.Abs(outPath)
		entry := recents.Entry{
			Path:      abs,
			Name:      filepath.Base(outPath),
			CreatedAt: time.Now(),
			HD:        opts.DPI >= contracts.HDDPI,
			Pages:     res.PageCount,
		}
		if err := history.Add(entry); err != nil {
			logger.Warn("could not record export", "error", err)
		}
	}

	fmt.Fprintln(stdout, outPath)
	return nil
}
