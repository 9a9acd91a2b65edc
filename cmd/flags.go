package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"photo2pdf/config"
)

type cliFlags struct {
	config      string
	output      string
	outputDir   string
	title       string
	dpi         float64
	hd          bool
	paper       string
	orientation string
	margins     string
	fit         string
	imageDPI    bool
	backend     string
	workers     int
	verify      bool
	recentsFile string

	listRecents  bool
	clearRecents bool

	verbose bool
	quiet   bool

	set *flag.FlagSet
}

// parseFlags parses args without the program name and returns the
// remaining positional arguments.
func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("photo2pdf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringVarP(&f.config, "config", "c", "", "YAML config file")
	fs.StringVarP(&f.output, "output", "o", "", "output file name (default: input directory name or export_<time>)")
	fs.StringVar(&f.outputDir, "output-dir", ".", "directory to write the PDF into")
	fs.StringVarP(&f.title, "title", "t", "", "document title")
	fs.Float64Var(&f.dpi, "dpi", 150, "pixels per inch used to size auto pages")
	fs.BoolVar(&f.hd, "hd", false, "HD export (300 dpi)")
	fs.StringVarP(&f.paper, "paper", "p", "auto", "paper: auto, A4, Letter, Legal")
	fs.StringVar(&f.orientation, "orientation", "auto", "orientation: auto, portrait, landscape")
	fs.StringVarP(&f.margins, "margins", "m", "", "margins in mm: none, small, medium, large, N or top,right,bottom,left (default 10)")
	fs.StringVar(&f.fit, "fit", "contain", "fit: contain, cover, stretch")
	fs.BoolVar(&f.imageDPI, "image-dpi", false, "size auto pages from the resolution stored in each image")
	fs.StringVar(&f.backend, "backend", config.BackendGofpdf, "serializer: gofpdf or native")
	fs.IntVarP(&f.workers, "workers", "w", 0, "images decoded ahead of assembly (0 = GOMAXPROCS)")
	fs.BoolVar(&f.verify, "verify", false, "re-read the PDF with pdfcpu before writing it")
	fs.StringVar(&f.recentsFile, "recents-file", "", "export history file (default: user config dir)")
	fs.BoolVar(&f.listRecents, "list-recents", false, "print recent exports and exit")
	fs.BoolVar(&f.clearRecents, "clear-recents", false, "forget recent exports and exit")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "errors only")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.set = fs
	return f, fs.Args(), nil
}

// apply overlays explicitly set flags on cfg.
func (f *cliFlags) apply(cfg *config.Config) {
	changed := f.set.Changed
	if changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if changed("title") {
		cfg.Title = f.title
	}
	if changed("dpi") {
		cfg.DPI = f.dpi
	}
	if changed("hd") {
		cfg.HD = f.hd
	}
	if changed("paper") {
		cfg.Paper = f.paper
	}
	if changed("orientation") {
		cfg.Orientation = f.orientation
	}
	if changed("margins") {
		cfg.Margins = config.MarginSpec(f.margins)
	}
	if changed("fit") {
		cfg.Fit = f.fit
	}
	if changed("image-dpi") {
		cfg.ImageDPI = f.imageDPI
	}
	if changed("backend") {
		cfg.Backend = f.backend
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("verify") {
		cfg.Verify = f.verify
	}
	if changed("recents-file") {
		cfg.RecentsFile = f.recentsFile
	}
}
