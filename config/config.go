// Package config loads export settings from YAML and turns them into
// compositor options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"photo2pdf/contracts"
)

// MaxFileSize limits config input.
const MaxFileSize = 1 << 20

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidMargins = errors.New("invalid margins")
	ErrInvalidBackend = errors.New("invalid backend")
	ErrInvalidWorkers = errors.New("workers must not be negative")
	ErrInvalidDPI     = errors.New("dpi must not be negative")
)

// Serializer backends.
const (
	BackendGofpdf = "gofpdf"
	BackendNative = "native"
)

// Margin presets in millimetres.
var marginPresets = map[string]float64{
	"none":   0,
	"small":  5,
	"medium": 10,
	"large":  20,
}

// MarginSpec is a margin preset name, a single number, or four
// comma-separated numbers (top,right,bottom,left), all in millimetres.
type MarginSpec string

// UnmarshalYAML accepts plain numbers as well as strings.
func (m *MarginSpec) UnmarshalYAML(b []byte) error {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*m = ""
	case string:
		*m = MarginSpec(v)
	case uint64, int64, float64:
		*m = MarginSpec(fmt.Sprint(v))
	default:
		return fmt.Errorf("%w: unexpected %T", ErrInvalidMargins, v)
	}
	return nil
}

type Config struct {
	DPI         float64    `yaml:"dpi"`
	HD          bool       `yaml:"hd"`
	Title       string     `yaml:"title"`
	Paper       string     `yaml:"paper"`
	Orientation string     `yaml:"orientation"`
	Margins     MarginSpec `yaml:"margins"`
	Fit         string     `yaml:"fit"`
	ImageDPI    bool       `yaml:"imageDpi"`
	OutputDir   string     `yaml:"outputDir"`
	Backend     string     `yaml:"backend"`
	Workers     int        `yaml:"workers"`
	Verify      bool       `yaml:"verify"`
	RecentsFile string     `yaml:"recentsFile"`
}

func Default() *Config {
	return &Config{
		DPI:       contracts.DefaultDPI,
		Paper:     string(contracts.PaperAuto),
		Fit:       string(contracts.FitContain),
		OutputDir: ".",
		Backend:   BackendGofpdf,
	}
}

// Load reads path on top of the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxFileSize)
	}
	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DPI < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDPI, c.DPI)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	switch strings.ToLower(c.Backend) {
	case "", BackendGofpdf, BackendNative:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	opts, err := c.ToOptions()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// ToOptions converts the config to compositor options. HD wins over DPI.
func (c *Config) ToOptions() (contracts.Options, error) {
	opts := contracts.DefaultOptions()
	if c.DPI > 0 {
		opts.DPI = c.DPI
	}
	if c.HD {
		opts.DPI = contracts.HDDPI
	}
	opts.Title = c.Title
	opts.Paper = ParsePaper(c.Paper)
	opts.Orientation = contracts.Orientation(strings.ToLower(strings.TrimSpace(c.Orientation)))
	opts.Fit = contracts.FitMode(strings.ToLower(strings.TrimSpace(c.Fit)))
	opts.UseImageDPI = c.ImageDPI

	margins, err := ParseMargins(string(c.Margins))
	if err != nil {
		return contracts.Options{}, err
	}
	opts.Margins = margins
	return opts.Normalized(), nil
}

// ParsePaper matches preset names case-insensitively. Unknown names are
// returned unchanged so validation can report them.
func ParsePaper(s string) contracts.Paper {
	s = strings.TrimSpace(s)
	for _, p := range []contracts.Paper{contracts.PaperAuto, contracts.PaperA4, contracts.PaperLetter, contracts.PaperLegal} {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	return contracts.Paper(s)
}

// ParseMargins parses a MarginSpec. An empty spec means the default margins.
func ParseMargins(s string) (contracts.Margins, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return contracts.Margins{}, nil
	}
	if mm, ok := marginPresets[s]; ok {
		return contracts.UniformMargins(mm), nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 4 {
		return contracts.Margins{}, fmt.Errorf("%w: %q needs 1 or 4 values", ErrInvalidMargins, s)
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return contracts.Margins{}, fmt.Errorf("%w: %q", ErrInvalidMargins, p)
		}
		values[i] = v
	}

	var m contracts.Margins
	if len(values) == 1 {
		m = contracts.UniformMargins(values[0])
	} else {
		m = contracts.PerSideMargins(values[0], values[1], values[2], values[3])
	}
	if err := m.Validate(); err != nil {
		return contracts.Margins{}, fmt.Errorf("%w: %w", ErrInvalidMargins, err)
	}
	return m, nil
}
