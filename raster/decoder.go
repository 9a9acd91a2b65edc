// Package raster prepares photographs for embedding: it infers formats,
// probes dimensions, transcodes what the serializers cannot embed directly
// and reads resolution metadata.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photo2pdf/contracts"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyImage        = errors.New("image has no pixels")
)

// PNG header offsets inside the IHDR chunk.
const (
	pngBitDepthOffset  = 24
	pngInterlaceOffset = 28
)

// Decoder is the default contracts.Decoder. JPEG and plain 8-bit PNG are
// passed through untouched, everything else is re-encoded as PNG.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Probe(data []byte, format contracts.Format) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", formatName(format), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, ErrEmptyImage
	}
	return cfg.Width, cfg.Height, nil
}

func (d *Decoder) Embed(data []byte, format contracts.Format) (*contracts.Embedded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrUnsupportedFormat)
	}
	if format == contracts.FormatUnknown {
		// Unknown formats go down the JPEG path first.
		format = contracts.FormatJPEG
	}
	emb, err := embedAs(data, format)
	if err == nil {
		return emb, nil
	}

	// Mislabelled input: let the content decide.
	_, name, sniffErr := image.DecodeConfig(bytes.NewReader(data))
	if sniffErr != nil || contracts.Format(name) == format {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, formatName(format), err)
	}
	emb, sniffErr = embedAs(data, contracts.Format(name))
	if sniffErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, name, sniffErr)
	}
	return emb, nil
}

func embedAs(data []byte, format contracts.Format) (*contracts.Embedded, error) {
	switch format {
	case contracts.FormatJPEG:
		return embedJPEG(data)
	case contracts.FormatPNG:
		return embedPNG(data)
	default:
		return transcode(data)
	}
}

func embedJPEG(data []byte) (*contracts.Embedded, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrEmptyImage
	}
	return &contracts.Embedded{Data: data, Format: contracts.FormatJPEG, Width: cfg.Width, Height: cfg.Height}, nil
}

func embedPNG(data []byte) (*contracts.Embedded, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrEmptyImage
	}
	// PDF embedding handles 8-bit, non-interlaced PNG as is.
	if data[pngBitDepthOffset] > 8 || data[pngInterlaceOffset] != 0 {
		return transcode(data)
	}
	return &contracts.Embedded{Data: data, Format: contracts.FormatPNG, Width: cfg.Width, Height: cfg.Height}, nil
}

func transcode(data []byte) (*contracts.Embedded, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	nrgba := toNRGBA(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, nrgba); err != nil {
		return nil, fmt.Errorf("error encoding PNG: %v", err)
	}
	return &contracts.Embedded{Data: buf.Bytes(), Format: contracts.FormatPNG, Width: b.Dx(), Height: b.Dy()}, nil
}

// toNRGBA copies img into an 8-bit NRGBA image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func formatName(f contracts.Format) string {
	if f == contracts.FormatUnknown {
		return "unknown"
	}
	return string(f)
}
