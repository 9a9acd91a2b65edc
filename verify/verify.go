// Package verify re-reads a serialized document with pdfcpu to make sure it
// parses and has the expected shape.
package verify

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrInvalidPDF = errors.New("invalid pdf")
	ErrPageCount  = errors.New("unexpected page count")
)

// Size is a page's media box in points.
type Size struct {
	Width  float64
	Height float64
}

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Check validates data and compares its page count with wantPages.
// A negative wantPages skips the comparison.
func Check(data []byte, wantPages int) error {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if wantPages >= 0 && ctx.PageCount != wantPages {
		return fmt.Errorf("%w: got %d, want %d", ErrPageCount, ctx.PageCount, wantPages)
	}
	return nil
}

// PageSizes returns the media box of every page in order.
func PageSizes(data []byte) ([]Size, error) {
	dims, err := api.PageDims(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	sizes := make([]Size, len(dims))
	for i, d := range dims {
		sizes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// Title returns the document title from the info dictionary.
func Title(data []byte) (string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	return ctx.Title, nil
}
