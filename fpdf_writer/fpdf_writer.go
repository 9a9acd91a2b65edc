// Package fpdf_writer serializes composed pages with gofpdf.
package fpdf_writer

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"photo2pdf/contracts"
)

var ErrNoPage = errors.New("no page to draw on")

type Option func(*Writer)

// WithCreationDate pins the document creation date so identical input gives
// identical bytes.
func WithCreationDate(t time.Time) Option {
	return func(w *Writer) {
		w.created = t
	}
}

// Writer implements contracts.Serializer. Page geometry uses PDF points with
// the origin at the bottom-left corner; gofpdf's top-left origin is handled
// internally.
type Writer struct {
	pdf     *gofpdf.Fpdf
	created time.Time
	pageW   float64
	pageH   float64
	pages   int
	images  int
}

func New(opts ...Option) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	// Pages are added in portrait against a landscape default, so gofpdf
	// writes a /MediaBox on every page instead of leaving some inherited.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetProducer("photo2pdf", true)
	if !w.created.IsZero() {
		pdf.SetCreationDate(w.created)
		pdf.SetCatalogSort(true)
	}
	w.pdf = pdf
	return w
}

// NewSerializer is a contracts.SerializerFactory with default options.
func NewSerializer() contracts.Serializer {
	return New()
}

// Factory returns a contracts.SerializerFactory applying opts to every
// document.
func Factory(opts ...Option) contracts.SerializerFactory {
	return func() contracts.Serializer {
		return New(opts...)
	}
}

func (w *Writer) AddPage(width, height float64) error {
	w.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})
	if w.pdf.Err() {
		return fmt.Errorf("could not add page: %w", w.pdf.Error())
	}
	w.pageW, w.pageH = width, height
	w.pages++
	return nil
}

func imageType(f contracts.Format) (string, error) {
	switch f {
	case contracts.FormatJPEG:
		return "JPG", nil
	case contracts.FormatPNG:
		return "PNG", nil
	}
	return "", fmt.Errorf("unsupported embedded format %q", f)
}

func (w *Writer) DrawImage(img *contracts.Embedded, rect contracts.Rect) error {
	if w.pages == 0 {
		return ErrNoPage
	}
	// gofpdf sizes a zero dimension from the image itself.
	if rect.W <= 0 || rect.H <= 0 {
		return nil
	}
	tp, err := imageType(img.Format)
	if err != nil {
		return err
	}

	w.images++
	name := fmt.Sprintf("img%d", w.images)
	opts := gofpdf.ImageOptions{ImageType: tp, ReadDpi: false}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if w.pdf.Err() {
		return fmt.Errorf("could not register image: %w", w.pdf.Error())
	}

	clip := rect.X < 0 || rect.Y < 0 || rect.X+rect.W > w.pageW || rect.Y+rect.H > w.pageH
	if clip {
		w.pdf.ClipRect(0, 0, w.pageW, w.pageH, false)
	}
	top := w.pageH - rect.Y - rect.H
	w.pdf.ImageOptions(name, rect.X, top, rect.W, rect.H, false, opts, 0, "")
	if clip {
		w.pdf.ClipEnd()
	}
	if w.pdf.Err() {
		return fmt.Errorf("could not place image: %w", w.pdf.Error())
	}
	return nil
}

func (w *Writer) SetTitle(title string) {
	w.pdf.SetTitle(title, true)
}

func (w *Writer) Serialize() ([]byte, error) {
	if w.pdf.Err() {
		return nil, w.pdf.Error()
	}
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF structure: %w", err)
	}
	return buf.Bytes(), nil
}
