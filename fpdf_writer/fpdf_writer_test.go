package fpdf_writer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"
	"time"

	"photo2pdf/contracts"
	"photo2pdf/verify"
)

func embedded(t *testing.T, format contracts.Format, w, h int) *contracts.Embedded {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 3), 90, 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if format == contracts.FormatPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &contracts.Embedded{Data: buf.Bytes(), Format: format, Width: w, Height: h}
}

func TestWriterMediaBoxPerPage(t *testing.T) {
	sizes := [][2]float64{{595.28, 841.89}, {841.89, 595.28}, {612, 792}, {595.28, 841.89}}
	w := New()
	for _, s := range sizes {
		if err := w.AddPage(s[0], s[1]); err != nil {
			t.Fatalf("AddPage: %v", err)
		}
	}
	data, err := w.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// one per page plus the /Pages node
	if n := bytes.Count(data, []byte("/MediaBox")); n != len(sizes)+1 {
		t.Errorf("found %d /MediaBox entries, want %d", n, len(sizes)+1)
	}
	got, err := verify.PageSizes(data)
	if err != nil {
		t.Fatalf("PageSizes: %v", err)
	}
	if len(got) != len(sizes) {
		t.Fatalf("got %d pages, want %d", len(got), len(sizes))
	}
	for i, s := range sizes {
		if math.Abs(got[i].Width-s[0]) > 0.01 || math.Abs(got[i].Height-s[1]) > 0.01 {
			t.Errorf("page %d: got %.2f x %.2f, want %.2f x %.2f", i, got[i].Width, got[i].Height, s[0], s[1])
		}
	}
}

func TestWriterPages(t *testing.T) {
	w := New()
	pages := []struct {
		w, h   float64
		format contracts.Format
		rect   contracts.Rect
	}{
		{720, 1440, contracts.FormatJPEG, contracts.Rect{X: 28.35, Y: 28.35, W: 663.3, H: 1326.6}},
		{595.28, 841.89, contracts.FormatPNG, contracts.Rect{X: 0, Y: 120, W: 595.28, H: 600}},
		{300, 200, contracts.FormatJPEG, contracts.Rect{X: -50, Y: 0, W: 400, H: 200}},
	}
	for i, p := range pages {
		if err := w.AddPage(p.w, p.h); err != nil {
			t.Fatalf("AddPage %d: %v", i, err)
		}
		if err := w.DrawImage(embedded(t, p.format, 40, 30), p.rect); err != nil {
			t.Fatalf("DrawImage %d: %v", i, err)
		}
	}
	w.SetTitle("Été 2024")

	data, err := w.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header")
	}
	if err := verify.Check(data, len(pages)); err != nil {
		t.Fatalf("Check: %v", err)
	}
	sizes, err := verify.PageSizes(data)
	if err != nil {
		t.Fatalf("PageSizes: %v", err)
	}
	for i, p := range pages {
		if math.Abs(sizes[i].Width-p.w) > 0.01 || math.Abs(sizes[i].Height-p.h) > 0.01 {
			t.Errorf("page %d: got %.2f x %.2f, want %.2f x %.2f", i, sizes[i].Width, sizes[i].Height, p.w, p.h)
		}
	}
}

func TestWriterErrors(t *testing.T) {
	t.Run("draw before page", func(t *testing.T) {
		w := New()
		err := w.DrawImage(embedded(t, contracts.FormatJPEG, 2, 2), contracts.Rect{W: 10, H: 10})
		if !errors.Is(err, ErrNoPage) {
			t.Errorf("got %v, want ErrNoPage", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		w := New()
		w.AddPage(10, 10)
		img := &contracts.Embedded{Data: []byte("GIF89a"), Format: contracts.FormatGIF, Width: 1, Height: 1}
		if err := w.DrawImage(img, contracts.Rect{W: 10, H: 10}); err == nil {
			t.Error("expected an error for GIF data")
		}
	})

	t.Run("corrupt image", func(t *testing.T) {
		w := New()
		w.AddPage(10, 10)
		img := &contracts.Embedded{Data: []byte{0x89, 'P', 'N', 'G'}, Format: contracts.FormatPNG, Width: 1, Height: 1}
		if err := w.DrawImage(img, contracts.Rect{W: 10, H: 10}); err == nil {
			t.Error("expected an error for truncated PNG data")
		}
		if _, err := w.Serialize(); err == nil {
			t.Error("Serialize should report the accumulated error")
		}
	})
}

func TestZeroSizedRectIsSkipped(t *testing.T) {
	w := New()
	w.AddPage(100, 100)
	if err := w.DrawImage(embedded(t, contracts.FormatJPEG, 4, 4), contracts.Rect{X: 5, Y: 5}); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}
	if w.images != 0 {
		t.Errorf("image registered for an empty rect")
	}
}

func TestReproducibleOutput(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	img := embedded(t, contracts.FormatJPEG, 8, 8)
	render := func() []byte {
		w := Factory(WithCreationDate(created))()
		w.AddPage(100, 50)
		w.DrawImage(img, contracts.Rect{X: 25, W: 50, H: 50})
		w.SetTitle("Photos")
		data, err := w.Serialize()
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		return data
	}
	if !bytes.Equal(render(), render()) {
		t.Error("same input with a fixed creation date produced different bytes")
	}
}
