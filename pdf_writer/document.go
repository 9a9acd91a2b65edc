package pdf_writer

import (
	"bytes"

	"photo2pdf/contracts"
)

// Document adapts PDFWriter to contracts.Serializer, buffering the output
// in memory.
type Document struct {
	buf bytes.Buffer
	pw  *PDFWriter
	err error
}

func NewDocument() *Document {
	d := &Document{}
	d.pw, d.err = NewPDFWriter(&d.buf)
	return d
}

// NewSerializer is a contracts.SerializerFactory.
func NewSerializer() contracts.Serializer {
	return NewDocument()
}

func (d *Document) AddPage(width, height float64) error {
	if d.err != nil {
		return d.err
	}
	return d.pw.AddPage(width, height)
}

func (d *Document) DrawImage(img *contracts.Embedded, rect contracts.Rect) error {
	if d.err != nil {
		return d.err
	}
	return d.pw.DrawImage(img, rect)
}

func (d *Document) SetTitle(title string) {
	if d.pw != nil {
		d.pw.SetTitle(title)
	}
}

func (d *Document) Serialize() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if err := d.pw.Finish(); err != nil {
		return nil, err
	}
	return d.buf.Bytes(), nil
}
