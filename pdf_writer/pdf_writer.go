// Package pdf_writer is a small streaming PDF writer for image-only
// documents. Image objects are written as soon as they are drawn; the page
// tree, info dictionary and cross-reference table are written by Finish.
package pdf_writer

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"photo2pdf/contracts"
)

var (
	ErrNoPage   = errors.New("no page to draw on")
	ErrFinished = errors.New("document already finished")
)

type PDFWriter struct {
	objects    []int64
	imageInfos []ImageInfo
	bw         *bufio.Writer
	cw         *countingWriter
	objNum     int

	pagesObjID   int64
	pageIDs      []int64
	catalogObjID int64
	infoObjID    int64

	page     *pageState
	title    string
	finished bool
}

type ImageInfo struct {
	id     int64
	width  float64
	height float64
}

type placement struct {
	name string
	rect contracts.Rect
}

type pageState struct {
	width, height float64
	images        []placement
	resources     map[string]int64
}

type countingWriter struct {
	w      io.Writer
	offset int64
}

func NewPDFWriter(dst io.Writer) (*PDFWriter, error) {
	cw := &countingWriter{
		w: dst,
	}
	pw := &PDFWriter{
		cw: cw,
		bw: bufio.NewWriterSize(cw, 1024*1024),
	}

	if _, err := pw.bw.WriteString("%PDF-1.7\n%\xFF\xFF\xFF\xFF\n"); err != nil {
		return nil, fmt.Errorf("error writing PDF header: %v", err)
	}
	pw.pagesObjID = pw.reserveObject()
	return pw, nil
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.offset += int64(n)
	return n, err
}

func (pw *PDFWriter) getOffset() int64 {
	return pw.cw.offset + int64(pw.bw.Buffered())
}

// reserveObject allocates an object number whose body is written later.
func (pw *PDFWriter) reserveObject() int64 {
	pw.objNum++
	pw.objects = append(pw.objects, 0)
	return int64(pw.objNum)
}

func (pw *PDFWriter) beginObject(id int64) {
	pw.objects[id-1] = pw.getOffset()
	fmt.Fprintf(pw.bw, "%d 0 obj\n", id)
}

func (pw *PDFWriter) newObject() int64 {
	id := pw.reserveObject()
	pw.beginObject(id)
	return id
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func (pw *PDFWriter) AddPage(width, height float64) error {
	if pw.finished {
		return ErrFinished
	}
	if err := pw.finishPage(); err != nil {
		return err
	}
	pw.page = &pageState{width: width, height: height, resources: make(map[string]int64)}
	return nil
}

func (pw *PDFWriter) SetTitle(title string) {
	pw.title = title
}

// DrawImage writes the image object right away and places it on the current
// page.
func (pw *PDFWriter) DrawImage(img *contracts.Embedded, rect contracts.Rect) error {
	if pw.finished {
		return ErrFinished
	}
	if pw.page == nil {
		return ErrNoPage
	}
	var err error
	switch img.Format {
	case contracts.FormatJPEG:
		err = pw.writeJPEGImage(img.Width, img.Height, img.Data)
	case contracts.FormatPNG:
		err = pw.writePNGImage(img.Data)
	default:
		err = fmt.Errorf("unsupported embedded format %q", img.Format)
	}
	if err != nil {
		return fmt.Errorf("error writing image: %v", err)
	}
	info := pw.imageInfos[len(pw.imageInfos)-1]
	name := fmt.Sprintf("Im%d", len(pw.imageInfos))
	pw.page.resources[name] = info.id
	pw.page.images = append(pw.page.images, placement{name: name, rect: rect})
	return nil
}

func jpegColorSpace(data []byte) (string, string, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	switch cfg.ColorModel {
	case color.GrayModel:
		return "/DeviceGray", "", nil
	case color.CMYKModel:
		return "/DeviceCMYK", "/Decode [1 0 1 0 1 0 1 0]\n", nil
	}
	return "/DeviceRGB", "", nil
}

func (pw *PDFWriter) writeJPEGImage(width int, height int, data []byte) error {
	cs, decode, err := jpegColorSpace(data)
	if err != nil {
		return err
	}
	pw.writeImageObject(width, height, cs, "/DCTDecode", decode, data)
	return nil
}

// writePNGImage stores the pixels Flate-compressed. Alpha is composited onto
// white.
func (pw *PDFWriter) writePNGImage(data []byte) error {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	var samples []byte
	cs := "/DeviceRGB"
	switch src := img.(type) {
	case *image.Gray:
		cs = "/DeviceGray"
		samples = make([]byte, 0, width*height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[(y-b.Min.Y)*src.Stride:]
			samples = append(samples, row[:width]...)
		}
	default:
		flat := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)
		samples = make([]byte, 0, width*height*3)
		for i := 0; i < len(flat.Pix); i += 4 {
			samples = append(samples, flat.Pix[i], flat.Pix[i+1], flat.Pix[i+2])
		}
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(samples); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	pw.writeImageObject(width, height, cs, "/FlateDecode", "", z.Bytes())
	return nil
}

func (pw *PDFWriter) writeImageObject(width, height int, colorSpace, filter, extra string, data []byte) {
	imgID := pw.newObject()
	pw.imageInfos = append(pw.imageInfos, ImageInfo{
		id:     imgID,
		width:  float64(width),
		height: float64(height),
	})
	pw.bw.WriteString("<<\n/Type /XObject\n/Subtype /Image\n")
	fmt.Fprintf(pw.bw, "/Width %d\n/Height %d\n", width, height)
	fmt.Fprintf(pw.bw, "/ColorSpace %s\n/BitsPerComponent 8\n", colorSpace)
	fmt.Fprintf(pw.bw, "/Filter %s\n", filter)
	pw.bw.WriteString(extra)
	fmt.Fprintf(pw.bw, "/Length %d\n", len(data))
	pw.bw.WriteString(">>\nstream\n")
	pw.bw.Write(data)
	pw.bw.WriteString("\nendstream\nendobj\n")
}

// contentFor builds the page content stream. Images that spill past the
// page are clipped to the page box.
func contentFor(p *pageState) []byte {
	var sb strings.Builder
	for _, im := range p.images {
		r := im.rect
		sb.WriteString("q\n")
		if r.X < 0 || r.Y < 0 || r.X+r.W > p.width || r.Y+r.H > p.height {
			fmt.Fprintf(&sb, "0 0 %s %s re W n\n", num(p.width), num(p.height))
		}
		fmt.Fprintf(&sb, "%s 0 0 %s %s %s cm\n/%s Do\nQ\n", num(r.W), num(r.H), num(r.X), num(r.Y), im.name)
	}
	return []byte(sb.String())
}

func (pw *PDFWriter) writeContent(p *pageState) int64 {
	contentBytes := contentFor(p)
	objID := pw.newObject()
	fmt.Fprintf(pw.bw, "<<\n/Length %d\n>>\nstream\n", len(contentBytes))
	pw.bw.Write(contentBytes)
	pw.bw.WriteString("endstream\nendobj\n")
	return objID
}

func (pw *PDFWriter) writePage(p *pageState, contentID int64) int64 {
	objID := pw.newObject()
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Page\n")
	fmt.Fprintf(pw.bw, "/Parent %d 0 R\n", pw.pagesObjID)
	fmt.Fprintf(pw.bw, "/MediaBox [0 0 %s %s]\n", num(p.width), num(p.height))
	pw.bw.WriteString("/Resources << /XObject <<")
	for _, im := range p.images {
		fmt.Fprintf(pw.bw, " /%s %d 0 R", im.name, p.resources[im.name])
	}
	pw.bw.WriteString(" >> >>\n")
	fmt.Fprintf(pw.bw, "/Contents %d 0 R\n", contentID)
	pw.bw.WriteString(">>\nendobj\n")
	return objID
}

func (pw *PDFWriter) finishPage() error {
	if pw.page == nil {
		return nil
	}
	contentID := pw.writeContent(pw.page)
	pw.pageIDs = append(pw.pageIDs, pw.writePage(pw.page, contentID))
	pw.page = nil
	if err := pw.bw.Flush(); err != nil {
		return fmt.Errorf("error flushing page: %v", err)
	}
	return nil
}

// pdfString escapes s as a literal string. Non-ASCII titles are written as
// UTF-16BE with a byte order mark.
func pdfString(s string) string {
	ascii := true
	for _, r := range s {
		if r > 0x7E {
			ascii = false
			break
		}
	}
	var sb strings.Builder
	sb.WriteByte('(')
	write := func(b byte) {
		switch b {
		case '(', ')', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(b)
	}
	if ascii {
		for i := 0; i < len(s); i++ {
			write(s[i])
		}
	} else {
		write(0xFE)
		write(0xFF)
		for _, r := range s {
			if r > 0xFFFF {
				r -= 0x10000
				hi, lo := 0xD800+(r>>10), 0xDC00+(r&0x3FF)
				write(byte(hi >> 8))
				write(byte(hi))
				write(byte(lo >> 8))
				write(byte(lo))
				continue
			}
			write(byte(r >> 8))
			write(byte(r))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

func (pw *PDFWriter) createDocumentStructure() error {
	if err := pw.finishPage(); err != nil {
		return err
	}

	pw.beginObject(pw.pagesObjID)
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString("/Type /Pages\n")
	fmt.Fprintf(pw.bw, "/Count %d\n", len(pw.pageIDs))
	pw.bw.WriteString("/Kids [")
	for _, id := range pw.pageIDs {
		fmt.Fprintf(pw.bw, " %d 0 R", id)
	}
	pw.bw.WriteString(" ]\n>>\nendobj\n")

	if pw.title != "" {
		pw.infoObjID = pw.newObject()
		fmt.Fprintf(pw.bw, "<<\n/Title %s\n/Producer (photo2pdf)\n>>\nendobj\n", pdfString(pw.title))
	}

	pw.catalogObjID = pw.newObject()
	pw.bw.WriteString("<<\n")
	fmt.Fprintf(pw.bw, "/Type /Catalog\n/Pages %d 0 R\n", pw.pagesObjID)
	pw.bw.WriteString(">>\nendobj\n")

	if err := pw.bw.Flush(); err != nil {
		return fmt.Errorf("error flushing buffer after creating structure: %v", err)
	}
	return nil
}

func (pw *PDFWriter) Finish() error {
	if pw.finished {
		return ErrFinished
	}
	pw.finished = true

	if err := pw.createDocumentStructure(); err != nil {
		return fmt.Errorf("failed to create document structure before finishing: %v", err)
	}

	startXref := pw.cw.offset
	total := len(pw.objects) + 1

	if _, err := fmt.Fprintf(pw.cw, "xref\n0 %d\n", total); err != nil {
		return fmt.Errorf("error writing xref header: %v", err)
	}
	if _, err := fmt.Fprintf(pw.cw, "%010d %05d f \n", 0, 65535); err != nil {
		return fmt.Errorf("error writing free object xref entry: %v", err)
	}
	for _, off := range pw.objects {
		if _, err := fmt.Fprintf(pw.cw, "%010d %05d n \n", off, 0); err != nil {
			return fmt.Errorf("error writing object xref entry: %v", err)
		}
	}

	info := ""
	if pw.infoObjID != 0 {
		info = fmt.Sprintf(" /Info %d 0 R", pw.infoObjID)
	}
	if _, err := fmt.Fprintf(pw.cw,
		"trailer\n<< /Size %d /Root %d 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		total, pw.catalogObjID, info, startXref,
	); err != nil {
		return fmt.Errorf("error writing trailer and startxref: %v", err)
	}

	return nil
}
