package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"photo2pdf/contracts"
)

const DefaultJPEGQuality = 90

// Adjuster applies brightness, contrast and saturation corrections and
// re-encodes the result as JPEG. It implements contracts.Filter.
type Adjuster struct {
	Quality int
}

func NewAdjuster() *Adjuster {
	return &Adjuster{Quality: DefaultJPEGQuality}
}

func (a *Adjuster) Apply(data []byte, format contracts.Format, adj contracts.Adjustments) ([]byte, contracts.Format, error) {
	if adj.IsZero() {
		return data, format, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	dst := toNRGBA(img)
	if dst == img {
		// never modify the caller's pixels
		dst = cloneNRGBA(dst)
	}
	adjustPixels(dst.Pix, adj)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: a.Quality}); err != nil {
		return nil, format, fmt.Errorf("error encoding JPEG: %v", err)
	}
	return buf.Bytes(), contracts.FormatJPEG, nil
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// adjustPixels works on non-premultiplied RGBA bytes in place. Transparent
// pixels are flattened onto white since JPEG has no alpha.
func adjustPixels(pix []uint8, adj contracts.Adjustments) {
	contrast := 1 + adj.Contrast
	saturation := 1 + adj.Saturation

	for i := 0; i+3 < len(pix); i += 4 {
		alpha := float64(pix[i+3]) / 255
		r := float64(pix[i]) / 255
		g := float64(pix[i+1]) / 255
		b := float64(pix[i+2]) / 255

		r, g, b = r+adj.Brightness, g+adj.Brightness, b+adj.Brightness

		r = (r-0.5)*contrast + 0.5
		g = (g-0.5)*contrast + 0.5
		b = (b-0.5)*contrast + 0.5

		luma := 0.299*r + 0.587*g + 0.114*b
		r = luma + (r-luma)*saturation
		g = luma + (g-luma)*saturation
		b = luma + (b-luma)*saturation

		pix[i] = toByte(r*alpha + 1 - alpha)
		pix[i+1] = toByte(g*alpha + 1 - alpha)
		pix[i+2] = toByte(b*alpha + 1 - alpha)
		pix[i+3] = 255
	}
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
