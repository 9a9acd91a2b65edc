package contracts

import "context"

// Format identifies a raster encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatTIFF    Format = "tiff"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
)

// RasterStore hands out the raw bytes behind an image URI.
type RasterStore interface {
	ReadBytes(ctx context.Context, uri string) ([]byte, error)
}

// Embedded is an image ready for a serializer: Data is either JPEG or PNG.
type Embedded struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// Decoder probes and prepares raster bytes for embedding. Implementations
// must be safe for concurrent use.
type Decoder interface {
	Probe(data []byte, format Format) (width, height int, err error)
	Embed(data []byte, format Format) (*Embedded, error)
	// Resolution returns the horizontal DPI recorded in the image, or 0.
	Resolution(data []byte, format Format) float64
}

// Filter rewrites raster bytes before embedding.
type Filter interface {
	Apply(data []byte, format Format, adj Adjustments) ([]byte, Format, error)
}

// Serializer accumulates pages of one document.
type Serializer interface {
	AddPage(width, height float64) error
	// DrawImage places img on the most recently added page.
	DrawImage(img *Embedded, rect Rect) error
	SetTitle(title string)
	Serialize() ([]byte, error)
}

// SerializerFactory returns a fresh, empty document.
type SerializerFactory func() Serializer
