package raster

import (
	"path"
	"strings"

	"photo2pdf/contracts"
)

var mimeHints = []struct {
	sub    string
	format contracts.Format
}{
	{"png", contracts.FormatPNG},
	{"jpg", contracts.FormatJPEG},
	{"jpeg", contracts.FormatJPEG},
	{"gif", contracts.FormatGIF},
	{"tif", contracts.FormatTIFF},
	{"webp", contracts.FormatWebP},
	{"bmp", contracts.FormatBMP},
}

var extFormats = map[string]contracts.Format{
	".png":  contracts.FormatPNG,
	".jpg":  contracts.FormatJPEG,
	".jpeg": contracts.FormatJPEG,
	".jpe":  contracts.FormatJPEG,
	".gif":  contracts.FormatGIF,
	".tif":  contracts.FormatTIFF,
	".tiff": contracts.FormatTIFF,
	".webp": contracts.FormatWebP,
	".bmp":  contracts.FormatBMP,
}

// InferFormat guesses the encoding from the MIME type, then the file name
// extension, then the URI extension.
func InferFormat(mimeType, fileName, uri string) contracts.Format {
	if m := strings.ToLower(mimeType); m != "" {
		for _, h := range mimeHints {
			if strings.Contains(m, h.sub) {
				return h.format
			}
		}
	}
	for _, name := range []string{fileName, uri} {
		if f, ok := FormatFromExt(name); ok {
			return f
		}
	}
	return contracts.FormatUnknown
}

// FormatFromExt maps a file name extension to a format.
func FormatFromExt(name string) (contracts.Format, bool) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	f, ok := extFormats[strings.ToLower(path.Ext(name))]
	return f, ok
}

// IsSupportedExt reports whether the extension names a format we can embed.
func IsSupportedExt(name string) bool {
	_, ok := FormatFromExt(name)
	return ok
}
