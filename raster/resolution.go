package raster

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"photo2pdf/contracts"
)

const (
	resolutionUnitCm = 3
	pngSignatureLen  = 8
	pngUnitMeter     = 1
)

// Resolution returns the horizontal DPI recorded in the image or 0 when the
// image carries none.
func (d *Decoder) Resolution(data []byte, format contracts.Format) float64 {
	switch format {
	case contracts.FormatPNG:
		return pngDPI(data)
	case contracts.FormatJPEG, contracts.FormatTIFF:
		return exifDPI(data)
	case contracts.FormatUnknown:
		if dpi := exifDPI(data); dpi > 0 {
			return dpi
		}
		return pngDPI(data)
	}
	return 0
}

func exifDPI(data []byte) float64 {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 0
	}

	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 0
	}
	ti := exif.NewTagIndex()

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil || index.RootIfd == nil {
		return 0
	}

	var dpi float64
	if tag, err := index.RootIfd.FindTagWithName("XResolution"); err == nil && len(tag) > 0 {
		if val, err := tag[0].Value(); err == nil {
			if rats, ok := val.([]exifcommon.Rational); ok && len(rats) > 0 && rats[0].Denominator != 0 {
				dpi = float64(rats[0].Numerator) / float64(rats[0].Denominator)
			}
		}
	}

	if tag, err := index.RootIfd.FindTagWithName("ResolutionUnit"); err == nil && len(tag) > 0 {
		if val, err := tag[0].Value(); err == nil {
			var unit uint16
			switch u := val.(type) {
			case []uint16:
				if len(u) > 0 {
					unit = u[0]
				}
			case uint16:
				unit = u
			}
			if unit == resolutionUnitCm {
				dpi *= 2.54
			}
		}
	}
	return dpi
}

func pngDPI(data []byte) float64 {
	if len(data) < pngSignatureLen {
		return 0
	}
	buf := bytes.NewReader(data[pngSignatureLen:])

	for {
		var length uint32
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return 0
		}

		chunkType := make([]byte, 4)
		if _, err := io.ReadFull(buf, chunkType); err != nil {
			return 0
		}

		switch string(chunkType) {
		case "pHYs":
			var pxPerUnitX, pxPerUnitY uint32
			var unit byte
			if err := binary.Read(buf, binary.BigEndian, &pxPerUnitX); err != nil {
				return 0
			}
			if err := binary.Read(buf, binary.BigEndian, &pxPerUnitY); err != nil {
				return 0
			}
			if err := binary.Read(buf, binary.BigEndian, &unit); err != nil {
				return 0
			}
			if unit != pngUnitMeter {
				return 0
			}
			return float64(pxPerUnitX) * 0.0254
		case "IDAT", "IEND":
			// pHYs must precede the image data.
			return 0
		}

		// skip chunk data + CRC
		if _, err := buf.Seek(int64(length)+4, io.SeekCurrent); err != nil {
			return 0
		}
	}
}
