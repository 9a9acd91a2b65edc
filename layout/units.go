// Package layout holds the page geometry: unit conversion, margins, page
// sizing and image fitting. Everything here is pure arithmetic in points.
package layout

const (
	PointsPerInch = 72.0
	MmPerInch     = 25.4
)

// PxToPt converts a pixel count at dpi to points. dpi must be positive.
func PxToPt(px, dpi float64) float64 {
	return px / dpi * PointsPerInch
}

// MmToPt converts millimetres to points.
func MmToPt(mm float64) float64 {
	return mm / MmPerInch * PointsPerInch
}

// InToPt converts inches to points.
func InToPt(inches float64) float64 {
	return inches * PointsPerInch
}
