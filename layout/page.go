package layout

import (
	"fmt"

	"photo2pdf/contracts"
)

// paperEdges returns the short and long edge of a preset in points.
func paperEdges(p contracts.Paper) (short, long float64, ok bool) {
	switch p {
	case contracts.PaperA4:
		return MmToPt(210), MmToPt(297), true
	case contracts.PaperLetter:
		return InToPt(8.5), InToPt(11), true
	case contracts.PaperLegal:
		return InToPt(8.5), InToPt(14), true
	}
	return 0, 0, false
}

// PageSize computes the page dimensions in points for an image of pxW x pxH
// pixels.
func PageSize(pxW, pxH int, dpi float64, paper contracts.Paper, orientation contracts.Orientation) (float64, float64, error) {
	if paper == contracts.PaperAuto || paper == "" {
		if !(dpi > 0) {
			return 0, 0, fmt.Errorf("%w: %v", contracts.ErrInvalidDPI, dpi)
		}
		w := PxToPt(float64(pxW), dpi)
		h := PxToPt(float64(pxH), dpi)
		// Swap only when the image contradicts the requested orientation.
		if orientation == contracts.OrientationLandscape && h > w {
			w, h = h, w
		} else if orientation == contracts.OrientationPortrait && w > h {
			w, h = h, w
		}
		return w, h, nil
	}

	short, long, ok := paperEdges(paper)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", contracts.ErrInvalidPaper, paper)
	}
	if orientation == contracts.OrientationLandscape {
		return long, short, nil
	}
	return short, long, nil
}
