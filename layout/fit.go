package layout

import (
	"math"

	"photo2pdf/contracts"
)

// ContentBox is the page minus margins. The size may be zero or negative.
func ContentBox(pageW, pageH float64, in contracts.Insets) contracts.Rect {
	return contracts.Rect{
		X: in.Left,
		Y: in.Bottom,
		W: pageW - in.Left - in.Right,
		H: pageH - in.Top - in.Bottom,
	}
}

// FitRect places an image of the given aspect ratio (width/height) into the
// content box. The result is always centred on the box; only cover may
// exceed it.
func FitRect(content contracts.Rect, aspect float64, mode contracts.FitMode) contracts.Rect {
	cw := math.Max(content.W, 0)
	ch := math.Max(content.H, 0)
	if cw == 0 || ch == 0 {
		return contracts.Rect{X: content.X, Y: content.Y}
	}

	w, h := cw, ch
	if aspect > 0 && !math.IsInf(aspect, 0) {
		box := cw / ch
		switch mode {
		case contracts.FitContain, "":
			if aspect > box {
				w, h = cw, cw/aspect
			} else {
				w, h = ch*aspect, ch
			}
		case contracts.FitCover:
			if aspect < box {
				w, h = cw, cw/aspect
			} else {
				w, h = ch*aspect, ch
			}
		}
	}

	return contracts.Rect{
		X: content.X + (cw-w)/2,
		Y: content.Y + (ch-h)/2,
		W: w,
		H: h,
	}
}

// PlanPage computes the full geometry of one page. pxW and pxH size the page
// in auto mode; aspect is the embedded image's width/height.
func PlanPage(pxW, pxH int, dpi, aspect float64, opts contracts.Options) (contracts.Page, error) {
	w, h, err := PageSize(pxW, pxH, dpi, opts.Paper, opts.Orientation)
	if err != nil {
		return contracts.Page{}, err
	}
	content := ContentBox(w, h, ResolveMargins(opts.Margins))
	return contracts.Page{
		Width:   w,
		Height:  h,
		Content: content,
		Draw:    FitRect(content, aspect, opts.Fit),
	}, nil
}
