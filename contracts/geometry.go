package contracts

// Rect is a rectangle in PDF user space: points, origin at the bottom-left.
type Rect struct {
	X, Y, W, H float64
}

// Insets are margins in points.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Page is the geometry computed for one image.
type Page struct {
	Width   float64
	Height  float64
	Content Rect // unclamped, may have non-positive size
	Draw    Rect
}

// Result is the outcome of one successful export.
type Result struct {
	Data      []byte
	PageCount int
	FileName  string
	Pages     []Page
}
