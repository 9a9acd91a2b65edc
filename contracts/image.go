package contracts

// ImageInput is one raster to be placed on its own page. Width and Height are
// optional hints in pixels; zero means absent.
type ImageInput struct {
	URI         string
	Width       int
	Height      int
	MimeType    string
	FileName    string
	Adjustments *Adjustments
}

// HasSizeHint reports whether both pixel dimensions were supplied.
func (in ImageInput) HasSizeHint() bool {
	return in.Width > 0 && in.Height > 0
}

// Adjustments are colour corrections applied before embedding. Each value is
// in [-1, 1]; zero leaves the channel untouched.
type Adjustments struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
}

func (a Adjustments) IsZero() bool {
	return a.Brightness == 0 && a.Contrast == 0 && a.Saturation == 0
}
