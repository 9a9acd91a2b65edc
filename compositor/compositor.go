// Package compositor turns an ordered list of images into a multi-page
// document, one page per image.
package compositor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"photo2pdf/contracts"
	"photo2pdf/layout"
	"photo2pdf/raster"
)

type Compositor struct {
	store       contracts.RasterStore
	decoder     contracts.Decoder
	serializers contracts.SerializerFactory
	filter      contracts.Filter
	logger      *slog.Logger
	prefetch    int
	now         func() time.Time
}

func New(store contracts.RasterStore, decoder contracts.Decoder, serializers contracts.SerializerFactory, opts ...Option) *Compositor {
	c := &Compositor{
		store:       store,
		decoder:     decoder,
		serializers: serializers,
		filter:      raster.NewAdjuster(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		prefetch:    runtime.GOMAXPROCS(0),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// loaded is one image after read and decode, ready to be placed.
type loaded struct {
	index int
	img   *contracts.Embedded
	pxW   int
	pxH   int
	dpi   float64
	err   error
}

// Compose builds the document. Either every image becomes a page, in input
// order, or an error is returned and no bytes are produced.
func (c *Compositor) Compose(ctx context.Context, images []contracts.ImageInput, opts contracts.Options) (*contracts.Result, error) {
	if len(images) == 0 {
		return nil, ErrEmptyInput
	}
	opts = opts.Normalized()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	for i, in := range images {
		if in.Adjustments == nil {
			continue
		}
		if err := in.Adjustments.Validate(); err != nil {
			return nil, fmt.Errorf("%w: image %d: %w", ErrInvalidOption, i, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan loaded, c.prefetch)
	// window bounds how far loading may run ahead of assembly.
	window := make(chan struct{}, 2*c.prefetch)
	go c.prefetchImages(ctx, images, opts, results, window)

	doc, pages, err := c.assemble(ctx, images, opts, results, window)
	if err != nil {
		cancel()
		for range results {
		}
		return nil, err
	}

	if opts.Title != "" {
		doc.SetTitle(opts.Title)
	}
	data, err := doc.Serialize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compose cancelled: %w", err)
	}

	res := &contracts.Result{
		Data:      data,
		PageCount: len(images),
		FileName:  OutputFileName(opts.OutputName, c.now()),
		Pages:     pages,
	}
	c.logger.Info("document composed", "pages", res.PageCount, "bytes", len(data), "file", res.FileName)
	return res, nil
}

// prefetchImages loads images concurrently and sends them to results in
// whatever order they finish. results is closed once every worker is done.
func (c *Compositor) prefetchImages(ctx context.Context, images []contracts.ImageInput, opts contracts.Options, results chan<- loaded, window chan struct{}) {
	var g errgroup.Group
	g.SetLimit(c.prefetch)

	for i := range images {
		select {
		case window <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			l := c.load(ctx, i, images[i], opts)
			select {
			case results <- l:
			case <-ctx.Done():
			}
			return nil
		})
	}
	g.Wait()
	close(results)
}

func (c *Compositor) assemble(ctx context.Context, images []contracts.ImageInput, opts contracts.Options, results <-chan loaded, window <-chan struct{}) (contracts.Serializer, []contracts.Page, error) {
	doc := c.serializers()
	pages := make([]contracts.Page, 0, len(images))
	resultsBuffer := make(map[int]loaded)
	nextIndex := 0

	for result := range results {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("compose cancelled: %w", err)
		}
		resultsBuffer[result.index] = result

		for {
			result, ok := resultsBuffer[nextIndex]
			if !ok {
				break
			}
			delete(resultsBuffer, nextIndex)
			if result.err != nil {
				if err := ctx.Err(); err != nil {
					return nil, nil, fmt.Errorf("compose cancelled: %w", err)
				}
				return nil, nil, result.err
			}

			page, err := c.addPage(doc, result, images[nextIndex], opts)
			if err != nil {
				return nil, nil, err
			}
			pages = append(pages, page)
			<-window
			nextIndex++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("compose cancelled: %w", err)
	}
	if nextIndex != len(images) {
		return nil, nil, fmt.Errorf("compose stopped after %d of %d images", nextIndex, len(images))
	}
	return doc, pages, nil
}

func (c *Compositor) addPage(doc contracts.Serializer, l loaded, in contracts.ImageInput, opts contracts.Options) (contracts.Page, error) {
	aspect := float64(l.img.Width) / float64(l.img.Height)
	page, err := layout.PlanPage(l.pxW, l.pxH, l.dpi, aspect, opts)
	if err != nil {
		return contracts.Page{}, imageError(l.index, in.URI, ErrImageDecode, err)
	}
	if err := doc.AddPage(page.Width, page.Height); err != nil {
		return contracts.Page{}, fmt.Errorf("%w: page %d: %w", ErrSerialize, l.index, err)
	}
	if page.Draw.W > 0 && page.Draw.H > 0 {
		if err := doc.DrawImage(l.img, page.Draw); err != nil {
			return contracts.Page{}, fmt.Errorf("%w: page %d: %w", ErrSerialize, l.index, err)
		}
	}
	c.logger.Debug("page added",
		"index", l.index,
		"uri", in.URI,
		"page_w", page.Width,
		"page_h", page.Height,
		"draw_w", page.Draw.W,
		"draw_h", page.Draw.H,
	)
	return page, nil
}

// load reads, filters and embeds one image and resolves its pixel size and
// resolution.
func (c *Compositor) load(ctx context.Context, index int, in contracts.ImageInput, opts contracts.Options) loaded {
	l := loaded{index: index}
	fail := func(kind, cause error) loaded {
		l.err = imageError(index, in.URI, kind, cause)
		return l
	}

	data, err := c.store.ReadBytes(ctx, in.URI)
	if err != nil {
		if ctx.Err() != nil {
			l.err = ctx.Err()
			return l
		}
		return fail(ErrImageRead, err)
	}
	format := raster.InferFormat(in.MimeType, in.FileName, in.URI)

	embedData, embedFormat := data, format
	if in.Adjustments != nil && !in.Adjustments.IsZero() {
		embedData, embedFormat, err = c.filter.Apply(data, format, *in.Adjustments)
		if err != nil {
			return fail(ErrImageDecode, err)
		}
	}
	img, err := c.decoder.Embed(embedData, embedFormat)
	if err != nil {
		return fail(ErrImageDecode, err)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fail(ErrImageDecode, fmt.Errorf("image has no size (%dx%d)", img.Width, img.Height))
	}
	l.img = img

	switch {
	case in.HasSizeHint():
		l.pxW, l.pxH = in.Width, in.Height
	default:
		w, h, err := c.decoder.Probe(data, format)
		if err != nil || w <= 0 || h <= 0 {
			c.logger.Debug("probe failed, using embedded size", "index", index, "uri", in.URI, "error", err)
			w, h = img.Width, img.Height
		}
		l.pxW, l.pxH = w, h
	}

	l.dpi = opts.DPI
	if opts.UseImageDPI {
		if dpi := c.decoder.Resolution(data, format); dpi >= 1 {
			l.dpi = dpi
		}
	}
	return l
}
