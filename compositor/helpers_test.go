package compositor

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photo2pdf/contracts"
	"photo2pdf/store"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

// withPHYs inserts a pHYs chunk (pixels per metre, both axes) after IHDR.
func withPHYs(data []byte, pxPerMetre uint32) []byte {
	body := make([]byte, 9)
	binary.BigEndian.PutUint32(body[0:], pxPerMetre)
	binary.BigEndian.PutUint32(body[4:], pxPerMetre)
	body[8] = 1

	var chunk bytes.Buffer
	binary.Write(&chunk, binary.BigEndian, uint32(len(body)))
	typed := append([]byte("pHYs"), body...)
	chunk.Write(typed)
	binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(typed))

	const afterIHDR = 8 + 8 + 13 + 4
	out := append([]byte{}, data[:afterIHDR]...)
	out = append(out, chunk.Bytes()...)
	return append(out, data[afterIHDR:]...)
}

// slowStore delays reads per URI so results finish out of order.
type slowStore struct {
	*store.MemoryStore
	delays map[string]time.Duration
	reads  atomic.Int32
}

func newSlowStore() *slowStore {
	return &slowStore{MemoryStore: store.NewMemoryStore(), delays: make(map[string]time.Duration)}
}

func (s *slowStore) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	s.reads.Add(1)
	if d := s.delays[uri]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.MemoryStore.ReadBytes(ctx, uri)
}

// blockingStore never returns for "block" until the context ends.
type blockingStore struct {
	*store.MemoryStore
	started chan struct{}
	once    sync.Once
}

func (s *blockingStore) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	if uri == "block" {
		s.once.Do(func() { close(s.started) })
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.MemoryStore.ReadBytes(ctx, uri)
}

type drawCall struct {
	img  *contracts.Embedded
	rect contracts.Rect
}

type recordedPage struct {
	width, height float64
	draws         []drawCall
}

type recordingSerializer struct {
	pages      []recordedPage
	title      string
	serialized bool
	failDraw   bool
}

func (r *recordingSerializer) AddPage(width, height float64) error {
	r.pages = append(r.pages, recordedPage{width: width, height: height})
	return nil
}

func (r *recordingSerializer) DrawImage(img *contracts.Embedded, rect contracts.Rect) error {
	if len(r.pages) == 0 {
		return errors.New("no page")
	}
	if r.failDraw {
		return errors.New("draw refused")
	}
	p := &r.pages[len(r.pages)-1]
	p.draws = append(p.draws, drawCall{img: img, rect: rect})
	return nil
}

func (r *recordingSerializer) SetTitle(title string) {
	r.title = title
}

func (r *recordingSerializer) Serialize() ([]byte, error) {
	r.serialized = true
	return []byte(fmt.Sprintf("doc with %d pages", len(r.pages))), nil
}

// recorder hands out recordingSerializers and remembers the last one.
type recorder struct {
	last     *recordingSerializer
	failDraw bool
}

func (r *recorder) factory() contracts.Serializer {
	r.last = &recordingSerializer{failDraw: r.failDraw}
	return r.last
}

type probeFailDecoder struct {
	contracts.Decoder
}

func (d probeFailDecoder) Probe([]byte, contracts.Format) (int, int, error) {
	return 0, 0, errors.New("probe unavailable")
}

type countingFilter struct {
	calls atomic.Int32
	inner contracts.Filter
}

func (f *countingFilter) Apply(data []byte, format contracts.Format, adj contracts.Adjustments) ([]byte, contracts.Format, error) {
	f.calls.Add(1)
	return f.inner.Apply(data, format, adj)
}

func zeroMargins() contracts.Options {
	opts := contracts.DefaultOptions()
	opts.Margins = contracts.UniformMargins(0)
	return opts
}
