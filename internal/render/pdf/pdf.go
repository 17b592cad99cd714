// Package pdf rasterizes an export document into a paginated PDF. The HTML
// is laid out in a fixed-width viewport of unbounded height, drawn to one
// bitmap, and sliced into page images.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/tdewolff/canvas"
	canvaspdf "github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/export"
)

// ErrTimeout reports that rasterization did not complete before the
// deadline or was cancelled. No partial output is produced.
var ErrTimeout = errors.New("pdf rasterization did not finish in time")

const (
	DefaultViewportWidth = 794
	DefaultScale         = 2
	DefaultTimeout       = 30 * time.Second
)

// Options configure the rasterizer.
type Options struct {
	PageFormat  PageFormat
	Orientation Orientation
	// ViewportWidth is the layout width in CSS pixels.
	ViewportWidth float64
	// Scale is the number of bitmap pixels per viewport pixel.
	Scale   float64
	Timeout time.Duration
	// Images resolves <img> sources. Defaults to DataURLLoader.
	Images ImageLoader
	// SecondaryFont is a TrueType font used for right-to-left text blocks.
	SecondaryFont []byte
}

func (o Options) withDefaults() Options {
	if o.PageFormat == "" {
		o.PageFormat = PageA4
	}
	if o.Orientation == "" {
		o.Orientation = Portrait
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Images == nil {
		o.Images = DataURLLoader
	}
	return o
}

// Rasterizer produces PDF exports.
type Rasterizer struct {
	opts Options
}

var _ render.Renderer = (*Rasterizer)(nil)

// New creates a rasterizer. Zero option fields take their defaults.
func New(opts Options) *Rasterizer {
	return &Rasterizer{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (r *Rasterizer) Options() Options {
	return r.opts
}

// Render implements render.Renderer by rasterizing the export HTML of doc.
func (r *Rasterizer) Render(ctx context.Context, doc render.Document) ([]byte, error) {
	return r.Rasterize(ctx, export.HTML(doc))
}

// Filename returns the suggested download name of the PDF export.
func Filename(doc render.Document) string {
	return render.Filename(doc.LocationName, doc.Title, ".pdf")
}

// Rasterize converts an export HTML document to PDF bytes. The whole
// operation is bounded by the configured timeout.
func (r *Rasterizer) Rasterize(ctx context.Context, src string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := r.rasterize(ctx, src)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, timeoutError(ctx.Err())
	case res := <-done:
		return res.data, res.err
	}
}

func (r *Rasterizer) rasterize(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, timeoutError(err)
	}
	fonts, err := loadFonts(r.opts.SecondaryFont)
	if err != nil {
		return nil, err
	}
	doc, err := layout(ctx, src, r.opts.ViewportWidth, fonts, r.opts.Images)
	if err != nil {
		return nil, err
	}

	bitmap, err := r.draw(doc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, timeoutError(err)
	}

	pageW, pageH := Size(r.opts.PageFormat, r.opts.Orientation)
	slicePx := int(math.Round(doc.width * pageH / pageW * r.opts.Scale))
	pages := slice(bitmap, slicePx)

	var buf bytes.Buffer
	writer := canvaspdf.New(&buf, pageW, pageH, nil)
	writer.SetInfo(doc.title, "", "", "", "pubrender")
	dpmm := float64(bitmap.Bounds().Dx()) / pageW
	for i, img := range pages {
		if err := ctx.Err(); err != nil {
			return nil, timeoutError(err)
		}
		if i > 0 {
			writer.NewPage(pageW, pageH)
		}
		c := canvas.New(pageW, pageH)
		cctx := canvas.NewContext(c)
		cctx.SetCoordSystem(canvas.CartesianIV)
		cctx.DrawImage(0, 0, img, canvas.DPMM(dpmm))
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// draw paints the laid out document onto one tall bitmap.
func (r *Rasterizer) draw(doc *document) (img *image.RGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rasterize canvas: %v", p)
		}
	}()

	c := canvas.New(doc.width, doc.height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(doc.background)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(doc.width, doc.height))

	for _, b := range doc.boxes {
		fill, stroke := b.fill, b.stroke
		if fill == nil {
			fill = canvas.Transparent
		}
		if stroke == nil {
			stroke = canvas.Transparent
		}
		ctx.SetFillColor(fill)
		ctx.SetStrokeColor(stroke)
		ctx.SetStrokeWidth(1)
		if b.dashed {
			ctx.SetDashes(0, 6, 4)
		} else {
			ctx.SetDashes(0)
		}
		ctx.DrawPath(b.x, b.y, canvas.Rectangle(b.w, b.h))
	}
	ctx.SetDashes(0)

	for _, p := range doc.pictures {
		dx := float64(p.img.Bounds().Dx())
		if dx <= 0 || p.w <= 0 {
			continue
		}
		ctx.DrawImage(p.x, p.y, p.img, canvas.DPMM(dx/p.w))
	}

	for _, l := range doc.lines {
		metrics := l.face.Metrics()
		baseline := l.top + (l.height-metrics.LineHeight)/2 + metrics.Ascent
		ctx.DrawText(l.x, baseline, canvas.NewTextLine(l.face, l.text, l.align))
	}

	out := rasterizer.Draw(c, canvas.DPMM(r.opts.Scale), canvas.DefaultColorSpace)
	if out == nil || out.Bounds().Empty() {
		return nil, errors.New("rasterize canvas: empty bitmap")
	}
	return out, nil
}

// slice cuts a tall bitmap into page images of height px each. The last
// page is padded with white.
func slice(src *image.RGBA, height int) []*image.RGBA {
	b := src.Bounds()
	if height <= 0 {
		height = b.Dy()
	}
	n := max(1, (b.Dy()+height-1)/height)
	pages := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		page := image.NewRGBA(image.Rect(0, 0, b.Dx(), height))
		draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		from := image.Pt(b.Min.X, b.Min.Y+i*height)
		draw.Draw(page, page.Bounds(), src, from, draw.Src)
		pages = append(pages, page)
	}
	return pages
}

func timeoutError(err error) error {
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}
