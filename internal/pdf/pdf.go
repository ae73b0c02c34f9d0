// Package pdf lays a captured CV bitmap out over fixed-size pages and
// assembles the pages into a PDF.
//
// The bitmap is never reflowed: every page shows a vertically shifted
// window of the same full-height image, so page breaks can fall in the
// middle of an element.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	"github.com/signintech/gopdf"
)

var (
	ErrUnsupportedFormat      = errors.New("pdf: unsupported page format")
	ErrUnsupportedOrientation = errors.New("pdf: unsupported orientation")
)

const ContentType = "application/pdf"

const (
	FormatA4     = "a4"
	FormatLetter = "letter"

	Portrait  = "portrait"
	Landscape = "landscape"
)

// pageEpsilon absorbs float error when the image height is an exact
// multiple of the page height.
const pageEpsilon = 1e-6

type Options struct {
	Format      string
	Orientation string
	// Quality is the JPEG quality in (0, 1].
	Quality float64
}

func DefaultOptions() Options {
	return Options{Format: FormatA4, Orientation: Portrait, Quality: 0.95}
}

// PageSize returns the page width and height in millimetres.
func PageSize(format, orientation string) (w, h float64, err error) {
	switch strings.ToLower(format) {
	case FormatA4:
		w, h = 210, 297
	case FormatLetter:
		w, h = 215.9, 279.4
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	switch strings.ToLower(orientation) {
	case Portrait:
	case Landscape:
		w, h = h, w
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedOrientation, orientation)
	}
	return w, h, nil
}

// Plan places one image on consecutive pages. Offsets holds the vertical
// position of the image on each page, in page order.
type Plan struct {
	PageWidth   float64
	PageHeight  float64
	ImageWidth  float64
	ImageHeight float64
	Offsets     []float64
}

func (p Plan) Pages() int { return len(p.Offsets) }

// Layout scales an imgW×imgH pixel image to the page width and computes one
// offset per page: 0, -pageH, -2·pageH, ...
func Layout(imgW, imgH int, pageW, pageH float64) Plan {
	plan := Plan{PageWidth: pageW, PageHeight: pageH, ImageWidth: pageW}
	if imgW > 0 {
		plan.ImageHeight = float64(imgH) * pageW / float64(imgW)
	}
	pages := 1
	if pageH > 0 && plan.ImageHeight > pageH {
		pages = int(math.Ceil(plan.ImageHeight/pageH - pageEpsilon))
	}
	plan.Offsets = make([]float64, pages)
	for i := range plan.Offsets {
		plan.Offsets[i] = -float64(i) * pageH
	}
	return plan
}

// Assemble encodes img as JPEG and writes it across as many pages as the
// layout needs. Zero-valued options take the defaults.
func Assemble(img image.Image, opts Options) ([]byte, error) {
	opts = mergeOptions(opts)
	pageW, pageH, err := PageSize(opts.Format, opts.Orientation)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("pdf: nil image")
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return nil, fmt.Errorf("pdf: invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(opts.Quality)}); err != nil {
		return nil, fmt.Errorf("pdf: encode jpeg: %w", err)
	}
	holder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("pdf: image holder: %w", err)
	}

	plan := Layout(b.Dx(), b.Dy(), pageW, pageH)
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{Unit: gopdf.UnitMM, PageSize: gopdf.Rect{W: pageW, H: pageH}})
	defer doc.Close()

	// pages must be added in ascending order
	for i, y := range plan.Offsets {
		doc.AddPage()
		rect := &gopdf.Rect{W: plan.ImageWidth, H: plan.ImageHeight}
		if err := doc.ImageByHolder(holder, 0, y, rect); err != nil {
			return nil, fmt.Errorf("pdf: place image on page %d: %w", i+1, err)
		}
	}

	out, err := doc.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return out, nil
}

func mergeOptions(o Options) Options {
	d := DefaultOptions()
	if o.Format != "" {
		d.Format = o.Format
	}
	if o.Orientation != "" {
		d.Orientation = o.Orientation
	}
	if o.Quality != 0 {
		d.Quality = o.Quality
	}
	return d
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}
