package usecase

import (
	"context"
	"image"

	"neoncv/internal/domain"
	"neoncv/internal/pdf"
	"neoncv/pkg/infrastructure"
)

// Rasterizer captures a rendered DOM subtree as a bitmap.
type Rasterizer interface {
	Capture(ctx context.Context, t infrastructure.Target, opts infrastructure.CaptureOptions) (image.Image, error)
}

// Printer is implemented by rasterizers that can also print a page with
// the browser's own PDF engine.
type Printer interface {
	PrintPDF(ctx context.Context, t infrastructure.Target, widthMM, heightMM float64) ([]byte, error)
}

type JobsRepo interface {
	Save(ctx context.Context, j *domain.ExportJob) error
}

const (
	// PDFModeRaster slices one full-height screenshot across pages.
	PDFModeRaster = "raster"
	// PDFModePrint lets Chrome lay the page out and print it.
	PDFModePrint = "print"
)

type PDFOptions struct {
	Filename    string
	Scale       float64
	Quality     float64
	Format      string
	Orientation string
	Mode        string
}

type PNGOptions struct {
	Filename string
	Scale    float64
}

type DOCXOptions struct {
	Filename string
	// Language picks the label set; usually meta.language.
	Language string
	Strict   bool
}

type JSONOptions struct {
	Filename string
}

const defaultFilename = "cv"

func DefaultPDFOptions() PDFOptions {
	d := pdf.DefaultOptions()
	return PDFOptions{
		Filename:    defaultFilename,
		Scale:       2,
		Quality:     d.Quality,
		Format:      d.Format,
		Orientation: d.Orientation,
		Mode:        PDFModeRaster,
	}
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Filename: defaultFilename, Scale: 2}
}

// merge overlays the non-zero fields of o on the defaults.
func (o PDFOptions) merge() PDFOptions {
	d := DefaultPDFOptions()
	if o.Filename != "" {
		d.Filename = o.Filename
	}
	if o.Scale > 0 {
		d.Scale = o.Scale
	}
	if o.Quality > 0 {
		d.Quality = o.Quality
	}
	if o.Format != "" {
		d.Format = o.Format
	}
	if o.Orientation != "" {
		d.Orientation = o.Orientation
	}
	if o.Mode != "" {
		d.Mode = o.Mode
	}
	return d
}

func (o PNGOptions) merge() PNGOptions {
	d := DefaultPNGOptions()
	if o.Filename != "" {
		d.Filename = o.Filename
	}
	if o.Scale > 0 {
		d.Scale = o.Scale
	}
	return d
}
