package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"neoncv/internal/codec"
	"neoncv/internal/docx"
	"neoncv/internal/domain"
	"neoncv/internal/download"
	"neoncv/internal/layout"
	"neoncv/internal/model"
	"neoncv/internal/pdf"
	"neoncv/pkg/infrastructure"
)

var (
	ErrNoRasterizer     = errors.New("usecase: no rasterizer configured")
	ErrPrintUnsupported = errors.New("usecase: rasterizer cannot print")
	ErrUnknownPDFMode   = errors.New("usecase: unknown pdf mode")
)

const (
	pngContentType  = "image/png"
	jsonContentType = "application/json"
)

// Exporter is the single entry point for every export. It merges options
// over the defaults, dispatches to the right backend and hands the result
// to download.Trigger.
type Exporter struct {
	rasterizer Rasterizer
	repo       JobsRepo
	registry   download.Registry
	codec      *codec.Codec

	// Attempts bounds capture retries; Backoff is the first retry delay
	// and doubles after each failure.
	Attempts int
	Backoff  time.Duration
}

func NewExporter(r Rasterizer, repo JobsRepo, reg download.Registry) *Exporter {
	if reg == nil {
		reg = download.NewMemoryRegistry()
	}
	return &Exporter{rasterizer: r, repo: repo, registry: reg, codec: &codec.Codec{}, Attempts: 3, Backoff: time.Second}
}

// WithClock replaces the codec clock, for deterministic exportedAt values.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.codec = &codec.Codec{Now: now}
	return e
}

// LayoutTarget renders doc through the built-in layout. Callers without a
// pre-rendered page use it to obtain something to rasterize.
func LayoutTarget(doc model.Document) (infrastructure.Target, error) {
	html, err := layout.Render(doc)
	if err != nil {
		return infrastructure.Target{}, err
	}
	return infrastructure.Target{HTML: html, Selector: layout.RootSelector}, nil
}

// ExportToPDF renders the target into PDF bytes.
func (e *Exporter) ExportToPDF(ctx context.Context, t infrastructure.Target, opts PDFOptions) ([]byte, error) {
	opts = opts.merge()
	data, err := e.renderPDF(ctx, t, opts)
	e.record(ctx, domain.FormatPDF, download.WithExtension(opts.Filename, ".pdf"), len(data), err)
	return data, err
}

// DownloadPDF renders the target and delivers it as <filename>.pdf.
func (e *Exporter) DownloadPDF(ctx context.Context, t infrastructure.Target, opts PDFOptions, dst download.Destination) error {
	opts = opts.merge()
	a := download.Artifact{Filename: download.WithExtension(opts.Filename, ".pdf"), ContentType: pdf.ContentType}
	data, err := e.renderPDF(ctx, t, opts)
	if err == nil {
		a.Data = data
		err = download.Trigger(ctx, e.registry, a, dst)
	}
	e.record(ctx, domain.FormatPDF, a.Filename, len(data), err)
	return err
}

// ExportToPNG captures the target at opts.Scale and delivers it unpaginated.
func (e *Exporter) ExportToPNG(ctx context.Context, t infrastructure.Target, opts PNGOptions, dst download.Destination) error {
	opts = opts.merge()
	a := download.Artifact{Filename: download.WithExtension(opts.Filename, ".png"), ContentType: pngContentType}
	img, err := e.capture(ctx, t, opts.Scale)
	if err == nil {
		var buf bytes.Buffer
		if err = png.Encode(&buf, img); err != nil {
			err = fmt.Errorf("usecase: encode png: %w", err)
		} else {
			a.Data = buf.Bytes()
			err = download.Trigger(ctx, e.registry, a, dst)
		}
	}
	e.record(ctx, domain.FormatPNG, a.Filename, len(a.Data), err)
	return err
}

// ExportToDOCX builds the Word document and delivers it.
func (e *Exporter) ExportToDOCX(ctx context.Context, info model.PersonalInfo, sections []model.Section, opts DOCXOptions, dst download.Destination) error {
	a, err := docx.Build(info, sections, docx.Options{Filename: orDefault(opts.Filename), Language: opts.Language, Strict: opts.Strict})
	if err == nil {
		err = download.Trigger(ctx, e.registry, a, dst)
	}
	name := a.Filename
	if name == "" {
		name = download.WithExtension(opts.Filename, ".docx")
	}
	e.record(ctx, domain.FormatDOCX, name, len(a.Data), err)
	return err
}

// ExportCVToJSON serializes the document into the backup envelope.
func (e *Exporter) ExportCVToJSON(meta model.Meta, info model.PersonalInfo, sections []model.Section) (string, error) {
	return e.codec.Serialize(meta, info, sections)
}

// DownloadCVAsJSON serializes the document and delivers it as <filename>.json.
func (e *Exporter) DownloadCVAsJSON(ctx context.Context, meta model.Meta, info model.PersonalInfo, sections []model.Section, opts JSONOptions, dst download.Destination) error {
	a := download.Artifact{Filename: download.WithExtension(opts.Filename, ".json"), ContentType: jsonContentType}
	text, err := e.codec.Serialize(meta, info, sections)
	if err == nil {
		a.Data = []byte(text)
		err = download.Trigger(ctx, e.registry, a, dst)
	}
	e.record(ctx, domain.FormatJSON, a.Filename, len(a.Data), err)
	return err
}

func (e *Exporter) ParseCVImport(text string) codec.ParseResult {
	return e.codec.Parse(text)
}

func (e *Exporter) ReadCVFromFile(path string) codec.ParseResult {
	return e.codec.ReadFromFile(path)
}

func (e *Exporter) renderPDF(ctx context.Context, t infrastructure.Target, opts PDFOptions) ([]byte, error) {
	// reject bad options before any browser work
	pageW, pageH, err := pdf.PageSize(opts.Format, opts.Orientation)
	if err != nil {
		return nil, err
	}
	switch opts.Mode {
	case PDFModeRaster:
		img, err := e.capture(ctx, t, opts.Scale)
		if err != nil {
			return nil, err
		}
		return pdf.Assemble(img, pdf.Options{Format: opts.Format, Orientation: opts.Orientation, Quality: opts.Quality})
	case PDFModePrint:
		p, ok := e.rasterizer.(Printer)
		if !ok {
			return nil, ErrPrintUnsupported
		}
		data, err := p.PrintPDF(ctx, t, pageW, pageH)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, fmt.Errorf("usecase: invalid PDF output (len=%d)", len(data))
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPDFMode, opts.Mode)
	}
}

// capture retries transient browser failures with exponential backoff.
// A missing node is not retried.
func (e *Exporter) capture(ctx context.Context, t infrastructure.Target, scale float64) (image.Image, error) {
	if e.rasterizer == nil {
		return nil, ErrNoRasterizer
	}
	attempts := e.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		img, err := e.rasterizer.Capture(ctx, t, infrastructure.CaptureOptions{Scale: scale})
		if err == nil {
			return img, nil
		}
		lastErr = err
		if errors.Is(err, infrastructure.ErrNodeNotFound) || ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("exporter: capture attempt failed", "attempt", i+1, "error", err)
		if i < attempts-1 {
			backoff := e.Backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// record saves an audit row. Failures are logged and never fail the export.
func (e *Exporter) record(ctx context.Context, format domain.ExportFormat, filename string, size int, exportErr error) {
	if e.repo == nil {
		return
	}
	job := domain.NewExportJob(format, filename)
	job.Finish(size, exportErr)
	if err := e.repo.Save(ctx, job); err != nil {
		slog.Warn("exporter: failed to save export job", "id", job.ID, "error", err)
	}
}

func orDefault(name string) string {
	if name == "" {
		return defaultFilename
	}
	return name
}
