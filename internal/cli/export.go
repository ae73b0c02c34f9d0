package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"neoncv/internal/download"
	"neoncv/internal/model"
	"neoncv/internal/usecase"
	"neoncv/pkg/infrastructure"

	"github.com/spf13/cobra"
)

type exportFlags struct {
	in          string
	out         string
	name        string
	html        string
	selector    string
	format      string
	orientation string
	scale       float64
	quality     float64
	mode        string
	language    string
	strict      bool
	upload      string
}

func newExportCmd(rt *runtime) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:       "export json|docx|pdf|png",
		Short:     "Export a CV document",
		Example:   "  neoncv export pdf --in cv.yaml --out ./build --format letter",
		ValidArgs: []string{"json", "docx", "pdf", "png"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rt, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.in, "in", "", "CV document (.json, .yaml)")
	fl.StringVar(&f.out, "out", ".", "output directory")
	fl.StringVar(&f.name, "name", "", "file name without extension (default \"cv\")")
	fl.StringVar(&f.html, "html", "", "pre-rendered HTML page to rasterize instead of the built-in layout")
	fl.StringVar(&f.selector, "selector", "", "CSS selector of the CV node in --html (default body)")
	fl.StringVar(&f.format, "format", "", "page format: a4 or letter")
	fl.StringVar(&f.orientation, "orientation", "", "portrait or landscape")
	fl.Float64Var(&f.scale, "scale", 0, "device scale factor (default 2)")
	fl.Float64Var(&f.quality, "quality", 0, "JPEG quality in (0,1] (default 0.95)")
	fl.StringVar(&f.mode, "mode", "", "pdf mode: raster or print")
	fl.StringVar(&f.language, "language", "", "label language for docx (default meta.language)")
	fl.BoolVar(&f.strict, "strict", false, "fail on section types without a docx renderer")
	fl.StringVar(&f.upload, "upload", "", "upload to s3://bucket/prefix instead of --out")
	return cmd
}

func runExport(cmd *cobra.Command, rt *runtime, format string, f *exportFlags) error {
	ctx := cmd.Context()
	raster := format == "pdf" || format == "png"

	var doc model.Document
	switch {
	case f.in != "":
		d, err := LoadDocument(f.in)
		if err != nil {
			return err
		}
		doc = d
	case raster && f.html != "":
	default:
		return fmt.Errorf("--in is required")
	}

	dst, where, err := destination(ctx, rt, f)
	if err != nil {
		return err
	}
	exporter, cleanup := rt.exporter(ctx, raster)
	defer cleanup()

	switch format {
	case "json":
		err = exporter.DownloadCVAsJSON(ctx, doc.Meta, doc.PersonalInfo, doc.Sections, usecase.JSONOptions{Filename: f.name}, dst)
	case "docx":
		lang := f.language
		if lang == "" {
			lang = doc.Meta.Language
		}
		err = exporter.ExportToDOCX(ctx, doc.PersonalInfo, doc.Sections, usecase.DOCXOptions{Filename: f.name, Language: lang, Strict: f.strict}, dst)
	case "pdf", "png":
		var target infrastructure.Target
		target, err = rasterTarget(doc, f)
		if err != nil {
			return err
		}
		if format == "pdf" {
			err = exporter.DownloadPDF(ctx, target, usecase.PDFOptions{
				Filename: f.name, Scale: f.scale, Quality: f.quality,
				Format: f.format, Orientation: f.orientation, Mode: f.mode,
			}, dst)
		} else {
			err = exporter.ExportToPNG(ctx, target, usecase.PNGOptions{Filename: f.name, Scale: f.scale}, dst)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ exported")+" "+where())
	return nil
}

// rasterTarget loads --html or falls back to the built-in layout. Relative
// assets in --html resolve against the file's directory.
func rasterTarget(doc model.Document, f *exportFlags) (infrastructure.Target, error) {
	if f.html == "" {
		return usecase.LayoutTarget(doc)
	}
	b, err := os.ReadFile(f.html)
	if err != nil {
		return infrastructure.Target{}, fmt.Errorf("read %s: %w", f.html, err)
	}
	abs, err := filepath.Abs(filepath.Dir(f.html))
	if err != nil {
		return infrastructure.Target{}, err
	}
	return infrastructure.Target{HTML: string(b), Selector: f.selector, BaseURL: "file://" + filepath.ToSlash(abs) + "/"}, nil
}

// destination returns where artifacts go and a func describing the result
// after delivery.
func destination(ctx context.Context, rt *runtime, f *exportFlags) (download.Destination, func() string, error) {
	if f.upload != "" {
		bucket, prefix, err := download.ParseS3URL(f.upload)
		if err != nil {
			return nil, nil, err
		}
		d, err := download.NewS3Destination(ctx, rt.settings.S3Region, bucket, prefix)
		if err != nil {
			return nil, nil, err
		}
		return d, func() string { return "s3://" + bucket + "/" + d.Key }, nil
	}
	d := &download.FileDestination{Dir: f.out}
	return d, func() string { return d.Written }, nil
}
