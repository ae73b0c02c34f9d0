package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

var (
	// ErrNodeNotFound means the selector matches nothing in the page, the
	// equivalent of capturing a detached DOM node.
	ErrNodeNotFound = errors.New("rasterize: node not found")
	ErrRasterize    = errors.New("rasterize: capture failed")
)

// Target is a rendered CV: a full HTML page plus the selector of the
// subtree to capture.
type Target struct {
	HTML     string
	Selector string
	// BaseURL resolves relative asset URLs in HTML.
	BaseURL string
}

func (t Target) selector() string {
	if strings.TrimSpace(t.Selector) == "" {
		return "body"
	}
	return t.Selector
}

type CaptureOptions struct {
	// Scale is the device scale factor; the bitmap is Scale times the CSS
	// pixel size of the node.
	Scale      float64
	Background color.Color
	// ViewportWidth is the CSS width of the browser window.
	ViewportWidth int64
}

type ChromedpRasterizer struct {
	ChromePath string
	Timeout    time.Duration
	// Inliner, when set, replaces remote images with data URIs before the
	// page is loaded.
	Inliner *ImageInliner
}

func NewChromedpRasterizer(chromePath string, timeout time.Duration, inliner *ImageInliner) *ChromedpRasterizer {
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromedpRasterizer{ChromePath: chromePath, Timeout: timeout, Inliner: inliner}
}

// Capture renders the target in headless Chrome and screenshots the node.
func (r *ChromedpRasterizer) Capture(ctx context.Context, t Target, opts CaptureOptions) (image.Image, error) {
	html, err := r.prepare(ctx, t)
	if err != nil {
		return nil, err
	}
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 1024
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	var shot []byte
	sel := t.selector()
	err = r.run(ctx, html,
		chromedp.EmulateViewport(opts.ViewportWidth, 800, chromedp.EmulateScale(opts.Scale)),
		emulation.SetDefaultBackgroundColorOverride().WithColor(toRGBA(bg)),
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.Screenshot(sel, &shot, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %w", ErrRasterize, err)
	}
	return img, nil
}

// PrintPDF uses Chrome's own print engine instead of a bitmap. The result
// keeps a text layer and paginates by layout. Sizes are in millimetres.
func (r *ChromedpRasterizer) PrintPDF(ctx context.Context, t Target, widthMM, heightMM float64) ([]byte, error) {
	html, err := r.prepare(ctx, t)
	if err != nil {
		return nil, err
	}
	var pdfBuf []byte
	err = r.run(ctx, html,
		chromedp.WaitReady(t.selector(), chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(widthMM / 25.4).
				WithPaperHeight(heightMM / 25.4).
				WithPreferCSSPageSize(false).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return pdfBuf, nil
}

// prepare checks the node exists and applies the base URL and image
// inlining.
func (r *ChromedpRasterizer) prepare(ctx context.Context, t Target) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(t.HTML))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", ErrRasterize, err)
	}
	found, err := hasNode(doc, t.selector())
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNodeNotFound, t.selector())
	}
	if t.BaseURL != "" && doc.Find("head base").Length() == 0 {
		doc.Find("head").PrependHtml(fmt.Sprintf(`<base href="%s">`, escapeAttr(t.BaseURL)))
	}
	if r.Inliner != nil {
		r.Inliner.InlineDocument(ctx, doc)
	}
	html, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("%w: serialize html: %w", ErrRasterize, err)
	}
	return html, nil
}

func (r *ChromedpRasterizer) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		// remote images are captured instead of blanked
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "neoncv-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return err
	}

	all := append([]chromedp.Action{chromedp.Navigate("file://" + htmlPath)}, actions...)
	return chromedp.Run(runCtx, all...)
}

// hasNode reports whether sel matches in doc. goquery panics on selectors
// it cannot compile; that becomes an error here.
func hasNode(doc *goquery.Document, sel string) (found bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: invalid selector %q", ErrNodeNotFound, sel)
		}
	}()
	return doc.Find(sel).Length() > 0, nil
}

func toRGBA(c color.Color) *cdp.RGBA {
	r, g, b, a := c.RGBA()
	return &cdp.RGBA{
		R: int64(r >> 8),
		G: int64(g >> 8),
		B: int64(b >> 8),
		A: float64(a) / 0xffff,
	}
}

func escapeAttr(s string) string {
	return strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;").Replace(s)
}
