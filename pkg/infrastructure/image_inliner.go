package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// maxImageBytes caps a single inlined image.
const maxImageBytes = 8 << 20

// ImageInliner fetches remote <img> sources and replaces them with data
// URIs so the browser never has to load cross-origin images itself.
type ImageInliner struct {
	client        *resty.Client
	maxConcurrent int
}

type InlinerOptions struct {
	RetryCount    int
	Timeout       time.Duration
	MaxConcurrent int
	UserAgent     string
}

func NewImageInliner(o InlinerOptions) *ImageInliner {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.UserAgent == "" {
		o.UserAgent = "neoncv-exporter/1.0"
	}
	client := resty.New().
		SetRetryCount(o.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetTimeout(o.Timeout).
		SetHeader("User-Agent", o.UserAgent)
	return &ImageInliner{client: client, maxConcurrent: o.MaxConcurrent}
}

// Close releases the underlying HTTP client.
func (in *ImageInliner) Close() {
	in.client.Close()
}

// Inline rewrites an HTML string. Images that cannot be fetched keep their
// original src.
func (in *ImageInliner) Inline(ctx context.Context, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML document: %w", err)
	}
	in.InlineDocument(ctx, doc)
	return goquery.OuterHtml(doc.Selection)
}

// InlineDocument rewrites doc in place and returns how many images were
// inlined.
func (in *ImageInliner) InlineDocument(ctx context.Context, doc *goquery.Document) int {
	bySrc := map[string][]*goquery.Selection{}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			bySrc[src] = append(bySrc[src], s)
		}
	})
	if len(bySrc) == 0 {
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.maxConcurrent)

	var (
		mu      sync.Mutex
		dataURI = map[string]string{}
	)
	for src := range bySrc {
		src := src
		g.Go(func() error {
			uri, err := in.fetch(gctx, src)
			if err != nil {
				// a broken image must not fail the export
				slog.Warn("inliner: fetch failed", "src", src, "error", err)
				return nil
			}
			mu.Lock()
			dataURI[src] = uri
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for src, uri := range dataURI {
		for _, s := range bySrc[src] {
			s.SetAttr("src", uri)
			s.RemoveAttr("srcset")
		}
	}
	slog.Debug("inliner: images inlined", "count", len(dataURI), "found", len(bySrc))
	return len(dataURI)
}

func (in *ImageInliner) fetch(ctx context.Context, src string) (string, error) {
	resp, err := in.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	buff := new(bytes.Buffer)
	if _, err := buff.ReadFrom(io.LimitReader(resp.Body, maxImageBytes+1)); err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if buff.Len() > maxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	contentType := resp.Header().Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(buff.Bytes())
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("not an image: %s", contentType)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(buff.Bytes()), nil
}
