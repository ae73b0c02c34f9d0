package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"neoncv/internal/docx"
	"neoncv/internal/download"
	"neoncv/internal/usecase"
	"neoncv/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
)

type stubRasterizer struct {
	err    error
	target infrastructure.Target
}

func (s *stubRasterizer) Capture(ctx context.Context, t infrastructure.Target, opts infrastructure.CaptureOptions) (image.Image, error) {
	s.target = t
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, 80, 120)), nil
}

func newTestApp(r usecase.Rasterizer) *fiber.App {
	e := usecase.NewExporter(r, nil, download.NewMemoryRegistry())
	e.Attempts = 1
	e.Backoff = time.Millisecond
	return NewApp(NewHandler(e), 0)
}

const sampleDoc = `{
  "meta": {"title": "Mine", "language": "en"},
  "personalInfo": {"fullName": "Ada Lovelace", "email": "ada@example.com"},
  "sections": [
    {"id": "s1", "title": "Experience", "type": "experience", "order": 0, "isVisible": true,
     "items": [{"id": "e1", "company": "Acme", "role": "Engineer", "bullets": [], "techStack": []}]}
  ]
}`

func do(t *testing.T, app *fiber.App, method, path, contentType string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, b
}

func TestHealth(t *testing.T) {
	resp, _ := do(t, newTestApp(nil), http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestExportJSONAttachment(t *testing.T) {
	body := strings.Replace(sampleDoc, `"meta"`, `"filename": "ada", "meta"`, 1)
	resp, b := do(t, newTestApp(nil), http.MethodPost, "/v1/exports/json", fiber.MIMEApplicationJSON, []byte(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="ada.json"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(b, []byte("{\n  \"version\": \"1.0\",")) {
		t.Errorf("unexpected envelope:\n%s", b)
	}
}

func TestImportJSON(t *testing.T) {
	app := newTestApp(nil)
	envelope := `{"version":"1.0","exportedAt":"2024-01-01T00:00:00.000Z","meta":{},"personalInfo":{"fullName":"Ada"},"sections":[]}`

	tests := []struct {
		name    string
		body    string
		status  int
		success bool
	}{
		{"valid", envelope, http.StatusOK, true},
		{"empty object", `{}`, http.StatusUnprocessableEntity, false},
		{"syntax error", `{"version":`, http.StatusUnprocessableEntity, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp, b := do(t, app, http.MethodPost, "/v1/imports/json", fiber.MIMEApplicationJSON, []byte(tt.body))
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, b)
			}
			var res struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(b, &res); err != nil {
				t.Fatal(err)
			}
			if res.Success != tt.success {
				t.Errorf("success = %v, want %v", res.Success, tt.success)
			}
			if !tt.success && res.Error == "" {
				t.Errorf("expected an error message")
			}
		})
	}
}

func TestExportDOCX(t *testing.T) {
	app := newTestApp(nil)
	resp, b := do(t, app, http.MethodPost, "/v1/exports/docx", fiber.MIMEApplicationJSON, []byte(sampleDoc))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	if ct := resp.Header.Get("Content-Type"); ct != docx.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	text, err := docx.ExtractText(b)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Ada Lovelace") || !strings.Contains(text, "Engineer at Acme") {
		t.Errorf("docx text:\n%s", text)
	}
}

func TestExportDOCXRejectsInvalidDocument(t *testing.T) {
	body := `{"personalInfo":{},"sections":[
	  {"id":"a","title":"Skills","type":"skills","order":0,"isVisible":true,"items":[{"id":"k","name":"Go","proficiency":9}]},
	  {"id":"a","title":"Other","type":"custom","order":1,"isVisible":true,"items":[]}
	]}`
	resp, b := do(t, newTestApp(nil), http.MethodPost, "/v1/exports/docx", fiber.MIMEApplicationJSON, []byte(body))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	var res struct {
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Problems) < 2 {
		t.Errorf("problems = %v", res.Problems)
	}
}

func TestExportPDFFromDocument(t *testing.T) {
	r := &stubRasterizer{}
	body := fmt.Sprintf(`{"document": %s, "options": {"filename": "ada", "format": "letter"}}`, sampleDoc)
	resp, b := do(t, newTestApp(r), http.MethodPost, "/v1/exports/pdf", fiber.MIMEApplicationJSON, []byte(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Errorf("body is not a PDF")
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "ada.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if r.target.Selector != "#cv" || !strings.Contains(r.target.HTML, "Ada Lovelace") {
		t.Errorf("layout target not used: %+v", r.target.Selector)
	}
}

func TestRasterErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{"unsupported format", "/v1/exports/pdf", `{"html":"<p>x</p>","options":{"format":"a3"}}`, nil, http.StatusUnprocessableEntity},
		{"bad orientation", "/v1/exports/pdf", `{"html":"<p>x</p>","options":{"orientation":"up"}}`, nil, http.StatusUnprocessableEntity},
		{"missing node", "/v1/exports/png", `{"html":"<p>x</p>","selector":"#nope"}`, infrastructure.ErrNodeNotFound, http.StatusUnprocessableEntity},
		{"browser failure", "/v1/exports/png", `{"html":"<p>x</p>"}`, fmt.Errorf("%w: crashed", infrastructure.ErrRasterize), http.StatusBadGateway},
		{"nothing to render", "/v1/exports/pdf", `{}`, nil, http.StatusBadRequest},
		{"malformed json", "/v1/exports/pdf", `{"html":`, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubRasterizer{err: tt.err})
			resp, b := do(t, app, http.MethodPost, tt.path, fiber.MIMEApplicationJSON, []byte(tt.body))
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, b)
			}
			var res map[string]interface{}
			if err := json.Unmarshal(b, &res); err != nil || res["error"] == "" {
				t.Errorf("expected JSON error body, got %s", b)
			}
		})
	}
}

func TestExportPDFFromHTMLDecodesCharset(t *testing.T) {
	r := &stubRasterizer{}
	page := []byte("<html><body><div id=\"cv\">Jos\xe9</div></body></html>")
	resp, b := do(t, newTestApp(r), http.MethodPost, "/v1/exports/pdf/html?selector=%23cv&format=a4", "text/html; charset=iso-8859-1", page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.StatusCode, b)
	}
	if !strings.Contains(r.target.HTML, "José") {
		t.Errorf("html not decoded: %q", r.target.HTML)
	}
	if r.target.Selector != "#cv" {
		t.Errorf("selector = %q", r.target.Selector)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(context.DeadlineExceeded); got != http.StatusGatewayTimeout {
		t.Errorf("deadline = %d", got)
	}
	if got := statusFor(usecase.ErrNoRasterizer); got != http.StatusServiceUnavailable {
		t.Errorf("no rasterizer = %d", got)
	}
	if got := statusFor(fmt.Errorf("wrap: %w", docx.ErrNoRenderer)); got != http.StatusUnprocessableEntity {
		t.Errorf("no renderer = %d", got)
	}
}
