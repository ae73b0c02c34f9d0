package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"neoncv/internal/docx"
	"neoncv/internal/download"
	"neoncv/internal/model"
	"neoncv/internal/pdf"
	"neoncv/internal/usecase"
	"neoncv/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/html/charset"
)

type Handler struct {
	exporter *usecase.Exporter
}

func NewHandler(e *usecase.Exporter) *Handler {
	return &Handler{exporter: e}
}

// Register mounts the export routes on app.
func (h *Handler) Register(app fiber.Router) {
	app.Get("/healthz", h.Health)
	v1 := app.Group("/v1")
	v1.Post("/exports/json", h.ExportJSON)
	v1.Post("/imports/json", h.ImportJSON)
	v1.Post("/exports/docx", h.ExportDOCX)
	v1.Post("/exports/pdf", h.ExportPDF)
	v1.Post("/exports/pdf/html", h.ExportPDFFromHTML)
	v1.Post("/exports/png", h.ExportPNG)
}

type documentReq struct {
	Meta         model.Meta         `json:"meta"`
	PersonalInfo model.PersonalInfo `json:"personalInfo"`
	Sections     []model.Section    `json:"sections"`
	Filename     string             `json:"filename"`
	Strict       bool               `json:"strict"`
}

type rasterOptions struct {
	Filename    string  `json:"filename"`
	Scale       float64 `json:"scale"`
	Quality     float64 `json:"quality"`
	Format      string  `json:"format"`
	Orientation string  `json:"orientation"`
	Mode        string  `json:"mode"`
}

type rasterReq struct {
	HTML     string          `json:"html"`
	Selector string          `json:"selector"`
	BaseURL  string          `json:"baseUrl"`
	Document *model.Document `json:"document"`
	Options  rasterOptions   `json:"options"`
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) ExportJSON(c *fiber.Ctx) error {
	var req documentReq
	if err := c.BodyParser(&req); err != nil {
		return badPayload(err)
	}
	err := h.exporter.DownloadCVAsJSON(c.UserContext(), req.Meta, req.PersonalInfo, req.Sections,
		usecase.JSONOptions{Filename: req.Filename}, attachment(c))
	return h.finish(c, err)
}

func (h *Handler) ImportJSON(c *fiber.Ctx) error {
	res := h.exporter.ParseCVImport(string(c.Body()))
	if !res.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}
	return c.JSON(res)
}

func (h *Handler) ExportDOCX(c *fiber.Ctx) error {
	var req documentReq
	if err := c.BodyParser(&req); err != nil {
		return badPayload(err)
	}
	doc := model.Document{Meta: req.Meta, PersonalInfo: req.PersonalInfo, Sections: req.Sections}
	if v := model.ValidateDocument(doc); !v.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid document", "problems": v.Problems})
	}
	err := h.exporter.ExportToDOCX(c.UserContext(), req.PersonalInfo, req.Sections,
		usecase.DOCXOptions{Filename: req.Filename, Language: req.Meta.Language, Strict: req.Strict}, attachment(c))
	return h.finish(c, err)
}

func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	req, target, err := parseRaster(c)
	if err != nil {
		return err
	}
	err = h.exporter.DownloadPDF(c.UserContext(), target, pdfOptions(req.Options), attachment(c))
	return h.finish(c, err)
}

func (h *Handler) ExportPNG(c *fiber.Ctx) error {
	req, target, err := parseRaster(c)
	if err != nil {
		return err
	}
	opts := usecase.PNGOptions{Filename: req.Options.Filename, Scale: req.Options.Scale}
	err = h.exporter.ExportToPNG(c.UserContext(), target, opts, attachment(c))
	return h.finish(c, err)
}

// ExportPDFFromHTML takes a raw HTML page in any charset; options come from
// the query string.
func (h *Handler) ExportPDFFromHTML(c *fiber.Ctx) error {
	r, err := charset.NewReader(bytes.NewReader(c.Body()), c.Get(fiber.HeaderContentType))
	if err != nil {
		return badPayload(err)
	}
	page, err := io.ReadAll(r)
	if err != nil {
		return badPayload(err)
	}
	if strings.TrimSpace(string(page)) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "empty html body")
	}
	target := infrastructure.Target{HTML: string(page), Selector: c.Query("selector"), BaseURL: c.Query("baseUrl")}
	opts := usecase.PDFOptions{
		Filename:    c.Query("filename"),
		Scale:       c.QueryFloat("scale", 0),
		Quality:     c.QueryFloat("quality", 0),
		Format:      c.Query("format"),
		Orientation: c.Query("orientation"),
		Mode:        c.Query("mode"),
	}
	err = h.exporter.DownloadPDF(c.UserContext(), target, opts, attachment(c))
	return h.finish(c, err)
}

func parseRaster(c *fiber.Ctx) (rasterReq, infrastructure.Target, error) {
	var req rasterReq
	if err := c.BodyParser(&req); err != nil {
		return req, infrastructure.Target{}, badPayload(err)
	}
	if req.HTML != "" {
		return req, infrastructure.Target{HTML: req.HTML, Selector: req.Selector, BaseURL: req.BaseURL}, nil
	}
	if req.Document == nil {
		return req, infrastructure.Target{}, fiber.NewError(fiber.StatusBadRequest, "html or document is required")
	}
	target, err := usecase.LayoutTarget(*req.Document)
	if err != nil {
		return req, infrastructure.Target{}, err
	}
	target.BaseURL = req.BaseURL
	return req, target, nil
}

func pdfOptions(o rasterOptions) usecase.PDFOptions {
	return usecase.PDFOptions{
		Filename:    o.Filename,
		Scale:       o.Scale,
		Quality:     o.Quality,
		Format:      o.Format,
		Orientation: o.Orientation,
		Mode:        o.Mode,
	}
}

// finish maps export errors to status codes. On success the attachment has
// already been written.
func (h *Handler) finish(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("export failed", "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pdf.ErrUnsupportedFormat),
		errors.Is(err, pdf.ErrUnsupportedOrientation),
		errors.Is(err, usecase.ErrUnknownPDFMode),
		errors.Is(err, infrastructure.ErrNodeNotFound),
		errors.Is(err, docx.ErrNoRenderer):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, infrastructure.ErrRasterize):
		return fiber.StatusBadGateway
	case errors.Is(err, usecase.ErrNoRasterizer), errors.Is(err, usecase.ErrPrintUnsupported):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func badPayload(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid payload: "+err.Error())
}

// attachment delivers an artifact as the response body with a
// Content-Disposition attachment header.
func attachment(c *fiber.Ctx) download.Destination {
	return download.DestinationFunc(func(ctx context.Context, a download.Artifact) error {
		c.Attachment(a.Filename)
		c.Set(fiber.HeaderContentType, a.ContentType)
		return c.Status(fiber.StatusOK).Send(a.Data)
	})
}
