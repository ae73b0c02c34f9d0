package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"neoncv/internal/docx"
	"neoncv/internal/download"
	"neoncv/internal/model"
	"neoncv/internal/pdf"
	"neoncv/internal/usecase"
	"neoncv/pkg/infrastructure"
)

// Runs every export once against real Chrome. The avatar is served from a
// local listener so the image inliner is exercised too.

func startAvatarServer() (string, *http.Server, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 220, G: 40, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/avatar.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("avatar server failed", "error", err)
		}
	}()
	return "http://" + ln.Addr().String() + "/avatar.png", srv, nil
}

func sampleDocument(avatarURL string) model.Document {
	bullets := make([]string, 0, 40)
	for i := 1; i <= 40; i++ {
		bullets = append(bullets, fmt.Sprintf("Delivered improvement #%d across the export pipeline.", i))
	}
	return model.Document{
		Meta: model.Meta{Title: "Smoke", Language: "en"},
		PersonalInfo: model.PersonalInfo{
			FullName:    "Test User",
			Headline:    "Engineer",
			Email:       "t@example.com",
			GitHub:      "https://github.com/test",
			AvatarURL:   avatarURL,
			Summary:     "A short summary used to check the built-in layout.",
			CustomLinks: []model.CustomLink{{URL: "https://blog.example.co.uk/posts"}},
		},
		Sections: []model.Section{
			{ID: "exp", Title: "Experience", Type: model.SectionExperience, Order: 0, IsVisible: true, Items: []model.Item{
				model.ExperienceItem{ID: "e1", Company: "Acme", Role: "Engineer", StartDate: "2020-01", IsCurrent: true, Bullets: bullets, TechStack: []string{"Go", "Postgres"}},
			}},
			{ID: "sk", Title: "Skills", Type: model.SectionSkills, Order: 1, IsVisible: true, Items: []model.Item{
				model.SkillItem{ID: "k1", Name: "Go", Category: "Backend", Proficiency: 5},
				model.SkillItem{ID: "k2", Name: "Figma", Proficiency: 3},
			}},
		},
	}
}

func main() {
	out := flag.String("out", "smoke-out", "output directory")
	timeout := flag.Duration("timeout", 90*time.Second, "overall timeout")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	avatarURL, srv, err := startAvatarServer()
	if err != nil {
		slog.Error("avatar server", "error", err)
		os.Exit(1)
	}
	defer srv.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	inliner := infrastructure.NewImageInliner(infrastructure.InlinerOptions{})
	defer inliner.Close()
	r := infrastructure.NewChromedpRasterizer("", *timeout, inliner)
	exporter := usecase.NewExporter(r, nil, download.NewMemoryRegistry())

	doc := sampleDocument(avatarURL)
	target, err := usecase.LayoutTarget(doc)
	if err != nil {
		slog.Error("layout", "error", err)
		os.Exit(1)
	}
	dst := &download.FileDestination{Dir: *out}

	steps := []struct {
		name string
		run  func() error
	}{
		{"json", func() error {
			return exporter.DownloadCVAsJSON(ctx, doc.Meta, doc.PersonalInfo, doc.Sections, usecase.JSONOptions{Filename: "smoke"}, dst)
		}},
		{"docx", func() error {
			if err := exporter.ExportToDOCX(ctx, doc.PersonalInfo, doc.Sections, usecase.DOCXOptions{Filename: "smoke"}, dst); err != nil {
				return err
			}
			return checkDOCX(dst.Written)
		}},
		{"png", func() error {
			return exporter.ExportToPNG(ctx, target, usecase.PNGOptions{Filename: "smoke"}, dst)
		}},
		{"pdf", func() error {
			if err := exporter.DownloadPDF(ctx, target, usecase.PDFOptions{Filename: "smoke"}, dst); err != nil {
				return err
			}
			return checkPDF(dst.Written)
		}},
	}

	failed := false
	for _, s := range steps {
		start := time.Now()
		if err := s.run(); err != nil {
			slog.Error("smoke step failed", "step", s.name, "error", err)
			failed = true
			continue
		}
		slog.Info("smoke step ok", "step", s.name, "file", dst.Written, "elapsed", time.Since(start))
	}
	if failed {
		os.Exit(1)
	}
}

func checkDOCX(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text, err := docx.ExtractText(b)
	if err != nil {
		return err
	}
	for _, want := range []string{"Test User", "Engineer at Acme", "Backend: Go", "Other: Figma", "example.co.uk"} {
		if !strings.Contains(text, want) {
			return fmt.Errorf("docx missing %q", want)
		}
	}
	return nil
}

func checkPDF(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := pdf.Inspect(b)
	if err != nil {
		return err
	}
	if info.Pages < 2 {
		return fmt.Errorf("expected the long sample to span pages, got %d", info.Pages)
	}
	return nil
}
