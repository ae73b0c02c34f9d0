package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 200, A: 255})
		}
	}
	return img
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		format, orientation string
		w, h                float64
		wantErr             error
	}{
		{"a4", "portrait", 210, 297, nil},
		{"a4", "landscape", 297, 210, nil},
		{"letter", "portrait", 215.9, 279.4, nil},
		{"LETTER", "landscape", 279.4, 215.9, nil},
		{"a3", "portrait", 0, 0, ErrUnsupportedFormat},
		{"a4", "diagonal", 0, 0, ErrUnsupportedOrientation},
	}
	for _, tt := range tests {
		w, h, err := PageSize(tt.format, tt.orientation)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("PageSize(%s,%s) err = %v, want %v", tt.format, tt.orientation, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("PageSize(%s,%s) = %v x %v", tt.format, tt.orientation, w, h)
		}
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name      string
		imgW      int
		imgH      int
		wantPages int
	}{
		{"shorter than a page", 420, 300, 1},
		{"exactly one page", 420, 594, 1},
		{"exactly two pages", 420, 1188, 2},
		{"two and a half pages", 420, 1485, 3},
		{"just over one page", 420, 595, 2},
		{"empty image", 0, 0, 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			plan := Layout(tt.imgW, tt.imgH, 210, 297)
			if plan.Pages() != tt.wantPages {
				t.Fatalf("pages = %d, want %d (image height %.3fmm)", plan.Pages(), tt.wantPages, plan.ImageHeight)
			}
			for i, off := range plan.Offsets {
				if off != -float64(i)*297 {
					t.Errorf("offset[%d] = %v", i, off)
				}
			}
			if plan.ImageWidth != 210 {
				t.Errorf("image width = %v", plan.ImageWidth)
			}
		})
	}
}

func TestLayoutKeepsAspectRatio(t *testing.T) {
	plan := Layout(800, 1000, 215.9, 279.4)
	if math.Abs(plan.ImageHeight-269.875) > 1e-9 {
		t.Errorf("image height = %v", plan.ImageHeight)
	}
}

func TestAssemblePaginates(t *testing.T) {
	// 1485px tall at 420px wide maps to 742.5mm on A4: 2.5 pages
	out, err := Assemble(solidImage(420, 1485), Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	info, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages != 3 {
		t.Errorf("pages = %d, want 3", info.Pages)
	}
}

func TestAssembleSinglePage(t *testing.T) {
	out, err := Assemble(solidImage(200, 100), Options{Format: FormatLetter, Orientation: Landscape, Quality: 0.5})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	info, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages != 1 {
		t.Errorf("pages = %d, want 1", info.Pages)
	}
}

func TestAssembleRejectsBadInput(t *testing.T) {
	if _, err := Assemble(solidImage(10, 10), Options{Format: "tabloid"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("format err = %v", err)
	}
	if _, err := Assemble(image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}); err == nil {
		t.Errorf("expected error for empty image")
	}
}

func TestJPEGQuality(t *testing.T) {
	tests := map[float64]int{0.95: 95, 1: 100, 1.5: 100, 0.001: 1, 0.5: 50}
	for in, want := range tests {
		if got := jpegQuality(in); got != want {
			t.Errorf("jpegQuality(%v) = %d, want %d", in, got, want)
		}
	}
}
