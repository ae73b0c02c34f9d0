package pdf

import (
	"bytes"
	"fmt"
	"io"

	pdfread "github.com/ledongthuc/pdf"
)

// Info describes an existing PDF.
type Info struct {
	Pages int
	Text  string
}

// Inspect reads back a PDF. Rasterized CVs carry no text layer, so Text is
// usually empty for files produced by Assemble.
func Inspect(data []byte) (Info, error) {
	r, err := pdfread.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("pdf: open: %w", err)
	}
	info := Info{Pages: r.NumPage()}
	plain, err := r.GetPlainText()
	if err != nil {
		return info, nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err == nil {
		info.Text = buf.String()
	}
	return info, nil
}
