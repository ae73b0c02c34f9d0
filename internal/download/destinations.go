package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileDestination writes artifacts into a directory.
type FileDestination struct {
	Dir string
	// Written is set to the path of the last delivered file.
	Written string
}

func (d *FileDestination) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	path := filepath.Join(dir, sanitizeFileName(a.Filename))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	d.Written = path
	return nil
}

// WriterDestination copies the artifact bytes to W.
type WriterDestination struct {
	W io.Writer
}

func (d WriterDestination) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := io.Copy(d.W, bytes.NewReader(a.Data))
	return err
}

// sanitizeFileName keeps only the base name and replaces path separators
// so artifacts never escape the target directory.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "cv"
	}
	return name
}
