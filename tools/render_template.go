package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"neoncv/internal/cli"
	"neoncv/internal/layout"
)

// Renders a CV document through the built-in layout for a quick look in
// a browser.
func main() {
	in := flag.String("in", "cv.json", "CV document (.json or .yaml)")
	css := flag.String("css", "", "stylesheet replacing the embedded one")
	out := flag.String("out", filepath.Join("build", "preview.html"), "output HTML file")
	flag.Parse()

	doc, err := cli.LoadDocument(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load document: %v\n", err)
		os.Exit(2)
	}
	var opts layout.Options
	if *css != "" {
		b, err := os.ReadFile(*css)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read css: %v\n", err)
			os.Exit(2)
		}
		opts.CSS = string(b)
	}
	html, err := layout.RenderWith(doc, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out dir: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write out: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s\n", *out)
}
