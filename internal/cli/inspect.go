package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"neoncv/internal/codec"
	"neoncv/internal/docx"
	"neoncv/internal/model"
	"neoncv/internal/pdf"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Parse an exported JSON backup and summarise it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := codec.ReadFromFile(args[0])
			if !res.Success {
				return fmt.Errorf("import failed: %s", res.Error)
			}
			printSummary(cmd.OutOrStdout(), res.Data)
			return nil
		},
	}
}

func printSummary(w io.Writer, d *model.ExportData) {
	fmt.Fprintln(w, titleStyle.Render(orPlaceholder(d.PersonalInfo.FullName, "(no name)")))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Version:"), d.Version)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Exported:"), d.ExportedAt)
	if d.Meta.Title != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Title:"), d.Meta.Title)
	}
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Sections:"), len(d.Sections))
	for _, s := range d.Sections {
		hidden := ""
		if !s.IsVisible {
			hidden = " (hidden)"
		}
		fmt.Fprintf(w, "  • %s [%s] %d items%s\n", s.Title, s.Type, len(s.Items), hidden)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a CV document against the editor invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := LoadDocument(args[0])
			if err != nil {
				return err
			}
			v := model.ValidateDocument(doc)
			out := cmd.OutOrStdout()
			if v.Valid {
				fmt.Fprintln(out, okStyle.Render("✓ valid"))
				return nil
			}
			for _, p := range v.Problems {
				fmt.Fprintln(out, errorStyle.Render("✗ ")+p)
			}
			return fmt.Errorf("%d problem(s) found", len(v.Problems))
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.docx|file.pdf>",
		Short: "Print the text of an exported DOCX or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".docx":
				text, err := docx.ExtractText(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			case ".pdf":
				info, err := pdf.Inspect(data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Pages:"), info.Pages)
				if strings.TrimSpace(info.Text) != "" {
					fmt.Fprintln(out, info.Text)
				}
			default:
				return fmt.Errorf("inspect supports .docx and .pdf files")
			}
			return nil
		},
	}
}

func orPlaceholder(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
