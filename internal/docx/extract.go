package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ExtractText returns the text of word/document.xml in a .docx archive,
// one line per paragraph.
func ExtractText(docxBytes []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return "", fmt.Errorf("docx: open archive: %w", err)
	}
	for _, f := range reader.File {
		if strings.TrimPrefix(f.Name, "/") != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return paragraphsText(rc)
	}
	return "", fmt.Errorf("docx: word/document.xml not found")
}

func paragraphsText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		lines  []string
		cur    strings.Builder
		inText bool
		inPara bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == wmlNamespace && t.Name.Local == "p":
				inPara = true
				cur.Reset()
			case t.Name.Space == wmlNamespace && t.Name.Local == "t":
				inText = true
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == wmlNamespace && t.Name.Local == "p":
				if inPara {
					lines = append(lines, cur.String())
				}
				inPara = false
			case t.Name.Space == wmlNamespace && t.Name.Local == "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
