package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	// US Letter in twips, 0.75in margins.
	pageWidthTwips  = 12240
	pageHeightTwips = 15840
	marginTwips     = 1080
)

type xmlVal struct {
	Val string `xml:"w:val,attr"`
}

type xmlBorder struct {
	Val   string `xml:"w:val,attr"`
	Sz    string `xml:"w:sz,attr"`
	Space string `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type xmlParagraphBorder struct {
	Bottom xmlBorder `xml:"w:bottom"`
}

type xmlSpacing struct {
	After string `xml:"w:after,attr"`
}

type xmlParagraphProps struct {
	Style   *xmlVal             `xml:"w:pStyle,omitempty"`
	Border  *xmlParagraphBorder `xml:"w:pBdr,omitempty"`
	Spacing *xmlSpacing         `xml:"w:spacing,omitempty"`
	Justify *xmlVal             `xml:"w:jc,omitempty"`
}

type xmlEmpty struct{}

type xmlRunProps struct {
	Bold   *xmlEmpty `xml:"w:b,omitempty"`
	Italic *xmlEmpty `xml:"w:i,omitempty"`
	Size   *xmlVal   `xml:"w:sz,omitempty"`
}

type xmlText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type xmlRun struct {
	Props *xmlRunProps `xml:"w:rPr,omitempty"`
	Text  xmlText      `xml:"w:t"`
}

type xmlParagraph struct {
	Props *xmlParagraphProps `xml:"w:pPr,omitempty"`
	Runs  []xmlRun           `xml:"w:r"`
}

type xmlPageSize struct {
	W string `xml:"w:w,attr"`
	H string `xml:"w:h,attr"`
}

type xmlPageMargins struct {
	Top    string `xml:"w:top,attr"`
	Right  string `xml:"w:right,attr"`
	Bottom string `xml:"w:bottom,attr"`
	Left   string `xml:"w:left,attr"`
	Header string `xml:"w:header,attr"`
	Footer string `xml:"w:footer,attr"`
	Gutter string `xml:"w:gutter,attr"`
}

type xmlSection struct {
	PageSize    xmlPageSize    `xml:"w:pgSz"`
	PageMargins xmlPageMargins `xml:"w:pgMar"`
}

type xmlBody struct {
	Paragraphs []xmlParagraph `xml:"w:p"`
	Section    xmlSection     `xml:"w:sectPr"`
}

type xmlDocument struct {
	XMLName xml.Name `xml:"w:document"`
	W       string   `xml:"xmlns:w,attr"`
	R       string   `xml:"xmlns:r,attr"`
	Body    xmlBody  `xml:"w:body"`
}

// Package writes the tree as a .docx archive.
func Package(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("docx: nil document")
	}
	body, err := documentXML(doc)
	if err != nil {
		return nil, fmt.Errorf("docx: encode document.xml: %w", err)
	}
	core, err := coreXML(doc.Title)
	if err != nil {
		return nil, fmt.Errorf("docx: encode core.xml: %w", err)
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", body},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"docProps/core.xml", core},
		{"docProps/app.xml", []byte(appXML)},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(doc *Document) ([]byte, error) {
	x := xmlDocument{W: wmlNamespace, R: relNamespace}
	for _, p := range doc.Paragraphs {
		x.Body.Paragraphs = append(x.Body.Paragraphs, toXMLParagraph(p))
	}
	margin := strconv.Itoa(marginTwips)
	x.Body.Section = xmlSection{
		PageSize: xmlPageSize{W: strconv.Itoa(pageWidthTwips), H: strconv.Itoa(pageHeightTwips)},
		PageMargins: xmlPageMargins{
			Top: margin, Right: margin, Bottom: margin, Left: margin,
			Header: "720", Footer: "720", Gutter: "0",
		},
	}
	out, err := xml.Marshal(x)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func toXMLParagraph(p Paragraph) xmlParagraph {
	var props xmlParagraphProps
	hasProps := false
	if p.Style != "" {
		props.Style = &xmlVal{Val: p.Style}
		hasProps = true
	}
	if p.BorderBottom {
		props.Border = &xmlParagraphBorder{Bottom: xmlBorder{Val: "single", Sz: "6", Space: "1", Color: "auto"}}
		hasProps = true
	}
	if p.SpacingAfter > 0 {
		props.Spacing = &xmlSpacing{After: strconv.Itoa(p.SpacingAfter)}
		hasProps = true
	}
	if p.Align != AlignLeft {
		props.Justify = &xmlVal{Val: string(p.Align)}
		hasProps = true
	}

	xp := xmlParagraph{}
	if hasProps {
		xp.Props = &props
	}
	for _, r := range p.Runs {
		xr := xmlRun{Text: xmlText{Value: r.Text, Space: "preserve"}}
		if r.Bold || r.Italic || r.Size > 0 {
			rp := &xmlRunProps{}
			if r.Bold {
				rp.Bold = &xmlEmpty{}
			}
			if r.Italic {
				rp.Italic = &xmlEmpty{}
			}
			if r.Size > 0 {
				rp.Size = &xmlVal{Val: strconv.Itoa(r.Size)}
			}
			xr.Props = rp
		}
		xp.Runs = append(xp.Runs, xr)
	}
	return xp
}

type xmlCoreProperties struct {
	XMLName xml.Name `xml:"cp:coreProperties"`
	CP      string   `xml:"xmlns:cp,attr"`
	DC      string   `xml:"xmlns:dc,attr"`
	Title   string   `xml:"dc:title"`
	Creator string   `xml:"dc:creator"`
}

func coreXML(title string) ([]byte, error) {
	out, err := xml.Marshal(xmlCoreProperties{
		CP:      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:      "http://purl.org/dc/elements/1.1/",
		Title:   title,
		Creator: "NeonCV",
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
  <Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const appXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Application>NeonCV</Application>
</Properties>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:docDefaults>
    <w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="21"/></w:rPr></w:rPrDefault>
    <w:pPrDefault><w:pPr><w:spacing w:after="80"/></w:pPr></w:pPrDefault>
  </w:docDefaults>
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>
    <w:rPr><w:b/><w:sz w:val="36"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Subtitle">
    <w:name w:val="Subtitle"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>
    <w:rPr><w:i/><w:sz w:val="24"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>
    <w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/><w:outlineLvl w:val="0"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="26"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>
    <w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="1"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="24"/></w:rPr>
  </w:style>
</w:styles>`
