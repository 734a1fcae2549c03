package extraction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// docxText unwraps the OOXML container (a docx is a zip archive) and
// collects the text runs of word/document.xml, one space per paragraph.
func docxText(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return ""
	}

	rc, err := doc.Open()
	if err != nil {
		return ""
	}
	defer func() { _ = rc.Close() }()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sb.String()
		}
		switch el := tok.(type) {
		case xml.StartElement:
			// <w:t> wraps a text run.
			if el.Name.Local == "t" {
				var run string
				if err := decoder.DecodeElement(&run, &el); err == nil {
					sb.WriteString(run)
				}
			}
		case xml.EndElement:
			// Paragraph boundaries become whitespace.
			if el.Name.Local == "p" {
				sb.WriteString(" ")
			}
		}
	}
	return sb.String()
}
