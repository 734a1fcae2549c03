// Package extraction pulls raw text out of uploaded document blobs.
// Unsupported or unreadable input yields empty text, never an error:
// the scoring pipeline treats such documents as having no content and
// scores them accordingly instead of aborting the batch.
package extraction

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Supported reports whether the filename's extension is one the
// extractor understands.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".pdf", ".docx", ".html", ".htm":
		return true
	}
	return false
}

// Text extracts raw text from a document blob, dispatching on the file
// extension. Returns "" for unsupported types or unreadable bytes.
func Text(filename string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return plainText(data)
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	case ".html", ".htm":
		return htmlText(data)
	}
	return ""
}

// plainText decodes bytes as UTF-8, dropping invalid sequences rather
// than failing.
func plainText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
