// Package pdftext turns uploaded resume documents into plain text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType is returned for documents that are neither PDF nor DOCX.
var ErrUnsupportedType = errors.New("unsupported document type")

// ExtractFile reads the PDF at path and returns the text of every page,
// each followed by a newline. A document without extractable text yields "".
func ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat pdf %s: %w", path, err)
	}
	text, err := Extract(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("extract pdf %s: %w", path, err)
	}
	return text, nil
}

// Extract is ExtractFile for in-memory or already opened documents.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	// The pdf reader panics on some malformed object streams.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("invalid pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("invalid pdf: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := pageText(reader.Page(i))
		if strings.TrimSpace(page) == "" {
			continue
		}
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", nil
	}
	return sb.String(), nil
}

func pageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// ExtractBytes dispatches on mimeType, falling back to the file extension
// when the upload was sniffed as a generic zip or octet stream.
func ExtractBytes(data []byte, mimeType, fileName string) (string, error) {
	switch normalizeType(mimeType, fileName) {
	case MimePDF:
		return Extract(bytes.NewReader(data), int64(len(data)))
	case MimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()
	return stripTags(doc.Editable().GetContent()), nil
}

// stripTags reduces document.xml to its text runs, one paragraph per line.
func stripTags(raw string) string {
	var sb strings.Builder
	inTag := false
	var tag strings.Builder
	for _, r := range raw {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			name := tag.String()
			switch {
			case name == "/w:p" || strings.HasPrefix(name, "w:br"):
				sb.WriteByte('\n')
			case name == "w:tab/":
				sb.WriteByte('\t')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(unescapeXML(sb.String()))
}

var xmlUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func unescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}

// Supported reports whether ExtractBytes can handle the upload.
func Supported(mimeType, fileName string) bool {
	switch normalizeType(mimeType, fileName) {
	case MimePDF, MimeDOCX:
		return true
	}
	return false
}

func normalizeType(mimeType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOCX:
		return clean
	case "application/zip", "application/octet-stream", "":
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".pdf":
			return MimePDF
		case ".docx":
			return MimeDOCX
		}
	}
	return clean
}
