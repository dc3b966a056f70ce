package object

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Object describes a stored upload.
type Object struct {
	Key      string `json:"storageKey"`
	Size     int64  `json:"sizeBytes"`
	MimeType string `json:"mimeType"`
}

// Store saves uploaded resume files and reads them back.
type Store interface {
	Save(ctx context.Context, userID, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// SniffSize is how many leading bytes are inspected for content type detection.
const SniffSize = 512

// DetectMimeType sniffs head, falling back to the file extension for DOCX,
// which the stdlib sniffer only reports as a zip archive.
func DetectMimeType(head []byte, fileName string) string {
	mimeType := http.DetectContentType(head)
	if mimeType == "application/zip" && strings.HasSuffix(strings.ToLower(fileName), ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return mimeType
}
