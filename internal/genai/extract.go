package genai

import (
	"bytes"
	"fmt"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"
)

// ExtractText returns the plain text of a resume. The declared content type
// is only a hint; the data is sniffed.
func ExtractText(data []byte, contentType string) (string, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return string(data), nil
		}
	}
	kind := mt.String()
	if mt.Is("application/octet-stream") && contentType != "" {
		kind = contentType
	}
	res, err := docconv.Convert(bytes.NewReader(data), kind, false)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return res.Body, nil
}
