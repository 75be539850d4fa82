// Where: internal/vision/image.go
// What: Image loading and format sniffing.
// Why: Reject unreadable or unsupported files before spending a network call.
package vision

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// supportedMIMEs matches the upload types the original UI accepted.
var supportedMIMEs = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/bmp":  true,
	"image/gif":  true,
}

// LoadImage reads an image file and returns its bytes and detected MIME type.
// Unreadable paths and unsupported formats yield *InvalidImageError.
func LoadImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &InvalidImageError{Path: path, Err: err}
	}
	mime, err := SniffImage(data)
	if err != nil {
		var invalid *InvalidImageError
		if errors.As(err, &invalid) {
			invalid.Path = path
		}
		return nil, "", err
	}
	return data, mime, nil
}

// SniffImage detects the MIME type of raw image bytes and validates it
// against the supported set.
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &InvalidImageError{Reason: "empty file"}
	}
	mime := http.DetectContentType(data)
	if !supportedMIMEs[mime] {
		return "", &InvalidImageError{Reason: fmt.Sprintf("unsupported format %s", mime)}
	}
	return mime, nil
}

// dataURL encodes image bytes as a base64 data URL for the chat content part.
func dataURL(data []byte, mime string) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
