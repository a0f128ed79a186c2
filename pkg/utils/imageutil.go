package utils

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
)

// DecodeBase64Image decodes a raw base64 string or a data URI
// ("data:image/png;base64,....") into image bytes.
func DecodeBase64Image(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty base64 payload")
	}

	if strings.HasPrefix(payload, "data:") {
		_, encoded, found := strings.Cut(payload, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = encoded
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return data, nil
}

// DownloadName builds the attachment filename for a processed image:
// the original name's stem prefixed with removed_bg_ and the output extension.
func DownloadName(originalFilename, ext string) string {
	stem := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	if stem == "" {
		stem = "image"
	}
	return fmt.Sprintf("removed_bg_%s.%s", stem, ext)
}
