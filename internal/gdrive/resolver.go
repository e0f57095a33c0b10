// Package gdrive normalizes Google Drive share links into direct-download
// URLs.
package gdrive

import (
	"fmt"
	"strings"

	"github.com/ducnd58233/dataset-cache/internal/domain"
)

const (
	shareHost         = "drive.google.com"
	directURLTemplate = "https://drive.google.com/uc?id=%s"
)

// Resolve rewrites a Google Drive share link into a direct-download URL.
// URLs not pointing at the share host are treated as already direct and
// returned unchanged. A share-host URL without a recognizable file
// identifier fails with domain.ErrInvalidLinkFormat.
func Resolve(rawURL string) (string, error) {
	if !strings.Contains(rawURL, shareHost) {
		return rawURL, nil
	}

	id, ok := extractFileID(rawURL)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidLinkFormat, rawURL)
	}

	return fmt.Sprintf(directURLTemplate, id), nil
}

// extractFileID pulls the file identifier out of the two known share link
// shapes: .../file/d/<id>/... and ...?id=<id>&...
func extractFileID(rawURL string) (string, bool) {
	if _, rest, found := strings.Cut(rawURL, "file/d/"); found {
		id, _, _ := strings.Cut(rest, "/")
		if id != "" {
			return id, true
		}
		return "", false
	}

	if _, rest, found := strings.Cut(rawURL, "id="); found {
		id, _, _ := strings.Cut(rest, "&")
		if id != "" {
			return id, true
		}
	}

	return "", false
}
