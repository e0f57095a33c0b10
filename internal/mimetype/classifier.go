package mimetype

import (
	"context"
	"mime"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/port"
)

// familyMIMETypes maps each recognized archive family to its canonical MIME
// strings. This set is static configuration, not runtime-discovered.
var familyMIMETypes = map[domain.ArchiveFamily][]string{
	domain.FamilyZip:    {"application/zip", "application/x-zip-compressed"},
	domain.FamilyTar:    {"application/x-tar"},
	domain.FamilyGzip:   {"application/gzip", "application/x-gzip"},
	domain.FamilySevenZ: {"application/x-7z-compressed"},
	domain.FamilyRar:    {"application/x-rar-compressed"},
}

// extensionMIMETypes resolves archive extensions directly. Go's built-in mime
// table does not cover archive formats, so the lookup cannot rely on it.
var extensionMIMETypes = map[string]string{
	".zip": "application/zip",
	".tar": "application/x-tar",
	".gz":  "application/gzip",
	".tgz": "application/gzip",
	".7z":  "application/x-7z-compressed",
	".rar": "application/x-rar-compressed",
}

// IsArchive reports whether mimeType belongs to one of the recognized
// archive families. Empty and unrecognized types are not archives.
func IsArchive(mimeType string) bool {
	_, ok := FamilyOf(mimeType)
	return ok
}

// FamilyOf returns the archive family a MIME type belongs to.
func FamilyOf(mimeType string) (domain.ArchiveFamily, bool) {
	if mimeType == "" {
		return domain.FamilyUnknown, false
	}
	// Strip any media-type parameters (e.g. "; charset=binary")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))

	for family, types := range familyMIMETypes {
		for _, t := range types {
			if mimeType == t {
				return family, true
			}
		}
	}
	return domain.FamilyUnknown, false
}

// Classifier maps a URL or file path to a MIME type. Extension inference is
// tried first; for http(s) URLs a metadata probe supplies the content-type
// when the name alone is inconclusive.
type Classifier struct {
	prober port.MetadataProber
	logger *zap.Logger
}

// NewClassifier creates a new Classifier. prober may be nil, which disables
// the network fallback.
func NewClassifier(prober port.MetadataProber, logger *zap.Logger) *Classifier {
	return &Classifier{prober: prober, logger: logger}
}

// Classify returns the MIME type for a URL or file path, or "" when it
// cannot be determined. Classification is best-effort: probe failures are
// logged and swallowed, never propagated.
func (c *Classifier) Classify(ctx context.Context, identifier string) string {
	if mimeType := ClassifyByName(identifier); mimeType != "" {
		return mimeType
	}

	if c.prober == nil || !isHTTPURL(identifier) {
		return ""
	}

	contentType, err := c.prober.ContentType(ctx, identifier)
	if err != nil {
		c.logger.Warn("failed to detect MIME type",
			zap.String("url", identifier),
			zap.Error(err))
		return ""
	}
	return contentType
}

// ClassifyByName infers a MIME type from the file name or URL path alone,
// without any I/O.
func ClassifyByName(identifier string) string {
	name := identifier
	if u, err := url.Parse(identifier); err == nil && u.Scheme != "" {
		name = u.Path
	}

	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}

	if strings.HasSuffix(strings.ToLower(name), ".tar.gz") {
		return "application/gzip"
	}
	if mimeType, ok := extensionMIMETypes[ext]; ok {
		return mimeType
	}
	return mime.TypeByExtension(ext)
}

func isHTTPURL(identifier string) bool {
	u, err := url.Parse(identifier)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
