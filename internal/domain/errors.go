package domain

import "errors"

// Common domain errors
var (
	// ErrInvalidLinkFormat means the URL matches a known share host but
	// carries no recognizable file identifier.
	ErrInvalidLinkFormat = errors.New("invalid share link format")

	// ErrTransferFailed means the transfer capability reported failure or
	// produced an empty/missing file.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrNotAnArchive means the detected MIME type is not in the recognized
	// archive set.
	ErrNotAnArchive = errors.New("not a compressed archive")

	// Extraction errors
	ErrArchiveNotFound   = errors.New("archive file not found")
	ErrCorruptArchive    = errors.New("invalid or corrupted archive")
	ErrEmptyExtraction   = errors.New("no files found after extraction")
	ErrUnsupportedFormat = errors.New("archive format detected but not extractable")
)

// IsDataError reports whether the error indicates a problem with the input
// data rather than a logic or I/O failure. Data errors are safe to surface
// verbatim to callers.
func IsDataError(err error) bool {
	return errors.Is(err, ErrCorruptArchive) ||
		errors.Is(err, ErrNotAnArchive) ||
		errors.Is(err, ErrInvalidLinkFormat)
}
