package port

import "context"

// Transferer fetches the bytes behind a direct URL into a local path.
// Implementations must create the file at destPath on success and make a
// best effort not to leave a non-empty file behind on failure; the fetcher
// re-validates size regardless.
type Transferer interface {
	Transfer(ctx context.Context, url, destPath string) error
}

// MetadataProber performs a metadata-only lookup against a URL. It is a
// best-effort capability: callers treat any error as "no information".
type MetadataProber interface {
	// ContentType returns the content-type reported by the remote server,
	// following redirects.
	ContentType(ctx context.Context, url string) (string, error)
}
