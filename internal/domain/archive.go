package domain

// ArchiveFamily identifies a class of compressed-container formats sharing a
// MIME-type group.
type ArchiveFamily string

// Recognized archive families. Detection covers all of them; extraction
// support is per-family (see the extractor registry).
const (
	FamilyZip     ArchiveFamily = "zip"
	FamilyTar     ArchiveFamily = "tar"
	FamilyGzip    ArchiveFamily = "gzip"
	FamilySevenZ  ArchiveFamily = "7z"
	FamilyRar     ArchiveFamily = "rar"
	FamilyUnknown ArchiveFamily = ""
)

// DownloadRequest describes a single fetch into a destination path.
type DownloadRequest struct {
	// SourceURL is the share link or direct URL to fetch.
	SourceURL string

	// DestinationPath is where the file is written. The parent directory is
	// created before any write.
	DestinationPath string

	// Force re-downloads even when DestinationPath already exists.
	Force bool

	// RequireArchive validates the downloaded file is a recognized archive.
	RequireArchive bool
}

// DownloadResult is the outcome of a download operation. It is fully
// populated on the success path and never partially filled.
type DownloadResult struct {
	Succeeded bool
	Message   string

	// MIMEType is the detected MIME type, empty when unknown.
	MIMEType string
}

// ExtractionRequest describes extracting an archive into a directory.
type ExtractionRequest struct {
	ArchivePath    string
	DestinationDir string

	// DeleteArchiveAfter removes the source archive once extraction
	// succeeded. A failed removal does not fail the extraction.
	DeleteArchiveAfter bool
}

// ExtractionResult is the outcome of an extraction operation.
type ExtractionResult struct {
	Succeeded bool
	Message   string
}
