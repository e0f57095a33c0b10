// Package fetcher performs the network transfer of a remote archive into a
// local destination path.
package fetcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/gdrive"
	"github.com/ducnd58233/dataset-cache/internal/mimetype"
	"github.com/ducnd58233/dataset-cache/internal/port"
)

// Fetcher downloads files with exists/force short-circuiting and optional
// archive validation.
type Fetcher struct {
	transferer port.Transferer
	classifier *mimetype.Classifier
	fs         port.FileSystem
	logger     *zap.Logger
}

// New creates a new Fetcher
func New(transferer port.Transferer, classifier *mimetype.Classifier, fs port.FileSystem, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		transferer: transferer,
		classifier: classifier,
		fs:         fs,
		logger:     logger,
	}
}

// Fetch performs a single transfer attempt for the request. Expected
// failure modes come back as a failed DownloadResult with the matching
// error; the transfer itself is never retried here.
func (f *Fetcher) Fetch(ctx context.Context, req domain.DownloadRequest) (domain.DownloadResult, error) {
	if err := f.fs.EnsureParent(req.DestinationPath); err != nil {
		return failure("Failed to create destination directory"), err
	}

	// Existing file short-circuit: no re-download, no content validation,
	// name-only classification.
	if !req.Force && f.fs.FileExists(req.DestinationPath) {
		return domain.DownloadResult{
			Succeeded: true,
			Message:   "File already exists",
			MIMEType:  mimetype.ClassifyByName(req.DestinationPath),
		}, nil
	}

	downloadURL, err := gdrive.Resolve(req.SourceURL)
	if err != nil {
		return failure("Invalid Google Drive URL format"), err
	}

	f.logger.Info("downloading file",
		zap.String("url", downloadURL),
		zap.String("destination", req.DestinationPath))

	if err := f.transferer.Transfer(ctx, downloadURL, req.DestinationPath); err != nil {
		return failure("Download failed"),
			fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
	}

	size, err := f.fs.FileSize(req.DestinationPath)
	if err != nil || size == 0 {
		return failure("Downloaded file is empty or missing"),
			fmt.Errorf("%w: empty or missing file at %s", domain.ErrTransferFailed, req.DestinationPath)
	}

	mimeType := f.classifier.Classify(ctx, req.DestinationPath)

	if req.RequireArchive && !mimetype.IsArchive(mimeType) {
		// The file stays on disk so the caller can inspect it.
		result := failure("Downloaded file is not a compressed archive")
		result.MIMEType = mimeType
		return result, fmt.Errorf("%w: detected type %q", domain.ErrNotAnArchive, mimeType)
	}

	return domain.DownloadResult{
		Succeeded: true,
		Message:   "Download successful",
		MIMEType:  mimeType,
	}, nil
}

func failure(message string) domain.DownloadResult {
	return domain.DownloadResult{Succeeded: false, Message: message}
}
