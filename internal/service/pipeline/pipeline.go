// Package pipeline composes the fetcher and extractor into a single
// download-and-extract operation with cleanup on partial failure.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/port"
	"github.com/ducnd58233/dataset-cache/internal/service/extractor"
	"github.com/ducnd58233/dataset-cache/internal/service/fetcher"
)

// Pipeline runs download then extraction against a temp archive in the
// cache directory.
type Pipeline struct {
	fetcher   *fetcher.Fetcher
	extractor *extractor.Extractor
	fs        port.FileSystem
	logger    *zap.Logger
}

// New creates a new Pipeline
func New(f *fetcher.Fetcher, e *extractor.Extractor, fs port.FileSystem, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		fs:        fs,
		logger:    logger,
	}
}

// Run downloads sourceURL into a unique temp archive under the cache root
// and extracts it into destDir. After Run returns, the temp archive exists
// on disk iff keepArchive was set and extraction succeeded; it never
// survives a failure of either phase.
func (p *Pipeline) Run(ctx context.Context, sourceURL, destDir string, keepArchive, force bool) (domain.ExtractionResult, error) {
	tempArchive := p.fs.TempArchivePath()

	downloadResult, err := p.fetcher.Fetch(ctx, domain.DownloadRequest{
		SourceURL:       sourceURL,
		DestinationPath: tempArchive,
		Force:           force,
		RequireArchive:  true,
	})
	if !downloadResult.Succeeded {
		// Nothing to clean up: the fetcher already decided what to leave
		// on disk (a non-archive download stays for inspection).
		return domain.ExtractionResult{
			Succeeded: false,
			Message:   fmt.Sprintf("Download phase failed: %s", downloadResult.Message),
		}, err
	}

	extractionResult, err := p.extractor.Extract(ctx, domain.ExtractionRequest{
		ArchivePath:        tempArchive,
		DestinationDir:     destDir,
		DeleteArchiveAfter: !keepArchive,
	})
	if !extractionResult.Succeeded {
		if cleanupErr := p.fs.Delete(tempArchive); cleanupErr != nil {
			p.logger.Warn("failed to clean up temp archive",
				zap.String("archive", tempArchive),
				zap.Error(cleanupErr))
		}
		return domain.ExtractionResult{
			Succeeded: false,
			Message:   fmt.Sprintf("Extraction phase failed: %s", extractionResult.Message),
		}, err
	}

	return domain.ExtractionResult{
		Succeeded: true,
		Message:   "Download and extraction completed successfully",
	}, nil
}
