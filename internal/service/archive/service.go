// Package archive exposes the public operations of the dataset cache:
// download, extract, combined download-and-extract, and cache cleanup.
// Every operation resolves expected failures into a structured result and
// never lets an unexpected fault propagate past this boundary.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/port"
	"github.com/ducnd58233/dataset-cache/internal/service/extractor"
	"github.com/ducnd58233/dataset-cache/internal/service/fetcher"
	"github.com/ducnd58233/dataset-cache/internal/service/janitor"
	"github.com/ducnd58233/dataset-cache/internal/service/pipeline"
)

// Service is the public operation boundary.
type Service struct {
	fetcher   *fetcher.Fetcher
	extractor *extractor.Extractor
	pipeline  *pipeline.Pipeline
	janitor   *janitor.Janitor
	history   port.HistoryRepository
	logger    *zap.Logger
}

// New creates a new Service. history may be nil to disable operation
// recording.
func New(
	f *fetcher.Fetcher,
	e *extractor.Extractor,
	p *pipeline.Pipeline,
	j *janitor.Janitor,
	history port.HistoryRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		fetcher:   f,
		extractor: e,
		pipeline:  p,
		janitor:   j,
		history:   history,
		logger:    logger,
	}
}

// Download fetches url into outputPath, optionally validating that the
// result is a recognized compressed archive.
func (s *Service) Download(ctx context.Context, url, outputPath string, force, validateCompression bool) (result domain.DownloadResult) {
	defer func() {
		s.record(domain.OpDownload, url, outputPath, result.MIMEType, result.Succeeded, result.Message)
	}()
	defer s.recoverInto(&result.Succeeded, &result.Message, "download")

	result, err := s.fetcher.Fetch(ctx, domain.DownloadRequest{
		SourceURL:       url,
		DestinationPath: outputPath,
		Force:           force,
		RequireArchive:  validateCompression,
	})
	if err != nil {
		s.logger.Error("download error",
			zap.String("url", url),
			zap.Error(err))
	}
	return result
}

// Extract unpacks archivePath into extractPath, optionally removing the
// archive afterward.
func (s *Service) Extract(ctx context.Context, archivePath, extractPath string, removeArchive bool) (result domain.ExtractionResult) {
	defer func() {
		s.record(domain.OpExtract, archivePath, extractPath, "", result.Succeeded, result.Message)
	}()
	defer s.recoverInto(&result.Succeeded, &result.Message, "extraction")

	result, err := s.extractor.Extract(ctx, domain.ExtractionRequest{
		ArchivePath:        archivePath,
		DestinationDir:     extractPath,
		DeleteArchiveAfter: removeArchive,
	})
	if err != nil {
		s.logger.Error("extraction error",
			zap.String("archive", archivePath),
			zap.Error(err))
	}
	return result
}

// DownloadAndExtract downloads url into a temp archive under the cache
// directory and extracts it into extractDir.
func (s *Service) DownloadAndExtract(ctx context.Context, url, extractDir string, keepArchive, force bool) (result domain.ExtractionResult) {
	defer func() {
		s.record(domain.OpDownloadAndExtract, url, extractDir, "", result.Succeeded, result.Message)
	}()
	defer s.recoverInto(&result.Succeeded, &result.Message, "download and extraction")

	result, err := s.pipeline.Run(ctx, url, extractDir, keepArchive, force)
	if err != nil {
		s.logger.Error("download and extraction error",
			zap.String("url", url),
			zap.Error(err))
	}
	return result
}

// CleanupCache removes cache files older than maxAgeDays. Best-effort;
// never fails the caller.
func (s *Service) CleanupCache(maxAgeDays int) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("cache cleanup panicked", zap.Any("panic", r))
		}
	}()

	s.janitor.Sweep(time.Duration(maxAgeDays) * 24 * time.Hour)
	s.record(domain.OpCleanup, "", "", "", true, fmt.Sprintf("Swept cache entries older than %d days", maxAgeDays))
}

// recoverInto converts a panic into the structured failure shape so that
// nothing propagates past the public operations.
func (s *Service) recoverInto(succeeded *bool, message *string, operation string) {
	if r := recover(); r != nil {
		s.logger.Error("unexpected internal error",
			zap.String("operation", operation),
			zap.Any("panic", r))
		*succeeded = false
		*message = fmt.Sprintf("%s failed: %v", operation, r)
	}
}

// record stores the operation outcome; recording failures are log-only.
func (s *Service) record(kind domain.OperationKind, source, destination, mimeType string, succeeded bool, message string) {
	if s.history == nil {
		return
	}

	op := &domain.Operation{
		Kind:        kind,
		Source:      source,
		Destination: destination,
		MIMEType:    mimeType,
		Succeeded:   succeeded,
		Message:     message,
	}
	if err := s.history.Record(op); err != nil {
		s.logger.Warn("failed to record operation", zap.Error(err))
	}
}
