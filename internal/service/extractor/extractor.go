// Package extractor validates and unpacks archives into a destination
// directory, dispatching on the archive family.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/mimetype"
	"github.com/ducnd58233/dataset-cache/internal/port"
)

// ProgressFunc receives the cumulative number of bytes extracted so far.
type ProgressFunc func(total int64)

// Strategy unpacks one archive family.
type Strategy interface {
	// Extract unpacks archivePath into destDir, reporting cumulative bytes
	// through progress when non-nil. Malformed input must surface as
	// domain.ErrCorruptArchive.
	Extract(ctx context.Context, archivePath, destDir string, progress ProgressFunc) error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProgress sets a progress callback invoked as entries are extracted.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Extractor) { e.progress = fn }
}

// WithStrategy registers or overrides the extraction strategy for a family.
func WithStrategy(family domain.ArchiveFamily, s Strategy) Option {
	return func(e *Extractor) { e.strategies[family] = s }
}

// Extractor validates an archive and extracts its entries. Families without
// a registered strategy are detected but refused with a distinct error.
type Extractor struct {
	fs         port.FileSystem
	logger     *zap.Logger
	progress   ProgressFunc
	strategies map[domain.ArchiveFamily]Strategy
}

// New creates an Extractor with the default strategies: zip, tar and gzip
// are extractable; 7z and rar are detect-only.
func New(fs port.FileSystem, logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		fs:     fs,
		logger: logger,
		strategies: map[domain.ArchiveFamily]Strategy{
			domain.FamilyZip:  zipStrategy{},
			domain.FamilyTar:  tarStrategy{},
			domain.FamilyGzip: gzipStrategy{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract unpacks the archive described by req. Expected failure modes come
// back as a failed ExtractionResult with the matching error.
func (e *Extractor) Extract(ctx context.Context, req domain.ExtractionRequest) (domain.ExtractionResult, error) {
	if err := e.fs.EnsureDir(req.DestinationDir); err != nil {
		return failure("Failed to create extraction directory"), err
	}

	if !e.fs.FileExists(req.ArchivePath) {
		return failure("Archive file not found"),
			fmt.Errorf("%w: %s", domain.ErrArchiveNotFound, req.ArchivePath)
	}

	mimeType := mimetype.ClassifyByName(req.ArchivePath)
	family, ok := mimetype.FamilyOf(mimeType)
	if !ok {
		return failure("File is not a compressed archive"),
			fmt.Errorf("%w: detected type %q", domain.ErrNotAnArchive, mimeType)
	}

	strategy, ok := e.strategies[family]
	if !ok {
		return failure(fmt.Sprintf("Extraction of %s archives is not supported", family)),
			fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, family)
	}

	e.logger.Info("extracting archive",
		zap.String("archive", req.ArchivePath),
		zap.String("destination", req.DestinationDir),
		zap.String("family", string(family)))

	if err := strategy.Extract(ctx, req.ArchivePath, req.DestinationDir, e.progress); err != nil {
		return failure("Invalid or corrupted archive file"), err
	}

	empty, err := e.fs.DirIsEmpty(req.DestinationDir)
	if err != nil {
		return failure("Failed to validate extraction"), err
	}
	if empty {
		return failure("No files found after extraction"),
			fmt.Errorf("%w: %s", domain.ErrEmptyExtraction, req.DestinationDir)
	}

	if req.DeleteArchiveAfter {
		// Deletion failure never fails an extraction that already
		// succeeded; it is logged and the archive lingers until the
		// janitor picks it up.
		if err := e.fs.Delete(req.ArchivePath); err != nil {
			e.logger.Warn("failed to remove archive after extraction",
				zap.String("archive", req.ArchivePath),
				zap.Error(err))
		} else {
			e.logger.Info("removed archive file", zap.String("archive", req.ArchivePath))
		}
	}

	return domain.ExtractionResult{Succeeded: true, Message: "Extraction successful"}, nil
}

func failure(message string) domain.ExtractionResult {
	return domain.ExtractionResult{Succeeded: false, Message: message}
}

// entryDestination resolves an archive entry name inside destDir, refusing
// names that would escape it.
func entryDestination(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", fmt.Errorf("%w: entry path escapes destination: %s", domain.ErrCorruptArchive, name)
	}
	return filepath.Join(destDir, cleaned), nil
}
