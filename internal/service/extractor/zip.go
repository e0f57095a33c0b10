package extractor

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ducnd58233/dataset-cache/internal/domain"
)

// zipStrategy extracts zip containers using random entry access.
type zipStrategy struct{}

func (zipStrategy) Extract(ctx context.Context, archivePath, destDir string, progress ProgressFunc) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer reader.Close()

	var extracted int64
	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := extractZipEntry(entry, destDir); err != nil {
			return err
		}

		extracted += int64(entry.UncompressedSize64)
		if progress != nil {
			progress(extracted)
		}
	}

	return nil
}

func extractZipEntry(entry *zip.File, destDir string) error {
	target, err := entryDestination(destDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create entry directory: %w", err)
	}

	src, err := entry.Open()
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}
		return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	perm := entry.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create entry file: %w", err)
	}

	_, err = io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}
		return fmt.Errorf("write entry %s: %w", entry.Name, err)
	}

	return nil
}
