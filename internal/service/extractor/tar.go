package extractor

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/ducnd58233/dataset-cache/internal/domain"
)

// tarStrategy extracts tar containers as a sequential stream.
type tarStrategy struct{}

func (tarStrategy) Extract(ctx context.Context, archivePath, destDir string, progress ProgressFunc) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open tar archive: %w", err)
	}
	defer f.Close()

	return extractTarStream(ctx, f, destDir, progress)
}

// gzipStrategy handles the gzip family: .tar.gz/.tgz unwraps into the tar
// stream, a bare .gz decompresses to a single file named after the archive.
type gzipStrategy struct{}

func (gzipStrategy) Extract(ctx context.Context, archivePath, destDir string, progress ProgressFunc) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open gzip archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	defer gz.Close()

	lower := strings.ToLower(archivePath)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractTarStream(ctx, gz, destDir, progress)
	}

	target, err := entryDestination(destDir, gzipEntryName(archivePath, gz.Name))
	if err != nil {
		return err
	}

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create entry file: %w", err)
	}

	written, err := io.Copy(dst, gz)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if errors.Is(err, gzip.ErrHeader) || errors.Is(err, gzip.ErrChecksum) {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}
		return fmt.Errorf("decompress %s: %w", archivePath, err)
	}

	if progress != nil {
		progress(written)
	}
	return nil
}

// gzipEntryName picks the output name for a single-file gzip: the original
// name from the header when present, otherwise the archive name without its
// .gz suffix.
func gzipEntryName(archivePath, headerName string) string {
	if headerName != "" {
		return filepath.Base(headerName)
	}
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractTarStream(ctx context.Context, r io.Reader, destDir string, progress ProgressFunc) error {
	tr := tar.NewReader(r)

	var extracted int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}

		target, err := entryDestination(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create entry directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create entry directory: %w", err)
			}

			perm := os.FileMode(header.Mode).Perm()
			if perm == 0 {
				perm = 0644
			}

			dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("create entry file: %w", err)
			}

			written, err := io.Copy(dst, tr)
			closeErr := dst.Close()
			if err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
			}

			extracted += written
			if progress != nil {
				progress(extracted)
			}
		default:
			// Symlinks and special entries are skipped rather than
			// materialized into the extraction destination.
		}
	}
}
