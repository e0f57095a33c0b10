package extractor

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/adapter/filesystem"
	"github.com/ducnd58233/dataset-cache/internal/domain"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestExtractor(t *testing.T, opts ...Option) (*Extractor, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := filesystem.NewManager(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(fs, zap.NewNop(), opts...), root
}

func TestExtract_ZipRoundTrip(t *testing.T) {
	e, root := newTestExtractor(t)

	entries := map[string]string{
		"train/images.txt": "img1\nimg2\n",
		"train/labels.txt": "cat\ndog\n",
		"readme.md":        "dataset",
	}
	archive := filepath.Join(root, "dataset.zip")
	writeZip(t, archive, entries)

	dest := filepath.Join(root, "extracted")
	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: dest,
	})
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !result.Succeeded || result.Message != "Extraction successful" {
		t.Fatalf("result = %+v", result)
	}

	for name, want := range entries {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("entry %s missing: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("entry %s = %q, want %q", name, data, want)
		}
	}

	// Archive was not deleted without DeleteArchiveAfter
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("archive should remain: %v", err)
	}
}

func TestExtract_IdempotentOverwrite(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "dataset.zip")
	writeZip(t, archive, map[string]string{"a.txt": "one"})

	dest := filepath.Join(root, "extracted")
	for i := 0; i < 2; i++ {
		result, err := e.Extract(context.Background(), domain.ExtractionRequest{
			ArchivePath:    archive,
			DestinationDir: dest,
		})
		if err != nil || !result.Succeeded {
			t.Fatalf("run %d: Extract() = (%+v, %v)", i, result, err)
		}
	}
}

func TestExtract_ReportsProgress(t *testing.T) {
	var last int64
	e, root := newTestExtractor(t, WithProgress(func(total int64) { last = total }))

	archive := filepath.Join(root, "dataset.zip")
	writeZip(t, archive, map[string]string{"a.txt": "12345", "b.txt": "678"})

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: filepath.Join(root, "out"),
	})
	if err != nil || !result.Succeeded {
		t.Fatalf("Extract() = (%+v, %v)", result, err)
	}
	if last != 8 {
		t.Errorf("final progress = %d bytes, want 8", last)
	}
}

func TestExtract_ArchiveNotFound(t *testing.T) {
	e, root := newTestExtractor(t)

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    filepath.Join(root, "missing.zip"),
		DestinationDir: filepath.Join(root, "out"),
	})
	if !errors.Is(err, domain.ErrArchiveNotFound) {
		t.Fatalf("Extract() error = %v, want ErrArchiveNotFound", err)
	}
	if result.Succeeded || result.Message != "Archive file not found" {
		t.Errorf("result = %+v", result)
	}
}

func TestExtract_UnrecognizedFile(t *testing.T) {
	e, root := newTestExtractor(t)

	path := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    path,
		DestinationDir: filepath.Join(root, "out"),
	})
	if !errors.Is(err, domain.ErrNotAnArchive) {
		t.Fatalf("Extract() error = %v, want ErrNotAnArchive", err)
	}
	if result.Succeeded || result.Message != "File is not a compressed archive" {
		t.Errorf("result = %+v", result)
	}
}

func TestExtract_CorruptZip(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "broken.zip")
	if err := os.WriteFile(archive, []byte("this is not a zip container"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: filepath.Join(root, "out"),
	})
	if !errors.Is(err, domain.ErrCorruptArchive) {
		t.Fatalf("Extract() error = %v, want ErrCorruptArchive", err)
	}
	if result.Succeeded || result.Message != "Invalid or corrupted archive file" {
		t.Errorf("result = %+v", result)
	}
}

func TestExtract_EmptyArchive(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "empty.zip")
	writeZip(t, archive, nil)

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: filepath.Join(root, "out"),
	})
	if !errors.Is(err, domain.ErrEmptyExtraction) {
		t.Fatalf("Extract() error = %v, want ErrEmptyExtraction", err)
	}
	if result.Succeeded || result.Message != "No files found after extraction" {
		t.Errorf("result = %+v", result)
	}
}

func TestExtract_DeleteArchiveAfter(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "dataset.zip")
	writeZip(t, archive, map[string]string{"a.txt": "one"})

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:        archive,
		DestinationDir:     filepath.Join(root, "out"),
		DeleteArchiveAfter: true,
	})
	if err != nil || !result.Succeeded {
		t.Fatalf("Extract() = (%+v, %v)", result, err)
	}

	if _, statErr := os.Stat(archive); !os.IsNotExist(statErr) {
		t.Error("archive should be deleted after extraction")
	}
}

func TestExtract_UnsupportedFamily(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "dataset.rar")
	if err := os.WriteFile(archive, []byte("Rar!\x1a\x07\x00"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: filepath.Join(root, "out"),
	})
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("Extract() error = %v, want ErrUnsupportedFormat", err)
	}
	if result.Succeeded {
		t.Error("Extract() reported success for an unsupported family")
	}
}

func TestExtract_TarGzRoundTrip(t *testing.T) {
	e, root := newTestExtractor(t)

	entries := map[string]string{
		"data/part1.csv": "1,2,3\n",
		"data/part2.csv": "4,5,6\n",
	}
	archive := filepath.Join(root, "dataset.tar.gz")
	writeTarGz(t, archive, entries)

	dest := filepath.Join(root, "out")
	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: dest,
	})
	if err != nil || !result.Succeeded {
		t.Fatalf("Extract() = (%+v, %v)", result, err)
	}

	for name, want := range entries {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("entry %s missing: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("entry %s = %q, want %q", name, data, want)
		}
	}
}

func TestExtract_BareGzip(t *testing.T) {
	e, root := newTestExtractor(t)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte("column_a,column_b\n")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(root, "table.csv.gz")
	if err := os.WriteFile(archive, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(root, "out")
	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: dest,
	})
	if err != nil || !result.Succeeded {
		t.Fatalf("Extract() = (%+v, %v)", result, err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "table.csv"))
	if err != nil {
		t.Fatalf("decompressed file missing: %v", err)
	}
	if string(data) != "column_a,column_b\n" {
		t.Errorf("decompressed content = %q", data)
	}
}

func TestExtract_RefusesTraversalEntries(t *testing.T) {
	e, root := newTestExtractor(t)

	archive := filepath.Join(root, "evil.zip")
	writeZip(t, archive, map[string]string{"../escape.txt": "pwned"})

	dest := filepath.Join(root, "out")
	result, err := e.Extract(context.Background(), domain.ExtractionRequest{
		ArchivePath:    archive,
		DestinationDir: dest,
	})
	if !errors.Is(err, domain.ErrCorruptArchive) {
		t.Fatalf("Extract() error = %v, want ErrCorruptArchive", err)
	}
	if result.Succeeded {
		t.Error("Extract() reported success for a traversal entry")
	}
	if _, statErr := os.Stat(filepath.Join(root, "escape.txt")); !os.IsNotExist(statErr) {
		t.Error("traversal entry escaped the destination directory")
	}
}
