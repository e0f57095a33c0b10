package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/adapter/filesystem"
	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/mimetype"
	"github.com/ducnd58233/dataset-cache/internal/service/extractor"
	"github.com/ducnd58233/dataset-cache/internal/service/fetcher"
	"github.com/ducnd58233/dataset-cache/internal/service/janitor"
	"github.com/ducnd58233/dataset-cache/internal/service/pipeline"
)

type fakeTransferer struct {
	payload []byte
	err     error
}

func (f *fakeTransferer) Transfer(ctx context.Context, url, destPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, f.payload, 0644)
}

type memoryHistory struct {
	ops []*domain.Operation
}

func (h *memoryHistory) Record(op *domain.Operation) error {
	h.ops = append(h.ops, op)
	return nil
}

func (h *memoryHistory) Recent(limit int) ([]*domain.Operation, error) { return h.ops, nil }

func (h *memoryHistory) PruneOlderThan(age time.Duration) (int, error) { return 0, nil }

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestService(t *testing.T, transferer *fakeTransferer) (*Service, *memoryHistory, string) {
	t.Helper()
	fs, err := filesystem.NewManager(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	classifier := mimetype.NewClassifier(nil, logger)
	f := fetcher.New(transferer, classifier, fs, logger)
	e := extractor.New(fs, logger)
	p := pipeline.New(f, e, fs, logger)
	j := janitor.New(nil, fs, nil, logger)
	history := &memoryHistory{}

	return New(f, e, p, j, history, logger), history, fs.RootDir()
}

func TestDownload_RecordsHistory(t *testing.T) {
	svc, history, root := newTestService(t, &fakeTransferer{payload: zipBytes(t, map[string]string{"a": "x"})})

	result := svc.Download(context.Background(), "https://example.com/d.zip",
		filepath.Join(root, "d.zip"), false, true)

	require.True(t, result.Succeeded, result.Message)
	assert.Equal(t, "Download successful", result.Message)
	assert.Equal(t, "application/zip", result.MIMEType)

	require.Len(t, history.ops, 1)
	assert.Equal(t, domain.OpDownload, history.ops[0].Kind)
	assert.True(t, history.ops[0].Succeeded)
	assert.Equal(t, "application/zip", history.ops[0].MIMEType)
}

func TestDownload_FailureIsStructured(t *testing.T) {
	svc, history, root := newTestService(t, &fakeTransferer{err: errors.New("boom")})

	result := svc.Download(context.Background(), "https://example.com/d.zip",
		filepath.Join(root, "d.zip"), false, true)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Download failed", result.Message)

	require.Len(t, history.ops, 1)
	assert.False(t, history.ops[0].Succeeded)
}

func TestExtract_FailureIsStructured(t *testing.T) {
	svc, _, root := newTestService(t, &fakeTransferer{})

	result := svc.Extract(context.Background(),
		filepath.Join(root, "missing.zip"), filepath.Join(root, "out"), false)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Archive file not found", result.Message)
}

func TestDownloadAndExtract_EndToEnd(t *testing.T) {
	svc, history, _ := newTestService(t, &fakeTransferer{payload: zipBytes(t, map[string]string{
		"train.csv": "1,2\n",
	})})

	dest := filepath.Join(t.TempDir(), "dataset")
	result := svc.DownloadAndExtract(context.Background(), "https://example.com/d.zip", dest, false, false)

	require.True(t, result.Succeeded, result.Message)
	assert.FileExists(t, filepath.Join(dest, "train.csv"))

	require.Len(t, history.ops, 1)
	assert.Equal(t, domain.OpDownloadAndExtract, history.ops[0].Kind)
}

func TestCleanupCache_RecordsOperation(t *testing.T) {
	svc, history, root := newTestService(t, &fakeTransferer{})

	stale := filepath.Join(root, "stale.zip")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	svc.CleanupCache(0)

	assert.NoFileExists(t, stale)
	require.Len(t, history.ops, 1)
	assert.Equal(t, domain.OpCleanup, history.ops[0].Kind)
	assert.True(t, history.ops[0].Succeeded)
}

func TestHistoryFailureIsLogOnly(t *testing.T) {
	fs, err := filesystem.NewManager(t.TempDir())
	require.NoError(t, err)

	logger := zap.NewNop()
	classifier := mimetype.NewClassifier(nil, logger)
	transferer := &fakeTransferer{payload: zipBytes(t, map[string]string{"a": "x"})}
	f := fetcher.New(transferer, classifier, fs, logger)
	e := extractor.New(fs, logger)
	p := pipeline.New(f, e, fs, logger)
	j := janitor.New(nil, fs, nil, logger)

	svc := New(f, e, p, j, failingHistory{}, logger)

	result := svc.Download(context.Background(), "https://example.com/d.zip",
		filepath.Join(fs.RootDir(), "d.zip"), false, true)
	assert.True(t, result.Succeeded, "history failures must not fail the operation")
}

type failingHistory struct{}

func (failingHistory) Record(op *domain.Operation) error { return errors.New("db locked") }

func (failingHistory) Recent(limit int) ([]*domain.Operation, error) { return nil, nil }

func (failingHistory) PruneOlderThan(age time.Duration) (int, error) { return 0, nil }
