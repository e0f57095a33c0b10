// Package httpclient implements the transfer and metadata probe capabilities
// over net/http.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ducnd58233/dataset-cache/internal/port"
)

// Options configures the HTTP client.
type Options struct {
	// TransferTimeout bounds a whole transfer. Zero means no timeout.
	TransferTimeout time.Duration

	// ProbeTimeout bounds a metadata probe.
	// Default: 10s
	ProbeTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		ProbeTimeout: 10 * time.Second,
		UserAgent:    "dataset-cache",
	}
}

// Client is an HTTP client implementing the transfer and probe capabilities.
type Client struct {
	transfer *http.Client
	probe    *http.Client
	opts     Options
}

// Ensure Client implements both consumed capabilities
var (
	_ port.Transferer     = (*Client)(nil)
	_ port.MetadataProber = (*Client)(nil)
)

// New creates a new Client with the given options.
func New(opts Options) *Client {
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = 10 * time.Second
	}

	return &Client{
		transfer: &http.Client{Timeout: opts.TransferTimeout},
		probe:    &http.Client{Timeout: opts.ProbeTimeout},
		opts:     opts,
	}
}

// Transfer GETs url and streams the body to destPath. The file is written
// through a temporary sibling and renamed into place so a failed transfer
// does not leave a partial file at destPath.
func (c *Client) Transfer(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.transfer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received %d response from %s", resp.StatusCode, url)
	}

	tempPath := destPath + ".downloading"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	_, err = io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("write destination file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("finalize destination file: %w", err)
	}

	return nil
}

// ContentType performs a HEAD request, following redirects, and returns the
// content-type response header.
func (c *Client) ContentType(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("received %d response from %s", resp.StatusCode, url)
	}

	return resp.Header.Get("Content-Type"), nil
}
