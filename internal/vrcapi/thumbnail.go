package vrcapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadThumbnail saves the image at thumbnailURL to destPath, creating
// the destination directory if absent. An empty URL is a no-op reported as
// an error so callers can record the record without a thumbnail.
func (c *Client) DownloadThumbnail(ctx context.Context, thumbnailURL, destPath string) error {
	if thumbnailURL == "" {
		return errors.New("no thumbnail url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return fmt.Errorf("build thumbnail request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("thumbnail fetch returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create thumbnail directory: %w", err)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create thumbnail file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("write thumbnail: %w", err)
	}
	return out.Close()
}
