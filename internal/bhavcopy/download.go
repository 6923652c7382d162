package bhavcopy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Downloader fetches the daily full bhavcopy and caches it on disk.
type Downloader struct {
	ArchiveURL string
	CacheDir   string
	Client     *http.Client
	Logger     *zap.Logger
}

// NewDownloader creates a Downloader with a 30 second timeout.
func NewDownloader(archiveURL, cacheDir string, logger *zap.Logger) *Downloader {
	return &Downloader{
		ArchiveURL: strings.TrimRight(archiveURL, "/"),
		CacheDir:   cacheDir,
		Client:     &http.Client{Timeout: 30 * time.Second},
		Logger:     logger.Named("bhavcopy"),
	}
}

// CacheFileName is the local name of a day's report, e.g. cm01DEC2025bhav.csv.
func CacheFileName(date time.Time) string {
	return "cm" + strings.ToUpper(date.Format("02Jan2006")) + "bhav.csv"
}

// RemoteFileName is the archive name of a day's report.
func RemoteFileName(date time.Time) string {
	return "sec_bhavdata_full_" + date.Format("02012006") + ".csv"
}

// PreviousDay is the default report date; today's file is usually not published yet.
func PreviousDay(now time.Time) time.Time {
	return now.AddDate(0, 0, -1)
}

// Fetch returns the path of the cached report for date, downloading it when absent.
func (d *Downloader) Fetch(ctx context.Context, date time.Time) (string, error) {
	path := filepath.Join(d.CacheDir, CacheFileName(date))
	if _, err := os.Stat(path); err == nil {
		d.Logger.Info("using cached file", zap.String("path", path))
		return path, nil
	}

	url := d.ArchiveURL + "/" + RemoteFileName(date)
	d.Logger.Info("downloading bhavcopy", zap.String("date", date.Format("2006-01-02")), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download bhavcopy: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download bhavcopy: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(d.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	// Write to a temp file first so a failed transfer never leaves a partial cache hit.
	tmp, err := os.CreateTemp(d.CacheDir, ".bhav-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("save bhavcopy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("save bhavcopy: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("save bhavcopy: %w", err)
	}
	d.Logger.Info("downloaded", zap.String("path", path))
	return path, nil
}
