package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Downloader produces a local MP3 for a source URL. The returned path lives
// under destDir and may be removed by the caller after upload.
type Downloader interface {
	Download(ctx context.Context, sourceURL, destDir string) (path string, title string, err error)
}

// YTDLPDownloader shells out to yt-dlp for the stream and ffmpeg for the
// transcode, mirroring how the hosted download pipeline is built. Both
// binaries must be on PATH.
type YTDLPDownloader struct {
	YTDLPPath  string
	FFmpegPath string
}

func NewYTDLPDownloader() *YTDLPDownloader {
	return &YTDLPDownloader{
		YTDLPPath:  "yt-dlp",
		FFmpegPath: "ffmpeg",
	}
}

func (d *YTDLPDownloader) Download(ctx context.Context, sourceURL, destDir string) (string, string, error) {
	tempDir, err := os.MkdirTemp("", "audio_dl_")
	if err != nil {
		return "", "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Best available audio stream, one file, sanitized name.
	cmd := exec.CommandContext(ctx, d.YTDLPPath,
		"--format", "bestaudio/best",
		"--no-playlist",
		"--restrict-filenames",
		"--no-warnings",
		"--quiet",
		"--output", filepath.Join(tempDir, "%(title)s.%(ext)s"),
		sourceURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", "", fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return "", "", fmt.Errorf("read temp dir: %w", err)
	}
	if len(entries) == 0 {
		return "", "", fmt.Errorf("download produced no output file")
	}

	downloaded := entries[0].Name()
	title := strings.TrimSuffix(downloaded, filepath.Ext(downloaded))

	outPath := filepath.Join(destDir, title+".mp3")
	convert := exec.CommandContext(ctx, d.FFmpegPath,
		"-y",
		"-i", filepath.Join(tempDir, downloaded),
		"-acodec", "libmp3lame",
		"-b:a", "192k",
		outPath,
	)
	stderr.Reset()
	convert.Stderr = &stderr
	if err := convert.Run(); err != nil {
		return "", "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return outPath, title, nil
}
