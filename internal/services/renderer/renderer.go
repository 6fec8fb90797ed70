// Package renderer downloads source videos with yt-dlp and cuts and
// reframes clips with ffmpeg for vertical short-form platforms.
package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/services"
)

const (
	defaultDownloadTimeout = 5 * time.Minute
	defaultExtractTimeout  = 2 * time.Minute

	// Source downloads are capped at 720p for speed.
	downloadFormat = "best[height<=720]"
)

// PlatformSettings holds the encode parameters for one target platform.
type PlatformSettings struct {
	Width        int
	Height       int
	FPS          int
	MaxDuration  float64
	VideoCodec   string
	AudioCodec   string
	Bitrate      string
	AudioBitrate string
}

var platformSettings = map[string]PlatformSettings{
	"youtube_shorts": {
		Width: 1080, Height: 1920, FPS: 30, MaxDuration: 60,
		VideoCodec: "libx264", AudioCodec: "aac", Bitrate: "3M", AudioBitrate: "128k",
	},
	"tiktok": {
		Width: 1080, Height: 1920, FPS: 30, MaxDuration: 600,
		VideoCodec: "libx264", AudioCodec: "aac", Bitrate: "4M", AudioBitrate: "128k",
	},
	"instagram_reels": {
		Width: 1080, Height: 1920, FPS: 30, MaxDuration: 90,
		VideoCodec: "libx264", AudioCodec: "aac", Bitrate: "3.5M", AudioBitrate: "128k",
	},
}

// SettingsFor returns the encode settings for a platform, falling back to
// YouTube Shorts for unknown platforms.
func SettingsFor(platform string) PlatformSettings {
	if settings, ok := platformSettings[platform]; ok {
		return settings
	}
	return platformSettings["youtube_shorts"]
}

// Renderer shells out to yt-dlp and ffmpeg.
type Renderer struct {
	ytdlpBinary     string
	ffmpegBinary    string
	ffprobeBinary   string
	downloadDir     string
	clipsDir        string
	downloadTimeout time.Duration
	extractTimeout  time.Duration
}

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	YtdlpBinary     string
	FFmpegBinary    string
	FFprobeBinary   string
	DownloadDir     string
	ClipsDir        string
	DownloadTimeout time.Duration
	ExtractTimeout  time.Duration
}

// New constructs a Renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		ytdlpBinary:     opts.YtdlpBinary,
		ffmpegBinary:    opts.FFmpegBinary,
		ffprobeBinary:   opts.FFprobeBinary,
		downloadDir:     opts.DownloadDir,
		clipsDir:        opts.ClipsDir,
		downloadTimeout: opts.DownloadTimeout,
		extractTimeout:  opts.ExtractTimeout,
	}
	if r.ytdlpBinary == "" {
		r.ytdlpBinary = "yt-dlp"
	}
	if r.ffmpegBinary == "" {
		r.ffmpegBinary = "ffmpeg"
	}
	if r.ffprobeBinary == "" {
		r.ffprobeBinary = "ffprobe"
	}
	if r.downloadTimeout <= 0 {
		r.downloadTimeout = defaultDownloadTimeout
	}
	if r.extractTimeout <= 0 {
		r.extractTimeout = defaultExtractTimeout
	}
	return r
}

// Download fetches a YouTube video and returns the local file path.
func (r *Renderer) Download(ctx context.Context, videoID string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", services.Wrap(services.ErrValidation, "renderer", "download", "video id required", nil)
	}
	if err := os.MkdirAll(r.downloadDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "renderer", "download", "create download dir", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.downloadTimeout)
	defer cancel()

	args := downloadArgs(r.downloadDir, videoID)
	cmd := exec.CommandContext(ctx, r.ytdlpBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", services.Wrap(services.ErrTimeout, "renderer", "download",
				fmt.Sprintf("video %s exceeded %s", videoID, r.downloadTimeout), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "renderer", "download",
			fmt.Sprintf("yt-dlp: %s", strings.TrimSpace(string(output))), err)
	}

	path, ok := findDownloadedFile(r.downloadDir, videoID)
	if !ok {
		return "", services.Wrap(services.ErrExternalTool, "renderer", "download",
			fmt.Sprintf("downloaded file not found for %s", videoID), nil)
	}
	return path, nil
}

// ExtractClip cuts [start, end) out of a source file without re-encoding
// and returns the clip path.
func (r *Renderer) ExtractClip(ctx context.Context, sourcePath string, start, end float64) (string, error) {
	if end <= start {
		return "", services.Wrap(services.ErrValidation, "renderer", "extract clip",
			fmt.Sprintf("invalid range %.1f-%.1f", start, end), nil)
	}
	if err := os.MkdirAll(r.clipsDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "renderer", "extract clip", "create clips dir", err)
	}

	outputPath := clipPath(r.clipsDir, sourcePath, start, end)

	ctx, cancel := context.WithTimeout(ctx, r.extractTimeout)
	defer cancel()

	args := extractArgs(sourcePath, start, end, outputPath)
	cmd := exec.CommandContext(ctx, r.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "renderer", "extract clip",
			fmt.Sprintf("ffmpeg: %s", strings.TrimSpace(string(output))), err)
	}
	return outputPath, nil
}

// RenderVertical crops and scales a clip to the 9:16 frame a platform
// expects and returns the rendered path.
func (r *Renderer) RenderVertical(ctx context.Context, inputPath, platform string) (string, error) {
	settings := SettingsFor(platform)

	width, height, err := r.probeDimensions(ctx, inputPath)
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(r.clipsDir, fmt.Sprintf("%s_%s.mp4", stem, platform))

	ctx, cancel := context.WithTimeout(ctx, r.extractTimeout)
	defer cancel()

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vf", cropFilter(width, height, settings),
		"-r", fmt.Sprintf("%d", settings.FPS),
		"-c:v", settings.VideoCodec,
		"-b:v", settings.Bitrate,
		"-c:a", settings.AudioCodec,
		"-b:a", settings.AudioBitrate,
		outputPath,
	}
	cmd := exec.CommandContext(ctx, r.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "renderer", "render vertical",
			fmt.Sprintf("ffmpeg: %s", strings.TrimSpace(string(output))), err)
	}
	return outputPath, nil
}

// Cleanup removes an intermediate file. Missing files are not an error.
func (r *Renderer) Cleanup(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrExternalTool, "renderer", "cleanup", path, err)
	}
	return nil
}

func (r *Renderer) probeDimensions(ctx context.Context, inputPath string) (int, int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		inputPath,
	}
	cmd := exec.CommandContext(ctx, r.ffprobeBinary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "renderer", "probe", inputPath, err)
	}

	var probe struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, 0, services.Wrap(services.ErrExternalTool, "renderer", "probe", "decode ffprobe output", err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].Width == 0 || probe.Streams[0].Height == 0 {
		return 0, 0, services.Wrap(services.ErrExternalTool, "renderer", "probe",
			fmt.Sprintf("no video stream dimensions in %s", inputPath), nil)
	}
	return probe.Streams[0].Width, probe.Streams[0].Height, nil
}

func downloadArgs(downloadDir, videoID string) []string {
	return []string{
		"-f", downloadFormat,
		"-o", filepath.Join(downloadDir, "%(id)s.%(ext)s"),
		"--quiet",
		"--no-warnings",
		"https://www.youtube.com/watch?v=" + videoID,
	}
}

func extractArgs(sourcePath string, start, end float64, outputPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourcePath,
		"-ss", fmt.Sprintf("%.2f", start),
		"-t", fmt.Sprintf("%.2f", end-start),
		"-c", "copy",
		"-avoid_negative_ts", "1",
		outputPath,
	}
}

func clipPath(clipsDir, sourcePath string, start, end float64) string {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(clipsDir, fmt.Sprintf("%s_%.0f-%.0f.mp4", stem, start, end))
}

func findDownloadedFile(downloadDir, videoID string) (string, bool) {
	for _, ext := range []string{"mp4", "mkv", "webm"} {
		path := filepath.Join(downloadDir, videoID+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// cropFilter centers a source frame inside the target aspect ratio before
// scaling. Wide sources crop left/right, tall sources crop top/bottom.
func cropFilter(width, height int, settings PlatformSettings) string {
	targetAspect := float64(settings.Height) / float64(settings.Width)
	if float64(height)/float64(width) >= targetAspect {
		cropHeight := int(math.Round(float64(width) * targetAspect))
		if cropHeight > height {
			cropHeight = height
		}
		cropY := (height - cropHeight) / 2
		return fmt.Sprintf("crop=%d:%d:0:%d,scale=%d:%d", width, cropHeight, cropY, settings.Width, settings.Height)
	}
	cropWidth := int(float64(height) / targetAspect)
	cropX := (width - cropWidth) / 2
	return fmt.Sprintf("crop=%d:%d:%d:0,scale=%d:%d", cropWidth, height, cropX, settings.Width, settings.Height)
}

// HealthCheck verifies the external binaries are on the PATH.
func (r *Renderer) HealthCheck() services.Health {
	for _, binary := range []string{r.ytdlpBinary, r.ffmpegBinary, r.ffprobeBinary} {
		if _, err := exec.LookPath(binary); err != nil {
			return services.Unhealthy("renderer", fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return services.Healthy("renderer")
}
