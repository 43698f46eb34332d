package fetch

import (
	"TuneRelay/config"
	"TuneRelay/utils"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// YTDLP retrieves audio by shelling out to yt-dlp with MP3 extraction.
type YTDLP struct {
	binary  string
	bitrate int
}

// NewYTDLP builds a yt-dlp fetcher from the process configuration.
func NewYTDLP() *YTDLP {
	return &YTDLP{
		binary:  config.AppConfig.YTDLPPath,
		bitrate: config.AppConfig.AudioBitrate,
	}
}

type mediaInfo struct {
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
}

// Fetch downloads and transcodes the link into a single MP3 inside a
// fresh working directory. The caller owns the directory.
func (y *YTDLP) Fetch(ctx context.Context, sourceURL string) (*Artifact, error) {
	workDir := filepath.Join(os.TempDir(), "tunerelay-"+utils.GetToken())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}

	args := []string{
		"-f", fmt.Sprintf("bestaudio[abr<=%d]/bestaudio", y.bitrate),
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", fmt.Sprintf("%dK", y.bitrate),
		"-o", filepath.Join(workDir, "input.%(ext)s"),
		"--write-info-json",
		"--no-playlist",
		sourceURL,
	}
	cmd := exec.CommandContext(ctx, y.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(workDir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(output))
	}

	path := filepath.Join(workDir, "input.mp3")
	stat, err := os.Stat(path)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("yt-dlp produced no audio file: %w", err)
	}

	info := readInfo(filepath.Join(workDir, "input.info.json"))
	return &Artifact{
		Path:      path,
		Size:      stat.Size(),
		Title:     info.Title,
		Performer: info.Uploader,
		WorkDir:   workDir,
	}, nil
}

func readInfo(path string) mediaInfo {
	var info mediaInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info
	}
	_ = json.Unmarshal(data, &info)
	return info
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
