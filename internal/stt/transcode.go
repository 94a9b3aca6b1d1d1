// Package stt provides voice-message transcription: a local ffmpeg-based
// transcoder that converts Telegram OGG/Opus voice notes into MP3, and a
// client for the AssemblyAI speech-to-text API.
package stt

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegCommand is the default ffmpeg binary name resolved from PATH.
const FFmpegCommand = "ffmpeg"

// Transcoder converts voice-message audio into the container format accepted
// by the transcription API.
type Transcoder struct {
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewTranscoder creates a Transcoder using the given ffmpeg binary.
func NewTranscoder(ffmpegBinary string) *Transcoder {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Transcoder{ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcoder) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// OggToMP3 converts an OGG/Opus source file into an MP3 at dest.
func (t *Transcoder) OggToMP3(ctx context.Context, source, dest string) error {
	args := buildOggToMP3Args(source, dest)
	if t.commandRunner != nil {
		return t.commandRunner(ctx, t.ffmpegBinary, args...)
	}
	cmd := exec.CommandContext(ctx, t.ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildOggToMP3Args assembles the ffmpeg argument list for the conversion.
func buildOggToMP3Args(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-c:a", "libmp3lame",
		"-q:a", "4",
		dest,
	}
}
