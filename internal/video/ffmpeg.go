package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
)

// FFmpeg runs the ffmpeg binary.
type FFmpeg struct {
	Binary string
}

func (f FFmpeg) binary() string {
	if strings.TrimSpace(f.Binary) == "" {
		return "ffmpeg"
	}
	return f.Binary
}

var commonArgs = []string{"-v", "error", "-hide_banner", "-nostdin", "-y"}

// encoderArgs picks encoders from the destination extension. An explicit
// audio codec wins over the format default.
func encoderArgs(dst, audioCodec string) []string {
	var args []string
	if f, ok := LookupFormat(filepath.Ext(dst)); ok {
		args = append(args, "-c:v", f.VideoCodec)
		if audioCodec == "" {
			audioCodec = f.AudioCodec
		}
	}
	if audioCodec != "" {
		args = append(args, "-c:a", audioCodec)
	}
	return args
}

// ClipArgs builds the ffmpeg arguments that cut [start, stop) from src
// into dst. A nil stop runs to the end of the input.
func ClipArgs(src, dst, start string, stop *string, audioCodec string) []string {
	args := append([]string{}, commonArgs...)
	args = append(args, "-ss", start)
	if stop != nil {
		args = append(args, "-to", *stop)
	}
	args = append(args, "-i", src)
	args = append(args, encoderArgs(dst, audioCodec)...)
	return append(args, dst)
}

// ConvertArgs builds the ffmpeg arguments that transcode src into dst.
func ConvertArgs(src, dst, audioCodec string) []string {
	args := append([]string{}, commonArgs...)
	args = append(args, "-i", src)
	args = append(args, encoderArgs(dst, audioCodec)...)
	return append(args, dst)
}

// Clip cuts a clip of src into dst using the preferred audio codec of src.
func (f FFmpeg) Clip(ctx context.Context, src, dst, start string, stop *string) error {
	return f.run(ctx, ClipArgs(src, dst, start, stop, PreferredAudioCodec(src)))
}

// Convert transcodes src into dst.
func (f FFmpeg) Convert(ctx context.Context, src, dst, audioCodec string) error {
	return f.run(ctx, ConvertArgs(src, dst, audioCodec))
}

func (f FFmpeg) run(ctx context.Context, args []string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary(), args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return model.WrapCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("ffmpeg %s: %s", args[len(args)-1], msg), err)
	}
	return nil
}
