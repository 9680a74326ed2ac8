package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"

	"github.com/shinji-kodama/ved/internal/model"
)

// histogramBins holds 256 bins for each of the R, G and B channels.
const histogramBins = 3 * 256

// FrameEntropy returns the Shannon entropy, in bits, of the combined RGB
// channel histogram of an rgb24 frame.
func FrameEntropy(frame []byte) float64 {
	if len(frame) == 0 {
		return 0
	}
	var hist [histogramBins]int
	for i, v := range frame {
		hist[(i%3)*256+int(v)]++
	}
	total := float64(len(frame))
	var h float64
	for _, n := range hist {
		if n == 0 {
			continue
		}
		p := float64(n) / total
		h -= p * math.Log2(p)
	}
	return h
}

// AverageEntropy reads consecutive rgb24 frames of frameSize bytes from r
// and returns the mean frame entropy and the frame count. A trailing
// partial frame is ignored.
func AverageEntropy(r io.Reader, frameSize int) (float64, int, error) {
	if frameSize <= 0 {
		return 0, 0, fmt.Errorf("invalid frame size %d", frameSize)
	}
	buf := make([]byte, frameSize)
	var sum float64
	frames := 0
	for {
		_, err := io.ReadFull(r, buf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return 0, frames, err
		}
		sum += FrameEntropy(buf)
		frames++
	}
	if frames == 0 {
		return 0, 0, nil
	}
	return sum / float64(frames), frames, nil
}

// EntropyArgs builds the ffmpeg arguments that decode src to raw rgb24
// frames on stdout.
func EntropyArgs(src string) []string {
	return []string{"-v", "error", "-hide_banner", "-nostdin", "-i", src, "-an", "-f", "rawvideo", "-pix_fmt", "rgb24", "-"}
}

// Entropy decodes every frame of the probed video and returns the average
// frame entropy.
func (f FFmpeg) Entropy(ctx context.Context, info model.VideoInfo) (float64, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return 0, model.NewCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("%s: unknown frame size", info.Path))
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary(), EntropyArgs(info.Path)...)
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, model.WrapCLIError(model.ExitMediaToolFailed, "start ffmpeg", err)
	}
	avg, frames, readErr := AverageEntropy(stdout, info.Width*info.Height*3)
	if readErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	if readErr != nil {
		return 0, readErr
	}
	if waitErr != nil {
		return 0, model.WrapCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("ffmpeg decode %s: %s", info.Path, bytes.TrimSpace(stderr.Bytes())), waitErr)
	}
	if frames == 0 {
		return 0, model.NewCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("%s: no frames decoded", info.Path))
	}
	return avg, nil
}
