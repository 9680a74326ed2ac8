package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
)

// ProbeResult is the parsed output of an ffprobe inspection.
type ProbeResult struct {
	Streams []Stream    `json:"streams"`
	Format  ProbeFormat `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Duration     string `json:"duration"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// ProbeFormat captures container-level metadata.
type ProbeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (model.VideoInfo, error)
}

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Probe runs ffprobe on path and reduces the result to a VideoInfo.
func (p FFprobe) Probe(ctx context.Context, path string) (model.VideoInfo, error) {
	res, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return model.VideoInfo{}, err
	}
	return res.Info(path)
}

// Inspect executes ffprobe against path and decodes its JSON report.
func Inspect(ctx context.Context, binary, path string) (ProbeResult, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return ProbeResult{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return ProbeResult{}, model.WrapCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("ffprobe %s: %s", path, stderrOf(err)), err)
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, model.WrapCLIError(model.ExitMediaToolFailed, "ffprobe parse", err)
	}
	return result, nil
}

// VideoStream returns the first video stream.
func (r ProbeResult) VideoStream() (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return s, true
		}
	}
	return Stream{}, false
}

// Info reduces the result to the fields the commands print. Files
// without a video stream are rejected.
func (r ProbeResult) Info(path string) (model.VideoInfo, error) {
	vs, ok := r.VideoStream()
	if !ok {
		return model.VideoInfo{}, model.NewCLIError(model.ExitMediaToolFailed,
			fmt.Sprintf("%s: no video stream", path))
	}
	duration := parseFloat(r.Format.Duration)
	if duration == 0 || math.IsNaN(duration) {
		duration = parseFloat(vs.Duration)
	}
	if math.IsNaN(duration) {
		duration = 0
	}
	fps := ParseFrameRate(vs.AvgFrameRate)
	if fps == 0 {
		fps = ParseFrameRate(vs.RFrameRate)
	}
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		size = 0
	}
	return model.VideoInfo{
		Path:     path,
		Duration: duration,
		FPS:      fps,
		Width:    vs.Width,
		Height:   vs.Height,
		Size:     int64(size),
	}, nil
}

// ParseFrameRate parses ffprobe rationals such as "30000/1001". Invalid
// or zero-denominator values yield 0.
func ParseFrameRate(v string) float64 {
	v = strings.TrimSpace(v)
	num, den, found := strings.Cut(v, "/")
	if !found {
		f := parseFloat(v)
		if math.IsNaN(f) {
			return 0
		}
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// stderrOf extracts captured stderr from an *exec.ExitError.
func stderrOf(err error) string {
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) > 0 {
		return strings.TrimSpace(string(ee.Stderr))
	}
	return err.Error()
}
