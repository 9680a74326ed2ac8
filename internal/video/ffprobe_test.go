package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/model"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "audio", "codec_name": "aac"},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720,
     "r_frame_rate": "30/1", "avg_frame_rate": "30000/1001", "duration": "12.0"}
  ],
  "format": {"filename": "a.mp4", "duration": "12.345", "size": "2048"}
}`

// writeScript installs an executable shell script and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs require a POSIX shell")
	}
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func TestFFprobeProbe(t *testing.T) {
	bin := writeScript(t, "ffprobe", "cat <<'JSON'\n"+probeJSON+"\nJSON\n")

	info, err := FFprobe{Binary: bin}.Probe(context.Background(), "a.mp4")
	require.NoError(t, err)

	assert.Equal(t, "a.mp4", info.Path)
	assert.InDelta(t, 12.345, info.Duration, 1e-9)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, int64(2048), info.Size)
}

func TestFFprobeFailure(t *testing.T) {
	bin := writeScript(t, "ffprobe", "echo 'a.mp4: Invalid data found' >&2\nexit 1\n")

	_, err := FFprobe{Binary: bin}.Probe(context.Background(), "a.mp4")
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitMediaToolFailed, cliErr.Code)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestProbeResultInfo(t *testing.T) {
	_, err := ProbeResult{Streams: []Stream{{CodecType: "audio"}}}.Info("song.mp4")
	assert.Error(t, err, "audio-only files are rejected")

	info, err := ProbeResult{
		Streams: []Stream{{CodecType: "video", Duration: "5.5", RFrameRate: "25/1", AvgFrameRate: "0/0"}},
		Format:  ProbeFormat{Duration: "N/A"},
	}.Info("v.webm")
	require.NoError(t, err)
	assert.Equal(t, 5.5, info.Duration)
	assert.Equal(t, 25.0, info.FPS)
}

func TestParseFrameRate(t *testing.T) {
	tests := map[string]float64{
		"30/1":       30,
		"24000/1001": 24000.0 / 1001.0,
		"0/0":        0,
		"25":         25,
		"":           0,
		"x/y":        0,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.InDelta(t, want, ParseFrameRate(in), 1e-9)
		})
	}
}

// stubProber returns canned results and counts concurrent calls.
type stubProber struct {
	fail     string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubProber) Probe(_ context.Context, path string) (model.VideoInfo, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if path == s.fail {
		return model.VideoInfo{}, errors.New("broken " + path)
	}
	return model.VideoInfo{Path: path, Duration: float64(len(path))}, nil
}

func TestProbeAllKeepsOrder(t *testing.T) {
	paths := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	p := &stubProber{}

	infos, err := ProbeAll(context.Background(), p, paths, 2)
	require.NoError(t, err)
	require.Len(t, infos, len(paths))
	for i, info := range infos {
		assert.Equal(t, paths[i], info.Path)
	}
	assert.LessOrEqual(t, p.peak.Load(), int32(2))
}

func TestProbeAllFails(t *testing.T) {
	_, err := ProbeAll(context.Background(), &stubProber{fail: "bb"}, []string{"a", "bb", "c"}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken bb")
}
