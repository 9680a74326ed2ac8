package video

import (
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/ved/internal/model"
)

// Format is a container extension ved treats as video, with the ffmpeg
// encoders used when writing it.
type Format struct {
	Ext        string
	VideoCodec string
	AudioCodec string
}

// Formats lists the known video formats. Discovery walks them in order.
var Formats = []Format{
	{Ext: "mp4", VideoCodec: "libx264", AudioCodec: "aac"},
	{Ext: "ogv", VideoCodec: "libtheora", AudioCodec: "libvorbis"},
	{Ext: "webm", VideoCodec: "libvpx", AudioCodec: "libvorbis"},
	{Ext: "avi", VideoCodec: "mpeg4", AudioCodec: "libmp3lame"},
	{Ext: "mov", VideoCodec: "libx264", AudioCodec: "aac"},
}

// AudioCodecs are the encoders accepted by `convert --audio-codec`.
var AudioCodecs = []string{"aac", "libmp3lame", "libvorbis"}

// preferredAudioCodec overrides the audio encoder when clipping.
var preferredAudioCodec = map[string]string{
	"mp4": "aac",
}

// Extensions returns the known extensions without dots.
func Extensions() []string {
	out := make([]string, len(Formats))
	for i, f := range Formats {
		out[i] = f.Ext
	}
	return out
}

// LookupFormat returns the format for ext, with or without a leading dot.
func LookupFormat(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range Formats {
		if f.Ext == ext {
			return f, true
		}
	}
	return Format{}, false
}

// IsVideo reports whether path has a known video extension.
func IsVideo(path string) bool {
	_, ok := LookupFormat(filepath.Ext(path))
	return ok
}

// PreferredAudioCodec returns the audio encoder clips of path should use,
// or "" to let ffmpeg pick.
func PreferredAudioCodec(path string) string {
	return preferredAudioCodec[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
}

// ValidateExtension returns a usage error unless path has a video
// extension.
func ValidateExtension(path string) error {
	if IsVideo(path) {
		return nil
	}
	return model.UsageError("file extension %q not found in known video file format extensions: %s",
		filepath.Ext(path), strings.Join(Extensions(), ", "))
}
