// Package video discovers video files and drives ffprobe and ffmpeg to
// inspect, clip, split, convert and measure them.
package video
