// Package deps reports whether the external programs ved drives are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/ved/internal/config"
)

// Requirement defines an external program ved relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the programs used by the configured commands. Only
// ffmpeg and ffprobe are required since every video command needs them.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "ffmpeg", Command: cfg.Video.FFmpegBinary, Description: "clip, split, convert and entropy"},
		{Name: "ffprobe", Command: cfg.Video.FFprobeBinary, Description: "video duration and frame rate"},
		{Name: "docker", Command: "docker", Description: "env commands", Optional: true},
		{Name: "yt-dlp", Command: cfg.Scrape.YtDlpBinary, Description: "scrape downloads", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable required programs.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
