package model

import (
	"fmt"
	"strings"
	"time"
)

// ContainerStatus represents the lifecycle state of a managed container
// as reported by the Docker daemon.
//
//	[Started] → Running → [Stopped, removed by --rm]
//	Running → Exited (when the notebook server crashes without --rm)
type ContainerStatus string

const (
	// StatusRunning indicates the container process is alive.
	StatusRunning ContainerStatus = "running"

	// StatusExited indicates the container exists but its process ended.
	StatusExited ContainerStatus = "exited"

	// StatusMissing indicates a name is recorded in the state file but
	// no container with that name exists any more.
	StatusMissing ContainerStatus = "missing"
)

// String returns the string representation of ContainerStatus.
func (s ContainerStatus) String() string {
	return string(s)
}

// IsValid checks whether the ContainerStatus value is one of the
// predefined valid states.
func (s ContainerStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusExited, StatusMissing:
		return true
	default:
		return false
	}
}

// ParseContainerStatus converts a Docker state string to a ContainerStatus.
// Docker reports a handful of transitional states ("created", "paused",
// "restarting", "dead"); everything that is not running collapses into
// StatusExited so the CLI only has to reason about three states.
func ParseContainerStatus(s string) ContainerStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return StatusRunning
	case "":
		return StatusMissing
	default:
		return StatusExited
	}
}

// ContainerInfo holds runtime information about a container started by
// `ved env jupyter`. This data is fetched dynamically from the Docker API
// and the ved.* labels, not persisted anywhere else.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name. It is the
	// value recorded in the state file.
	ContainerName string `json:"containerName"`

	// Namespace is the project namespace (DCTNR) the container belongs to.
	Namespace string `json:"namespace"`

	// Image is the image reference the container was started from.
	Image string `json:"image"`

	// Status is the collapsed lifecycle state.
	Status ContainerStatus `json:"status"`

	// HostPort is the host port the notebook server is published on.
	// Zero when the label is missing.
	HostPort int `json:"hostPort,omitempty"`

	// Created is the container creation time.
	Created time.Time `json:"created"`

	// Labels is the full set of Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// ShortID returns the first 12 characters of the container ID, the same
// abbreviation `docker ps` uses.
func (c ContainerInfo) ShortID() string {
	if len(c.ContainerID) > 12 {
		return c.ContainerID[:12]
	}
	return c.ContainerID
}

// VideoInfo is the subset of probed metadata the video commands use.
type VideoInfo struct {
	// Path is the file that was probed.
	Path string `json:"path"`

	// Duration is the container duration in seconds.
	Duration float64 `json:"duration"`

	// FPS is the frame rate of the first video stream.
	FPS float64 `json:"fps"`

	// Width and Height are the frame dimensions of the first video stream.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// SplitPart describes one output file of a split operation.
type SplitPart struct {
	// Start is the start offset in seconds, formatted for ffmpeg.
	Start string `json:"start"`

	// Stop is the end offset in seconds. Nil means "until the end of
	// the file", which is used for the last part when a leftover tail
	// exists.
	Stop *string `json:"stop"`

	// Name is the output file name (no directory).
	Name string `json:"name"`
}

// StopString returns Stop or the literal "None" when the part runs to the
// end of the file. The dry-run listing prints this form.
func (p SplitPart) StopString() string {
	if p.Stop == nil {
		return "None"
	}
	return *p.Stop
}

// String returns a human-readable representation of the part.
func (p SplitPart) String() string {
	return fmt.Sprintf("%s [%s → %s]", p.Name, p.Start, p.StopString())
}
