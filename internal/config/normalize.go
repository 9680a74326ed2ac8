package config

import (
	"path/filepath"
	"regexp"
	"strings"
)

// invalidNameChars matches characters Docker rejects in container names
// and image repositories.
var invalidNameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

func (c *Config) normalize() {
	c.normalizeEnvironment()
	c.normalizeVideo()
	c.normalizeScrape()
}

func (c *Config) normalizeEnvironment() {
	env := &c.Environment
	if strings.TrimSpace(env.Namespace) == "" {
		env.Namespace = filepath.Base(c.WorkingDir)
	}
	env.Namespace = SanitizeNamespace(env.Namespace)
	if strings.TrimSpace(env.Image) == "" {
		env.Image = env.Namespace + ":" + defaultImageTag
	}
	if strings.TrimSpace(env.NotebookDir) == "" {
		env.NotebookDir = defaultNotebookDir
	}
	if strings.TrimSpace(env.StateFile) == "" {
		env.StateFile = defaultStateFile
	}
	if strings.TrimSpace(env.WorkDir) == "" {
		env.WorkDir = defaultWorkDir
	}
	if strings.TrimSpace(env.Dockerfile) == "" {
		env.Dockerfile = defaultDockerfile
	}
	if strings.TrimSpace(env.BuildContext) == "" {
		env.BuildContext = defaultBuildContext
	}
	if env.ContainerPort == 0 {
		env.ContainerPort = defaultContainerPort
	}
	if env.HostPortBase == 0 {
		env.HostPortBase = defaultHostPortBase
	}
}

func (c *Config) normalizeVideo() {
	if strings.TrimSpace(c.Video.FFmpegBinary) == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Video.FFprobeBinary) == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Video.ProbeConcurrency <= 0 {
		c.Video.ProbeConcurrency = defaultProbeConcurrency
	}
}

func (c *Config) normalizeScrape() {
	s := &c.Scrape
	if strings.TrimSpace(s.DownloadRoot) == "" {
		s.DownloadRoot = defaultDownloadRoot
	}
	if strings.TrimSpace(s.YtDlpBinary) == "" {
		s.YtDlpBinary = defaultYtDlpBinary
	}
	if s.RequestTimeoutSeconds <= 0 {
		s.RequestTimeoutSeconds = defaultRequestTimeout
	}
	if strings.TrimSpace(s.UserAgent) == "" {
		s.UserAgent = defaultUserAgent
	}
	s.BoardAPIBase = strings.TrimRight(s.BoardAPIBase, "/")
	s.BoardFileBase = strings.TrimRight(s.BoardFileBase, "/")
	for i := range s.Sites {
		site := &s.Sites[i]
		site.Name = strings.TrimSpace(site.Name)
		site.Domain = strings.TrimSpace(site.Domain)
		if strings.TrimSpace(site.DownloadDir) == "" {
			site.DownloadDir = filepath.Join(s.DownloadRoot, site.Name)
		}
	}
}

// SanitizeNamespace lower-cases name and replaces characters that are not
// valid in Docker container names and image repositories.
func SanitizeNamespace(name string) string {
	cleaned := invalidNameChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	cleaned = strings.Trim(cleaned, "-._")
	if cleaned == "" {
		return "ved"
	}
	return cleaned
}
