package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration. The names are
// kept from the Makefile that used to drive the development container.
const (
	EnvNamespace     = "DCTNR"
	EnvNotebookDir   = "INTDR"
	EnvPauseSeconds  = "PSECS"
	EnvDockerOptions = "DCKROPT"
)

// projectFiles are probed in order in the working directory.
var projectFiles = []string{"ved.toml", "ved.yaml", "ved.yml", "ved.json", "ved.jsonc"}

// Environment configures the development container lifecycle.
type Environment struct {
	Namespace     string   `toml:"namespace" yaml:"namespace" json:"namespace"`
	NotebookDir   string   `toml:"notebook_dir" yaml:"notebook_dir" json:"notebook_dir"`
	PauseSeconds  int      `toml:"pause_seconds" yaml:"pause_seconds" json:"pause_seconds"`
	DockerOptions string   `toml:"docker_options" yaml:"docker_options" json:"docker_options"`
	Image         string   `toml:"image" yaml:"image" json:"image"`
	Dockerfile    string   `toml:"dockerfile" yaml:"dockerfile" json:"dockerfile"`
	BuildContext  string   `toml:"build_context" yaml:"build_context" json:"build_context"`
	DevTarget     string   `toml:"dev_target" yaml:"dev_target" json:"dev_target"`
	RuntimeTarget string   `toml:"runtime_target" yaml:"runtime_target" json:"runtime_target"`
	ContainerPort int      `toml:"container_port" yaml:"container_port" json:"container_port"`
	HostPortBase  int      `toml:"host_port_base" yaml:"host_port_base" json:"host_port_base"`
	WorkDir       string   `toml:"work_dir" yaml:"work_dir" json:"work_dir"`
	StateFile     string   `toml:"state_file" yaml:"state_file" json:"state_file"`
	CleanPatterns []string `toml:"clean_patterns" yaml:"clean_patterns" json:"clean_patterns"`
}

// Video configures the ffmpeg tool chain.
type Video struct {
	FFmpegBinary     string `toml:"ffmpeg_binary" yaml:"ffmpeg_binary" json:"ffmpeg_binary"`
	FFprobeBinary    string `toml:"ffprobe_binary" yaml:"ffprobe_binary" json:"ffprobe_binary"`
	ProbeConcurrency int    `toml:"probe_concurrency" yaml:"probe_concurrency" json:"probe_concurrency"`
}

// Site describes a page family the link scraper is allowed to process.
type Site struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Domain      string `toml:"domain" yaml:"domain" json:"domain"`
	Pattern     string `toml:"pattern" yaml:"pattern" json:"pattern"`
	DownloadDir string `toml:"download_dir" yaml:"download_dir" json:"download_dir"`
}

// Scrape configures the scrapers and the yt-dlp downloader.
type Scrape struct {
	DownloadRoot          string  `toml:"download_root" yaml:"download_root" json:"download_root"`
	YtDlpBinary           string  `toml:"ytdlp_binary" yaml:"ytdlp_binary" json:"ytdlp_binary"`
	SleepInterval         float64 `toml:"sleep_interval" yaml:"sleep_interval" json:"sleep_interval"`
	MaxSleepInterval      float64 `toml:"max_sleep_interval" yaml:"max_sleep_interval" json:"max_sleep_interval"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds" yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	UserAgent             string  `toml:"user_agent" yaml:"user_agent" json:"user_agent"`
	BoardDomain           string  `toml:"board_domain" yaml:"board_domain" json:"board_domain"`
	BoardAPIBase          string  `toml:"board_api_base" yaml:"board_api_base" json:"board_api_base"`
	BoardFileBase         string  `toml:"board_file_base" yaml:"board_file_base" json:"board_file_base"`
	Sites                 []Site  `toml:"sites" yaml:"sites" json:"sites"`
}

// Config is the full ved configuration.
type Config struct {
	Environment Environment         `toml:"environment" yaml:"environment" json:"environment"`
	Tasks       map[string][]string `toml:"tasks" yaml:"tasks" json:"tasks"`
	Video       Video               `toml:"video" yaml:"video" json:"video"`
	Scrape      Scrape              `toml:"scrape" yaml:"scrape" json:"scrape"`

	// WorkingDir is the directory the configuration was resolved against.
	WorkingDir string `toml:"-" yaml:"-" json:"-"`
}

// DefaultConfigPath returns the absolute path to the user-level configuration file.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ved", "config.toml"), nil
}

// Load locates, parses, normalizes and validates the configuration. It
// returns the config, the path that was read and whether a file existed.
func Load(path string) (*Config, string, bool, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", false, fmt.Errorf("working directory: %w", err)
	}
	return load(path, wd, os.LookupEnv)
}

func load(path, workingDir string, lookupEnv func(string) (string, bool)) (*Config, string, bool, error) {
	cfg := Default()
	cfg.WorkingDir = workingDir

	resolvedPath, exists, err := resolveConfigPath(path, workingDir)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		cfg.Tasks = nil
		if err := decode(resolvedPath, data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
		cfg.mergeDefaultTasks()
	}

	if err := cfg.applyEnv(lookupEnv); err != nil {
		return nil, "", false, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// decode picks the parser from the file extension.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

func resolveConfigPath(path, workingDir string) (string, bool, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(workingDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", path)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return path, true, nil
	}

	for _, name := range projectFiles {
		candidate := filepath.Join(workingDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// mergeDefaultTasks restores built-in tasks the file did not redefine.
func (c *Config) mergeDefaultTasks() {
	if c.Tasks == nil {
		c.Tasks = make(map[string][]string)
	}
	for name, commands := range defaultTasks() {
		if _, ok := c.Tasks[name]; !ok {
			c.Tasks[name] = commands
		}
	}
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvNamespace); ok && strings.TrimSpace(v) != "" {
		c.Environment.Namespace = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv(EnvNotebookDir); ok && strings.TrimSpace(v) != "" {
		c.Environment.NotebookDir = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv(EnvPauseSeconds); ok && strings.TrimSpace(v) != "" {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer number of seconds, got %q", EnvPauseSeconds, v)
		}
		c.Environment.PauseSeconds = secs
	}
	if v, ok := lookupEnv(EnvDockerOptions); ok {
		c.Environment.DockerOptions = v
	}
	return nil
}

// ResolvePath makes p absolute relative to the configuration's working directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkingDir, p)
}

// StatePath is the absolute path of the running-containers state file.
func (c *Config) StatePath() string {
	return c.ResolvePath(c.Environment.StateFile)
}

// NotebookPath is the absolute path of the notebook search root.
func (c *Config) NotebookPath() string {
	return c.ResolvePath(c.Environment.NotebookDir)
}

// FindSite returns the configured site with the given name.
func (c *Config) FindSite(name string) (Site, bool) {
	for _, s := range c.Scrape.Sites {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Site{}, false
}
