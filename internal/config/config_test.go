package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateUserConfig points the user config directory at an empty temp dir
// so a developer's real ~/.config/ved/config.toml cannot leak into tests.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func noEnv(string) (string, bool) { return "", false }

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateUserConfig(t)
	wd := filepath.Join(t.TempDir(), "My Project")
	require.NoError(t, os.MkdirAll(wd, 0o755))

	cfg, _, exists, err := load("", wd, noEnv)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, "my-project", cfg.Environment.Namespace)
	assert.Equal(t, "my-project:dev", cfg.Environment.Image)
	assert.Equal(t, "notebooks", cfg.Environment.NotebookDir)
	assert.Equal(t, 5, cfg.Environment.PauseSeconds)
	assert.Empty(t, cfg.Environment.DockerOptions)
	assert.Equal(t, filepath.Join(wd, ".running_containers"), cfg.StatePath())
	assert.Equal(t, filepath.Join(wd, "notebooks"), cfg.NotebookPath())
	assert.Equal(t, []string{"isort .", "black .", "flake8 .", "mypy ."}, cfg.Tasks["lint"])
	assert.Equal(t, "ffprobe", cfg.Video.FFprobeBinary)
	assert.Equal(t, float64(3), cfg.Scrape.SleepInterval)
	assert.Equal(t, float64(10), cfg.Scrape.MaxSleepInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateUserConfig(t)
	wd := t.TempDir()

	cfg, _, _, err := load("", wd, envMap(map[string]string{
		EnvNamespace:     "Analysis",
		EnvNotebookDir:   "nb",
		EnvPauseSeconds:  "12",
		EnvDockerOptions: "--gpus all --shm-size 1g",
	}))
	require.NoError(t, err)

	assert.Equal(t, "analysis", cfg.Environment.Namespace)
	assert.Equal(t, "nb", cfg.Environment.NotebookDir)
	assert.Equal(t, 12, cfg.Environment.PauseSeconds)
	assert.Equal(t, "--gpus all --shm-size 1g", cfg.Environment.DockerOptions)
}

func TestLoadRejectsInvalidPauseSeconds(t *testing.T) {
	isolateUserConfig(t)
	_, _, _, err := load("", t.TempDir(), envMap(map[string]string{EnvPauseSeconds: "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PSECS")
}

func TestLoadTOMLProjectFile(t *testing.T) {
	isolateUserConfig(t)
	wd := t.TempDir()
	content := `
[environment]
namespace = "lab"
pause_seconds = 2
image = "registry.local/lab:dev"

[tasks]
lint = ["ruff check ."]

[[scrape.sites]]
name = "archive"
domain = "archive.example.org"
pattern = "^/details/.*"
`
	require.NoError(t, os.WriteFile(filepath.Join(wd, "ved.toml"), []byte(content), 0o644))

	cfg, path, exists, err := load("", wd, noEnv)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, filepath.Join(wd, "ved.toml"), path)

	assert.Equal(t, "lab", cfg.Environment.Namespace)
	assert.Equal(t, 2, cfg.Environment.PauseSeconds)
	assert.Equal(t, "registry.local/lab:dev", cfg.Environment.Image)
	assert.Equal(t, []string{"ruff check ."}, cfg.Tasks["lint"])
	// Built-in tasks that the file did not mention survive.
	assert.Equal(t, []string{"bash"}, cfg.Tasks["shell"])

	site, ok := cfg.FindSite("ARCHIVE")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("scrape", "archive"), site.DownloadDir)
}

func TestLoadYAMLAndJSONC(t *testing.T) {
	isolateUserConfig(t)

	t.Run("yaml", func(t *testing.T) {
		wd := t.TempDir()
		content := "environment:\n  notebook_dir: analysis\n  host_port_base: 9000\n"
		require.NoError(t, os.WriteFile(filepath.Join(wd, "ved.yaml"), []byte(content), 0o644))

		cfg, _, _, err := load("", wd, noEnv)
		require.NoError(t, err)
		assert.Equal(t, "analysis", cfg.Environment.NotebookDir)
		assert.Equal(t, 9000, cfg.Environment.HostPortBase)
	})

	t.Run("jsonc", func(t *testing.T) {
		wd := t.TempDir()
		content := `{
  // comments are allowed
  "environment": {"state_file": "state/.containers"},
  "video": {"ffmpeg_binary": "/opt/ffmpeg/bin/ffmpeg"},
}`
		require.NoError(t, os.WriteFile(filepath.Join(wd, "ved.jsonc"), []byte(content), 0o644))

		cfg, _, _, err := load("", wd, noEnv)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "state", ".containers"), cfg.StatePath())
		assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Video.FFmpegBinary)
	})
}

func TestLoadExplicitMissingPath(t *testing.T) {
	isolateUserConfig(t)
	_, _, _, err := load("missing.toml", t.TempDir(), noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"negative pause", func(c *Config) { c.Environment.PauseSeconds = -1 }, "pause_seconds"},
		{"container port", func(c *Config) { c.Environment.ContainerPort = 70000 }, "container_port"},
		{"host port base", func(c *Config) { c.Environment.HostPortBase = 80 }, "host_port_base"},
		{"empty task", func(c *Config) { c.Tasks["x"] = nil }, "tasks.x"},
		{"sleep order", func(c *Config) { c.Scrape.MaxSleepInterval = 1 }, "max_sleep_interval"},
		{"site without domain", func(c *Config) {
			c.Scrape.Sites = []Site{{Name: "a", Pattern: ".*"}}
		}, "domain is required"},
		{"site bad pattern", func(c *Config) {
			c.Scrape.Sites = []Site{{Name: "a", Domain: "a.org", Pattern: "("}}
		}, "invalid pattern"},
		{"duplicate sites", func(c *Config) {
			c.Scrape.Sites = []Site{
				{Name: "a", Domain: "a.org", Pattern: ".*"},
				{Name: "A", Domain: "b.org", Pattern: ".*"},
			}
		}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestSanitizeNamespace(t *testing.T) {
	tests := map[string]string{
		"module":        "module",
		"My Project":    "my-project",
		"  data/lab  ":  "data-lab",
		"--weird__":     "weird",
		"???":           "ved",
		"v1.2_analysis": "v1.2_analysis",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, SanitizeNamespace(input))
		})
	}
}
