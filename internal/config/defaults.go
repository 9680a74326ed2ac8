package config

const (
	defaultNotebookDir      = "notebooks"
	defaultPauseSeconds     = 5
	defaultImageTag         = "dev"
	defaultDockerfile       = "Dockerfile"
	defaultBuildContext     = "."
	defaultDevTarget        = "development"
	defaultRuntimeTarget    = "runtime"
	defaultContainerPort    = 8888
	defaultHostPortBase     = 8888
	defaultWorkDir          = "/home/jovyan/work"
	defaultStateFile        = ".running_containers"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultProbeConcurrency = 4
	defaultDownloadRoot     = "scrape"
	defaultYtDlpBinary      = "yt-dlp"
	defaultSleepInterval    = 3
	defaultMaxSleepInterval = 10
	defaultRequestTimeout   = 30
	defaultUserAgent        = "ved/dev"
	defaultBoardDomain      = "4chan.org"
	defaultBoardAPIBase     = "https://a.4cdn.org"
	defaultBoardFileBase    = "https://i.4cdn.org"
)

// defaultCleanPatterns mirrors the artefacts the old `make clean` target
// removed from a Python project tree.
var defaultCleanPatterns = []string{
	"**/__pycache__",
	"**/*.pyc",
	"**/.ipynb_checkpoints",
	".mypy_cache",
	".pytest_cache",
	"build",
	"dist",
	"*.egg-info",
}

// defaultTasks maps the old Makefile tooling targets to the commands they
// ran inside the development container.
func defaultTasks() map[string][]string {
	return map[string][]string{
		"tests":  {"pytest -m 'not slow'"},
		"pytest": {"pytest"},
		"isort":  {"isort ."},
		"black":  {"black ."},
		"flake8": {"flake8 ."},
		"mypy":   {"mypy ."},
		"lint":   {"isort .", "black .", "flake8 .", "mypy ."},
		"shell":  {"bash"},
	}
}

// Default returns a Config populated with repository defaults. Namespace
// and Image are left empty; normalize derives them from the working
// directory.
func Default() Config {
	return Config{
		Environment: Environment{
			NotebookDir:   defaultNotebookDir,
			PauseSeconds:  defaultPauseSeconds,
			Dockerfile:    defaultDockerfile,
			BuildContext:  defaultBuildContext,
			DevTarget:     defaultDevTarget,
			RuntimeTarget: defaultRuntimeTarget,
			ContainerPort: defaultContainerPort,
			HostPortBase:  defaultHostPortBase,
			WorkDir:       defaultWorkDir,
			StateFile:     defaultStateFile,
			CleanPatterns: append([]string(nil), defaultCleanPatterns...),
		},
		Tasks: defaultTasks(),
		Video: Video{
			FFmpegBinary:     defaultFFmpegBinary,
			FFprobeBinary:    defaultFFprobeBinary,
			ProbeConcurrency: defaultProbeConcurrency,
		},
		Scrape: Scrape{
			DownloadRoot:          defaultDownloadRoot,
			YtDlpBinary:           defaultYtDlpBinary,
			SleepInterval:         defaultSleepInterval,
			MaxSleepInterval:      defaultMaxSleepInterval,
			RequestTimeoutSeconds: defaultRequestTimeout,
			UserAgent:             defaultUserAgent,
			BoardDomain:           defaultBoardDomain,
			BoardAPIBase:          defaultBoardAPIBase,
			BoardFileBase:         defaultBoardFileBase,
		},
	}
}
