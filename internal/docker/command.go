package docker

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/shinji-kodama/ved/internal/model"
)

// DefaultBinary is the docker CLI executable looked up on PATH.
const DefaultBinary = "docker"

// Mount is a bind mount passed to `docker run -v`.
type Mount struct {
	Source string
	Target string
}

// RunSpec describes a detached container started with `docker run`.
// The CLI is used rather than ContainerCreate so that ExtraArgs can carry
// any flag a user would type, exactly as the DCKROPT variable did.
type RunSpec struct {
	Name          string
	Image         string
	Labels        map[string]string
	HostPort      int
	ContainerPort int
	Mounts        []Mount
	WorkDir       string
	// Remove adds --rm so the daemon deletes the container once stopped.
	Remove bool
	// ExtraArgs are inserted before the image reference.
	ExtraArgs []string
	// Command overrides the image's default command.
	Command []string
}

// RunArgs builds the argument list for `docker run -d`.
func RunArgs(spec RunSpec) []string {
	args := []string{"run", "-d"}
	if spec.Remove {
		args = append(args, "--rm")
	}
	args = append(args, "--name", spec.Name)
	args = append(args, LabelArgs(spec.Labels)...)
	if spec.HostPort > 0 && spec.ContainerPort > 0 {
		args = append(args, "-p", strconv.Itoa(spec.HostPort)+":"+strconv.Itoa(spec.ContainerPort))
	}
	for _, m := range spec.Mounts {
		args = append(args, "-v", m.Source+":"+m.Target)
	}
	if spec.WorkDir != "" {
		args = append(args, "-w", spec.WorkDir)
	}
	args = append(args, spec.ExtraArgs...)
	args = append(args, spec.Image)
	args = append(args, spec.Command...)
	return args
}

// ExecOptions describes a command run inside a running container.
type ExecOptions struct {
	Container string
	Command   []string
	// Interactive keeps stdin open (-i); TTY allocates a terminal (-t).
	Interactive bool
	TTY         bool
	WorkDir     string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// ExecArgs builds the argument list for `docker exec`.
func ExecArgs(opts ExecOptions) []string {
	args := []string{"exec"}
	if opts.Interactive {
		args = append(args, "-i")
	}
	if opts.TTY {
		args = append(args, "-t")
	}
	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}
	args = append(args, opts.Container)
	return append(args, opts.Command...)
}

// BuildOptions describes one `docker build` of a multi-stage target.
type BuildOptions struct {
	ContextDir string
	Dockerfile string
	Target     string
	Tag        string
	Stdout     io.Writer
	Stderr     io.Writer
}

// BuildArgs builds the argument list for `docker build`.
func BuildArgs(opts BuildOptions) []string {
	args := []string{"build"}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	return append(args, contextDir)
}

// SplitOptions splits a shell-style option string such as
// `--gpus all -e "TOKEN=a b"` into arguments.
func SplitOptions(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(raw)
	if err != nil {
		return nil, model.UsageError("cannot parse docker options %q: %v", raw, err)
	}
	return args, nil
}

// RunContainer starts spec in the background and returns the new
// container ID printed by `docker run -d`.
func RunContainer(ctx context.Context, binary string, spec RunSpec) (string, error) {
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), RunArgs(spec)...)
	output, err := cmd.Output()
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker run failed for container %q: %s", spec.Name, stderrOf(err)),
			err,
		)
	}
	return strings.TrimSpace(string(output)), nil
}

// Exec runs a command inside a container with the caller's streams
// attached. A non-zero exit of the command is returned as a CLIError
// carrying ExitGeneralError.
func Exec(ctx context.Context, binary string, opts ExecOptions) error {
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), ExecArgs(opts)...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("command %q failed in container %q", strings.Join(opts.Command, " "), opts.Container),
			err,
		)
	}
	return nil
}

// Build runs `docker build` with output streamed to the given writers.
func Build(ctx context.Context, binary string, opts BuildOptions) error {
	cmd := exec.CommandContext(ctx, binaryOrDefault(binary), BuildArgs(opts)...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("docker build of target %q failed", opts.Target),
			err,
		)
	}
	return nil
}

func binaryOrDefault(binary string) string {
	if binary == "" {
		return DefaultBinary
	}
	return binary
}

// stderrOf extracts captured stderr from an *exec.ExitError.
func stderrOf(err error) string {
	if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
		return strings.TrimSpace(string(ee.Stderr))
	}
	return err.Error()
}
