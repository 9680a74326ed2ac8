package devenv

import (
	"context"

	"github.com/shinji-kodama/ved/internal/docker"
	"github.com/shinji-kodama/ved/internal/model"
)

// Runtime is the container engine the Manager drives. *docker.Engine
// implements it; tests use an in-memory fake.
type Runtime interface {
	List(ctx context.Context, namespace string) ([]model.ContainerInfo, error)
	Inspect(ctx context.Context, name string) (model.ContainerInfo, error)
	Run(ctx context.Context, spec docker.RunSpec) (string, error)
	Stop(ctx context.Context, name string) error
	Logs(ctx context.Context, name string) (string, error)
	Exec(ctx context.Context, opts docker.ExecOptions) error
	Build(ctx context.Context, opts docker.BuildOptions) error
}

var _ Runtime = (*docker.Engine)(nil)
