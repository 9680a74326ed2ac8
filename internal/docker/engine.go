package docker

import (
	"context"

	"github.com/shinji-kodama/ved/internal/model"
)

// Engine bundles an SDK client with the docker CLI binary so callers can
// depend on a single value for every container operation.
type Engine struct {
	Client *Client
	Binary string
}

// NewEngine connects to the daemon and verifies it responds.
func NewEngine(ctx context.Context) (*Engine, error) {
	c, err := NewClient()
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return &Engine{Client: c, Binary: DefaultBinary}, nil
}

// Close releases the SDK client.
func (e *Engine) Close() error {
	return e.Client.Close()
}

func (e *Engine) List(ctx context.Context, namespace string) ([]model.ContainerInfo, error) {
	return ListManagedContainers(ctx, e.Client, namespace)
}

func (e *Engine) Inspect(ctx context.Context, name string) (model.ContainerInfo, error) {
	return InspectContainer(ctx, e.Client, name)
}

func (e *Engine) Run(ctx context.Context, spec RunSpec) (string, error) {
	return RunContainer(ctx, e.Binary, spec)
}

func (e *Engine) Stop(ctx context.Context, name string) error {
	return StopContainer(ctx, e.Client, name)
}

func (e *Engine) Logs(ctx context.Context, name string) (string, error) {
	return ContainerLogs(ctx, e.Client, name)
}

func (e *Engine) Exec(ctx context.Context, opts ExecOptions) error {
	return Exec(ctx, e.Binary, opts)
}

func (e *Engine) Build(ctx context.Context, opts BuildOptions) error {
	return Build(ctx, e.Binary, opts)
}
