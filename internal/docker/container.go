package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/shinji-kodama/ved/internal/model"
)

// ErrContainerNotFound is wrapped by operations that address a container
// by name when the daemon does not know it.
var ErrContainerNotFound = errors.New("container not found")

// ListManagedContainers returns every container carrying the ved
// management label, including stopped ones. When namespace is non-empty
// only that project's containers are returned. Filtering happens
// server-side.
func ListManagedContainers(ctx context.Context, cli *Client, namespace string) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)
	if namespace != "" {
		filterArgs.Add("label", LabelNamespace+"="+namespace)
	}

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	return managedInfos(containers), nil
}

// managedInfos converts list entries, oldest first. Entries without the
// management label are dropped even though the daemon filter should
// already have excluded them.
func managedInfos(containers []container.Summary) []model.ContainerInfo {
	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		if !IsManaged(c.Labels) {
			continue
		}
		result = append(result, summaryToInfo(c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.Before(result[j].Created)
	})
	return result
}

// summaryToInfo maps a list entry to the domain model. Docker prefixes
// names with "/", which is stripped.
func summaryToInfo(c container.Summary) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	info := model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Image:         c.Image,
		Status:        model.ParseContainerStatus(string(c.State)),
		Created:       time.Unix(c.Created, 0).UTC(),
		Labels:        c.Labels,
	}
	ApplyLabels(&info)
	return info
}

// InspectContainer looks a container up by name or ID. A container the
// daemon does not know, or one without the ved management label, is
// reported with StatusMissing and an error wrapping ErrContainerNotFound.
func InspectContainer(ctx context.Context, cli *Client, name string) (model.ContainerInfo, error) {
	resp, err := cli.Inner().ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return model.ContainerInfo{ContainerName: name, Status: model.StatusMissing},
				fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return model.ContainerInfo{}, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to inspect container %q", name),
			err,
		)
	}

	info := model.ContainerInfo{ContainerName: name, Status: model.StatusExited}
	if resp.ContainerJSONBase != nil {
		info.ContainerID = resp.ID
		info.ContainerName = strings.TrimPrefix(resp.Name, "/")
		if resp.State != nil {
			info.Status = model.ParseContainerStatus(string(resp.State.Status))
		}
		if ts, err := time.Parse(time.RFC3339Nano, resp.Created); err == nil {
			info.Created = ts.UTC()
		}
	}
	if resp.Config != nil {
		info.Image = resp.Config.Image
		info.Labels = resp.Config.Labels
	}
	return managedOrMissing(info)
}

// managedOrMissing reports a container ved did not start as missing, so a
// reused name in the state file never resolves to a foreign container.
func managedOrMissing(info model.ContainerInfo) (model.ContainerInfo, error) {
	if !IsManaged(info.Labels) {
		return model.ContainerInfo{ContainerName: info.ContainerName, Status: model.StatusMissing},
			fmt.Errorf("%w: %s is not managed by ved", ErrContainerNotFound, info.ContainerName)
	}
	ApplyLabels(&info)
	return info, nil
}

// StopContainer asks the daemon to stop a container, waiting the
// daemon's default grace period before SIGKILL. Containers started with
// --rm are removed by the daemon once stopped.
func StopContainer(ctx context.Context, cli *Client, name string) error {
	err := cli.Inner().ContainerStop(ctx, name, container.StopOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", name),
			err,
		)
	}
	return nil
}

// ContainerLogs returns the combined stdout and stderr of a container.
// Containers started without a TTY multiplex both streams, so the
// payload is demultiplexed with stdcopy. Jupyter writes its banner to
// stderr, so both streams are needed.
func ContainerLogs(ctx context.Context, cli *Client, name string) (string, error) {
	rc, err := cli.Inner().ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to read logs of container %q", name),
			err,
		)
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		return "", fmt.Errorf("read logs of container %q: %w", name, err)
	}
	return stdout.String() + stderr.String(), nil
}

// GroupContainersByNamespace groups containers by their ved.namespace
// label. Containers without the label are skipped.
func GroupContainersByNamespace(containers []model.ContainerInfo) map[string][]model.ContainerInfo {
	groups := make(map[string][]model.ContainerInfo)
	for _, c := range containers {
		ns := c.Labels[LabelNamespace]
		if ns == "" {
			continue
		}
		groups[ns] = append(groups[ns], c)
	}
	return groups
}

// RunningContainers filters containers down to those that are running.
func RunningContainers(containers []model.ContainerInfo) []model.ContainerInfo {
	var out []model.ContainerInfo
	for _, c := range containers {
		if c.Status == model.StatusRunning {
			out = append(out, c)
		}
	}
	return out
}
