package docker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shinji-kodama/ved/internal/model"
)

// Label keys stamped on every container ved starts. `ved env ps` finds
// containers through them, so they survive a lost state file.
const (
	// LabelPrefix is the common prefix for all ved labels.
	LabelPrefix = "ved."

	// LabelManagedBy marks a container as started by ved.
	// Value: always ManagedByValue.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelNamespace stores the project namespace (DCTNR).
	LabelNamespace = LabelPrefix + "namespace"

	// LabelHostPort stores the host port the notebook server is
	// published on.
	LabelHostPort = LabelPrefix + "host-port"

	// LabelRole stores what the container is for, e.g. "jupyter".
	LabelRole = LabelPrefix + "role"

	// LabelCreatedAt stores the RFC3339 start time in UTC.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the value of LabelManagedBy.
const ManagedByValue = "ved"

// RoleJupyter is the LabelRole value of notebook server containers.
const RoleJupyter = "jupyter"

// BuildLabels returns the label set for a container started in namespace.
func BuildLabels(namespace, role string, hostPort int, createdAt time.Time) map[string]string {
	labels := map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelNamespace: namespace,
		LabelRole:      role,
		LabelCreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
	if hostPort > 0 {
		labels[LabelHostPort] = strconv.Itoa(hostPort)
	}
	return labels
}

// LabelArgs renders labels as repeated --label flags for `docker run`.
// Keys are sorted so the argument list is deterministic.
func LabelArgs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, "--label", k+"="+labels[k])
	}
	return args
}

// IsManaged reports whether labels carry the ved management label.
func IsManaged(labels map[string]string) bool {
	return labels[LabelManagedBy] == ManagedByValue
}

// ParseHostPort reads LabelHostPort. A missing label yields 0 and no error.
func ParseHostPort(labels map[string]string) (int, error) {
	raw, ok := labels[LabelHostPort]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid %s label %q", LabelHostPort, raw)
	}
	return port, nil
}

// ApplyLabels fills the label-derived fields of info. Unparseable labels
// are ignored; the container is still reported.
func ApplyLabels(info *model.ContainerInfo) {
	info.Namespace = info.Labels[LabelNamespace]
	if port, err := ParseHostPort(info.Labels); err == nil {
		info.HostPort = port
	}
	if info.Created.IsZero() {
		if ts, err := time.Parse(time.RFC3339, info.Labels[LabelCreatedAt]); err == nil {
			info.Created = ts
		}
	}
}
