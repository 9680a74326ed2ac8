package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ved/internal/model"
)

func TestBuildLabels(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("JST", 9*3600))
	labels := BuildLabels("lab", RoleJupyter, 8889, created)

	assert.Equal(t, map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelNamespace: "lab",
		LabelRole:      RoleJupyter,
		LabelHostPort:  "8889",
		LabelCreatedAt: "2026-03-01T00:30:00Z",
	}, labels)
	assert.True(t, IsManaged(labels))

	noPort := BuildLabels("lab", RoleJupyter, 0, created)
	_, ok := noPort[LabelHostPort]
	assert.False(t, ok, "host port label should be omitted when unset")
}

func TestLabelArgsSorted(t *testing.T) {
	args := LabelArgs(map[string]string{
		LabelRole:      RoleJupyter,
		LabelManagedBy: ManagedByValue,
	})
	assert.Equal(t, []string{
		"--label", "ved.managed-by=ved",
		"--label", "ved.role=jupyter",
	}, args)
}

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		name    string
		labels  map[string]string
		want    int
		wantErr bool
	}{
		{"missing", map[string]string{}, 0, false},
		{"valid", map[string]string{LabelHostPort: "8890"}, 8890, false},
		{"padded", map[string]string{LabelHostPort: " 9000 "}, 9000, false},
		{"not a number", map[string]string{LabelHostPort: "http"}, 0, true},
		{"out of range", map[string]string{LabelHostPort: "70000"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHostPort(tt.labels)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyLabels(t *testing.T) {
	info := model.ContainerInfo{
		ContainerName: "lab-jupyter-1a2b3c4d",
		Labels: map[string]string{
			LabelNamespace: "lab",
			LabelHostPort:  "8891",
			LabelCreatedAt: "2026-03-01T00:30:00Z",
		},
	}
	ApplyLabels(&info)

	assert.Equal(t, "lab", info.Namespace)
	assert.Equal(t, 8891, info.HostPort)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC), info.Created)

	broken := model.ContainerInfo{Labels: map[string]string{LabelHostPort: "x"}}
	ApplyLabels(&broken)
	assert.Zero(t, broken.HostPort)
	assert.True(t, broken.Created.IsZero())
}
