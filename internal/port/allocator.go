package port

import (
	"fmt"

	"github.com/shinji-kodama/ved/internal/model"
)

// maxPort is the highest valid TCP port.
const maxPort = 65535

// Checker reports whether the OS lets a port be bound. *Scanner satisfies it.
type Checker interface {
	IsPortAvailable(port int) bool
}

// Allocator hands out host ports for notebook containers.
type Allocator struct {
	checker  Checker
	reserved map[int]bool
}

// NewAllocator creates an Allocator backed by checker.
func NewAllocator(checker Checker) *Allocator {
	return &Allocator{checker: checker, reserved: make(map[int]bool)}
}

// Reserve marks ports as taken regardless of what the OS reports. Zero
// values are ignored so ContainerInfo.HostPort can be passed directly.
func (a *Allocator) Reserve(ports ...int) {
	for _, p := range ports {
		if p > 0 {
			a.reserved[p] = true
		}
	}
}

// ReserveContainers reserves the host ports recorded on containers.
func (a *Allocator) ReserveContainers(containers []model.ContainerInfo) {
	for _, c := range containers {
		a.Reserve(c.HostPort)
	}
}

// Allocate returns the first port at or above base that is neither
// reserved nor busy, and reserves it.
func (a *Allocator) Allocate(base int) (int, error) {
	if base < 1 || base > maxPort {
		return 0, model.NewCLIError(model.ExitUsageError,
			fmt.Sprintf("host port base %d out of range (1-%d)", base, maxPort))
	}
	for p := base; p <= maxPort; p++ {
		if a.reserved[p] {
			continue
		}
		if a.checker.IsPortAvailable(p) {
			a.reserved[p] = true
			return p, nil
		}
	}
	return 0, model.NewCLIError(model.ExitGeneralError,
		fmt.Sprintf("no free host port at or above %d", base))
}
