// Package docker provides Docker Engine API wrappers and container
// lifecycle operations for the ved development environment.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - The ved.* label schema used to find the containers ved started
//   - Read operations through the Engine SDK: list, inspect, logs, stop
//   - Operations that mirror familiar CLI flags through the docker
//     binary: run, exec, build
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
