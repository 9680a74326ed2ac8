// Package port picks the host port a notebook container is published on.
//
// The Scanner asks the operating system whether a TCP port can be bound.
// The Allocator walks upward from a base port and skips both ports the OS
// reports busy and ports already claimed by other ved containers, which
// may not hold a host socket yet while they are starting.
package port
