package port

import (
	"fmt"
	"net"
)

// Scanner checks whether ports are free on the host by binding them.
// Binding asks the OS directly, so no lsof or ss parsing is needed and no
// elevated permissions are required.
type Scanner struct {
	// Host is the bind address. Empty means all interfaces, which matches
	// where Docker publishes ports by default.
	Host string
}

// NewScanner creates a Scanner that probes all interfaces.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable reports whether a TCP listener can be opened on port.
// Out-of-range ports are reported as unavailable.
func (s *Scanner) IsPortAvailable(port int) bool {
	if port < 1 || port > 65535 {
		return false
	}
	listener, err := net.Listen("tcp", net.JoinHostPort(s.Host, fmt.Sprint(port)))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}
