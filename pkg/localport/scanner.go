// Package localport inspects and allocates TCP/UDP ports bound on
// localhost: socket-table queries through gopsutil, bind probes for
// availability, and free-port discovery over a fixed scan range.
package localport

import (
	"errors"
	"fmt"
	"sort"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/oddshellnick/osn-system-utils/internal/logging"
)

var log = logging.L("localport")

// Scan bounds for free-port discovery: inclusive start, exclusive end.
// Frozen at startup; nothing mutates them afterwards.
const (
	PortRangeStart = 1024
	PortRangeEnd   = 49151
)

// localhostIPs is the frozen set of local addresses recognized for
// "localhost" classification, including the wildcard binds.
var localhostIPs = map[string]struct{}{
	"127.0.0.1": {},
	"::1":       {},
	"0.0.0.0":   {},
	"::":        {},
}

// IsLocalhostIP reports whether ip is in the recognized localhost set.
func IsLocalhostIP(ip string) bool {
	_, ok := localhostIPs[ip]
	return ok
}

// ErrNoFreePort is returned when no free port exists in the scanned range.
var ErrNoFreePort = errors.New("no free port")

// Scanner queries the OS socket table and probes ports for availability.
// The socket listing and the bind probe are injectable so callers and
// tests can substitute fixtures for the live OS.
type Scanner struct {
	connections func() ([]gnet.ConnectionStat, error)
	probe       func(port int) bool
	workers     int
}

// NewScanner creates a scanner over the live OS socket table.
func NewScanner() *Scanner {
	return &Scanner{
		connections: func() ([]gnet.ConnectionStat, error) {
			return gnet.Connections("inet")
		},
		probe:   tryBind,
		workers: 64,
	}
}

// SetProbeWorkers bounds the parallelism of ProbeRange.
func (s *Scanner) SetProbeWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// IsPortFree reports whether a TCP bind on 127.0.0.1:port would succeed
// right now. The port is released immediately after the probe.
func (s *Scanner) IsPortFree(port int) bool {
	return s.probe(port)
}

// BusyPorts returns the sorted set of localhost ports with at least one
// bound socket, TCP or UDP.
func (s *Scanner) BusyPorts() ([]int, error) {
	conns, err := s.connections()
	if err != nil {
		return nil, fmt.Errorf("list sockets: %w", err)
	}

	seen := make(map[int]struct{})
	for _, c := range conns {
		if !IsLocalhostIP(c.Laddr.IP) {
			continue
		}
		seen[int(c.Laddr.Port)] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports, nil
}

// FreePorts returns the sorted ports of the scan range that have no bound
// localhost socket. This is a socket-table diff, not a bind probe: a port
// can still be lost to a race before the caller binds it.
func (s *Scanner) FreePorts() ([]int, error) {
	busy, err := s.BusyPorts()
	if err != nil {
		return nil, err
	}

	busySet := make(map[int]struct{}, len(busy))
	for _, port := range busy {
		busySet[port] = struct{}{}
	}

	free := make([]int, 0, PortRangeEnd-PortRangeStart-len(busySet))
	for port := PortRangeStart; port < PortRangeEnd; port++ {
		if _, ok := busySet[port]; !ok {
			free = append(free, port)
		}
	}
	return free, nil
}

// MinimumFreePort returns the lowest free port among the candidates, or,
// when no candidate is free (or none are given), the lowest free port in
// the scan range. Candidates outside 1-65535 are ignored.
func (s *Scanner) MinimumFreePort(candidates ...int) (int, error) {
	best := 0
	for _, port := range candidates {
		if port < 1 || port > 65535 {
			continue
		}
		if s.probe(port) && (best == 0 || port < best) {
			best = port
		}
	}
	if best != 0 {
		return best, nil
	}

	for port := PortRangeStart; port < PortRangeEnd; port++ {
		if s.probe(port) {
			return port, nil
		}
	}

	return 0, fmt.Errorf("%w found in range %d-%d", ErrNoFreePort, PortRangeStart, PortRangeEnd)
}

// PIDPorts maps each PID owning a localhost socket to its bound ports,
// deduplicated in socket-table order. Sockets without an owning PID are
// excluded.
func (s *Scanner) PIDPorts() (map[int32][]int, error) {
	conns, err := s.connections()
	if err != nil {
		return nil, fmt.Errorf("list sockets: %w", err)
	}

	result := make(map[int32][]int)
	for _, c := range conns {
		if c.Pid == 0 || !IsLocalhostIP(c.Laddr.IP) {
			continue
		}
		port := int(c.Laddr.Port)
		if !containsInt(result[c.Pid], port) {
			result[c.Pid] = append(result[c.Pid], port)
		}
	}
	return result, nil
}

// PIDAddresses maps each PID owning a localhost socket to its bound
// "ip:port" strings, deduplicated in socket-table order. IPv6 addresses
// are not bracketed; the strings are labels, not dialable endpoints.
func (s *Scanner) PIDAddresses() (map[int32][]string, error) {
	conns, err := s.connections()
	if err != nil {
		return nil, fmt.Errorf("list sockets: %w", err)
	}

	result := make(map[int32][]string)
	for _, c := range conns {
		if c.Pid == 0 || !IsLocalhostIP(c.Laddr.IP) {
			continue
		}
		addr := fmt.Sprintf("%s:%d", c.Laddr.IP, c.Laddr.Port)
		if !containsString(result[c.Pid], addr) {
			result[c.Pid] = append(result[c.Pid], addr)
		}
	}
	return result, nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
