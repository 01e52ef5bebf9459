package localport

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/oddshellnick/osn-system-utils/internal/workerpool"
)

// RandomFreePort asks the OS for an ephemeral port by binding to port 0 on
// 127.0.0.1, then releases it. The returned port is free at release time
// but may be reused by anyone before the caller binds it.
func RandomFreePort() (int, error) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("bind ephemeral port: %w", err)
	}
	defer ln.Close()

	return ln.Addr().(*net.TCPAddr).Port, nil
}

// tryBind reports whether a TCP bind on 127.0.0.1:port succeeds; the
// socket is released immediately.
func tryBind(port int) bool {
	ln, err := net.Listen("tcp4", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// ProbeRange bind-probes every port in [start, end) in parallel and
// returns the free ones sorted ascending. Unlike FreePorts this verifies
// each port with a real bind instead of diffing the socket table, at the
// cost of end-start syscalls fanned over the worker pool.
func (s *Scanner) ProbeRange(start, end int) []int {
	if start < 1 {
		start = 1
	}
	if end > 65536 {
		end = 65536
	}
	if start >= end {
		return nil
	}

	pool := workerpool.New(s.workers, end-start)

	var mu sync.Mutex
	var free []int

	for port := start; port < end; port++ {
		port := port
		pool.Submit(func() {
			if s.probe(port) {
				mu.Lock()
				free = append(free, port)
				mu.Unlock()
			}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool.StopAccepting()
	pool.Drain(ctx)

	sort.Ints(free)
	log.Debug("range probe completed", "start", start, "end", end, "free", len(free))
	return free
}
