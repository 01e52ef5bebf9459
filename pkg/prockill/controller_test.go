package prockill

import (
	"errors"
	"testing"
)

// fakeHandle records which signals it received.
type fakeHandle struct {
	pid        int32
	name       string
	nameErr    error
	termErr    error
	killErr    error
	children   []Handle
	childErr   error
	terminated int
	killed     int
}

func (h *fakeHandle) PID() int32 { return h.pid }

func (h *fakeHandle) Name() (string, error) { return h.name, h.nameErr }

func (h *fakeHandle) Terminate() error {
	h.terminated++
	return h.termErr
}

func (h *fakeHandle) Kill() error {
	h.killed++
	return h.killErr
}

func (h *fakeHandle) Children(recursive bool) ([]Handle, error) {
	if h.childErr != nil {
		return nil, h.childErr
	}
	return h.children, nil
}

type fakeSource struct {
	byPID   map[int32]*fakeHandle
	handles []Handle
	listErr error
}

func (s *fakeSource) ResolveByPID(pid int32) (Handle, error) {
	if h, ok := s.byPID[pid]; ok {
		return h, nil
	}
	return nil, errors.New("process does not exist")
}

func (s *fakeSource) Handles() ([]Handle, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.handles, nil
}

func (s *fakeSource) PIDExists(pid int32) (bool, error) {
	_, ok := s.byPID[pid]
	return ok, nil
}

func TestKillByPIDMissingIsIdempotentFailure(t *testing.T) {
	c := NewController(&fakeSource{byPID: map[int32]*fakeHandle{}})

	// Already-dead PID fails both times without raising.
	if c.KillByPID(999, Options{}) {
		t.Fatal("first kill of a dead PID should report failure")
	}
	if c.KillByPID(999, Options{}) {
		t.Fatal("second kill of a dead PID should report failure")
	}
}

func TestKillByPIDGracefulVsForce(t *testing.T) {
	h := &fakeHandle{pid: 10, name: "svc"}
	c := NewController(&fakeSource{byPID: map[int32]*fakeHandle{10: h}})

	if !c.KillByPID(10, Options{}) {
		t.Fatal("kill should succeed")
	}
	if h.terminated != 1 || h.killed != 0 {
		t.Errorf("graceful: terminated=%d killed=%d, want 1/0", h.terminated, h.killed)
	}

	if !c.KillByPID(10, Options{Force: true}) {
		t.Fatal("force kill should succeed")
	}
	if h.killed != 1 {
		t.Errorf("force: killed=%d, want 1", h.killed)
	}
}

func TestKillByPIDTreeAttemptsEveryMember(t *testing.T) {
	childA := &fakeHandle{pid: 11, name: "worker-a"}
	childB := &fakeHandle{pid: 12, name: "worker-b", termErr: errors.New("already exited")}
	root := &fakeHandle{pid: 10, name: "svc", children: []Handle{childA, childB}}
	c := NewController(&fakeSource{byPID: map[int32]*fakeHandle{10: root}})

	if !c.KillByPID(10, Options{Tree: true}) {
		t.Fatal("tree kill should succeed when root resolved")
	}

	// All three received an attempt; childB's failure was swallowed.
	if root.terminated != 1 {
		t.Errorf("root attempts = %d, want 1", root.terminated)
	}
	if childA.terminated != 1 {
		t.Errorf("childA attempts = %d, want 1", childA.terminated)
	}
	if childB.terminated != 1 {
		t.Errorf("childB attempts = %d, want 1", childB.terminated)
	}
}

func TestKillByPIDTreeDiscoveryFailureDegradesToRoot(t *testing.T) {
	root := &fakeHandle{pid: 10, name: "svc", childErr: errors.New("access denied")}
	c := NewController(&fakeSource{byPID: map[int32]*fakeHandle{10: root}})

	if !c.KillByPID(10, Options{Tree: true}) {
		t.Fatal("discovery failure must not abort the root kill")
	}
	if root.terminated != 1 {
		t.Errorf("root attempts = %d, want 1", root.terminated)
	}
}

func TestKillByNameCaseInsensitiveByDefault(t *testing.T) {
	w1 := &fakeHandle{pid: 21, name: "worker"}
	w2 := &fakeHandle{pid: 22, name: "Worker"}
	other := &fakeHandle{pid: 23, name: "workerd"} // exact match only
	c := NewController(&fakeSource{handles: []Handle{w1, w2, other}})

	pids, err := c.KillByName("WORKER", Options{})
	if err != nil {
		t.Fatalf("KillByName failed: %v", err)
	}
	if len(pids) != 2 || pids[0] != 21 || pids[1] != 22 {
		t.Errorf("pids = %v, want [21 22]", pids)
	}
	if other.terminated != 0 {
		t.Error("substring-adjacent name must not be killed")
	}
}

func TestKillByNameCaseSensitive(t *testing.T) {
	w1 := &fakeHandle{pid: 21, name: "worker"}
	w2 := &fakeHandle{pid: 22, name: "Worker"}
	c := NewController(&fakeSource{handles: []Handle{w1, w2}})

	pids, err := c.KillByName("Worker", Options{CaseSensitive: true})
	if err != nil {
		t.Fatalf("KillByName failed: %v", err)
	}
	if len(pids) != 1 || pids[0] != 22 {
		t.Errorf("pids = %v, want [22]", pids)
	}
}

func TestKillByNameSkipsUnreadableNames(t *testing.T) {
	bad := &fakeHandle{pid: 30, nameErr: errors.New("access denied")}
	good := &fakeHandle{pid: 31, name: "svc"}
	c := NewController(&fakeSource{handles: []Handle{bad, good}})

	pids, err := c.KillByName("svc", Options{})
	if err != nil {
		t.Fatalf("KillByName failed: %v", err)
	}
	if len(pids) != 1 || pids[0] != 31 {
		t.Errorf("pids = %v, want [31]", pids)
	}
}

func TestKillByNameEnumerationFailureSurfaces(t *testing.T) {
	c := NewController(&fakeSource{listErr: errors.New("cannot list processes")})
	if _, err := c.KillByName("svc", Options{}); err == nil {
		t.Fatal("enumeration failure must surface")
	}
}

func TestNameExists(t *testing.T) {
	c := NewController(&fakeSource{handles: []Handle{
		&fakeHandle{pid: 1, name: "Init"},
	}})

	if ok, _ := c.NameExists("init", false); !ok {
		t.Error("case-insensitive existence check should match")
	}
	if ok, _ := c.NameExists("init", true); ok {
		t.Error("case-sensitive existence check should not match")
	}
	if ok, _ := c.NameExists("missing", false); ok {
		t.Error("nonexistent name matched")
	}
}

func TestPIDExists(t *testing.T) {
	c := NewController(&fakeSource{byPID: map[int32]*fakeHandle{5: {pid: 5}}})

	if ok, _ := c.PIDExists(5); !ok {
		t.Error("live PID should exist")
	}
	if ok, _ := c.PIDExists(6); ok {
		t.Error("dead PID should not exist")
	}
}
