// Package prockill terminates host-local processes by PID or by name,
// optionally expanding each target to its descendant tree. Termination is
// best-effort: a member of the kill plan that vanishes or denies access is
// skipped without failing the rest.
package prockill

import (
	"fmt"
	"strings"

	"github.com/oddshellnick/osn-system-utils/internal/logging"
)

var log = logging.L("prockill")

// Handle is one live process as resolved at plan time.
type Handle interface {
	PID() int32
	Name() (string, error)
	// Terminate delivers a graceful stop signal.
	Terminate() error
	// Kill delivers a forceful kill signal.
	Kill() error
	// Children enumerates the process's descendants; recursive expands the
	// whole transitive tree. No children is an empty slice, not an error.
	Children(recursive bool) ([]Handle, error)
}

// Source resolves and enumerates process handles.
type Source interface {
	ResolveByPID(pid int32) (Handle, error)
	Handles() ([]Handle, error)
	PIDExists(pid int32) (bool, error)
}

// Options control termination delivery.
type Options struct {
	Force bool // forceful kill signal instead of graceful stop
	Tree  bool // include transitive descendants discovered at plan time
	// CaseSensitive applies to name matching only (KillByName, NameExists).
	// Matching is always exact string equality, never a substring search.
	CaseSensitive bool
}

// Controller is the process lifecycle controller.
type Controller struct {
	source Source
}

// NewController creates a controller over the given process source.
func NewController(source Source) *Controller {
	return &Controller{source: source}
}

// KillByPID terminates the process with the given PID. True means the
// target resolved and termination was issued to every reachable member of
// the plan; it does not confirm the processes are gone. Callers needing a
// confirmed end-state should poll PIDExists afterwards. Calling again on an
// already-dead PID returns false without error.
func (c *Controller) KillByPID(pid int32, opts Options) bool {
	h, err := c.source.ResolveByPID(pid)
	if err != nil {
		log.Debug("target did not resolve", "pid", pid, "error", err)
		return false
	}
	return c.killHandle(h, opts)
}

// KillByName terminates every live process whose name equals name
// (case-insensitive unless opts.CaseSensitive). It returns the PIDs for
// which termination was initiated, in process-table order. The error covers
// enumeration-wide failure only; individual targets that vanish during the
// scan are simply excluded.
func (c *Controller) KillByName(name string, opts Options) ([]int32, error) {
	handles, err := c.source.Handles()
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	var killed []int32
	for _, h := range handles {
		if !nameMatches(h, name, opts.CaseSensitive) {
			continue
		}
		if c.killHandle(h, opts) {
			killed = append(killed, h.PID())
		}
	}
	return killed, nil
}

// PIDExists reports whether a process with the given PID is alive.
func (c *Controller) PIDExists(pid int32) (bool, error) {
	return c.source.PIDExists(pid)
}

// NameExists reports whether any live process has exactly the given name.
func (c *Controller) NameExists(name string, caseSensitive bool) (bool, error) {
	handles, err := c.source.Handles()
	if err != nil {
		return false, fmt.Errorf("enumerate processes: %w", err)
	}
	for _, h := range handles {
		if nameMatches(h, name, caseSensitive) {
			return true, nil
		}
	}
	return false, nil
}

// killHandle builds the kill plan for one resolved target and issues
// termination to each member independently. Failures on individual members
// (already exited, access denied) are swallowed; the call reports true
// because the root target resolved.
func (c *Controller) killHandle(root Handle, opts Options) bool {
	plan := []Handle{root}

	if opts.Tree {
		children, err := root.Children(true)
		if err != nil {
			// Tree discovery failing must not abort the root kill.
			log.Debug("descendant discovery failed, killing root only",
				"pid", root.PID(), "error", err)
		} else {
			plan = append(plan, children...)
		}
	}

	for _, target := range plan {
		var err error
		if opts.Force {
			err = target.Kill()
		} else {
			err = target.Terminate()
		}
		if err != nil {
			log.Debug("termination attempt failed", "pid", target.PID(), "error", err)
		}
	}

	return true
}

func nameMatches(h Handle, name string, caseSensitive bool) bool {
	hname, err := h.Name()
	if err != nil || hname == "" {
		return false
	}
	if caseSensitive {
		return hname == name
	}
	return strings.EqualFold(hname, name)
}
