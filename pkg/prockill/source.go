package prockill

import (
	"errors"

	"github.com/shirou/gopsutil/v3/process"
)

// System returns a controller over the live OS process table.
func System() *Controller {
	return NewController(systemSource{})
}

type systemSource struct{}

func (systemSource) ResolveByPID(pid int32) (Handle, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	return systemHandle{p}, nil
}

func (systemSource) Handles() ([]Handle, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(procs))
	for _, p := range procs {
		handles = append(handles, systemHandle{p})
	}
	return handles, nil
}

func (systemSource) PIDExists(pid int32) (bool, error) {
	return process.PidExists(pid)
}

type systemHandle struct {
	p *process.Process
}

func (h systemHandle) PID() int32            { return h.p.Pid }
func (h systemHandle) Name() (string, error) { return h.p.Name() }
func (h systemHandle) Terminate() error      { return h.p.Terminate() }
func (h systemHandle) Kill() error           { return h.p.Kill() }

// Children expands one level through gopsutil and recurses in-process;
// a branch that vanishes or denies access mid-walk is dropped, not fatal.
func (h systemHandle) Children(recursive bool) ([]Handle, error) {
	kids, err := h.p.Children()
	if err != nil {
		if errors.Is(err, process.ErrorNoChildren) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]Handle, 0, len(kids))
	for _, k := range kids {
		child := systemHandle{k}
		out = append(out, child)
		if recursive {
			if grandkids, err := child.Children(true); err == nil {
				out = append(out, grandkids...)
			}
		}
	}
	return out, nil
}
