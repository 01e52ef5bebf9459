package proctable

import (
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
)

// SystemSource reads the live OS process table through gopsutil.
type SystemSource struct{}

// NewSystemSource creates a source over the live process table.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// fetchers maps attribute names to per-process reads. Nested stats are
// flattened into map[string]any so dotted paths resolve into them.
var fetchers = map[string]func(p *process.Process) (any, error){
	"pid": func(p *process.Process) (any, error) {
		return p.Pid, nil
	},
	"ppid": func(p *process.Process) (any, error) {
		return p.Ppid()
	},
	"name": func(p *process.Process) (any, error) {
		return p.Name()
	},
	"status": func(p *process.Process) (any, error) {
		statuses, err := p.Status()
		if err != nil || len(statuses) == 0 {
			return nil, err
		}
		return statuses[0], nil
	},
	"username": func(p *process.Process) (any, error) {
		return p.Username()
	},
	"cmdline": func(p *process.Process) (any, error) {
		return p.Cmdline()
	},
	"exe": func(p *process.Process) (any, error) {
		return p.Exe()
	},
	"cwd": func(p *process.Process) (any, error) {
		return p.Cwd()
	},
	"create_time": func(p *process.Process) (any, error) {
		return p.CreateTime()
	},
	"num_threads": func(p *process.Process) (any, error) {
		return p.NumThreads()
	},
	"num_fds": func(p *process.Process) (any, error) {
		return p.NumFDs()
	},
	"nice": func(p *process.Process) (any, error) {
		return p.Nice()
	},
	"cpu_percent": func(p *process.Process) (any, error) {
		return p.CPUPercent()
	},
	"memory_percent": func(p *process.Process) (any, error) {
		return p.MemoryPercent()
	},
	"memory_info": func(p *process.Process) (any, error) {
		mi, err := p.MemoryInfo()
		if err != nil || mi == nil {
			return nil, err
		}
		return map[string]any{
			"rss":    mi.RSS,
			"vms":    mi.VMS,
			"swap":   mi.Swap,
			"data":   mi.Data,
			"stack":  mi.Stack,
			"locked": mi.Locked,
		}, nil
	},
	"cpu_times": func(p *process.Process) (any, error) {
		times, err := p.Times()
		if err != nil || times == nil {
			return nil, err
		}
		return map[string]any{
			"user":   times.User,
			"system": times.System,
			"iowait": times.Iowait,
		}, nil
	},
}

// Attributes lists every attribute name this source can fetch, sorted.
func Attributes() []string {
	names := make([]string, 0, len(fetchers))
	for name := range fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List enumerates all live processes and fetches the requested attributes
// for each. Unknown attribute names are caller-input errors and fail the
// whole call before enumeration. A process that vanishes mid-fetch yields
// an Entry with Err set; an attribute denied on a live process resolves
// to nil (Absent) rather than dropping the process.
func (s *SystemSource) List(attrs []string) ([]Entry, error) {
	for _, attr := range attrs {
		if _, ok := fetchers[attr]; !ok {
			return nil, fmt.Errorf("unknown process attribute %q", attr)
		}
	}

	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		entries = append(entries, fetchOne(p, attrs))
	}
	return entries, nil
}

func fetchOne(p *process.Process, attrs []string) Entry {
	snap := make(Snapshot, len(attrs))

	for _, attr := range attrs {
		v, err := fetchers[attr](p)
		if err != nil {
			// A dead process fails everything; probe liveness once and
			// mark the whole entry transient if it is gone.
			if exists, _ := process.PidExists(p.Pid); !exists {
				return Entry{Err: fmt.Errorf("process %d vanished: %w", p.Pid, err)}
			}
			// Alive but unreadable (access denied): absent attribute.
			snap[attr] = nil
			continue
		}
		snap[attr] = v
	}

	return Entry{Snapshot: snap}
}
