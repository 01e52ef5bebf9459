package proctable

import (
	"fmt"
	"sort"

	"github.com/oddshellnick/osn-system-utils/internal/logging"
)

var log = logging.L("proctable")

// Entry pairs one enumerated process with the outcome of its attribute
// fetch. A non-nil Err marks a transient per-process failure (vanished or
// access denied); the builder drops the entry without failing the query.
type Entry struct {
	Snapshot Snapshot
	Err      error
}

// Source enumerates live processes, fetching only the requested top-level
// attributes per process. The returned error covers enumeration-wide
// failures only; per-process failures travel inside each Entry.
type Source interface {
	List(attrs []string) ([]Entry, error)
}

// Row maps caller-chosen column names to resolved attribute values.
// A column whose path resolved to Absent holds nil.
type Row map[string]any

// DefaultColumns is the projection used when the caller supplies none.
func DefaultColumns() map[string]string {
	return map[string]string{"PID": "pid", "Name": "name", "Status": "status"}
}

// Builder produces filtered, projected snapshots of the process table.
type Builder struct {
	source Source
}

// NewBuilder creates a builder over the given process source.
func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// NewSystemBuilder creates a builder over the live OS process table.
func NewSystemBuilder() *Builder {
	return NewBuilder(NewSystemSource())
}

// Build returns one row per live process that satisfies every filter,
// projected onto the given column->path mapping. Columns may be nil to get
// DefaultColumns. The result is a point-in-time best-effort snapshot:
// processes that vanish or deny access mid-query are silently skipped,
// and only malformed caller input or an enumeration-wide failure errors.
func (b *Builder) Build(columns map[string]string, filters ...Filter) ([]Row, error) {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}

	for _, path := range columns {
		if err := validatePath(path); err != nil {
			return nil, fmt.Errorf("invalid column: %w", err)
		}
	}

	preds, err := compile(filters)
	if err != nil {
		return nil, err
	}

	attrs := fetchSet(columns, filters)

	entries, err := b.source.List(attrs)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	rows := make([]Row, 0, len(entries))
	skipped := 0

scan:
	for _, entry := range entries {
		if entry.Err != nil {
			skipped++
			continue
		}

		for _, pred := range preds {
			if !pred(entry.Snapshot) {
				continue scan
			}
		}

		row := make(Row, len(columns))
		for name, path := range columns {
			row[name] = Resolve(entry.Snapshot, path).Raw
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		log.Debug("skipped transient processes", "skipped", skipped, "total", len(entries))
	}

	return rows, nil
}

// fetchSet is the union of the base attributes of every output column and
// every filter path. Under-fetching would make filters and projections see
// spurious absences, so everything referenced is requested up front.
func fetchSet(columns map[string]string, filters []Filter) []string {
	seen := make(map[string]struct{})
	for _, path := range columns {
		seen[basePath(path)] = struct{}{}
	}
	for _, f := range filters {
		seen[basePath(f.Path)] = struct{}{}
	}

	attrs := make([]string, 0, len(seen))
	for attr := range seen {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}
