package proctable

import (
	"errors"
	"regexp"
	"sort"
	"testing"
)

// fakeSource serves canned entries and records the attribute set requested.
type fakeSource struct {
	entries   []Entry
	requested []string
	err       error
}

func (f *fakeSource) List(attrs []string) ([]Entry, error) {
	f.requested = attrs
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func procEntry(pid int32, name string, cpu float64) Entry {
	return Entry{Snapshot: Snapshot{
		"pid":         pid,
		"name":        name,
		"status":      "running",
		"cpu_percent": cpu,
		"memory_info": map[string]any{"rss": uint64(1024 * pid)},
	}}
}

func TestBuildFilterCombination(t *testing.T) {
	src := &fakeSource{entries: []Entry{
		procEntry(1, "init", 1),
		procEntry(2, "svc-api", 75),
		procEntry(3, "svc-worker", 30),
		procEntry(4, "browser", 90),
	}}

	rows, err := NewBuilder(src).Build(nil,
		Above("cpu_percent", 50),
		Regex("name", regexp.MustCompile("svc")),
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: %v", len(rows), rows)
	}
	if rows[0]["Name"] != "svc-api" {
		t.Errorf("row name = %v, want svc-api", rows[0]["Name"])
	}
}

func TestBuildRowsHaveExactlyRequestedColumns(t *testing.T) {
	src := &fakeSource{entries: []Entry{procEntry(7, "svc", 10)}}

	columns := map[string]string{
		"Process": "name",
		"RSS":     "memory_info.rss",
		"Missing": "memory_info.shared",
	}
	rows, err := NewBuilder(src).Build(columns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if len(row) != len(columns) {
		t.Errorf("row has %d columns, want %d: %v", len(row), len(columns), row)
	}
	for name := range columns {
		if _, ok := row[name]; !ok {
			t.Errorf("row missing column %q", name)
		}
	}
	if row["RSS"] != uint64(7168) {
		t.Errorf("RSS = %v, want 7168", row["RSS"])
	}
	if row["Missing"] != nil {
		t.Errorf("absent column = %v, want nil", row["Missing"])
	}
}

func TestBuildDefaultColumns(t *testing.T) {
	src := &fakeSource{entries: []Entry{procEntry(1, "init", 0)}}

	rows, err := NewBuilder(src).Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	row := rows[0]
	for _, col := range []string{"PID", "Name", "Status"} {
		if _, ok := row[col]; !ok {
			t.Errorf("default row missing column %q", col)
		}
	}
}

func TestBuildSkipsTransientEntriesSilently(t *testing.T) {
	src := &fakeSource{entries: []Entry{
		procEntry(1, "alive", 0),
		{Err: errors.New("process 2 vanished")},
		procEntry(3, "alive-too", 0),
	}}

	rows, err := NewBuilder(src).Build(nil)
	if err != nil {
		t.Fatalf("transient entry should not fail the query: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
}

func TestBuildFetchSetCoversColumnsAndFilters(t *testing.T) {
	src := &fakeSource{entries: nil}

	columns := map[string]string{"RSS": "memory_info.rss", "PID": "pid"}
	_, err := NewBuilder(src).Build(columns,
		Above("cpu_percent", 1),
		Regex("name", regexp.MustCompile(".")),
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []string{"cpu_percent", "memory_info", "name", "pid"}
	got := append([]string(nil), src.requested...)
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("fetch set = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fetch set = %v, want %v", got, want)
		}
	}
}

func TestBuildEnumerationFailureSurfaces(t *testing.T) {
	src := &fakeSource{err: errors.New("cannot read process table")}
	if _, err := NewBuilder(src).Build(nil); err == nil {
		t.Fatal("enumeration-wide failure must surface")
	}
}

func TestBuildRejectsMalformedColumnPath(t *testing.T) {
	src := &fakeSource{}
	if _, err := NewBuilder(src).Build(map[string]string{"Bad": "a..b"}); err == nil {
		t.Fatal("expected error for malformed column path")
	}
}

func TestSystemSourceRejectsUnknownAttribute(t *testing.T) {
	if _, err := NewSystemSource().List([]string{"no_such_attr"}); err == nil {
		t.Fatal("expected error for unknown attribute")
	}
}

func TestSystemSourceListsSelf(t *testing.T) {
	entries, err := NewSystemSource().List([]string{"pid", "name"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one process")
	}
	found := 0
	for _, e := range entries {
		if e.Err == nil {
			found++
		}
	}
	if found == 0 {
		t.Fatal("every entry failed its fetch")
	}
}
