package proctable

import "strings"

// Snapshot maps requested attribute names to their raw values for one
// process at one point in time. Nested attributes (memory_info, cpu_times)
// are stored as nested map[string]any so dotted paths can index into them.
type Snapshot map[string]any

// Value is the result of resolving an attribute path: either a found raw
// value or an explicit absence marker. Absence is data, not an error, so
// a predicate can fail closed without aborting the whole query.
type Value struct {
	Raw     any
	Present bool
}

// Found wraps a raw value in a present Value.
func Found(v any) Value { return Value{Raw: v, Present: true} }

// Absent is the resolution result for a missing or nil attribute.
var Absent = Value{}

// Resolve walks a dotted path through nested mappings in a snapshot.
// A missing segment, a nil value, or an intermediate value that is not a
// mapping all resolve to Absent. A path with no dot is a plain lookup.
func Resolve(snap Snapshot, path string) Value {
	cur := any(map[string]any(snap))

	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return Absent
		}
		v, ok := m[segment]
		if !ok || v == nil {
			return Absent
		}
		cur = v
	}

	return Found(cur)
}
