package proctable

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Kind names a predicate family. A given attribute may appear in any number
// of filters, across kinds or within one kind; all of them apply (AND).
type Kind string

const (
	KindRegex    Kind = "regex"
	KindEqual    Kind = "equal"
	KindNotEqual Kind = "not_equal"
	KindAbove    Kind = "above"
	KindUnder    Kind = "under"
	KindBetween  Kind = "between"
)

// Filter is one declarative predicate record over an attribute path.
// Construct filters with Regex, Equal, NotEqual, Above, Under or Between;
// a hand-built Filter is validated the same way at compile time.
type Filter struct {
	Path    string
	Kind    Kind
	Pattern *regexp.Regexp // regex only
	Target  any            // equal / not_equal only
	Limit   float64        // above / under only
	Min     float64        // between only, exclusive
	Max     float64        // between only, exclusive
}

// Regex matches when the pattern is found anywhere in the value's string
// form. Search semantics, not full-match: "svc" matches "my-svc-worker".
func Regex(path string, pattern *regexp.Regexp) Filter {
	return Filter{Path: path, Kind: KindRegex, Pattern: pattern}
}

// Equal matches when the resolved value equals target. Absent fails closed.
func Equal(path string, target any) Filter {
	return Filter{Path: path, Kind: KindEqual, Target: target}
}

// NotEqual matches when the resolved value differs from target. An Absent
// value differs from any non-nil target, so it passes.
func NotEqual(path string, target any) Filter {
	return Filter{Path: path, Kind: KindNotEqual, Target: target}
}

// Above matches when the value is strictly greater than limit. Absent or
// non-numeric values fail closed.
func Above(path string, limit float64) Filter {
	return Filter{Path: path, Kind: KindAbove, Limit: limit}
}

// Under matches when the value is strictly less than limit. Absent or
// non-numeric values fail closed.
func Under(path string, limit float64) Filter {
	return Filter{Path: path, Kind: KindUnder, Limit: limit}
}

// Between matches when min < value < max. Both bounds are exclusive: a
// value sitting exactly on min or max does not match.
func Between(path string, min, max float64) Filter {
	return Filter{Path: path, Kind: KindBetween, Min: min, Max: max}
}

type predicate func(Snapshot) bool

// compile validates a filter set and turns it into one closure per record.
// Validation errors are caller-input errors and surface immediately.
func compile(filters []Filter) ([]predicate, error) {
	preds := make([]predicate, 0, len(filters))

	for _, f := range filters {
		f := f
		if err := validatePath(f.Path); err != nil {
			return nil, err
		}

		switch f.Kind {
		case KindRegex:
			if f.Pattern == nil {
				return nil, fmt.Errorf("regex filter on %q has no pattern", f.Path)
			}
			preds = append(preds, func(s Snapshot) bool {
				v := Resolve(s, f.Path)
				if !v.Present {
					return false
				}
				return f.Pattern.MatchString(stringify(v.Raw))
			})
		case KindEqual:
			preds = append(preds, func(s Snapshot) bool {
				v := Resolve(s, f.Path)
				if !v.Present {
					return false
				}
				return equalValues(v.Raw, f.Target)
			})
		case KindNotEqual:
			preds = append(preds, func(s Snapshot) bool {
				v := Resolve(s, f.Path)
				if !v.Present {
					// Absent differs from any concrete target.
					return f.Target != nil
				}
				return !equalValues(v.Raw, f.Target)
			})
		case KindAbove:
			preds = append(preds, numericPred(f.Path, func(n float64) bool { return n > f.Limit }))
		case KindUnder:
			preds = append(preds, numericPred(f.Path, func(n float64) bool { return n < f.Limit }))
		case KindBetween:
			preds = append(preds, numericPred(f.Path, func(n float64) bool { return f.Min < n && n < f.Max }))
		default:
			return nil, fmt.Errorf("unknown filter kind %q on %q", f.Kind, f.Path)
		}
	}

	return preds, nil
}

func numericPred(path string, cmp func(float64) bool) predicate {
	return func(s Snapshot) bool {
		v := Resolve(s, path)
		if !v.Present {
			return false
		}
		n, ok := asFloat(v.Raw)
		if !ok {
			return false
		}
		return cmp(n)
	}
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty attribute path")
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return fmt.Errorf("attribute path %q has an empty segment", path)
		}
	}
	return nil
}

// basePath returns the top-level attribute a path starts with. Fetching is
// coarser than resolution: the process source fetches whole top-level
// attributes, never nested fields.
func basePath(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// equalValues compares structurally, except that numbers of different Go
// widths compare by value so Equal("pid", 42) matches an int32 snapshot pid.
func equalValues(a, b any) bool {
	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
