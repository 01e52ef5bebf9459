package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oddshellnick/osn-system-utils/pkg/proctable"
)

var (
	psColumns  string
	psRegex    []string
	psEqual    []string
	psNotEqual []string
	psAbove    []string
	psUnder    []string
	psBetween  []string
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List processes as a filtered table",
	Long: `ps builds a snapshot of the process table, filtered by attribute
predicates and projected onto chosen columns. Attribute paths may be
nested, e.g. memory_info.rss. Known attributes: ` + strings.Join(proctable.Attributes(), ", ") + `.

Examples:
  osn-sysutil ps
  osn-sysutil ps --columns 'PID=pid,Name=name,RSS=memory_info.rss'
  osn-sysutil ps --regex name=svc --above cpu_percent=50
  osn-sysutil ps --between cpu_percent=10,90 --not-equal status=zombie`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, columns, err := parseColumns(psColumns)
		if err != nil {
			return err
		}

		filters, err := parseFilters()
		if err != nil {
			return err
		}

		rows, err := proctable.NewSystemBuilder().Build(columns, filters...)
		if err != nil {
			return err
		}

		return renderRows(names, rows, cfg.Output)
	},
}

func init() {
	psCmd.Flags().StringVar(&psColumns, "columns", "", "comma-separated Column=attribute.path pairs (default PID=pid,Name=name,Status=status)")
	psCmd.Flags().StringArrayVar(&psRegex, "regex", nil, "attr=pattern, match when pattern is found in the value")
	psCmd.Flags().StringArrayVar(&psEqual, "equal", nil, "attr=value, match on equality")
	psCmd.Flags().StringArrayVar(&psNotEqual, "not-equal", nil, "attr=value, match on inequality")
	psCmd.Flags().StringArrayVar(&psAbove, "above", nil, "attr=number, match when value is strictly greater")
	psCmd.Flags().StringArrayVar(&psUnder, "under", nil, "attr=number, match when value is strictly less")
	psCmd.Flags().StringArrayVar(&psBetween, "between", nil, "attr=min,max, match when min < value < max (both exclusive)")
}

// parseColumns keeps the flag order so the table renders columns the way
// the caller wrote them. An empty spec yields the default projection.
func parseColumns(spec string) ([]string, map[string]string, error) {
	if strings.TrimSpace(spec) == "" {
		return []string{"PID", "Name", "Status"}, nil, nil
	}

	var names []string
	columns := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		name, path, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || path == "" {
			return nil, nil, fmt.Errorf("column %q is not Name=attribute.path", pair)
		}
		if _, dup := columns[name]; dup {
			return nil, nil, fmt.Errorf("duplicate column %q", name)
		}
		names = append(names, name)
		columns[name] = path
	}
	return names, columns, nil
}

func parseFilters() ([]proctable.Filter, error) {
	var filters []proctable.Filter

	for _, spec := range psRegex {
		attr, raw, err := splitSpec(spec, "regex")
		if err != nil {
			return nil, err
		}
		pattern, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("regex filter %q: %w", spec, err)
		}
		filters = append(filters, proctable.Regex(attr, pattern))
	}

	for _, spec := range psEqual {
		attr, raw, err := splitSpec(spec, "equal")
		if err != nil {
			return nil, err
		}
		filters = append(filters, proctable.Equal(attr, literal(raw)))
	}

	for _, spec := range psNotEqual {
		attr, raw, err := splitSpec(spec, "not-equal")
		if err != nil {
			return nil, err
		}
		filters = append(filters, proctable.NotEqual(attr, literal(raw)))
	}

	for _, spec := range psAbove {
		attr, limit, err := numericSpec(spec, "above")
		if err != nil {
			return nil, err
		}
		filters = append(filters, proctable.Above(attr, limit))
	}

	for _, spec := range psUnder {
		attr, limit, err := numericSpec(spec, "under")
		if err != nil {
			return nil, err
		}
		filters = append(filters, proctable.Under(attr, limit))
	}

	for _, spec := range psBetween {
		attr, raw, err := splitSpec(spec, "between")
		if err != nil {
			return nil, err
		}
		lo, hi, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, fmt.Errorf("between filter %q is not attr=min,max", spec)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("between filter %q: bad min: %w", spec, err)
		}
		max, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, fmt.Errorf("between filter %q: bad max: %w", spec, err)
		}
		filters = append(filters, proctable.Between(attr, min, max))
	}

	return filters, nil
}

func splitSpec(spec, kind string) (string, string, error) {
	attr, value, ok := strings.Cut(spec, "=")
	if !ok || attr == "" {
		return "", "", fmt.Errorf("%s filter %q is not attr=value", kind, spec)
	}
	return attr, value, nil
}

func numericSpec(spec, kind string) (string, float64, error) {
	attr, raw, err := splitSpec(spec, kind)
	if err != nil {
		return "", 0, err
	}
	limit, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s filter %q: %w", kind, spec, err)
	}
	return attr, limit, nil
}

// literal interprets a flag value as a number when it parses as one,
// otherwise as a string. Matches how snapshot attributes are typed.
func literal(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
