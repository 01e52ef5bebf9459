package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/oddshellnick/osn-system-utils/pkg/proctable"
)

func renderRows(names []string, rows []proctable.Row, format string) error {
	switch format {
	case "json":
		return writeJSON(rows)
	case "yaml":
		return writeYAML(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t"))

	for _, row := range rows {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = cell(row[name])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	return w.Flush()
}

func renderPorts(ports []int, format string) error {
	switch format {
	case "json":
		return writeJSON(ports)
	case "yaml":
		return writeYAML(ports)
	}

	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}

func renderPIDAddresses(byPID map[int32][]string, format string) error {
	switch format {
	case "json":
		return writeJSON(byPID)
	case "yaml":
		return writeYAML(byPID)
	}

	pids := make([]int, 0, len(byPID))
	for pid := range byPID {
		pids = append(pids, int(pid))
	}
	sort.Ints(pids)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tAddresses")
	for _, pid := range pids {
		fmt.Fprintf(w, "%d\t%s\n", pid, strings.Join(byPID[int32(pid)], " "))
	}
	return w.Flush()
}

// cell renders one table value; Absent projections come through as nil.
func cell(v any) string {
	if v == nil {
		return "-"
	}
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(v)
}
