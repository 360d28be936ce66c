package graphctl

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)
	for _, row := range rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// rowsTable flattens normalized query rows into a header of every key seen
// and one line per row. Non-string cells are rendered as JSON.
func rowsTable(rows []map[string]any) ([]string, [][]string) {
	seen := map[string]bool{}
	var header []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(header))
		for i, k := range header {
			v, ok := row[k]
			if !ok {
				continue
			}
			line[i] = cell(v)
		}
		out = append(out, line)
	}
	return header, out
}

func cell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
