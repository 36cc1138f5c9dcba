package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// printTable writes rows as aligned columns, or rows as JSON objects keyed
// by the lowercased header with --output json
func (a *app) printTable(header []string, rows [][]string) error {
	if a.output == "json" {
		records := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			record := make(map[string]string, len(header))
			for i, column := range header {
				record[strings.ToLower(column)] = row[i]
			}
			records = append(records, record)
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(a.out, "No results")
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (a *app) printf(format string, args ...any) {
	if a.output == "json" {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func id(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func parseID(arg string) (uint, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(n), nil
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
