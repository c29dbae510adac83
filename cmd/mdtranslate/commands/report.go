// ABOUTME: Console rendering of job outcomes, progress and session statistics
// ABOUTME: Uses lipgloss for status styling and humanize for sizes and counts
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/harper/mdtranslate/internal/pool"
	"github.com/harper/mdtranslate/internal/stats"
	"github.com/harper/mdtranslate/internal/translate"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// byteKPIs are rendered as sizes rather than plain numbers
var byteKPIs = map[string]bool{
	translate.KpiRead:    true,
	translate.KpiWritten: true,
}

// progressHooks prints one line per settled file unless quiet
func progressHooks(w io.Writer) pool.Hooks {
	if quiet {
		return pool.Hooks{}
	}
	return pool.Hooks{
		OnTaskFinished: func(p pool.Progress) {
			line := fmt.Sprintf("[%d/%d] %3.0f%%", p.Processed, p.Total, p.Percentage())
			if p.Errors > 0 {
				line += failureStyle.Render(fmt.Sprintf(" %d failed", p.Errors))
			}
			fmt.Fprintln(w, mutedStyle.Render(line))
		},
	}
}

// printOutcomes lists each translated file and each failure
func printOutcomes(w io.Writer, batch translate.BatchResult) {
	for _, r := range batch.Results {
		fmt.Fprintf(w, "%s %s -> %s (%d chunks, %s)\n",
			successStyle.Render("✓"),
			r.Job.Source,
			r.Job.Destination,
			len(r.Chunks.Chunks),
			humanize.Bytes(uint64(len(r.Translated))))
	}
	for _, e := range batch.Errors {
		fmt.Fprintf(w, "%s %s: %s\n",
			failureStyle.Render("✗"),
			e.Job.Source,
			truncate(firstLine(e.Err.Error()), 120))
		if e.Job.Log != "" {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render("log: "+e.Job.Log))
		}
	}
}

// printStatistics renders finals as a table, or as JSON with --format json
func printStatistics(w io.Writer, finals stats.Finals) error {
	if outputFormat == "json" {
		data, err := json.MarshalIndent(finals, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}

	names := make([]string, 0, len(finals.Statistics))
	for name := range finals.Statistics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, headerStyle.Render("Statistics"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		stat := finals.Statistics[name]
		label := name
		if kpi, ok := finals.Schema[name]; ok && kpi.Description != "" {
			label = kpi.Description
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, formatStatistic(name, stat))
	}
	return tw.Flush()
}

// formatStatistic renders one metric value on a single line
func formatStatistic(name string, stat stats.Statistic) string {
	if stat.Failed() {
		return failureStyle.Render(stats.ErrorValue)
	}

	switch v := stat.Value.(type) {
	case int:
		return humanize.Comma(int64(v))
	case float64:
		if byteKPIs[name] {
			return humanize.Bytes(uint64(v))
		}
		return humanize.Commaf(roundTo(v, 2))
	case map[string]int:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s×%d", k, v[k])
		}
		return strings.Join(parts, ", ")
	case stats.RangeStat:
		return fmt.Sprintf("avg %s per %s over %s (%d buckets)",
			humanize.Commaf(roundTo(v.Avg, 2)), v.Width, v.Span.Round(time.Second), len(v.Buckets))
	case stats.DurationStat:
		return fmt.Sprintf("n=%d min %.0fms avg %.0fms max %.0fms", v.Count, v.Min, v.Avg, v.Max)
	case stats.Histogram:
		return fmt.Sprintf("[%g..%g] %v", v.Min, v.Max, v.Counts)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
