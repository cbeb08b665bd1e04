// Package comparisontable renders a scanner comparison as terminal tables.
package comparisontable

import (
	"fmt"
	"io"
	"sort"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DrawComparisonTable renders the summary, per scanner totals and every row.
func DrawComparisonTable(w io.Writer, cmp model.Comparison) {
	sum := cmp.Summary

	fmt.Fprintf(w, "\n🔍 %s\n", text.Bold.Sprint(cmp.Image))
	fmt.Fprintf(w, "   %d unique vulnerabilities ", sum.TotalUnique)
	if sum.Critical > 0 {
		fmt.Fprintf(w, "%s ", text.FgRed.Sprintf("🔴 %d Critical", sum.Critical))
	}
	if sum.High > 0 {
		fmt.Fprintf(w, "%s ", text.FgHiRed.Sprintf("🟠 %d High", sum.High))
	}
	if sum.Medium > 0 {
		fmt.Fprintf(w, "%s ", text.FgYellow.Sprintf("🟡 %d Medium", sum.Medium))
	}
	if sum.Low > 0 {
		fmt.Fprintf(w, "%s ", text.FgCyan.Sprintf("🔵 %d Low", sum.Low))
	}
	if sum.Other > 0 {
		fmt.Fprintf(w, "%s ", text.FgHiBlack.Sprintf("⚪ %d Other", sum.Other))
	}
	fmt.Fprintln(w)

	drawScannerTable(w, cmp)
	drawFailures(w, sum.Failed)

	if len(cmp.Rows) == 0 {
		fmt.Fprintln(w, "\n"+text.FgGreen.Sprint("✅ No vulnerabilities reported"))
		return
	}
	drawRowsTable(w, cmp)
}

func drawScannerTable(w io.Writer, cmp model.Comparison) {
	if len(cmp.Scanners) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Scanner", "Version", "Findings", "Only Here"})

	for _, name := range cmp.Scanners {
		t.AppendRow(table.Row{
			name,
			valueOr(cmp.Versions[name], "-"),
			cmp.Summary.PerScanner[name],
			cmp.Summary.OnlyIn[name],
		})
	}
	if len(cmp.Scanners) > 1 {
		t.AppendFooter(table.Row{"Shared", "", cmp.Summary.Shared, ""})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func drawFailures(w io.Writer, failed map[string]string) {
	if len(failed) == 0 {
		return
	}

	names := make([]string, 0, len(failed))
	for name := range failed {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\n"+text.FgRed.Sprint("⚠️  Scanners that failed"))
	for _, name := range names {
		fmt.Fprintf(w, "   %s: %s\n", name, failed[name])
	}
}

func drawRowsTable(w io.Writer, cmp model.Comparison) {
	fmt.Fprintln(w, "\n"+text.FgHiRed.Sprint("🚨 Vulnerabilities"))

	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"Severity", "Vulnerability", "Package", "Installed", "Fixed", "CVSS"}
	for _, name := range cmp.Scanners {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for _, r := range cmp.Rows {
		id := r.VulnerabilityID
		if r.SeverityMismatch {
			id += " " + text.FgYellow.Sprint("≠")
		}

		row := table.Row{
			formatSeverity(r.Severity),
			id,
			truncate(r.Package, 30),
			truncate(r.InstalledVersion, 20),
			valueOr(truncate(r.FixedVersion, 20), "-"),
			formatScore(r.CVSSScore),
		}
		for _, name := range cmp.Scanners {
			if !r.FoundByScanner(name) {
				row = append(row, text.FgHiBlack.Sprint("-"))
				continue
			}
			row = append(row, formatSeverity(r.SeverityBy[name]))
		}
		t.AppendRow(row)
	}

	if cmp.Summary.Mismatches > 0 {
		t.SetCaption("≠ scanners disagree on severity (%d rows)", cmp.Summary.Mismatches)
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatSeverity(severity string) string {
	switch severity {
	case model.SeverityCritical:
		return text.FgRed.Sprint(severity)
	case model.SeverityHigh:
		return text.FgHiRed.Sprint(severity)
	case model.SeverityMedium:
		return text.FgYellow.Sprint(severity)
	case model.SeverityLow:
		return text.FgCyan.Sprint(severity)
	default:
		return text.FgHiBlack.Sprint(severity)
	}
}

func formatScore(score float64) string {
	if score == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", score)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
