// Package htmloutput provides HTML report generation for scancompare.
package htmloutput

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/drewtwitchell/scancompare/model"
)

// ReportData contains all data needed for HTML report generation
type ReportData struct {
	Image       string
	ReportID    string
	GeneratedAt string
	Tool        string
	Scanners    []ScannerRow
	Failed      []FailedScanner
	Rows        []Row
	Summary     model.ComparisonSummary
}

// ScannerRow is one line of the scanner overview table
type ScannerRow struct {
	Name     string
	Version  string
	Findings int
	Only     int
}

// FailedScanner names a scanner whose results are missing from the report
type FailedScanner struct {
	Name  string
	Error string
}

// Row is one vulnerability with a severity cell per scanner
type Row struct {
	ID         string
	URL        string
	Package    string
	Installed  string
	Fixed      string
	CVSS       string
	Severity   string
	Mismatch   bool
	PerScanner []string // empty when the scanner did not report the row
}

// NewReportData flattens a comparison into template data.
func NewReportData(cmp model.Comparison, reportID, tool string) ReportData {
	data := ReportData{
		Image:    cmp.Image,
		ReportID: reportID,
		Tool:     tool,
		Summary:  cmp.Summary,
	}

	for _, name := range cmp.Scanners {
		data.Scanners = append(data.Scanners, ScannerRow{
			Name:     name,
			Version:  cmp.Versions[name],
			Findings: cmp.Summary.PerScanner[name],
			Only:     cmp.Summary.OnlyIn[name],
		})
	}

	for name, msg := range cmp.Summary.Failed {
		data.Failed = append(data.Failed, FailedScanner{Name: name, Error: msg})
	}
	sort.Slice(data.Failed, func(i, j int) bool { return data.Failed[i].Name < data.Failed[j].Name })

	for _, r := range cmp.Rows {
		row := Row{
			ID:        r.VulnerabilityID,
			URL:       r.URL,
			Package:   r.Package,
			Installed: r.InstalledVersion,
			Fixed:     r.FixedVersion,
			Severity:  r.Severity,
			Mismatch:  r.SeverityMismatch,
		}
		if r.CVSSScore > 0 {
			row.CVSS = fmt.Sprintf("%.1f", r.CVSSScore)
		}
		for _, name := range cmp.Scanners {
			row.PerScanner = append(row.PerScanner, r.SeverityBy[name])
		}
		data.Rows = append(data.Rows, row)
	}

	return data
}

// GenerateHTMLReport generates a complete HTML report from the provided data
func GenerateHTMLReport(data ReportData) (string, error) {
	if data.GeneratedAt == "" {
		data.GeneratedAt = time.Now().Format("2006-01-02 15:04:05 MST")
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"severityClass": SeverityClass,
	}).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// SeverityClass returns a CSS class based on severity
func SeverityClass(severity string) string {
	switch severity {
	case model.SeverityCritical:
		return "severity-critical"
	case model.SeverityHigh:
		return "severity-high"
	case model.SeverityMedium:
		return "severity-medium"
	case model.SeverityLow:
		return "severity-low"
	default:
		return "severity-info"
	}
}
