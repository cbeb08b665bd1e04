package model

import (
	"strings"
	"time"
)

// Normalised severities, highest first.
const (
	SeverityCritical   = "CRITICAL"
	SeverityHigh       = "HIGH"
	SeverityMedium     = "MEDIUM"
	SeverityLow        = "LOW"
	SeverityNegligible = "NEGLIGIBLE"
	SeverityUnknown    = "UNKNOWN"
)

var severityRanks = map[string]int{
	SeverityCritical:   5,
	SeverityHigh:       4,
	SeverityMedium:     3,
	SeverityLow:        2,
	SeverityNegligible: 1,
	SeverityUnknown:    0,
}

// NormalizeSeverity maps scanner specific severity labels onto the shared set.
func NormalizeSeverity(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "MODERATE":
		return SeverityMedium
	case "INFO", "INFORMATIONAL":
		return SeverityNegligible
	}
	if _, ok := severityRanks[s]; ok {
		return s
	}
	return SeverityUnknown
}

// SeverityRank orders severities; unknown labels rank lowest.
func SeverityRank(s string) int {
	return severityRanks[NormalizeSeverity(s)]
}

// IsValidSeverity reports whether s names one of the normalised severities.
func IsValidSeverity(s string) bool {
	_, ok := severityRanks[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// Finding is a single vulnerability reported by one scanner.
type Finding struct {
	VulnerabilityID  string  `json:"vulnerabilityId"`
	Package          string  `json:"package"`
	PackageType      string  `json:"packageType,omitempty"`
	InstalledVersion string  `json:"installedVersion"`
	FixedVersion     string  `json:"fixedVersion,omitempty"`
	Severity         string  `json:"severity"`
	CVSSVector       string  `json:"cvssVector,omitempty"`
	CVSSScore        float64 `json:"cvssScore,omitempty"`
	PURL             string  `json:"purl,omitempty"`
	Title            string  `json:"title,omitempty"`
	URL              string  `json:"url,omitempty"`
}

// ScanResult is the outcome of running one scanner against one image.
type ScanResult struct {
	Scanner        string
	ScannerVersion string
	Image          string
	Findings       []Finding
	Duration       time.Duration
	Err            error
}

// ComparisonRow is one vulnerability/package pair across all scanners.
type ComparisonRow struct {
	VulnerabilityID  string            `json:"vulnerabilityId"`
	Package          string            `json:"package"`
	InstalledVersion string            `json:"installedVersion"`
	FixedVersion     string            `json:"fixedVersion,omitempty"`
	Severity         string            `json:"severity"`
	SeverityBy       map[string]string `json:"severityBy"`
	FoundBy          []string          `json:"foundBy"`
	SeverityMismatch bool              `json:"severityMismatch"`
	CVSSScore        float64           `json:"cvssScore,omitempty"`
	URL              string            `json:"url,omitempty"`
}

// FoundByScanner reports whether the named scanner reported this row.
func (r ComparisonRow) FoundByScanner(name string) bool {
	_, ok := r.SeverityBy[name]
	return ok
}

// ComparisonSummary aggregates a comparison.
type ComparisonSummary struct {
	TotalUnique int               `json:"totalUnique"`
	PerScanner  map[string]int    `json:"perScanner"`
	Shared      int               `json:"shared"`
	OnlyIn      map[string]int    `json:"onlyIn"`
	Mismatches  int               `json:"severityMismatches"`
	Critical    int               `json:"critical"`
	High        int               `json:"high"`
	Medium      int               `json:"medium"`
	Low         int               `json:"low"`
	Other       int               `json:"other"`
	Failed      map[string]string `json:"failedScanners,omitempty"`
}

// Comparison is the merged view of several scan results for one image.
type Comparison struct {
	Image    string            `json:"image"`
	Scanners []string          `json:"scanners"`
	Versions map[string]string `json:"scannerVersions"`
	Rows     []ComparisonRow   `json:"rows"`
	Summary  ComparisonSummary `json:"summary"`
}
