// Package compare lines up the findings of several scanners.
package compare

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/package-url/packageurl-go"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
)

// OS package types carry the distribution as PURL namespace, which is not part
// of the package name.
var distroTypes = map[string]bool{
	packageurl.TypeDebian: true,
	packageurl.TypeRPM:    true,
	packageurl.TypeApk:    true,
	"alpm":                true,
}

// NewService creates a comparison service.
func NewService() Service {
	return &service{}
}

func (s *service) Compare(image string, results []model.ScanResult) model.Comparison {
	cmp := model.Comparison{
		Image:    image,
		Versions: make(map[string]string),
		Summary: model.ComparisonSummary{
			PerScanner: make(map[string]int),
			OnlyIn:     make(map[string]int),
		},
	}

	rows := make(map[rowKey]*model.ComparisonRow)
	var order []rowKey

	for _, res := range results {
		if res.Err != nil {
			if cmp.Summary.Failed == nil {
				cmp.Summary.Failed = make(map[string]string)
			}
			cmp.Summary.Failed[res.Scanner] = res.Err.Error()
			continue
		}
		cmp.Scanners = append(cmp.Scanners, res.Scanner)
		if res.ScannerVersion != "" {
			cmp.Versions[res.Scanner] = res.ScannerVersion
		}

		for _, f := range res.Findings {
			key := keyFor(f)
			row, ok := rows[key]
			if !ok {
				row = &model.ComparisonRow{
					VulnerabilityID:  key.id,
					Package:          f.Package,
					InstalledVersion: f.InstalledVersion,
					SeverityBy:       make(map[string]string),
				}
				rows[key] = row
				order = append(order, key)
			}
			merge(row, res.Scanner, f)
		}
	}

	cmp.Rows = make([]model.ComparisonRow, 0, len(order))
	for _, key := range order {
		row := rows[key]
		finish(row, cmp.Scanners)
		cmp.Rows = append(cmp.Rows, *row)
	}
	sortRows(cmp.Rows)
	summarize(&cmp)

	return cmp
}

// ExceedsThreshold reports whether any row is at or above the given severity.
// An empty threshold never matches.
func ExceedsThreshold(cmp model.Comparison, threshold string) bool {
	if strings.TrimSpace(threshold) == "" {
		return false
	}
	limit := model.SeverityRank(threshold)
	for _, row := range cmp.Rows {
		if model.SeverityRank(row.Severity) >= limit {
			return true
		}
	}
	return false
}

func keyFor(f model.Finding) rowKey {
	return rowKey{
		id:      strings.ToUpper(strings.TrimSpace(f.VulnerabilityID)),
		pkg:     CanonicalPackage(f),
		version: strings.TrimSpace(f.InstalledVersion),
	}
}

// CanonicalPackage returns the name used to match a finding's package across
// scanners. The PURL is preferred over the reported package name.
func CanonicalPackage(f model.Finding) string {
	if f.PURL != "" {
		if purl, err := packageurl.FromString(f.PURL); err == nil {
			return purlName(purl)
		}
	}
	return strings.ToLower(strings.TrimSpace(f.Package))
}

func purlName(purl packageurl.PackageURL) string {
	name := strings.ToLower(purl.Name)
	if purl.Namespace == "" || distroTypes[purl.Type] {
		return name
	}
	namespace := strings.ToLower(purl.Namespace)
	if purl.Type == packageurl.TypeMaven {
		return namespace + ":" + name
	}
	return namespace + "/" + name
}

func merge(row *model.ComparisonRow, scanner string, f model.Finding) {
	severity := model.NormalizeSeverity(f.Severity)
	if prev, ok := row.SeverityBy[scanner]; !ok || model.SeverityRank(severity) > model.SeverityRank(prev) {
		row.SeverityBy[scanner] = severity
	}
	if row.FixedVersion == "" {
		row.FixedVersion = f.FixedVersion
	}
	if row.URL == "" {
		row.URL = f.URL
	}

	score := f.CVSSScore
	if score == 0 && f.CVSSVector != "" {
		score = ScoreVector(f.CVSSVector)
	}
	if score > row.CVSSScore {
		row.CVSSScore = score
	}
}

// finish fills the fields derived from the per scanner severities.
func finish(row *model.ComparisonRow, scanners []string) {
	row.Severity = model.SeverityUnknown
	seen := make(map[string]bool)
	for _, name := range scanners {
		severity, ok := row.SeverityBy[name]
		if !ok {
			continue
		}
		row.FoundBy = append(row.FoundBy, name)
		seen[severity] = true
		if model.SeverityRank(severity) > model.SeverityRank(row.Severity) {
			row.Severity = severity
		}
	}
	row.SeverityMismatch = len(seen) > 1
}

func sortRows(rows []model.ComparisonRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := model.SeverityRank(rows[i].Severity), model.SeverityRank(rows[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if rows[i].VulnerabilityID != rows[j].VulnerabilityID {
			return rows[i].VulnerabilityID < rows[j].VulnerabilityID
		}
		return rows[i].Package < rows[j].Package
	})
}

func summarize(cmp *model.Comparison) {
	sum := &cmp.Summary
	sum.TotalUnique = len(cmp.Rows)
	for _, name := range cmp.Scanners {
		sum.PerScanner[name] = 0
	}

	for _, row := range cmp.Rows {
		for _, name := range row.FoundBy {
			sum.PerScanner[name]++
		}
		if len(cmp.Scanners) > 1 {
			switch len(row.FoundBy) {
			case len(cmp.Scanners):
				sum.Shared++
			case 1:
				sum.OnlyIn[row.FoundBy[0]]++
			}
		}
		if row.SeverityMismatch {
			sum.Mismatches++
		}

		switch row.Severity {
		case model.SeverityCritical:
			sum.Critical++
		case model.SeverityHigh:
			sum.High++
		case model.SeverityMedium:
			sum.Medium++
		case model.SeverityLow:
			sum.Low++
		default:
			sum.Other++
		}
	}
}

// ScoreVector computes the CVSS v3 base score of vector. Unsupported or
// malformed vectors score zero.
func ScoreVector(vector string) float64 {
	var (
		cvss baseScorer
		err  error
	)
	switch {
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		cvss, err = gocvss30.ParseVector(vector)
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		cvss, err = gocvss31.ParseVector(vector)
	default:
		return 0
	}
	if err != nil {
		slog.Debug("Error parsing CVSS vector", "vector", vector, "error", err)
		return 0
	}
	return cvss.BaseScore()
}
