package scanner

import (
	"encoding/json"
	"strings"

	"github.com/drewtwitchell/scancompare/model"
)

// NewGrype creates a scanner backed by the grype executable.
func NewGrype(binary string, run Runner, look LookPath) Scanner {
	s := newBinaryScanner(NameGrype, binary, run, look)
	s.scanArgs = func(image string) []string {
		return []string{image, "--quiet", "--output", "json"}
	}
	s.versionArgs = []string{"version"}
	s.parse = parseGrypeReport
	return s
}

type grypeReport struct {
	Matches    []grypeMatch    `json:"matches"`
	Descriptor grypeDescriptor `json:"descriptor"`
}

type grypeDescriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type grypeMatch struct {
	Vulnerability          grypeVulnerability      `json:"vulnerability"`
	RelatedVulnerabilities []grypeVulnerabilityRef `json:"relatedVulnerabilities"`
	Artifact               grypeArtifact           `json:"artifact"`
}

type grypeVulnerabilityRef struct {
	ID         string      `json:"id"`
	DataSource string      `json:"dataSource"`
	Severity   string      `json:"severity"`
	CVSS       []grypeCVSS `json:"cvss"`
}

type grypeVulnerability struct {
	grypeVulnerabilityRef
	Description string   `json:"description"`
	Fix         grypeFix `json:"fix"`
}

type grypeFix struct {
	Versions []string `json:"versions"`
	State    string   `json:"state"`
}

type grypeArtifact struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
	PURL    string `json:"purl"`
}

type grypeCVSS struct {
	Version string           `json:"version"`
	Vector  string           `json:"vector"`
	Metrics grypeCVSSMetrics `json:"metrics"`
}

type grypeCVSSMetrics struct {
	BaseScore float64 `json:"baseScore"`
}

func parseGrypeReport(data []byte) ([]model.Finding, string, error) {
	var report grypeReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, "", err
	}

	findings := make([]model.Finding, 0, len(report.Matches))
	for _, m := range report.Matches {
		v := m.Vulnerability
		id := v.ID
		// GHSA matches are reported under their CVE alias when one exists so
		// they line up with other scanners.
		if !strings.HasPrefix(id, "CVE-") {
			for _, related := range m.RelatedVulnerabilities {
				if strings.HasPrefix(related.ID, "CVE-") {
					id = related.ID
					break
				}
			}
		}

		cvss := v.CVSS
		for _, related := range m.RelatedVulnerabilities {
			if len(cvss) > 0 {
				break
			}
			cvss = related.CVSS
		}
		vector, score := pickGrypeCVSS(cvss)

		var fixed string
		if v.Fix.State == "fixed" {
			fixed = strings.Join(v.Fix.Versions, ", ")
		}

		findings = append(findings, model.Finding{
			VulnerabilityID:  id,
			Package:          m.Artifact.Name,
			PackageType:      m.Artifact.Type,
			InstalledVersion: m.Artifact.Version,
			FixedVersion:     fixed,
			Severity:         model.NormalizeSeverity(v.Severity),
			CVSSVector:       vector,
			CVSSScore:        score,
			PURL:             m.Artifact.PURL,
			Title:            firstSentence(v.Description),
			URL:              v.DataSource,
		})
	}

	return findings, report.Descriptor.Version, nil
}

// pickGrypeCVSS returns the newest v3 entry.
func pickGrypeCVSS(entries []grypeCVSS) (string, float64) {
	var vector string
	var score float64
	var version string
	for _, c := range entries {
		if !strings.HasPrefix(c.Version, "3") {
			continue
		}
		if c.Version >= version {
			vector, score, version = c.Vector, c.Metrics.BaseScore, c.Version
		}
	}
	return vector, score
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i > 0 {
		return s[:i+1]
	}
	return s
}
