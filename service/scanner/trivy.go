package scanner

import (
	"encoding/json"

	"github.com/drewtwitchell/scancompare/model"
)

// NewTrivy creates a scanner backed by the trivy executable.
func NewTrivy(binary string, run Runner, look LookPath) Scanner {
	s := newBinaryScanner(NameTrivy, binary, run, look)
	s.scanArgs = func(image string) []string {
		return []string{"image", "--quiet", "--format", "json", "--scanners", "vuln", image}
	}
	s.versionArgs = []string{"--version"}
	s.parse = parseTrivyReport
	return s
}

type trivyReport struct {
	SchemaVersion int           `json:"SchemaVersion"`
	ArtifactName  string        `json:"ArtifactName"`
	Trivy         trivyMetadata `json:"Trivy"`
	Results       []trivyResult `json:"Results"`
}

type trivyMetadata struct {
	Version string `json:"Version"`
}

type trivyResult struct {
	Target          string               `json:"Target"`
	Type            string               `json:"Type"`
	Vulnerabilities []trivyVulnerability `json:"Vulnerabilities"`
}

type trivyVulnerability struct {
	VulnerabilityID  string               `json:"VulnerabilityID"`
	PkgName          string               `json:"PkgName"`
	PkgIdentifier    trivyPkgIdentifier   `json:"PkgIdentifier"`
	InstalledVersion string               `json:"InstalledVersion"`
	FixedVersion     string               `json:"FixedVersion"`
	Severity         string               `json:"Severity"`
	Title            string               `json:"Title"`
	PrimaryURL       string               `json:"PrimaryURL"`
	SeveritySource   string               `json:"SeveritySource"`
	CVSS             map[string]trivyCVSS `json:"CVSS"`
}

type trivyPkgIdentifier struct {
	PURL string `json:"PURL"`
}

type trivyCVSS struct {
	V3Vector string  `json:"V3Vector"`
	V3Score  float64 `json:"V3Score"`
}

func parseTrivyReport(data []byte) ([]model.Finding, string, error) {
	var report trivyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, "", err
	}

	var findings []model.Finding
	for _, result := range report.Results {
		for _, v := range result.Vulnerabilities {
			vector, score := pickTrivyCVSS(v)
			findings = append(findings, model.Finding{
				VulnerabilityID:  v.VulnerabilityID,
				Package:          v.PkgName,
				PackageType:      result.Type,
				InstalledVersion: v.InstalledVersion,
				FixedVersion:     v.FixedVersion,
				Severity:         model.NormalizeSeverity(v.Severity),
				CVSSVector:       vector,
				CVSSScore:        score,
				PURL:             v.PkgIdentifier.PURL,
				Title:            v.Title,
				URL:              v.PrimaryURL,
			})
		}
	}

	return findings, report.Trivy.Version, nil
}

// pickTrivyCVSS prefers the severity source, then NVD, then any vendor with a v3 vector.
func pickTrivyCVSS(v trivyVulnerability) (string, float64) {
	for _, source := range []string{v.SeveritySource, "nvd"} {
		if c, ok := v.CVSS[source]; ok && c.V3Vector != "" {
			return c.V3Vector, c.V3Score
		}
	}
	var best trivyCVSS
	var bestSource string
	for source, c := range v.CVSS {
		if c.V3Vector == "" {
			continue
		}
		// map order is random; keep the choice stable
		if bestSource == "" || source < bestSource {
			best, bestSource = c, source
		}
	}
	return best.V3Vector, best.V3Score
}
