package model

// ComparisonReportJSON is the document written by the json output format.
type ComparisonReportJSON struct {
	ReportID    string `json:"reportId"`
	GeneratedAt string `json:"generatedAt"`
	Tool        string `json:"tool"`
	Comparison
}
