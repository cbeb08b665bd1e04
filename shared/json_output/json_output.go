// Package jsonoutput writes comparisons as JSON documents.
package jsonoutput

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/google/uuid"
)

// OutputComparisonJSON writes cmp to w as an indented JSON report.
func OutputComparisonJSON(w io.Writer, cmp model.Comparison, tool string) error {
	report := BuildComparisonReport(cmp, uuid.NewString(), time.Now().UTC().Format(time.RFC3339), tool)
	return printJSON(w, report)
}

// BuildComparisonReport builds the comparison JSON report model.
func BuildComparisonReport(cmp model.Comparison, reportID, generatedAt, tool string) model.ComparisonReportJSON {
	if cmp.Rows == nil {
		cmp.Rows = []model.ComparisonRow{}
	}
	if cmp.Scanners == nil {
		cmp.Scanners = []string{}
	}

	return model.ComparisonReportJSON{
		ReportID:    reportID,
		GeneratedAt: generatedAt,
		Tool:        tool,
		Comparison:  cmp,
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
