package jsonoutput

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComparisonReport(t *testing.T) {
	cmp := model.Comparison{Image: "alpine:3.19"}
	report := BuildComparisonReport(cmp, "id-1", "2024-05-01T10:00:00Z", "scancompare dev")

	assert.Equal(t, "id-1", report.ReportID)
	assert.Equal(t, "alpine:3.19", report.Image)
	assert.NotNil(t, report.Rows)
	assert.NotNil(t, report.Scanners)
}

func TestOutputComparisonJSON(t *testing.T) {
	cmp := model.Comparison{
		Image:    "alpine:3.19",
		Scanners: []string{"trivy"},
		Rows: []model.ComparisonRow{{
			VulnerabilityID: "CVE-2024-0001",
			Package:         "busybox",
			Severity:        model.SeverityLow,
			SeverityBy:      map[string]string{"trivy": model.SeverityLow},
			FoundBy:         []string{"trivy"},
		}},
		Summary: model.ComparisonSummary{TotalUnique: 1, Low: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, OutputComparisonJSON(&buf, cmp, "scancompare dev"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	_, err := uuid.Parse(doc["reportId"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "alpine:3.19", doc["image"])
	assert.Equal(t, "scancompare dev", doc["tool"])
	assert.NotEmpty(t, doc["generatedAt"])

	rows := doc["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "CVE-2024-0001", rows[0].(map[string]any)["vulnerabilityId"])

	summary := doc["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["low"])
}
