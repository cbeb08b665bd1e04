package output

import (
	"io"

	"github.com/drewtwitchell/scancompare/model"
	comparisontable "github.com/drewtwitchell/scancompare/shared/comparison_table"
	htmloutput "github.com/drewtwitchell/scancompare/shared/html_output"
	jsonoutput "github.com/drewtwitchell/scancompare/shared/json_output"
	"github.com/drewtwitchell/scancompare/shared/spinner"
	"github.com/google/uuid"
)

// Format represents the output format type
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
)

// Options configures an output service. Writer receives tables, JSON and the
// location of the HTML report, which is written to ReportPath.
type Options struct {
	Format     Format
	Writer     io.Writer
	ReportPath string
	Tool       string
}

// Renderer defines the interface for drawing comparisons
type Renderer interface {
	DrawComparisonTable(w io.Writer, cmp model.Comparison)
	OutputComparisonJSON(w io.Writer, cmp model.Comparison, tool string) error
	WriteComparisonHTML(path string, cmp model.Comparison, tool string) error
	StopSpinner()
}

type realRenderer struct{}

func (r *realRenderer) DrawComparisonTable(w io.Writer, cmp model.Comparison) {
	comparisontable.DrawComparisonTable(w, cmp)
}

func (r *realRenderer) OutputComparisonJSON(w io.Writer, cmp model.Comparison, tool string) error {
	return jsonoutput.OutputComparisonJSON(w, cmp, tool)
}

func (r *realRenderer) WriteComparisonHTML(path string, cmp model.Comparison, tool string) error {
	html, err := htmloutput.GenerateHTMLReport(htmloutput.NewReportData(cmp, uuid.NewString(), tool))
	if err != nil {
		return err
	}
	return htmloutput.WriteHTMLString(path, html)
}

func (r *realRenderer) StopSpinner() {
	spinner.StopSpinner()
}

// service is the internal implementation
type service struct {
	opts     Options
	renderer Renderer
}

// Service defines the interface for output operations
type Service interface {
	Render(cmp model.Comparison) error
	ReportPath() string
	StopSpinner()
}
