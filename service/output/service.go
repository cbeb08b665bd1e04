// Package output provides a service for rendering comparisons.
package output

import (
	"fmt"
	"os"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	htmloutput "github.com/drewtwitchell/scancompare/shared/html_output"
)

// ParseFormat maps a format name onto a Format, defaulting to a table.
func ParseFormat(format string) Format {
	switch format {
	case "json":
		return FormatJSON
	case "html":
		return FormatHTML
	}
	return FormatTable
}

// NewService creates a new output service for the given options
func NewService(opts Options) Service {
	return newService(opts, &realRenderer{})
}

func newService(opts Options, renderer Renderer) *service {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	if opts.Format == FormatHTML && opts.ReportPath == "" {
		opts.ReportPath = htmloutput.GenerateReportPath("", "report", time.Now())
	}

	return &service{opts: opts, renderer: renderer}
}

func (s *service) Render(cmp model.Comparison) error {
	s.renderer.StopSpinner()

	switch s.opts.Format {
	case FormatJSON:
		return s.renderer.OutputComparisonJSON(s.opts.Writer, cmp, s.opts.Tool)
	case FormatHTML:
		if err := s.renderer.WriteComparisonHTML(s.opts.ReportPath, cmp, s.opts.Tool); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Fprintf(s.opts.Writer, "📄 HTML report written to %s\n", s.opts.ReportPath)
		return nil
	default:
		s.renderer.DrawComparisonTable(s.opts.Writer, cmp)
		return nil
	}
}

// ReportPath returns where an HTML report is written, or "" for other formats.
func (s *service) ReportPath() string {
	if s.opts.Format != FormatHTML {
		return ""
	}
	return s.opts.ReportPath
}

func (s *service) StopSpinner() {
	s.renderer.StopSpinner()
}
