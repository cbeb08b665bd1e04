package htmloutput

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultReportDir is the default directory for HTML reports
const DefaultReportDir = "reports"

const timestampLayout = "2006-01-02_15-04-05"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// GenerateReportPath builds reports/scancompare-<image>_<timestamp>.html under dir.
func GenerateReportPath(dir, image string, now time.Time) string {
	if dir == "" {
		dir = DefaultReportDir
	}
	slug := strings.Trim(unsafeChars.ReplaceAllString(image, "_"), "_")
	if slug == "" {
		slug = "image"
	}
	return filepath.Join(dir, fmt.Sprintf("scancompare-%s_%s.html", slug, now.Format(timestampLayout)))
}

// TimestampedSibling returns path with a timestamp inserted before its extension.
func TimestampedSibling(path string, now time.Time) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + now.Format(timestampLayout) + ext
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteHTMLString writes a pre-generated HTML string to path, creating its directory.
func WriteHTMLString(path string, html string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}
