package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/drewtwitchell/scancompare/model"
	awsconfig "github.com/drewtwitchell/scancompare/service/aws_config"
	awssts "github.com/drewtwitchell/scancompare/service/sts"
)

type testApp struct {
	*app
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	missing map[string]bool
	opened  []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	trivyReport, err := os.ReadFile(filepath.Join("service", "scanner", "testdata", "trivy.json"))
	if err != nil {
		t.Fatalf("read trivy fixture: %v", err)
	}
	grypeReport, err := os.ReadFile(filepath.Join("service", "scanner", "testdata", "grype.json"))
	if err != nil {
		t.Fatalf("read grype fixture: %v", err)
	}

	ta := &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, missing: map[string]bool{}}
	reportDir := t.TempDir()

	ta.app = &app{
		stdin:       strings.NewReader(""),
		stdout:      ta.stdout,
		stderr:      ta.stderr,
		versionInfo: model.VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2024-05-01"},
		runCmd: func(_ context.Context, name string, args ...string) ([]byte, error) {
			switch filepath.Base(name) {
			case "trivy":
				if args[0] == "--version" {
					return []byte("Version: 0.50.1\n"), nil
				}
				return trivyReport, nil
			case "grype":
				if args[0] == "version" {
					return []byte("Application: grype\nVersion: 0.74.7\n"), nil
				}
				return grypeReport, nil
			}
			return nil, errors.New("unexpected command " + name)
		},
		lookPath: func(file string) (string, error) {
			if filepath.IsAbs(file) {
				return file, nil
			}
			if ta.missing[file] {
				return "", errors.New("executable file not found in $PATH")
			}
			return "/usr/local/bin/" + file, nil
		},
		awsConfig: awsconfig.NewService,
		newSTS:    awssts.NewService,
		openBrowser: func(path string) error {
			ta.opened = append(ta.opened, path)
			return nil
		},
		loadConfig: func() (model.Config, error) {
			return model.Config{ReportDir: reportDir}, nil
		},
	}
	return ta
}

func TestRunConflictingAutomationFlags(t *testing.T) {
	combos := [][]string{
		{"--auto", "--mock-yes", "alpine:3.19"},
		{"--auto", "--mock-no", "alpine:3.19"},
		{"--mock-yes", "--mock-no", "alpine:3.19"},
		{"--auto", "--mock-yes", "--mock-no", "alpine:3.19"},
		{"--version", "--auto", "--mock-yes"},
	}

	for _, args := range combos {
		ta := newTestApp(t)
		if code := ta.run(args); code != exitUsage {
			t.Fatalf("%v: expected exit %d, got %d", args, exitUsage, code)
		}
		if !strings.Contains(ta.stderr.String(), "Only one automation flag (--auto, --mock-yes, --mock-no) may be specified at a time") {
			t.Fatalf("%v: unexpected stderr: %q", args, ta.stderr.String())
		}
		if ta.stdout.Len() != 0 {
			t.Fatalf("%v: expected no output, got %q", args, ta.stdout.String())
		}
	}
}

func TestRunMissingImage(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"--auto"}); code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(ta.stderr.String(), "missing required argument: image") {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}
}

func TestRunHelp(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"--help"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"--auto", "--mock-yes", "--mock-no"} {
		if !strings.Contains(ta.stdout.String(), want) {
			t.Fatalf("help does not mention %s:\n%s", want, ta.stdout.String())
		}
	}
}

func TestRunVersion(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"--version"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if got := strings.TrimSpace(ta.stdout.String()); got != "scancompare 1.2.3 (commit abc123, built 2024-05-01)" {
		t.Fatalf("unexpected version output: %q", got)
	}
}

func TestRunVersionIgnoresConfigError(t *testing.T) {
	ta := newTestApp(t)
	ta.loadConfig = func() (model.Config, error) {
		return model.Config{}, errors.New("failed to read config: yaml: line 2")
	}

	if code := ta.run([]string{"--version"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}
	if !strings.HasPrefix(ta.stdout.String(), "scancompare 1.2.3") {
		t.Fatalf("unexpected version output: %q", ta.stdout.String())
	}
}

func TestRunConfigErrorReportedAfterParsing(t *testing.T) {
	ta := newTestApp(t)
	ta.loadConfig = func() (model.Config, error) {
		return model.Config{}, errors.New("failed to read config: yaml: line 2")
	}

	if code := ta.run([]string{"--auto", "--mock-no", "alpine"}); code != exitUsage {
		t.Fatalf("expected conflict to win, got exit %d", code)
	}

	ta = newTestApp(t)
	ta.loadConfig = func() (model.Config, error) {
		return model.Config{}, errors.New("failed to read config: yaml: line 2")
	}
	if code := ta.run([]string{"--auto", "alpine"}); code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(ta.stderr.String(), "yaml: line 2") {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}
}

func TestRunScanJSON(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"--auto", "-o", "json", "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}

	var report model.ComparisonReportJSON
	if err := json.Unmarshal(ta.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, ta.stdout.String())
	}
	if report.Image != "debian:12" || report.ReportID == "" {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if len(report.Scanners) != 2 || report.Scanners[0] != "trivy" || report.Scanners[1] != "grype" {
		t.Fatalf("unexpected scanners: %v", report.Scanners)
	}
	if report.Summary.Shared == 0 {
		t.Fatalf("expected shared findings, got summary %+v", report.Summary)
	}
}

func TestRunFailOnThreshold(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"--auto", "-o", "json", "--fail-on", "critical", "debian:12"}); code != exitThreshold {
		t.Fatalf("expected exit %d, got %d", exitThreshold, code)
	}
	if !strings.Contains(ta.stderr.String(), "at or above CRITICAL") {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}

	ta = newTestApp(t)
	if code := ta.run([]string{"--auto", "-o", "json", "--scanners", "grype", "--fail-on", "critical", "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestRunMissingScannerFollowsMode(t *testing.T) {
	ta := newTestApp(t)
	ta.missing["grype"] = true
	if code := ta.run([]string{"--mock-no", "-o", "json", "debian:12"}); code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(ta.stderr.String(), "grype was not found on PATH") {
		t.Fatalf("prompt not shown: %q", ta.stderr.String())
	}
	if !strings.Contains(ta.stderr.String(), "scanner executable not found") {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}

	ta = newTestApp(t)
	ta.missing["grype"] = true
	if code := ta.run([]string{"--mock-yes", "-o", "json", "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}
	var report model.ComparisonReportJSON
	if err := json.Unmarshal(ta.stdout.Bytes(), &report); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if len(report.Scanners) != 1 || report.Scanners[0] != "trivy" {
		t.Fatalf("unexpected scanners: %v", report.Scanners)
	}
}

func TestRunNoScannersInstalled(t *testing.T) {
	ta := newTestApp(t)
	ta.missing["trivy"] = true
	ta.missing["grype"] = true
	if code := ta.run([]string{"--auto", "debian:12"}); code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(ta.stderr.String(), "no scanners available") {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}
}

func TestRunHTMLKeepsExistingReport(t *testing.T) {
	ta := newTestApp(t)
	existing := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if code := ta.run([]string{"--mock-no", "-o", "html", "-f", existing, "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}

	data, err := os.ReadFile(existing)
	if err != nil || string(data) != "old" {
		t.Fatalf("existing report was modified: %q %v", data, err)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(existing), "report_*.html"))
	if len(matches) != 1 {
		t.Fatalf("expected one timestamped report, got %v", matches)
	}
	if len(ta.opened) != 0 {
		t.Fatalf("browser opened without a terminal: %v", ta.opened)
	}
}

func TestRunHTMLOverwritesAndOpens(t *testing.T) {
	ta := newTestApp(t)
	ta.interactive = true
	existing := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if code := ta.run([]string{"--mock-yes", "-o", "html", "-f", existing, "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}

	data, _ := os.ReadFile(existing)
	if !strings.Contains(string(data), "CVE-2023-4911") {
		t.Fatalf("report was not overwritten")
	}
	if len(ta.opened) != 1 || ta.opened[0] != existing {
		t.Fatalf("expected browser to open %s, got %v", existing, ta.opened)
	}
}

func TestRunECRFindingsSkippedForOtherRegistries(t *testing.T) {
	ta := newTestApp(t)
	ta.awsConfig = func(bool) awsconfig.Service {
		t.Fatal("AWS config must not be loaded for non-ECR images")
		return nil
	}
	if code := ta.run([]string{"--auto", "-o", "json", "--ecr-findings", "debian:12"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}
	if !strings.Contains(ta.stderr.String(), "skipping ECR findings") {
		t.Fatalf("expected a warning, got %q", ta.stderr.String())
	}
}

type fakeAWSConfig struct {
	err error
}

func (f fakeAWSConfig) GetAWSCfg(context.Context, string, string) (aws.Config, error) {
	return aws.Config{Region: "us-west-2"}, f.err
}

type fakeSTS struct{}

func (fakeSTS) Identity(context.Context) (awssts.Identity, error) {
	return awssts.Identity{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/ci"}, nil
}

func TestRunDoctor(t *testing.T) {
	ta := newTestApp(t)
	ta.missing["grype"] = true
	ta.awsConfig = func(bool) awsconfig.Service { return fakeAWSConfig{} }
	ta.newSTS = func(aws.Config) awssts.Service { return fakeSTS{} }

	if code := ta.run([]string{"doctor", "--aws"}); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, ta.stderr.String())
	}

	out := ta.stdout.String()
	for _, want := range []string{"/usr/local/bin/trivy", "0.50.1", "not found", "arn:aws:iam::123456789012:user/ci", "none, using defaults"} {
		if !strings.Contains(out, want) {
			t.Fatalf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDoctorWithoutScanners(t *testing.T) {
	ta := newTestApp(t)
	ta.missing["trivy"] = true
	ta.missing["grype"] = true

	if code := ta.run([]string{"doctor"}); code != exitFailure {
		t.Fatalf("expected exit %d, got %d", exitFailure, code)
	}
	if !strings.Contains(ta.stderr.String(), errNoScanners.Error()) {
		t.Fatalf("unexpected stderr: %q", ta.stderr.String())
	}
}

func TestRunImageNamedDoctor(t *testing.T) {
	for _, args := range [][]string{
		{"doctor:latest", "--auto", "-o", "json"},
		{"--auto", "-o", "json", "doctor"},
	} {
		ta := newTestApp(t)
		if code := ta.run(args); code != exitOK {
			t.Fatalf("%v: expected exit 0, got %d: %s", args, code, ta.stderr.String())
		}
		var report model.ComparisonReportJSON
		if err := json.Unmarshal(ta.stdout.Bytes(), &report); err != nil {
			t.Fatalf("%v: stdout is not JSON: %v", args, err)
		}
		if !strings.HasPrefix(report.Image, "doctor") {
			t.Fatalf("%v: unexpected image %q", args, report.Image)
		}
	}

	ta := newTestApp(t)
	ta.run([]string{"--help"})
	if !strings.Contains(ta.stdout.String(), "doctor:latest") {
		t.Fatalf("help does not explain how to scan an image named doctor:\n%s", ta.stdout.String())
	}
}

func TestRunDoctorRejectsArguments(t *testing.T) {
	ta := newTestApp(t)
	if code := ta.run([]string{"doctor", "extra"}); code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}
