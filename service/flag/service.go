// Package flag resolves the scancompare command line into model.Flags.
package flag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/spf13/pflag"
)

const (
	defaultOutput   = "table"
	defaultTimeout  = 10 * time.Minute
	defaultLogLevel = "info"
)

var defaultScanners = []string{"trivy", "grype"}

var knownScanners = []string{"trivy", "grype"}

var validOutputs = []string{"table", "json", "html"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// NewService creates a new flag service. Help text is written to out, and
// unset flags fall back to the values in defaults.
func NewService(out io.Writer, defaults model.Config) Service {
	if out == nil {
		out = io.Discard
	}
	return &service{out: out, defaults: withBuiltinDefaults(defaults)}
}

func withBuiltinDefaults(cfg model.Config) model.Config {
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if len(cfg.Scanners) == 0 {
		cfg.Scanners = defaultScanners
	}
	return cfg
}

type flagValues struct {
	auto        *bool
	mockYes     *bool
	mockNo      *bool
	version     *bool
	output      *string
	outputFile  *string
	scanners    *[]string
	ecrFindings *bool
	profile     *string
	region      *string
	failOn      *string
	timeout     *time.Duration
	logLevel    *string
	logFile     *string
}

func (s *service) newFlagSet() (*pflag.FlagSet, flagValues) {
	fs := pflag.NewFlagSet("scancompare", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(s.out)

	v := flagValues{
		auto:        fs.Bool("auto", false, "Run non-interactively and let scancompare decide every prompt"),
		mockYes:     fs.Bool("mock-yes", false, "Run non-interactively and answer yes to every prompt"),
		mockNo:      fs.Bool("mock-no", false, "Run non-interactively and answer no to every prompt"),
		output:      fs.StringP("output", "o", s.defaults.Output, "Output format (table, json, or html)"),
		outputFile:  fs.StringP("output-file", "f", "", "Output file path for the html report"),
		scanners:    fs.StringSlice("scanners", s.defaults.Scanners, "Comma-separated scanners to run (trivy, grype)"),
		ecrFindings: fs.Bool("ecr-findings", false, "Include Amazon ECR image scan findings for ECR images"),
		profile:     fs.StringP("profile", "p", s.defaults.Profile, "AWS profile used for --ecr-findings"),
		region:      fs.StringP("region", "r", s.defaults.Region, "AWS region used for --ecr-findings"),
		failOn:      fs.String("fail-on", s.defaults.FailOn, "Exit with status 3 when a finding is at or above this severity"),
		timeout:     fs.Duration("timeout", s.defaults.Timeout, "Maximum duration of a single scanner run"),
		logLevel:    fs.StringP("log-level", "l", s.defaults.LogLevel, "Log level (debug, info, warn, error)"),
		logFile:     fs.String("log-file", "", "Also write JSON logs to this file, rotated by size"),
		version:     fs.BoolP("version", "v", false, "Show version information"),
	}

	fs.Usage = func() {
		fmt.Fprint(s.out, s.usage(fs))
	}

	return fs, v
}

func (s *service) usage(fs *pflag.FlagSet) string {
	var b bytes.Buffer
	b.WriteString("Usage:\n")
	b.WriteString("  scancompare <image> [--auto | --mock-yes | --mock-no] [flags]\n")
	b.WriteString("  scancompare doctor [--aws] [-p profile] [-r region]\n\n")
	b.WriteString("Scan a container image with several vulnerability scanners and compare the results.\n\n")
	b.WriteString("A first argument of exactly \"doctor\" runs the doctor command. To scan an image\n")
	b.WriteString("named doctor, give its tag or full reference, e.g. doctor:latest.\n\n")
	b.WriteString("Flags:\n")
	b.WriteString(fs.FlagUsages())
	return b.String()
}

// Usage returns the help text.
func (s *service) Usage() string {
	fs, _ := s.newFlagSet()
	return s.usage(fs)
}

// Parse parses tokens into model.Flags. It never reads os.Args.
func (s *service) Parse(tokens []string) (model.Flags, error) {
	fs, v := s.newFlagSet()

	if err := fs.Parse(tokens); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return model.Flags{}, err
		}
		return model.Flags{}, &UsageError{Err: err}
	}

	flags := model.Flags{
		Auto:        *v.auto,
		MockYes:     *v.mockYes,
		MockNo:      *v.mockNo,
		Version:     *v.version,
		Output:      strings.ToLower(strings.TrimSpace(*v.output)),
		OutputFile:  strings.TrimSpace(*v.outputFile),
		Scanners:    normalizeScanners(*v.scanners),
		ECRFindings: *v.ecrFindings,
		Profile:     *v.profile,
		Region:      *v.region,
		FailOn:      strings.ToUpper(strings.TrimSpace(*v.failOn)),
		Timeout:     *v.timeout,
		LogLevel:    strings.ToLower(strings.TrimSpace(*v.logLevel)),
		LogFile:     strings.TrimSpace(*v.logFile),
	}

	// --version needs no image, but the automation flags still exclude each other.
	if flags.Version {
		if set := automationFlagsSet(flags); len(set) > 1 {
			return model.Flags{}, &ConflictError{Flags: set}
		}
		return flags, nil
	}

	args := fs.Args()
	switch {
	case len(args) > 1:
		return model.Flags{}, &UsageError{Msg: fmt.Sprintf("expected a single image, got %d arguments: %q", len(args), args)}
	case len(args) == 0 || strings.TrimSpace(args[0]) == "":
		return model.Flags{}, &UsageError{Msg: "missing required argument: image"}
	}
	flags.Image = strings.TrimSpace(args[0])

	if set := automationFlagsSet(flags); len(set) > 1 {
		return model.Flags{}, &ConflictError{Flags: set}
	}

	if err := validate(flags); err != nil {
		return model.Flags{}, err
	}

	return flags, nil
}

func automationFlagsSet(flags model.Flags) []string {
	var set []string
	if flags.Auto {
		set = append(set, "--auto")
	}
	if flags.MockYes {
		set = append(set, "--mock-yes")
	}
	if flags.MockNo {
		set = append(set, "--mock-no")
	}
	return set
}

func validate(flags model.Flags) error {
	if !slices.Contains(validOutputs, flags.Output) {
		return &UsageError{Msg: fmt.Sprintf("invalid --output %q: must be one of %s", flags.Output, strings.Join(validOutputs, ", "))}
	}
	if !slices.Contains(validLogLevels, flags.LogLevel) {
		return &UsageError{Msg: fmt.Sprintf("invalid --log-level %q: must be one of %s", flags.LogLevel, strings.Join(validLogLevels, ", "))}
	}
	if flags.FailOn != "" && !model.IsValidSeverity(flags.FailOn) {
		return &UsageError{Msg: fmt.Sprintf("invalid --fail-on %q", flags.FailOn)}
	}
	if flags.Timeout <= 0 {
		return &UsageError{Msg: "--timeout must be positive"}
	}
	for _, name := range flags.Scanners {
		if !slices.Contains(knownScanners, name) {
			return &UsageError{Msg: fmt.Sprintf("unknown scanner %q: must be one of %s", name, strings.Join(knownScanners, ", "))}
		}
	}
	if len(flags.Scanners) == 0 && !flags.ECRFindings {
		return &UsageError{Msg: "no scanners selected"}
	}
	return nil
}

func normalizeScanners(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// ResolveMode derives the automation mode from parsed flags.
func ResolveMode(flags model.Flags) model.AutomationMode {
	switch {
	case flags.Auto:
		return model.ModeAuto
	case flags.MockYes:
		return model.ModeYes
	case flags.MockNo:
		return model.ModeNo
	default:
		return model.ModeInteractive
	}
}
