package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/drewtwitchell/scancompare/service/compare"
	"github.com/drewtwitchell/scancompare/service/ecrfindings"
	"github.com/drewtwitchell/scancompare/service/flag"
	"github.com/drewtwitchell/scancompare/service/output"
	"github.com/drewtwitchell/scancompare/service/prompt"
	"github.com/drewtwitchell/scancompare/service/scanner"
	"github.com/drewtwitchell/scancompare/shared/banner"
	"github.com/drewtwitchell/scancompare/shared/console"
	htmloutput "github.com/drewtwitchell/scancompare/shared/html_output"
	"github.com/drewtwitchell/scancompare/shared/logging"
	"github.com/drewtwitchell/scancompare/shared/spinner"
)

// thresholdError reports findings at or above the --fail-on severity.
type thresholdError struct {
	threshold string
	count     int
}

func (e *thresholdError) Error() string {
	return fmt.Sprintf("%d vulnerabilities at or above %s", e.count, e.threshold)
}

func (a *app) runScan(flags model.Flags, cfg model.Config) error {
	logger, closer, err := logging.New(a.stderr, flags.LogLevel, flags.LogFile, !console.IsTerminal(a.stderr))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	prompter := prompt.NewService(flag.ResolveMode(flags), a.stdin, a.stderr, a.interactive, logger)
	logger.Debug("starting scan", "image", flags.Image, "mode", prompter.Mode(), "config", cfg.Source)

	scanners, err := a.selectScanners(flags, cfg, prompter, logger)
	if err != nil {
		return err
	}

	format := output.ParseFormat(flags.Output)
	reportPath := ""
	if format == output.FormatHTML {
		reportPath, err = a.reportPath(flags, cfg, prompter)
		if err != nil {
			return err
		}
	}

	outputService := output.NewService(output.Options{
		Format:     format,
		Writer:     a.stdout,
		ReportPath: reportPath,
		Tool:       a.versionInfo.String(),
	})

	if format == output.FormatTable && console.IsTerminal(a.stdout) {
		banner.DrawBannerTitle(a.stdout)
	}
	if console.IsTerminal(a.stderr) {
		spinner.StartSpinner(a.stderr, spinner.Suffix(flags.Image, scannerNames(scanners)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := scanner.RunAll(ctx, scanners, flags.Image, flags.Timeout, logger)
	cmp := compare.NewService().Compare(flags.Image, results)
	if len(cmp.Scanners) == 0 {
		outputService.StopSpinner()
		return fmt.Errorf("every scanner failed: %s", failureList(cmp.Summary.Failed))
	}

	if err := outputService.Render(cmp); err != nil {
		return err
	}

	if path := outputService.ReportPath(); path != "" && a.interactive {
		open, err := prompter.Confirm("Open the report in your browser?", false)
		if err != nil {
			return err
		}
		if open {
			if err := a.openBrowser(path); err != nil {
				logger.Warn("failed to open browser", "path", path, "err", err)
			}
		}
	}

	if compare.ExceedsThreshold(cmp, flags.FailOn) {
		return &thresholdError{threshold: flags.FailOn, count: countAtOrAbove(cmp, flags.FailOn)}
	}
	return nil
}

// selectScanners builds the requested scanners and asks before dropping one
// that is not installed.
func (a *app) selectScanners(flags model.Flags, cfg model.Config, prompter prompt.Service, logger *slog.Logger) ([]scanner.Scanner, error) {
	var selected []scanner.Scanner

	for _, name := range flags.Scanners {
		sc, err := scanner.New(name, cfg, a.runCmd, a.lookPath)
		if err != nil {
			return nil, err
		}
		if sc.Available() {
			selected = append(selected, sc)
			continue
		}

		proceed, err := prompter.Confirm(fmt.Sprintf("%s was not found on PATH. Continue with the remaining scanners?", name), true)
		if err != nil {
			return nil, err
		}
		if !proceed {
			return nil, fmt.Errorf("%s: %w", name, scanner.ErrNotInstalled)
		}
		logger.Warn("skipping scanner that is not installed", "scanner", name)
	}

	if flags.ECRFindings {
		if _, err := ecrfindings.ParseImage(flags.Image); err != nil {
			logger.Warn("skipping ECR findings", "image", flags.Image, "err", err)
		} else {
			selected = append(selected, ecrfindings.NewService(flags.Image, flags.Profile, a.awsConfig(a.interactive)))
		}
	}

	if len(selected) == 0 {
		return nil, errors.New("no scanners available: install trivy or grype, or run 'scancompare doctor'")
	}
	return selected, nil
}

// reportPath picks the HTML report location, asking before overwriting.
func (a *app) reportPath(flags model.Flags, cfg model.Config, prompter prompt.Service) (string, error) {
	now := time.Now()
	path := flags.OutputFile
	if path == "" {
		path = htmloutput.GenerateReportPath(cfg.ReportDir, flags.Image, now)
	}
	if !htmloutput.FileExists(path) {
		return path, nil
	}

	overwrite, err := prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", path), true)
	if err != nil {
		return "", err
	}
	if overwrite {
		return path, nil
	}
	return htmloutput.TimestampedSibling(path, now), nil
}

func scannerNames(scanners []scanner.Scanner) []string {
	names := make([]string, 0, len(scanners))
	for _, sc := range scanners {
		names = append(names, sc.Name())
	}
	return names
}

func failureList(failed map[string]string) string {
	parts := make([]string, 0, len(failed))
	for name, msg := range failed {
		parts = append(parts, name+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func countAtOrAbove(cmp model.Comparison, threshold string) int {
	limit := model.SeverityRank(threshold)
	count := 0
	for _, row := range cmp.Rows {
		if model.SeverityRank(row.Severity) >= limit {
			count++
		}
	}
	return count
}
