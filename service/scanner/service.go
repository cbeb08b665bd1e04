// Package scanner runs external vulnerability scanners and normalises their reports.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/drewtwitchell/scancompare/model"
	"golang.org/x/sync/errgroup"
)

// ErrNotInstalled is returned when a scanner executable cannot be found.
var ErrNotInstalled = errors.New("scanner executable not found")

// New creates the named scanner using the executable paths from cfg.
// Nil run and look fall back to ExecRunner and exec.LookPath.
func New(name string, cfg model.Config, run Runner, look LookPath) (Scanner, error) {
	switch strings.ToLower(name) {
	case NameTrivy:
		return NewTrivy(cfg.TrivyPath, run, look), nil
	case NameGrype:
		return NewGrype(cfg.GrypePath, run, look), nil
	default:
		return nil, fmt.Errorf("unknown scanner %q", name)
	}
}

func newBinaryScanner(name, binary string, run Runner, look LookPath) *binaryScanner {
	if binary == "" {
		binary = name
	}
	if run == nil {
		run = ExecRunner
	}
	if look == nil {
		look = exec.LookPath
	}
	return &binaryScanner{name: name, binary: binary, run: run, look: look}
}

func (s *binaryScanner) Name() string {
	return s.name
}

func (s *binaryScanner) Path() string {
	p, err := s.look(s.binary)
	if err != nil {
		return ""
	}
	return p
}

func (s *binaryScanner) Available() bool {
	return s.Path() != ""
}

func (s *binaryScanner) Version(ctx context.Context) (string, error) {
	path := s.Path()
	if path == "" {
		return "", fmt.Errorf("%s: %w", s.name, ErrNotInstalled)
	}
	out, err := s.run(ctx, path, s.versionArgs...)
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", s.name, err)
	}
	return parseVersionOutput(out), nil
}

func (s *binaryScanner) Scan(ctx context.Context, image string) (model.ScanResult, error) {
	result := model.ScanResult{Scanner: s.name, Image: image}

	path := s.Path()
	if path == "" {
		return result, fmt.Errorf("%s: %w", s.name, ErrNotInstalled)
	}

	started := time.Now()
	out, err := s.run(ctx, path, s.scanArgs(image)...)
	result.Duration = time.Since(started)
	if err != nil {
		return result, fmt.Errorf("%s scan of %s failed: %w", s.name, image, err)
	}

	findings, version, err := s.parse(out)
	if err != nil {
		return result, fmt.Errorf("failed to parse %s report: %w", s.name, err)
	}
	result.Findings = findings
	result.ScannerVersion = version

	return result, nil
}

// ExecRunner runs a command and returns stdout. The last stderr line is
// included in the error when the command fails.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s did not finish: %w", name, ctxErr)
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w", msg, err)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// RunAll runs every scanner concurrently against image. A failing scanner is
// recorded in its result and does not stop the others. Results keep the
// order of scanners.
func RunAll(ctx context.Context, scanners []Scanner, image string, timeout time.Duration, logger *slog.Logger) []model.ScanResult {
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]model.ScanResult, len(scanners))
	g, groupCtx := errgroup.WithContext(ctx)

	for i, sc := range scanners {
		i, sc := i, sc
		g.Go(func() error {
			scanCtx := groupCtx
			if timeout > 0 {
				var cancel context.CancelFunc
				scanCtx, cancel = context.WithTimeout(groupCtx, timeout)
				defer cancel()
			}

			logger.Debug("scanner started", "scanner", sc.Name(), "image", image)
			res, err := sc.Scan(scanCtx, image)
			res.Scanner = sc.Name()
			res.Image = image
			if err != nil {
				res.Err = err
				logger.Error("scanner failed", "scanner", sc.Name(), "err", err)
			} else {
				logger.Info("scanner finished", "scanner", sc.Name(), "findings", len(res.Findings), "duration", res.Duration.Round(time.Millisecond))
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func parseVersionOutput(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return lastLine(string(out))
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
