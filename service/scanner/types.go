package scanner

import (
	"context"

	"github.com/drewtwitchell/scancompare/model"
)

// Scanner names.
const (
	NameTrivy = "trivy"
	NameGrype = "grype"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// LookPath resolves an executable name to a path.
type LookPath func(file string) (string, error)

// Scanner scans a container image with one vulnerability source.
type Scanner interface {
	Name() string
	// Available reports whether the scanner can run on this machine.
	Available() bool
	// Path is the resolved executable or endpoint, empty when unavailable.
	Path() string
	Version(ctx context.Context) (string, error)
	Scan(ctx context.Context, image string) (model.ScanResult, error)
}

type reportParser func(data []byte) (findings []model.Finding, version string, err error)

type binaryScanner struct {
	name        string
	binary      string
	run         Runner
	look        LookPath
	scanArgs    func(image string) []string
	versionArgs []string
	parse       reportParser
}
