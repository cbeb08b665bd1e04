// Package main is the entry point for the scancompare application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/drewtwitchell/scancompare/model"
	awsconfig "github.com/drewtwitchell/scancompare/service/aws_config"
	"github.com/drewtwitchell/scancompare/service/config"
	"github.com/drewtwitchell/scancompare/service/flag"
	"github.com/drewtwitchell/scancompare/service/scanner"
	awssts "github.com/drewtwitchell/scancompare/service/sts"
	"github.com/drewtwitchell/scancompare/shared/console"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitThreshold = 3
)

// app holds the process streams and the collaborators that tests replace.
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
	versionInfo model.VersionInfo

	runCmd      scanner.Runner
	lookPath    scanner.LookPath
	awsConfig   func(interactive bool) awsconfig.Service
	newSTS      func(cfg aws.Config) awssts.Service
	openBrowser func(path string) error
	loadConfig  func() (model.Config, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: console.IsTerminal(stdin) && console.IsTerminal(stderr),
		versionInfo: model.VersionInfo{Version: version, Commit: commit, Date: date},
		runCmd:      scanner.ExecRunner,
		lookPath:    exec.LookPath,
		awsConfig:   awsconfig.NewService,
		newSTS:      awssts.NewService,
		openBrowser: openInBrowser,
		loadConfig: func() (model.Config, error) {
			return config.NewService().Load("")
		},
	}
	return a.run(args)
}

func (a *app) run(args []string) int {
	return a.exitCode(a.dispatch(args))
}

func (a *app) dispatch(args []string) error {
	// A broken config file must not hide command line mistakes, so parsing
	// runs first and the config error is reported afterwards.
	cfg, cfgErr := a.loadConfig()

	// Only the bare word selects the subcommand; "doctor:latest" is scanned.
	if len(args) > 0 && args[0] == "doctor" {
		if cfgErr != nil {
			return cfgErr
		}
		return a.runDoctor(args[1:], cfg)
	}

	flags, err := flag.NewService(a.stdout, cfg).Parse(args)
	if err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(a.stdout, a.versionInfo.String())
		return nil
	}
	if cfgErr != nil {
		return cfgErr
	}

	return a.runScan(flags, cfg)
}

func (a *app) exitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	var conflictErr *flag.ConflictError
	if errors.As(err, &conflictErr) {
		fmt.Fprintf(a.stderr, "Error: %s (got %s)\n", conflictErr.Error(), conflictErr.Detail())
		return exitUsage
	}

	var usageErr *flag.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(a.stderr, "Error: %v\nRun 'scancompare --help' for usage.\n", usageErr)
		return exitUsage
	}

	var thresholdErr *thresholdError
	if errors.As(err, &thresholdErr) {
		fmt.Fprintf(a.stderr, "Error: %v\n", thresholdErr)
		return exitThreshold
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return exitFailure
}

func openInBrowser(path string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, path)
	return exec.Command(cmd, args...).Start()
}
