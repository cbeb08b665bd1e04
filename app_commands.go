package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/drewtwitchell/scancompare/model"
	"github.com/drewtwitchell/scancompare/service/flag"
	"github.com/drewtwitchell/scancompare/service/scanner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/pflag"
)

var errNoScanners = errors.New("neither trivy nor grype is installed")

// runDoctor reports which scanners are installed and, with --aws, which AWS
// identity ECR findings would be read as.
func (a *app) runDoctor(args []string, cfg model.Config) error {
	fs := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
	fs.SetOutput(a.stdout)
	checkAWS := fs.Bool("aws", false, "Also check the AWS credentials used by --ecr-findings")
	profile := fs.StringP("profile", "p", cfg.Profile, "AWS profile to check")
	region := fs.StringP("region", "r", cfg.Region, "AWS region to check")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &flag.UsageError{Err: err}
	}
	if fs.NArg() > 0 {
		return &flag.UsageError{Msg: "usage: scancompare doctor [--aws] [--profile name] [--region name]"}
	}

	ctx := context.Background()

	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.AppendHeader(table.Row{"Check", "Status", "Location", "Details"})

	installed := 0
	for _, name := range []string{scanner.NameTrivy, scanner.NameGrype} {
		sc, err := scanner.New(name, cfg, a.runCmd, a.lookPath)
		if err != nil {
			return err
		}
		if !sc.Available() {
			t.AppendRow(table.Row{name, text.FgRed.Sprint("not found"), "-", "install it and make sure it is on PATH"})
			continue
		}
		installed++

		ver, err := sc.Version(ctx)
		if err != nil {
			t.AppendRow(table.Row{name, text.FgYellow.Sprint("broken"), sc.Path(), err.Error()})
			continue
		}
		t.AppendRow(table.Row{name, text.FgGreen.Sprint("ok"), sc.Path(), ver})
	}

	if *checkAWS {
		t.AppendRow(a.awsCheck(ctx, *region, *profile))
	}

	source := cfg.Source
	if source == "" {
		source = "none, using defaults"
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"config", text.FgGreen.Sprint("ok"), source, ""})

	t.SetStyle(table.StyleRounded)
	t.Render()

	if installed == 0 {
		return errNoScanners
	}
	return nil
}

func (a *app) awsCheck(ctx context.Context, region, profile string) table.Row {
	awsCfg, err := a.awsConfig(a.interactive).GetAWSCfg(ctx, region, profile)
	if err != nil {
		return table.Row{"aws", text.FgRed.Sprint("error"), "-", err.Error()}
	}

	id, err := a.newSTS(awsCfg).Identity(ctx)
	if err != nil {
		return table.Row{"aws", text.FgRed.Sprint("error"), awsCfg.Region, err.Error()}
	}
	return table.Row{"aws", text.FgGreen.Sprint("ok"), awsCfg.Region, fmt.Sprintf("%s (account %s)", id.ARN, id.Account)}
}
