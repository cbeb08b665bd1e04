package model

import "time"

// Flags represents the parsed command line of a single invocation.
type Flags struct {
	Image   string
	Auto    bool
	MockYes bool
	MockNo  bool

	Version     bool
	Output      string
	OutputFile  string
	Scanners    []string
	ECRFindings bool
	Profile     string
	Region      string
	FailOn      string
	Timeout     time.Duration
	LogLevel    string
	LogFile     string
}
