package model

import "time"

// Config holds the persistent settings read from the config file and environment.
// Command line flags default to these values.
type Config struct {
	TrivyPath string
	GrypePath string
	ReportDir string
	Scanners  []string
	Output    string
	Timeout   time.Duration
	FailOn    string
	LogLevel  string
	Region    string
	Profile   string

	// Source is the config file that was read, empty when none was found.
	Source string
}
