// Package model defines the data structures used throughout the application.
package model

import "fmt"

// VersionInfo contains build-time metadata about the application.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("scancompare %s (commit %s, built %s)", v.Version, v.Commit, v.Date)
}
