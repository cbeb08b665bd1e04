package flag

import (
	"io"

	"github.com/drewtwitchell/scancompare/model"
)

type service struct {
	out      io.Writer
	defaults model.Config
}

// Service is the interface for CLI flag service.
type Service interface {
	// Parse parses the command-line tokens, excluding the program name.
	Parse(tokens []string) (model.Flags, error)
	// Usage returns the help text printed for --help.
	Usage() string
}
