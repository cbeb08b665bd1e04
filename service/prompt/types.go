package prompt

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/drewtwitchell/scancompare/model"
)

// maxAttempts bounds how often an unrecognised answer is re-asked.
const maxAttempts = 3

type service struct {
	mode        model.AutomationMode
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	logger      *slog.Logger
}

// Service is the interface for answering yes/no prompts.
type Service interface {
	// Confirm asks a yes/no question and returns the answer chosen by the
	// automation mode or typed by the user.
	Confirm(question string, defaultAnswer bool) (bool, error)
	Mode() model.AutomationMode
}
