// Package prompt answers yes/no questions according to the automation mode.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/drewtwitchell/scancompare/model"
)

// NewService creates a prompt service. interactive reports whether in is a
// terminal; prompts fall back to their default when it is not.
func NewService(mode model.AutomationMode, in io.Reader, out io.Writer, interactive bool, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	var reader *bufio.Reader
	if in != nil {
		reader = bufio.NewReader(in)
	}
	return &service{
		mode:        mode,
		in:          reader,
		out:         out,
		interactive: interactive,
		logger:      logger,
	}
}

func (s *service) Mode() model.AutomationMode {
	return s.mode
}

func (s *service) Confirm(question string, defaultAnswer bool) (bool, error) {
	switch s.mode {
	case model.ModeYes:
		return s.decided(question, true), nil
	case model.ModeNo:
		return s.decided(question, false), nil
	case model.ModeAuto:
		return s.decided(question, defaultAnswer), nil
	}

	if !s.interactive || s.in == nil {
		s.logger.Warn("no terminal attached, using default answer", "question", question, "answer", yesNo(defaultAnswer))
		return defaultAnswer, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(s.out, "%s %s ", question, hint(defaultAnswer))

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return defaultAnswer, fmt.Errorf("failed to read answer: %w", err)
		}

		answer, ok := parseAnswer(line, defaultAnswer)
		if ok {
			return answer, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return defaultAnswer, nil
		}
		fmt.Fprintln(s.out, "Please answer yes or no.")
	}

	s.logger.Warn("no valid answer given, using default", "question", question, "answer", yesNo(defaultAnswer))
	return defaultAnswer, nil
}

func (s *service) decided(question string, answer bool) bool {
	fmt.Fprintf(s.out, "%s %s (--%s)\n", question, yesNo(answer), flagFor(s.mode))
	s.logger.Debug("prompt answered by automation mode", "mode", s.mode, "question", question, "answer", yesNo(answer))
	return answer
}

func parseAnswer(line string, defaultAnswer bool) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultAnswer, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}

func hint(defaultAnswer bool) string {
	if defaultAnswer {
		return "[Y/n]"
	}
	return "[y/N]"
}

func yesNo(answer bool) string {
	if answer {
		return "yes"
	}
	return "no"
}

func flagFor(mode model.AutomationMode) string {
	switch mode {
	case model.ModeYes:
		return "mock-yes"
	case model.ModeNo:
		return "mock-no"
	default:
		return string(mode)
	}
}
