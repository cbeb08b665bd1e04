// Package spinner shows progress while scanners run.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

var (
	mu     sync.Mutex
	loader *spinner.Spinner
)

// Suffix describes which scanners are working on which image.
func Suffix(image string, scanners []string) string {
	return fmt.Sprintf(" Scanning %s with %s...", image, strings.Join(scanners, ", "))
}

// StartSpinner starts the loading spinner on w.
func StartSpinner(w io.Writer, suffix string) {
	mu.Lock()
	defer mu.Unlock()

	if loader != nil {
		loader.Stop()
	}
	loader = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	loader.Color("yellow") //nolint:errcheck
	loader.Suffix = suffix
	loader.Start()
}

// StopSpinner stops the loading spinner if one is running.
func StopSpinner() {
	mu.Lock()
	defer mu.Unlock()

	if loader != nil {
		loader.Stop()
		loader = nil
	}
}
