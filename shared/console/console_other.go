//go:build !windows

package console

import (
	"os"
	"strings"
)

// IsBlueBackground reports whether COLORFGBG names a blue background.
func IsBlueBackground() bool {
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	bg := strings.TrimSpace(parts[len(parts)-1])

	// 4 is blue and 12 bright blue in the 16 color palette.
	return bg == "4" || bg == "12"
}
