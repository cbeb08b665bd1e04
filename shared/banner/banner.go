// Package banner draws the scancompare title banner.
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/drewtwitchell/scancompare/shared/ansi"
	"github.com/drewtwitchell/scancompare/shared/console"
)

type bannerColor int

const (
	bannerCyan bannerColor = iota
	bannerBlue
	bannerGreen
	bannerPurple
	bannerOrange
	bannerRed
)

var bannerTitleColors = []string{
	"\x1b[38;2;0;175;240m",  // Cyan
	"\x1b[38;2;24;119;242m", // Blue
	"\x1b[38;2;30;215;96m",  // Green
	"\x1b[38;2;145;70;255m", // Purple
	"\x1b[38;2;255;153;0m",  // Orange
	"\x1b[38;2;228;0;43m",   // Red
}

var bannerTitleColorNames = []string{
	"Cyan",
	"Blue",
	"Green",
	"Purple",
	"Orange",
	"Red",
}

const (
	bannerTitleColorDefault        = bannerCyan
	bannerTitleColorBlueBackground = bannerOrange
	bannerTitleColorEnv            = "SCANCOMPARE_BANNER_COLOR"
)

var titleLines = []string{
	" ███████╗  ██████╗  █████╗  ███╗   ██╗  ██████╗  ██████╗  ███╗   ███╗ ██████╗   █████╗  ██████╗  ███████╗",
	" ██╔════╝ ██╔════╝ ██╔══██╗ ████╗  ██║ ██╔════╝ ██╔═══██╗ ████╗ ████║ ██╔══██╗ ██╔══██╗ ██╔══██╗ ██╔════╝",
	" ███████╗ ██║      ███████║ ██╔██╗ ██║ ██║      ██║   ██║ ██╔████╔██║ ██████╔╝ ███████║ ██████╔╝ █████╗  ",
	" ╚════██║ ██║      ██╔══██║ ██║╚██╗██║ ██║      ██║   ██║ ██║╚██╔╝██║ ██╔═══╝  ██╔══██║ ██╔══██╗ ██╔══╝  ",
	" ███████║ ╚██████╗ ██║  ██║ ██║ ╚████║ ╚██████╗ ╚██████╔╝ ██║ ╚═╝ ██║ ██║      ██║  ██║ ██║  ██║ ███████╗",
	" ╚══════╝  ╚═════╝ ╚═╝  ╚═╝ ╚═╝  ╚═══╝  ╚═════╝  ╚═════╝  ╚═╝     ╚═╝ ╚═╝      ╚═╝  ╚═╝ ╚═╝  ╚═╝ ╚══════╝",
}

func printCenteredLines(w io.Writer, lines []string, width int) {
	for _, line := range lines {
		pad := 0

		if n := utf8.RuneCountInString(line); width > n {
			pad = (width - n) / 2
		}

		if pad > 0 {
			fmt.Fprint(w, strings.Repeat(" ", pad))
		}

		fmt.Fprintln(w, line)
	}
}

func bannerTitleColor() bannerColor {
	if color, ok := bannerTitleColorFromEnv(); ok {
		return color
	}

	if console.IsBlueBackground() {
		return bannerTitleColorBlueBackground
	}

	return bannerTitleColorDefault
}

func bannerTitleColorFromEnv() (bannerColor, bool) {
	raw := strings.TrimSpace(os.Getenv(bannerTitleColorEnv))

	if raw == "" {
		return 0, false
	}

	for idx, color := range bannerTitleColors {
		if strings.EqualFold(raw, bannerTitleColorNames[idx]) || raw == color {
			return bannerColor(idx), true
		}
	}

	return 0, false
}

// DrawBannerTitle prints the title banner to w, centered when w is a terminal.
func DrawBannerTitle(w io.Writer) {
	ansi.EnableANSI(w)

	width := console.Width(w, 80)

	fmt.Fprint(w, bannerTitleColors[bannerTitleColor()])
	printCenteredLines(w, titleLines, width)
	fmt.Fprint(w, "\x1b[0m")
}
