//go:build windows

package console

import (
	"os"

	"golang.org/x/sys/windows"
)

const backgroundBlue = 0x0010

// IsBlueBackground reports whether the console behind stdout has a blue background.
func IsBlueBackground() bool {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(os.Stdout.Fd()), &info); err != nil {
		return false
	}

	return info.Attributes&backgroundBlue != 0
}
