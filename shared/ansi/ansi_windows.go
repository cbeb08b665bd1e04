//go:build windows

package ansi

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
)

const enableVirtualTerminalProcessing = 0x0004

// EnableANSI turns on escape sequence processing for each writer that is a
// Windows console. Other writers are ignored.
func EnableANSI(writers ...io.Writer) {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	for _, w := range writers {
		f, ok := w.(*os.File)
		if !ok {
			continue
		}

		handle := windows.Handle(f.Fd())

		var mode uint32
		if err := windows.GetConsoleMode(handle, &mode); err != nil {
			continue
		}

		_ = windows.SetConsoleMode(handle, mode|enableVirtualTerminalProcessing)
	}
}
