package pretty

import (
	"os"

	"golang.org/x/term"
)

func AllowDynamic(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Turns color on only if the user hasn't disabled it and f is a terminal.
func ConfigureColor(f *os.File, wanted bool) {
	SetColorEnabled(wanted && AllowDynamic(f))
}
