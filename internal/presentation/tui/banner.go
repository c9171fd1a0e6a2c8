package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the gleaner banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"        _                       ", "#34d399"},
		{"   __ _| | ___  __ _ _ __   ___ _ __ ", "#2dd4bf"},
		{"  / _` | |/ _ \\/ _` | '_ \\ / _ \\ '__|", "#22d3ee"},
		{" | (_| | |  __/ (_| | | | |  __/ |   ", "#38bdf8"},
		{"  \\__, |_|\\___|\\__,_|_| |_|\\___|_|   ", "#60a5fa"},
		{"  |___/                              ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
