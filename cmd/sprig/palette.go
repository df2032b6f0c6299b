package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// palette holds the colours used for terminal output
type palette struct {
	enabled bool
	err     *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		enabled: enabled,
		err:     color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// paletteLogger writes evaluation diagnostics in the error colour
type paletteLogger struct {
	mu sync.Mutex
	w  io.Writer
	ui palette
}

func (l *paletteLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ui.err.Fprint(l.w, fmt.Sprint(values...))
}

func (l *paletteLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ui.err.Fprintln(l.w, fmt.Sprint(values...))
}
