package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
)

// lockedWriter serializes writes from the session goroutines and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// consoleView renders a map session as text lines.
type consoleView struct {
	out io.Writer
}

func newConsoleView(out io.Writer) *consoleView {
	return &consoleView{out: out}
}

func (v *consoleView) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *consoleView) SetViewport(center geo.Coordinate, zoom int) {
	v.printf("[map] center %s zoom %d", center, zoom)
}

func (v *consoleView) AttachMarker(m session.Marker) {
	v.printf("[map] + %s marker %q at %s", m.Kind, m.Title, m.Position)
}

func (v *consoleView) DetachMarker(m session.Marker) {
	v.printf("[map] - %s marker %q", m.Kind, m.Title)
}

func (v *consoleView) ShowPopup(sel session.SelectionState) {
	if !sel.HasPlace() {
		return
	}
	addr := sel.Address
	if sel.AddressPending {
		addr += " (resolving...)"
	}
	v.printf("[popup] %s\n        %s", sel.Place.DisplayName(), addr)
}

func (v *consoleView) HidePopup() {
	v.printf("[popup] closed")
}

func (v *consoleView) RenderRoute(d *geo.Directions) {
	if len(d.Routes) == 0 {
		v.printf("[route] no routes")
		return
	}
	r := d.Routes[0]
	v.printf("[route] %s via %s", d.Query.Mode, r.Summary)
	for i, step := range d.StepInstructions() {
		v.printf("        %d. %s", i+1, step)
	}
}

func (v *consoleView) Alert(msg string) {
	v.printf("[alert] %s", msg)
}

func (v *consoleView) Advisory(msg string) {
	v.printf("[notice] %s", msg)
}
