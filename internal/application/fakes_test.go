package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
	"github.com/shrutiikadam/UrbanDepot1/internal/provider"
)

// fakeAdapter delegates each capability to a test-supplied function.
type fakeAdapter struct {
	search  func(ctx context.Context, req provider.SearchRequest) ([]geo.Place, error)
	geocode func(ctx context.Context, c geo.Coordinate) (string, error)
	route   func(ctx context.Context, q geo.DirectionsQuery) (*geo.Directions, error)
	locate  func(ctx context.Context) (geo.Coordinate, error)

	routeCalls  atomic.Int32
	searchCalls atomic.Int32
}

func (f *fakeAdapter) Search(ctx context.Context, req provider.SearchRequest) ([]geo.Place, error) {
	f.searchCalls.Add(1)
	if f.search == nil {
		return []geo.Place{}, nil
	}
	return f.search(ctx, req)
}

func (f *fakeAdapter) Geocode(ctx context.Context, c geo.Coordinate) (string, error) {
	if f.geocode == nil {
		return "Address of " + c.String(), nil
	}
	return f.geocode(ctx, c)
}

func (f *fakeAdapter) Route(ctx context.Context, q geo.DirectionsQuery) (*geo.Directions, error) {
	f.routeCalls.Add(1)
	if f.route == nil {
		return routeTo(q, "Head north"), nil
	}
	return f.route(ctx, q)
}

func (f *fakeAdapter) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	if f.locate == nil {
		return userLoc, nil
	}
	return f.locate(ctx)
}

var userLoc = geo.Coordinate{Lat: 19.0760, Lng: 72.8777}

func routeTo(q geo.DirectionsQuery, steps ...string) *geo.Directions {
	leg := geo.Leg{}
	for _, s := range steps {
		leg.Steps = append(leg.Steps, geo.Step{Instruction: s})
	}
	return &geo.Directions{Query: q, Routes: []geo.Route{{Summary: steps[0], Legs: []geo.Leg{leg}}}}
}

// recordingView records every call a session makes and flags marker leaks.
type recordingView struct {
	mu         sync.Mutex
	live       map[string]session.Marker
	violations []string
	viewports  []viewport
	popups     []session.SelectionState
	hides      int
	routes     []*geo.Directions
	alerts     []string
	advisories []string
}

type viewport struct {
	center geo.Coordinate
	zoom   int
}

func newRecordingView() *recordingView {
	return &recordingView{live: make(map[string]session.Marker)}
}

func (v *recordingView) SetViewport(center geo.Coordinate, zoom int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewports = append(v.viewports, viewport{center: center, zoom: zoom})
}

func (v *recordingView) AttachMarker(m session.Marker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.live[m.ID]; ok {
		v.violations = append(v.violations, fmt.Sprintf("marker %s attached twice", m.ID))
	}
	v.live[m.ID] = m
}

func (v *recordingView) DetachMarker(m session.Marker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.live[m.ID]; !ok {
		v.violations = append(v.violations, fmt.Sprintf("marker %s detached while not attached", m.ID))
	}
	delete(v.live, m.ID)
}

func (v *recordingView) ShowPopup(sel session.SelectionState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.popups = append(v.popups, sel)
}

func (v *recordingView) HidePopup() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hides++
}

func (v *recordingView) RenderRoute(d *geo.Directions) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.routes = append(v.routes, d)
}

func (v *recordingView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, msg)
}

func (v *recordingView) Advisory(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advisories = append(v.advisories, msg)
}

func (v *recordingView) liveOfKind(kind session.MarkerKind) []session.Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []session.Marker
	for _, m := range v.live {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (v *recordingView) lastViewport() viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewports[len(v.viewports)-1]
}

func (v *recordingView) alertsCopy() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

func (v *recordingView) advisoriesCopy() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.advisories...)
}

func (v *recordingView) routesCopy() []*geo.Directions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*geo.Directions(nil), v.routes...)
}

func (v *recordingView) violationsCopy() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.violations...)
}

type staticCatalog struct {
	places []geo.Place
	err    error
}

func (c staticCatalog) ListPlaces(context.Context) ([]geo.Place, error) {
	return c.places, c.err
}
