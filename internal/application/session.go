package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/session"
	"github.com/shrutiikadam/UrbanDepot1/internal/provider"
)

const (
	// MsgGeolocationUnsupported is the blocking alert raised when the host
	// cannot provide a location at all.
	MsgGeolocationUnsupported = "Geolocation is not supported by this browser."

	// MsgLocationUnavailable is the advisory raised when the user location
	// could not be determined.
	MsgLocationUnavailable = "Unable to determine your location."

	// MsgSearchUnavailable is the advisory raised when place search is disabled.
	MsgSearchUnavailable = "Place search is currently unavailable."

	// MsgSearchFailed is the advisory raised when a single search fails.
	MsgSearchFailed = "Search failed, please try again."

	// nearbyQuery is used by SearchNearby when no query has been typed.
	nearbyQuery = "parking"
)

var (
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("map session closed")

	// ErrSearchDisabled is returned by Search once the provider has reported
	// that it is unavailable.
	ErrSearchDisabled = fmt.Errorf("search disabled: %w", provider.ErrProviderUnavailable)
)

// MapView is the rendering surface a session drives. Calls are made while the
// session lock is held, so implementations must not call back into the
// session.
type MapView interface {
	SetViewport(center geo.Coordinate, zoom int)
	AttachMarker(m session.Marker)
	DetachMarker(m session.Marker)
	ShowPopup(sel session.SelectionState)
	HidePopup()
	RenderRoute(d *geo.Directions)
	// Alert is a blocking, user-acknowledged message.
	Alert(msg string)
	// Advisory is a non-blocking notice.
	Advisory(msg string)
}

// CatalogSource lists the platform's registered parking places.
type CatalogSource interface {
	ListPlaces(ctx context.Context) ([]geo.Place, error)
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	ID            string                 `json:"id"`
	State         session.SessionState   `json:"state"`
	Center        geo.Coordinate         `json:"center"`
	Zoom          int                    `json:"zoom"`
	UserLocation  *geo.Coordinate        `json:"user_location,omitempty"`
	Markers       []session.Marker       `json:"markers"`
	Selection     session.SelectionState `json:"selection"`
	Query         string                 `json:"query"`
	Mode          geo.TravelMode         `json:"mode"`
	SearchEnabled bool                   `json:"search_enabled"`
	Steps         []string               `json:"steps,omitempty"`
}

// MapSession is the controller of one interactive map. Operations return
// immediately; provider calls run on their own goroutines and reconcile
// under the session lock. Each async slot (search, geocode, route) is
// last-issued-wins: a completion that has been superseded is dropped.
type MapSession struct {
	id      string
	adapter provider.Adapter
	view    MapView
	logger  *zap.Logger

	// base is cancelled by Close and bounds every in-flight call.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	closed        bool
	state         session.SessionState
	resumeState   session.SessionState
	center        geo.Coordinate
	zoom          int
	user          *geo.Coordinate
	markers       *session.MarkerSet
	selection     session.SelectionState
	query         string
	mode          geo.TravelMode
	searchSeq     uint64
	searchEnabled bool

	directions *DirectionsOrchestrator
}

// NewMapSession creates an idle session rendering to view.
func NewMapSession(adapter provider.Adapter, view MapView, logger *zap.Logger) *MapSession {
	base, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	s := &MapSession{
		id:            id,
		adapter:       adapter,
		view:          view,
		logger:        logger.With(zap.String("session_id", id)),
		base:          base,
		cancel:        cancel,
		state:         session.StateIdle,
		center:        geo.DefaultCenter,
		zoom:          geo.DefaultZoom,
		markers:       session.NewMarkerSet(),
		mode:          geo.TravelModeDriving,
		searchEnabled: true,
	}
	s.directions = &DirectionsOrchestrator{s: s}
	return s
}

// ID returns the session identifier.
func (s *MapSession) ID() string { return s.id }

// Directions returns the directions orchestrator bound to this session.
func (s *MapSession) Directions() *DirectionsOrchestrator { return s.directions }

// Start shows the default viewport and asks the provider for the user's
// location. Idle -> Locating, then Ready once the location call settles.
func (s *MapSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.transitionLocked(session.StateLocating); err != nil {
		return err
	}
	s.view.SetViewport(s.center, s.zoom)

	s.spawnLocked(ctx, func(callCtx context.Context) {
		loc, err := s.adapter.CurrentLocation(callCtx)
		s.onLocation(loc, err)
	})
	return nil
}

func (s *MapSession) onLocation(loc geo.Coordinate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err != nil || !loc.Valid() {
		s.logger.Warn("user location unavailable", zap.Error(err))
		if errors.Is(err, provider.ErrLocationUnsupported) {
			s.view.Alert(MsgGeolocationUnsupported)
		} else {
			s.view.Advisory(MsgLocationUnavailable)
		}
	} else {
		s.user = &loc
		if mkErr := s.markers.SetUser(session.NewUserMarker(loc)); mkErr == nil {
			mk, _ := s.markers.User()
			s.view.AttachMarker(mk)
		}
		s.center = loc
		s.view.SetViewport(s.center, s.zoom)
		s.logger.Info("user located", zap.String("location", loc.String()))
	}

	switch {
	case s.state == session.StateLocating:
		s.state = session.StateReady
	case s.state == session.StateSearching && s.resumeState == session.StateLocating:
		s.resumeState = session.StateReady
	}
}

// SetQuery records the text of the search box.
func (s *MapSession) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.TrimSpace(text)
}

// SetTravelMode records the travel mode used for directions.
func (s *MapSession) SetTravelMode(mode geo.TravelMode) error {
	if !mode.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid travel mode: %s", mode))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return nil
}

// Search runs a place search for the current query. The first result, if
// any, becomes the selection. No results silently restore the prior state.
func (s *MapSession) Search(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == "" {
		return domain.NewValidationError("search query is empty")
	}
	return s.searchLocked(ctx, provider.SearchRequest{Query: s.query}, false)
}

// SearchNearby searches around the user's location and, once a place is
// selected, requests directions to it with the current travel mode.
func (s *MapSession) SearchNearby(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptLocked(); err != nil {
		return err
	}
	if s.user == nil {
		s.view.Advisory(MsgLocationUnavailable)
		return nil
	}
	q := s.query
	if q == "" {
		q = nearbyQuery
	}
	near := *s.user
	req := provider.SearchRequest{Query: q, Near: &near, RadiusM: provider.DefaultSearchRadiusM}
	return s.searchLocked(ctx, req, true)
}

func (s *MapSession) searchLocked(ctx context.Context, req provider.SearchRequest, thenRoute bool) error {
	if err := s.acceptLocked(); err != nil {
		return err
	}
	if !s.searchEnabled {
		return ErrSearchDisabled
	}
	if s.state != session.StateSearching {
		s.resumeState = s.state
	}
	if err := s.transitionLocked(session.StateSearching); err != nil {
		return err
	}

	s.searchSeq++
	seq := s.searchSeq
	s.logger.Debug("search issued", zap.String("query", req.Query), zap.Uint64("seq", seq))

	s.spawnLocked(ctx, func(callCtx context.Context) {
		places, err := s.adapter.Search(callCtx, req)
		s.onSearch(ctx, seq, places, err, thenRoute)
	})
	return nil
}

func (s *MapSession) onSearch(ctx context.Context, seq uint64, places []geo.Place, err error, thenRoute bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if seq != s.searchSeq || s.state != session.StateSearching {
		s.logger.Debug("stale search result dropped", zap.Uint64("seq", seq), zap.Uint64("latest", s.searchSeq))
		return
	}

	if err != nil {
		if errors.Is(err, provider.ErrProviderUnavailable) {
			s.searchEnabled = false
			s.logger.Error("place search disabled", zap.Error(err))
			s.view.Advisory(MsgSearchUnavailable)
		} else if errors.Is(err, provider.ErrProviderTimeout) {
			s.logger.Warn("place search timed out", zap.Error(err))
			s.view.Alert(fmt.Sprintf("Search request failed due to %s", provider.RouteStatus(err)))
		} else {
			s.logger.Warn("place search failed", zap.Error(err))
			s.view.Advisory(MsgSearchFailed)
		}
		s.state = s.resumeState
		return
	}

	var first *geo.Place
	for i := range places {
		if places[i].HasGeometry() {
			first = &places[i]
			break
		}
	}
	if first == nil {
		s.logger.Debug("search returned no results", zap.Uint64("seq", seq))
		s.state = s.resumeState
		return
	}

	s.focusLocked(ctx, *first, true)
	if thenRoute {
		if err := s.directions.requestLocked(ctx, s.mode); err != nil {
			s.logger.Warn("nearby directions not requested", zap.Error(err))
		}
	}
}

// SelectPlace focuses a place picked from autocomplete. A place without
// geometry only raises an advisory.
func (s *MapSession) SelectPlace(ctx context.Context, p geo.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptLocked(); err != nil {
		return err
	}
	if !p.HasGeometry() {
		s.view.Advisory(fmt.Sprintf("No details available for input: '%s'", p.Name))
		return nil
	}
	s.searchSeq++
	s.focusLocked(ctx, p, true)
	return nil
}

// SetCatalog replaces the catalog markers with markers for places. Places
// without usable geometry are skipped.
func (s *MapSession) SetCatalog(places []geo.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	usable := make([]geo.Place, 0, len(places))
	for _, p := range places {
		if !p.HasGeometry() {
			s.logger.Warn("catalog place skipped: no geometry", zap.String("place_id", p.ID))
			continue
		}
		usable = append(usable, p)
	}

	added, removed := s.markers.ReplaceCatalog(usable)
	for _, mk := range removed {
		s.view.DetachMarker(mk)
	}
	for _, mk := range added {
		s.view.AttachMarker(mk)
	}
	s.logger.Info("catalog markers replaced", zap.Int("added", len(added)), zap.Int("removed", len(removed)))
}

// RefreshCatalog loads the catalog from src and replaces the catalog markers.
func (s *MapSession) RefreshCatalog(ctx context.Context, src CatalogSource) error {
	places, err := src.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	s.SetCatalog(places)
	return nil
}

// ClickMarker selects the catalog place behind a catalog marker. The search
// marker is removed from the map.
func (s *MapSession) ClickMarker(ctx context.Context, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptLocked(); err != nil {
		return err
	}
	p, ok := s.markers.CatalogPlace(placeID)
	if !ok {
		return domain.NewNotFoundError("catalog place", placeID)
	}
	s.searchSeq++
	if old := s.markers.ClearSearch(); old != nil {
		s.view.DetachMarker(*old)
	}
	s.focusLocked(ctx, p, false)
	return nil
}

// ClosePopup dismisses the info popup and clears the selection. The search
// marker stays on the map until the next selection replaces it.
func (s *MapSession) ClosePopup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.selection.HasPlace() {
		return domain.NewInvalidStateError(s.state.String(), session.StateReady.String())
	}
	s.searchSeq++
	s.directions.invalidateLocked()
	s.selection = s.selection.Clear()
	s.view.HidePopup()
	s.state = session.StateReady
	return nil
}

// focusLocked makes p the selection: swaps the search marker, centers the
// viewport, opens the popup and fires the reverse geocode.
func (s *MapSession) focusLocked(ctx context.Context, p geo.Place, withMarker bool) {
	if withMarker {
		mk := session.NewSearchMarker(p)
		if old := s.markers.ReplaceSearch(mk); old != nil {
			s.view.DetachMarker(*old)
		}
		s.view.AttachMarker(mk)
	}

	s.center = p.Location
	s.zoom = geo.FocusZoom
	s.view.SetViewport(s.center, s.zoom)

	s.directions.invalidateLocked()
	s.selection = s.selection.Select(p)
	s.view.ShowPopup(s.selection)
	s.state = session.StateSelected

	rev := s.selection.Revision
	s.logger.Debug("place selected",
		zap.String("place", p.DisplayName()),
		zap.String("source", p.Source.String()),
		zap.Uint64("revision", rev),
	)

	s.spawnLocked(ctx, func(callCtx context.Context) {
		addr, err := s.adapter.Geocode(callCtx, p.Location)
		s.onGeocode(rev, addr, err)
	})
}

func (s *MapSession) onGeocode(rev uint64, addr string, err error) {
	if err != nil || addr == "" {
		s.logger.Warn("reverse geocode degraded", zap.Uint64("revision", rev), zap.Error(err))
		addr = provider.AddressNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	next, ok := s.selection.ResolveAddress(rev, addr)
	if !ok {
		s.logger.Debug("stale geocode result dropped", zap.Uint64("revision", rev), zap.Uint64("latest", s.selection.Revision))
		return
	}
	s.selection = next
	if next.PopupVisible {
		s.view.ShowPopup(next)
	}
}

// Selection returns the current selection.
func (s *MapSession) Selection() session.SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySelection(s.selection)
}

// State returns the current session state.
func (s *MapSession) State() session.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the whole session.
func (s *MapSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:            s.id,
		State:         s.state,
		Center:        s.center,
		Zoom:          s.zoom,
		Markers:       s.markers.All(),
		Selection:     copySelection(s.selection),
		Query:         s.query,
		Mode:          s.mode,
		SearchEnabled: s.searchEnabled,
		Steps:         append([]string(nil), s.directions.steps...),
	}
	if s.user != nil {
		u := *s.user
		snap.UserLocation = &u
	}
	return snap
}

// Wait blocks until every in-flight provider call has reconciled.
func (s *MapSession) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight provider calls and waits for them to return.
// Their results are dropped.
func (s *MapSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("map session closed")
}

func (s *MapSession) acceptLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.state.AcceptsInput() {
		return domain.NewInvalidStateError(s.state.String(), session.StateSearching.String())
	}
	return nil
}

func (s *MapSession) transitionLocked(to session.SessionState) error {
	if !s.state.CanTransitionTo(to) {
		return domain.NewInvalidStateError(s.state.String(), to.String())
	}
	s.state = to
	return nil
}

// spawnLocked runs fn on its own goroutine. fn receives a context derived
// from ctx that is also cancelled by Close; it ends when fn returns, so
// follow-up calls must be issued with the caller's ctx instead. The caller
// must hold s.mu and the session must be open.
func (s *MapSession) spawnLocked(ctx context.Context, fn func(callCtx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		callCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(s.base, cancel)
		defer stop()
		fn(callCtx)
	}()
}

func copySelection(sel session.SelectionState) session.SelectionState {
	if sel.Place != nil {
		p := *sel.Place
		sel.Place = &p
	}
	return sel
}
