package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

const (
	// NominatimURL is the public OpenStreetMap Nominatim endpoint.
	NominatimURL = "https://nominatim.openstreetmap.org"

	nominatimUserAgent   = "UrbanDepot/1.0"
	nominatimSearchLimit = 5
)

// NominatimClient implements Searcher and Geocoder on OpenStreetMap
// Nominatim. The public instance allows one request per second, so every
// call waits on a shared limiter. Nominatim has no routing; Route always
// fails with status NOT_SUPPORTED.
type NominatimClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewNominatimClient creates a client for the Nominatim instance at baseURL,
// throttled to rps requests per second.
func NewNominatimClient(baseURL string, rps float64, logger *zap.Logger) *NominatimClient {
	if baseURL == "" {
		baseURL = NominatimURL
	}
	if rps <= 0 {
		rps = 1
	}
	return &NominatimClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Search looks places up by free text. With req.Near and req.RadiusM set,
// results are restricted to the box around that circle. Results are ordered
// by distance from req.Near when it is set.
func (n *NominatimClient) Search(ctx context.Context, req SearchRequest) ([]geo.Place, error) {
	params := url.Values{}
	params.Add("q", req.Query)
	params.Add("format", "jsonv2")
	params.Add("limit", strconv.Itoa(nominatimSearchLimit))
	if req.Near != nil && req.RadiusM > 0 {
		sw, ne := req.Near.BoundingBox(float64(req.RadiusM))
		params.Add("viewbox", fmt.Sprintf("%s,%s,%s,%s",
			formatDegrees(sw.Lng), formatDegrees(ne.Lat), formatDegrees(ne.Lng), formatDegrees(sw.Lat)))
		params.Add("bounded", "1")
	}

	var raw []nominatimPlace
	if err := n.get(ctx, "/search", params, &raw); err != nil {
		return nil, err
	}

	places := make([]geo.Place, 0, len(raw))
	for _, r := range raw {
		p, ok := r.toPlace()
		if !ok {
			continue
		}
		places = append(places, p)
	}

	if req.Near != nil {
		origin := *req.Near
		sort.SliceStable(places, func(i, j int) bool {
			return origin.DistanceMeters(places[i].Location) < origin.DistanceMeters(places[j].Location)
		})
	}
	return places, nil
}

// Geocode reverse-geocodes a coordinate. Nominatim reports "Unable to
// geocode" in the body rather than through a status, which maps to
// AddressNotFound.
func (n *NominatimClient) Geocode(ctx context.Context, c geo.Coordinate) (string, error) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	params.Add("format", "jsonv2")

	var raw nominatimReverse
	if err := n.get(ctx, "/reverse", params, &raw); err != nil {
		return "", err
	}
	if raw.Error != "" || raw.DisplayName == "" {
		n.logger.Debug("nominatim reverse geocode degraded",
			zap.String("error", raw.Error),
			zap.String("coordinate", c.String()),
		)
		return AddressNotFound, nil
	}
	return raw.DisplayName, nil
}

// Route is not offered by Nominatim.
func (n *NominatimClient) Route(_ context.Context, _ geo.DirectionsQuery) (*geo.Directions, error) {
	return nil, &RouteUnavailableError{Status: "NOT_SUPPORTED"}
}

func (n *NominatimClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := n.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		// Wait fails before the deadline when no token frees up in time.
		return fmt.Errorf("provider: nominatim: rate limited: %w", ErrProviderTimeout)
	}

	reqURL := fmt.Sprintf("%s%s?%s", n.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		n.logger.Error("nominatim request failed", zap.Error(err))
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		n.logger.Error("nominatim upstream error", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("provider: nominatim: upstream status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		n.logger.Error("failed to decode nominatim payload", zap.Error(err))
		return fmt.Errorf("provider: nominatim: decode: %w", err)
	}
	return nil
}

// nominatimPlace mirrors the relevant parts of the OSM search payload.
type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (r nominatimPlace) toPlace() (geo.Place, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Place{}, false
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Place{}, false
	}
	name := r.Name
	if name == "" {
		name = r.DisplayName
	}
	return geo.NewSearchPlace(strconv.FormatInt(r.PlaceID, 10), name, lat, lng), true
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}
