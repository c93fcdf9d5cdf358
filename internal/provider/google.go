package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

const (
	// googleBaseURL is the root of the Google Maps web service APIs.
	googleBaseURL = "https://maps.googleapis.com/maps/api"

	// googleTimeout is the maximum duration for a single Google API call.
	googleTimeout = 5 * time.Second

	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 30 * time.Second

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// GoogleClient implements Searcher, Geocoder and Router on the Google Maps
// Places, Geocoding and Directions web services.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client
	// baseURL is the API root. Overrideable in tests.
	baseURL  string
	language string
	logger   *zap.Logger
}

// GoogleOption configures a GoogleClient.
type GoogleOption func(*GoogleClient)

// WithGoogleBaseURL points the client at another API root.
func WithGoogleBaseURL(u string) GoogleOption {
	return func(c *GoogleClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithGoogleHTTPClient replaces the HTTP client.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(c *GoogleClient) { c.httpClient = hc }
}

// WithGoogleLanguage sets the language of addresses and instructions.
func WithGoogleLanguage(lang string) GoogleOption {
	return func(c *GoogleClient) { c.language = lang }
}

// NewGoogleClient creates a client for the Google Maps web services.
// It fails with ErrProviderUnavailable when no API key is configured.
func NewGoogleClient(apiKey string, logger *zap.Logger, opts ...GoogleOption) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google: missing API key: %w", ErrProviderUnavailable)
	}
	transport := &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	c := &GoogleClient{
		apiKey:  apiKey,
		baseURL: googleBaseURL,
		httpClient: &http.Client{
			Timeout:   googleTimeout,
			Transport: transport,
		},
		language: "en",
		logger:   logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Search runs a Places Text Search. When req.Near is set the search is
// biased to that point within req.RadiusM.
func (c *GoogleClient) Search(ctx context.Context, req SearchRequest) ([]geo.Place, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	if req.Near != nil {
		radius := req.RadiusM
		if radius <= 0 {
			radius = DefaultSearchRadiusM
		}
		params.Set("location", latLng(*req.Near))
		params.Set("radius", strconv.Itoa(radius))
	}

	var resp placesResponse
	if err := c.get(ctx, "/place/textsearch/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK:
	case statusZeroResults:
		return []geo.Place{}, nil
	default:
		return nil, &StatusError{Service: "places", Status: resp.Status, Message: resp.ErrorMessage}
	}

	places := make([]geo.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, geo.NewSearchPlace(r.PlaceID, r.Name, r.Geometry.Location.Lat, r.Geometry.Location.Lng))
	}
	return places, nil
}

// Geocode reverse-geocodes a coordinate. Any non-OK status, or an OK status
// without results, yields AddressNotFound.
func (c *GoogleClient) Geocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("latlng", latLng(coord))

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return "", err
	}
	if resp.Status != statusOK || len(resp.Results) == 0 {
		c.logger.Debug("geocode degraded",
			zap.String("status", resp.Status),
			zap.String("coordinate", coord.String()),
		)
		return AddressNotFound, nil
	}
	return resp.Results[0].FormattedAddress, nil
}

// Route requests directions. A non-OK status yields a *RouteUnavailableError
// carrying the provider status.
func (c *GoogleClient) Route(ctx context.Context, q geo.DirectionsQuery) (*geo.Directions, error) {
	mode := q.Mode
	if mode == "" {
		mode = geo.TravelModeDriving
	}
	params := url.Values{}
	params.Set("origin", latLng(q.Origin))
	params.Set("destination", latLng(q.Destination))
	params.Set("mode", strings.ToLower(string(mode)))

	var resp directionsResponse
	if err := c.get(ctx, "/directions/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK {
		return nil, &RouteUnavailableError{Status: resp.Status}
	}

	out := &geo.Directions{Query: q, Routes: make([]geo.Route, 0, len(resp.Routes))}
	for _, r := range resp.Routes {
		route := geo.Route{
			Summary:  r.Summary,
			Polyline: r.OverviewPolyline.Points,
			Legs:     make([]geo.Leg, 0, len(r.Legs)),
		}
		for _, l := range r.Legs {
			leg := geo.Leg{
				DistanceMeters:  l.Distance.Value,
				DurationSeconds: l.Duration.Value,
				StartAddress:    l.StartAddress,
				EndAddress:      l.EndAddress,
				Steps:           make([]geo.Step, 0, len(l.Steps)),
			}
			for _, s := range l.Steps {
				leg.Steps = append(leg.Steps, geo.Step{
					Instruction:     plainText(s.HTMLInstructions),
					DistanceMeters:  s.Distance.Value,
					DurationSeconds: s.Duration.Value,
					Maneuver:        s.Maneuver,
				})
			}
			route.Legs = append(route.Legs, leg)
		}
		out.Routes = append(out.Routes, route)
	}
	return out, nil
}

// get performs a GET against the API and decodes the JSON body into out.
func (c *GoogleClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("provider: google: create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("provider: google: http: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("provider: google: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: google: status %d: %s", httpResp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("provider: google: unmarshal response: %w", err)
	}
	return nil
}

func latLng(c geo.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// plainText strips the markup Google puts into step instructions.
func plainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "div" {
				b.WriteByte(' ')
			}
		}
	}
}

// --- JSON types for the Google Maps web services ---

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type placesResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location googleLatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

type googleValue struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Summary          string `json:"summary"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance     googleValue `json:"distance"`
			Duration     googleValue `json:"duration"`
			StartAddress string      `json:"start_address"`
			EndAddress   string      `json:"end_address"`
			Steps        []struct {
				HTMLInstructions string      `json:"html_instructions"`
				Distance         googleValue `json:"distance"`
				Duration         googleValue `json:"duration"`
				Maneuver         string      `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}
