package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientConfig holds the provider connection settings.
type ClientConfig struct {
	BaseURL string
	APIKey  string
}

// Client implements Provider against a Google-Places-style HTTP API.
// No automatic retries; a failed call surfaces once.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ Provider = (*Client)(nil)

// NewClient builds a provider client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(10 * time.Second).
			SetQueryParam("key", cfg.APIKey),
		logger: logger,
	}
}

type geometry struct {
	Location LatLng `json:"location"`
	Viewport struct {
		Northeast LatLng `json:"northeast"`
		Southwest LatLng `json:"southwest"`
	} `json:"viewport"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
}

type searchResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

type detailsResponse struct {
	Status string      `json:"status"`
	Result placeResult `json:"result"`
}

// GeocodeRegion resolves a region name to its center and a search radius
// derived from the result viewport.
func (c *Client) GeocodeRegion(ctx context.Context, region string) (Area, error) {
	var out geocodeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("address", region).
		SetResult(&out).
		Get("/geocode/json")
	if err != nil {
		return Area{}, fmt.Errorf("places: geocode %q: %w", region, err)
	}
	if resp.IsError() || out.Status != "OK" || len(out.Results) == 0 {
		return Area{}, fmt.Errorf("places: geocode %q: status %s", region, geocodeStatus(resp, out.Status))
	}

	g := out.Results[0].Geometry
	area := Area{Center: g.Location}
	// Half the viewport diagonal makes a reasonable bias radius; fall back
	// to a fixed radius when the provider omits the viewport.
	if g.Viewport.Northeast != (LatLng{}) || g.Viewport.Southwest != (LatLng{}) {
		area.Radius = Distance(g.Viewport.Northeast, g.Viewport.Southwest) / 2
	}
	if area.Radius == 0 {
		area.Radius = 20000
	}
	return area, nil
}

// TextSearch runs a text search biased toward area.
func (c *Client) TextSearch(ctx context.Context, query string, area Area) ([]Place, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("location", fmt.Sprintf("%f,%f", area.Center.Lat, area.Center.Lng)).
		SetQueryParam("radius", fmt.Sprintf("%.0f", area.Radius)).
		SetResult(&out).
		Get("/place/textsearch/json")
	if err != nil {
		return nil, fmt.Errorf("places: text search: %w", err)
	}
	if resp.IsError() || (out.Status != "OK" && out.Status != "ZERO_RESULTS") {
		return nil, fmt.Errorf("places: text search: status %s", geocodeStatus(resp, out.Status))
	}

	results := make([]Place, len(out.Results))
	for i, r := range out.Results {
		results[i] = place(r)
	}
	return results, nil
}

// Details fetches the full place record for an identifier.
func (c *Client) Details(ctx context.Context, placeID string) (Place, error) {
	var out detailsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("place_id", placeID).
		SetQueryParam("fields", "place_id,name,formatted_address,geometry").
		SetResult(&out).
		Get("/place/details/json")
	if err != nil {
		return Place{}, fmt.Errorf("places: details %s: %w", placeID, err)
	}
	if resp.IsError() || out.Status != "OK" {
		return Place{}, fmt.Errorf("places: details %s: status %s", placeID, geocodeStatus(resp, out.Status))
	}
	return place(out.Result), nil
}

func place(r placeResult) Place {
	return Place{
		PlaceID:  r.PlaceID,
		Name:     r.Name,
		Address:  r.FormattedAddress,
		Location: r.Geometry.Location,
	}
}

func geocodeStatus(resp *resty.Response, status string) string {
	if status != "" {
		return status
	}
	if resp != nil {
		return fmt.Sprintf("HTTP %d", resp.StatusCode())
	}
	return "unknown"
}
