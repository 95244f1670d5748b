package smartolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kevann/nosteq-core/internal/onu"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseSize bounds a full-network listing.
	maxResponseSize = 64 << 20

	detailsPath  = "/onu/get_all_onus_details"
	statusesPath = "/onu/get_onus_statuses"
	gpsPath      = "/onu/get_all_onus_gps_coordinates"

	defaultErrorMessage = "Unknown error"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://tenant.smartolt.com/api.
	BaseURL string

	// APIKey is sent in the X-Token header.
	APIKey string

	// Timeout applies to each request. Zero means 30 seconds.
	Timeout time.Duration

	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks to one SmartOLT tenant.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Filter narrows a listing. Zero values are omitted from the query.
type Filter struct {
	OltID *int
	Board *int
	Port  *int
	Zone  string
	ODB   string
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.OltID != nil {
		v.Set("olt_id", strconv.Itoa(*f.OltID))
	}
	if f.Board != nil {
		v.Set("board", strconv.Itoa(*f.Board))
	}
	if f.Port != nil {
		v.Set("port", strconv.Itoa(*f.Port))
	}
	if f.Zone != "" {
		v.Set("zone", f.Zone)
	}
	if f.ODB != "" {
		v.Set("odb", f.ODB)
	}
	return v
}

// ListOnuDetails returns every ONU matching the filter.
func (c *Client) ListOnuDetails(ctx context.Context, f Filter) ([]onu.Onu, error) {
	items, err := c.get(ctx, detailsPath, f)
	if err != nil {
		return nil, err
	}

	onus := make([]onu.Onu, 0, len(items))
	for i, raw := range items {
		o, err := decodeOnu(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: onu %d: %v", ErrDecode, i, err)
		}
		onus = append(onus, o)
	}
	return onus, nil
}

// ListOnuStatuses returns the live status of every ONU matching the filter.
func (c *Client) ListOnuStatuses(ctx context.Context, f Filter) ([]onu.LiveStatus, error) {
	items, err := c.get(ctx, statusesPath, f)
	if err != nil {
		return nil, err
	}

	statuses := make([]onu.LiveStatus, 0, len(items))
	for i, raw := range items {
		s, err := decodeStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: status %d: %v", ErrDecode, i, err)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// ListOnuGPS returns the GPS coordinates of every ONU matching the filter.
// Entries without an external ID or coordinates are left out.
func (c *Client) ListOnuGPS(ctx context.Context, f Filter) ([]onu.Location, error) {
	items, err := c.get(ctx, gpsPath, f)
	if err != nil {
		return nil, err
	}

	locations := make([]onu.Location, 0, len(items))
	for i, raw := range items {
		loc, ok, err := decodeLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: location %d: %v", ErrDecode, i, err)
		}
		if ok {
			locations = append(locations, loc)
		}
	}
	return locations, nil
}

// envelope is the response wrapper shared by all endpoints. Details and
// coordinates arrive under "onus", statuses under "response".
type envelope struct {
	Status   flexBool          `json:"status"`
	Onus     []json.RawMessage `json:"onus"`
	Response []json.RawMessage `json:"response"`
	Error    string            `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, f Filter) ([]json.RawMessage, error) {
	endpoint := c.baseURL + path
	if q := f.values(); len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smartolt %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	// A failure envelope is more useful than the bare status code, so try it
	// first on error responses.
	var env envelope
	decodeErr := json.Unmarshal(bytes.TrimSpace(body), &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Error != "" {
			return nil, fmt.Errorf("%w: %s: HTTP %d: %s", ErrHTTPStatus, path, resp.StatusCode, env.Error)
		}
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrHTTPStatus, path, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, decodeErr)
	}

	if !env.Status {
		msg := env.Error
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, fmt.Errorf("%w: %s", ErrAPIFailure, msg)
	}

	if env.Onus != nil {
		return env.Onus, nil
	}
	return env.Response, nil
}
