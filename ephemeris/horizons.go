package ephemeris

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/echoflaresat/spaceview/logging"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// DefaultHorizonsURL is the public JPL Horizons API endpoint.
const DefaultHorizonsURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

// Horizons fetches state vectors from the JPL Horizons API.
type Horizons struct {
	endpoint string
	center   string
	client   *retryablehttp.Client
}

// HorizonsOption configures a Horizons client.
type HorizonsOption func(*Horizons)

// WithCenter sets the Horizons CENTER code; the default is the Sun body
// center "500@10".
func WithCenter(center string) HorizonsOption {
	return func(h *Horizons) { h.center = center }
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) HorizonsOption {
	return func(h *Horizons) { h.client.HTTPClient.Timeout = d }
}

// WithRetry sets the retry count and backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) HorizonsOption {
	return func(h *Horizons) {
		h.client.RetryMax = max
		h.client.RetryWaitMin = waitMin
		h.client.RetryWaitMax = waitMax
	}
}

// WithHorizonsLogger routes retry diagnostics to log.
func WithHorizonsLogger(log zerolog.Logger) HorizonsOption {
	return func(h *Horizons) { h.client.Logger = logging.NewRetryLogger(log) }
}

// NewHorizons returns a client for the API at endpoint.
func NewHorizons(endpoint string, opts ...HorizonsOption) *Horizons {
	if endpoint == "" {
		endpoint = DefaultHorizonsURL
	}
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	client.Logger = nil
	client.RetryMax = 3

	h := &Horizons{
		endpoint: strings.TrimRight(endpoint, "/"),
		center:   "500@10",
		client:   client,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Horizons) Name() string { return "horizons" }

type horizonsResponse struct {
	Signature struct {
		Source  string `json:"source"`
		Version string `json:"version"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// State requests a one-day vector table starting at date and returns its
// first record.
func (h *Horizons) State(ctx context.Context, id int, date Date) (State, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, h.requestURL(id, date), nil)
	if err != nil {
		return State{}, fmt.Errorf("build horizons request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var payload horizonsResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return State{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		msg := payload.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return State{}, fmt.Errorf("%w: horizons returned status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return State{}, fmt.Errorf("%w: decode response: %v", ErrMalformed, decodeErr)
	}
	if payload.Error != "" {
		return State{}, fmt.Errorf("%w: %s", ErrUnavailable, payload.Error)
	}

	st, err := ParseVectors(payload.Result)
	if err != nil {
		return State{}, fmt.Errorf("body %d: %w", id, err)
	}
	return st, nil
}

func (h *Horizons) requestURL(id int, date Date) string {
	jd := strconv.FormatFloat(date.JD, 'f', 6, 64)
	stop := strconv.FormatFloat(date.JD+1, 'f', 6, 64)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("COMMAND", quote(strconv.Itoa(id)))
	q.Set("OBJ_DATA", quote("YES"))
	q.Set("MAKE_EPHEM", quote("YES"))
	q.Set("EPHEM_TYPE", quote("VECTORS"))
	q.Set("CENTER", quote(h.center))
	q.Set("REF_PLANE", quote("ECLIPTIC"))
	q.Set("OUT_UNITS", quote("KM-S"))
	q.Set("VEC_TABLE", quote("2"))
	q.Set("START_TIME", quote("JD"+jd))
	q.Set("STOP_TIME", quote("JD"+stop))
	q.Set("STEP_SIZE", quote("1d"))
	return h.endpoint + "?" + q.Encode()
}

func quote(s string) string {
	return "'" + s + "'"
}
