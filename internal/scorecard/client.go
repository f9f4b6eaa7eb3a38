// Package scorecard looks up school cost data in the US Department of
// Education College Scorecard API (api.data.gov).
package scorecard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.data.gov/ed/collegescorecard/v1/schools"

// The flattened response fields we request. The API returns them as
// dotted top-level keys.
var requestedFields = []string{
	"id",
	"school.name",
	"school.city",
	"school.state",
	"latest.cost.tuition.in_state",
	"latest.cost.tuition.out_of_state",
	"latest.cost.roomboard.oncampus",
	"latest.cost.avg_net_price.public",
	"latest.cost.avg_net_price.private",
}

// School is one College Scorecard result. Cost figures are nil when the
// dataset has no value for the school.
type School struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	City              string `json:"city"`
	State             string `json:"state"`
	TuitionInState    *int   `json:"tuition_in_state"`
	TuitionOutOfState *int   `json:"tuition_out_of_state"`
	RoomBoard         *int   `json:"room_board"`
	NetPricePublic    *int   `json:"net_price_public"`
	NetPricePrivate   *int   `json:"net_price_private"`
}

// TuitionBestGuess prefers in-state tuition, falling back to out-of-state.
// Nil when the dataset has neither.
func (s School) TuitionBestGuess() *int {
	if s.TuitionInState != nil {
		return s.TuitionInState
	}
	return s.TuitionOutOfState
}

// Client queries the College Scorecard API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with the api.data.gov API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Search returns up to limit schools matching the name.
func (c *Client) Search(ctx context.Context, schoolName string, limit int) ([]School, error) {
	if limit <= 0 {
		limit = 3
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("school.name", schoolName)
	params.Set("fields", strings.Join(requestedFields, ","))
	params.Set("per_page", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build scorecard request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scorecard request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorecard request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode scorecard response: %w", err)
	}

	schools := make([]School, 0, len(payload.Results))
	for _, raw := range payload.Results {
		schools = append(schools, School{
			ID:                intField(raw, "id"),
			Name:              stringField(raw, "school.name"),
			City:              stringField(raw, "school.city"),
			State:             stringField(raw, "school.state"),
			TuitionInState:    optIntField(raw, "latest.cost.tuition.in_state"),
			TuitionOutOfState: optIntField(raw, "latest.cost.tuition.out_of_state"),
			RoomBoard:         optIntField(raw, "latest.cost.roomboard.oncampus"),
			NetPricePublic:    optIntField(raw, "latest.cost.avg_net_price.public"),
			NetPricePrivate:   optIntField(raw, "latest.cost.avg_net_price.private"),
		})
	}
	return schools, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func intField(raw map[string]any, key string) int {
	if f, ok := raw[key].(float64); ok {
		return int(f)
	}
	return 0
}

func optIntField(raw map[string]any, key string) *int {
	f, ok := raw[key].(float64)
	if !ok {
		return nil
	}
	v := int(f)
	return &v
}
