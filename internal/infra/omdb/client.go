package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movies-battle/internal/domain"
)

type response struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	ImdbRating string `json:"imdbRating"`
	ImdbVotes  string `json:"imdbVotes"`
}

// Client fetches rating and vote counts from the OMDb API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchMovie looks the title up and returns an unsaved, unscored movie.
func (c *Client) FetchMovie(ctx context.Context, title string) (*domain.Movie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("omdb api key not configured")
	}
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build omdb request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if strings.EqualFold(body.Response, "False") {
		return nil, fmt.Errorf("omdb: %s", body.Error)
	}

	rating, err := parseRating(body.ImdbRating)
	if err != nil {
		return nil, err
	}
	votes, err := parseVotes(body.ImdbVotes)
	if err != nil {
		return nil, err
	}
	name := body.Title
	if name == "" {
		name = title
	}
	return &domain.Movie{Title: name, Rating: rating, Votes: votes}, nil
}

func parseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse imdbRating %q: %w", raw, err)
	}
	return v, nil
}

func parseVotes(raw string) (int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse imdbVotes %q: %w", raw, err)
	}
	return v, nil
}
