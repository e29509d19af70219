package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Document is a guideline document published by a Source.
type Document struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	URL   *string `json:"url,omitempty"`
	Year  *int    `json:"year,omitempty"`
}

// Source is an issuing authority and its documents.
type Source struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Abbreviation string     `json:"abbreviation"`
	Documents    []Document `json:"documents"`
}

// Stats summarizes the service's database.
type Stats struct {
	TotalParameters int `json:"total_parameters"`
	TotalGuidelines int `json:"total_guidelines"`
	TotalSources    int `json:"total_sources"`
	TotalDocuments  int `json:"total_documents"`
}

// SearchFilter narrows SearchParameters. Empty lists do not filter.
type SearchFilter struct {
	Media    []string
	Source   []string
	Document []string
}

// Health reports service liveness (GET /health).
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ready reports whether the service database is reachable (GET /ready).
func (c *Client) Ready(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/ready", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListParameters returns every parameter name the service knows.
func (c *Client) ListParameters(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/parameters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchParameters returns parameter names containing q, case-insensitive.
// An empty q matches everything.
func (c *Client) SearchParameters(ctx context.Context, q string, filter SearchFilter) ([]string, error) {
	query := url.Values{}
	query.Set("q", q)
	for _, m := range filter.Media {
		query.Add("media", m)
	}
	for _, s := range filter.Source {
		query.Add("source", s)
	}
	for _, d := range filter.Document {
		query.Add("document", d)
	}

	var out []string
	if err := c.getJSON(ctx, "/parameters/search", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMedia maps media identifiers to display names.
func (c *Client) ListMedia(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	if err := c.getJSON(ctx, "/media", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSources returns the issuing authorities and their documents.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var out []Source
	if err := c.getJSON(ctx, "/sources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats returns database totals.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.getJSON(ctx, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return nil
}
