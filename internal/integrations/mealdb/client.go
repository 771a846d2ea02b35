// Package mealdb wraps TheMealDB public API for ingredient-based recipe
// lookups.
package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

// Meal is the subset of TheMealDB's meal document the service exposes.
type Meal struct {
	ID        string `json:"idMeal"`
	Name      string `json:"strMeal"`
	Category  string `json:"strCategory,omitempty"`
	Area      string `json:"strArea,omitempty"`
	Thumbnail string `json:"strMealThumb,omitempty"`
}

type mealsResponse struct {
	Meals []Meal `json:"meals"`
}

// Client calls TheMealDB.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByIngredient returns meals that use the given ingredient. TheMealDB
// responds with a null meals field when nothing matches; that comes back as
// an empty slice.
func (c *Client) SearchByIngredient(ctx context.Context, ingredient string) ([]Meal, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, errors.New("mealdb: ingredient must not be empty")
	}

	endpoint := fmt.Sprintf("%s/filter.php?i=%s", c.baseURL, url.QueryEscape(ingredient))
	out, err := c.getMeals(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("mealdb: search by ingredient: %w", err)
	}
	return out, nil
}

// Lookup fetches full details for one meal id, or nil when the id is unknown.
func (c *Client) Lookup(ctx context.Context, mealID string) (*Meal, error) {
	mealID = strings.TrimSpace(mealID)
	if mealID == "" {
		return nil, errors.New("mealdb: meal id must not be empty")
	}

	endpoint := fmt.Sprintf("%s/lookup.php?i=%s", c.baseURL, url.QueryEscape(mealID))
	meals, err := c.getMeals(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("mealdb: lookup: %w", err)
	}
	if len(meals) == 0 {
		return nil, nil
	}
	return &meals[0], nil
}

func (c *Client) getMeals(ctx context.Context, endpoint string) ([]Meal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(buf))
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var payload mealsResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Meals == nil {
		return []Meal{}, nil
	}
	return payload.Meals, nil
}
