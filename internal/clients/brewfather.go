package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// DefaultBrewfatherURL is the public v2 API root.
const DefaultBrewfatherURL = "https://api.brewfather.app/v2"

// Fermentable, Hop and Yeast mirror the recipe API's ingredient objects.
// Only the fields the shopping list uses are decoded.
type Fermentable struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	Origin        string  `json:"origin"`
	Supplier      string  `json:"supplier"`
	Color         float64 `json:"color"`
	GrainCategory string  `json:"grainCategory"`
}

type Hop struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Alpha  float64 `json:"alpha"`
	Type   string  `json:"type"`
	Origin string  `json:"origin"`
}

type Yeast struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
	Laboratory string  `json:"laboratory"`
	Type       string  `json:"type"`
	Form       string  `json:"form"`
}

// Recipe is the subset of GET /recipes/{id} the extractor reads. Missing
// sections decode as nil slices.
type Recipe struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Fermentables []Fermentable `json:"fermentables"`
	Hops         []Hop         `json:"hops"`
	Yeasts       []Yeast       `json:"yeasts"`
}

// CredentialSource supplies the API credentials on every request so that
// saving new credentials takes effect without a restart.
type CredentialSource interface {
	LoadCredentials(ctx context.Context) (domain.Credentials, error)
}

type BrewfatherClient struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
}

func NewBrewfatherClient(baseURL string, creds CredentialSource, timeout time.Duration) *BrewfatherClient {
	if baseURL == "" {
		baseURL = DefaultBrewfatherURL
	}
	return &BrewfatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
	}
}

// GetRecipe fetches one recipe with basic auth. Status codes map onto the
// domain errors: 401 unauthorized, 404 not found, 429 rate limited, anything
// else non-2xx is a *domain.TransportError.
func (c *BrewfatherClient) GetRecipe(ctx context.Context, recipeID string) (*Recipe, error) {
	creds, err := c.creds.LoadCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: set the Brewfather user id and API key", domain.ErrConfiguration)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/recipes/"+url.PathEscape(recipeID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(creds.UserID, creds.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid Brewfather credentials, check the user id and API key", domain.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("recipe %s: %w", recipeID, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	var recipe Recipe
	if err := json.NewDecoder(resp.Body).Decode(&recipe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &recipe, nil
}

// statusText strips the numeric prefix net/http puts on resp.Status.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
