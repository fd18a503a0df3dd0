package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite7112/woodpantry-brewlist/internal/blob"
	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/logger"
	"github.com/mwhite7112/woodpantry-brewlist/internal/maltdb"
	"github.com/mwhite7112/woodpantry-brewlist/internal/metrics"
	"github.com/mwhite7112/woodpantry-brewlist/internal/service"
	"github.com/mwhite7112/woodpantry-brewlist/internal/store"
)

type stubRecipes map[string]*clients.Recipe

func (s stubRecipes) GetRecipe(_ context.Context, id string) (*clients.Recipe, error) {
	if id == "limited" {
		return nil, domain.ErrRateLimited
	}
	r, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *blob.Memory) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	recipes := stubRecipes{
		"r1": {ID: "r1", Name: "Helles", Fermentables: []clients.Fermentable{
			{ID: "p1", Name: "Pilsner Malt", Amount: 5, Color: 3, GrainCategory: "Base Malt"},
		}},
		"r2": {ID: "r2", Name: "Pils", Fermentables: []clients.Fermentable{
			{ID: "p2", Name: "Lager Malt", Amount: 4, Color: 3.5, GrainCategory: "Base Malt"},
		}},
	}
	blobs := blob.NewMemory()
	prom := metrics.NewPrometheus()
	n := 0
	svc := service.New(recipes, maltdb.Embedded{}, store.NewState(store.NewMemory(), log), log,
		service.WithBlobStore(blobs),
		service.WithMetrics(prom),
		service.WithIDGenerator(func() string { n++; return fmt.Sprintf("g%d", n) }),
		service.WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)
	srv := httptest.NewServer(NewRouter(svc, prom.Handler()))
	t.Cleanup(srv.Close)
	return srv, blobs
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorKind string          `json:"errorKind"`
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListAndSubstitutionFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	status, env := do(t, srv, http.MethodPost, "/list/recipes", `{"recipeId":"r1"}`)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `{"recipeName":"Helles","ingredientsAdded":1,"totalItems":1}`, string(env.Data))

	status, _ = do(t, srv, http.MethodPost, "/list/recipes", `{"recipeId":"https://web.brewfather.app/tabs/recipes/recipe/r2"}`)
	require.Equal(t, http.StatusOK, status)

	_, env = do(t, srv, http.MethodGet, "/substitutions", "")
	var set domain.SubstitutionSet
	require.NoError(t, json.Unmarshal(env.Data, &set))
	require.Len(t, set, 1)
	assert.Equal(t, 9.0, set[0].TotalAmount)

	status, env = do(t, srv, http.MethodPost, "/substitutions/"+set[0].ID+"/apply", `{"chosenIngredientId":"p1"}`)
	require.Equal(t, http.StatusOK, status, env.Error)
	var applied service.ApplyResult
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	require.Len(t, applied.List, 1)
	assert.Equal(t, 9.0, applied.List[0].Amount)

	_, env = do(t, srv, http.MethodGet, "/list", "")
	var view service.ListView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.ShowOnOpen)
	assert.Len(t, view.Items, 1)

	status, _ = do(t, srv, http.MethodDelete, "/list/items/p1", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, srv, http.MethodDelete, "/list", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"unknown recipe", http.MethodPost, "/list/recipes", `{"recipeId":"nope"}`, http.StatusNotFound, domain.KindNotFound},
		{"rate limited", http.MethodPost, "/list/recipes", `{"recipeId":"limited"}`, http.StatusTooManyRequests, domain.KindRateLimited},
		{"bad body", http.MethodPost, "/list/recipes", `{`, http.StatusBadRequest, domain.KindInvalidInput},
		{"unknown action", http.MethodPost, "/commands", `{"action":"fly"}`, http.StatusBadRequest, domain.KindInvalidInput},
		{"unknown group", http.MethodPost, "/substitutions/x/apply", `{"chosenIngredientId":"p1"}`, http.StatusNotFound, domain.KindNotFound},
		{"empty batch", http.MethodPost, "/substitutions/apply", `{"selections":[]}`, http.StatusBadRequest, domain.KindInvalidInput},
		{"missing advice", http.MethodGet, "/advice/zz", "", http.StatusNotFound, domain.KindNotFound},
		{"bad settings", http.MethodPut, "/settings", `{"theme":"blue"}`, http.StatusBadRequest, domain.KindInvalidInput},
		{"half credentials", http.MethodPut, "/settings/credentials", `{"userId":"u"}`, http.StatusBadRequest, domain.KindInvalidInput},
		{"bad export format", http.MethodGet, "/export?format=pdf", "", http.StatusBadRequest, domain.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.kind, env.ErrorKind)
		})
	}
}

func TestCommandEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	status, env := do(t, srv, http.MethodPost, "/commands", `{"action":"add-recipe-to-list","recipeId":"r1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = do(t, srv, http.MethodPost, "/commands", `{"action":"discover-recipes","html":"<a href=\"/tabs/recipes/recipe/abc\">x</a>"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["abc"]`, string(env.Data))
}

func TestExportEndpoint(t *testing.T) {
	srv, blobs := newTestServer(t)
	status, _ := do(t, srv, http.MethodPost, "/list/recipes", `{"recipeId":"r1"}`)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/export?format=csv&archive=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "shopping-list-2026-05-01.csv")
	assert.Equal(t, "exports/shopping-list-2026-05-01.csv", resp.Header.Get("X-Archive-Key"))

	_, err = blob.ReadAll(context.Background(), blobs, "exports/shopping-list-2026-05-01.csv")
	assert.NoError(t, err)
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	status, env := do(t, srv, http.MethodPut, "/settings", `{"theme":"dark","colorUnit":"SRM"}`)
	require.Equal(t, http.StatusOK, status, env.Error)

	_, env = do(t, srv, http.MethodGet, "/settings", "")
	assert.JSONEq(t, `{"theme":"dark","language":"system","colorUnit":"SRM"}`, string(env.Data))

	status, _ = do(t, srv, http.MethodPut, "/settings/credentials", `{"userId":"u","apiKey":"k"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodGet, "/list", "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b strings.Builder
	_, err = io.Copy(&b, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, b.String(), `brewlist_commands_total{action="get-list",success="true"} 1`)
}

func TestDismissEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/list/recipes", `{"recipeId":"r1"}`)
	do(t, srv, http.MethodPost, "/list/recipes", `{"recipeId":"r2"}`)

	status, env := do(t, srv, http.MethodDelete, "/substitutions/g1", "")
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.JSONEq(t, `[]`, string(env.Data))

	_, env = do(t, srv, http.MethodGet, "/list", "")
	var view service.ListView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Items, 2)

	status, env = do(t, srv, http.MethodDelete, "/substitutions/g1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domain.KindNotFound, env.ErrorKind)
}

func TestDiscoverEndpointRejectsForeignHosts(t *testing.T) {
	srv, _ := newTestServer(t)
	status, env := do(t, srv, http.MethodPost, "/recipes/discover", `{"url":"http://169.254.169.254/latest/meta-data/"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.KindInvalidInput, env.ErrorKind)
}
