package viewer

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-oq/internal/catalog"
	"github.com/joeblew999/plat-oq/internal/templates"
	"github.com/joeblew999/plat-oq/internal/viewer"
)

type staticSource []catalog.LayerDescriptor

func (s staticSource) Fetch(ctx context.Context) ([]catalog.LayerDescriptor, error) {
	return s, nil
}

type fixture struct {
	api   humatest.TestAPI
	mux   *http.ServeMux
	store *viewer.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cat := catalog.NewCatalog(staticSource{
		{ID: "pop-01", DisplayName: "Population", Category: "Social"},
		{ID: "gdp-01", DisplayName: "GDP", Category: "Economy"},
	}, nil)
	require.NoError(t, cat.Load(context.Background()))
	store := viewer.NewStore(viewer.StoreConfig{Tiles: catalog.NewTiles("http://tiles.test")})

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("test", "1.0.0"))
	NewHandler(cat, store, templates.Must(), nil).RegisterRoutes(api)
	return fixture{api: humatest.Wrap(t, api), mux: mux, store: store}
}

func TestOpenSession(t *testing.T) {
	f := newFixture(t)

	resp := f.api.Get("/api/v1/viewer/session")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, f.store.Len())
	assert.Contains(t, resp.Body.String(), "datastar-patch-signals")
	assert.Contains(t, resp.Body.String(), `"session":`)
	assert.Contains(t, resp.Body.String(), "No overlays")
}

func TestCategoriesAndLayers(t *testing.T) {
	f := newFixture(t)

	resp := f.api.Get("/api/v1/viewer/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "selector "+CategorySelector)
	assert.Contains(t, body, `<option value="Social">Social</option>`)
	assert.Contains(t, body, `<option value="Economy">Economy</option>`)
	assert.Less(t, strings.Index(body, "Social"), strings.Index(body, "Economy"))

	resp = f.api.Post("/api/v1/viewer/layers", map[string]any{"category": "Economy"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "selector "+LayerSelector)
	assert.Contains(t, resp.Body.String(), `<option value="GDP">GDP</option>`)
	assert.NotContains(t, resp.Body.String(), "Population")
}

func TestCategories_CatalogFailed(t *testing.T) {
	cat := catalog.NewCatalog(catalog.NewFetcher("http://127.0.0.1:0/nothing", nil), nil)
	require.Error(t, cat.Load(context.Background()))

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("test", "1.0.0"))
	NewHandler(cat, viewer.NewStore(viewer.StoreConfig{}), templates.Must(), nil).RegisterRoutes(api)

	resp := humatest.Wrap(t, api).Get("/api/v1/viewer/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Layer catalog unavailable")
	assert.Contains(t, resp.Body.String(), "Select a category")
}

func TestOverlays(t *testing.T) {
	f := newFixture(t)
	s := f.store.Create()

	resp := f.api.Post("/api/v1/viewer/overlays/add", map[string]any{"session": s.ID, "layer": "GDP"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"overlay":`)
	assert.Contains(t, resp.Body.String(), `overlay-gdp-01`)
	assert.Contains(t, resp.Body.String(), `"success":"Added GDP"`)
	assert.True(t, s.HasLayer("gdp-01"))

	resp = f.api.Post("/api/v1/viewer/overlays/add", map[string]any{"session": s.ID, "layer": "GDP"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), DuplicateDialog)
	assert.NotContains(t, resp.Body.String(), `"success"`)
	assert.Len(t, s.Overlays(), 1)

	// The overlay card removes by id.
	resp = f.api.Post("/api/v1/viewer/overlays/remove", map[string]any{"session": s.ID, "layer": "gdp-01"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"removed":"gdp-01"`)
	assert.Contains(t, resp.Body.String(), `"success":"Removed gdp-01"`)
	assert.False(t, s.HasLayer("gdp-01"))

	resp = f.api.Post("/api/v1/viewer/overlays/remove", map[string]any{"session": s.ID, "layer": "GDP"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), NoLayerDialog)

	assert.Equal(t, http.StatusNotFound,
		f.api.Post("/api/v1/viewer/overlays/add", map[string]any{"session": "gone", "layer": "GDP"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.api.Post("/api/v1/viewer/overlays/add", map[string]any{"layer": "GDP"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.api.Post("/api/v1/viewer/overlays/add", map[string]any{"session": s.ID}).Code)
}

func TestClick(t *testing.T) {
	f := newFixture(t)
	s := f.store.Create()

	resp := f.api.Post("/api/v1/viewer/clicks", map[string]any{
		"session":    s.ID,
		"feature":    map[string]any{"country_na": "Chile", "pop": 18, "gdp": 300},
		"attributes": []string{"pop", "gdp"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "selector "+FeatureTableBody)
	assert.Contains(t, body, "<tr><td>country_na</td><td>Chile</td></tr>")
	assert.Contains(t, body, "selector "+AttributePicker)
	assert.Contains(t, body, `"chart":`)
	assert.Contains(t, body, `"location":"Chile"`)

	_, locations := s.History()
	assert.Equal(t, []string{"Chile"}, locations)

	resp = f.api.Post("/api/v1/viewer/clicks", map[string]any{
		"session":    s.ID,
		"feature":    map[string]any{"country_na": "Peru", "pop": 33},
		"attributes": []string{"pop"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Select at least two attributes")
	assert.Contains(t, resp.Body.String(), "Peru", "table is still drawn")
	_, locations = s.History()
	assert.Equal(t, []string{"Chile"}, locations)

	resp = f.api.Post("/api/v1/viewer/clicks", map[string]any{"session": s.ID, "attributes": []string{"pop", "gdp"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "datastar")
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	s := f.store.Create()
	other := f.store.Create()

	srv := httptest.NewServer(f.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/viewer/events?session="+s.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The subscription starts after the headers, so keep poking until an
	// event arrives.
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				other.AddLayer("ignored")
				other.RemoveLayer("ignored")
				if _, err := s.AddLayer("pop-01"); err == nil {
					s.RemoveLayer("pop-01")
				}
			}
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	var sawPatch, sawEvent bool
	for scanner.Scan() && !(sawPatch && sawEvent) {
		line := scanner.Text()
		assert.NotContains(t, line, "ignored")
		if strings.Contains(line, "selector "+OverlayList) {
			sawPatch = true
		}
		if strings.Contains(line, "session-changed") {
			sawEvent = true
		}
	}
	cancel()
	assert.True(t, sawPatch)
	assert.True(t, sawEvent)

	assert.Equal(t, http.StatusNotFound, f.api.Get("/api/v1/viewer/events?session=nope").Code)
}
