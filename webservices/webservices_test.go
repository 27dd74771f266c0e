package webservices

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/fonts"
	"github.com/jamesrr39/ownmap-symbolizer/styledal/stylesqldb"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/swatchrenderer"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := logpkg.NewLogger(bytes.NewBuffer(nil), logpkg.LogLevelWarn)

	styleSet, err := styling.NewStyleSet([]*styling.Map{styling.NewBuiltinMap()}, styling.BUILTIN_STYLEID)
	require.Nil(t, err)

	store, err := stylesqldb.OpenSQLite(filepath.Join(t.TempDir(), "styles.db"))
	require.Nil(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	roads := styling.NewFeatureTypeStyle("roads")
	rule := styling.NewRule("primary")
	rule.Filter = styleexpr.MustParse("[highway] = 'primary'")
	rule.Append(symbolizer.NewLineSymbolizer())
	roads.Rules = append(roads.Rules, rule)
	require.Nil(t, store.Save(roads))

	renderer := swatchrenderer.NewSwatchRenderer(fonts.DefaultFont())

	router := chi.NewRouter()
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", NewInfoService(logger, styleSet))
		r.Mount("/symbolizers", NewSymbolizerService(logger, renderer, 2))
		r.Mount("/styles", NewStyleService(logger, styleSet))
		r.Mount("/stored-styles", NewStoredStyleService(logger, store))
	})

	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.Nil(t, json.NewDecoder(w.Body).Decode(dest))
}

func TestInfoService(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info infoType
	decodeBody(t, w, &info)

	assert.Equal(t, len(symbolizer.AllKeys()), info.Registry.KeyCount)
	assert.Len(t, info.Registry.Kinds, len(symbolizer.AllKinds()))
	assert.Contains(t, info.Registry.Kinds, "line")
	assert.Equal(t, styling.BUILTIN_STYLEID, info.Style.DefaultStyleID)
	assert.Equal(t, []string{styling.BUILTIN_STYLEID}, info.Style.StyleIDs)
}

func TestSymbolizerService_getKinds(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/symbolizers/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var kinds []*kindType
	decodeBody(t, w, &kinds)
	require.Len(t, kinds, len(symbolizer.AllKinds()))

	byKind := make(map[string]*kindType)
	for _, kind := range kinds {
		byKind[kind.Kind] = kind
	}

	line := byKind["line"]
	require.NotNil(t, line)
	assert.Equal(t, "LineSymbolizer", line.Type)
	assert.Equal(t, []string{"stroke", "stroke-width"}, line.DefaultKeys)
	assert.Contains(t, line.PropertyNames, "stroke-dasharray")

	group := byKind["group"]
	require.NotNil(t, group)
	assert.Equal(t, []string{}, group.DefaultKeys)
}

func TestSymbolizerService_getDefaults(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedKind   string
	}{
		{"short name", "/api/symbolizers/polygon", http.StatusOK, "polygon"},
		{"type name", "/api/symbolizers/PolygonSymbolizer", http.StatusOK, "polygon"},
		{"unknown kind", "/api/symbolizers/hexagon", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, "")
			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var view symbolizerView
			decodeBody(t, w, &view)
			assert.Equal(t, tt.expectedKind, view.Kind)
			assert.Equal(t, map[string]string{"fill": "#808080"}, view.Properties)
			assert.Len(t, view.Hash, 16)
		})
	}
}

func TestSymbolizerService_post(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expected       map[string]string
	}{
		{
			"text and json values",
			`{"stroke": "#ff0000", "stroke-width": 2.5, "stroke-linecap": "round", "stroke-dasharray": "4 2"}`,
			http.StatusOK,
			map[string]string{
				"stroke":           "#ff0000",
				"stroke-width":     "2.5",
				"stroke-linecap":   "round",
				"stroke-dasharray": "4,2",
			},
		},
		{
			"integer for an enum",
			`{"stroke-linejoin": 2}`,
			http.StatusOK,
			map[string]string{
				"stroke":          "#000000",
				"stroke-width":    "1",
				"stroke-linejoin": "round",
			},
		},
		{"unknown property", `{"stroke-sparkle": 1}`, http.StatusBadRequest, nil},
		{"wrong type", `{"stroke-width": true}`, http.StatusBadRequest, nil},
		{"bad dasharray", `{"stroke-dasharray": "a,b"}`, http.StatusBadRequest, nil},
		{"not json", `stroke: red`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/symbolizers/line", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var view symbolizerView
			decodeBody(t, w, &view)
			assert.Equal(t, tt.expected, view.Properties)
		})
	}
}

func TestSymbolizerService_getSwatch(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedSize   int
	}{
		{"default size", "/api/symbolizers/line/swatch.png", http.StatusOK, defaultSwatchSize},
		{"custom size", "/api/symbolizers/polygon/swatch.png?size=48&fill=red", http.StatusOK, 48},
		{"deferred property", "/api/symbolizers/polygon/swatch.png?fill=[colour]&attr.colour=blue", http.StatusOK, defaultSwatchSize},
		{"size too big", "/api/symbolizers/line/swatch.png?size=100000", http.StatusBadRequest, 0},
		{"size not a number", "/api/symbolizers/line/swatch.png?size=big", http.StatusBadRequest, 0},
		{"unknown property", "/api/symbolizers/line/swatch.png?sparkle=1", http.StatusBadRequest, 0},
		{"unknown kind", "/api/symbolizers/hexagon/swatch.png", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, "")
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			img, err := png.Decode(w.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSize, img.Bounds().Dx())
			assert.Equal(t, tt.expectedSize, img.Bounds().Dy())
		})
	}
}

func TestStyleService(t *testing.T) {
	router := newTestRouter(t)

	t.Run("get", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/styles/"+styling.BUILTIN_STYLEID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var view mapView
		decodeBody(t, w, &view)

		assert.Equal(t, styling.BUILTIN_STYLEID, view.ID)
		assert.Equal(t, "#ffffff", view.Background)

		var styleNames []string
		for _, style := range view.Styles {
			styleNames = append(styleNames, style.Name)
		}
		assert.Equal(t, []string{"landuse", "railways", "highways", "places"}, styleNames)

		highways := view.Styles[2]
		assert.Equal(t, "first", highways.FilterMode)
		assert.Nil(t, highways.Rules[0].MaxScale)
		assert.Equal(t, "([highway] = 'motorway')", highways.Rules[0].Filter)
		require.Len(t, highways.Rules[0].Symbolizers, 1)
		assert.Equal(t, "#f38d9e", highways.Rules[0].Symbolizers[0].Properties["stroke"])
	})

	t.Run("unique symbolizers", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/styles/"+styling.BUILTIN_STYLEID+"/symbolizers", "")
		require.Equal(t, http.StatusOK, w.Code)

		var views []*symbolizerView
		decodeBody(t, w, &views)
		// motorway and tertiary share a line symbolizer
		assert.Len(t, views, 11)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/styles/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStoredStyleService(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/stored-styles/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []map[string]interface{}
	decodeBody(t, w, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, "roads", summaries[0]["name"])
	assert.Equal(t, 1.0, summaries[0]["ruleCount"])

	w = doRequest(t, router, http.MethodGet, "/api/stored-styles/roads", "")
	require.Equal(t, http.StatusOK, w.Code)
	var style featureTypeStyleView
	decodeBody(t, w, &style)
	assert.Equal(t, "roads", style.Name)
	require.Len(t, style.Rules, 1)
	assert.Equal(t, "([highway] = 'primary')", style.Rules[0].Filter)

	w = doRequest(t, router, http.MethodDelete, "/api/stored-styles/roads", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/stored-styles/roads", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/stored-styles/roads", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
