package webservices

import (
	"encoding/json"
	"image/png"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/swatchrenderer"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/jamesrr39/semaphore"
)

const (
	defaultSwatchSize = 32
	// query parameters prefixed with this are feature attributes rather than properties
	swatchAttributePrefix = "attr."
)

type SymbolizerService struct {
	logger   *logpkg.Logger
	sema     *semaphore.Semaphore
	renderer *swatchrenderer.SwatchRenderer
	chi.Router
}

func NewSymbolizerService(logger *logpkg.Logger, renderer *swatchrenderer.SwatchRenderer, maxConcurrentRenders uint) *SymbolizerService {
	ss := &SymbolizerService{logger, semaphore.NewSemaphore(maxConcurrentRenders), renderer, chi.NewRouter()}

	ss.Get("/", ss.handleGetKinds)
	ss.Get("/{kind}", ss.handleGetDefaults)
	ss.Post("/{kind}", ss.handlePost)
	ss.Get("/{kind}/swatch.png", ss.handleGetSwatch)

	return ss
}

type kindType struct {
	Kind          string   `json:"kind"`
	Type          string   `json:"type"`
	DefaultKeys   []string `json:"defaultKeys"`
	PropertyNames []string `json:"propertyNames"`
}

func (ss *SymbolizerService) handleGetKinds(w http.ResponseWriter, r *http.Request) {
	kinds := []*kindType{}
	for _, kind := range symbolizer.AllKinds() {
		sym, err := symbolizer.New(kind)
		if err != nil {
			errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusInternalServerError)
			return
		}

		defaultKeys := symbolizer.Keys(sym)
		if defaultKeys == nil {
			defaultKeys = []string{}
		}

		var propertyNames []string
		for _, key := range symbolizer.Properties(kind) {
			propertyNames = append(propertyNames, key.String())
		}

		kinds = append(kinds, &kindType{kind.String(), kind.TypeName(), defaultKeys, propertyNames})
	}

	render.JSON(w, r, kinds)
}

func (ss *SymbolizerService) newSymbolizer(r *http.Request) (symbolizer.Symbolizer, errorsx.Error) {
	kind, err := symbolizer.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return nil, err
	}

	return symbolizer.New(kind)
}

func (ss *SymbolizerService) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	sym, err := ss.newSymbolizer(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	render.JSON(w, r, newSymbolizerView(sym))
}

// handlePost applies a JSON object of properties to a new symbolizer of the kind. Strings are read as the text
// form of the property, other JSON values go through the dynamic bridge.
func (ss *SymbolizerService) handlePost(w http.ResponseWriter, r *http.Request) {
	sym, err := ss.newSymbolizer(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	var properties map[string]interface{}
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	decodeErr := decoder.Decode(&properties)
	if decodeErr != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(decodeErr), http.StatusBadRequest)
		return
	}

	err = applyProperties(sym, properties)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	render.JSON(w, r, newSymbolizerView(sym))
}

func applyProperties(sym symbolizer.Symbolizer, properties map[string]interface{}) errorsx.Error {
	// sorted, so the same bad request always reports the same property
	var names []string
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var err errorsx.Error
		switch value := properties[name].(type) {
		case string:
			err = symbolizer.SetFromString(sym, name, value)
		case json.Number:
			err = symbolizer.SetByName(sym, name, jsonNumberValue(value))
		default:
			err = symbolizer.SetByName(sym, name, value)
		}
		if err != nil {
			return errorsx.Wrap(err, "property", name)
		}
	}
	return nil
}

// jsonNumberValue keeps whole numbers as integers, so they can set integer and enumeration properties
func jsonNumberValue(n json.Number) interface{} {
	i, err := n.Int64()
	if err == nil {
		return i
	}
	f, err := n.Float64()
	if err == nil {
		return f
	}
	return n.String()
}

// handleGetSwatch renders the kind's defaults, overridden by any query parameters naming properties.
// Parameters starting with "attr." set feature attributes for deferred properties.
func (ss *SymbolizerService) handleGetSwatch(w http.ResponseWriter, r *http.Request) {
	sym, err := ss.newSymbolizer(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, errorsx.Wrap(err), http.StatusNotFound)
		return
	}

	size := defaultSwatchSize
	feature := styleexpr.MapFeature{}
	properties := make(map[string]interface{})
	for name, values := range r.URL.Query() {
		value := values[len(values)-1]
		switch {
		case name == "size":
			var convErr error
			size, convErr = strconv.Atoi(value)
			if convErr != nil {
				errorsx.HTTPError(w, ss.logger, errorsx.Wrap(convErr, "size", value), http.StatusBadRequest)
				return
			}
		case strings.HasPrefix(name, swatchAttributePrefix):
			feature[strings.TrimPrefix(name, swatchAttributePrefix)] = value
		default:
			properties[name] = value
		}
	}

	err = applyProperties(sym, properties)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	ss.sema.Add()
	defer ss.sema.Done()

	img, err := ss.renderer.Render(r.Context(), sym, size, feature)
	if err != nil {
		status := http.StatusInternalServerError
		if errorsx.Cause(err) == swatchrenderer.ErrInvalidSize {
			status = http.StatusBadRequest
		}
		errorsx.HTTPError(w, ss.logger, err, status)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	encodeErr := png.Encode(w, img)
	if encodeErr != nil {
		switch encodeErr.(type) {
		case *net.OpError:
			// broken pipe (request cancelled). Do nothing
		default:
			errorsx.HTTPError(w, ss.logger, errorsx.Wrap(encodeErr), http.StatusInternalServerError)
		}
		return
	}
}
