package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styledal"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
)

type StyleService struct {
	logger   *logpkg.Logger
	styleSet *styling.StyleSet
	chi.Router
}

func NewStyleService(logger *logpkg.Logger, styleSet *styling.StyleSet) *StyleService {
	ss := &StyleService{logger, styleSet, chi.NewRouter()}

	ss.Get("/", ss.handleGetAll)
	ss.Get("/{styleId}", ss.handleGet)
	ss.Get("/{styleId}/symbolizers", ss.handleGetUniqueSymbolizers)

	return ss
}

func (ss *StyleService) handleGetAll(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, stylesType{
		ss.styleSet.GetDefaultStyle().GetStyleID(),
		ss.styleSet.GetAllStyleIDs(),
	})
}

func (ss *StyleService) getStyle(r *http.Request) (*styling.Map, errorsx.Error) {
	styleID := chi.URLParam(r, "styleId")
	style := ss.styleSet.GetStyleByID(styleID)
	if style == nil {
		return nil, errorsx.Wrap(styling.ErrStyleNotFound, "styleID", styleID)
	}

	return style, nil
}

func (ss *StyleService) handleGet(w http.ResponseWriter, r *http.Request) {
	style, err := ss.getStyle(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusNotFound)
		return
	}

	render.JSON(w, r, newMapView(style))
}

func (ss *StyleService) handleGetUniqueSymbolizers(w http.ResponseWriter, r *http.Request) {
	style, err := ss.getStyle(r)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusNotFound)
		return
	}

	views := []*symbolizerView{}
	for _, sym := range style.UniqueSymbolizers() {
		views = append(views, newSymbolizerView(sym))
	}

	render.JSON(w, r, views)
}

// StoredStyleService exposes the styles kept in a style store
type StoredStyleService struct {
	logger *logpkg.Logger
	store  styledal.StyleStore
	chi.Router
}

func NewStoredStyleService(logger *logpkg.Logger, store styledal.StyleStore) *StoredStyleService {
	ss := &StoredStyleService{logger, store, chi.NewRouter()}

	ss.Get("/", ss.handleList)
	ss.Get("/{name}", ss.handleGet)
	ss.Delete("/{name}", ss.handleDelete)

	return ss
}

func (ss *StoredStyleService) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := ss.store.List()
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusInternalServerError)
		return
	}

	if summaries == nil {
		summaries = []*styledal.StoredStyleSummary{}
	}

	render.JSON(w, r, summaries)
}

func (ss *StoredStyleService) handleGet(w http.ResponseWriter, r *http.Request) {
	style, err := ss.store.Load(chi.URLParam(r, "name"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, statusForStoreError(err))
		return
	}

	render.JSON(w, r, newFeatureTypeStyleView(style))
}

func (ss *StoredStyleService) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := ss.store.Delete(chi.URLParam(r, "name"))
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, statusForStoreError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func statusForStoreError(err errorsx.Error) int {
	if errorsx.Cause(err) == errorsx.ObjectNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
