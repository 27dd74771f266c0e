package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

func NewInfoService(logger *logpkg.Logger, styleSet *styling.StyleSet) *InfoService {
	ws := &InfoService{logger, styleSet, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger   *logpkg.Logger
	styleSet *styling.StyleSet
	chi.Router
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

type registryType struct {
	KeyCount int      `json:"keyCount"`
	Kinds    []string `json:"kinds"`
}

type infoType struct {
	Registry registryType `json:"registry"`
	Style    stylesType   `json:"style"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	var kinds []string
	for _, kind := range symbolizer.AllKinds() {
		kinds = append(kinds, kind.String())
	}

	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	render.JSON(w, r, infoType{
		registryType{len(symbolizer.AllKeys()), kinds},
		style,
	})
}
