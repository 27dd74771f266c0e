package mapboxglstyle

import (
	"github.com/jamesrr39/goutil/errorsx"
)

type LayerType string

const (
	LayerTypeBackground    LayerType = "background"
	LayerTypeFill          LayerType = "fill"
	LayerTypeLine          LayerType = "line"
	LayerTypeSymbol        LayerType = "symbol"
	LayerTypeRaster        LayerType = "raster"
	LayerTypeCircle        LayerType = "circle"
	LayerTypeFillExtrusion LayerType = "fill-extrusion"
	LayerTypeHeatmap       LayerType = "heatmap"
	LayerTypeHillshade     LayerType = "hillshade"
)

const (
	minLayerZoom = 0
	maxLayerZoom = 24
)

// Properties holds paint or layout properties as decoded from JSON. A value is a number, string, bool or array,
// a legacy zoom function ({"base": 1.4, "stops": [[10, 8], [20, 14]]}) or an expression array.
type Properties map[string]interface{}

type Layer struct {
	ID          string                 `json:"id"`
	Type        LayerType              `json:"type"`
	Filter      Filter                 `json:"filter"`
	Layout      Properties             `json:"layout"`
	Paint       Properties             `json:"paint"`
	MinZoom     *float64               `json:"minzoom"`
	MaxZoom     *float64               `json:"maxzoom"`
	Metadata    map[string]interface{} `json:"metadata"`
	Source      string                 `json:"source"`
	SourceLayer string                 `json:"source-layer"`
}

func (l *Layer) Validate() errorsx.Error {
	if l.ID == "" {
		return errorsx.Wrap(ErrInvalidStyle, "reason", "layer without an id")
	}

	if l.MaxZoom != nil && l.MinZoom != nil && *l.MaxZoom < *l.MinZoom {
		return errorsx.Wrap(ErrInvalidStyle, "reason", "max zoom is smaller than min zoom", "layer", l.ID)
	}

	if l.MaxZoom != nil && (*l.MaxZoom < minLayerZoom || *l.MaxZoom > maxLayerZoom) {
		return errorsx.Wrap(ErrInvalidStyle, "reason", "max zoom must be between 0 and 24 (inclusive)", "layer", l.ID, "maxzoom", *l.MaxZoom)
	}

	if l.MinZoom != nil && (*l.MinZoom < minLayerZoom || *l.MinZoom > maxLayerZoom) {
		return errorsx.Wrap(ErrInvalidStyle, "reason", "min zoom must be between 0 and 24 (inclusive)", "layer", l.ID, "minzoom", *l.MinZoom)
	}

	return nil
}

// zoomBounds gives the layer's zoom range, with the defaults filled in
func (l *Layer) zoomBounds() (float64, float64) {
	minZoom, maxZoom := float64(minLayerZoom), float64(maxLayerZoom)
	if l.MinZoom != nil {
		minZoom = *l.MinZoom
	}
	if l.MaxZoom != nil {
		maxZoom = *l.MaxZoom
	}
	return minZoom, maxZoom
}

func (l *Layer) isVisible() bool {
	visibility, ok := l.Layout["visibility"].(string)
	return !ok || visibility != "none"
}

// property looks a property up in the paint properties, then the layout properties
func (l *Layer) property(name string) (interface{}, bool) {
	if v, ok := l.Paint[name]; ok {
		return v, true
	}
	v, ok := l.Layout[name]
	return v, ok
}
