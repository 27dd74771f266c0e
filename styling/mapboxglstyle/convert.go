package mapboxglstyle

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

type Options struct {
	// OSMTags translates OpenMapTiles source layers and classes into OpenStreetMap tag filters, so that the
	// style can be applied to OSM data directly
	OSMTags bool
	// Logger receives warnings about parts of the style that cannot be converted. Defaults to stderr.
	Logger *logpkg.Logger
}

// Load parses a style document and converts it
func Load(reader io.Reader, id string, options Options) (*styling.Map, errorsx.Error) {
	style, err := Parse(reader)
	if err != nil {
		return nil, err
	}
	return style.ToMap(id, options)
}

// ToMap converts the style. Each visible layer becomes a feature type style of the same name, in drawing order.
func (s *Style) ToMap(id string, options Options) (*styling.Map, errorsx.Error) {
	if options.Logger == nil {
		options.Logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelWarn)
	}

	m := styling.NewMap(id)
	for _, layer := range s.Layers {
		if !layer.isVisible() {
			continue
		}

		lc := newLayerConverter(layer, options)
		switch layer.Type {
		case LayerTypeBackground:
			err := lc.applyBackground(m)
			if err != nil {
				return nil, err
			}
			continue
		case LayerTypeHeatmap, LayerTypeHillshade:
			options.Logger.Warn("skipping layer %q: %s layers are not supported", layer.ID, layer.Type)
			continue
		}

		style, err := lc.convert()
		if err != nil {
			return nil, errorsx.Wrap(err, "layer", layer.ID)
		}
		err = m.AddStyle(style)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

type layerConverter struct {
	layer     *Layer
	options   Options
	functions map[string]*zoomFunction
	// properties with values that cannot be converted
	unsupported map[string]bool
	zoom        float64
}

func newLayerConverter(layer *Layer, options Options) *layerConverter {
	lc := &layerConverter{
		layer:       layer,
		options:     options,
		functions:   make(map[string]*zoomFunction),
		unsupported: make(map[string]bool),
	}

	for _, properties := range []Properties{layer.Paint, layer.Layout} {
		for name, value := range properties {
			fn, err := parseZoomFunction(value)
			if err != nil {
				options.Logger.Warn("layer %q: ignoring property %q: %s", layer.ID, name, err.Error())
				lc.unsupported[name] = true
				continue
			}
			if fn != nil {
				lc.functions[name] = fn
			}
		}
	}
	return lc
}

func (lc *layerConverter) applyBackground(m *styling.Map) errorsx.Error {
	lc.zoom, _ = lc.layer.zoomBounds()
	value, ok := lc.value("background-color")
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case stylecolor.Color:
		m.Background = v
	case string:
		c, err := stylecolor.Parse(v)
		if err != nil {
			return errorsx.Wrap(err, "layer", lc.layer.ID)
		}
		m.Background = c
	}
	return nil
}

func (lc *layerConverter) convert() (*styling.FeatureTypeStyle, errorsx.Error) {
	fc := &filterConverter{
		logger:      lc.options.Logger,
		sourceLayer: lc.layer.SourceLayer,
		osmTags:     lc.options.OSMTags,
	}
	filter, err := fc.convert(lc.layer.Filter)
	if err != nil {
		return nil, err
	}
	if lc.options.OSMTags {
		filter = andExpressions(sourceLayerExpression(lc.layer.SourceLayer), filter)
	}

	style := styling.NewFeatureTypeStyle(lc.layer.ID)
	// rules of later zoom intervals come first, so at a shared boundary zoom the later interval wins
	style.FilterMode = styling.FilterModeFirst

	intervals := lc.zoomIntervals()
	for i := len(intervals) - 1; i >= 0; i-- {
		interval := intervals[i]
		lc.zoom = interval[0]

		name := lc.layer.ID
		if len(intervals) > 1 {
			name = fmt.Sprintf("%s@%g", lc.layer.ID, interval[0])
		}
		rule := styling.NewRule(name)
		rule.Filter = filter
		rule.MinScale, rule.MaxScale = scaleDenominators(interval[0], interval[1])

		symbolizers, err := lc.symbolizers()
		if err != nil {
			return nil, err
		}
		if len(symbolizers) == 0 {
			continue
		}
		for _, sym := range symbolizers {
			rule.Append(sym)
		}
		style.Rules = append(style.Rules, rule)
	}

	return style, nil
}

func sourceLayerExpression(sourceLayer string) *styleexpr.Expression {
	var result *styleexpr.Expression
	for _, key := range sourceLayerKeys(sourceLayer) {
		expr := styleexpr.Combine(styleexpr.BinaryOperatorNotEqual, styleexpr.NewAttribute(key), null)
		if result == nil {
			result = expr
			continue
		}
		result = styleexpr.Combine(styleexpr.BinaryOperatorOr, result, expr)
	}
	return result
}

func andExpressions(a, b *styleexpr.Expression) *styleexpr.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return styleexpr.Combine(styleexpr.BinaryOperatorAnd, a, b)
}

// zoomIntervals splits the layer's zoom range at every zoom where a property value changes
func (lc *layerConverter) zoomIntervals() [][2]float64 {
	minZoom, maxZoom := lc.layer.zoomBounds()

	points := []float64{minZoom, maxZoom}
	for _, fn := range lc.functions {
		for _, z := range fn.breakpoints() {
			if z > minZoom && z < maxZoom {
				points = append(points, z)
			}
		}
	}
	sort.Float64s(points)

	var intervals [][2]float64
	for i := 1; i < len(points); i++ {
		if points[i] == points[i-1] {
			continue
		}
		intervals = append(intervals, [2]float64{points[i-1], points[i]})
	}
	if len(intervals) == 0 {
		intervals = append(intervals, [2]float64{minZoom, maxZoom})
	}
	return intervals
}

func scaleDenominators(minZoom, maxZoom float64) (minScale, maxScale float64) {
	maxScale = math.Inf(1)
	if minZoom > minLayerZoom {
		maxScale = styling.ZoomLevelToScaleDenominator(styling.ZoomLevel(minZoom))
	}
	if maxZoom < maxLayerZoom {
		minScale = styling.ZoomLevelToScaleDenominator(styling.ZoomLevel(maxZoom))
	}
	return minScale, maxScale
}

// value gives a property at the current zoom
func (lc *layerConverter) value(name string) (interface{}, bool) {
	if lc.unsupported[name] {
		return nil, false
	}
	if fn, ok := lc.functions[name]; ok {
		return fn.valueAt(lc.zoom), true
	}
	return lc.layer.property(name)
}

// dynamicValue converts a property value for the symbolizer bridge. ["get", key] becomes an attribute
// expression; other expression arrays are not supported.
func (lc *layerConverter) dynamicValue(name string, value interface{}) (interface{}, bool) {
	array, ok := value.([]interface{})
	if !ok {
		return value, true
	}
	if len(array) == 2 && array[0] == "get" {
		if key, ok := array[1].(string); ok {
			return styleexpr.NewAttribute(key), true
		}
	}
	lc.options.Logger.Warn("layer %q: ignoring property %q: unsupported expression %v", lc.layer.ID, name, value)
	return nil, false
}

// set copies a property onto a symbolizer key, using fallback when the layer does not set it
func (lc *layerConverter) set(sym symbolizer.Symbolizer, key symbolizer.Key, name string, fallback interface{}) errorsx.Error {
	value, ok := lc.value(name)
	if !ok {
		if fallback == nil {
			return nil
		}
		value = fallback
	}

	value, ok = lc.dynamicValue(name, value)
	if !ok {
		return nil
	}

	err := symbolizer.SetProperty(sym, key, value)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}
	return nil
}

// setNamed sets an enumeration from its name, translated through names when the layer's vocabulary differs
func (lc *layerConverter) setNamed(sym symbolizer.Symbolizer, propertyName, name string, names map[string]string) errorsx.Error {
	value, ok := lc.value(name)
	if !ok {
		return nil
	}
	text, ok := value.(string)
	if !ok {
		lc.options.Logger.Warn("layer %q: ignoring property %q: expected a string but got %v", lc.layer.ID, name, value)
		return nil
	}
	if translated, ok := names[text]; ok {
		text = translated
	}

	err := symbolizer.SetFromString(sym, propertyName, text)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}
	return nil
}

func (lc *layerConverter) number(name string, fallback float64) float64 {
	value, ok := lc.value(name)
	if !ok {
		return fallback
	}
	f, ok := value.(float64)
	if !ok {
		return fallback
	}
	return f
}

func (lc *layerConverter) symbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	switch lc.layer.Type {
	case LayerTypeFill:
		return lc.fillSymbolizers()
	case LayerTypeLine:
		return lc.lineSymbolizers()
	case LayerTypeSymbol:
		return lc.symbolSymbolizers()
	case LayerTypeCircle:
		return lc.circleSymbolizers()
	case LayerTypeRaster:
		return lc.rasterSymbolizers()
	case LayerTypeFillExtrusion:
		return lc.fillExtrusionSymbolizers()
	}
	return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported layer type", "type", string(lc.layer.Type))
}

func (lc *layerConverter) fillSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	var syms []symbolizer.Symbolizer

	if _, ok := lc.value("fill-pattern"); ok {
		pattern := symbolizer.NewPolygonPatternSymbolizer()
		err := lc.setPatternFile(pattern, "fill-pattern")
		if err != nil {
			return nil, err
		}
		err = lc.set(pattern, symbolizer.KeyOpacity, "fill-opacity", nil)
		if err != nil {
			return nil, err
		}
		syms = append(syms, pattern)
	} else {
		polygon := symbolizer.NewPolygonSymbolizer()
		err := lc.set(polygon, symbolizer.KeyFill, "fill-color", stylecolor.Black)
		if err != nil {
			return nil, err
		}
		err = lc.set(polygon, symbolizer.KeyFillOpacity, "fill-opacity", nil)
		if err != nil {
			return nil, err
		}
		syms = append(syms, polygon)
	}

	if _, ok := lc.value("fill-outline-color"); ok {
		outline := symbolizer.NewLineSymbolizer()
		err := lc.set(outline, symbolizer.KeyStroke, "fill-outline-color", nil)
		if err != nil {
			return nil, err
		}
		syms = append(syms, outline)
	}

	return syms, nil
}

// setPatternFile sets a pattern image by sprite name. {token} placeholders become [attribute] placeholders.
func (lc *layerConverter) setPatternFile(sym symbolizer.Symbolizer, name string) errorsx.Error {
	value, _ := lc.value(name)
	spriteName, ok := value.(string)
	if !ok {
		lc.options.Logger.Warn("layer %q: ignoring property %q: expected a sprite name but got %v", lc.layer.ID, name, value)
		return nil
	}

	path := strings.NewReplacer("{", "[", "}", "]").Replace(spriteName)
	err := symbolizer.SetProperty(sym, symbolizer.KeyFile, path)
	if err != nil {
		return errorsx.Wrap(err, "property", name)
	}
	return nil
}

func (lc *layerConverter) lineSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	if _, ok := lc.value("line-pattern"); ok {
		pattern := symbolizer.NewLinePatternSymbolizer()
		err := lc.setPatternFile(pattern, "line-pattern")
		if err != nil {
			return nil, err
		}
		err = lc.set(pattern, symbolizer.KeyOpacity, "line-opacity", nil)
		if err != nil {
			return nil, err
		}
		err = lc.set(pattern, symbolizer.KeyOffset, "line-offset", nil)
		if err != nil {
			return nil, err
		}
		return []symbolizer.Symbolizer{pattern}, nil
	}

	line := symbolizer.NewLineSymbolizer()
	for _, p := range []struct {
		key      symbolizer.Key
		name     string
		fallback interface{}
	}{
		{symbolizer.KeyStroke, "line-color", stylecolor.Black},
		{symbolizer.KeyStrokeWidth, "line-width", 1.0},
		{symbolizer.KeyStrokeOpacity, "line-opacity", nil},
		{symbolizer.KeyOffset, "line-offset", nil},
		{symbolizer.KeyStrokeMiterlimit, "line-miter-limit", nil},
	} {
		err := lc.set(line, p.key, p.name, p.fallback)
		if err != nil {
			return nil, err
		}
	}

	err := lc.setNamed(line, "stroke-linecap", "line-cap", nil)
	if err != nil {
		return nil, err
	}
	err = lc.setNamed(line, "stroke-linejoin", "line-join", nil)
	if err != nil {
		return nil, err
	}

	err = lc.setDashArray(line)
	if err != nil {
		return nil, err
	}

	return []symbolizer.Symbolizer{line}, nil
}

// setDashArray sets the dashes. They are given in line widths, so are scaled by the width.
func (lc *layerConverter) setDashArray(line *symbolizer.LineSymbolizer) errorsx.Error {
	value, ok := lc.value("line-dasharray")
	if !ok {
		return nil
	}
	rawDashes, ok := value.([]interface{})
	if !ok {
		lc.options.Logger.Warn("layer %q: ignoring line-dasharray: expected an array but got %v", lc.layer.ID, value)
		return nil
	}

	width := lc.number("line-width", 1)
	var dashes []float64
	for _, rawDash := range rawDashes {
		dash, ok := rawDash.(float64)
		if !ok {
			lc.options.Logger.Warn("layer %q: ignoring line-dasharray: unsupported value %v", lc.layer.ID, value)
			return nil
		}
		dashes = append(dashes, dash*width)
	}

	err := symbolizer.SetProperty(line, symbolizer.KeyStrokeDasharray, dashes)
	if err != nil {
		return errorsx.Wrap(err, "property", "line-dasharray")
	}
	return nil
}

var labelPlacementNames = map[string]string{
	"line-center": "line",
}

func (lc *layerConverter) symbolSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	var syms []symbolizer.Symbolizer

	if _, ok := lc.value("icon-image"); ok {
		point := symbolizer.NewPointSymbolizer()
		err := lc.setPatternFile(point, "icon-image")
		if err != nil {
			return nil, err
		}
		err = lc.set(point, symbolizer.KeyOpacity, "icon-opacity", nil)
		if err != nil {
			return nil, err
		}
		err = lc.set(point, symbolizer.KeyAllowOverlap, "icon-allow-overlap", nil)
		if err != nil {
			return nil, err
		}
		syms = append(syms, point)
	}

	field, ok := lc.value("text-field")
	if !ok {
		return syms, nil
	}
	format, err := textFieldExpression(field)
	if err != nil {
		lc.options.Logger.Warn("layer %q: ignoring text-field: %s", lc.layer.ID, err.Error())
		return syms, nil
	}

	placements := symbolizer.DefaultTextPlacements()
	placements.Format = format
	placements.TextSize = lc.number("text-size", 16)
	placements.HaloRadius = lc.number("text-halo-width", 0)
	if fonts, ok := lc.value("text-font"); ok {
		if fontList, ok := fonts.([]interface{}); ok && len(fontList) > 0 {
			if face, ok := fontList[0].(string); ok {
				placements.FaceName = face
			}
		}
	}
	placements.Fill, err = lc.color("text-color", stylecolor.Black)
	if err != nil {
		return nil, err
	}
	placements.HaloFill, err = lc.color("text-halo-color", stylecolor.Transparent)
	if err != nil {
		return nil, err
	}

	text := symbolizer.NewTextSymbolizer()
	text.SetPlacements(placements)
	err = lc.setNamed(text, "label-placement", "symbol-placement", labelPlacementNames)
	if err != nil {
		return nil, err
	}
	err = lc.setNamed(text, "text-transform", "text-transform", nil)
	if err != nil {
		return nil, err
	}
	err = lc.set(text, symbolizer.KeyAllowOverlap, "text-allow-overlap", nil)
	if err != nil {
		return nil, err
	}

	return append(syms, text), nil
}

func (lc *layerConverter) color(name string, fallback stylecolor.Color) (stylecolor.Color, errorsx.Error) {
	value, ok := lc.value(name)
	if !ok {
		return fallback, nil
	}
	switch v := value.(type) {
	case stylecolor.Color:
		return v, nil
	case string:
		c, err := stylecolor.Parse(v)
		if err != nil {
			return fallback, errorsx.Wrap(err, "property", name)
		}
		return c, nil
	}
	lc.options.Logger.Warn("layer %q: ignoring property %q: expected a colour but got %v", lc.layer.ID, name, value)
	return fallback, nil
}

// textFieldExpression converts a text field, such as "{name}", "{name} ({ref})" or ["get", "name"]
func textFieldExpression(field interface{}) (*styleexpr.Expression, errorsx.Error) {
	switch v := field.(type) {
	case []interface{}:
		if len(v) == 2 && v[0] == "get" {
			if key, ok := v[1].(string); ok {
				return styleexpr.NewAttribute(key), nil
			}
		}
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported text-field expression", "value", fmt.Sprint(field))
	case string:
		return tokenStringExpression(v)
	}
	return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported text-field", "value", fmt.Sprint(field))
}

func tokenStringExpression(text string) (*styleexpr.Expression, errorsx.Error) {
	var parts []*styleexpr.Expression
	for len(text) > 0 {
		open := strings.IndexByte(text, '{')
		if open == -1 {
			parts = append(parts, styleexpr.NewLiteral(styleexpr.StringOperand(text)))
			break
		}
		closing := strings.IndexByte(text[open:], '}')
		if closing == -1 {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "unterminated token", "text-field", text)
		}
		if open > 0 {
			parts = append(parts, styleexpr.NewLiteral(styleexpr.StringOperand(text[:open])))
		}
		parts = append(parts, styleexpr.NewAttribute(text[open+1:open+closing]))
		text = text[open+closing+1:]
	}

	if len(parts) == 0 {
		return styleexpr.NewLiteral(styleexpr.StringOperand("")), nil
	}
	result := parts[0]
	for _, part := range parts[1:] {
		result = styleexpr.Combine(styleexpr.BinaryOperatorAdd, result, part)
	}
	return result, nil
}

func (lc *layerConverter) circleSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	dot := symbolizer.NewDotSymbolizer()
	err := lc.set(dot, symbolizer.KeyFill, "circle-color", stylecolor.Black)
	if err != nil {
		return nil, err
	}
	err = lc.set(dot, symbolizer.KeyOpacity, "circle-opacity", nil)
	if err != nil {
		return nil, err
	}

	diameter := 2 * lc.number("circle-radius", 5)
	for _, key := range []symbolizer.Key{symbolizer.KeyWidth, symbolizer.KeyHeight} {
		err = symbolizer.SetProperty(dot, key, diameter)
		if err != nil {
			return nil, err
		}
	}
	return []symbolizer.Symbolizer{dot}, nil
}

var rasterResamplingNames = map[string]string{
	"nearest": "near",
	"linear":  "bilinear",
}

func (lc *layerConverter) rasterSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	raster := symbolizer.NewRasterSymbolizer()
	err := lc.set(raster, symbolizer.KeyOpacity, "raster-opacity", nil)
	if err != nil {
		return nil, err
	}
	err = lc.setNamed(raster, "scaling", "raster-resampling", rasterResamplingNames)
	if err != nil {
		return nil, err
	}
	return []symbolizer.Symbolizer{raster}, nil
}

func (lc *layerConverter) fillExtrusionSymbolizers() ([]symbolizer.Symbolizer, errorsx.Error) {
	building := symbolizer.NewBuildingSymbolizer()
	for _, p := range []struct {
		key      symbolizer.Key
		name     string
		fallback interface{}
	}{
		{symbolizer.KeyFill, "fill-extrusion-color", stylecolor.Black},
		{symbolizer.KeyFillOpacity, "fill-extrusion-opacity", nil},
		{symbolizer.KeyHeight, "fill-extrusion-height", nil},
	} {
		err := lc.set(building, p.key, p.name, p.fallback)
		if err != nil {
			return nil, err
		}
	}
	return []symbolizer.Symbolizer{building}, nil
}
