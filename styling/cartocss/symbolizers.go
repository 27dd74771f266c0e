package cartocss

import (
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

// longest prefixes first, so "line-pattern-file" is not read as a line property
var kindPrefixes = []struct {
	prefix string
	kind   symbolizer.Kind
}{
	{"line-pattern-", symbolizer.KindLinePattern},
	{"polygon-pattern-", symbolizer.KindPolygonPattern},
	{"line-", symbolizer.KindLine},
	{"polygon-", symbolizer.KindPolygon},
	{"marker-", symbolizer.KindMarkers},
	{"text-", symbolizer.KindText},
	{"shield-", symbolizer.KindShield},
	{"point-", symbolizer.KindPoint},
	{"raster-", symbolizer.KindRaster},
	{"building-", symbolizer.KindBuilding},
	{"dot-", symbolizer.KindDot},
	{"debug-", symbolizer.KindDebug},
}

// property names that differ between stylesheets and symbolizers, by kind
var propertyAliases = map[symbolizer.Kind]map[string]string{
	symbolizer.KindLine: {
		"color":        "stroke",
		"width":        "stroke-width",
		"opacity":      "stroke-opacity",
		"dasharray":    "stroke-dasharray",
		"dash-offset":  "stroke-dashoffset",
		"cap":          "stroke-linecap",
		"join":         "stroke-linejoin",
		"miterlimit":   "stroke-miterlimit",
		"gamma":        "stroke-gamma",
		"gamma-method": "stroke-gamma-method",
	},
	symbolizer.KindPolygon: {
		"opacity": "fill-opacity",
	},
	symbolizer.KindBuilding: {
		"opacity": "fill-opacity",
	},
	symbolizer.KindMarkers: {
		"placement":    "markers-placement",
		"multi-policy": "markers-multipolicy",
		"transform":    "image-transform",
		"line-color":   "stroke",
		"line-width":   "stroke-width",
		"line-opacity": "stroke-opacity",
	},
	symbolizer.KindPoint: {
		"transform": "image-transform",
	},
	symbolizer.KindText: {
		"placement": "label-placement",
	},
	symbolizer.KindShield: {
		"placement": "label-placement",
	},
}

var placementFields = map[string]string{
	"name":        "format",
	"face-name":   "face-name",
	"size":        "size",
	"fill":        "fill",
	"halo-fill":   "halo-fill",
	"halo-radius": "halo-radius",
}

func kindOfProperty(property string) (symbolizer.Kind, string, bool) {
	for _, kp := range kindPrefixes {
		if strings.HasPrefix(property, kp.prefix) {
			return kp.kind, strings.TrimPrefix(property, kp.prefix), true
		}
	}
	return 0, "", false
}

// symbolizerPropertyName maps a stylesheet property onto the symbolizer property name
func symbolizerPropertyName(kind symbolizer.Kind, property, rest string) (string, errorsx.Error) {
	if alias, ok := propertyAliases[kind][rest]; ok {
		return alias, nil
	}
	if _, err := symbolizer.LookupByName(rest); err == nil {
		return rest, nil
	}
	if _, err := symbolizer.LookupByName(property); err == nil {
		return property, nil
	}
	return "", errorsx.Wrap(symbolizer.ErrUnknownProperty, "property", property)
}

// unquote removes surrounding quotes and url(...) wrapping from a value
func unquote(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "url(") && strings.HasSuffix(value, ")") {
		value = strings.TrimSpace(value[len("url(") : len(value)-1])
	}
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == TokenSingleQuote || first == TokenDoubleQuote) {
			inner := value[1 : len(value)-1]
			if !strings.ContainsRune(inner, rune(first)) {
				return inner
			}
		}
	}
	return value
}

type pendingSymbolizer struct {
	sym        symbolizer.Symbolizer
	placements *symbolizer.TextPlacements
}

// buildSymbolizers creates one symbolizer per kind used by the declarations, in order of first use
func (b *builder) buildSymbolizers(declarations []declaration) ([]symbolizer.Symbolizer, errorsx.Error) {
	sorted := make([]declaration, len(declarations))
	copy(sorted, declarations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	byKind := make(map[symbolizer.Kind]*pendingSymbolizer)
	var kinds []symbolizer.Kind

	for _, d := range sorted {
		kind, rest, ok := kindOfProperty(d.Property)
		if !ok {
			return nil, errorsx.Wrap(symbolizer.ErrUnknownProperty, "property", d.Property)
		}

		pending, ok := byKind[kind]
		if !ok {
			sym, err := symbolizer.New(kind)
			if err != nil {
				return nil, err
			}
			pending = &pendingSymbolizer{sym: sym}
			if kind == symbolizer.KindText || kind == symbolizer.KindShield {
				pending.placements = symbolizer.DefaultTextPlacements()
			}
			byKind[kind] = pending
			kinds = append(kinds, kind)
		}

		value, err := b.sheet.resolveVariables(d.Value, 0)
		if err != nil {
			return nil, errorsx.Wrap(err, "property", d.Property)
		}
		value = unquote(value)

		if field, ok := placementFields[rest]; ok && pending.placements != nil {
			err = pending.placements.SetField(field, value)
			if err != nil {
				return nil, errorsx.Wrap(err, "property", d.Property)
			}
			continue
		}

		name, err := symbolizerPropertyName(kind, d.Property, rest)
		if err != nil {
			return nil, err
		}
		err = symbolizer.SetFromString(pending.sym, name, value)
		if err != nil {
			return nil, errorsx.Wrap(err, "property", d.Property)
		}
	}

	var symbolizers []symbolizer.Symbolizer
	for _, kind := range kinds {
		pending := byKind[kind]
		if pending.placements != nil {
			err := symbolizer.SetProperty(pending.sym, symbolizer.KeyTextPlacements, pending.placements)
			if err != nil {
				return nil, err
			}
		}
		symbolizers = append(symbolizers, pending.sym)
	}
	return symbolizers, nil
}
