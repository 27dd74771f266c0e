// Package stylexml reads and writes styles in the rendering library's XML style format:
//
//	<Map background-color="#f2efe9">
//		<Style name="roads">
//			<Rule name="primary">
//				<MaxScaleDenominator>500000</MaxScaleDenominator>
//				<Filter>[highway] = 'primary'</Filter>
//				<LineSymbolizer stroke="#ffd4a5" stroke-width="2.5"/>
//			</Rule>
//		</Style>
//	</Map>
//
// Symbolizer attributes are property names. Text and shield symbolizers take their label settings as attributes
// (face-name, size, fill, halo-fill, halo-radius) and the label expression as element text.
//
// Properties holding an expression where a literal is expected are listed in a "deferred" attribute, so that
// e.g. file="[icon]" with deferred="file" is read back as an expression, not as a path:
//
//	<MarkersSymbolizer file="[icon]" width="[size] * 2" deferred="file width"/>
package stylexml

import (
	"encoding/xml"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

var ErrMarkup = errors.New("StyleMarkupError")

const deferredAttr = "deferred"

type xmlMap struct {
	XMLName         xml.Name   `xml:"Map"`
	BackgroundColor string     `xml:"background-color,attr,omitempty"`
	Styles          []xmlStyle `xml:"Style"`
}

type xmlStyle struct {
	Name       string    `xml:"name,attr"`
	FilterMode string    `xml:"filter-mode,attr,omitempty"`
	CompOp     string    `xml:"comp-op,attr,omitempty"`
	Opacity    string    `xml:"opacity,attr,omitempty"`
	Rules      []xmlRule `xml:"Rule"`
}

type xmlRule struct {
	Name        string          `xml:"name,attr,omitempty"`
	MinScale    string          `xml:"MinScaleDenominator,omitempty"`
	MaxScale    string          `xml:"MaxScaleDenominator,omitempty"`
	Filter      string          `xml:"Filter,omitempty"`
	ElseFilter  *struct{}       `xml:"ElseFilter"`
	AlsoFilter  *struct{}       `xml:"AlsoFilter"`
	Symbolizers []xmlSymbolizer `xml:",any"`
}

type xmlSymbolizer struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

// ReadFile reads a style file. The map ID is the file name without its extension.
func ReadFile(path string) (*styling.Map, errorsx.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}
	defer f.Close()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, readErr := Read(f, id)
	if readErr != nil {
		return nil, errorsx.Wrap(readErr, "path", path)
	}
	return m, nil
}

func Read(r io.Reader, id string) (*styling.Map, errorsx.Error) {
	var doc xmlMap
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrMarkup, "reason", err.Error())
	}

	m := styling.NewMap(id)
	if doc.BackgroundColor != "" {
		background, err := stylecolor.Parse(doc.BackgroundColor)
		if err != nil {
			return nil, errorsx.Wrap(err, "element", "Map")
		}
		m.Background = background
	}

	for _, xs := range doc.Styles {
		style, err := readStyle(xs)
		if err != nil {
			return nil, err
		}
		err = m.AddStyle(style)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func readStyle(xs xmlStyle) (*styling.FeatureTypeStyle, errorsx.Error) {
	style := styling.NewFeatureTypeStyle(xs.Name)

	var err errorsx.Error
	style.FilterMode, err = styling.ParseFilterMode(xs.FilterMode)
	if err != nil {
		return nil, errorsx.Wrap(err, "style", xs.Name)
	}

	if xs.CompOp != "" {
		compOp, err := symbolizer.ParseCompositeOp(xs.CompOp)
		if err != nil {
			return nil, errorsx.Wrap(err, "style", xs.Name)
		}
		style.CompOp = &compOp
	}

	if xs.Opacity != "" {
		style.Opacity, err = parseNumber(xs.Opacity, "opacity")
		if err != nil {
			return nil, errorsx.Wrap(err, "style", xs.Name)
		}
	}

	for _, xr := range xs.Rules {
		rule, err := readRule(xr)
		if err != nil {
			return nil, errorsx.Wrap(err, "style", xs.Name)
		}
		style.Rules = append(style.Rules, rule)
	}

	return style, nil
}

func readRule(xr xmlRule) (*styling.Rule, errorsx.Error) {
	rule := styling.NewRule(xr.Name)
	rule.ElseFilter = xr.ElseFilter != nil
	rule.AlsoFilter = xr.AlsoFilter != nil

	var err errorsx.Error
	if xr.MinScale != "" {
		rule.MinScale, err = parseNumber(xr.MinScale, "MinScaleDenominator")
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", xr.Name)
		}
	}
	if xr.MaxScale != "" {
		rule.MaxScale, err = parseNumber(xr.MaxScale, "MaxScaleDenominator")
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", xr.Name)
		}
	}

	if strings.TrimSpace(xr.Filter) != "" {
		rule.Filter, err = styleexpr.Parse(xr.Filter)
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", xr.Name)
		}
	}

	for _, xsym := range xr.Symbolizers {
		sym, err := readSymbolizer(xsym)
		if err != nil {
			return nil, errorsx.Wrap(err, "rule", xr.Name)
		}
		rule.Symbolizers = append(rule.Symbolizers, sym)
	}

	return rule, nil
}

func hasPlacements(kind symbolizer.Kind) bool {
	return kind == symbolizer.KindText || kind == symbolizer.KindShield
}

func isPlacementField(name string) bool {
	for _, field := range symbolizer.PlacementFieldNames {
		if field == name && field != "format" {
			return true
		}
	}
	return false
}

func readSymbolizer(xsym xmlSymbolizer) (symbolizer.Symbolizer, errorsx.Error) {
	element := xsym.XMLName.Local
	if !strings.HasSuffix(element, "Symbolizer") {
		return nil, errorsx.Wrap(ErrMarkup, "reason", "unexpected element", "element", element)
	}

	kind, err := symbolizer.ParseKind(element)
	if err != nil {
		return nil, err
	}
	sym, err := symbolizer.NewEmpty(kind)
	if err != nil {
		return nil, err
	}

	deferredKeys := make(map[symbolizer.Key]bool)
	for _, attr := range xsym.Attrs {
		if attr.Name.Local != deferredAttr {
			continue
		}
		for _, name := range strings.Fields(attr.Value) {
			key, err := symbolizer.LookupByName(name)
			if err != nil {
				return nil, errorsx.Wrap(err, "element", element, "attribute", deferredAttr)
			}
			deferredKeys[key] = true
		}
	}

	var placements *symbolizer.TextPlacements
	if hasPlacements(kind) {
		placements = symbolizer.DefaultTextPlacements()
	}

	for _, attr := range xsym.Attrs {
		name := attr.Name.Local
		if name == deferredAttr {
			continue
		}
		if placements != nil && isPlacementField(name) {
			err = placements.SetField(name, attr.Value)
			if err != nil {
				return nil, errorsx.Wrap(err, "element", element, "attribute", name)
			}
			continue
		}

		key, err := symbolizer.LookupByName(name)
		if err != nil {
			return nil, errorsx.Wrap(err, "element", element, "attribute", name)
		}
		if deferredKeys[key] {
			err = symbolizer.SetDeferredFromString(sym, name, attr.Value)
			if key == symbolizer.KeyTextPlacements {
				placements = nil
			}
		} else {
			err = symbolizer.SetFromString(sym, name, attr.Value)
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "element", element, "attribute", name)
		}
	}

	if placements != nil {
		text := strings.TrimSpace(xsym.Text)
		if text != "" {
			err = placements.SetField("format", text)
			if err != nil {
				return nil, errorsx.Wrap(err, "element", element)
			}
		}
		err = symbolizer.SetProperty(sym, symbolizer.KeyTextPlacements, placements)
		if err != nil {
			return nil, errorsx.Wrap(err, "element", element)
		}
	}

	return sym, nil
}

func parseNumber(text, name string) (float64, errorsx.Error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, errorsx.Wrap(ErrMarkup, "reason", "expected a number", "element", name, "value", text)
	}
	return f, nil
}

// Write writes the map as an XML document
func Write(w io.Writer, m *styling.Map) errorsx.Error {
	doc := xmlMap{
		BackgroundColor: m.Background.ToHexString(),
	}

	for _, style := range m.Styles {
		xs, err := writeStyle(style)
		if err != nil {
			return errorsx.Wrap(err, "map", m.ID)
		}
		doc.Styles = append(doc.Styles, xs)
	}

	_, err := io.WriteString(w, xml.Header)
	if err != nil {
		return errorsx.Wrap(err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "\t")
	err = encoder.Encode(doc)
	if err != nil {
		return errorsx.Wrap(err)
	}

	_, err = io.WriteString(w, "\n")
	if err != nil {
		return errorsx.Wrap(err)
	}
	return nil
}

func writeStyle(style *styling.FeatureTypeStyle) (xmlStyle, errorsx.Error) {
	xs := xmlStyle{
		Name: style.Name,
	}
	if style.FilterMode != styling.FilterModeAll {
		xs.FilterMode = style.FilterMode.String()
	}
	if style.CompOp != nil {
		xs.CompOp = style.CompOp.String()
	}
	if style.Opacity != 1 {
		xs.Opacity = formatNumber(style.Opacity)
	}

	for _, rule := range style.Rules {
		xr := xmlRule{
			Name: rule.Name,
		}
		if rule.MinScale > 0 {
			xr.MinScale = formatNumber(rule.MinScale)
		}
		if !math.IsInf(rule.MaxScale, 1) {
			xr.MaxScale = formatNumber(rule.MaxScale)
		}
		if rule.Filter != nil {
			xr.Filter = rule.Filter.String()
		}
		if rule.ElseFilter {
			xr.ElseFilter = &struct{}{}
		}
		if rule.AlsoFilter {
			xr.AlsoFilter = &struct{}{}
		}

		for _, sym := range rule.Symbolizers {
			xsym, err := writeSymbolizer(sym)
			if err != nil {
				return xmlStyle{}, errorsx.Wrap(err, "style", style.Name, "rule", rule.Name)
			}
			xr.Symbolizers = append(xr.Symbolizers, xsym)
		}
		xs.Rules = append(xs.Rules, xr)
	}

	return xs, nil
}

func writeSymbolizer(sym symbolizer.Symbolizer) (xmlSymbolizer, errorsx.Error) {
	xsym := xmlSymbolizer{
		XMLName: xml.Name{Local: symbolizer.Type(sym)},
	}

	for _, name := range symbolizer.Keys(sym) {
		key, err := symbolizer.LookupByName(name)
		if err != nil {
			return xmlSymbolizer{}, err
		}

		if key == symbolizer.KeyTextPlacements && !symbolizer.IsDeferred(sym, key) {
			external, err := symbolizer.GetProperty(sym, key)
			if err != nil {
				return xmlSymbolizer{}, err
			}
			placements := external.(*symbolizer.TextPlacements)
			for _, field := range symbolizer.PlacementFieldNames {
				text, ok := placements.Field(field)
				if !ok {
					continue
				}
				if field == "format" {
					xsym.Text = text
					continue
				}
				xsym.Attrs = append(xsym.Attrs, xml.Attr{Name: xml.Name{Local: field}, Value: text})
			}
			continue
		}

		text, err := symbolizer.FormatProperty(sym, key)
		if err != nil {
			return xmlSymbolizer{}, err
		}
		xsym.Attrs = append(xsym.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: text})
	}

	deferred := symbolizer.DeferredPropertyNames(sym)
	if len(deferred) != 0 {
		xsym.Attrs = append(xsym.Attrs, xml.Attr{Name: xml.Name{Local: deferredAttr}, Value: strings.Join(deferred, " ")})
	}

	return xsym, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
