package webservices

import (
	"fmt"
	"math"

	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

type symbolizerView struct {
	Kind       string            `json:"kind"`
	Type       string            `json:"type"`
	Keys       []string          `json:"keys"`
	Properties map[string]string `json:"properties"`
	// Hash is hex encoded; JSON numbers can't carry 64 bits
	Hash string `json:"hash"`
}

func newSymbolizerView(sym symbolizer.Symbolizer) *symbolizerView {
	keys := symbolizer.Keys(sym)
	if keys == nil {
		keys = []string{}
	}

	return &symbolizerView{
		Kind:       sym.Kind().String(),
		Type:       symbolizer.Type(sym),
		Keys:       keys,
		Properties: symbolizer.FormatProperties(sym),
		Hash:       fmt.Sprintf("%016x", symbolizer.StructuralHash(sym)),
	}
}

type ruleView struct {
	Name       string  `json:"name"`
	Filter     string  `json:"filter,omitempty"`
	ElseFilter bool    `json:"elseFilter"`
	AlsoFilter bool    `json:"alsoFilter"`
	MinScale   float64 `json:"minScaleDenominator"`
	// MaxScale is nil for rules without an upper bound
	MaxScale    *float64          `json:"maxScaleDenominator"`
	Symbolizers []*symbolizerView `json:"symbolizers"`
}

func newRuleView(rule *styling.Rule) *ruleView {
	view := &ruleView{
		Name:        rule.Name,
		ElseFilter:  rule.ElseFilter,
		AlsoFilter:  rule.AlsoFilter,
		MinScale:    rule.MinScale,
		Symbolizers: []*symbolizerView{},
	}
	if rule.Filter != nil {
		view.Filter = rule.Filter.String()
	}
	if !math.IsInf(rule.MaxScale, 1) {
		maxScale := rule.MaxScale
		view.MaxScale = &maxScale
	}
	for _, sym := range rule.Symbolizers {
		view.Symbolizers = append(view.Symbolizers, newSymbolizerView(sym))
	}
	return view
}

type featureTypeStyleView struct {
	Name       string      `json:"name"`
	FilterMode string      `json:"filterMode"`
	CompOp     string      `json:"compOp,omitempty"`
	Opacity    float64     `json:"opacity"`
	Rules      []*ruleView `json:"rules"`
}

func newFeatureTypeStyleView(style *styling.FeatureTypeStyle) *featureTypeStyleView {
	view := &featureTypeStyleView{
		Name:       style.Name,
		FilterMode: style.FilterMode.String(),
		Opacity:    style.Opacity,
		Rules:      []*ruleView{},
	}
	if style.CompOp != nil {
		view.CompOp = style.CompOp.String()
	}
	for _, rule := range style.Rules {
		view.Rules = append(view.Rules, newRuleView(rule))
	}
	return view
}

type mapView struct {
	ID         string                  `json:"id"`
	Background string                  `json:"background"`
	Styles     []*featureTypeStyleView `json:"styles"`
}

func newMapView(m *styling.Map) *mapView {
	view := &mapView{
		ID:         m.ID,
		Background: m.Background.ToHexString(),
		Styles:     []*featureTypeStyleView{},
	}
	for _, style := range m.Styles {
		view.Styles = append(view.Styles, newFeatureTypeStyleView(style))
	}
	return view
}
