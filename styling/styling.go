package styling

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

const BUILTIN_STYLEID = "__ownmap_builtin"

var (
	ErrDuplicateStyle = errors.New("DuplicateStyleError")
	ErrStyleNotFound  = errors.New("StyleNotFoundError")
)

type ZoomLevel float64

const (
	MinZoomLevel ZoomLevel = 0
	MaxZoomLevel ZoomLevel = 30
)

// scale denominator of zoom level 0 in web mercator, at 0.28mm per pixel
const zoomZeroScaleDenominator = 559082264.028

func ZoomLevelToScaleDenominator(zoomLevel ZoomLevel) float64 {
	return zoomZeroScaleDenominator / math.Pow(2, float64(zoomLevel))
}

func ScaleDenominatorToZoomLevel(scaleDenominator float64) ZoomLevel {
	return ZoomLevel(math.Log2(zoomZeroScaleDenominator / scaleDenominator))
}

// Rule draws its symbolizers for the features that pass its filter, within its scale range
type Rule struct {
	Name string
	// Filter is nil for rules that apply to every feature
	Filter     *styleexpr.Expression
	ElseFilter bool
	AlsoFilter bool
	MinScale   float64
	MaxScale   float64

	Symbolizers []symbolizer.Symbolizer
}

func NewRule(name string) *Rule {
	return &Rule{
		Name:     name,
		MaxScale: math.Inf(1),
	}
}

// Append adds a copy of sym. Later changes to sym do not affect the rule.
func (r *Rule) Append(sym symbolizer.Symbolizer) {
	r.Symbolizers = append(r.Symbolizers, symbolizer.Clone(sym))
}

// Active reports whether the rule applies at the given scale denominator
func (r *Rule) Active(scaleDenominator float64) bool {
	const tolerance = 1e-6
	return scaleDenominator >= r.MinScale-tolerance && scaleDenominator < r.MaxScale+tolerance
}

func (r *Rule) Matches(feature styleexpr.Feature) (bool, errorsx.Error) {
	if r.Filter == nil {
		return true, nil
	}
	matches, err := r.Filter.EvaluateBool(feature)
	if err != nil {
		return false, errorsx.Wrap(err, "rule", r.Name)
	}
	return matches, nil
}

type FilterMode int

const (
	// FilterModeAll applies every matching rule
	FilterModeAll FilterMode = iota
	// FilterModeFirst stops at the first matching rule
	FilterModeFirst
)

func (m FilterMode) String() string {
	if m == FilterModeFirst {
		return "first"
	}
	return "all"
}

func ParseFilterMode(text string) (FilterMode, errorsx.Error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "all":
		return FilterModeAll, nil
	case "first":
		return FilterModeFirst, nil
	}
	return 0, errorsx.Errorf("unknown filter mode: %q", text)
}

type FeatureTypeStyle struct {
	Name       string
	FilterMode FilterMode
	// CompOp is nil when the style is composited normally
	CompOp  *symbolizer.CompositeOp
	Opacity float64
	Rules   []*Rule
}

func NewFeatureTypeStyle(name string) *FeatureTypeStyle {
	return &FeatureTypeStyle{
		Name:    name,
		Opacity: 1,
	}
}

// MatchingRules returns the rules to draw for a feature. Regular rules come first, in order. Else rules are added
// when no regular rule matched, also rules when at least one did.
func (s *FeatureTypeStyle) MatchingRules(feature styleexpr.Feature, scaleDenominator float64) ([]*Rule, errorsx.Error) {
	var matched, elseRules, alsoRules []*Rule

	for _, rule := range s.Rules {
		if !rule.Active(scaleDenominator) {
			continue
		}

		switch {
		case rule.ElseFilter:
			elseRules = append(elseRules, rule)
		case rule.AlsoFilter:
			alsoRules = append(alsoRules, rule)
		default:
			if s.FilterMode == FilterModeFirst && len(matched) > 0 {
				continue
			}
			ok, err := rule.Matches(feature)
			if err != nil {
				return nil, errorsx.Wrap(err, "style", s.Name)
			}
			if ok {
				matched = append(matched, rule)
			}
		}
	}

	if len(matched) == 0 {
		return elseRules, nil
	}
	return append(matched, alsoRules...), nil
}

// Map is a complete style: a background and the feature type styles drawn in order
type Map struct {
	ID         string
	Background stylecolor.Color
	Styles     []*FeatureTypeStyle
}

func NewMap(id string) *Map {
	return &Map{
		ID:         id,
		Background: stylecolor.White,
	}
}

func (m *Map) GetStyleID() string {
	return m.ID
}

func (m *Map) AddStyle(style *FeatureTypeStyle) errorsx.Error {
	if m.Style(style.Name) != nil {
		return errorsx.Wrap(ErrDuplicateStyle, "map", m.ID, "style", style.Name)
	}
	m.Styles = append(m.Styles, style)
	return nil
}

func (m *Map) Style(name string) *FeatureTypeStyle {
	for _, style := range m.Styles {
		if style.Name == name {
			return style
		}
	}
	return nil
}

// Symbolizers returns, in drawing order, the symbolizers that apply to a feature at a zoom level
func (m *Map) Symbolizers(feature styleexpr.Feature, zoomLevel ZoomLevel) ([]symbolizer.Symbolizer, errorsx.Error) {
	scaleDenominator := ZoomLevelToScaleDenominator(zoomLevel)

	var syms []symbolizer.Symbolizer
	for _, style := range m.Styles {
		rules, err := style.MatchingRules(feature, scaleDenominator)
		if err != nil {
			return nil, errorsx.Wrap(err, "map", m.ID)
		}
		for _, rule := range rules {
			syms = append(syms, rule.Symbolizers...)
		}
	}
	return syms, nil
}

// UniqueSymbolizers lists the distinct symbolizers of a map. Symbolizers are grouped by structural hash and
// compared with symbolizer.Equal within a group, so identical symbolizers in different rules are listed once.
func (m *Map) UniqueSymbolizers() []symbolizer.Symbolizer {
	byHash := make(map[uint64][]symbolizer.Symbolizer)
	var unique []symbolizer.Symbolizer

	for _, style := range m.Styles {
		for _, rule := range style.Rules {
			for _, sym := range rule.Symbolizers {
				hash := symbolizer.StructuralHash(sym)
				if containsEqual(byHash[hash], sym) {
					continue
				}
				byHash[hash] = append(byHash[hash], sym)
				unique = append(unique, sym)
			}
		}
	}
	return unique
}

func containsEqual(syms []symbolizer.Symbolizer, sym symbolizer.Symbolizer) bool {
	for _, candidate := range syms {
		if symbolizer.Equal(candidate, sym) {
			return true
		}
	}
	return false
}

type StyleSet struct {
	stylesMap      map[string]*Map // map[Style ID]Style
	defaultStyleID string
}

func NewStyleSet(styles []*Map, defaultStyleID string) (*StyleSet, errorsx.Error) {
	styleSet := &StyleSet{
		stylesMap:      make(map[string]*Map),
		defaultStyleID: defaultStyleID,
	}

	defaultIDFound := false

	for _, style := range styles {
		styleID := style.GetStyleID()
		_, ok := styleSet.stylesMap[styleID]
		if ok {
			return nil, errorsx.Wrap(ErrDuplicateStyle, "styleID", styleID)
		}

		styleSet.stylesMap[styleID] = style

		if defaultStyleID == styleID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Wrap(ErrStyleNotFound, "defaultStyleID", defaultStyleID)
	}

	return styleSet, nil
}

func (s *StyleSet) GetStyleByID(id string) *Map {
	return s.stylesMap[id]
}

func (s *StyleSet) GetDefaultStyle() *Map {
	return s.stylesMap[s.defaultStyleID]
}

// GetAllStyleIDs returns the IDs sorted alphabetically
func (s *StyleSet) GetAllStyleIDs() []string {
	var styleIDs []string

	for id := range s.stylesMap {
		styleIDs = append(styleIDs, id)
	}
	sort.Strings(styleIDs)

	return styleIDs
}
