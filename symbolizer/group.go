package symbolizer

import (
	"encoding/json"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

// GroupLayout arranges the items of a group symbolizer
type GroupLayout interface {
	layoutType() string
}

// SimpleRowLayout puts the items side by side, ItemMargin apart
type SimpleRowLayout struct {
	ItemMargin float64
}

// PairLayout places the items in pairs. MaxDifference is the largest size difference allowed between the two
// items of a pair; a negative value means any difference.
type PairLayout struct {
	ItemMargin    float64
	MaxDifference float64
}

func (SimpleRowLayout) layoutType() string { return "simple-row" }
func (PairLayout) layoutType() string      { return "pair" }

func NewPairLayout() PairLayout {
	return PairLayout{ItemMargin: 1, MaxDifference: -1}
}

// GroupRule picks the symbolizers drawn for the items of a group that match Filter
type GroupRule struct {
	// Filter is nil for a rule that matches every item
	Filter *styleexpr.Expression
	// RepeatKey is nil unless repeated labels are thinned out
	RepeatKey   *styleexpr.Expression
	Symbolizers []Symbolizer
}

func NewGroupRule(filter *styleexpr.Expression) *GroupRule {
	return &GroupRule{Filter: filter}
}

func (r *GroupRule) Append(sym Symbolizer) {
	r.Symbolizers = append(r.Symbolizers, sym)
}

// Matches reports whether an item's attributes pass the rule's filter
func (r *GroupRule) Matches(feature styleexpr.Feature) (bool, errorsx.Error) {
	if r.Filter == nil {
		return true, nil
	}
	return r.Filter.EvaluateBool(feature)
}

// GroupProperties are the layout and rules of a group symbolizer. The text form is a JSON document:
//
//	{"layout":{"type":"pair","item-margin":1,"max-difference":-1},
//	 "rules":[{"filter":"([kind] = 'bus')","symbolizers":[{"kind":"shield","properties":{"file":"bus.svg"}}]}]}
type GroupProperties struct {
	Layout GroupLayout
	Rules  []*GroupRule
}

func NewGroupProperties() *GroupProperties {
	return &GroupProperties{
		Layout: SimpleRowLayout{},
	}
}

func (p *GroupProperties) AddRule(rule *GroupRule) {
	p.Rules = append(p.Rules, rule)
}

// MatchingRules gives the rules an item matches, in order
func (p *GroupProperties) MatchingRules(feature styleexpr.Feature) ([]*GroupRule, errorsx.Error) {
	var rules []*GroupRule
	for i, rule := range p.Rules {
		matches, err := rule.Matches(feature)
		if err != nil {
			return nil, errorsx.Wrap(err, "groupRule", i)
		}
		if matches {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func (p *GroupProperties) Clone() *GroupProperties {
	if p == nil {
		return nil
	}

	clone := &GroupProperties{Layout: p.Layout}
	for _, rule := range p.Rules {
		ruleClone := &GroupRule{Filter: rule.Filter, RepeatKey: rule.RepeatKey}
		for _, sym := range rule.Symbolizers {
			ruleClone.Symbolizers = append(ruleClone.Symbolizers, Clone(sym))
		}
		clone.Rules = append(clone.Rules, ruleClone)
	}
	return clone
}

func (p *GroupProperties) Equal(other *GroupProperties) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.String() == other.String()
}

type groupLayoutJSON struct {
	Type          string   `json:"type"`
	ItemMargin    *float64 `json:"item-margin,omitempty"`
	MaxDifference *float64 `json:"max-difference,omitempty"`
}

type groupSymbolizerJSON struct {
	Kind       string            `json:"kind"`
	Properties map[string]string `json:"properties"`
	Deferred   []string          `json:"deferred,omitempty"`
}

type groupRuleJSON struct {
	Filter      string                 `json:"filter,omitempty"`
	RepeatKey   string                 `json:"repeat-key,omitempty"`
	Symbolizers []*groupSymbolizerJSON `json:"symbolizers"`
}

type groupPropertiesJSON struct {
	Layout groupLayoutJSON  `json:"layout"`
	Rules  []*groupRuleJSON `json:"rules"`
}

func (p *GroupProperties) String() string {
	doc := groupPropertiesJSON{
		Rules: []*groupRuleJSON{},
	}

	switch layout := p.Layout.(type) {
	case PairLayout:
		itemMargin, maxDifference := layout.ItemMargin, layout.MaxDifference
		doc.Layout = groupLayoutJSON{Type: layout.layoutType(), ItemMargin: &itemMargin, MaxDifference: &maxDifference}
	case SimpleRowLayout:
		itemMargin := layout.ItemMargin
		doc.Layout = groupLayoutJSON{Type: layout.layoutType(), ItemMargin: &itemMargin}
	default:
		doc.Layout = groupLayoutJSON{Type: SimpleRowLayout{}.layoutType()}
	}

	for _, rule := range p.Rules {
		ruleDoc := &groupRuleJSON{
			Symbolizers: []*groupSymbolizerJSON{},
		}
		if rule.Filter != nil {
			ruleDoc.Filter = rule.Filter.String()
		}
		if rule.RepeatKey != nil {
			ruleDoc.RepeatKey = rule.RepeatKey.String()
		}
		for _, sym := range rule.Symbolizers {
			ruleDoc.Symbolizers = append(ruleDoc.Symbolizers, &groupSymbolizerJSON{
				Kind:       sym.Kind().String(),
				Properties: FormatProperties(sym),
				Deferred:   DeferredPropertyNames(sym),
			})
		}
		doc.Rules = append(doc.Rules, ruleDoc)
	}

	// map keys are sorted by encoding/json, so the text is canonical
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func ParseGroupProperties(text string) (*GroupProperties, errorsx.Error) {
	var doc groupPropertiesJSON
	err := json.Unmarshal([]byte(text), &doc)
	if err != nil {
		return nil, errorsx.Wrap(ErrGroupProperties, "reason", err.Error())
	}

	p := NewGroupProperties()
	switch doc.Layout.Type {
	case "", SimpleRowLayout{}.layoutType():
		layout := SimpleRowLayout{}
		if doc.Layout.ItemMargin != nil {
			layout.ItemMargin = *doc.Layout.ItemMargin
		}
		p.Layout = layout
	case PairLayout{}.layoutType():
		// unset fields keep the pair defaults
		layout := NewPairLayout()
		if doc.Layout.ItemMargin != nil {
			layout.ItemMargin = *doc.Layout.ItemMargin
		}
		if doc.Layout.MaxDifference != nil {
			layout.MaxDifference = *doc.Layout.MaxDifference
		}
		p.Layout = layout
	default:
		return nil, errorsx.Wrap(ErrGroupProperties, "reason", "unknown layout", "layout", doc.Layout.Type)
	}

	for i, ruleDoc := range doc.Rules {
		rule, err := groupRuleFromJSON(ruleDoc)
		if err != nil {
			return nil, errorsx.Wrap(err, "groupRule", i)
		}
		p.AddRule(rule)
	}

	return p, nil
}

func groupRuleFromJSON(ruleDoc *groupRuleJSON) (*GroupRule, errorsx.Error) {
	if ruleDoc == nil {
		return nil, errorsx.Wrap(ErrGroupProperties, "reason", "null rule")
	}

	var err errorsx.Error
	rule := &GroupRule{}
	if ruleDoc.Filter != "" {
		rule.Filter, err = styleexpr.Parse(ruleDoc.Filter)
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "filter")
		}
	}
	if ruleDoc.RepeatKey != "" {
		rule.RepeatKey, err = styleexpr.Parse(ruleDoc.RepeatKey)
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "repeat-key")
		}
	}

	for _, symDoc := range ruleDoc.Symbolizers {
		if symDoc == nil {
			return nil, errorsx.Wrap(ErrGroupProperties, "reason", "null symbolizer")
		}
		sym, err := groupSymbolizerFromJSON(symDoc)
		if err != nil {
			return nil, err
		}
		rule.Append(sym)
	}

	return rule, nil
}

func groupSymbolizerFromJSON(symDoc *groupSymbolizerJSON) (Symbolizer, errorsx.Error) {
	kind, err := ParseKind(symDoc.Kind)
	if err != nil {
		return nil, err
	}
	sym, err := NewEmpty(kind)
	if err != nil {
		return nil, err
	}

	deferred := make(map[string]bool)
	for _, name := range symDoc.Deferred {
		deferred[name] = true
	}

	for name, text := range symDoc.Properties {
		if deferred[name] {
			err = SetDeferredFromString(sym, name, text)
		} else {
			err = SetFromString(sym, name, text)
		}
		if err != nil {
			return nil, errorsx.Wrap(err, "kind", symDoc.Kind)
		}
	}

	return sym, nil
}
