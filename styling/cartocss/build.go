package cartocss

import (
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

type pendingRule struct {
	rule  *styling.Rule
	depth int
	order int
}

type builder struct {
	sheet      *Stylesheet
	m          *styling.Map
	rules      map[string][]pendingRule
	styleNames []string
}

// Build turns the parsed stylesheet into a map. Each layer and attachment becomes a style evaluated in "first"
// mode, with more specific rules ahead of less specific ones.
func (s *Stylesheet) Build(id string) (*styling.Map, errorsx.Error) {
	b := &builder{
		sheet: s,
		m:     styling.NewMap(id),
		rules: make(map[string][]pendingRule),
	}

	root := []selector{{Zoom: fullZoomRange}}
	for _, blk := range s.Blocks {
		err := b.walk(blk, root, nil, 0)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range b.styleNames {
		pending := b.rules[name]
		sort.SliceStable(pending, func(i, j int) bool {
			if pending[i].depth != pending[j].depth {
				return pending[i].depth > pending[j].depth
			}
			return pending[i].order > pending[j].order
		})

		style := styling.NewFeatureTypeStyle(name)
		style.FilterMode = styling.FilterModeFirst
		for _, p := range pending {
			style.Rules = append(style.Rules, p.rule)
		}
		err := b.m.AddStyle(style)
		if err != nil {
			return nil, err
		}
	}

	return b.m, nil
}

func (b *builder) walk(blk *block, parents []selector, inherited []declaration, depth int) errorsx.Error {
	if blk.IsMap {
		return b.applyMapBlock(blk)
	}

	var selectors []selector
	for _, parent := range parents {
		for _, sel := range blk.Selectors {
			selectors = append(selectors, parent.combine(sel))
		}
	}

	declarations := mergeDeclarations(inherited, blk.Declarations)

	if len(blk.Declarations) > 0 {
		for _, sel := range selectors {
			if sel.Zoom.isEmpty() {
				continue
			}
			rule, err := b.buildRule(sel, declarations)
			if err != nil {
				return err
			}
			b.addRule(sel.styleName(), pendingRule{rule, depth, blk.Declarations[0].Order})
		}
	}

	for _, child := range blk.Children {
		err := b.walk(child, selectors, declarations, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addRule(styleName string, p pendingRule) {
	if _, ok := b.rules[styleName]; !ok {
		b.styleNames = append(b.styleNames, styleName)
	}
	b.rules[styleName] = append(b.rules[styleName], p)
}

// mergeDeclarations gives the parent's declarations, overridden by the child's of the same property
func mergeDeclarations(parent, child []declaration) []declaration {
	var merged []declaration
	for _, d := range parent {
		overridden := false
		for _, c := range child {
			if c.Property == d.Property {
				overridden = true
				break
			}
		}
		if !overridden {
			merged = append(merged, d)
		}
	}
	return append(merged, child...)
}

func (b *builder) applyMapBlock(blk *block) errorsx.Error {
	for _, d := range blk.Declarations {
		if d.Property != "background-color" {
			continue
		}
		value, err := b.sheet.resolveVariables(d.Value, 0)
		if err != nil {
			return err
		}
		c, err := stylecolor.Parse(unquote(value))
		if err != nil {
			return errorsx.Wrap(err, "property", d.Property)
		}
		b.m.Background = c
	}
	return nil
}

func (b *builder) buildRule(sel selector, declarations []declaration) (*styling.Rule, errorsx.Error) {
	filterText := sel.filterText()

	rule := styling.NewRule(filterText)
	rule.MinScale, rule.MaxScale = sel.Zoom.scaleDenominators()

	if filterText != "" {
		filter, err := styleexpr.Parse(filterText)
		if err != nil {
			return nil, errorsx.Wrap(err, "selector", sel.styleName())
		}
		rule.Filter = filter
	}

	symbolizers, err := b.buildSymbolizers(declarations)
	if err != nil {
		return nil, errorsx.Wrap(err, "selector", sel.styleName(), "filter", filterText)
	}
	for _, sym := range symbolizers {
		rule.Append(sym)
	}
	return rule, nil
}
