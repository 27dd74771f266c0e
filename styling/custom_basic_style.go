package styling

import (
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
)

var (
	forestColor      = stylecolor.New(172, 200, 160)
	residentialColor = stylecolor.New(223, 223, 223)
	railwayColor     = stylecolor.New(190, 190, 190)
	minorRoadColor   = stylecolor.New(0xbc, 0xac, 0xa5)
	pathColor        = stylecolor.New(0, 0xff, 0)
)

type highwayStyle struct {
	types     []string
	color     stylecolor.Color
	dasharray string
}

var highwayStyles = []highwayStyle{
	{[]string{"motorway"}, stylecolor.New(0xf3, 0x8d, 0x9e), ""},
	{[]string{"trunk"}, stylecolor.New(0xff, 0xae, 0x9b), ""},
	{[]string{"primary", "primary_link"}, stylecolor.New(0xff, 0xd4, 0xa5), ""},
	{[]string{"secondary"}, stylecolor.New(0xf6, 0xf9, 0xbf), ""},
	{[]string{"tertiary"}, stylecolor.New(0xf3, 0x8d, 0x9e), ""},
	{[]string{"unclassified", "residential", "service", "track"}, minorRoadColor, ""},
	{[]string{"footway", "path", "steps"}, pathColor, "1,2,3"},
	{[]string{"bridleway", "cycleway"}, pathColor, "20,5"},
}

// NewBuiltinMap is the style used when no other style is configured. Layers are drawn in order: landuse, railways,
// highways and then place labels.
func NewBuiltinMap() *Map {
	m := NewMap(BUILTIN_STYLEID)

	landuse := NewFeatureTypeStyle("landuse")
	landuse.Rules = append(landuse.Rules,
		polygonRule("forest", "[natural] = 'wood' or [landuse] = 'forest'", forestColor),
		polygonRule("residential", "[landuse] = 'residential'", residentialColor),
	)

	railways := NewFeatureTypeStyle("railways")
	railway := NewRule("railway")
	railway.Filter = styleexpr.MustParse("[railway] != null")
	railLine := symbolizer.NewLineSymbolizer()
	railLine.SetStroke(railwayColor)
	railLine.SetStrokeWidth(3)
	railway.Append(railLine)
	railways.Rules = append(railways.Rules, railway)

	highways := NewFeatureTypeStyle("highways")
	highways.FilterMode = FilterModeFirst
	for _, hs := range highwayStyles {
		rule := NewRule("highway-" + hs.types[0])
		rule.Filter = anyValue("highway", hs.types)

		line := symbolizer.NewLineSymbolizer()
		line.SetStroke(hs.color)
		if hs.dasharray != "" {
			err := line.SetStrokeDashArray(hs.dasharray)
			if err != nil {
				panic(err.Error())
			}
		}
		rule.Append(line)
		highways.Rules = append(highways.Rules, rule)
	}

	places := NewFeatureTypeStyle("places")
	place := NewRule("place")
	place.Filter = styleexpr.MustParse("[place] != null and [name] != null")
	label := symbolizer.NewTextSymbolizer()
	placements := symbolizer.DefaultTextPlacements()
	placements.TextSize = 16
	placements.Format = styleexpr.NewAttribute("name")
	label.SetPlacements(placements)
	place.Append(label)
	places.Rules = append(places.Rules, place)

	m.Styles = []*FeatureTypeStyle{landuse, railways, highways, places}
	return m
}

func polygonRule(name, filter string, fill stylecolor.Color) *Rule {
	rule := NewRule(name)
	rule.Filter = styleexpr.MustParse(filter)

	polygon := symbolizer.NewPolygonSymbolizer()
	polygon.SetFill(fill)
	rule.Append(polygon)
	return rule
}

// anyValue builds [key] = 'a' or [key] = 'b' ...
func anyValue(key string, values []string) *styleexpr.Expression {
	var expr *styleexpr.Expression
	for _, value := range values {
		eq := styleexpr.Combine(
			styleexpr.BinaryOperatorEqual,
			styleexpr.NewAttribute(key),
			styleexpr.NewLiteral(styleexpr.StringOperand(value)),
		)
		if expr == nil {
			expr = eq
			continue
		}
		expr = styleexpr.Combine(styleexpr.BinaryOperatorOr, expr, eq)
	}
	return expr
}
