package symbolizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindLinePattern
	KindPolygon
	KindPolygonPattern
	KindRaster
	KindShield
	KindText
	KindBuilding
	KindMarkers
	KindGroup
	KindDebug
	KindDot
)

var kindNames = []string{
	"point", "line", "line-pattern", "polygon", "polygon-pattern", "raster", "shield", "text", "building",
	"markers", "group", "debug", "dot",
}

var kindTypeNames = []string{
	"PointSymbolizer", "LineSymbolizer", "LinePatternSymbolizer", "PolygonSymbolizer",
	"PolygonPatternSymbolizer", "RasterSymbolizer", "ShieldSymbolizer", "TextSymbolizer", "BuildingSymbolizer",
	"MarkersSymbolizer", "GroupSymbolizer", "DebugSymbolizer", "DotSymbolizer",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// TypeName is the name used in style markup, e.g. "LineSymbolizer"
func (k Kind) TypeName() string {
	if int(k) < 0 || int(k) >= len(kindTypeNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindTypeNames[k]
}

// ParseKind accepts the short name ("line", "line-pattern") or the type name ("LineSymbolizer")
func ParseKind(name string) (Kind, errorsx.Error) {
	normalized := normalizeName(name)
	for i := range kindNames {
		if kindNames[i] == normalized || strings.EqualFold(kindTypeNames[i], name) {
			return Kind(i), nil
		}
	}
	return 0, errorsx.Wrap(ErrUnknownKind, "kind", name)
}

func AllKinds() []Kind {
	var kinds []Kind
	for i := range kindNames {
		kinds = append(kinds, Kind(i))
	}
	return kinds
}

// SymbolizerBase owns the property bag. It is embedded in every symbolizer kind.
type SymbolizerBase struct {
	properties map[Key]Value
}

// Get returns the raw stored value of a key
func (b *SymbolizerBase) Get(key Key) (Value, bool) {
	val, ok := b.properties[key]
	return val, ok
}

// Put stores a raw value, replacing any previous value
func (b *SymbolizerBase) Put(key Key, val Value) {
	if b.properties == nil {
		b.properties = make(map[Key]Value)
	}
	b.properties[key] = val
}

func (b *SymbolizerBase) Remove(key Key) {
	delete(b.properties, key)
}

// PropertyKeys lists the keys set on this instance, sorted by key id
func (b *SymbolizerBase) PropertyKeys() []Key {
	keys := make([]Key, 0, len(b.properties))
	for key := range b.properties {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func (b *SymbolizerBase) Len() int {
	return len(b.properties)
}

func (b *SymbolizerBase) cloneBase() SymbolizerBase {
	clone := SymbolizerBase{properties: make(map[Key]Value, len(b.properties))}
	for key, val := range b.properties {
		clone.properties[key] = cloneValue(val)
	}
	return clone
}

// Symbolizer is one of the concrete symbolizer kinds below. The set of kinds is closed.
type Symbolizer interface {
	Kind() Kind
	symbolizerBase() *SymbolizerBase
}

type PointSymbolizer struct{ SymbolizerBase }
type LineSymbolizer struct{ SymbolizerBase }
type LinePatternSymbolizer struct{ SymbolizerBase }
type PolygonSymbolizer struct{ SymbolizerBase }
type PolygonPatternSymbolizer struct{ SymbolizerBase }
type RasterSymbolizer struct{ SymbolizerBase }
type ShieldSymbolizer struct{ SymbolizerBase }
type TextSymbolizer struct{ SymbolizerBase }
type BuildingSymbolizer struct{ SymbolizerBase }
type MarkersSymbolizer struct{ SymbolizerBase }
type GroupSymbolizer struct{ SymbolizerBase }
type DebugSymbolizer struct{ SymbolizerBase }
type DotSymbolizer struct{ SymbolizerBase }

func (*PointSymbolizer) Kind() Kind          { return KindPoint }
func (*LineSymbolizer) Kind() Kind           { return KindLine }
func (*LinePatternSymbolizer) Kind() Kind    { return KindLinePattern }
func (*PolygonSymbolizer) Kind() Kind        { return KindPolygon }
func (*PolygonPatternSymbolizer) Kind() Kind { return KindPolygonPattern }
func (*RasterSymbolizer) Kind() Kind         { return KindRaster }
func (*ShieldSymbolizer) Kind() Kind         { return KindShield }
func (*TextSymbolizer) Kind() Kind           { return KindText }
func (*BuildingSymbolizer) Kind() Kind       { return KindBuilding }
func (*MarkersSymbolizer) Kind() Kind        { return KindMarkers }
func (*GroupSymbolizer) Kind() Kind          { return KindGroup }
func (*DebugSymbolizer) Kind() Kind          { return KindDebug }
func (*DotSymbolizer) Kind() Kind            { return KindDot }

func (b *SymbolizerBase) symbolizerBase() *SymbolizerBase { return b }

// baseOf visits the active alternative and returns its bag owner
func baseOf(sym Symbolizer) *SymbolizerBase {
	switch s := sym.(type) {
	case *PointSymbolizer:
		return &s.SymbolizerBase
	case *LineSymbolizer:
		return &s.SymbolizerBase
	case *LinePatternSymbolizer:
		return &s.SymbolizerBase
	case *PolygonSymbolizer:
		return &s.SymbolizerBase
	case *PolygonPatternSymbolizer:
		return &s.SymbolizerBase
	case *RasterSymbolizer:
		return &s.SymbolizerBase
	case *ShieldSymbolizer:
		return &s.SymbolizerBase
	case *TextSymbolizer:
		return &s.SymbolizerBase
	case *BuildingSymbolizer:
		return &s.SymbolizerBase
	case *MarkersSymbolizer:
		return &s.SymbolizerBase
	case *GroupSymbolizer:
		return &s.SymbolizerBase
	case *DebugSymbolizer:
		return &s.SymbolizerBase
	case *DotSymbolizer:
		return &s.SymbolizerBase
	}
	panic(fmt.Sprintf("symbolizer: unexpected symbolizer type %T", sym))
}

// New constructs a symbolizer of the given kind with its defaults
func New(kind Kind) (Symbolizer, errorsx.Error) {
	switch kind {
	case KindPoint:
		return NewPointSymbolizer(), nil
	case KindLine:
		return NewLineSymbolizer(), nil
	case KindLinePattern:
		return NewLinePatternSymbolizer(), nil
	case KindPolygon:
		return NewPolygonSymbolizer(), nil
	case KindPolygonPattern:
		return NewPolygonPatternSymbolizer(), nil
	case KindRaster:
		return NewRasterSymbolizer(), nil
	case KindShield:
		return NewShieldSymbolizer(), nil
	case KindText:
		return NewTextSymbolizer(), nil
	case KindBuilding:
		return NewBuildingSymbolizer(), nil
	case KindMarkers:
		return NewMarkersSymbolizer(), nil
	case KindGroup:
		return NewGroupSymbolizer(), nil
	case KindDebug:
		return NewDebugSymbolizer(), nil
	case KindDot:
		return NewDotSymbolizer(), nil
	}
	return nil, errorsx.Wrap(ErrUnknownKind, "kind", int(kind))
}

// newEmpty constructs a symbolizer with an empty bag
func newEmpty(kind Kind) Symbolizer {
	switch kind {
	case KindPoint:
		return &PointSymbolizer{}
	case KindLine:
		return &LineSymbolizer{}
	case KindLinePattern:
		return &LinePatternSymbolizer{}
	case KindPolygon:
		return &PolygonSymbolizer{}
	case KindPolygonPattern:
		return &PolygonPatternSymbolizer{}
	case KindRaster:
		return &RasterSymbolizer{}
	case KindShield:
		return &ShieldSymbolizer{}
	case KindText:
		return &TextSymbolizer{}
	case KindBuilding:
		return &BuildingSymbolizer{}
	case KindMarkers:
		return &MarkersSymbolizer{}
	case KindGroup:
		return &GroupSymbolizer{}
	case KindDebug:
		return &DebugSymbolizer{}
	case KindDot:
		return &DotSymbolizer{}
	}
	panic(fmt.Sprintf("symbolizer: unexpected kind %d", kind))
}

// NewEmpty constructs a symbolizer of the given kind without defaults. Loaders use it so that a stored style
// comes back with exactly the properties it was saved with.
func NewEmpty(kind Kind) (Symbolizer, errorsx.Error) {
	if int(kind) < 0 || int(kind) >= len(kindNames) {
		return nil, errorsx.Wrap(ErrUnknownKind, "kind", int(kind))
	}
	return newEmpty(kind), nil
}

// Type returns the type name of the active alternative, e.g. "LineSymbolizer"
func Type(sym Symbolizer) string {
	return sym.Kind().TypeName()
}

// Clone deep-copies a symbolizer. The copy owns its own bag.
func Clone(sym Symbolizer) Symbolizer {
	clone := newEmpty(sym.Kind())
	*baseOf(clone) = baseOf(sym).cloneBase()
	return clone
}

// Equal compares two symbolizers by kind and bag contents
func Equal(a, b Symbolizer) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	aBase, bBase := baseOf(a), baseOf(b)
	if aBase.Len() != bBase.Len() {
		return false
	}

	for key, aVal := range aBase.properties {
		bVal, ok := bBase.properties[key]
		if !ok {
			return false
		}
		if !valuesEqual(aVal, bVal) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	return string(canonicalBytes(a)) == string(canonicalBytes(b))
}
