package symbolizer

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

// baseKeys are exposed by every kind
var baseKeys = []Key{
	KeyCompOp, KeyClip, KeySmooth, KeySmoothAlgorithm, KeySimplifyTolerance, KeySimplifyAlgorithm, KeyGeometryTransform,
}

var kindKeys = map[Kind][]Key{
	KindPoint: {
		KeyFile, KeyOpacity, KeyAllowOverlap, KeyIgnorePlacement, KeyPointPlacement, KeyImageTransform,
		KeyFill, KeyWidth, KeyHeight,
	},
	KindLine: {
		KeyStroke, KeyStrokeWidth, KeyStrokeOpacity, KeyStrokeGamma, KeyStrokeGammaMethod, KeyLineRasterizer,
		KeyStrokeLinecap, KeyStrokeLinejoin, KeyStrokeDasharray, KeyStrokeDashoffset, KeyStrokeMiterlimit,
		KeyOffset,
	},
	KindLinePattern: {
		KeyFile, KeyOpacity, KeyOffset, KeyImageTransform, KeyPatternAlignment,
	},
	KindPolygon: {
		KeyFill, KeyFillOpacity, KeyGamma, KeyGammaMethod,
	},
	KindPolygonPattern: {
		KeyFile, KeyOpacity, KeyGamma, KeyGammaMethod, KeyPatternAlignment, KeyImageTransform,
	},
	KindRaster: {
		KeyOpacity, KeyMeshSize, KeyScaling, KeyFilterFactor, KeyPremultiplied, KeyColorizer,
	},
	KindShield: {
		KeyTextPlacements, KeyFile, KeyShieldDx, KeyShieldDy, KeyUnlockImage, KeyImageTransform, KeyOpacity,
		KeyOffset, KeyAllowOverlap, KeyHaloRasterizer, KeyLabelPlacement,
	},
	KindText: {
		KeyTextPlacements, KeyHaloCompOp, KeyHaloRasterizer, KeyHaloTransform, KeyLabelPlacement,
		KeyTextTransform, KeyHorizontalAlignment, KeyVerticalAlignment, KeyJustifyAlignment, KeyUpright,
		KeyDirection, KeyFontFeatureSettings, KeyAllowOverlap, KeyAvoidEdges, KeyOffset, KeyLargestBoxOnly,
		KeyMinimumPathLength,
	},
	KindBuilding: {
		KeyFill, KeyFillOpacity, KeyHeight,
	},
	KindMarkers: {
		KeyFile, KeyOpacity, KeyFill, KeyFillOpacity, KeyStroke, KeyStrokeWidth, KeyStrokeOpacity, KeyWidth,
		KeyHeight, KeySpacing, KeyMaxError, KeyAllowOverlap, KeyAvoidEdges, KeyIgnorePlacement,
		KeyMarkersPlacement, KeyMarkersMultiPolicy, KeyImageTransform, KeyOffset,
	},
	KindGroup: {
		KeyNumColumns, KeyStartColumn, KeyRepeatKey, KeyLabelPlacement, KeyAllowOverlap, KeyAvoidEdges,
		KeyLargestBoxOnly, KeyMinimumPathLength, KeyGroupProperties,
	},
	KindDebug: {
		KeyMode,
	},
	KindDot: {
		KeyFill, KeyOpacity, KeyWidth, KeyHeight,
	},
}

// Properties lists the keys a kind exposes as named properties: the kind's own keys followed by the keys shared
// by every kind
func Properties(kind Kind) []Key {
	InitRegistry()
	keys := append([]Key(nil), kindKeys[kind]...)
	return append(keys, baseKeys...)
}

// mustSet is for defaults, whose values are known to be valid
func mustSet(sym Symbolizer, key Key, value interface{}) {
	err := SetProperty(sym, key, value)
	if err != nil {
		panic(err.Error())
	}
}

func NewPointSymbolizer() *PointSymbolizer {
	sym := &PointSymbolizer{}
	// without a file, a point is drawn as a small square
	mustSet(sym, KeyFill, stylecolor.Black)
	mustSet(sym, KeyWidth, 4.0)
	mustSet(sym, KeyHeight, 4.0)
	return sym
}

func NewLineSymbolizer() *LineSymbolizer {
	sym := &LineSymbolizer{}
	mustSet(sym, KeyStroke, stylecolor.Black)
	mustSet(sym, KeyStrokeWidth, 1.0)
	return sym
}

func NewLinePatternSymbolizer() *LinePatternSymbolizer {
	return &LinePatternSymbolizer{}
}

func NewPolygonSymbolizer() *PolygonSymbolizer {
	sym := &PolygonSymbolizer{}
	mustSet(sym, KeyFill, stylecolor.New(128, 128, 128))
	return sym
}

func NewPolygonPatternSymbolizer() *PolygonPatternSymbolizer {
	return &PolygonPatternSymbolizer{}
}

func NewRasterSymbolizer() *RasterSymbolizer {
	return &RasterSymbolizer{}
}

func NewShieldSymbolizer() *ShieldSymbolizer {
	sym := &ShieldSymbolizer{}
	mustSet(sym, KeyTextPlacements, DefaultTextPlacements())
	return sym
}

func NewTextSymbolizer() *TextSymbolizer {
	sym := &TextSymbolizer{}
	mustSet(sym, KeyTextPlacements, DefaultTextPlacements())
	return sym
}

func NewBuildingSymbolizer() *BuildingSymbolizer {
	sym := &BuildingSymbolizer{}
	mustSet(sym, KeyFill, stylecolor.New(128, 128, 128))
	return sym
}

func NewMarkersSymbolizer() *MarkersSymbolizer {
	sym := &MarkersSymbolizer{}
	mustSet(sym, KeyFill, stylecolor.New(0, 0, 0xff))
	mustSet(sym, KeyWidth, 10.0)
	mustSet(sym, KeyHeight, 10.0)
	return sym
}

func NewGroupSymbolizer() *GroupSymbolizer {
	return &GroupSymbolizer{}
}

func NewDebugSymbolizer() *DebugSymbolizer {
	sym := &DebugSymbolizer{}
	mustSet(sym, KeyMode, DebugSymbolizerModeCollision)
	return sym
}

func NewDotSymbolizer() *DotSymbolizer {
	sym := &DotSymbolizer{}
	mustSet(sym, KeyFill, stylecolor.New(128, 128, 128))
	mustSet(sym, KeyWidth, 1.0)
	mustSet(sym, KeyHeight, 1.0)
	return sym
}

// typed accessors shared by every kind

func (b *SymbolizerBase) CompOp() (Slot[CompositeOp], errorsx.Error) {
	return getSlot[CompositeOp](b, KeyCompOp, baseOwner)
}

// SetCompOp rejects values outside the CompositeOp literals, as SetProperty does
func (b *SymbolizerBase) SetCompOp(op CompositeOp) errorsx.Error {
	return setProperty(b, KeyCompOp, op, false, baseOwner)
}

func (b *SymbolizerBase) Clip() (Slot[bool], errorsx.Error) {
	return getSlot[bool](b, KeyClip, baseOwner)
}

func (b *SymbolizerBase) SetClip(clip bool) {
	b.Put(KeyClip, BoolValue(clip))
}

func (b *SymbolizerBase) Smooth() (Slot[float64], errorsx.Error) {
	return getSlot[float64](b, KeySmooth, baseOwner)
}

func (b *SymbolizerBase) SetSmooth(smooth float64) {
	b.Put(KeySmooth, DoubleValue(smooth))
}

func (b *SymbolizerBase) SimplifyTolerance() (Slot[float64], errorsx.Error) {
	return getSlot[float64](b, KeySimplifyTolerance, baseOwner)
}

func (b *SymbolizerBase) SetSimplifyTolerance(tolerance float64) {
	b.Put(KeySimplifyTolerance, DoubleValue(tolerance))
}

func (b *SymbolizerBase) GeometryTransform() (string, errorsx.Error) {
	return getString(b, KeyGeometryTransform, baseOwner)
}

func (b *SymbolizerBase) SetGeometryTransform(transform string) errorsx.Error {
	return setProperty(b, KeyGeometryTransform, transform, false, baseOwner)
}

// the owner name used in errors from accessors called on the embedded base
const baseOwner = "symbolizer"

func getString(b *SymbolizerBase, key Key, owner string) (string, errorsx.Error) {
	external, err := getProperty(b, key, owner)
	if err != nil {
		return "", err
	}
	if expr, ok := external.(*styleexpr.Expression); ok {
		return expr.String(), nil
	}
	s, ok := external.(string)
	if !ok {
		return "", errorsx.Wrap(ErrTypeMismatch, "key", key.String())
	}
	return s, nil
}
