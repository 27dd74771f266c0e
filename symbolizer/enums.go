package symbolizer

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

// enumDescriptor converts between the raw integer of an EnumerationWrapper and a typed enum value
type enumDescriptor struct {
	names   []string
	convert func(v int) interface{}
	extract func(v interface{}) (int, bool)
}

func newEnumDescriptor[T ~int](names []string) *enumDescriptor {
	return &enumDescriptor{
		names: names,
		convert: func(v int) interface{} {
			return T(v)
		},
		extract: func(v interface{}) (int, bool) {
			typed, ok := v.(T)
			if !ok {
				return 0, false
			}
			return int(typed), true
		},
	}
}

func (d *enumDescriptor) isValid(v int) bool {
	return v >= 0 && v < len(d.names)
}

func (d *enumDescriptor) name(v int) string {
	if !d.isValid(v) {
		return "unknown"
	}
	return d.names[v]
}

// parse accepts names case-insensitively, with either dashes or underscores
func (d *enumDescriptor) parse(text string) (int, bool) {
	normalized := normalizeName(text)
	for i, name := range d.names {
		if name == normalized {
			return i, true
		}
	}
	return 0, false
}

func normalizeName(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), "_", "-")
}

func parseEnum[T ~int](d *enumDescriptor, text string) (T, errorsx.Error) {
	v, ok := d.parse(text)
	if !ok {
		return 0, errorsx.Wrap(ErrTypeMismatch, "reason", "unknown enumeration literal", "literal", text, "allowed", strings.Join(d.names, "|"))
	}
	return T(v), nil
}

type CompositeOp int

const (
	CompositeOpClear CompositeOp = iota
	CompositeOpSrc
	CompositeOpDst
	CompositeOpSrcOver
	CompositeOpDstOver
	CompositeOpSrcIn
	CompositeOpDstIn
	CompositeOpSrcOut
	CompositeOpDstOut
	CompositeOpSrcAtop
	CompositeOpDstAtop
	CompositeOpXor
	CompositeOpPlus
	CompositeOpMinus
	CompositeOpMultiply
	CompositeOpScreen
	CompositeOpOverlay
	CompositeOpDarken
	CompositeOpLighten
	CompositeOpColorDodge
	CompositeOpColorBurn
	CompositeOpHardLight
	CompositeOpSoftLight
	CompositeOpDifference
	CompositeOpExclusion
	CompositeOpContrast
	CompositeOpInvert
	CompositeOpGrainMerge
	CompositeOpGrainExtract
	CompositeOpHue
	CompositeOpSaturation
	CompositeOpColor
	CompositeOpValue
	CompositeOpLinearDodge
	CompositeOpLinearBurn
	CompositeOpDivide
)

var compositeOpEnum = newEnumDescriptor[CompositeOp]([]string{
	"clear", "src", "dst", "src-over", "dst-over", "src-in", "dst-in", "src-out", "dst-out", "src-atop",
	"dst-atop", "xor", "plus", "minus", "multiply", "screen", "overlay", "darken", "lighten", "color-dodge",
	"color-burn", "hard-light", "soft-light", "difference", "exclusion", "contrast", "invert", "grain-merge",
	"grain-extract", "hue", "saturation", "color", "value", "linear-dodge", "linear-burn", "divide",
})

func (v CompositeOp) String() string { return compositeOpEnum.name(int(v)) }

func ParseCompositeOp(text string) (CompositeOp, errorsx.Error) {
	return parseEnum[CompositeOp](compositeOpEnum, text)
}

// AllCompositeOps lists every composite operation, in declaration order
func AllCompositeOps() []CompositeOp {
	var ops []CompositeOp
	for i := range compositeOpEnum.names {
		ops = append(ops, CompositeOp(i))
	}
	return ops
}

type GammaMethod int

const (
	GammaMethodPower GammaMethod = iota
	GammaMethodLinear
	GammaMethodNone
	GammaMethodThreshold
	GammaMethodMultiply
)

var gammaMethodEnum = newEnumDescriptor[GammaMethod]([]string{"power", "linear", "none", "threshold", "multiply"})

func (v GammaMethod) String() string { return gammaMethodEnum.name(int(v)) }

func ParseGammaMethod(text string) (GammaMethod, errorsx.Error) {
	return parseEnum[GammaMethod](gammaMethodEnum, text)
}

type LineRasterizer int

const (
	LineRasterizerFull LineRasterizer = iota
	LineRasterizerFast
)

var lineRasterizerEnum = newEnumDescriptor[LineRasterizer]([]string{"full", "fast"})

func (v LineRasterizer) String() string { return lineRasterizerEnum.name(int(v)) }

func ParseLineRasterizer(text string) (LineRasterizer, errorsx.Error) {
	return parseEnum[LineRasterizer](lineRasterizerEnum, text)
}

type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapSquare
	LineCapRound
)

var lineCapEnum = newEnumDescriptor[LineCap]([]string{"butt", "square", "round"})

func (v LineCap) String() string { return lineCapEnum.name(int(v)) }

func ParseLineCap(text string) (LineCap, errorsx.Error) {
	return parseEnum[LineCap](lineCapEnum, text)
}

type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinMiterRevert
	LineJoinRound
	LineJoinBevel
)

var lineJoinEnum = newEnumDescriptor[LineJoin]([]string{"miter", "miter-revert", "round", "bevel"})

func (v LineJoin) String() string { return lineJoinEnum.name(int(v)) }

func ParseLineJoin(text string) (LineJoin, errorsx.Error) {
	return parseEnum[LineJoin](lineJoinEnum, text)
}

type PointPlacement int

const (
	PointPlacementCentroid PointPlacement = iota
	PointPlacementInterior
)

var pointPlacementEnum = newEnumDescriptor[PointPlacement]([]string{"centroid", "interior"})

func (v PointPlacement) String() string { return pointPlacementEnum.name(int(v)) }

func ParsePointPlacement(text string) (PointPlacement, errorsx.Error) {
	return parseEnum[PointPlacement](pointPlacementEnum, text)
}

type MarkerPlacement int

const (
	MarkerPlacementPoint MarkerPlacement = iota
	MarkerPlacementInterior
	MarkerPlacementLine
	MarkerPlacementVertexFirst
	MarkerPlacementVertexLast
)

var markerPlacementEnum = newEnumDescriptor[MarkerPlacement]([]string{"point", "interior", "line", "vertex-first", "vertex-last"})

func (v MarkerPlacement) String() string { return markerPlacementEnum.name(int(v)) }

func ParseMarkerPlacement(text string) (MarkerPlacement, errorsx.Error) {
	return parseEnum[MarkerPlacement](markerPlacementEnum, text)
}

type MarkerMultiPolicy int

const (
	MarkerMultiPolicyEach MarkerMultiPolicy = iota
	MarkerMultiPolicyWhole
	MarkerMultiPolicyLargest
)

var markerMultiPolicyEnum = newEnumDescriptor[MarkerMultiPolicy]([]string{"each", "whole", "largest"})

func (v MarkerMultiPolicy) String() string { return markerMultiPolicyEnum.name(int(v)) }

func ParseMarkerMultiPolicy(text string) (MarkerMultiPolicy, errorsx.Error) {
	return parseEnum[MarkerMultiPolicy](markerMultiPolicyEnum, text)
}

type DebugSymbolizerMode int

const (
	DebugSymbolizerModeCollision DebugSymbolizerMode = iota
	DebugSymbolizerModeVertex
	DebugSymbolizerModeRings
)

var debugSymbolizerModeEnum = newEnumDescriptor[DebugSymbolizerMode]([]string{"collision", "vertex", "rings"})

func (v DebugSymbolizerMode) String() string { return debugSymbolizerModeEnum.name(int(v)) }

func ParseDebugSymbolizerMode(text string) (DebugSymbolizerMode, errorsx.Error) {
	return parseEnum[DebugSymbolizerMode](debugSymbolizerModeEnum, text)
}

type ScalingMethod int

const (
	ScalingMethodNear ScalingMethod = iota
	ScalingMethodBilinear
	ScalingMethodBicubic
	ScalingMethodSpline16
	ScalingMethodSpline36
	ScalingMethodHanning
	ScalingMethodHamming
	ScalingMethodHermite
	ScalingMethodKaiser
	ScalingMethodQuadric
	ScalingMethodCatrom
	ScalingMethodGaussian
	ScalingMethodBessel
	ScalingMethodMitchell
	ScalingMethodSinc
	ScalingMethodLanczos
	ScalingMethodBlackman
)

var scalingMethodEnum = newEnumDescriptor[ScalingMethod]([]string{
	"near", "bilinear", "bicubic", "spline16", "spline36", "hanning", "hamming", "hermite", "kaiser",
	"quadric", "catrom", "gaussian", "bessel", "mitchell", "sinc", "lanczos", "blackman",
})

func (v ScalingMethod) String() string { return scalingMethodEnum.name(int(v)) }

func ParseScalingMethod(text string) (ScalingMethod, errorsx.Error) {
	return parseEnum[ScalingMethod](scalingMethodEnum, text)
}

type PatternAlignment int

const (
	PatternAlignmentLocal PatternAlignment = iota
	PatternAlignmentGlobal
)

var patternAlignmentEnum = newEnumDescriptor[PatternAlignment]([]string{"local", "global"})

func (v PatternAlignment) String() string { return patternAlignmentEnum.name(int(v)) }

func ParsePatternAlignment(text string) (PatternAlignment, errorsx.Error) {
	return parseEnum[PatternAlignment](patternAlignmentEnum, text)
}

type LabelPlacement int

const (
	LabelPlacementLine LabelPlacement = iota
	LabelPlacementPoint
	LabelPlacementVertex
	LabelPlacementInterior
)

var labelPlacementEnum = newEnumDescriptor[LabelPlacement]([]string{"line", "point", "vertex", "interior"})

func (v LabelPlacement) String() string { return labelPlacementEnum.name(int(v)) }

func ParseLabelPlacement(text string) (LabelPlacement, errorsx.Error) {
	return parseEnum[LabelPlacement](labelPlacementEnum, text)
}

type VerticalAlignment int

const (
	VerticalAlignmentTop VerticalAlignment = iota
	VerticalAlignmentMiddle
	VerticalAlignmentBottom
	VerticalAlignmentAuto
)

var verticalAlignmentEnum = newEnumDescriptor[VerticalAlignment]([]string{"top", "middle", "bottom", "auto"})

func (v VerticalAlignment) String() string { return verticalAlignmentEnum.name(int(v)) }

func ParseVerticalAlignment(text string) (VerticalAlignment, errorsx.Error) {
	return parseEnum[VerticalAlignment](verticalAlignmentEnum, text)
}

type HorizontalAlignment int

const (
	HorizontalAlignmentLeft HorizontalAlignment = iota
	HorizontalAlignmentMiddle
	HorizontalAlignmentRight
	HorizontalAlignmentAuto
)

var horizontalAlignmentEnum = newEnumDescriptor[HorizontalAlignment]([]string{"left", "middle", "right", "auto"})

func (v HorizontalAlignment) String() string { return horizontalAlignmentEnum.name(int(v)) }

func ParseHorizontalAlignment(text string) (HorizontalAlignment, errorsx.Error) {
	return parseEnum[HorizontalAlignment](horizontalAlignmentEnum, text)
}

type JustifyAlignment int

const (
	JustifyAlignmentLeft JustifyAlignment = iota
	JustifyAlignmentMiddle
	JustifyAlignmentRight
	JustifyAlignmentAuto
)

var justifyAlignmentEnum = newEnumDescriptor[JustifyAlignment]([]string{"left", "middle", "right", "auto"})

func (v JustifyAlignment) String() string { return justifyAlignmentEnum.name(int(v)) }

func ParseJustifyAlignment(text string) (JustifyAlignment, errorsx.Error) {
	return parseEnum[JustifyAlignment](justifyAlignmentEnum, text)
}

type TextTransform int

const (
	TextTransformNone TextTransform = iota
	TextTransformUppercase
	TextTransformLowercase
	TextTransformCapitalize
)

var textTransformEnum = newEnumDescriptor[TextTransform]([]string{"none", "uppercase", "lowercase", "capitalize"})

func (v TextTransform) String() string { return textTransformEnum.name(int(v)) }

func ParseTextTransform(text string) (TextTransform, errorsx.Error) {
	return parseEnum[TextTransform](textTransformEnum, text)
}

type HaloRasterizer int

const (
	HaloRasterizerFull HaloRasterizer = iota
	HaloRasterizerFast
)

var haloRasterizerEnum = newEnumDescriptor[HaloRasterizer]([]string{"full", "fast"})

func (v HaloRasterizer) String() string { return haloRasterizerEnum.name(int(v)) }

func ParseHaloRasterizer(text string) (HaloRasterizer, errorsx.Error) {
	return parseEnum[HaloRasterizer](haloRasterizerEnum, text)
}

type SmoothAlgorithm int

const (
	SmoothAlgorithmBasic SmoothAlgorithm = iota
	SmoothAlgorithmAdaptive
)

var smoothAlgorithmEnum = newEnumDescriptor[SmoothAlgorithm]([]string{"basic", "adaptive"})

func (v SmoothAlgorithm) String() string { return smoothAlgorithmEnum.name(int(v)) }

func ParseSmoothAlgorithm(text string) (SmoothAlgorithm, errorsx.Error) {
	return parseEnum[SmoothAlgorithm](smoothAlgorithmEnum, text)
}

type SimplifyAlgorithm int

const (
	SimplifyAlgorithmRadialDistance SimplifyAlgorithm = iota
	SimplifyAlgorithmZhaoSaalfeld
	SimplifyAlgorithmVisvalingamWhyatt
	SimplifyAlgorithmDouglasPeucker
)

var simplifyAlgorithmEnum = newEnumDescriptor[SimplifyAlgorithm]([]string{"radial-distance", "zhao-saalfeld", "visvalingam-whyatt", "douglas-peucker"})

func (v SimplifyAlgorithm) String() string { return simplifyAlgorithmEnum.name(int(v)) }

func ParseSimplifyAlgorithm(text string) (SimplifyAlgorithm, errorsx.Error) {
	return parseEnum[SimplifyAlgorithm](simplifyAlgorithmEnum, text)
}

type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionLeftOnly
	DirectionRightOnly
	DirectionAuto
	DirectionAutoDown
	DirectionUp
	DirectionDown
)

var directionEnum = newEnumDescriptor[Direction]([]string{"left", "right", "left-only", "right-only", "auto", "auto-down", "up", "down"})

func (v Direction) String() string { return directionEnum.name(int(v)) }

func ParseDirection(text string) (Direction, errorsx.Error) {
	return parseEnum[Direction](directionEnum, text)
}

type Upright int

const (
	UprightAuto Upright = iota
	UprightAutoDown
	UprightLeft
	UprightRight
	UprightLeftOnly
	UprightRightOnly
)

var uprightEnum = newEnumDescriptor[Upright]([]string{"auto", "auto-down", "left", "right", "left-only", "right-only"})

func (v Upright) String() string { return uprightEnum.name(int(v)) }

func ParseUpright(text string) (Upright, errorsx.Error) {
	return parseEnum[Upright](uprightEnum, text)
}

// ColorizerMode decides how a raster colorizer fills the values between one stop and the next
type ColorizerMode int

const (
	// ColorizerModeInherit takes the colorizer's default mode
	ColorizerModeInherit ColorizerMode = iota
	ColorizerModeLinear
	ColorizerModeDiscrete
	ColorizerModeExact
)

var colorizerModeEnum = newEnumDescriptor[ColorizerMode]([]string{"inherit", "linear", "discrete", "exact"})

func (v ColorizerMode) String() string { return colorizerModeEnum.name(int(v)) }

func ParseColorizerMode(text string) (ColorizerMode, errorsx.Error) {
	return parseEnum[ColorizerMode](colorizerModeEnum, text)
}
