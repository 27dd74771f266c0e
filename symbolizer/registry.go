package symbolizer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
)

// Key identifies a symbolizer property
type Key int

const (
	KeyCompOp Key = iota
	KeyClip
	KeySmooth
	KeySmoothAlgorithm
	KeySimplifyTolerance
	KeySimplifyAlgorithm
	KeyGeometryTransform
	KeyOffset
	KeyOpacity
	KeyFill
	KeyFillOpacity
	KeyGamma
	KeyGammaMethod
	KeyStroke
	KeyStrokeWidth
	KeyStrokeOpacity
	KeyStrokeGamma
	KeyStrokeGammaMethod
	KeyLineRasterizer
	KeyStrokeLinecap
	KeyStrokeLinejoin
	KeyStrokeDasharray
	KeyStrokeDashoffset
	KeyStrokeMiterlimit
	KeyFile
	KeyImageTransform
	KeyAllowOverlap
	KeyIgnorePlacement
	KeyAvoidEdges
	KeyPointPlacement
	KeyWidth
	KeyHeight
	KeySpacing
	KeyMaxError
	KeyMarkersPlacement
	KeyMarkersMultiPolicy
	KeyMeshSize
	KeyScaling
	KeyFilterFactor
	KeyPremultiplied
	KeyMode
	KeyShieldDx
	KeyShieldDy
	KeyUnlockImage
	KeyTextPlacements
	KeyHaloCompOp
	KeyHaloRasterizer
	KeyHaloTransform
	KeyLabelPlacement
	KeyTextTransform
	KeyHorizontalAlignment
	KeyVerticalAlignment
	KeyJustifyAlignment
	KeyUpright
	KeyDirection
	KeyFontFeatureSettings
	KeyPatternAlignment
	KeyNumColumns
	KeyStartColumn
	KeyRepeatKey
	KeyLargestBoxOnly
	KeyMinimumPathLength
	KeyColorizer
	KeyGroupProperties

	keyCount
)

type TargetType int

const (
	TargetTypeBool TargetType = iota
	TargetTypeInteger
	TargetTypeDouble
	TargetTypeString
	TargetTypeColor
	TargetTypeExpression
	TargetTypePath
	TargetTypeTransform
	TargetTypeDashArray
	TargetTypePlacements
	TargetTypeCompOp
	TargetTypeGammaMethod
	TargetTypeLineRasterizer
	TargetTypeLineCap
	TargetTypeLineJoin
	TargetTypePointPlacement
	TargetTypeMarkerPlacement
	TargetTypeMarkerMultiPolicy
	TargetTypeDebugMode
	TargetTypeScalingMethod
	TargetTypePatternAlignment
	TargetTypeLabelPlacement
	TargetTypeVerticalAlignment
	TargetTypeHorizontalAlignment
	TargetTypeJustifyAlignment
	TargetTypeTextTransform
	TargetTypeHaloRasterizer
	TargetTypeSmoothAlgorithm
	TargetTypeSimplifyAlgorithm
	TargetTypeDirection
	TargetTypeUpright
	TargetTypeColorizer
	TargetTypeGroupProperties
)

var targetTypeNames = []string{
	"bool", "integer", "double", "string", "color", "expression", "path", "transform", "dasharray",
	"placements", "comp-op", "gamma-method", "line-rasterizer", "line-cap", "line-join", "point-placement",
	"marker-placement", "marker-multi-policy", "debug-mode", "scaling-method", "pattern-alignment",
	"label-placement", "vertical-alignment", "horizontal-alignment", "justify-alignment", "text-transform",
	"halo-rasterizer", "smooth-algorithm", "simplify-algorithm", "direction", "upright", "colorizer",
	"group-properties",
}

func (t TargetType) String() string {
	if int(t) < 0 || int(t) >= len(targetTypeNames) {
		return fmt.Sprintf("TargetType(%d)", int(t))
	}
	return targetTypeNames[t]
}

// IsEnum reports whether values of this target type are stored as enumeration wrappers
func (t TargetType) IsEnum() bool {
	_, ok := enumDescriptors[t]
	return ok
}

var enumDescriptors = map[TargetType]*enumDescriptor{
	TargetTypeCompOp:              compositeOpEnum,
	TargetTypeGammaMethod:         gammaMethodEnum,
	TargetTypeLineRasterizer:      lineRasterizerEnum,
	TargetTypeLineCap:             lineCapEnum,
	TargetTypeLineJoin:            lineJoinEnum,
	TargetTypePointPlacement:      pointPlacementEnum,
	TargetTypeMarkerPlacement:     markerPlacementEnum,
	TargetTypeMarkerMultiPolicy:   markerMultiPolicyEnum,
	TargetTypeDebugMode:           debugSymbolizerModeEnum,
	TargetTypeScalingMethod:       scalingMethodEnum,
	TargetTypePatternAlignment:    patternAlignmentEnum,
	TargetTypeLabelPlacement:      labelPlacementEnum,
	TargetTypeVerticalAlignment:   verticalAlignmentEnum,
	TargetTypeHorizontalAlignment: horizontalAlignmentEnum,
	TargetTypeJustifyAlignment:    justifyAlignmentEnum,
	TargetTypeTextTransform:       textTransformEnum,
	TargetTypeHaloRasterizer:      haloRasterizerEnum,
	TargetTypeSmoothAlgorithm:     smoothAlgorithmEnum,
	TargetTypeSimplifyAlgorithm:   simplifyAlgorithmEnum,
	TargetTypeDirection:           directionEnum,
	TargetTypeUpright:             uprightEnum,
}

// EnumConverter turns the raw integer of an enumeration wrapper into its typed enum value
type EnumConverter func(v int) interface{}

type KeyMetadata struct {
	Name       string
	TargetType TargetType
	Converter  EnumConverter
}

type keyEntry struct {
	KeyMetadata
	enum *enumDescriptor
}

var (
	registryOnce    sync.Once
	registryEntries []keyEntry
	registryByName  map[string]Key
)

// InitRegistry builds the property key registry. It runs once; every exported function in this package calls it
// before touching the registry, and calling it again is a no-op.
func InitRegistry() {
	registryOnce.Do(func() {
		registryEntries = make([]keyEntry, keyCount)
		registryByName = make(map[string]Key, keyCount)

		register(KeyCompOp, "comp-op", TargetTypeCompOp)
		register(KeyClip, "clip", TargetTypeBool)
		register(KeySmooth, "smooth", TargetTypeDouble)
		register(KeySmoothAlgorithm, "smooth-algorithm", TargetTypeSmoothAlgorithm)
		register(KeySimplifyTolerance, "simplify", TargetTypeDouble)
		register(KeySimplifyAlgorithm, "simplify-algorithm", TargetTypeSimplifyAlgorithm)
		register(KeyGeometryTransform, "geometry-transform", TargetTypeTransform)
		register(KeyOffset, "offset", TargetTypeDouble)
		register(KeyOpacity, "opacity", TargetTypeDouble)
		register(KeyFill, "fill", TargetTypeColor)
		register(KeyFillOpacity, "fill-opacity", TargetTypeDouble)
		register(KeyGamma, "gamma", TargetTypeDouble)
		register(KeyGammaMethod, "gamma-method", TargetTypeGammaMethod)
		register(KeyStroke, "stroke", TargetTypeColor)
		register(KeyStrokeWidth, "stroke-width", TargetTypeDouble)
		register(KeyStrokeOpacity, "stroke-opacity", TargetTypeDouble)
		register(KeyStrokeGamma, "stroke-gamma", TargetTypeDouble)
		register(KeyStrokeGammaMethod, "stroke-gamma-method", TargetTypeGammaMethod)
		register(KeyLineRasterizer, "line-rasterizer", TargetTypeLineRasterizer)
		register(KeyStrokeLinecap, "stroke-linecap", TargetTypeLineCap)
		register(KeyStrokeLinejoin, "stroke-linejoin", TargetTypeLineJoin)
		register(KeyStrokeDasharray, "stroke-dasharray", TargetTypeDashArray)
		register(KeyStrokeDashoffset, "stroke-dashoffset", TargetTypeDouble)
		register(KeyStrokeMiterlimit, "stroke-miterlimit", TargetTypeDouble)
		register(KeyFile, "file", TargetTypePath)
		register(KeyImageTransform, "image-transform", TargetTypeTransform)
		register(KeyAllowOverlap, "allow-overlap", TargetTypeBool)
		register(KeyIgnorePlacement, "ignore-placement", TargetTypeBool)
		register(KeyAvoidEdges, "avoid-edges", TargetTypeBool)
		register(KeyPointPlacement, "placement", TargetTypePointPlacement)
		register(KeyWidth, "width", TargetTypeDouble)
		register(KeyHeight, "height", TargetTypeDouble)
		register(KeySpacing, "spacing", TargetTypeDouble)
		register(KeyMaxError, "max-error", TargetTypeDouble)
		register(KeyMarkersPlacement, "markers-placement", TargetTypeMarkerPlacement)
		register(KeyMarkersMultiPolicy, "markers-multipolicy", TargetTypeMarkerMultiPolicy)
		register(KeyMeshSize, "mesh-size", TargetTypeInteger)
		register(KeyScaling, "scaling", TargetTypeScalingMethod)
		register(KeyFilterFactor, "filter-factor", TargetTypeDouble)
		register(KeyPremultiplied, "premultiplied", TargetTypeBool)
		register(KeyMode, "mode", TargetTypeDebugMode)
		register(KeyShieldDx, "shield-dx", TargetTypeDouble)
		register(KeyShieldDy, "shield-dy", TargetTypeDouble)
		register(KeyUnlockImage, "unlock-image", TargetTypeBool)
		register(KeyTextPlacements, "text-placements", TargetTypePlacements)
		register(KeyHaloCompOp, "halo-comp-op", TargetTypeCompOp)
		register(KeyHaloRasterizer, "halo-rasterizer", TargetTypeHaloRasterizer)
		register(KeyHaloTransform, "halo-transform", TargetTypeTransform)
		register(KeyLabelPlacement, "label-placement", TargetTypeLabelPlacement)
		register(KeyTextTransform, "text-transform", TargetTypeTextTransform)
		register(KeyHorizontalAlignment, "horizontal-alignment", TargetTypeHorizontalAlignment)
		register(KeyVerticalAlignment, "vertical-alignment", TargetTypeVerticalAlignment)
		register(KeyJustifyAlignment, "justify-alignment", TargetTypeJustifyAlignment)
		register(KeyUpright, "upright", TargetTypeUpright)
		register(KeyDirection, "direction", TargetTypeDirection)
		register(KeyFontFeatureSettings, "font-feature-settings", TargetTypeString)
		register(KeyPatternAlignment, "alignment", TargetTypePatternAlignment)
		register(KeyNumColumns, "num-columns", TargetTypeInteger)
		register(KeyStartColumn, "start-column", TargetTypeInteger)
		register(KeyRepeatKey, "repeat-key", TargetTypeExpression)
		register(KeyLargestBoxOnly, "largest-box-only", TargetTypeBool)
		register(KeyMinimumPathLength, "minimum-path-length", TargetTypeDouble)
		register(KeyColorizer, "colorizer", TargetTypeColorizer)
		register(KeyGroupProperties, "group-properties", TargetTypeGroupProperties)

		for key, entry := range registryEntries {
			if entry.Name == "" {
				panic(fmt.Sprintf("symbolizer: key %d was not registered", key))
			}
		}
	})
}

func register(key Key, name string, targetType TargetType) {
	if _, exists := registryByName[name]; exists {
		panic(fmt.Sprintf("symbolizer: duplicate property name %q", name))
	}

	entry := keyEntry{
		KeyMetadata: KeyMetadata{
			Name:       name,
			TargetType: targetType,
		},
	}
	if desc, ok := enumDescriptors[targetType]; ok {
		entry.enum = desc
		entry.Converter = desc.convert
	}

	registryEntries[key] = entry
	registryByName[name] = key
}

func entryFor(key Key) (keyEntry, bool) {
	InitRegistry()
	if key < 0 || key >= keyCount {
		return keyEntry{}, false
	}
	return registryEntries[key], true
}

// LookupByName resolves a property name such as "stroke-width". Underscores are accepted in place of dashes.
func LookupByName(name string) (Key, errorsx.Error) {
	InitRegistry()
	key, ok := registryByName[normalizeName(name)]
	if !ok {
		return 0, errorsx.Wrap(ErrUnknownProperty, "name", name)
	}
	return key, nil
}

// Metadata returns the registered name, target type and (for enum keys) converter of a key
func Metadata(key Key) (KeyMetadata, errorsx.Error) {
	entry, ok := entryFor(key)
	if !ok {
		return KeyMetadata{}, errorsx.Wrap(ErrUnknownProperty, "key", int(key))
	}
	return entry.KeyMetadata, nil
}

// AllKeys lists every registered key, sorted by id
func AllKeys() []Key {
	InitRegistry()
	keys := make([]Key, 0, keyCount)
	for key := Key(0); key < keyCount; key++ {
		keys = append(keys, key)
	}
	return keys
}

// AllPropertyNames lists every registered property name, sorted alphabetically
func AllPropertyNames() []string {
	InitRegistry()
	names := make([]string, 0, len(registryByName))
	for name := range registryByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (k Key) String() string {
	entry, ok := entryFor(k)
	if !ok {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return entry.Name
}

// EnumNames lists the literal names accepted for an enum-typed key
func EnumNames(key Key) []string {
	entry, ok := entryFor(key)
	if !ok || entry.enum == nil {
		return nil
	}
	return append([]string(nil), entry.enum.names...)
}
