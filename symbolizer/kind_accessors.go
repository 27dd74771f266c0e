package symbolizer

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
)

func placementsOf(b *SymbolizerBase, owner string) (*TextPlacements, errorsx.Error) {
	external, err := getProperty(b, KeyTextPlacements, owner)
	if err != nil {
		return nil, err
	}
	p, ok := external.(*TextPlacements)
	if !ok {
		return nil, errorsx.Wrap(ErrTypeMismatch, "key", KeyTextPlacements.String())
	}
	return p, nil
}

// LineSymbolizer

func (s *LineSymbolizer) Stroke() (Slot[stylecolor.Color], errorsx.Error) {
	return getSlot[stylecolor.Color](&s.SymbolizerBase, KeyStroke, Type(s))
}

func (s *LineSymbolizer) SetStroke(c stylecolor.Color) {
	s.Put(KeyStroke, ColorValue(c))
}

func (s *LineSymbolizer) StrokeWidth() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyStrokeWidth, Type(s))
}

func (s *LineSymbolizer) SetStrokeWidth(width float64) {
	s.Put(KeyStrokeWidth, DoubleValue(width))
}

func (s *LineSymbolizer) StrokeOpacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyStrokeOpacity, Type(s))
}

func (s *LineSymbolizer) SetStrokeOpacity(opacity float64) {
	s.Put(KeyStrokeOpacity, DoubleValue(opacity))
}

func (s *LineSymbolizer) StrokeGamma() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyStrokeGamma, Type(s))
}

func (s *LineSymbolizer) SetStrokeGamma(gamma float64) {
	s.Put(KeyStrokeGamma, DoubleValue(gamma))
}

func (s *LineSymbolizer) StrokeGammaMethod() (Slot[GammaMethod], errorsx.Error) {
	return getSlot[GammaMethod](&s.SymbolizerBase, KeyStrokeGammaMethod, Type(s))
}

func (s *LineSymbolizer) SetStrokeGammaMethod(method GammaMethod) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyStrokeGammaMethod, method, false, Type(s))
}

func (s *LineSymbolizer) LineRasterizer() (Slot[LineRasterizer], errorsx.Error) {
	return getSlot[LineRasterizer](&s.SymbolizerBase, KeyLineRasterizer, Type(s))
}

func (s *LineSymbolizer) SetLineRasterizer(rasterizer LineRasterizer) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyLineRasterizer, rasterizer, false, Type(s))
}

func (s *LineSymbolizer) StrokeLinecap() (Slot[LineCap], errorsx.Error) {
	return getSlot[LineCap](&s.SymbolizerBase, KeyStrokeLinecap, Type(s))
}

func (s *LineSymbolizer) SetStrokeLinecap(lineCap LineCap) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyStrokeLinecap, lineCap, false, Type(s))
}

func (s *LineSymbolizer) StrokeLinejoin() (Slot[LineJoin], errorsx.Error) {
	return getSlot[LineJoin](&s.SymbolizerBase, KeyStrokeLinejoin, Type(s))
}

func (s *LineSymbolizer) SetStrokeLinejoin(lineJoin LineJoin) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyStrokeLinejoin, lineJoin, false, Type(s))
}

// StrokeDashArray returns the dash array as text, e.g. "4,2,1,2"
func (s *LineSymbolizer) StrokeDashArray() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyStrokeDasharray, Type(s))
}

// SetStrokeDashArray parses and stores a dash array. A parse failure leaves the previous value in place.
func (s *LineSymbolizer) SetStrokeDashArray(dashes string) errorsx.Error {
	return SetProperty(s, KeyStrokeDasharray, dashes)
}

func (s *LineSymbolizer) StrokeDashOffset() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyStrokeDashoffset, Type(s))
}

func (s *LineSymbolizer) SetStrokeDashOffset(offset float64) {
	s.Put(KeyStrokeDashoffset, DoubleValue(offset))
}

func (s *LineSymbolizer) StrokeMiterlimit() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyStrokeMiterlimit, Type(s))
}

func (s *LineSymbolizer) SetStrokeMiterlimit(limit float64) {
	s.Put(KeyStrokeMiterlimit, DoubleValue(limit))
}

func (s *LineSymbolizer) Offset() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyOffset, Type(s))
}

func (s *LineSymbolizer) SetOffset(offset float64) {
	s.Put(KeyOffset, DoubleValue(offset))
}

// PolygonSymbolizer

func (s *PolygonSymbolizer) Fill() (Slot[stylecolor.Color], errorsx.Error) {
	return getSlot[stylecolor.Color](&s.SymbolizerBase, KeyFill, Type(s))
}

func (s *PolygonSymbolizer) SetFill(c stylecolor.Color) {
	s.Put(KeyFill, ColorValue(c))
}

func (s *PolygonSymbolizer) FillOpacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyFillOpacity, Type(s))
}

func (s *PolygonSymbolizer) SetFillOpacity(opacity float64) {
	s.Put(KeyFillOpacity, DoubleValue(opacity))
}

func (s *PolygonSymbolizer) Gamma() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyGamma, Type(s))
}

func (s *PolygonSymbolizer) SetGamma(gamma float64) {
	s.Put(KeyGamma, DoubleValue(gamma))
}

func (s *PolygonSymbolizer) GammaMethod() (Slot[GammaMethod], errorsx.Error) {
	return getSlot[GammaMethod](&s.SymbolizerBase, KeyGammaMethod, Type(s))
}

func (s *PolygonSymbolizer) SetGammaMethod(method GammaMethod) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyGammaMethod, method, false, Type(s))
}

// PolygonPatternSymbolizer

func (s *PolygonPatternSymbolizer) File() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyFile, Type(s))
}

func (s *PolygonPatternSymbolizer) SetFile(path string) errorsx.Error {
	return SetProperty(s, KeyFile, path)
}

func (s *PolygonPatternSymbolizer) Alignment() (Slot[PatternAlignment], errorsx.Error) {
	return getSlot[PatternAlignment](&s.SymbolizerBase, KeyPatternAlignment, Type(s))
}

func (s *PolygonPatternSymbolizer) SetAlignment(alignment PatternAlignment) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyPatternAlignment, alignment, false, Type(s))
}

// LinePatternSymbolizer

func (s *LinePatternSymbolizer) File() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyFile, Type(s))
}

func (s *LinePatternSymbolizer) SetFile(path string) errorsx.Error {
	return SetProperty(s, KeyFile, path)
}

// PointSymbolizer

func (s *PointSymbolizer) File() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyFile, Type(s))
}

func (s *PointSymbolizer) SetFile(path string) errorsx.Error {
	return SetProperty(s, KeyFile, path)
}

func (s *PointSymbolizer) Opacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyOpacity, Type(s))
}

func (s *PointSymbolizer) SetOpacity(opacity float64) {
	s.Put(KeyOpacity, DoubleValue(opacity))
}

func (s *PointSymbolizer) AllowOverlap() (Slot[bool], errorsx.Error) {
	return getSlot[bool](&s.SymbolizerBase, KeyAllowOverlap, Type(s))
}

func (s *PointSymbolizer) SetAllowOverlap(allow bool) {
	s.Put(KeyAllowOverlap, BoolValue(allow))
}

func (s *PointSymbolizer) IgnorePlacement() (Slot[bool], errorsx.Error) {
	return getSlot[bool](&s.SymbolizerBase, KeyIgnorePlacement, Type(s))
}

func (s *PointSymbolizer) SetIgnorePlacement(ignore bool) {
	s.Put(KeyIgnorePlacement, BoolValue(ignore))
}

func (s *PointSymbolizer) Placement() (Slot[PointPlacement], errorsx.Error) {
	return getSlot[PointPlacement](&s.SymbolizerBase, KeyPointPlacement, Type(s))
}

func (s *PointSymbolizer) SetPlacement(placement PointPlacement) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyPointPlacement, placement, false, Type(s))
}

// DotSymbolizer

func (s *DotSymbolizer) Fill() (Slot[stylecolor.Color], errorsx.Error) {
	return getSlot[stylecolor.Color](&s.SymbolizerBase, KeyFill, Type(s))
}

func (s *DotSymbolizer) SetFill(c stylecolor.Color) {
	s.Put(KeyFill, ColorValue(c))
}

func (s *DotSymbolizer) Opacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyOpacity, Type(s))
}

func (s *DotSymbolizer) SetOpacity(opacity float64) {
	s.Put(KeyOpacity, DoubleValue(opacity))
}

func (s *DotSymbolizer) Width() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyWidth, Type(s))
}

func (s *DotSymbolizer) SetWidth(width float64) {
	s.Put(KeyWidth, DoubleValue(width))
}

func (s *DotSymbolizer) Height() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyHeight, Type(s))
}

func (s *DotSymbolizer) SetHeight(height float64) {
	s.Put(KeyHeight, DoubleValue(height))
}

// RasterSymbolizer

func (s *RasterSymbolizer) Opacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyOpacity, Type(s))
}

func (s *RasterSymbolizer) SetOpacity(opacity float64) {
	s.Put(KeyOpacity, DoubleValue(opacity))
}

func (s *RasterSymbolizer) MeshSize() (Slot[int64], errorsx.Error) {
	return getSlot[int64](&s.SymbolizerBase, KeyMeshSize, Type(s))
}

func (s *RasterSymbolizer) SetMeshSize(size int64) {
	s.Put(KeyMeshSize, IntegerValue(size))
}

func (s *RasterSymbolizer) Scaling() (Slot[ScalingMethod], errorsx.Error) {
	return getSlot[ScalingMethod](&s.SymbolizerBase, KeyScaling, Type(s))
}

func (s *RasterSymbolizer) SetScaling(method ScalingMethod) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyScaling, method, false, Type(s))
}

func (s *RasterSymbolizer) Premultiplied() (Slot[bool], errorsx.Error) {
	return getSlot[bool](&s.SymbolizerBase, KeyPremultiplied, Type(s))
}

func (s *RasterSymbolizer) SetPremultiplied(premultiplied bool) {
	s.Put(KeyPremultiplied, BoolValue(premultiplied))
}

// Colorizer is set when the raster holds raw values (e.g. elevations) to be coloured rather than an image
func (s *RasterSymbolizer) Colorizer() (Slot[*RasterColorizer], errorsx.Error) {
	return getSlot[*RasterColorizer](&s.SymbolizerBase, KeyColorizer, Type(s))
}

// SetColorizer stores a copy of c
func (s *RasterSymbolizer) SetColorizer(c *RasterColorizer) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyColorizer, c, false, Type(s))
}

// DebugSymbolizer

func (s *DebugSymbolizer) Mode() (Slot[DebugSymbolizerMode], errorsx.Error) {
	return getSlot[DebugSymbolizerMode](&s.SymbolizerBase, KeyMode, Type(s))
}

func (s *DebugSymbolizer) SetMode(mode DebugSymbolizerMode) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyMode, mode, false, Type(s))
}

// TextSymbolizer

// Placements returns the label settings. The returned value is owned by the symbolizer.
func (s *TextSymbolizer) Placements() (*TextPlacements, errorsx.Error) {
	return placementsOf(&s.SymbolizerBase, Type(s))
}

// SetPlacements stores a copy of p
func (s *TextSymbolizer) SetPlacements(p *TextPlacements) {
	s.Put(KeyTextPlacements, TextPlacementsValue{p.Clone()})
}

func (s *TextSymbolizer) HaloRasterizer() (Slot[HaloRasterizer], errorsx.Error) {
	return getSlot[HaloRasterizer](&s.SymbolizerBase, KeyHaloRasterizer, Type(s))
}

func (s *TextSymbolizer) SetHaloRasterizer(rasterizer HaloRasterizer) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyHaloRasterizer, rasterizer, false, Type(s))
}

func (s *TextSymbolizer) TextTransform() (Slot[TextTransform], errorsx.Error) {
	return getSlot[TextTransform](&s.SymbolizerBase, KeyTextTransform, Type(s))
}

func (s *TextSymbolizer) SetTextTransform(transform TextTransform) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyTextTransform, transform, false, Type(s))
}

func (s *TextSymbolizer) LabelPlacement() (Slot[LabelPlacement], errorsx.Error) {
	return getSlot[LabelPlacement](&s.SymbolizerBase, KeyLabelPlacement, Type(s))
}

func (s *TextSymbolizer) SetLabelPlacement(placement LabelPlacement) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyLabelPlacement, placement, false, Type(s))
}

// ShieldSymbolizer

func (s *ShieldSymbolizer) Placements() (*TextPlacements, errorsx.Error) {
	return placementsOf(&s.SymbolizerBase, Type(s))
}

func (s *ShieldSymbolizer) SetPlacements(p *TextPlacements) {
	s.Put(KeyTextPlacements, TextPlacementsValue{p.Clone()})
}

func (s *ShieldSymbolizer) File() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyFile, Type(s))
}

func (s *ShieldSymbolizer) SetFile(path string) errorsx.Error {
	return SetProperty(s, KeyFile, path)
}

func (s *ShieldSymbolizer) ShieldDx() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyShieldDx, Type(s))
}

func (s *ShieldSymbolizer) SetShieldDx(dx float64) {
	s.Put(KeyShieldDx, DoubleValue(dx))
}

func (s *ShieldSymbolizer) ShieldDy() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyShieldDy, Type(s))
}

func (s *ShieldSymbolizer) SetShieldDy(dy float64) {
	s.Put(KeyShieldDy, DoubleValue(dy))
}

func (s *ShieldSymbolizer) UnlockImage() (Slot[bool], errorsx.Error) {
	return getSlot[bool](&s.SymbolizerBase, KeyUnlockImage, Type(s))
}

func (s *ShieldSymbolizer) SetUnlockImage(unlock bool) {
	s.Put(KeyUnlockImage, BoolValue(unlock))
}

// BuildingSymbolizer

func (s *BuildingSymbolizer) Fill() (Slot[stylecolor.Color], errorsx.Error) {
	return getSlot[stylecolor.Color](&s.SymbolizerBase, KeyFill, Type(s))
}

func (s *BuildingSymbolizer) SetFill(c stylecolor.Color) {
	s.Put(KeyFill, ColorValue(c))
}

func (s *BuildingSymbolizer) FillOpacity() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyFillOpacity, Type(s))
}

func (s *BuildingSymbolizer) SetFillOpacity(opacity float64) {
	s.Put(KeyFillOpacity, DoubleValue(opacity))
}

func (s *BuildingSymbolizer) Height() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyHeight, Type(s))
}

func (s *BuildingSymbolizer) SetHeight(height float64) {
	s.Put(KeyHeight, DoubleValue(height))
}

// SetHeightExpression makes the height depend on a feature attribute, e.g. [height]
func (s *BuildingSymbolizer) SetHeightExpression(expr *styleexpr.Expression) {
	s.Put(KeyHeight, ExpressionValue{expr})
}

// MarkersSymbolizer

func (s *MarkersSymbolizer) File() (string, errorsx.Error) {
	return getString(&s.SymbolizerBase, KeyFile, Type(s))
}

func (s *MarkersSymbolizer) SetFile(path string) errorsx.Error {
	return SetProperty(s, KeyFile, path)
}

func (s *MarkersSymbolizer) Fill() (Slot[stylecolor.Color], errorsx.Error) {
	return getSlot[stylecolor.Color](&s.SymbolizerBase, KeyFill, Type(s))
}

func (s *MarkersSymbolizer) SetFill(c stylecolor.Color) {
	s.Put(KeyFill, ColorValue(c))
}

func (s *MarkersSymbolizer) Width() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyWidth, Type(s))
}

func (s *MarkersSymbolizer) SetWidth(width float64) {
	s.Put(KeyWidth, DoubleValue(width))
}

func (s *MarkersSymbolizer) Height() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeyHeight, Type(s))
}

func (s *MarkersSymbolizer) SetHeight(height float64) {
	s.Put(KeyHeight, DoubleValue(height))
}

func (s *MarkersSymbolizer) Spacing() (Slot[float64], errorsx.Error) {
	return getSlot[float64](&s.SymbolizerBase, KeySpacing, Type(s))
}

func (s *MarkersSymbolizer) SetSpacing(spacing float64) {
	s.Put(KeySpacing, DoubleValue(spacing))
}

func (s *MarkersSymbolizer) Placement() (Slot[MarkerPlacement], errorsx.Error) {
	return getSlot[MarkerPlacement](&s.SymbolizerBase, KeyMarkersPlacement, Type(s))
}

func (s *MarkersSymbolizer) SetPlacement(placement MarkerPlacement) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyMarkersPlacement, placement, false, Type(s))
}

func (s *MarkersSymbolizer) MultiPolicy() (Slot[MarkerMultiPolicy], errorsx.Error) {
	return getSlot[MarkerMultiPolicy](&s.SymbolizerBase, KeyMarkersMultiPolicy, Type(s))
}

func (s *MarkersSymbolizer) SetMultiPolicy(policy MarkerMultiPolicy) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyMarkersMultiPolicy, policy, false, Type(s))
}

// GroupSymbolizer

func (s *GroupSymbolizer) NumColumns() (Slot[int64], errorsx.Error) {
	return getSlot[int64](&s.SymbolizerBase, KeyNumColumns, Type(s))
}

func (s *GroupSymbolizer) SetNumColumns(columns int64) {
	s.Put(KeyNumColumns, IntegerValue(columns))
}

func (s *GroupSymbolizer) StartColumn() (Slot[int64], errorsx.Error) {
	return getSlot[int64](&s.SymbolizerBase, KeyStartColumn, Type(s))
}

func (s *GroupSymbolizer) SetStartColumn(column int64) {
	s.Put(KeyStartColumn, IntegerValue(column))
}

// RepeatKey is the expression whose value decides which group placements count as repeats
func (s *GroupSymbolizer) RepeatKey() (*styleexpr.Expression, errorsx.Error) {
	external, err := getProperty(&s.SymbolizerBase, KeyRepeatKey, Type(s))
	if err != nil {
		return nil, err
	}
	return external.(*styleexpr.Expression), nil
}

func (s *GroupSymbolizer) SetRepeatKey(expr *styleexpr.Expression) {
	s.Put(KeyRepeatKey, ExpressionValue{expr})
}

// GroupProperties returns the layout and rules. The returned value is owned by the symbolizer.
func (s *GroupSymbolizer) GroupProperties() (Slot[*GroupProperties], errorsx.Error) {
	return getSlot[*GroupProperties](&s.SymbolizerBase, KeyGroupProperties, Type(s))
}

// SetGroupProperties stores a copy of p
func (s *GroupSymbolizer) SetGroupProperties(p *GroupProperties) errorsx.Error {
	return setProperty(&s.SymbolizerBase, KeyGroupProperties, p, false, Type(s))
}
