package swatchrenderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinSize = 8
	MaxSize = 512
)

var ErrInvalidSize = errors.New("InvalidSizeError")

// sampleLabel is drawn when a text symbolizer has no format, or the format evaluates to nothing
const sampleLabel = "Abc"

type SwatchRenderer struct {
	font *truetype.Font
}

func NewSwatchRenderer(font *truetype.Font) *SwatchRenderer {
	return &SwatchRenderer{
		font,
	}
}

// Render draws a size x size legend swatch for a symbolizer. Deferred properties are resolved against feature,
// which may be nil.
func (sr *SwatchRenderer) Render(ctx context.Context, sym symbolizer.Symbolizer, size int, feature styleexpr.Feature) (image.Image, errorsx.Error) {
	if size < MinSize || size > MaxSize {
		return nil, errorsx.Wrap(ErrInvalidSize, "size", size, "min", MinSize, "max", MaxSize)
	}

	if feature == nil {
		feature = styleexpr.MapFeature{}
	}

	span := startSpan(ctx, fmt.Sprintf("render %s swatch", sym.Kind()))
	defer endSpan(ctx, span)

	img := NewImageWithBackground(image.Rect(0, 0, size, size), color.White)
	s := &swatch{img, float64(size), feature}

	var err errorsx.Error
	switch sym.Kind() {
	case symbolizer.KindLine:
		err = s.drawLine(sym)
	case symbolizer.KindPolygon:
		err = s.drawPolygon(sym)
	case symbolizer.KindBuilding:
		err = s.drawBuilding(sym)
	case symbolizer.KindPoint, symbolizer.KindMarkers, symbolizer.KindDot:
		err = s.drawMarker(sym)
	case symbolizer.KindText, symbolizer.KindShield:
		err = s.drawLabel(sym, sr.font)
	case symbolizer.KindRaster:
		err = s.drawRaster(sym)
	case symbolizer.KindDebug:
		err = s.drawDebug(sym)
	case symbolizer.KindLinePattern, symbolizer.KindPolygonPattern:
		err = s.drawHatching(sym)
	case symbolizer.KindGroup:
		err = s.drawFrame(ctx, sr, sym)
	default:
		return nil, errorsx.Wrap(symbolizer.ErrUnknownKind, "kind", sym.Kind().String())
	}
	if err != nil {
		return nil, errorsx.Wrap(err, "kind", sym.Kind().String())
	}

	return img, nil
}

type swatch struct {
	img     *image.RGBA
	size    float64
	feature styleexpr.Feature
}

func (s *swatch) padding() float64 {
	return math.Max(1, math.Round(s.size/8))
}

func (s *swatch) color(sym symbolizer.Symbolizer, key symbolizer.Key, fallback stylecolor.Color) (stylecolor.Color, errorsx.Error) {
	val, err := symbolizer.Resolve(sym, key, s.feature)
	if err != nil {
		if errorsx.Cause(err) == symbolizer.ErrPropertyNotSet {
			return fallback, nil
		}
		return stylecolor.Color{}, err
	}

	c, ok := val.(stylecolor.Color)
	if !ok {
		return stylecolor.Color{}, errorsx.Wrap(symbolizer.ErrTypeMismatch, "key", key.String())
	}
	return c, nil
}

func (s *swatch) double(sym symbolizer.Symbolizer, key symbolizer.Key, fallback float64) (float64, errorsx.Error) {
	return symbolizer.ResolveDouble(sym, key, s.feature, fallback)
}

// enum resolves an enumeration property. The result is the typed enum value, or fallback when unset.
func (s *swatch) enum(sym symbolizer.Symbolizer, key symbolizer.Key, fallback interface{}) (interface{}, errorsx.Error) {
	val, err := symbolizer.Resolve(sym, key, s.feature)
	if err != nil {
		if errorsx.Cause(err) == symbolizer.ErrPropertyNotSet {
			return fallback, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *swatch) drawLine(sym symbolizer.Symbolizer) errorsx.Error {
	stroke, err := s.color(sym, symbolizer.KeyStroke, stylecolor.Black)
	if err != nil {
		return err
	}
	width, err := s.double(sym, symbolizer.KeyStrokeWidth, 1)
	if err != nil {
		return err
	}
	opacity, err := s.double(sym, symbolizer.KeyStrokeOpacity, 1)
	if err != nil {
		return err
	}
	lineCap, err := s.enum(sym, symbolizer.KeyStrokeLinecap, symbolizer.LineCapButt)
	if err != nil {
		return err
	}
	lineJoin, err := s.enum(sym, symbolizer.KeyStrokeLinejoin, symbolizer.LineJoinMiter)
	if err != nil {
		return err
	}
	dashes, err := s.dashArray(sym)
	if err != nil {
		return err
	}
	dashOffset, err := s.double(sym, symbolizer.KeyStrokeDashoffset, 0)
	if err != nil {
		return err
	}

	pad := s.padding()
	mid := s.size / 2

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetStrokeColor(withOpacity(stroke, opacity))
	gc.SetLineWidth(math.Min(width, s.size/2))
	gc.SetLineCap(toDraw2DLineCap(lineCap))
	gc.SetLineJoin(toDraw2DLineJoin(lineJoin))
	if len(dashes) != 0 {
		gc.SetLineDash(dashes, dashOffset)
	}

	gc.BeginPath()
	gc.MoveTo(pad, mid)
	gc.LineTo(s.size-pad, mid)
	gc.Stroke()

	return nil
}

func (s *swatch) dashArray(sym symbolizer.Symbolizer) ([]float64, errorsx.Error) {
	val, err := symbolizer.Resolve(sym, symbolizer.KeyStrokeDasharray, s.feature)
	if err != nil {
		if errorsx.Cause(err) == symbolizer.ErrPropertyNotSet {
			return nil, nil
		}
		return nil, err
	}

	text, ok := val.(string)
	if !ok {
		return nil, errorsx.Wrap(symbolizer.ErrTypeMismatch, "key", symbolizer.KeyStrokeDasharray.String())
	}

	dashes, err := symbolizer.ParseDashArray(text)
	if err != nil {
		return nil, err
	}
	return []float64(dashes), nil
}

func (s *swatch) drawPolygon(sym symbolizer.Symbolizer) errorsx.Error {
	fill, err := s.color(sym, symbolizer.KeyFill, stylecolor.New(128, 128, 128))
	if err != nil {
		return err
	}
	opacity, err := s.double(sym, symbolizer.KeyFillOpacity, 1)
	if err != nil {
		return err
	}

	pad := s.padding()

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetFillColor(withOpacity(fill, opacity))
	gc.BeginPath()
	draw2dkit.Rectangle(gc, pad, pad, s.size-pad, s.size-pad)
	gc.Fill()

	return nil
}

// drawBuilding draws the roof in the fill colour, with a darker wall below it whose depth follows the height
func (s *swatch) drawBuilding(sym symbolizer.Symbolizer) errorsx.Error {
	fill, err := s.color(sym, symbolizer.KeyFill, stylecolor.New(128, 128, 128))
	if err != nil {
		return err
	}
	opacity, err := s.double(sym, symbolizer.KeyFillOpacity, 1)
	if err != nil {
		return err
	}
	height, err := s.double(sym, symbolizer.KeyHeight, 0)
	if err != nil {
		return err
	}

	pad := s.padding()
	wallDepth := math.Max(1, math.Min(height, s.size/4))

	gc := draw2dimg.NewGraphicContext(s.img)

	gc.SetFillColor(withOpacity(darken(fill, 0.7), opacity))
	gc.BeginPath()
	draw2dkit.Rectangle(gc, pad, s.size-pad-wallDepth, s.size-pad, s.size-pad)
	gc.Fill()

	gc.SetFillColor(withOpacity(fill, opacity))
	gc.BeginPath()
	draw2dkit.Rectangle(gc, pad, pad, s.size-pad, s.size-pad-wallDepth)
	gc.Fill()

	return nil
}

func (s *swatch) drawMarker(sym symbolizer.Symbolizer) errorsx.Error {
	fill, err := s.color(sym, symbolizer.KeyFill, stylecolor.Black)
	if err != nil {
		return err
	}
	width, err := s.double(sym, symbolizer.KeyWidth, 4)
	if err != nil {
		return err
	}
	height, err := s.double(sym, symbolizer.KeyHeight, width)
	if err != nil {
		return err
	}
	opacity, err := s.double(sym, symbolizer.KeyOpacity, 1)
	if err != nil {
		return err
	}

	fillOpacity := 1.0
	var stroke *stylecolor.Color
	var strokeWidth float64
	if sym.Kind() == symbolizer.KindMarkers {
		fillOpacity, err = s.double(sym, symbolizer.KeyFillOpacity, 1)
		if err != nil {
			return err
		}
		strokeColor, err := s.color(sym, symbolizer.KeyStroke, stylecolor.Transparent)
		if err != nil {
			return err
		}
		strokeWidth, err = s.double(sym, symbolizer.KeyStrokeWidth, 0.5)
		if err != nil {
			return err
		}
		if strokeColor.A != 0 {
			stroke = &strokeColor
		}
	}

	radius := math.Max(width, height) / 2
	radius = math.Max(1, math.Min(radius, s.size/2-s.padding()))
	mid := s.size / 2

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetFillColor(withOpacity(fill, opacity*fillOpacity))
	gc.BeginPath()
	draw2dkit.Circle(gc, mid, mid, radius)
	if stroke == nil {
		gc.Fill()
		return nil
	}

	gc.SetStrokeColor(withOpacity(*stroke, opacity))
	gc.SetLineWidth(strokeWidth)
	gc.FillStroke()

	return nil
}

func (s *swatch) drawLabel(sym symbolizer.Symbolizer, font *truetype.Font) errorsx.Error {
	val, err := symbolizer.Resolve(sym, symbolizer.KeyTextPlacements, s.feature)
	if err != nil && errorsx.Cause(err) != symbolizer.ErrPropertyNotSet {
		return err
	}
	placements, _ := val.(*symbolizer.TextPlacements)
	if placements == nil {
		placements = symbolizer.DefaultTextPlacements()
	}

	label, err := s.labelText(sym, placements)
	if err != nil {
		return err
	}

	pad := s.padding()
	fontSize := math.Max(1, math.Min(placements.TextSize, s.size-2*pad))
	x := pad
	y := s.size/2 + fontSize/3

	if sym.Kind() == symbolizer.KindShield {
		dx, err := s.double(sym, symbolizer.KeyShieldDx, 0)
		if err != nil {
			return err
		}
		dy, err := s.double(sym, symbolizer.KeyShieldDy, 0)
		if err != nil {
			return err
		}

		gc := draw2dimg.NewGraphicContext(s.img)
		gc.SetFillColor(placements.HaloFill)
		gc.SetStrokeColor(placements.Fill)
		gc.SetLineWidth(1)
		gc.BeginPath()
		draw2dkit.Rectangle(gc, pad/2+dx, pad/2+dy, s.size-pad/2+dx, s.size-pad/2+dy)
		gc.FillStroke()

		x += dx
		y += dy
	}

	fc := freetype.NewContext()
	fc.SetDPI(72)
	fc.SetFont(font)
	fc.SetFontSize(fontSize)
	fc.SetClip(s.img.Bounds())
	fc.SetDst(s.img)

	if placements.HaloRadius > 0 {
		fc.SetSrc(image.NewUniform(placements.HaloFill))
		r := int(math.Ceil(placements.HaloRadius))
		for _, offset := range haloOffsets(r) {
			_, drawErr := fc.DrawString(label, freetype.Pt(int(x)+offset.X, int(y)+offset.Y))
			if drawErr != nil {
				return errorsx.Wrap(drawErr)
			}
		}
	}

	fc.SetSrc(image.NewUniform(placements.Fill))
	_, drawErr := fc.DrawString(label, freetype.Pt(int(x), int(y)))
	if drawErr != nil {
		return errorsx.Wrap(drawErr)
	}

	return nil
}

func (s *swatch) labelText(sym symbolizer.Symbolizer, placements *symbolizer.TextPlacements) (string, errorsx.Error) {
	label := sampleLabel
	if placements.Format != nil {
		op, err := placements.Format.Evaluate(s.feature)
		if err != nil {
			return "", err
		}
		if op.Value() != nil {
			text := fmt.Sprint(op.Value())
			if strings.TrimSpace(text) != "" {
				label = text
			}
		}
	}

	if sym.Kind() != symbolizer.KindText {
		return label, nil
	}

	transform, err := s.enum(sym, symbolizer.KeyTextTransform, symbolizer.TextTransformNone)
	if err != nil {
		return "", err
	}
	return applyTextTransform(label, transform), nil
}

func applyTextTransform(label string, transform interface{}) string {
	switch transform {
	case symbolizer.TextTransformUppercase:
		return cases.Upper(language.Und).String(label)
	case symbolizer.TextTransformLowercase:
		return cases.Lower(language.Und).String(label)
	case symbolizer.TextTransformCapitalize:
		return cases.Title(language.Und).String(label)
	}
	return label
}

func haloOffsets(radius int) []image.Point {
	var offsets []image.Point
	for dy := -radius; dy <= radius; dy += radius {
		for dx := -radius; dx <= radius; dx += radius {
			if dx == 0 && dy == 0 {
				continue
			}
			offsets = append(offsets, image.Pt(dx, dy))
		}
	}
	return offsets
}

// drawRaster draws the colorizer's colours over the range of its stop values, left to right. Without a
// colorizer the raster is shown as a checkerboard.
func (s *swatch) drawRaster(sym symbolizer.Symbolizer) errorsx.Error {
	val, err := symbolizer.Resolve(sym, symbolizer.KeyColorizer, s.feature)
	if err != nil {
		if errorsx.Cause(err) == symbolizer.ErrPropertyNotSet {
			return s.drawChecker(sym)
		}
		return err
	}
	colorizer, ok := val.(*symbolizer.RasterColorizer)
	if !ok {
		return errorsx.Wrap(symbolizer.ErrTypeMismatch, "key", symbolizer.KeyColorizer.String())
	}

	opacity, err := s.double(sym, symbolizer.KeyOpacity, 1)
	if err != nil {
		return err
	}

	low, high := 0.0, 0.0
	if stops := colorizer.Stops(); len(stops) != 0 {
		low, high = stops[0].Value, stops[len(stops)-1].Value
	}

	columns := int(s.size)
	gc := draw2dimg.NewGraphicContext(s.img)
	for x := 0; x < columns; x++ {
		value := low
		if columns > 1 {
			value = low + (high-low)*float64(x)/float64(columns-1)
		}
		gc.SetFillColor(withOpacity(colorizer.GetColor(value), opacity))
		gc.BeginPath()
		draw2dkit.Rectangle(gc, float64(x), 0, float64(x+1), s.size)
		gc.Fill()
	}

	return nil
}

func (s *swatch) drawChecker(sym symbolizer.Symbolizer) errorsx.Error {
	opacity, err := s.double(sym, symbolizer.KeyOpacity, 1)
	if err != nil {
		return err
	}

	cell := math.Max(2, s.size/8)
	dark := withOpacity(stylecolor.New(96, 96, 96), opacity)

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetFillColor(dark)
	gc.BeginPath()
	for row := 0; float64(row)*cell < s.size; row++ {
		for col := row % 2; float64(col)*cell < s.size; col += 2 {
			x := float64(col) * cell
			y := float64(row) * cell
			draw2dkit.Rectangle(gc, x, y, math.Min(x+cell, s.size), math.Min(y+cell, s.size))
		}
	}
	gc.Fill()

	return nil
}

func (s *swatch) drawDebug(sym symbolizer.Symbolizer) errorsx.Error {
	mode, err := s.enum(sym, symbolizer.KeyMode, symbolizer.DebugSymbolizerModeCollision)
	if err != nil {
		return err
	}

	pad := s.padding()
	mid := s.size / 2

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetLineWidth(2)
	gc.BeginPath()

	switch mode {
	case symbolizer.DebugSymbolizerModeVertex:
		gc.SetStrokeColor(color.RGBA{0, 0, 0xff, 0xff})
		gc.MoveTo(pad, pad)
		gc.LineTo(s.size-pad, s.size-pad)
		gc.MoveTo(s.size-pad, pad)
		gc.LineTo(pad, s.size-pad)
	case symbolizer.DebugSymbolizerModeRings:
		gc.SetStrokeColor(color.RGBA{0, 0x80, 0, 0xff})
		draw2dkit.Circle(gc, mid, mid, mid-pad)
		draw2dkit.Circle(gc, mid, mid, (mid-pad)/2)
	default:
		gc.SetStrokeColor(color.RGBA{0xff, 0, 0, 0xff})
		draw2dkit.Rectangle(gc, pad, pad, s.size-pad, s.size-pad)
		gc.MoveTo(pad, mid)
		gc.LineTo(s.size-pad, mid)
		gc.MoveTo(mid, pad)
		gc.LineTo(mid, s.size-pad)
	}
	gc.Stroke()

	return nil
}

// drawHatching stands in for pattern images, which are not loaded
func (s *swatch) drawHatching(sym symbolizer.Symbolizer) errorsx.Error {
	opacity, err := s.double(sym, symbolizer.KeyOpacity, 1)
	if err != nil {
		return err
	}

	top, bottom := 0.0, s.size
	if sym.Kind() == symbolizer.KindLinePattern {
		top, bottom = s.size/3, s.size*2/3
	}

	spacing := math.Max(3, s.size/8)

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetStrokeColor(withOpacity(stylecolor.New(64, 64, 64), opacity))
	gc.SetLineWidth(1)
	gc.BeginPath()
	for x := -s.size; x < s.size; x += spacing {
		gc.MoveTo(x, bottom)
		gc.LineTo(x+(bottom-top), top)
	}
	gc.Stroke()

	return nil
}

// drawFrame outlines the group, divided into its columns, and fills the columns with the group rules matching the
// feature
func (s *swatch) drawFrame(ctx context.Context, sr *SwatchRenderer, sym symbolizer.Symbolizer) errorsx.Error {
	columns := int64(1)
	val, err := symbolizer.Resolve(sym, symbolizer.KeyNumColumns, s.feature)
	if err != nil {
		if errorsx.Cause(err) != symbolizer.ErrPropertyNotSet {
			return err
		}
	} else if n, ok := val.(int64); ok && n > 0 {
		columns = n
	}

	pad := s.padding()
	inner := s.size - 2*pad
	columns = int64(math.Max(1, math.Min(float64(columns), inner/2)))

	gc := draw2dimg.NewGraphicContext(s.img)
	gc.SetStrokeColor(color.Black)
	gc.SetLineWidth(2)
	gc.BeginPath()
	draw2dkit.Rectangle(gc, pad, pad, s.size-pad, s.size-pad)
	for i := int64(1); i < columns; i++ {
		x := pad + inner*float64(i)/float64(columns)
		gc.MoveTo(x, pad)
		gc.LineTo(x, s.size-pad)
	}
	gc.Stroke()

	return s.drawGroupItems(ctx, sr, sym, pad, inner, columns)
}

// drawGroupItems draws the first symbolizer of each matching group rule, one per column
func (s *swatch) drawGroupItems(ctx context.Context, sr *SwatchRenderer, sym symbolizer.Symbolizer, pad, inner float64, columns int64) errorsx.Error {
	val, err := symbolizer.Resolve(sym, symbolizer.KeyGroupProperties, s.feature)
	if err != nil {
		if errorsx.Cause(err) == symbolizer.ErrPropertyNotSet {
			return nil
		}
		return err
	}
	props, ok := val.(*symbolizer.GroupProperties)
	if !ok {
		return errorsx.Wrap(symbolizer.ErrTypeMismatch, "key", symbolizer.KeyGroupProperties.String())
	}

	rules, err := props.MatchingRules(s.feature)
	if err != nil {
		return err
	}

	cellWidth := inner / float64(columns)
	// 2px clear of the frame and column lines
	itemSize := int(math.Min(cellWidth, inner)) - 4
	if itemSize < MinSize {
		return nil
	}

	column := int64(0)
	for _, rule := range rules {
		if column >= columns {
			break
		}
		if len(rule.Symbolizers) == 0 {
			continue
		}

		item, err := sr.Render(ctx, rule.Symbolizers[0], itemSize, s.feature)
		if err != nil {
			return errorsx.Wrap(err, "groupColumn", column)
		}

		x := int(pad + cellWidth*float64(column) + (cellWidth-float64(itemSize))/2)
		y := int(pad + (inner-float64(itemSize))/2)
		draw.Draw(s.img, image.Rect(x, y, x+itemSize, y+itemSize), item, image.Point{}, draw.Src)
		column++
	}

	return nil
}

func toDraw2DLineCap(lineCap interface{}) draw2d.LineCap {
	switch lineCap {
	case symbolizer.LineCapRound:
		return draw2d.RoundCap
	case symbolizer.LineCapSquare:
		return draw2d.SquareCap
	}
	return draw2d.ButtCap
}

func toDraw2DLineJoin(lineJoin interface{}) draw2d.LineJoin {
	switch lineJoin {
	case symbolizer.LineJoinRound:
		return draw2d.RoundJoin
	case symbolizer.LineJoinBevel:
		return draw2d.BevelJoin
	}
	return draw2d.MiterJoin
}

func startSpan(ctx context.Context, name string) *tracing.Span {
	if ctx.Value(tracing.TracerCtxKey) == nil || ctx.Value(tracing.TraceCtxKey) == nil {
		return nil
	}
	return tracing.StartSpan(ctx, name)
}

func endSpan(ctx context.Context, span *tracing.Span) {
	if span == nil {
		return
	}
	span.End(ctx)
}
