package mapboxglstyle

import (
	"math"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
)

type zoomStop struct {
	Zoom  float64
	Value interface{}
}

// zoomFunction is a property value that depends on the zoom level
type zoomFunction struct {
	Base  float64
	Step  bool
	Stops []zoomStop
}

// parseZoomFunction recognises legacy functions ({"base": 1.4, "stops": [[10, 8], [20, 14]]}) and
// ["interpolate", ...] or ["step", ...] expressions with a ["zoom"] input. It returns nil for plain values.
func parseZoomFunction(v interface{}) (*zoomFunction, errorsx.Error) {
	switch value := v.(type) {
	case map[string]interface{}:
		return parseLegacyFunction(value)
	case []interface{}:
		if len(value) == 0 {
			return nil, nil
		}
		operator, _ := value[0].(string)
		switch operator {
		case "interpolate", "interpolate-hcl", "interpolate-lab":
			return parseInterpolate(value)
		case "step":
			return parseStep(value)
		}
	}
	return nil, nil
}

func parseLegacyFunction(value map[string]interface{}) (*zoomFunction, errorsx.Error) {
	if _, ok := value["property"]; ok {
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "data-driven functions are not supported")
	}

	rawStops, ok := value["stops"].([]interface{})
	if !ok || len(rawStops) == 0 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "function without stops")
	}

	fn := &zoomFunction{Base: 1}
	if base, ok := value["base"].(float64); ok {
		fn.Base = base
	}
	if functionType, ok := value["type"].(string); ok {
		switch functionType {
		case "interval":
			fn.Step = true
		case "exponential":
		default:
			return nil, errorsx.Wrap(ErrUnsupported, "reason", "unsupported function type", "type", functionType)
		}
	}

	for _, rawStop := range rawStops {
		stop, ok := rawStop.([]interface{})
		if !ok || len(stop) != 2 {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "a stop must be a [zoom, value] pair")
		}
		zoom, ok := stop[0].(float64)
		if !ok {
			return nil, errorsx.Wrap(ErrUnsupported, "reason", "stops must be keyed by zoom")
		}
		fn.Stops = append(fn.Stops, zoomStop{zoom, stop[1]})
	}
	return fn, fn.validate()
}

func isZoomInput(v interface{}) bool {
	input, ok := v.([]interface{})
	return ok && len(input) == 1 && input[0] == "zoom"
}

func parseInterpolate(value []interface{}) (*zoomFunction, errorsx.Error) {
	if len(value) < 5 || len(value)%2 != 1 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "interpolate needs a type, an input and stops")
	}
	if !isZoomInput(value[2]) {
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "only zoom interpolation is supported")
	}

	fn := &zoomFunction{Base: 1}
	interpolation, ok := value[1].([]interface{})
	if !ok || len(interpolation) == 0 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "bad interpolation type")
	}
	if interpolation[0] == "exponential" && len(interpolation) == 2 {
		base, ok := interpolation[1].(float64)
		if !ok {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "bad exponential base")
		}
		fn.Base = base
	}

	for i := 3; i < len(value); i += 2 {
		zoom, ok := value[i].(float64)
		if !ok {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "stop zoom must be a number")
		}
		fn.Stops = append(fn.Stops, zoomStop{zoom, value[i+1]})
	}
	return fn, fn.validate()
}

// parseStep reads ["step", ["zoom"], value0, zoom1, value1, ...]
func parseStep(value []interface{}) (*zoomFunction, errorsx.Error) {
	if len(value) < 3 || len(value)%2 != 1 {
		return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "step needs an input, a default and stops")
	}
	if !isZoomInput(value[1]) {
		return nil, errorsx.Wrap(ErrUnsupported, "reason", "only zoom steps are supported")
	}

	fn := &zoomFunction{Base: 1, Step: true}
	fn.Stops = append(fn.Stops, zoomStop{minLayerZoom, value[2]})
	for i := 3; i < len(value); i += 2 {
		zoom, ok := value[i].(float64)
		if !ok {
			return nil, errorsx.Wrap(ErrInvalidStyle, "reason", "step zoom must be a number")
		}
		fn.Stops = append(fn.Stops, zoomStop{zoom, value[i+1]})
	}
	return fn, fn.validate()
}

func (fn *zoomFunction) validate() errorsx.Error {
	isSorted := sort.SliceIsSorted(fn.Stops, func(i, j int) bool {
		return fn.Stops[i].Zoom < fn.Stops[j].Zoom
	})
	if !isSorted {
		return errorsx.Wrap(ErrInvalidStyle, "reason", "stops must be in ascending zoom order")
	}
	return nil
}

// breakpoints lists the zoom levels where the value changes. Interpolated values also change at every whole
// zoom level between the first and the last stop.
func (fn *zoomFunction) breakpoints() []float64 {
	var zooms []float64
	for _, stop := range fn.Stops {
		zooms = append(zooms, stop.Zoom)
	}
	if !fn.Step && len(fn.Stops) > 1 {
		first, last := fn.Stops[0].Zoom, fn.Stops[len(fn.Stops)-1].Zoom
		for z := math.Ceil(first); z < last; z++ {
			zooms = append(zooms, z)
		}
	}
	return zooms
}

func (fn *zoomFunction) valueAt(zoom float64) interface{} {
	if zoom <= fn.Stops[0].Zoom {
		return fn.Stops[0].Value
	}
	last := fn.Stops[len(fn.Stops)-1]
	if zoom >= last.Zoom {
		return last.Value
	}

	i := 0
	for i+1 < len(fn.Stops) && fn.Stops[i+1].Zoom <= zoom {
		i++
	}
	lower, upper := fn.Stops[i], fn.Stops[i+1]
	if fn.Step {
		return lower.Value
	}

	t := interpolationFactor(fn.Base, zoom-lower.Zoom, upper.Zoom-lower.Zoom)
	return interpolate(lower.Value, upper.Value, t)
}

func interpolationFactor(base, progress, difference float64) float64 {
	if difference == 0 {
		return 0
	}
	if base == 1 {
		return progress / difference
	}
	return (math.Pow(base, progress) - 1) / (math.Pow(base, difference) - 1)
}

// interpolate blends numbers and colours. Other values do not blend; the lower value is kept.
func interpolate(lower, upper interface{}, t float64) interface{} {
	lowerNumber, lowerIsNumber := lower.(float64)
	upperNumber, upperIsNumber := upper.(float64)
	if lowerIsNumber && upperIsNumber {
		return lowerNumber + (upperNumber-lowerNumber)*t
	}

	lowerText, lowerIsText := lower.(string)
	upperText, upperIsText := upper.(string)
	if lowerIsText && upperIsText {
		lowerColor, err := stylecolor.Parse(lowerText)
		if err != nil {
			return lower
		}
		upperColor, err := stylecolor.Parse(upperText)
		if err != nil {
			return lower
		}
		blend := func(a, b uint8) uint8 {
			return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
		}
		return stylecolor.NewRGBA(
			blend(lowerColor.R, upperColor.R),
			blend(lowerColor.G, upperColor.G),
			blend(lowerColor.B, upperColor.B),
			blend(lowerColor.A, upperColor.A),
		)
	}

	return lower
}
