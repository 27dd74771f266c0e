package symbolizer

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/jamesrr39/ownmap-symbolizer/styling/stylecolor"
)

// value tags used in the canonical encoding
const (
	tagBool byte = iota + 1
	tagInteger
	tagDouble
	tagString
	tagColor
	tagExpression
	tagPath
	tagEnum
	tagTransform
	tagDashArray
	tagPlacements
	tagColorizer
	tagGroupProperties
)

// canonicalBytes encodes a value so that structurally equal values give identical bytes
func canonicalBytes(v Value) []byte {
	var buf []byte
	switch val := v.(type) {
	case BoolValue:
		b := byte(0)
		if val {
			b = 1
		}
		buf = append(buf, tagBool, b)
	case IntegerValue:
		buf = append(buf, tagInteger)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(val))
	case DoubleValue:
		buf = append(buf, tagDouble)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(float64(val)))
	case StringValue:
		buf = appendString(append(buf, tagString), string(val))
	case ColorValue:
		c := stylecolor.Color(val)
		premultiplied := byte(0)
		if c.Premultiplied {
			premultiplied = 1
		}
		buf = append(buf, tagColor, c.R, c.G, c.B, c.A, premultiplied)
	case ExpressionValue:
		buf = appendString(append(buf, tagExpression), val.Expression.String())
	case PathExpressionValue:
		buf = appendString(append(buf, tagPath), val.Path.String())
	case EnumerationWrapper:
		buf = append(buf, tagEnum)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(val.Value))
	case TransformListValue:
		buf = appendString(append(buf, tagTransform), val.Transforms.String())
	case DashArrayValue:
		buf = append(buf, tagDashArray)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(val.DashArray)))
		for _, f := range val.DashArray {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
	case TextPlacementsValue:
		buf = appendString(append(buf, tagPlacements), val.Placements.String())
	case ColorizerValue:
		buf = appendString(append(buf, tagColorizer), val.Colorizer.String())
	case GroupPropertiesValue:
		buf = appendString(append(buf, tagGroupProperties), val.Properties.String())
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// StructuralHash hashes the kind and every (key, value) pair in key id order, so that two symbolizers with the
// same contents hash the same however they were built.
func StructuralHash(sym Symbolizer) uint64 {
	base := baseOf(sym)

	h := fnv.New64a()
	h.Write([]byte{byte(sym.Kind())})

	var keyBuf [8]byte
	for _, key := range base.PropertyKeys() {
		binary.LittleEndian.PutUint64(keyBuf[:], uint64(key))
		h.Write(keyBuf[:])
		h.Write(canonicalBytes(base.properties[key]))
	}
	return h.Sum64()
}
