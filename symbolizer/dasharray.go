package symbolizer

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jamesrr39/goutil/errorsx"
)

// DashArray alternates dash and gap lengths. It always has an even number of entries.
type DashArray []float64

// ParseDashArray reads a list like "4,2,1,2" or "4 2". An odd-length list is repeated once, as in SVG. "none"
// gives an empty (solid) dash array.
func ParseDashArray(text string) (DashArray, errorsx.Error) {
	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, "none") {
		return DashArray{}, nil
	}

	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, errorsx.Wrap(ErrDasharrayParse, "dasharray", text)
	}

	var dashes DashArray
	allZero := true
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errorsx.Wrap(ErrDasharrayParse, "dasharray", text, "field", field)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errorsx.Wrap(ErrDasharrayParse, "dasharray", text, "reason", "length is not finite")
		}
		if v < 0 {
			return nil, errorsx.Wrap(ErrDasharrayParse, "dasharray", text, "reason", "negative length")
		}
		if v != 0 {
			allZero = false
		}
		dashes = append(dashes, v)
	}

	if allZero {
		return nil, errorsx.Wrap(ErrDasharrayParse, "dasharray", text, "reason", "all lengths are zero")
	}

	if len(dashes)%2 == 1 {
		dashes = append(dashes, dashes...)
	}

	return dashes, nil
}

func (d DashArray) String() string {
	if len(d) == 0 {
		return "none"
	}

	var parts []string
	for _, v := range d {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// Pairs returns the (dash, gap) pairs
func (d DashArray) Pairs() [][2]float64 {
	var pairs [][2]float64
	for i := 0; i+1 < len(d); i += 2 {
		pairs = append(pairs, [2]float64{d[i], d[i+1]})
	}
	return pairs
}

func (d DashArray) Equal(other DashArray) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}
