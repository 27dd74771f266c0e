package transformexpr

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/jamesrr39/goutil/errorsx"
	"seehuhn.de/go/geom/matrix"
)

var ErrTransformParse = errors.New("TransformParseError")

type OperationName string

const (
	OperationNameMatrix    OperationName = "matrix"
	OperationNameTranslate OperationName = "translate"
	OperationNameScale     OperationName = "scale"
	OperationNameRotate    OperationName = "rotate"
	OperationNameSkewX     OperationName = "skewX"
	OperationNameSkewY     OperationName = "skewY"
)

// allowed argument counts per operation
var argCounts = map[OperationName][]int{
	OperationNameMatrix:    {6},
	OperationNameTranslate: {1, 2},
	OperationNameScale:     {1, 2},
	OperationNameRotate:    {1, 3},
	OperationNameSkewX:     {1},
	OperationNameSkewY:     {1},
}

type Operation struct {
	Name OperationName
	Args []float64
}

func (op Operation) String() string {
	var args []string
	for _, arg := range op.Args {
		args = append(args, strconv.FormatFloat(arg, 'f', -1, 64))
	}
	return string(op.Name) + "(" + strings.Join(args, ", ") + ")"
}

// Matrix returns the affine matrix of this single operation
func (op Operation) Matrix() matrix.Matrix {
	switch op.Name {
	case OperationNameMatrix:
		return matrix.Matrix{op.Args[0], op.Args[1], op.Args[2], op.Args[3], op.Args[4], op.Args[5]}
	case OperationNameTranslate:
		ty := 0.0
		if len(op.Args) == 2 {
			ty = op.Args[1]
		}
		return matrix.Matrix{1, 0, 0, 1, op.Args[0], ty}
	case OperationNameScale:
		sy := op.Args[0]
		if len(op.Args) == 2 {
			sy = op.Args[1]
		}
		return matrix.Scale(op.Args[0], sy)
	case OperationNameRotate:
		rad := op.Args[0] * math.Pi / 180
		sin, cos := math.Sincos(rad)
		rotation := matrix.Matrix{cos, sin, -sin, cos, 0, 0}
		if len(op.Args) == 3 {
			cx, cy := op.Args[1], op.Args[2]
			toOrigin := matrix.Matrix{1, 0, 0, 1, -cx, -cy}
			back := matrix.Matrix{1, 0, 0, 1, cx, cy}
			return Compose(Compose(toOrigin, rotation), back)
		}
		return rotation
	case OperationNameSkewX:
		return matrix.Matrix{1, 0, math.Tan(op.Args[0] * math.Pi / 180), 1, 0, 0}
	case OperationNameSkewY:
		return matrix.Matrix{1, math.Tan(op.Args[0] * math.Pi / 180), 0, 1, 0, 0}
	}
	return matrix.Identity
}

// TransformList is a parsed list of geometry transforms, e.g. `translate(10, 5) rotate(45)`
type TransformList struct {
	Operations []Operation
}

func Parse(text string) (*TransformList, errorsx.Error) {
	var ops []Operation

	runes := []rune(text)
	i := 0
	for {
		i = skipSeparators(runes, i)
		if i == len(runes) {
			break
		}

		start := i
		for i < len(runes) && unicode.IsLetter(runes[i]) {
			i++
		}
		name := OperationName(runes[start:i])
		allowedCounts, ok := argCounts[name]
		if !ok {
			return nil, errorsx.Wrap(ErrTransformParse, "reason", "unknown operation", "operation", string(name), "transform", text)
		}

		i = skipSpaces(runes, i)
		if i == len(runes) || runes[i] != '(' {
			return nil, errorsx.Wrap(ErrTransformParse, "reason", "expected '('", "transform", text)
		}
		closeIdx := i
		for closeIdx < len(runes) && runes[closeIdx] != ')' {
			closeIdx++
		}
		if closeIdx == len(runes) {
			return nil, errorsx.Wrap(ErrTransformParse, "reason", "expected ')'", "transform", text)
		}

		args, err := parseArgs(string(runes[i+1 : closeIdx]))
		if err != nil {
			return nil, errorsx.Wrap(err, "transform", text)
		}
		if !containsInt(allowedCounts, len(args)) {
			return nil, errorsx.Wrap(ErrTransformParse, "reason", "wrong number of arguments", "operation", string(name), "count", len(args), "transform", text)
		}

		ops = append(ops, Operation{name, args})
		i = closeIdx + 1
	}

	if len(ops) == 0 {
		return nil, errorsx.Wrap(ErrTransformParse, "reason", "no operations", "transform", text)
	}

	return &TransformList{ops}, nil
}

func MustParse(text string) *TransformList {
	tl, err := Parse(text)
	if err != nil {
		panic(err.Error())
	}
	return tl
}

func (tl *TransformList) String() string {
	var parts []string
	for _, op := range tl.Operations {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, " ")
}

// Matrix combines the operations into one matrix. As in SVG, the last operation in the list is applied to the
// geometry first.
func (tl *TransformList) Matrix() matrix.Matrix {
	m := matrix.Identity
	for i := len(tl.Operations) - 1; i >= 0; i-- {
		m = Compose(m, tl.Operations[i].Matrix())
	}
	return m
}

// Apply transforms a point
func (tl *TransformList) Apply(x, y float64) (float64, float64) {
	return ApplyMatrix(tl.Matrix(), x, y)
}

// Equivalent reports whether two lists produce the same matrix, within a small tolerance
func (tl *TransformList) Equivalent(other *TransformList) bool {
	a, b := tl.Matrix(), other.Matrix()
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// Compose returns the matrix that applies first, then second
func Compose(first, second matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		second[0]*first[0] + second[2]*first[1],
		second[1]*first[0] + second[3]*first[1],
		second[0]*first[2] + second[2]*first[3],
		second[1]*first[2] + second[3]*first[3],
		second[0]*first[4] + second[2]*first[5] + second[4],
		second[1]*first[4] + second[3]*first[5] + second[5],
	}
}

func ApplyMatrix(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func parseArgs(text string) ([]float64, errorsx.Error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var args []float64
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errorsx.Wrap(ErrTransformParse, "reason", "bad number", "number", field)
		}
		args = append(args, v)
	}
	return args, nil
}

func skipSeparators(runes []rune, i int) int {
	for i < len(runes) && (unicode.IsSpace(runes[i]) || runes[i] == ',') {
		i++
	}
	return i
}

func skipSpaces(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
