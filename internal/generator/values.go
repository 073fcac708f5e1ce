package generator

import (
	"math"
	"strconv"
	"strings"

	"bennypowers.dev/chtl/internal/ast"
	"bennypowers.dev/chtl/internal/color"
	"bennypowers.dev/chtl/internal/compileerr"
)

// value is an evaluated expression: a number with a unit, a truth value,
// or CSS text
type value struct {
	num     float64
	unit    string
	numeric bool
	boolean bool
	truth   bool
	text    string
}

func (v value) String() string {
	switch {
	case v.numeric:
		return formatNumber(v.num) + v.unit
	case v.boolean:
		return strconv.FormatBool(v.truth)
	}
	return v.text
}

// isTrue treats zero, empty text and "false" as false
func (v value) isTrue() bool {
	switch {
	case v.boolean:
		return v.truth
	case v.numeric:
		return v.num != 0
	}
	return v.text != "" && v.text != "false"
}

func boolean(b bool) value {
	return value{boolean: true, truth: b}
}

// formatNumber prints at most six decimals and drops a trailing fraction
func formatNumber(n float64) string {
	n = math.Round(n*1e6) / 1e6
	if n == 0 {
		n = 0 // normalizes -0
	}
	return ast.FormatNumber(n)
}

var colorFunctions = map[string]bool{
	"rgb": true, "rgba": true, "hsl": true, "hsla": true, "hwb": true,
}

// property renders a property value. Strings are quoted only for `content`.
func (g *generator) property(p *ast.StyleProperty) (string, error) {
	v, err := g.eval(p.Value, p.Key == "content")
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func (g *generator) eval(e ast.Expr, quote bool) (value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		switch e.Type {
		case ast.LitString:
			if quote {
				return text(strconv.Quote(e.Value)), nil
			}
			return text(e.Value), nil
		case ast.LitColor:
			c, _ := color.Convert(e.Value, g.opts.ColorFormat)
			return text(c), nil
		}
		return text(e.Value), nil

	case *ast.Number:
		return value{num: e.Value, unit: e.Unit, numeric: true}, nil

	case *ast.Unary:
		x, err := g.eval(e.X, quote)
		if err != nil {
			return value{}, err
		}
		if x.numeric {
			x.num = -x.num
			return x, nil
		}
		return text(e.Op + x.text), nil

	case *ast.Binary:
		return g.binary(e, quote)

	case *ast.Sequence:
		parts, err := g.evalAll(e.Items, quote)
		if err != nil {
			return value{}, err
		}
		return text(strings.Join(parts, " ")), nil

	case *ast.List:
		parts, err := g.evalAll(e.Items, quote)
		if err != nil {
			return value{}, err
		}
		return text(strings.Join(parts, ", ")), nil

	case *ast.Call:
		args, err := g.evalAll(e.Args, quote)
		if err != nil {
			return value{}, err
		}
		css := e.Name + "(" + strings.Join(args, ", ") + ")"
		if colorFunctions[strings.ToLower(e.Name)] {
			css, _ = color.Convert(css, g.opts.ColorFormat)
		}
		return text(css), nil

	case *ast.Comparison:
		return g.compare(e)

	case *ast.Logical:
		left, err := g.eval(e.Left, false)
		if err != nil {
			return value{}, err
		}
		if (e.Op == "&&") != left.isTrue() {
			return boolean(left.isTrue()), nil
		}
		right, err := g.eval(e.Right, false)
		if err != nil {
			return value{}, err
		}
		return boolean(right.isTrue()), nil

	case *ast.Conditional:
		cond, err := g.eval(e.Cond, false)
		if err != nil {
			return value{}, err
		}
		if cond.isTrue() {
			return g.eval(e.Then, quote)
		}
		return g.eval(e.Else, quote)

	case *ast.PropertyAccess, *ast.VarAccess:
		return value{}, compileerr.NewEvaluationError(e.String(), "unresolved reference", e.Position())

	case nil:
		return text(""), nil
	}
	return value{}, compileerr.NewEvaluationError("", "unsupported expression", ast.Pos{})
}

func (g *generator) evalAll(items []ast.Expr, quote bool) ([]string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		v, err := g.eval(item, quote)
		if err != nil {
			return nil, err
		}
		parts[i] = v.String()
	}
	return parts, nil
}

func text(s string) value {
	return value{text: s}
}

// binary computes arithmetic on numbers. Operands of + and - must share a
// unit unless one is unitless; * and / accept at most one unit, except that
// dividing equal units cancels them. Non-numeric operands fall back to calc().
func (g *generator) binary(e *ast.Binary, quote bool) (value, error) {
	left, err := g.eval(e.Left, quote)
	if err != nil {
		return value{}, err
	}
	right, err := g.eval(e.Right, quote)
	if err != nil {
		return value{}, err
	}
	if !left.numeric || !right.numeric {
		if e.Op == "%" {
			return value{}, compileerr.NewEvaluationError(e.String(), "'%' needs numeric operands", e.Pos)
		}
		return text("calc(" + left.String() + " " + e.Op + " " + right.String() + ")"), nil
	}

	mismatch := func() (value, error) {
		return value{}, compileerr.NewEvaluationError(e.String(),
			"incompatible units '"+left.unit+"' and '"+right.unit+"'", e.Pos)
	}
	unit := left.unit
	if unit == "" {
		unit = right.unit
	}

	switch e.Op {
	case "+", "-":
		if left.unit != "" && right.unit != "" && left.unit != right.unit {
			return mismatch()
		}
		if e.Op == "+" {
			return value{num: left.num + right.num, unit: unit, numeric: true}, nil
		}
		return value{num: left.num - right.num, unit: unit, numeric: true}, nil

	case "*":
		if left.unit != "" && right.unit != "" {
			return mismatch()
		}
		return value{num: left.num * right.num, unit: unit, numeric: true}, nil

	case "/", "%":
		if right.num == 0 {
			return value{}, compileerr.NewEvaluationError(e.String(), "division by zero", e.Pos)
		}
		switch {
		case right.unit == "":
			unit = left.unit
		case left.unit == right.unit && e.Op == "/":
			unit = ""
		case left.unit == right.unit:
			unit = left.unit
		default:
			return mismatch()
		}
		if e.Op == "/" {
			return value{num: left.num / right.num, unit: unit, numeric: true}, nil
		}
		return value{num: math.Mod(left.num, right.num), unit: unit, numeric: true}, nil
	}
	return value{}, compileerr.NewEvaluationError(e.String(), "unknown operator '"+e.Op+"'", e.Pos)
}

// compare orders numbers that share a unit, or where one side is unitless.
// Other values compare as text, for equality only.
func (g *generator) compare(e *ast.Comparison) (value, error) {
	left, err := g.eval(e.Left, false)
	if err != nil {
		return value{}, err
	}
	right, err := g.eval(e.Right, false)
	if err != nil {
		return value{}, err
	}

	if left.numeric && right.numeric {
		if left.unit != "" && right.unit != "" && left.unit != right.unit {
			return value{}, compileerr.NewEvaluationError(e.String(),
				"incompatible units '"+left.unit+"' and '"+right.unit+"'", e.Pos)
		}
		l, r := left.num, right.num
		switch e.Op {
		case "==":
			return boolean(l == r), nil
		case "!=":
			return boolean(l != r), nil
		case "<":
			return boolean(l < r), nil
		case "<=":
			return boolean(l <= r), nil
		case ">":
			return boolean(l > r), nil
		case ">=":
			return boolean(l >= r), nil
		}
	}

	switch e.Op {
	case "==":
		return boolean(left.String() == right.String()), nil
	case "!=":
		return boolean(left.String() != right.String()), nil
	}
	return value{}, compileerr.NewEvaluationError(e.String(), "'"+e.Op+"' needs numeric operands", e.Pos)
}
