package runtime

import (
	"math"

	"github.com/pkg/errors"
)

// operandClass classifies an operand for rule matching.
type operandClass int

const (
	anyOperand operandClass = iota
	stringOperand
	numberOperand
	objectOperand
)

func (c operandClass) matches(v *Value) bool {
	switch c {
	case stringOperand:
		return v.Type == TypeString
	case numberOperand:
		return v.Type == TypeNumber
	case objectOperand:
		return v.Type == TypeObject
	}
	return true
}

// binaryRule applies when both operands match its classes.
type binaryRule struct {
	left, right operandClass
	apply       func(l, r *Value) (*Value, error)
}

// binaryOperator is one row of the operator table: an optional coercion applied to
// both operands, then rules tried in order until one matches.
type binaryOperator struct {
	prepare func(v *Value) (*Value, error)
	rules   []binaryRule
}

var binaryOperators map[string]*binaryOperator

func init() {
	toDefault := func(v *Value) (*Value, error) { return ToPrimitive(v, HintDefault) }
	toNumberHint := func(v *Value) (*Value, error) { return ToPrimitive(v, HintNumber) }

	binaryOperators = map[string]*binaryOperator{
		"+": {prepare: toDefault, rules: []binaryRule{
			{stringOperand, anyOperand, concat},
			{anyOperand, stringOperand, concat},
			{anyOperand, anyOperand, numeric(func(a, b float64) float64 { return a + b })},
		}},
		"-":  arithmetic(func(a, b float64) float64 { return a - b }),
		"*":  arithmetic(func(a, b float64) float64 { return a * b }),
		"/":  arithmetic(func(a, b float64) float64 { return a / b }),
		"%":  arithmetic(math.Mod),
		"**": arithmetic(power),

		"&": arithmetic(int32Op(func(a, b int32) int32 { return a & b })),
		"|": arithmetic(int32Op(func(a, b int32) int32 { return a | b })),
		"^": arithmetic(int32Op(func(a, b int32) int32 { return a ^ b })),
		"<<": arithmetic(func(a, b float64) float64 {
			return float64(ToInt32(a) << (ToUint32(b) & 31))
		}),
		">>": arithmetic(func(a, b float64) float64 {
			return float64(ToInt32(a) >> (ToUint32(b) & 31))
		}),
		">>>": arithmetic(func(a, b float64) float64 {
			return float64(ToUint32(a) >> (ToUint32(b) & 31))
		}),

		"===": {rules: []binaryRule{{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
			return NewBool(StrictEquals(l, r)), nil
		}}}},
		"!==": {rules: []binaryRule{{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
			return NewBool(!StrictEquals(l, r)), nil
		}}}},
		"==": {rules: []binaryRule{{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
			eq, err := LooseEquals(l, r)
			return NewBool(eq), err
		}}}},
		"!=": {rules: []binaryRule{{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
			eq, err := LooseEquals(l, r)
			return NewBool(!eq), err
		}}}},

		"<": {prepare: toNumberHint, rules: compare(
			func(a, b string) bool { return CompareStrings(a, b) < 0 },
			func(a, b float64) bool { return a < b })},
		">": {prepare: toNumberHint, rules: compare(
			func(a, b string) bool { return CompareStrings(a, b) > 0 },
			func(a, b float64) bool { return a > b })},
		"<=": {prepare: toNumberHint, rules: compare(
			func(a, b string) bool { return CompareStrings(a, b) <= 0 },
			func(a, b float64) bool { return a <= b })},
		">=": {prepare: toNumberHint, rules: compare(
			func(a, b string) bool { return CompareStrings(a, b) >= 0 },
			func(a, b float64) bool { return a >= b })},

		"instanceof": {rules: []binaryRule{
			{anyOperand, objectOperand, instanceOf},
			{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
				return nil, Errorf(TypeError, "Right-hand side of 'instanceof' is not callable")
			}},
		}},
		"in": {rules: []binaryRule{
			{anyOperand, objectOperand, func(l, r *Value) (*Value, error) {
				key, err := ToPropertyKey(l)
				if err != nil {
					return nil, err
				}
				return NewBool(r.Object.HasProperty(key)), nil
			}},
			{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
				return nil, Errorf(TypeError, "Cannot use 'in' operator to search for '%s' in %s", l, r)
			}},
		}},
	}
}

// BinaryOp evaluates a binary operator over two already-evaluated operands.
func BinaryOp(op string, l, r *Value) (*Value, error) {
	row, ok := binaryOperators[op]
	if !ok {
		return nil, errors.Errorf("unknown binary operator %q", op)
	}
	if row.prepare != nil {
		var err error
		if l, err = row.prepare(l); err != nil {
			return nil, err
		}
		if r, err = row.prepare(r); err != nil {
			return nil, err
		}
	}
	for _, rule := range row.rules {
		if rule.left.matches(l) && rule.right.matches(r) {
			return rule.apply(l, r)
		}
	}
	return nil, errors.Errorf("no rule for %s %s %s", l.Type, op, r.Type)
}

func concat(l, r *Value) (*Value, error) {
	return NewString(l.String() + r.String()), nil
}

func numeric(fn func(a, b float64) float64) func(l, r *Value) (*Value, error) {
	return func(l, r *Value) (*Value, error) {
		a, err := ToNumber(l)
		if err != nil {
			return nil, err
		}
		b, err := ToNumber(r)
		if err != nil {
			return nil, err
		}
		return NewNumber(fn(a, b)), nil
	}
}

func arithmetic(fn func(a, b float64) float64) *binaryOperator {
	return &binaryOperator{rules: []binaryRule{{anyOperand, anyOperand, numeric(fn)}}}
}

func int32Op(fn func(a, b int32) int32) func(a, b float64) float64 {
	return func(a, b float64) float64 {
		return float64(fn(ToInt32(a), ToInt32(b)))
	}
}

func power(a, b float64) float64 {
	if math.IsNaN(b) || (math.Abs(a) == 1 && math.IsInf(b, 0)) {
		return math.NaN()
	}
	return math.Pow(a, b)
}

// compare builds relational rules: string order when both sides are strings, numeric
// order otherwise, with NaN comparing false.
func compare(strs func(a, b string) bool, nums func(a, b float64) bool) []binaryRule {
	return []binaryRule{
		{stringOperand, stringOperand, func(l, r *Value) (*Value, error) {
			return NewBool(strs(l.Str, r.Str)), nil
		}},
		{anyOperand, anyOperand, func(l, r *Value) (*Value, error) {
			a, b := primitiveToNumber(l), primitiveToNumber(r)
			if math.IsNaN(a) || math.IsNaN(b) {
				return False, nil
			}
			return NewBool(nums(a, b)), nil
		}},
	}
}

func instanceOf(l, r *Value) (*Value, error) {
	if !r.Object.Callable() {
		return nil, Errorf(TypeError, "Right-hand side of 'instanceof' is not callable")
	}
	ok, err := r.Object.InstanceOf(l)
	if err != nil {
		return nil, err
	}
	return NewBool(ok), nil
}

// UnaryOp evaluates the unary operators that need only the operand's value. delete
// and typeof of an undeclared name need a reference and are handled by the caller.
func UnaryOp(op string, v *Value) (*Value, error) {
	switch op {
	case "typeof":
		return NewString(TypeOf(v)), nil
	case "void":
		return Undefined, nil
	case "!":
		return NewBool(!v.ToBoolean()), nil
	}
	n, err := ToNumber(v)
	if err != nil {
		return nil, err
	}
	switch op {
	case "-":
		return NewNumber(-n), nil
	case "+":
		return NewNumber(n), nil
	case "~":
		return NewNumber(float64(^ToInt32(n))), nil
	}
	return nil, errors.Errorf("unknown unary operator %q", op)
}
