package runtime

import (
	"math"
	"strings"
)

// ValueType represents the type of a script value.
type ValueType int

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a script value. Values are immutable; objects are shared by reference
// through the Object field.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    string
	Object *Object
}

var (
	Undefined = &Value{Type: TypeUndefined}
	Null      = &Value{Type: TypeNull}
	True      = &Value{Type: TypeBoolean, Bool: true}
	False     = &Value{Type: TypeBoolean, Bool: false}
	NaN       = &Value{Type: TypeNumber, Number: math.NaN()}
	Zero      = &Value{Type: TypeNumber, Number: 0}
)

func NewNumber(n float64) *Value {
	return &Value{Type: TypeNumber, Number: n}
}

func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewObject(obj *Object) *Value {
	return &Value{Type: TypeObject, Object: obj}
}

func (v *Value) IsUndefined() bool { return v.Type == TypeUndefined }
func (v *Value) IsNullish() bool   { return v.Type == TypeUndefined || v.Type == TypeNull }
func (v *Value) IsObject() bool    { return v.Type == TypeObject }

// IsCallable reports whether v is a function object.
func (v *Value) IsCallable() bool {
	return v.Type == TypeObject && v.Object.Call != nil
}

// ToBoolean implements the language's truthiness rules.
func (v *Value) ToBoolean() bool {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeString:
		return len(v.Str) > 0
	case TypeObject:
		return true
	default:
		return false
	}
}

// String renders v without running any script code. Objects use their built-in
// conversions; use ToString where user-defined toString methods must be honored.
func (v *Value) String() string {
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.Number)
	case TypeString:
		return v.Str
	case TypeObject:
		return v.Object.String()
	default:
		return "undefined"
	}
}

// TypeOf returns the result of the typeof operator.
func TypeOf(v *Value) string {
	switch v.Type {
	case TypeNull:
		return "object"
	case TypeObject:
		if v.Object.Call != nil {
			return "function"
		}
		return "object"
	}
	return v.Type.String()
}

func (o *Object) String() string {
	switch o.Class {
	case ClassArray, ClassArguments:
		parts := make([]string, len(o.ArrayData))
		for i, el := range o.ArrayData {
			if el != nil && !el.IsNullish() {
				parts[i] = el.String()
			}
		}
		return strings.Join(parts, ",")
	case ClassFunction:
		return "function " + o.Value("name").String() + "() { [native code] }"
	case ClassError:
		return errorString(o)
	}
	return "[object Object]"
}

func errorString(o *Object) string {
	name := "Error"
	if n := o.Value("name"); n.Type == TypeString && n.Str != "" {
		name = n.Str
	}
	msg := o.Value("message")
	if msg.IsUndefined() || msg.String() == "" {
		return name
	}
	return name + ": " + msg.String()
}
