package builtins

import (
	"strconv"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/example/jseval/runtime"
)

func (b *installer) installJSON() {
	j := b.realm.NewObject()
	b.method(j, "parse", 2, b.jsonParse)
	b.method(j, "stringify", 3, b.jsonStringify)
	b.global("JSON", runtime.NewObject(j))
}

func (b *installer) jsonParse(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	text, err := runtime.ToString(arg(args, 0))
	if err != nil {
		return nil, err
	}
	v, err := ParseJSON(b.realm, []byte(text))
	if err != nil {
		return nil, err
	}
	reviver := arg(args, 1)
	if !reviver.IsCallable() {
		return v, nil
	}
	root := b.realm.NewObject()
	if err := root.Set("", v); err != nil {
		return nil, err
	}
	return revive(b.realm, root, "", reviver.Object)
}

// ParseJSON converts JSON text into script values.
func ParseJSON(realm *runtime.Realm, data []byte) (*runtime.Value, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, runtime.Errorf(runtime.SyntaxError, "Unexpected end of JSON input")
	}
	raw, typ, end, err := jsonparser.Get(data)
	if err != nil {
		return nil, jsonSyntaxError(err)
	}
	if rest := strings.TrimSpace(string(data[end:])); rest != "" {
		return nil, runtime.Errorf(runtime.SyntaxError, "Unexpected non-whitespace character after JSON at position %d", end)
	}
	return jsonValue(realm, raw, typ)
}

func jsonSyntaxError(err error) error {
	return runtime.Errorf(runtime.SyntaxError, "%s in JSON", err)
}

func jsonValue(realm *runtime.Realm, raw []byte, typ jsonparser.ValueType) (*runtime.Value, error) {
	switch typ {
	case jsonparser.Null:
		return runtime.Null, nil
	case jsonparser.Boolean:
		v, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, jsonSyntaxError(err)
		}
		return runtime.NewBool(v), nil
	case jsonparser.Number:
		n, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil, runtime.Errorf(runtime.SyntaxError, "Unexpected number %q in JSON", raw)
		}
		return runtime.NewNumber(n), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, jsonSyntaxError(err)
		}
		return runtime.NewString(s), nil
	case jsonparser.Array:
		var (
			items []*runtime.Value
			first error
		)
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if first != nil {
				return
			}
			if err != nil {
				first = jsonSyntaxError(err)
				return
			}
			v, err := jsonValue(realm, value, dataType)
			if err != nil {
				first = err
				return
			}
			items = append(items, v)
		})
		if err != nil {
			return nil, jsonSyntaxError(err)
		}
		if first != nil {
			return nil, first
		}
		if items == nil {
			items = []*runtime.Value{}
		}
		return realm.NewArrayValue(items), nil
	case jsonparser.Object:
		obj := realm.NewObject()
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			v, err := jsonValue(realm, value, dataType)
			if err != nil {
				return err
			}
			return obj.Set(string(key), v)
		})
		if err != nil {
			if _, ok := err.(*runtime.Error); ok {
				return nil, err
			}
			return nil, jsonSyntaxError(err)
		}
		return runtime.NewObject(obj), nil
	}
	return nil, runtime.Errorf(runtime.SyntaxError, "Unexpected token '%s' in JSON", raw)
}

// revive applies a JSON.parse reviver bottom-up. Properties it maps to undefined are
// removed.
func revive(realm *runtime.Realm, holder *runtime.Object, key string, reviver *runtime.Object) (*runtime.Value, error) {
	v, err := holder.Get(key)
	if err != nil {
		return nil, err
	}
	if v.IsObject() {
		obj := v.Object
		var keys []string
		if obj.IsArray() {
			for i := range obj.ArrayData {
				keys = append(keys, strconv.Itoa(i))
			}
		} else {
			keys = obj.OwnEnumerableKeys()
		}
		for _, k := range keys {
			nv, err := revive(realm, obj, k, reviver)
			if err != nil {
				return nil, err
			}
			if nv.IsUndefined() {
				obj.Delete(k)
			} else if err := obj.Set(k, nv); err != nil {
				return nil, err
			}
		}
	}
	return reviver.Call(runtime.NewObject(holder), []*runtime.Value{runtime.NewString(key), v})
}

type jsonWriter struct {
	realm    *runtime.Realm
	gap      string
	replacer *runtime.Object
	allow    map[string]bool
	stack    []*runtime.Object
}

func (b *installer) jsonStringify(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	w := &jsonWriter{realm: b.realm}
	if r := arg(args, 1); r.IsCallable() {
		w.replacer = r.Object
	} else if r.IsObject() && r.Object.IsArray() {
		w.allow = map[string]bool{}
		for _, el := range r.Object.ArrayData {
			if el != nil && (el.Type == runtime.TypeString || el.Type == runtime.TypeNumber) {
				w.allow[el.String()] = true
			}
		}
	}
	switch space := arg(args, 2); space.Type {
	case runtime.TypeNumber:
		n := int(runtime.ToInteger(space.Number))
		if n > 10 {
			n = 10
		}
		if n > 0 {
			w.gap = strings.Repeat(" ", n)
		}
	case runtime.TypeString:
		w.gap = space.Str
		if len(w.gap) > 10 {
			w.gap = w.gap[:10]
		}
	}

	holder := b.realm.NewObject()
	if err := holder.Set("", arg(args, 0)); err != nil {
		return nil, err
	}
	s, ok, err := w.property(holder, "", "")
	if err != nil || !ok {
		return runtime.Undefined, err
	}
	return runtime.NewString(s), nil
}

// property serializes holder[key]. ok is false when the value has no JSON form.
func (w *jsonWriter) property(holder *runtime.Object, key, indent string) (string, bool, error) {
	v, err := holder.Get(key)
	if err != nil {
		return "", false, err
	}
	if v.IsObject() {
		toJSON, err := v.Object.Get("toJSON")
		if err != nil {
			return "", false, err
		}
		if toJSON.IsCallable() {
			if v, err = toJSON.Object.Call(v, []*runtime.Value{runtime.NewString(key)}); err != nil {
				return "", false, err
			}
		}
	}
	if w.replacer != nil {
		if v, err = w.replacer.Call(runtime.NewObject(holder), []*runtime.Value{runtime.NewString(key), v}); err != nil {
			return "", false, err
		}
	}

	switch v.Type {
	case runtime.TypeNull:
		return "null", true, nil
	case runtime.TypeBoolean:
		return v.String(), true, nil
	case runtime.TypeNumber:
		if !isFinite(v.Number) {
			return "null", true, nil
		}
		return runtime.NumberToString(v.Number), true, nil
	case runtime.TypeString:
		return QuoteJSON(v.Str), true, nil
	case runtime.TypeObject:
		if v.IsCallable() {
			return "", false, nil
		}
		return w.object(v.Object, indent)
	}
	return "", false, nil
}

func (w *jsonWriter) object(obj *runtime.Object, indent string) (string, bool, error) {
	for _, seen := range w.stack {
		if seen == obj {
			return "", false, runtime.Errorf(runtime.TypeError, "Converting circular structure to JSON")
		}
	}
	w.stack = append(w.stack, obj)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	inner := indent + w.gap
	var parts []string
	lbrace, rbrace := "{", "}"
	if obj.IsArray() {
		lbrace, rbrace = "[", "]"
		for i := range obj.ArrayData {
			s, ok, err := w.property(obj, strconv.Itoa(i), inner)
			if err != nil {
				return "", false, err
			}
			if !ok {
				s = "null"
			}
			parts = append(parts, s)
		}
	} else {
		for _, k := range obj.OwnEnumerableKeys() {
			if w.allow != nil && !w.allow[k] {
				continue
			}
			s, ok, err := w.property(obj, k, inner)
			if err != nil {
				return "", false, err
			}
			if !ok {
				continue
			}
			sep := ":"
			if w.gap != "" {
				sep = ": "
			}
			parts = append(parts, QuoteJSON(k)+sep+s)
		}
	}

	if len(parts) == 0 {
		return lbrace + rbrace, true, nil
	}
	if w.gap == "" {
		return lbrace + strings.Join(parts, ",") + rbrace, true, nil
	}
	return lbrace + "\n" + inner + strings.Join(parts, ",\n"+inner) + "\n" + indent + rbrace, true, nil
}

// QuoteJSON renders s as a JSON string literal.
func QuoteJSON(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte("0123456789abcdef"[r>>4])
				sb.WriteByte("0123456789abcdef"[r&0xf])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
