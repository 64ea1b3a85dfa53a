package builtins

import (
	"sort"
	"strings"

	"github.com/example/jseval/runtime"
)

func (b *installer) installArray() {
	proto := b.realm.ArrayPrototype
	newArray := func(args []*runtime.Value) (*runtime.Value, error) {
		if len(args) == 1 && args[0].Type == runtime.TypeNumber {
			n := args[0].Number
			if err := runtime.CheckArrayLength(n); err != nil {
				return nil, err
			}
			return b.realm.NewArrayValue(make([]*runtime.Value, int(n))), nil
		}
		return b.realm.NewArrayValue(append([]*runtime.Value(nil), args...)), nil
	}
	ctor := b.realm.NewConstructor("Array", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return newArray(args)
	}, func(args []*runtime.Value, _ *runtime.Object) (*runtime.Value, error) {
		return newArray(args)
	}, proto)

	b.method(ctor, "isArray", 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		v := arg(args, 0)
		return runtime.NewBool(v.IsObject() && v.Object.IsArray()), nil
	})
	b.method(ctor, "from", 1, b.arrayFrom)

	methods := []struct {
		name   string
		length int
		fn     runtime.CallableFunc
	}{
		{"push", 1, arrayPush},
		{"pop", 0, arrayPop},
		{"shift", 0, arrayShift},
		{"unshift", 1, arrayUnshift},
		{"slice", 2, b.arraySlice},
		{"concat", 1, b.arrayConcat},
		{"join", 1, arrayJoin},
		{"toString", 0, arrayJoin},
		{"indexOf", 1, arrayIndexOf},
		{"includes", 1, arrayIncludes},
		{"reverse", 0, arrayReverse},
		{"map", 1, b.arrayMap},
		{"filter", 1, b.arrayFilter},
		{"forEach", 1, arrayForEach},
		{"find", 1, arrayFind},
		{"findIndex", 1, arrayFindIndex},
		{"some", 1, arraySome},
		{"every", 1, arrayEvery},
		{"reduce", 1, arrayReduce},
		{"sort", 1, arraySort},
	}
	for _, m := range methods {
		b.method(proto, m.name, m.length, m.fn)
	}

	b.global("Array", runtime.NewObject(ctor))
}

func (b *installer) arrayFrom(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	src := arg(args, 0)
	var items []*runtime.Value
	var err error
	if src.IsObject() && !src.Object.IsArray() && src.Object.Class != runtime.ClassArguments && src.Object.Class != runtime.ClassGenerator {
		if next, _ := src.Object.Get("next"); !next.IsCallable() {
			items, err = listFromArrayLike(src)
		}
	}
	if items == nil && err == nil {
		items, err = runtime.Collect(src)
	}
	if err != nil {
		return nil, err
	}
	if mapFn := arg(args, 1); !mapFn.IsUndefined() {
		fn, err := callback(mapFn)
		if err != nil {
			return nil, err
		}
		for i, v := range items {
			if items[i], err = fn.Call(arg(args, 2), []*runtime.Value{v, runtime.NewNumber(float64(i))}); err != nil {
				return nil, err
			}
		}
	}
	return b.realm.NewArrayValue(items), nil
}

func arrayPush(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "push")
	if err != nil {
		return nil, err
	}
	arr.ArrayData = append(arr.ArrayData, args...)
	return runtime.NewNumber(float64(len(arr.ArrayData))), nil
}

func arrayPop(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "pop")
	if err != nil {
		return nil, err
	}
	n := len(arr.ArrayData)
	if n == 0 {
		return runtime.Undefined, nil
	}
	last := element(arr.ArrayData, n-1)
	arr.ArrayData = arr.ArrayData[:n-1]
	return last, nil
}

func arrayShift(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "shift")
	if err != nil {
		return nil, err
	}
	if len(arr.ArrayData) == 0 {
		return runtime.Undefined, nil
	}
	first := element(arr.ArrayData, 0)
	arr.ArrayData = append([]*runtime.Value(nil), arr.ArrayData[1:]...)
	return first, nil
}

func arrayUnshift(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "unshift")
	if err != nil {
		return nil, err
	}
	data := make([]*runtime.Value, 0, len(args)+len(arr.ArrayData))
	arr.ArrayData = append(append(data, args...), arr.ArrayData...)
	return runtime.NewNumber(float64(len(arr.ArrayData))), nil
}

func (b *installer) arraySlice(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "slice")
	if err != nil {
		return nil, err
	}
	n := len(arr.ArrayData)
	start, err := relativeIndex(arg(args, 0), n, 0)
	if err != nil {
		return nil, err
	}
	end, err := relativeIndex(arg(args, 1), n, n)
	if err != nil {
		return nil, err
	}
	var out []*runtime.Value
	if start < end {
		out = append(out, arr.ArrayData[start:end]...)
	}
	return b.realm.NewArrayValue(out), nil
}

func (b *installer) arrayConcat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "concat")
	if err != nil {
		return nil, err
	}
	out := append([]*runtime.Value(nil), arr.ArrayData...)
	for _, a := range args {
		if a.IsObject() && a.Object.IsArray() {
			out = append(out, a.Object.ArrayData...)
			continue
		}
		out = append(out, a)
	}
	return b.realm.NewArrayValue(out), nil
}

func arrayJoin(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "join")
	if err != nil {
		return nil, err
	}
	sep := ","
	if s := arg(args, 0); !s.IsUndefined() {
		if sep, err = runtime.ToString(s); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(arr.ArrayData))
	for i, el := range arr.ArrayData {
		if el == nil || el.IsNullish() {
			continue
		}
		if parts[i], err = runtime.ToString(el); err != nil {
			return nil, err
		}
	}
	return runtime.NewString(strings.Join(parts, sep)), nil
}

func arrayIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "indexOf")
	if err != nil {
		return nil, err
	}
	from, err := relativeIndex(arg(args, 1), len(arr.ArrayData), 0)
	if err != nil {
		return nil, err
	}
	target := arg(args, 0)
	for i := from; i < len(arr.ArrayData); i++ {
		if el := arr.ArrayData[i]; el != nil && runtime.StrictEquals(el, target) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func arrayIncludes(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "includes")
	if err != nil {
		return nil, err
	}
	target := arg(args, 0)
	for i := range arr.ArrayData {
		if runtime.SameValueZero(element(arr.ArrayData, i), target) {
			return runtime.True, nil
		}
	}
	return runtime.False, nil
}

func arrayReverse(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "reverse")
	if err != nil {
		return nil, err
	}
	data := arr.ArrayData
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return this, nil
}

// eachElement calls fn with every present element of the array, skipping holes, until
// fn asks to stop.
func eachElement(this *runtime.Value, args []*runtime.Value, method string, fn func(i int, el, res *runtime.Value) (stop bool)) error {
	arr, err := thisArray(this, method)
	if err != nil {
		return err
	}
	cb, err := callback(arg(args, 0))
	if err != nil {
		return err
	}
	thisArg := arg(args, 1)
	for i := 0; i < len(arr.ArrayData); i++ {
		el := arr.ArrayData[i]
		if el == nil {
			continue
		}
		res, err := cb.Call(thisArg, []*runtime.Value{el, runtime.NewNumber(float64(i)), this})
		if err != nil {
			return err
		}
		if fn(i, el, res) {
			return nil
		}
	}
	return nil
}

func (b *installer) arrayMap(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var out []*runtime.Value
	if arr, err := thisArray(this, "map"); err == nil {
		out = make([]*runtime.Value, len(arr.ArrayData))
	}
	err := eachElement(this, args, "map", func(i int, _, res *runtime.Value) bool {
		out[i] = res
		return false
	})
	if err != nil {
		return nil, err
	}
	return b.realm.NewArrayValue(out), nil
}

func (b *installer) arrayFilter(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	var out []*runtime.Value
	err := eachElement(this, args, "filter", func(_ int, el, res *runtime.Value) bool {
		if res.ToBoolean() {
			out = append(out, el)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return b.realm.NewArrayValue(out), nil
}

func arrayForEach(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	err := eachElement(this, args, "forEach", func(int, *runtime.Value, *runtime.Value) bool { return false })
	if err != nil {
		return nil, err
	}
	return runtime.Undefined, nil
}

func arrayFind(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	found := runtime.Undefined
	err := eachElement(this, args, "find", func(_ int, el, res *runtime.Value) bool {
		if res.ToBoolean() {
			found = el
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func arrayFindIndex(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	found := -1
	err := eachElement(this, args, "findIndex", func(i int, _, res *runtime.Value) bool {
		if res.ToBoolean() {
			found = i
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(found)), nil
}

func arraySome(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	matched := false
	err := eachElement(this, args, "some", func(_ int, _, res *runtime.Value) bool {
		matched = res.ToBoolean()
		return matched
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(matched), nil
}

func arrayEvery(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	all := true
	err := eachElement(this, args, "every", func(_ int, _, res *runtime.Value) bool {
		all = res.ToBoolean()
		return !all
	})
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(all), nil
}

func arrayReduce(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "reduce")
	if err != nil {
		return nil, err
	}
	cb, err := callback(arg(args, 0))
	if err != nil {
		return nil, err
	}
	i := 0
	var acc *runtime.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		for i < len(arr.ArrayData) && arr.ArrayData[i] == nil {
			i++
		}
		if i == len(arr.ArrayData) {
			return nil, runtime.Errorf(runtime.TypeError, "Reduce of empty array with no initial value")
		}
		acc = arr.ArrayData[i]
		i++
	}
	for ; i < len(arr.ArrayData); i++ {
		el := arr.ArrayData[i]
		if el == nil {
			continue
		}
		if acc, err = cb.Call(runtime.Undefined, []*runtime.Value{acc, el, runtime.NewNumber(float64(i)), this}); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// arraySort sorts in place with a stable sort. Without a comparator elements compare
// as strings; undefined and holes move to the end.
func arraySort(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	arr, err := thisArray(this, "sort")
	if err != nil {
		return nil, err
	}
	var cmp *runtime.Object
	if c := arg(args, 0); !c.IsUndefined() {
		if cmp, err = callback(c); err != nil {
			return nil, err
		}
	}

	var values []*runtime.Value
	undefined, holes := 0, 0
	for _, el := range arr.ArrayData {
		switch {
		case el == nil:
			holes++
		case el.IsUndefined():
			undefined++
		default:
			values = append(values, el)
		}
	}

	var sortErr error
	sort.SliceStable(values, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		if cmp == nil {
			a, err := runtime.ToString(values[i])
			if err != nil {
				sortErr = err
				return false
			}
			b, err := runtime.ToString(values[j])
			if err != nil {
				sortErr = err
				return false
			}
			return runtime.CompareStrings(a, b) < 0
		}
		res, err := cmp.Call(runtime.Undefined, []*runtime.Value{values[i], values[j]})
		if err != nil {
			sortErr = err
			return false
		}
		n, err := runtime.ToNumber(res)
		if err != nil {
			sortErr = err
			return false
		}
		return n < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	for i := 0; i < undefined; i++ {
		values = append(values, runtime.Undefined)
	}
	arr.ArrayData = append(values, make([]*runtime.Value, holes)...)
	return this, nil
}
