package simkernel

import (
	"fmt"
	"reflect"
)

// Value lists the native types an expression converts to
type Value interface {
	int | int64 | float64 | float32 | string | bool
}

// ToValue converts an evaluated expression to a native value
func ToValue[T Value](e *Expr) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *int:
		*p, err = e.ToInt()
	case *int64:
		var v int
		v, err = e.ToInt()
		*p = int64(v)
	case *float64:
		*p, err = e.ToReal()
	case *float32:
		var v float64
		v, err = e.ToReal()
		*p = float32(v)
	case *string:
		*p, err = e.ToStr()
	case *bool:
		*p, err = e.ToBool()
	}
	return out, err
}

// ToSlice converts a list to a slice, element by element
func ToSlice[T Value](e *Expr) ([]T, error) {
	if !e.ListQ() {
		return nil, &EvalError{Code: TypeMismatch, Expr: e.String(), Err: fmt.Errorf("expected a list")}
	}
	out := make([]T, len(e.args))
	for i, a := range e.args {
		v, err := ToValue[T](a)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ToMatrix converts a list of lists to a slice of rows. Rows may differ in
// length.
func ToMatrix[T Value](e *Expr) ([][]T, error) {
	if !e.ListQ() {
		return nil, &EvalError{Code: TypeMismatch, Expr: e.String(), Err: fmt.Errorf("expected a list of lists")}
	}
	out := make([][]T, len(e.args))
	for i, row := range e.args {
		v, err := ToSlice[T](row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// FromValue builds an expression from a native value. Slices and arrays
// become lists; nil becomes Null.
func FromValue(v any) (*Expr, error) {
	switch x := v.(type) {
	case nil:
		return nullExpr, nil
	case *Expr:
		return x, nil
	case int:
		return NewInteger(x), nil
	case int64:
		return NewInteger(int(x)), nil
	case int32:
		return NewInteger(int(x)), nil
	case float64:
		return NewReal(x), nil
	case float32:
		return NewReal(float64(x)), nil
	case string:
		return NewString(x), nil
	case bool:
		return NewBool(x), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &EvalError{Code: TypeMismatch, Err: fmt.Errorf("cannot convert %T to an expression", v)}
	}
	items := make([]*Expr, rv.Len())
	for i := range items {
		e, err := FromValue(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		items[i] = e
	}
	return NewList(items...), nil
}
