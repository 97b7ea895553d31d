package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
)

// convertible reports whether raw string values can be decoded into t,
// walking through pointers and slices.
func convertible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer:
		return convertible(t.Elem())
	case reflect.Slice:
		return convertible(t.Elem())
	}
	if t == timeType || t == uuidType || t == durationType {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// typeName renders t the way clients see it in validation errors.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return typeName(t.Elem())
	case reflect.Slice:
		return "list of " + typeName(t.Elem())
	}
	switch {
	case t == timeType:
		return "datetime"
	case t == durationType:
		return "duration"
	case t == uuidType:
		return "uuid"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

// assign decodes raw string values into a freshly allocated value of type t.
// Slice targets accept both repeated keys and comma-separated encodings; the
// two produce identical ordered sequences. Slice-of-pointer targets treat an
// empty element or the literal "null" as an absent element and bind it nil.
func assign(raw []string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Pointer:
		elem, err := assign(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil

	case reflect.Slice:
		return assignSlice(raw, t)
	}

	if len(raw) == 0 {
		return reflect.Value{}, fmt.Errorf("no value supplied")
	}
	return convertScalar(raw[0], t)
}

func assignSlice(raw []string, t reflect.Type) (reflect.Value, error) {
	elemType := t.Elem()
	nullable := elemType.Kind() == reflect.Pointer

	var elems []string
	for _, v := range raw {
		elems = append(elems, strings.Split(v, ",")...)
	}

	slice := reflect.MakeSlice(t, len(elems), len(elems))
	for i, e := range elems {
		e = strings.TrimSpace(e)
		if nullable && (e == "" || e == "null") {
			continue // leaves a nil element
		}
		v, err := assign([]string{e}, elemType)
		if err != nil {
			return reflect.Value{}, err
		}
		slice.Index(i).Set(v)
	}
	return slice, nil
}

func convertScalar(raw string, t reflect.Type) (reflect.Value, error) {
	switch t {
	case uuidType:
		id, err := uuid.Parse(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid uuid %q", raw)
		}
		return reflect.ValueOf(id), nil

	case timeType:
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return reflect.ValueOf(ts), nil
		}
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			return reflect.ValueOf(ts), nil
		}
		return reflect.Value{}, fmt.Errorf("invalid datetime %q", raw)

	case durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid duration %q", raw)
		}
		return reflect.ValueOf(d), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		out.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid integer %q", raw)
		}
		out.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid number %q", raw)
		}
		out.SetFloat(n)

	case reflect.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(b)

	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", t)
	}
	return out, nil
}

// parseBool is lenient the way HTML forms and query strings require.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "t", "yes", "on":
		return true, nil
	case "false", "0", "f", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}
