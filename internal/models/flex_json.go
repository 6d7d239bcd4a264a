package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldMaps caches JSON tag -> struct field index mappings per struct type
var fieldMaps sync.Map

func getFieldMap(t reflect.Type) map[string]int {
	if m, ok := fieldMaps.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		m[strings.Split(tag, ",")[0]] = i
	}
	fieldMaps.Store(t, m)
	return m
}

// UnmarshalFlex decodes data into the struct pointed to by dst, accepting both
// string-encoded and native JSON values. The feed serializes some numbers and
// booleans as quoted strings; those are coerced to the field's type. Nested
// structs are decoded the same way.
func UnmarshalFlex(data []byte, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("flex unmarshal: want pointer to struct, got %T", dst)
	}

	// Fast path: standard unmarshal works when all types match natively
	if err := json.Unmarshal(data, dst); err == nil {
		return nil
	}
	return flexStruct(data, v.Elem())
}

func flexStruct(data []byte, v reflect.Value) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getFieldMap(v.Type())
	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}
		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}
		flexField(fv, rawVal)
	}
	return nil
}

func flexField(fv reflect.Value, rawVal json.RawMessage) {
	// Try direct unmarshal first
	ptr := reflect.New(fv.Type())
	if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
		fv.Set(ptr.Elem())
		return
	}

	switch {
	case fv.Kind() == reflect.Struct && len(rawVal) > 0 && rawVal[0] == '{':
		_ = flexStruct(rawVal, fv)
	case fv.Kind() == reflect.Slice && len(rawVal) > 0 && rawVal[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(rawVal, &items); err != nil {
			return
		}
		out := reflect.MakeSlice(fv.Type(), len(items), len(items))
		for i, item := range items {
			flexField(out.Index(i), item)
		}
		fv.Set(out)
	case len(rawVal) > 1 && rawVal[0] == '"':
		// Value is a JSON string but target is numeric/bool: coerce
		var s string
		if err := json.Unmarshal(rawVal, &s); err != nil || s == "" {
			return
		}
		coerceStringToField(fv, s)
	}
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "28.5", truncate to int
		if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			fv.SetBool(b)
		}
	case reflect.String:
		fv.SetString(s)
	}
}

// FlexNumber is a number that may arrive as a JSON number, a numeric string,
// "NaN" or null. Anything that does not parse decodes to NaN so callers can
// apply their own floor default.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = FlexNumber(math.NaN())
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		f = math.NaN()
	}
	*n = FlexNumber(f)
	return nil
}

// Int truncates the number, mapping NaN to def.
func (n FlexNumber) Int(def int) int {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}
