// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arrjson

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func notFound(key string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, key)
}

func mismatch(key, want string, got any) error {
	return fmt.Errorf("%w: field %q was not %s (got %s)", ErrTypeMismatch, key, want, kindOf(got))
}

func lookup(key string, parent map[string]any) (any, error) {
	v, ok := parent[key]
	if !ok {
		return nil, notFound(key)
	}
	return v, nil
}

func requireString(key string, parent map[string]any) (string, error) {
	v, err := lookup(key, parent)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", mismatch(key, "a string", v)
	}
	return s, nil
}

func requireBool(key string, parent map[string]any) (bool, error) {
	v, err := lookup(key, parent)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(key, "a boolean", v)
	}
	return b, nil
}

func requireInt(key string, parent map[string]any) (int64, error) {
	v, err := lookup(key, parent)
	if err != nil {
		return 0, err
	}
	n, ok := intValue(v)
	if !ok {
		return 0, mismatch(key, "an int", v)
	}
	return n, nil
}

func requireArray(key string, parent map[string]any) ([]any, error) {
	v, err := lookup(key, parent)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, mismatch(key, "an array", v)
	}
	return a, nil
}

func requireObject(key string, parent map[string]any) (map[string]any, error) {
	v, err := lookup(key, parent)
	if err != nil {
		return nil, err
	}
	o, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(key, "an object", v)
	}
	return o, nil
}

// The optional accessors treat an explicit JSON null like an absent member.

func optionalString(key string, parent map[string]any) (string, bool, error) {
	if v, ok := parent[key]; !ok || v == nil {
		return "", false, nil
	}
	s, err := requireString(key, parent)
	return s, err == nil, err
}

func optionalBool(key string, parent map[string]any) (bool, bool, error) {
	if v, ok := parent[key]; !ok || v == nil {
		return false, false, nil
	}
	b, err := requireBool(key, parent)
	return b, err == nil, err
}

func optionalInt(key string, parent map[string]any) (int64, bool, error) {
	if v, ok := parent[key]; !ok || v == nil {
		return 0, false, nil
	}
	n, err := requireInt(key, parent)
	return n, err == nil, err
}

func optionalArray(key string, parent map[string]any) ([]any, bool, error) {
	if v, ok := parent[key]; !ok || v == nil {
		return nil, false, nil
	}
	a, err := requireArray(key, parent)
	return a, err == nil, err
}

func optionalObject(key string, parent map[string]any) (map[string]any, bool, error) {
	if v, ok := parent[key]; !ok || v == nil {
		return nil, false, nil
	}
	o, err := requireObject(key, parent)
	return o, err == nil, err
}

// elementObject returns the i-th element of an array member as an object.
func elementObject(key string, elems []any, i int) (map[string]any, error) {
	o, ok := elems[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s[%d] was not an object (got %s)", ErrTypeMismatch, key, i, kindOf(elems[i]))
	}
	return o, nil
}

// intValue reports the exact integer held by a JSON number node. Numbers
// with a fraction or exponent, and floats beyond 2^53, are not integers.
func intValue(v any) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// Element conversions for DATA/OFFSETS/VALIDITY entries. A JSON kind that
// can never hold the value is a type mismatch; a literal of the right kind
// that does not parse or does not fit is an encoding error.

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected a boolean, got %s", ErrTypeMismatch, kindOf(v))
	}
	return b, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected a string, got %s", ErrTypeMismatch, kindOf(v))
	}
	return s, nil
}

func integerLiteral(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return string(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return "", fmt.Errorf("%w: %v is not an exact integer", ErrEncoding, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	}
	return "", fmt.Errorf("%w: expected an integer, got %s", ErrTypeMismatch, kindOf(v))
}

// asInt parses a signed integer of the given bit width. Both a decimal
// string and an integral JSON number are accepted.
func asInt(v any, bits int) (int64, error) {
	lit, err := integerLiteral(v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(lit, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid int%d literal", ErrEncoding, lit, bits)
	}
	return n, nil
}

func asUint(v any, bits int) (uint64, error) {
	lit, err := integerLiteral(v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(lit, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid uint%d literal", ErrEncoding, lit, bits)
	}
	return n, nil
}

func asFloat(v any, bits int) (float64, error) {
	switch v := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(v), bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid float%d literal", ErrEncoding, string(v), bits)
		}
		return f, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: expected a number, got %s", ErrTypeMismatch, kindOf(v))
}
