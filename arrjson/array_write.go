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
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"
	"golang.org/x/exp/constraints"
)

// Array is the JSON form of one column, or of one child of a nested column.
type Array struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Valids   []int   `json:"VALIDITY,omitempty"`
	Data     []any   `json:"DATA,omitempty"`
	Offsets  []any   `json:"OFFSETS,omitempty"`
	Children []Array `json:"children,omitempty"`
}

type arrayJSON Array

// MarshalJSON encodes a through a non-recursive alias, one column at a time.
func (a Array) MarshalJSON() ([]byte, error) {
	return json.MarshalNoEscape(arrayJSON(a))
}

// WriteArray encodes arr as a column called name. Child columns take their
// names from the fields of arr's type. A dictionary array is encoded as its
// indices; its values are written separately with WriteDictionary.
func WriteArray(name string, arr arrow.Array) (Array, error) {
	return writeArray(name, arr, []string{name})
}

func writeArray(name string, arr arrow.Array, path []string) (Array, error) {
	o, err := writeArrayBody(name, arr, path)
	if err != nil {
		return Array{}, withPath("column", path, err)
	}
	return o, nil
}

func writeArrayBody(name string, arr arrow.Array, path []string) (Array, error) {
	o := Array{Name: name, Count: arr.Len()}

	switch arr.DataType().ID() {
	case arrow.NULL, arrow.SPARSE_UNION, arrow.DENSE_UNION:
	default:
		o.Valids = validsToJSON(arr)
	}

	var err error
	switch arr := arr.(type) {
	case *array.Null:
	case *array.Boolean:
		o.Data, err = dataToJSON(arr, false, func(i int) (any, error) { return arr.Value(i), nil })
	case *array.Int8:
		o.Data, err = signedToJSON(arr, arr.Int8Values(), false)
	case *array.Int16:
		o.Data, err = signedToJSON(arr, arr.Int16Values(), false)
	case *array.Int32:
		o.Data, err = signedToJSON(arr, arr.Int32Values(), false)
	case *array.Int64:
		o.Data, err = signedToJSON(arr, arr.Int64Values(), true)
	case *array.Uint8:
		o.Data, err = unsignedToJSON(arr, arr.Uint8Values(), false)
	case *array.Uint16:
		o.Data, err = unsignedToJSON(arr, arr.Uint16Values(), false)
	case *array.Uint32:
		o.Data, err = unsignedToJSON(arr, arr.Uint32Values(), false)
	case *array.Uint64:
		o.Data, err = unsignedToJSON(arr, arr.Uint64Values(), true)
	case *array.Float16:
		o.Data, err = floatToJSON(arr, 32, func(i int) float64 { return float64(arr.Value(i).Float32()) })
	case *array.Float32:
		o.Data, err = floatToJSON(arr, 32, func(i int) float64 { return float64(arr.Value(i)) })
	case *array.Float64:
		o.Data, err = floatToJSON(arr, 64, arr.Value)
	case *array.String:
		o.Data, err = dataToJSON(arr, "", func(i int) (any, error) { return arr.Value(i), nil })
	case *array.LargeString:
		o.Data, err = dataToJSON(arr, "", func(i int) (any, error) { return arr.Value(i), nil })
	case *array.Binary:
		o.Data, err = dataToJSON(arr, "", func(i int) (any, error) { return hexUpper(arr.Value(i)), nil })
	case *array.LargeBinary:
		o.Data, err = dataToJSON(arr, "", func(i int) (any, error) { return hexUpper(arr.Value(i)), nil })
	case *array.FixedSizeBinary:
		width := arr.DataType().(*arrow.FixedSizeBinaryType).ByteWidth
		o.Data, err = dataToJSON(arr, strings.Repeat("0", 2*width), func(i int) (any, error) { return hexUpper(arr.Value(i)), nil })
	case *array.Date32:
		o.Data, err = signedToJSON(arr, arr.Date32Values(), false)
	case *array.Date64:
		o.Data, err = signedToJSON(arr, arr.Date64Values(), true)
	case *array.Time32:
		o.Data, err = signedToJSON(arr, arr.Time32Values(), false)
	case *array.Time64:
		o.Data, err = signedToJSON(arr, arr.Time64Values(), true)
	case *array.Timestamp:
		o.Data, err = signedToJSON(arr, arr.TimestampValues(), true)
	case *array.Duration:
		o.Data, err = signedToJSON(arr, arr.DurationValues(), true)
	case *array.MonthInterval:
		o.Data, err = signedToJSON(arr, arr.MonthIntervalValues(), false)
	case *array.DayTimeInterval:
		o.Data, err = dataToJSON(arr, dayTimeToJSON(arrow.DayTimeInterval{}), func(i int) (any, error) {
			return dayTimeToJSON(arr.Value(i)), nil
		})
	case *array.MonthDayNanoInterval:
		o.Data, err = dataToJSON(arr, monthDayNanoToJSON(arrow.MonthDayNanoInterval{}), func(i int) (any, error) {
			return monthDayNanoToJSON(arr.Value(i)), nil
		})
	case *array.Decimal128:
		o.Data, err = dataToJSON(arr, "0", func(i int) (any, error) { return arr.Value(i).BigInt().String(), nil })
	case *array.Decimal256:
		o.Data, err = dataToJSON(arr, "0", func(i int) (any, error) { return arr.Value(i).BigInt().String(), nil })
	case *array.List:
		err = writeListLike(&o, arr, false, path)
	case *array.Map:
		err = writeListLike(&o, arr, false, path)
	case *array.LargeList:
		err = writeListLike(&o, arr, true, path)
	case *array.FixedSizeList:
		size := int64(arr.DataType().(*arrow.FixedSizeListType).Len())
		beg := int64(arr.Data().Offset()) * size
		child := array.NewSlice(arr.ListValues(), beg, beg+int64(arr.Len())*size)
		defer child.Release()
		err = writeChildren(&o, arr.DataType(), []arrow.Array{child}, path)
	case *array.Struct:
		children := make([]arrow.Array, arr.NumField())
		for j := range children {
			children[j] = arr.Field(j)
		}
		err = writeChildren(&o, arr.DataType(), children, path)
	case array.Union:
		err = writeUnion(&o, arr, path)
	case *array.Dictionary:
		var idx Array
		idx, err = writeArrayBody(name, arr.Indices(), path)
		o.Data = idx.Data
	default:
		return Array{}, fmt.Errorf("%w: cannot encode array of type %s", ErrUnsupportedType, arr.DataType())
	}
	if err != nil {
		return Array{}, err
	}
	return o, nil
}

func validsToJSON(arr arrow.Array) []int {
	o := make([]int, arr.Len())
	for i := range o {
		if arr.IsValid(i) {
			o[i] = 1
		}
	}
	return o
}

// dataToJSON calls fn for every valid row and writes zero for null rows.
func dataToJSON(arr arrow.Array, zero any, fn func(i int) (any, error)) ([]any, error) {
	o := make([]any, arr.Len())
	for i := range o {
		if arr.IsNull(i) {
			o[i] = zero
			continue
		}
		v, err := fn(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		o[i] = v
	}
	return o, nil
}

// Integers wider than 32 bits are written as strings so that readers
// parsing numbers as doubles do not lose precision.

func signedToJSON[T constraints.Signed](arr arrow.Array, vs []T, quote bool) ([]any, error) {
	return dataToJSON(arr, intLiteral("0", quote), func(i int) (any, error) {
		return intLiteral(strconv.FormatInt(int64(vs[i]), 10), quote), nil
	})
}

func unsignedToJSON[T constraints.Unsigned](arr arrow.Array, vs []T, quote bool) ([]any, error) {
	return dataToJSON(arr, intLiteral("0", quote), func(i int) (any, error) {
		return intLiteral(strconv.FormatUint(uint64(vs[i]), 10), quote), nil
	})
}

func intLiteral(s string, quote bool) any {
	if quote {
		return s
	}
	return json.Number(s)
}

func floatToJSON(arr arrow.Array, bits int, value func(i int) float64) ([]any, error) {
	return dataToJSON(arr, json.Number("0"), func(i int) (any, error) {
		f := value(i)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v has no JSON representation", ErrEncoding, f)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, bits)), nil
	})
}

func hexUpper(b []byte) string { return strings.ToUpper(hex.EncodeToString(b)) }

func dayTimeToJSON(v arrow.DayTimeInterval) map[string]any {
	return map[string]any{
		kDays:         json.Number(strconv.FormatInt(int64(v.Days), 10)),
		kMilliseconds: json.Number(strconv.FormatInt(int64(v.Milliseconds), 10)),
	}
}

func monthDayNanoToJSON(v arrow.MonthDayNanoInterval) map[string]any {
	return map[string]any{
		kMonths:      json.Number(strconv.FormatInt(int64(v.Months), 10)),
		kDays:        json.Number(strconv.FormatInt(int64(v.Days), 10)),
		kNanoseconds: strconv.FormatInt(v.Nanoseconds, 10),
	}
}

// writeListLike writes the offsets of arr's rows rebased to zero together
// with the slice of the child values they cover. The offsets are taken row
// by row so that sliced arrays start at their own first row.
func writeListLike(o *Array, arr array.ListLike, quote bool, path []string) error {
	n := arr.Len()
	var beg, end int64
	if n > 0 {
		beg, _ = arr.ValueOffsets(0)
		_, end = arr.ValueOffsets(n - 1)
	}

	o.Offsets = make([]any, n+1)
	o.Offsets[0] = intLiteral("0", quote)
	for i := 0; i < n; i++ {
		_, e := arr.ValueOffsets(i)
		o.Offsets[i+1] = intLiteral(strconv.FormatInt(e-beg, 10), quote)
	}

	child := array.NewSlice(arr.ListValues(), beg, end)
	defer child.Release()
	return writeChildren(o, arr.DataType(), []arrow.Array{child}, path)
}

func writeChildren(o *Array, dt arrow.DataType, children []arrow.Array, path []string) error {
	fields := dictutils.ChildFields(dt)
	if len(fields) != len(children) {
		return fmt.Errorf("%w: type %s has %d fields, array has %d children", ErrTypeMismatch, dt, len(fields), len(children))
	}
	o.Children = make([]Array, len(children))
	for j, c := range children {
		name := fields[j].Name
		var err error
		o.Children[j], err = writeArray(name, c, append(path, name))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeUnion(o *Array, arr array.Union, path []string) error {
	o.Data = make([]any, arr.Len())
	for i := range o.Data {
		o.Data[i] = json.Number(strconv.Itoa(int(arr.TypeCode(i))))
	}

	if dense, ok := arr.(*array.DenseUnion); ok {
		o.Offsets = make([]any, arr.Len())
		for i := range o.Offsets {
			o.Offsets[i] = json.Number(strconv.FormatInt(int64(dense.ValueOffset(i)), 10))
		}
	}

	children := make([]arrow.Array, arr.NumFields())
	for j := range children {
		children[j] = arr.Field(j)
	}
	return writeChildren(o, arr.DataType(), children, path)
}
