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

// Package arrdata exports records covering every type the JSON codec
// supports, ready to be used for round-trip tests.
package arrdata

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var (
	Records     = make(map[string][]arrow.Record)
	RecordNames []string
)

func init() {
	Records["nulls"] = makeNullRecords()
	Records["primitives"] = makePrimitiveRecords()
	Records["strings"] = makeStringsRecords()
	Records["fixed_width_types"] = makeFixedWidthTypesRecords()
	Records["fixed_size_binaries"] = makeFixedSizeBinariesRecords()
	Records["intervals"] = makeIntervalsRecords()
	Records["decimals"] = makeDecimalsRecords()
	Records["structs"] = makeStructsRecords()
	Records["lists"] = makeListsRecords()
	Records["fixed_size_lists"] = makeFixedSizeListsRecords()
	Records["maps"] = makeMapsRecords()
	Records["unions"] = makeUnionRecords()
	Records["dictionaries"] = makeDictionaryRecords()

	for k := range Records {
		RecordNames = append(RecordNames, k)
	}
	sort.Strings(RecordNames)
}

var meta = arrow.NewMetadata([]string{"k1", "k2"}, []string{"v1", "v2"})

// records assembles one record per chunk and releases the chunks.
func records(schema *arrow.Schema, chunks ...[]arrow.Array) []arrow.Record {
	recs := make([]arrow.Record, len(chunks))
	for i, chunk := range chunks {
		recs[i] = array.NewRecord(schema, chunk, -1)
		for _, col := range chunk {
			col.Release()
		}
	}
	return recs
}

func makeNullRecords() []arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "nulls", Type: arrow.Null, Nullable: true},
	}, &meta)

	return records(schema,
		[]arrow.Array{array.NewNull(5)},
		[]arrow.Array{array.NewNull(0)},
	)
}

func makePrimitiveRecords() []arrow.Record {
	mem := memory.NewGoAllocator()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "bools", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "int8s", Type: arrow.PrimitiveTypes.Int8, Nullable: true},
		{Name: "int16s", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
		{Name: "int32s", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "int64s", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "uint8s", Type: arrow.PrimitiveTypes.Uint8, Nullable: true},
		{Name: "uint16s", Type: arrow.PrimitiveTypes.Uint16, Nullable: true},
		{Name: "uint32s", Type: arrow.PrimitiveTypes.Uint32, Nullable: true},
		{Name: "uint64s", Type: arrow.PrimitiveTypes.Uint64, Nullable: false},
		{Name: "float16s", Type: arrow.FixedWidthTypes.Float16, Nullable: true},
		{Name: "float32s", Type: arrow.PrimitiveTypes.Float32, Nullable: true},
		{Name: "float64s", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, &meta)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOf(mem, []bool{true, false, true, false, true}, mask),
			arrayOf(mem, []int8{-1, -2, -3, -4, -128}, mask),
			arrayOf(mem, []int16{-1, -2, -3, -4, -32768}, mask),
			arrayOf(mem, []int32{-1, -2, -3, -4, -2147483648}, mask),
			arrayOf(mem, []int64{-1, -2, -3, 1<<53 + 1, -9223372036854775808}, mask),
			arrayOf(mem, []uint8{1, 2, 3, 4, 255}, mask),
			arrayOf(mem, []uint16{1, 2, 3, 4, 65535}, mask),
			arrayOf(mem, []uint32{1, 2, 3, 4, 4294967295}, mask),
			arrayOf(mem, []uint64{1, 2, 3, 1<<53 + 1, 18446744073709551615}, nil),
			arrayOf(mem, f16s(1.5, -2, 0, 0.25, 65504), mask),
			arrayOf(mem, []float32{0.1, -2, 3.4028235e+38, 1e-45, 16777217}, mask),
			arrayOf(mem, []float64{0.1, -2, 1.7976931348623157e+308, 5e-324, 1 << 53}, mask),
		},
		[]arrow.Array{
			arrayOf(mem, []bool{false, true, true, false, false}, nil),
			arrayOf(mem, []int8{11, 12, 13, 14, 127}, nil),
			arrayOf(mem, []int16{11, 12, 13, 14, 32767}, nil),
			arrayOf(mem, []int32{11, 12, 13, 14, 2147483647}, nil),
			arrayOf(mem, []int64{11, 12, 13, 14, 9223372036854775807}, nil),
			arrayOf(mem, []uint8{11, 12, 13, 14, 0}, nil),
			arrayOf(mem, []uint16{11, 12, 13, 14, 0}, nil),
			arrayOf(mem, []uint32{11, 12, 13, 14, 0}, nil),
			arrayOf(mem, []uint64{11, 12, 13, 14, 0}, nil),
			arrayOf(mem, f16s(-1, -0.5, 3, 4, 5), nil),
			arrayOf(mem, []float32{-1, -0.5, 3, 4, 5}, nil),
			arrayOf(mem, []float64{-1, -0.5, 3, 4, 5}, nil),
		},
	)
}

func f16s(vs ...float32) []float16.Num {
	out := make([]float16.Num, len(vs))
	for i, v := range vs {
		out[i] = float16.New(v)
	}
	return out
}

func makeStringsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "strings", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "large_strings", Type: arrow.BinaryTypes.LargeString, Nullable: true},
		{Name: "bytes", Type: arrow.BinaryTypes.Binary, Nullable: true},
		{Name: "large_bytes", Type: arrow.BinaryTypes.LargeBinary, Nullable: true},
	}, nil)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOf(mem, []string{"1é", "2", "3", "<a & b>", ""}, mask),
			arrayOfType(mem, arrow.BinaryTypes.LargeString, []string{"1é", "2", "3", "\"quoted\"", ""}, mask),
			arrayOf(mem, [][]byte{[]byte("1é"), {2}, {3}, {0xde, 0xad, 0xbe, 0xef}, {}}, mask),
			arrayOfType(mem, arrow.BinaryTypes.LargeBinary, [][]byte{{0x00}, {2}, {3}, {0xff, 0x0a}, {}}, mask),
		},
		[]arrow.Array{
			arrayOf(mem, []string{}, nil),
			arrayOfType(mem, arrow.BinaryTypes.LargeString, []string{}, nil),
			arrayOf(mem, [][]byte{}, nil),
			arrayOfType(mem, arrow.BinaryTypes.LargeBinary, [][]byte{}, nil),
		},
	)
}

func makeFixedWidthTypesRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "date32s", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
		{Name: "date64s", Type: arrow.FixedWidthTypes.Date64, Nullable: true},
		{Name: "time32s", Type: arrow.FixedWidthTypes.Time32s, Nullable: true},
		{Name: "time32ms", Type: arrow.FixedWidthTypes.Time32ms, Nullable: true},
		{Name: "time64us", Type: arrow.FixedWidthTypes.Time64us, Nullable: true},
		{Name: "time64ns", Type: arrow.FixedWidthTypes.Time64ns, Nullable: true},
		{Name: "timestamp_s", Type: &arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"}, Nullable: true},
		{Name: "timestamp_ns", Type: &arrow.TimestampType{Unit: arrow.Nanosecond}, Nullable: true},
		{Name: "durations_ms", Type: arrow.FixedWidthTypes.Duration_ms, Nullable: true},
		{Name: "durations_ns", Type: arrow.FixedWidthTypes.Duration_ns, Nullable: true},
	}, nil)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOf(mem, []arrow.Date32{-2, -1, 0, 1, 19000}, mask),
			arrayOf(mem, []arrow.Date64{-86400000, 0, 1, 86400000, 1641600000000}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Time32s, []arrow.Time32{0, 1, 2, 3, 86399}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Time32ms, []arrow.Time32{0, 1, 2, 3, 86399999}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Time64us, []arrow.Time64{0, 1, 2, 3, 86399999999}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Time64ns, []arrow.Time64{0, 1, 2, 3, 86399999999999}, mask),
			arrayOfType(mem, schema.Field(6).Type, []arrow.Timestamp{-1, 0, 1, 2, 1641600000}, mask),
			arrayOfType(mem, schema.Field(7).Type, []arrow.Timestamp{-1, 0, 1, 1<<53 + 1, 1641600000000000000}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Duration_ms, []arrow.Duration{-1, 0, 1, 2, 3}, mask),
			arrayOfType(mem, arrow.FixedWidthTypes.Duration_ns, []arrow.Duration{-1, 0, 1, 1<<62 + 1, 3}, mask),
		},
	)
}

func makeFixedSizeBinariesRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "fixed_size_binary_3", Type: &arrow.FixedSizeBinaryType{ByteWidth: 3}, Nullable: true},
	}, nil)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOf(mem, fixedSizeBinary{3, [][]byte{[]byte("001"), []byte("002"), []byte("003"), {0xab, 0xcd, 0xef}, {0, 0, 0}}}, mask),
		},
	)
}

func makeIntervalsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "months", Type: arrow.FixedWidthTypes.MonthInterval, Nullable: true},
		{Name: "days", Type: arrow.FixedWidthTypes.DayTimeInterval, Nullable: true},
		{Name: "nanos", Type: arrow.FixedWidthTypes.MonthDayNanoInterval, Nullable: true},
	}, nil)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOf(mem, []arrow.MonthInterval{1, 2, 3, -4, 5}, mask),
			arrayOf(mem, []arrow.DayTimeInterval{{Days: 1, Milliseconds: 1}, {2, 2}, {3, 3}, {-4, -4}, {5, 86400000}}, mask),
			arrayOf(mem, []arrow.MonthDayNanoInterval{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {-4, -4, -4}, {5, 5, 1<<53 + 1}}, mask),
		},
	)
}

func makeDecimalsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	dt128 := &arrow.Decimal128Type{Precision: 10, Scale: 2}
	dt256 := &arrow.Decimal256Type{Precision: 72, Scale: -3}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "dec128", Type: dt128, Nullable: true},
		{Name: "dec256", Type: dt256, Nullable: true},
	}, nil)

	big128 := func(vs ...string) []decimal128.Num {
		out := make([]decimal128.Num, len(vs))
		for i, v := range vs {
			out[i] = decimal128.FromBigInt(bigInt(v))
		}
		return out
	}
	big256 := func(vs ...string) []decimal256.Num {
		out := make([]decimal256.Num, len(vs))
		for i, v := range vs {
			out[i] = decimal256.FromBigInt(bigInt(v))
		}
		return out
	}

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			arrayOfType(mem, dt128, big128("12345", "0", "-1", "9999999999", "-9999999999"), mask),
			arrayOfType(mem, dt256, big256("1", "2", "3", "123456789012345678901234567890123456789012345678901234567890", "-42"), mask),
		},
	)
}

func bigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Errorf("arrdata: invalid integer %q", s))
	}
	return v
}

func makeStructsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()

	dtype := arrow.StructOf(
		arrow.Field{Name: "f1", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		arrow.Field{Name: "f2", Type: arrow.BinaryTypes.String, Nullable: true, Metadata: meta},
	)
	schema := arrow.NewSchema([]arrow.Field{{Name: "struct_nullable", Type: dtype, Nullable: true}}, nil)

	mask := []bool{true, false, false, true, true}
	return records(schema,
		[]arrow.Array{
			structOf(dtype, []bool{true, false, true, true, true},
				arrayOf(mem, []int32{-1, -2, -3, -4, -5}, mask),
				arrayOf(mem, []string{"111", "222", "333", "444", "555"}, mask),
			),
		},
		[]arrow.Array{
			structOf(dtype, nil,
				arrayOf(mem, []int32{1, 2, 3}, nil),
				arrayOf(mem, []string{"a", "b", "c"}, []bool{false, true, true}),
			),
		},
	)
}

func makeListsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "list_nullable", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32), Nullable: true},
		{Name: "large_list", Type: arrow.LargeListOfField(arrow.Field{Name: "elem", Type: arrow.BinaryTypes.String}), Nullable: true},
	}, nil)

	values := arrayOf(mem, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9}, []bool{true, false, true, true, true, true, true, true, true})
	strs := arrayOf(mem, []string{"a", "b", "c", "d"}, nil)
	defer values.Release()
	defer strs.Release()

	return records(schema,
		[]arrow.Array{
			listOf(arrow.ListOf(arrow.PrimitiveTypes.Int32), values, []int32{0, 3, 3, 5, 9}, []bool{true, false, true, true}),
			largeListOf(arrow.LargeListOfField(arrow.Field{Name: "elem", Type: arrow.BinaryTypes.String}), strs, []int64{0, 1, 1, 1, 4}, []bool{true, true, false, true}),
		},
	)
}

func makeFixedSizeListsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	dtype := arrow.FixedSizeListOf(3, arrow.PrimitiveTypes.Int64)
	schema := arrow.NewSchema([]arrow.Field{{Name: "fixed_size_list_nullable", Type: dtype, Nullable: true}}, nil)

	values := arrayOf(mem, []int64{1, 2, 3, 11, 12, 13, 21, 22, 23}, []bool{true, true, false, true, true, true, true, true, true})
	defer values.Release()

	return records(schema,
		[]arrow.Array{nestedOf(dtype, 3, []bool{true, false, true}, nil, values)},
	)
}

func makeMapsRecords() []arrow.Record {
	mem := memory.NewGoAllocator()
	dtype := arrow.MapOf(arrow.PrimitiveTypes.Int32, arrow.BinaryTypes.String)
	dtype.KeysSorted = true
	schema := arrow.NewSchema([]arrow.Field{{Name: "map_int_utf8", Type: dtype, Nullable: true}}, nil)

	entries := structOf(dtype.Elem().(*arrow.StructType), nil,
		arrayOf(mem, []int32{1, 2, 3, 1, 5}, nil),
		arrayOf(mem, []string{"one", "two", "three", "uno", "five"}, []bool{true, true, false, true, true}),
	)
	defer entries.Release()

	return records(schema,
		[]arrow.Array{listOf(dtype, entries, []int32{0, 3, 3, 4, 5}, []bool{true, false, true, true})},
	)
}

func makeUnionRecords() []arrow.Record {
	mem := memory.NewGoAllocator()

	unionFields := []arrow.Field{
		{Name: "u0", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "u1", Type: arrow.PrimitiveTypes.Uint8, Nullable: true},
	}
	typeCodes := []arrow.UnionTypeCode{5, 10}
	sparseType := arrow.SparseUnionOf(unionFields, typeCodes)
	denseType := arrow.DenseUnionOf(unionFields, typeCodes)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "sparse", Type: sparseType, Nullable: true},
		{Name: "dense", Type: denseType, Nullable: true},
	}, nil)

	const length = 7
	typeIDs := memory.NewBufferBytes(arrow.Int8Traits.CastToBytes([]int8{5, 10, 5, 5, 10, 10, 5}))
	offsets := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes([]int32{0, 0, 1, 2, 1, 2, 3}))

	sparseChildren := []arrow.Array{
		arrayOf(mem, []int32{0, 1, 2, 3, 4, 5, 6}, []bool{true, true, true, false, true, true, true}),
		arrayOf(mem, []uint8{10, 11, 12, 13, 14, 15, 16}, nil),
	}
	denseChildren := []arrow.Array{
		arrayOf(mem, []int32{0, 2, 3, 7}, []bool{true, false, true, true}),
		arrayOf(mem, []uint8{11, 14, 15}, nil),
	}
	sparse := array.NewSparseUnion(sparseType, length, sparseChildren, typeIDs, 0)
	dense := array.NewDenseUnion(denseType, length, denseChildren, typeIDs, offsets, 0)
	for _, c := range append(sparseChildren, denseChildren...) {
		c.Release()
	}

	return records(schema, []arrow.Array{sparse, dense})
}

// DictionaryTypes are the dictionary types of the "dictionaries" records, in
// field order.
var DictionaryTypes = []*arrow.DictionaryType{
	{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String},
	{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.PrimitiveTypes.Int64, Ordered: true},
	{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String},
}

func makeDictionaryRecords() []arrow.Record {
	mem := memory.NewGoAllocator()

	strType, intType, elemType := DictionaryTypes[0], DictionaryTypes[1], DictionaryTypes[2]
	listType := arrow.ListOfField(arrow.Field{Name: "item", Type: elemType, Nullable: true})
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "dict_str", Type: strType, Nullable: true},
		{Name: "dict_int", Type: intType, Nullable: false},
		{Name: "list_dict", Type: listType, Nullable: true},
	}, nil)

	strDict := arrayOf(mem, []string{"foo", "bar", "baz"}, nil)
	intDict := arrayOf(mem, []int64{10, 20, 1<<53 + 1}, nil)
	elemDict := arrayOf(mem, []string{"x", "y"}, []bool{true, false})
	defer strDict.Release()
	defer intDict.Release()
	defer elemDict.Release()

	chunk := func(strIdx []int32, strValid []bool, intIdx []int8, elemIdx []int16, offsets []int32) []arrow.Array {
		s := dictOf(mem, strType, strDict, strIdx, strValid)
		i := dictOf(mem, intType, intDict, intIdx, nil)
		e := dictOf(mem, elemType, elemDict, elemIdx, nil)
		defer e.Release()
		return []arrow.Array{s, i, listOf(listType, e, offsets, nil)}
	}

	return records(schema,
		chunk([]int32{0, 1, 0, 2, 1}, []bool{true, true, false, true, true}, []int8{0, 1, 2, 2, 0}, []int16{0, 1, 1}, []int32{0, 1, 1, 3, 3, 3}),
		chunk([]int32{2, 2}, nil, []int8{1, 0}, []int16{}, []int32{0, 0, 0}),
	)
}

func dictOf[T int8 | int16 | int32](mem memory.Allocator, dt *arrow.DictionaryType, dict arrow.Array, indices []T, valids []bool) arrow.Array {
	idx := arrayOf(mem, indices, valids)
	defer idx.Release()
	return array.NewDictionaryArray(dt, idx, dict)
}

type fixedSizeBinary struct {
	width int
	vs    [][]byte
}

func arrayOf(mem memory.Allocator, a any, valids []bool) arrow.Array {
	var dt arrow.DataType
	switch a := a.(type) {
	case []bool:
		dt = arrow.FixedWidthTypes.Boolean
	case []int8:
		dt = arrow.PrimitiveTypes.Int8
	case []int16:
		dt = arrow.PrimitiveTypes.Int16
	case []int32:
		dt = arrow.PrimitiveTypes.Int32
	case []int64:
		dt = arrow.PrimitiveTypes.Int64
	case []uint8:
		dt = arrow.PrimitiveTypes.Uint8
	case []uint16:
		dt = arrow.PrimitiveTypes.Uint16
	case []uint32:
		dt = arrow.PrimitiveTypes.Uint32
	case []uint64:
		dt = arrow.PrimitiveTypes.Uint64
	case []float16.Num:
		dt = arrow.FixedWidthTypes.Float16
	case []float32:
		dt = arrow.PrimitiveTypes.Float32
	case []float64:
		dt = arrow.PrimitiveTypes.Float64
	case []string:
		dt = arrow.BinaryTypes.String
	case [][]byte:
		dt = arrow.BinaryTypes.Binary
	case fixedSizeBinary:
		dt = &arrow.FixedSizeBinaryType{ByteWidth: a.width}
	case []arrow.Date32:
		dt = arrow.FixedWidthTypes.Date32
	case []arrow.Date64:
		dt = arrow.FixedWidthTypes.Date64
	case []arrow.MonthInterval:
		dt = arrow.FixedWidthTypes.MonthInterval
	case []arrow.DayTimeInterval:
		dt = arrow.FixedWidthTypes.DayTimeInterval
	case []arrow.MonthDayNanoInterval:
		dt = arrow.FixedWidthTypes.MonthDayNanoInterval
	default:
		panic(fmt.Errorf("arrdata: invalid data type %T", a))
	}
	return arrayOfType(mem, dt, a, valids)
}

// arrayOfType builds an array of dt from a slice of values. Temporal,
// decimal and large types need their type spelled out.
func arrayOfType(mem memory.Allocator, dt arrow.DataType, a any, valids []bool) arrow.Array {
	bldr := array.NewBuilder(mem, dt)
	defer bldr.Release()

	switch b := bldr.(type) {
	case *array.BooleanBuilder:
		b.AppendValues(a.([]bool), valids)
	case *array.Int8Builder:
		b.AppendValues(a.([]int8), valids)
	case *array.Int16Builder:
		b.AppendValues(a.([]int16), valids)
	case *array.Int32Builder:
		b.AppendValues(a.([]int32), valids)
	case *array.Int64Builder:
		b.AppendValues(a.([]int64), valids)
	case *array.Uint8Builder:
		b.AppendValues(a.([]uint8), valids)
	case *array.Uint16Builder:
		b.AppendValues(a.([]uint16), valids)
	case *array.Uint32Builder:
		b.AppendValues(a.([]uint32), valids)
	case *array.Uint64Builder:
		b.AppendValues(a.([]uint64), valids)
	case *array.Float16Builder:
		b.AppendValues(a.([]float16.Num), valids)
	case *array.Float32Builder:
		b.AppendValues(a.([]float32), valids)
	case *array.Float64Builder:
		b.AppendValues(a.([]float64), valids)
	case *array.StringBuilder:
		b.AppendValues(a.([]string), valids)
	case *array.LargeStringBuilder:
		b.AppendValues(a.([]string), valids)
	case *array.BinaryBuilder:
		b.AppendValues(a.([][]byte), valids)
	case *array.FixedSizeBinaryBuilder:
		b.AppendValues(a.(fixedSizeBinary).vs, valids)
	case *array.Date32Builder:
		b.AppendValues(a.([]arrow.Date32), valids)
	case *array.Date64Builder:
		b.AppendValues(a.([]arrow.Date64), valids)
	case *array.Time32Builder:
		b.AppendValues(a.([]arrow.Time32), valids)
	case *array.Time64Builder:
		b.AppendValues(a.([]arrow.Time64), valids)
	case *array.TimestampBuilder:
		b.AppendValues(a.([]arrow.Timestamp), valids)
	case *array.DurationBuilder:
		b.AppendValues(a.([]arrow.Duration), valids)
	case *array.MonthIntervalBuilder:
		b.AppendValues(a.([]arrow.MonthInterval), valids)
	case *array.DayTimeIntervalBuilder:
		b.AppendValues(a.([]arrow.DayTimeInterval), valids)
	case *array.MonthDayNanoIntervalBuilder:
		b.AppendValues(a.([]arrow.MonthDayNanoInterval), valids)
	case *array.Decimal128Builder:
		b.AppendValues(a.([]decimal128.Num), valids)
	case *array.Decimal256Builder:
		b.AppendValues(a.([]decimal256.Num), valids)
	default:
		panic(fmt.Errorf("arrdata: no builder for %s", dt))
	}
	return bldr.NewArray()
}

func validityOf(n int, valids []bool) (*memory.Buffer, int) {
	if valids == nil {
		return nil, 0
	}
	bits := make([]byte, bitutil.BytesForBits(int64(n)))
	nulls := 0
	for i, v := range valids {
		if v {
			bitutil.SetBit(bits, i)
		} else {
			nulls++
		}
	}
	if nulls == 0 {
		return nil, 0
	}
	return memory.NewBufferBytes(bits), nulls
}

// nestedOf assembles an array of a nested type from its buffers and
// children. buf is the offsets buffer, if the layout has one.
func nestedOf(dt arrow.DataType, n int, valids []bool, buf *memory.Buffer, children ...arrow.Array) arrow.Array {
	validity, nulls := validityOf(n, valids)
	bufs := []*memory.Buffer{validity}
	if buf != nil {
		bufs = append(bufs, buf)
	}
	childData := make([]arrow.ArrayData, len(children))
	for i, c := range children {
		childData[i] = c.Data()
	}
	data := array.NewData(dt, n, bufs, childData, nulls, 0)
	defer data.Release()
	return array.MakeFromData(data)
}

func structOf(dt *arrow.StructType, valids []bool, fields ...arrow.Array) arrow.Array {
	defer func() {
		for _, f := range fields {
			f.Release()
		}
	}()
	return nestedOf(dt, fields[0].Len(), valids, nil, fields...)
}

func listOf(dt arrow.DataType, values arrow.Array, offsets []int32, valids []bool) arrow.Array {
	buf := memory.NewBufferBytes(arrow.Int32Traits.CastToBytes(offsets))
	return nestedOf(dt, len(offsets)-1, valids, buf, values)
}

func largeListOf(dt arrow.DataType, values arrow.Array, offsets []int64, valids []bool) arrow.Array {
	buf := memory.NewBufferBytes(arrow.Int64Traits.CastToBytes(offsets))
	return nestedOf(dt, len(offsets)-1, valids, buf, values)
}
