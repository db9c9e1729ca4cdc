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
	"testing"

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRoundTrip(t *testing.T) {
	mapType := arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Float64)
	mapType.KeysSorted = true

	for _, dt := range []arrow.DataType{
		arrow.Null,
		arrow.FixedWidthTypes.Boolean,
		arrow.PrimitiveTypes.Int8,
		arrow.PrimitiveTypes.Int64,
		arrow.PrimitiveTypes.Uint16,
		arrow.PrimitiveTypes.Uint64,
		arrow.FixedWidthTypes.Float16,
		arrow.PrimitiveTypes.Float32,
		arrow.PrimitiveTypes.Float64,
		arrow.BinaryTypes.String,
		arrow.BinaryTypes.LargeString,
		arrow.BinaryTypes.Binary,
		arrow.BinaryTypes.LargeBinary,
		&arrow.FixedSizeBinaryType{ByteWidth: 16},
		arrow.FixedWidthTypes.Date32,
		arrow.FixedWidthTypes.Date64,
		arrow.FixedWidthTypes.Time32s,
		arrow.FixedWidthTypes.Time32ms,
		arrow.FixedWidthTypes.Time64us,
		arrow.FixedWidthTypes.Time64ns,
		&arrow.TimestampType{Unit: arrow.Microsecond},
		&arrow.TimestampType{Unit: arrow.Second, TimeZone: "America/New_York"},
		arrow.FixedWidthTypes.Duration_s,
		arrow.FixedWidthTypes.MonthInterval,
		arrow.FixedWidthTypes.DayTimeInterval,
		arrow.FixedWidthTypes.MonthDayNanoInterval,
		&arrow.Decimal128Type{Precision: 38, Scale: 10},
		&arrow.Decimal256Type{Precision: 76, Scale: -2},
		arrow.ListOf(arrow.PrimitiveTypes.Int32),
		arrow.LargeListOf(arrow.BinaryTypes.String),
		arrow.FixedSizeListOf(4, arrow.PrimitiveTypes.Float32),
		arrow.StructOf(
			arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32},
			arrow.Field{Name: "b", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
		),
		arrow.StructOf(),
		mapType,
		arrow.SparseUnionOf([]arrow.Field{
			{Name: "i", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
			{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
		}, []arrow.UnionTypeCode{3, 127}),
		arrow.DenseUnionOf([]arrow.Field{
			{Name: "f", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		}, []arrow.UnionTypeCode{0}),
	} {
		t.Run(dt.String(), func(t *testing.T) {
			typ, err := WriteType(dt)
			require.NoError(t, err)

			got, err := ReadType(toTree(t, typ), dictutils.ChildFields(dt))
			require.NoError(t, err)
			assert.Truef(t, arrow.TypeEqual(dt, got), "got=%v, want=%v", got, dt)
		})
	}
}

func TestWriteTypeVocabulary(t *testing.T) {
	tests := []struct {
		dt   arrow.DataType
		want string
	}{
		{arrow.PrimitiveTypes.Int16, `{"name":"int","isSigned":true,"bitWidth":16}`},
		{arrow.PrimitiveTypes.Uint8, `{"name":"int","isSigned":false,"bitWidth":8}`},
		{arrow.FixedWidthTypes.Float16, `{"name":"floatingpoint","precision":"HALF"}`},
		{arrow.FixedWidthTypes.Date64, `{"name":"date","unit":"MILLISECOND"}`},
		{arrow.FixedWidthTypes.Time32ms, `{"name":"time","bitWidth":32,"unit":"MILLISECOND"}`},
		{&arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}, `{"name":"timestamp","unit":"NANOSECOND","timezone":"UTC"}`},
		{arrow.FixedWidthTypes.MonthDayNanoInterval, `{"name":"interval","unit":"MONTH_DAY_NANO"}`},
		{&arrow.Decimal128Type{Precision: 5, Scale: 0}, `{"name":"decimal","bitWidth":128,"precision":5,"scale":0}`},
		{&arrow.FixedSizeBinaryType{ByteWidth: 0}, `{"name":"fixedsizebinary","byteWidth":0}`},
		{arrow.FixedSizeListOf(2, arrow.Null), `{"name":"fixedsizelist","listSize":2}`},
		{arrow.DenseUnionOf(nil, nil), `{"name":"union","mode":"DENSE"}`},
		{&arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}, `{"name":"utf8"}`},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			typ, err := WriteType(tt.dt)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, marshal(t, typ))
		})
	}
}

func TestReadTypeErrors(t *testing.T) {
	int32Field := []arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int32}}
	tests := []struct {
		name     string
		doc      string
		children []arrow.Field
		want     error
		msg      string
	}{
		{"unknown name", `{"name": "frobnicate"}`, nil, ErrUnsupportedType, "frobnicate"},
		{"missing name", `{"bitWidth": 8}`, nil, ErrFieldNotFound, `"name"`},
		{"int width", `{"name": "int", "bitWidth": 12, "isSigned": true}`, nil, ErrUnsupportedType, "bitWidth 12"},
		{"int sign", `{"name": "int", "bitWidth": 8}`, nil, ErrFieldNotFound, `"isSigned"`},
		{"int width kind", `{"name": "int", "bitWidth": "8", "isSigned": true}`, nil, ErrTypeMismatch, `"bitWidth"`},
		{"float precision", `{"name": "floatingpoint", "precision": "QUAD"}`, nil, ErrUnsupportedType, "QUAD"},
		{"date unit", `{"name": "date", "unit": "SECOND"}`, nil, ErrUnsupportedType, "SECOND"},
		{"time width", `{"name": "time", "unit": "NANOSECOND", "bitWidth": 32}`, nil, ErrUnsupportedType, "bitWidth 32"},
		{"timestamp unit", `{"name": "timestamp", "unit": "FORTNIGHT"}`, nil, ErrUnsupportedType, "FORTNIGHT"},
		{"interval unit", `{"name": "interval", "unit": "DAY"}`, nil, ErrUnsupportedType, "DAY"},
		{"decimal precision", `{"name": "decimal", "precision": 39, "scale": 0}`, nil, ErrUnsupportedType, "precision 39"},
		{"decimal width", `{"name": "decimal", "precision": 3, "scale": 0, "bitWidth": 64}`, nil, ErrUnsupportedType, "bitWidth 64"},
		{"list children", `{"name": "list"}`, nil, ErrTypeMismatch, "expects 1 child"},
		{"fixedsizelist size", `{"name": "fixedsizelist"}`, int32Field, ErrFieldNotFound, `"listSize"`},
		{"map entries", `{"name": "map", "keysSorted": false}`, int32Field, ErrTypeMismatch, "map entries"},
		{"union ids count", `{"name": "union", "mode": "SPARSE", "typeIds": [1, 2]}`, int32Field, ErrTypeMismatch, "2 typeIds for 1 children"},
		{"union id range", `{"name": "union", "mode": "SPARSE", "typeIds": [128]}`, int32Field, ErrUnsupportedType, "type id 128"},
		{"union mode", `{"name": "union", "mode": "PACKED", "typeIds": [0]}`, int32Field, ErrUnsupportedType, "PACKED"},
		{"union missing ids", `{"name": "union", "mode": "DENSE"}`, int32Field, ErrFieldNotFound, `"typeIds"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadType(parse(t, tt.doc), tt.children)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteTypeUnsupported(t *testing.T) {
	_, err := WriteType(arrow.BinaryTypes.StringView)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
