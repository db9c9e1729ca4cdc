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

	"github.com/apache/arrow-go/v18/arrow"
)

// Type is the JSON form of a type descriptor. Only the members relevant to
// the type family named by Name are set; child types travel in the enclosing
// Field's Children.
type Type struct {
	Name       string `json:"name"`
	Signed     *bool  `json:"isSigned,omitempty"`
	BitWidth   int    `json:"bitWidth,omitempty"`
	Precision  any    `json:"precision,omitempty"` // "HALF"/"SINGLE"/"DOUBLE" or decimal digits
	Scale      *int32 `json:"scale,omitempty"`
	ByteWidth  *int   `json:"byteWidth,omitempty"`
	ListSize   *int32 `json:"listSize,omitempty"`
	Unit       string `json:"unit,omitempty"`
	TimeZone   string `json:"timezone,omitempty"`
	KeysSorted *bool  `json:"keysSorted,omitempty"`
	Mode       string `json:"mode,omitempty"`
	TypeIDs    []int  `json:"typeIds,omitempty"`
}

const (
	precisionHalf   = "HALF"
	precisionSingle = "SINGLE"
	precisionDouble = "DOUBLE"

	unitDay          = "DAY"
	unitSecond       = "SECOND"
	unitMillisecond  = "MILLISECOND"
	unitMicrosecond  = "MICROSECOND"
	unitNanosecond   = "NANOSECOND"
	unitYearMonth    = "YEAR_MONTH"
	unitDayTime      = "DAY_TIME"
	unitMonthDayNano = "MONTH_DAY_NANO"

	modeSparse = "SPARSE"
	modeDense  = "DENSE"
)

var timeUnitNames = map[arrow.TimeUnit]string{
	arrow.Second:      unitSecond,
	arrow.Millisecond: unitMillisecond,
	arrow.Microsecond: unitMicrosecond,
	arrow.Nanosecond:  unitNanosecond,
}

func intType(bitWidth int, signed bool) Type {
	return Type{Name: "int", Signed: &signed, BitWidth: bitWidth}
}

// WriteType encodes dt. For a dictionary type the value type is encoded;
// the index type belongs to the field's "dictionary" member.
func WriteType(dt arrow.DataType) (Type, error) {
	switch dt := dt.(type) {
	case *arrow.NullType:
		return Type{Name: "null"}, nil
	case *arrow.BooleanType:
		return Type{Name: "bool"}, nil
	case *arrow.Int8Type:
		return intType(8, true), nil
	case *arrow.Int16Type:
		return intType(16, true), nil
	case *arrow.Int32Type:
		return intType(32, true), nil
	case *arrow.Int64Type:
		return intType(64, true), nil
	case *arrow.Uint8Type:
		return intType(8, false), nil
	case *arrow.Uint16Type:
		return intType(16, false), nil
	case *arrow.Uint32Type:
		return intType(32, false), nil
	case *arrow.Uint64Type:
		return intType(64, false), nil
	case *arrow.Float16Type:
		return Type{Name: "floatingpoint", Precision: precisionHalf}, nil
	case *arrow.Float32Type:
		return Type{Name: "floatingpoint", Precision: precisionSingle}, nil
	case *arrow.Float64Type:
		return Type{Name: "floatingpoint", Precision: precisionDouble}, nil
	case *arrow.StringType:
		return Type{Name: "utf8"}, nil
	case *arrow.LargeStringType:
		return Type{Name: "largeutf8"}, nil
	case *arrow.BinaryType:
		return Type{Name: "binary"}, nil
	case *arrow.LargeBinaryType:
		return Type{Name: "largebinary"}, nil
	case *arrow.FixedSizeBinaryType:
		w := dt.ByteWidth
		return Type{Name: "fixedsizebinary", ByteWidth: &w}, nil
	case *arrow.Date32Type:
		return Type{Name: "date", Unit: unitDay}, nil
	case *arrow.Date64Type:
		return Type{Name: "date", Unit: unitMillisecond}, nil
	case *arrow.Time32Type:
		return Type{Name: "time", Unit: timeUnitNames[dt.Unit], BitWidth: 32}, nil
	case *arrow.Time64Type:
		return Type{Name: "time", Unit: timeUnitNames[dt.Unit], BitWidth: 64}, nil
	case *arrow.TimestampType:
		return Type{Name: "timestamp", Unit: timeUnitNames[dt.Unit], TimeZone: dt.TimeZone}, nil
	case *arrow.DurationType:
		return Type{Name: "duration", Unit: timeUnitNames[dt.Unit]}, nil
	case *arrow.MonthIntervalType:
		return Type{Name: "interval", Unit: unitYearMonth}, nil
	case *arrow.DayTimeIntervalType:
		return Type{Name: "interval", Unit: unitDayTime}, nil
	case *arrow.MonthDayNanoIntervalType:
		return Type{Name: "interval", Unit: unitMonthDayNano}, nil
	case *arrow.Decimal128Type:
		scale := dt.Scale
		return Type{Name: "decimal", Precision: dt.Precision, Scale: &scale, BitWidth: 128}, nil
	case *arrow.Decimal256Type:
		scale := dt.Scale
		return Type{Name: "decimal", Precision: dt.Precision, Scale: &scale, BitWidth: 256}, nil
	case *arrow.ListType:
		return Type{Name: "list"}, nil
	case *arrow.LargeListType:
		return Type{Name: "largelist"}, nil
	case *arrow.FixedSizeListType:
		n := dt.Len()
		return Type{Name: "fixedsizelist", ListSize: &n}, nil
	case *arrow.StructType:
		return Type{Name: "struct"}, nil
	case *arrow.MapType:
		sorted := dt.KeysSorted
		return Type{Name: "map", KeysSorted: &sorted}, nil
	case arrow.UnionType:
		o := Type{Name: "union", Mode: modeSparse, TypeIDs: make([]int, len(dt.TypeCodes()))}
		if dt.Mode() == arrow.DenseMode {
			o.Mode = modeDense
		}
		for i, c := range dt.TypeCodes() {
			o.TypeIDs[i] = int(c)
		}
		return o, nil
	case *arrow.DictionaryType:
		return WriteType(dt.ValueType)
	}
	return Type{}, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
}

func badParam(family, param string, v any) error {
	return fmt.Errorf("%w: %s with %s %v", ErrUnsupportedType, family, param, v)
}

// ReadType decodes a type node. children are the already decoded fields of
// the sibling "children" member; container types require them, leaf types
// ignore them.
func ReadType(obj map[string]any, children []arrow.Field) (arrow.DataType, error) {
	name, err := requireString(kName, obj)
	if err != nil {
		return nil, err
	}

	switch name {
	case "null":
		return arrow.Null, nil
	case "bool":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int":
		return readIntType(obj)
	case "floatingpoint":
		precision, err := requireString("precision", obj)
		if err != nil {
			return nil, err
		}
		switch precision {
		case precisionHalf:
			return arrow.FixedWidthTypes.Float16, nil
		case precisionSingle:
			return arrow.PrimitiveTypes.Float32, nil
		case precisionDouble:
			return arrow.PrimitiveTypes.Float64, nil
		}
		return nil, badParam(name, "precision", precision)
	case "utf8":
		return arrow.BinaryTypes.String, nil
	case "largeutf8":
		return arrow.BinaryTypes.LargeString, nil
	case "binary":
		return arrow.BinaryTypes.Binary, nil
	case "largebinary":
		return arrow.BinaryTypes.LargeBinary, nil
	case "fixedsizebinary":
		width, err := requireInt("byteWidth", obj)
		if err != nil {
			return nil, err
		}
		if width < 0 || width > 1<<31-1 {
			return nil, badParam(name, "byteWidth", width)
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: int(width)}, nil
	case "date":
		unit, err := requireString("unit", obj)
		if err != nil {
			return nil, err
		}
		switch unit {
		case unitDay:
			return arrow.FixedWidthTypes.Date32, nil
		case unitMillisecond:
			return arrow.FixedWidthTypes.Date64, nil
		}
		return nil, badParam(name, "unit", unit)
	case "time":
		return readTimeType(obj)
	case "timestamp":
		unit, err := readTimeUnit(name, obj)
		if err != nil {
			return nil, err
		}
		tz, _, err := optionalString("timezone", obj)
		if err != nil {
			return nil, err
		}
		return &arrow.TimestampType{Unit: unit, TimeZone: tz}, nil
	case "duration":
		unit, err := readTimeUnit(name, obj)
		if err != nil {
			return nil, err
		}
		return &arrow.DurationType{Unit: unit}, nil
	case "interval":
		unit, err := requireString("unit", obj)
		if err != nil {
			return nil, err
		}
		switch unit {
		case unitYearMonth:
			return arrow.FixedWidthTypes.MonthInterval, nil
		case unitDayTime:
			return arrow.FixedWidthTypes.DayTimeInterval, nil
		case unitMonthDayNano:
			return arrow.FixedWidthTypes.MonthDayNanoInterval, nil
		}
		return nil, badParam(name, "unit", unit)
	case "decimal":
		return readDecimalType(obj)
	case "list":
		if err := wantChildren(name, children, 1); err != nil {
			return nil, err
		}
		return arrow.ListOfField(children[0]), nil
	case "largelist":
		if err := wantChildren(name, children, 1); err != nil {
			return nil, err
		}
		return arrow.LargeListOfField(children[0]), nil
	case "fixedsizelist":
		size, err := requireInt("listSize", obj)
		if err != nil {
			return nil, err
		}
		if size < 0 || size > 1<<31-1 {
			return nil, badParam(name, "listSize", size)
		}
		if err := wantChildren(name, children, 1); err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOfField(int32(size), children[0]), nil
	case "struct":
		return arrow.StructOf(children...), nil
	case "map":
		return readMapType(obj, children)
	case "union":
		return readUnionType(obj, children)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

func wantChildren(family string, children []arrow.Field, n int) error {
	if len(children) != n {
		return fmt.Errorf("%w: %s expects %d child field(s), got %d", ErrTypeMismatch, family, n, len(children))
	}
	return nil
}

func readIntType(obj map[string]any) (arrow.DataType, error) {
	width, err := requireInt("bitWidth", obj)
	if err != nil {
		return nil, err
	}
	signed, err := requireBool("isSigned", obj)
	if err != nil {
		return nil, err
	}
	switch {
	case signed && width == 8:
		return arrow.PrimitiveTypes.Int8, nil
	case signed && width == 16:
		return arrow.PrimitiveTypes.Int16, nil
	case signed && width == 32:
		return arrow.PrimitiveTypes.Int32, nil
	case signed && width == 64:
		return arrow.PrimitiveTypes.Int64, nil
	case !signed && width == 8:
		return arrow.PrimitiveTypes.Uint8, nil
	case !signed && width == 16:
		return arrow.PrimitiveTypes.Uint16, nil
	case !signed && width == 32:
		return arrow.PrimitiveTypes.Uint32, nil
	case !signed && width == 64:
		return arrow.PrimitiveTypes.Uint64, nil
	}
	return nil, badParam("int", "bitWidth", width)
}

func readTimeUnit(family string, obj map[string]any) (arrow.TimeUnit, error) {
	unit, err := requireString("unit", obj)
	if err != nil {
		return 0, err
	}
	for tu, s := range timeUnitNames {
		if s == unit {
			return tu, nil
		}
	}
	return 0, badParam(family, "unit", unit)
}

func readTimeType(obj map[string]any) (arrow.DataType, error) {
	unit, err := readTimeUnit("time", obj)
	if err != nil {
		return nil, err
	}
	width, err := requireInt("bitWidth", obj)
	if err != nil {
		return nil, err
	}
	switch {
	case width == 32 && (unit == arrow.Second || unit == arrow.Millisecond):
		return &arrow.Time32Type{Unit: unit}, nil
	case width == 64 && (unit == arrow.Microsecond || unit == arrow.Nanosecond):
		return &arrow.Time64Type{Unit: unit}, nil
	}
	return nil, fmt.Errorf("%w: time with unit %s and bitWidth %d", ErrUnsupportedType, timeUnitNames[unit], width)
}

func readDecimalType(obj map[string]any) (arrow.DataType, error) {
	precision, err := requireInt("precision", obj)
	if err != nil {
		return nil, err
	}
	scale, err := requireInt("scale", obj)
	if err != nil {
		return nil, err
	}
	width, ok, err := optionalInt("bitWidth", obj)
	if err != nil {
		return nil, err
	}
	if !ok {
		width = 128
	}
	if scale < -(1<<31) || scale > 1<<31-1 {
		return nil, badParam("decimal", "scale", scale)
	}
	switch width {
	case 128:
		if precision < 1 || precision > 38 {
			return nil, badParam("decimal128", "precision", precision)
		}
		return &arrow.Decimal128Type{Precision: int32(precision), Scale: int32(scale)}, nil
	case 256:
		if precision < 1 || precision > 76 {
			return nil, badParam("decimal256", "precision", precision)
		}
		return &arrow.Decimal256Type{Precision: int32(precision), Scale: int32(scale)}, nil
	}
	return nil, badParam("decimal", "bitWidth", width)
}

func readMapType(obj map[string]any, children []arrow.Field) (arrow.DataType, error) {
	sorted, err := requireBool("keysSorted", obj)
	if err != nil {
		return nil, err
	}
	if err := wantChildren("map", children, 1); err != nil {
		return nil, err
	}
	entries, ok := children[0].Type.(*arrow.StructType)
	if !ok || entries.NumFields() != 2 {
		return nil, fmt.Errorf("%w: map entries must be a struct of key and value, got %s", ErrTypeMismatch, children[0].Type)
	}
	key, item := entries.Field(0), entries.Field(1)
	if key.Nullable {
		return nil, fmt.Errorf("%w: map keys must not be nullable", ErrTypeMismatch)
	}
	mt := arrow.MapOfWithMetadata(key.Type, key.Metadata, item.Type, item.Metadata)
	mt.KeysSorted = sorted
	mt.SetItemNullable(item.Nullable)
	return mt, nil
}

func readUnionType(obj map[string]any, children []arrow.Field) (arrow.DataType, error) {
	mode, err := requireString("mode", obj)
	if err != nil {
		return nil, err
	}
	ids, ok, err := optionalArray("typeIds", obj)
	if err != nil {
		return nil, err
	}
	if !ok && len(children) > 0 {
		return nil, notFound("typeIds")
	}
	if len(ids) != len(children) {
		return nil, fmt.Errorf("%w: union has %d typeIds for %d children", ErrTypeMismatch, len(ids), len(children))
	}

	codes := make([]arrow.UnionTypeCode, len(ids))
	seen := make(map[int64]bool, len(ids))
	for i, v := range ids {
		code, ok := intValue(v)
		if !ok {
			return nil, fmt.Errorf("%w: typeIds[%d] was not an int (got %s)", ErrTypeMismatch, i, kindOf(v))
		}
		if code < 0 || code > int64(arrow.MaxUnionTypeCode) || seen[code] {
			return nil, badParam("union", "type id", code)
		}
		seen[code] = true
		codes[i] = arrow.UnionTypeCode(code)
	}

	switch mode {
	case modeSparse:
		return arrow.SparseUnionOf(children, codes), nil
	case modeDense:
		return arrow.DenseUnionOf(children, codes), nil
	}
	return nil, badParam("union", "mode", mode)
}
