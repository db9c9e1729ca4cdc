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
	"math/big"

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/decimal256"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"golang.org/x/exp/constraints"
)

type readContext struct {
	mem      memory.Allocator
	memo     *DictionaryMemo
	maxDepth int
}

func newReadContext(memo *DictionaryMemo, cfg *config) *readContext {
	return &readContext{mem: cfg.alloc, memo: memo, maxDepth: cfg.maxDepth}
}

// ReadArray decodes a single column. The column's "name" selects the field
// of schema it is decoded against. Dictionary-encoded columns need their
// dictionary bound in memo beforehand.
func ReadArray(obj map[string]any, schema *arrow.Schema, memo *DictionaryMemo, opts ...Option) (arrow.Array, error) {
	name, err := requireString(kName, obj)
	if err != nil {
		return nil, err
	}
	idx := schema.FieldIndices(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: no field named %q in schema", ErrFieldNotFound, name)
	}
	opts = append(opts[:len(opts):len(opts)], WithFieldPath(idx[0]))
	return ReadFieldArray(obj, schema.Field(idx[0]), memo, opts...)
}

// ReadFieldArray decodes a single column against field. The column's "name"
// must match the field's. WithFieldPath locates dictionary-encoded columns;
// it defaults to the first top-level column.
func ReadFieldArray(obj map[string]any, field arrow.Field, memo *DictionaryMemo, opts ...Option) (arrow.Array, error) {
	cfg := newConfig(opts...)
	ctx := newReadContext(memo, cfg)
	return ctx.readArray(obj, field, cfg.path, []string{field.Name}, 1, -1)
}

// readArray decodes obj against field. want is the row count imposed by the
// parent, or -1 when the parent does not constrain it.
func (ctx *readContext) readArray(obj map[string]any, field arrow.Field, fpath dictutils.FieldPath, cpath []string, depth, want int) (arrow.Array, error) {
	arr, err := ctx.readArrayBody(obj, field, fpath, cpath, depth, want)
	if err != nil {
		return nil, withPath("column", cpath, err)
	}
	return arr, nil
}

func (ctx *readContext) readArrayBody(obj map[string]any, field arrow.Field, fpath dictutils.FieldPath, cpath []string, depth, want int) (arrow.Array, error) {
	if depth > ctx.maxDepth {
		return nil, fmt.Errorf("%w: arrays nested deeper than %d", ErrEncoding, ctx.maxDepth)
	}

	name, err := requireString(kName, obj)
	if err != nil {
		return nil, err
	}
	if name != field.Name {
		return nil, fmt.Errorf("%w: column is named %q, field is %q", ErrRowCountMismatch, name, field.Name)
	}
	count64, err := requireInt(kCount, obj)
	if err != nil {
		return nil, err
	}
	if count64 < 0 || count64 > math.MaxInt32 {
		return nil, fmt.Errorf("%w: invalid count %d", ErrEncoding, count64)
	}
	n := int(count64)
	if want >= 0 && n != want {
		return nil, fmt.Errorf("%w: count is %d, expected %d", ErrRowCountMismatch, n, want)
	}

	dt := field.Type
	switch dt.ID() {
	case arrow.NULL:
		return array.NewNull(n), nil
	case arrow.SPARSE_UNION, arrow.DENSE_UNION:
		return ctx.readUnion(obj, dt.(arrow.UnionType), n, fpath, cpath, depth)
	}

	valid, nulls, err := readValidity(obj, n)
	if err != nil {
		return nil, err
	}

	switch dt := dt.(type) {
	case *arrow.DictionaryType:
		return ctx.readDictionaryIndices(obj, dt, n, valid, nulls, fpath)
	case *arrow.BinaryType, *arrow.StringType:
		return ctx.readBinary(obj, dt, n, valid, nulls, false)
	case *arrow.LargeBinaryType, *arrow.LargeStringType:
		return ctx.readBinary(obj, dt, n, valid, nulls, true)
	case *arrow.ListType, *arrow.MapType:
		return ctx.readList(obj, dt, n, valid, nulls, false, fpath, cpath, depth)
	case *arrow.LargeListType:
		return ctx.readList(obj, dt, n, valid, nulls, true, fpath, cpath, depth)
	case *arrow.FixedSizeListType:
		children, err := ctx.readChildren(obj, dt, fpath, cpath, depth, func(int) int { return n * int(dt.Len()) })
		if err != nil {
			return nil, err
		}
		defer releaseAll(children)
		return ctx.makeArray(dt, n, valid, nulls, nil, children), nil
	case *arrow.StructType:
		children, err := ctx.readChildren(obj, dt, fpath, cpath, depth, func(int) int { return n })
		if err != nil {
			return nil, err
		}
		defer releaseAll(children)
		return ctx.makeArray(dt, n, valid, nulls, nil, children), nil
	}

	data, err := dataMember(obj, n)
	if err != nil {
		return nil, err
	}
	payload, err := readFixedWidth(dt, data, valid)
	if err != nil {
		return nil, err
	}
	return ctx.makeArray(dt, n, valid, nulls, [][]byte{payload}, nil), nil
}

func releaseAll(arrs []arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}

// makeArray copies the validity bitmap and payload buffers into memory
// owned by the context's allocator and assembles the array.
func (ctx *readContext) makeArray(dt arrow.DataType, n int, valid []bool, nulls int, payload [][]byte, children []arrow.Array) arrow.Array {
	bufs := make([]*memory.Buffer, 1+len(payload))
	if nulls > 0 {
		bufs[0] = ctx.bitmap(valid)
	}
	for i, p := range payload {
		bufs[i+1] = ctx.buffer(p)
	}
	childData := make([]arrow.ArrayData, len(children))
	for j, c := range children {
		childData[j] = c.Data()
	}

	data := array.NewData(dt, n, bufs, childData, nulls, 0)
	defer data.Release()
	for _, b := range bufs {
		if b != nil {
			b.Release()
		}
	}
	return array.MakeFromData(data)
}

func (ctx *readContext) buffer(b []byte) *memory.Buffer {
	buf := memory.NewResizableBuffer(ctx.mem)
	buf.Resize(len(b))
	copy(buf.Bytes(), b)
	return buf
}

func (ctx *readContext) bitmap(bits []bool) *memory.Buffer {
	return ctx.buffer(packBits(bits))
}

func packBits(bits []bool) []byte {
	out := make([]byte, bitutil.BytesForBits(int64(len(bits))))
	for i, b := range bits {
		if b {
			bitutil.SetBit(out, i)
		}
	}
	return out
}

// readValidity returns one flag per row and the number of nulls. A column
// without VALIDITY has no nulls.
func readValidity(obj map[string]any, n int) ([]bool, int, error) {
	valid := make([]bool, n)
	elems, ok, err := optionalArray(kValidity, obj)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		for i := range valid {
			valid[i] = true
		}
		return valid, 0, nil
	}
	if len(elems) != n {
		return nil, 0, fmt.Errorf("%w: %d entries for %d rows", ErrValidityLengthMismatch, len(elems), n)
	}

	nulls := 0
	for i, v := range elems {
		bit, ok := intValue(v)
		switch {
		case !ok:
			return nil, 0, fmt.Errorf("%w: %s[%d] was not an int (got %s)", ErrTypeMismatch, kValidity, i, kindOf(v))
		case bit == 1:
			valid[i] = true
		case bit == 0:
			nulls++
		default:
			return nil, 0, fmt.Errorf("%w: %s[%d] is %d, expected 0 or 1", ErrEncoding, kValidity, i, bit)
		}
	}
	return valid, nulls, nil
}

// dataMember returns the DATA member. It may only be absent for an empty
// column.
func dataMember(obj map[string]any, n int) ([]any, error) {
	data, ok, err := optionalArray(kData, obj)
	if err != nil {
		return nil, err
	}
	if !ok {
		if n == 0 {
			return nil, nil
		}
		return nil, notFound(kData)
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %s has %d entries for %d rows", ErrRowCountMismatch, kData, len(data), n)
	}
	return data, nil
}

// readValues parses the entries of valid rows. Entries of null rows are
// never looked at and decode as the zero value.
func readValues[T any](data []any, valid []bool, parse func(any) (T, error)) ([]T, error) {
	out := make([]T, len(data))
	for i, v := range data {
		if !valid[i] {
			continue
		}
		x, err := parse(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kData, i, err)
		}
		out[i] = x
	}
	return out, nil
}

func readFixed[T any](data []any, valid []bool, parse func(any) (T, error), toBytes func([]T) []byte) ([]byte, error) {
	vals, err := readValues(data, valid, parse)
	if err != nil {
		return nil, err
	}
	return toBytes(vals), nil
}

func signed[T constraints.Signed](bits int) func(any) (T, error) {
	return func(v any) (T, error) {
		n, err := asInt(v, bits)
		return T(n), err
	}
}

func unsigned[T constraints.Unsigned](bits int) func(any) (T, error) {
	return func(v any) (T, error) {
		n, err := asUint(v, bits)
		return T(n), err
	}
}

func readFixedWidth(dt arrow.DataType, data []any, valid []bool) ([]byte, error) {
	switch dt := dt.(type) {
	case *arrow.BooleanType:
		vals, err := readValues(data, valid, asBool)
		if err != nil {
			return nil, err
		}
		return packBits(vals), nil
	case *arrow.Int8Type:
		return readFixed(data, valid, signed[int8](8), arrow.Int8Traits.CastToBytes)
	case *arrow.Int16Type:
		return readFixed(data, valid, signed[int16](16), arrow.Int16Traits.CastToBytes)
	case *arrow.Int32Type:
		return readFixed(data, valid, signed[int32](32), arrow.Int32Traits.CastToBytes)
	case *arrow.Int64Type:
		return readFixed(data, valid, signed[int64](64), arrow.Int64Traits.CastToBytes)
	case *arrow.Uint8Type:
		return readFixed(data, valid, unsigned[uint8](8), arrow.Uint8Traits.CastToBytes)
	case *arrow.Uint16Type:
		return readFixed(data, valid, unsigned[uint16](16), arrow.Uint16Traits.CastToBytes)
	case *arrow.Uint32Type:
		return readFixed(data, valid, unsigned[uint32](32), arrow.Uint32Traits.CastToBytes)
	case *arrow.Uint64Type:
		return readFixed(data, valid, unsigned[uint64](64), arrow.Uint64Traits.CastToBytes)
	case *arrow.Float16Type:
		return readFixed(data, valid, func(v any) (float16.Num, error) {
			f, err := asFloat(v, 32)
			return float16.New(float32(f)), err
		}, arrow.Float16Traits.CastToBytes)
	case *arrow.Float32Type:
		return readFixed(data, valid, func(v any) (float32, error) {
			f, err := asFloat(v, 32)
			return float32(f), err
		}, arrow.Float32Traits.CastToBytes)
	case *arrow.Float64Type:
		return readFixed(data, valid, func(v any) (float64, error) { return asFloat(v, 64) }, arrow.Float64Traits.CastToBytes)
	case *arrow.FixedSizeBinaryType:
		out := make([]byte, len(data)*dt.ByteWidth)
		for i, v := range data {
			if !valid[i] {
				continue
			}
			b, err := decodeHex(v)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", kData, i, err)
			}
			if len(b) != dt.ByteWidth {
				return nil, fmt.Errorf("%s[%d]: %w: %d bytes for width %d", kData, i, ErrEncoding, len(b), dt.ByteWidth)
			}
			copy(out[i*dt.ByteWidth:], b)
		}
		return out, nil
	case *arrow.Date32Type:
		return readFixed(data, valid, signed[arrow.Date32](32), arrow.Date32Traits.CastToBytes)
	case *arrow.Date64Type:
		return readFixed(data, valid, signed[arrow.Date64](64), arrow.Date64Traits.CastToBytes)
	case *arrow.Time32Type:
		return readFixed(data, valid, signed[arrow.Time32](32), arrow.Time32Traits.CastToBytes)
	case *arrow.Time64Type:
		return readFixed(data, valid, signed[arrow.Time64](64), arrow.Time64Traits.CastToBytes)
	case *arrow.TimestampType:
		return readFixed(data, valid, signed[arrow.Timestamp](64), arrow.TimestampTraits.CastToBytes)
	case *arrow.DurationType:
		return readFixed(data, valid, signed[arrow.Duration](64), arrow.DurationTraits.CastToBytes)
	case *arrow.MonthIntervalType:
		return readFixed(data, valid, signed[arrow.MonthInterval](32), arrow.MonthIntervalTraits.CastToBytes)
	case *arrow.DayTimeIntervalType:
		return readFixed(data, valid, readDayTime, arrow.DayTimeIntervalTraits.CastToBytes)
	case *arrow.MonthDayNanoIntervalType:
		return readFixed(data, valid, readMonthDayNano, arrow.MonthDayNanoIntervalTraits.CastToBytes)
	case *arrow.Decimal128Type:
		return readFixed(data, valid, func(v any) (decimal128.Num, error) {
			b, err := readDecimal(v, dt.Precision, 128)
			if err != nil {
				return decimal128.Num{}, err
			}
			return decimal128.FromBigInt(b), nil
		}, arrow.Decimal128Traits.CastToBytes)
	case *arrow.Decimal256Type:
		return readFixed(data, valid, func(v any) (decimal256.Num, error) {
			b, err := readDecimal(v, dt.Precision, 256)
			if err != nil {
				return decimal256.Num{}, err
			}
			return decimal256.FromBigInt(b), nil
		}, arrow.Decimal256Traits.CastToBytes)
	}
	return nil, fmt.Errorf("%w: cannot decode arrays of type %s", ErrUnsupportedType, dt)
}

func decodeHex(v any) ([]byte, error) {
	var s string
	switch v := v.(type) {
	case json.Number:
		// hex made only of digits may have been written unquoted.
		s = string(v)
	default:
		var err error
		if s, err = asString(v); err != nil {
			return nil, err
		}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not valid hex", ErrEncoding, s)
	}
	return b, nil
}

func intMember(key string, obj map[string]any, bits int) (int64, error) {
	v, err := lookup(key, obj)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func readDayTime(v any) (arrow.DayTimeInterval, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return arrow.DayTimeInterval{}, fmt.Errorf("%w: expected an object, got %s", ErrTypeMismatch, kindOf(v))
	}
	days, err := intMember(kDays, obj, 32)
	if err != nil {
		return arrow.DayTimeInterval{}, err
	}
	ms, err := intMember(kMilliseconds, obj, 32)
	if err != nil {
		return arrow.DayTimeInterval{}, err
	}
	return arrow.DayTimeInterval{Days: int32(days), Milliseconds: int32(ms)}, nil
}

func readMonthDayNano(v any) (arrow.MonthDayNanoInterval, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return arrow.MonthDayNanoInterval{}, fmt.Errorf("%w: expected an object, got %s", ErrTypeMismatch, kindOf(v))
	}
	months, err := intMember(kMonths, obj, 32)
	if err != nil {
		return arrow.MonthDayNanoInterval{}, err
	}
	days, err := intMember(kDays, obj, 32)
	if err != nil {
		return arrow.MonthDayNanoInterval{}, err
	}
	ns, err := intMember(kNanoseconds, obj, 64)
	if err != nil {
		return arrow.MonthDayNanoInterval{}, err
	}
	return arrow.MonthDayNanoInterval{Months: int32(months), Days: int32(days), Nanoseconds: ns}, nil
}

// readDecimal parses the unscaled integer of a decimal and checks that it
// fits both the declared precision and the storage width.
func readDecimal(v any, precision int32, bits int) (*big.Int, error) {
	lit, err := integerLiteral(v)
	if err != nil {
		return nil, err
	}
	b, ok := new(big.Int).SetString(lit, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a valid decimal%d literal", ErrEncoding, lit, bits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	if new(big.Int).Abs(b).Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: %s does not fit precision %d", ErrEncoding, lit, precision)
	}
	return b, nil
}

// readOffsets reads the OFFSETS member (OFFSET is accepted as well) of a
// column with n rows. want is the number of entries: n+1 for list-like
// layouts, n for dense unions.
func readOffsets(obj map[string]any, n, want, bits int) ([]int64, error) {
	key := kOffsets
	elems, ok, err := optionalArray(key, obj)
	if err == nil && !ok {
		key = kOffsetLegacy
		elems, ok, err = optionalArray(key, obj)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		if n == 0 {
			return make([]int64, want), nil
		}
		return nil, notFound(kOffsets)
	}
	if len(elems) != want {
		return nil, fmt.Errorf("%w: %s has %d entries, expected %d", ErrRowCountMismatch, key, len(elems), want)
	}

	out := make([]int64, len(elems))
	for i, v := range elems {
		out[i], err = asInt(v, bits)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
	}
	return out, nil
}

// checkOffsets verifies that list-like offsets are non-negative,
// non-decreasing and end within limit.
func checkOffsets(offsets []int64, limit int64) error {
	for i, off := range offsets {
		switch {
		case off < 0:
			return fmt.Errorf("%w: negative offset %d at %d", ErrEncoding, off, i)
		case i > 0 && off < offsets[i-1]:
			return fmt.Errorf("%w: offset %d at %d is below the previous one", ErrEncoding, off, i)
		case off > limit:
			return fmt.Errorf("%w: offset %d at %d is beyond the %d child values", ErrEncoding, off, i, limit)
		}
	}
	return nil
}

func offsetBytes(offsets []int64, large bool) []byte {
	if large {
		return arrow.Int64Traits.CastToBytes(offsets)
	}
	o32 := make([]int32, len(offsets))
	for i, v := range offsets {
		o32[i] = int32(v)
	}
	return arrow.Int32Traits.CastToBytes(o32)
}

func (ctx *readContext) readBinary(obj map[string]any, dt arrow.DataType, n int, valid []bool, nulls int, large bool) (arrow.Array, error) {
	data, err := dataMember(obj, n)
	if err != nil {
		return nil, err
	}

	isText := dt.ID() == arrow.STRING || dt.ID() == arrow.LARGE_STRING
	var values []byte
	offsets := make([]int64, n+1)
	for i, v := range data {
		if valid[i] {
			var b []byte
			if isText {
				s, err := asString(v)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", kData, i, err)
				}
				b = []byte(s)
			} else if b, err = decodeHex(v); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", kData, i, err)
			}
			values = append(values, b...)
		}
		offsets[i+1] = int64(len(values))
	}
	if !large && len(values) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d bytes of values exceed 32-bit offsets", ErrEncoding, len(values))
	}

	return ctx.makeArray(dt, n, valid, nulls, [][]byte{offsetBytes(offsets, large), values}, nil), nil
}

func (ctx *readContext) readList(obj map[string]any, dt arrow.DataType, n int, valid []bool, nulls int, large bool, fpath dictutils.FieldPath, cpath []string, depth int) (arrow.Array, error) {
	bits := 32
	if large {
		bits = 64
	}
	offsets, err := readOffsets(obj, n, n+1, bits)
	if err != nil {
		return nil, err
	}

	children, err := ctx.readChildren(obj, dt, fpath, cpath, depth, func(int) int { return -1 })
	if err != nil {
		return nil, err
	}
	defer releaseAll(children)

	if err := checkOffsets(offsets, int64(children[0].Len())); err != nil {
		return nil, err
	}
	return ctx.makeArray(dt, n, valid, nulls, [][]byte{offsetBytes(offsets, large)}, children), nil
}

// readChildren decodes the "children" member against the child fields of
// dt. want gives the row count imposed on the j-th child.
func (ctx *readContext) readChildren(obj map[string]any, dt arrow.DataType, fpath dictutils.FieldPath, cpath []string, depth int, want func(j int) int) ([]arrow.Array, error) {
	fields := dictutils.ChildFields(dt)
	elems, _, err := optionalArray(kChildren, obj)
	if err != nil {
		return nil, err
	}
	if len(elems) != len(fields) {
		return nil, fmt.Errorf("%w: %d children for %d fields", ErrRowCountMismatch, len(elems), len(fields))
	}

	out := make([]arrow.Array, len(fields))
	for j, f := range fields {
		cobj, err := elementObject(kChildren, elems, j)
		if err == nil {
			out[j], err = ctx.readArray(cobj, f, fpath.Child(j), append(cpath, f.Name), depth+1, want(j))
		}
		if err != nil {
			releaseAll(out)
			return nil, err
		}
	}
	return out, nil
}

func (ctx *readContext) readUnion(obj map[string]any, dt arrow.UnionType, n int, fpath dictutils.FieldPath, cpath []string, depth int) (arrow.Array, error) {
	valids, ok, err := optionalArray(kValidity, obj)
	if err != nil {
		return nil, err
	}
	if ok {
		// unions have no validity of their own; an all-valid list is tolerated.
		if len(valids) != n {
			return nil, fmt.Errorf("%w: %d entries for %d rows", ErrValidityLengthMismatch, len(valids), n)
		}
		for i, v := range valids {
			if bit, ok := intValue(v); !ok || bit != 1 {
				return nil, fmt.Errorf("%w: union columns cannot have null slots (%s[%d])", ErrEncoding, kValidity, i)
			}
		}
	}

	key := kData
	ids, ok, err := optionalArray(key, obj)
	if err == nil && !ok {
		key = kTypeIDLegacy
		ids, ok, err = optionalArray(key, obj)
	}
	if err != nil {
		return nil, err
	}
	if !ok && n > 0 {
		return nil, notFound(kData)
	}
	if len(ids) != n {
		return nil, fmt.Errorf("%w: %s has %d entries for %d rows", ErrRowCountMismatch, key, len(ids), n)
	}

	childIDs := dt.ChildIDs()
	codes := make([]arrow.UnionTypeCode, n)
	for i, v := range ids {
		code, err := asInt(v, 8)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if code < 0 || childIDs[code] == arrow.InvalidUnionChildID {
			return nil, fmt.Errorf("%w: %s[%d] is %d, not a type id of %s", ErrEncoding, key, i, code, dt)
		}
		codes[i] = arrow.UnionTypeCode(code)
	}

	dense := dt.Mode() == arrow.DenseMode
	var offsets []int64
	if dense {
		if offsets, err = readOffsets(obj, n, n, 32); err != nil {
			return nil, err
		}
	}

	children, err := ctx.readChildren(obj, dt, fpath, cpath, depth, func(int) int {
		if dense {
			return -1
		}
		return n
	})
	if err != nil {
		return nil, err
	}
	defer releaseAll(children)

	payload := [][]byte{arrow.Int8Traits.CastToBytes(codes)}
	if dense {
		for i, off := range offsets {
			child := children[childIDs[codes[i]]]
			if off < 0 || off >= int64(child.Len()) {
				return nil, fmt.Errorf("%w: offset %d at %d is outside child %q of length %d",
					ErrEncoding, off, i, dt.Fields()[childIDs[codes[i]]].Name, child.Len())
			}
		}
		payload = append(payload, offsetBytes(offsets, false))
	}
	return ctx.makeArray(dt, n, nil, 0, payload, children), nil
}

func (ctx *readContext) readDictionaryIndices(obj map[string]any, dt *arrow.DictionaryType, n int, valid []bool, nulls int, fpath dictutils.FieldPath) (arrow.Array, error) {
	if ctx.memo == nil {
		return nil, fmt.Errorf("%w: no dictionary memo for field %v", ErrDictionaryNotFound, fpath)
	}
	id, dict, err := ctx.memo.lookup(fpath)
	if err != nil {
		return nil, err
	}

	data, err := dataMember(obj, n)
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		if !valid[i] {
			continue
		}
		idx, err := asInt(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kData, i, err)
		}
		if idx < 0 || idx >= int64(dict.Len()) {
			return nil, fmt.Errorf("%w: index %d at %d is outside dictionary %d of length %d", ErrEncoding, idx, i, id, dict.Len())
		}
	}
	payload, err := readFixedWidth(dt.IndexType, data, valid)
	if err != nil {
		return nil, err
	}

	indices := ctx.makeArray(dt.IndexType, n, valid, nulls, [][]byte{payload}, nil)
	defer indices.Release()
	return array.NewDictionaryArray(dt, indices, dict), nil
}
