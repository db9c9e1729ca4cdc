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

package dictutils

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldPath(t *testing.T) {
	p := FieldPath{2}
	c := p.Child(0)
	c2 := p.Child(1)
	assert.Equal(t, FieldPath{2}, p)
	assert.Equal(t, FieldPath{2, 0}, c)
	assert.Equal(t, FieldPath{2, 1}, c2)
	assert.Equal(t, "[2.1]", c2.String())
	assert.Equal(t, "[]", FieldPath{}.String())
}

func TestMapper(t *testing.T) {
	var m Mapper
	require.NoError(t, m.AddField(4, FieldPath{0}))
	require.NoError(t, m.AddField(4, FieldPath{2, 1}))
	require.NoError(t, m.AddField(4, FieldPath{0}))
	assert.Error(t, m.AddField(5, FieldPath{0}))

	id, ok := m.GetFieldID(FieldPath{2, 1})
	assert.True(t, ok)
	assert.EqualValues(t, 4, id)
	_, ok = m.GetFieldID(FieldPath{2})
	assert.False(t, ok)

	assert.Equal(t, 2, m.NumFields())
	assert.Equal(t, 1, m.NumDicts())
	assert.Equal(t, []FieldPath{{0}, {2, 1}}, m.FieldsForID(4))
	assert.Empty(t, m.FieldsForID(0))
}

func TestMapperImportSchema(t *testing.T) {
	str := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String}
	nested := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Int32,
		ValueType: arrow.ListOfField(arrow.Field{Name: "item", Type: str, Nullable: true}),
	}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "plain", Type: arrow.PrimitiveTypes.Int64},
		{Name: "s", Type: arrow.StructOf(
			arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int8},
			arrow.Field{Name: "d", Type: str},
		)},
		{Name: "nested", Type: nested},
		{Name: "m", Type: arrow.MapOf(arrow.BinaryTypes.String, str)},
	}, nil)

	var m Mapper
	require.NoError(t, m.AddField(10, FieldPath{2}))
	m.ImportSchema(schema)

	want := map[string]int64{
		"[1.1]":   11,
		"[2]":     10,
		"[2.0]":   12,
		"[3.0.1]": 13,
	}
	assert.Equal(t, len(want), m.NumFields())
	for path, id := range want {
		var fp FieldPath
		for _, part := range strings.Split(strings.Trim(path, "[]"), ".") {
			fp = append(fp, int(part[0]-'0'))
		}
		got, ok := m.GetFieldID(fp)
		assert.True(t, ok, path)
		assert.Equal(t, id, got, path)
	}

	// importing again does not assign new ids.
	m.ImportSchema(schema)
	assert.Equal(t, len(want), m.NumFields())
	assert.Equal(t, 4, m.NumDicts())
}

func TestChildFields(t *testing.T) {
	elem := arrow.Field{Name: "elem", Type: arrow.PrimitiveTypes.Int8}
	union := arrow.SparseUnionOf([]arrow.Field{elem}, []arrow.UnionTypeCode{3})
	for _, tc := range []struct {
		dt   arrow.DataType
		want int
	}{
		{arrow.PrimitiveTypes.Int8, 0},
		{arrow.ListOfField(elem), 1},
		{arrow.LargeListOfField(elem), 1},
		{arrow.FixedSizeListOfField(2, elem), 1},
		{arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int8), 1},
		{arrow.StructOf(elem, arrow.Field{Name: "other", Type: arrow.FixedWidthTypes.Boolean}), 2},
		{union, 1},
		{&arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.StructOf(elem)}, 1},
	} {
		t.Run(tc.dt.String(), func(t *testing.T) {
			assert.Len(t, ChildFields(tc.dt), tc.want)
		})
	}
	assert.Equal(t, "elem", ChildFields(arrow.ListOfField(elem))[0].Name)
}

func TestCollectDictionaries(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: dt},
		{Name: "l", Type: arrow.ListOf(dt)},
	}, nil)

	values, _, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["x", "y"]`))
	require.NoError(t, err)
	defer values.Release()
	idx, _, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int8, strings.NewReader(`[1, 0]`))
	require.NoError(t, err)
	defer idx.Release()

	a := array.NewDictionaryArray(dt, idx, values)
	defer a.Release()
	offsets, _, err := array.FromJSON(mem, arrow.PrimitiveTypes.Int32, strings.NewReader(`[0, 1, 2]`))
	require.NoError(t, err)
	defer offsets.Release()
	ldata := array.NewData(arrow.ListOf(dt), 2, []*memory.Buffer{nil, offsets.Data().Buffers()[1]}, []arrow.ArrayData{a.Data()}, 0, 0)
	defer ldata.Release()
	l := array.MakeFromData(ldata)
	defer l.Release()

	rec := array.NewRecord(schema, []arrow.Array{a, l}, 2)
	defer rec.Release()

	var m Mapper
	m.ImportSchema(schema)

	pairs, err := CollectDictionaries(rec, &m)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.EqualValues(t, 0, pairs[0].ID)
	assert.EqualValues(t, 1, pairs[1].ID)
	for _, p := range pairs {
		assert.True(t, array.Equal(values, p.Dict))
		p.Dict.Release()
	}

	_, err = CollectDictionaries(rec, &Mapper{})
	assert.Error(t, err)
}

func TestMemo(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	str := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}
	memo := NewMemo()
	defer memo.Clear()

	assert.True(t, memo.AddType(1, str))
	assert.True(t, memo.AddType(1, &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}))
	assert.False(t, memo.AddType(1, &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.Binary}))
	dt, ok := memo.Type(1)
	require.True(t, ok)
	assert.Same(t, str, dt)

	v1, _, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["a"]`))
	require.NoError(t, err)
	defer v1.Release()
	v2, _, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["a"]`))
	require.NoError(t, err)
	defer v2.Release()
	v3, _, err := array.FromJSON(mem, arrow.BinaryTypes.String, strings.NewReader(`["b"]`))
	require.NoError(t, err)
	defer v3.Release()

	_, ok = memo.Dict(1)
	assert.False(t, ok)
	assert.True(t, memo.Add(1, v1))
	assert.True(t, memo.Add(1, v2))
	assert.False(t, memo.Add(1, v3))
	assert.Equal(t, 1, memo.Len())

	got, ok := memo.Dict(1)
	require.True(t, ok)
	assert.Same(t, v1, got)

	memo.Clear()
	assert.Equal(t, 0, memo.Len())
	_, ok = memo.Type(1)
	assert.False(t, ok)
}
