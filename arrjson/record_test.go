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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatchRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := validBatchSchema()
	rec, err := ReadRecordBatch(parse(t, validBatch), schema, nil, WithAllocator(mem))
	require.NoError(t, err)
	defer rec.Release()
	assert.EqualValues(t, 2, rec.NumRows())
	assert.EqualValues(t, 5, rec.NumCols())

	out, err := WriteRecordBatch(rec)
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.Count)
	require.Len(t, out.Columns, 5)
	for i, col := range out.Columns {
		assert.Equal(t, schema.Field(i).Name, col.Name)
		assert.Equal(t, 2, col.Count)
	}

	got, err := ReadRecordBatch(toTree(t, out), schema, nil, WithAllocator(mem))
	require.NoError(t, err)
	defer got.Release()
	assert.True(t, array.RecordEqual(rec, got), "got=%v, want=%v", got, rec)
}

func TestReadRecordBatchEmpty(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "i", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "l", Type: arrow.ListOf(arrow.PrimitiveTypes.Int8), Nullable: true},
		{Name: "n", Type: arrow.Null, Nullable: true},
	}, nil)
	rec, err := ReadRecordBatch(parse(t, `{"count": 0, "columns": [
	  {"name": "i", "count": 0},
	  {"name": "s", "count": 0},
	  {"name": "l", "count": 0, "children": [{"name": "item", "count": 0}]},
	  {"name": "n", "count": 0}
	]}`), schema, nil, WithAllocator(mem))
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 0, rec.NumRows())
	for _, col := range rec.Columns() {
		assert.Equal(t, 0, col.Len())
	}
}

func TestReadRecordBatchReleasesOnError(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// every column but the last decodes.
	doc := set(t, validBatch, "columns.4.children.0.DATA.0", "x")
	rec, err := ReadRecordBatch(parse(t, doc), validBatchSchema(), nil, WithAllocator(mem))
	require.ErrorIs(t, err, ErrEncoding)
	assert.Nil(t, rec)
}

func TestReadRecordBatchMembers(t *testing.T) {
	schema := validBatchSchema()
	for _, path := range []string{"count", "columns"} {
		t.Run(path, func(t *testing.T) {
			_, err := ReadRecordBatch(parse(t, deleted(t, validBatch, path)), schema, nil)
			assert.ErrorIs(t, err, ErrFieldNotFound)
		})
	}

	_, err := ReadRecordBatch(parse(t, set(t, validBatch, "count", "2")), schema, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMarshalNestedColumns(t *testing.T) {
	leaf := Array{Name: "item", Count: 1, Valids: []int{1}, Data: []any{int64(7)}}
	rec := Record{Count: 1, Columns: []Array{
		{Name: "a", Count: 1, Valids: []int{1}, Offsets: []any{0, 1}, Children: []Array{leaf}},
		{Name: "b", Count: 1, Valids: []int{1}, Children: []Array{
			{Name: "s", Count: 1, Valids: []int{1}, Children: []Array{leaf}},
		}},
	}}

	var raw []byte
	require.NotPanics(t, func() {
		var err error
		raw, err = json.Marshal(rec)
		require.NoError(t, err)
	})

	got := parse(t, string(raw))
	cols := got["columns"].([]any)
	require.Len(t, cols, 2)
	b := cols[1].(map[string]any)["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "s", b["name"])
	item := b["children"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{json.Number("7")}, item["DATA"])

	indented, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, got, parse(t, string(indented)))
}
