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
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterFormat(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	schema := arrow.NewSchema([]arrow.Field{{Name: "a<b", Type: arrow.PrimitiveTypes.Uint8}}, nil)
	col := buildArray(t, mem, arrow.PrimitiveTypes.Uint8, `[7]`)
	defer col.Release()
	rec := array.NewRecord(schema, []arrow.Array{col}, 1)
	defer rec.Release()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, schema)
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	const want = `{
  "schema": {
    "fields": [
      {
        "name": "a<b",
        "type": {
          "name": "int",
          "isSigned": false,
          "bitWidth": 8
        },
        "nullable": false,
        "children": []
      }
    ]
  },
  "batches": [
    {
      "count": 1,
      "columns": [
        {
          "name": "a<b",
          "count": 1,
          "VALIDITY": [
            1
          ],
          "DATA": [
            7
          ]
        }
      ]
    }
  ]
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriterEmpty(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true}}, nil)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, schema)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Contains(t, buf.String(), `"batches": []`)
	assert.NotContains(t, buf.String(), `"dictionaries"`)

	r, err := NewReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	defer r.Release()
	assert.Equal(t, 0, r.NumRecords())
	assert.True(t, r.Schema().Equal(schema))
}

func TestWriterSharedDictionary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: dt, Nullable: true},
		{Name: "b", Type: dt, Nullable: true},
	}, nil)

	values := buildArray(t, mem, arrow.BinaryTypes.String, `["x", "y"]`)
	defer values.Release()
	ia := buildArray(t, mem, arrow.PrimitiveTypes.Int8, `[0, 1]`)
	defer ia.Release()
	ib := buildArray(t, mem, arrow.PrimitiveTypes.Int8, `[1, null]`)
	defer ib.Release()
	a := array.NewDictionaryArray(dt, ia, values)
	defer a.Release()
	b := array.NewDictionaryArray(dt, ib, values)
	defer b.Release()
	rec := array.NewRecord(schema, []arrow.Array{a, b}, 2)
	defer rec.Release()

	memo := NewDictionaryMemo()
	require.NoError(t, memo.BindField(3, 0))
	require.NoError(t, memo.BindField(3, 1))

	var buf bytes.Buffer
	w, err := NewWriter(&buf, schema, WithDictionaryMemo(memo))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	doc := parse(t, buf.String())
	dicts := doc[kDictionaries].([]any)
	require.Len(t, dicts, 1)
	assert.Equal(t, "3", fmt.Sprint(dicts[0].(map[string]any)[kID]))

	r, err := NewReader(strings.NewReader(buf.String()), WithAllocator(mem))
	require.NoError(t, err)
	defer r.Release()
	for i := 0; i < r.NumRecords(); i++ {
		got, err := r.Record(i)
		require.NoError(t, err)
		assert.True(t, array.RecordEqual(rec, got), "got=%v, want=%v", got, rec)
	}
}

func TestWriterErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	fx := newDictFixture(t, mem)
	defer fx.release()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, fx.schema)
	require.NoError(t, err)
	defer w.Close()

	other := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int8}}, nil)
	col := buildArray(t, mem, arrow.PrimitiveTypes.Int8, `[1]`)
	defer col.Release()
	wrong := array.NewRecord(other, []arrow.Array{col}, 1)
	defer wrong.Release()
	assert.ErrorIs(t, w.Write(wrong), ErrTypeMismatch)

	require.NoError(t, w.Write(fx.rec))

	values := buildArray(t, mem, arrow.BinaryTypes.String, `["a", "b", "d"]`)
	defer values.Release()
	indices := buildArray(t, mem, arrow.PrimitiveTypes.Int8, `[0]`)
	defer indices.Release()
	changed := array.NewDictionaryArray(fx.schema.Field(0).Type.(*arrow.DictionaryType), indices, values)
	defer changed.Release()
	next := array.NewRecord(fx.schema, []arrow.Array{changed}, 1)
	defer next.Release()
	assert.ErrorIs(t, w.Write(next), ErrDictionaryIDConflict)

	_, err = NewWriter(&buf, arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.BinaryTypes.StringView}}, nil))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
