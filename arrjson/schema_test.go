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
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

func nestedSchema() *arrow.Schema {
	md := arrow.NewMetadata([]string{"origin", "z-last"}, []string{"test", "1"})
	dictStr := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String}
	dictList := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Uint32,
		ValueType: arrow.ListOf(arrow.PrimitiveTypes.Int64),
		Ordered:   true,
	}

	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "tags", Type: dictStr, Nullable: true, Metadata: md},
		{Name: "nested", Type: arrow.StructOf(
			arrow.Field{Name: "inner", Type: dictStr, Nullable: true},
			arrow.Field{Name: "choice", Type: arrow.DenseUnionOf([]arrow.Field{
				{Name: "n", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
				{Name: "l", Type: arrow.ListOf(dictStr), Nullable: true},
			}, []arrow.UnionTypeCode{2, 4}), Nullable: true},
		), Nullable: true},
		{Name: "lists", Type: dictList},
	}, &md)
}

func TestSchemaRoundTrip(t *testing.T) {
	schema := nestedSchema()

	wmemo := NewDictionaryMemo()
	js, err := WriteSchema(schema, wmemo)
	require.NoError(t, err)

	// ids are assigned depth first.
	for want, path := range [][]int{{1}, {2, 0}, {2, 1, 1, 0}, {3}} {
		id, ok := wmemo.FieldID(path...)
		require.True(t, ok, "path %v", path)
		assert.EqualValues(t, want, id, "path %v", path)
	}
	assert.Nil(t, js.Fields[0].Dictionary)
	require.NotNil(t, js.Fields[3].Dictionary)
	assert.True(t, js.Fields[3].Dictionary.Ordered)
	assert.Equal(t, "list", js.Fields[3].Type.Name)
	assert.Len(t, js.Fields[3].Children, 1)

	rmemo := NewDictionaryMemo()
	got, err := ReadSchema(toTree(t, js), rmemo)
	require.NoError(t, err)
	assert.Truef(t, got.Equal(schema), "got:\n%v\nwant:\n%v", got, schema)
	assert.True(t, got.Metadata().Equal(schema.Metadata()))
	assert.True(t, got.Field(1).Metadata.Equal(schema.Field(1).Metadata))

	for id := int64(0); id < 4; id++ {
		dt, ok := rmemo.Type(id)
		require.True(t, ok, "id %d", id)
		assert.NotNil(t, dt.ValueType)
	}
	_, ok := rmemo.Type(4)
	assert.False(t, ok)
}

func TestFieldChildrenAlwaysWritten(t *testing.T) {
	js, err := WriteSchema(arrow.NewSchema([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int8}}, nil), nil)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"fields":[{"name":"a","type":{"name":"int","isSigned":true,"bitWidth":8},"nullable":false,"children":[]}]}`,
		marshal(t, js))
}

func TestBindFieldSharesDictionary(t *testing.T) {
	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: dt},
		{Name: "b", Type: dt},
		{Name: "c", Type: dt},
	}, nil)

	memo := NewDictionaryMemo()
	require.NoError(t, memo.BindField(7, 0))
	require.NoError(t, memo.BindField(7, 2))
	assert.ErrorIs(t, memo.BindField(8, 2), ErrDuplicateDictionaryID)

	js, err := WriteSchema(schema, memo)
	require.NoError(t, err)
	assert.EqualValues(t, 7, js.Fields[0].Dictionary.ID)
	assert.EqualValues(t, 8, js.Fields[1].Dictionary.ID)
	assert.EqualValues(t, 7, js.Fields[2].Dictionary.ID)

	// reading back accepts a shared id with one value type.
	rmemo := NewDictionaryMemo()
	_, err = ReadSchema(toTree(t, js), rmemo)
	require.NoError(t, err)
	id, ok := rmemo.FieldID(2)
	require.True(t, ok)
	assert.EqualValues(t, 7, id)
}

const dictFieldsDoc = `{"fields": [
  {"name": "a", "nullable": true, "type": {"name": "utf8"}, "children": [],
   "dictionary": {"id": 0, "indexType": {"name": "int", "isSigned": true, "bitWidth": 32}, "isOrdered": false}},
  {"name": "b", "nullable": true, "type": {"name": "utf8"}, "children": [],
   "dictionary": {"id": 0, "indexType": {"name": "int", "isSigned": true, "bitWidth": 32}, "isOrdered": false}}
]}`

func TestReadSchemaDuplicateDictionaryID(t *testing.T) {
	_, err := ReadSchema(parse(t, dictFieldsDoc), NewDictionaryMemo())
	require.NoError(t, err)

	doc, err := sjson.Set(dictFieldsDoc, "fields.1.type", map[string]any{"name": "binary"})
	require.NoError(t, err)
	_, err = ReadSchema(parse(t, doc), NewDictionaryMemo())
	require.ErrorIs(t, err, ErrDuplicateDictionaryID)
	assert.Contains(t, err.Error(), "field b: ")
}

func TestReadSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		val  any
		del  bool
		want error
		msg  string
	}{
		{name: "missing nullable", path: "fields.0.nullable", del: true, want: ErrFieldNotFound, msg: `field a: field not found: "nullable"`},
		{name: "missing name", path: "fields.1.name", del: true, want: ErrFieldNotFound, msg: `field 1: field not found: "name"`},
		{name: "nullable kind", path: "fields.0.nullable", val: "yes", want: ErrTypeMismatch, msg: `"nullable" was not a boolean`},
		{name: "unknown type", path: "fields.1.type.name", val: "frobnicate", want: ErrUnsupportedType, msg: "frobnicate"},
		{name: "float index", path: "fields.0.dictionary.indexType", val: map[string]any{"name": "floatingpoint", "precision": "DOUBLE"}, want: ErrTypeMismatch, msg: "index type must be an integer"},
		{name: "missing ordered", path: "fields.0.dictionary.isOrdered", del: true, want: ErrFieldNotFound, msg: `"isOrdered"`},
		{name: "metadata kind", path: "fields.0.metadata", val: []any{"k"}, want: ErrTypeMismatch, msg: "metadata[0] was not an object"},
		{name: "children kind", path: "fields.0.children", val: map[string]any{}, want: ErrTypeMismatch, msg: `"children" was not an array`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				doc string
				err error
			)
			if tt.del {
				doc, err = sjson.Delete(dictFieldsDoc, tt.path)
			} else {
				doc, err = sjson.Set(dictFieldsDoc, tt.path, tt.val)
			}
			require.NoError(t, err)

			_, err = ReadSchema(parse(t, doc), NewDictionaryMemo())
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadSchemaMaxDepth(t *testing.T) {
	// a struct nested 10 levels deep.
	field := `{"name": "leaf", "nullable": true, "type": {"name": "bool"}, "children": []}`
	for i := 0; i < 9; i++ {
		field = `{"name": "s", "nullable": true, "type": {"name": "struct"}, "children": [` + field + `]}`
	}
	doc := `{"fields": [` + field + `]}`

	_, err := ReadSchema(parse(t, doc), nil, WithMaxDepth(10))
	require.NoError(t, err)

	_, err = ReadSchema(parse(t, doc), nil, WithMaxDepth(9))
	require.ErrorIs(t, err, ErrEncoding)
	assert.True(t, strings.HasPrefix(err.Error(), "field s/s/s/s/s/s/s/s/s/"), err.Error())
}
