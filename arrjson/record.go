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

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

type Record struct {
	Count   int64   `json:"count"`
	Columns []Array `json:"columns"`
}

// WriteRecordBatch encodes every column of rec under its field name.
func WriteRecordBatch(rec arrow.Record) (Record, error) {
	schema := rec.Schema()
	o := Record{
		Count:   rec.NumRows(),
		Columns: make([]Array, rec.NumCols()),
	}
	for i, col := range rec.Columns() {
		if int64(col.Len()) != rec.NumRows() {
			return Record{}, fmt.Errorf("%w: column %q has %d rows, batch has %d",
				ErrRowCountMismatch, schema.Field(i).Name, col.Len(), rec.NumRows())
		}
		var err error
		o.Columns[i], err = WriteArray(schema.Field(i).Name, col)
		if err != nil {
			return Record{}, err
		}
	}
	return o, nil
}

// ReadRecordBatch decodes a record batch against schema. Every column must
// have exactly "count" rows, and dictionary-encoded columns need their
// dictionaries bound in memo.
func ReadRecordBatch(obj map[string]any, schema *arrow.Schema, memo *DictionaryMemo, opts ...Option) (arrow.Record, error) {
	count, err := requireInt(kCount, obj)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > math.MaxInt32 {
		return nil, fmt.Errorf("%w: invalid count %d", ErrEncoding, count)
	}
	elems, err := requireArray(kColumns, obj)
	if err != nil {
		return nil, err
	}
	if len(elems) != schema.NumFields() {
		return nil, fmt.Errorf("%w: batch has %d columns, schema has %d fields", ErrRowCountMismatch, len(elems), schema.NumFields())
	}

	ctx := newReadContext(memo, newConfig(opts...))
	cols := make([]arrow.Array, len(elems))
	defer releaseAll(cols)

	for i, f := range schema.Fields() {
		cobj, err := elementObject(kColumns, elems, i)
		if err != nil {
			return nil, err
		}
		cols[i], err = ctx.readArray(cobj, f, dictutils.FieldPath{i}, []string{f.Name}, 1, int(count))
		if err != nil {
			return nil, err
		}
	}
	return array.NewRecord(schema, cols, count), nil
}
