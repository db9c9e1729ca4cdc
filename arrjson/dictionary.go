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

// Dictionary is a dictionary batch: the values of one dictionary id, stored
// as a single-column record batch.
type Dictionary struct {
	ID   int64  `json:"id"`
	Data Record `json:"data"`
}

// WriteDictionary encodes the dictionary values bound to id.
func WriteDictionary(id int64, dict arrow.Array) (Dictionary, error) {
	col, err := WriteArray(dictColumnName(id), dict)
	if err != nil {
		return Dictionary{}, fmt.Errorf("dictionary %d: %w", id, err)
	}
	return Dictionary{
		ID:   id,
		Data: Record{Count: int64(dict.Len()), Columns: []Array{col}},
	}, nil
}

// ReadDictionary decodes a dictionary batch and binds its values in memo.
// The id must have been declared by ReadSchema. It returns the id read.
func ReadDictionary(obj map[string]any, memo *DictionaryMemo, opts ...Option) (int64, error) {
	id, err := requireInt(kID, obj)
	if err != nil {
		return 0, err
	}
	if err := readDictionary(obj, id, memo, newConfig(opts...)); err != nil {
		return id, fmt.Errorf("dictionary %d: %w", id, err)
	}
	return id, nil
}

func readDictionary(obj map[string]any, id int64, memo *DictionaryMemo, cfg *config) error {
	if memo == nil {
		return fmt.Errorf("%w: no dictionary memo", ErrDictionaryNotFound)
	}
	dt, ok := memo.Type(id)
	paths := memo.mapper().FieldsForID(id)
	if !ok || len(paths) == 0 {
		return fmt.Errorf("%w: id %d is not declared by the schema", ErrDictionaryNotFound, id)
	}

	data, err := requireObject("data", obj)
	if err != nil {
		return err
	}
	count, err := requireInt(kCount, data)
	if err != nil {
		return err
	}
	cols, err := requireArray(kColumns, data)
	if err != nil {
		return err
	}
	if len(cols) != 1 {
		return fmt.Errorf("%w: dictionary batch has %d columns, expected 1", ErrRowCountMismatch, len(cols))
	}
	col, err := elementObject(kColumns, cols, 0)
	if err != nil {
		return err
	}
	name, err := requireString(kName, col)
	if err != nil {
		return err
	}
	if count < 0 || count > int64(^uint32(0)>>1) {
		return fmt.Errorf("%w: invalid count %d", ErrEncoding, count)
	}

	// nested dictionaries inside the values are keyed by the first field
	// declared against this id.
	field := arrow.Field{Name: name, Type: dt.ValueType, Nullable: true}
	ctx := newReadContext(memo, cfg)
	values, err := ctx.readArray(col, field, paths[0], []string{name}, 1, int(count))
	if err != nil {
		return err
	}
	defer values.Release()

	return memo.bind(id, values)
}
