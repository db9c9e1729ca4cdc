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

	"github.com/angopher/arrow/internal/debug"
	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
)

// DictionaryMemo is the dictionary table of one encode or decode session.
//
// On the write side it maps dictionary-typed field paths to ids. On the read
// side it additionally records, for each id, the declared dictionary type
// and the decoded dictionary values. An id, once bound, keeps its binding
// for the session. A DictionaryMemo is not safe for concurrent mutation.
type DictionaryMemo struct {
	memo dictutils.Memo
}

// NewDictionaryMemo returns an empty memo.
func NewDictionaryMemo() *DictionaryMemo {
	return &DictionaryMemo{memo: dictutils.NewMemo()}
}

// BindField binds the field at path (top-level column index first, then
// child indices) to id. Binding several fields to the same id before
// WriteSchema makes them share one dictionary.
func (m *DictionaryMemo) BindField(id int64, path ...int) error {
	if err := m.memo.Mapper.AddField(id, dictutils.FieldPath(path)); err != nil {
		return fmt.Errorf("%w: %v", ErrDuplicateDictionaryID, err)
	}
	return nil
}

// FieldID returns the dictionary id bound to the field at path.
func (m *DictionaryMemo) FieldID(path ...int) (int64, bool) {
	return m.memo.Mapper.GetFieldID(dictutils.FieldPath(path))
}

// Type returns the dictionary type declared for id.
func (m *DictionaryMemo) Type(id int64) (*arrow.DictionaryType, bool) {
	return m.memo.Type(id)
}

// Dictionary returns the dictionary values bound to id. The memo keeps
// ownership of the returned array.
func (m *DictionaryMemo) Dictionary(id int64) (arrow.Array, bool) {
	return m.memo.Dict(id)
}

// Len returns the number of ids with bound dictionary values.
func (m *DictionaryMemo) Len() int { return m.memo.Len() }

// Release releases every bound dictionary and resets the memo.
func (m *DictionaryMemo) Release() { m.memo.Clear() }

func (m *DictionaryMemo) mapper() *dictutils.Mapper { return &m.memo.Mapper }

// declare records that the field at path is encoded against dictionary id
// with type dt.
func (m *DictionaryMemo) declare(id int64, path dictutils.FieldPath, dt *arrow.DictionaryType) error {
	if !m.memo.AddType(id, dt) {
		prev, _ := m.memo.Type(id)
		return fmt.Errorf("%w: id %d declared with value type %s and %s",
			ErrDuplicateDictionaryID, id, prev.ValueType, dt.ValueType)
	}
	if err := m.memo.Mapper.AddField(id, path); err != nil {
		return fmt.Errorf("%w: %v", ErrDuplicateDictionaryID, err)
	}
	debug.Log(func() string { return fmt.Sprintf("declared dictionary %d at %v: %s", id, path, dt) })
	return nil
}

// bind binds decoded dictionary values to id.
func (m *DictionaryMemo) bind(id int64, dict arrow.Array) error {
	if !m.memo.Add(id, dict) {
		return fmt.Errorf("%w: id %d is already bound to different values", ErrDictionaryIDConflict, id)
	}
	debug.Log(func() string { return fmt.Sprintf("bound dictionary %d (%d values)", id, dict.Len()) })
	return nil
}

// lookup returns the dictionary values for the field at path.
func (m *DictionaryMemo) lookup(path dictutils.FieldPath) (int64, arrow.Array, error) {
	id, ok := m.memo.Mapper.GetFieldID(path)
	if !ok {
		return 0, nil, fmt.Errorf("%w: no dictionary id declared for field %v", ErrDictionaryNotFound, path)
	}
	dict, ok := m.memo.Dict(id)
	if !ok {
		return id, nil, fmt.Errorf("%w: dictionary id %d has not been decoded yet", ErrDictionaryNotFound, id)
	}
	return id, dict, nil
}
