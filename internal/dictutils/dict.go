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

// Package dictutils keeps track of dictionary ids for the JSON codec: which
// field path is encoded against which dictionary id, and which dictionary
// values and types are bound to an id during a session.
package dictutils

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// FieldPath is the sequence of child indices leading from the schema root to
// a field. The top-level column i has path [i]; its j-th child has [i, j].
type FieldPath []int

func (p FieldPath) Child(i int) FieldPath {
	out := make(FieldPath, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

func (p FieldPath) key() string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func (p FieldPath) String() string { return "[" + p.key() + "]" }

// Mapper binds field paths to dictionary ids. The same id may be bound to
// several paths when fields share a dictionary; a path has at most one id.
type Mapper struct {
	pathToID map[string]int64
	paths    map[string]FieldPath
	nextID   int64
}

// AddField binds path to id. It fails if path is already bound to another id.
func (m *Mapper) AddField(id int64, path FieldPath) error {
	if m.pathToID == nil {
		m.pathToID = make(map[string]int64)
		m.paths = make(map[string]FieldPath)
	}
	k := path.key()
	if old, ok := m.pathToID[k]; ok && old != id {
		return fmt.Errorf("dictutils: field %v already bound to dictionary id %d", path, old)
	}
	m.pathToID[k] = id
	m.paths[k] = append(FieldPath(nil), path...)
	if id >= m.nextID {
		m.nextID = id + 1
	}
	return nil
}

// GetFieldID returns the dictionary id bound to path.
func (m *Mapper) GetFieldID(path FieldPath) (int64, bool) {
	id, ok := m.pathToID[path.key()]
	return id, ok
}

// NumFields returns the number of bound paths.
func (m *Mapper) NumFields() int { return len(m.pathToID) }

// NumDicts returns the number of distinct ids.
func (m *Mapper) NumDicts() int {
	ids := make(map[int64]struct{}, len(m.pathToID))
	for _, id := range m.pathToID {
		ids[id] = struct{}{}
	}
	return len(ids)
}

// FieldsForID returns every path bound to id, in lexical order.
func (m *Mapper) FieldsForID(id int64) []FieldPath {
	var keys []string
	for k, v := range m.pathToID {
		if v == id {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]FieldPath, len(keys))
	for i, k := range keys {
		out[i] = m.paths[k]
	}
	return out
}

// ImportSchema walks schema depth first and binds a fresh id to every
// dictionary-typed field whose path is not bound yet. Paths bound beforehand
// with AddField keep their id, which is how callers make fields share one
// dictionary.
func (m *Mapper) ImportSchema(schema *arrow.Schema) {
	for i, f := range schema.Fields() {
		m.importField(FieldPath{i}, f)
	}
}

func (m *Mapper) importField(path FieldPath, f arrow.Field) {
	dt := f.Type
	if dict, ok := dt.(*arrow.DictionaryType); ok {
		if _, bound := m.GetFieldID(path); !bound {
			// fresh ids never collide with explicit ones: AddField bumps nextID.
			_ = m.AddField(m.nextID, path)
		}
		dt = dict.ValueType
	}
	for j, child := range ChildFields(dt) {
		m.importField(path.Child(j), child)
	}
}

// ChildFields returns the nested fields of a container type, in the order
// the JSON "children" array lists them.
func ChildFields(dt arrow.DataType) []arrow.Field {
	switch dt := dt.(type) {
	case *arrow.ListType:
		return []arrow.Field{dt.ElemField()}
	case *arrow.LargeListType:
		return []arrow.Field{dt.ElemField()}
	case *arrow.FixedSizeListType:
		return []arrow.Field{dt.ElemField()}
	case *arrow.MapType:
		return []arrow.Field{dt.ElemField()}
	case *arrow.StructType:
		return dt.Fields()
	case arrow.UnionType:
		return dt.Fields()
	case *arrow.DictionaryType:
		return ChildFields(dt.ValueType)
	}
	return nil
}

// DictPair is a dictionary found in a record together with its id.
type DictPair struct {
	ID   int64
	Dict arrow.Array
}

// CollectDictionaries returns the dictionaries referenced by rec, one per
// id, ordered by id. Each returned array is retained; callers release it.
func CollectDictionaries(rec arrow.Record, mapper *Mapper) ([]DictPair, error) {
	seen := make(map[int64]arrow.Array)
	for i, col := range rec.Columns() {
		if err := collect(FieldPath{i}, col, mapper, seen); err != nil {
			for _, d := range seen {
				d.Release()
			}
			return nil, err
		}
	}

	out := make([]DictPair, 0, len(seen))
	for id, d := range seen {
		out = append(out, DictPair{ID: id, Dict: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func collect(path FieldPath, arr arrow.Array, mapper *Mapper, seen map[int64]arrow.Array) error {
	switch arr := arr.(type) {
	case *array.Dictionary:
		id, ok := mapper.GetFieldID(path)
		if !ok {
			return fmt.Errorf("dictutils: no dictionary id bound to field %v", path)
		}
		if _, dup := seen[id]; !dup {
			dict := arr.Dictionary()
			dict.Retain()
			seen[id] = dict
		}
		return collectChildren(path, arr.Dictionary(), mapper, seen)
	default:
		return collectChildren(path, arr, mapper, seen)
	}
}

func collectChildren(path FieldPath, arr arrow.Array, mapper *Mapper, seen map[int64]arrow.Array) error {
	switch arr := arr.(type) {
	case *array.Struct:
		for j := 0; j < arr.NumField(); j++ {
			if err := collect(path.Child(j), arr.Field(j), mapper, seen); err != nil {
				return err
			}
		}
	case array.ListLike:
		return collect(path.Child(0), arr.ListValues(), mapper, seen)
	case array.Union:
		for j := 0; j < arr.NumFields(); j++ {
			if err := collect(path.Child(j), arr.Field(j), mapper, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Memo is the read side of a session: for every id the declared dictionary
// type and, once decoded, the dictionary values. Bindings are immutable once
// made. A Memo is not safe for concurrent mutation.
type Memo struct {
	Mapper Mapper

	types map[int64]*arrow.DictionaryType
	dicts map[int64]arrow.Array
}

func NewMemo() Memo {
	return Memo{
		types: make(map[int64]*arrow.DictionaryType),
		dicts: make(map[int64]arrow.Array),
	}
}

// Len returns the number of bound dictionary values.
func (m *Memo) Len() int { return len(m.dicts) }

// Clear releases every bound dictionary and forgets all declarations.
func (m *Memo) Clear() {
	for id, d := range m.dicts {
		d.Release()
		delete(m.dicts, id)
	}
	for id := range m.types {
		delete(m.types, id)
	}
	m.Mapper = Mapper{}
}

// AddType declares the dictionary type of id. It reports false when id is
// already declared with a different value type.
func (m *Memo) AddType(id int64, dt *arrow.DictionaryType) bool {
	if m.types == nil {
		m.types = make(map[int64]*arrow.DictionaryType)
	}
	if old, ok := m.types[id]; ok {
		return arrow.TypeEqual(old.ValueType, dt.ValueType)
	}
	m.types[id] = dt
	return true
}

// Type returns the declared dictionary type of id.
func (m *Memo) Type(id int64) (*arrow.DictionaryType, bool) {
	dt, ok := m.types[id]
	return dt, ok
}

// Dict returns the values bound to id.
func (m *Memo) Dict(id int64) (arrow.Array, bool) {
	d, ok := m.dicts[id]
	return d, ok
}

// Add binds v to id and retains it. Binding an id twice is only accepted
// when both arrays are equal, in which case the memo keeps the first one and
// reports true.
func (m *Memo) Add(id int64, v arrow.Array) bool {
	if m.dicts == nil {
		m.dicts = make(map[int64]arrow.Array)
	}
	if old, ok := m.dicts[id]; ok {
		return array.Equal(old, v)
	}
	v.Retain()
	m.dicts[id] = v
	return true
}
