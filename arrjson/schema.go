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
	"strconv"

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
)

type Schema struct {
	Fields   []Field    `json:"fields"`
	Metadata []Metadata `json:"metadata,omitempty"`
}

type Field struct {
	Name       string          `json:"name"`
	Type       Type            `json:"type"`
	Nullable   bool            `json:"nullable"`
	Children   []Field         `json:"children"`
	Dictionary *DictionaryInfo `json:"dictionary,omitempty"`
	Metadata   []Metadata      `json:"metadata,omitempty"`
}

// DictionaryInfo is the "dictionary" member of a dictionary-encoded field.
type DictionaryInfo struct {
	ID        int64 `json:"id"`
	IndexType Type  `json:"indexType"`
	Ordered   bool  `json:"isOrdered"`
}

type Metadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func metadataToJSON(md arrow.Metadata) []Metadata {
	if md.Len() == 0 {
		return nil
	}
	out := make([]Metadata, md.Len())
	for i, k := range md.Keys() {
		out[i] = Metadata{Key: k, Value: md.Values()[i]}
	}
	return out
}

// WriteSchema encodes schema. Dictionary ids come from memo: fields bound
// with BindField keep their id, every other dictionary field gets a fresh
// one in depth-first order. memo may be nil when the caller does not need
// the assigned ids.
func WriteSchema(schema *arrow.Schema, memo *DictionaryMemo) (Schema, error) {
	if memo == nil {
		memo = NewDictionaryMemo()
	}
	mapper := memo.mapper()
	mapper.ImportSchema(schema)

	out := Schema{
		Fields:   make([]Field, schema.NumFields()),
		Metadata: metadataToJSON(schema.Metadata()),
	}
	for i, f := range schema.Fields() {
		var err error
		out.Fields[i], err = writeField(f, dictutils.FieldPath{i}, []string{f.Name}, mapper)
		if err != nil {
			return Schema{}, err
		}
	}
	return out, nil
}

func writeField(f arrow.Field, path dictutils.FieldPath, names []string, mapper *dictutils.Mapper) (Field, error) {
	typ, err := WriteType(f.Type)
	if err != nil {
		return Field{}, withPath("field", names, err)
	}

	o := Field{
		Name:     f.Name,
		Type:     typ,
		Nullable: f.Nullable,
		Metadata: metadataToJSON(f.Metadata),
	}

	if dt, ok := f.Type.(*arrow.DictionaryType); ok {
		id, ok := mapper.GetFieldID(path)
		if !ok {
			return Field{}, withPath("field", names, fmt.Errorf("%w: no id bound to dictionary field", ErrDictionaryNotFound))
		}
		idx, err := WriteType(dt.IndexType)
		if err != nil || idx.Name != "int" {
			return Field{}, withPath("field", names, fmt.Errorf("%w: dictionary index type %s is not an integer", ErrTypeMismatch, dt.IndexType))
		}
		o.Dictionary = &DictionaryInfo{ID: id, IndexType: idx, Ordered: dt.Ordered}
	}

	children := dictutils.ChildFields(f.Type)
	o.Children = make([]Field, len(children))
	for j, c := range children {
		o.Children[j], err = writeField(c, path.Child(j), append(names, c.Name), mapper)
		if err != nil {
			return Field{}, err
		}
	}
	return o, nil
}

// ReadSchema decodes a schema object and declares its dictionary fields in
// memo.
func ReadSchema(obj map[string]any, memo *DictionaryMemo, opts ...Option) (*arrow.Schema, error) {
	cfg := newConfig(opts...)

	elems, err := requireArray(kFields, obj)
	if err != nil {
		return nil, err
	}
	md, err := readMetadata(obj)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(elems))
	for i := range elems {
		fobj, err := elementObject(kFields, elems, i)
		if err != nil {
			return nil, err
		}
		fields[i], err = readField(fobj, dictutils.FieldPath{i}, []string{strconv.Itoa(i)}, memo, 1, cfg.maxDepth)
		if err != nil {
			return nil, err
		}
	}
	return arrow.NewSchema(fields, &md), nil
}

func readField(obj map[string]any, path dictutils.FieldPath, names []string, memo *DictionaryMemo, depth, maxDepth int) (arrow.Field, error) {
	f, err := readFieldBody(obj, path, names, memo, depth, maxDepth)
	if err != nil {
		return arrow.Field{}, withPath("field", names, err)
	}
	return f, nil
}

func readFieldBody(obj map[string]any, path dictutils.FieldPath, names []string, memo *DictionaryMemo, depth, maxDepth int) (arrow.Field, error) {
	if depth > maxDepth {
		return arrow.Field{}, fmt.Errorf("%w: fields nested deeper than %d", ErrEncoding, maxDepth)
	}

	name, err := requireString(kName, obj)
	if err != nil {
		return arrow.Field{}, err
	}
	// use the name once known so that errors point at it.
	names[len(names)-1] = name

	nullable, err := requireBool(kNullable, obj)
	if err != nil {
		return arrow.Field{}, err
	}
	tobj, err := requireObject(kType, obj)
	if err != nil {
		return arrow.Field{}, err
	}

	celems, _, err := optionalArray(kChildren, obj)
	if err != nil {
		return arrow.Field{}, err
	}
	children := make([]arrow.Field, len(celems))
	for j := range celems {
		cobj, err := elementObject(kChildren, celems, j)
		if err != nil {
			return arrow.Field{}, err
		}
		children[j], err = readField(cobj, path.Child(j), append(names, strconv.Itoa(j)), memo, depth+1, maxDepth)
		if err != nil {
			return arrow.Field{}, err
		}
	}

	dt, err := ReadType(tobj, children)
	if err != nil {
		return arrow.Field{}, err
	}

	dobj, ok, err := optionalObject(kDictionary, obj)
	if err != nil {
		return arrow.Field{}, err
	}
	if ok {
		dt, err = readDictionaryInfo(dobj, dt, path, memo)
		if err != nil {
			return arrow.Field{}, err
		}
	}

	md, err := readMetadata(obj)
	if err != nil {
		return arrow.Field{}, err
	}

	return arrow.Field{Name: name, Type: dt, Nullable: nullable, Metadata: md}, nil
}

func readDictionaryInfo(obj map[string]any, valueType arrow.DataType, path dictutils.FieldPath, memo *DictionaryMemo) (arrow.DataType, error) {
	id, err := requireInt(kID, obj)
	if err != nil {
		return nil, err
	}
	iobj, err := requireObject(kIndexType, obj)
	if err != nil {
		return nil, err
	}
	idx, err := ReadType(iobj, nil)
	if err != nil {
		return nil, err
	}
	if !arrow.IsInteger(idx.ID()) {
		return nil, fmt.Errorf("%w: dictionary index type must be an integer, got %s", ErrTypeMismatch, idx)
	}
	ordered, err := requireBool(kIsOrdered, obj)
	if err != nil {
		return nil, err
	}

	dt := &arrow.DictionaryType{IndexType: idx, ValueType: valueType, Ordered: ordered}
	if memo != nil {
		if err := memo.declare(id, path, dt); err != nil {
			return nil, err
		}
	}
	return dt, nil
}

func readMetadata(obj map[string]any) (arrow.Metadata, error) {
	elems, ok, err := optionalArray(kMetadata, obj)
	if err != nil || !ok {
		return arrow.Metadata{}, err
	}
	keys := make([]string, len(elems))
	values := make([]string, len(elems))
	for i := range elems {
		kv, err := elementObject(kMetadata, elems, i)
		if err != nil {
			return arrow.Metadata{}, err
		}
		if keys[i], err = requireString("key", kv); err != nil {
			return arrow.Metadata{}, err
		}
		if values[i], err = requireString("value", kv); err != nil {
			return arrow.Metadata{}, err
		}
	}
	return arrow.NewMetadata(keys, values), nil
}
