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
	"io"

	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/arrio"
	"github.com/goccy/go-json"
)

const jsonIndent = "  "

type rawJSON struct {
	Schema       Schema       `json:"schema"`
	Records      []Record     `json:"batches"`
	Dictionaries []Dictionary `json:"dictionaries,omitempty"`
}

// Writer accumulates record batches and writes the whole document on Close.
type Writer struct {
	w io.Writer

	schema *arrow.Schema
	nrecs  int64
	raw    rawJSON
	memo   *DictionaryMemo
	dicts  []dictutils.DictPair
}

// NewWriter returns a Writer for batches of schema. WithDictionaryMemo lets
// the caller pre-bind dictionary ids.
func NewWriter(w io.Writer, schema *arrow.Schema, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts...)
	ww := &Writer{
		w:      w,
		schema: schema,
		memo:   cfg.memo,
	}
	if ww.memo == nil {
		ww.memo = NewDictionaryMemo()
	}

	var err error
	ww.raw.Schema, err = WriteSchema(schema, ww.memo)
	if err != nil {
		return nil, err
	}
	ww.raw.Records = make([]Record, 0)
	return ww, nil
}

func (w *Writer) Write(rec arrow.Record) error {
	if !rec.Schema().Equal(w.schema) {
		return fmt.Errorf("%w: record schema %v does not match writer schema %v", ErrTypeMismatch, rec.Schema(), w.schema)
	}

	var pairs []dictutils.DictPair
	if mapper := w.memo.mapper(); mapper.NumFields() > 0 {
		var err error
		pairs, err = dictutils.CollectDictionaries(rec, mapper)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDictionaryNotFound, err)
		}
	}

	if w.nrecs == 0 {
		releasePairs(w.dicts)
		w.raw.Dictionaries = nil
		if len(pairs) > 0 {
			w.raw.Dictionaries = make([]Dictionary, 0, w.memo.mapper().NumDicts())
		}
		for _, p := range pairs {
			d, err := WriteDictionary(p.ID, p.Dict)
			if err != nil {
				releasePairs(pairs)
				w.dicts, w.raw.Dictionaries = nil, nil
				return err
			}
			w.raw.Dictionaries = append(w.raw.Dictionaries, d)
		}
		w.dicts = pairs
	} else {
		// dictionary batches are written once; later records must reuse them.
		defer releasePairs(pairs)
		for i, p := range pairs {
			if i >= len(w.dicts) || w.dicts[i].ID != p.ID || !array.Equal(w.dicts[i].Dict, p.Dict) {
				return fmt.Errorf("%w: dictionary %d changed after the first record", ErrDictionaryIDConflict, p.ID)
			}
		}
	}

	o, err := WriteRecordBatch(rec)
	if err != nil {
		return err
	}
	w.raw.Records = append(w.raw.Records, o)
	w.nrecs++
	return nil
}

func releasePairs(pairs []dictutils.DictPair) {
	for _, p := range pairs {
		p.Dict.Release()
	}
}

func (w *Writer) Close() error {
	releasePairs(w.dicts)
	w.dicts = nil

	if w.w == nil {
		return nil
	}

	enc := json.NewEncoder(w.w)
	enc.SetIndent("", jsonIndent)
	// keep <, > and & as they are so that documents compare byte for byte.
	enc.SetEscapeHTML(false)
	err := enc.Encode(w.raw)
	w.w = nil
	return err
}

var (
	_ arrio.Writer = (*Writer)(nil)
)
