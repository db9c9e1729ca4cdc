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
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/angopher/arrow/internal/debug"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/arrio"
	"github.com/goccy/go-json"
)

// Reader decodes a whole integration JSON document and serves its record
// batches.
type Reader struct {
	refs int64

	schema *arrow.Schema
	memo   *DictionaryMemo
	recs   []arrow.Record

	irec int // current record index. used for the arrio.Reader interface.
}

// NewReader parses the document read from r and decodes its schema, all of
// its dictionaries and then all of its batches.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("arrjson: could not parse document: %w", err)
	}

	cfg := newConfig(opts...)
	rr := &Reader{refs: 1, memo: NewDictionaryMemo()}
	if err := rr.decode(doc, cfg, opts); err != nil {
		rr.Release()
		return nil, err
	}
	return rr, nil
}

func (r *Reader) decode(doc map[string]any, cfg *config, opts []Option) error {
	sobj, err := requireObject(kSchema, doc)
	if err != nil {
		return err
	}
	r.schema, err = ReadSchema(sobj, r.memo, opts...)
	if err != nil {
		return err
	}
	if cfg.schema != nil && !cfg.schema.Equal(r.schema) {
		return fmt.Errorf("%w: document schema %v does not match %v", ErrTypeMismatch, r.schema, cfg.schema)
	}

	dicts, _, err := optionalArray(kDictionaries, doc)
	if err != nil {
		return err
	}
	if err := r.readDictionaries(dicts, opts); err != nil {
		return err
	}

	batches, err := requireArray(kBatches, doc)
	if err != nil {
		return err
	}
	r.recs = make([]arrow.Record, 0, len(batches))
	for i := range batches {
		bobj, err := elementObject(kBatches, batches, i)
		if err != nil {
			return err
		}
		rec, err := ReadRecordBatch(bobj, r.schema, r.memo, opts...)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		r.recs = append(r.recs, rec)
	}
	return nil
}

// readDictionaries decodes every dictionary batch. A dictionary whose values
// are themselves dictionary-encoded can only be decoded once the inner one
// is bound, so batches that fail that way are retried until no progress is
// made.
func (r *Reader) readDictionaries(dicts []any, opts []Option) error {
	pending := make([]map[string]any, len(dicts))
	for i := range dicts {
		obj, err := elementObject(kDictionaries, dicts, i)
		if err != nil {
			return err
		}
		pending[i] = obj
	}

	for len(pending) > 0 {
		var (
			retry    []map[string]any
			firstErr error
		)
		for _, obj := range pending {
			_, err := ReadDictionary(obj, r.memo, opts...)
			switch {
			case err == nil:
			case errors.Is(err, ErrDictionaryNotFound):
				retry = append(retry, obj)
				if firstErr == nil {
					firstErr = err
				}
			default:
				return err
			}
		}
		if len(retry) == len(pending) {
			return firstErr
		}
		debug.Log(func() string { return fmt.Sprintf("retrying %d dictionary batches", len(retry)) })
		pending = retry
	}
	return nil
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (r *Reader) Retain() {
	atomic.AddInt64(&r.refs, 1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (r *Reader) Release() {
	debug.Assert(atomic.LoadInt64(&r.refs) > 0, "too many releases")

	if atomic.AddInt64(&r.refs, -1) == 0 {
		for i, rec := range r.recs {
			if rec != nil {
				rec.Release()
				r.recs[i] = nil
			}
		}
		r.memo.Release()
	}
}

func (r *Reader) Schema() *arrow.Schema { return r.schema }
func (r *Reader) NumRecords() int       { return len(r.recs) }

// Dictionaries returns the dictionary table decoded from the document.
func (r *Reader) Dictionaries() *DictionaryMemo { return r.memo }

// Record returns the i-th batch. The Reader keeps ownership of it.
func (r *Reader) Record(i int) (arrow.Record, error) {
	if i < 0 || i >= len(r.recs) {
		return nil, fmt.Errorf("arrjson: record index %d out of range [0, %d)", i, len(r.recs))
	}
	return r.recs[i], nil
}

func (r *Reader) Read() (arrow.Record, error) {
	if r.irec == r.NumRecords() {
		return nil, io.EOF
	}
	rec := r.recs[r.irec]
	r.irec++
	return rec, nil
}

var (
	_ arrio.Reader = (*Reader)(nil)
)
