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
	"github.com/angopher/arrow/internal/dictutils"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

type config struct {
	alloc    memory.Allocator
	schema   *arrow.Schema
	maxDepth int
	memo     *DictionaryMemo
	path     dictutils.FieldPath
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		alloc:    memory.NewGoAllocator(),
		maxDepth: defaultMaxDepth,
		path:     dictutils.FieldPath{0},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option configures the codec entry points, the Reader and the Writer.
type Option func(*config)

// WithAllocator specifies the allocator used for decoded buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(cfg *config) {
		cfg.alloc = mem
	}
}

// WithSchema makes NewReader check the decoded schema against schema.
func WithSchema(schema *arrow.Schema) Option {
	return func(cfg *config) {
		cfg.schema = schema
	}
}

// WithMaxDepth bounds the nesting depth of fields and arrays accepted while
// decoding. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDepth = n
		}
	}
}

// WithDictionaryMemo makes NewWriter assign dictionary ids through memo, so
// that fields pre-bound with DictionaryMemo.BindField share an id.
func WithDictionaryMemo(memo *DictionaryMemo) Option {
	return func(cfg *config) {
		cfg.memo = memo
	}
}

// WithFieldPath gives the position of the field ReadFieldArray decodes: the
// top-level column index first, then child indices. Dictionary-encoded
// columns are looked up in the memo by this path.
func WithFieldPath(path ...int) Option {
	return func(cfg *config) {
		if len(path) > 0 {
			cfg.path = append(dictutils.FieldPath(nil), path...)
		}
	}
}
