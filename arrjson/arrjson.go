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

// Package arrjson encodes and decodes Arrow schemas, record batches and
// dictionary batches to and from the JSON integration format that Arrow
// implementations use to cross-check each other.
//
// Encoding produces plain Go values (Schema, Field, Type, Array, Record,
// Dictionary) that marshal to the canonical layout. Decoding works on a
// generic JSON tree (map[string]any, []any, string, bool, json.Number) that
// has been fully parsed beforehand; NewReader does that parsing for a whole
// document.
//
// A decode session owns one DictionaryMemo: the schema declares dictionary
// ids, dictionary batches bind values to them, and only then can record
// batches that reference those ids be decoded.
package arrjson

import "strconv"

const (
	kName       = "name"
	kCount      = "count"
	kValidity   = "VALIDITY"
	kData       = "DATA"
	kOffsets    = "OFFSETS"
	kChildren   = "children"
	kFields     = "fields"
	kColumns    = "columns"
	kType       = "type"
	kNullable   = "nullable"
	kDictionary = "dictionary"
	kMetadata   = "metadata"
	kID         = "id"
	kIndexType  = "indexType"
	kIsOrdered  = "isOrdered"

	kSchema       = "schema"
	kBatches      = "batches"
	kDictionaries = "dictionaries"

	// accepted on read only, as written by other implementations.
	kOffsetLegacy = "OFFSET"
	kTypeIDLegacy = "TYPE_ID"

	kDays         = "days"
	kMilliseconds = "milliseconds"
	kMonths       = "months"
	kNanoseconds  = "nanoseconds"

	defaultMaxDepth = 64
)

func dictColumnName(id int64) string { return "DICT" + strconv.FormatInt(id, 10) }
