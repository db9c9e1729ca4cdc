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
	"strings"
)

var (
	// ErrFieldNotFound is returned when a required JSON member is absent.
	ErrFieldNotFound = errors.New("field not found")
	// ErrTypeMismatch is returned when a JSON member has the wrong kind, or
	// when a decoded type does not fit where it is used.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedType is returned for type names or parameters outside the
	// supported vocabulary, and for arrays of types that cannot be encoded.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrDuplicateDictionaryID is returned when a schema declares the same
	// dictionary id twice with different value types.
	ErrDuplicateDictionaryID = errors.New("duplicate dictionary id")
	// ErrDictionaryIDConflict is returned when an id already bound to a
	// dictionary is bound again to different values.
	ErrDictionaryIDConflict = errors.New("dictionary id conflict")
	// ErrDictionaryNotFound is returned when a dictionary-encoded column is
	// decoded before its dictionary, or a dictionary id was never declared.
	ErrDictionaryNotFound = errors.New("dictionary not found")
	// ErrRowCountMismatch is returned when lengths that must agree do not:
	// batch and column counts, DATA and OFFSETS lengths, child counts.
	ErrRowCountMismatch = errors.New("row count mismatch")
	// ErrValidityLengthMismatch is returned when VALIDITY has a length other
	// than the array count.
	ErrValidityLengthMismatch = errors.New("validity length mismatch")
	// ErrEncoding is returned for values that cannot be represented: invalid
	// integer literals, bad hex, non-finite floats, broken offsets.
	ErrEncoding = errors.New("encoding error")
)

// pathError attaches the slash-separated path of the field or column that
// failed. Only the innermost failing node is annotated.
type pathError struct {
	kind string
	path []string
	err  error
}

func (e *pathError) Error() string {
	return e.kind + " " + strings.Join(e.path, "/") + ": " + e.err.Error()
}

func (e *pathError) Unwrap() error { return e.err }

func withPath(kind string, path []string, err error) error {
	if err == nil {
		return nil
	}
	var pe *pathError
	if errors.As(err, &pe) {
		return err
	}
	return &pathError{kind: kind, path: append([]string(nil), path...), err: err}
}
