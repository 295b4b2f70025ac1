// Copyright 2014-2015 The Coname Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package kv contains a generic interface for the session-scoped key-value
// store holding operator supplied artifacts. All operations are safe for
// concurrent use. Batched writes are applied atomically, which is what lets
// a whole workflow be reset in one step.
package kv

import "errors"

// DB is an abstract ordered key-value store. Get returns ErrNotFound() when
// the key is absent. Write applies every operation of a Batch or none.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	NewIterator(*Range) Iterator
	Close() error

	ErrNotFound() error
}

// A Batch contains a sequence of Put-s and Delete-s waiting to be
// Write-n to a DB.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
}

// Iterator is an abstract pointer to a DB entry. It must be valid to call
// Error() after release. The boolean return values indicate whether the
// requested entry exists. Key and Value may be reused by the next call to
// Next, callers must copy what they keep.
type Iterator interface {
	Key() []byte
	Value() []byte
	First() bool
	Next() bool
	Last() bool
	Release()
	Error() error
}

var (
	// ErrBadValue is returned when a stored value cannot be decoded.
	ErrBadValue = errors.New("[kv] Malformed stored value")
)
