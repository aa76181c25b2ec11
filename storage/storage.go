/*
 * Copyright 2022 The Entropychain Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package storage provides the keyed record store backing the entropy
// protocol state: provider records, request records, the config singleton
// and vault balances. All mutations of one protocol operation are collected
// in a Batch and applied atomically.
package storage

import (
	"github.com/pkg/errors"
)

// ErrKeyNotFound indicates a get of an absent key.
var ErrKeyNotFound = errors.New("key not found")

// batchOp is a single staged write.
type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch collects writes to be applied atomically by Database.Write.
type Batch struct {
	ops []batchOp
}

// Put stages a put of value at key.
func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: dup(key), value: dup(value)})
}

// Delete stages a deletion of key.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: dup(key), delete: true})
}

// Len returns the count of staged writes.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Database is the keyed record store consumed by the protocol core.
// Write applies a whole batch or nothing; concurrent writers must be
// serialized by the caller.
type Database interface {
	// Get returns the value at key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)
	// Has returns whether key exists.
	Has(key []byte) (bool, error)
	// Scan calls each for every key with the given prefix, in ascending
	// key order, until each returns false.
	Scan(prefix []byte, each func(key, value []byte) bool) error
	// Write applies the batch atomically.
	Write(b *Batch) error
	// Close releases the underlying store.
	Close() error
}

func dup(b []byte) (d []byte) {
	d = make([]byte, len(b))
	copy(d, b)
	return
}
