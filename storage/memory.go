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

package storage

import (
	"bytes"
	"sort"
	"sync"

	"github.com/mohae/deepcopy"
)

// Memory is an in-process Database for tests and throwaway deployments.
type Memory struct {
	sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-process Database.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]byte),
	}
}

// Get implements Database.Get.
func (p *Memory) Get(key []byte) (value []byte, err error) {
	p.RLock()
	defer p.RUnlock()
	v, ok := p.records[string(key)]
	if !ok {
		err = ErrKeyNotFound
		return
	}
	// Hand out a snapshot so callers cannot mutate committed state.
	value = deepcopy.Copy(v).([]byte)
	return
}

// Has implements Database.Has.
func (p *Memory) Has(key []byte) (exists bool, err error) {
	p.RLock()
	defer p.RUnlock()
	_, exists = p.records[string(key)]
	return
}

// Scan implements Database.Scan.
func (p *Memory) Scan(prefix []byte, each func(key, value []byte) bool) (err error) {
	p.RLock()
	keys := make([]string, 0, len(p.records))
	for k := range p.records {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	snapshot := make([][]byte, len(keys))
	for i, k := range keys {
		snapshot[i] = deepcopy.Copy(p.records[k]).([]byte)
	}
	p.RUnlock()

	for i, k := range keys {
		if !each([]byte(k), snapshot[i]) {
			break
		}
	}
	return
}

// Write implements Database.Write.
func (p *Memory) Write(b *Batch) (err error) {
	p.Lock()
	defer p.Unlock()
	for _, op := range b.ops {
		if op.delete {
			delete(p.records, string(op.key))
		} else {
			p.records[string(op.key)] = dup(op.value)
		}
	}
	return
}

// Close implements Database.Close.
func (p *Memory) Close() error {
	return nil
}
