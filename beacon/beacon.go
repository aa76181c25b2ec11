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

// Package beacon provides the historical-entropy oracle consumed by reveals
// that opted into external entropy. A beacon value is unpredictable at
// request time and fixed by reveal time; once a slot leaves the retention
// window its value is gone for good, so a reveal depending on it can never
// succeed.
package beacon

import (
	"encoding/binary"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/utils/log"
)

var (
	// ErrOutOfRetention indicates the slot left the retention window.
	// This condition is permanent.
	ErrOutOfRetention = errors.New("beacon slot out of retention")
	// ErrFutureSlot indicates the slot has not been produced yet.
	ErrFutureSlot = errors.New("beacon slot not produced yet")
)

// Source is the oracle interface the protocol core consumes. Current returns
// the marker a freshly created request is bound to; Entropy resolves a past
// marker to its value, or fails once the marker is outside retention.
type Source interface {
	Current() uint64
	Entropy(slot uint64) (hash.Hash, error)
}

// Ring is an in-process Source holding the most recent slots in an LRU
// window. Slots are produced by Advance; eviction is driven purely by the
// window size.
type Ring struct {
	sync.RWMutex
	window *lru.Cache
	slot   uint64
	seed   hash.Hash
}

// NewRing returns a Ring retaining the given number of recent slots, with
// slot values derived by chaining over seed.
func NewRing(retention int, seed hash.Hash) (r *Ring, err error) {
	r = &Ring{seed: seed}
	if r.window, err = lru.New(retention); err != nil {
		err = errors.Wrap(err, "create retention window failed")
		return
	}
	// Slot 0 exists from the start so Current is always answerable.
	r.window.Add(uint64(0), r.derive(0))
	return
}

// Current returns the most recently produced slot marker.
func (r *Ring) Current() uint64 {
	r.RLock()
	defer r.RUnlock()
	return r.slot
}

// Entropy returns the value of a past slot, ErrFutureSlot for an unproduced
// one, or ErrOutOfRetention once the slot has been evicted.
func (r *Ring) Entropy(slot uint64) (h hash.Hash, err error) {
	r.RLock()
	defer r.RUnlock()
	if slot > r.slot {
		err = ErrFutureSlot
		return
	}
	// Peek keeps lookups from refreshing recency; only Advance drives
	// eviction, so the window is strictly the newest slots.
	v, ok := r.window.Peek(slot)
	if !ok {
		err = ErrOutOfRetention
		return
	}
	h = v.(hash.Hash)
	return
}

// Advance produces the next slot and returns its marker.
func (r *Ring) Advance() uint64 {
	r.Lock()
	defer r.Unlock()
	r.slot++
	r.window.Add(r.slot, r.derive(r.slot))
	log.WithField("slot", r.slot).Debug("beacon advanced")
	return r.slot
}

func (r *Ring) derive(slot uint64) hash.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], slot)
	return hash.HashH(append(r.seed.CloneBytes(), buf[:]...))
}
