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

package entropy

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/types"
)

// Callback is the one-shot delivery handed to a callback target after a
// successful reveal.
type Callback struct {
	// Target is the account the callback is addressed to.
	Target proto.AccountAddress
	// Signer is the protocol credential presented to the target, so the
	// target can tell a genuine delivery from a forged call.
	Signer proto.AccountAddress
	// Provider and Sequence identify the fulfilled request.
	Provider proto.AccountAddress
	Sequence uint64
	// Random is the revealed random number.
	Random hash.Hash
	// Payload is the encoded callback payload.
	Payload []byte
	// Capabilities is the request capability list, re-validated before
	// dispatch.
	Capabilities []types.Capability
}

// Invoker delivers callbacks to their targets. A non-nil error marks the
// delivery failed; it never aborts the enclosing reveal. Invoke runs
// outside the protocol lock, so a handler may call back into the protocol.
type Invoker interface {
	Invoke(call *Callback) error
}

// Handler consumes one callback delivery.
type Handler func(call *Callback) error

// HandlerRegistry is an in-process Invoker routing callbacks to registered
// handler functions by target address.
type HandlerRegistry struct {
	sync.RWMutex
	handlers map[proto.AccountAddress]Handler
}

// NewHandlerRegistry returns an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[proto.AccountAddress]Handler),
	}
}

// Register binds target to h, replacing any previous binding.
func (r *HandlerRegistry) Register(target proto.AccountAddress, h Handler) {
	r.Lock()
	defer r.Unlock()
	r.handlers[target] = h
}

// Invoke implements Invoker.
func (r *HandlerRegistry) Invoke(call *Callback) error {
	r.RLock()
	h, ok := r.handlers[call.Target]
	r.RUnlock()
	if !ok {
		return errors.Errorf("no handler for target %s", call.Target.Short(4))
	}
	return h(call)
}

// encodeCallbackPayload builds the callback payload: the request payload
// prefix followed by the little-endian sequence number, the provider
// address and the random number.
func encodeCallbackPayload(prefix []byte, sequence uint64, provider proto.AccountAddress, random hash.Hash) []byte {
	payload := make([]byte, 0, len(prefix)+8+len(provider)+len(random))
	payload = append(payload, prefix...)
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], sequence)
	payload = append(payload, seq[:]...)
	payload = append(payload, provider[:]...)
	return append(payload, random[:]...)
}

// validateCapabilities checks that the presented capability list matches
// the list captured at request time, byte for byte and in order.
func validateCapabilities(stored, presented []types.Capability) error {
	if len(stored) != len(presented) {
		return ErrCapabilityMismatch
	}
	for i := range stored {
		if !stored[i].IsEqual(&presented[i]) {
			return ErrCapabilityMismatch
		}
	}
	return nil
}
