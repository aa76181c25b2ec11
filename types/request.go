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

package types

import (
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
)

const (
	// MaxCapabilities is the capacity of the request capability list.
	MaxCapabilities = 16
	// MaxPayloadPrefixLen is the capacity of the callback payload prefix.
	MaxPayloadPrefixLen = 256
)

// CallbackStatus tracks the callback lifecycle of a request.
type CallbackStatus byte

const (
	// CallbackNotNecessary marks a request created without a callback;
	// it is directly eligible for terminal reveal.
	CallbackNotNecessary CallbackStatus = iota
	// CallbackNotStarted marks a callback request whose dispatch has not
	// been attempted yet.
	CallbackNotStarted
	// CallbackInProgress is held only for the duration of a dispatch.
	CallbackInProgress
	// CallbackFailed marks a failed dispatch; a later reveal may retry.
	CallbackFailed
)

func (s CallbackStatus) String() string {
	switch s {
	case CallbackNotNecessary:
		return "NotNecessary"
	case CallbackNotStarted:
		return "NotStarted"
	case CallbackInProgress:
		return "InProgress"
	case CallbackFailed:
		return "Failed"
	}
	return "Unknown"
}

// Capability is one external reference handed to the callback target,
// captured verbatim at request time and re-validated at reveal time.
type Capability struct {
	Ref      proto.AccountAddress
	Signer   bool
	Writable bool
}

// IsEqual returns true if both capabilities match byte for byte.
func (c *Capability) IsEqual(target *Capability) bool {
	return c.Ref == target.Ref &&
		c.Signer == target.Signer &&
		c.Writable == target.Writable
}

// Request is the pending randomness request record, keyed by
// (Provider, Sequence). It is destroyed exactly once, on terminal reveal.
type Request struct {
	// Provider is the provider authority this request is bound to.
	Provider proto.AccountAddress
	// Sequence is the per-provider sequence number, assigned once and never
	// reused.
	Sequence uint64
	// Commitment binds the user commitment to the provider chain tip
	// observed at creation time. Immutable.
	Commitment hash.Hash
	// ChainDistance is sequence minus the provider current sequence at
	// creation time.
	ChainDistance uint64
	// Slot is the beacon position observed at creation, used to fetch
	// external entropy at reveal time.
	Slot uint64
	// Requester is the account that issued the request.
	Requester proto.AccountAddress
	// Payer is the account refunded with the record deposit on retirement.
	Payer proto.AccountAddress
	// Deposit is the record deposit held in escrow until retirement.
	Deposit uint64
	// UseBeacon opts the reveal into mixing in historical beacon entropy.
	UseBeacon bool
	// ResourceLimit is the per-request resource budget hint.
	ResourceLimit uint64
	// CallbackStatus is the request state machine position.
	CallbackStatus CallbackStatus
	// CallbackTarget receives the one-shot callback; zero means no callback.
	CallbackTarget proto.AccountAddress
	// Capabilities is the ordered capability list captured at creation.
	// Immutable.
	Capabilities []Capability
	// PayloadPrefix is prepended verbatim to the callback payload.
	// Immutable.
	PayloadPrefix []byte
}

// HasCallback returns true if the request registered a callback target.
func (r *Request) HasCallback() bool {
	return !r.CallbackTarget.IsZero()
}

// Revealable returns true if the request may enter a reveal in its current
// callback state.
func (r *Request) Revealable(withCallback bool) bool {
	if withCallback {
		return r.CallbackStatus == CallbackNotStarted ||
			r.CallbackStatus == CallbackFailed
	}
	return r.CallbackStatus == CallbackNotNecessary
}
