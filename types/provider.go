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
	// MaxMetadataLen is the capacity of the provider commitment metadata field.
	MaxMetadataLen = 64
	// MaxURILen is the capacity of the provider URI field.
	MaxURILen = 256
)

// Provider is the registered randomness provider record. A provider
// pre-commits to a hash chain and serves one reveal per assigned sequence
// number. Re-registration overwrites the chain fields in place (a rotation)
// but preserves identity and accrued balances.
type Provider struct {
	// Authority is the account that owns this provider registration.
	Authority proto.AccountAddress
	// Fee is the flat charge per request in payment units.
	Fee uint64
	// FeeManager optionally delegates SetFee and Withdraw; zero means unset.
	FeeManager proto.AccountAddress
	// OriginalCommitment is the chain tip published at registration.
	OriginalCommitment hash.Hash
	// OriginalSequence is the sequence number the original commitment
	// anchors to.
	OriginalSequence uint64
	// CurrentCommitment is the most recently verified chain position.
	CurrentCommitment hash.Hash
	// CurrentSequence is the sequence number of CurrentCommitment. It only
	// moves forward.
	CurrentSequence uint64
	// NextSequence is the next sequence number to assign to a request.
	NextSequence uint64
	// EndSequence is the exclusive upper bound of the registered chain.
	EndSequence uint64
	// MaxChainDistance bounds the hash distance a request may sit from the
	// live tip; zero means unlimited.
	MaxChainDistance uint64
	// DefaultResourceLimit is the resource budget covered by the flat fee;
	// zero disables resource based fee scaling.
	DefaultResourceLimit uint64
	// Metadata is provider supplied commitment metadata, at most
	// MaxMetadataLen bytes.
	Metadata []byte
	// URI is the provider service endpoint, at most MaxURILen bytes.
	URI []byte
}

// InRange returns true if seq is an assignable sequence number of the
// currently registered chain.
func (p *Provider) InRange(seq uint64) bool {
	return seq >= p.OriginalSequence && seq < p.EndSequence
}

// Remaining returns the count of sequence numbers still assignable.
func (p *Provider) Remaining() uint64 {
	if p.NextSequence >= p.EndSequence {
		return 0
	}
	return p.EndSequence - p.NextSequence
}

// SanityCheck verifies the provider sequence invariant
// original <= current < next <= end.
func (p *Provider) SanityCheck() bool {
	return p.OriginalSequence <= p.CurrentSequence &&
		p.CurrentSequence < p.NextSequence &&
		p.NextSequence <= p.EndSequence
}
