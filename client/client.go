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

// Package client is the reference consumer of the protocol surface: a
// requester issuing one-shot randomness requests and a provider daemon
// serving reveals.
package client

import (
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/entropy"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/types"
)

// PendingRandom tracks a submitted request until its reveal. The user
// secret must be disclosed to the provider for the reveal to happen.
type PendingRandom struct {
	Provider   proto.AccountAddress
	Sequence   uint64
	UserSecret hash.Hash
}

// Requester issues randomness requests on behalf of one account.
type Requester struct {
	protocol *entropy.Protocol
	account  proto.AccountAddress
}

// NewRequester binds account to protocol.
func NewRequester(protocol *entropy.Protocol, account proto.AccountAddress) *Requester {
	return &Requester{protocol: protocol, account: account}
}

func newUserSecret() (secret hash.Hash, err error) {
	var raw [32]byte
	if _, err = rand.Read(raw[:]); err != nil {
		err = errors.Wrap(err, "generate user secret failed")
		return
	}
	return hash.THashH(raw[:]), nil
}

// Request submits a plain randomness request against provider and returns
// the pending handle holding the freshly generated user secret.
func (r *Requester) Request(provider proto.AccountAddress, payment uint64, useBeacon bool) (pending *PendingRandom, err error) {
	var secret hash.Hash
	if secret, err = newUserSecret(); err != nil {
		return
	}
	var sequence uint64
	if sequence, err = r.protocol.Request(provider, &entropy.RequestArgs{
		Requester:      r.account,
		UserCommitment: hash.THashH(secret[:]),
		UseBeacon:      useBeacon,
		Payment:        payment,
	}); err != nil {
		return
	}
	return &PendingRandom{Provider: provider, Sequence: sequence, UserSecret: secret}, nil
}

// RequestWithCallback submits a callback randomness request. The target
// receives the payload prefix, sequence, provider and random number once a
// reveal dispatches successfully.
func (r *Requester) RequestWithCallback(provider proto.AccountAddress, payment uint64, useBeacon bool, target proto.AccountAddress, capabilities []types.Capability, payloadPrefix []byte) (pending *PendingRandom, err error) {
	var secret hash.Hash
	if secret, err = newUserSecret(); err != nil {
		return
	}
	var sequence uint64
	if sequence, err = r.protocol.Request(provider, &entropy.RequestArgs{
		Requester:      r.account,
		UserCommitment: hash.THashH(secret[:]),
		UseBeacon:      useBeacon,
		Payment:        payment,
		CallbackTarget: target,
		Capabilities:   capabilities,
		PayloadPrefix:  payloadPrefix,
	}); err != nil {
		return
	}
	return &PendingRandom{Provider: provider, Sequence: sequence, UserSecret: secret}, nil
}

// Reveal satisfies a pending plain request directly, given the provider
// secret fetched from the provider service.
func (r *Requester) Reveal(pending *PendingRandom, providerSecret hash.Hash) (random hash.Hash, err error) {
	return r.protocol.Reveal(pending.Provider, pending.Sequence,
		pending.UserSecret, providerSecret)
}
