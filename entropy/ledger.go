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
	"math"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils"
	"github.com/entropychain/entropy/utils/log"
)

// RequestArgs carries one randomness request. Callback fields are only
// meaningful when CallbackTarget is set.
type RequestArgs struct {
	// Requester issues the request; Payer funds it and receives the record
	// deposit refund, defaulting to Requester when zero.
	Requester proto.AccountAddress
	Payer     proto.AccountAddress
	// UserCommitment is the hash of the requester secret.
	UserCommitment hash.Hash
	// UseBeacon opts the reveal into mixing in historical beacon entropy.
	UseBeacon bool
	// ResourceLimit is the resource budget hint fed into fee scaling.
	ResourceLimit uint64
	// Payment is the offered payment in payment units; anything strictly
	// below the required fee is rejected before any mutation.
	Payment uint64
	// CallbackTarget receives the one-shot callback; zero means none.
	CallbackTarget proto.AccountAddress
	// Capabilities is the ordered capability list handed to the target.
	Capabilities []types.Capability
	// PayloadPrefix is prepended verbatim to the callback payload.
	PayloadPrefix []byte
}

// Request assigns the next sequence number of provider to a new request
// record and charges the fee. It returns the assigned sequence number.
func (p *Protocol) Request(provider proto.AccountAddress, args *RequestArgs) (sequence uint64, err error) {
	if provider.IsZero() || args.Requester.IsZero() {
		return 0, ErrZeroIdentity
	}
	if args.UserCommitment.IsZero() {
		return 0, ErrZeroCommitment
	}
	if len(args.Capabilities) > types.MaxCapabilities {
		return 0, ErrTooManyCapabilities
	}
	if len(args.PayloadPrefix) > types.MaxPayloadPrefixLen {
		return 0, ErrFieldTooLong
	}
	payer := args.Payer
	if payer.IsZero() {
		payer = args.Requester
	}

	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var config *types.Config
	if config, err = t.loadConfig(); err != nil {
		return
	}
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	if record.Remaining() == 0 {
		return 0, ErrOutOfRandomness
	}
	sequence = record.NextSequence
	distance := sequence - record.CurrentSequence
	if record.MaxChainDistance > 0 && distance > record.MaxChainDistance {
		return 0, ErrChainTooStale
	}

	var fee uint64
	if fee, err = requiredFee(record, config.PlatformFee, args.ResourceLimit, p.feeResolution); err != nil {
		return
	}
	if fee > math.MaxUint64-p.recordDeposit {
		return 0, ErrFeeOverflow
	}
	charge := fee + p.recordDeposit
	if args.Payment < charge {
		return 0, ErrInsufficientPayment
	}
	if err = t.debit(payer, charge); err != nil {
		return
	}
	if err = t.credit(p.providerVault(provider), fee-config.PlatformFee); err != nil {
		return
	}
	if err = t.credit(p.platformVault(), config.PlatformFee); err != nil {
		return
	}
	if err = t.credit(p.escrowVault(), p.recordDeposit); err != nil {
		return
	}

	var slot uint64
	if args.UseBeacon {
		if p.beacon == nil {
			return 0, ErrEntropyUnavailable
		}
		slot = p.beacon.Current()
	}
	status := types.CallbackNotNecessary
	if !args.CallbackTarget.IsZero() {
		status = types.CallbackNotStarted
	}
	if err = t.storeRequest(&types.Request{
		Provider:       provider,
		Sequence:       sequence,
		Commitment:     p.bindCommitment(args.UserCommitment, record.CurrentCommitment),
		ChainDistance:  distance,
		Slot:           slot,
		Requester:      args.Requester,
		Payer:          payer,
		Deposit:        p.recordDeposit,
		UseBeacon:      args.UseBeacon,
		ResourceLimit:  args.ResourceLimit,
		CallbackStatus: status,
		CallbackTarget: args.CallbackTarget,
		Capabilities:   args.Capabilities,
		PayloadPrefix:  args.PayloadPrefix,
	}); err != nil {
		return
	}
	record.NextSequence++
	if err = t.storeProvider(provider, record); err != nil {
		return
	}
	if err = t.commit(); err != nil {
		return
	}
	log.WithFields(log.Fields{
		"provider": provider.Short(4),
		"sequence": sequence,
		"callback": status.String(),
	}).Debug("request created")
	return
}

// RequestRandom is the convenience request against the configured default
// provider: the user secret is derived from the protocol seed and returned
// to the caller for the eventual reveal.
func (p *Protocol) RequestRandom(requester proto.AccountAddress, payment uint64, useBeacon bool) (provider proto.AccountAddress, sequence uint64, userSecret hash.Hash, err error) {
	var config *types.Config
	if config, err = p.ConfigRecord(); err != nil {
		return
	}
	if config.DefaultProvider.IsZero() {
		err = ErrProviderNotFound
		return
	}
	provider = config.DefaultProvider

	p.Lock()
	userSecret = p.nextUserSecret(config.Seed)
	p.Unlock()

	sequence, err = p.Request(provider, &RequestArgs{
		Requester:      requester,
		UserCommitment: p.suite.HashFunc(userSecret[:]),
		UseBeacon:      useBeacon,
		Payment:        payment,
	})
	return
}

// OpenRequests returns the pending requests of provider in ascending
// sequence order.
func (p *Protocol) OpenRequests(provider proto.AccountAddress) (requests []*types.Request, err error) {
	p.Lock()
	defer p.Unlock()
	var scanErr error
	err = p.db.Scan(requestScanPrefix(provider), func(_, value []byte) bool {
		r := &types.Request{}
		if scanErr = utils.DecodeMsgPack(value, r); scanErr != nil {
			return false
		}
		requests = append(requests, r)
		return true
	})
	if err == nil {
		err = scanErr
	}
	return
}

// bindCommitment binds a user commitment to the provider chain tip observed
// at request time.
func (p *Protocol) bindCommitment(userCommitment, providerCommitment hash.Hash) hash.Hash {
	raw := make([]byte, 0, len(userCommitment)+len(providerCommitment))
	raw = append(raw, userCommitment[:]...)
	raw = append(raw, providerCommitment[:]...)
	return p.suite.HashFunc(raw)
}

// retireRequest destroys the request record and refunds the record deposit
// to the payer.
func (p *Protocol) retireRequest(t *txn, r *types.Request) (err error) {
	t.deleteRequest(r.Provider, r.Sequence)
	if r.Deposit > 0 {
		if err = t.debit(p.escrowVault(), r.Deposit); err != nil {
			return
		}
		if err = t.credit(r.Payer, r.Deposit); err != nil {
			return
		}
	}
	return
}
