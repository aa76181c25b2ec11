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
	"github.com/entropychain/entropy/beacon"
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils/log"
)

// verifyRevelation checks that the supplied secrets reproduce the stored
// request commitment and that the provider secret links to the live chain
// tip, then returns the beacon entropy the request opted into.
func (p *Protocol) verifyRevelation(
	record *types.Provider, request *types.Request,
	userSecret, providerSecret hash.Hash,
) (entropy hash.Hash, err error) {
	userCommitment := p.suite.HashFunc(userSecret[:])
	bound := p.bindCommitment(userCommitment,
		ChainCommit(p.suite.HashFunc, providerSecret, request.ChainDistance))
	if !bound.IsEqual(&request.Commitment) {
		return hash.Hash{}, ErrIncorrectRevelation
	}

	// The secret must also link to the live tip, in whichever direction the
	// chain head sits relative to this sequence number.
	if request.Sequence >= record.CurrentSequence {
		if !ChainVerify(p.suite.HashFunc, providerSecret,
			request.Sequence-record.CurrentSequence, record.CurrentCommitment) {
			return hash.Hash{}, ErrIncorrectRevelation
		}
	} else {
		if !ChainVerify(p.suite.HashFunc, record.CurrentCommitment,
			record.CurrentSequence-request.Sequence, providerSecret) {
			return hash.Hash{}, ErrIncorrectRevelation
		}
	}

	if request.UseBeacon {
		if p.beacon == nil {
			return hash.Hash{}, ErrEntropyUnavailable
		}
		if entropy, err = p.beacon.Entropy(request.Slot); err != nil {
			if err == beacon.ErrOutOfRetention {
				err = ErrEntropyUnavailable
			}
			return hash.Hash{}, err
		}
	}
	return
}

// combine derives the random number from both secrets and the optional
// beacon entropy (zero when the request opted out).
func (p *Protocol) combine(userSecret, providerSecret, entropy hash.Hash) hash.Hash {
	raw := make([]byte, 0, len(userSecret)+len(providerSecret)+len(entropy))
	raw = append(raw, userSecret[:]...)
	raw = append(raw, providerSecret[:]...)
	raw = append(raw, entropy[:]...)
	return p.suite.HashFunc(raw)
}

// advanceHead moves the provider chain head to the revealed position when
// it is newer than the current one. Older reveals leave the head untouched.
func advanceHead(record *types.Provider, sequence uint64, providerSecret hash.Hash) {
	if sequence > record.CurrentSequence {
		record.CurrentCommitment = providerSecret
		record.CurrentSequence = sequence
	}
}

// Reveal satisfies a request created without a callback, retires it and
// returns the random number. The request must never have registered a
// callback target.
func (p *Protocol) Reveal(provider proto.AccountAddress, sequence uint64, userSecret, providerSecret hash.Hash) (random hash.Hash, err error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	var request *types.Request
	if request, err = t.loadRequest(provider, sequence); err != nil {
		return
	}
	if !request.Revealable(false) {
		return hash.Hash{}, ErrInvalidRevealState
	}
	var entropy hash.Hash
	if entropy, err = p.verifyRevelation(record, request, userSecret, providerSecret); err != nil {
		return hash.Hash{}, err
	}
	random = p.combine(userSecret, providerSecret, entropy)

	advanceHead(record, sequence, providerSecret)
	if err = t.storeProvider(provider, record); err != nil {
		return
	}
	if err = p.retireRequest(t, request); err != nil {
		return
	}
	if err = t.commit(); err != nil {
		return
	}
	log.WithFields(log.Fields{
		"provider": provider.Short(4),
		"sequence": sequence,
	}).Debug("request revealed")
	return
}

// RevealWithCallback satisfies a request created with a callback target.
// The presented capability list must match the one captured at request
// time. A dispatch failure never fails the reveal: the random number is
// already determined and the chain head already advanced, so the request
// only drops to the failed state and stays retryable. The returned
// delivered flag reports the dispatch outcome.
//
// The callback is dispatched without the protocol lock, so handlers may
// call back into the protocol; the committed InProgress state keeps the
// request off-limits to concurrent reveals in the meantime.
func (p *Protocol) RevealWithCallback(provider proto.AccountAddress, sequence uint64, userSecret, providerSecret hash.Hash, capabilities []types.Capability) (random hash.Hash, delivered bool, err error) {
	var request *types.Request
	if random, request, err = p.beginCallbackReveal(provider, sequence, userSecret, providerSecret, capabilities); err != nil {
		return
	}

	var dispatchErr error
	if p.invoker == nil {
		dispatchErr = ErrNoInvoker
	} else {
		dispatchErr = p.invoker.Invoke(&Callback{
			Target:       request.CallbackTarget,
			Signer:       p.signer,
			Provider:     provider,
			Sequence:     sequence,
			Random:       random,
			Payload:      encodeCallbackPayload(request.PayloadPrefix, sequence, provider, random),
			Capabilities: request.Capabilities,
		})
	}

	return p.finishCallbackReveal(request, random, dispatchErr)
}

// beginCallbackReveal verifies the revelation, advances the chain head and
// commits the request in the InProgress state, all under the protocol
// lock. Every validation failure leaves the request untouched.
func (p *Protocol) beginCallbackReveal(provider proto.AccountAddress, sequence uint64, userSecret, providerSecret hash.Hash, capabilities []types.Capability) (random hash.Hash, request *types.Request, err error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	if request, err = t.loadRequest(provider, sequence); err != nil {
		return
	}
	if !request.Revealable(true) {
		err = ErrInvalidRevealState
		return
	}
	if err = validateCapabilities(request.Capabilities, capabilities); err != nil {
		return
	}
	var entropy hash.Hash
	if entropy, err = p.verifyRevelation(record, request, userSecret, providerSecret); err != nil {
		return
	}
	random = p.combine(userSecret, providerSecret, entropy)

	advanceHead(record, sequence, providerSecret)
	if err = t.storeProvider(provider, record); err != nil {
		return
	}
	request.CallbackStatus = types.CallbackInProgress
	if err = t.storeRequest(request); err != nil {
		return
	}
	err = t.commit()
	return
}

// finishCallbackReveal settles the InProgress request after dispatch: a
// failed dispatch drops it to the failed state and stays retryable, a
// successful one retires it.
func (p *Protocol) finishCallbackReveal(request *types.Request, random hash.Hash, dispatchErr error) (hash.Hash, bool, error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	if dispatchErr != nil {
		request.CallbackStatus = types.CallbackFailed
		if err := t.storeRequest(request); err != nil {
			return random, false, err
		}
		if err := t.commit(); err != nil {
			return random, false, err
		}
		log.WithFields(log.Fields{
			"provider": request.Provider.Short(4),
			"sequence": request.Sequence,
		}).WithError(dispatchErr).Warning("callback dispatch failed")
		return random, false, nil
	}

	if err := p.retireRequest(t, request); err != nil {
		return random, false, err
	}
	if err := t.commit(); err != nil {
		return random, false, err
	}
	log.WithFields(log.Fields{
		"provider": request.Provider.Short(4),
		"sequence": request.Sequence,
	}).Debug("request revealed with callback")
	return random, true, nil
}

// AdvanceCommitment moves the provider chain head forward out-of-band,
// without satisfying any specific request. Authority only. If the new head
// reaches NextSequence the assignment cursor is bumped past it.
func (p *Protocol) AdvanceCommitment(caller, provider proto.AccountAddress, target uint64, providerSecret hash.Hash) (err error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	if caller != record.Authority {
		return ErrUnauthorized
	}
	if target <= record.CurrentSequence || target >= record.EndSequence {
		return ErrInvalidAdvanceTarget
	}
	if !ChainVerify(p.suite.HashFunc, providerSecret,
		target-record.CurrentSequence, record.CurrentCommitment) {
		return ErrIncorrectRevelation
	}
	record.CurrentCommitment = providerSecret
	record.CurrentSequence = target
	if record.CurrentSequence >= record.NextSequence {
		record.NextSequence = record.CurrentSequence + 1
	}
	if err = t.storeProvider(provider, record); err != nil {
		return
	}
	return t.commit()
}
