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

// Package entropy implements a provider based commit-reveal randomness
// protocol. Providers pre-commit to reversed hash chains and assign one
// chain position per request; a request binds a user commitment to the
// provider chain tip, and a later reveal combines both secrets, optionally
// mixed with historical beacon entropy, into a verifiable random number.
package entropy

import (
	"encoding/binary"
	"sync"

	"github.com/entropychain/entropy/beacon"
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/storage"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils/log"
)

const defaultFeeResolution = 10000

// ProtocolConfig carries the deployment parameters of a Protocol instance.
// Zero fields fall back to sane defaults.
type ProtocolConfig struct {
	// Beacon supplies historical external entropy; nil disables beacon
	// mixing, failing reveals of requests that opted in.
	Beacon beacon.Source
	// Invoker delivers reveal callbacks; nil marks every dispatch failed.
	Invoker Invoker
	// HashSuite selects the protocol hash function, THashSuite by default.
	HashSuite hash.Suite
	// FeeResolution is the granularity resource limits are normalized to
	// before fee scaling, 10000 by default.
	FeeResolution uint64
	// BaseSequence is the first sequence number assigned to a freshly
	// registered provider chain.
	BaseSequence uint64
	// RecordDeposit is held in escrow per request record and refunded to
	// the payer on retirement.
	RecordDeposit uint64
}

// Protocol is the protocol state machine over a single database. Every
// exported operation is atomic: it either commits all of its writes or
// none.
type Protocol struct {
	sync.Mutex
	db            storage.Database
	beacon        beacon.Source
	invoker       Invoker
	suite         hash.Suite
	feeResolution uint64
	baseSequence  uint64
	recordDeposit uint64
	secretCounter uint64
	signer        proto.AccountAddress
}

// NewProtocol opens a protocol instance over db.
func NewProtocol(db storage.Database, config *ProtocolConfig) *Protocol {
	if config == nil {
		config = &ProtocolConfig{}
	}
	suite := config.HashSuite
	if suite.HashFunc == nil {
		suite = hash.THashSuite
	}
	resolution := config.FeeResolution
	if resolution == 0 {
		resolution = defaultFeeResolution
	}
	p := &Protocol{
		db:            db,
		beacon:        config.Beacon,
		invoker:       config.Invoker,
		suite:         suite,
		feeResolution: resolution,
		baseSequence:  config.BaseSequence,
		recordDeposit: config.RecordDeposit,
	}
	p.signer = proto.AccountAddress(suite.HashFunc([]byte("entropy-protocol-signer")))
	return p
}

// BaseSequence returns the anchor sequence assigned to fresh provider
// registrations.
func (p *Protocol) BaseSequence() uint64 {
	return p.baseSequence
}

// Signer returns the protocol credential presented to callback targets.
func (p *Protocol) Signer() proto.AccountAddress {
	return p.signer
}

// Initialize creates the singleton configuration record. It fails if the
// protocol has already been initialized.
func (p *Protocol) Initialize(admin, defaultProvider proto.AccountAddress, platformFee uint64, seed hash.Hash) (err error) {
	if admin.IsZero() {
		return ErrZeroIdentity
	}
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	if _, err = t.loadConfig(); err == nil {
		return ErrAlreadyInitialized
	} else if err != ErrNotInitialized {
		return
	}
	if err = t.storeConfig(&types.Config{
		Admin:           admin,
		DefaultProvider: defaultProvider,
		PlatformFee:     platformFee,
		Seed:            seed,
	}); err != nil {
		return
	}
	if err = t.commit(); err != nil {
		return
	}
	log.WithFields(log.Fields{
		"admin":       admin.Short(4),
		"platformFee": platformFee,
	}).Info("protocol initialized")
	return
}

// Deposit credits amount to account. It stands in for value arriving from
// the hosting environment.
func (p *Protocol) Deposit(account proto.AccountAddress, amount uint64) (err error) {
	if account.IsZero() {
		return ErrZeroIdentity
	}
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	if err = t.credit(account, amount); err != nil {
		return
	}
	return t.commit()
}

// Balance returns the tracked balance of account.
func (p *Protocol) Balance(account proto.AccountAddress) (amount uint64, err error) {
	p.Lock()
	defer p.Unlock()
	return newTxn(p.db).balance(account)
}

// Provider returns the registered provider record of authority.
func (p *Protocol) Provider(authority proto.AccountAddress) (provider *types.Provider, err error) {
	p.Lock()
	defer p.Unlock()
	return newTxn(p.db).loadProvider(authority)
}

// RequestRecord returns the pending request record at (provider, sequence).
func (p *Protocol) RequestRecord(provider proto.AccountAddress, sequence uint64) (request *types.Request, err error) {
	p.Lock()
	defer p.Unlock()
	return newTxn(p.db).loadRequest(provider, sequence)
}

// ConfigRecord returns the protocol configuration record.
func (p *Protocol) ConfigRecord() (config *types.Config, err error) {
	p.Lock()
	defer p.Unlock()
	return newTxn(p.db).loadConfig()
}

// providerVault derives the fee accrual account of a provider authority.
func (p *Protocol) providerVault(authority proto.AccountAddress) proto.AccountAddress {
	raw := make([]byte, 0, len("provider-vault")+len(authority))
	raw = append(raw, "provider-vault"...)
	raw = append(raw, authority[:]...)
	return proto.AccountAddress(p.suite.HashFunc(raw))
}

// platformVault derives the platform fee accrual account.
func (p *Protocol) platformVault() proto.AccountAddress {
	return proto.AccountAddress(p.suite.HashFunc([]byte("platform-vault")))
}

// escrowVault derives the account holding request record deposits.
func (p *Protocol) escrowVault() proto.AccountAddress {
	return proto.AccountAddress(p.suite.HashFunc([]byte("record-escrow")))
}

// nextUserSecret derives a fresh pseudo random user secret from the
// configured seed. Callers must hold the protocol lock.
func (p *Protocol) nextUserSecret(seed hash.Hash) hash.Hash {
	p.secretCounter++
	raw := make([]byte, len(seed)+8)
	copy(raw, seed[:])
	binary.BigEndian.PutUint64(raw[len(seed):], p.secretCounter)
	return p.suite.HashFunc(raw)
}
