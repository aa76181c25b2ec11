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
	"github.com/entropychain/entropy/utils/log"
)

// RegisterArgs carries the chain and schedule parameters of a provider
// registration. The caller account becomes the provider identity.
type RegisterArgs struct {
	// Fee is the flat charge per request in payment units.
	Fee uint64
	// Commitment is the tip of the reversed hash chain the provider
	// commits to.
	Commitment hash.Hash
	// ChainLength is the count of usable chain positions, must be positive.
	ChainLength uint64
	// MaxChainDistance bounds request staleness, zero means unlimited.
	MaxChainDistance uint64
	// DefaultResourceLimit is the resource budget the flat fee covers.
	DefaultResourceLimit uint64
	// Metadata is opaque commitment metadata, at most types.MaxMetadataLen
	// bytes.
	Metadata []byte
	// URI is the provider service endpoint, at most types.MaxURILen bytes.
	URI []byte
}

// Register creates the provider record of caller, or rotates it in place if
// one already exists. A rotation anchors the new chain at the old
// NextSequence so retired sequence numbers are never reissued; requests
// still pending against the prior chain become unverifiable and are only
// reported, not refunded.
func (p *Protocol) Register(caller proto.AccountAddress, args *RegisterArgs) (err error) {
	if caller.IsZero() {
		return ErrZeroIdentity
	}
	if args.ChainLength == 0 {
		return ErrInvalidChainLength
	}
	if args.Commitment.IsZero() {
		return ErrZeroCommitment
	}
	if len(args.Metadata) > types.MaxMetadataLen || len(args.URI) > types.MaxURILen {
		return ErrFieldTooLong
	}

	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	if _, err = t.loadConfig(); err != nil {
		return
	}

	base := p.baseSequence
	var feeManager proto.AccountAddress
	if prior, perr := t.loadProvider(caller); perr == nil {
		base = prior.NextSequence
		feeManager = prior.FeeManager
		var orphaned int
		if err = t.db.Scan(requestScanPrefix(caller), func(_, _ []byte) bool {
			orphaned++
			return true
		}); err != nil {
			return
		}
		if orphaned > 0 {
			log.WithFields(log.Fields{
				"provider": caller.Short(4),
				"orphaned": orphaned,
			}).Warning("rotation leaves open requests unverifiable")
		}
	} else if perr != ErrProviderNotFound {
		return perr
	}
	if base > math.MaxUint64-args.ChainLength {
		return ErrInvalidChainLength
	}

	// Registration consumes one slot as the chain anchor.
	if err = t.storeProvider(caller, &types.Provider{
		Authority:            caller,
		Fee:                  args.Fee,
		FeeManager:           feeManager,
		OriginalCommitment:   args.Commitment,
		OriginalSequence:     base,
		CurrentCommitment:    args.Commitment,
		CurrentSequence:      base,
		NextSequence:         base + 1,
		EndSequence:          base + args.ChainLength,
		MaxChainDistance:     args.MaxChainDistance,
		DefaultResourceLimit: args.DefaultResourceLimit,
		Metadata:             args.Metadata,
		URI:                  args.URI,
	}); err != nil {
		return
	}
	if err = t.commit(); err != nil {
		return
	}
	log.WithFields(log.Fields{
		"provider": caller.Short(4),
		"base":     base,
		"end":      base + args.ChainLength,
	}).Info("provider registered")
	return
}

// mutateProvider loads, mutates and stores the provider record of provider
// inside one transaction, after auth has approved the caller.
func (p *Protocol) mutateProvider(
	caller, provider proto.AccountAddress,
	auth func(record *types.Provider) bool,
	mutate func(record *types.Provider) error,
) (err error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	if !auth(record) {
		return ErrUnauthorized
	}
	if err = mutate(record); err != nil {
		return
	}
	if err = t.storeProvider(provider, record); err != nil {
		return
	}
	return t.commit()
}

func authorityOnly(caller proto.AccountAddress) func(*types.Provider) bool {
	return func(record *types.Provider) bool {
		return caller == record.Authority
	}
}

func authorityOrFeeManager(caller proto.AccountAddress) func(*types.Provider) bool {
	return func(record *types.Provider) bool {
		return caller == record.Authority ||
			(!record.FeeManager.IsZero() && caller == record.FeeManager)
	}
}

// SetFee updates the provider flat fee. The authority and the fee manager
// may call it.
func (p *Protocol) SetFee(caller, provider proto.AccountAddress, fee uint64) error {
	return p.mutateProvider(caller, provider, authorityOrFeeManager(caller),
		func(record *types.Provider) error {
			record.Fee = fee
			return nil
		})
}

// SetURI updates the provider service endpoint.
func (p *Protocol) SetURI(caller, provider proto.AccountAddress, uri []byte) error {
	if len(uri) > types.MaxURILen {
		return ErrFieldTooLong
	}
	return p.mutateProvider(caller, provider, authorityOnly(caller),
		func(record *types.Provider) error {
			record.URI = uri
			return nil
		})
}

// SetFeeManager delegates SetFee and Withdraw to manager; a zero manager
// revokes the delegation.
func (p *Protocol) SetFeeManager(caller, provider, manager proto.AccountAddress) error {
	return p.mutateProvider(caller, provider, authorityOnly(caller),
		func(record *types.Provider) error {
			record.FeeManager = manager
			return nil
		})
}

// SetMaxChainDistance updates the staleness bound on new requests.
func (p *Protocol) SetMaxChainDistance(caller, provider proto.AccountAddress, distance uint64) error {
	return p.mutateProvider(caller, provider, authorityOnly(caller),
		func(record *types.Provider) error {
			record.MaxChainDistance = distance
			return nil
		})
}

// SetDefaultResourceLimit updates the resource budget the flat fee covers.
func (p *Protocol) SetDefaultResourceLimit(caller, provider proto.AccountAddress, limit uint64) error {
	return p.mutateProvider(caller, provider, authorityOnly(caller),
		func(record *types.Provider) error {
			record.DefaultResourceLimit = limit
			return nil
		})
}

// Withdraw moves amount from the provider fee vault to recipient. The
// authority and the fee manager may call it.
func (p *Protocol) Withdraw(caller, provider proto.AccountAddress, amount uint64, recipient proto.AccountAddress) (err error) {
	if recipient.IsZero() {
		return ErrZeroIdentity
	}
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var record *types.Provider
	if record, err = t.loadProvider(provider); err != nil {
		return
	}
	if !authorityOrFeeManager(caller)(record) {
		return ErrUnauthorized
	}
	if err = t.debit(p.providerVault(provider), amount); err != nil {
		return
	}
	if err = t.credit(recipient, amount); err != nil {
		return
	}
	return t.commit()
}

// VaultBalance returns the accrued fee balance of a provider.
func (p *Protocol) VaultBalance(provider proto.AccountAddress) (amount uint64, err error) {
	p.Lock()
	defer p.Unlock()
	return newTxn(p.db).balance(p.providerVault(provider))
}

// mutateConfig loads, mutates and stores the configuration record after
// auth has approved the caller.
func (p *Protocol) mutateConfig(
	auth func(config *types.Config) bool,
	mutate func(config *types.Config),
) (err error) {
	p.Lock()
	defer p.Unlock()
	t := newTxn(p.db)
	var config *types.Config
	if config, err = t.loadConfig(); err != nil {
		return
	}
	if !auth(config) {
		return ErrUnauthorized
	}
	mutate(config)
	if err = t.storeConfig(config); err != nil {
		return
	}
	return t.commit()
}

// SetPlatformFee updates the flat protocol charge. Admin only.
func (p *Protocol) SetPlatformFee(caller proto.AccountAddress, fee uint64) error {
	return p.mutateConfig(
		func(config *types.Config) bool { return caller == config.Admin },
		func(config *types.Config) { config.PlatformFee = fee })
}

// SetDefaultProvider updates the provider serving convenience requests.
// Admin only.
func (p *Protocol) SetDefaultProvider(caller, provider proto.AccountAddress) error {
	return p.mutateConfig(
		func(config *types.Config) bool { return caller == config.Admin },
		func(config *types.Config) { config.DefaultProvider = provider })
}

// ProposeAdmin starts the two-step admin handover. Admin only.
func (p *Protocol) ProposeAdmin(caller, successor proto.AccountAddress) error {
	return p.mutateConfig(
		func(config *types.Config) bool { return caller == config.Admin },
		func(config *types.Config) { config.ProposedAdmin = successor })
}

// AcceptAdmin completes the admin handover. Only the proposed successor may
// call it.
func (p *Protocol) AcceptAdmin(caller proto.AccountAddress) error {
	return p.mutateConfig(
		func(config *types.Config) bool {
			return !config.ProposedAdmin.IsZero() && caller == config.ProposedAdmin
		},
		func(config *types.Config) {
			config.Admin = caller
			config.ProposedAdmin = proto.AccountAddress{}
		})
}
