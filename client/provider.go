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

package client

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/entropychain/entropy/conf"
	"github.com/entropychain/entropy/crypto/asymmetric"
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/entropy"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils/log"
)

// ProviderDaemon runs the provider side of the protocol: it registers the
// authority chain if absent (rotating when the registered commitment is not
// ours), then polls for open requests and reveals every one whose user
// secret has been disclosed to it.
type ProviderDaemon struct {
	protocol  *entropy.Protocol
	authority proto.AccountAddress
	info      *conf.ProviderInfo
	seed      hash.Hash
	key       *asymmetric.PrivateKey
	interval  time.Duration

	mu           sync.Mutex
	chain        *SecretChain
	secrets      map[uint64]hash.Hash
	attestations map[uint64]*types.RevealAttestation

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewProviderDaemon builds a daemon for authority over protocol. The seed
// is the private root all chain secrets derive from. A non-nil key makes
// the daemon sign a reveal attestation for every fulfilled request.
func NewProviderDaemon(protocol *entropy.Protocol, authority proto.AccountAddress, info *conf.ProviderInfo, seed hash.Hash, key *asymmetric.PrivateKey) *ProviderDaemon {
	interval := info.RevealInterval
	if interval == 0 {
		interval = conf.DefaultRevealInterval
	}
	return &ProviderDaemon{
		protocol:     protocol,
		authority:    authority,
		info:         info,
		seed:         seed,
		key:          key,
		interval:     interval,
		secrets:      make(map[uint64]hash.Hash),
		attestations: make(map[uint64]*types.RevealAttestation),
		stopCh:       make(chan struct{}),
	}
}

// Start registers the chain if necessary and spawns the reveal loop.
func (d *ProviderDaemon) Start() (err error) {
	if err = d.register(); err != nil {
		return
	}
	d.wg.Add(1)
	go d.revealLoop()
	return
}

// Stop terminates the reveal loop and waits for it to drain.
func (d *ProviderDaemon) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// Attestation returns the signed reveal attestation of a fulfilled
// request, or an error while the request is still pending or the daemon
// runs unsigned.
func (d *ProviderDaemon) Attestation(sequence uint64) (a *types.RevealAttestation, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.attestations[sequence]
	if !ok {
		return nil, errors.Errorf("no attestation for sequence %d", sequence)
	}
	return
}

// ObserveSecret discloses the user secret of a pending request to the
// daemon, standing in for the off-protocol channel requesters deliver
// their secrets over. The next loop turn reveals the request.
func (d *ProviderDaemon) ObserveSecret(sequence uint64, userSecret hash.Hash) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.secrets[sequence] = userSecret
}

// deriveChain rebuilds the secret chain at base. Chains at different bases
// use distinct roots so a rotation never re-exposes spent positions.
func (d *ProviderDaemon) deriveChain(base uint64) (*SecretChain, error) {
	raw := make([]byte, len(d.seed)+8)
	copy(raw, d.seed[:])
	for i := 0; i < 8; i++ {
		raw[len(d.seed)+i] = byte(base >> (8 * uint(i)))
	}
	return NewSecretChain(hash.THashH, hash.THashH(raw), base, d.info.ChainLength)
}

func (d *ProviderDaemon) register() (err error) {
	record, err := d.protocol.Provider(d.authority)
	if err == nil {
		chain, derr := d.deriveChain(record.OriginalSequence)
		if derr == nil && record.Remaining() > 0 {
			if tip := chain.Tip(); tip.IsEqual(&record.OriginalCommitment) {
				d.mu.Lock()
				d.chain = chain
				d.mu.Unlock()
				log.WithFields(log.Fields{
					"provider": d.authority.Short(4),
					"base":     record.OriginalSequence,
				}).Info("resuming registered chain")
				return nil
			}
		}
		// Registered chain is not ours or is exhausted; rotate at the
		// current cursor.
	} else if err != entropy.ErrProviderNotFound {
		return err
	}

	base := d.protocol.BaseSequence()
	if record != nil {
		base = record.NextSequence
	}
	var chain *SecretChain
	if chain, err = d.deriveChain(base); err != nil {
		return
	}
	if err = d.protocol.Register(d.authority, &entropy.RegisterArgs{
		Fee:                  d.info.Fee,
		Commitment:           chain.Tip(),
		ChainLength:          d.info.ChainLength,
		MaxChainDistance:     d.info.MaxChainDistance,
		DefaultResourceLimit: d.info.DefaultResourceLimit,
		URI:                  []byte(d.info.URI),
	}); err != nil {
		return
	}
	d.mu.Lock()
	d.chain = chain
	d.mu.Unlock()
	return
}

func (d *ProviderDaemon) revealLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			if err := d.serveOnce(); err != nil {
				log.WithField("provider", d.authority.Short(4)).
					WithError(err).Error("reveal pass failed")
			}
		}
	}
}

// serveOnce reveals every open request whose user secret is known.
func (d *ProviderDaemon) serveOnce() (err error) {
	requests, err := d.protocol.OpenRequests(d.authority)
	if err != nil {
		return
	}
	for _, request := range requests {
		d.mu.Lock()
		userSecret, disclosed := d.secrets[request.Sequence]
		chain := d.chain
		d.mu.Unlock()
		if !disclosed {
			continue
		}
		if rerr := d.reveal(chain, request, userSecret); rerr != nil {
			log.WithFields(log.Fields{
				"provider": d.authority.Short(4),
				"sequence": request.Sequence,
			}).WithError(rerr).Warning("reveal failed")
			continue
		}
		d.mu.Lock()
		delete(d.secrets, request.Sequence)
		d.mu.Unlock()
	}
	return
}

func (d *ProviderDaemon) reveal(chain *SecretChain, request *types.Request, userSecret hash.Hash) (err error) {
	var providerSecret hash.Hash
	if providerSecret, err = chain.Reveal(request.Sequence); err != nil {
		return
	}
	var random hash.Hash
	if request.HasCallback() {
		random, _, err = d.protocol.RevealWithCallback(d.authority, request.Sequence,
			userSecret, providerSecret, request.Capabilities)
	} else {
		random, err = d.protocol.Reveal(d.authority, request.Sequence,
			userSecret, providerSecret)
	}
	if err != nil || d.key == nil {
		return
	}
	attestation := &types.RevealAttestation{
		RevealedRandom: types.RevealedRandom{
			Provider: d.authority,
			Sequence: request.Sequence,
			Random:   random,
		},
	}
	if err = attestation.Sign(d.key); err != nil {
		return
	}
	d.mu.Lock()
	d.attestations[request.Sequence] = attestation
	d.mu.Unlock()
	return
}
