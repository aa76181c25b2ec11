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
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/storage"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils"
)

var (
	providerPrefix = []byte{'P', 'V'}
	requestPrefix  = []byte{'R', 'Q'}
	balancePrefix  = []byte{'B', 'L'}
	configKey      = []byte{'C', 'F'}
)

func providerKey(provider proto.AccountAddress) []byte {
	key := make([]byte, 0, len(providerPrefix)+len(provider))
	key = append(key, providerPrefix...)
	return append(key, provider[:]...)
}

// requestKey orders requests of one provider by sequence number, so a
// prefix scan walks them oldest first.
func requestKey(provider proto.AccountAddress, sequence uint64) []byte {
	key := make([]byte, 0, len(requestPrefix)+len(provider)+8)
	key = append(key, requestPrefix...)
	key = append(key, provider[:]...)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	return append(key, seq[:]...)
}

func requestScanPrefix(provider proto.AccountAddress) []byte {
	key := make([]byte, 0, len(requestPrefix)+len(provider))
	key = append(key, requestPrefix...)
	return append(key, provider[:]...)
}

func balanceKey(account proto.AccountAddress) []byte {
	key := make([]byte, 0, len(balancePrefix)+len(account))
	key = append(key, balancePrefix...)
	return append(key, account[:]...)
}

// txn stages the writes of a single protocol operation and commits them
// as one atomic batch. Only balances carry a staged read overlay, so
// repeated transfers within one operation compound; record reads always
// see the committed database, and no operation re-reads a record it
// wrote.
type txn struct {
	db       storage.Database
	batch    *storage.Batch
	balances map[proto.AccountAddress]uint64
}

func newTxn(db storage.Database) *txn {
	return &txn{
		db:       db,
		batch:    &storage.Batch{},
		balances: make(map[proto.AccountAddress]uint64),
	}
}

func (t *txn) load(key []byte, value interface{}) (err error) {
	var raw []byte
	if raw, err = t.db.Get(key); err != nil {
		return
	}
	return utils.DecodeMsgPack(raw, value)
}

func (t *txn) store(key []byte, value interface{}) (err error) {
	var raw *bytes.Buffer
	if raw, err = utils.EncodeMsgPack(value); err != nil {
		return
	}
	t.batch.Put(key, raw.Bytes())
	return
}

func (t *txn) loadConfig() (config *types.Config, err error) {
	config = &types.Config{}
	if err = t.load(configKey, config); err != nil {
		if errors.Cause(err) == storage.ErrKeyNotFound {
			err = ErrNotInitialized
		}
		return nil, err
	}
	return
}

func (t *txn) storeConfig(config *types.Config) error {
	return t.store(configKey, config)
}

func (t *txn) loadProvider(provider proto.AccountAddress) (p *types.Provider, err error) {
	p = &types.Provider{}
	if err = t.load(providerKey(provider), p); err != nil {
		if errors.Cause(err) == storage.ErrKeyNotFound {
			err = ErrProviderNotFound
		}
		return nil, err
	}
	return
}

func (t *txn) storeProvider(provider proto.AccountAddress, p *types.Provider) error {
	return t.store(providerKey(provider), p)
}

func (t *txn) hasProvider(provider proto.AccountAddress) (bool, error) {
	return t.db.Has(providerKey(provider))
}

func (t *txn) loadRequest(provider proto.AccountAddress, sequence uint64) (r *types.Request, err error) {
	r = &types.Request{}
	if err = t.load(requestKey(provider, sequence), r); err != nil {
		if errors.Cause(err) == storage.ErrKeyNotFound {
			err = ErrRequestNotFound
		}
		return nil, err
	}
	return
}

func (t *txn) storeRequest(r *types.Request) error {
	return t.store(requestKey(r.Provider, r.Sequence), r)
}

func (t *txn) deleteRequest(provider proto.AccountAddress, sequence uint64) {
	t.batch.Delete(requestKey(provider, sequence))
}

// balance reads the staged balance of an account, falling back to the
// committed record. A missing record means zero.
func (t *txn) balance(account proto.AccountAddress) (amount uint64, err error) {
	if amount, ok := t.balances[account]; ok {
		return amount, nil
	}
	if err = t.load(balanceKey(account), &amount); err != nil {
		if errors.Cause(err) == storage.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}
	return
}

func (t *txn) credit(account proto.AccountAddress, amount uint64) (err error) {
	var current uint64
	if current, err = t.balance(account); err != nil {
		return
	}
	if current > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	t.balances[account] = current + amount
	return
}

func (t *txn) debit(account proto.AccountAddress, amount uint64) (err error) {
	var current uint64
	if current, err = t.balance(account); err != nil {
		return
	}
	if current < amount {
		return ErrInsufficientBalance
	}
	t.balances[account] = current - amount
	return
}

// commit flushes staged balances into the batch and writes the batch
// atomically.
func (t *txn) commit() (err error) {
	for account, amount := range t.balances {
		if err = t.store(balanceKey(account), amount); err != nil {
			return
		}
	}
	return t.db.Write(t.batch)
}
