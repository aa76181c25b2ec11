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
	"github.com/entropychain/entropy/storage"
)

// testChain holds every value of a reversed hash chain so tests can play
// the provider role: Secret(s) is what the provider reveals for sequence s,
// Tip() is what it registers.
type testChain struct {
	f       hash.Func
	base    uint64
	secrets []hash.Hash
}

func newTestChain(f hash.Func, seed hash.Hash, base, length uint64) *testChain {
	secrets := make([]hash.Hash, length)
	secrets[length-1] = f(seed[:])
	for i := int(length) - 2; i >= 0; i-- {
		secrets[i] = f(secrets[i+1][:])
	}
	return &testChain{f: f, base: base, secrets: secrets}
}

// Tip is the registered chain commitment, the value at the base sequence.
func (c *testChain) Tip() hash.Hash {
	return c.secrets[0]
}

// Secret returns the chain value at sequence s.
func (c *testChain) Secret(s uint64) hash.Hash {
	return c.secrets[s-c.base]
}

func testAddr(name string) proto.AccountAddress {
	return proto.AccountAddress(hash.THashH([]byte(name)))
}

const (
	testChainLength = 32
	testPlatformFee = 3
	testProviderFee = 10
	testDeposit     = 2
)

type testEnv struct {
	protocol  *Protocol
	registry  *HandlerRegistry
	beacon    *beacon.Ring
	chain     *testChain
	admin     proto.AccountAddress
	provider  proto.AccountAddress
	requester proto.AccountAddress
}

// newTestEnv spins up an initialized protocol over an in-memory store with
// one funded requester and one registered provider.
func newTestEnv() (env *testEnv, err error) {
	ring, err := beacon.NewRing(16, hash.THashH([]byte("beacon seed")))
	if err != nil {
		return nil, err
	}
	registry := NewHandlerRegistry()
	env = &testEnv{
		registry:  registry,
		beacon:    ring,
		admin:     testAddr("admin"),
		provider:  testAddr("provider"),
		requester: testAddr("requester"),
	}
	env.protocol = NewProtocol(storage.NewMemory(), &ProtocolConfig{
		Beacon:        ring,
		Invoker:       registry,
		RecordDeposit: testDeposit,
	})
	env.chain = newTestChain(
		hash.THashH, hash.THashH([]byte("provider seed")), 0, testChainLength)

	if err = env.protocol.Initialize(
		env.admin, env.provider, testPlatformFee, hash.THashH([]byte("prng seed")),
	); err != nil {
		return nil, err
	}
	if err = env.protocol.Register(env.provider, &RegisterArgs{
		Fee:         testProviderFee,
		Commitment:  env.chain.Tip(),
		ChainLength: testChainLength,
	}); err != nil {
		return nil, err
	}
	if err = env.protocol.Deposit(env.requester, 1000); err != nil {
		return nil, err
	}
	return env, nil
}

// request submits a plain no-callback request and returns its sequence.
func (env *testEnv) request(userSecret hash.Hash) (uint64, error) {
	return env.protocol.Request(env.provider, &RequestArgs{
		Requester:      env.requester,
		UserCommitment: hash.THashH(userSecret[:]),
		Payment:        testProviderFee + testPlatformFee + testDeposit,
	})
}
