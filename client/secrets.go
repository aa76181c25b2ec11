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
	"github.com/pkg/errors"

	"github.com/entropychain/entropy/crypto/hash"
)

// SecretChain materializes the reversed hash chain a provider commits to,
// derived deterministically from a private seed. Index i of the chain is
// the secret the provider reveals for sequence base+i; the registered tip
// is the value at the base sequence itself.
type SecretChain struct {
	f       hash.Func
	base    uint64
	secrets []hash.Hash
}

// NewSecretChain derives a chain of length positions anchored at base.
func NewSecretChain(f hash.Func, seed hash.Hash, base, length uint64) (c *SecretChain, err error) {
	if length == 0 {
		return nil, errors.New("chain length must be positive")
	}
	secrets := make([]hash.Hash, length)
	secrets[length-1] = f(seed[:])
	for i := int(length) - 2; i >= 0; i-- {
		secrets[i] = f(secrets[i+1][:])
	}
	return &SecretChain{f: f, base: base, secrets: secrets}, nil
}

// Tip returns the chain commitment to publish at registration.
func (c *SecretChain) Tip() hash.Hash {
	return c.secrets[0]
}

// Base returns the sequence number the chain is anchored at.
func (c *SecretChain) Base() uint64 {
	return c.base
}

// Len returns the count of chain positions.
func (c *SecretChain) Len() uint64 {
	return uint64(len(c.secrets))
}

// Reveal returns the chain secret at sequence.
func (c *SecretChain) Reveal(sequence uint64) (secret hash.Hash, err error) {
	if sequence < c.base || sequence >= c.base+c.Len() {
		err = errors.Errorf("sequence %d outside chain [%d, %d)",
			sequence, c.base, c.base+c.Len())
		return
	}
	return c.secrets[sequence-c.base], nil
}
