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

// Package asymmetric wraps btcsuite's secp256k1 types, exporting only what
// the entropy protocol needs: key pairs for provider/requester authorities
// and deterministic signatures over operation digests.
package asymmetric

import (
	"io/ioutil"
	"os"

	ec "github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

// PrivateKey is a wrapper of btcec.PrivateKey.
type PrivateKey ec.PrivateKey

// PublicKey is a wrapper of btcec.PublicKey.
type PublicKey ec.PublicKey

// GenSecp256k1KeyPair generates a new key pair on the secp256k1 curve.
func GenSecp256k1KeyPair() (privateKey *PrivateKey, publicKey *PublicKey, err error) {
	pk, err := ec.NewPrivateKey(ec.S256())
	if err != nil {
		err = errors.Wrap(err, "generate private key failed")
		return
	}
	privateKey = (*PrivateKey)(pk)
	publicKey = privateKey.PubKey()
	return
}

// PubKey returns the public key corresponding to the private key.
func (p *PrivateKey) PubKey() *PublicKey {
	return (*PublicKey)((*ec.PrivateKey)(p).PubKey())
}

// Serialize returns the raw 32-byte scalar of the private key.
func (p *PrivateKey) Serialize() []byte {
	return (*ec.PrivateKey)(p).Serialize()
}

// Serialize returns the 33-byte compressed encoding of the public key.
func (p *PublicKey) Serialize() []byte {
	return (*ec.PublicKey)(p).SerializeCompressed()
}

// IsEqual returns true if target public key equals this one.
func (p *PublicKey) IsEqual(target *PublicKey) bool {
	return (*ec.PublicKey)(p).IsEqual((*ec.PublicKey)(target))
}

// ParsePrivateKey recovers a private key from its raw serialization.
func ParsePrivateKey(raw []byte) *PrivateKey {
	pk, _ := ec.PrivKeyFromBytes(ec.S256(), raw)
	return (*PrivateKey)(pk)
}

// ParsePubKey recovers a public key from its compressed serialization.
func ParsePubKey(raw []byte) (*PublicKey, error) {
	pub, err := ec.ParsePubKey(raw, ec.S256())
	if err != nil {
		return nil, errors.Wrap(err, "parse public key failed")
	}
	return (*PublicKey)(pub), nil
}

// LoadPrivateKey reads a raw serialized private key from file.
func LoadPrivateKey(filename string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read key file failed")
	}
	if len(raw) != ec.PrivKeyBytesLen {
		return nil, errors.Errorf("invalid key file length %d", len(raw))
	}
	return ParsePrivateKey(raw), nil
}

// SavePrivateKey writes the raw serialized private key to file, creating it
// owner-readable only.
func SavePrivateKey(filename string, key *PrivateKey) error {
	err := ioutil.WriteFile(filename, key.Serialize(), os.FileMode(0600))
	return errors.Wrap(err, "write key file failed")
}
