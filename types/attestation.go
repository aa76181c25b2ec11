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

package types

import (
	"github.com/entropychain/entropy/crypto/asymmetric"
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/crypto/verifier"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/utils"
)

// RevealedRandom is the content of a reveal attestation: which request was
// fulfilled and what came out of it.
type RevealedRandom struct {
	Provider proto.AccountAddress
	Sequence uint64
	Random   hash.Hash
}

// MarshalHash implements verifier.MarshalHasher.
func (r *RevealedRandom) MarshalHash() ([]byte, error) {
	buf, err := utils.EncodeMsgPack(r)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RevealAttestation is a provider signed statement that a reveal produced
// the enclosed random number, so off-protocol consumers can check
// provenance without replaying the reveal.
type RevealAttestation struct {
	RevealedRandom
	verifier.HashSignVerifier
}

// Sign signs the attestation content with the provider key.
func (a *RevealAttestation) Sign(signer *asymmetric.PrivateKey) error {
	return a.HashSignVerifier.Sign(&a.RevealedRandom, signer)
}

// Verify checks the attestation hash and signature.
func (a *RevealAttestation) Verify() error {
	return a.HashSignVerifier.Verify(&a.RevealedRandom)
}
