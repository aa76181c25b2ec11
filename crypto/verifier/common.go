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

// Package verifier implements the hash-and-sign envelope used to
// authenticate protocol operations: an operation header is hashed, the hash
// is signed by the caller's authority key, and the protocol derives the
// caller's account address from the verified signee.
package verifier

import (
	"github.com/pkg/errors"

	ca "github.com/entropychain/entropy/crypto/asymmetric"
	"github.com/entropychain/entropy/crypto/hash"
)

var (
	// ErrHashValueNotMatch indicates a hash value mismatch in Verify.
	ErrHashValueNotMatch = errors.New("hash value not match")
	// ErrSignatureNotMatch indicates a signature verify failure.
	ErrSignatureNotMatch = errors.New("signature not match")
)

// MarshalHasher is the interface implemented by an object that can be stably
// marshalling hashed.
type MarshalHasher interface {
	MarshalHash() ([]byte, error)
}

// HashSignVerifier contains a hash value of a MarshalHasher, can be signed
// by a private key and verified later.
type HashSignVerifier struct {
	DataHash  hash.Hash
	Signee    *ca.PublicKey
	Signature *ca.Signature
}

// Hash returns the signed hash value.
func (i *HashSignVerifier) Hash() hash.Hash {
	return i.DataHash
}

// SetHash sets the hash of mh in the envelope.
func (i *HashSignVerifier) SetHash(mh MarshalHasher) (err error) {
	var enc []byte
	if enc, err = mh.MarshalHash(); err != nil {
		return
	}
	i.DataHash = hash.THashH(enc)
	return
}

// SignHash signs the envelope hash.
func (i *HashSignVerifier) SignHash(signer *ca.PrivateKey) (err error) {
	if i.Signature, err = signer.Sign(i.DataHash[:]); err != nil {
		return
	}
	i.Signee = signer.PubKey()
	return
}

// Sign sets the hash of mh and signs it.
func (i *HashSignVerifier) Sign(mh MarshalHasher, signer *ca.PrivateKey) (err error) {
	if err = i.SetHash(mh); err != nil {
		return
	}
	err = i.SignHash(signer)
	return
}

// VerifyHash verifies the envelope hash against mh.
func (i *HashSignVerifier) VerifyHash(mh MarshalHasher) (err error) {
	var enc []byte
	if enc, err = mh.MarshalHash(); err != nil {
		return
	}
	var h = hash.THashH(enc)
	if !i.DataHash.IsEqual(&h) {
		err = errors.WithStack(ErrHashValueNotMatch)
		return
	}
	return
}

// VerifySignature verifies the envelope signature against the signee.
func (i *HashSignVerifier) VerifySignature() (err error) {
	if i.Signature == nil || i.Signee == nil ||
		!i.Signature.Verify(i.DataHash[:], i.Signee) {
		err = errors.WithStack(ErrSignatureNotMatch)
		return
	}
	return
}

// Verify verifies both the envelope hash and the signature.
func (i *HashSignVerifier) Verify(mh MarshalHasher) (err error) {
	if err = i.VerifyHash(mh); err != nil {
		return
	}
	err = i.VerifySignature()
	return
}
