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

// Package proto holds the primitive identity types shared by every layer of
// the entropy protocol.
package proto

import (
	"github.com/entropychain/entropy/crypto/hash"
)

// AccountAddress is the 32-byte account identity used for provider
// authorities, requesters, payers and callback targets. It is the hash of
// the account's public key; see crypto.PubKeyHash.
type AccountAddress hash.Hash

// String implements fmt.Stringer.
func (z AccountAddress) String() string {
	return hash.Hash(z).String()
}

// Short returns the hexadecimal string of the first `n` reversed byte(s).
func (z AccountAddress) Short(n int) string {
	return hash.Hash(z).Short(n)
}

// AsBytes returns the internal bytes of the address.
func (z AccountAddress) AsBytes() []byte {
	h := hash.Hash(z)
	return h.CloneBytes()
}

// IsZero returns true for the all-zero address. The zero address never
// authorizes anything; it marks "unset" fields such as an absent fee manager
// or callback target.
func (z *AccountAddress) IsZero() bool {
	return (*hash.Hash)(z).IsZero()
}

// MarshalYAML implements the yaml.Marshaler interface.
func (z AccountAddress) MarshalYAML() (interface{}, error) {
	return hash.Hash(z).MarshalYAML()
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (z *AccountAddress) UnmarshalYAML(unmarshal func(interface{}) error) error {
	return (*hash.Hash)(z).UnmarshalYAML(unmarshal)
}

// MarshalJSON implements the json.Marshaler interface.
func (z AccountAddress) MarshalJSON() ([]byte, error) {
	return hash.Hash(z).MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (z *AccountAddress) UnmarshalJSON(data []byte) error {
	return (*hash.Hash)(z).UnmarshalJSON(data)
}
