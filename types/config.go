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
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
)

// Config is the singleton protocol configuration record, created once at
// initialization and mutated only by governance operations.
type Config struct {
	// Admin may mutate this record and propose a successor.
	Admin proto.AccountAddress
	// ProposedAdmin is the pending successor of Admin; zero means none.
	ProposedAdmin proto.AccountAddress
	// DefaultProvider serves convenience requests that name no provider.
	DefaultProvider proto.AccountAddress
	// PlatformFee is the flat protocol charge per request in payment units.
	PlatformFee uint64
	// Seed feeds the PRNG used to derive user secrets for convenience
	// requests.
	Seed hash.Hash
}
