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
	"github.com/entropychain/entropy/crypto/hash"
)

// ChainCommit applies f to secret exactly distance times, producing the
// chain value distance steps ahead of secret. Distance zero returns secret
// unchanged.
func ChainCommit(f hash.Func, secret hash.Hash, distance uint64) hash.Hash {
	for i := uint64(0); i < distance; i++ {
		secret = f(secret[:])
	}
	return secret
}

// ChainVerify returns true iff hashing secret forward by distance reproduces
// expectedTip. Revealing secret together with distance proves knowledge of a
// pre-image of the tip without exposing any other chain value.
func ChainVerify(f hash.Func, secret hash.Hash, distance uint64, expectedTip hash.Hash) bool {
	committed := ChainCommit(f, secret, distance)
	return committed.IsEqual(&expectedTip)
}
