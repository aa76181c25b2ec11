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
	"math"
	"math/bits"

	"github.com/entropychain/entropy/types"
)

// normalizeLimit rounds limit up to the next multiple of resolution.
// A zero resolution leaves the limit untouched.
func normalizeLimit(limit, resolution uint64) (uint64, error) {
	if resolution == 0 {
		return limit, nil
	}
	rem := limit % resolution
	if rem == 0 {
		return limit, nil
	}
	padded := limit - rem
	if padded > math.MaxUint64-resolution {
		return 0, ErrFeeOverflow
	}
	return padded + resolution, nil
}

// requiredFee computes the total charge for a request against the given
// provider: the provider flat fee plus the platform fee, plus a resource
// surcharge proportional to how far the normalized resource limit exceeds
// the provider default. Providers with a zero default limit never charge a
// surcharge.
func requiredFee(p *types.Provider, platformFee, resourceLimit, resolution uint64) (fee uint64, err error) {
	fee = p.Fee
	if p.DefaultResourceLimit > 0 {
		var normalized uint64
		if normalized, err = normalizeLimit(resourceLimit, resolution); err != nil {
			return 0, err
		}
		if normalized > p.DefaultResourceLimit {
			excess := normalized - p.DefaultResourceLimit
			hi, lo := bits.Mul64(excess, p.Fee)
			if hi >= p.DefaultResourceLimit {
				return 0, ErrFeeOverflow
			}
			surcharge, _ := bits.Div64(hi, lo, p.DefaultResourceLimit)
			if fee > math.MaxUint64-surcharge {
				return 0, ErrFeeOverflow
			}
			fee += surcharge
		}
	}
	if fee > math.MaxUint64-platformFee {
		return 0, ErrFeeOverflow
	}
	return fee + platformFee, nil
}
