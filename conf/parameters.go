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

package conf

import "time"

// These parameters must be kept consistent across every node of one
// deployment; hash chains and fee checks disagree otherwise.
const (
	// DefaultFeeResolution is the resource limit normalization unit: limits
	// are rounded up to the next multiple before fee scaling.
	DefaultFeeResolution uint64 = 10000
)

// These parameters will not cause inconsistency within certain range.
const (
	// DefaultBeaconRetention is the count of recent beacon slots kept
	// available for reveals that opted into external entropy.
	DefaultBeaconRetention = 512
	// DefaultRevealInterval is the default poll period of the provider
	// reveal loop.
	DefaultRevealInterval = 3 * time.Second
)
