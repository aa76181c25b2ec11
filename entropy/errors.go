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

import "errors"

var (
	// Validation errors, rejected before any state mutation.

	// ErrInvalidChainLength indicates a registration with a non-positive chain length.
	ErrInvalidChainLength = errors.New("chain length must be positive")
	// ErrZeroIdentity indicates a zero account address where an identity is required.
	ErrZeroIdentity = errors.New("zero account address")
	// ErrZeroCommitment indicates a zero hash where a chain commitment is required.
	ErrZeroCommitment = errors.New("zero chain commitment")
	// ErrFieldTooLong indicates a bounded byte field exceeding its capacity.
	ErrFieldTooLong = errors.New("field exceeds capacity")
	// ErrTooManyCapabilities indicates a capability list exceeding its capacity.
	ErrTooManyCapabilities = errors.New("too many capabilities")
	// ErrAlreadyInitialized indicates a second protocol initialization.
	ErrAlreadyInitialized = errors.New("protocol already initialized")
	// ErrNotInitialized indicates an operation before protocol initialization.
	ErrNotInitialized = errors.New("protocol not initialized")

	// Sequencing errors.

	// ErrOutOfRandomness indicates the provider chain has no assignable sequence left.
	ErrOutOfRandomness = errors.New("out of randomness")
	// ErrChainTooStale indicates the chain distance exceeds the provider limit.
	ErrChainTooStale = errors.New("last revealed commitment too old")
	// ErrInvalidAdvanceTarget indicates an advance target at or behind the chain head.
	ErrInvalidAdvanceTarget = errors.New("invalid advance target")

	// Authorization errors.

	// ErrUnauthorized indicates a caller lacking the required authority.
	ErrUnauthorized = errors.New("unauthorized caller")
	// ErrInvalidRevealState indicates a reveal against a non-revealable callback state.
	ErrInvalidRevealState = errors.New("request not in revealable state")

	// Payment errors.

	// ErrInsufficientPayment indicates an offered payment below the required fee.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInsufficientBalance indicates an account balance too low for the transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBalanceOverflow indicates an overflow after balance manipulation.
	ErrBalanceOverflow = errors.New("balance overflow")
	// ErrFeeOverflow indicates an overflow while computing the required fee.
	ErrFeeOverflow = errors.New("fee computation overflow")

	// Integrity errors.

	// ErrIncorrectRevelation indicates a commitment or chain linkage mismatch.
	ErrIncorrectRevelation = errors.New("incorrect revelation")
	// ErrNoInvoker indicates a callback reveal on an instance configured
	// without an invoker.
	ErrNoInvoker = errors.New("no callback invoker configured")
	// ErrCapabilityMismatch indicates a reveal-time capability list differing
	// from the one captured at request time.
	ErrCapabilityMismatch = errors.New("capability list mismatch")

	// Availability errors, permanent by nature.

	// ErrEntropyUnavailable indicates the historical entropy for a request
	// left retention; the reveal can never succeed.
	ErrEntropyUnavailable = errors.New("historical entropy unavailable")

	// Lookup errors.

	// ErrProviderNotFound indicates an unregistered provider.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrRequestNotFound indicates an absent request record.
	ErrRequestNotFound = errors.New("request not found")
)
