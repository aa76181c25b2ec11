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
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/entropychain/entropy/crypto/hash"
)

func TestReveal(t *testing.T) {
	Convey("Given a pending request", t, func() {
		env, err := newTestEnv()
		So(err, ShouldBeNil)
		p := env.protocol
		userSecret := hash.THashH([]byte("user secret"))
		sequence, err := env.request(userSecret)
		So(err, ShouldBeNil)

		Convey("The matching secrets reveal and retire the request", func() {
			random, err := p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldBeNil)
			So(random.IsZero(), ShouldBeFalse)

			_, err = p.RequestRecord(env.provider, sequence)
			So(err, ShouldEqual, ErrRequestNotFound)

			record, err := p.Provider(env.provider)
			So(err, ShouldBeNil)
			So(record.CurrentSequence, ShouldEqual, sequence)
			So(record.CurrentCommitment, ShouldResemble, env.chain.Secret(sequence))
		})
		Convey("The record deposit returns to the payer on retirement", func() {
			before, err := p.Balance(env.requester)
			So(err, ShouldBeNil)
			_, err = p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldBeNil)
			after, err := p.Balance(env.requester)
			So(err, ShouldBeNil)
			So(after, ShouldEqual, before+testDeposit)
		})
		Convey("A flipped user secret bit fails with no state change", func() {
			flipped := userSecret
			flipped[7] ^= 0x20
			_, err := p.Reveal(env.provider, sequence, flipped, env.chain.Secret(sequence))
			So(err, ShouldEqual, ErrIncorrectRevelation)

			_, err = p.RequestRecord(env.provider, sequence)
			So(err, ShouldBeNil)
		})
		Convey("A flipped provider secret bit fails", func() {
			flipped := env.chain.Secret(sequence)
			flipped[0] ^= 0x01
			_, err := p.Reveal(env.provider, sequence, userSecret, flipped)
			So(err, ShouldEqual, ErrIncorrectRevelation)
		})
		Convey("A secret from the wrong chain position fails", func() {
			_, err := p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence+1))
			So(err, ShouldEqual, ErrIncorrectRevelation)
		})
		Convey("Repeating a reveal fails on the destroyed record", func() {
			_, err := p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldBeNil)
			_, err = p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldEqual, ErrRequestNotFound)
		})
	})
}

func TestRevealOutOfOrder(t *testing.T) {
	Convey("Given two pending requests", t, func() {
		env, err := newTestEnv()
		So(err, ShouldBeNil)
		p := env.protocol
		first := hash.THashH([]byte("first"))
		second := hash.THashH([]byte("second"))
		seq1, err := env.request(first)
		So(err, ShouldBeNil)
		seq2, err := env.request(second)
		So(err, ShouldBeNil)

		Convey("Revealing the newer one first still verifies the older", func() {
			_, err := p.Reveal(env.provider, seq2, second, env.chain.Secret(seq2))
			So(err, ShouldBeNil)

			record, err := p.Provider(env.provider)
			So(err, ShouldBeNil)
			So(record.CurrentSequence, ShouldEqual, seq2)

			// The chain head stays at the newer position.
			_, err = p.Reveal(env.provider, seq1, first, env.chain.Secret(seq1))
			So(err, ShouldBeNil)
			record, err = p.Provider(env.provider)
			So(err, ShouldBeNil)
			So(record.CurrentSequence, ShouldEqual, seq2)
		})
	})
}

func TestRevealWithBeacon(t *testing.T) {
	Convey("Given a request mixing beacon entropy", t, func() {
		env, err := newTestEnv()
		So(err, ShouldBeNil)
		p := env.protocol
		userSecret := hash.THashH([]byte("user secret"))
		env.beacon.Advance()
		sequence, err := p.Request(env.provider, &RequestArgs{
			Requester:      env.requester,
			UserCommitment: hash.THashH(userSecret[:]),
			UseBeacon:      true,
			Payment:        testProviderFee + testPlatformFee + testDeposit,
		})
		So(err, ShouldBeNil)

		Convey("Reveal mixes the slot entropy into the random value", func() {
			request, err := p.RequestRecord(env.provider, sequence)
			So(err, ShouldBeNil)
			So(request.Slot, ShouldEqual, 1)

			entropy, err := env.beacon.Entropy(request.Slot)
			So(err, ShouldBeNil)
			random, err := p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldBeNil)
			So(random, ShouldResemble,
				p.combine(userSecret, env.chain.Secret(sequence), entropy))
			So(random, ShouldNotResemble,
				p.combine(userSecret, env.chain.Secret(sequence), hash.Hash{}))
		})
		Convey("An evicted slot fails the reveal permanently", func() {
			for i := 0; i < 32; i++ {
				env.beacon.Advance()
			}
			_, err := p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldEqual, ErrEntropyUnavailable)

			// Retrying cannot help once the slot left retention.
			_, err = p.Reveal(env.provider, sequence, userSecret, env.chain.Secret(sequence))
			So(err, ShouldEqual, ErrEntropyUnavailable)
		})
	})
}

func TestAdvanceCommitment(t *testing.T) {
	Convey("Given a registered provider", t, func() {
		env, err := newTestEnv()
		So(err, ShouldBeNil)
		p := env.protocol

		Convey("The authority advances the head out-of-band", func() {
			So(p.AdvanceCommitment(env.provider, env.provider, 5, env.chain.Secret(5)), ShouldBeNil)

			record, err := p.Provider(env.provider)
			So(err, ShouldBeNil)
			So(record.CurrentSequence, ShouldEqual, 5)
			So(record.CurrentCommitment, ShouldResemble, env.chain.Secret(5))
			// The assignment cursor moves past the new head.
			So(record.NextSequence, ShouldEqual, 6)
			So(record.SanityCheck(), ShouldBeTrue)
		})
		Convey("Targets outside (current, end) are rejected", func() {
			So(p.AdvanceCommitment(env.provider, env.provider, 0, env.chain.Tip()),
				ShouldEqual, ErrInvalidAdvanceTarget)
			So(p.AdvanceCommitment(env.provider, env.provider, testChainLength, env.chain.Secret(testChainLength-1)),
				ShouldEqual, ErrInvalidAdvanceTarget)
		})
		Convey("A wrong secret is rejected", func() {
			So(p.AdvanceCommitment(env.provider, env.provider, 5, env.chain.Secret(6)),
				ShouldEqual, ErrIncorrectRevelation)
		})
		Convey("Only the authority may advance", func() {
			So(p.AdvanceCommitment(testAddr("stranger"), env.provider, 5, env.chain.Secret(5)),
				ShouldEqual, ErrUnauthorized)
		})
	})
}
