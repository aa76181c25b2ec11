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
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/types"
)

func TestCallbackPayload(t *testing.T) {
	Convey("The payload carries prefix, sequence, provider and random", t, func() {
		provider := testAddr("provider")
		random := hash.THashH([]byte("random"))
		payload := encodeCallbackPayload([]byte("prefix"), 0x0102030405060708, provider, random)

		So(payload[:6], ShouldResemble, []byte("prefix"))
		So(binary.LittleEndian.Uint64(payload[6:14]), ShouldEqual, uint64(0x0102030405060708))
		So(payload[14:46], ShouldResemble, provider[:])
		So(payload[46:], ShouldResemble, random[:])
	})
}

func TestRevealWithCallback(t *testing.T) {
	Convey("Given a callback request with capabilities [A, B]", t, func() {
		env, err := newTestEnv()
		So(err, ShouldBeNil)
		p := env.protocol
		target := testAddr("target")
		capA := types.Capability{Ref: testAddr("A"), Writable: true}
		capB := types.Capability{Ref: testAddr("B"), Signer: true}
		userSecret := hash.THashH([]byte("user secret"))
		sequence, err := p.Request(env.provider, &RequestArgs{
			Requester:      env.requester,
			UserCommitment: hash.THashH(userSecret[:]),
			Payment:        testProviderFee + testPlatformFee + testDeposit,
			CallbackTarget: target,
			Capabilities:   []types.Capability{capA, capB},
			PayloadPrefix:  []byte("callback:"),
		})
		So(err, ShouldBeNil)
		providerSecret := env.chain.Secret(sequence)

		Convey("A plain reveal cannot satisfy a callback request", func() {
			_, err := p.Reveal(env.provider, sequence, userSecret, providerSecret)
			So(err, ShouldEqual, ErrInvalidRevealState)
		})
		Convey("A reordered capability list is rejected before invocation", func() {
			invoked := false
			env.registry.Register(target, func(*Callback) error {
				invoked = true
				return nil
			})
			_, _, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capB, capA})
			So(err, ShouldEqual, ErrCapabilityMismatch)
			So(invoked, ShouldBeFalse)

			_, _, err = p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, {Ref: testAddr("C")}})
			So(err, ShouldEqual, ErrCapabilityMismatch)
			So(invoked, ShouldBeFalse)

			// The request survives and stays revealable.
			request, err := p.RequestRecord(env.provider, sequence)
			So(err, ShouldBeNil)
			So(request.CallbackStatus, ShouldEqual, types.CallbackNotStarted)
		})
		Convey("A successful dispatch retires the request", func() {
			var delivered *Callback
			env.registry.Register(target, func(call *Callback) error {
				delivered = call
				return nil
			})
			random, ok, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, capB})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(delivered, ShouldNotBeNil)
			So(delivered.Signer, ShouldResemble, p.Signer())
			So(delivered.Random, ShouldResemble, random)
			So(delivered.Payload, ShouldResemble,
				encodeCallbackPayload([]byte("callback:"), sequence, env.provider, random))

			_, err = p.RequestRecord(env.provider, sequence)
			So(err, ShouldEqual, ErrRequestNotFound)
		})
		Convey("A failing callback downgrades to the failed state, retryably", func() {
			env.registry.Register(target, func(*Callback) error {
				return errors.New("target exploded")
			})
			random, ok, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, capB})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			request, err := p.RequestRecord(env.provider, sequence)
			So(err, ShouldBeNil)
			So(request.CallbackStatus, ShouldEqual, types.CallbackFailed)
			// The chain head advanced anyway: the randomness is determined.
			record, err := p.Provider(env.provider)
			So(err, ShouldBeNil)
			So(record.CurrentSequence, ShouldEqual, sequence)

			env.registry.Register(target, func(*Callback) error { return nil })
			retried, ok, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, capB})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(retried, ShouldResemble, random)

			_, err = p.RequestRecord(env.provider, sequence)
			So(err, ShouldEqual, ErrRequestNotFound)
		})
		Convey("A handler may call back into the protocol during dispatch", func() {
			var (
				seen        types.CallbackStatus
				reentry     error
				followUp    uint64
				followUpErr error
			)
			env.registry.Register(target, func(*Callback) error {
				request, err := p.RequestRecord(env.provider, sequence)
				if err != nil {
					return err
				}
				seen = request.CallbackStatus
				_, _, reentry = p.RevealWithCallback(env.provider, sequence, userSecret,
					providerSecret, []types.Capability{capA, capB})
				followUp, followUpErr = env.request(hash.THashH([]byte("follow-up")))
				return followUpErr
			})
			_, ok, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, capB})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			// The in-flight request is visibly in progress and gates a
			// concurrent reveal, while unrelated operations go through.
			So(seen, ShouldEqual, types.CallbackInProgress)
			So(reentry, ShouldEqual, ErrInvalidRevealState)
			So(followUpErr, ShouldBeNil)
			So(followUp, ShouldEqual, sequence+1)

			_, err = p.RequestRecord(env.provider, sequence)
			So(err, ShouldEqual, ErrRequestNotFound)
		})
		Convey("An unknown target is a dispatch failure, not a reveal failure", func() {
			_, ok, err := p.RevealWithCallback(env.provider, sequence, userSecret,
				providerSecret, []types.Capability{capA, capB})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			request, err := p.RequestRecord(env.provider, sequence)
			So(err, ShouldBeNil)
			So(request.CallbackStatus, ShouldEqual, types.CallbackFailed)
		})
	})
}
