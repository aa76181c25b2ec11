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

package hash

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	yaml "gopkg.in/yaml.v2"
)

// TestHash tests the Hash API.
func TestHash(t *testing.T) {
	commitmentStr := "14a0810ac680a3eb3f82edc878cea25ec41d6b790744e5daeef"
	commitment, err := NewHashFromStr(commitmentStr)
	if err != nil {
		t.Errorf("NewHashFromStr: %v", err)
	}

	buf := []byte{
		0x79, 0xa6, 0x1a, 0xdb, 0xc6, 0xe5, 0xa2, 0xe1,
		0x39, 0xd2, 0x71, 0x3a, 0x54, 0x6e, 0xc7, 0xc8,
		0x75, 0x63, 0x2e, 0x75, 0xf1, 0xdf, 0x9c, 0x3f,
		0xa6, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	hash, err := NewHash(buf)
	if err != nil {
		t.Errorf("NewHash: unexpected error %v", err)
	}

	// Ensure proper size.
	if len(hash) != HashSize {
		t.Errorf("NewHash: hash length mismatch - got: %v, want: %v",
			len(hash), HashSize)
	}

	// Ensure contents match.
	if !bytes.Equal(hash[:], buf) {
		t.Errorf("NewHash: hash contents mismatch - got: %v, want: %v",
			hash[:], buf)
	}

	if hash.IsEqual(commitment) {
		t.Errorf("IsEqual: hash contents should not match - got: %v, want: %v",
			hash, commitment)
	}

	// Set hash from byte slice and ensure contents match.
	err = hash.SetBytes(commitment.CloneBytes())
	if err != nil {
		t.Errorf("SetBytes: %v", err)
	}
	if !hash.IsEqual(commitment) {
		t.Errorf("IsEqual: hash contents mismatch - got: %v, want: %v",
			hash, commitment)
	}

	// Ensure nil hashes are handled properly.
	if !(*Hash)(nil).IsEqual(nil) {
		t.Error("IsEqual: nil hashes should match")
	}
	if hash.IsEqual(nil) {
		t.Error("IsEqual: non-nil hash matches nil hash")
	}

	// Invalid size for SetBytes.
	err = hash.SetBytes([]byte{0x00})
	if err == nil {
		t.Errorf("SetBytes: failed to received expected err - got: nil")
	}

	// Invalid size for NewHash.
	invalidHash := make([]byte, HashSize+1)
	_, err = NewHash(invalidHash)
	if err == nil {
		t.Errorf("NewHash: failed to received expected err - got: nil")
	}
}

func TestHashFuncs(t *testing.T) {
	Convey("hash funcs should be deterministic and domain separated", t, func() {
		b := []byte("entropy")
		So(HashH(b), ShouldResemble, HashH([]byte("entropy")))
		So(bytes.Equal(HashB(b), HashH(b).AsBytes()), ShouldBeTrue)
		So(bytes.Equal(THashB(b), THashH(b).AsBytes()), ShouldBeTrue)
		So(HashH(b), ShouldNotResemble, THashH(b))
		So(DoubleHashH(b), ShouldResemble, HashH(HashB(b)))
		So(bytes.Equal(DoubleHashB(b), DoubleHashH(b).AsBytes()), ShouldBeTrue)
	})
	Convey("suites should agree with their underlying funcs", t, func() {
		b := []byte("entropy")
		So(SHA256Suite.HashFunc(b), ShouldResemble, HashH(b))
		So(THashSuite.HashFunc(b), ShouldResemble, THashH(b))
		So(SHA256Suite.HashLen, ShouldEqual, HashSize)
	})
}

func TestHashMarshalUnmarshalJSONYAML(t *testing.T) {
	Convey("marshal and unmarshal hash in json and yaml", t, func() {
		h := HashH([]byte("entropy"))

		j, err := h.MarshalJSON()
		So(err, ShouldBeNil)
		var h2 Hash
		So(h2.UnmarshalJSON(j), ShouldBeNil)
		So(h2, ShouldResemble, h)

		y, err := yaml.Marshal(h)
		So(err, ShouldBeNil)
		var h3 Hash
		So(yaml.Unmarshal(y, &h3), ShouldBeNil)
		So(h3, ShouldResemble, h)
	})
	Convey("decode errors", t, func() {
		var h Hash
		So(Decode(&h, string(make([]byte, MaxHashStringSize+1))), ShouldEqual, ErrHashStrSize)
		So(Decode(&h, "xyz"), ShouldNotBeNil)
	})
}
