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

package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDatabase(t *testing.T) {
	dir, err := ioutil.TempDir("", "storage")
	if err != nil {
		t.Fatalf("create temp dir failed: %v", err)
	}
	defer os.RemoveAll(dir)

	ldb, err := NewLevelDB(filepath.Join(dir, t.Name()))
	if err != nil {
		t.Fatalf("open leveldb failed: %v", err)
	}
	defer ldb.Close()

	backends := map[string]Database{
		"leveldb": ldb,
		"memory":  NewMemory(),
	}

	for name, db := range backends {
		db := db
		Convey("Given an empty "+name+" database", t, func() {
			Convey("Get of an absent key should report not found", func() {
				_, err := db.Get([]byte("absent"))
				So(err, ShouldEqual, ErrKeyNotFound)
				exists, err := db.Has([]byte("absent"))
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)
			})
			Convey("A batch should apply all writes at once", func() {
				var b Batch
				b.Put([]byte("PVaa"), []byte("provider a"))
				b.Put([]byte("PVbb"), []byte("provider b"))
				b.Put([]byte("RQaa"), []byte("request a"))
				So(b.Len(), ShouldEqual, 3)
				So(db.Write(&b), ShouldBeNil)

				v, err := db.Get([]byte("PVaa"))
				So(err, ShouldBeNil)
				So(string(v), ShouldEqual, "provider a")

				Convey("Scan should see only the prefix, in order", func() {
					var keys []string
					So(db.Scan([]byte("PV"), func(key, value []byte) bool {
						keys = append(keys, string(key))
						return true
					}), ShouldBeNil)
					So(keys, ShouldResemble, []string{"PVaa", "PVbb"})
				})
				Convey("Scan should stop when asked to", func() {
					var count int
					So(db.Scan([]byte("PV"), func(key, value []byte) bool {
						count++
						return false
					}), ShouldBeNil)
					So(count, ShouldEqual, 1)
				})
				Convey("A batched delete should remove the key", func() {
					var d Batch
					d.Delete([]byte("PVaa"))
					d.Put([]byte("PVcc"), []byte("provider c"))
					So(db.Write(&d), ShouldBeNil)
					_, err := db.Get([]byte("PVaa"))
					So(err, ShouldEqual, ErrKeyNotFound)
					exists, err := db.Has([]byte("PVcc"))
					So(err, ShouldBeNil)
					So(exists, ShouldBeTrue)
				})
				Convey("Returned values should be snapshots", func() {
					v, err := db.Get([]byte("PVbb"))
					So(err, ShouldBeNil)
					v[0] = 'X'
					v2, err := db.Get([]byte("PVbb"))
					So(err, ShouldBeNil)
					So(string(v2), ShouldEqual, "provider b")
				})
			})
		})
	}
}
