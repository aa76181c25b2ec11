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

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
WorkingRoot: ./
PrivateKeyFile: private.key
DatabaseFile: entropy.db
LogLevel: debug
PlatformFee: 7
BaseSequence: 10
Provider:
  Fee: 100
  ChainLength: 1000
  DefaultResourceLimit: 20000
  URI: https://provider.example.com
`

func TestLoadConfig(t *testing.T) {
	Convey("Given a config file on disk", t, func() {
		dir, err := ioutil.TempDir("", "conf")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		fl := filepath.Join(dir, "config.yaml")
		So(ioutil.WriteFile(fl, []byte(testConfig), 0644), ShouldBeNil)

		Convey("LoadConfig should parse and fill defaults", func() {
			config, err := LoadConfig(fl)
			So(err, ShouldBeNil)
			So(GConf, ShouldEqual, config)
			So(config.PlatformFee, ShouldEqual, 7)
			So(config.BaseSequence, ShouldEqual, 10)
			So(config.FeeResolution, ShouldEqual, DefaultFeeResolution)
			So(config.BeaconRetention, ShouldEqual, DefaultBeaconRetention)
			So(config.Provider, ShouldNotBeNil)
			So(config.Provider.Fee, ShouldEqual, 100)
			So(config.Provider.ChainLength, ShouldEqual, 1000)
			So(config.Provider.RevealInterval, ShouldEqual, 3*time.Second)
		})
		Convey("BaseSequence defaults to zero when omitted", func() {
			minimal := filepath.Join(dir, "minimal.yaml")
			So(ioutil.WriteFile(minimal, []byte("WorkingRoot: ./\n"), 0644), ShouldBeNil)
			config, err := LoadConfig(minimal)
			So(err, ShouldBeNil)
			So(config.BaseSequence, ShouldEqual, 0)
		})
		Convey("LoadConfig should fail on a missing file", func() {
			_, err := LoadConfig(filepath.Join(dir, "nonexistent.yaml"))
			So(err, ShouldNotBeNil)
		})
		Convey("LoadConfig should fail on malformed yaml", func() {
			bad := filepath.Join(dir, "bad.yaml")
			So(ioutil.WriteFile(bad, []byte("404:::{"), 0644), ShouldBeNil)
			_, err := LoadConfig(bad)
			So(err, ShouldNotBeNil)
		})
	})
}
