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

// Package conf holds the deployment configuration of an entropy node.
package conf

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/utils/log"
)

// Config holds all the config read from yaml config file.
type Config struct {
	// WorkingRoot is the working directory of the node.
	WorkingRoot string `yaml:"WorkingRoot"`
	// PrivateKeyFile is the path of the authority private key.
	PrivateKeyFile string `yaml:"PrivateKeyFile"`
	// DatabaseFile is the path of the protocol record store.
	DatabaseFile string `yaml:"DatabaseFile"`
	// LogLevel sets the log output level.
	LogLevel string `yaml:"LogLevel"`

	// PlatformFee is the flat protocol charge per request.
	PlatformFee uint64 `yaml:"PlatformFee"`
	// BaseSequence is the sequence base `s0` assigned to new providers.
	BaseSequence uint64 `yaml:"BaseSequence"`
	// FeeResolution is the resource limit normalization unit for fee
	// scaling.
	FeeResolution uint64 `yaml:"FeeResolution"`
	// BeaconRetention is the count of recent beacon slots kept available.
	BeaconRetention int `yaml:"BeaconRetention"`
	// Seed feeds convenience request randomness generation.
	Seed hash.Hash `yaml:"Seed"`

	// Provider holds the provider daemon settings; nil on requester nodes.
	Provider *ProviderInfo `yaml:"Provider"`
}

// ProviderInfo holds the provider daemon settings.
type ProviderInfo struct {
	// Fee is the per-request charge to register with.
	Fee uint64 `yaml:"Fee"`
	// ChainLength is the hash chain length to commit at registration.
	ChainLength uint64 `yaml:"ChainLength"`
	// MaxChainDistance bounds request staleness; zero means unlimited.
	MaxChainDistance uint64 `yaml:"MaxChainDistance"`
	// DefaultResourceLimit is the resource budget covered by the flat fee.
	DefaultResourceLimit uint64 `yaml:"DefaultResourceLimit"`
	// URI is the provider service endpoint to publish.
	URI string `yaml:"URI"`
	// RevealInterval is the poll period of the reveal loop.
	RevealInterval time.Duration `yaml:"RevealInterval"`
}

// GConf is the global config pointer.
var GConf *Config

// LoadConfig loads config from the given config file path and sets the
// global GConf.
func LoadConfig(configPath string) (config *Config, err error) {
	var configBytes []byte
	if configBytes, err = ioutil.ReadFile(configPath); err != nil {
		err = errors.Wrap(err, "read config file failed")
		return
	}
	config = &Config{}
	if err = yaml.Unmarshal(configBytes, config); err != nil {
		err = errors.Wrap(err, "unmarshal config file failed")
		config = nil
		return
	}

	if config.FeeResolution == 0 {
		config.FeeResolution = DefaultFeeResolution
	}
	if config.BeaconRetention == 0 {
		config.BeaconRetention = DefaultBeaconRetention
	}
	if config.Provider != nil && config.Provider.RevealInterval == 0 {
		config.Provider.RevealInterval = DefaultRevealInterval
	}

	log.WithField("path", configPath).Debug("loaded config")
	GConf = config
	return
}
