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

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/entropychain/entropy/beacon"
	"github.com/entropychain/entropy/client"
	"github.com/entropychain/entropy/conf"
	"github.com/entropychain/entropy/crypto"
	"github.com/entropychain/entropy/crypto/asymmetric"
	"github.com/entropychain/entropy/entropy"
	"github.com/entropychain/entropy/crypto/hash"
	"github.com/entropychain/entropy/proto"
	"github.com/entropychain/entropy/storage"
	"github.com/entropychain/entropy/types"
	"github.com/entropychain/entropy/utils"
	"github.com/entropychain/entropy/utils/log"
)

const name = "entropy-cli"

var (
	version = "unknown"

	// config
	configFile  string
	showVersion bool
	logLevel    string

	// request
	providerAddr string
	payment      uint64
	useBeacon    bool

	// inspect
	sequence uint64
)

func init() {
	flag.StringVar(&configFile, "config", "~/.entropy/config.yaml", "Config file path")
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
	flag.StringVar(&logLevel, "log-level", "", "Console log level")
	flag.StringVar(&providerAddr, "provider", "", "Provider address, the default provider if empty")
	flag.Uint64Var(&payment, "payment", 0, "Offered payment in payment units")
	flag.BoolVar(&useBeacon, "use-beacon", false, "Mix historical beacon entropy into the reveal")
	flag.Uint64Var(&sequence, "sequence", 0, "Request sequence number to inspect")
}

func usage() {
	fmt.Fprintf(os.Stderr, `%v <command>

Commands:
  keygen    generate the authority private key
  init      initialize the protocol records
  provide   register this node as provider and serve reveals
  request   submit one randomness request
  inspect   dump a provider record, or a request with -sequence

`, name)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	log.SetStringLevel(logLevel, log.InfoLevel)
	if showVersion {
		fmt.Printf("%v %v %v %v %v\n",
			name, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		usage()
	}

	configFile = utils.HomeDirExpand(configFile)
	var err error
	if _, err = conf.LoadConfig(configFile); err != nil {
		log.WithField("config", configFile).WithError(err).Fatal("load config failed")
	}
	if logLevel == "" {
		log.SetStringLevel(conf.GConf.LogLevel, log.InfoLevel)
	}

	keyFile := utils.HomeDirExpand(conf.GConf.PrivateKeyFile)
	if flag.Arg(0) == "keygen" {
		if err = runKeygen(keyFile); err != nil {
			log.WithField("key", keyFile).WithError(err).Fatal("generate key failed")
		}
		return
	}
	var privateKey *asymmetric.PrivateKey
	if privateKey, err = asymmetric.LoadPrivateKey(keyFile); err != nil {
		log.WithField("key", keyFile).WithError(err).Fatal("load private key failed")
	}
	account := crypto.PubKeyHash(privateKey.PubKey())

	protocol, db, err := openProtocol()
	if err != nil {
		log.WithError(err).Fatal("open protocol failed")
	}
	defer db.Close()

	switch flag.Arg(0) {
	case "init":
		err = runInit(protocol, account)
	case "provide":
		err = runProvide(protocol, account, privateKey)
	case "request":
		err = runRequest(protocol, account)
	case "inspect":
		err = runInspect(protocol)
	default:
		usage()
	}
	if err != nil {
		log.WithField("command", flag.Arg(0)).WithError(err).Fatal("command failed")
	}
}

func runKeygen(keyFile string) (err error) {
	if utils.Exist(keyFile) {
		return errors.Errorf("key file %s already exists", keyFile)
	}
	privateKey, publicKey, err := asymmetric.GenSecp256k1KeyPair()
	if err != nil {
		return
	}
	if err = asymmetric.SavePrivateKey(keyFile, privateKey); err != nil {
		return
	}
	fmt.Printf("account %s\n", crypto.PubKeyHash(publicKey))
	return
}

func openProtocol() (protocol *entropy.Protocol, db *storage.LevelDB, err error) {
	if db, err = storage.NewLevelDB(utils.HomeDirExpand(conf.GConf.DatabaseFile)); err != nil {
		return
	}
	ring, err := beacon.NewRing(conf.GConf.BeaconRetention, conf.GConf.Seed)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	protocol = entropy.NewProtocol(db, &entropy.ProtocolConfig{
		Beacon:        ring,
		Invoker:       entropy.NewHandlerRegistry(),
		FeeResolution: conf.GConf.FeeResolution,
		BaseSequence:  conf.GConf.BaseSequence,
	})
	return
}

func runInit(protocol *entropy.Protocol, account proto.AccountAddress) (err error) {
	if err = protocol.Initialize(account, account, conf.GConf.PlatformFee, conf.GConf.Seed); err != nil {
		return
	}
	fmt.Printf("initialized, admin %s\n", account)
	return
}

func runProvide(protocol *entropy.Protocol, account proto.AccountAddress, key *asymmetric.PrivateKey) (err error) {
	if conf.GConf.Provider == nil {
		return entropy.ErrProviderNotFound
	}
	// The chain root derives from the authority key so a restart resumes
	// the registered chain.
	seed := hash.THashH(key.Serialize())
	daemon := client.NewProviderDaemon(protocol, account, conf.GConf.Provider, seed, key)
	if err = daemon.Start(); err != nil {
		return
	}
	defer daemon.Stop()
	log.WithField("provider", account.String()).Info("provider daemon running")
	<-utils.WaitForExit()
	return
}

func runRequest(protocol *entropy.Protocol, account proto.AccountAddress) (err error) {
	var provider proto.AccountAddress
	if providerAddr != "" {
		if _, provider, err = crypto.Addr2Hash(providerAddr); err != nil {
			return
		}
	} else {
		var config *types.Config
		if config, err = protocol.ConfigRecord(); err != nil {
			return
		}
		provider = config.DefaultProvider
	}
	pending, err := client.NewRequester(protocol, account).Request(provider, payment, useBeacon)
	if err != nil {
		return
	}
	fmt.Printf("request accepted: provider %s sequence %d\nuser secret %s\n",
		pending.Provider, pending.Sequence, pending.UserSecret.String())
	return
}

func runInspect(protocol *entropy.Protocol) (err error) {
	if providerAddr == "" {
		return entropy.ErrProviderNotFound
	}
	var provider proto.AccountAddress
	if _, provider, err = crypto.Addr2Hash(providerAddr); err != nil {
		return
	}
	if sequence > 0 {
		request, err := protocol.RequestRecord(provider, sequence)
		if err != nil {
			return err
		}
		spew.Dump(request)
		return nil
	}
	record, err := protocol.Provider(provider)
	if err != nil {
		return err
	}
	spew.Dump(record)
	return nil
}
