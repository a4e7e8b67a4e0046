// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/configuration"
	"github.com/dashpay/platformd/corechain"
	"github.com/dashpay/platformd/executor"
	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
	"github.com/dashpay/platformd/mode"
	"github.com/dashpay/platformd/platformversion"
	"github.com/dashpay/platformd/query"
	"github.com/dashpay/platformd/trigger"
)

// the system data contract and its controlling identity are fixed per
// chain so every node resolves the same feature flag documents
func systemIds(chainName string) (identifier.Identifier, identifier.Identifier) {
	contractId := identifier.NewDerived([]byte("system data contract"), []byte(chainName))
	systemIdentity := identifier.NewDerived([]byte("system identity"), []byte(chainName))
	return contractId, systemIdentity
}

// bring up all subsystems in dependency order and wait for a signal
func run(program string, theConfiguration *configuration.Configuration, quiet bool) {

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// start logging
	if err := logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)

	// set the initial system mode - before any background tasks are started
	if err := mode.Initialise(theConfiguration.Chain); nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	log.Infof("test mode: %v", mode.IsTesting())
	log.Infof("database: %q", theConfiguration.DatabaseFile())

	// the authenticated state store
	log.Info("initialise grove")
	if err := grove.Initialise(theConfiguration.DatabaseFile(), false); nil != err {
		log.Criticalf("grove initialise error: %s", err)
		exitwithstatus.Message("grove initialise error: %s", err)
	}
	defer grove.Finalise()

	log.Info("initialise platformversion")
	if err := platformversion.Initialise(platformversion.Latest); nil != err {
		log.Criticalf("platformversion initialise error: %s", err)
		exitwithstatus.Message("platformversion initialise error: %s", err)
	}
	defer platformversion.Finalise()

	systemContractId, systemIdentity := systemIds(theConfiguration.Chain)
	log.Info("initialise trigger")
	if err := trigger.Initialise(systemContractId, systemIdentity); nil != err {
		log.Criticalf("trigger initialise error: %s", err)
		exitwithstatus.Message("trigger initialise error: %s", err)
	}
	defer trigger.Finalise()

	// core chain access is optional; a node without it fails every
	// instant lock check closed and cannot broadcast withdrawals
	var coreChain executor.CoreChain
	if "" != theConfiguration.CoreChain.URL {
		log.Info("initialise corechain")
		if err := corechain.Initialise(&theConfiguration.CoreChain); nil != err {
			log.Criticalf("corechain initialise error: %s", err)
			exitwithstatus.Message("corechain initialise error: %s", err)
		}
		defer corechain.Finalise()
		coreChain = corechain.Client{}
	} else {
		log.Warn("no core chain URL configured")
	}

	log.Info("initialise executor")
	if err := executor.Initialise(coreChain); nil != err {
		log.Criticalf("executor initialise error: %s", err)
		exitwithstatus.Message("executor initialise error: %s", err)
	}
	defer executor.Finalise()

	log.Info("initialise query")
	if err := query.Initialise(&theConfiguration.Query); nil != err {
		log.Criticalf("query initialise error: %s", err)
		exitwithstatus.Message("query initialise error: %s", err)
	}
	defer query.Finalise()
	log.Infof("query endpoint: %s", query.Endpoint())

	mode.Set(mode.Normal)

	// wait for CTRL-C before shutting down to allow manual testing
	if !quiet {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if !quiet {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}
