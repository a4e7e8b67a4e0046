// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package corechain - collaborator interface to the core chain daemon
//
// platform validation needs the core chain for instant lock
// verification, asset lock funding lookups, quorum keys and withdrawal
// broadcast; every answer comes from the daemon's JSON-RPC endpoint
// and an unreachable daemon is always an error, never a passed check
//
// an optional ZeroMQ subscription feeds locks the daemon announces
// into a short lived cache so the common verification path avoids an
// RPC round trip
package corechain

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	resty "github.com/go-resty/resty/v2"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/dashpay/platformd/background"
	"github.com/dashpay/platformd/counter"
	"github.com/dashpay/platformd/fault"
)

const (
	callTimeout = 10 * time.Second
	callRetries = 2

	lockCacheExpiry  = 10 * time.Minute
	lockCacheCleanup = 20 * time.Minute

	defaultCallsPerSecond = 10
)

// Configuration - from the main configuration file
type Configuration struct {
	URL               string `gluamapper:"url"`
	Username          string `gluamapper:"username"`
	Password          string `gluamapper:"password"`
	SubscribeEndpoint string `gluamapper:"subscribe_endpoint"`
	CallsPerSecond    int    `gluamapper:"calls_per_second"`
}

var globalData struct {
	sync.RWMutex
	log      *logger.L
	client   *resty.Client
	limiter  *rate.Limiter
	url      string
	username string
	password string
	id       uint64

	// announced instant and chain locks, keyed by content digest
	locks *cache.Cache

	calls counter.Counter

	background  *background.T
	initialised bool
}

// Initialise - connect to the core chain daemon
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}
	if "" == configuration.URL {
		return fault.InvalidConfiguration
	}

	globalData.log = logger.New("corechain")
	globalData.log.Info("starting…")

	callsPerSecond := configuration.CallsPerSecond
	if callsPerSecond <= 0 {
		callsPerSecond = defaultCallsPerSecond
	}

	globalData.client = resty.New().
		SetTimeout(callTimeout).
		SetRetryCount(callRetries)
	globalData.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), callsPerSecond)
	globalData.url = configuration.URL
	globalData.username = configuration.Username
	globalData.password = configuration.Password
	globalData.locks = cache.New(lockCacheExpiry, lockCacheCleanup)

	if "" != configuration.SubscribeEndpoint {
		sub, err := newSubscriber(configuration.SubscribeEndpoint)
		if nil != err {
			return err
		}
		globalData.background = background.Start(background.Processes{sub}, nil)
	}

	globalData.initialised = true
	return nil
}

// Finalise - shut down the core chain connection
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Infof("daemon calls issued: %d", globalData.calls.Uint64())
	globalData.background.Stop()
	globalData.background = nil
	globalData.locks = nil
	globalData.initialised = false
	return nil
}
