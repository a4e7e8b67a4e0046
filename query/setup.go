// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package query - read only JSON-RPC boundary
//
// serves committed state to wallets and light clients; every handler
// can attach an authenticated proof so the caller verifies the answer
// against a trusted root hash instead of trusting this node
//
// handlers borrow the single storage transaction; while a block is
// executing the service answers busy and the client retries
package query

import (
	"net"
	"net/http"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"golang.org/x/time/rate"

	"github.com/dashpay/platformd/counter"
	"github.com/dashpay/platformd/fault"
)

const defaultRequestsPerSecond = 50

// Configuration - from the main configuration file
type Configuration struct {
	Listen            string   `gluamapper:"listen"`
	AllowedOrigins    []string `gluamapper:"allowed_origins"`
	RequestsPerSecond int      `gluamapper:"requests_per_second"`
}

var globalData struct {
	sync.RWMutex
	log         *logger.L
	listener    net.Listener
	server      *http.Server
	limiter     *rate.Limiter
	served      counter.Counter
	throttled   counter.Counter
	initialised bool
}

// Initialise - start serving queries
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}
	if "" == configuration.Listen {
		return fault.InvalidConfiguration
	}

	globalData.log = logger.New("query")
	globalData.log.Info("starting…")

	requestsPerSecond := configuration.RequestsPerSecond
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestsPerSecond
	}
	globalData.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)

	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&Platform{log: globalData.log}, ""); nil != err {
		return err
	}

	router := mux.NewRouter()
	router.Handle("/rpc", rpcServer).Methods("POST")

	origins := configuration.AllowedOrigins
	if 0 == len(origins) {
		origins = []string{"*"}
	}
	handler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{"POST"}),
	)(rateLimit(router))

	listener, err := net.Listen("tcp", configuration.Listen)
	if nil != err {
		return err
	}
	globalData.listener = listener
	globalData.server = &http.Server{Handler: handler}

	go func(server *http.Server, listener net.Listener, log *logger.L) {
		if err := server.Serve(listener); http.ErrServerClosed != err {
			log.Errorf("serve: %s", err)
		}
	}(globalData.server, listener, globalData.log)

	globalData.log.Infof("listening on: %s", listener.Addr())
	globalData.initialised = true
	return nil
}

// Endpoint - the bound listen address
func Endpoint() string {
	globalData.RLock()
	defer globalData.RUnlock()

	if nil == globalData.listener {
		return ""
	}
	return globalData.listener.Addr().String()
}

// Finalise - stop serving queries
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Infof("requests served: %d  throttled: %d", globalData.served.Uint64(), globalData.throttled.Uint64())
	globalData.server.Close()
	globalData.server = nil
	globalData.listener = nil
	globalData.initialised = false
	return nil
}

func rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalData.RLock()
		limiter := globalData.limiter
		globalData.RUnlock()

		if nil != limiter && !limiter.Allow() {
			globalData.throttled.Increment()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		globalData.served.Increment()
		next.ServeHTTP(w, r)
	})
}
