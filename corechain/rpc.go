// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corechain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/wire"
	cache "github.com/patrickmn/go-cache"

	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/identifier"
)

// for encoding the RPC arguments
type rpcArguments struct {
	Id     uint64        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// the RPC error response
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// for decoding the RPC reply
type rpcReply struct {
	Id     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// run one JSON-RPC call against the daemon
//
// rate limited and bounded by the call timeout; a transport failure or
// a garbled reply maps to unavailable, a daemon-reported error to RPC
// failed
func call(method string, params []interface{}, reply interface{}) error {
	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.NotInitialised
	}
	globalData.id += 1
	arguments := rpcArguments{
		Id:     globalData.id,
		Method: method,
		Params: params,
	}
	client := globalData.client
	limiter := globalData.limiter
	url := globalData.url
	username := globalData.username
	password := globalData.password
	log := globalData.log
	globalData.Unlock()

	globalData.calls.Increment()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := limiter.Wait(ctx); nil != err {
		return fault.CoreChainUnavailable
	}

	log.Debugf("rpc call: %s", method)

	request := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&arguments)
	if "" != username {
		request.SetBasicAuth(username, password)
	}
	response, err := request.Post(url)
	if nil != err {
		log.Errorf("rpc transport: %s: %s", method, err)
		return fault.CoreChainUnavailable
	}

	var parsed rpcReply
	if err := json.Unmarshal(response.Body(), &parsed); nil != err {
		log.Errorf("rpc reply decode: %s: %s", method, err)
		return fault.CoreChainUnavailable
	}
	if nil != parsed.Error {
		log.Errorf("rpc error: %s: %d: %s", method, parsed.Error.Code, parsed.Error.Message)
		return fault.CoreChainRPCFailed
	}
	if nil == reply {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, reply); nil != err {
		log.Errorf("rpc result decode: %s: %s", method, err)
		return fault.CoreChainRPCFailed
	}
	return nil
}

// VerifyInstantLock - whether the core chain accepts an instant lock
//
// a lock already announced over the subscription passes without an
// RPC round trip
func VerifyInstantLock(instantLock []byte) (bool, error) {
	if lockSeen(instantLock) {
		return true, nil
	}
	valid := false
	if err := call("verifyislock", []interface{}{
		hex.EncodeToString(instantLock),
	}, &valid); nil != err {
		return false, err
	}
	return valid, nil
}

// AssetLockTransaction - fetch and decode a raw core transaction
func AssetLockTransaction(txId string) (*wire.MsgTx, error) {
	raw := ""
	if err := call("getrawtransaction", []interface{}{txId}, &raw); nil != err {
		return nil, err
	}
	decoded, err := hex.DecodeString(raw)
	if nil != err {
		return nil, fault.CoreChainRPCFailed
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(decoded)); nil != err {
		return nil, fault.AssetLockProofInvalid
	}
	return tx, nil
}

// QuorumPublicKey - the BLS public key of a signing quorum
func QuorumPublicKey(quorumType uint32, quorumHash string) ([]byte, error) {
	info := struct {
		QuorumPublicKey string `json:"quorumPublicKey"`
	}{}
	if err := call("quorum", []interface{}{
		"info", quorumType, quorumHash,
	}, &info); nil != err {
		return nil, err
	}
	key, err := hex.DecodeString(info.QuorumPublicKey)
	if nil != err {
		return nil, fault.CoreChainRPCFailed
	}
	return key, nil
}

// BlockCount - current core chain height
func BlockCount() (uint64, error) {
	height := uint64(0)
	if err := call("getblockcount", nil, &height); nil != err {
		return 0, err
	}
	return height, nil
}

// SendRawTransaction - broadcast a signed core transaction
func SendRawTransaction(raw []byte) error {
	return call("sendrawtransaction", []interface{}{
		hex.EncodeToString(raw),
	}, nil)
}

// Client - hands instant lock checks and withdrawal transactions from
// the block executor to the core chain daemon
type Client struct{}

// VerifyInstantLock - check one instant lock with the daemon
func (c Client) VerifyInstantLock(lock []byte) (bool, error) {
	return VerifyInstantLock(lock)
}

// SendRawTransaction - broadcast one withdrawal transaction
func (c Client) SendRawTransaction(raw []byte) error {
	return SendRawTransaction(raw)
}

func lockCacheKey(lock []byte) string {
	digest := identifier.New(lock)
	return string(digest[:])
}

func markLockSeen(lock []byte) {
	globalData.RLock()
	locks := globalData.locks
	globalData.RUnlock()
	if nil != locks {
		locks.Set(lockCacheKey(lock), struct{}{}, cache.DefaultExpiration)
	}
}

func lockSeen(lock []byte) bool {
	globalData.RLock()
	locks := globalData.locks
	globalData.RUnlock()
	if nil == locks {
		return false
	}
	_, found := locks.Get(lockCacheKey(lock))
	return found
}
