// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mr-tron/base58"

	"github.com/dashpay/platformd/grove"
	"github.com/dashpay/platformd/identifier"
)

const callTimeout = 30 * time.Second

// JSON-RPC 2.0 client for the query service
type client struct {
	rest *resty.Client
	url  string
}

func newClient(connect string) *client {
	return &client{
		rest: resty.New().SetTimeout(callTimeout),
		url:  "http://" + connect + "/rpc",
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Id      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcReply struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *client) call(method string, args interface{}, reply interface{}) error {
	response, err := c.rest.R().
		SetHeader("Content-Type", "application/json").
		SetBody(rpcRequest{
			JSONRPC: "2.0",
			Id:      1,
			Method:  method,
			Params:  args,
		}).
		Post(c.url)
	if nil != err {
		return err
	}

	parsed := rpcReply{}
	if err := json.Unmarshal(response.Body(), &parsed); nil != err {
		return err
	}
	if nil != parsed.Error {
		return fmt.Errorf("%s: %s", method, parsed.Error.Message)
	}
	return json.Unmarshal(parsed.Result, reply)
}

func decodeId(encoded string) (identifier.Identifier, error) {
	raw, err := base58.Decode(encoded)
	if nil != err {
		return identifier.Identifier{}, err
	}
	return identifier.FromBytes(raw)
}

func toDigest(rootHash []byte) (grove.Digest, error) {
	var root grove.Digest
	if len(root) != len(rootHash) {
		return root, fmt.Errorf("root hash length: %d expected: %d", len(rootHash), len(root))
	}
	copy(root[:], rootHash)
	return root, nil
}
