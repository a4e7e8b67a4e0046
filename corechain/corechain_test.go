// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corechain_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/btcsuite/btcd/wire"

	"github.com/dashpay/platformd/corechain"
	"github.com/dashpay/platformd/fault"
)

// raw core transaction served by the fake daemon
var testRawTransaction []byte

func makeTestTransaction() []byte {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(4321, []byte{0x6a, 0x01}))
	buffer := new(bytes.Buffer)
	tx.Serialize(buffer)
	return buffer.Bytes()
}

func writeResult(w http.ResponseWriter, id uint64, result interface{}) {
	reply := map[string]interface{}{
		"id":     id,
		"result": result,
		"error":  nil,
	}
	json.NewEncoder(w).Encode(reply)
}

// fake core daemon covering the methods the client issues
func daemonHandler(w http.ResponseWriter, r *http.Request) {
	request := struct {
		Id     uint64        `json:"id"`
		Method string        `json:"method"`
		Params []interface{} `json:"params"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&request); nil != err {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch request.Method {
	case "verifyislock":
		writeResult(w, request.Id, true)

	case "getrawtransaction":
		writeResult(w, request.Id, hex.EncodeToString(testRawTransaction))

	case "sendrawtransaction":
		writeResult(w, request.Id, "f0f1f2")

	case "quorum":
		reply := map[string]interface{}{
			"id":     request.Id,
			"result": nil,
			"error":  map[string]interface{}{"code": -32601, "message": "quorum info unavailable"},
		}
		json.NewEncoder(w).Encode(reply)

	case "getblockcount":
		// simulate an unreachable daemon by dropping the connection
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "no hijack", http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if nil == err {
			conn.Close()
		}

	default:
		http.Error(w, "unknown method", http.StatusNotFound)
	}
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "corechain-test")
	if nil != err {
		os.Exit(1)
	}

	logging := logger.Configuration{
		Directory: dir,
		File:      "corechain.log",
		Size:      1048576,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		os.RemoveAll(dir)
		os.Exit(1)
	}

	testRawTransaction = makeTestTransaction()
	server := httptest.NewServer(http.HandlerFunc(daemonHandler))

	if err := corechain.Initialise(&corechain.Configuration{
		URL:            server.URL,
		CallsPerSecond: 1000,
	}); nil != err {
		server.Close()
		os.RemoveAll(dir)
		os.Exit(1)
	}

	rc := m.Run()
	corechain.Finalise()
	server.Close()
	os.RemoveAll(dir)
	os.Exit(rc)
}

func TestVerifyInstantLock(t *testing.T) {
	valid, err := corechain.VerifyInstantLock([]byte{0x01, 0x02, 0x03})
	if nil != err {
		t.Fatalf("verify: %v", err)
	}
	if !valid {
		t.Errorf("daemon accepted lock must verify")
	}
}

func TestAssetLockTransaction(t *testing.T) {
	tx, err := corechain.AssetLockTransaction("00112233")
	if nil != err {
		t.Fatalf("fetch: %v", err)
	}
	if 1 != len(tx.TxOut) {
		t.Fatalf("outputs: actual: %d  expected: 1", len(tx.TxOut))
	}
	if 4321 != tx.TxOut[0].Value {
		t.Errorf("output value: actual: %d  expected: 4321", tx.TxOut[0].Value)
	}
}

func TestSendRawTransaction(t *testing.T) {
	if err := corechain.SendRawTransaction([]byte{0xaa, 0xbb}); nil != err {
		t.Fatalf("send: %v", err)
	}
}

func TestClientAdapter(t *testing.T) {
	c := corechain.Client{}
	if err := c.SendRawTransaction([]byte{0xcc}); nil != err {
		t.Fatalf("broadcast: %v", err)
	}
	accepted, err := c.VerifyInstantLock([]byte{0x0a, 0x0b})
	if nil != err {
		t.Fatalf("verify: %v", err)
	}
	if !accepted {
		t.Errorf("daemon accepted lock must verify")
	}
}

func TestDaemonErrorIsRPCFailed(t *testing.T) {
	_, err := corechain.QuorumPublicKey(1, "deadbeef")
	if fault.CoreChainRPCFailed != err {
		t.Errorf("actual: %v  expected: %v", err, fault.CoreChainRPCFailed)
	}
}

func TestDroppedConnectionIsUnavailable(t *testing.T) {
	_, err := corechain.BlockCount()
	if fault.CoreChainUnavailable != err {
		t.Errorf("actual: %v  expected: %v", err, fault.CoreChainUnavailable)
	}
}
