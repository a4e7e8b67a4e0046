// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/dashpay/platformd/proof"
	"github.com/dashpay/platformd/query"
)

type balanceDisplay struct {
	Id       string `json:"id"`
	Balance  uint64 `json:"balance"`
	RootHash string `json:"rootHash,omitempty"`
	Proved   bool   `json:"proved"`
}

func runBalance(c *cli.Context, globals *metadata) error {
	encodedId := c.Args().Get(0)
	if "" == encodedId {
		return fmt.Errorf("missing identity id argument")
	}
	id, err := decodeId(encodedId)
	if nil != err {
		return err
	}

	conn := newClient(globals.connect)
	reply := query.BalanceReply{}
	err = conn.call("Platform.IdentityBalance", query.BalanceArguments{
		IdentityId: encodedId,
		Prove:      globals.prove,
	}, &reply)
	if nil != err {
		return err
	}

	balance := reply.Balance
	if globals.prove {
		root, err := toDigest(reply.RootHash)
		if nil != err {
			return err
		}
		verified, err := proof.VerifyIdentityBalance(reply.Proof, root, id)
		if nil != err {
			return err
		}
		if uint64(verified) != reply.Balance {
			return fmt.Errorf("balance mismatch: reported: %d  proved: %d", reply.Balance, verified)
		}
		balance = uint64(verified)
	}

	printJson(c.App.Writer, balanceDisplay{
		Id:       encodedId,
		Balance:  balance,
		RootHash: hex.EncodeToString(reply.RootHash),
		Proved:   globals.prove,
	})
	return nil
}
