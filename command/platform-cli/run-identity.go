// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/dashpay/platformd/identity"
	"github.com/dashpay/platformd/proof"
	"github.com/dashpay/platformd/query"
)

type keyDisplay struct {
	KeyId         uint32 `json:"keyId"`
	Purpose       string `json:"purpose"`
	SecurityLevel string `json:"securityLevel"`
	Data          string `json:"data"`
	Disabled      bool   `json:"disabled"`
}

type identityDisplay struct {
	Id       string       `json:"id"`
	Balance  uint64       `json:"balance"`
	Revision uint64       `json:"revision"`
	Keys     []keyDisplay `json:"keys"`
	RootHash string       `json:"rootHash,omitempty"`
	Proved   bool         `json:"proved"`
}

func runIdentity(c *cli.Context, globals *metadata) error {
	encodedId := c.Args().Get(0)
	if "" == encodedId {
		return fmt.Errorf("missing identity id argument")
	}
	id, err := decodeId(encodedId)
	if nil != err {
		return err
	}

	conn := newClient(globals.connect)
	reply := query.IdentityReply{}
	err = conn.call("Platform.Identity", query.IdentityArguments{
		IdentityId: encodedId,
		Prove:      globals.prove,
	}, &reply)
	if nil != err {
		return err
	}

	var record identity.Identity
	if globals.prove {
		root, err := toDigest(reply.RootHash)
		if nil != err {
			return err
		}
		record, err = proof.VerifyIdentity(reply.Proof, root, id)
		if nil != err {
			return err
		}
	} else if nil != reply.Identity {
		record, err = identity.Unpack(reply.Identity)
		if nil != err {
			return err
		}
	}

	if nil == record {
		return fmt.Errorf("identity not found: %s", encodedId)
	}

	display := identityDisplay{
		Id:       encodedId,
		Balance:  uint64(record.Balance()),
		Revision: record.Revision(),
		RootHash: hex.EncodeToString(reply.RootHash),
		Proved:   globals.prove,
	}
	for _, key := range record.PublicKeys() {
		_, disabled := key.DisabledAt()
		display.Keys = append(display.Keys, keyDisplay{
			KeyId:         key.KeyId(),
			Purpose:       key.KeyPurpose().String(),
			SecurityLevel: key.KeySecurityLevel().String(),
			Data:          hex.EncodeToString(key.KeyData()),
			Disabled:      disabled,
		})
	}

	printJson(c.App.Writer, display)
	return nil
}
