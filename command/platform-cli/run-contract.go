// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli"

	"github.com/dashpay/platformd/datacontract"
	"github.com/dashpay/platformd/proof"
	"github.com/dashpay/platformd/query"
)

type documentTypeDisplay struct {
	Name       string   `json:"name"`
	Properties int      `json:"properties"`
	Indices    []string `json:"indices"`
}

type contractDisplay struct {
	Id       string                `json:"id"`
	Owner    string                `json:"owner"`
	Revision uint64                `json:"revision"`
	Types    []documentTypeDisplay `json:"types"`
	Tokens   int                   `json:"tokens"`
	RootHash string                `json:"rootHash,omitempty"`
	Proved   bool                  `json:"proved"`
}

func runContract(c *cli.Context, globals *metadata) error {
	encodedId := c.Args().Get(0)
	if "" == encodedId {
		return fmt.Errorf("missing contract id argument")
	}
	id, err := decodeId(encodedId)
	if nil != err {
		return err
	}

	conn := newClient(globals.connect)
	reply := query.ContractReply{}
	err = conn.call("Platform.DataContract", query.ContractArguments{
		ContractId: encodedId,
		Prove:      globals.prove,
	}, &reply)
	if nil != err {
		return err
	}

	var record datacontract.DataContract
	if globals.prove {
		root, err := toDigest(reply.RootHash)
		if nil != err {
			return err
		}
		record, err = proof.VerifyDataContract(reply.Proof, root, id)
		if nil != err {
			return err
		}
	} else if nil != reply.Contract {
		record, err = datacontract.Unpack(reply.Contract)
		if nil != err {
			return err
		}
	}

	if nil == record {
		return fmt.Errorf("contract not found: %s", encodedId)
	}

	owner := record.OwnerId()
	display := contractDisplay{
		Id:       encodedId,
		Owner:    base58.Encode(owner[:]),
		Revision: record.ContractRevision(),
		Tokens:   len(record.Tokens()),
		RootHash: hex.EncodeToString(reply.RootHash),
		Proved:   globals.prove,
	}
	for _, documentType := range record.DocumentTypes() {
		entry := documentTypeDisplay{
			Name:       documentType.Name,
			Properties: len(documentType.Properties),
		}
		for _, index := range documentType.Indices {
			entry.Indices = append(entry.Indices, index.Name)
		}
		display.Types = append(display.Types, entry)
	}

	printJson(c.App.Writer, display)
	return nil
}
