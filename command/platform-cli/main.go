// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// light client for the platform query service
//
// every answer carrying a proof is verified locally against the
// returned root hash before it is displayed
package main

import (
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	prove   bool
	verbose bool
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	globals := &metadata{}

	app := cli.NewApp()
	app.Name = "platform-cli"
	app.Usage = "query the platform and verify proofs locally"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       " verbose result",
			Destination: &globals.verbose,
		},
		cli.StringFlag{
			Name:        "connect, x",
			Value:       "127.0.0.1:9987",
			Usage:       " platformd query `HOST:PORT`",
			Destination: &globals.connect,
		},
		cli.BoolTFlag{
			Name:        "prove, P",
			Usage:       " request and verify proofs [default on]",
			Destination: &globals.prove,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "identity",
			Usage:     "fetch an identity record",
			ArgsUsage: "IDENTITY-ID",
			Action: func(c *cli.Context) error {
				return runIdentity(c, globals)
			},
		},
		{
			Name:      "balance",
			Usage:     "fetch the credit balance of an identity",
			ArgsUsage: "IDENTITY-ID",
			Action: func(c *cli.Context) error {
				return runBalance(c, globals)
			},
		},
		{
			Name:      "contract",
			Usage:     "fetch a data contract record",
			ArgsUsage: "CONTRACT-ID",
			Action: func(c *cli.Context) error {
				return runContract(c, globals)
			},
		},
		{
			Name:  "total-credits",
			Usage: "fetch the credits in circulation",
			Action: func(c *cli.Context) error {
				return runTotalCredits(c, globals)
			},
		},
		{
			Name:  "version",
			Usage: "display platform-cli version",
			Action: func(c *cli.Context) error {
				printJson(c.App.Writer, map[string]string{"version": version})
				return nil
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		exitwithstatus.Message("error: %s", err)
	}
}
