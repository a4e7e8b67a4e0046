// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/dashpay/platformd/query"
)

func runTotalCredits(c *cli.Context, globals *metadata) error {
	conn := newClient(globals.connect)
	reply := query.TotalCreditsReply{}
	err := conn.call("Platform.TotalCredits", query.TotalCreditsArguments{}, &reply)
	if nil != err {
		return err
	}

	printJson(c.App.Writer, reply)
	return nil
}
