// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// output a value as indented JSON
func printJson(w io.Writer, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if nil != err {
		fmt.Fprintf(w, "json error: %s\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", b)
}
