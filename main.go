// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// the platform daemon
//
// validates state transitions against authenticated storage and
// serves proofs of the committed state; ordered blocks arrive from
// the consensus engine, the core chain daemon supplies asset lock
// and quorum data
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"

	"github.com/dashpay/platformd/configuration"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		fmt.Printf("%s\n", version)
		return
	}

	if len(options["help"]) > 0 {
		usage(program)
		return
	}

	command := "start"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "start", "run", "config-test", "cfg":
		// need the configuration file
	case "version", "v":
		fmt.Printf("%s\n", version)
		return
	case "help", "h", "?":
		usage(program)
		return
	default:
		fmt.Printf("error: no such command: %q\n", command)
		usage(program)
		exitwithstatus.Exit(1)
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: exactly one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.MarshalIndent(theConfiguration, "", "  ")
		if nil != err {
			exitwithstatus.Message("%s: configuration marshal error: %s", program, err)
		}
		os.Stdout.Write(b)
		os.Stdout.WriteString("\n")
		return
	}

	quiet := len(options["quiet"]) > 0
	run(program, theConfiguration, quiet)
}

func usage(program string) {
	fmt.Printf("usage: %s [--help] [--quiet] --config-file=FILE [command]\n\n", program)
	fmt.Printf("supported commands:\n\n")
	fmt.Printf("  help         (h)    - display this message\n")
	fmt.Printf("  version      (v)    - display version string\n")
	fmt.Printf("  config-test  (cfg)  - check and display the configuration file\n")
	fmt.Printf("  start        (run)  - run the daemon, same as no arguments\n")
}
