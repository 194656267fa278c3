// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Orchardsense
//
// Pomolog - Pomona Orchard-Probe Client
//
// A CLI tool for retrieving saved measurement records from Pomona orchard
// probes and exchanging free-form text with them.

package main

import (
	"os"

	"github.com/orchardsense/pomolog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
