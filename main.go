// SPDX-License-Identifier: MPL-2.0

// Package main is the entry point for the depot CLI.
package main

import cmd "github.com/depotkit/depot/cmd/depot"

func main() {
	cmd.Execute()
}
