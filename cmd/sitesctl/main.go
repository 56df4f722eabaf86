// Package main is the entry point for the sitesctl binary.
package main

import (
	"os"

	cli "sitesctl/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
