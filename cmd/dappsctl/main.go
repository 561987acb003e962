// dappsctl drives the dapps-staking contracts against the simulated host.
package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/dappstaking/common"
)

// Set at build time with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

// commit falls back to the HEAD of the enclosing git checkout.
func commit() string {
	if Commit != "" {
		return Commit
	}
	return common.GetCommitHash()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
