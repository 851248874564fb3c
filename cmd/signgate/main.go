// Command signgate answers sign and verify requests for browser clients with
// an Ed25519 key derived from a startup secret.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
