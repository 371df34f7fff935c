// Command groupbookctl is the operator CLI: schema migrations and account
// administration against the configured entity store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
