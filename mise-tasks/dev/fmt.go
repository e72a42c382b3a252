//usr/bin/env go run "$0" "$@"; exit

//MISE description="Format Go code and the embedded environment tables"

//go:build ignore

package main

import (
	"os"

	"github.com/bitfield/script"
)

func main() {
	if _, err := script.Exec("golangci-lint fmt ./...").Stdout(); err != nil {
		os.Exit(1)
	}

	// The tables are compiled into the binary; fail early on a broken edit.
	if _, err := script.Exec("go test -count=1 -run TestEmbedded ./lfcdkconfig/...").Stdout(); err != nil {
		os.Exit(1)
	}
}
