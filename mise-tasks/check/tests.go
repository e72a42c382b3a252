//usr/bin/env go run "$0" "$@"; exit

//MISE description="Run Go tests, the CDK assertions need node for the jsii runtime"

//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/bitfield/script"
)

func main() {
	if _, err := script.Exec("node --version").String(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: node is required to run the CDK tests")
		os.Exit(1)
	}

	_, err := script.Exec("go test -timeout 20m ./...").Stdout()
	if err != nil {
		os.Exit(1)
	}
}
