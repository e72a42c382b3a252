//usr/bin/env go run "$0" "$@"; exit

//MISE description="Check that all packages, including tests, compile"

//go:build ignore

package main

import (
	"os"

	"github.com/bitfield/script"
)

func main() {
	for _, cmd := range []string{
		"go build ./...",
		"go test -count=1 -run ^$ ./...",
	} {
		if _, err := script.Exec(cmd).Stdout(); err != nil {
			os.Exit(1)
		}
	}
}
