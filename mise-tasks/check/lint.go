//usr/bin/env go run "$0" "$@"; exit

//MISE description="Lint the CDK app and the lf command using golangci-lint"

//go:build ignore

package main

import (
	"os"

	"github.com/bitfield/script"
)

func main() {
	_, err := script.Exec("golangci-lint run ./cmd/... ./internal/... ./lfcdk/... ./lfcdkconfig/... ./lfcdkutil/...").Stdout()
	if err != nil {
		os.Exit(1)
	}
}
