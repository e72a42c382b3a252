//usr/bin/env go run "$0" "$@"; exit

//MISE description="Synthesize every configured environment"

//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/bitfield/script"
)

func main() {
	names, err := script.Exec("go run ./cmd/lf envs").Column(1).Slice()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: Failed to list environments:", err)
		os.Exit(1)
	}

	failed := 0
	for _, name := range names[1:] { // skip the header row
		fmt.Println("synthesizing", name)
		if _, err := script.Exec("go run ./cmd/lf synth " + name).Stdout(); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR: Failed to synthesize", name)
			failed++
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
