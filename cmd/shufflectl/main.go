package main

import (
	"os"

	"github.com/AdamBeresnev/op-shuffle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
