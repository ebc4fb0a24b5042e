package main

import (
	"os"

	"github.com/chainsafe/cdp-sdk-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
