package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/cdp-sdk-go/pkg/app"
	"github.com/chainsafe/cdp-sdk-go/pkg/app/api"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadTokenServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = api.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Token server failed: %v\n", err)
		os.Exit(1)
	}
}
