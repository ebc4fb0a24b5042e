// Package cli implements the cdp command line tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/cdp"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
)

const version = "0.1.0"

type app struct {
	configPath string
	envFile    string
	output     string

	cfg    *config.CLIConfig
	logger *zap.Logger
	client *cdp.Client
	out    io.Writer
}

// NewRootCommand returns the cdp command tree.
func NewRootCommand() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:   "cdp",
		Short: "Command line client for the Coinbase Developer Platform",
		Long: `cdp talks to the Coinbase Developer Platform REST API.

Credentials are read from CDP_API_KEY_ID, CDP_API_KEY_SECRET and
CDP_WALLET_SECRET, from an --env-file, or from the cdp section of --config.

Examples:
  cdp evm accounts create --name treasury
  cdp evm transfer --from 0x... --to 0x... --amount 0.01 --token eth --network base-sepolia
  cdp solana faucet --address 7Hn... --token sol
  cdp policies create -f policy.yaml
  cdp token --method GET --path /platform/v2/evm/accounts`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.envFile, "env-file", "", "load environment variables from this file first")
	flags.StringVarP(&a.output, "output", "o", "", "output format: json or yaml")

	root.AddCommand(
		newTokenCommand(a),
		newEVMCommand(a),
		newSolanaCommand(a),
		newPoliciesCommand(a),
		newEndUsersCommand(a),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = cmd.OutOrStdout()

	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := config.LoadCLI(a.configPath)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if cfg.Output != formatJSON && cfg.Output != formatYAML {
		return fmt.Errorf("output must be json or yaml, got %q", cfg.Output)
	}
	a.cfg = cfg

	if a.logger, err = config.NewLogger(cfg.Logging); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	return nil
}

// cdpClient builds the API client on first use so commands that only mint
// tokens do not need it.
func (a *app) cdpClient() (*cdp.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := cdp.New(
		cdp.WithConfig(a.cfg.CDP),
		cdp.WithLogger(a.logger),
		cdp.WithSource("cdp-cli", version),
	)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) close() error {
	if a.logger != nil {
		defer func() { _ = a.logger.Sync() }()
	}
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}
