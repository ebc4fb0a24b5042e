package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainsafe/cdp-sdk-go/pkg/solana"
	"github.com/chainsafe/cdp-sdk-go/pkg/units"
)

func newSolanaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "solana",
		Aliases: []string{"sol"},
		Short:   "Manage Solana accounts",
	}
	cmd.AddCommand(
		newSolanaAccountsCommand(a),
		newSolanaSignMessageCommand(a),
		newSolanaTransferCommand(a),
		newSolanaFaucetCommand(a),
	)
	return cmd
}

func newSolanaAccountsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Create, get and list Solana accounts",
	}

	var create solana.CreateAccountOptions
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Solana account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			acct, err := c.Solana().CreateAccount(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.print(acct)
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "account name")
	createCmd.Flags().StringVar(&create.AccountPolicy, "policy", "", "policy ID applied to the account")

	var byName bool
	getCmd := &cobra.Command{
		Use:   "get <address|name>",
		Short: "Get a Solana account by address, or by name with --name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			opts := solana.GetAccountOptions{Address: args[0]}
			if byName {
				opts = solana.GetAccountOptions{Name: args[0]}
			}
			acct, err := c.Solana().GetAccount(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(acct)
		},
	}
	getCmd.Flags().BoolVar(&byName, "name", false, "treat the argument as an account name")

	var page solana.PageOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List Solana accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.Solana().ListAccounts(cmd.Context(), page)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	listCmd.Flags().IntVar(&page.PageSize, "page-size", 0, "accounts per page")
	listCmd.Flags().StringVar(&page.PageToken, "page-token", "", "token of the page to fetch")

	cmd.AddCommand(createCmd, getCmd, listCmd)
	return cmd
}

func newSolanaSignMessageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-message <address> <message>",
		Short: "Sign a message with a Solana account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			sig, err := c.Solana().SignMessage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(sig)
		},
	}
}

func newSolanaTransferCommand(a *app) *cobra.Command {
	var (
		from     string
		to       string
		amount   string
		token    string
		network  string
		decimals int32
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send SOL or an SPL token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := solanaDecimals(token, decimals)
			if err != nil {
				return err
			}
			value, err := units.ParseUnits(amount, d)
			if err != nil {
				return err
			}
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.Solana().Transfer(cmd.Context(), from, solana.TransferOptions{
				To:      to,
				Amount:  value,
				Token:   token,
				Network: solana.Network(network),
			})
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "sending account address")
	f.StringVar(&to, "to", "", "recipient address")
	f.StringVar(&amount, "amount", "", "amount in whole tokens, for example 0.5")
	f.StringVar(&token, "token", solana.NativeToken, "sol, usdc or an SPL mint address")
	f.StringVar(&network, "network", string(solana.NetworkDevnet), "solana or solana-devnet")
	f.Int32Var(&decimals, "decimals", -1, "mint decimals, required for mint addresses")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func solanaDecimals(token string, override int32) (int32, error) {
	if override >= 0 {
		return override, nil
	}
	switch strings.ToLower(token) {
	case solana.NativeToken:
		return solana.SolDecimals, nil
	case solana.USDC:
		return solana.USDCDecimals, nil
	}
	return 0, fmt.Errorf("--decimals is required for token %s", token)
}

func newSolanaFaucetCommand(a *app) *cobra.Command {
	var opts solana.FaucetOptions
	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "Request devnet funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.Solana().RequestFaucet(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&opts.Address, "address", "", "address to fund")
	cmd.Flags().StringVar(&opts.Token, "token", solana.NativeToken, "sol or usdc")
	return cmd
}
