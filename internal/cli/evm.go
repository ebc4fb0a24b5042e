package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainsafe/cdp-sdk-go/pkg/evm"
	"github.com/chainsafe/cdp-sdk-go/pkg/units"
)

func newEVMCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evm",
		Short: "Manage EVM accounts",
	}
	cmd.AddCommand(
		newEVMAccountsCommand(a),
		newEVMSignMessageCommand(a),
		newEVMTransferCommand(a),
		newEVMFaucetCommand(a),
		newEVMBalancesCommand(a),
	)
	return cmd
}

func newEVMAccountsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Create, get and list EVM accounts",
	}

	var create evm.CreateAccountOptions
	var getOrCreate bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an EVM account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			var acct *evm.Account
			if getOrCreate {
				acct, err = c.EVM().GetOrCreateAccount(cmd.Context(), create)
			} else {
				acct, err = c.EVM().CreateAccount(cmd.Context(), create)
			}
			if err != nil {
				return err
			}
			return a.print(acct)
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "account name")
	createCmd.Flags().StringVar(&create.AccountPolicy, "policy", "", "policy ID applied to the account")
	createCmd.Flags().BoolVar(&getOrCreate, "get-or-create", false, "return the account with this name if it exists")

	getCmd := &cobra.Command{
		Use:   "get <address|name>",
		Short: "Get an EVM account by address or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			opts := evm.GetAccountOptions{Name: args[0]}
			if strings.HasPrefix(args[0], "0x") {
				opts = evm.GetAccountOptions{Address: args[0]}
			}
			acct, err := c.EVM().GetAccount(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(acct)
		},
	}

	var page evm.PageOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List EVM accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.EVM().ListAccounts(cmd.Context(), page)
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

func newEVMSignMessageCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-message <address> <message>",
		Short: "Sign an EIP-191 message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			sig, err := c.EVM().SignMessage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(sig)
		},
	}
}

func newEVMTransferCommand(a *app) *cobra.Command {
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
		Short: "Send ETH or an ERC-20 token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := evmDecimals(token, decimals)
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
			res, err := c.EVM().Transfer(cmd.Context(), from, evm.TransferOptions{
				To:      to,
				Amount:  value,
				Token:   token,
				Network: evm.Network(network),
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
	f.StringVar(&token, "token", evm.NativeToken, "eth, usdc or an ERC-20 contract address")
	f.StringVar(&network, "network", string(evm.NetworkBaseSepolia), "EVM network")
	f.Int32Var(&decimals, "decimals", -1, "token decimals, required for contract addresses")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func evmDecimals(token string, override int32) (int32, error) {
	if override >= 0 {
		return override, nil
	}
	switch strings.ToLower(token) {
	case evm.NativeToken:
		return evm.EtherDecimals, nil
	case evm.USDC:
		return evm.USDCDecimals, nil
	}
	return 0, fmt.Errorf("--decimals is required for token %s", token)
}

func newEVMFaucetCommand(a *app) *cobra.Command {
	var opts evm.FaucetOptions
	var network string
	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "Request testnet funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			opts.Network = evm.Network(network)
			res, err := c.EVM().RequestFaucet(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&opts.Address, "address", "", "address to fund")
	cmd.Flags().StringVar(&network, "network", string(evm.NetworkBaseSepolia), "base-sepolia or ethereum-sepolia")
	cmd.Flags().StringVar(&opts.Token, "token", evm.NativeToken, "eth, usdc, eurc or cbbtc")
	return cmd
}

func newEVMBalancesCommand(a *app) *cobra.Command {
	var (
		network string
		page    evm.PageOptions
	)
	cmd := &cobra.Command{
		Use:   "balances <address>",
		Short: "List token balances of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.EVM().ListTokenBalances(cmd.Context(), evm.Network(network), args[0], page)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&network, "network", string(evm.NetworkBase), "EVM network")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 0, "balances per page")
	cmd.Flags().StringVar(&page.PageToken, "page-token", "", "token of the page to fetch")
	return cmd
}
