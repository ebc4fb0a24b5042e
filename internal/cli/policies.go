package cli

import (
	"github.com/spf13/cobra"

	"github.com/chainsafe/cdp-sdk-go/pkg/policies"
)

type deleted struct {
	ID      string `json:"id" yaml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

func newPoliciesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policies",
		Aliases: []string{"policy"},
		Short:   "Manage policy engine policies",
	}

	var opts policies.ListPoliciesOptions
	var scope string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			opts.Scope = policies.Scope(scope)
			res, err := c.Policies().ListPolicies(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	listCmd.Flags().StringVar(&scope, "scope", "", "project or account")
	listCmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "policies per page")
	listCmd.Flags().StringVar(&opts.PageToken, "page-token", "", "token of the page to fetch")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			p, err := c.Policies().GetPolicy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(p)
		},
	}

	var file string
	createCmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a policy from a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req policies.CreatePolicyRequest
			if err := readDocument(cmd.InOrStdin(), file, &req); err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			p, err := c.Policies().CreatePolicy(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(p)
		},
	}
	createCmd.Flags().StringVarP(&file, "file", "f", "", "policy document, - for stdin")
	_ = createCmd.MarkFlagRequired("file")

	var updateFile string
	updateCmd := &cobra.Command{
		Use:   "update <id> -f <file>",
		Short: "Replace a policy's description and rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req policies.UpdatePolicyRequest
			if err := readDocument(cmd.InOrStdin(), updateFile, &req); err != nil {
				return err
			}
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			p, err := c.Policies().UpdatePolicy(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.print(p)
		},
	}
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "policy document, - for stdin")
	_ = updateCmd.MarkFlagRequired("file")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			if err := c.Policies().DeletePolicy(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.print(deleted{ID: args[0], Deleted: true})
		},
	}

	cmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}
