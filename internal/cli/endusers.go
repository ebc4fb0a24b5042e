package cli

import (
	"github.com/spf13/cobra"

	"github.com/chainsafe/cdp-sdk-go/pkg/enduser"
)

func newEndUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end-users",
		Short: "Query end users of an embedded wallet project",
	}

	var opts enduser.ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List end users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			res, err := c.EndUsers().ListEndUsers(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	listCmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "end users per page")
	listCmd.Flags().StringVar(&opts.PageToken, "page-token", "", "token of the page to fetch")
	listCmd.Flags().StringSliceVar(&opts.Sort, "sort", nil, "sort keys, for example createdAt=desc")

	validateCmd := &cobra.Command{
		Use:   "validate <access-token>",
		Short: "Validate an end user access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cdpClient()
			if err != nil {
				return err
			}
			u, err := c.EndUsers().ValidateAccessToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(u)
		},
	}

	cmd.AddCommand(listCmd, validateCmd)
	return cmd
}
