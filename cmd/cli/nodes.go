package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newNodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage node pairing requests and node tokens.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending node requests and paired nodes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			if err := doRequest("GET", "/api/v1/pairing/nodes", nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <requestId>",
		Short: "Approve a pending node pairing request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			path := fmt.Sprintf("/api/v1/pairing/nodes/requests/%s/approve", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reject <requestId>",
		Short: "Reject a pending node pairing request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/pairing/nodes/requests/%s/reject", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, nil); err != nil {
				return err
			}
			fmt.Println("rejected")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rotate <nodeId>",
		Short: "Rotate the connection token of a node.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			path := fmt.Sprintf("/api/v1/pairing/nodes/%s/token/rotate", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <nodeId>",
		Short: "Revoke the connection token of a node.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/pairing/nodes/%s/token/revoke", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, nil); err != nil {
				return err
			}
			fmt.Println("revoked")
			return nil
		},
	})

	var caps, bins []string
	eligible := &cobra.Command{
		Use:   "eligible",
		Short: "List nodes whose capabilities satisfy the given requirements.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			query := url.Values{}
			if len(caps) > 0 {
				query.Set("caps", strings.Join(caps, ","))
			}
			if len(bins) > 0 {
				query.Set("bins", strings.Join(bins, ","))
			}
			path := "/api/v1/pairing/nodes/eligible"
			if encoded := query.Encode(); encoded != "" {
				path += "?" + encoded
			}
			if err := doRequest("GET", path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	eligible.Flags().StringSliceVar(&caps, "cap", nil, "Required capability; repeatable.")
	eligible.Flags().StringSliceVar(&bins, "bin", nil, "Required binary; repeatable.")
	cmd.AddCommand(eligible)

	return cmd
}

//Personal.AI order the ending
