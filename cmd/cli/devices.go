package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage device pairing requests and device tokens.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending device requests and paired devices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			if err := doRequest("GET", "/api/v1/pairing/devices", nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <requestId>",
		Short: "Approve a pending device pairing request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			path := fmt.Sprintf("/api/v1/pairing/devices/requests/%s/approve", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reject <requestId>",
		Short: "Reject a pending device pairing request.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/pairing/devices/requests/%s/reject", url.PathEscape(args[0]))
			if err := doRequest("POST", path, nil, nil); err != nil {
				return err
			}
			fmt.Println("rejected")
			return nil
		},
	})

	var rotateScopes []string
	rotate := &cobra.Command{
		Use:   "rotate <deviceId> <role>",
		Short: "Rotate a device token for one role.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			path := fmt.Sprintf("/api/v1/pairing/devices/%s/tokens/%s/rotate",
				url.PathEscape(args[0]), url.PathEscape(args[1]))
			var payload interface{}
			if len(rotateScopes) > 0 {
				payload = map[string]interface{}{"scopes": rotateScopes}
			}
			if err := doRequest("POST", path, payload, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	rotate.Flags().StringSliceVar(&rotateScopes, "scope", nil, "Replacement scope set; omit to keep the current scopes.")
	cmd.AddCommand(rotate)

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <deviceId> <role>",
		Short: "Revoke a device token for one role.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out interface{}
			path := fmt.Sprintf("/api/v1/pairing/devices/%s/tokens/%s/revoke",
				url.PathEscape(args[0]), url.PathEscape(args[1]))
			if err := doRequest("POST", path, nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	return cmd
}

//Personal.AI order the ending
