package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Message commands",
	}

	cmd.AddCommand(newMessagesSendCmd())
	cmd.AddCommand(newMessagesReadCmd())

	return cmd
}

func newMessagesSendCmd() *cobra.Command {
	var to, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to another user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"to": to, "body": body}
			var result MessageResult

			if err := client.Post("/api/v1/messages", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient username (required)")
	cmd.Flags().StringVar(&body, "body", "", "Message text (required)")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func newMessagesReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult

			if err := client.Patch(fmt.Sprintf("/api/v1/messages/%s/read", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
