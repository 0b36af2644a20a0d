package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newFriendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Friend management commands",
	}

	cmd.AddCommand(newFriendsListCmd())
	cmd.AddCommand(newFriendsSearchCmd())
	cmd.AddCommand(newFriendsRequestCmd())
	cmd.AddCommand(newFriendsAcceptCmd())
	cmd.AddCommand(newFriendsDeclineCmd())
	cmd.AddCommand(newFriendsRemoveCmd())

	return cmd
}

func newFriendsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List friends and pending requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Friends

			if err := client.Get("/api/v1/friends", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search for users by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SearchResult

			path := "/api/v1/friends/search?q=" + url.QueryEscape(args[0])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendsRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "request <username>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": args[0]}
			var result map[string]any

			if err := client.Post("/api/v1/friends/requests", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if matched, ok := result["matched"].(bool); ok && matched {
				out.PrintMessage(fmt.Sprintf("You are now friends with %s", args[0]))
			} else {
				out.PrintMessage(fmt.Sprintf("Friend request sent to %s", args[0]))
			}
			return nil
		},
	}
}

func newFriendsAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <username>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respondToRequest(args[0], true)
		},
	}
}

func newFriendsDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <username>",
		Short: "Decline a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respondToRequest(args[0], false)
		},
	}
}

func respondToRequest(from string, accept bool) error {
	req := map[string]any{"from": from, "accept": accept}

	if err := client.Post("/api/v1/friends/requests/respond", req, nil); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	if accept {
		out.PrintMessage(fmt.Sprintf("Accepted friend request from %s", from))
	} else {
		out.PrintMessage(fmt.Sprintf("Declined friend request from %s", from))
	}
	return nil
}

func newFriendsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <username>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(fmt.Sprintf("/api/v1/friends/%s", args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Removed %s", args[0]))
			return nil
		},
	}
}
