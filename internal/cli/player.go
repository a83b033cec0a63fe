package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player identity commands",
	}

	cmd.AddCommand(newPlayerIdentifyCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerRenameCmd())

	return cmd
}

func newPlayerIdentifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Identify as a player, creating one on first run",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if cfg.PlayerID != "" {
				req["id"] = cfg.PlayerID
			}

			var result Player
			if err := client.Post("/api/players", req, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayerID(result.ID); err != nil {
				return fmt.Errorf("failed to save player id: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Get player details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := cfg.PlayerID
			if len(args) > 0 {
				id = args[0]
			}
			if id == "" {
				return fmt.Errorf("no player id; run 'player identify' first or pass an id")
			}

			var result Player
			if err := client.Get(fmt.Sprintf("/api/players/%s", id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <nickname>",
		Short: "Change your nickname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PlayerID == "" {
				return fmt.Errorf("no player id; run 'player identify' first")
			}

			req := map[string]string{"nickname": args[0]}
			var result Player
			if err := client.Patch(fmt.Sprintf("/api/players/%s", cfg.PlayerID), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
