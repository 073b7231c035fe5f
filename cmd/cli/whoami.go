package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/auth"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
)

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami TOKEN",
		Short: "Verify a token the way the API does and print its identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			verifier := auth.NewFromConfig(cfg)
			identity, err := verifier.Verify(cmd.Context(), "Bearer "+args[0])
			if err != nil {
				return err
			}

			out := map[string]any{
				"subject": identity.Subject,
				"claims":  identity.Claims,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("encode identity: %w", err)
			}
			return nil
		},
	}
}
