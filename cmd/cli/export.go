package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
	"github.com/wadjakorntonsri/linkcomment/pkg/core/services"
)

func newExportCmd(cfg *config.Config) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump one owner's link comments as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}

			repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, cfg.DatabaseAuthToken)
			if err != nil {
				return fmt.Errorf("connect to db: %w", err)
			}
			defer repo.Close()

			items, err := services.NewLinkCommentService(repo).List(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(items)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "subject whose records to export")
	return cmd
}
