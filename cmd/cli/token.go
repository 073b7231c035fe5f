package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// newTokenCmd fetches a machine-to-machine access token from the identity
// provider with the client-credentials grant. Handy for calling the API
// from scripts.
func newTokenCmd(cfg *config.Config) *cobra.Command {
	var audience string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token obtained with the client-credentials grant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth0Domain == "" || cfg.Auth0ClientID == "" || cfg.Auth0ClientSecret == "" {
				return errors.New("AUTH0_DOMAIN, AUTH0_CLIENT_ID and AUTH0_CLIENT_SECRET are required")
			}

			cc := clientCredentialsConfig(cfg, audience)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			tok, err := cc.Token(ctx)
			if err != nil {
				return fmt.Errorf("request token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&audience, "audience", cfg.Auth0Audience, "API audience to request")
	return cmd
}

func clientCredentialsConfig(cfg *config.Config, audience string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:       cfg.Auth0ClientID,
		ClientSecret:   cfg.Auth0ClientSecret,
		TokenURL:       cfg.TokenURL(),
		EndpointParams: url.Values{"audience": {audience}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}
}
