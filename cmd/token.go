// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Get an access token using Client Credentials flow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := credentials(cmd.Context())
		if err != nil {
			return err
		}

		token, err := cfg.Token(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
