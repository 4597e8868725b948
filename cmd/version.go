// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/membership-service/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get the application's version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "membership-service %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
