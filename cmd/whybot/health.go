package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the planner is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		base := env.client.Settings().BaseURL
		if err := env.client.Health(cmd.Context()); err != nil {
			env.logbook.Warn("Health check against %s failed: %v", base, err)
			return fmt.Errorf("planner at %s: %w", base, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "planner at %s: ok\n", base)
		return nil
	},
}
