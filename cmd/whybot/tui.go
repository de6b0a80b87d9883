package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/whybot/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board (the default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchTUI(cmd)
	},
}

// launchTUI runs the bubbletea program until the user quits.
func launchTUI(cmd *cobra.Command) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	s, err := env.newSession(cmd)
	if err != nil {
		return err
	}
	app := tui.NewApp(s, env.client,
		tui.WithContext(cmd.Context()),
		tui.WithLogbook(env.logbook),
		tui.WithConfig(env.cfg),
	)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
