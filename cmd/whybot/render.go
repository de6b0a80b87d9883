package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/whybot/internal/render"
	"github.com/kingrea/whybot/internal/workflow"
)

var (
	renderOut    string
	renderNoPlan bool
	renderCell   int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the board (and a planned route) to a PNG",
	Example: `  whybot render --layout demo -o demo.png
  whybot render --layout demo --no-plan -o board.png`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "PNG file to write (default .whybot/exports/board.png)")
	renderCmd.Flags().BoolVar(&renderNoPlan, "no-plan", false, "draw the board without asking the planner")
	renderCmd.Flags().IntVar(&renderCell, "cell-size", 0, "pixel edge of one cell (default from config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	s, err := env.newSession(cmd)
	if err != nil {
		return err
	}
	if !renderNoPlan {
		out, err := s.Run(cmd.Context(), env.client, workflow.ActionPlan)
		if err != nil {
			return err
		}
		if out.Kind == workflow.OutcomeFailed {
			return out.Err
		}
	}

	cellSize := env.cfg.CellSize()
	if renderCell > 0 {
		cellSize = renderCell
	}
	path := renderOut
	if path == "" {
		path = filepath.Join(env.cfg.ExportsDir(), "board.png")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	img := render.Render(s.Scene(), render.Options{CellSize: cellSize, Caption: s.Explain().Lines()})
	if err := render.WritePNG(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	env.logbook.Info("Rendered %s", path)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
