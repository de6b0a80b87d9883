package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/whybot/internal/config"
	"github.com/kingrea/whybot/internal/grid"
	"github.com/kingrea/whybot/internal/logbook"
	"github.com/kingrea/whybot/internal/planner"
	"github.com/kingrea/whybot/internal/session"
)

// Global flags
var (
	projectDir     string
	plannerURL     string
	plannerTimeout time.Duration
	layoutFlag     string
	seedFlag       int64
	weightsFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "whybot",
	Short: "whybot - compare weighted path plans on a grid",
	Long: `whybot edits a small grid world, asks a planning service for a route
under five cost weights, and shows why the route was chosen. Store a
baseline, move the weights, and ask for a counterfactual to see how the
route changes.

Run without a subcommand to open the interactive board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchTUI(cmd)
	},
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&projectDir, "dir", "", "project directory holding .whybot/ (default: working directory)")
	flags.StringVar(&plannerURL, "planner", "", "planner base URL (overrides config and WHYBOT_PLANNER_URL)")
	flags.DurationVar(&plannerTimeout, "timeout", 0, "planner request timeout (overrides config)")
	flags.StringVar(&layoutFlag, "layout", "", "startup board: random, demo or empty (default from config)")
	flags.Int64Var(&seedFlag, "seed", 0, "seed for random walls (default from config or WHYBOT_SEED)")
	flags.StringVarP(&weightsFlag, "weights", "w", "", `starting weights, e.g. "risk=3,time=0.3"`)

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(healthCmd)
}

// appEnv bundles what every subcommand needs.
type appEnv struct {
	cfg     *config.Config
	logbook *logbook.Logbook
	client  *planner.Client
}

func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	dir := projectDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	if err := config.InitWhybotDir(dir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}

	settings, err := cfg.PlannerSettings()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("planner") {
		settings.BaseURL = plannerURL
	}
	if cmd.Flags().Changed("timeout") {
		settings.Timeout = plannerTimeout
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("planner settings: %w", err)
	}
	client := planner.NewClient(settings, planner.WithLogger(lb))
	return &appEnv{cfg: cfg, logbook: lb, client: client}, nil
}

// newSession builds the session controller from config and flags.
func (env *appEnv) newSession(cmd *cobra.Command) (*session.Controller, error) {
	layoutName := env.cfg.Layout()
	if cmd.Flags().Changed("layout") {
		layoutName = layoutFlag
	}
	layout, ok := session.ParseLayout(layoutName)
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (want random, demo or empty)", layoutName)
	}
	initial, err := weightsFrom(weightsFlag, env.cfg.Project.Weights.Defaults)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLogger(env.logbook),
		session.WithLayout(layout),
		session.WithWeights(env.cfg.Project.Weights.Range, initial),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, session.WithRandSource(grid.SeededSource(seedFlag)))
	} else if seed, ok := env.cfg.Seed(); ok {
		opts = append(opts, session.WithRandSource(grid.SeededSource(seed)))
	}
	return session.New(opts...), nil
}
