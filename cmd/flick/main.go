package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/config"
	"github.com/npratt/flick/internal/controller"
	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/tui"
)

var version = "dev"

// traceBufferSize keeps virtual-time bursts from overflowing the trace.
const traceBufferSize = 5000

// app carries the process-wide logger and configuration source.
type app struct {
	v        *viper.Viper
	logLevel *slog.LevelVar
	logger   *slog.Logger
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	v := viper.New()
	v.SetEnvPrefix("FLICK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	rootCmd := newRootCmd(&app{v: v, logLevel: logLevel, logger: logger})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flick",
		Short: "Reflex and aim trainer",
		Long: `flick is a reflex and aim trainer for the terminal. Targets appear one at a
time inside the arena; move the mouse onto each one as fast as you can.

Count mode ends after a fixed number of hits. Time mode runs for a fixed
duration and counts a miss whenever a target outlives its stay time.`,
		SilenceUsage: true,
		RunE:         a.runTrainer,
	}

	// Persistent flags available to all commands
	pf := rootCmd.PersistentFlags()
	pf.Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	pf.String(FlagConfig, "", "Config file path (default: .flick/config.toml)")
	pf.String(FlagLogFile, "", "Log file path for the terminal trainer")
	pf.String(FlagTraceFile, "", "Write engine events to this JSONL file")
	pf.String(FlagKind, "", "Target kind (recycle-bin, new-folder, spreadsheet, word-document, text-document)")
	pf.String(FlagMode, "", "Training mode (count or time)")
	pf.Int(FlagHitCount, 0, "Hits needed to finish a count-mode run")
	pf.Int(FlagDuration, 0, "Length of a time-mode run in seconds")
	pf.Int(FlagStayTime, 0, "Milliseconds each time-mode target stays before it is missed")
	bindFlags(a.v, pf)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flick %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd, newSimCmd(a), newConfigCmd(a))
	return rootCmd
}

// bindFlags binds every flag in fs to the viper key of the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// loadConfig merges config files, environment and explicitly set flags.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if a.v.GetBool(FlagVerbose) {
		a.logLevel.Set(slog.LevelDebug)
		a.logger.Debug("verbose logging enabled")
	}

	cfg, err := config.LoadConfig(a.v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Apply CLI flag overrides (only if explicitly set)
	flags := cmd.Flags()
	if flags.Changed(FlagLogFile) {
		cfg.Paths.Log = a.v.GetString(FlagLogFile)
	}
	if flags.Changed(FlagTraceFile) {
		cfg.Paths.Trace = a.v.GetString(FlagTraceFile)
	}
	if flags.Changed(FlagKind) {
		cfg.Training.Kind = a.v.GetString(FlagKind)
	}
	if flags.Changed(FlagMode) {
		cfg.Training.Mode = a.v.GetString(FlagMode)
	}
	if flags.Changed(FlagHitCount) {
		cfg.Training.HitCount = a.v.GetInt(FlagHitCount)
	}
	if flags.Changed(FlagDuration) {
		cfg.Training.DurationSeconds = a.v.GetInt(FlagDuration)
	}
	if flags.Changed(FlagStayTime) {
		cfg.Training.StayTimeMs = a.v.GetInt(FlagStayTime)
	}

	// Sim flag overrides
	if flags.Changed(FlagRealtime) {
		cfg.Sim.Realtime = a.v.GetBool(FlagRealtime)
	}
	if flags.Changed(FlagSeed) {
		cfg.Sim.Seed = a.v.GetInt64(FlagSeed)
	}
	if flags.Changed(FlagAccuracy) {
		cfg.Sim.Accuracy = a.v.GetFloat64(FlagAccuracy)
	}
	if flags.Changed(FlagReactionMs) {
		cfg.Sim.ReactionMs = a.v.GetInt(FlagReactionMs)
	}
	if flags.Changed(FlagJitterMs) {
		cfg.Sim.JitterMs = a.v.GetInt(FlagJitterMs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// startTrace subscribes a trace sink when path is set. The returned stop
// function must be called after the router is closed.
func startTrace(ctx context.Context, router *events.Router, path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	sink := events.NewTraceSink(path)
	ch := router.SubscribeBuffered(traceBufferSize)
	if err := sink.Start(ctx, ch); err != nil {
		router.Unsubscribe(ch)
		return nil, fmt.Errorf("start trace sink: %w", err)
	}
	return func() { _ = sink.Stop() }, nil
}

// runTrainer runs the interactive terminal trainer.
func (a *app) runTrainer(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("flick needs an interactive terminal; use 'flick sim' for a headless run")
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	runCfg, err := cfg.RunConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// TUI mode: redirect logger to file before creating controller
	tuiLog, err := SetupTUILogger(cfg.Paths.Log, a.logLevel, cfg.LogRotation)
	if err != nil {
		return err
	}
	defer func() { _ = tuiLog.Close() }()
	slog.SetDefault(tuiLog.Logger)

	tuiLog.Logger.Info("flick starting",
		"version", version,
		"log_file", cfg.Paths.Log,
		"trace_file", cfg.Paths.Trace,
	)

	router := events.NewRouter(events.DefaultBufferSize)
	stopTrace, err := startTrace(cmd.Context(), router, cfg.Paths.Trace)
	if err != nil {
		router.Close()
		return err
	}

	terminal := tui.NewTerminal(tui.Metrics{
		CellW:   float64(cfg.Terminal.CellWidthPx),
		CellH:   float64(cfg.Terminal.CellHeightPx),
		TargetW: float64(cfg.Terminal.TargetWidthPx),
		TargetH: float64(cfg.Terminal.TargetHeightPx),
	})

	ctrl := controller.New(terminal, terminal, terminal, clock.NewSystem(),
		controller.WithLogger(tuiLog.Logger),
		controller.WithRouter(router),
		controller.WithPlacement(cfg.PlacementParams()),
		controller.WithPollInterval(cfg.HitPollInterval()),
		controller.WithLastConfig(runCfg),
	)

	// Subscribe TUI to events with buffering
	tuiEvents := router.SubscribeBuffered(5000)

	tuiApp := tui.New(ctrl, terminal, tuiEvents,
		tui.WithOnQuit(ctrl.Stop),
		tui.WithInitialConfig(runCfg),
	)

	// Run TUI in foreground (blocks until quit)
	tuiErr := tuiApp.Run()

	// Ensure no run outlives the TUI
	ctrl.Stop()
	router.Close()
	stopTrace()

	if tuiErr != nil {
		return fmt.Errorf("run terminal UI: %w", tuiErr)
	}
	return nil
}
