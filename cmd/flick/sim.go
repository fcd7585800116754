package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/npratt/flick/internal/clock"
	"github.com/npratt/flick/internal/config"
	"github.com/npratt/flick/internal/controller"
	"github.com/npratt/flick/internal/events"
	"github.com/npratt/flick/internal/geom"
	"github.com/npratt/flick/internal/placement"
	"github.com/npratt/flick/internal/shutdown"
	"github.com/npratt/flick/internal/sim"
	"github.com/npratt/flick/internal/training"
	"github.com/npratt/flick/internal/viewmodel"
)

// simReport is the output of one simulated run.
type simReport struct {
	RunID         string                 `json:"run_id"`
	State         controller.State       `json:"state"`
	Config        training.Config        `json:"config"`
	Result        training.Result        `json:"result"`
	HitRate       float64                `json:"hit_rate"`
	HitsPerMinute float64                `json:"hits_per_minute"`
	Reaction      training.ReactionStats `json:"reaction"`
	Player        sim.Stats              `json:"player"`
}

func newSimCmd(a *app) *cobra.Command {
	simCmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a headless training session with a simulated player",
		Long: `Run one training session against a simulated player and print the result.

The player reaches for each target after a sampled reaction time. A reach
that falls short (see --accuracy) is corrected after another reaction time.
By default the run uses virtual time and finishes instantly; --realtime
runs on the wall clock and can be interrupted with Ctrl+C.`,
		RunE: a.runSim,
	}

	simCmd.Flags().Bool(FlagRealtime, false, "Run on the wall clock instead of virtual time")
	simCmd.Flags().Int64(FlagSeed, 0, "Random seed for the player and placement (0 = time-based)")
	simCmd.Flags().Float64(FlagAccuracy, 0, "Probability that a first reach lands (0..1)")
	simCmd.Flags().Int(FlagReactionMs, 0, "Mean reaction time in milliseconds")
	simCmd.Flags().Int(FlagJitterMs, 0, "Reaction time spread in milliseconds")
	simCmd.Flags().Bool(FlagJSON, false, "Print the result as JSON")
	bindFlags(a.v, simCmd.Flags())

	return simCmd
}

func (a *app) runSim(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	runCfg, err := cfg.RunConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := runCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	router := events.NewRouter(events.DefaultBufferSize)
	stopTrace, err := startTrace(ctx, router, cfg.Paths.Trace)
	if err != nil {
		router.Close()
		return err
	}
	defer stopTrace()
	defer router.Close()

	var report *simReport
	if cfg.Sim.Realtime {
		report, err = a.simRealtime(ctx, cfg, runCfg, router)
	} else {
		report, err = a.simVirtual(ctx, cfg, runCfg, router)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.v.GetBool(FlagJSON) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

// simParts builds the arena and controller options shared by both clocks.
func (a *app) simParts(cfg *config.Config, router *events.Router, sched clock.Scheduler) (*sim.Arena, []controller.Option) {
	params := sim.Params{
		Screen:   sizeOf(cfg.Sim.ScreenW, cfg.Sim.ScreenH),
		Target:   sizeOf(cfg.Terminal.TargetWidthPx, cfg.Terminal.TargetHeightPx),
		Reaction: time.Duration(cfg.Sim.ReactionMs) * time.Millisecond,
		Jitter:   time.Duration(cfg.Sim.JitterMs) * time.Millisecond,
		Accuracy: cfg.Sim.Accuracy,
	}
	arenaOpts := []sim.Option{sim.WithLogger(a.logger)}
	opts := []controller.Option{
		controller.WithLogger(a.logger),
		controller.WithRouter(router),
		controller.WithPlacement(cfg.PlacementParams()),
		controller.WithPollInterval(cfg.HitPollInterval()),
	}
	if cfg.Sim.Seed != 0 {
		arenaOpts = append(arenaOpts, sim.WithSeed(cfg.Sim.Seed))
		opts = append(opts, controller.WithSamplerOptions(placement.WithSeed(cfg.Sim.Seed)))
	}
	return sim.New(params, sched, arenaOpts...), opts
}

// simVirtual plays the run on a manual clock as fast as possible.
func (a *app) simVirtual(ctx context.Context, cfg *config.Config, runCfg training.Config, router *events.Router) (*simReport, error) {
	clk := clock.NewManual(time.Now())
	arena, opts := a.simParts(cfg, router, clk)
	ctrl := controller.New(arena, arena, arena, clk, opts...)

	if err := ctrl.Start(runCfg); err != nil {
		return nil, err
	}
	virtual, err := sim.Drive(ctx, clk, ctrl, sim.DefaultStep, virtualLimit(cfg, runCfg))
	if err != nil {
		ctrl.Stop()
		return nil, err
	}
	a.logger.Debug("simulation finished", "virtual_time", virtual)
	return newReport(ctrl, arena), nil
}

// simRealtime plays the run on the wall clock until it completes or the
// process is interrupted.
func (a *app) simRealtime(ctx context.Context, cfg *config.Config, runCfg training.Config, router *events.Router) (*simReport, error) {
	src := clock.NewSystem()
	done := make(chan struct{}, 1)
	arena, opts := a.simParts(cfg, router, src)
	opts = append(opts, controller.WithOnComplete(func(training.Result) {
		select {
		case done <- struct{}{}:
		default:
		}
	}))
	ctrl := controller.New(arena, arena, arena, src, opts...)

	err := shutdown.RunWithGracefulShutdown(
		ctx,
		a.logger,
		5*time.Second,
		func(runCtx context.Context) error {
			if err := ctrl.Start(runCfg); err != nil {
				return err
			}
			select {
			case <-done:
				return nil
			case <-runCtx.Done():
				return runCtx.Err()
			}
		},
		func(shutdownCtx context.Context) error {
			ctrl.Stop()
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return newReport(ctrl, arena), nil
}

// virtualLimit bounds a virtual run generously: time mode runs its fixed
// duration, count mode needs at most two reaches per target.
func virtualLimit(cfg *config.Config, runCfg training.Config) time.Duration {
	if runCfg.Mode == training.ModeTime {
		return runCfg.TotalDuration() + runCfg.StayTime() + time.Second
	}
	perTarget := 2*time.Duration(cfg.Sim.ReactionMs+cfg.Sim.JitterMs)*time.Millisecond + time.Second
	return time.Duration(runCfg.TargetHitCount) * perTarget
}

func newReport(ctrl *controller.Controller, arena *sim.Arena) *simReport {
	res := ctrl.Result()
	return &simReport{
		RunID:         ctrl.RunID(),
		State:         ctrl.State(),
		Config:        ctrl.Config(),
		Result:        res,
		HitRate:       res.HitRate(),
		HitsPerMinute: res.HitsPerMinute(),
		Reaction:      res.Reaction(),
		Player:        arena.Stats(),
	}
}

// printReport writes the same figures as the results panel.
func printReport(w io.Writer, r *simReport) {
	fmt.Fprintf(w, "run %s (%s, %s mode)\n", events.ShortID(r.RunID), r.State, r.Config.Mode)
	rows := viewmodel.ResultRows(r.Result, r.Config.Mode)
	rows = append(rows, viewmodel.ReactionRows(r.Reaction)...)
	rows = append(rows, viewmodel.Row{
		Name:  "Player",
		Value: fmt.Sprintf("%d targets, %d reaches, %d corrections", r.Player.Opened, r.Player.Reaches, r.Player.Corrections),
	})
	for _, row := range rows {
		fmt.Fprintf(w, "  %-14s%s\n", row.Name, row.Value)
	}
}

func sizeOf(w, h int) geom.Size {
	return geom.Size{W: float64(w), H: float64(h)}
}
