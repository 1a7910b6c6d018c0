package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/app"
	"github.com/chessguard/chessguard/internal/config"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/report"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
	"github.com/chessguard/chessguard/pkg/logger"
)

type analyzeFlags struct {
	player        string
	telemetryPath string
	jsonOut       bool
}

func analyzeCmd() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze <game.pgn>",
		Short: "Analyze games from a PGN file and print the report",
		Long: "Analyze reads one or more games from a PGN file. A single game yields a\n" +
			"per-game report; multiple games are aggregated per player, which requires\n" +
			"--player. Timing comes from --telemetry (JSON or CSV with ply and\n" +
			"elapsed_seconds) or from [%clk] annotations in the PGN.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], flags)
		},
	}
	cmd.Flags().StringVar(&flags.player, "player", "", "player whose moves are analyzed (default: white)")
	cmd.Flags().StringVar(&flags.telemetryPath, "telemetry", "", "timing feed file, .json or .csv")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "emit the report as JSON instead of text")
	return cmd
}

func runAnalyze(pgnPath string, flags analyzeFlags) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	_ = logger.SetLevelString("warn")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	raw, err := os.ReadFile(pgnPath)
	if err != nil {
		return fmt.Errorf("read pgn: %w", err)
	}
	games, err := pgn.ParseAll(string(raw))
	if err != nil {
		return fmt.Errorf("parse pgn: %w", err)
	}

	series, err := loadTelemetry(flags.telemetryPath)
	if err != nil {
		return err
	}
	if series != nil && len(games) > 1 {
		return fmt.Errorf("--telemetry applies to a single game; got %d games", len(games))
	}

	svc := app.New(app.FromConfig(cfg)...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer svc.Stop()

	if len(games) > 1 {
		if flags.player == "" {
			return fmt.Errorf("aggregating %d games requires --player", len(games))
		}
		jobs := make([]queue.Job, len(games))
		for i, g := range games {
			jobs[i] = queue.Job{Game: g}
		}
		rep, err := svc.AnalyzeOpponent(ctx, flags.player, jobs)
		if err != nil {
			return err
		}
		return emit(rep, flags.jsonOut)
	}

	rep, err := svc.Submit(ctx, queue.Job{
		Game:      games[0],
		Player:    flags.player,
		Telemetry: series,
	})
	if err != nil {
		return err
	}
	return emit(rep, flags.jsonOut)
}

func loadTelemetry(path string) (*telemetry.Series, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return telemetry.LoadCSV(f)
	}
	return telemetry.LoadJSON(f)
}

func emit(rep *model.DetectionReport, jsonOut bool) error {
	if jsonOut {
		return report.WriteJSON(os.Stdout, rep)
	}
	_, err := fmt.Fprintln(os.Stdout, report.RenderText(rep))
	return err
}
