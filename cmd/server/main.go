package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoref-server/internal/agent"
	"autoref-server/internal/config"
	"autoref-server/internal/domain"
	"autoref-server/internal/engine"
	"autoref-server/internal/infrastructure/storage"
	"autoref-server/internal/network"
	"autoref-server/internal/params"
	"autoref-server/internal/server"
	"autoref-server/internal/version"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	logger.Init()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "autoref-server",
		Short:         "Automatic referee for robot soccer simulation",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newReplayCmd(), newParamsCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var paramsPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the referee with monitor and physics websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if paramsPath != "" {
				cfg.Params = paramsPath
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML file with match parameters (overrides AUTOREF_PARAMS)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	logger.Log.Info(version.String())

	ps, err := params.LoadFile(cfg.Params)
	if err != nil {
		return fmt.Errorf("load match parameters: %w", err)
	}

	hub := network.NewBroadcaster(cfg.QueueSize)
	defer hub.Close()
	ref := engine.NewReferee(ps, hub, cfg.QueueSize)

	// Журнал матча живет, пока открыт хаб
	matchLog := agent.NewMatchLog(hub)
	go matchLog.Run()

	if cfg.Record {
		rec, err := openRecording(cfg.ReplayDir, ref, ps)
		if err != nil {
			return err
		}
		ref.AttachRecorder(rec)
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ref, hub, cfg.Port, cfg.CommandRate)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := ref.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(srv.Run)
	g.Go(func() error {
		// Матч окончен или процесс останавливают - гасим HTTP
		select {
		case <-gctx.Done():
		case <-ref.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	m := ref.State()
	summary := matchLog.Summary()
	logger.Log.WithFields(logrus.Fields{
		"match_id":   m.ID,
		"phase":      m.Phase.String(),
		"score":      fmt.Sprintf("%d:%d", m.Score.Left, m.Score.Right),
		"decisions":  summary.Decisions,
		"violations": summary.Violations,
	}).Info("Server stopped")
	return err
}

func openRecording(dir string, ref *engine.Referee, ps params.ParameterSet) (*storage.Recorder, error) {
	svc, err := storage.NewReplayService(dir)
	if err != nil {
		return nil, err
	}
	paramsYAML, err := params.Marshal(ps)
	if err != nil {
		return nil, err
	}
	return svc.Create(&domain.ReplaySession{
		MatchID:   ref.ID,
		Seed:      ref.Seed,
		Timestamp: time.Now().Unix(),
		Params:    paramsYAML,
	})
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Re-simulate a recorded match and print its decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := storage.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load recording: %w", err)
			}

			ps := params.Defaults()
			if len(session.Params) > 0 {
				if ps, err = params.Load(session.Params); err != nil {
					return fmt.Errorf("recorded parameters: %w", err)
				}
			}

			logger.Log.WithFields(logrus.Fields{
				"match_id": session.MatchID,
				"seed":     session.Seed,
				"frames":   len(session.Frames),
			}).Info("Replaying match")

			final, results, err := engine.Simulate(session, ps, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				for _, d := range res.Decisions {
					fmt.Fprintf(out, "%6d %8.2f %-16s %-5s (%.2f, %.2f)\n",
						d.Tick, d.Time, d.Kind, d.Team, d.Pos.X, d.Pos.Y)
				}
			}
			fmt.Fprintf(out, "final: %s %d:%d\n", final.Phase, final.Score.Left, final.Score.Right)
			return nil
		},
	}
}

func newParamsCmd() *cobra.Command {
	var paramsPath string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the effective match parameters as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := params.LoadFile(paramsPath)
			if err != nil {
				return err
			}
			data, err := params.Marshal(ps)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML file with match parameters")
	return cmd
}
