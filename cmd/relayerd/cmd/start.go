package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tokenize-x/ibc-relayer/chain/mock"
	"github.com/tokenize-x/ibc-relayer/dispatcher"
	"github.com/tokenize-x/ibc-relayer/engine"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/runtime"
	"github.com/tokenize-x/ibc-relayer/snapshot"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start relaying packets between the configured chain pair",
		RunE:  runStart,
	}
	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.relayerd")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return errors.Wrap(err, "read config")
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cfg, err := loadRelayConfig(v)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srcDriver := mock.New(ibc.ChainId(cfg.Src.ChainID), logger)
	dstDriver := mock.New(ibc.ChainId(cfg.Dst.ChainID), logger)

	forwardSnapshots, err := newSnapshotManager(ctx, cfg.Snapshot)
	if err != nil {
		return errors.Wrap(err, "forward snapshot manager")
	}
	backwardSnapshots, err := newSnapshotManager(ctx, cfg.Snapshot)
	if err != nil {
		return errors.Wrap(err, "backward snapshot manager")
	}

	rt, rtCtx := runtime.New(ctx)

	srcDispatcher := dispatcher.New(srcDriver, logger,
		dispatcher.WithBatchCap(cfg.BatchCap),
		dispatcher.WithMaxAttempts(cfg.MaxAttempts))
	dstDispatcher := dispatcher.New(dstDriver, logger,
		dispatcher.WithBatchCap(cfg.BatchCap),
		dispatcher.WithMaxAttempts(cfg.MaxAttempts))

	rt.Spawn(rtCtx, runDispatcher(srcDispatcher))
	rt.Spawn(rtCtx, runDispatcher(dstDispatcher))

	forward := engine.New(engine.Config{
		SrcChain:      srcDriver,
		DstChain:      dstDriver,
		SrcClientId:   ibc.ClientId(cfg.Src.ClientID),
		DstClientId:   ibc.ClientId(cfg.Dst.ClientID),
		SrcDispatcher: srcDispatcher,
		DstDispatcher: dstDispatcher,
		Runtime:       rt,
		Logger:        logger,
		Snapshots:     forwardSnapshots,
	})
	backward := engine.New(engine.Config{
		SrcChain:      dstDriver,
		DstChain:      srcDriver,
		SrcClientId:   ibc.ClientId(cfg.Dst.ClientID),
		DstClientId:   ibc.ClientId(cfg.Src.ClientID),
		SrcDispatcher: dstDispatcher,
		DstDispatcher: srcDispatcher,
		Runtime:       rt,
		Logger:        logger,
		Snapshots:     backwardSnapshots,
	})

	if err := forward.Start(ctx); err != nil {
		return errors.Wrap(err, "start forward relay")
	}
	if err := backward.Start(ctx); err != nil {
		return errors.Wrap(err, "start backward relay")
	}

	logger.Info("relayerd started",
		"src_chain_id", cfg.Src.ChainID, "dst_chain_id", cfg.Dst.ChainID)

	err = rt.Wait()
	if err != nil && cmd.Context().Err() == nil && ctx.Err() != nil {
		// Shutdown was requested via signal; that's not a failure.
		return nil
	}
	return err
}

func runDispatcher(d *dispatcher.Dispatcher) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := d.Run(ctx); err != nil && ctx.Err() != nil {
			return nil
		}
		return nil
	}
}

func newSnapshotManager(ctx context.Context, cfg SnapshotConfig) (snapshot.Manager, error) {
	switch cfg.Backend {
	case "", "memory":
		return snapshot.NewMemoryManager(), nil
	case "postgres":
		return snapshot.NewPostgresManager(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

func newLogger(cfg RelayConfig) log.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	opts := []log.Option{log.LevelOption(level)}
	if cfg.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(os.Stderr, opts...)
}
