package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/user-send/internal/bus"
	"github.com/jmehdipour/user-send/internal/config"
	"github.com/jmehdipour/user-send/internal/logger"
	"github.com/jmehdipour/user-send/internal/metrics"
	"github.com/jmehdipour/user-send/internal/model"
	"github.com/jmehdipour/user-send/internal/service/usersend"
	"github.com/jmehdipour/user-send/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Publish the demo user list once and exit (default command)",
	RunE:  runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfg, err := config.Load(baseDir, cfgName)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2) logger
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, cmd.OutOrStdout(), logger.Log)
}

// run connects to the bus, publishes the demo users once and pushes metrics.
func run(ctx context.Context, cfg config.Config, out io.Writer, log *zap.Logger) error {
	newID, err := util.IDGenerator(cfg.Message.IDFormat)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	defer pushMetrics(cfg.Metrics, reg, log)

	if cfg.EventBusConnection == "" {
		log.Warn("EventBusConnection is empty, the bus connection will fail")
	}

	if cfg.Bus.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Bus.PublishTimeout)
		defer cancel()
	}

	// 3) bus connection
	b, err := bus.Connect(ctx, cfg.EventBusConnection, cfg.TopicName, busOptions(cfg.Bus, log))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := b.Close(closeCtx); err != nil {
			log.Warn("bus close", zap.Error(err))
		}
	}()

	// 4) publish
	svc := usersend.New(b, newID, out, log)
	if _, err := svc.Send(ctx, model.DemoUsers()); err != nil {
		return err
	}
	return nil
}

func busOptions(cfg config.BusConfig, log *zap.Logger) bus.Options {
	return bus.Options{
		ClientName:      cfg.ClientName,
		DialTimeout:     cfg.DialTimeout,
		Logger:          log,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

func pushMetrics(cfg config.MetricsConfig, g prometheus.Gatherer, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Job, g); err != nil {
		log.Warn("metrics push failed", zap.String("url", cfg.PushgatewayURL), zap.Error(err))
	}
}
