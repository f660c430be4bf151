package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"titanic/db"
	qhttp "titanic/http"
	"titanic/ml"
	"titanic/monitoring"
	"titanic/predict"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Load the model artifact and serve the prediction API. The process refuses
to start without a usable model.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP port")
	cmd.Flags().Bool("watch", false, "reload the model when the artifact changes")
	cmd.Flags().String("db", "", "prediction history database path")

	_ = v.BindPFlag("http.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("model.watch", cmd.Flags().Lookup("watch"))
	_ = v.BindPFlag("database.path", cmd.Flags().Lookup("db"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLogger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closeLogger()

	// 1. 加载模型
	registry, err := ml.NewRegistry(cfg.Model.Type, cfg.Model.Path, logger)
	if err != nil {
		logger.Error("prediction service unavailable",
			zap.String("model_path", cfg.Model.Path),
			zap.Error(err))
		return fmt.Errorf("model %s could not be loaded, train and export it before serving: %w", cfg.Model.Path, err)
	}

	// 2. 预测历史
	var store *db.Store
	if cfg.Database.Enabled {
		store, err = db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("database initialized", zap.String("path", cfg.Database.Path))
	}

	// 3. 实时推送与指标
	metrics := monitoring.NewMetricsCollector()
	hub := monitoring.NewWebSocketHub(logger)
	go hub.Run(ctx)

	registry.OnReload(func(m *ml.Model) {
		hub.Publish(monitoring.ModelEvent, m.Info())
	})
	if cfg.Model.Watch {
		go func() {
			if err := registry.Watch(ctx); err != nil {
				logger.Error("model watcher stopped", zap.Error(err))
			}
		}()
	}

	opts := predict.Options{
		Strict:    cfg.Validation.Strict,
		CacheSize: cfg.Cache.Size,
		Publisher: hub,
		Metrics:   metrics,
		Logger:    logger,
	}
	handlers := &qhttp.Handlers{Metrics: metrics, Feed: hub, Logger: logger}
	if store != nil {
		opts.Recorder = store
		handlers.History = store
	}
	service, err := predict.NewService(registry, opts)
	if err != nil {
		return err
	}
	handlers.Predictor = service

	// 4. 启动HTTP服务器
	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	serverConfig.Timeout = cfg.Http.Timeout
	if len(cfg.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = cfg.Http.AllowedOrigins
	}
	server := qhttp.NewServer(serverConfig, handlers, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. 优雅关闭
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
	return nil
}
