package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/aq-dashboard/internal/config"
	"github.com/sells-group/aq-dashboard/internal/dashboard"
	"github.com/sells-group/aq-dashboard/internal/dataset"
	"github.com/sells-group/aq-dashboard/internal/observability"
	"github.com/sells-group/aq-dashboard/internal/server"
)

const janitorInterval = time.Minute

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		metrics := observability.NewMetrics()
		opts := server.OptionsFromConfig(cfg.Server)
		opts.Metrics = metrics
		srv := server.New(opts)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
			defer cancel()
			return srv.Shutdown(sctx)
		})

		g.Go(func() error {
			ds, err := loadAndObserve(gctx, cfg, metrics)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				zap.L().Error("dataset load failed, exiting", zap.String("source", cfg.Dataset.URL), zap.Error(err))
				return eris.Wrap(err, "serve: dataset unavailable")
			}

			store := dashboard.NewFigureStore(dashboard.StoreOptions{
				MaxEntries: cfg.Dashboard.FigureCacheSize,
				TTL:        cfg.Dashboard.FigureTTL(),
				Metrics:    metrics,
			})
			srv.SetDashboard(dashboard.New(ds, dashboard.Options{
				DefaultPollutant: cfg.Dashboard.DefaultPollutant,
				Store:            store,
				Metrics:          metrics,
			}))
			zap.L().Info("dashboard ready", zap.Int("port", cfg.Server.Port))

			store.RunJanitor(gctx, janitorInterval)
			return nil
		})

		return g.Wait()
	},
}

// loadAndObserve loads the dataset and records its size and load time.
func loadAndObserve(ctx context.Context, c *config.Config, m *observability.Metrics) (*dataset.Dataset, error) {
	start := time.Now()
	ds, err := loadDataset(ctx, c)
	m.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.DatasetReady.Set(0)
		return nil, err
	}
	m.DatasetRecords.Set(float64(ds.Len()))
	m.DatasetSkippedRows.Set(float64(ds.Skipped()))
	m.DatasetReady.Set(1)
	return ds, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().Bool("debug", false, "debug logging to the console")
	rootCmd.AddCommand(serveCmd)
}
