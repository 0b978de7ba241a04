// Command travelsia is the terminal front end of the travelsia travel
// planner: authenticate, search flights, and request AI-generated trip
// plans against the travelsia backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	travelsia "github.com/DevLuiggi/travelsia-go"
	"github.com/DevLuiggi/travelsia-go/internal/observability"
	"github.com/DevLuiggi/travelsia-go/pkg/config"
)

var (
	cfgFile     string
	verbose     bool
	instrument  bool
	metricsAddr string

	app        *travelsia.App
	cfg        *config.Config
	metricsSrv *observability.Server
)

func main() {
	root := &cobra.Command{
		Use:           "travelsia",
		Short:         "Plan trips: search flights and generate AI itineraries",
		Version:       travelsia.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("TRAVELSIA_CONFIG"), "config file (YAML)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&instrument, "instrument", false, "enable tracing and metrics")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address (implies --instrument)")

	root.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newProfileCmd(),
		newPrefsCmd(),
		newSearchCmd(),
		newHistoryCmd(),
		newDetailCmd(),
		newItineraryCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func bootstrap() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	logger, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		instrument = true
	}
	if instrument {
		if err := observability.InitFromEnv(); err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		if err := observability.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	app, err = travelsia.New(cfg, travelsia.Options{
		Logger:     logger,
		Instrument: instrument,
	})
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		metricsSrv = observability.NewServer(metricsAddr, nil, func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.APIBaseURL, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		})
		go func() {
			if err := metricsSrv.Start(); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}
	return nil
}

func teardown() {
	if app != nil {
		_ = app.Close()
	}
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}
	if instrument {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = observability.Shutdown(ctx)
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	if verbose {
		level = "debug"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// cmdContext bounds one CLI invocation by the transport timeout plus slack.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.Timeout()+5*time.Second)
}
