package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/skyfreight/loadmaster/core"
	"github.com/skyfreight/loadmaster/internal/logging"
	"github.com/skyfreight/loadmaster/internal/observability"
	"github.com/skyfreight/loadmaster/internal/profile"
)

func main() {
	profilePath := flag.String("profile", "", "path to a TOML aircraft profile; defaults apply when empty")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	serve := flag.Bool("serve", false, "keep serving /metrics after the walkthrough until interrupted")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	cfg := core.DefaultConfig()
	profileName := "default"
	if *profilePath != "" {
		p, err := profile.Load(*profilePath)
		if err != nil {
			log.Error(ctx, "failed to load aircraft profile", logging.String("path", *profilePath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		cfg = p.Config
		profileName = p.Name
	}

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	engine, err := core.NewEngine(cfg,
		core.WithEngineLogger(log),
		core.WithEngineMetrics(collector),
	)
	if err != nil {
		log.Error(ctx, "failed to build engine", logging.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(ctx, "engine ready",
		logging.String("profile", profileName),
		logging.Int("positions", len(engine.Inventory().Snapshot())),
	)

	runWalkthrough(ctx, engine, log)

	if *serve {
		stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		<-stopCtx.Done()
		log.Info(ctx, "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// runWalkthrough exercises the full assessment path end to end: normal
// acceptance, an oversized rejection, a heavy item with its balance impact,
// and a closing capacity summary.
func runWalkthrough(ctx context.Context, engine *core.Engine, log logging.Logger) {
	lower := core.LowerDeck

	shipments := []core.CargoRequest{
		{
			Cargo: core.Cargo{
				ID:        "CARGO-AVIONICS-001",
				Dims:      core.Dimensions{Length: 1.5, Width: 1.2, Height: 0.8},
				WeightKg:  500,
				Stackable: true,
				Fragile:   true,
				Type:      core.CargoElectronics,
			},
			PreferredDeck: &lower,
			Priority:      core.PriorityHigh,
			RequestedBy:   "walkthrough",
		},
		{
			Cargo: core.Cargo{
				ID:        "CARGO-TEXTILE-002",
				Dims:      core.Dimensions{Length: 1.2, Width: 1.0, Height: 1.0},
				WeightKg:  300,
				Stackable: true,
				Tiltable:  true,
				Type:      core.CargoTextiles,
			},
			Priority:    core.PriorityNormal,
			RequestedBy: "walkthrough",
		},
		{
			Cargo: core.Cargo{
				ID:       "CARGO-PRESS-003",
				Dims:     core.Dimensions{Length: 2.0, Width: 1.8, Height: 1.5},
				WeightKg: 2400,
				Type:     core.CargoMachinery,
			},
			Priority:    core.PriorityUrgent,
			RequestedBy: "walkthrough",
		},
	}

	for _, req := range shipments {
		result := engine.AssessCargoPlacement(ctx, req)
		if !result.AssessmentSuccessful {
			log.Warn(ctx, "placement rejected",
				logging.String("cargo_id", req.Cargo.ID),
				logging.String("reason", result.ErrorMessage))
			continue
		}

		best := result.RecommendedPositions[0]
		fmt.Printf("%s -> %s (score %.2f)\n", req.Cargo.ID, best.Position.ID, best.FitScore)
		for _, line := range best.Reasoning {
			fmt.Printf("    %s\n", line)
		}
		if err := engine.Occupy(ctx, best.Position.ID, req.Cargo); err != nil {
			log.Warn(ctx, "occupy failed",
				logging.String("cargo_id", req.Cargo.ID),
				logging.String("error", err.Error()))
		}
	}

	// Oversized item: wider than any position envelope.
	oversized := core.CargoRequest{
		Cargo: core.Cargo{
			ID:       "CARGO-TURBINE-004",
			Dims:     core.Dimensions{Length: 3.0, Width: 2.5, Height: 2.0},
			WeightKg: 2800,
			Type:     core.CargoMachinery,
		},
		Priority:    core.PriorityNormal,
		RequestedBy: "walkthrough",
	}
	if result := engine.AssessCargoPlacement(ctx, oversized); !result.AssessmentSuccessful {
		fmt.Printf("%s rejected: %s\n", oversized.Cargo.ID, result.ErrorMessage)
	}

	status := engine.BalanceStatus()
	metrics := engine.UtilizationMetrics()
	summary := engine.AlertSummary()
	forecast := engine.Monitor().CapacityForecast(24)

	fmt.Println("--- capacity summary ---")
	fmt.Printf("load: %.0f kg, CG %.2f m (%s)\n", status.WeightKg, status.CGM, status.State)
	fmt.Printf("positions in use: %.1f%%, weight: %.1f%%\n",
		metrics.TotalUtilizationPct, metrics.WeightUtilizationPct)
	fmt.Printf("active alerts: %d (critical %d, high %d)\n",
		summary.TotalActiveAlerts, summary.Critical, summary.High)
	fmt.Printf("24h forecast: %.1f%% (%s)\n", forecast.ForecastUtilizationPct, forecast.Recommendation)
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
