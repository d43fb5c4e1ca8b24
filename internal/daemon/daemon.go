package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honorhabits/honor/internal/api"
	"github.com/honorhabits/honor/internal/app/points"
	"github.com/honorhabits/honor/internal/app/schedule"
	"github.com/honorhabits/honor/internal/app/scoring"
	"github.com/honorhabits/honor/internal/domain"
	_ "github.com/honorhabits/honor/internal/infra/metrics" // Register Prometheus metrics
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

// Daemon is the honor runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB
	Scoring   *scoring.Service
	Points    *points.Service
	Scheduler *schedule.Scheduler
	Server    *api.Server
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(honorHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rules := domain.DefaultRules()
	if cfg.Scoring.DayCompletionRatio > 0 {
		rules.DayCompletionRatio = cfg.Scoring.DayCompletionRatio
	}
	if cfg.Scoring.MissPenaltyCap > 0 {
		rules.MissPenaltyCap = cfg.Scoring.MissPenaltyCap
	}
	if cfg.Schedule.ActiveWindowDays > 0 {
		rules.ActiveWindowDays = cfg.Schedule.ActiveWindowDays
	}

	scoringSvc := scoring.NewService(db, rules)
	pointsSvc := points.NewService(db)

	schedCfg := schedule.DefaultConfig()
	if cfg.Schedule.CloseDelayMin > 0 {
		schedCfg.CloseDelay = time.Duration(cfg.Schedule.CloseDelayMin) * time.Minute
	}
	if cfg.Schedule.DailyRefreshHour > 0 {
		schedCfg.DailyRefreshHour = cfg.Schedule.DailyRefreshHour
	}
	schedCfg.ActiveWindowDays = rules.ActiveWindowDays
	scheduler := schedule.New(schedCfg, scoringSvc, db)

	srv := api.NewServer(db, scoringSvc, pointsSvc, scheduler)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:    cfg,
		DB:        db,
		Scoring:   scoringSvc,
		Points:    pointsSvc,
		Scheduler: scheduler,
		Server:    srv,
	}, nil
}

// Serve starts the scheduler and HTTP server, blocking until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.Config.Schedule.Enabled {
		if err := d.Scheduler.Initialize(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Batch recalculation can take a while
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if d.Config.Schedule.Enabled {
			if err := d.Scheduler.Stop(); err != nil {
				log.Printf("[daemon] scheduler stop: %v", err)
			}
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("honor serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Scheduler != nil && d.Scheduler.GetStatus().Running {
		_ = d.Scheduler.Stop()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
