package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/config"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/db"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/httpapi"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

const maxBodyBytes = 1 << 20

func healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func main() {
	// -- Logger --
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}

func newRootCommand(logger *log.Logger) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), logger)
		},
	}

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Connect to the database, create the schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// -- Configs preload --
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			database, err := connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDatabase(database, logger)

			logger.Printf("schema is up to date")
			return nil
		},
	}

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "MedCore clinic management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.AddCommand(serveCmd, bootstrapCmd)
	return rootCmd
}

// connect waits for the database and ensures the schema.
func connect(ctx context.Context, cfg config.Config, logger *log.Logger) (*gorm.DB, error) {
	// -- Connect to DB --
	database, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Bootstrap(ctx, database); err != nil {
		closeDatabase(database, logger)
		return nil, fmt.Errorf("schema bootstrap error: %w", err)
	}
	return database, nil
}

func serve(parent context.Context, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -- Configs preload --
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	database, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(database, logger)

	// -- Metrics --
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpapi.NewMetrics(registry)

	// -- Services --
	recorder := audit.NewRecorder(database, logger, audit.WithFailureCounter(metrics.AuditFailures))
	handler := httpapi.NewHandler(httpapi.Services{
		Roles:        service.NewRoleService(database, recorder, logger),
		Employees:    service.NewEmployeeService(database, recorder, logger),
		Patients:     service.NewPatientService(database, recorder, logger),
		Appointments: service.NewAppointmentService(database, recorder, logger),
		Counts:       service.NewCountService(database),
		Audit:        recorder,
	}, logger)

	// -- Router --
	mux := http.NewServeMux()
	for _, resource := range httpapi.Resources {
		mux.Handle("/"+resource, handler)
		mux.Handle("/"+resource+"/", handler)
	}
	mux.HandleFunc("/healthcheck", healthcheck)
	mux.Handle("/metrics", metrics.Handler())

	limiter := httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies)
	go sweepLimiter(ctx, limiter)

	var root http.Handler = mux
	root = httpapi.MaxBodyBytes(root, maxBodyBytes)
	root = limiter.Middleware(root)
	root = httpapi.CORS(cfg.CORSOrigins, root)
	root = metrics.Instrument(root)
	root = httpapi.Logging(logger, root)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// -- Startup --
	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting server, listening to port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// -- Shutdown --
	logger.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func sweepLimiter(ctx context.Context, limiter *httpapi.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}

func closeDatabase(database *gorm.DB, logger *log.Logger) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Printf("close database: %v", err)
	}
}
