package cli

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"weakness-analysis-service/internal/app"
	"weakness-analysis-service/internal/config"
	"weakness-analysis-service/internal/domain"
	"weakness-analysis-service/internal/infra/memory"
	pgloader "weakness-analysis-service/internal/infra/postgres"
	transport "weakness-analysis-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the weakness analysis server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8000"
	}

	var results app.ResultRepository = memory.NewStaticResultLoader(sampleResults())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		results = pgloader.NewResultLoader(pool)
	} else {
		log.Printf("postgres url not configured, serving sample data")
	}

	service := app.NewWeaknessService(results, cfg.Analysis.TestTypes)
	handler := transport.NewHandler(service)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting weakness analysis service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleResults seeds the in-memory loader for running without Postgres.
func sampleResults() map[string][]domain.TestResult {
	return map[string][]domain.TestResult{
		"demo-user": {
			{
				UserID:   "demo-user",
				TestType: "GMAT Onboarding Test",
				QuestionDetails: json.RawMessage(`[
					{"subtopic": "Algebra", "section": "Quant", "isCorrect": true},
					{"subtopic": "Algebra", "section": "Quant", "isCorrect": false},
					{"subtopic": "Reading Comprehension", "section": "Verbal", "isCorrect": false}
				]`),
			},
		},
	}
}
