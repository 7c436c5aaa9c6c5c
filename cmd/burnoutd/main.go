package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"burnoutd/adapters/email"
	"burnoutd/adapters/excel"
	"burnoutd/adapters/postgres"
	"burnoutd/adapters/regressor"
	"burnoutd/app"
	"burnoutd/internal/agent"
	"burnoutd/internal/api"
	"burnoutd/internal/config"
	"burnoutd/internal/features"
	"burnoutd/internal/learning"
	"burnoutd/internal/registry"
	"burnoutd/models"
	"burnoutd/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "burnoutd",
		Short: "Burnout-risk analysis agent and serving API",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newTrainCmd(),
		newImportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads env, config, logger and the database connection shared by
// every command.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *sqlx.DB, error) {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return cfg, logger, db, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// application is the fully wired object graph.
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	queue    *app.QueueService
	registry *registry.ModelRegistry
	watcher  *registry.ModelWatcher
	worker   *agent.Worker
	learner  *learning.Worker
	server   *api.Server
	versions ports.ModelVersionRepository
}

func buildApplication(cfg *config.Config, logger *zap.Logger, db *sqlx.DB) (*application, error) {
	logs := postgres.NewDailyLogRepository(db)
	predictions := postgres.NewPredictionRepository(db)
	employees := postgres.NewEmployeeRepository(db)
	settings := postgres.NewSettingsRepository(db)
	versions := postgres.NewModelVersionRepository(db)

	factory := ports.RegressorFactory(regressor.NewRidgeRegressor)
	reg := registry.NewModelRegistry(factory, versions, cfg.Model.ModelPath,
		cfg.Model.ReloadMinInterval, logger)

	averages := features.NewAverageProvider(logs, employees, logger)
	preparer := features.NewFeaturePreparer(logs, employees, averages,
		rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	estimator := features.NewConfidenceEstimator()

	notifier := email.NewNotifier(cfg.SMTP, logger)
	policy := agent.NewPolicyEngine(cfg.Agent.ConfidenceThreshold, predictions, logs)
	alerts := agent.NewAlertManager(notifier, employees, policy, logger)

	queue := app.NewQueueService(logs, employees, logger)
	predictionSvc := app.NewPredictionService(preparer, estimator, reg, predictions, settings, logger)
	reviews := app.NewReviewService(predictions, logs, employees, queue, alerts, logger)

	runner := agent.NewAgentRunner(queue, predictionSvc, employees, notifier, policy, alerts, logger)
	worker := agent.NewWorker(runner, cfg.Agent.TickInterval, cfg.Agent.BatchSize, logger)

	formatter := learning.NewDatasetFormatter(predictions, logs, cfg.Model.DataDir, logger)
	learner := learning.NewWorker(learning.NewScheduler(), formatter, factory, reg,
		versions, settings, cfg.Model.ModelPath, cfg.Agent.LearningInterval, logger)

	var watcher *registry.ModelWatcher
	if cfg.Model.AutoReload {
		w, err := registry.NewModelWatcher(reg, cfg.Model.ModelPath, logger)
		if err != nil {
			return nil, fmt.Errorf("create model watcher: %w", err)
		}
		watcher = w
	}

	handlers := api.NewHandlers(queue, reviews, reg, versions, learner, worker, logger)
	server := api.NewServer(cfg.Server, handlers, logger)

	return &application{
		cfg:      cfg,
		logger:   logger,
		queue:    queue,
		registry: reg,
		watcher:  watcher,
		worker:   worker,
		learner:  learner,
		server:   server,
		versions: versions,
	}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, agent worker and learning worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			defer logger.Sync()

			application, err := buildApplication(cfg, logger, db)
			if err != nil {
				return err
			}

			if err := application.registry.LoadFromFile(ctx); err != nil {
				logger.Warn("could not load persisted model, serving starts without one", zap.Error(err))
			}

			application.worker.Start(ctx)
			application.learner.Start(ctx)
			if application.watcher != nil {
				if err := application.watcher.Start(ctx); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(application.server.ListenAndServe)
			g.Go(func() error {
				<-gctx.Done()
				application.worker.Stop()
				application.learner.Stop()
				if application.watcher != nil {
					application.watcher.Stop()
				}
				return application.server.Shutdown(15 * time.Second)
			})

			return g.Wait()
		},
	}
}

func newTrainCmd() *cobra.Command {
	var samplesFile string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the initial model from a historical CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			defer logger.Sync()

			samples, err := learning.ReadSamplesCSV(samplesFile)
			if err != nil {
				return err
			}
			logger.Info("training samples loaded",
				zap.String("file", samplesFile), zap.Int("samples", len(samples)))

			versions := postgres.NewModelVersionRepository(db)
			reg := registry.NewModelRegistry(regressor.NewRidgeRegressor, versions,
				cfg.Model.ModelPath, cfg.Model.ReloadMinInterval, logger)

			candidate := regressor.NewRidgeRegressor()
			metrics, err := candidate.Train(ctx, samples, cfg.Model.ModelPath)
			if err != nil {
				return err
			}

			label, err := reg.NextVersionLabel(ctx)
			if err != nil {
				return err
			}
			if _, err := versions.Add(ctx, &models.ModelVersion{
				VersionLabel:  label,
				TrainingMode:  models.ModeInitial,
				DatasetSize:   len(samples),
				Accuracy:      metrics.TestR2,
				ModelFilePath: cfg.Model.ModelPath,
			}); err != nil {
				return err
			}

			fmt.Printf("Trained %s\n  samples:  %d train / %d test\n  train R²: %.4f\n  test R²:  %.4f\n  MSE:      %.4f\n  MAE:      %.4f\n  model:    %s\n",
				label, metrics.TrainSamples, metrics.TestSamples,
				metrics.TrainR2, metrics.TestR2, metrics.MSE, metrics.MAE,
				cfg.Model.ModelPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&samplesFile, "file", "f", "", "CSV file of labelled training samples")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Bulk-import daily logs from an .xlsx or .csv file into the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, logger, db, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			defer logger.Sync()

			logs := postgres.NewDailyLogRepository(db)
			employees := postgres.NewEmployeeRepository(db)
			queue := app.NewQueueService(logs, employees, logger)

			result, err := excel.NewImporter(queue, logger).Import(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d logs, skipped %d\n", result.Imported, result.Skipped)
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}
}
