package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solatis/caseminder/internal/core/config"
	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/engine"
	"github.com/solatis/caseminder/internal/scheduler"
	"github.com/solatis/caseminder/internal/store"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Start the automation engine and scheduler",
	RunE:  runEngine,
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.Flags().String("refire", "", "time-based refire policy (always, once)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// CLI flags override config and environment.
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if cmd.Flags().Changed("refire") {
		refire, _ := cmd.Flags().GetString("refire")
		if !scheduler.ValidRefirePolicy(refire) {
			return fmt.Errorf("invalid refire policy: %s (expected always or once)", refire)
		}
		cfg.Refire = refire
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	cases := store.NewCaseStore(queries)
	ruleStore := store.NewRuleStore(queries, logger)
	history := store.NewHistoryStore(queries)
	notifications := store.NewNotificationStore(queries)
	timeline := store.NewTimelineStore(queries)

	eng := engine.New(ruleStore, cases, notifications, timeline, history, logger,
		engine.WithActionTimeout(cfg.ActionTimeout))

	sched := scheduler.New(eng, ruleStore, cases, history, notifications, logger, scheduler.Config{
		Interval:        cfg.TickInterval,
		Grace:           cfg.TickGrace,
		RetentionWindow: cfg.RetentionWindow,
		Refire:          scheduler.RefirePolicy(cfg.Refire),
	})

	logger.Info().
		Str("version", Version).
		Str("database", cfg.DatabaseURL).
		Msg("starting caseminder engine")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- sched.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		<-errChan
		return nil
	}
}
