package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/solatis/caseminder/internal/core/db"
	"github.com/solatis/caseminder/internal/store"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage automation rules",
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import rule definitions from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesImport,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesImportCmd)
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}

	rules, err := store.ParseRuleSet(raw, time.Now())
	if err != nil {
		return err
	}

	database, err := db.Open(dbURL)
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

	logger := newLogger(logLevel, logFormat)
	ruleStore := store.NewRuleStore(queries, logger)

	ctx := context.Background()
	for _, rule := range rules {
		if err := ruleStore.Insert(ctx, rule); err != nil {
			return err
		}
		fmt.Printf("imported rule %s (%s)\n", rule.Name, rule.ID)
	}

	fmt.Printf("%d rule(s) imported\n", len(rules))
	return nil
}
