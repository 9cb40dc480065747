package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizarena/internal/config"
	"github.com/abhisek/quizarena/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizarena",
	Short: "Timed quiz battles in the terminal",
	Long:  "quizarena runs timed quiz sessions: a short battle against a simulated rival, or a solo run against the clock.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, playFlags{})
	},
	SilenceUsage: true,
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZARENA_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (overrides QUIZARENA_CONFIG env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config when given, otherwise the default file if it
// exists. Environment overrides apply either way.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		return config.LoadDefault()
	}
	cfg, err := config.Load(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found", p)
		}
		return cfg, err
	}
	return cfg, cfg.ApplyEnv(os.LookupEnv)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file and QUIZARENA_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := cfg.Database.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore loads the config and opens the database it points at.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, nil
}
