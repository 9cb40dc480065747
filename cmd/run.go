package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizarena/internal/app"
	"github.com/abhisek/quizarena/internal/config"
	"github.com/abhisek/quizarena/internal/llm"
	"github.com/abhisek/quizarena/internal/publish"
	"github.com/abhisek/quizarena/internal/rewards"
	"github.com/abhisek/quizarena/internal/screen"
	"github.com/abhisek/quizarena/internal/screens/arena"
	"github.com/abhisek/quizarena/internal/session"
	"github.com/abhisek/quizarena/internal/store"
	"github.com/abhisek/quizarena/internal/supply"
	"github.com/abhisek/quizarena/internal/ui/layout"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, f playFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.subject != "" {
		cfg.Player.Subject = f.subject
	}
	if f.topic != "" {
		cfg.Player.Topic = f.topic
	}
	if f.subscribed != nil {
		cfg.Player.Subscribed = *f.subscribed
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// The terminal belongs to the TUI, so diagnostics go to a file.
	logger, closeLog := openLog(filepath.Join(filepath.Dir(dbPath), "quizarena.log"))
	defer closeLog()

	presets := make([]session.Config, 0, 2)
	for _, m := range []session.Mode{session.ModeBattle, session.ModeSolo} {
		sc, err := cfg.Session(m)
		if err != nil {
			return fmt.Errorf("%s settings: %w", m, err)
		}
		presets = append(presets, sc)
	}

	wallet := rewards.NewService(st.RewardRepo())
	recorder := session.MultiRecorder{st.SessionRepo(), wallet}
	if cfg.AMQP.URL != "" {
		pub, err := publish.Dial(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Result publishing disabled:", err)
		} else {
			defer pub.Close()
			recorder = append(recorder, pub)
		}
	}

	minBatch := 0
	for _, sc := range presets {
		minBatch = max(minBatch, sc.MinQuestions)
	}
	sources, err := buildSources(ctx, cfg, st, minBatch, logger)
	if err != nil {
		return err
	}

	launch := func(sc session.Config) (screen.Screen, error) {
		var src session.Supply
		if len(sources) > 0 {
			src = supply.Chain{Supplies: sources, Min: sc.MinQuestions}
		}
		s, err := arena.New(arena.Deps{
			Config:   sc,
			Supply:   src,
			Recorder: recorder,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	opts := app.Options{
		Presets: presets,
		Launch:  launch,
		Wallet: func(ctx context.Context) (layout.Wallet, error) {
			b, err := wallet.Balance(ctx)
			if err != nil {
				return layout.Wallet{}, err
			}
			return layout.Wallet{Coins: b.Coins, Badges: b.Badges}, nil
		},
	}

	if f.mode != "" {
		mode, err := session.ParseMode(f.mode)
		if err != nil {
			return err
		}
		sc, err := cfg.Session(mode)
		if err != nil {
			return fmt.Errorf("%s settings: %w", mode, err)
		}
		if opts.AutoStart, err = launch(sc); err != nil {
			return err
		}
	}

	return app.Run(ctx, opts)
}

// buildSources returns the question supplies in the order they are tried:
// the local bank first, then the language model behind the Redis cache.
// The built-in set stays the engine's fallback.
// Batches shorter than minBatch are not cached.
func buildSources(ctx context.Context, cfg config.Config, st *store.Store, minBatch int, logger *log.Logger) ([]session.Supply, error) {
	var sources []session.Supply

	if cfg.Bank.Path != "" {
		bank, err := supply.LoadBank(cfg.Bank.Path)
		if err != nil {
			return nil, fmt.Errorf("load question bank: %w", err)
		}
		sources = append(sources, bank)
	}

	if !cfg.LLM.Enabled {
		return sources, nil
	}
	provider, err := newProvider(ctx, cfg, st.EventRepo(), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Question generation will be unavailable.")
		return sources, nil
	}

	var gen session.Supply = &supply.Generator{Provider: provider, Logger: logger}
	if cfg.Redis.Addr != "" {
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cached := supply.NewCached(client, gen, ttl, logger)
		cached.Min = minBatch
		gen = cached
	}
	return append(sources, gen), nil
}

// newProvider prefers the QUIZARENA_* variables and falls back to the
// vendors' own key variables when no provider was pinned in the config.
func newProvider(ctx context.Context, cfg config.Config, events store.EventRepo, logger *log.Logger) (llm.Provider, error) {
	lc := llm.ConfigFromEnv()
	if cfg.LLM.Provider != "" {
		lc.Provider = cfg.LLM.Provider
	} else if lc.Validate() != nil {
		if found, ok := llm.DiscoverConfig(); ok {
			lc = found
		}
	}
	lc.SetModel(cfg.LLM.Model)
	return llm.New(ctx, lc, events, logger)
}

func openLog(path string) (*log.Logger, func()) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(f, "quizarena: ", log.LstdFlags), func() { f.Close() }
}
