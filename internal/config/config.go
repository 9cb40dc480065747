// Package config loads the quizarena settings file and environment
// overrides, and turns them into session configs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizarena/internal/session"
)

// Config mirrors config.yaml. Every field is optional.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Player struct {
		Mode       string `yaml:"mode"`
		Subject    string `yaml:"subject"`
		Topic      string `yaml:"topic"`
		Subscribed bool   `yaml:"subscribed"`
	} `yaml:"player"`

	Battle Preset `yaml:"battle"`
	Solo   Preset `yaml:"solo"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`

	AMQP struct {
		URL   string `yaml:"url"`
		Queue string `yaml:"queue"`
	} `yaml:"amqp"`

	Bank struct {
		Path string `yaml:"path"`
	} `yaml:"bank"`

	LLM struct {
		Enabled  bool   `yaml:"enabled"`
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`
}

// Preset overrides parts of a mode's built-in session config. Nil and
// empty fields keep the built-in value. Durations use time.ParseDuration
// syntax ("15s", "5m").
type Preset struct {
	QuestionCount          *int     `yaml:"question_count"`
	MinQuestions           *int     `yaml:"min_questions"`
	QuestionTime           string   `yaml:"question_time"`
	SessionTime            string   `yaml:"session_time"`
	Countdown              string   `yaml:"countdown"`
	ResultDelay            string   `yaml:"result_delay"`
	CorrectPoints          *int     `yaml:"correct_points"`
	IncorrectPoints        *int     `yaml:"incorrect_points"`
	SubscriptionMultiplier *int     `yaml:"subscription_multiplier"`
	OpponentAnswered       *float64 `yaml:"opponent_answered_probability"`
	OpponentTimedOut       *float64 `yaml:"opponent_timed_out_probability"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	var c Config
	c.Player.Mode = string(session.ModeBattle)
	c.Player.Subject = "general"
	c.Redis.TTL = "1h"
	return c
}

// Load reads path on top of Default. A missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads the file at DefaultPath, if one exists, and applies
// the environment.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.ApplyEnv(os.LookupEnv)
}

// DefaultPath resolves the config file path:
// 1. QUIZARENA_CONFIG
// 2. $XDG_CONFIG_HOME/quizarena/config.yaml
// 3. ~/.config/quizarena/config.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv("QUIZARENA_CONFIG"); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "quizarena", "config.yaml"), nil
}

// ApplyEnv overrides file settings with QUIZARENA_DB, QUIZARENA_SUBSCRIBED,
// QUIZARENA_REDIS_ADDR, QUIZARENA_AMQP_URL and QUIZARENA_BANK.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("QUIZARENA_DB"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("QUIZARENA_SUBSCRIBED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUIZARENA_SUBSCRIBED: %w", err)
		}
		c.Player.Subscribed = b
	}
	if v, ok := lookup("QUIZARENA_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("QUIZARENA_AMQP_URL"); ok && v != "" {
		c.AMQP.URL = v
	}
	if v, ok := lookup("QUIZARENA_BANK"); ok && v != "" {
		c.Bank.Path = v
	}
	return nil
}

// RedisTTL returns the cache TTL, defaulting to an hour.
func (c Config) RedisTTL() (time.Duration, error) {
	return duration("redis.ttl", c.Redis.TTL, time.Hour)
}

// Session builds the validated session config for mode, applying the
// mode's preset and the player settings.
func (c Config) Session(mode session.Mode) (session.Config, error) {
	sc, err := session.ConfigFor(mode)
	if err != nil {
		return session.Config{}, err
	}
	preset := c.Battle
	if mode == session.ModeSolo {
		preset = c.Solo
	}
	if err := preset.apply(&sc, string(mode)); err != nil {
		return session.Config{}, err
	}

	if c.Player.Subject != "" {
		sc.Subject = c.Player.Subject
	}
	sc.Topic = c.Player.Topic
	sc.Subscribed = c.Player.Subscribed

	if err := sc.Validate(); err != nil {
		return session.Config{}, err
	}
	return sc, nil
}

func (p Preset) apply(sc *session.Config, section string) error {
	setInt(&sc.QuestionCount, p.QuestionCount)
	setInt(&sc.MinQuestions, p.MinQuestions)
	setInt(&sc.Scoring.Correct, p.CorrectPoints)
	setInt(&sc.Scoring.Incorrect, p.IncorrectPoints)
	setInt(&sc.Scoring.SubscriptionMultiplier, p.SubscriptionMultiplier)
	if p.OpponentAnswered != nil {
		sc.OpponentAnsweredProbability = *p.OpponentAnswered
	}
	if p.OpponentTimedOut != nil {
		sc.OpponentTimedOutProbability = *p.OpponentTimedOut
	}

	var err error
	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"question_time", p.QuestionTime, &sc.QuestionTimeLimit},
		{"session_time", p.SessionTime, &sc.SessionTimeLimit},
		{"countdown", p.Countdown, &sc.Countdown},
		{"result_delay", p.ResultDelay, &sc.ResultDelay},
	} {
		if *d.dst, err = duration(section+"."+d.name, d.raw, *d.dst); err != nil {
			return err
		}
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func duration(name, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
