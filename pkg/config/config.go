// Package config loads magistr settings from an optional YAML file overlaid by
// MAGISTR_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/questions"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "MAGISTR_"

// Config is the full settings tree.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	WS        WSConfig        `yaml:"ws"`
	DB        DBConfig        `yaml:"db"`
	Questions QuestionsConfig `yaml:"questions"`
	Demo      DemoConfig      `yaml:"demo"`
}

// TelegramConfig configures the Bot API front end.
type TelegramConfig struct {
	// Token has no default; the bot commands refuse to start without it.
	Token       string        `yaml:"token"`
	BaseURL     string        `yaml:"base_url"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
	SendRate    float64       `yaml:"send_rate"`
}

// WSConfig configures the WebSocket chat.
type WSConfig struct {
	Addr           string   `yaml:"addr"`
	OriginPatterns []string `yaml:"origin_patterns"`
}

// DBConfig configures the session store.
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// QuestionsConfig configures the question source.
type QuestionsConfig struct {
	URLs               []string      `yaml:"urls"`
	UserAgent          string        `yaml:"user_agent"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	Delay              time.Duration `yaml:"delay"`
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerTimeout     time.Duration `yaml:"breaker_timeout"`
}

// DemoConfig configures batch runs.
type DemoConfig struct {
	Size      int `yaml:"size"`
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	f := questions.DefaultFetcherConfig()
	return &Config{
		Telegram: TelegramConfig{
			BaseURL:     "https://api.telegram.org",
			PollTimeout: 30 * time.Second,
			SendRate:    25,
		},
		WS: WSConfig{Addr: "127.0.0.1:8080"},
		DB: DBConfig{DSN: db.DefaultDSN},
		Questions: QuestionsConfig{
			URLs:               append([]string(nil), questions.DefaultURLs...),
			UserAgent:          f.UserAgent,
			Timeout:            f.Timeout,
			MaxRetries:         f.MaxRetries,
			Delay:              f.Delay,
			BreakerMaxFailures: f.BreakerMaxFailures,
			BreakerTimeout:     f.BreakerTimeout,
		},
		Demo: DemoConfig{Size: 50, Workers: 4, BatchSize: 25},
	}
}

// Load reads path (skipped when empty), applies the environment and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// FetcherConfig maps the question settings onto the fetcher's.
func (c *Config) FetcherConfig() questions.FetcherConfig {
	q := c.Questions
	return questions.FetcherConfig{
		UserAgent:          q.UserAgent,
		Timeout:            q.Timeout,
		MaxRetries:         q.MaxRetries,
		Delay:              q.Delay,
		BreakerMaxFailures: q.BreakerMaxFailures,
		BreakerTimeout:     q.BreakerTimeout,
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Demo.Size <= 0 {
		errs = append(errs, fmt.Errorf("demo.size must be positive, got %d", c.Demo.Size))
	}
	if c.Demo.Workers <= 0 {
		errs = append(errs, fmt.Errorf("demo.workers must be positive, got %d", c.Demo.Workers))
	}
	if c.Demo.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("demo.batch_size must be positive, got %d", c.Demo.BatchSize))
	}
	if c.Questions.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("questions.max_retries must not be negative, got %d", c.Questions.MaxRetries))
	}
	if c.Telegram.SendRate < 0 {
		errs = append(errs, fmt.Errorf("telegram.send_rate must not be negative, got %v", c.Telegram.SendRate))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn must be set"))
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}
	e.str("TELEGRAM_TOKEN", &c.Telegram.Token)
	e.str("TELEGRAM_BASE_URL", &c.Telegram.BaseURL)
	e.duration("TELEGRAM_POLL_TIMEOUT", &c.Telegram.PollTimeout)
	e.float("TELEGRAM_SEND_RATE", &c.Telegram.SendRate)
	e.str("WS_ADDR", &c.WS.Addr)
	e.list("WS_ORIGIN_PATTERNS", &c.WS.OriginPatterns)
	e.str("DB_DSN", &c.DB.DSN)
	e.list("QUESTION_URLS", &c.Questions.URLs)
	e.str("USER_AGENT", &c.Questions.UserAgent)
	e.duration("REQUEST_TIMEOUT", &c.Questions.Timeout)
	e.integer("MAX_RETRIES", &c.Questions.MaxRetries)
	e.duration("DELAY_BETWEEN_REQUESTS", &c.Questions.Delay)
	e.uint32("BREAKER_MAX_FAILURES", &c.Questions.BreakerMaxFailures)
	e.duration("BREAKER_TIMEOUT", &c.Questions.BreakerTimeout)
	e.integer("DEMO_SIZE", &c.Demo.Size)
	e.integer("WORKERS", &c.Demo.Workers)
	e.integer("BATCH_SIZE", &c.Demo.BatchSize)
	return errors.Join(e.errs...)
}

// envReader collects parse errors instead of stopping at the first one.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) uint32(key string, dst *uint32) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = uint32(n)
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

// duration accepts Go durations ("1.5s") and bare numbers of seconds.
func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}
