package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/japaniel/magistr/pkg/bot"
	"github.com/japaniel/magistr/pkg/bot/telegram"
	"github.com/japaniel/magistr/pkg/config"
	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand shares once the root pre-run has loaded it.
type app struct {
	in  io.Reader
	out io.Writer

	configPath string
	verbose    bool
	dsn        string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:   "magistr",
		Short: "Вопрос Магистру: a pain classifier and SaaS pitch generator",
		Long: `magistr finds the hidden pain in a question and turns it into a SaaS pitch.

Run without arguments for the interactive console menu. The Telegram bots
need MAGISTR_TELEGRAM_TOKEN (or telegram.token in the config file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.dsn, "db", "", "sqlite DSN for sessions and analyses (overrides config)")

	root.AddCommand(
		a.cliCmd(),
		a.interactiveCmd(),
		a.botCmd(),
		a.gameCmd(),
		a.serveCmd(),
		a.demoCmd(),
		a.analyzeCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.DB.DSN = a.dsn
	}
	a.cfg = cfg

	zc := zap.NewProductionConfig()
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) parser() *questions.Parser {
	fetcher := questions.NewFetcher(a.cfg.FetcherConfig(), a.logger)
	return questions.NewParser(fetcher, a.cfg.Questions.URLs, a.logger)
}

func (a *app) generator() *pitch.Generator {
	return pitch.NewGenerator(uint64(time.Now().UnixNano()))
}

func (a *app) openDB() (*sql.DB, error) {
	conn, err := db.Open(a.cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

// newGame builds the game bot with the demo settings from config.
func (a *app) newGame(conn *sql.DB, source bot.GameSource, gen *pitch.Generator) *bot.Game {
	g := bot.NewGame(conn, source, gen, a.logger)
	g.DemoSize = a.cfg.Demo.Size
	g.Ingester.Workers = a.cfg.Demo.Workers
	g.Ingester.BatchSize = a.cfg.Demo.BatchSize
	return g
}

func (a *app) poller(ctx context.Context, handler bot.Handler) (*telegram.Poller, error) {
	tc := a.cfg.Telegram
	client, err := telegram.NewClient(ctx, telegram.Config{
		Token:       tc.Token,
		BaseURL:     tc.BaseURL,
		SendRate:    tc.SendRate,
		HTTPTimeout: tc.PollTimeout + 30*time.Second,
	}, a.logger)
	if errors.Is(err, telegram.ErrNoToken) {
		return nil, fmt.Errorf("%w: set %sTELEGRAM_TOKEN or telegram.token", err, config.EnvPrefix)
	}
	if err != nil {
		return nil, err
	}
	p := telegram.NewPoller(client, handler, a.logger)
	p.PollTimeout = tc.PollTimeout
	return p, nil
}

func (a *app) runTelegram(ctx context.Context, handler bot.Handler) error {
	p, err := a.poller(ctx, handler)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

func (a *app) runClassicBot(ctx context.Context) error {
	fmt.Fprintln(a.out, "🤖 Запускаю Telegram-бота... (Ctrl+C для остановки)")
	return a.runTelegram(ctx, bot.NewClassic(a.parser(), a.generator(), a.logger))
}

func (a *app) runGameBot(ctx context.Context) error {
	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintln(a.out, "🎮 Запускаю игрового Telegram-бота... (Ctrl+C для остановки)")
	return a.runTelegram(ctx, a.newGame(conn, a.parser(), a.generator()))
}
