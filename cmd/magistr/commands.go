package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/japaniel/magistr/pkg/bot/telegram"
	"github.com/japaniel/magistr/pkg/bot/wschat"
	"github.com/japaniel/magistr/pkg/console"
	"github.com/japaniel/magistr/pkg/ingest"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/render"
)

func (a *app) cliCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cli",
		Short: "Take one random question through the whole pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := console.New(a.parser(), a.generator(), a.in, a.out, a.logger)
			return c.RunDemo(cmd.Context())
		},
	}
}

func (a *app) interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Numbered console menu; can hand over to a Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd.Context())
		},
	}
}

func (a *app) runInteractive(ctx context.Context) error {
	c := console.New(a.parser(), a.generator(), a.in, a.out, a.logger)
	next, err := c.RunInteractive(ctx)
	if err != nil {
		return err
	}
	switch next {
	case console.NextClassicBot:
		return a.runClassicBot(ctx)
	case console.NextGameBot:
		return a.runGameBot(ctx)
	}
	return nil
}

func (a *app) botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the classic Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClassicBot(cmd.Context())
		},
	}
}

func (a *app) gameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "game",
		Short: "Run the game Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGameBot(cmd.Context())
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game over WebSocket, and over Telegram when a token is set",
		Long: `serve shares one game store between the WebSocket chat and, when a
Telegram token is configured, the Telegram bot. The WebSocket endpoint is /ws;
/healthz answers "ok".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.WS.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "WebSocket listen address (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	game := a.newGame(conn, a.parser(), a.generator())

	var poller *telegram.Poller
	if a.cfg.Telegram.Token != "" {
		if poller, err = a.poller(ctx, game); err != nil {
			return err
		}
	} else {
		a.logger.Warn("no telegram token, serving websocket only")
	}

	ws := wschat.NewServer(game, a.logger)
	ws.OriginPatterns = a.cfg.WS.OriginPatterns

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wschat.ListenAndServe(ctx, a.cfg.WS.Addr, ws)
	})
	if poller != nil {
		g.Go(func() error {
			return poller.Run(ctx)
		})
	}
	return g.Wait()
}

func (a *app) demoCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyse a batch of questions and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size > 0 {
				a.cfg.Demo.Size = size
			}
			return a.demo(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&size, "size", "n", 0, "number of questions (overrides config)")
	return cmd
}

func (a *app) demo(ctx context.Context) error {
	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer conn.Close()

	qs := a.parser().Multiple(ctx, a.cfg.Demo.Size)
	fmt.Fprintf(a.out, "🎭 Анализирую %d вопросов...\n", len(qs))

	ig := ingest.NewIngester(conn, a.generator(), a.logger)
	ig.Workers = a.cfg.Demo.Workers
	ig.BatchSize = a.cfg.Demo.BatchSize
	ig.OnProgress = func(current, total int) {
		fmt.Fprintln(a.out, render.DemoProgress(current, total))
	}

	summary, err := ig.Ingest(ctx, qs)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	a.logger.Debug("demo stored", zap.String("run_id", summary.RunID))
	fmt.Fprintln(a.out, "\n"+render.DemoSummary(summary))
	return nil
}

// analysis is the JSON shape printed by analyze.
type analysis struct {
	Question  string         `json:"question"`
	Diagnosis pain.Diagnosis `json:"diagnosis"`
	Pitch     pitch.Pitch    `json:"pitch"`
}

func (a *app) analyzeCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "analyze [question]",
		Short: "Classify one question and print the diagnosis and pitch",
		Long: `analyze classifies the question given as arguments, or read from stdin
when there are none, and prints the diagnosis and pitch as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(strings.Join(args, " "))
			if q == "" {
				raw, err := io.ReadAll(a.in)
				if err != nil {
					return fmt.Errorf("read question: %w", err)
				}
				q = strings.TrimSpace(string(raw))
			}
			if q == "" {
				return errors.New("no question given")
			}

			d := pain.Classify(q)
			p := a.generator().Format(d)
			if text {
				fmt.Fprintln(a.out, render.FullAnalysis(q, d, p))
				return nil
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(analysis{Question: q, Diagnosis: d, Pitch: p})
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print the formatted report instead of JSON")
	return cmd
}
