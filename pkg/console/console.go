// Package console runs the terminal front ends: a one-shot demo and a
// numbered interactive menu.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
	"github.com/japaniel/magistr/pkg/render"
)

// QuestionSource supplies questions; *questions.Parser is the real one.
type QuestionSource interface {
	Random(ctx context.Context) questions.Question
}

// Next tells the caller what to run after the interactive menu returns.
type Next int

const (
	NextQuit Next = iota
	NextClassicBot
	NextGameBot
)

// Console holds the state of one terminal session.
type Console struct {
	source QuestionSource
	gen    *pitch.Generator
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger

	stats render.Counters

	question  *questions.Question
	diagnosis *pain.Diagnosis
	pitch     *pitch.Pitch
}

// New creates a console reading commands from in and printing to out.
func New(source QuestionSource, gen *pitch.Generator, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		source: source,
		gen:    gen,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Stats returns the session counters.
func (c *Console) Stats() render.Counters { return c.stats }

// RunDemo takes one question through the whole pipeline and prints every step.
func (c *Console) RunDemo(ctx context.Context) error {
	c.println("🗿 Вопрос Магистру — автоматическая фабрика боли и решений!")
	c.println(render.Rule)

	c.println("🔍 Ищу случайный вопрос...")
	q := c.source.Random(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Debug("demo question", zap.String("kind", string(q.Kind)))
	c.println("\n" + render.Question(q))
	c.println(render.ThinRule)

	c.println("🧠 Анализирую скрытую боль...")
	d := pain.Classify(q.Text)
	c.println(render.Diagnosis(d))
	c.println(render.ThinRule)

	c.println("💡 Генерирую SaaS-решение...")
	p := c.gen.Format(d)
	c.println(render.Pitch(p))
	c.println(render.ThinRule)

	if recs := render.Recommendations(d.Recommendations, 3); recs != "" {
		c.println(recs)
		c.println(render.ThinRule)
	}

	c.stats.QuestionsProcessed++
	c.stats.PainAnalyses++
	c.stats.SolutionsGenerated++

	c.println("\n" + render.FullAnalysis(q.Text, d, p))
	c.printf("📊 Обработано вопросов: %d\n", c.stats.QuestionsProcessed)
	return nil
}

const menu = `
Выберите действие:
1. 🗿 Новый вопрос Магистру
2. 🔥 Анализ боли
3. 💡 SaaS-решение
4. 🎯 Полный анализ
5. 📊 Статистика
6. 🤖 Запустить обычного Telegram-бота
7. 🎮 Запустить игрового Telegram-бота
0. Выход`

// RunInteractive shows the menu until the user quits, picks a bot, or the
// input ends. The returned Next says which.
func (c *Console) RunInteractive(ctx context.Context) (Next, error) {
	c.println("🗿 Вопрос Магистру — интерактивный режим")
	c.println(render.Rule)

	for {
		if err := ctx.Err(); err != nil {
			return NextQuit, err
		}
		c.println(menu)
		c.printf("\nВаш выбор: ")
		if !c.in.Scan() {
			c.println("")
			return NextQuit, c.in.Err()
		}

		switch strings.TrimSpace(c.in.Text()) {
		case "1":
			c.newQuestion(ctx)
		case "2":
			c.analyze()
		case "3":
			c.solve()
		case "4":
			c.fullAnalysis()
		case "5":
			c.println("\n" + render.Statistics(c.stats))
		case "6":
			c.println("🤖 Переключаюсь на обычного Telegram-бота...")
			return NextClassicBot, nil
		case "7":
			c.println("🎮 Переключаюсь на игрового Telegram-бота...")
			return NextGameBot, nil
		case "0":
			c.println("👋 До свидания!")
			return NextQuit, nil
		default:
			c.println("❌ Неверный выбор. Попробуйте еще раз.")
		}
	}
}

func (c *Console) newQuestion(ctx context.Context) {
	if c.question != nil && c.diagnosis == nil {
		c.println("❓ У вас уже есть вопрос. Сначала проанализируйте его.")
		return
	}
	c.println("🔍 Ищу случайный вопрос...")
	q := c.source.Random(ctx)
	c.question, c.diagnosis, c.pitch = &q, nil, nil
	c.stats.QuestionsProcessed++
	c.println("\n" + render.Question(q))
}

func (c *Console) analyze() {
	if c.question == nil {
		c.println(render.MsgNeedQuestion)
		return
	}
	if c.diagnosis != nil {
		c.println("🧠 Анализ боли уже выполнен.")
		return
	}
	c.println("🧠 Анализирую скрытую боль...")
	d := pain.Classify(c.question.Text)
	c.diagnosis = &d
	c.println(render.Diagnosis(d))
	if recs := render.Recommendations(d.Recommendations, 3); recs != "" {
		c.println(recs)
	}
	c.stats.PainAnalyses++
}

func (c *Console) solve() {
	if c.question == nil {
		c.println(render.MsgNeedQuestion)
		return
	}
	if c.diagnosis == nil {
		c.println(render.MsgNeedAnalysis)
		return
	}
	if c.pitch != nil {
		c.println("💡 Решение уже сгенерировано.")
		return
	}
	c.println("💡 Генерирую SaaS-решение...")
	p := c.gen.Format(*c.diagnosis)
	c.pitch = &p
	c.println(render.Pitch(p))
	c.stats.SolutionsGenerated++
}

func (c *Console) fullAnalysis() {
	if c.question == nil {
		c.println(render.MsgNeedQuestion)
		return
	}
	if c.diagnosis == nil || c.pitch == nil {
		c.println(render.MsgNeedFull)
		return
	}
	c.println("\n" + render.FullAnalysis(c.question.Text, *c.diagnosis, *c.pitch))
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
