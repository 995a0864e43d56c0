package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
	"github.com/japaniel/magistr/pkg/render"
)

type stubSource struct{ calls int }

func (s *stubSource) Random(context.Context) questions.Question {
	s.calls++
	return questions.Question{
		Text:   "Я боюсь, что никто не поймет меня, и мне срочно нужна помощь",
		Source: questions.SourceUser,
		Kind:   questions.KindCustom,
	}
}

func run(t *testing.T, input string) (*Console, string, Next) {
	t.Helper()
	var out bytes.Buffer
	c := New(&stubSource{}, pitch.NewGenerator(7), strings.NewReader(input), &out, nil)
	next, err := c.RunInteractive(context.Background())
	require.NoError(t, err)
	return c, out.String(), next
}

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	c := New(&stubSource{}, pitch.NewGenerator(7), nil, &out, nil)
	require.NoError(t, c.RunDemo(context.Background()))

	got := out.String()
	assert.Contains(t, got, "❓ Вопрос: Я боюсь")
	assert.Contains(t, got, "📊 Уверенность: 80%")
	assert.Contains(t, got, "   1. ")
	assert.Contains(t, got, "ПОЛНЫЙ АНАЛИЗ МАГИСТРА")
	assert.Contains(t, got, "📊 Обработано вопросов: 1")
	assert.Equal(t, render.Counters{QuestionsProcessed: 1, PainAnalyses: 1, SolutionsGenerated: 1}, c.Stats())
}

func TestRunDemoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(&stubSource{}, pitch.NewGenerator(7), nil, &bytes.Buffer{}, nil)
	assert.ErrorIs(t, c.RunDemo(ctx), context.Canceled)
}

func TestInteractiveGuards(t *testing.T) {
	_, out, next := run(t, "2\n3\n4\n0\n")
	assert.Equal(t, NextQuit, next)
	assert.Contains(t, out, render.MsgNeedQuestion)
	assert.Equal(t, 3, strings.Count(out, render.MsgNeedQuestion))
	assert.Contains(t, out, "👋 До свидания!")
}

func TestInteractiveFullFlow(t *testing.T) {
	c, out, _ := run(t, "1\n1\n3\n4\n2\n2\n4\n3\n3\n4\n5\n0\n")

	assert.Contains(t, out, "У вас уже есть вопрос")
	assert.Contains(t, out, render.MsgNeedAnalysis)
	assert.Contains(t, out, render.MsgNeedFull)
	assert.Contains(t, out, "Анализ боли уже выполнен")
	assert.Contains(t, out, "Решение уже сгенерировано")
	assert.Contains(t, out, "ПОЛНЫЙ АНАЛИЗ МАГИСТРА")
	assert.Contains(t, out, "СТАТИСТИКА ВОПРОСОВ МАГИСТРА")
	assert.Equal(t, render.Counters{QuestionsProcessed: 1, PainAnalyses: 1, SolutionsGenerated: 1}, c.Stats())
}

func TestInteractiveNewQuestionAfterAnalysis(t *testing.T) {
	c, _, _ := run(t, "1\n2\n1\n3\n0\n")
	// The second question reset the analysis, so the pitch was refused.
	assert.Equal(t, 2, c.Stats().QuestionsProcessed)
	assert.Zero(t, c.Stats().SolutionsGenerated)
}

func TestInteractiveBotChoices(t *testing.T) {
	_, out, next := run(t, "6\n")
	assert.Equal(t, NextClassicBot, next)
	assert.Contains(t, out, "обычного Telegram-бота")

	_, _, next = run(t, "7\n")
	assert.Equal(t, NextGameBot, next)
}

func TestInteractiveBadChoiceAndEOF(t *testing.T) {
	_, out, next := run(t, "42\n")
	assert.Equal(t, NextQuit, next)
	assert.Contains(t, out, "❌ Неверный выбор")
}
