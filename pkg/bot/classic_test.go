package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/render"
)

func press(c Handler, data string, rec *recorder) {
	c.Handle(context.Background(), Update{ChatID: 7, Callback: data}, rec.reply)
}

func TestClassicStart(t *testing.T) {
	c := NewClassic(&stubSource{}, pitch.NewGenerator(1), nil)
	rec := &recorder{}
	c.Handle(context.Background(), Update{ChatID: 7, Text: "/start"}, rec.reply)

	r := rec.last(t)
	assert.Equal(t, render.ClassicWelcome, r.Text)
	assert.False(t, r.Edit)
	assert.Equal(t, []string{CbNewQuestion, CbAnalyzePain, CbGenerateSolution, CbFullAnalysis, CbStatistics}, callbacks(r))

	rec.reset()
	c.Handle(context.Background(), Update{ChatID: 7, Text: "что тут?"}, rec.reply)
	assert.Contains(t, rec.last(t).Text, "/start")
}

func TestClassicGuards(t *testing.T) {
	c := NewClassic(&stubSource{}, pitch.NewGenerator(1), nil)
	rec := &recorder{}

	for _, data := range []string{CbAnalyzePain, CbGenerateSolution, CbFullAnalysis} {
		rec.reset()
		press(c, data, rec)
		assert.Equal(t, render.MsgNeedQuestion, rec.last(t).Text, data)
	}

	press(c, CbNewQuestion, rec)
	rec.reset()
	press(c, CbGenerateSolution, rec)
	assert.Equal(t, render.MsgNeedAnalysis, rec.last(t).Text)

	rec.reset()
	press(c, CbFullAnalysis, rec)
	assert.Equal(t, render.MsgNeedFull, rec.last(t).Text)
}

func TestClassicFullFlow(t *testing.T) {
	src := &stubSource{}
	c := NewClassic(src, pitch.NewGenerator(1), nil)
	rec := &recorder{}

	press(c, CbNewQuestion, rec)
	require.Len(t, rec.replies, 2)
	assert.Equal(t, "🔍 Ищу случайный вопрос...", rec.replies[0].Text)
	assert.Contains(t, rec.replies[1].Text, scenarioText)
	assert.True(t, rec.replies[1].Edit)
	assert.Equal(t, []string{CbAnalyzePain, CbGenerateSolution, CbFullAnalysis, CbNewQuestion}, callbacks(rec.replies[1]))

	rec.reset()
	press(c, CbAnalyzePain, rec)
	r := rec.last(t)
	assert.Contains(t, r.Text, "📊 Уверенность: 80%")
	assert.Contains(t, r.Text, render.NoEmotions)

	rec.reset()
	press(c, CbGenerateSolution, rec)
	assert.Contains(t, rec.last(t).Text, "💡 SaaS-решение:")

	rec.reset()
	press(c, CbFullAnalysis, rec)
	r = rec.last(t)
	assert.Contains(t, r.Text, "ПОЛНЫЙ АНАЛИЗ МАГИСТРА")
	assert.Equal(t, []string{CbNewQuestion}, callbacks(r))

	rec.reset()
	press(c, CbStatistics, rec)
	assert.Equal(t, render.ClassicStatistics, rec.last(t).Text)
	assert.Equal(t, 1, src.randomCalls)
}

func TestClassicNewQuestionResetsSteps(t *testing.T) {
	c := NewClassic(&stubSource{}, pitch.NewGenerator(1), nil)
	rec := &recorder{}
	press(c, CbNewQuestion, rec)
	press(c, CbAnalyzePain, rec)
	press(c, CbGenerateSolution, rec)
	press(c, CbNewQuestion, rec)

	rec.reset()
	press(c, CbFullAnalysis, rec)
	assert.Equal(t, render.MsgNeedFull, rec.last(t).Text)
}

func TestClassicChatsAreIndependent(t *testing.T) {
	c := NewClassic(&stubSource{}, pitch.NewGenerator(1), nil)
	rec := &recorder{}
	press(c, CbNewQuestion, rec)

	rec.reset()
	c.Handle(context.Background(), Update{ChatID: 8, Callback: CbAnalyzePain}, rec.reply)
	assert.Equal(t, render.MsgNeedQuestion, rec.last(t).Text)
}
