package bot

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
	"github.com/japaniel/magistr/pkg/render"
)

// Callback data of the classic bot.
const (
	CbNewQuestion      = "new_question"
	CbAnalyzePain      = "analyze_pain"
	CbGenerateSolution = "generate_solution"
	CbFullAnalysis     = "full_analysis"
	CbStatistics       = "statistics"
)

var (
	btnNewQuestion = Button{"🗿 Новый вопрос Магистру", CbNewQuestion}
	btnAgain       = Button{"🗿 Новый вопрос", CbNewQuestion}
	btnPain        = Button{"🔥 Анализ боли", CbAnalyzePain}
	btnSolution    = Button{"💡 SaaS-решение", CbGenerateSolution}
	btnFull        = Button{"🎯 Полный анализ", CbFullAnalysis}
	btnStatistics  = Button{"📊 Статистика", CbStatistics}
)

// RandomSource supplies random questions.
type RandomSource interface {
	Random(ctx context.Context) questions.Question
}

type classicState struct {
	question  questions.Question
	diagnosis *pain.Diagnosis
	pitch     *pitch.Pitch
}

// Classic is the step-by-step bot: new question, pain analysis, pitch and a
// closing report, each behind its own button. State lives in memory only.
type Classic struct {
	source RandomSource
	gen    *pitch.Generator
	logger *zap.Logger

	locks chatLocks
	mu    sync.Mutex
	state map[int64]*classicState
}

// NewClassic creates the classic bot.
func NewClassic(source RandomSource, gen *pitch.Generator, logger *zap.Logger) *Classic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classic{source: source, gen: gen, logger: logger, state: make(map[int64]*classicState)}
}

// Handle implements Handler.
func (c *Classic) Handle(ctx context.Context, u Update, reply ReplyFunc) {
	unlock := c.locks.lock(u.ChatID)
	defer unlock()

	if !u.IsCallback() {
		if cmd, _, ok := Command(u.Text); ok && (cmd == "start" || cmd == "help") {
			reply(Reply{Text: render.ClassicWelcome, Buttons: column(btnNewQuestion, btnPain, btnSolution, btnFull, btnStatistics)})
			return
		}
		reply(Reply{Text: "Используйте /start, чтобы открыть меню."})
		return
	}

	c.logger.Debug("classic callback", zap.Int64("chat_id", u.ChatID), zap.String("data", u.Callback))
	edit := func(r Reply) {
		r.Edit = true
		reply(r)
	}
	switch u.Callback {
	case CbNewQuestion:
		c.newQuestion(ctx, u.ChatID, edit)
	case CbAnalyzePain:
		c.analyze(u.ChatID, edit)
	case CbGenerateSolution:
		c.solve(u.ChatID, edit)
	case CbFullAnalysis:
		c.full(u.ChatID, edit)
	case CbStatistics:
		edit(Reply{Text: render.ClassicStatistics, Buttons: column(btnAgain)})
	default:
		c.logger.Debug("unknown callback", zap.String("data", u.Callback))
	}
}

func (c *Classic) get(chatID int64) *classicState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state[chatID]
}

func (c *Classic) newQuestion(ctx context.Context, chatID int64, reply ReplyFunc) {
	reply(Reply{Text: "🔍 Ищу случайный вопрос..."})
	q := c.source.Random(ctx)
	if q.Text == "" {
		reply(Reply{Text: "❌ Не удалось найти вопрос. Попробуйте еще раз."})
		return
	}

	c.mu.Lock()
	c.state[chatID] = &classicState{question: q}
	c.mu.Unlock()

	reply(Reply{
		Text:    fmt.Sprintf("🗿 Вопрос Магистру:\n\n%s\n\nТеперь выберите, что делать с этим вопросом:", render.Question(q)),
		Buttons: column(btnPain, btnSolution, btnFull, btnAgain),
	})
}

func (c *Classic) analyze(chatID int64, reply ReplyFunc) {
	st := c.get(chatID)
	if st == nil {
		reply(Reply{Text: render.MsgNeedQuestion})
		return
	}
	reply(Reply{Text: "🧠 Анализирую скрытую боль..."})
	d := pain.Classify(st.question.Text)
	st.diagnosis = &d
	st.pitch = nil

	reply(Reply{
		Text: fmt.Sprintf(`🔥 Анализ боли:

❓ Вопрос: "%s"

💔 Основная боль: %s
📊 Уверенность: %s
🎭 Эмоции: %s
⚡ Срочность: %s

Теперь можно генерировать решение!`, st.question.Text, d.Summary, render.Percent(d.Confidence), render.Emotions(d), d.Urgency.Label()),
		Buttons: column(btnSolution, btnFull, btnAgain),
	})
}

func (c *Classic) solve(chatID int64, reply ReplyFunc) {
	st := c.get(chatID)
	if st == nil {
		reply(Reply{Text: render.MsgNeedQuestion})
		return
	}
	if st.diagnosis == nil {
		reply(Reply{Text: render.MsgNeedAnalysis})
		return
	}
	reply(Reply{Text: "💡 Генерирую SaaS-решение..."})
	p := c.gen.Format(*st.diagnosis)
	st.pitch = &p

	reply(Reply{
		Text:    "💡 SaaS-решение:\n\n" + render.Pitch(p),
		Buttons: column(btnFull, btnAgain),
	})
}

func (c *Classic) full(chatID int64, reply ReplyFunc) {
	st := c.get(chatID)
	if st == nil {
		reply(Reply{Text: render.MsgNeedQuestion})
		return
	}
	if st.diagnosis == nil || st.pitch == nil {
		reply(Reply{Text: render.MsgNeedFull})
		return
	}
	reply(Reply{
		Text:    render.FullAnalysis(st.question.Text, *st.diagnosis, *st.pitch),
		Buttons: column(btnAgain),
	})
}
