package bot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/ingest"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
	"github.com/japaniel/magistr/pkg/render"
)

// Points awarded by the game.
const (
	AnalysisPoints = 10
	SolutionPoints = 5

	ownQuestionBase    = 10
	ownQuestionPrecise = 5
	ownQuestionMeme    = 3
	preciseConfidence  = 0.8
)

// DefaultDemoSize is the length of a /demo50 run.
const DefaultDemoSize = 50

// CategoryPrefix starts the callback data of a category button.
const CategoryPrefix = "cat_"

// Callback data of the game bot. The step callbacks analyze_pain and
// generate_solution are shared with the classic bot.
const (
	CbStartGame    = "start_game"
	CbAskQuestion  = "ask_question"
	CbByCategory   = "by_category"
	CbShowStats    = "show_stats"
	CbLeaderboard  = "leaderboard"
	CbNextQuestion = "next_question"
	CbEndGame      = "end_game"
	CbMoreRofl     = "more_rofl"
	CbMoreBazar    = "more_bazar"
	CbMoreShiza    = "more_shiza"
	CbMoreVazshe   = "more_vazshe"
	CbMainMenu     = "main_menu"
)

// Game texts that are not full screens.
const (
	MsgNoActiveQuestion = "❌ Нет активного вопроса"
	MsgFailed           = "❌ Произошла ошибка. Попробуйте позже."
	MsgUnknownCommand   = "🤷 Неизвестная команда. Список команд: /help"
	MsgAsk              = "❓ Задай свой вопрос:\n\nПросто напиши любой вопрос, и я проанализирую скрытую боль!"
	MsgPlayingHint      = "🎮 Сейчас идет игра: жми кнопки под вопросом или задай свой через /ask"
	MsgMenuHint         = "🗿 Напиши /ask, чтобы задать вопрос, или /play, чтобы начать игру"
	MsgChooseCategory   = "🎯 Выбери категорию вопроса:"
	MsgAlreadyAnalysed  = "🧠 Этот вопрос уже разобран. Жми дальше!"
)

var (
	btnStartGame   = Button{"🎮 Начать игру", CbStartGame}
	btnAskQuestion = Button{"❓ Задать вопрос", CbAskQuestion}
	btnByCategory  = Button{"🎯 По категории", CbByCategory}
	btnShowStats   = Button{"📊 Статистика", CbShowStats}
	btnLeaderboard = Button{"🏆 Лидеры", CbLeaderboard}
	btnAnalyze     = Button{"🧠 Анализировать боль", CbAnalyzePain}
	btnSkip        = Button{"🎯 Пропустить вопрос", CbNextQuestion}
	btnGameSolve   = Button{"💡 SaaS-решение", CbGenerateSolution}
	btnNextSkip    = Button{"🎯 Следующий вопрос", CbNextQuestion}
	btnNext        = Button{"🎮 Следующий вопрос", CbNextQuestion}
	btnEndGame     = Button{"🏁 Завершить игру", CbEndGame}
	btnMainMenu    = Button{"🏠 Главное меню", CbMainMenu}
	btnPlay        = Button{"🎮 Играть", CbStartGame}
	btnMoreRofl    = Button{"🎭 Еще рофло", CbMoreRofl}
	btnMoreBazar   = Button{"🗣️ Еще базар", CbMoreBazar}
	btnMoreShiza   = Button{"🧘 Еще шиза", CbMoreShiza}
	btnMoreVazshe  = Button{"🤔 Еще ваще", CbMoreVazshe}
)

// GameSource is everything the game asks of the question source.
type GameSource interface {
	RandomSource
	ByCategory(ctx context.Context, category string) (questions.Question, error)
	Multiple(ctx context.Context, n int) []questions.Question
	Custom(text string) questions.Question
}

// Game is the scoring bot. Sessions and stats live in the db store.
type Game struct {
	db     *sql.DB
	source GameSource
	gen    *pitch.Generator
	logger *zap.Logger

	// DemoSize is the number of questions /demo50 runs through.
	DemoSize int
	// Ingester runs /demo50; each run works on a copy.
	Ingester *ingest.Ingester

	locks chatLocks
}

// NewGame creates the game bot on an initialised store.
func NewGame(conn *sql.DB, source GameSource, gen *pitch.Generator, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		db:       conn,
		source:   source,
		gen:      gen,
		logger:   logger,
		DemoSize: DefaultDemoSize,
		Ingester: ingest.NewIngester(conn, gen, logger),
	}
}

// OwnQuestionPoints scores a question the player typed: a base award, a bonus
// for a confident diagnosis and one for a meme-flavoured pitch.
func OwnQuestionPoints(d pain.Diagnosis, p pitch.Pitch) int {
	points := ownQuestionBase
	if d.Confidence > preciseConfidence {
		points += ownQuestionPrecise
	}
	if strings.Contains(strings.ToLower(p.Decoration), "мем") {
		points += ownQuestionMeme
	}
	return points
}

// Handle implements Handler.
func (g *Game) Handle(ctx context.Context, u Update, reply ReplyFunc) {
	unlock := g.locks.lock(u.ChatID)
	defer unlock()

	if err := g.handle(ctx, u, reply); err != nil {
		g.logger.Error("game update failed",
			zap.Int64("chat_id", u.ChatID),
			zap.String("text", u.Text),
			zap.String("callback", u.Callback),
			zap.Error(err))
		reply(Reply{Text: MsgFailed})
	}
}

func (g *Game) handle(ctx context.Context, u Update, reply ReplyFunc) error {
	cmd, _, isCmd := Command(u.Text)
	if !u.IsCallback() && isCmd {
		switch cmd {
		case "start":
			return g.start(u, reply)
		case "help":
			reply(Reply{Text: render.Help})
			return nil
		}
	}
	if u.IsCallback() && u.Callback == CbMainMenu {
		return g.start(u, reply)
	}

	p, err := db.GetPlayer(g.db, u.ChatID)
	if errors.Is(err, db.ErrPlayerNotFound) {
		// Plain text from strangers is ignored, everything else gets the hint.
		if u.IsCallback() || isCmd {
			reply(Reply{Text: render.MsgNeedStart})
		}
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case u.IsCallback():
		edit := func(r Reply) {
			r.Edit = true
			reply(r)
		}
		return g.callback(ctx, p, u.Callback, edit)
	case isCmd:
		return g.command(ctx, p, cmd, reply)
	default:
		return g.message(ctx, p, u.Text, reply)
	}
}

func (g *Game) command(ctx context.Context, p db.Player, cmd string, reply ReplyFunc) error {
	switch cmd {
	case "play":
		p.Score = 0
		p.Mode = db.ModePlaying
		if err := db.SavePlayer(g.db, p); err != nil {
			return err
		}
		return g.round(ctx, p, reply)
	case "ask":
		return g.ask(p, reply)
	case "category":
		g.categories(reply)
	case "stats":
		return g.stats(p, reply)
	case "rofl":
		g.rofl(ctx, reply)
	case "bazar":
		g.bazar(ctx, reply)
	case "shiza":
		g.shiza(ctx, reply)
	case "vazshe":
		g.vazshe(ctx, reply)
	case "demo50":
		return g.demo(ctx, reply)
	default:
		reply(Reply{Text: MsgUnknownCommand})
	}
	return nil
}

func (g *Game) callback(ctx context.Context, p db.Player, data string, reply ReplyFunc) error {
	if category, ok := strings.CutPrefix(data, CategoryPrefix); ok {
		return g.byCategory(ctx, p, category, reply)
	}
	switch data {
	case CbStartGame, CbNextQuestion:
		return g.round(ctx, p, reply)
	case CbAskQuestion:
		return g.ask(p, reply)
	case CbByCategory:
		g.categories(reply)
	case CbShowStats:
		return g.stats(p, reply)
	case CbLeaderboard:
		return g.leaderboard(reply)
	case CbAnalyzePain:
		return g.analyze(p, reply)
	case CbGenerateSolution:
		return g.solve(p, reply)
	case CbEndGame:
		return g.endGame(p, reply)
	case CbMoreRofl:
		g.rofl(ctx, reply)
	case CbMoreBazar:
		g.bazar(ctx, reply)
	case CbMoreShiza:
		g.shiza(ctx, reply)
	case CbMoreVazshe:
		g.vazshe(ctx, reply)
	default:
		g.logger.Debug("unknown callback", zap.String("data", data))
	}
	return nil
}

func (g *Game) message(ctx context.Context, p db.Player, text string, reply ReplyFunc) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	switch p.Mode {
	case db.ModeAsking:
		return g.ownQuestion(p, text, reply)
	case db.ModePlaying:
		reply(Reply{Text: MsgPlayingHint, Buttons: column(btnAnalyze, btnSkip)})
	default:
		reply(Reply{Text: MsgMenuHint})
	}
	return nil
}

// start resets the session, keeping lifetime stats.
func (g *Game) start(u Update, reply ReplyFunc) error {
	name := u.UserName
	if strings.TrimSpace(name) == "" {
		name = DefaultUserName
	}
	p, err := db.UpsertPlayer(g.db, u.ChatID, name)
	if err != nil {
		return err
	}
	p.Score, p.QuestionsAsked = 0, 0
	p.Mode = db.ModeMenu
	clearRound(&p)
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	s, err := db.GetStats(g.db, u.ChatID)
	if err != nil {
		return err
	}
	g.logger.Info("player started", zap.Int64("chat_id", u.ChatID), zap.String("user", p.UserName))
	reply(Reply{
		Text:    render.GameWelcome(p, s),
		Buttons: column(btnStartGame, btnAskQuestion, btnByCategory, btnShowStats, btnLeaderboard),
		Edit:    u.IsCallback(),
	})
	return nil
}

func (g *Game) round(ctx context.Context, p db.Player, reply ReplyFunc) error {
	q := g.source.Random(ctx)
	return g.showRound(p, q, reply)
}

func (g *Game) showRound(p db.Player, q questions.Question, reply ReplyFunc) error {
	p.Mode = db.ModePlaying
	clearRound(&p)
	p.CurrentQuestion, p.CurrentSource = q.Text, q.Source
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	reply(Reply{Text: render.Round(p.QuestionsAsked+1, q), Buttons: column(btnAnalyze, btnSkip)})
	return nil
}

func (g *Game) ask(p db.Player, reply ReplyFunc) error {
	p.Mode = db.ModeAsking
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	reply(Reply{Text: MsgAsk})
	return nil
}

func (g *Game) categories(reply ReplyFunc) {
	cats := questions.Categories()
	var rows [][]Button
	for i := 0; i < len(cats); i += 2 {
		r := []Button{categoryButton(cats[i])}
		if i+1 < len(cats) {
			r = append(r, categoryButton(cats[i+1]))
		}
		rows = append(rows, r)
	}
	reply(Reply{Text: MsgChooseCategory, Buttons: rows})
}

func categoryButton(c string) Button {
	title := []rune(c)
	return Button{Text: strings.ToUpper(string(title[:1])) + string(title[1:]), Data: CategoryPrefix + c}
}

func (g *Game) byCategory(ctx context.Context, p db.Player, category string, reply ReplyFunc) error {
	q, err := g.source.ByCategory(ctx, category)
	if errors.Is(err, questions.ErrNoQuestions) {
		g.logger.Debug("no category questions", zap.String("category", category))
		reply(Reply{
			Text:    fmt.Sprintf("❌ Не удалось найти вопрос по категории «%s». Попробуй другую!", category),
			Buttons: column(btnByCategory, btnStartGame),
		})
		return nil
	}
	if err != nil {
		return err
	}
	return g.showRound(p, q, reply)
}

func (g *Game) analyze(p db.Player, reply ReplyFunc) error {
	if p.CurrentQuestion == "" {
		reply(Reply{Text: MsgNoActiveQuestion})
		return nil
	}
	if p.DiagnosisJSON != "" || p.PitchJSON != "" {
		reply(Reply{Text: MsgAlreadyAnalysed, Buttons: column(btnGameSolve, btnNextSkip)})
		return nil
	}
	d := pain.Classify(p.CurrentQuestion)
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode diagnosis: %w", err)
	}
	p.DiagnosisJSON, p.PitchJSON = string(raw), ""
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	score, err := db.AddScore(g.db, p.UserID, AnalysisPoints, 0)
	if err != nil {
		return err
	}
	reply(Reply{
		Text:    render.GameAnalysis(p.CurrentQuestion, d, AnalysisPoints, score),
		Buttons: column(btnGameSolve, btnNextSkip),
	})
	return nil
}

func (g *Game) solve(p db.Player, reply ReplyFunc) error {
	if p.DiagnosisJSON == "" {
		reply(Reply{Text: render.MsgNeedAnalysis})
		return nil
	}
	var d pain.Diagnosis
	if err := json.Unmarshal([]byte(p.DiagnosisJSON), &d); err != nil {
		return fmt.Errorf("decode diagnosis: %w", err)
	}
	pt := g.gen.Format(d)
	raw, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("encode pitch: %w", err)
	}
	// The diagnosis is spent so the same round cannot be scored twice.
	p.DiagnosisJSON, p.PitchJSON = "", string(raw)
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	score, err := db.AddScore(g.db, p.UserID, SolutionPoints, 1)
	if err != nil {
		return err
	}
	reply(Reply{
		Text:    render.GamePitch(pt, SolutionPoints, score, p.QuestionsAsked+1),
		Buttons: column(btnNext, btnEndGame, btnShowStats),
	})
	return nil
}

func (g *Game) ownQuestion(p db.Player, text string, reply ReplyFunc) error {
	q := g.source.Custom(text)
	d := pain.Classify(q.Text)
	pt := g.gen.Format(d)
	points := OwnQuestionPoints(d, pt)

	rawD, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode diagnosis: %w", err)
	}
	rawP, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("encode pitch: %w", err)
	}
	p.Mode = db.ModeMenu
	p.CurrentQuestion, p.CurrentSource = q.Text, q.Source
	p.DiagnosisJSON, p.PitchJSON = string(rawD), string(rawP)
	if err := db.SavePlayer(g.db, p); err != nil {
		return err
	}
	score, err := db.AddScore(g.db, p.UserID, points, 1)
	if err != nil {
		return err
	}
	if _, err := db.RecordAnalysis(g.db, ingest.AnalysisOf("", ingest.Result{Question: q, Diagnosis: d, Pitch: pt})); err != nil {
		g.logger.Warn("record own question", zap.Error(err))
	}
	reply(Reply{
		Text:    render.OwnQuestion(q.Text, d, pt, points, score),
		Buttons: column(btnNext, btnShowStats, btnMainMenu),
	})
	return nil
}

func (g *Game) endGame(p db.Player, reply ReplyFunc) error {
	final := p.Score
	s, err := db.EndGame(g.db, p.UserID)
	if err != nil {
		return err
	}
	g.logger.Info("game over", zap.Int64("chat_id", p.UserID), zap.Int("score", final), zap.Int("best", s.BestScore))
	reply(Reply{
		Text:    render.GameOver(final, s),
		Buttons: column(btnStartGame, btnLeaderboard, btnMainMenu),
	})
	return nil
}

func (g *Game) stats(p db.Player, reply ReplyFunc) error {
	s, err := db.GetStats(g.db, p.UserID)
	if err != nil {
		return err
	}
	reply(Reply{Text: render.PlayerStats(p, s)})
	return nil
}

func (g *Game) leaderboard(reply ReplyFunc) error {
	top, err := db.Leaderboard(g.db, 10)
	if err != nil {
		return err
	}
	reply(Reply{Text: render.Leaderboard(top), Buttons: column(btnStartGame)})
	return nil
}

// analyse runs a fresh random question through the whole pipeline for the
// rofl family of commands.
func (g *Game) analyse(ctx context.Context) (questions.Question, pain.Diagnosis, pitch.Pitch) {
	q := g.source.Random(ctx)
	d := pain.Classify(q.Text)
	return q, d, g.gen.Format(d)
}

func roflButtons(more Button) [][]Button {
	return column(more, btnPlay, btnShowStats)
}

func (g *Game) rofl(ctx context.Context, reply ReplyFunc) {
	q, d, p := g.analyse(ctx)
	reply(Reply{Text: render.Rofl(q, d, p, render.Rate(p, g.gen)), Buttons: roflButtons(btnMoreRofl)})
}

func (g *Game) bazar(ctx context.Context, reply ReplyFunc) {
	q, d, p := g.analyse(ctx)
	ipo := render.BazarIPO[g.gen.Intn(len(render.BazarIPO))]
	reply(Reply{Text: render.Bazar(q, d, p, ipo), Buttons: roflButtons(btnMoreBazar)})
}

func (g *Game) shiza(ctx context.Context, reply ReplyFunc) {
	q, d, p := g.analyse(ctx)
	ratio := 80 + g.gen.Intn(41)
	ipo := render.ShizaIPO[g.gen.Intn(len(render.ShizaIPO))]
	reply(Reply{Text: render.Shiza(q, d, p, ratio, ipo), Buttons: roflButtons(btnMoreShiza)})
}

func (g *Game) vazshe(ctx context.Context, reply ReplyFunc) {
	q, d, p := g.analyse(ctx)
	ratio := 50 + g.gen.Intn(151)
	reply(Reply{Text: render.Vazshe(q, d, p, render.Rate(p, g.gen), ratio), Buttons: roflButtons(btnMoreVazshe)})
}

func (g *Game) demo(ctx context.Context, reply ReplyFunc) error {
	reply(Reply{Text: fmt.Sprintf("🎭 Запускаю демонстрацию %d рофло-вопросов...\n\nЭто займет несколько секунд! ⏳", g.DemoSize)})

	qs := g.source.Multiple(ctx, g.DemoSize)
	ig := *g.Ingester
	ig.OnProgress = func(current, total int) {
		reply(Reply{Text: render.DemoProgress(current, total)})
	}
	s, err := ig.Ingest(ctx, qs)
	if err != nil {
		return fmt.Errorf("demo run: %w", err)
	}
	reply(Reply{
		Text: render.DemoSummary(s),
		Buttons: column(
			btnMoreRofl,
			Button{"🗣️ Базар", CbMoreBazar},
			Button{"🧘 Шиза", CbMoreShiza},
			Button{"🤔 Ваще", CbMoreVazshe},
			btnPlay,
			btnShowStats,
		),
	})
	return nil
}

func clearRound(p *db.Player) {
	p.CurrentQuestion, p.CurrentSource = "", ""
	p.DiagnosisJSON, p.PitchJSON = "", ""
}
