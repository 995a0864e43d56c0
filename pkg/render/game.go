package render

import (
	"fmt"
	"strings"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/ingest"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
)

// Dice draws the flavour numbers that do not influence any score.
type Dice interface {
	Intn(n int) int
}

// RoflRating dresses a pitch's scores up as a startup rating.
type RoflRating struct {
	Stars        string
	Description  string
	Valuation    string
	IPOReadiness string
	ExitTime     string
	Quote        string
}

var exitTimes = []string{"завтра", "через неделю", "уже вчера", "после обеда", "к пятнице", "через один спринт"}

var magistrQuotes = []string{
	"Боль — это просто незакрытый рынок.",
	"Каждый вопрос — это стартап, который еще не поднял раунд.",
	"Если решение не мемное, это не решение.",
	"Инвесторы любят боль. Особенно чужую.",
	"Сначала хайп, потом продукт. Возможно.",
	"Нет проблемы, которую нельзя продать по подписке.",
}

// Rate builds the rating of p. Stars and description follow the hype level.
func Rate(p pitch.Pitch, dice Dice) RoflRating {
	stars := max(p.HypeLevel-5, 1)
	var desc string
	switch {
	case p.HypeLevel >= 10:
		desc = "Легендарный рофл"
	case p.HypeLevel >= 9:
		desc = "Эпичный рофл"
	case p.HypeLevel >= 7:
		desc = "Годный рофл"
	default:
		desc = "Лёгкий рофл"
	}
	return RoflRating{
		Stars:        strings.Repeat("⭐", stars),
		Description:  desc,
		Valuation:    fmt.Sprintf("$%d млн", p.HypeLevel*p.MemeScore/5),
		IPOReadiness: p.Viability,
		ExitTime:     exitTimes[dice.Intn(len(exitTimes))],
		Quote:        magistrQuotes[dice.Intn(len(magistrQuotes))],
	}
}

func (r RoflRating) block() string {
	return fmt.Sprintf(`%s Уровень рофла: %s
💰 Оценка стартапа: %s
🚀 Готовность к IPO: %s
⏰ Время до выхода: %s`, r.Stars, r.Description, r.Valuation, r.IPOReadiness, r.ExitTime)
}

// GameWelcome greets a player after /start.
func GameWelcome(p db.Player, s db.Stats) string {
	return fmt.Sprintf(`🎮 Добро пожаловать в игру "Вопрос Магистру"!

Привет, %s! 👋

🎯 Цель игры: задавай вопросы, получай анализ боли и SaaS-решения!

📊 Твой счет: %d очков
🏆 Лучший результат: %d очков

Доступные команды:
/play - 🎮 Начать игру
/ask - ❓ Задать свой вопрос
/category - 🎯 Вопрос по категории
/stats - 📊 Статистика
/help - ❓ Помощь`, p.UserName, p.Score, s.BestScore)
}

// ClassicWelcome is the menu text of the classic bot.
const ClassicWelcome = `🤖 Вопрос Магистру — автоматическая фабрика боли и решений!

Система анализирует случайные вопросы и генерирует SaaS-решения в мемном стиле.

Выберите действие:`

// ClassicStatistics is the classic bot's statistics screen.
const ClassicStatistics = "📊 Статистика Вопросов Магистра:\n\n" + houseStats + "\n\nДанные обновляются в реальном времени"

// Help lists the game rules and commands.
const Help = `❓ Помощь по игре "Вопрос Магистру"

🎮 Как играть:
1. Используй /play для начала игры
2. Анализируй вопросы и получай очки
3. Задавай свои вопросы командой /ask
4. Выбирай категории командой /category

🎯 Система очков:
   • Анализ боли: +10 очков
   • SaaS-решение: +5 очков
   • Свой вопрос: +10 очков, +5 за точный анализ, +3 за мемное решение

🏆 Достижения:
   • Новичок: 0-49 очков
   • Знаток: 50-99 очков
   • Мастер боли: 100+ очков

📱 Основные команды:
   /start - Главное меню
   /play - Начать игру
   /ask - Задать вопрос
   /category - По категории
   /stats - Статистика
   /help - Эта помощь

🎭 РОФЛО-команды:
   /rofl - 🎭 Рофло вопрос
   /bazar - 🗣️ Иу это базаришь да?
   /shiza - 🧘 Креативное шиза
   /vazshe - 🤔 Полный рофло-анализ
   /demo50 - 🚀 Демо 50 рофло-вопросов

🎭 Цель: стань лучшим аналитиком боли и генератором SaaS-решений!`

// Round shows the question of a new game round.
func Round(number int, q questions.Question) string {
	return fmt.Sprintf("🎮 Раунд %d\n\n%s\n\nЧто делаем дальше?", number, Question(q))
}

// GameAnalysis is the reply to the analysis step of a round.
func GameAnalysis(question string, d pain.Diagnosis, points, score int) string {
	return fmt.Sprintf(`🧠 Анализ боли:

❓ Вопрос: %s

%s

💡 Рекомендации:
%s

🎯 Получено очков: +%d
🏆 Общий счет: %d

Теперь генерируем SaaS-решение!`, question, Diagnosis(d), Bullets(d.Recommendations, 2), points, score)
}

// GamePitch is the reply to the pitch step of a round.
func GamePitch(p pitch.Pitch, points, score, asked int) string {
	return fmt.Sprintf(`💡 SaaS-решение:

🚀 %s

%s

🎯 Решает боль: %s

🎯 Получено очков: +%d
🏆 Общий счет: %d
📊 Вопросов в игре: %d

Отличная работа! Продолжаем игру?`, p.Name, p.FullText, p.PainAddressed, points, score, asked)
}

// OwnQuestion is the reply to a question the player typed.
func OwnQuestion(question string, d pain.Diagnosis, p pitch.Pitch, points, score int) string {
	return fmt.Sprintf(`❓ Твой вопрос: %s

🧠 Анализ боли:
%s

💡 SaaS-решение:
🚀 %s
%s

💡 Рекомендации:
%s

🎯 Получено очков: +%d
🏆 Общий счет: %d`, question, Diagnosis(d), p.Name, p.FullText, Bullets(d.Recommendations, 3), points, score)
}

// GameOver closes a game.
func GameOver(finalScore int, s db.Stats) string {
	return fmt.Sprintf(`🏁 Игра завершена!

🎯 Итоговый счет: %d очков
🏆 Лучший результат: %d очков
🎮 Игр сыграно: %d

%s`, finalScore, s.BestScore, s.GamesPlayed, db.Achievement(s.BestScore))
}

// Rofl renders the /rofl reply.
func Rofl(q questions.Question, d pain.Diagnosis, p pitch.Pitch, r RoflRating) string {
	return fmt.Sprintf(`🎭 РОФЛО-ВОПРОС МАГИСТРА:

%s

💔 Анализ боли (рофло-стиль):
   🚨 Основная боль: %s
   🎭 Эмоции: %s
   ⚡ Срочность: %s
   🚨 Серьезность: %s

💡 РОФЛО-SaaS-решение:
   🚀 %s
   %s

🎯 РОФЛО-рейтинг:
%s

🎭 Магистр сказал: %s`, Question(q), d.Summary, Emotions(d), d.Urgency.Label(), d.Severity.Label(),
		p.Name, p.FullText, r.block(), r.Quote)
}

// Bazar renders the shouting /bazar reply.
func Bazar(q questions.Question, d pain.Diagnosis, p pitch.Pitch, ipoIn string) string {
	return fmt.Sprintf(`🗣️ ИУ ЭТО БАЗАРИШЬ ДА?

❓ Вопрос: %s

💥 АГРЕССИВНЫЙ АНАЛИЗ:
   🚨 БОЛЬ: %s
   😤 ЭМОЦИИ: %s
   ⚡ СРОЧНОСТЬ: %s
   🚨 СЕРЬЕЗНОСТЬ: %s

💡 БАЗАР-РЕШЕНИЕ:
   🚀 %s!!!
   РЕШАЕТ %s РАЗ И НАВСЕГДА

🎯 БАЗАР-СТАТИСТИКА:
   💪 Уровень базара: %s
   🗣️ Готовность к базару: 100%%
   🚀 IPO через: %s`, q.Text,
		strings.ToUpper(d.Summary), strings.ToUpper(Emotions(d)),
		strings.ToUpper(d.Urgency.Label()), strings.ToUpper(d.Severity.Label()),
		strings.ToUpper(p.Name), strings.ToUpper(p.PainAddressed), bazarLevel(p.MemeScore), ipoIn)
}

func bazarLevel(meme int) string {
	switch {
	case meme >= 90:
		return "МАКСИМАЛЬНЫЙ"
	case meme >= 70:
		return "ВЫСОКИЙ"
	default:
		return "СРЕДНИЙ"
	}
}

// BazarIPO and ShizaIPO are the "IPO in" punchlines of the two modes.
var (
	BazarIPO = []string{"завтра", "через неделю", "уже вчера"}
	ShizaIPO = []string{"когда-нибудь", "в параллельной вселенной", "уже произошло"}
)

// Shiza renders the creative /shiza reply. ratio is the made-up percentage.
func Shiza(q questions.Question, d pain.Diagnosis, p pitch.Pitch, ratio int, ipoIn string) string {
	return fmt.Sprintf(`🧘 КРЕАТИВНОЕ ШИЗА:

❓ Вопрос: %s

🧠 КРЕАТИВНЫЙ АНАЛИЗ:
   💫 БОЛЬ: %s
   🌈 ЭМОЦИИ: %s
   ✨ СРОЧНОСТЬ: %s
   🌟 СЕРЬЕЗНОСТЬ: %s

💡 КРЕАТИВНОЕ ШИЗА-РЕШЕНИЕ:
   🚀 %s
   %s

🎨 КРЕАТИВНОСТЬ:
   🌈 Уровень креатива: %s
   🧘 Шиза-коэффициент: %d%%
   💫 Готовность к креативу: Бесконечность%%
   🚀 IPO через: %s`, q.Text, d.Summary, Emotions(d), d.Urgency.Label(), d.Severity.Label(),
		p.Name, p.FullText, creativity(d), ratio, ipoIn)
}

func creativity(d pain.Diagnosis) string {
	switch n := len(d.Categories) + len(d.Emotions); {
	case n >= 4:
		return "космический"
	case n >= 2:
		return "высокий"
	default:
		return "базовый"
	}
}

// Vazshe renders the complete /vazshe report. ratio is the made-up percentage.
func Vazshe(q questions.Question, d pain.Diagnosis, p pitch.Pitch, r RoflRating, ratio int) string {
	return fmt.Sprintf(`🤔 ВАЩЕ ПОЛНЫЙ РОФЛО-АНАЛИЗ:

%s

🧠 АНАЛИЗ БОЛИ:
%s

💡 SaaS-РЕШЕНИЕ:
   🚀 %s
   %s
   🎯 Решает боль: %s

🎭 РОФЛО-СТАТИСТИКА:
%s
🎯 Коэффициент рофла: %d%%

💡 Рекомендации:
%s

🎭 Магистр сказал: %s`, Question(q), Diagnosis(d), p.Name, p.FullText, p.PainAddressed,
		r.block(), ratio, Bullets(d.Recommendations, 3), r.Quote)
}

// DemoProgress reports a demo run in flight.
func DemoProgress(current, total int) string {
	return fmt.Sprintf("🎯 Обработано вопросов: %d/%d\n🚀 Продолжаем анализ...", current, total)
}

// DemoSummary renders the result of a batch run.
func DemoSummary(s ingest.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎭 ДЕМОНСТРАЦИЯ %d РОФЛО-ВОПРОСОВ ЗАВЕРШЕНА!\n\n", s.Total)
	b.WriteString("📊 Общая статистика:\n")
	fmt.Fprintf(&b, "   • Всего вопросов: %d\n", s.Total)
	fmt.Fprintf(&b, "   • Рофло-вопросы: %d\n", s.Roflo)
	fmt.Fprintf(&b, "   • Реальные вопросы: %d\n", s.Real)
	fmt.Fprintf(&b, "   • Средняя уверенность: %.1f%%\n", s.AvgConfidence*100)
	fmt.Fprintf(&b, "   • Средний хайп: %.1f/10\n", s.AvgHype)

	if len(s.Top) > 0 {
		fmt.Fprintf(&b, "\n🏆 ТОП-%d самых рофло-решений:\n", len(s.Top))
		for i, r := range s.Top {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Pitch.Name)
			fmt.Fprintf(&b, "   ❓ Вопрос: %s\n", Truncate(r.Question.Text, 50))
			fmt.Fprintf(&b, "   💔 Боль: %s\n", r.Diagnosis.Summary)
			fmt.Fprintf(&b, "   🔥 Хайп: %d/10, %s\n", r.Pitch.HypeLevel, r.Pitch.Viability)
		}
	}

	b.WriteString(`
🎯 Рекомендации:
   • Используй /rofl для случайных рофло-вопросов
   • Команда /bazar для агрессивного анализа
   • /shiza для креативного шиза
   • /vazshe для полного рофло-анализа
`)
	fmt.Fprintf(&b, "\n🚀 Готов к IPO: %d решений!", s.IPOReady)
	return b.String()
}
