// Package render turns diagnoses, pitches and scores into the Russian text
// shown by the console and the chat bots. Output is plain text with emoji; no
// markup, so every front end can send it as is.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/magistr/pkg/db"
	"github.com/japaniel/magistr/pkg/pain"
	"github.com/japaniel/magistr/pkg/pitch"
	"github.com/japaniel/magistr/pkg/questions"
)

// Rule separates console sections.
var Rule = strings.Repeat("=", 60)

// ThinRule separates steps inside a section.
var ThinRule = strings.Repeat("-", 60)

// NoEmotions stands in for an empty emotion list.
const NoEmotions = "не определены"

// Step guards shared by the console and the bots.
const (
	MsgNeedQuestion = "❌ Сначала получите вопрос!"
	MsgNeedAnalysis = "❌ Сначала проанализируйте боль!"
	MsgNeedFull     = "❌ Сначала выполните полный анализ!"
	MsgNeedStart    = "❌ Сначала используйте /start"
)

// Counters are the per-process totals shown by the statistics screen.
type Counters struct {
	QuestionsProcessed int
	PainAnalyses       int
	SolutionsGenerated int
}

// Question renders a question with its source.
func Question(q questions.Question) string {
	return fmt.Sprintf("❓ Вопрос: %s\n📍 Источник: %s", q.Text, q.Source)
}

// Emotions joins the emotion labels, or returns NoEmotions.
func Emotions(d pain.Diagnosis) string {
	if len(d.Emotions) == 0 {
		return NoEmotions
	}
	labels := make([]string, len(d.Emotions))
	for i, e := range d.Emotions {
		labels[i] = e.Label()
	}
	return strings.Join(labels, ", ")
}

// Percent formats a confidence as a whole percentage.
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Diagnosis renders the full analysis block.
func Diagnosis(d pain.Diagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💔 Основная боль: %s\n", d.Summary)
	fmt.Fprintf(&b, "📊 Уверенность: %s\n", Percent(d.Confidence))
	fmt.Fprintf(&b, "🎭 Эмоции: %s\n", Emotions(d))
	fmt.Fprintf(&b, "⚡ Срочность: %s\n", d.Urgency.Label())
	fmt.Fprintf(&b, "🚨 Серьезность: %s\n", d.Severity.Label())
	fmt.Fprintf(&b, "🎯 Тип вопроса: %s", d.QuestionType.Label())
	return b.String()
}

// Recommendations numbers the first n recommendations. It returns "" when
// there are none.
func Recommendations(recs []string, n int) string {
	if len(recs) == 0 || n <= 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("💡 Рекомендации:")
	for i, r := range recs[:min(n, len(recs))] {
		fmt.Fprintf(&b, "\n   %d. %s", i+1, r)
	}
	return b.String()
}

// Bullets lists the first n recommendations with bullets.
func Bullets(recs []string, n int) string {
	lines := make([]string, 0, n)
	for _, r := range recs[:min(max(n, 0), len(recs))] {
		lines = append(lines, "   • "+r)
	}
	return strings.Join(lines, "\n")
}

// Pitch renders the product block.
func Pitch(p pitch.Pitch) string {
	return fmt.Sprintf("🚀 %s\n💡 Решение: %s\n🎯 Решает боль: %s", p.Name, p.FullText, p.PainAddressed)
}

// Scores renders the three pitch scores.
func Scores(p pitch.Pitch) string {
	return fmt.Sprintf("🔥 Хайп: %d/10\n%s\n😂 Мемность: %d/100", p.HypeLevel, p.Viability, p.MemeScore)
}

// FullAnalysis is the closing report for one question.
func FullAnalysis(question string, d pain.Diagnosis, p pitch.Pitch) string {
	var b strings.Builder
	b.WriteString("🎯 ПОЛНЫЙ АНАЛИЗ МАГИСТРА:\n")
	b.WriteString(Rule + "\n")
	fmt.Fprintf(&b, "❓ Вопрос: %s\n", question)
	fmt.Fprintf(&b, "💔 Боль: %s\n", d.Summary)
	fmt.Fprintf(&b, "💡 SaaS-решение: %s\n", p.FullText)
	b.WriteString(Rule + "\n")
	b.WriteString("🎭 Уровень рофла: 10/10\n")
	b.WriteString("🚀 Готовность к инвестициям: 100%")
	return b.String()
}

// Statistics renders the process counters with the house jokes.
func Statistics(c Counters) string {
	var b strings.Builder
	b.WriteString("📊 СТАТИСТИКА ВОПРОСОВ МАГИСТРА:\n")
	fmt.Fprintf(&b, "🗿 Обработано вопросов: %d\n", c.QuestionsProcessed)
	fmt.Fprintf(&b, "🔥 Анализов боли: %d\n", c.PainAnalyses)
	fmt.Fprintf(&b, "💡 Сгенерировано решений: %d\n", c.SolutionsGenerated)
	b.WriteString(houseStats)
	return b.String()
}

const houseStats = `🎭 Уровень смеха в чате: 9/10
📱 Мемов в Telegram: ∞
💰 Инвесторов, спросивших 'а можно реально?': 0 (пока)
🚀 Готовность к IPO: 99.9%`

// PlayerStats renders a player's current game and lifetime stats.
func PlayerStats(p db.Player, s db.Stats) string {
	return fmt.Sprintf(`📊 Статистика игрока %s

🎮 Текущая игра:
   Счет: %d очков
   Вопросов задано: %d

🏆 Общая статистика:
   Игр сыграно: %d
   Общий счет: %d очков
   Лучший результат: %d очков

🎯 Достижения:
   %s`, p.UserName, p.Score, p.QuestionsAsked, s.GamesPlayed, s.TotalScore, s.BestScore, db.Achievement(s.BestScore))
}

// Leaderboard renders the top players.
func Leaderboard(top []db.Stats) string {
	if len(top) == 0 {
		return "🏆 Таблица лидеров пока пуста. Сыграй первую игру!"
	}
	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 Таблица лидеров:\n")
	for i, s := range top {
		place := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			place = medals[i]
		}
		fmt.Fprintf(&b, "\n%s %s: лучший результат %d, всего %d очков, игр %d", place, s.UserName, s.BestScore, s.TotalScore, s.GamesPlayed)
	}
	return b.String()
}

// Truncate cuts s to n runes and marks the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
