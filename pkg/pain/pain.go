// Package pain classifies short Russian questions into pain categories and
// emotions by plain substring matching against static lexicons.
package pain

import "strings"

// UndeterminedNeed is the summary of a question that matched nothing.
const UndeterminedNeed = "неопределенная потребность в помощи"

// Diagnosis is the result of classifying one question. It is a value: every
// call to Classify returns a fresh one.
type Diagnosis struct {
	Text            string       `json:"text"`
	Categories      []Category   `json:"categories"`
	Emotions        []Emotion    `json:"emotions"`
	Urgency         Level        `json:"urgency"`
	Severity        Level        `json:"severity"`
	QuestionType    QuestionType `json:"question_type"`
	Summary         string       `json:"summary"`
	Confidence      float64      `json:"confidence"`
	Recommendations []string     `json:"recommendations"`
}

// HasCategory reports whether c was matched.
func (d Diagnosis) HasCategory(c Category) bool {
	for _, got := range d.Categories {
		if got == c {
			return true
		}
	}
	return false
}

// HasEmotion reports whether e was matched.
func (d Diagnosis) HasEmotion(e Emotion) bool {
	for _, got := range d.Emotions {
		if got == e {
			return true
		}
	}
	return false
}

// Classify diagnoses text. It never fails: text that matches nothing yields an
// empty diagnosis with default levels and the lowest confidence.
func Classify(text string) Diagnosis {
	lower := strings.ToLower(text)

	categories := matchCategories(lower)
	emotions := matchEmotions(lower)
	urgency := urgencyOf(lower)
	severity := severityOf(lower)
	qtype := questionTypeOf(lower)

	return Diagnosis{
		Text:            text,
		Categories:      categories,
		Emotions:        emotions,
		Urgency:         urgency,
		Severity:        severity,
		QuestionType:    qtype,
		Summary:         summarize(categories, emotions, urgency, severity),
		Confidence:      Confidence(len(categories) + len(emotions)),
		Recommendations: recommend(categories, qtype),
	}
}

// Confidence maps the number of lexicon hits to a coarse score.
func Confidence(matches int) float64 {
	switch {
	case matches <= 0:
		return 0.3
	case matches <= 2:
		return 0.6
	case matches <= 4:
		return 0.8
	default:
		return 0.95
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func matchCategories(text string) []Category {
	found := []Category{}
	for _, e := range categoryLexicon {
		if containsAny(text, e.triggers) {
			found = append(found, e.name)
		}
	}
	return found
}

func matchEmotions(text string) []Emotion {
	found := []Emotion{}
	for _, e := range emotionLexicon {
		if containsAny(text, e.triggers) {
			found = append(found, e.name)
		}
	}
	return found
}

func urgencyOf(text string) Level {
	switch {
	case containsAny(text, urgencyMarkers):
		return LevelHigh
	case containsAny(text, stalenessMarkers):
		return LevelLow
	default:
		return LevelMedium
	}
}

func severityOf(text string) Level {
	switch {
	case containsAny(text, importanceMarkers), containsAny(text, impactMarkers):
		return LevelHigh
	case containsAny(text, hedgingMarkers):
		return LevelLow
	default:
		return LevelMedium
	}
}

func questionTypeOf(text string) QuestionType {
	for _, r := range questionRules {
		if containsAny(text, r.phrases) {
			return r.kind
		}
	}
	return QuestionGeneral
}

func summarize(categories []Category, emotions []Emotion, urgency, severity Level) string {
	if len(categories) == 0 && len(emotions) == 0 {
		return UndeterminedNeed
	}

	var parts []string
	if len(categories) > 0 {
		labels := make([]string, len(categories))
		for i, c := range categories {
			labels[i] = c.Label()
		}
		parts = append(parts, "проблема с "+strings.Join(labels, ", "))
	}
	if len(emotions) > 0 {
		labels := make([]string, len(emotions))
		for i, e := range emotions {
			labels[i] = e.Label()
		}
		parts = append(parts, "эмоциональное состояние: "+strings.Join(labels, ", "))
	}
	if urgency == LevelHigh {
		parts = append(parts, "высокая срочность решения")
	}
	if severity == LevelHigh {
		parts = append(parts, "критическая важность")
	}
	return strings.Join(parts, ". ")
}

func recommend(categories []Category, qtype QuestionType) []string {
	var out []string
	for _, c := range categories {
		out = append(out, recommendationTable[c]...)
	}
	if qtype == QuestionHelp {
		out = append(out, helpRecommendations...)
	}
	if len(out) == 0 {
		out = append(out, fallbackRecommendations...)
	}
	return out
}
