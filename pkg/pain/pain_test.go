package pain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHelpRequestWithFear(t *testing.T) {
	d := Classify("Я боюсь, что никто не поймет меня, и мне срочно нужна помощь")

	assert.True(t, d.HasCategory(CategoryFear))
	assert.True(t, d.HasCategory(CategoryLoneliness))
	assert.Equal(t, LevelHigh, d.Urgency)
	assert.Equal(t, QuestionHelp, d.QuestionType)

	want := []Category{CategoryFear, CategoryLoneliness, CategoryPressure}
	if diff := cmp.Diff(want, d.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, d.Emotions)
	assert.Equal(t, 0.8, d.Confidence)
	assert.Equal(t, LevelMedium, d.Severity)

	wantRecs := []string{
		"Попробуйте техники дыхания и медитации",
		"Обратитесь к специалисту по тревожности",
		"Присоединитесь к сообществам по интересам",
		"Попробуйте новые хобби для знакомств",
		"Не бойтесь просить о помощи у близких",
		"Обратитесь к профессионалам в данной области",
	}
	if diff := cmp.Diff(wantRecs, d.Recommendations); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyEmpty(t *testing.T) {
	d := Classify("")

	assert.Empty(t, d.Categories)
	assert.Empty(t, d.Emotions)
	assert.Equal(t, LevelMedium, d.Urgency)
	assert.Equal(t, LevelMedium, d.Severity)
	assert.Equal(t, QuestionGeneral, d.QuestionType)
	assert.Equal(t, 0.3, d.Confidence)
	assert.Equal(t, UndeterminedNeed, d.Summary)
	assert.Equal(t, []string{
		"Попробуйте разбить проблему на части",
		"Ищите поддержку в сообществах",
	}, d.Recommendations)
}

func TestClassifyNoTriggers(t *testing.T) {
	for _, text := range []string{"Hello world", "🙂🙂 ∑ 日本語", "12345"} {
		d := Classify(text)
		assert.Empty(t, d.Categories, text)
		assert.Empty(t, d.Emotions, text)
		assert.Equal(t, 0.3, d.Confidence, text)
		assert.Equal(t, UndeterminedNeed, d.Summary, text)
		assert.Equal(t, text, d.Text)
	}
}

func TestClassifyKeepsLexiconOrder(t *testing.T) {
	// anger is mentioned first in the text but declared after fear
	d := Classify("Меня бесит коллега, и я боюсь его")

	if diff := cmp.Diff([]Category{CategoryFear, CategoryAnger}, d.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Emotion{EmotionAnger}, d.Emotions); diff != "" {
		t.Errorf("emotions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, QuestionGeneral, d.QuestionType)
	assert.Equal(t, 0.8, d.Confidence)
}

func TestClassifyCountsEntryOnce(t *testing.T) {
	d := Classify("боюсь, страшно, ужас, кошмар, паника")
	assert.Equal(t, []Category{CategoryFear}, d.Categories)
	// паника is also an anxiety trigger
	assert.Equal(t, []Emotion{EmotionAnxiety}, d.Emotions)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	d := Classify("БОЮСЬ И НЕНАВИЖУ")
	assert.Equal(t, []Category{CategoryFear, CategoryAnger}, d.Categories)
}

func TestClassifySummary(t *testing.T) {
	d := Classify("Боюсь, не могу, одиноко, не знаю, срочно, грустно")

	want := "проблема с страх, отчаяние, одиночество, неуверенность, давление. " +
		"эмоциональное состояние: грусть. высокая срочность решения"
	assert.Equal(t, want, d.Summary)
	assert.Equal(t, 0.95, d.Confidence)
	assert.Len(t, d.Recommendations, 6)
}

func TestClassifySummaryCriticalSeverity(t *testing.T) {
	d := Classify("Это важно, мне грустно")
	assert.Equal(t, LevelHigh, d.Severity)
	assert.Equal(t, "эмоциональное состояние: грусть. критическая важность", d.Summary)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		text string
		want Level
	}{
		{"Нужно срочно решить", LevelHigh},
		{"Это случилось вчера", LevelHigh}, // вчера is also an urgency word, urgency wins
		{"Давно хотел спросить", LevelLow},
		{"Просто вопрос", LevelMedium},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text).Urgency)
		})
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		text string
		want Level
	}{
		{"Это очень важно", LevelHigh},
		{"Это мешает жить", LevelHigh},
		{"Возможно, это ерунда", LevelLow},
		{"Может быть, это важно", LevelHigh},
		{"Обычный текст", LevelMedium},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text).Severity)
		})
	}
}

func TestQuestionType(t *testing.T) {
	tests := []struct {
		text string
		want QuestionType
	}{
		{"Как жить дальше?", QuestionHelp},
		{"Как понять, почему так?", QuestionHelp},
		{"Почему небо голубое?", QuestionCause},
		{"Стоит ли менять работу?", QuestionConfirmation},
		{"Что думаете про этот план?", QuestionOpinion},
		{"Скажите, где купить хлеб", QuestionGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text).QuestionType)
		})
	}
}

func TestConfidenceBreakpoints(t *testing.T) {
	tests := []struct {
		matches int
		want    float64
	}{
		{-1, 0.3}, {0, 0.3}, {1, 0.6}, {2, 0.6}, {3, 0.8}, {4, 0.8}, {5, 0.95}, {12, 0.95},
	}
	prev := 0.0
	for _, tt := range tests {
		got := Confidence(tt.matches)
		assert.Equal(t, tt.want, got, "matches=%d", tt.matches)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "Почему меня все бесит и мне так грустно? Это важно!"
	a, b := Classify(text), Classify(text)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("classification differs between calls:\n%s", diff)
	}
}

func TestClassifyLargeInput(t *testing.T) {
	text := strings.Repeat("бла ", 250000) + "боюсь"
	d := Classify(text)
	assert.Equal(t, []Category{CategoryFear}, d.Categories)
}

func TestLexiconAccessorsReturnCopies(t *testing.T) {
	triggers := Triggers(CategoryFear)
	require.NotEmpty(t, triggers)
	triggers[0] = "changed"
	assert.Equal(t, "боюсь", Triggers(CategoryFear)[0])

	assert.Nil(t, Triggers(Category("unknown")))
	assert.Len(t, Categories(), 10)
	assert.Len(t, Emotions(), 8)
	assert.Equal(t, CategoryFear, Categories()[0])
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "страх", CategoryFear.Label())
	assert.Equal(t, "гнев", EmotionAnger.Label())
	assert.Equal(t, "высокий", LevelHigh.Label())
	assert.Equal(t, "просьба о помощи", QuestionHelp.Label())
	assert.Equal(t, "mystery", Category("mystery").Label())
}
