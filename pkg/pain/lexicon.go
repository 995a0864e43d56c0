package pain

// Category is a pain category detected in a question.
type Category string

const (
	CategoryFear        Category = "fear"
	CategoryDespair     Category = "despair"
	CategoryLoneliness  Category = "loneliness"
	CategoryUncertainty Category = "uncertainty"
	CategoryPressure    Category = "pressure"
	CategoryComparison  Category = "comparison"
	CategoryGuilt       Category = "guilt"
	CategoryShame       Category = "shame"
	CategoryAnger       Category = "anger"
	CategoryEnvy        Category = "envy"
)

// Emotion is a felt emotion detected in a question.
type Emotion string

const (
	EmotionAnger      Emotion = "anger"
	EmotionSadness    Emotion = "sadness"
	EmotionAnxiety    Emotion = "anxiety"
	EmotionIrritation Emotion = "irritation"
	EmotionDelight    Emotion = "delight"
	EmotionHope       Emotion = "hope"
	EmotionLove       Emotion = "love"
	EmotionGratitude  Emotion = "gratitude"
)

// Level is used for both urgency and severity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// QuestionType is the intent of the question.
type QuestionType string

const (
	QuestionHelp         QuestionType = "help-request"
	QuestionCause        QuestionType = "cause-seeking"
	QuestionConfirmation QuestionType = "confirmation-seeking"
	QuestionOpinion      QuestionType = "opinion-seeking"
	QuestionGeneral      QuestionType = "general"
)

type categoryEntry struct {
	name     Category
	label    string
	triggers []string
}

type emotionEntry struct {
	name     Emotion
	label    string
	triggers []string
}

// categoryLexicon is in declaration order; that order is the output order of Classify.
var categoryLexicon = []categoryEntry{
	{CategoryFear, "страх", []string{"боюсь", "страшно", "пугает", "волнуюсь", "тревожно", "паника", "ужас", "кошмар"}},
	{CategoryDespair, "отчаяние", []string{"не могу", "не получается", "застрял", "безнадежно", "отчаялся", "сдался", "бессилен"}},
	{CategoryLoneliness, "одиночество", []string{"никто не понимает", "никто не поймет", "никто не поймёт", "один", "некому помочь", "одиноко", "покинутый", "заброшенный"}},
	{CategoryUncertainty, "неуверенность", []string{"сомневаюсь", "не знаю", "запутался", "не уверен", "колеблюсь", "не определился"}},
	{CategoryPressure, "давление", []string{"надо", "должен", "срочно", "дедлайн", "ожидания", "обязан", "вынужден"}},
	{CategoryComparison, "сравнение", []string{"хуже других", "отстаю", "не успеваю", "все лучше меня", "проигрываю", "не дотягиваю"}},
	{CategoryGuilt, "вина", []string{"виноват", "накосячил", "наделал дел", "провалил", "подвел", "ошибся"}},
	{CategoryShame, "стыд", []string{"стыдно", "неловко", "неудобно", "смущаюсь", "краснею", "скромничаю"}},
	{CategoryAnger, "гнев", []string{"злюсь", "бесит", "раздражает", "ненавижу", "в ярости", "в бешенстве"}},
	{CategoryEnvy, "зависть", []string{"завидую", "хочу как у других", "несправедливо", "почему у них есть", "не хватает"}},
}

// emotionLexicon shares some triggers with categoryLexicon on purpose:
// categories answer "what about", emotions answer "how does it feel".
var emotionLexicon = []emotionEntry{
	{EmotionAnger, "гнев", []string{"злюсь", "бесит", "раздражает", "ненавижу", "в ярости", "в бешенстве", "достало"}},
	{EmotionSadness, "грусть", []string{"грустно", "тоскливо", "печально", "уныло", "меланхолия", "депрессия"}},
	{EmotionAnxiety, "тревога", []string{"волнуюсь", "беспокоюсь", "тревожно", "паника", "стресс", "напряжение"}},
	{EmotionIrritation, "раздражение", []string{"надоело", "устал", "достало", "заело", "вымотался", "измотался"}},
	{EmotionDelight, "восторг", []string{"восторг", "восторженно", "восхищение", "восхищен", "в восторге"}},
	{EmotionHope, "надежда", []string{"надеюсь", "верю", "уверен", "оптимизм", "светлое будущее"}},
	{EmotionLove, "любовь", []string{"люблю", "любовь", "влюблен", "симпатия", "привязанность"}},
	{EmotionGratitude, "благодарность", []string{"спасибо", "благодарен", "ценю", "признателен", "обязан"}},
}

// Context markers feed the urgency and severity heuristics only.
var (
	urgencyMarkers    = []string{"срочно", "быстро", "немедленно", "сейчас", "сегодня", "завтра", "вчера"}
	importanceMarkers = []string{"важно", "критично", "жизненно", "смертельно", "необходимо"}
	impactMarkers     = []string{"влияет", "мешает", "мешает жить", "портит", "разрушает"}

	stalenessMarkers = []string{"вчера", "давно"}
	hedgingMarkers   = []string{"может быть", "возможно"}
)

type questionRule struct {
	kind    QuestionType
	phrases []string
}

// questionRules are checked in order; the first rule with a matching phrase wins.
var questionRules = []questionRule{
	{QuestionHelp, []string{"как", "что делать", "помогите", "подскажите", "помощь", "помоги"}},
	{QuestionCause, []string{"почему", "зачем", "откуда", "когда"}},
	{QuestionConfirmation, []string{"можно ли", "стоит ли", "правильно ли"}},
	{QuestionOpinion, []string{"что думаете", "ваше мнение", "как считаете"}},
}

var levelLabels = map[Level]string{
	LevelLow:    "низкий",
	LevelMedium: "средний",
	LevelHigh:   "высокий",
}

var questionLabels = map[QuestionType]string{
	QuestionHelp:         "просьба о помощи",
	QuestionCause:        "поиск причины",
	QuestionConfirmation: "поиск подтверждения",
	QuestionOpinion:      "поиск мнения",
	QuestionGeneral:      "общий вопрос",
}

// recommendationTable holds the canned advice per category, in no particular order;
// Classify emits blocks in category match order.
var recommendationTable = map[Category][]string{
	CategoryFear: {
		"Попробуйте техники дыхания и медитации",
		"Обратитесь к специалисту по тревожности",
	},
	CategoryLoneliness: {
		"Присоединитесь к сообществам по интересам",
		"Попробуйте новые хобби для знакомств",
	},
	CategoryUncertainty: {
		"Составьте план действий с конкретными шагами",
		"Начните с малых достижений",
	},
}

var (
	helpRecommendations = []string{
		"Не бойтесь просить о помощи у близких",
		"Обратитесь к профессионалам в данной области",
	}
	fallbackRecommendations = []string{
		"Попробуйте разбить проблему на части",
		"Ищите поддержку в сообществах",
	}
)

// Label returns the Russian display name of the category.
func (c Category) Label() string {
	for _, e := range categoryLexicon {
		if e.name == c {
			return e.label
		}
	}
	return string(c)
}

// Label returns the Russian display name of the emotion.
func (e Emotion) Label() string {
	for _, entry := range emotionLexicon {
		if entry.name == e {
			return entry.label
		}
	}
	return string(e)
}

func (l Level) Label() string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return string(l)
}

func (q QuestionType) Label() string {
	if s, ok := questionLabels[q]; ok {
		return s
	}
	return string(q)
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryLexicon))
	for i, e := range categoryLexicon {
		out[i] = e.name
	}
	return out
}

// Emotions returns every known emotion in declaration order.
func Emotions() []Emotion {
	out := make([]Emotion, len(emotionLexicon))
	for i, e := range emotionLexicon {
		out[i] = e.name
	}
	return out
}

// Triggers returns a copy of the trigger phrases of a category, or nil if unknown.
func Triggers(c Category) []string {
	for _, e := range categoryLexicon {
		if e.name == c {
			return append([]string(nil), e.triggers...)
		}
	}
	return nil
}
