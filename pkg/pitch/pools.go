package pitch

import "github.com/japaniel/magistr/pkg/pain"

var (
	namePrefixes = []string{
		"AI", "Smart", "Cloud", "Digital", "Future", "Next", "Pro", "Ultra", "Max", "Elite",
		"Rofl", "Meme", "Pain", "Solution", "Helper", "Fixer", "Resolver", "Analyzer", "Generator",
	}

	nameSuffixes = []string{
		"AI", "Pro", "Plus", "Max", "Ultra", "Elite", "Premium", "Enterprise", "Cloud", "Hub",
		"Bot", "App", "Tool", "Platform", "System", "Service", "API", "SDK", "Framework",
	}

	// categoryNames lists dedicated product names. Categories missing here get a
	// composed prefix+suffix name.
	categoryNames = map[pain.Category][]string{
		pain.CategoryFear:        {"AI-терапевт страха", "Страх-анализатор Pro", "Безопасность-максимум"},
		pain.CategoryLoneliness:  {"Социальный хаб", "Друзья-генератор", "Одиночество-убийца"},
		pain.CategoryUncertainty: {"Уверенность-бустер", "Самооценка-максимайзер", "Смелость-инжектор"},
	}

	decorations = []string{
		"с котиками и единорогами", "с блокчейном и ИИ", "для холодильника с эмоциями",
		"с API для тостера", "для анализа боли через мемы", "с рофло-рейтингом",
		"для генерации SaaS из ничего", "с предсказанием IPO", "для лечения депрессии мемами",
		"с анализом конспирологии", "для создания невозможных API", "с мемной медитацией",
	}

	taglines = []string{
		"Через 3 месяца ты не узнаешь себя!",
		"Это изменит твою жизнь навсегда!",
		"Готов к IPO уже завтра!",
		"Никто не устоит перед этим!",
		"Абсолютное оружие против проблем!",
		"Мощнейшее решение в истории!",
		"Уничтожает боль навсегда!",
		"Решает все проблемы одним махом!",
		"Это боль уровня 'нужен API для всего'!",
		"Серьезная боль, но можно сделать SaaS!",
		"Есть потенциал для стартапа!",
		"Может быть, стоит подумать еще...",
		"Готовность к IPO: 99.9%!",
		"Время до выхода: 3 месяца!",
		"Оценка стартапа: $100M+!",
		"Коэффициент рофла: 200%!",
		"Уровень креатива: БЕЗУМНО КРЕАТИВНЫЙ!",
		"Шиза-коэффициент: 120%!",
		"Готовность к креативу: Бесконечность%!",
		"IPO через: когда-нибудь в параллельной вселенной!",
	}
)

// template renders a description. Templates that ignore the action/benefit
// pair are plain marketing filler.
type template func(name string, p actionPair) string

type actionPair struct {
	action  string
	benefit string
}

var descriptionTemplates = []template{
	func(n string, _ actionPair) string {
		return n + " — революционная платформа, которая использует передовые технологии ИИ для решения проблем"
	},
	func(n string, _ actionPair) string {
		return n + " — инновационное решение, объединяющее блокчейн, машинное обучение и облачные вычисления"
	},
	func(n string, _ actionPair) string {
		return n + " — прорывная система, которая анализирует боль и генерирует персонализированные решения"
	},
	func(n string, _ actionPair) string {
		return n + " — умная платформа будущего, где технологии встречаются с человеческими потребностями"
	},
	func(n string, _ actionPair) string {
		return n + " — креативное решение, которое превращает проблемы в возможности для роста"
	},
	func(n string, _ actionPair) string {
		return n + " — мощный инструмент, использующий big data для анализа и решения сложных задач"
	},
	func(n string, _ actionPair) string {
		return n + " — интуитивная система, которая понимает твои потребности лучше, чем ты сам"
	},
	func(n string, _ actionPair) string {
		return n + " — революционный подход к решению повседневных проблем через инновации"
	},
	func(n string, _ actionPair) string {
		return n + " — умная экосистема, которая адаптируется к твоему образу жизни"
	},
	func(n string, _ actionPair) string {
		return n + " — прорывная технология, которая делает невозможное возможным"
	},
	func(n string, p actionPair) string {
		return n + " " + p.action + ", чтобы " + p.benefit
	},
	func(n string, p actionPair) string {
		return "Встречайте " + n + ": сервис " + p.action + " и гарантирует, что " + p.benefit
	},
}

type sniffRule struct {
	category pain.Category
	pair     actionPair
}

// sniffRules are matched against the diagnosis summary in order.
var sniffRules = []sniffRule{
	{pain.CategoryFear, actionPair{"сканирует страхи нейросетью", "ты спал спокойно"}},
	{pain.CategoryLoneliness, actionPair{"находит друзей по алгоритму совместимости", "ты больше никогда не был один"}},
	{pain.CategoryUncertainty, actionPair{"принимает решения за тебя", "ты перестал сомневаться"}},
}

var defaultPair = actionPair{"решает любую проблему за 5 минут", "ты жил счастливо"}
