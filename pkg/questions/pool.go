package questions

var categoryOrder = []string{"любовь", "работа", "здоровье", "образование", "технологии", "путешествия"}

// gameCategories maps a game category to the keywords a scraped question must mention.
var gameCategories = map[string][]string{
	"любовь":      {"отношения", "любовь", "брак", "семья", "свидание", "развод", "измена", "ревность"},
	"работа":      {"карьера", "работа", "бизнес", "деньги", "зарплата", "начальник", "коллеги", "увольнение"},
	"здоровье":    {"здоровье", "болезнь", "врач", "лечение", "диета", "спорт", "похудение", "курение"},
	"образование": {"учеба", "экзамен", "школа", "университет", "знания", "домашка", "учитель", "оценки"},
	"технологии":  {"компьютер", "интернет", "смартфон", "программа", "гаджет", "соцсети", "игры", "вирусы"},
	"путешествия": {"путешествие", "отпуск", "поездка", "страна", "город", "билеты", "отель", "чемодан"},
}

var rofloQuestions = []string{
	"Почему мой холодильник не понимает мои эмоции?",
	"Как заставить тостер делать тосты с настроением?",
	"Почему интернет не работает, когда я хочу посмотреть мемы?",
	"Как объяснить коту, что он не может быть программистом?",
	"Почему мой телефон злится, когда я его роняю?",
	"Как заставить стиральную машину стирать мои проблемы?",
	"Почему микроволновка не может готовить счастье?",
	"Как научить телевизор показывать только хорошие новости?",
	"Почему мой ноутбук грустит по вечерам?",
	"Как заставить принтер печатать деньги?",
	"Почему мой смартфон завидует айфону?",
	"Как объяснить навигатору, что я хочу заблудиться?",
	"Почему мой планшет не может заменить психолога?",
	"Как заставить кофемашину варить кофе счастья?",
	"Почему мой компьютер не понимает сарказм?",
	"Как научить робота-пылесоса убирать мои мысли?",
	"Почему мои смарт-часы не могут остановить время?",
	"Как заставить умный дом понимать мои эмоции?",
	"Почему мой ноутбук не может генерировать мемы?",
	"Как объяснить ассистенту, что я хочу быть ленивым?",
	"Почему мой телефон не может предсказывать будущее?",
	"Как заставить умную колонку петь мои любимые песни?",
	"Почему мой планшет не может читать мысли?",
	"Как научить смарт-часы понимать мои мечты?",
	"Почему мой компьютер не может создать идеальный мем?",
	"Как заставить умный холодильник готовить счастье?",
	"Почему мой смартфон не может лечить депрессию?",
	"Как объяснить роботу, что я хочу быть человеком?",
	"Как заставить умную лампу светить радостью?",
	"Почему мой планшет не может предсказывать погоду?",
	"Как заставить умную кофемашину варить вдохновение?",
	"Почему мой телефон не может читать эмоции?",
	"Как объяснить ассистенту, что я хочу быть гением?",
	"Почему мой ноутбук не может генерировать счастье?",
	"Как заставить умный дом понимать мои желания?",
	"Почему мой планшет не может создавать искусство?",
	"Как научить смарт-часы понимать мои цели?",
	"Почему мой компьютер не может предсказывать успех?",
	"Как объяснить роботу, что я хочу быть творцом?",
	"Почему мой ноутбук не может создавать будущее?",
	"Как заставить умный холодильник готовить мечты?",
	"Почему мой планшет не может читать судьбу?",
	"Как научить смарт-часы понимать мои амбиции?",
	"Почему мой компьютер не может генерировать гениальность?",
	"Как заставить умную лампу светить вдохновением?",
	"Почему мой телефон не может предсказывать счастье?",
	"Как объяснить ассистенту, что я хочу быть пророком?",
}

// RofloPoolSize is the number of built-in questions.
func RofloPoolSize() int { return len(rofloQuestions) }
