package questions

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const selectorPage = `<html><body>
<div class="question__text">Как научиться готовить борщ дома?</div>
<div class="question__text">Коротко</div>
<div class="question__text">Вчера был отличный день без вопросов совсем</div>
<div class="question-title">Почему кошки    любят коробки?</div>
</body></html>`

const linkPage = `<html><body>
<nav><a href="/">Главная</a></nav>
<ul>
<li><a href="/q/1">Подскажите, где найти хорошего стоматолога?</a></li>
<li><a href="/q/2">Как помириться с девушкой, если отношения рушатся?</a></li>
<li><a href="/q/3">Новости спорта и погоды на этой неделе</a></li>
</ul>
</body></html>`

func TestExtractUsesFirstMatchingSelector(t *testing.T) {
	got := Extract([]byte(selectorPage), nil)
	assert.Equal(t, []string{"Как научиться готовить борщ дома?"}, got)
}

func TestExtractFallsBackToLinks(t *testing.T) {
	got := Extract([]byte(linkPage), nil)
	assert.Equal(t, []string{
		"Подскажите, где найти хорошего стоматолога?",
		"Как помириться с девушкой, если отношения рушатся?",
	}, got)
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	page := `<div class="question-title">Почему   кошки
		<b>любят</b> коробки?</div>`
	assert.Equal(t, []string{"Почему кошки любят коробки?"}, Extract([]byte(page), nil))
}

func TestExtractFallsBackToArticle(t *testing.T) {
	para := strings.Repeat("Это длинный абзац о жизни, работе и мечтах, который нужен для извлечения текста. ", 8)
	page := `<html><head><meta charset="utf-8"><title>Статья</title></head><body>
<article>
<h1>Размышления</h1>
<p>` + para + `</p>
<p>Иногда я думаю о будущем. Почему все так сложно в этом мире? ` + para + `</p>
<p>` + para + `</p>
</article>
</body></html>`

	u, _ := url.Parse("http://localhost/article")
	got := Extract([]byte(page), u)
	assert.Contains(t, got, "Почему все так сложно в этом мире?")
}

func TestExtractGarbage(t *testing.T) {
	assert.Empty(t, Extract([]byte("not html at all"), nil))
	assert.Empty(t, Extract(nil, nil))
}

func TestExtractByCategory(t *testing.T) {
	got := ExtractByCategory([]byte(linkPage), "любовь")
	assert.Equal(t, []string{"Как помириться с девушкой, если отношения рушатся?"}, got)

	assert.Empty(t, ExtractByCategory([]byte(linkPage), "путешествия"))
	assert.Nil(t, ExtractByCategory([]byte(linkPage), "нет такой"))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Привет. Как дела? Отлично!\nНу и хорошо")
	assert.Equal(t, []string{"Привет.", " Как дела?", " Отлично!", "\n", "Ну и хорошо"}, got)
}
