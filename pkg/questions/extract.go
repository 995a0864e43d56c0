package questions

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// selectors are tried in order; the first one that yields questions wins.
// They follow the Q&A site's markup and are expected to go stale.
var selectors = []string{
	".question__text",
	".question-title",
	".question",
	"h2 a",
	".qa-item__title",
	".question-item__title",
	".question-item__text",
	".qa-question__title",
	".qa-question__text",
	"h3 a",
	"h4 a",
	".title a",
	".text a",
	`a[href*="question"]`,
	`a[href*="answer"]`,
}

var (
	compiledSelectors = compileSelectors(selectors)
	linkSelector      = cascadia.MustCompile("a[href]")

	questionWords     = []string{"как", "что", "где", "когда", "почему", "зачем", "можно ли", "стоит ли"}
	linkQuestionWords = append(append([]string(nil), questionWords...), "помогите", "подскажите")

	// reNoise strips blocks whose text readability would otherwise keep.
	reNoise = regexp.MustCompile(`(?si)<(script|style|noscript)\b[^>]*>.*?</(script|style|noscript)>`)
)

const (
	perSelectorLimit = 15
	linkLimit        = 10
)

func compileSelectors(raw []string) []cascadia.Selector {
	out := make([]cascadia.Selector, 0, len(raw))
	for _, s := range raw {
		out = append(out, cascadia.MustCompile(s))
	}
	return out
}

// Extract finds question-like texts on a page. It tries the CSS selectors, then
// every link on the page, then the readable article text.
func Extract(page []byte, pageURL *url.URL) []string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	for _, sel := range compiledSelectors {
		nodes := sel.MatchAll(doc)
		if len(nodes) > perSelectorLimit {
			nodes = nodes[:perSelectorLimit]
		}
		var found []string
		for _, n := range nodes {
			text := nodeText(n)
			if withinRunes(text, 16, 199) && containsAny(strings.ToLower(text), questionWords) {
				found = append(found, text)
			}
		}
		if len(found) > 0 {
			return found
		}
	}

	if found := scanLinks(doc, linkQuestionWords); len(found) > 0 {
		return found
	}
	return fromArticle(page, pageURL)
}

// ExtractByCategory returns link texts that mention one of the category's keywords.
func ExtractByCategory(page []byte, category string) []string {
	keywords, ok := gameCategories[category]
	if !ok {
		return nil
	}
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}
	return scanLinks(doc, keywords)
}

func scanLinks(doc *html.Node, words []string) []string {
	var found []string
	for _, n := range linkSelector.MatchAll(doc) {
		text := nodeText(n)
		if withinRunes(text, 21, 149) && containsAny(strings.ToLower(text), words) {
			found = append(found, text)
			if len(found) >= linkLimit {
				break
			}
		}
	}
	return found
}

// fromArticle runs readability over the page and keeps the sentences that end
// with a question mark.
func fromArticle(page []byte, pageURL *url.URL) []string {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(reNoise.ReplaceAll(page, nil)), pageURL)
	if err != nil {
		return nil
	}

	var found []string
	for _, s := range splitSentences(article.TextContent) {
		s = strings.Join(strings.Fields(s), " ")
		if strings.HasSuffix(s, "?") && withinRunes(s, 16, 199) {
			found = append(found, s)
			if len(found) >= linkLimit {
				break
			}
		}
	}
	return found
}

// splitSentences cuts text after sentence-ending punctuation and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '…' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// nodeText concatenates the text below n with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func withinRunes(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(s)
	return n >= lo && n <= hi
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
