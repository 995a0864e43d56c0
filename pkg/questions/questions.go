// Package questions supplies question texts: scraped from a Q&A site on a
// best-effort basis, picked from a built-in pool, or typed by the user.
package questions

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Kind tells where a question came from.
type Kind string

const (
	KindReal     Kind = "real"
	KindRoflo    Kind = "roflo"
	KindCustom   Kind = "custom"
	KindCategory Kind = "category"
)

// Source labels shown to users.
const (
	SourceSite  = "Answer Mail.ru"
	SourceRoflo = "Рофло-генератор"
	SourceUser  = "Пользователь"
)

// RandomCategory in a category request means "any question".
const RandomCategory = "случайно"

// DefaultURLs are the pages scraped for real questions.
var DefaultURLs = []string{
	"https://otvet.mail.ru",
	"https://otvet.mail.ru/popular",
	"https://otvet.mail.ru/question",
	"https://otvet.mail.ru/answer",
}

// ErrNoQuestions is returned when no page yielded a matching question.
var ErrNoQuestions = errors.New("no questions found")

// Question is a text handed to the classifier together with its provenance.
type Question struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Kind     Kind   `json:"type"`
	Category string `json:"category,omitempty"`
}

// Parser fetches questions from the configured URLs and falls back to the
// built-in pool when scraping yields nothing.
type Parser struct {
	fetcher PageFetcher
	urls    []string
	logger  *zap.Logger
}

// NewParser creates a Parser. With no urls it only serves the built-in pool.
func NewParser(fetcher PageFetcher, urls []string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{fetcher: fetcher, urls: urls, logger: logger}
}

// Random returns a scraped question, or a roflo one when scraping fails. It
// always returns a question.
func (p *Parser) Random(ctx context.Context) Question {
	for _, u := range p.urls {
		found := p.scrape(ctx, u, Extract)
		if len(found) > 0 {
			return Question{Text: found[rand.IntN(len(found))], Source: SourceSite, Kind: KindReal}
		}
	}
	return p.Roflo()
}

// Roflo returns a question from the built-in pool.
func (p *Parser) Roflo() Question {
	return Question{Text: rofloQuestions[rand.IntN(len(rofloQuestions))], Source: SourceRoflo, Kind: KindRoflo}
}

// Custom wraps a user-typed question.
func (p *Parser) Custom(text string) Question {
	return Question{Text: text, Source: SourceUser, Kind: KindCustom}
}

// ByCategory returns a scraped question mentioning one of the category's
// keywords. Category names match case-insensitively; RandomCategory
// delegates to Random.
func (p *Parser) ByCategory(ctx context.Context, category string) (Question, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == RandomCategory {
		return p.Random(ctx), nil
	}
	if _, ok := gameCategories[category]; !ok {
		return Question{}, ErrNoQuestions
	}

	for _, u := range p.urls {
		found := p.scrape(ctx, u, func(page []byte, _ *url.URL) []string {
			return ExtractByCategory(page, category)
		})
		if len(found) > 0 {
			return Question{
				Text:     found[rand.IntN(len(found))],
				Source:   SourceSite,
				Kind:     KindCategory,
				Category: category,
			}, nil
		}
	}
	return Question{}, ErrNoQuestions
}

// Multiple returns up to n questions: half from the pool, the rest scraped
// from the first two URLs, topped up with more pool questions.
func (p *Parser) Multiple(ctx context.Context, n int) []Question {
	if n <= 0 {
		return nil
	}
	out := make([]Question, 0, n)
	seen := map[string]bool{}

	for _, i := range rand.Perm(len(rofloQuestions))[:min(n/2, len(rofloQuestions))] {
		text := rofloQuestions[i]
		seen[text] = true
		out = append(out, Question{Text: text, Source: SourceRoflo, Kind: KindRoflo})
	}

	for _, u := range p.urls[:min(2, len(p.urls))] {
		found := p.scrape(ctx, u, Extract)
		if len(found) == 0 {
			continue
		}
		for _, i := range rand.Perm(len(found)) {
			if len(out) >= n {
				break
			}
			out = append(out, Question{Text: found[i], Source: SourceSite, Kind: KindReal})
		}
		break
	}

	for _, i := range rand.Perm(len(rofloQuestions)) {
		if len(out) >= n {
			break
		}
		text := rofloQuestions[i]
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, Question{Text: text, Source: SourceRoflo, Kind: KindRoflo})
	}
	return out
}

// Categories lists the game categories in menu order, RandomCategory last.
func Categories() []string {
	return append(append([]string(nil), categoryOrder...), RandomCategory)
}

func (p *Parser) scrape(ctx context.Context, rawURL string, extract func([]byte, *url.URL) []string) []string {
	if p.fetcher == nil {
		return nil
	}
	page, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.logger.Debug("question page unavailable", zap.String("url", rawURL), zap.Error(err))
		return nil
	}
	pageURL, _ := url.Parse(rawURL)
	found := extract(page, pageURL)
	p.logger.Debug("questions extracted", zap.String("url", rawURL), zap.Int("count", len(found)))
	return found
}
