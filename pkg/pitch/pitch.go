// Package pitch turns a pain diagnosis into a fabricated SaaS product pitch.
//
// Text fields are drawn at random from fixed pools; the caller owns the random
// source. Scores are pure functions of the diagnosis.
package pitch

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/japaniel/magistr/pkg/pain"
)

// GenericCategory is reported as the source category when no matched category
// has dedicated product names.
const GenericCategory pain.Category = "general"

// Viability labels, from the most to the least promising.
const (
	ViabilityIPO       = "🚀 Готов к IPO завтра!"
	ViabilitySerial    = "💪 Серийный стартап!"
	ViabilityPotential = "🎯 Есть потенциал!"
	ViabilityMaybe     = "🤔 Может быть..."
)

// Pitch is a generated product description.
type Pitch struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Decoration     string        `json:"decoration"`
	Tagline        string        `json:"tagline"`
	FullText       string        `json:"full_text"`
	SourceCategory pain.Category `json:"source_category"`
	PainAddressed  string        `json:"pain_addressed"`
	HypeLevel      int           `json:"hype_level"`
	Viability      string        `json:"viability"`
	MemeScore      int           `json:"meme_score"`
}

// Format builds a pitch for d using rnd for every random choice.
func Format(d pain.Diagnosis, rnd *rand.Rand) Pitch {
	source := SourceCategory(d)
	name := generateName(source, rnd)
	description := descriptionTemplates[rnd.IntN(len(descriptionTemplates))](name, sniff(d.Summary))
	decoration := pick(decorations, rnd)
	tagline := pick(taglines, rnd)
	hype := HypeLevel(d)

	return Pitch{
		Name:           name,
		Description:    description,
		Decoration:     decoration,
		Tagline:        tagline,
		FullText:       description + " " + decoration + ". " + tagline + " 🚀",
		SourceCategory: source,
		PainAddressed:  d.Summary,
		HypeLevel:      hype,
		Viability:      Viability(hype),
		MemeScore:      MemeScore(d),
	}
}

// SourceCategory returns the first matched category that has dedicated names.
func SourceCategory(d pain.Diagnosis) pain.Category {
	for _, c := range d.Categories {
		if _, ok := categoryNames[c]; ok {
			return c
		}
	}
	return GenericCategory
}

// Names returns a copy of the dedicated name pool of c; nil means the name is composed.
func Names(c pain.Category) []string {
	names, ok := categoryNames[c]
	if !ok {
		return nil
	}
	return append([]string(nil), names...)
}

// HypeLevel scores the pitch between 5 and 10.
func HypeLevel(d pain.Diagnosis) int {
	level := 5

	switch {
	case d.Confidence > 0.8:
		level += 3
	case d.Confidence > 0.6:
		level += 2
	case d.Confidence > 0.4:
		level++
	}

	switch d.Urgency {
	case pain.LevelHigh:
		level += 2
	case pain.LevelMedium:
		level++
	}

	switch d.Severity {
	case pain.LevelHigh:
		level += 2
	case pain.LevelMedium:
		level++
	}

	return min(level, 10)
}

// Viability maps a hype level to one of four labels.
func Viability(hype int) string {
	switch {
	case hype >= 9:
		return ViabilityIPO
	case hype >= 7:
		return ViabilitySerial
	case hype >= 5:
		return ViabilityPotential
	default:
		return ViabilityMaybe
	}
}

// MemeScore scores the pitch between 0 and 100.
func MemeScore(d pain.Diagnosis) int {
	score := 50

	for _, e := range d.Emotions {
		switch string(e) {
		case "anger":
			score += 20
		case "fear":
			score += 15
		case "despair":
			score += 25
		}
	}

	switch d.QuestionType {
	case pain.QuestionHelp:
		score += 10
	case pain.QuestionCause:
		score += 5
	}

	return max(0, min(score, 100))
}

// Generator is a Format front end that is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator seeds a generator. The same seed yields the same sequence of pitches.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Format builds a pitch for d.
func (g *Generator) Format(d pain.Diagnosis) Pitch {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Format(d, g.rnd)
}

// Intn draws from the generator's source; bots use it for flavour numbers.
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(n)
}

func generateName(source pain.Category, rnd *rand.Rand) string {
	if names, ok := categoryNames[source]; ok {
		return pick(names, rnd)
	}
	return pick(namePrefixes, rnd) + pick(nameSuffixes, rnd)
}

func sniff(summary string) actionPair {
	for _, r := range sniffRules {
		if strings.Contains(summary, r.category.Label()) {
			return r.pair
		}
	}
	return defaultPair
}

func pick(pool []string, rnd *rand.Rand) string {
	return pool[rnd.IntN(len(pool))]
}
