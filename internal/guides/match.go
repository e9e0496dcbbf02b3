// Package guides подбирает образовательные памятки по тексту рекомендаций
// врача и собирает текст уведомления о завершении консультации.
package guides

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/iudanet/clinicsync/pkg/api"
)

// Веса совпадений при подборе памятки
const (
	scorePhraseTitle       = 100
	scorePhraseDescription = 50
	scoreWordTitle         = 10
	scoreWordDescription   = 5
	scoreWordCategory      = 2
)

// LanguageTelugu код языка телугу
const LanguageTelugu = "te"

var (
	bracketed    = regexp.MustCompile(`[\(\[].*?[\)\]]`)
	guideWord    = regexp.MustCompile(`(?i)\bguides?\b`)
	leadingMarks = regexp.MustCompile(`^[\s\-*•\d.)]+`)
)

// MatchedGuide результат подбора для одной строки рекомендаций.
// Guide == nil если подходящей памятки не нашлось.
type MatchedGuide struct {
	Guide *api.Guide
	Query string
	Link  string
}

// CleanAdviceLine убирает из строки рекомендаций служебные части:
// текст в скобках, слово "guide", маркеры списка и хвостовые точки.
func CleanAdviceLine(line string) string {
	s := bracketed.ReplaceAllString(line, "")
	s = guideWord.ReplaceAllString(s, "")
	s = leadingMarks.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ". \t")
	return strings.Join(strings.Fields(s), " ")
}

// IsTelugu reports whether text contains Telugu script.
func IsTelugu(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Telugu, r) {
			return true
		}
	}
	return false
}

// Match подбирает памятку для каждой строки text, содержащей слово "guide".
// Ссылки строятся от baseURL с учетом языка интерфейса.
func Match(text string, list []api.Guide, language, baseURL string) []MatchedGuide {
	if strings.TrimSpace(text) == "" || len(list) == 0 {
		return nil
	}

	var out []MatchedGuide
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || !strings.Contains(strings.ToLower(line), "guide") {
			continue
		}
		query := CleanAdviceLine(line)
		if query == "" {
			continue
		}

		best, score := bestGuide(query, list)
		if best == nil || score <= 0 {
			out = append(out, MatchedGuide{Query: query})
			continue
		}
		out = append(out, MatchedGuide{
			Query: query,
			Guide: best,
			Link:  Link(baseURL, language, best.ID),
		})
	}
	return out
}

// Link ссылка на страницу памятки
func Link(baseURL, language string, guideID int64) string {
	prefix := ""
	if language == LanguageTelugu {
		prefix = "/" + LanguageTelugu
	}
	return fmt.Sprintf("%s%s/guides/%d", strings.TrimRight(baseURL, "/"), prefix, guideID)
}

type scored struct {
	guide *api.Guide
	score int
}

func bestGuide(query string, list []api.Guide) (*api.Guide, int) {
	telugu := IsTelugu(query)
	term := query
	if !telugu {
		term = strings.ToLower(query)
	}
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, 0
	}

	results := make([]scored, 0, len(list))
	for i := range list {
		g := &list[i]
		title, description, ok := texts(g, telugu)
		if !ok {
			results = append(results, scored{guide: g})
			continue
		}
		category := strings.ToLower(g.Category)

		score := 0
		if strings.Contains(title, term) {
			score += scorePhraseTitle
		}
		if strings.Contains(description, term) {
			score += scorePhraseDescription
		}
		for _, w := range words {
			cmp := w
			if !telugu {
				cmp = strings.ToLower(w)
			}
			if strings.Contains(title, cmp) {
				score += scoreWordTitle
			}
			if strings.Contains(description, cmp) {
				score += scoreWordDescription
			}
			if strings.Contains(category, strings.ToLower(w)) {
				score += scoreWordCategory
			}
		}
		results = append(results, scored{guide: g, score: score})
	}

	// стабильная сортировка: при равенстве побеждает памятка раньше в списке
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	return results[0].guide, results[0].score
}

func texts(g *api.Guide, telugu bool) (string, string, bool) {
	if !telugu {
		return strings.ToLower(g.Title), strings.ToLower(g.Description), true
	}
	for _, tr := range g.Translations {
		if tr.Language == LanguageTelugu {
			return tr.Title, tr.Description, true
		}
	}
	return "", "", false
}
