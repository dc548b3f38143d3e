// Package news turns raw provider headlines into a short, deduplicated digest.
package news

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"TrueSignal/internal/domain/models"

	"github.com/agnivade/levenshtein"
)

const (
	// MaxInput bounds the pairwise comparison cost.
	MaxInput = 20
	// MaxOutput is the digest length.
	MaxOutput = 8
	// DuplicateRatio is the exclusive upper bound on edit distance over
	// length for two titles to count as the same story.
	DuplicateRatio = 0.15
	maxNums        = 3
)

var (
	nonWord     = regexp.MustCompile(`[\W_]+`)
	positiveRe  = regexp.MustCompile(`\b(beat|beats|surge|record|up|growth|raise|raised)\b`)
	negativeRe  = regexp.MustCompile(`\b(miss|misses|down|loss|lawsuit|probe|cut|cuts|slump|drop)\b`)
	numericToks = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?%|\$[0-9,]+`)
)

type seen struct {
	norm  string
	runes int
}

// Summarize deduplicates near-identical headlines, tags sentiment and keeps
// the first MaxOutput survivors in input order.
func Summarize(items []models.RawNewsItem) []models.NewsItem {
	if len(items) > MaxInput {
		items = items[:MaxInput]
	}

	out := make([]models.NewsItem, 0, MaxOutput)
	kept := make([]seen, 0, MaxOutput)
	for _, it := range items {
		if len(out) >= MaxOutput {
			break
		}
		title := strings.TrimSpace(it.HeadlineText())
		if title == "" {
			continue
		}
		norm := Normalize(title)
		cur := seen{norm: norm, runes: utf8.RuneCountInString(norm)}
		if isDuplicate(kept, cur) {
			continue
		}
		kept = append(kept, cur)

		out = append(out, models.NewsItem{
			Title:     title,
			Date:      it.DateText(),
			Sentiment: Sentiment(title),
			Source:    it.SourceText(),
			URL:       it.URLText(),
			Nums:      ExtractNumbers(title),
		})
	}
	return out
}

// Normalize lower-cases a title and collapses punctuation runs to one space.
func Normalize(title string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(title), " "))
}

// Similar reports whether two normalized titles are near-duplicates.
func Similar(a, b string) bool {
	return similar(seen{a, utf8.RuneCountInString(a)}, seen{b, utf8.RuneCountInString(b)})
}

func similar(a, b seen) bool {
	longest := a.runes
	if b.runes > longest {
		longest = b.runes
	}
	if longest < 1 {
		longest = 1
	}
	d := levenshtein.ComputeDistance(a.norm, b.norm)
	return float64(d)/float64(longest) < DuplicateRatio
}

func isDuplicate(kept []seen, cur seen) bool {
	for _, k := range kept {
		if similar(k, cur) {
			return true
		}
	}
	return false
}

// Sentiment classifies a headline by keyword. Negative words turn a positive
// headline into mixed, never into negative.
func Sentiment(title string) string {
	t := strings.ToLower(title)
	s := models.SentimentNeutral
	if positiveRe.MatchString(t) {
		s = models.SentimentPositive
	}
	if negativeRe.MatchString(t) {
		if s == models.SentimentPositive {
			s = models.SentimentMixed
		} else {
			s = models.SentimentNegative
		}
	}
	return s
}

// ExtractNumbers returns up to three percentage or dollar tokens verbatim.
func ExtractNumbers(title string) []string {
	nums := numericToks.FindAllString(title, maxNums)
	if nums == nil {
		return []string{}
	}
	return nums
}
