package enrich

import (
	"sort"
	"strings"
	"unicode"

	"github.com/feichai0017/docintel/internal/models"
)

// stopwords is a compact English stopword set; candidate phrases are the
// maximal runs of content words between stopwords and punctuation.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "but": {}, "by": {}, "can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "just": {}, "may": {}, "more": {}, "most": {}, "my": {},
	"no": {}, "not": {}, "of": {}, "on": {}, "one": {}, "only": {},
	"or": {}, "other": {}, "our": {}, "out": {}, "over": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "under": {}, "up": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "will": {}, "with": {}, "would": {}, "you": {}, "your": {},
}

// ExtractKeywords scores candidate phrases with word co-occurrence degree
// over frequency and returns the top count phrases, highest score first.
func ExtractKeywords(content string, count int) []models.Keyword {
	if count <= 0 || strings.TrimSpace(content) == "" {
		return nil
	}

	phrases := candidatePhrases(content)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, phrase := range phrases {
		for _, word := range phrase {
			freq[word]++
			degree[word] += len(phrase) - 1
		}
	}

	best := make(map[string]float64)
	for _, phrase := range phrases {
		var score float64
		for _, word := range phrase {
			score += float64(degree[word]+freq[word]) / float64(freq[word])
		}
		term := strings.Join(phrase, " ")
		if score > best[term] {
			best[term] = score
		}
	}

	keywords := make([]models.Keyword, 0, len(best))
	for term, score := range best {
		keywords = append(keywords, models.Keyword{Term: term, Score: score})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Term < keywords[j].Term
	})

	if len(keywords) > count {
		keywords = keywords[:count]
	}
	return keywords
}

func candidatePhrases(content string) [][]string {
	// punctuation delimits phrases outright; stopwords delimit within a run
	fragments := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return unicode.IsPunct(r) && r != '-' || r == '\n' || r == '\r'
	})

	var phrases [][]string
	for _, frag := range fragments {
		var current []string
		flush := func() {
			if len(current) > 0 {
				phrases = append(phrases, current)
				current = nil
			}
		}
		tokens := strings.FieldsFunc(frag, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
		})
		for _, tok := range tokens {
			if _, stop := stopwords[tok]; stop || len(tok) < 2 {
				flush()
				continue
			}
			current = append(current, tok)
		}
		flush()
	}
	return phrases
}
