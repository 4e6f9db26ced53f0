package blaze

import (
	"regexp"
	"sort"
)

// ParsedQuery is the output of Parse: an ordered list of free terms and
// an ordered list of phrase clauses, each itself an ordered list of
// terms.
type ParsedQuery struct {
	Terms   []string
	Phrases [][]string
}

var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// Parse splits a query string into free terms and quoted phrases.
//
// The only delimiter is the ASCII double quote. A first pass extracts
// every complete "..." pair as a phrase, tokenized with the phrase
// tokenizer (stopwords kept, so function words inside the phrase aren't
// silently dropped). A second pass removes the quoted spans from the
// query and tokenizes what remains as free terms.
//
// An opening quote with no matching close is left untouched by the
// regex and falls through to the free-text pass as literal characters
// — unbalanced quotes are never treated as an error.
func Parse(query string, cfg AnalyzerConfig) ParsedQuery {
	if query == "" {
		return ParsedQuery{}
	}

	var phrases [][]string
	for _, match := range phrasePattern.FindAllStringSubmatch(query, -1) {
		phrase := match[1]
		if phrase == "" {
			continue
		}
		tokens := AnalyzePhrase(phrase, cfg)
		if len(tokens) > 0 {
			phrases = append(phrases, tokens)
		}
	}

	freeText := phrasePattern.ReplaceAllString(query, "")
	terms := AnalyzeWithConfig(freeText, cfg)

	return ParsedQuery{Terms: terms, Phrases: phrases}
}

// IsExactMatch reports whether positions contains at least one
// ascending arithmetic run of length L with step 1 — i.e. an exact,
// contiguous occurrence of an L-term phrase.
func IsExactMatch(positions []int, L int) bool {
	if len(positions) < L {
		return false
	}
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)
	for i := 0; i <= len(sorted)-L; i++ {
		if sorted[i+L-1]-sorted[i] == L-1 {
			return true
		}
	}
	return false
}
