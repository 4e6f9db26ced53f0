// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis transforms raw text into searchable tokens through a multi-stage
// pipeline. This process is crucial for effective full-text search.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Tokenization      → Split text into words
//  2. Case folding       → Normalize case ("Quick" → "quick")
//  3. Stop word removal  → Remove common words ("the", "a", etc.)
//  4. Length filtering   → Remove very short tokens (< 2 chars)
//  5. Digit filtering    → Drop purely-numeric tokens (opt-in)
//  6. Stemming           → Reduce words to root form ("running" → "run")
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "The Quick Brown Fox Jumps!"
// Step 1: ["The", "Quick", "Brown", "Fox", "Jumps"]     (tokenize)
// Step 2: ["the", "quick", "brown", "fox", "jumps"]     (case fold)
// Step 3: ["quick", "brown", "fox", "jumps"]            (remove stopwords)
// Step 4: ["quick", "brown", "fox", "jumps"]            (length filter - all pass)
// Step 5: (digit filter - no-op here)
// Step 6: ["quick", "brown", "fox", "jump"]             (stemming)
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"strconv"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// AnalyzerConfig holds configuration options for text analysis
type AnalyzerConfig struct {
	MinTokenLength  int  // minimum token length to keep (default: 2)
	EnableStemming  bool // whether to apply stemming (default: true)
	EnableStopwords bool // whether to remove stopwords (default: true)
	CaseInsensitive bool // whether to fold case before matching (default: true)
	FilterDigits    bool // whether to drop tokens that are purely numeric (default: false)
}

// DefaultAnalyzerConfig returns the standard analyzer configuration
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
		CaseInsensitive: true,
		FilterDigits:    false,
	}
}

// Analyze transforms raw text into searchable tokens using the default pipeline
func Analyze(text string) []string {
	return AnalyzeWithConfig(text, DefaultAnalyzerConfig())
}

// AnalyzeWithConfig transforms text using a custom configuration, applying
// the full indexing pipeline: tokenize, case fold, stopwords, length,
// digits, stem.
func AnalyzeWithConfig(text string, config AnalyzerConfig) []string {
	tokens := tokenize(text)

	if config.CaseInsensitive {
		tokens = lowercaseFilter(tokens)
	}

	if config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, config.MinTokenLength)

	if config.FilterDigits {
		tokens = digitFilter(tokens)
	}

	if config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// AnalyzePhrase tokenizes text for phrase indexing/search: it runs the
// same pipeline as AnalyzeWithConfig but with stopword removal forced
// off, since dropping a stopword from the middle of a phrase would
// silently change its meaning (e.g. "to be or not to be").
func AnalyzePhrase(text string, config AnalyzerConfig) []string {
	config.EnableStopwords = false
	return AnalyzeWithConfig(text, config)
}

// tokenize splits text into individual words using Unicode-aware
// splitting: any non-letter and non-digit character is a delimiter.
//
// Examples:
//
//	"hello-world"      → ["hello", "world"]
//	"user@email.com"   → ["user", "email", "com"]
//	"café"             → ["café"]  (Unicode letters preserved)
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// lowercaseFilter normalizes token casing so "Quick", "quick" and
// "QUICK" are treated as the same term.
func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

// stopwordFilter removes common words that carry little search value.
func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

// lengthFilter removes tokens shorter than minLength.
func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// digitFilter drops tokens that consist entirely of digits. Disabled by
// default: numeric tokens (years, IDs) are often meaningful in TDT-style
// news corpora.
func digitFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, err := strconv.ParseUint(token, 10, 64); err == nil {
			continue
		}
		r = append(r, token)
	}
	return r
}

// stemmerFilter reduces words to their root form using the Snowball
// (Porter2) stemmer, e.g. "running" → "run".
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

// isStopword checks if a token is a stopword.
func isStopword(token string) bool {
	_, exists := stopwords[token]
	return exists
}

// stopwords is the fixed stopword list. Unlike a general-purpose
// stopword list, this one is kept deliberately small: it only removes
// words that are almost never useful for matching a TDT-style news
// corpus (articles, conjunctions, common prepositions), so that
// comparatively informative short words survive into the index.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {},
	"if": {}, "because": {}, "as": {},
	"what": {}, "which": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "then": {}, "just": {},
	"so": {}, "than": {}, "such": {}, "both": {},
	"through": {}, "about": {}, "between": {},
	"after": {}, "before": {}, "during": {},
	"in": {}, "to": {}, "from": {}, "of": {},
	"at": {}, "by": {}, "for": {}, "with": {},
	"against": {}, "on": {}, "into": {},
}
