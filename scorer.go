package blaze

import "math"

// ═══════════════════════════════════════════════════════════════════════════════
// BM25 RANKING SYSTEM
// ═══════════════════════════════════════════════════════════════════════════════
// BM25 (Best Matching 25) is a ranking function used by search engines to estimate
// the relevance of documents to a given search query.
//
// WHY BM25?
// ---------
// 1. Industry standard: Used by Elasticsearch, Solr, Lucene
// 2. Accounts for document length (longer docs don't unfairly rank higher)
// 3. Accounts for term frequency saturation (10 vs 100 occurrences matter less)
// 4. Accounts for term rarity (rare terms are more significant)
//
// BM25 FORMULA:
// -------------
// For each term in the query:
//   score += IDF(term) * (TF * (k1 + 1)) / (TF + k1 * (1 - b + b * (docLen / avgDocLen)))
//
// PHRASE BOOST:
// -------------
// A phrase's base score is the sum of its terms' BM25 contributions. If
// the terms also occur as an exact, contiguous run in the document, the
// whole phrase contribution is multiplied by PhraseBoost.
// ═══════════════════════════════════════════════════════════════════════════════

// Scorer computes BM25 relevance scores, with a phrase-match boost, for
// documents against a parsed query. avgDocLen is fixed at construction
// time from the corpus statistics at that moment — the index is
// read-only at query time, so recomputing it per call would only waste
// work.
type Scorer struct {
	idx         *InvertedIndex
	params      BM25Parameters
	phraseBoost float64
	totalDocs   int
	avgDocLen   float64
}

// NewScorer builds a Scorer bound to idx, capturing avg_len once.
func NewScorer(idx *InvertedIndex) *Scorer {
	totalDocs, totalTerms := idx.CorpusStats()

	avgDocLen := 0.0
	if totalDocs > 0 {
		avgDocLen = float64(totalTerms) / float64(totalDocs)
	}

	return &Scorer{
		idx:         idx,
		params:      idx.Config.BM25Parameters(),
		phraseBoost: idx.Config.PhraseBoost,
		totalDocs:   totalDocs,
		avgDocLen:   avgDocLen,
	}
}

// idf computes the Inverse Document Frequency for a term.
//
// IDF(term) = ln((N - df + 0.5) / (df + 0.5) + 1)
//
// Rare terms (low df) get high IDF scores; common terms (high df) get
// low IDF scores, so rare terms matter more for ranking. A term with
// zero document frequency contributes 0 (it wasn't indexed at all).
func (s *Scorer) idf(term string) float64 {
	df := float64(s.idx.GetDocFrequency(term))
	if df == 0 {
		return 0
	}
	N := float64(s.totalDocs)
	return math.Log((N-df+0.5)/(df+0.5) + 1.0)
}

// termScore computes the BM25 contribution of a single term in a
// single document. Returns 0 if the term doesn't occur in the document,
// or if the corpus is empty (avgDocLen == 0).
func (s *Scorer) termScore(term, docID string) float64 {
	if s.avgDocLen == 0 {
		return 0
	}

	tf := float64(s.idx.TermFreq(term, docID))
	if tf == 0 {
		return 0
	}

	docLen, ok := s.idx.DocLength(docID)
	if !ok {
		return 0
	}

	idf := s.idf(term)
	k1, b := s.params.K1, s.params.B

	numerator := tf * (k1 + 1)
	denominator := tf + k1*(1-b+b*(float64(docLen)/s.avgDocLen))
	return idf * (numerator / denominator)
}

// phraseExactMatch reports whether phrase terms occur as a contiguous
// run in docID: positions p_0 .. p_{L-1} with p_i = p_0 + i for every
// i, including the first term. It probes this by shifting every term's
// position set left by its index in the phrase and intersecting all L
// shifted sets — the linear-merge form sanctioned as equivalent to the
// existential definition.
func (s *Scorer) phraseExactMatch(phrase []string, docID string) bool {
	if len(phrase) == 0 {
		return false
	}

	var shifted []map[int]struct{}
	for i, term := range phrase {
		positions := s.idx.GetTermPositions(term, docID)
		if len(positions) == 0 {
			return false
		}
		set := make(map[int]struct{}, len(positions))
		for _, p := range positions {
			set[p-i] = struct{}{}
		}
		shifted = append(shifted, set)
	}

	for candidate := range shifted[0] {
		found := true
		for _, set := range shifted[1:] {
			if _, ok := set[candidate]; !ok {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

// phraseScore computes the contribution of one phrase clause: the sum
// of its terms' BM25 contributions, multiplied by PhraseBoost if the
// terms also occur as an exact contiguous run.
func (s *Scorer) phraseScore(phrase []string, docID string) float64 {
	base := 0.0
	for _, term := range phrase {
		base += s.termScore(term, docID)
	}
	if s.phraseExactMatch(phrase, docID) {
		return s.phraseBoost * base
	}
	return base
}

// Score computes the total relevance score for docID against a parsed
// query: the sum of per-term BM25 contributions over freeTerms plus the
// per-phrase contributions over phrases.
func (s *Scorer) Score(freeTerms []string, phrases [][]string, docID string) float64 {
	score := 0.0
	for _, term := range freeTerms {
		score += s.termScore(term, docID)
	}
	for _, phrase := range phrases {
		score += s.phraseScore(phrase, docID)
	}
	return score
}
