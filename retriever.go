package blaze

import "sort"

// Result is one scored, ranked hit returned by a Retriever, with an
// optional snippet attached.
type Result struct {
	DocID   string
	Score   float64
	Snippet string
}

// Retriever ties together query parsing, candidate collection and
// scoring into the end-to-end search operation: text query in, ranked
// results out.
type Retriever struct {
	idx      *InvertedIndex
	scorer   *Scorer
	snippets *SnippetGenerator // optional; nil means no snippet attached
}

// NewRetriever builds a Retriever over idx. snippets may be nil, in
// which case Search never attaches an excerpt.
func NewRetriever(idx *InvertedIndex, snippets *SnippetGenerator) *Retriever {
	return &Retriever{
		idx:      idx,
		scorer:   NewScorer(idx),
		snippets: snippets,
	}
}

// Search parses queryText, scores every candidate document and returns
// the top-n results sorted by descending score (ties broken by doc id,
// ascending, for determinism).
//
// Candidate collection is permissive: a document is a candidate if it
// contains at least one query term or phrase term, not all of them —
// the strict all-terms contract lives on GetDocsWithTerms instead.
func (r *Retriever) Search(queryText string, topN int) []Result {
	parsed := Parse(queryText, r.idx.Config.AnalyzerConfig())
	if len(parsed.Terms) == 0 && len(parsed.Phrases) == 0 {
		return nil
	}

	allTerms := make([]string, 0, len(parsed.Terms))
	allTerms = append(allTerms, parsed.Terms...)
	for _, phrase := range parsed.Phrases {
		allTerms = append(allTerms, phrase...)
	}

	candidates := make(map[string]struct{})
	for _, term := range allTerms {
		for docID := range r.idx.GetTermInfo(term) {
			candidates[docID] = struct{}{}
		}
	}

	results := make([]Result, 0, len(candidates))
	for docID := range candidates {
		score := r.scorer.Score(parsed.Terms, parsed.Phrases, docID)
		if score <= 0 {
			continue
		}
		results = append(results, Result{DocID: docID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if topN >= 0 && topN < len(results) {
		results = results[:topN]
	}

	if r.snippets != nil {
		for i := range results {
			results[i].Snippet = r.snippets.Snippet(results[i].DocID, allTerms)
		}
	}

	return results
}
