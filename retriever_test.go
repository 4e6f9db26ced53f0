package blaze

import "testing"

func buildRetrieverCorpus() *InvertedIndex {
	idx := NewInvertedIndexWithConfig(plainConfig())
	idx.AddDocument("d1", "the quick brown fox jumps over the lazy dog")
	idx.AddDocument("d2", "a quick fox runs through the forest")
	idx.AddDocument("d3", "completely unrelated text about boats and rivers")
	idx.AddDocument("d4", "quick brown dogs are friendly animals")
	return idx
}

func TestRetriever_Search_ReturnsRankedResults(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("quick fox", 10)
	if len(results) == 0 {
		t.Fatal("Search() returned no results for a query matching indexed documents")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by descending score at index %d", i)
		}
	}
}

func TestRetriever_Search_PermissiveCandidateUnion(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("fox boats", 10)

	found := make(map[string]bool)
	for _, res := range results {
		found[res.DocID] = true
	}
	if !found["d1"] && !found["d2"] {
		t.Error("Search() should surface documents containing only one of the query terms")
	}
	if !found["d3"] {
		t.Error("Search() should surface a document containing only the other query term")
	}
}

func TestRetriever_Search_TopNTruncates(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("quick", 1)
	if len(results) != 1 {
		t.Errorf("Search() returned %d results, want 1 (topN)", len(results))
	}
}

func TestRetriever_Search_NoMatchReturnsEmpty(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("nonexistentterm", 10)
	if len(results) != 0 {
		t.Errorf("Search() = %v, want no results for an unindexed term", results)
	}
}

func TestRetriever_Search_EmptyQueryReturnsNil(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("", 10)
	if results != nil {
		t.Errorf("Search(\"\") = %v, want nil", results)
	}
}

func TestRetriever_Search_PhraseQuery(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search(`"quick brown"`, 10)
	if len(results) == 0 {
		t.Fatal("Search() should return results for a phrase that appears in the corpus")
	}

	var topScore float64
	for _, res := range results {
		if res.Score > topScore {
			topScore = res.Score
		}
	}

	// d1 and d4 both contain "quick brown" as a contiguous phrase; d2 only
	// has "quick" as a free term and should rank below the phrase hits.
	scores := make(map[string]float64)
	for _, res := range results {
		scores[res.DocID] = res.Score
	}
	if s2, ok := scores["d2"]; ok && s2 >= scores["d1"] {
		t.Errorf("phrase match d1 (%v) should outrank free-term-only match d2 (%v)", scores["d1"], s2)
	}
}

func TestRetriever_Search_AttachesSnippets(t *testing.T) {
	idx := buildRetrieverCorpus()
	provider := MapContentProvider{
		"d1": "the quick brown fox jumps over the lazy dog",
		"d2": "a quick fox runs through the forest",
		"d3": "completely unrelated text about boats and rivers",
		"d4": "quick brown dogs are friendly animals",
	}
	generator := NewSnippetGenerator(provider, idx.Config)
	r := NewRetriever(idx, generator)

	results := r.Search("quick", 10)
	if len(results) == 0 {
		t.Fatal("Search() returned no results")
	}
	for _, res := range results {
		if res.Snippet == "" {
			t.Errorf("result for %s has no snippet attached", res.DocID)
		}
	}
}

func TestRetriever_Search_NoSnippetsWithoutProvider(t *testing.T) {
	idx := buildRetrieverCorpus()
	r := NewRetriever(idx, nil)

	results := r.Search("quick", 10)
	for _, res := range results {
		if res.Snippet != "" {
			t.Errorf("result for %s has a snippet, want none without a content provider", res.DocID)
		}
	}
}
