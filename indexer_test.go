package blaze

import "testing"

func TestIndexer_BuildIndex_IndexesAllDocuments(t *testing.T) {
	idx := NewInvertedIndexWithConfig(plainConfig())
	indexer := NewIndexer(idx)

	documents := map[string]string{
		"d1": "quick brown fox",
		"d2": "lazy brown dog",
		"d3": "quick cat",
	}
	indexer.BuildIndex(documents)

	totalDocs, _ := idx.CorpusStats()
	if totalDocs != 3 {
		t.Errorf("totalDocs = %d, want 3", totalDocs)
	}

	for _, term := range []string{"quick", "brown", "fox", "lazy", "dog", "cat"} {
		if _, ok := idx.Vocabulary[term]; !ok {
			t.Errorf("term %q was not indexed", term)
		}
	}
}

func TestIndexer_BuildIndex_PreservesPositions(t *testing.T) {
	idx := NewInvertedIndexWithConfig(plainConfig())
	indexer := NewIndexer(idx)

	indexer.BuildIndex(map[string]string{"d1": "a b a"})

	positions := idx.GetTermPositions("a", "d1")
	if !equalInts(positions, []int{0, 2}) {
		t.Errorf("positions(a,d1) = %v, want [0 2]", positions)
	}
	if n, _ := idx.DocLength("d1"); n != 3 {
		t.Errorf("DocLength(d1) = %d, want 3", n)
	}
}

func TestIndexer_BuildIndex_MultipleBatches(t *testing.T) {
	cfg := plainConfig()
	cfg.BatchSize = 2
	idx := NewInvertedIndexWithConfig(cfg)
	indexer := NewIndexer(idx)

	documents := map[string]string{
		"d1": "alpha",
		"d2": "beta",
		"d3": "gamma",
		"d4": "delta",
		"d5": "epsilon",
	}
	indexer.BuildIndex(documents)

	totalDocs, _ := idx.CorpusStats()
	if totalDocs != 5 {
		t.Errorf("totalDocs = %d, want 5 (batching should not drop documents)", totalDocs)
	}
}

func TestIndexer_BuildIndex_EmptyCorpus(t *testing.T) {
	idx := NewInvertedIndexWithConfig(plainConfig())
	indexer := NewIndexer(idx)

	indexer.BuildIndex(map[string]string{})

	totalDocs, totalTerms := idx.CorpusStats()
	if totalDocs != 0 || totalTerms != 0 {
		t.Errorf("CorpusStats() = (%d,%d), want (0,0)", totalDocs, totalTerms)
	}
}

func TestIndexer_BuildIndex_FlushesBeforeReturning(t *testing.T) {
	idx := NewInvertedIndexWithConfig(plainConfig())
	indexer := NewIndexer(idx)

	indexer.BuildIndex(map[string]string{"d1": "fox"})

	if !idx.buf.empty() {
		t.Error("BuildIndex should flush the write buffer before returning")
	}
}
