package blaze

import (
	"log/slog"
	"sort"
	"sync"
)

// Indexer drives corpus-wide indexing: it partitions a document set
// into batches, analyzes each batch across a worker pool, and pushes
// the results into an InvertedIndex through its buffered write path.
type Indexer struct {
	idx     *InvertedIndex
	workers int
}

// NewIndexer builds an Indexer bound to idx, sized by
// idx.Config.ResolveThreads().
func NewIndexer(idx *InvertedIndex) *Indexer {
	return &Indexer{idx: idx, workers: idx.Config.ResolveThreads()}
}

type indexedBatch struct {
	docIDs  []string
	lengths map[string]int
	terms   map[string]map[string][]int // term -> docID -> positions
}

// BuildIndex tokenizes every document in documents and merges the
// results into the bound index, processing batches of
// idx.Config.BatchSize documents concurrently across the worker pool.
// Progress is logged every 1,000 documents. The final buffered
// postings are flushed before BuildIndex returns.
func (ix *Indexer) BuildIndex(documents map[string]string) {
	total := len(documents)
	slog.Info("building index", slog.Int("documents", total), slog.Int("workers", ix.workers))

	docIDs := make([]string, 0, total)
	for id := range documents {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	batchSize := ix.idx.Config.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	var batches [][]string
	for i := 0; i < len(docIDs); i += batchSize {
		end := i + batchSize
		if end > len(docIDs) {
			end = len(docIDs)
		}
		batches = append(batches, docIDs[i:end])
	}

	jobs := make(chan []string)
	results := make(chan indexedBatch)
	var wg sync.WaitGroup

	for i := 0; i < ix.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				results <- ix.analyzeBatch(batch, documents)
			}
		}()
	}

	go func() {
		for _, batch := range batches {
			jobs <- batch
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	indexed := 0
	for batch := range results {
		for _, docID := range batch.docIDs {
			ix.idx.UpdateDocLength(docID, batch.lengths[docID])
		}
		ix.idx.BatchAddTerms(batch.terms)

		indexed += len(batch.docIDs)
		if indexed%1000 == 0 || indexed == total {
			slog.Info("indexing progress", slog.Int("indexed", indexed), slog.Int("total", total))
		}
	}

	ix.idx.Flush()
	slog.Info("index build complete", slog.Int("documents", total))
}

// analyzeBatch tokenizes every document in a single batch and returns
// the resulting term positions and document lengths, ready to be
// merged into the index. Analysis itself touches no shared state, so
// many batches can run concurrently.
func (ix *Indexer) analyzeBatch(docIDs []string, documents map[string]string) indexedBatch {
	batch := indexedBatch{
		docIDs:  docIDs,
		lengths: make(map[string]int, len(docIDs)),
		terms:   make(map[string]map[string][]int),
	}

	cfg := ix.idx.Config.AnalyzerConfig()
	for _, docID := range docIDs {
		tokens := AnalyzeWithConfig(documents[docID], cfg)
		batch.lengths[docID] = len(tokens)

		for position, token := range tokens {
			docs, ok := batch.terms[token]
			if !ok {
				docs = make(map[string][]int)
				batch.terms[token] = docs
			}
			docs[docID] = append(docs[docID], position)
		}
	}
	return batch
}
