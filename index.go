// Package blaze implements a positional inverted index for full-text
// search over a static document corpus.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS AN INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// An inverted index is like the index at the back of a book, but for search engines.
//
// Example: Given these documents:
//   Doc "a": "the quick brown fox"
//   Doc "b": "the lazy dog"
//   Doc "c": "quick brown dogs"
//
// The inverted index would look like:
//   "quick"  → [a:Pos1, c:Pos0]
//   "brown"  → [a:Pos2, c:Pos1]
//   "fox"    → [a:Pos3]
//   "lazy"   → [b:Pos1]
//   "dog"    → [b:Pos2]
//   "dogs"   → [c:Pos2]
//
// This allows us to:
// 1. Find documents containing a word instantly (without scanning all docs)
// 2. Find phrases by checking if word positions are consecutive
// 3. Rank results with BM25 and a positional phrase boost
//
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
// We define errors as package-level variables so they can be compared with ==
// This is a Go best practice for error handling.
var (
	ErrNoPostingList = fmt.Errorf("no posting list exists for token")
	ErrNoNextElement = fmt.Errorf("no next element found")
	ErrNoPrevElement = fmt.Errorf("no previous element found")
)

// BM25Parameters holds the tuning parameters for the BM25 algorithm.
type BM25Parameters struct {
	K1 float64 // Term frequency saturation (typical: 1.2-2.0)
	B  float64 // Length normalization (typical: 0.75)
}

// DefaultBM25Parameters returns the standard BM25 parameters.
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.5, B: 0.75}
}

// DocumentStats stores statistics about a single document, keyed by
// internal document id.
type DocumentStats struct {
	DocID     int            // internal document identifier
	Length    int            // number of terms in the document
	TermFreqs map[string]int // how many times each term appears
}

// Posting is the index record for a single (term, doc_id) pair: the
// ordered positions at which the term occurs, from which tf is derived.
type Posting struct {
	DocID     string
	Positions []int
}

// TF returns the term frequency for this posting.
func (p Posting) TF() int { return len(p.Positions) }

// ═══════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURE: InvertedIndex with HYBRID STORAGE
// ═══════════════════════════════════════════════════════════════════════════════
// The InvertedIndex uses a hybrid approach for maximum efficiency:
//
// Architecture:
//
//	InvertedIndex
//	├── DocBitmaps: map[string]*roaring.Bitmap  (DOCUMENT-LEVEL)
//	│   ├── "quick" → Bitmap of internal document IDs
//	│   ├── "brown" → Bitmap of internal document IDs
//	│   └── "fox"   → Bitmap of internal document IDs
//	├── PostingsList: map[string]SkipList       (POSITION-LEVEL)
//	│   ├── "quick" → SkipList of exact positions
//	│   ├── "brown" → SkipList of exact positions
//	│   └── "fox"   → SkipList of exact positions
//	├── buf: write buffer staged under the same mutex
//	└── mu: single mutex guarding all of the above
//
// Why hybrid storage? Roaring bitmaps give O(1)-ish set operations (AND,
// OR) with heavy compression for document-level boolean queries; skip
// lists keep the exact ordered positions needed for phrase search and
// the scorer's phrase-boost probe.
//
// Document ids are caller-supplied opaque strings, but the bitmap/skip-list
// core wants dense integers, so the index
// keeps a string↔int registry and only ever stores internal ints in
// DocBitmaps/PostingsList/DocStats.
// ═══════════════════════════════════════════════════════════════════════════════
type InvertedIndex struct {
	mu sync.Mutex // single coarse lock guarding everything below

	Config Config

	// DOCUMENT-LEVEL STORAGE (for fast document lookups and boolean queries)
	DocBitmaps map[string]*roaring.Bitmap // Term → Bitmap of internal document IDs

	// POSITION-LEVEL STORAGE (for phrase search, proximity)
	PostingsList map[string]SkipList // Term → Positions

	// Vocabulary is exactly the set of top-level keys of the index,
	// tracked separately so it survives even terms whose
	// bitmap/postings were merged from the buffer but never read back.
	Vocabulary map[string]struct{}

	// BM25 / corpus statistics
	DocStats   map[int]DocumentStats // internal DocID → statistics
	TotalDocs  int                   // total number of indexed documents
	TotalTerms int64                 // total number of terms across all docs
	BM25Params BM25Parameters        // BM25 tuning parameters

	// Document id registry: opaque external string <-> dense internal int.
	externalToInternal map[string]int
	internalToExternal map[int]string
	nextDocID          int

	buf *writeBuffer
}

// NewInvertedIndex creates a new empty inverted index using the default
// configuration.
func NewInvertedIndex() *InvertedIndex {
	return NewInvertedIndexWithConfig(DefaultConfig())
}

// NewInvertedIndexWithConfig creates a new empty inverted index tuned by
// cfg.
func NewInvertedIndexWithConfig(cfg Config) *InvertedIndex {
	return &InvertedIndex{
		Config:             cfg,
		DocBitmaps:         make(map[string]*roaring.Bitmap),
		PostingsList:       make(map[string]SkipList),
		Vocabulary:         make(map[string]struct{}),
		DocStats:           make(map[int]DocumentStats),
		BM25Params:         cfg.BM25Parameters(),
		externalToInternal: make(map[string]int),
		internalToExternal: make(map[int]string),
		nextDocID:          1,
		buf:                newWriteBuffer(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT ID REGISTRY
// ═══════════════════════════════════════════════════════════════════════════════

// ensureInternalID returns the internal id for an external doc id,
// allocating one if this is the first time it's seen. Caller must hold
// idx.mu.
func (idx *InvertedIndex) ensureInternalID(docID string) int {
	if id, ok := idx.externalToInternal[docID]; ok {
		return id
	}
	id := idx.nextDocID
	idx.nextDocID++
	idx.externalToInternal[docID] = id
	idx.internalToExternal[id] = docID
	return id
}

func (idx *InvertedIndex) externalID(internal int) (string, bool) {
	s, ok := idx.internalToExternal[internal]
	return s, ok
}

// ═══════════════════════════════════════════════════════════════════════════════
// BUFFERED WRITE PATH (C2 contract)
// ═══════════════════════════════════════════════════════════════════════════════

// addTermLocked stages one (term, doc_id, position) event in the write
// buffer. It does not touch the main index directly; a flush happens
// automatically once the buffer is full or stale. Caller must hold
// idx.mu.
func (idx *InvertedIndex) addTermLocked(term string, docID string, position int) {
	internal := idx.ensureInternalID(docID)
	idx.buf.add(term, internal, position)
	if idx.buf.full(idx.Config.BufferSize) || idx.buf.expired(idx.Config.FlushInterval) {
		idx.flushLocked()
	}
}

// AddTerm is the public, locking entry point for staging a single
// (term, doc_id, position) triple into the write buffer.
func (idx *InvertedIndex) AddTerm(term string, docID string, position int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.addTermLocked(term, docID, position)
}

// UpdateDocLength records the token count for a document. Applied
// immediately rather than buffered: it is metadata about the document,
// not a posting, and the Indexer provides it exactly once per document.
// AddDocument records the length itself and does not call this.
func (idx *InvertedIndex) UpdateDocLength(docID string, n int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	internal := idx.ensureInternalID(docID)
	stats, exists := idx.DocStats[internal]
	if !exists {
		stats = DocumentStats{DocID: internal, TermFreqs: make(map[string]int)}
		idx.TotalDocs++
	}
	stats.Length = n
	idx.DocStats[internal] = stats
}

// BatchAddTerms stages many postings at once: term -> doc_id ->
// ordered positions. Besides staging every position as AddTerm does, it
// adds each term's count to the document's TermFreqs (registering the
// document if it is new) and recomputes TotalTerms; AddTerm does neither.
func (idx *InvertedIndex) BatchAddTerms(postings map[string]map[string][]int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for term, docs := range postings {
		for docID, positions := range docs {
			internal := idx.ensureInternalID(docID)
			for _, pos := range positions {
				idx.buf.add(term, internal, pos)
			}
			stats, exists := idx.DocStats[internal]
			if exists {
				stats.TermFreqs[term] += len(positions)
			} else {
				stats = DocumentStats{DocID: internal, TermFreqs: map[string]int{term: len(positions)}}
				idx.TotalDocs++
			}
			idx.DocStats[internal] = stats
		}
	}
	idx.TotalTerms = idx.recomputeTotalTermsLocked()
	if idx.buf.full(idx.Config.BufferSize) || idx.buf.expired(idx.Config.FlushInterval) {
		idx.flushLocked()
	}
}

func (idx *InvertedIndex) recomputeTotalTermsLocked() int64 {
	var total int64
	for _, stats := range idx.DocStats {
		total += int64(stats.Length)
	}
	return total
}

// flushLocked merges every staged posting into the main index and
// clears the buffer. Caller must hold idx.mu.
func (idx *InvertedIndex) flushLocked() {
	if idx.buf.empty() {
		idx.buf.reset()
		return
	}
	for term, docs := range idx.buf.pending {
		for docID, positions := range docs {
			for _, pos := range positions {
				idx.indexTokenLocked(term, docID, pos)
			}
		}
		idx.Vocabulary[term] = struct{}{}
	}
	idx.buf.reset()
}

// Flush forces any staged postings into the main index immediately.
func (idx *InvertedIndex) Flush() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushLocked()
}

// flushBeforeReadLocked implements the read-your-writes invariant: if
// term has any buffered postings, flush the whole buffer before the
// read proceeds. Caller must hold idx.mu.
func (idx *InvertedIndex) flushBeforeReadLocked(term string) {
	if idx.buf.hasTerm(term) {
		idx.flushLocked()
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT-LEVEL CONVENIENCE API
// ═══════════════════════════════════════════════════════════════════════════════

// AddDocument tokenizes document and stages every resulting (term,
// position) pair for docID, then records its length. Returns
// ErrDuplicateDoc if docID has already been added: the engine has no
// incremental-update model.
func (idx *InvertedIndex) AddDocument(docID string, document string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.externalToInternal[docID]; exists {
		return fmt.Errorf("%s: %w", docID, ErrDuplicateDoc)
	}

	slog.Info("indexing document", slog.String("docID", docID))

	tokens := AnalyzeWithConfig(document, idx.Config.AnalyzerConfig())
	internal := idx.ensureInternalID(docID)

	stats := DocumentStats{DocID: internal, Length: len(tokens), TermFreqs: make(map[string]int)}
	for position, token := range tokens {
		idx.buf.add(token, internal, position)
		stats.TermFreqs[token]++
	}
	idx.DocStats[internal] = stats
	idx.TotalDocs++
	idx.TotalTerms += int64(len(tokens))

	if idx.buf.full(idx.Config.BufferSize) || idx.buf.expired(idx.Config.FlushInterval) {
		idx.flushLocked()
	}
	return nil
}

// indexTokenLocked merges a single (token, docID, position) occurrence
// into the main index (hybrid bitmap + skip list). Caller must hold
// idx.mu; this is the only place that mutates DocBitmaps/PostingsList.
func (idx *InvertedIndex) indexTokenLocked(token string, docID, position int) {
	if idx.DocBitmaps[token] == nil {
		idx.DocBitmaps[token] = roaring.NewBitmap()
	}
	idx.DocBitmaps[token].Add(uint32(docID))

	skipList, exists := idx.getPostingListLocked(token)
	if !exists {
		skipList = *NewSkipList()
	}
	skipList.Insert(Position{DocumentID: docID, Offset: position})
	idx.PostingsList[token] = skipList
}

func (idx *InvertedIndex) getPostingListLocked(token string) (SkipList, bool) {
	skipList, exists := idx.PostingsList[token]
	return skipList, exists
}

// getPostingList retrieves the posting list for a token, first flushing
// the write buffer if it holds postings for that token.
func (idx *InvertedIndex) getPostingList(token string) (SkipList, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(token)
	return idx.getPostingListLocked(token)
}

// ═══════════════════════════════════════════════════════════════════════════════
// READ-ONLY IndexStore CONTRACT (C2 public operations)
// ═══════════════════════════════════════════════════════════════════════════════

// GetTermInfo returns the posting for every document containing term,
// keyed by external doc id.
func (idx *InvertedIndex) GetTermInfo(term string) map[string]Posting {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(term)

	result := make(map[string]Posting)
	skipList, exists := idx.getPostingListLocked(term)
	if !exists {
		return result
	}
	for node := skipList.Head.Tower[0]; node != nil; node = node.Tower[0] {
		pos := node.Key
		docID := int(pos.DocumentID)
		external, ok := idx.externalID(docID)
		if !ok {
			continue
		}
		p := result[external]
		p.DocID = external
		p.Positions = append(p.Positions, int(pos.Offset))
		result[external] = p
	}
	return result
}

// GetDocFrequency returns the number of distinct documents containing
// term.
func (idx *InvertedIndex) GetDocFrequency(term string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(term)
	bm, ok := idx.DocBitmaps[term]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// GetDocsWithTerms returns the set of external doc ids containing every
// term in terms (intersection semantics). Empty if terms is empty or
// any term is absent from the index — this is the strict counterpart to
// the Retriever's permissive union.
func (idx *InvertedIndex) GetDocsWithTerms(terms []string) []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(terms) == 0 {
		return nil
	}
	for _, t := range terms {
		idx.flushBeforeReadLocked(t)
	}

	var acc *roaring.Bitmap
	for _, t := range terms {
		bm, ok := idx.DocBitmaps[t]
		if !ok {
			return nil
		}
		if acc == nil {
			acc = bm.Clone()
		} else {
			acc.And(bm)
		}
	}
	if acc == nil {
		return nil
	}
	return idx.bitmapToExternalIDsLocked(acc)
}

func (idx *InvertedIndex) bitmapToExternalIDsLocked(bm *roaring.Bitmap) []string {
	result := make([]string, 0, bm.GetCardinality())
	iter := bm.Iterator()
	for iter.HasNext() {
		internal := int(iter.Next())
		if external, ok := idx.externalID(internal); ok {
			result = append(result, external)
		}
	}
	sort.Strings(result)
	return result
}

// DocLength returns the token count recorded for docID.
func (idx *InvertedIndex) DocLength(docID string) (int, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	internal, ok := idx.externalToInternal[docID]
	if !ok {
		return 0, false
	}
	stats, ok := idx.DocStats[internal]
	if !ok {
		return 0, false
	}
	return stats.Length, true
}

// TermFreq returns the number of times term occurs in docID.
func (idx *InvertedIndex) TermFreq(term, docID string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	internal, ok := idx.externalToInternal[docID]
	if !ok {
		return 0
	}
	stats, ok := idx.DocStats[internal]
	if !ok {
		return 0
	}
	return stats.TermFreqs[term]
}

// CorpusStats returns the total document count and total term count
// recorded across the whole corpus.
func (idx *InvertedIndex) CorpusStats() (totalDocs int, totalTerms int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.TotalDocs, idx.TotalTerms
}

// GetTermPositions returns the ordered positions of term within docID.
func (idx *InvertedIndex) GetTermPositions(term string, docID string) []int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(term)

	internal, ok := idx.externalToInternal[docID]
	if !ok {
		return nil
	}
	skipList, exists := idx.getPostingListLocked(term)
	if !exists {
		return nil
	}
	var positions []int
	for node := skipList.Head.Tower[0]; node != nil; node = node.Tower[0] {
		pos := node.Key
		if int(pos.DocumentID) == internal {
			positions = append(positions, int(pos.Offset))
		}
	}
	return positions
}

// ═══════════════════════════════════════════════════════════════════════════════
// BASIC SEARCH OPERATIONS (internal, operate on internal int doc IDs)
// ═══════════════════════════════════════════════════════════════════════════════
// These four methods (First, Last, Next, Previous) walk a term's
// occurrences across the whole index in (document, offset) order.
// ═══════════════════════════════════════════════════════════════════════════════

// First returns the first occurrence of a token in the index.
func (idx *InvertedIndex) First(token string) (Position, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(token)

	skipList, exists := idx.getPostingListLocked(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}
	return skipList.Head.Tower[0].Key, nil
}

// Last returns the last occurrence of a token in the index.
func (idx *InvertedIndex) Last(token string) (Position, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(token)

	skipList, exists := idx.getPostingListLocked(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}
	return skipList.Last(), nil
}

// Next finds the next occurrence of a token after the given position.
func (idx *InvertedIndex) Next(token string, currentPos Position) (Position, error) {
	if currentPos.IsBeginning() {
		return idx.First(token)
	}
	if currentPos.IsEnd() {
		return EOFDocument, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(token)

	skipList, exists := idx.getPostingListLocked(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}
	nextPos, _ := skipList.FindGreaterThan(currentPos)
	return nextPos, nil
}

// Previous finds the previous occurrence of a token before the given position.
func (idx *InvertedIndex) Previous(token string, currentPos Position) (Position, error) {
	if currentPos.IsEnd() {
		return idx.Last(token)
	}
	if currentPos.IsBeginning() {
		return BOFDocument, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.flushBeforeReadLocked(token)

	skipList, exists := idx.getPostingListLocked(token)
	if !exists {
		return BOFDocument, ErrNoPostingList
	}
	prevPos, _ := skipList.FindLessThan(currentPos)
	return prevPos, nil
}
