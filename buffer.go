package blaze

import "time"

// writeBuffer stages (term, docID, position) events outside the main
// index so that many concurrent indexer workers can hand off work
// without contending on the skip lists and bitmaps themselves. It is
// always accessed while the owning InvertedIndex's mutex is held, so it
// needs no lock of its own.
//
// Grounded on the buffered-write shape of a write-ahead staging area
// over an inverted index: accumulate postings, track a position-event
// count, and flush wholesale once a size or time threshold is crossed.
type writeBuffer struct {
	pending   map[string]map[int][]int // term -> docID -> positions, in arrival order
	count     int                      // buffered position-events
	lastFlush time.Time
}

func newWriteBuffer() *writeBuffer {
	return &writeBuffer{
		pending:   make(map[string]map[int][]int),
		lastFlush: time.Now(),
	}
}

// add stages one position-event for (term, docID).
func (b *writeBuffer) add(term string, docID, position int) {
	docs, ok := b.pending[term]
	if !ok {
		docs = make(map[int][]int)
		b.pending[term] = docs
	}
	docs[docID] = append(docs[docID], position)
	b.count++
}

// hasTerm reports whether term has any staged postings.
func (b *writeBuffer) hasTerm(term string) bool {
	_, ok := b.pending[term]
	return ok
}

// full reports whether the buffer has reached the configured size
// threshold and should be flushed.
func (b *writeBuffer) full(size int) bool {
	return b.count >= size
}

// expired reports whether enough wall-clock time has passed since the
// last flush that a time-based flush is due.
func (b *writeBuffer) expired(interval time.Duration) bool {
	return time.Since(b.lastFlush) >= interval
}

// reset clears all staged postings and restarts the flush timer.
func (b *writeBuffer) reset() {
	b.pending = make(map[string]map[int][]int)
	b.count = 0
	b.lastFlush = time.Now()
}

func (b *writeBuffer) empty() bool {
	return b.count == 0
}
