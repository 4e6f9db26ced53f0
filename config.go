package blaze

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config bundles every tunable of the engine behind a single value that
// gets threaded through constructors explicitly, rather than read from
// package-level globals. This keeps indexing and search parameters
// reproducible across runs and testable in isolation.
type Config struct {
	// Analysis
	MinTokenLength  int  // minimum token length to keep
	EnableStemming  bool // apply the Snowball stemmer
	EnableStopwords bool // drop stopwords during indexing (never during phrase tokenization)
	CaseInsensitive bool // fold case before indexing/search
	FilterDigits    bool // drop purely-numeric tokens

	// BM25
	K1 float64
	B  float64

	// Phrase scoring
	PhraseBoost float64

	// Snippets
	ContextSize      int // characters of context kept around a match
	MaxSnippetLength int // hard cap on generated snippet length

	// Write buffering
	BufferSize    int           // flush after this many buffered position-events
	FlushInterval time.Duration // flush after this much time since the last flush

	// Indexing concurrency
	BatchSize  int // documents per indexing batch
	MaxThreads int // 0 means min(NumCPU, 8), overridden by INDEXER_THREADS

	// Retrieval
	TopN int // default number of results returned by search
}

// DefaultConfig returns the engine's standard tuning, matching the
// original tool's config.py defaults.
func DefaultConfig() Config {
	return Config{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
		CaseInsensitive: true,
		FilterDigits:    false,

		K1: 1.5,
		B:  0.75,

		PhraseBoost: 2.0,

		ContextSize:      100,
		MaxSnippetLength: 250,

		BufferSize:    100_000,
		FlushInterval: 30 * time.Second,

		BatchSize:  1000,
		MaxThreads: 0,

		TopN: 10,
	}
}

// ResolveThreads returns the worker count to use for indexing: the
// INDEXER_THREADS environment variable if set to a positive integer,
// otherwise Config.MaxThreads if positive, otherwise min(NumCPU, 8).
func (c Config) ResolveThreads() int {
	if v := os.Getenv("INDEXER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}

	if c.MaxThreads > 0 {
		return c.MaxThreads
	}

	if n := runtime.NumCPU(); n < 8 {
		return n
	}
	return 8
}

// AnalyzerConfig projects the analysis-relevant fields of Config into
// the shape the tokenizer consumes.
func (c Config) AnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinTokenLength:  c.MinTokenLength,
		EnableStemming:  c.EnableStemming,
		EnableStopwords: c.EnableStopwords,
		CaseInsensitive: c.CaseInsensitive,
		FilterDigits:    c.FilterDigits,
	}
}

// BM25Parameters projects the BM25-relevant fields of Config.
func (c Config) BM25Parameters() BM25Parameters {
	return BM25Parameters{K1: c.K1, B: c.B}
}
