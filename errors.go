package blaze

import "errors"

// Error kinds returned by the public surface of the package. Each wraps
// an underlying cause with fmt.Errorf("...: %w", err) so callers can use
// errors.Is against these sentinels while still seeing the original error
// text.
var (
	// ErrIoError wraps failures reading or writing corpus files and index
	// snapshots.
	ErrIoError = errors.New("io error")

	// ErrCorruptIndex is returned when a serialized index fails to decode,
	// or decodes into a structurally inconsistent state.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrCorpusEmpty is returned when a corpus directory yields zero
	// documents to index.
	ErrCorpusEmpty = errors.New("corpus is empty")

	// ErrMissingIndex is returned when a search or interactive session is
	// started against an index path that doesn't exist.
	ErrMissingIndex = errors.New("index not found")

	// ErrMalformedQuery is reserved: Parse accepts every input (an
	// unterminated quote is read as literal text) and never returns it.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrDuplicateDoc is returned by AddDocument when the external
	// document ID has already been registered. The engine has no
	// incremental update model, so re-adding a doc ID is a caller error.
	ErrDuplicateDoc = errors.New("duplicate document id")
)
