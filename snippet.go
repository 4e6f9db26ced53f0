package blaze

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SnippetContentProvider supplies the raw text of a document given its
// external doc id. Fetching content is deliberately decoupled from the
// index itself: the index only ever stores token positions, not the
// original text.
type SnippetContentProvider interface {
	Content(docID string) (string, bool)
}

// MapContentProvider serves document text from an in-memory map — the
// shape used by callers who already hold the corpus in memory, such as
// tests. The CLI uses CorpusContentProvider.
type MapContentProvider map[string]string

func (m MapContentProvider) Content(docID string) (string, bool) {
	text, ok := m[docID]
	return text, ok
}

// CorpusContentProvider re-reads document text on demand from the SGML
// corpus files on disk, building a doc_id → file path map once at
// construction. Trades memory for a cheap repeated file walk.
type CorpusContentProvider struct {
	docToFile map[string]string
}

var docnoPattern = regexp.MustCompile(`(?s)<DOC>.*?<DOCNO>\s*(.*?)\s*</DOCNO>`)

// NewCorpusContentProvider walks corpusPath and indexes every <DOCNO>
// found in every file under it, plain or gzipped.
func NewCorpusContentProvider(corpusPath string) (*CorpusContentProvider, error) {
	p := &CorpusContentProvider{docToFile: make(map[string]string)}

	info, err := os.Stat(corpusPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		p.indexFile(corpusPath)
		return p, nil
	}

	err = filepath.Walk(corpusPath, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		p.indexFile(path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *CorpusContentProvider) indexFile(path string) {
	text, err := readCorpusFile(path)
	if err != nil {
		return
	}
	for _, match := range docnoPattern.FindAllStringSubmatch(text, -1) {
		p.docToFile[strings.TrimSpace(match[1])] = path
	}
}

func (p *CorpusContentProvider) Content(docID string) (string, bool) {
	path, ok := p.docToFile[docID]
	if !ok {
		return "", false
	}
	text, err := readCorpusFile(path)
	if err != nil {
		return "", false
	}
	doc, ok := extractDocument(text, docID)
	if !ok {
		return "", false
	}
	return doc, true
}

// SnippetGenerator produces query-focused excerpts of document text,
// with an optional term-highlighting pass.
type SnippetGenerator struct {
	content          SnippetContentProvider
	contextSize      int
	maxSnippetLength int
}

// NewSnippetGenerator constructs a SnippetGenerator backed by content,
// tuned by cfg's ContextSize and MaxSnippetLength.
func NewSnippetGenerator(content SnippetContentProvider, cfg Config) *SnippetGenerator {
	return &SnippetGenerator{
		content:          content,
		contextSize:      cfg.ContextSize,
		maxSnippetLength: cfg.MaxSnippetLength,
	}
}

const unavailableSnippet = "document content unavailable"

type byteRange struct{ start, end int }

// Snippet returns a short excerpt of docID's text centered on the
// occurrences of queryTerms.
//
// Algorithm: case-fold both text and terms for matching; scan for every
// byte-offset range where a term occurs (overlaps allowed); merge
// adjacent ranges within ContextSize of each other; expand the first
// merged range by ContextSize on each side; if still too long, recenter
// on the match's midpoint and clamp to MaxSnippetLength; prepend/append
// an ellipsis if the snippet doesn't reach the document's edges.
func (g *SnippetGenerator) Snippet(docID string, queryTerms []string) string {
	content, ok := g.content.Content(docID)
	if !ok {
		return unavailableSnippet
	}

	contentLower := strings.ToLower(content)
	var ranges []byteRange
	for _, term := range queryTerms {
		termLower := strings.ToLower(term)
		if termLower == "" {
			continue
		}
		pos := 0
		for {
			idx := strings.Index(contentLower[pos:], termLower)
			if idx == -1 {
				break
			}
			start := pos + idx
			ranges = append(ranges, byteRange{start, start + len(termLower)})
			pos = start + 1
			if pos >= len(contentLower) {
				break
			}
		}
	}

	if len(ranges) == 0 {
		end := g.maxSnippetLength
		if end > len(content) {
			end = len(content)
		}
		return content[:end] + "..."
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	merged := []byteRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end+g.contextSize {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}

	span := merged[0]
	start := span.start - g.contextSize
	if start < 0 {
		start = 0
	}
	end := span.end + g.contextSize
	if end > len(content) {
		end = len(content)
	}

	if end-start > g.maxSnippetLength {
		half := g.maxSnippetLength / 2
		center := (span.start + span.end) / 2
		start = center - half
		if start < 0 {
			start = 0
		}
		end = start + g.maxSnippetLength
		if end > len(content) {
			end = len(content)
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// Highlight wraps each case-insensitive occurrence of a query term in
// <b>...</b>, processing terms longest-first so a short term never
// clobbers a longer one it's a substring of.
func Highlight(snippet string, queryTerms []string) string {
	terms := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return snippet
	}
	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	for i, term := range terms {
		terms[i] = regexp.QuoteMeta(term)
	}

	pattern := regexp.MustCompile(`(?i)(?:` + strings.Join(terms, "|") + `)`)
	return pattern.ReplaceAllString(snippet, "<b>$0</b>")
}
