package blaze

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/klauspost/pgzip"
)

// DocumentLoader reads an SGML-tagged corpus off disk into the
// doc_id → text pairs the Indexer consumes. Corpus files may be
// gzip-compressed (.gz) or plain text, and a single path may be either
// one file or a directory tree.
type DocumentLoader struct {
	corpusPath string
}

// NewDocumentLoader builds a loader rooted at corpusPath.
func NewDocumentLoader(corpusPath string) *DocumentLoader {
	return &DocumentLoader{corpusPath: corpusPath}
}

var (
	docBlockPattern = regexp.MustCompile(`(?s)<DOC>.*?<DOCNO>\s*(.*?)\s*</DOCNO>(.*?)</DOC>`)
	textTagPattern  = regexp.MustCompile(`(?s)<TEXT>(.*?)</TEXT>`)
	anyTagPattern   = regexp.MustCompile(`<[^>]+>`)
	whitespacePat   = regexp.MustCompile(`\s+`)
)

// readCorpusFile reads path, decompressing on the fly if it ends in
// .gz, tolerating invalid UTF-8 the way the reference loader does
// (errors.Replace semantics: bad bytes become U+FFFD rather than
// aborting the read).
func readCorpusFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrIoError)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, ErrIoError)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrIoError)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// extractDocument returns the cleaned body text of docID within the
// already-read content of one corpus file, if present.
func extractDocument(content, docID string) (string, bool) {
	for _, match := range docBlockPattern.FindAllStringSubmatch(content, -1) {
		if strings.TrimSpace(match[1]) == docID {
			return extractDocContent(match[2]), true
		}
	}
	return "", false
}

// extractDocContent pulls the <TEXT> body out of a <DOC> block (or uses
// the whole block if there's no <TEXT> tag), strips any remaining
// markup, and collapses whitespace.
func extractDocContent(docText string) string {
	content := docText
	if m := textTagPattern.FindStringSubmatch(docText); m != nil {
		content = m[1]
	}
	content = anyTagPattern.ReplaceAllString(content, " ")
	content = whitespacePat.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// loadFile parses every <DOC>...</DOC> block out of a single corpus
// file into doc_id -> text pairs. Read or decode failures are logged
// and skipped rather than propagated — one bad file in a large corpus
// must not abort the whole load.
func (l *DocumentLoader) loadFile(path string) map[string]string {
	content, err := readCorpusFile(path)
	if err != nil {
		slog.Warn("skipping unreadable corpus file", slog.String("path", path), slog.Any("error", err))
		return nil
	}

	docs := make(map[string]string)
	for _, match := range docBlockPattern.FindAllStringSubmatch(content, -1) {
		docID := strings.TrimSpace(match[1])
		text := extractDocContent(match[2])
		if docID != "" && text != "" {
			docs[docID] = text
		}
	}
	return docs
}

// Load walks corpusPath (a single file or a directory tree) and
// returns every document found, keyed by doc id. Files are parsed
// concurrently; result merging happens on the caller's goroutine so no
// lock is needed around the output map.
func (l *DocumentLoader) Load(workers int) (map[string]string, error) {
	info, err := os.Stat(l.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.corpusPath, ErrCorpusEmpty)
	}

	var files []string
	if info.IsDir() {
		err := filepath.Walk(l.corpusPath, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.corpusPath, ErrIoError)
		}
	} else {
		files = []string{l.corpusPath}
	}

	if len(files) == 0 {
		return nil, ErrCorpusEmpty
	}

	if workers <= 0 {
		workers = 1
	}

	slog.Info("loading corpus", slog.Int("files", len(files)), slog.Int("workers", workers))

	jobs := make(chan string)
	results := make(chan map[string]string)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- l.loadFile(path)
			}
		}()
	}

	go func() {
		for _, path := range files {
			jobs <- path
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	documents := make(map[string]string)
	processed := 0
	for docs := range results {
		for id, text := range docs {
			documents[id] = text
		}
		processed++
		if processed%1000 == 0 || processed == len(files) {
			slog.Info("corpus load progress",
				slog.Int("files_processed", processed),
				slog.Int("files_total", len(files)),
				slog.Int("documents", len(documents)))
		}
	}

	if len(documents) == 0 {
		return nil, ErrCorpusEmpty
	}
	return documents, nil
}
