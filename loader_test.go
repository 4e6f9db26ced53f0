package blaze

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

const sampleSGML = `<DOC>
<DOCNO> d1 </DOCNO>
<TEXT>
The quick brown fox jumps over the lazy dog.
</TEXT>
</DOC>
<DOC>
<DOCNO> d2 </DOCNO>
<TEXT>
Another document with <b>markup</b> inside it.
</TEXT>
</DOC>
`

func TestDocumentLoader_Load_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.sgm")
	if err := os.WriteFile(path, []byte(sampleSGML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader := NewDocumentLoader(path)
	docs, err := loader.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() returned %d docs, want 2", len(docs))
	}
	if docs["d1"] == "" {
		t.Error("d1 text is empty")
	}
}

func TestDocumentLoader_Load_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.sgm")
	os.WriteFile(path, []byte(sampleSGML), 0o644)

	loader := NewDocumentLoader(path)
	docs, _ := loader.Load(1)

	text := docs["d2"]
	if containsSubstring(text, "<b>") || containsSubstring(text, "</b>") {
		t.Errorf("doc text = %q, want markup stripped", text)
	}
	if containsSubstring(text, "  ") {
		t.Errorf("doc text = %q, want whitespace collapsed", text)
	}
}

func TestDocumentLoader_Load_Directory(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.sgm"), []byte(sampleSGML), 0o644)
	os.WriteFile(filepath.Join(dir, "b.sgm"), []byte(`<DOC>
<DOCNO> d3 </DOCNO>
<TEXT>
A third document lives in a second file.
</TEXT>
</DOC>
`), 0o644)

	loader := NewDocumentLoader(dir)
	docs, err := loader.Load(4)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Load() over a directory returned %d docs, want 3", len(docs))
	}
}

func TestDocumentLoader_Load_GzipFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.sgm.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(sampleSGML))
	gz.Close()
	f.Close()

	loader := NewDocumentLoader(path)
	docs, err := loader.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Load() on a gzipped file returned %d docs, want 2", len(docs))
	}
}

func TestDocumentLoader_Load_EmptyCorpusErrors(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "empty.sgm"), []byte("not a DOC block at all"), 0o644)

	loader := NewDocumentLoader(dir)
	_, err := loader.Load(1)
	if err != ErrCorpusEmpty {
		t.Errorf("Load() error = %v, want %v", err, ErrCorpusEmpty)
	}
}

func TestDocumentLoader_Load_MissingPathErrors(t *testing.T) {
	loader := NewDocumentLoader("/nonexistent/path/to/corpus")
	_, err := loader.Load(1)
	if err == nil {
		t.Error("Load() on a missing path should return an error")
	}
}

func TestExtractDocument_FindsMatchingDocID(t *testing.T) {
	text, ok := extractDocument(sampleSGML, "d2")
	if !ok {
		t.Fatal("extractDocument() should find d2")
	}
	if containsSubstring(text, "<b>") {
		t.Errorf("extractDocument() = %q, want markup stripped", text)
	}
}

func TestExtractDocument_UnknownDocID(t *testing.T) {
	_, ok := extractDocument(sampleSGML, "nonexistent")
	if ok {
		t.Error("extractDocument() should report false for an unknown doc id")
	}
}
