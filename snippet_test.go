package blaze

import "testing"

func testSnippetGenerator(content map[string]string, cfg Config) *SnippetGenerator {
	return NewSnippetGenerator(MapContentProvider(content), cfg)
}

func TestSnippetGenerator_BasicMatch(t *testing.T) {
	g := testSnippetGenerator(map[string]string{
		"d1": "the quick brown fox jumps over the lazy dog",
	}, DefaultConfig())

	snippet := g.Snippet("d1", []string{"fox"})
	if !containsSubstring(snippet, "fox") {
		t.Errorf("Snippet() = %q, want it to contain the matched term", snippet)
	}
}

func TestSnippetGenerator_CaseInsensitiveMatch(t *testing.T) {
	g := testSnippetGenerator(map[string]string{
		"d1": "The Quick Brown Fox",
	}, DefaultConfig())

	snippet := g.Snippet("d1", []string{"quick"})
	if !containsSubstring(snippet, "Quick") {
		t.Errorf("Snippet() = %q, want it to match case-insensitively", snippet)
	}
}

func TestSnippetGenerator_UnknownDocument(t *testing.T) {
	g := testSnippetGenerator(map[string]string{}, DefaultConfig())

	snippet := g.Snippet("missing", []string{"fox"})
	if snippet != unavailableSnippet {
		t.Errorf("Snippet() for an unknown doc = %q, want %q", snippet, unavailableSnippet)
	}
}

func TestSnippetGenerator_NoMatchFallsBackToPrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSnippetLength = 10
	g := testSnippetGenerator(map[string]string{
		"d1": "the quick brown fox jumps over the lazy dog",
	}, cfg)

	snippet := g.Snippet("d1", []string{"nonexistent"})
	if snippet != "the quick ..." {
		t.Errorf("Snippet() with no match = %q, want a truncated prefix", snippet)
	}
}

func TestSnippetGenerator_AdjacentRangesMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextSize = 20
	g := testSnippetGenerator(map[string]string{
		"d1": "the quick brown fox jumps over the lazy dog",
	}, cfg)

	snippet := g.Snippet("d1", []string{"quick", "fox"})
	if !containsSubstring(snippet, "quick") || !containsSubstring(snippet, "fox") {
		t.Errorf("Snippet() = %q, want both nearby matches in one merged span", snippet)
	}
}

func TestSnippetGenerator_EllipsisOnlyWhenTruncated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextSize = 100
	cfg.MaxSnippetLength = 250
	content := "short doc with fox in it"
	g := testSnippetGenerator(map[string]string{"d1": content}, cfg)

	snippet := g.Snippet("d1", []string{"fox"})
	if snippet != content {
		t.Errorf("Snippet() = %q, want the full document unchanged (no ellipsis needed)", snippet)
	}
}

func TestSnippetGenerator_RecentersWhenOverLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextSize = 200
	cfg.MaxSnippetLength = 20
	longDoc := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa fox bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	g := testSnippetGenerator(map[string]string{"d1": longDoc}, cfg)

	snippet := g.Snippet("d1", []string{"fox"})
	if len(snippet) > cfg.MaxSnippetLength+6 {
		t.Errorf("Snippet() length = %d, want roughly bounded by MaxSnippetLength=%d", len(snippet), cfg.MaxSnippetLength)
	}
	if !containsSubstring(snippet, "fox") {
		t.Errorf("Snippet() = %q, want the recentered window to still contain the match", snippet)
	}
}

func TestHighlight_WrapsMatches(t *testing.T) {
	got := Highlight("the quick brown fox", []string{"quick", "fox"})
	want := "the <b>quick</b> brown <b>fox</b>"
	if got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_CaseInsensitive(t *testing.T) {
	got := Highlight("The Quick Fox", []string{"quick"})
	want := "The <b>Quick</b> Fox"
	if got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_LongestTermFirst(t *testing.T) {
	got := Highlight("machine learning", []string{"learn", "machine learning"})
	want := "<b>machine learning</b>"
	if got != want {
		t.Errorf("Highlight() = %q, want the longer term to win: %q", got, want)
	}
}

func TestHighlight_NoMatches(t *testing.T) {
	got := Highlight("nothing relevant here", []string{"absent"})
	if got != "nothing relevant here" {
		t.Errorf("Highlight() = %q, want text unchanged", got)
	}
}

func TestMapContentProvider_Content(t *testing.T) {
	provider := MapContentProvider{"d1": "hello world"}

	text, ok := provider.Content("d1")
	if !ok || text != "hello world" {
		t.Errorf("Content() = (%q, %v), want (\"hello world\", true)", text, ok)
	}

	_, ok = provider.Content("missing")
	if ok {
		t.Error("Content() for a missing doc id should report ok=false")
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
