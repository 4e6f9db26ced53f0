package blaze

import "testing"

func TestParse_FreeTermsOnly(t *testing.T) {
	parsed := Parse("machine learning", DefaultAnalyzerConfig())

	if len(parsed.Phrases) != 0 {
		t.Errorf("Parse() phrases = %v, want none", parsed.Phrases)
	}
	if !equalStrings(parsed.Terms, []string{"machin", "learn"}) {
		t.Errorf("Parse() terms = %v, want stemmed [machin learn]", parsed.Terms)
	}
}

func TestParse_SinglePhrase(t *testing.T) {
	parsed := Parse(`"machine learning"`, DefaultAnalyzerConfig())

	if len(parsed.Terms) != 0 {
		t.Errorf("Parse() terms = %v, want none", parsed.Terms)
	}
	if len(parsed.Phrases) != 1 {
		t.Fatalf("Parse() phrases = %v, want 1 phrase", parsed.Phrases)
	}
}

func TestParse_PhrasePlusFreeTerms(t *testing.T) {
	parsed := Parse(`"machine learning" python`, DefaultAnalyzerConfig())

	if len(parsed.Phrases) != 1 {
		t.Fatalf("Parse() phrases = %v, want 1 phrase", parsed.Phrases)
	}
	if !equalStrings(parsed.Terms, []string{"python"}) {
		t.Errorf("Parse() free terms = %v, want [python]", parsed.Terms)
	}
}

func TestParse_PhraseKeepsStopwords(t *testing.T) {
	parsed := Parse(`"to be or not to be"`, DefaultAnalyzerConfig())

	if len(parsed.Phrases) != 1 {
		t.Fatalf("Parse() phrases = %v, want 1 phrase", parsed.Phrases)
	}
	if len(parsed.Phrases[0]) != 6 {
		t.Errorf("Parse() phrase tokens = %v, want all 6 words kept (stopwords preserved in a phrase)", parsed.Phrases[0])
	}
}

func TestParse_FreeTermsDropStopwords(t *testing.T) {
	parsed := Parse("the quick and the brown fox", DefaultAnalyzerConfig())

	for _, term := range parsed.Terms {
		if term == "the" || term == "and" {
			t.Errorf("Parse() free terms = %v, should have dropped stopwords", parsed.Terms)
		}
	}
}

func TestParse_UnmatchedQuoteIsLiteralText(t *testing.T) {
	parsed := Parse(`machine "learning fun`, DefaultAnalyzerConfig())

	if len(parsed.Phrases) != 0 {
		t.Errorf("Parse() phrases = %v, want none for an unbalanced quote", parsed.Phrases)
	}
	if len(parsed.Terms) == 0 {
		t.Error("Parse() should still tokenize the unquoted text as free terms")
	}
}

func TestParse_EmptyQuery(t *testing.T) {
	parsed := Parse("", DefaultAnalyzerConfig())
	if len(parsed.Terms) != 0 || len(parsed.Phrases) != 0 {
		t.Errorf("Parse(\"\") = %+v, want an empty ParsedQuery", parsed)
	}
}

func TestParse_EmptyPhraseIgnored(t *testing.T) {
	parsed := Parse(`"" machine`, DefaultAnalyzerConfig())
	if len(parsed.Phrases) != 0 {
		t.Errorf("Parse() phrases = %v, want empty phrase dropped", parsed.Phrases)
	}
}

func TestParse_MultiplePhrases(t *testing.T) {
	parsed := Parse(`"machine learning" and "deep learning"`, DefaultAnalyzerConfig())
	if len(parsed.Phrases) != 2 {
		t.Fatalf("Parse() phrases = %v, want 2 phrases", parsed.Phrases)
	}
}

func TestIsExactMatch_ContiguousRun(t *testing.T) {
	if !IsExactMatch([]int{5, 3, 4}, 3) {
		t.Error("IsExactMatch() should find a contiguous run regardless of input order")
	}
}

func TestIsExactMatch_NoRun(t *testing.T) {
	if IsExactMatch([]int{1, 5, 9}, 3) {
		t.Error("IsExactMatch() should be false when no run of the required length exists")
	}
}

func TestIsExactMatch_TooFewPositions(t *testing.T) {
	if IsExactMatch([]int{1, 2}, 3) {
		t.Error("IsExactMatch() should be false when fewer positions than the phrase length are given")
	}
}

func TestIsExactMatch_SingleTermPhrase(t *testing.T) {
	if !IsExactMatch([]int{7}, 1) {
		t.Error("IsExactMatch() should treat any single position as a valid length-1 run")
	}
}
