package quality

import (
	"strings"
	"testing"
)

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		title   string
		content string
	}{
		{"empty", "", ""},
		{"short content", "Short", "tiny"},
		{"long keyword-rich", "A reasonably sized headline here", strings.Repeat("politics economy technology science climate international global world breaking ", 30)},
	}

	for _, tc := range cases {
		score := Score(tc.title, tc.content)
		if score < 0.5 || score > 1.0 {
			t.Errorf("%s: score %v out of [0.5, 1.0]", tc.name, score)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	title := "Global markets react to breaking news"
	content := strings.Repeat("The economy shifted today. ", 40)

	first := Score(title, content)
	for i := 0; i < 10; i++ {
		if got := Score(title, content); got != first {
			t.Fatalf("score not deterministic: %v != %v", got, first)
		}
	}
}

func TestScoreComponents(t *testing.T) {
	t.Parallel()

	// Base score only: short content, short title, no keywords.
	if got := Score("Tiny", "no signal here"); got != 0.5 {
		t.Errorf("base score = %v, want 0.5", got)
	}

	// Content length bonuses are additive.
	filler := strings.Repeat("x", 501)
	if got := Score("Tiny", filler); got != 0.7 {
		t.Errorf("content>500 score = %v, want 0.7", got)
	}
	filler = strings.Repeat("x", 1001)
	if got := Score("Tiny", filler); got != 0.8 {
		t.Errorf("content>1000 score = %v, want 0.8", got)
	}

	// Title bonus needs strictly between 20 and 100 characters.
	goodTitle := strings.Repeat("t", 21)
	if got := Score(goodTitle, "short"); got != 0.6 {
		t.Errorf("title bonus score = %v, want 0.6", got)
	}
	if got := Score(strings.Repeat("t", 20), "short"); got != 0.5 {
		t.Errorf("20-char title must not get the bonus, got %v", got)
	}
	if got := Score(strings.Repeat("t", 100), "short"); got != 0.5 {
		t.Errorf("100-char title must not get the bonus, got %v", got)
	}

	// Keywords are case-insensitive, 0.05 each.
	if got := Score("Tiny", "POLITICS and the Economy"); got != 0.6 {
		t.Errorf("two keywords score = %v, want 0.6", got)
	}
}

func TestScoreCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// 300 characters, 900 bytes: no length bonus when counting characters.
	content := strings.Repeat("新", 300)
	if got := Score("Tiny", content); got != 0.5 {
		t.Errorf("multibyte content score = %v, want 0.5", got)
	}

	// 30 characters, 90 bytes: the title bonus applies on character count.
	title := strings.Repeat("题", 30)
	if got := Score(title, "short"); got != 0.6 {
		t.Errorf("multibyte title score = %v, want 0.6", got)
	}
}

func TestScoreClampedAtOne(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("politics economy technology science climate international global world breaking ", 50)
	title := "A headline long enough to qualify for bonus"
	if got := Score(title, content); got != 1.0 {
		t.Errorf("max score = %v, want exactly 1.0", got)
	}
}
