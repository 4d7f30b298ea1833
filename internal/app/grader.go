package app

import (
	"sort"
	"strings"
	"unicode/utf16"

	"kentei-quiz-service/internal/domain"
)

const (
	// answerListSeparator renders multi-choice answers in wrong-answer reports.
	answerListSeparator = "、"
	// noAnswerMarker stands in for a missing or empty answer.
	noAnswerMarker = "（未回答）"
)

// Judge reports whether user matches correct.
//
// Sets compare as order-independent exact sets of equal length. A scalar matches a
// scalar, or a set with exactly one element; it never matches a larger set.
func Judge(user, correct domain.Answer) bool {
	if user.IsSet() {
		if !correct.IsSet() {
			return false
		}
		ua, ca := user.Values(), correct.Values()
		if len(ua) != len(ca) {
			return false
		}
		return joinNormalized(ua) == joinNormalized(ca)
	}

	if correct.IsSet() {
		values := correct.Values()
		if len(values) != 1 {
			return false
		}
		return normalize(user.Value()) == normalize(values[0])
	}
	return normalize(user.Value()) == normalize(correct.Value())
}

// FormatUserAnswer renders a submitted answer for the wrong-answer report.
func FormatUserAnswer(a domain.Answer) string {
	if a.IsSet() {
		return strings.Join(a.Values(), answerListSeparator)
	}
	if a.Value() == "" {
		return noAnswerMarker
	}
	return a.Value()
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// joinNormalized normalizes each value, sorts them and joins with a single comma.
// Browser clients sort with UTF-16 code unit order, so we do too.
func joinNormalized(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	sort.Slice(out, func(i, j int) bool { return lessUTF16(out[i], out[j]) })
	return strings.Join(out, ",")
}

func lessUTF16(a, b string) bool {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
