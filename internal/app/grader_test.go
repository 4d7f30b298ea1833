package app_test

import (
	"testing"

	"kentei-quiz-service/internal/app"
	"kentei-quiz-service/internal/domain"
)

func TestJudge(t *testing.T) {
	cases := []struct {
		name    string
		user    domain.Answer
		correct domain.Answer
		want    bool
	}{
		{"set order independent", domain.Set("b", "a"), domain.Set("A", "B"), true},
		{"set whitespace and case", domain.Set(" tokyo ", "Osaka"), domain.Set("OSAKA", "TOKYO"), true},
		{"set length mismatch", domain.Set("A"), domain.Set("A", "B"), false},
		{"set duplicates are not a match", domain.Set("A", "A"), domain.Set("A", "B"), false},
		{"set against scalar", domain.Set("1868"), domain.Scalar("1868"), false},
		{"scalar against scalar", domain.Scalar(" biwa"), domain.Scalar("BIWA"), true},
		{"scalar against one element set", domain.Scalar("heian-kyo"), domain.Set("HEIAN-KYO"), true},
		{"scalar never matches larger set", domain.Scalar("A"), domain.Set("A", "B"), false},
		{"empty scalar", domain.Scalar(""), domain.Scalar("1868"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.Judge(tc.user, tc.correct); got != tc.want {
				t.Fatalf("Judge(%v, %v) = %v, want %v", tc.user, tc.correct, got, tc.want)
			}
		})
	}
}

func TestFormatUserAnswer(t *testing.T) {
	if got := app.FormatUserAnswer(domain.Set("Kamakura", "Muromachi")); got != "Kamakura、Muromachi" {
		t.Fatalf("unexpected list rendering %q", got)
	}
	if got := app.FormatUserAnswer(domain.Scalar("")); got != "（未回答）" {
		t.Fatalf("expected no-answer marker, got %q", got)
	}
	if got := app.FormatUserAnswer(domain.Scalar("1867")); got != "1867" {
		t.Fatalf("unexpected scalar rendering %q", got)
	}
}

func TestAnswerHashMatchesAcrossForms(t *testing.T) {
	if app.AnswerHash(domain.Set("b", "a")) != app.AnswerHash(domain.Set("A", "B")) {
		t.Fatalf("hash must not depend on order or case")
	}
	if app.AnswerHash(domain.Scalar("1868")) != app.AnswerHash(domain.Set(" 1868 ")) {
		t.Fatalf("scalar must hash as a one element list")
	}
	if app.AnswerHash(domain.Set("A")) == app.AnswerHash(domain.Set("A", "B")) {
		t.Fatalf("different answers must not collide")
	}
	if h := app.AnswerHash(domain.Scalar("x")); len(h) != 64 {
		t.Fatalf("expected hex sha256, got %q", h)
	}
}
