package app

import (
	"strings"

	"kentei-quiz-service/internal/domain"
)

// BuildQuestionSet derives the question list, answer key and hints of one level from a
// single row snapshot.
//
// Rows with an empty answer cell stay in the question list but get no answer key entry,
// which makes them always-incorrect when graded. The same holds for choice rows whose
// labels resolve to no choice text.
func BuildQuestionSet(level string, rows []domain.QuestionRow) domain.QuestionSet {
	set := domain.QuestionSet{
		Questions: make([]domain.Question, 0),
		Answers:   make(domain.AnswerKey),
		Hints:     make(domain.HintMap),
	}

	for _, row := range rows {
		if strings.TrimSpace(row.Level) != level {
			continue
		}
		id := strings.TrimSpace(row.ID)
		selection := selectionTypeOf(row.SelectionType)

		set.Questions = append(set.Questions, domain.Question{
			ID:            id,
			Level:         level,
			SelectionType: selection,
			DisplayType:   displayTypeOf(row.DisplayType),
			Question:      row.Question,
			ChoiceA:       row.ChoiceA,
			ChoiceB:       row.ChoiceB,
			ChoiceC:       row.ChoiceC,
			ChoiceD:       row.ChoiceD,
		})
		set.Hints[id] = domain.Hint{
			Question: row.Question,
			HintURL:  row.HintURL,
			HintText: row.HintText,
		}

		raw := strings.TrimSpace(row.CorrectLabels)
		if id == "" || raw == "" {
			continue
		}
		if selection == domain.SelectionInput {
			set.Answers[id] = domain.Scalar(normalize(raw))
			continue
		}
		if texts := resolveLabels(raw, row); len(texts) > 0 {
			set.Answers[id] = domain.Set(texts...)
		}
	}
	return set
}

// resolveLabels maps comma separated choice letters to their choice texts.
func resolveLabels(raw string, row domain.QuestionRow) []string {
	byLabel := map[string]string{
		"A": row.ChoiceA,
		"B": row.ChoiceB,
		"C": row.ChoiceC,
		"D": row.ChoiceD,
	}
	var texts []string
	for _, label := range strings.Split(raw, ",") {
		text := normalize(byLabel[normalize(label)])
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

func selectionTypeOf(raw string) domain.SelectionType {
	switch domain.SelectionType(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.SelectionMultiple:
		return domain.SelectionMultiple
	case domain.SelectionInput:
		return domain.SelectionInput
	default:
		return domain.SelectionSingle
	}
}

func displayTypeOf(raw string) domain.DisplayType {
	if domain.DisplayType(strings.ToLower(strings.TrimSpace(raw))) == domain.DisplayImage {
		return domain.DisplayImage
	}
	return domain.DisplayText
}
