package domain

import "time"

// SelectionType tells the client how a question is answered.
type SelectionType string

const (
	SelectionSingle   SelectionType = "single"
	SelectionMultiple SelectionType = "multiple"
	SelectionInput    SelectionType = "input"
)

// DisplayType tells the client how the prompt is rendered.
type DisplayType string

const (
	DisplayText  DisplayType = "text"
	DisplayImage DisplayType = "image"
)

// Question is the client-facing view of a row. It never carries the plaintext answer.
type Question struct {
	ID            string        `json:"id"`
	Level         string        `json:"level"`
	SelectionType SelectionType `json:"selectionType"`
	DisplayType   DisplayType   `json:"displayType"`
	Question      string        `json:"question"`
	ChoiceA       string        `json:"choiceA"`
	ChoiceB       string        `json:"choiceB"`
	ChoiceC       string        `json:"choiceC"`
	ChoiceD       string        `json:"choiceD"`
	// CorrectHash is only populated for the timed modes.
	CorrectHash string `json:"correctHash,omitempty"`
}

// Choices returns the four choice texts in label order.
func (q Question) Choices() [4]string {
	return [4]string{q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD}
}

// SetChoices writes the choice texts back in label order.
func (q *Question) SetChoices(c [4]string) {
	q.ChoiceA, q.ChoiceB, q.ChoiceC, q.ChoiceD = c[0], c[1], c[2], c[3]
}

// QuestionRow is one raw row of a topic partition in the backing store.
// Column order: id, level, selectionType, displayType, question, choiceA..D,
// correctLabels, hintUrl, hintText.
type QuestionRow struct {
	ID            string
	Level         string
	SelectionType string
	DisplayType   string
	Question      string
	ChoiceA       string
	ChoiceB       string
	ChoiceC       string
	ChoiceD       string
	CorrectLabels string
	HintURL       string
	HintText      string
}

// QuestionRowColumns is the number of columns a topic partition row carries.
const QuestionRowColumns = 12

// QuestionRowFromCells maps positional cells onto a row; short rows are padded with empty strings.
func QuestionRowFromCells(cells []string) QuestionRow {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return QuestionRow{
		ID:            get(0),
		Level:         get(1),
		SelectionType: get(2),
		DisplayType:   get(3),
		Question:      get(4),
		ChoiceA:       get(5),
		ChoiceB:       get(6),
		ChoiceC:       get(7),
		ChoiceD:       get(8),
		CorrectLabels: get(9),
		HintURL:       get(10),
		HintText:      get(11),
	}
}

// Cells is the inverse of QuestionRowFromCells.
func (r QuestionRow) Cells() []string {
	return []string{
		r.ID, r.Level, r.SelectionType, r.DisplayType, r.Question,
		r.ChoiceA, r.ChoiceB, r.ChoiceC, r.ChoiceD,
		r.CorrectLabels, r.HintURL, r.HintText,
	}
}

// AnswerKey maps question id to its canonical correct answer.
type AnswerKey map[string]Answer

// Hint is remediation content shown next to a wrong answer.
type Hint struct {
	Question string `json:"question"`
	HintURL  string `json:"hintUrl"`
	HintText string `json:"hintText"`
}

// HintMap maps question id to its hint. Missing entries are valid.
type HintMap map[string]Hint

// QuestionSet is everything derived from one (topic, level) partition in a single pass.
type QuestionSet struct {
	Questions []Question
	Answers   AnswerKey
	Hints     HintMap
}

// AnswerSubmission is one submitted answer in a batch.
type AnswerSubmission struct {
	QuestionID string `json:"questionId"`
	Answer     Answer `json:"answer"`
}

// WrongAnswer describes an incorrect entry of a graded batch.
type WrongAnswer struct {
	QuestionNumber int    `json:"questionNumber"`
	Question       string `json:"question"`
	UserAnswer     string `json:"userAnswer"`
	HintText       string `json:"hintText"`
	HintURL        string `json:"hintUrl"`
}

// GradeResult is the outcome of a batch. Results is parallel to the submitted answers.
type GradeResult struct {
	Results      []bool        `json:"results"`
	WrongAnswers []WrongAnswer `json:"wrongAnswers"`
}

// Certificate is an immutable pass record. ID is a capability token, not an index.
type Certificate struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Level     string    `json:"level"`
	Nickname  string    `json:"nickname"`
	IssuedAt  string    `json:"issuedAt"`
	ImageData string    `json:"imageData"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScoreEntry is one leaderboard row, unique per (BrowserID, Mode).
type ScoreEntry struct {
	BrowserID string
	Nickname  string
	Score     int
	Timestamp time.Time
	Mode      string
}

// RankedEntry is a ScoreEntry annotated for display.
type RankedEntry struct {
	Rank          int       `json:"rank"`
	Nickname      string    `json:"nickname"`
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
	BrowserID     string    `json:"browserId"`
	IsCurrentUser bool      `json:"isCurrentUser"`
}

// Leaderboard captures the ordered scoreboard for a mode.
type Leaderboard struct {
	Mode      string        `json:"mode"`
	Rankings  []RankedEntry `json:"rankings"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
