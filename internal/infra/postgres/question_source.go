package postgres

import (
	"context"
	"fmt"

	"kentei-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionSource loads topic partitions from the question_rows table in position order.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

func (s *QuestionSource) LoadRows(ctx context.Context, topic string) ([]domain.QuestionRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, level, selection_type, display_type, question,
		       choice_a, choice_b, choice_c, choice_d,
		       correct_labels, hint_url, hint_text
		FROM question_rows
		WHERE topic = $1
		ORDER BY position`, topic)
	if err != nil {
		return nil, fmt.Errorf("query question rows: %w", err)
	}
	defer rows.Close()

	var out []domain.QuestionRow
	for rows.Next() {
		var r domain.QuestionRow
		if err := rows.Scan(
			&r.ID, &r.Level, &r.SelectionType, &r.DisplayType, &r.Question,
			&r.ChoiceA, &r.ChoiceB, &r.ChoiceC, &r.ChoiceD,
			&r.CorrectLabels, &r.HintURL, &r.HintText,
		); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.ErrTopicNotFound
	}
	return out, nil
}

// InsertRows appends rows to a topic partition after its current last position.
func (s *QuestionSource) InsertRows(ctx context.Context, topic string, rows []domain.QuestionRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var next int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM question_rows WHERE topic = $1`, topic).Scan(&next); err != nil {
		return fmt.Errorf("next position: %w", err)
	}
	for i, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO question_rows (topic, position, id, level, selection_type, display_type, question,
			                           choice_a, choice_b, choice_c, choice_d, correct_labels, hint_url, hint_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			topic, next+i, r.ID, r.Level, r.SelectionType, r.DisplayType, r.Question,
			r.ChoiceA, r.ChoiceB, r.ChoiceC, r.ChoiceD, r.CorrectLabels, r.HintURL, r.HintText,
		); err != nil {
			return fmt.Errorf("insert question row: %w", err)
		}
	}
	return tx.Commit(ctx)
}
