package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pollsapi/internal/core/domain"
	"pollsapi/internal/core/ports"
)

type questionRepository struct {
	db *sql.DB
}

func NewQuestionRepository(db *sql.DB) ports.QuestionRepository {
	return &questionRepository{
		db: db,
	}
}

func (r *questionRepository) CreateQuestion(ctx context.Context, text string) (*domain.Question, error) {
	// Validation belongs to the service, but malformed input is rejected
	// here as well rather than persisted.
	if text == "" {
		return nil, domain.ErrEmptyQuestionText
	}

	query := `
		INSERT INTO questions (question_text)
		VALUES ($1)
		RETURNING id, published_at
	`

	question := domain.Question{
		QuestionText: text,
		Choices:      []domain.Choice{},
	}
	err := r.db.QueryRowContext(ctx, query, text).Scan(&question.ID, &question.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	return &question, nil
}

func (r *questionRepository) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	query := `
		SELECT id, question_text, published_at
		FROM questions
		WHERE id = $1
	`

	var question domain.Question
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID, &question.QuestionText, &question.PublishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	choices, err := r.ListChoices(ctx, question.ID)
	if err != nil {
		return nil, err
	}
	question.Choices = choices

	return &question, nil
}

func (r *questionRepository) ListQuestions(ctx context.Context) ([]*domain.Question, error) {
	query := `
		SELECT id, question_text, published_at
		FROM questions
		ORDER BY published_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(&question.ID, &question.QuestionText, &question.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	for _, question := range questions {
		choices, err := r.ListChoices(ctx, question.ID)
		if err != nil {
			return nil, err
		}
		question.Choices = choices
	}

	return questions, nil
}

func (r *questionRepository) UpdateQuestionText(ctx context.Context, id int64, text string) error {
	query := `
		UPDATE questions SET question_text = $2 WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, text)
	if err != nil {
		return fmt.Errorf("failed to update question text: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// DeleteQuestion removes the question and all of its choices in one
// transaction, so no state is observable where one is gone and the other
// remains. A second delete of the same id reports not-found.
func (r *questionRepository) DeleteQuestion(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM choices WHERE question_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete choices: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrQuestionNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *questionRepository) ListChoices(ctx context.Context, questionID int64) ([]domain.Choice, error) {
	query := `
		SELECT id, question_id, choice_text, votes
		FROM choices
		WHERE question_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get choices: %w", err)
	}
	defer rows.Close()

	choices := []domain.Choice{}
	for rows.Next() {
		var choice domain.Choice
		if err := rows.Scan(&choice.ID, &choice.QuestionID, &choice.ChoiceText, &choice.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, choice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating choices: %w", err)
	}
	return choices, nil
}

func (r *questionRepository) CreateChoice(ctx context.Context, questionID int64, text string) (*domain.Choice, error) {
	query := `
		INSERT INTO choices (question_id, choice_text)
		VALUES ($1, $2)
		RETURNING id, votes
	`

	choice := domain.Choice{
		QuestionID: questionID,
		ChoiceText: text,
	}
	err := r.db.QueryRowContext(ctx, query, questionID, text).Scan(&choice.ID, &choice.Votes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert choice: %w", err)
	}

	return &choice, nil
}

func (r *questionRepository) UpdateChoiceText(ctx context.Context, id int64, text string) error {
	query := `
		UPDATE choices SET choice_text = $2 WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, text)
	if err != nil {
		return fmt.Errorf("failed to update choice text: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrChoiceNotFound
	}
	return nil
}

func (r *questionRepository) DeleteChoice(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM choices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete choice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrChoiceNotFound
	}
	return nil
}

// ApplyChoiceChanges executes one reconciliation plan in a single
// transaction, so a mid-sequence failure leaves no partial choice set behind.
func (r *questionRepository) ApplyChoiceChanges(ctx context.Context, questionID int64, changes ports.ChoiceChanges) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, update := range changes.Updates {
		_, err = tx.ExecContext(ctx,
			`UPDATE choices SET choice_text = $2 WHERE id = $1 AND question_id = $3`,
			update.ID, update.Text, questionID,
		)
		if err != nil {
			return fmt.Errorf("failed to update choice: %w", err)
		}
	}

	if len(changes.Creates) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO choices (question_id, choice_text) VALUES ($1, $2)`)
		if err != nil {
			return fmt.Errorf("failed to prepare choice statement: %w", err)
		}
		defer stmt.Close()

		for _, text := range changes.Creates {
			if _, err := stmt.ExecContext(ctx, questionID, text); err != nil {
				return fmt.Errorf("failed to insert choice: %w", err)
			}
		}
	}

	for _, choiceID := range changes.DeleteIDs {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM choices WHERE id = $1 AND question_id = $2`,
			choiceID, questionID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
