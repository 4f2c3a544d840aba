package ports

import (
	"context"

	"pollsapi/internal/core/domain"
)

// ChoiceSpec is one submitted choice entry. Both fields are optional on the
// wire: a nil ID marks the entry as new, a nil Text leaves the current text
// unchanged when the entry matches an existing choice.
type ChoiceSpec struct {
	ID   *int64
	Text *string
}

type CreateQuestionInput struct {
	Text    string
	Choices []ChoiceSpec
}

// UpdateQuestionInput distinguishes fields absent from the request from
// fields present but empty. A nil Choices pointer means the request omitted
// the field and existing choices are left alone; a pointer to an empty slice
// deletes every choice.
type UpdateQuestionInput struct {
	Text    *string
	Choices *[]ChoiceSpec
}

type ChoiceTextUpdate struct {
	ID   int64
	Text string
}

// ChoiceChanges is the plan produced by one reconciliation pass. Updates and
// Creates keep submission order. The repository applies the whole plan in a
// single transaction.
type ChoiceChanges struct {
	Updates   []ChoiceTextUpdate
	Creates   []string
	DeleteIDs []int64
}

type QuestionRepository interface {
	CreateQuestion(ctx context.Context, text string) (*domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)
	ListQuestions(ctx context.Context) ([]*domain.Question, error)
	UpdateQuestionText(ctx context.Context, id int64, text string) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListChoices(ctx context.Context, questionID int64) ([]domain.Choice, error)
	CreateChoice(ctx context.Context, questionID int64, text string) (*domain.Choice, error)
	UpdateChoiceText(ctx context.Context, id int64, text string) error
	DeleteChoice(ctx context.Context, id int64) error
	ApplyChoiceChanges(ctx context.Context, questionID int64, changes ChoiceChanges) error
}

type QuestionService interface {
	Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error)
	Get(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context) ([]*domain.Question, error)
	Update(ctx context.Context, id int64, input UpdateQuestionInput) (*domain.Question, error)
	Delete(ctx context.Context, id int64) error
}
