package services

import (
	"context"

	"pollsapi/internal/core/domain"
	"pollsapi/internal/core/ports"
)

type questionService struct {
	repo ports.QuestionRepository
}

func NewQuestionService(repo ports.QuestionRepository) ports.QuestionService {
	return &questionService{
		repo: repo,
	}
}

func (s *questionService) Create(ctx context.Context, input ports.CreateQuestionInput) (*domain.Question, error) {
	if input.Text == "" {
		return nil, domain.ErrEmptyQuestionText
	}

	question, err := s.repo.CreateQuestion(ctx, input.Text)
	if err != nil {
		return nil, err
	}

	// IDs on creation-time entries carry no meaning, only the text is used.
	for _, spec := range input.Choices {
		choice, err := s.repo.CreateChoice(ctx, question.ID, specText(spec))
		if err != nil {
			return nil, err
		}
		question.Choices = append(question.Choices, *choice)
	}

	return question, nil
}

func (s *questionService) Get(ctx context.Context, id int64) (*domain.Question, error) {
	return s.repo.GetQuestion(ctx, id)
}

func (s *questionService) List(ctx context.Context) ([]*domain.Question, error) {
	return s.repo.ListQuestions(ctx)
}

func (s *questionService) Update(ctx context.Context, id int64, input ports.UpdateQuestionInput) (*domain.Question, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Text != nil {
		if *input.Text == "" {
			return nil, domain.ErrEmptyQuestionText
		}
		if err := s.repo.UpdateQuestionText(ctx, id, *input.Text); err != nil {
			return nil, err
		}
	}

	if input.Choices != nil {
		changes := reconcileChoices(question.Choices, *input.Choices)
		if err := s.repo.ApplyChoiceChanges(ctx, id, changes); err != nil {
			return nil, err
		}
	}

	return s.repo.GetQuestion(ctx, id)
}

func (s *questionService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteQuestion(ctx, id)
}

// reconcileChoices diffs the submitted entries against the question's current
// choices. An entry whose id matches an existing choice becomes a text
// update, every other entry becomes a create, and existing choices matched by
// no entry are deleted. Ids are only checked against this question's own
// choices, so an unknown id is treated the same as no id at all. Submission
// order is preserved, which makes the last entry win when an id is repeated
// within one submission.
func reconcileChoices(existing []domain.Choice, specs []ports.ChoiceSpec) ports.ChoiceChanges {
	current := make(map[int64]domain.Choice, len(existing))
	for _, choice := range existing {
		current[choice.ID] = choice
	}

	retained := make(map[int64]bool, len(specs))
	var changes ports.ChoiceChanges

	for _, spec := range specs {
		if spec.ID != nil {
			if choice, ok := current[*spec.ID]; ok {
				text := choice.ChoiceText
				if spec.Text != nil {
					text = *spec.Text
				}
				changes.Updates = append(changes.Updates, ports.ChoiceTextUpdate{ID: choice.ID, Text: text})
				retained[choice.ID] = true
				continue
			}
		}
		changes.Creates = append(changes.Creates, specText(spec))
	}

	for _, choice := range existing {
		if !retained[choice.ID] {
			changes.DeleteIDs = append(changes.DeleteIDs, choice.ID)
		}
	}

	return changes
}

func specText(spec ports.ChoiceSpec) string {
	if spec.Text != nil {
		return *spec.Text
	}
	return ""
}
