package domain

import "errors"

var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrChoiceNotFound    = errors.New("choice not found")
	ErrEmptyQuestionText = errors.New("question text is required")
	ErrInvalidQuestionID = errors.New("invalid question id")
)
