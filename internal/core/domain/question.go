package domain

import "time"

type Question struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question"`
	PublishedAt  time.Time `json:"published_at"`
	Choices      []Choice  `json:"choices"`
}

type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}
