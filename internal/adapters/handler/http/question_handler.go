package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"pollsapi/internal/core/domain"
	"pollsapi/internal/core/ports"
)

type QuestionHandler struct {
	service ports.QuestionService
}

func NewQuestionHandler(service ports.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		service: service,
	}
}

// choicePayload mirrors the wire shape of a submitted choice entry. Both
// fields are optional; pointers keep "absent" distinguishable from zero.
type choicePayload struct {
	ID         *int64  `json:"id,omitempty"`
	ChoiceText *string `json:"choice_text,omitempty"`
}

type createQuestionRequest struct {
	Question string          `json:"question"`
	Choices  []choicePayload `json:"choices"`
}

// updateQuestionRequest keeps both fields as pointers: a nil Choices means
// the request omitted the key (partial update, choices untouched), while a
// pointer to an empty slice clears every choice.
type updateQuestionRequest struct {
	Question *string          `json:"question"`
	Choices  *[]choicePayload `json:"choices"`
}

func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreateQuestionInput{
		Text:    req.Question,
		Choices: toChoiceSpecs(req.Choices),
	}

	question, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := questionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	question, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []*domain.Question{}
	}

	writeJSON(w, http.StatusOK, questions)
}

// UpdateQuestion serves both PUT and PATCH: field presence in the decoded
// request decides what gets touched.
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := questionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.UpdateQuestionInput{
		Text: req.Question,
	}
	if req.Choices != nil {
		specs := toChoiceSpecs(*req.Choices)
		input.Choices = &specs
	}

	question, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := questionID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func questionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidQuestionID
	}
	return id, nil
}

func toChoiceSpecs(payloads []choicePayload) []ports.ChoiceSpec {
	specs := make([]ports.ChoiceSpec, 0, len(payloads))
	for _, p := range payloads {
		specs = append(specs, ports.ChoiceSpec{ID: p.ID, Text: p.ChoiceText})
	}
	return specs
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrChoiceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyQuestionText), errors.Is(err, domain.ErrInvalidQuestionID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
