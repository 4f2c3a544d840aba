package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollsapi/internal/core/domain"
)

func (app *TestApp) createQuestion(t *testing.T, text string, choices ...string) domain.Question {
	t.Helper()

	choicePayloads := make([]map[string]interface{}, 0, len(choices))
	for _, c := range choices {
		choicePayloads = append(choicePayloads, map[string]interface{}{"choice_text": c})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"question": text,
		"choices":  choicePayloads,
	})

	resp, err := app.Client.Post(app.Server.URL+"/api/questions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var question domain.Question
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&question))
	resp.Body.Close()
	return question
}

func (app *TestApp) updateQuestion(t *testing.T, method string, id int64, payload map[string]interface{}) (*http.Response, domain.Question) {
	t.Helper()

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(method, fmt.Sprintf("%s/api/questions/%d", app.Server.URL, id), bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Client.Do(req)
	require.NoError(t, err)

	var question domain.Question
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&question))
	}
	resp.Body.Close()
	return resp, question
}

func (app *TestApp) getQuestion(t *testing.T, id int64) (*http.Response, domain.Question) {
	t.Helper()

	resp, err := app.Client.Get(fmt.Sprintf("%s/api/questions/%d", app.Server.URL, id))
	require.NoError(t, err)

	var question domain.Question
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&question))
	}
	resp.Body.Close()
	return resp, question
}

func (app *TestApp) deleteQuestion(t *testing.T, id int64) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/questions/%d", app.Server.URL, id), nil)
	require.NoError(t, err)
	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (app *TestApp) countRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}

func choiceTexts(choices []domain.Choice) []string {
	texts := make([]string, 0, len(choices))
	for _, c := range choices {
		texts = append(texts, c.ChoiceText)
	}
	return texts
}

// TestQuestionCreateRoundTrip covers the creation contract: choices come back
// with distinct store-assigned ids and a publication timestamp is set even
// though the caller supplied none.
func TestQuestionCreateRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "What is your favorite programming language?", "Python", "JavaScript", "Java")

	assert.NotZero(t, question.ID)
	assert.False(t, question.PublishedAt.IsZero())
	require.Len(t, question.Choices, 3)
	assert.ElementsMatch(t, []string{"Python", "JavaScript", "Java"}, choiceTexts(question.Choices))

	seen := map[int64]bool{}
	for _, choice := range question.Choices {
		assert.Equal(t, question.ID, choice.QuestionID)
		assert.Equal(t, 0, choice.Votes)
		assert.False(t, seen[choice.ID])
		seen[choice.ID] = true
	}

	resp, fetched := app.getQuestion(t, question.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, question.ID, fetched.ID)
	assert.Equal(t, question.QuestionText, fetched.QuestionText)
	assert.ElementsMatch(t, question.Choices, fetched.Choices)
}

func TestCreateQuestionWithoutChoices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "What do you think about Django?")
	assert.Empty(t, question.Choices)
}

func TestCreateQuestionMissingRequiredFields(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{},
	})
	resp, err := app.Client.Post(app.Server.URL+"/api/questions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestChoiceReconciliation drives the update path through pure update, mixed
// update/create/delete, unknown-id-as-create and clear-all against live SQL.
func TestChoiceReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "Favorite web framework?", "Django", "FastAPI", "Flask")
	require.Len(t, question.Choices, 3)
	django := question.Choices[0]
	fastapi := question.Choices[1]
	flask := question.Choices[2]

	// Pure update: same ids, same texts, nothing changes.
	resp, updated := app.updateQuestion(t, http.MethodPut, question.ID, map[string]interface{}{
		"question": "Favorite web framework?",
		"choices": []map[string]interface{}{
			{"id": django.ID, "choice_text": "Django"},
			{"id": fastapi.ID, "choice_text": "FastAPI"},
			{"id": flask.ID, "choice_text": "Flask"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, updated.Choices, 3)
	assert.Equal(t, []string{"Django", "FastAPI", "Flask"}, choiceTexts(updated.Choices))
	assert.Equal(t, 3, app.countRows(t, "choices"))

	// Mixed: update one in place, create two, the unmentioned two go away.
	resp, updated = app.updateQuestion(t, http.MethodPut, question.ID, map[string]interface{}{
		"question": "Updated favorite web framework?",
		"choices": []map[string]interface{}{
			{"id": django.ID, "choice_text": "Django Modified"},
			{"choice_text": "Svelte"},
			{"choice_text": "Angular"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Updated favorite web framework?", updated.QuestionText)
	require.Len(t, updated.Choices, 3)
	assert.ElementsMatch(t, []string{"Django Modified", "Svelte", "Angular"}, choiceTexts(updated.Choices))
	assert.Equal(t, django.ID, updated.Choices[0].ID)

	var gone int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM choices WHERE id = $1 OR id = $2", fastapi.ID, flask.ID).Scan(&gone))
	assert.Zero(t, gone)

	// Unknown id: treated as a create, never reused.
	resp, updated = app.updateQuestion(t, http.MethodPut, question.ID, map[string]interface{}{
		"question": "Updated favorite web framework?",
		"choices": []map[string]interface{}{
			{"id": django.ID, "choice_text": "Django Modified"},
			{"id": 9999, "choice_text": "X"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, updated.Choices, 2)
	assert.ElementsMatch(t, []string{"Django Modified", "X"}, choiceTexts(updated.Choices))
	for _, choice := range updated.Choices {
		assert.NotEqual(t, int64(9999), choice.ID)
	}

	// Clear all: an explicitly empty list deletes every choice.
	resp, updated = app.updateQuestion(t, http.MethodPut, question.ID, map[string]interface{}{
		"question": "Question without options?",
		"choices":  []map[string]interface{}{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, updated.Choices)
	assert.Equal(t, 0, app.countRows(t, "choices"))
}

// TestPartialUpdateOmitsChoices checks the tri-state: leaving the choices key
// out of the request entirely must not touch existing choices.
func TestPartialUpdateOmitsChoices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "Favorite web framework?", "Django", "FastAPI")

	resp, updated := app.updateQuestion(t, http.MethodPatch, question.ID, map[string]interface{}{
		"question": "What is your preferred web framework?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "What is your preferred web framework?", updated.QuestionText)
	require.Len(t, updated.Choices, 2)
	assert.Equal(t, []string{"Django", "FastAPI"}, choiceTexts(updated.Choices))
}

func TestCascadeDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "Question to delete?", "Option 1", "Option 2")
	app.createQuestion(t, fmt.Sprintf("Question to keep %s?", uuid.NewString()), "Kept")

	require.Equal(t, 2, app.countRows(t, "questions"))
	require.Equal(t, 3, app.countRows(t, "choices"))

	resp := app.deleteQuestion(t, question.ID)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, 1, app.countRows(t, "questions"))
	assert.Equal(t, 1, app.countRows(t, "choices"))

	// Deleting twice reports not-found the second time.
	resp = app.deleteQuestion(t, question.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotFoundPropagation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, _ := app.getQuestion(t, 9999)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.updateQuestion(t, http.MethodPut, 9999, map[string]interface{}{
		"question": "Test",
		"choices":  []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = app.deleteQuestion(t, 9999)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListQuestions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	app.createQuestion(t, "Question 1?", "Option 1", "Option 2")
	app.createQuestion(t, "Question 2?")

	resp, err := app.Client.Get(app.Server.URL + "/api/questions")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var questions []domain.Question
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&questions))
	resp.Body.Close()
	assert.Len(t, questions, 2)
}

// TestFetchIdempotence: repeated fetches of an unchanged question return the
// same choice content and ordering.
func TestFetchIdempotence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	question := app.createQuestion(t, "Stable question?", "A", "B", "C")

	_, first := app.getQuestion(t, question.ID)
	_, second := app.getQuestion(t, question.ID)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, choiceTexts(first.Choices), choiceTexts(second.Choices))
}
