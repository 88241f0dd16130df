package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"quizcraft_backend/internal/util"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toolCallProvider serves a chat-completions response whose create_quiz
// tool call carries the given questions.
func toolCallProvider(t *testing.T, questions []GeneratedQuestion) *httptest.Server {
	t.Helper()
	payload, err := json.Marshal(generatedQuiz{Questions: questions})
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"tool_calls": []map[string]interface{}{
							{
								"function": map[string]interface{}{
									"name":      "create_quiz",
									"arguments": string(payload),
								},
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func validQuestions() []GeneratedQuestion {
	qs := make([]GeneratedQuestion, 5)
	for i := range qs {
		qs[i] = GeneratedQuestion{
			Question:      "What is the capital of France?",
			Options:       []string{"Paris", "London", "Berlin", "Madrid"},
			CorrectAnswer: "Paris",
		}
	}
	return qs
}

func TestGenerateQuizRejectsDuringCooldownWithoutProviderCall(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var providerCalls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&providerCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewGenerationService(nil, nil, newTestAIService(srv.URL), rdb, time.Minute)

	require.NoError(t, mr.Set(cooldownKey(7), "1"))
	mr.SetTTL(cooldownKey(7), 10*time.Second)

	_, err := svc.GenerateQuiz(7, GenerateQuizRequest{Title: "Go Basics", Prompt: "goroutines"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrCooldownActive)
	assert.Contains(t, err.Error(), "retry in")
	assert.Zero(t, atomic.LoadInt64(&providerCalls))
}

func TestGenerateQuizRejectsBlankInput(t *testing.T) {
	svc := NewGenerationService(nil, nil, nil, nil, time.Minute)

	_, err := svc.GenerateQuiz(1, GenerateQuizRequest{Title: "  ", Prompt: "topic"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.GenerateQuiz(1, GenerateQuizRequest{Title: "ok", Prompt: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestGenerateQuizWritesNothingOnShortProviderPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := toolCallProvider(t, validQuestions()[:4])
	defer srv.Close()

	quizzes := &stubQuizStore{}
	questions := &stubQuestionStore{}
	svc := NewGenerationService(quizzes, questions, newTestAIService(srv.URL), rdb, time.Minute)

	_, err := svc.GenerateQuiz(3, GenerateQuizRequest{Title: "Go Basics", Prompt: "goroutines"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)

	// Nothing persisted, and the failed run does not consume the cooldown.
	assert.Empty(t, quizzes.created)
	assert.Empty(t, questions.batches)
	assert.False(t, mr.Exists(cooldownKey(3)))
}

func TestGenerateQuizCompensatesWhenQuestionInsertFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := toolCallProvider(t, validQuestions())
	defer srv.Close()

	quizzes := &stubQuizStore{}
	questions := &stubQuestionStore{batchErr: errors.New("insert failed")}
	svc := NewGenerationService(quizzes, questions, newTestAIService(srv.URL), rdb, time.Minute)

	_, err := svc.GenerateQuiz(3, GenerateQuizRequest{Title: "Go Basics", Prompt: "goroutines"})
	require.Error(t, err)

	// The orphan quiz row from the partial write is deleted again.
	require.Len(t, quizzes.created, 1)
	require.Len(t, quizzes.deleted, 1)
	assert.Equal(t, quizzes.created[0].ID, quizzes.deleted[0])
	assert.Empty(t, quizzes.quizzes)
	assert.False(t, mr.Exists(cooldownKey(3)))
}

func TestGenerateQuizPersistsQuizAndOrderedQuestions(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := toolCallProvider(t, validQuestions())
	defer srv.Close()

	quizzes := &stubQuizStore{}
	questions := &stubQuestionStore{}
	svc := NewGenerationService(quizzes, questions, newTestAIService(srv.URL), rdb, time.Minute)

	quiz, err := svc.GenerateQuiz(3, GenerateQuizRequest{Title: " Go Basics ", Prompt: "goroutines"})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", quiz.Title)
	assert.Equal(t, uint(3), quiz.ProfessorID)

	require.Len(t, questions.batches, 1)
	rows := questions.batches[0]
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, quiz.ID, row.QuizID)
		assert.Equal(t, i+1, row.OrderNumber)
	}

	// A successful run leaves the cooldown in place.
	assert.True(t, mr.Exists(cooldownKey(3)))
}

func TestValidateGeneratedQuestionsAcceptsValidSet(t *testing.T) {
	require.NoError(t, validateGeneratedQuestions(validQuestions()))
}

func TestValidateGeneratedQuestionsRejectsWrongCount(t *testing.T) {
	qs := validQuestions()

	err := validateGeneratedQuestions(qs[:4])
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)

	err = validateGeneratedQuestions(append(qs, qs[0]))
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)

	err = validateGeneratedQuestions(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestValidateGeneratedQuestionsRejectsEmptyText(t *testing.T) {
	qs := validQuestions()
	qs[2].Question = "   "

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
	assert.Contains(t, err.Error(), "question 3")
}

func TestValidateGeneratedQuestionsRejectsWrongOptionCount(t *testing.T) {
	qs := validQuestions()
	qs[0].Options = []string{"Paris", "London", "Berlin"}

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestValidateGeneratedQuestionsRejectsDuplicateOptions(t *testing.T) {
	qs := validQuestions()
	qs[1].Options = []string{"Paris", "Paris", "Berlin", "Madrid"}

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestValidateGeneratedQuestionsRejectsEmptyOption(t *testing.T) {
	qs := validQuestions()
	qs[4].Options = []string{"Paris", "", "Berlin", "Madrid"}

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestValidateGeneratedQuestionsRejectsCorrectAnswerNotAnOption(t *testing.T) {
	qs := validQuestions()
	qs[3].CorrectAnswer = "Rome"

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
	assert.Contains(t, err.Error(), "question 4")
}

func TestValidateGeneratedQuestionsCorrectAnswerIsCaseSensitive(t *testing.T) {
	qs := validQuestions()
	qs[0].CorrectAnswer = "paris"

	err := validateGeneratedQuestions(qs)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}
