package service

import (
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory stores standing in for the GORM repositories.

type stubQuizStore struct {
	quizzes   map[string]*model.Quiz
	created   []*model.Quiz
	deleted   []string
	createErr error
}

func (s *stubQuizStore) Create(q *model.Quiz) error {
	if s.createErr != nil {
		return s.createErr
	}
	if q.ID == "" {
		q.ID = "generated-quiz"
	}
	if s.quizzes == nil {
		s.quizzes = map[string]*model.Quiz{}
	}
	s.quizzes[q.ID] = q
	s.created = append(s.created, q)
	return nil
}

func (s *stubQuizStore) FindByID(id string) (*model.Quiz, error) {
	if q, ok := s.quizzes[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubQuizStore) ListByProfessor(professorID uint) ([]model.Quiz, error) { return nil, nil }
func (s *stubQuizStore) ListAll() ([]model.Quiz, error)                         { return nil, nil }

func (s *stubQuizStore) Delete(id string) error {
	delete(s.quizzes, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubQuestionStore struct {
	byQuiz   map[string][]model.Question
	batches  [][]model.Question
	batchErr error
}

func (s *stubQuestionStore) CreateBatch(questions []model.Question) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.batches = append(s.batches, questions)
	return nil
}

func (s *stubQuestionStore) FindByID(id string) (*model.Question, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubQuestionStore) ListByQuiz(quizID string) ([]model.Question, error) {
	return s.byQuiz[quizID], nil
}

func (s *stubQuestionStore) CountByQuiz(quizID string) (int64, error) {
	return int64(len(s.byQuiz[quizID])), nil
}

func (s *stubQuestionStore) Update(q *model.Question) error              { return nil }
func (s *stubQuestionStore) DeleteAndResequence(q *model.Question) error { return nil }
func (s *stubQuestionStore) DeleteByQuiz(quizID string) error            { return nil }

// stubAttemptStore can simulate the submission race: when raceRow is
// set, the first Create loses to that concurrent row and reports a
// duplicate key, just as the unique index does under TranslateError.
type stubAttemptStore struct {
	rows        []*model.QuizAttempt
	raceRow     *model.QuizAttempt
	createCalls int
}

func (s *stubAttemptStore) Create(a *model.QuizAttempt) error {
	s.createCalls++
	if s.raceRow != nil {
		s.rows = append(s.rows, s.raceRow)
		s.raceRow = nil
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range s.rows {
		if existing.QuizID == a.QuizID && existing.StudentID == a.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ID == "" {
		a.ID = "generated-attempt"
	}
	s.rows = append(s.rows, a)
	return nil
}

func (s *stubAttemptStore) FindByQuizAndStudent(quizID string, studentID uint) (*model.QuizAttempt, error) {
	for _, a := range s.rows {
		if a.QuizID == quizID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAttemptStore) ListByQuiz(quizID string) ([]model.QuizAttempt, error)     { return nil, nil }
func (s *stubAttemptStore) ListByStudent(studentID uint) ([]model.QuizAttempt, error) { return nil, nil }
func (s *stubAttemptStore) DeleteByQuiz(quizID string) error                          { return nil }

func quizQuestions() []model.Question {
	ids := []string{"q1", "q2", "q3", "q4", "q5"}
	questions := make([]model.Question, len(ids))
	for i, id := range ids {
		questions[i] = model.Question{
			UUIDBase:      model.UUIDBase{ID: id},
			QuestionText:  "Pick B",
			CorrectAnswer: "B",
			OrderNumber:   i + 1,
		}
	}
	return questions
}

func answersFor(selected map[string]string) []SubmittedAnswer {
	answers := make([]SubmittedAnswer, 0, len(selected))
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5"} {
		if v, ok := selected[id]; ok {
			answers = append(answers, SubmittedAnswer{QuestionID: id, SelectedAnswer: v})
		}
	}
	return answers
}

func TestGradeSubmissionScoresExactMatches(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B", "q5": "A",
	})

	score, records, err := gradeSubmission(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 4, score)
	require.Len(t, records, 5)

	// Records follow question order regardless of submission order.
	for i, r := range records {
		assert.Equal(t, questions[i].ID, r.QuestionID)
	}
	assert.True(t, records[0].Correct)
	assert.False(t, records[4].Correct)
	assert.Equal(t, "A", records[4].SelectedAnswer)
}

func TestGradeSubmissionPerfectScore(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B", "q5": "B",
	})

	score, _, err := gradeSubmission(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestGradeSubmissionIsCaseSensitive(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "b", "q2": "B", "q3": "B", "q4": "B", "q5": "B",
	})

	score, records, err := gradeSubmission(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 4, score)
	assert.False(t, records[0].Correct)
}

func TestGradeSubmissionRejectsMissingAnswer(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B",
	})

	_, _, err := gradeSubmission(questions, answers)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrIncompleteSubmission)
}

func TestGradeSubmissionRejectsEmptyAnswer(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "", "q3": "B", "q4": "B", "q5": "B",
	})

	_, _, err := gradeSubmission(questions, answers)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrIncompleteSubmission)
}

func TestGradeSubmissionRejectsUnknownQuestion(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B", "q5": "B",
	})
	answers = append(answers, SubmittedAnswer{QuestionID: "q99", SelectedAnswer: "B"})

	_, _, err := gradeSubmission(questions, answers)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	assert.Contains(t, err.Error(), "q99")
}

func TestGradeSubmissionRejectsDuplicateAnswers(t *testing.T) {
	questions := quizQuestions()
	answers := answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B", "q5": "B",
	})
	answers = append(answers, SubmittedAnswer{QuestionID: "q1", SelectedAnswer: "C"})

	_, _, err := gradeSubmission(questions, answers)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func newSubmitFixture() (*AttemptService, *stubAttemptStore) {
	quizzes := &stubQuizStore{quizzes: map[string]*model.Quiz{
		"quiz1": {UUIDBase: model.UUIDBase{ID: "quiz1"}, ProfessorID: 1, Title: "Go Basics"},
	}}
	questions := &stubQuestionStore{byQuiz: map[string][]model.Question{
		"quiz1": quizQuestions(),
	}}
	attempts := &stubAttemptStore{}
	return NewAttemptService(quizzes, questions, attempts), attempts
}

func submitStudent() *model.User {
	return &model.User{
		BaseModel: model.BaseModel{ID: 9},
		Name:      "Demo Student",
		Email:     "student@demo.local",
		Role:      model.Student,
	}
}

func fullAnswers() SubmitAttemptRequest {
	return SubmitAttemptRequest{Answers: answersFor(map[string]string{
		"q1": "B", "q2": "B", "q3": "B", "q4": "B", "q5": "A",
	})}
}

func TestSubmitPersistsGradedAttempt(t *testing.T) {
	svc, attempts := newSubmitFixture()

	res, err := svc.Submit(submitStudent(), "quiz1", fullAnswers())
	require.NoError(t, err)
	assert.False(t, res.AlreadyAttempted)
	assert.Equal(t, 4, res.Attempt.Score)
	assert.Equal(t, 5, res.Attempt.TotalQuestions)
	assert.Equal(t, "Demo Student", res.Attempt.StudentName)
	require.Len(t, attempts.rows, 1)

	snapshot, err := res.Attempt.AnswerList()
	require.NoError(t, err)
	require.Len(t, snapshot, 5)
	assert.False(t, snapshot[4].Correct)
}

func TestSubmitReturnsExistingAttemptWithoutSecondRow(t *testing.T) {
	svc, attempts := newSubmitFixture()
	existing := &model.QuizAttempt{
		UUIDBase:       model.UUIDBase{ID: "first-attempt"},
		QuizID:         "quiz1",
		StudentID:      9,
		Score:          3,
		TotalQuestions: 5,
		CompletedAt:    time.Now(),
	}
	attempts.rows = append(attempts.rows, existing)

	res, err := svc.Submit(submitStudent(), "quiz1", fullAnswers())
	require.NoError(t, err)
	assert.True(t, res.AlreadyAttempted)
	assert.Equal(t, "first-attempt", res.Attempt.ID)
	assert.Equal(t, 3, res.Attempt.Score)

	// The pre-check short-circuits before any insert.
	assert.Zero(t, attempts.createCalls)
	assert.Len(t, attempts.rows, 1)
}

func TestSubmitFoldsDuplicateKeyRaceIntoExistingAttempt(t *testing.T) {
	svc, attempts := newSubmitFixture()
	winner := &model.QuizAttempt{
		UUIDBase:       model.UUIDBase{ID: "winner-attempt"},
		QuizID:         "quiz1",
		StudentID:      9,
		Score:          5,
		TotalQuestions: 5,
		CompletedAt:    time.Now(),
	}
	// The concurrent submission lands between the pre-check and the
	// insert, so Create trips the unique index.
	attempts.raceRow = winner

	res, err := svc.Submit(submitStudent(), "quiz1", fullAnswers())
	require.NoError(t, err)
	assert.True(t, res.AlreadyAttempted)
	assert.Equal(t, "winner-attempt", res.Attempt.ID)
	assert.Equal(t, 1, attempts.createCalls)
	assert.Len(t, attempts.rows, 1)
}

func TestSubmitUnknownQuizReturnsNotFound(t *testing.T) {
	svc, _ := newSubmitFixture()

	_, err := svc.Submit(submitStudent(), "missing-quiz", fullAnswers())
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}
