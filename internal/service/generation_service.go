package service

import (
	"context"
	"fmt"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"quizcraft_backend/pkg/monitoring"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// GenerationService turns a professor's topic prompt into a stored quiz
// plus its questions. The two inserts are independent writes; a failed
// question insert triggers a best-effort compensating delete of the
// quiz row rather than a cross-table transaction.
type GenerationService struct {
	QuizRepo     QuizStore
	QuestionRepo QuestionStore
	AI           *AIService
	Redis        *redis.Client

	mu       sync.RWMutex
	cooldown time.Duration
}

func NewGenerationService(
	quizRepo QuizStore,
	questionRepo QuestionStore,
	ai *AIService,
	rdb *redis.Client,
	cooldown time.Duration,
) *GenerationService {
	return &GenerationService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		AI:           ai,
		Redis:        rdb,
		cooldown:     cooldown,
	}
}

// UpdateCooldown applies a new cooldown window on config hot-reload.
func (s *GenerationService) UpdateCooldown(d time.Duration) {
	s.mu.Lock()
	s.cooldown = d
	s.mu.Unlock()
}

func (s *GenerationService) cooldownWindow() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cooldown
}

type GenerateQuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Prompt      string `json:"prompt" binding:"required"`
}

func cooldownKey(professorID uint) string {
	return fmt.Sprintf("quizgen:cooldown:%d", professorID)
}

// GenerateQuiz runs the full pipeline: input validation, cooldown
// admission, provider call, shape validation, quiz insert, question
// insert, compensating delete on partial failure.
func (s *GenerationService) GenerateQuiz(professorID uint, req GenerateQuizRequest) (*model.Quiz, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Prompt) == "" {
		monitoring.QuizGenerations.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("%w: title and prompt are required", util.ErrInvalidInput)
	}

	ctx := context.Background()
	key := cooldownKey(professorID)
	window := s.cooldownWindow()

	acquired, err := s.Redis.SetNX(ctx, key, time.Now().Unix(), window).Result()
	if err != nil {
		// Redis being down degrades admission control, not generation.
		logger.Log.Warn("cooldown check unavailable", zap.Error(err))
	} else if !acquired {
		wait := window
		if ttl, err := s.Redis.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			wait = ttl
		}
		monitoring.QuizGenerations.WithLabelValues("cooldown").Inc()
		return nil, fmt.Errorf("%w: retry in %d seconds", util.ErrCooldownActive, int(wait.Seconds()+0.5))
	}

	questions, err := s.AI.GenerateQuestions(req.Prompt)
	if err != nil {
		s.releaseCooldown(ctx, key)
		monitoring.QuizGenerations.WithLabelValues("provider_error").Inc()
		return nil, err
	}

	if err := validateGeneratedQuestions(questions); err != nil {
		s.releaseCooldown(ctx, key)
		monitoring.QuizGenerations.WithLabelValues("malformed").Inc()
		return nil, err
	}

	quiz := &model.Quiz{
		ProfessorID: professorID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		AIPrompt:    req.Prompt,
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		s.releaseCooldown(ctx, key)
		monitoring.QuizGenerations.WithLabelValues("storage_error").Inc()
		return nil, err
	}

	rows := make([]model.Question, len(questions))
	for i, q := range questions {
		rows[i] = model.Question{
			QuizID:        quiz.ID,
			QuestionText:  q.Question,
			CorrectAnswer: q.CorrectAnswer,
			OrderNumber:   i + 1,
		}
		if err := rows[i].SetOptions(q.Options); err != nil {
			s.compensate(quiz.ID)
			s.releaseCooldown(ctx, key)
			monitoring.QuizGenerations.WithLabelValues("storage_error").Inc()
			return nil, err
		}
	}

	if err := s.QuestionRepo.CreateBatch(rows); err != nil {
		s.compensate(quiz.ID)
		s.releaseCooldown(ctx, key)
		monitoring.QuizGenerations.WithLabelValues("storage_error").Inc()
		return nil, err
	}

	logger.Log.Info("quiz generated",
		zap.String("quizId", quiz.ID),
		zap.Uint("professorId", professorID))
	monitoring.QuizGenerations.WithLabelValues("success").Inc()
	return quiz, nil
}

// compensate deletes the orphan quiz row after a failed question
// insert. Compensation failures are logged, not escalated: an orphan
// quiz with zero questions is the accepted degraded state.
func (s *GenerationService) compensate(quizID string) {
	if err := s.QuizRepo.Delete(quizID); err != nil {
		logger.Log.Error("failed to delete orphan quiz after partial write",
			zap.String("quizId", quizID),
			zap.Error(err))
	}
}

// releaseCooldown frees the admission slot after a failed run so the
// cooldown only spans successful generations.
func (s *GenerationService) releaseCooldown(ctx context.Context, key string) {
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		logger.Log.Warn("failed to release generation cooldown", zap.Error(err))
	}
}

// validateGeneratedQuestions enforces the provider contract: exactly 5
// questions, each with exactly 4 distinct options and a correct answer
// equal to one of them.
func validateGeneratedQuestions(questions []GeneratedQuestion) error {
	if len(questions) != model.QuestionsPerQuiz {
		return fmt.Errorf("%w: expected %d questions, got %d",
			util.ErrMalformedGeneration, model.QuestionsPerQuiz, len(questions))
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d has empty text", util.ErrMalformedGeneration, i+1)
		}
		if len(q.Options) != model.OptionsPerQuestion {
			return fmt.Errorf("%w: question %d has %d options, expected %d",
				util.ErrMalformedGeneration, i+1, len(q.Options), model.OptionsPerQuestion)
		}

		seen := make(map[string]bool, len(q.Options))
		correctFound := false
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: question %d has an empty option", util.ErrMalformedGeneration, i+1)
			}
			if seen[opt] {
				return fmt.Errorf("%w: question %d has duplicate options", util.ErrMalformedGeneration, i+1)
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				correctFound = true
			}
		}
		if !correctFound {
			return fmt.Errorf("%w: question %d correct answer is not among the options",
				util.ErrMalformedGeneration, i+1)
		}
	}
	return nil
}
