package util

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")

	ErrIncompleteSubmission = errors.New("all questions must be answered before submitting")

	ErrCooldownActive      = errors.New("quiz generation cooldown active")
	ErrAIRateLimited       = errors.New("AI provider rate limit exceeded")
	ErrProviderQuota       = errors.New("AI provider quota exhausted")
	ErrProviderAuth        = errors.New("AI provider rejected the configured credentials")
	ErrMalformedGeneration = errors.New("AI provider returned malformed quiz data")
	ErrGenerationFailed    = errors.New("quiz generation failed")
)
