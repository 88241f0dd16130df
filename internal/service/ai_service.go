package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AIService talks to an OpenAI-compatible chat-completions endpoint.
// Question generation asks for a schema-constrained tool call first and
// only falls back to parsing free-form text when the provider ignores
// the tool.
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// UpdateConfig swaps provider settings on config hot-reload.
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

func (s *AIService) snapshot() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Tools       []chatTool      `json:"tools,omitempty"`
	ToolChoice  interface{}     `json:"tool_choice,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratedQuestion is one candidate question as returned by the provider,
// before pipeline validation.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type generatedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// quizToolSchema constrains the create_quiz tool call to the exact
// question shape the pipeline expects.
const quizToolSchema = `{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 5,
      "maxItems": 5,
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string"}
          },
          "correct_answer": {"type": "string"}
        },
        "required": ["question", "options", "correct_answer"]
      }
    }
  },
  "required": ["questions"]
}`

const generationSystemPrompt = "You are a quiz generator. Generate a quiz with exactly 5 multiple-choice questions based on the topic the user provides. " +
	"Each question must have exactly 4 options and one correct answer, and correct_answer must be the exact text of one of the options. " +
	"Call the create_quiz function with the result. If you cannot call functions, respond ONLY with valid JSON of the form " +
	`{"questions":[{"question":"...","options":["..","..","..",".."],"correct_answer":".."}]}.`

// GenerateQuestions asks the provider for 5 candidate questions derived
// from the topic prompt. Provider failures map onto the error taxonomy:
// 429 rate limited, 402 quota, 401/403 credentials, anything else a
// generic generation failure with status and body attached.
func (s *AIService) GenerateQuestions(topic string) ([]GeneratedQuestion, error) {
	cfg := s.snapshot()

	reqBody := chatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: generationSystemPrompt},
			{Role: "user", Content: topic},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
		Tools: []chatTool{
			{
				Type: "function",
				Function: chatToolFunction{
					Name:        "create_quiz",
					Description: "Store the generated multiple-choice quiz",
					Parameters:  json.RawMessage(quizToolSchema),
				},
			},
		},
		ToolChoice: map[string]interface{}{
			"type":     "function",
			"function": map[string]string{"name": "create_quiz"},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, util.ErrAIRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, util.ErrProviderQuota
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, util.ErrProviderAuth
	case resp.StatusCode != http.StatusOK:
		logger.Log.Error("AI provider error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("%w: provider status %d: %s", util.ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedGeneration, err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrGenerationFailed, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: provider returned no choices", util.ErrMalformedGeneration)
	}

	payload, err := extractQuizPayload(result)
	if err != nil {
		return nil, err
	}

	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedGeneration, err)
	}

	return quiz.Questions, nil
}

// extractQuizPayload prefers the structured tool-call arguments; free
// text (possibly fenced) is the lossy fallback.
func extractQuizPayload(resp chatCompletionResponse) (string, error) {
	msg := resp.Choices[0].Message

	for _, call := range msg.ToolCalls {
		if call.Function.Name == "create_quiz" && call.Function.Arguments != "" {
			return call.Function.Arguments, nil
		}
	}

	if content := strings.TrimSpace(msg.Content); content != "" {
		return stripCodeFences(content), nil
	}

	return "", fmt.Errorf("%w: empty provider response", util.ErrMalformedGeneration)
}

// stripCodeFences unwraps ```json ... ``` blocks that some models wrap
// around their output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
