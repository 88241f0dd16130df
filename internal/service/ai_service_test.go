package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newTestAIService(baseURL string) *AIService {
	return NewAIService(config.AIConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func quizJSON() string {
	quiz := generatedQuiz{Questions: validQuestions()}
	data, _ := json.Marshal(quiz)
	return string(data)
}

func TestGenerateQuestionsParsesToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "create_quiz", req.Tools[0].Function.Name)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"content": "",
						"tool_calls": []map[string]interface{}{
							{
								"function": map[string]interface{}{
									"name":      "create_quiz",
									"arguments": quizJSON(),
								},
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	questions, err := newTestAIService(srv.URL).GenerateQuestions("world capitals")
	require.NoError(t, err)
	require.Len(t, questions, 5)
	assert.Equal(t, "Paris", questions[0].CorrectAnswer)
	assert.Len(t, questions[0].Options, 4)
}

func TestGenerateQuestionsParsesFencedContentFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"content": "```json\n" + quizJSON() + "\n```",
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	questions, err := newTestAIService(srv.URL).GenerateQuestions("world capitals")
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestGenerateQuestionsStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, util.ErrAIRateLimited},
		{"quota exhausted", http.StatusPaymentRequired, util.ErrProviderQuota},
		{"bad key", http.StatusUnauthorized, util.ErrProviderAuth},
		{"forbidden", http.StatusForbidden, util.ErrProviderAuth},
		{"server error", http.StatusInternalServerError, util.ErrGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			_, err := newTestAIService(srv.URL).GenerateQuestions("anything")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateQuestionsEmptyResponseIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": "   "}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	_, err := newTestAIService(srv.URL).GenerateQuestions("anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestGenerateQuestionsNoChoicesIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestAIService(srv.URL).GenerateQuestions("anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMalformedGeneration)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestExtractQuizPayloadPrefersToolCall(t *testing.T) {
	var resp chatCompletionResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"choices": [{
			"message": {
				"content": "ignored free text",
				"tool_calls": [{"function": {"name": "create_quiz", "arguments": "{\"questions\":[]}"}}]
			}
		}]
	}`), &resp))

	payload, err := extractQuizPayload(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, payload)
}
