package openaiLLM

import (
	"context"
	"errors"
	"sync"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/customHttpClient"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/pkg/logging"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api   openai.Client
	model string
}

var logger *logging.Logger
var openaiClient *llmClient
var once sync.Once

// GetOpenAIClient returns the process-wide client, or nil when the key is
// missing.
func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logging.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is empty, LLM client not created")
			return
		}
		openaiClient = &llmClient{
			api:   openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.Pooled())),
			model: modelName,
		}
		logger.Info("OpenAI LLM client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.ModelContext),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(float64(temperature)),
	})
	if err != nil {
		logger.Error("Error generating content with OpenAI", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
