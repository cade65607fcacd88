package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"rpsarena/internal/models"
)

// AzureAPIVersion is the API version sent to Azure OpenAI deployments
const AzureAPIVersion = "2024-12-01-preview"

// Gateway sends a prompt to a language model and returns the completion text
type Gateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)
}

// GatewayFactory builds a gateway for a validated model configuration
type GatewayFactory func(cfg models.ExternalModelConfig) (Gateway, error)

// ValidateConfig checks a model configuration without touching the network
func ValidateConfig(cfg models.ExternalModelConfig) error {
	if _, err := models.ParseProvider(string(cfg.Provider)); err != nil {
		return configInvalid(err.Error())
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return configInvalid("api key is required")
	}
	if strings.Contains(cfg.APIKey, models.PlaceholderAPIKey) {
		return configInvalid("api key is a placeholder")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return configInvalid("endpoint is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return configInvalid("model is required")
	}
	return nil
}

// OpenAIGateway talks to an OpenAI compatible chat completion API, including Azure deployments
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

// NewOpenAIGateway is the default GatewayFactory
func NewOpenAIGateway(cfg models.ExternalModelConfig) (Gateway, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var clientConfig openai.ClientConfig
	provider, _ := models.ParseProvider(string(cfg.Provider))
	switch provider {
	case models.ProviderAzure:
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		clientConfig.APIVersion = AzureAPIVersion
		// The model field holds the deployment name
		clientConfig.AzureModelMapperFunc = func(model string) string { return model }
	case models.ProviderOpenAI:
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// Complete issues a single chat completion request
func (g *OpenAIGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userPrompt})

	// A zero temperature is omitted from the request and the provider default applies
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               g.model,
		Messages:            messages,
		Temperature:         temperature,
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return "", upstream("chat completion", describeAPIError(err))
	}
	if len(resp.Choices) == 0 {
		return "", upstream("chat completion", errors.New("no choices returned"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// describeAPIError keeps the status code visible in logs and diagnostics
func describeAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("status %d: %w", apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("status %d: %w", reqErr.HTTPStatusCode, err)
	}
	return err
}
