package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docchat/internal/domain"
)

// Config configures the OpenAI-backed embedding and completion client.
type Config struct {
	APIKeyEnv      string // env var holding the key (default OPENAI_API_KEY)
	BaseURL        string // override for OpenAI-compatible endpoints
	EmbeddingModel string // default text-embedding-3-small
	ChatModel      string // default gpt-4o-mini
	Timeout        time.Duration
}

// Client implements domain.Embedder and domain.Completer on the OpenAI API.
// Every call is a single blocking request with its own timeout; failures
// surface as provider-unavailable errors and are never retried here.
type Client struct {
	api       *openai.Client
	cfg       Config
	dimension int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.SmallEmbedding3)
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	apiCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	dimension := 1536
	if cfg.EmbeddingModel == string(openai.LargeEmbedding3) {
		dimension = 3072
	}
	return &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		cfg:       cfg,
		dimension: dimension,
	}, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings: %v", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrProviderUnavailable)
	}
	raw := resp.Data[0].Embedding
	vector := make([]float64, len(raw))
	for i := range raw {
		vector[i] = float64(raw[i])
	}
	c.dimension = len(vector)
	return vector, nil
}

// Dimension returns the vector length for the configured embedding model.
func (c *Client) Dimension() int { return c.dimension }

// Complete generates a chat completion for the prompt.
func (c *Client) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.cfg.ChatModel
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrProviderUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
