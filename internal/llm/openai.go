package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Options configures an OpenAIClient.
type Options struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// OpenAIClient calls an OpenAI-compatible Chat Completions endpoint.
type OpenAIClient struct {
	model       openai.ChatModel
	temperature float64
	topP        float64
	timeout     time.Duration
	client      *openai.Client
}

const defaultChatTimeout = 60 * time.Second

// NewOpenAIClient builds a client bound to opts.Endpoint. SDK retries are
// disabled so every Complete call makes exactly one request.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultChatTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.Endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.Endpoint))
	}
	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		model:       openai.ChatModel(opts.Model),
		temperature: opts.Temperature,
		topP:        opts.TopP,
		timeout:     opts.Timeout,
		client:      &cli,
	}, nil
}

// Complete sends the system instruction and prompt and returns the first
// choice's trimmed text, or NoResponse / EmptyResponse.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(SystemPrompt, prompt),
		Temperature: openai.Float(c.temperature),
		TopP:        openai.Float(c.topP),
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return EmptyResponse, nil
	}
	return content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
