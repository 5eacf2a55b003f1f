package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is required")

type IVision interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

type visionService struct {
	client *openai.Client
	config Config
}

// NewVision builds the client from OPENAI_API_KEY, OPENAI_VISION_MODEL and
// OPENAI_BASE_URL.
func NewVision() (IVision, error) {
	return NewVisionWithConfig(Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_VISION_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	})
}

func NewVisionWithConfig(cfg Config) (IVision, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &visionService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

func (v *visionService) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error) {
	if len(imageData) == 0 {
		return "", errors.New("empty image data")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	resp, err := v.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: v.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailHigh,
							},
						},
					},
				},
			},
			Temperature: v.config.Temperature,
			MaxTokens:   v.config.MaxTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI vision API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI vision model")
	}

	return resp.Choices[0].Message.Content, nil
}
