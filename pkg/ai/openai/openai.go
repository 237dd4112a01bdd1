// Package openai drives every oracle contract against an
// OpenAI-compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/docuquery/docuquery/pkg/ai"
	"github.com/docuquery/docuquery/pkg/types"
	"github.com/docuquery/docuquery/pkg/utils"
)

const NAME = "openai"

// relevance contexts are clipped before scoring so an oversized chunk
// cannot blow the prompt window
const relevanceContextTokens = 512

const maxAttempts = 5

type Config struct {
	Token          string
	Endpoint       string
	ChatModel      string
	VisionModel    string
	EmbeddingModel string
	// embedding dimension, image vectors are zero-padded up to it
	Dimension int
	// minimum spacing between oracle calls, 0 disables limiting
	CallInterval time.Duration
}

type Driver struct {
	client    *openai.Client
	cfg       Config
	limiter   *rate.Limiter
	tokenizer *tiktoken.Tiktoken
}

func New(cfg Config) *Driver {
	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.ChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.LargeEmbedding3)
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1024
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.CallInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.CallInterval), 1)
	}

	tokenizer, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		slog.Warn("tokenizer unavailable, relevance truncation falls back to characters",
			slog.String("driver", NAME), slog.Any("error", err))
	}

	return &Driver{
		client:    openai.NewClientWithConfig(clientCfg),
		cfg:       cfg,
		limiter:   limiter,
		tokenizer: tokenizer,
	}
}

// chat performs one completion with call spacing and bounded
// exponential-backoff retry.
func (s *Driver) chat(ctx context.Context, messages []openai.ChatCompletionMessage, model string) (string, error) {
	var content string
	err := retry.Do(func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return retry.Unrecoverable(err)
		}
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0,
			Messages:    messages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(2*time.Second),
		retry.MaxDelay(60*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	return content, err
}

func (s *Driver) ask(ctx context.Context, prompt string) (string, error) {
	return s.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}, s.cfg.ChatModel)
}

func (s *Driver) EmbedText(ctx context.Context, content string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(s.cfg.EmbeddingModel),
		Dimensions: s.cfg.Dimension,
		Input:      []string{content},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return PadVector(resp.Data[0].Embedding, s.cfg.Dimension), nil
}

// EmbedImage captions the image through the vision model and embeds
// the caption. The provider has no native image embedding, so the
// caption is the image-derived signal.
func (s *Driver) EmbedImage(ctx context.Context, filePath string) ([]float32, error) {
	caption, err := s.DescribeImage(ctx, filePath)
	if err != nil {
		return nil, err
	}
	vector, err := s.EmbedText(ctx, caption)
	if err != nil {
		return nil, err
	}
	return PadVector(vector, s.cfg.Dimension), nil
}

func (s *Driver) Score(ctx context.Context, contextText, question string) (float64, error) {
	reply, err := s.ask(ctx, ai.BuildRelevancePrompt(s.truncate(contextText), question))
	if err != nil {
		return 0, err
	}
	return ai.ParseScore(reply), nil
}

func (s *Driver) AnswerText(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error) {
	lang := utils.WhatLang(question)
	answer, err := s.ask(ctx, ai.BuildTextAnswerPrompt(contexts, question, lang))
	if err != nil {
		return "", err
	}
	return ai.DedupeAnswerLines(answer), nil
}

func (s *Driver) AnswerImage(ctx context.Context, contexts []types.RetrievalContext, question string) (string, error) {
	lang := utils.WhatLang(question)
	answer, err := s.ask(ctx, ai.BuildImageAnswerPrompt(contexts, question, lang))
	if err != nil {
		return "", err
	}
	return ai.DedupeAnswerLines(answer), nil
}

func (s *Driver) Classify(ctx context.Context, contentSample string) (string, error) {
	return s.ask(ctx, ai.BuildClassifyPrompt(s.truncate(contentSample)))
}

func (s *Driver) Summarize(ctx context.Context, content string) (string, error) {
	return s.ask(ctx, ai.BuildSummarizePrompt(content))
}

func (s *Driver) DescribeImage(ctx context.Context, filePath string) (string, error) {
	imageURL, err := utils.GetImageBase64FromPath(filePath)
	if err != nil {
		return "", err
	}
	return s.chat(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: "Describe this image concisely: its subject, any visible text, and notable details.",
				},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
				},
			},
		},
	}, s.cfg.VisionModel)
}

func (s *Driver) truncate(content string) string {
	if s.tokenizer == nil {
		if len(content) > 2000 {
			return content[:2000]
		}
		return content
	}
	tokens := s.tokenizer.Encode(content, nil, nil)
	if len(tokens) <= relevanceContextTokens {
		return content
	}
	return s.tokenizer.Decode(tokens[:relevanceContextTokens])
}

// PadVector zero-pads v up to dim. Vectors already at or beyond dim
// are returned unchanged.
func PadVector(v []float32, dim int) []float32 {
	if len(v) >= dim {
		return v
	}
	padded := make([]float32, dim)
	copy(padded, v)
	return padded
}
