// Package translate turns English article text into Chinese using whichever
// chat-completion provider is configured. DeepSeek is tried first, then
// OpenAI; with no credentials at all the text passes through unchanged.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	deepSeekModel   = "deepseek-chat"

	requestTimeout  = 30 * time.Second
	temperature     = 0.3
	maxOutputTokens = 2000

	summaryMaxChars = 200
)

// Translator holds the configured provider clients. A nil provider means
// "not configured".
type Translator struct {
	deepseek *openai.Client
	fallback *openai.Client
}

// Option tweaks construction; used by tests to point clients at a fake server.
type Option func(*settings)

type settings struct {
	deepSeekBaseURL string
	openAIBaseURL   string
}

func WithDeepSeekBaseURL(u string) Option {
	return func(s *settings) { s.deepSeekBaseURL = u }
}

func WithOpenAIBaseURL(u string) Option {
	return func(s *settings) { s.openAIBaseURL = u }
}

// New builds a translator from API keys; empty keys disable the provider.
func New(deepSeekKey, openAIKey string, opts ...Option) *Translator {
	s := settings{deepSeekBaseURL: deepSeekBaseURL}
	for _, opt := range opts {
		opt(&s)
	}

	t := &Translator{}
	if deepSeekKey != "" {
		cfg := openai.DefaultConfig(deepSeekKey)
		cfg.BaseURL = s.deepSeekBaseURL
		t.deepseek = openai.NewClientWithConfig(cfg)
	}
	if openAIKey != "" {
		cfg := openai.DefaultConfig(openAIKey)
		if s.openAIBaseURL != "" {
			cfg.BaseURL = s.openAIBaseURL
		}
		t.fallback = openai.NewClientWithConfig(cfg)
	}
	return t
}

// Enabled reports whether any provider is configured.
func (t *Translator) Enabled() bool {
	return t.deepseek != nil || t.fallback != nil
}

// Translate converts text to Chinese. kind labels the text ("title",
// "content") inside the instruction so the model keeps register. Every
// failure path returns the original text: translation never aborts the run.
func (t *Translator) Translate(ctx context.Context, text, kind string) string {
	if text == "" {
		return text
	}

	if t.deepseek != nil {
		if out, err := t.request(ctx, t.deepseek, deepSeekModel, text, kind); err == nil {
			return out
		} else {
			slog.Warn("deepseek translation failed", "kind", kind, "err", err)
		}
	}

	if t.fallback != nil {
		if out, err := t.request(ctx, t.fallback, openai.GPT3Dot5Turbo, text, kind); err == nil {
			return out
		} else {
			slog.Warn("openai translation failed", "kind", kind, "err", err)
		}
	}

	if !t.Enabled() {
		slog.Info("no translation provider configured, keeping original text", "kind", kind)
	}
	return text
}

func (t *Translator) request(ctx context.Context, client *openai.Client, model, text, kind string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following English news %s into natural, fluent Chinese.
Requirements:
1. Preserve the accuracy and completeness of the original.
2. Use phrasing that reads naturally in Chinese.
3. Keep the common Chinese renderings of proper nouns (people, places, organizations).
4. Keep the objective, professional tone of news writing.

English text:
%s

Chinese translation:`, kind, text)

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("blank completion content")
	}
	return out, nil
}

// Summary derives a short teaser from content: the first three
// period-delimited sentences, capped at 200 characters with an ellipsis.
func Summary(content string) string {
	if content == "" {
		return ""
	}

	sentences := strings.Split(content, ".")
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	summary := strings.TrimSpace(strings.Join(sentences, "."))

	// Cut on rune boundaries: translated text is CJK.
	if runes := []rune(summary); len(runes) > summaryMaxChars {
		summary = string(runes[:summaryMaxChars]) + "..."
	}
	return summary
}
