// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Поддерживает как синхронную генерацию, так и streaming (SSE).
// Соблюдает правило 4 манифеста: приложение работает только через
// интерфейсы llm.Provider / llm.StreamingProvider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Client реализует llm.Provider и llm.StreamingProvider для
// OpenAI-совместимых API (OpenRouter, OpenAI, любой endpoint с тем же
// протоколом).
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient создает клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую. Использует APIKey из конфигурации для
// аутентификации (значение подставляется из ENV при загрузке конфига).
//
// Client-side rate limiter защищает endpoint от случайного частого
// resubmit: RateLimit запросов в минуту с burst.
//
// Правило 2: Все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	// Поддержка custom BaseURL для non-OpenAI провайдеров (OpenRouter и т.д.)
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	// RateLimit в запросах/минуту → rate.Limit в запросах/секунду
	ratePerSec := float64(modelDef.RateLimit) / 60.0
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), modelDef.Burst)

	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   modelDef.ModelName,
		limiter: limiter,
	}
}

// Chat выполняет синхронный запрос к API и возвращает полный ответ.
//
// Правило 7: Все ошибки возвращаются, никаких panic.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	startTime := time.Now()

	// 1. Ждем разрешения от лимитера (блокирует горутину, если превысили лимит)
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	// 2. Конвертируем наши сообщения в формат OpenAI SDK
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: mapToOpenAI(messages),
	}

	// 3. Вызываем API
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	utils.Info("LLM response received",
		"model", c.model,
		"content_length", len(resp.Choices[0].Message.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return resp.Choices[0].Message.Content, nil
}

// GenerateStream выполняет streaming запрос к API.
//
// Каждая дельта из SSE стрима передаётся в callback как ChunkContent
// строго в порядке получения. io.EOF → ChunkDone, любая другая ошибка →
// ChunkError, после чего стрим останавливается.
//
// Правило 11: после отмены ctx callback не вызывается — цикл Recv
// возвращает ошибку контекста, соединение закрывается через defer.
func (c *Client) GenerateStream(ctx context.Context, messages []llm.Message, callback func(llm.StreamChunk)) error {
	startTime := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: mapToOpenAI(messages),
		Stream:   true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		utils.Error("LLM stream open failed", "error", err, "model", c.model)
		callback(llm.StreamChunk{Type: llm.ChunkError, Err: err})
		return fmt.Errorf("openai stream error: %w", err)
	}
	defer stream.Close()

	fragments := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			// Чистое завершение стрима
			callback(llm.StreamChunk{Type: llm.ChunkDone})
			utils.Info("LLM stream completed",
				"model", c.model,
				"fragments", fragments,
				"duration_ms", time.Since(startTime).Milliseconds())
			return nil
		}
		if err != nil {
			// Отмена — не ошибка протокола: выходим молча, runtime уже
			// не потребляет наш вывод.
			if ctx.Err() != nil {
				utils.Debug("LLM stream cancelled", "model", c.model, "fragments", fragments)
				return ctx.Err()
			}
			callback(llm.StreamChunk{Type: llm.ChunkError, Err: err})
			utils.Error("LLM stream failed", "error", err, "model", c.model, "fragments", fragments)
			return fmt.Errorf("openai stream recv: %w", err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		fragments++
		callback(llm.StreamChunk{Type: llm.ChunkContent, Delta: delta})
	}
}

// mapToOpenAI конвертирует наши внутренние сообщения в формат SDK.
func mapToOpenAI(messages []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		result[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return result
}
