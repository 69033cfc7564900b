// Package llm предоставляет типы и интерфейсы для работы с LLM провайдером.
//
// Этот файл определяет абстракции для потоковой передачи (streaming) ответов.
package llm

import "context"

// StreamingProvider — интерфейс для LLM провайдеров с поддержкой стриминга.
//
// Отдельный интерфейс от Provider для обратной совместимости.
//
// # Rule 11: Context Propagation
//
// GenerateStream уважает context.Context: после отмены контекста callback
// больше не вызывается, соединение освобождается.
type StreamingProvider interface {
	Provider

	// GenerateStream выполняет запрос с потоковой передачей ответа.
	//
	// Callback вызывается для каждой порции данных строго в порядке
	// получения от сети:
	//   - ChunkContent: инкрементальный фрагмент текста (Delta)
	//   - ChunkDone: чистое завершение стрима
	//   - ChunkError: терминальная ошибка транспорта/протокола
	//
	// После ChunkDone или ChunkError callback не вызывается.
	// Callback вызывается из горутины стрима — должен быть не-блокирующим
	// или сам решать вопрос синхронизации.
	GenerateStream(ctx context.Context, messages []Message, callback func(StreamChunk)) error
}

// StreamChunk представляет одну порцию данных из потокового ответа.
type StreamChunk struct {
	// Type определяет тип чанка
	Type ChunkType

	// Delta — инкрементальный фрагмент (только для ChunkContent)
	Delta string

	// Err — ошибка (только для ChunkError)
	Err error
}

// ChunkType определяет тип стримингового чанка.
type ChunkType string

const (
	// ChunkContent — фрагмент контента ответа.
	ChunkContent ChunkType = "content"

	// ChunkDone — завершение стриминга: все данные получены.
	ChunkDone ChunkType = "done"

	// ChunkError — терминальная ошибка стриминга.
	ChunkError ChunkType = "error"
)
