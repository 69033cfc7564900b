// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — контракт для любого completion-сервиса.
//
// # Rule 4: LLM Abstraction
//
// Работаем через интерфейс, конкретная реализация (OpenAI-совместимый
// endpoint) скрыта за этой абстракцией.
type Provider interface {
	// Chat отправляет запрос и возвращает полный текстовый ответ.
	Chat(ctx context.Context, messages []Message) (string, error)
}
