// Базовые типы - определяем универсальный язык общения с моделью
package llm

// Message — одно сообщение истории чата.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Константы для удобства
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
