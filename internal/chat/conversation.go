// Package chat содержит доменную модель разговора и мост между
// StreamingProvider и шиной actions.
//
// Conversation — append-only: сообщения никогда не переупорядочиваются и
// не удаляются. Потоковое сообщение ассистента — одно сообщение,
// мутируемое на месте последовательными фрагментами до финализации.
package chat

import (
	"fmt"

	"github.com/ilkoid/poncho-chat/pkg/llm"
)

// Message — одно сообщение разговора.
type Message struct {
	Role    string // llm.RoleUser или llm.RoleAssistant
	Content string

	// Streaming — true пока ассистент достраивает это сообщение.
	// Переходит в false по ResponseComplete или ResponseFailed.
	Streaming bool

	// Notice — true для заметок об ошибках: отображаются в чате, но
	// не отправляются обратно в endpoint при следующем запросе.
	Notice bool
}

// Conversation — упорядоченная история сообщений.
//
// Мутируется только из цикла runtime (один логический поток), поэтому
// без локов. Порядок вставки = хронологический = порядок рендеринга.
type Conversation struct {
	messages []Message
}

// NewConversation создаёт пустую историю.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendUser добавляет финализированное сообщение пользователя.
func (c *Conversation) AppendUser(text string) {
	c.messages = append(c.messages, Message{
		Role:    llm.RoleUser,
		Content: text,
	})
}

// BeginAssistant добавляет пустое потоковое сообщение ассистента.
//
// Вызывается сразу после AppendUser при отправке запроса.
func (c *Conversation) BeginAssistant() {
	c.messages = append(c.messages, Message{
		Role:      llm.RoleAssistant,
		Streaming: true,
	})
}

// AppendFragment дописывает фрагмент в открытое потоковое сообщение.
//
// Фрагменты применяются в порядке получения; конкатенация всех фрагментов
// восстанавливает финальный контент точно. Если открытого потокового
// сообщения нет (например, фрагмент отставшего стрима) — no-op.
func (c *Conversation) AppendFragment(delta string) {
	last := c.lastStreaming()
	if last == nil {
		return
	}
	last.Content += delta
}

// FinalizeAssistant помечает открытое потоковое сообщение завершённым.
func (c *Conversation) FinalizeAssistant() {
	last := c.lastStreaming()
	if last == nil {
		return
	}
	last.Streaming = false
}

// FailAssistant финализирует открытое потоковое сообщение как заметку об
// ошибке. Длина разговора не меняется — сиротских сообщений не появляется.
func (c *Conversation) FailAssistant(kind, message string) {
	last := c.lastStreaming()
	if last == nil {
		return
	}
	last.Streaming = false
	last.Notice = true
	last.Content = fmt.Sprintf("⚠ %s: %s", kind, message)
}

// CancelAssistant финализирует открытое потоковое сообщение при вытеснении
// новым запросом: завершения отменённого стрима уже не придут (их Gen
// устарел), поэтому закрыть сообщение обязан сам runtime. Частичный
// контент остаётся в истории обычным сообщением; пустой черновик
// превращается в заметку.
func (c *Conversation) CancelAssistant() {
	last := c.lastStreaming()
	if last == nil {
		return
	}
	last.Streaming = false
	if last.Content == "" {
		last.Notice = true
		last.Content = "ответ прерван"
	}
}

// AppendNotice добавляет системную заметку (для Action Error).
func (c *Conversation) AppendNotice(text string) {
	c.messages = append(c.messages, Message{
		Role:    llm.RoleAssistant,
		Content: text,
		Notice:  true,
	})
}

// Messages возвращает снапшот истории для рендеринга.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len возвращает количество сообщений.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// History сериализует разговор для исходящего запроса.
//
// Опциональный системный промпт становится первым сообщением с ролью
// system. Потоковые сообщения и заметки об ошибках в запрос не входят.
func (c *Conversation) History(systemPrompt string) []llm.Message {
	out := make([]llm.Message, 0, len(c.messages)+1)
	if systemPrompt != "" {
		out = append(out, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	for _, m := range c.messages {
		if m.Streaming || m.Notice {
			continue
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// lastStreaming возвращает указатель на последнее потоковое сообщение
// ассистента, или nil.
func (c *Conversation) lastStreaming() *Message {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Streaming {
			return &c.messages[i]
		}
	}
	return nil
}
