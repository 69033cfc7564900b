// Package action определяет Action — единицы состояния-изменяющего ввода
// для runtime, и Bus — упорядоченный канал, сливающий все источники событий.
//
// Action — это sealed interface: только типы из этого пакета могут его
// реализовать, что обеспечивает compile-time type safety при dispatch
// в runtime (switch по конкретным типам покрывает весь набор).
//
// Источники Action:
//   - терминал (клавиши, мышь, resize) — через Bubble Tea адаптер
//   - таймеры (Tick, Render) — pkg/timer
//   - completion stream (ResponseFragment/Complete/Failed) — internal/chat
//   - сами компоненты (follow-up actions, например SubmitMessage)
//
// # Thread Safety
//
// Actions — неизменяемые value types. Владение передаётся в Bus один раз,
// потребляет их только runtime.
package action

import tea "github.com/charmbracelet/bubbletea"

// Action — sealed interface для всех событий runtime.
//
// Только типы из пакета action могут реализовать этот интерфейс.
type Action interface {
	action()
}

// Tick — низкочастотное событие логического таймера (default 4 Hz).
// Двигает периодическую невизуальную логику (спиннер, статус).
type Tick struct{}

func (Tick) action() {}

// Render — высокочастотное событие render-таймера (default 60 Hz).
// Запрашивает перерисовку текущего состояния компонентов.
type Render struct{}

func (Render) action() {}

// Resize — изменение размера терминала.
type Resize struct {
	Width  int
	Height int
}

func (Resize) action() {}

// Key — нажатие клавиши, не перехваченное глобальным keymap.
// Несёт исходное событие Bubble Tea для передачи в текстовые компоненты.
type Key struct {
	Msg tea.KeyMsg
}

func (Key) action() {}

// ScrollUp / ScrollDown — навигация по истории чата.
type ScrollUp struct{}

func (ScrollUp) action() {}

type ScrollDown struct{}

func (ScrollDown) action() {}

// SubmitMessage — пользователь отправил сообщение.
// Runtime превращает его в completion запрос.
type SubmitMessage struct {
	Text string
}

func (SubmitMessage) action() {}

// ResponseFragment — одна порция потокового ответа модели.
//
// Gen — номер поколения стрима, выдавшего фрагмент. Runtime применяет
// фрагмент только если Gen совпадает с текущим активным стримом:
// фрагменты отменённого стрима никогда не попадают в Conversation.
type ResponseFragment struct {
	Gen   uint64
	Delta string
}

func (ResponseFragment) action() {}

// ResponseComplete — чистое завершение потокового ответа.
type ResponseComplete struct {
	Gen uint64
}

func (ResponseComplete) action() {}

// ResponseFailed — ошибка транспорта или протокола во время стрима.
// Kind — классифицированный тип ошибки (см. pkg/llm), Message — текст
// для показа пользователю.
type ResponseFailed struct {
	Gen     uint64
	Kind    string
	Message string
}

func (ResponseFailed) action() {}

// OpenSystemPromptEditor — открыть модальный редактор системного промпта.
type OpenSystemPromptEditor struct{}

func (OpenSystemPromptEditor) action() {}

// SaveSystemPrompt — зафиксировать новый системный промпт и закрыть редактор.
type SaveSystemPrompt struct {
	Text string
}

func (SaveSystemPrompt) action() {}

// CancelEditor — закрыть редактор, отбросив изменения.
type CancelEditor struct{}

func (CancelEditor) action() {}

// SaveTranscript — сохранить текущую историю чата в файл (Ctrl+S).
type SaveTranscript struct{}

func (SaveTranscript) action() {}

// Quit — терминальное событие: runtime переходит в Quitting и начинает
// teardown. Все последующие actions — no-op.
type Quit struct{}

func (Quit) action() {}

// Error — неспецифичная ошибка, отображаемая как системная заметка в чате.
type Error struct {
	Message string
}

func (Error) action() {}
