package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/muesli/reflow/wrap"

	"github.com/ilkoid/poncho-chat/internal/chat"
	"github.com/ilkoid/poncho-chat/pkg/action"
	"github.com/ilkoid/poncho-chat/pkg/llm"
)

// ChatWindow — скроллируемая история чата.
//
// Читает Conversation (владеет им runtime, мутирует только он) и держит
// приватное состояние прокрутки. Контент перекладывается через reflow
// при каждом resize, чтобы layout никогда не считался по устаревшей ширине.
//
// Умный скролл: если пользователь был внизу — прилипаем к низу при новых
// фрагментах; если листал вверх — позиция сохраняется (с clamp к границам
// контента).
type ChatWindow struct {
	viewport viewport.Model
	conv     *chat.Conversation

	width  int
	height int

	// spinnerIdx листается по Tick для индикатора стриминга.
	spinnerIdx int
}

// NewChatWindow создаёт окно чата поверх общей Conversation.
func NewChatWindow(conv *chat.Conversation) *ChatWindow {
	return &ChatWindow{
		viewport: viewport.New(0, 0),
		conv:     conv,
	}
}

// Handle реализует Component.
func (w *ChatWindow) Handle(a action.Action) []action.Action {
	switch a := a.(type) {
	case action.Resize:
		w.handleResize(a.Width, a.Height)

	case action.ScrollUp:
		w.viewport.LineUp(3)

	case action.ScrollDown:
		w.viewport.LineDown(3)

	case action.Tick:
		// 4 Hz достаточно для кадров спиннера и отложенных заметок.
		w.spinnerIdx = (w.spinnerIdx + 1) % len(spinnerFrames)
		w.refresh()

	case action.SubmitMessage, action.ResponseFragment, action.ResponseComplete,
		action.ResponseFailed, action.Error:
		w.refresh()
	}
	return nil
}

// View реализует Component. Read-only.
func (w *ChatWindow) View(width, height int) string {
	return w.viewport.View()
}

// Streaming сообщает, достраивается ли сейчас ответ (для статус-бара).
func (w *ChatWindow) Streaming() bool {
	for _, m := range w.conv.Messages() {
		if m.Streaming {
			return true
		}
	}
	return false
}

// SpinnerFrame возвращает текущий кадр спиннера.
func (w *ChatWindow) SpinnerFrame() string {
	return spinnerFrames[w.spinnerIdx]
}

// handleResize пересчитывает размеры и перекладывает контент.
//
// wasAtBottom вычисляется ДО смены высоты, иначе прилипание к низу
// ломается на уменьшении окна (урок из старого ViewportManager).
func (w *ChatWindow) handleResize(termWidth, termHeight int) {
	w.width = termWidth
	w.height = chatAreaHeight(termHeight)

	vpWidth := termWidth
	if vpWidth < minChatWidth {
		vpWidth = minChatWidth
	}
	vpHeight := w.height
	if vpHeight < 1 {
		vpHeight = 1
	}

	wasAtBottom := w.viewport.YOffset+w.viewport.Height >= w.viewport.TotalLineCount()

	w.viewport.Width = vpWidth
	w.viewport.Height = vpHeight

	w.setContent()

	if wasAtBottom {
		w.viewport.GotoBottom()
	} else {
		maxOffset := w.viewport.TotalLineCount() - w.viewport.Height
		if maxOffset < 0 {
			maxOffset = 0
		}
		if w.viewport.YOffset > maxOffset {
			w.viewport.YOffset = maxOffset
		}
	}
}

// refresh перестраивает контент с сохранением позиции прокрутки.
func (w *ChatWindow) refresh() {
	wasAtBottom := w.viewport.YOffset+w.viewport.Height >= w.viewport.TotalLineCount()
	w.setContent()
	if wasAtBottom {
		w.viewport.GotoBottom()
	}
}

// setContent рендерит Conversation в текст вьюпорта.
func (w *ChatWindow) setContent() {
	width := w.viewport.Width
	if width <= 0 {
		width = minChatWidth
	}

	var sb strings.Builder
	for _, m := range w.conv.Messages() {
		var line string
		switch {
		case m.Notice:
			line = systemMsgStyle("SYSTEM: ") + noticeBody(m.Content)
		case m.Role == llm.RoleUser:
			line = userMsgStyle("USER > ") + m.Content
		default:
			line = assistantMsgStyle("AI > ") + m.Content
			if m.Streaming {
				line += "▋"
			}
		}
		sb.WriteString(wrap.String(line, width))
		sb.WriteString("\n\n")
	}

	w.viewport.SetContent(strings.TrimRight(sb.String(), "\n"))
}

// noticeBody подбирает стиль тела заметки: ошибки стрима (FailAssistant
// начинает их с "⚠") выделяются красным, информационные — как есть.
func noticeBody(content string) string {
	if strings.HasPrefix(content, "⚠") {
		return errorMsgStyle(content)
	}
	return content
}
