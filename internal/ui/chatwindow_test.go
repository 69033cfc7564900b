package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/poncho-chat/internal/chat"
	"github.com/ilkoid/poncho-chat/pkg/action"
)

func newTestChatWindow() (*ChatWindow, *chat.Conversation) {
	conv := chat.NewConversation()
	w := NewChatWindow(conv)
	w.Handle(action.Resize{Width: 80, Height: 24})
	return w, conv
}

// Заметки рендерятся с префиксом SYSTEM, сообщения — с ролевыми метками.
func TestChatWindow_RendersRolesAndNotices(t *testing.T) {
	w, conv := newTestChatWindow()

	conv.AppendUser("привет")
	conv.BeginAssistant()
	conv.AppendFragment("здравствуйте")
	conv.FinalizeAssistant()
	conv.AppendNotice("транскрипт сохранён: chat.md")
	w.refresh()

	content := w.viewport.View()
	assert.Contains(t, content, "USER >")
	assert.Contains(t, content, "привет")
	assert.Contains(t, content, "AI >")
	assert.Contains(t, content, "SYSTEM:")
	assert.Contains(t, content, "транскрипт сохранён")
}

// Открытое потоковое сообщение показывает курсорный блок, закрытое — нет.
func TestChatWindow_StreamingCursor(t *testing.T) {
	w, conv := newTestChatWindow()

	conv.AppendUser("q")
	conv.BeginAssistant()
	conv.AppendFragment("част")
	w.refresh()
	assert.Contains(t, w.viewport.View(), "▋")
	assert.True(t, w.Streaming())

	conv.FinalizeAssistant()
	w.refresh()
	assert.NotContains(t, w.viewport.View(), "▋")
	assert.False(t, w.Streaming())
}

// Длинные строки перекладываются по ширине вьюпорта.
func TestChatWindow_WrapsLongLines(t *testing.T) {
	w, conv := newTestChatWindow()
	w.Handle(action.Resize{Width: 30, Height: 24})

	conv.AppendUser(strings.Repeat("слово ", 20))
	w.refresh()

	for _, line := range strings.Split(w.viewport.View(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30, "line exceeds viewport width")
	}
}
