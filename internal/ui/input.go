package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/pkg/action"
)

// Input — однострочное поле ввода сообщения поверх bubbles/textarea.
//
// Enter отправляет буфер как SubmitMessage follow-up и очищает поле;
// пустой (после TrimSpace) буфер не отправляется. Остальные клавиши
// уходят в textarea как есть — редактирование, курсор, история ввода
// остаются на совести bubbles.
type Input struct {
	textarea textarea.Model
}

// NewInput создаёт поле ввода с настройками под чат.
func NewInput() *Input {
	ta := textarea.New()
	ta.Placeholder = "Напишите сообщение..."
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(inputHeight)
	ta.ShowLineNumbers = false
	// Enter зарезервирован под отправку.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()
	return &Input{textarea: ta}
}

// Handle реализует Component.
func (i *Input) Handle(a action.Action) []action.Action {
	switch a := a.(type) {
	case action.Resize:
		i.textarea.SetWidth(a.Width)

	case action.Key:
		if a.Msg.Type == tea.KeyEnter {
			text := strings.TrimSpace(i.textarea.Value())
			if text == "" {
				return nil
			}
			i.textarea.Reset()
			return []action.Action{action.SubmitMessage{Text: text}}
		}
		i.textarea, _ = i.textarea.Update(a.Msg)
	}
	return nil
}

// View реализует Component.
func (i *Input) View(width, height int) string {
	return i.textarea.View()
}
