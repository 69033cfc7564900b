package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/poncho-chat/pkg/action"
)

// SystemPromptEditor — модальный редактор системного промпта.
//
// Пока редактор открыт, он получает эксклюзивный фокус клавиатуры
// (runtime не раздаёт Key другим компонентам). Enter сохраняет буфер
// (SaveSystemPrompt), Esc отменяет (CancelEditor) — сохранённое
// значение при отмене не меняется, даже если буфер редактировали.
type SystemPromptEditor struct {
	textarea textarea.Model
	visible  bool

	// saved — последний подтверждённый промпт; именно его runtime
	// получает через SaveSystemPrompt и подставляет в историю запроса.
	saved string

	termWidth  int
	termHeight int
}

// NewSystemPromptEditor создаёт редактор с исходным промптом.
func NewSystemPromptEditor(initial string) *SystemPromptEditor {
	ta := textarea.New()
	ta.Placeholder = "Системный промпт..."
	ta.Prompt = "┃ "
	ta.CharLimit = 8000
	ta.SetWidth(60)
	ta.SetHeight(8)
	ta.ShowLineNumbers = false
	return &SystemPromptEditor{
		textarea: ta,
		saved:    initial,
	}
}

// Visible сообщает, открыт ли редактор (runtime переключает фокус-режим
// именно по этому полю через модальные Actions, геттер нужен View).
func (e *SystemPromptEditor) Visible() bool {
	return e.visible
}

// Saved возвращает подтверждённый промпт.
func (e *SystemPromptEditor) Saved() string {
	return e.saved
}

// Handle реализует Component.
func (e *SystemPromptEditor) Handle(a action.Action) []action.Action {
	switch a := a.(type) {
	case action.Resize:
		e.termWidth = a.Width
		e.termHeight = a.Height
		w := a.Width - 12
		if w > 72 {
			w = 72
		}
		if w < 20 {
			w = 20
		}
		e.textarea.SetWidth(w)

	case action.OpenSystemPromptEditor:
		// Буфер заново засеивается сохранённым значением: следы
		// прошлой отменённой правки не должны переживать закрытие.
		e.textarea.SetValue(e.saved)
		e.textarea.Focus()
		e.visible = true

	case action.SaveSystemPrompt:
		e.saved = a.Text
		e.visible = false
		e.textarea.Blur()

	case action.CancelEditor:
		e.visible = false
		e.textarea.Blur()

	case action.Key:
		if !e.visible {
			return nil
		}
		switch a.Msg.Type {
		case tea.KeyEnter:
			return []action.Action{action.SaveSystemPrompt{Text: strings.TrimSpace(e.textarea.Value())}}
		case tea.KeyEsc:
			return []action.Action{action.CancelEditor{}}
		default:
			e.textarea, _ = e.textarea.Update(a.Msg)
		}
	}
	return nil
}

// View реализует Component. Рендерит оверлей по центру терминала.
func (e *SystemPromptEditor) View(width, height int) string {
	if !e.visible {
		return ""
	}
	box := dialogBoxStyle.Render(
		headerStyle.Render("Системный промпт") + "\n\n" +
			e.textarea.View() + "\n\n" +
			helpStyle("Enter: сохранить • Esc: отмена"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
