package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/pkg/action"
)

// Keymap транслирует аккорды клавиш в Actions по таблице из конфига.
//
// Таблица chord → команда приходит из config.Keys; каждая распознанная
// команда отображается ровно в один вариант Action. Нераспознанные
// аккорды уходят компонентам как action.Key.
type Keymap struct {
	bindings map[string]string
}

// NewKeymap создаёт Keymap из таблицы конфига.
func NewKeymap(bindings map[string]string) *Keymap {
	return &Keymap{bindings: bindings}
}

// Translate возвращает Action для глобально забинженного аккорда.
//
// Второе значение false — аккорд не забинжен (или команда неизвестна):
// клавиша уходит компонентам без изменений. Неизвестная команда в
// конфиге игнорируется — битый keymap не должен ронять runtime.
func (k *Keymap) Translate(msg tea.KeyMsg) (action.Action, bool) {
	cmd, ok := k.bindings[msg.String()]
	if !ok {
		return nil, false
	}
	return commandToAction(cmd)
}

// IsQuit сообщает, забинжен ли аккорд на выход.
//
// Выход доступен даже при открытом модальном редакторе — терминал
// должен оставаться покидаемым всегда.
func (k *Keymap) IsQuit(msg tea.KeyMsg) bool {
	return k.bindings[msg.String()] == "quit"
}

// commandToAction — соответствие логическая команда → вариант Action.
func commandToAction(cmd string) (action.Action, bool) {
	switch cmd {
	case "quit":
		return action.Quit{}, true
	case "scroll_up":
		return action.ScrollUp{}, true
	case "scroll_down":
		return action.ScrollDown{}, true
	case "edit_system_prompt":
		return action.OpenSystemPromptEditor{}, true
	case "save_transcript":
		return action.SaveTranscript{}, true
	default:
		return nil, false
	}
}
