// Package ui реализует action-driven TUI: компоненты и runtime (App).
//
// Каждый компонент владеет своим срезом состояния и реагирует на общий
// поток Actions; рендеринг — read-only проход по состоянию компонентов.
// Все сетевые и файловые эффекты опосредованы runtime через Actions —
// компоненты не делают I/O.
package ui

import "github.com/ilkoid/poncho-chat/pkg/action"

// Component — общий контракт UI компонентов (ChatWindow, Input, Editor).
//
// Handle — чистый переход состояния над приватным состоянием компонента.
// Может вернуть follow-up actions; runtime добавляет их на шину только
// после того, как текущий Action дошёл до всех компонентов (breadth-first,
// предсказуемый порядок).
//
// Handle и View обязаны быть не-блокирующими (bounded, CPU-only):
// цикл потребителя никогда не стоит из-за медленного компонента.
type Component interface {
	Handle(a action.Action) []action.Action
	View(width, height int) string
}
