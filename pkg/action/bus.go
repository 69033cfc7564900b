package action

import (
	"context"
	"sync"
)

// Bus — multi-producer single-consumer канал Actions.
//
// Производители (терминальный адаптер, таймеры, completion stream)
// конкурентно вызывают Emit; единственный потребитель — runtime —
// читает из Actions(). Порядок внутри одного источника сохраняется;
// между источниками порядок определяется прибытием в канал.
//
// Буфер достаточно большой, чтобы Emit в нормальной нагрузке не блокировал
// производителя; при переполнении backpressure применяется к производителю,
// никогда к потребителю.
//
// Thread-safe.
// Rule 11: Emit уважает context.Context.
type Bus struct {
	mu     sync.RWMutex
	ch     chan Action
	closed bool
}

// DefaultBusCapacity — ёмкость буфера по умолчанию.
const DefaultBusCapacity = 256

// NewBus создаёт Bus с буферизованным каналом.
//
// Если capacity <= 0, используется DefaultBusCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultBusCapacity
	}
	return &Bus{
		ch: make(chan Action, capacity),
	}
}

// Emit отправляет Action в канал.
//
// Блокирует производителя при полном буфере. Если Bus закрыт или context
// отменён — молча возвращается: после teardown вывод источников просто
// больше не потребляется.
//
// Отправка выполняется под RLock: Close берёт полный Lock, поэтому
// закрытие канала не может пересечься с отправкой (send on closed
// channel исключён). Следствие: Close вызывается только ПОСЛЕ отмены
// контекстов производителей — заблокированный Emit освобождает RLock
// через ветку ctx.Done().
func (b *Bus) Emit(ctx context.Context, a Action) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.ch <- a:
	case <-ctx.Done():
	}
}

// TryEmit отправляет Action без блокировки.
//
// Возвращает false если буфер полон или Bus закрыт. Используется
// таймерами: избыточный Tick допустимо отбросить (coalescing в pkg/timer
// гарантирует, что последний не теряется).
func (b *Bus) TryEmit(a Action) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	select {
	case b.ch <- a:
		return true
	default:
		return false
	}
}

// Actions возвращает read-only канал для единственного потребителя.
//
// Канал закрывается при Close(); закрытие — сигнал нормального завершения
// цикла runtime, не ошибка.
func (b *Bus) Actions() <-chan Action {
	return b.ch
}

// Close закрывает Bus. Идемпотентно.
//
// После Close Emit больше не отправляет actions. Блокируется, пока
// текущие Emit/TryEmit не отпустят RLock — поэтому порядок teardown
// строгий: сперва отмена контекстов производителей, затем Close.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
