// Package timer предоставляет два независимых периодических источника
// Actions: логический Tick (низкая частота) и Render (высокая частота).
//
// Каждый эмиттер работает в собственной горутине по своему расписанию,
// независимо от другого и от I/O латентности. Медленный потребитель не
// приводит к неограниченной очереди тиков: per-kind coalescing допускает
// максимум один необработанный Tick/Render каждого вида на шине.
//
// Coalescing реализован через atomic CAS-защёлку: эмиттер отправляет
// следующий тик только после того, как runtime подтвердил (Ack) обработку
// предыдущего. Избыточные дубликаты отбрасываются, последний — никогда.
//
// Rule 11: Start уважает context.Context, после отмены тики не эмитятся.
package timer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/action"
)

// DefaultTickRate — частота логических тиков по умолчанию (тиков/сек).
const DefaultTickRate = 4.0

// DefaultFrameRate — частота render-тиков по умолчанию (кадров/сек).
const DefaultFrameRate = 60.0

// Emitter — пара периодических источников Tick/Render actions.
//
// Thread-safe: защёлки — atomic, остальные поля неизменяемы после Start.
type Emitter struct {
	tickInterval  time.Duration
	frameInterval time.Duration

	tickPending   atomic.Bool
	renderPending atomic.Bool
}

// NewEmitter создаёт Emitter с частотами в тиках/кадрах в секунду.
//
// Неположительные значения заменяются дефолтами (Rule 2: конфигурация
// задаёт частоты, но мусорный ввод не должен ронять runtime).
func NewEmitter(tickRate, frameRate float64) *Emitter {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Emitter{
		tickInterval:  time.Duration(float64(time.Second) / tickRate),
		frameInterval: time.Duration(float64(time.Second) / frameRate),
	}
}

// Start запускает обе горутины-эмиттера.
//
// Обе останавливаются при отмене ctx; после остановки ничего не эмитится.
// Teardown терминала должен происходить только после отмены ctx —
// выход эмиттеров после этого просто не потребляется.
func (e *Emitter) Start(ctx context.Context, bus *action.Bus) {
	go e.run(ctx, bus, e.tickInterval, &e.tickPending, func() action.Action { return action.Tick{} })
	go e.run(ctx, bus, e.frameInterval, &e.renderPending, func() action.Action { return action.Render{} })
}

// run — общий цикл одного эмиттера.
//
// time.Ticker сам по себе коалесцирует пропущенные интервалы (ёмкость
// канала 1); защёлка pending дополнительно гарантирует не более одного
// необработанного тика этого вида на шине.
func (e *Emitter) run(ctx context.Context, bus *action.Bus, interval time.Duration, pending *atomic.Bool, mk func() action.Action) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Предыдущий тик ещё не обработан — дубликат отбрасываем.
			if !pending.CompareAndSwap(false, true) {
				continue
			}
			if !bus.TryEmit(mk()) {
				// Шина переполнена или закрыта: снимаем защёлку,
				// следующий интервал попробует снова.
				pending.Store(false)
			}
		}
	}
}

// AckTick подтверждает обработку Tick. Вызывается runtime после dispatch.
func (e *Emitter) AckTick() {
	e.tickPending.Store(false)
}

// AckRender подтверждает обработку Render.
func (e *Emitter) AckRender() {
	e.renderPending.Store(false)
}
