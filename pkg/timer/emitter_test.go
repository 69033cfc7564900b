package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/poncho-chat/pkg/action"
)

// Test 1: дефолты при мусорных частотах.
func TestNewEmitter_Defaults(t *testing.T) {
	e := NewEmitter(0, -1)
	assert.Equal(t, time.Duration(float64(time.Second)/DefaultTickRate), e.tickInterval)
	frameRate := float64(DefaultFrameRate)
	assert.Equal(t, time.Duration(float64(time.Second)/frameRate), e.frameInterval)
}

// Test 2: медленный потребитель видит максимум один pending Tick каждого вида.
func TestEmitter_CoalescesWhenConsumerStalls(t *testing.T) {
	bus := action.NewBus(64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Очень быстрые таймеры, потребитель не читает вовсе.
	e := NewEmitter(500, 500)
	e.Start(ctx, bus)

	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)
	bus.Close()

	ticks, renders := 0, 0
	for a := range bus.Actions() {
		switch a.(type) {
		case action.Tick:
			ticks++
		case action.Render:
			renders++
		}
	}

	// Без Ack защёлка не снимается: не более одного тика каждого вида.
	assert.LessOrEqual(t, ticks, 1, "at most one pending Tick without ack")
	assert.LessOrEqual(t, renders, 1, "at most one pending Render without ack")
	assert.Equal(t, 1, ticks, "the last Tick must not be dropped")
	assert.Equal(t, 1, renders, "the last Render must not be dropped")
}

// Test 3: после Ack эмиттер продолжает тикать.
func TestEmitter_ResumesAfterAck(t *testing.T) {
	bus := action.NewBus(64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEmitter(200, 1) // частый tick, render почти не мешает
	e.Start(ctx, bus)

	got := 0
	deadline := time.After(2 * time.Second)
	for got < 3 {
		select {
		case a := <-bus.Actions():
			if _, ok := a.(action.Tick); ok {
				got++
				e.AckTick()
			}
		case <-deadline:
			t.Fatalf("expected 3 ticks, got %d", got)
		}
	}
	assert.Equal(t, 3, got)
}

// Test 4: после отмены контекста тики не эмитятся.
func TestEmitter_StopsOnCancel(t *testing.T) {
	bus := action.NewBus(64)
	ctx, cancel := context.WithCancel(context.Background())

	e := NewEmitter(500, 500)
	e.Start(ctx, bus)
	cancel()
	time.Sleep(20 * time.Millisecond)

	// Дренируем всё что успело попасть до отмены.
	for len(bus.Actions()) > 0 {
		<-bus.Actions()
		e.AckTick()
		e.AckRender()
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, len(bus.Actions()), "no emissions after cancellation")
}
