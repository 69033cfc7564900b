package action

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Test 1: порядок actions одного источника сохраняется от Emit до recv.
func TestBus_SingleProducerOrder(t *testing.T) {
	bus := NewBus(64)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		bus.Emit(ctx, SubmitMessage{Text: fmt.Sprintf("msg-%d", i)})
	}
	bus.Close()

	i := 0
	for a := range bus.Actions() {
		sm, ok := a.(SubmitMessage)
		assert.True(t, ok, "expected SubmitMessage")
		assert.Equal(t, fmt.Sprintf("msg-%d", i), sm.Text)
		i++
	}
	assert.Equal(t, 50, i, "no action may be lost or duplicated")
}

// Test 2: конкурентные производители — ничего не теряется.
func TestBus_ConcurrentProducersNoLoss(t *testing.T) {
	const producers = 8
	const perProducer = 100

	bus := NewBus(producers * perProducer)
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				bus.Emit(ctx, ResponseFragment{Gen: uint64(p), Delta: fmt.Sprintf("%d", i)})
			}
		}(p)
	}
	wg.Wait()
	bus.Close()

	// Считаем фрагменты по источникам и проверяем порядок внутри источника.
	lastSeen := make(map[uint64]int)
	total := 0
	for a := range bus.Actions() {
		frag := a.(ResponseFragment)
		var idx int
		fmt.Sscanf(frag.Delta, "%d", &idx)
		prev, seen := lastSeen[frag.Gen]
		if seen {
			assert.Greater(t, idx, prev, "per-source order must be preserved")
		}
		lastSeen[frag.Gen] = idx
		total++
	}
	assert.Equal(t, producers*perProducer, total)
}

// Test 3: Emit после Close — no-op, без паники.
func TestBus_EmitAfterClose(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Emit(context.Background(), Tick{})
	bus.Close() // идемпотентность

	_, open := <-bus.Actions()
	assert.False(t, open, "closed bus channel signals shutdown")
}

// Test 4: Emit прерывается отменой контекста при полном буфере.
func TestBus_EmitRespectsContext(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())

	bus.Emit(ctx, Tick{}) // заполняем буфер
	cancel()

	done := make(chan struct{})
	go func() {
		bus.Emit(ctx, Render{}) // должен вернуться по ctx, не зависнуть
		close(done)
	}()
	<-done

	assert.True(t, true, "Emit returned after context cancellation")
}

// Test 5: Close при заблокированном Emit — без паники.
//
// Teardown сценарий: производитель завис на полном буфере, runtime
// отменяет контексты и закрывает шину. Emit обязан тихо вернуться,
// закрытие канала не должно пересечься с отправкой.
func TestBus_CloseWhileEmitBlocked(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())

	bus.Emit(ctx, Tick{}) // заполняем буфер

	emitDone := make(chan struct{})
	go func() {
		bus.Emit(ctx, Render{}) // блокируется на полном буфере
		close(emitDone)
	}()

	// Даём горутине дойти до select внутри Emit.
	time.Sleep(20 * time.Millisecond)

	// Порядок teardown: сперва отмена производителей, затем Close.
	cancel()
	bus.Close()

	select {
	case <-emitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit не вернулся после отмены контекста и Close")
	}

	// Потребитель дочитывает буфер и видит штатное закрытие.
	a, open := <-bus.Actions()
	assert.True(t, open)
	assert.IsType(t, Tick{}, a)
	_, open = <-bus.Actions()
	assert.False(t, open, "closed bus channel signals shutdown")
}

// Test 6: TryEmit не блокирует и сообщает о переполнении.
func TestBus_TryEmit(t *testing.T) {
	bus := NewBus(1)

	assert.True(t, bus.TryEmit(Tick{}))
	assert.False(t, bus.TryEmit(Tick{}), "full buffer must reject without blocking")

	<-bus.Actions()
	assert.True(t, bus.TryEmit(Render{}))

	bus.Close()
	assert.False(t, bus.TryEmit(Tick{}), "closed bus rejects")
}
