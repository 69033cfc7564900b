package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/poncho-chat/pkg/action"
	"github.com/ilkoid/poncho-chat/pkg/llm"
)

// fakeProvider проигрывает заранее заданный сценарий чанков.
type fakeProvider struct {
	chunks []llm.StreamChunk
	delay  time.Duration
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) GenerateStream(ctx context.Context, messages []llm.Message, callback func(llm.StreamChunk)) error {
	for _, ch := range f.chunks {
		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		callback(ch)
		if ch.Type == llm.ChunkDone || ch.Type == llm.ChunkError {
			return nil
		}
	}
	return nil
}

func collect(t *testing.T, bus *action.Bus, n int) []action.Action {
	t.Helper()
	out := make([]action.Action, 0, n)
	deadline := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case a := <-bus.Actions():
			out = append(out, a)
		case <-deadline:
			t.Fatalf("timed out waiting for %d actions, got %d", n, len(out))
		}
	}
	return out
}

// Чанки транслируются в actions в порядке получения, с номером поколения.
func TestStartCompletion_FragmentsInOrder(t *testing.T) {
	bus := action.NewBus(16)
	p := &fakeProvider{chunks: []llm.StreamChunk{
		{Type: llm.ChunkContent, Delta: "Hi"},
		{Type: llm.ChunkContent, Delta: " there"},
		{Type: llm.ChunkDone},
	}}

	StartCompletion(context.Background(), bus, p, nil, 7)

	got := collect(t, bus, 3)
	assert.Equal(t, action.ResponseFragment{Gen: 7, Delta: "Hi"}, got[0])
	assert.Equal(t, action.ResponseFragment{Gen: 7, Delta: " there"}, got[1])
	assert.Equal(t, action.ResponseComplete{Gen: 7}, got[2])
}

// Ошибка стрима превращается в ResponseFailed с классифицированным kind.
func TestStartCompletion_ErrorClassified(t *testing.T) {
	bus := action.NewBus(16)
	p := &fakeProvider{chunks: []llm.StreamChunk{
		{Type: llm.ChunkError, Err: errors.New("dial tcp: connection refused")},
	}}

	StartCompletion(context.Background(), bus, p, nil, 1)

	got := collect(t, bus, 1)
	failed, ok := got[0].(action.ResponseFailed)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), failed.Gen)
	assert.Equal(t, llm.ErrNetwork.String(), failed.Kind)
	assert.Contains(t, failed.Message, "connection refused")
}

// После отмены контекста стрим останавливается и фрагменты не эмитятся.
func TestStartCompletion_CancelStopsEmission(t *testing.T) {
	bus := action.NewBus(16)
	p := &fakeProvider{
		delay: 30 * time.Millisecond,
		chunks: []llm.StreamChunk{
			{Type: llm.ChunkContent, Delta: "a"},
			{Type: llm.ChunkContent, Delta: "b"},
			{Type: llm.ChunkContent, Delta: "c"},
			{Type: llm.ChunkDone},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	StartCompletion(ctx, bus, p, nil, 2)

	// Дожидаемся первого фрагмента, затем отменяем.
	first := collect(t, bus, 1)
	assert.Equal(t, action.ResponseFragment{Gen: 2, Delta: "a"}, first[0])
	cancel()

	// Даём провайдеру время заметить отмену; новых actions быть не должно
	// (максимум один, успевший в гонке с cancel — его отсеет gen-guard,
	// но сам стрим обязан остановиться).
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, len(bus.Actions()), 1, "stream must stop after cancellation")
}
