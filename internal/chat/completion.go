package chat

import (
	"context"

	"github.com/ilkoid/poncho-chat/pkg/action"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// StartCompletion запускает completion стрим в собственной горутине и
// транслирует его чанки в actions на шине.
//
// gen — номер поколения стрима: все эмитируемые actions несут его, и
// runtime применяет их только пока поколение актуально. Вместе с отменой
// ctx это даёт race-free supersede: ни один фрагмент отменённого стрима
// не попадает в Conversation после того, как runtime начал новый запрос.
//
// Runtime владеет единственным активным handle: прежде чем вызывать
// StartCompletion снова, он отменяет предыдущий ctx.
func StartCompletion(
	ctx context.Context,
	bus *action.Bus,
	provider llm.StreamingProvider,
	history []llm.Message,
	gen uint64,
) {
	go func() {
		utils.Debug("completion stream starting", "gen", gen, "history_len", len(history))

		err := provider.GenerateStream(ctx, history, func(chunk llm.StreamChunk) {
			switch chunk.Type {
			case llm.ChunkContent:
				bus.Emit(ctx, action.ResponseFragment{Gen: gen, Delta: chunk.Delta})
			case llm.ChunkDone:
				bus.Emit(ctx, action.ResponseComplete{Gen: gen})
			case llm.ChunkError:
				kind := llm.ClassifyError(chunk.Err)
				bus.Emit(ctx, action.ResponseFailed{
					Gen:     gen,
					Kind:    kind.String(),
					Message: chunk.Err.Error(),
				})
			}
		})

		// Отмена — штатный путь (supersede или quit); всё остальное уже
		// ушло на шину как ResponseFailed внутри callback.
		if err != nil && ctx.Err() == nil {
			utils.Debug("completion stream ended with error", "gen", gen, "error", err)
		}
	}()
}
