package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/internal/chat"
	"github.com/ilkoid/poncho-chat/pkg/action"
	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/timer"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Вертикальный layout: хедер, окно чата, разделитель, поле ввода, футер.
const (
	headerHeight  = 1
	dividerHeight = 1
	inputHeight   = 3
	helpHeight    = 1

	minChatWidth = 20
)

// chatAreaHeight — высота окна чата при данной высоте терминала.
func chatAreaHeight(termHeight int) int {
	h := termHeight - headerHeight - dividerHeight - inputHeight - helpHeight
	if h < 1 {
		h = 1
	}
	return h
}

// busActionMsg оборачивает Action с шины в tea.Msg (паттерн pump:
// одна команда ждёт один Action и перевешивается после каждой доставки).
type busActionMsg struct {
	a action.Action
}

// receiveActionCmd возвращает команду, ждущую следующий Action с шины.
// Закрытая шина завершает программу — это штатный teardown.
func receiveActionCmd(bus *action.Bus) tea.Cmd {
	return func() tea.Msg {
		a, ok := <-bus.Actions()
		if !ok {
			return tea.QuitMsg{}
		}
		return busActionMsg{a: a}
	}
}

// runState — фаза жизненного цикла runtime.
type runState int

const (
	stateRunning runState = iota
	stateQuitting
)

// App — runtime приложения и корневая модель bubbletea.
//
// Единственный потребитель шины: все мутации Conversation и состояния
// компонентов происходят в Update, поэтому им не нужны блокировки.
// Producers (таймеры, стрим, клавиатура) только кладут Actions на шину.
//
// Жизненный цикл стрима: у runtime ровно один активный completion handle
// (gen + cancel). Новый SubmitMessage отменяет предыдущий ctx и двигает
// поколение — фрагменты устаревшего стрима отбрасываются по несовпадению
// Gen, что бы ни лежало в буфере шины.
type App struct {
	cfg      *config.AppConfig
	bus      *action.Bus
	provider llm.StreamingProvider
	emitter  *timer.Emitter
	keymap   *Keymap

	conv         *chat.Conversation
	systemPrompt string

	state     runState
	modalOpen bool

	// Поколение активного стрима и его отмена.
	gen          uint64
	cancelStream context.CancelFunc
	rootCtx      context.Context

	// Фиксированный порядок диспетчеризации.
	components []Component
	chatWin    *ChatWindow
	input      *Input
	editor     *SystemPromptEditor

	width  int
	height int
	ready  bool
}

// NewApp собирает runtime поверх уже созданных шины, провайдера и таймеров.
func NewApp(
	rootCtx context.Context,
	cfg *config.AppConfig,
	bus *action.Bus,
	provider llm.StreamingProvider,
	emitter *timer.Emitter,
) *App {
	conv := chat.NewConversation()
	chatWin := NewChatWindow(conv)
	input := NewInput()
	editor := NewSystemPromptEditor("")

	return &App{
		cfg:      cfg,
		bus:      bus,
		provider: provider,
		emitter:  emitter,
		keymap:   NewKeymap(cfg.Keys),
		conv:     conv,
		rootCtx:  rootCtx,
		// Порядок фиксирован: окно чата, ввод, модальный редактор.
		components: []Component{chatWin, input, editor},
		chatWin:    chatWin,
		input:      input,
		editor:     editor,
	}
}

// Conversation отдаёт историю (для транскрипта и тестов).
func (app *App) Conversation() *chat.Conversation {
	return app.conv
}

// SystemPrompt возвращает текущий системный промпт.
func (app *App) SystemPrompt() string {
	return app.systemPrompt
}

// Init реализует tea.Model.
func (app *App) Init() tea.Cmd {
	return tea.Batch(receiveActionCmd(app.bus), textarea.Blink)
}

// Update реализует tea.Model. Единственная точка входа всех событий.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case busActionMsg:
		// 1. Диспетчеризуем Action, 2. перевешиваем приёмник.
		cmd := app.dispatch(msg.a)
		return app, tea.Batch(cmd, receiveActionCmd(app.bus))

	case tea.KeyMsg:
		return app, app.dispatch(app.translateKey(msg))

	case tea.WindowSizeMsg:
		app.ready = true
		return app, app.dispatch(action.Resize{Width: msg.Width, Height: msg.Height})

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return app, app.dispatch(action.ScrollUp{})
		case tea.MouseButtonWheelDown:
			return app, app.dispatch(action.ScrollDown{})
		}
	}
	return app, nil
}

// translateKey применяет глобальный keymap с учётом модального фокуса.
//
// При открытом редакторе глобальные бинды (кроме выхода) подавляются:
// пользователь должен иметь возможность набирать любой текст промпта.
func (app *App) translateKey(msg tea.KeyMsg) action.Action {
	if app.modalOpen {
		if app.keymap.IsQuit(msg) {
			return action.Quit{}
		}
		return action.Key{Msg: msg}
	}
	if a, ok := app.keymap.Translate(msg); ok {
		return a
	}
	return action.Key{Msg: msg}
}

// dispatch прогоняет Action (и его follow-ups, breadth-first) через
// runtime и компоненты. Возвращаемая команда — только tea.Quit.
//
// Порядок строго детерминирован: сначала текущий Action доходит до
// runtime и всех компонентов, затем обрабатываются follow-ups в порядке
// (порядок компонентов × порядок в возвращённом срезе).
func (app *App) dispatch(a action.Action) tea.Cmd {
	var quit bool

	queue := []action.Action{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		// Terminal state: после Quit ни один Action не меняет состояние.
		if app.state == stateQuitting {
			break
		}

		if app.applyRuntime(cur) {
			quit = true
			break
		}

		// Fan-out. Модальный фокус: клавиши видит только редактор.
		_, isKey := cur.(action.Key)
		for _, c := range app.components {
			if isKey && app.modalOpen && c != app.editor {
				continue
			}
			queue = append(queue, c.Handle(cur)...)
		}
	}

	if quit {
		return tea.Quit
	}
	return nil
}

// applyRuntime — переходы состояния, принадлежащие самому runtime.
// Возвращает true, когда приложение должно завершиться.
func (app *App) applyRuntime(a action.Action) bool {
	switch a := a.(type) {
	case action.Tick:
		app.emitter.AckTick()

	case action.Render:
		app.emitter.AckRender()

	case action.Resize:
		app.width = a.Width
		app.height = a.Height

	case action.Quit:
		app.state = stateQuitting
		if app.cancelStream != nil {
			app.cancelStream()
		}
		utils.Info("quit requested, shutting down")
		return true

	case action.SubmitMessage:
		app.startCompletion(a.Text)

	case action.ResponseFragment:
		if a.Gen == app.gen {
			app.conv.AppendFragment(a.Delta)
		}

	case action.ResponseComplete:
		if a.Gen == app.gen {
			app.conv.FinalizeAssistant()
			utils.Debug("completion finished", "gen", a.Gen)
		}

	case action.ResponseFailed:
		if a.Gen == app.gen {
			app.conv.FailAssistant(a.Kind, a.Message)
			utils.Error("completion failed", "gen", a.Gen, "kind", a.Kind, "error", a.Message)
		}

	case action.OpenSystemPromptEditor:
		app.modalOpen = true

	case action.SaveSystemPrompt:
		app.systemPrompt = a.Text
		app.modalOpen = false
		utils.Info("system prompt updated", "len", len(a.Text))

	case action.CancelEditor:
		app.modalOpen = false

	case action.SaveTranscript:
		app.saveTranscript()

	case action.Error:
		app.conv.AppendNotice(a.Message)
	}
	return false
}

// startCompletion фиксирует сообщение пользователя и запускает новый стрим,
// вытесняя предыдущий (отмена ctx + смена поколения).
func (app *App) startCompletion(text string) {
	// Плейсхолдер вытесняемого стрима закрываем сразу: его
	// ResponseComplete/Failed отбросится по устаревшему Gen.
	app.conv.CancelAssistant()

	app.conv.AppendUser(text)

	// Историю снимаем до открытия плейсхолдера ответа.
	history := app.conv.History(app.systemPrompt)
	app.conv.BeginAssistant()

	if app.cancelStream != nil {
		app.cancelStream()
	}
	app.gen++

	ctx, cancel := context.WithCancel(app.rootCtx)
	app.cancelStream = cancel

	chat.StartCompletion(ctx, app.bus, app.provider, history, app.gen)
}

// saveTranscript пишет историю в markdown файл и оставляет заметку в чате.
func (app *App) saveTranscript() {
	dir := app.cfg.App.TranscriptsDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		app.conv.AppendNotice(fmt.Sprintf("не удалось сохранить транскрипт: %v", err))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Диалог %s\n\n", time.Now().Format("2006-01-02 15:04")))
	if app.systemPrompt != "" {
		sb.WriteString(fmt.Sprintf("**system:** %s\n\n", app.systemPrompt))
	}
	for _, m := range app.conv.Messages() {
		if m.Notice || m.Streaming {
			continue
		}
		sb.WriteString(fmt.Sprintf("**%s:** %s\n\n", m.Role, m.Content))
	}

	path := filepath.Join(dir, fmt.Sprintf("chat-%s.md", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		app.conv.AppendNotice(fmt.Sprintf("не удалось сохранить транскрипт: %v", err))
		return
	}

	utils.Info("transcript saved", "path", path)
	app.conv.AppendNotice(fmt.Sprintf("транскрипт сохранён: %s", path))
}

// View реализует tea.Model. Read-only проход по состоянию компонентов.
func (app *App) View() string {
	if !app.ready {
		return "Инициализация UI..."
	}

	// Модальный редактор перекрывает весь экран.
	if app.modalOpen {
		return app.editor.View(app.width, app.height)
	}

	status := " poncho-chat • " + app.cfg.Model.ModelName + " "
	header := headerStyle.Render(status)
	if app.chatWin.Streaming() {
		header += " " + assistantMsgStyle(app.chatWin.SpinnerFrame())
	}

	divider := helpStyle(strings.Repeat("─", max(app.width, 1)))
	help := helpStyle("Enter: отправить • Ctrl+P: промпт • Ctrl+S: транскрипт • Ctrl+U/D: скролл • Ctrl+C: выход")

	return strings.Join([]string{
		header,
		app.chatWin.View(app.width, chatAreaHeight(app.height)),
		divider,
		app.input.View(app.width, inputHeight),
		help,
	}, "\n")
}
