// poncho-chat — терминальный чат с LLM через OpenRouter.
//
// Split-screen TUI: история диалога сверху, поле ввода снизу,
// модальный редактор системного промпта по Ctrl+P. Ответы стримятся
// токен за токеном; повторная отправка вытесняет незавершённый ответ.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/internal/ui"
	"github.com/ilkoid/poncho-chat/pkg/action"
	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm/openai"
	"github.com/ilkoid/poncho-chat/pkg/timer"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "путь к конфигу")
	tickRate := flag.Float64("tick-rate", 0, "тиков в секунду (0 = из конфига)")
	frameRate := flag.Float64("frame-rate", 0, "кадров в секунду (0 = из конфига)")
	showVersion := flag.Bool("version", false, "показать версию и выйти")
	flag.Parse()

	if *showVersion {
		fmt.Printf("poncho-chat %s\n", version)
		return nil
	}

	// Логи только в файл: stdout занят терминальным UI.
	if err := utils.InitLogger(); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *tickRate > 0 {
		cfg.TUI.TickRate = *tickRate
	}
	if *frameRate > 0 {
		cfg.TUI.FrameRate = *frameRate
	}

	utils.Info("starting poncho-chat",
		"version", version,
		"model", cfg.Model.ModelName,
		"tick_rate", cfg.TUI.TickRate,
		"frame_rate", cfg.TUI.FrameRate,
	)

	// Правило 11: корневой контекст + graceful shutdown по сигналам.
	ctx, cancel := context.WithCancel(context.Background())
	cleanup := utils.SetupGracefulShutdown(cancel)
	defer cleanup()

	provider := openai.NewClient(cfg.Model)

	// Шина actions: producers (таймеры, стрим) → единственный потребитель (App).
	bus := action.NewBus(action.DefaultBusCapacity)

	emitter := timer.NewEmitter(cfg.TUI.TickRate, cfg.TUI.FrameRate)
	emitter.Start(ctx, bus)

	app := ui.NewApp(ctx, cfg, bus, provider, emitter)
	program := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithFPS(int(cfg.TUI.FrameRate)),
	)

	_, err = program.Run()

	// Teardown строго в этом порядке: сперва останавливаем producers
	// отменой контекста, затем закрываем шину.
	cancel()
	bus.Close()

	if err != nil {
		return fmt.Errorf("ошибка TUI: %w", err)
	}

	utils.Info("poncho-chat stopped")
	return nil
}

// loadConfig читает config.yaml, а при его отсутствии собирает
// конфигурацию из дефолтов и переменных окружения.
func loadConfig(path string) (*config.AppConfig, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("загрузка конфига %s: %w", path, err)
	}

	cfg = config.Default()
	if cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("не задан API ключ: создайте %s или установите OPENROUTER_API_KEY", path)
	}
	utils.Warn("config not found, using defaults", "path", path)
	return cfg, nil
}
