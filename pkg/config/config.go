package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Model ModelDef          `yaml:"model"`
	TUI   TUIConfig         `yaml:"tui"`
	Keys  map[string]string `yaml:"keys"` // chord → команда ("quit", "scroll_up", ...)
	App   AppSpecific       `yaml:"app"`
}

// ModelDef — параметры completion endpoint.
type ModelDef struct {
	Provider  string `yaml:"provider"`   // "openrouter", "openai" и т.д.
	ModelName string `yaml:"model_name"` // Реальное имя модели в API
	APIKey    string `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL   string `yaml:"base_url"`   // Базовый URL OpenAI-совместимого API
	RateLimit int    `yaml:"rate_limit"` // Запросов в минуту (client-side)
	Burst     int    `yaml:"burst"`      // Burst для rate limiter
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (m *ModelDef) GetDefaults() ModelDef {
	result := *m // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = "https://openrouter.ai/api/v1"
	}
	if result.ModelName == "" {
		result.ModelName = "mistralai/mistral-nemo"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 20 // запросов в минуту
	}
	if result.Burst == 0 {
		result.Burst = 3
	}

	return result
}

// TUIConfig — частоты таймеров runtime.
type TUIConfig struct {
	TickRate  float64 `yaml:"tick_rate"`  // Логических тиков в секунду
	FrameRate float64 `yaml:"frame_rate"` // Кадров в секунду
}

// GetDefaults возвращает дефолтные частоты.
func (t *TUIConfig) GetDefaults() TUIConfig {
	result := *t

	if result.TickRate == 0 {
		result.TickRate = 4.0
	}
	if result.FrameRate == 0 {
		result.FrameRate = 60.0
	}

	return result
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug          bool   `yaml:"debug"`
	TranscriptsDir string `yaml:"transcripts_dir"` // Куда сохранять транскрипты (Ctrl+S)
}

// DefaultKeys — дефолтный keymap: chord → логическая команда.
//
// Каждая распознанная команда отображается ровно в один вариант Action
// (см. internal/ui/keymap.go).
func DefaultKeys() map[string]string {
	return map[string]string{
		"ctrl+c": "quit",
		"ctrl+u": "scroll_up",
		"ctrl+d": "scroll_down",
		"pgup":   "scroll_up",
		"pgdown": "scroll_down",
		"ctrl+p": "edit_system_prompt",
		"ctrl+s": "save_transcript",
	}
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at %s: %w", path, os.ErrNotExist)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Заполняем дефолты и валидируем критические настройки
	cfg.Model = *applyModelDefaults(&cfg.Model)
	cfg.TUI = cfg.TUI.GetDefaults()
	if cfg.Keys == nil {
		cfg.Keys = DefaultKeys()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default возвращает конфигурацию целиком из дефолтов.
//
// Используется когда config.yaml отсутствует: ключ API берётся напрямую
// из OPENROUTER_API_KEY.
func Default() *AppConfig {
	model := ModelDef{APIKey: os.Getenv("OPENROUTER_API_KEY")}
	tui := TUIConfig{}
	return &AppConfig{
		Model: model.GetDefaults(),
		TUI:   tui.GetDefaults(),
		Keys:  DefaultKeys(),
	}
}

func applyModelDefaults(m *ModelDef) *ModelDef {
	d := m.GetDefaults()
	return &d
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Model.APIKey == "" {
		return fmt.Errorf("model.api_key is required (set OPENROUTER_API_KEY or api_key in config)")
	}
	if c.TUI.TickRate < 0 || c.TUI.FrameRate < 0 {
		return fmt.Errorf("tui rates must be positive")
	}
	return nil
}
