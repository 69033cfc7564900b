package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoad тестирует загрузку конфига с подстановкой ENV.
func TestLoad(t *testing.T) {
	t.Setenv("PONCHO_CHAT_TEST_KEY", "sk-test-123")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
model:
  model_name: "mistralai/mistral-nemo"
  api_key: "${PONCHO_CHAT_TEST_KEY}"
tui:
  tick_rate: 8.0
keys:
  ctrl+c: quit
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Model.APIKey != "sk-test-123" {
		t.Errorf("expected env-expanded api key, got %q", cfg.Model.APIKey)
	}
	if cfg.Model.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("expected default base_url, got %q", cfg.Model.BaseURL)
	}
	if cfg.TUI.TickRate != 8.0 {
		t.Errorf("expected tick_rate 8.0, got %v", cfg.TUI.TickRate)
	}
	if cfg.TUI.FrameRate != 60.0 {
		t.Errorf("expected default frame_rate 60.0, got %v", cfg.TUI.FrameRate)
	}
	if cfg.Keys["ctrl+c"] != "quit" {
		t.Errorf("expected ctrl+c binding from file, got %q", cfg.Keys["ctrl+c"])
	}
}

// TestLoad_MissingFile тестирует понятную ошибку при отсутствии файла.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestLoad_MissingAPIKey тестирует валидацию обязательного ключа.
func TestLoad_MissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("model:\n  model_name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for empty api_key")
	}
}

// TestDefault тестирует конфигурацию из дефолтов.
func TestDefault(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-env")

	cfg := Default()
	if cfg.Model.APIKey != "sk-env" {
		t.Errorf("expected key from env, got %q", cfg.Model.APIKey)
	}
	if cfg.TUI.TickRate != 4.0 || cfg.TUI.FrameRate != 60.0 {
		t.Errorf("expected default rates, got %v/%v", cfg.TUI.TickRate, cfg.TUI.FrameRate)
	}
	if len(cfg.Keys) == 0 {
		t.Error("expected default keymap")
	}
}

// TestModelDef_GetDefaults тестирует заполнение дефолтов модели.
func TestModelDef_GetDefaults(t *testing.T) {
	m := ModelDef{APIKey: "k", RateLimit: 5}
	d := m.GetDefaults()

	if d.RateLimit != 5 {
		t.Errorf("explicit rate_limit must survive, got %d", d.RateLimit)
	}
	if d.Burst == 0 {
		t.Error("burst default must be set")
	}
	if d.ModelName == "" {
		t.Error("model_name default must be set")
	}
}
