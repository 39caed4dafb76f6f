package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(file, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return file
}

func TestLoadDefaults(t *testing.T) {
	file := writeConfigFile(t, `discord:
  token: test-token
  guild_id: "12345"
`)

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Discord.Token != "test-token" {
		t.Errorf("expected token 'test-token', got %q", cfg.Discord.Token)
	}
	if cfg.Database.Path != "points.db" {
		t.Errorf("expected default database path 'points.db', got %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Game.Cost != 1 {
		t.Errorf("expected default cost 1, got %d", cfg.Game.Cost)
	}
	if cfg.Game.TreatChance != 0.49 {
		t.Errorf("expected default treat chance 0.49, got %v", cfg.Game.TreatChance)
	}
	if len(cfg.Game.Rewards) == 0 {
		t.Error("expected default game rewards")
	}
	if len(cfg.Game.Display) == 0 {
		t.Error("expected default display table")
	}
	if len(cfg.Freeplay.Rewards) == 0 {
		t.Error("expected default freeplay rewards")
	}
	if cfg.Counter.MessagesPerPoint != 500 {
		t.Errorf("expected default threshold 500, got %d", cfg.Counter.MessagesPerPoint)
	}
	if cfg.Session.Timeout != 180*time.Second {
		t.Errorf("expected default session timeout 180s, got %v", cfg.Session.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	file := writeConfigFile(t, `environment: production
discord:
  token: test-token
  guild_id: "12345"
  manager_role_id: "777"
game:
  cost: 2
  treat_chance: 0.6
  rewards:
    - label: Candy
      weight: 80
    - label: Gold
      weight: 20
counter:
  messages_per_point: 50
  channels: ["111", "222"]
session:
  timeout: 90s
`)

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Discord.ManagerRoleID != "777" {
		t.Errorf("expected manager role '777', got %q", cfg.Discord.ManagerRoleID)
	}
	if cfg.Game.Cost != 2 {
		t.Errorf("expected cost 2, got %d", cfg.Game.Cost)
	}
	if cfg.Game.TreatChance != 0.6 {
		t.Errorf("expected treat chance 0.6, got %v", cfg.Game.TreatChance)
	}
	if len(cfg.Game.Rewards) != 2 || cfg.Game.Rewards[0].Label != "Candy" {
		t.Errorf("unexpected rewards: %+v", cfg.Game.Rewards)
	}
	if cfg.Counter.MessagesPerPoint != 50 {
		t.Errorf("expected threshold 50, got %d", cfg.Counter.MessagesPerPoint)
	}
	if len(cfg.Counter.Channels) != 2 {
		t.Errorf("expected 2 counted channels, got %d", len(cfg.Counter.Channels))
	}
	if cfg.Session.Timeout != 90*time.Second {
		t.Errorf("expected timeout 90s, got %v", cfg.Session.Timeout)
	}
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	file := writeConfigFile(t, `discord:
  guild_id: "12345"
`)

	if _, err := Load(file); err == nil {
		t.Error("expected an error when the token is missing")
	}
}

func TestLoadMissingGuild(t *testing.T) {
	t.Setenv("DISCORD_GUILD_ID", "")
	file := writeConfigFile(t, `discord:
  token: test-token
`)

	if _, err := Load(file); err == nil {
		t.Error("expected an error when the guild id is missing")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("DISCORD_GUILD_ID", "999")
	t.Setenv("DATABASE_PATH", "/data/points.db")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.Discord.Token)
	}
	if cfg.Discord.GuildID != "999" {
		t.Errorf("expected guild id from env, got %q", cfg.Discord.GuildID)
	}
	if cfg.Database.Path != "/data/points.db" {
		t.Errorf("expected database path from env, got %q", cfg.Database.Path)
	}
}
