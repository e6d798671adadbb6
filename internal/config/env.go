package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides are secrets that may come from the environment instead of the
// config file. Environment always wins so unit files / CI never need to write
// tokens to disk.
type envOverrides struct {
	Token    string `envconfig:"TOKEN"`
	BinKey   string `envconfig:"BIN_KEY"`
	BinURL   string `envconfig:"BIN_URL"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// applyEnv overlays RELAYBOT_* environment variables onto cfg.
func applyEnv(cfg *Config) error {
	var e envOverrides
	if err := envconfig.Process("relaybot", &e); err != nil {
		return err
	}
	if s := strings.TrimSpace(e.Token); s != "" {
		cfg.Telegram.Token = s
	}
	if s := strings.TrimSpace(e.BinKey); s != "" {
		cfg.Storage.Bin.MasterKey = s
	}
	if s := strings.TrimSpace(e.BinURL); s != "" {
		cfg.Storage.Bin.URL = s
	}
	if s := strings.TrimSpace(e.LogLevel); s != "" {
		cfg.Logging.Level = s
	}
	return nil
}
