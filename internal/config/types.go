package config

type Config struct {
	Telegram  TelegramConfig   `json:"telegram"`
	Logging   LoggingConfig    `json:"logging"`
	Storage   StorageConfig    `json:"storage"`
	Auth      AuthConfig       `json:"auth,omitempty"`
	Broadcast *BroadcastConfig `json:"broadcast,omitempty"`
	Scheduler SchedulerConfig  `json:"scheduler"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the whole-document registry backend.
//
// Driver values:
//   - "file": local JSON document (default)
//   - "bin": remote JSON bin over HTTP (url + master key)
//   - "sqlite": SQLite database file holding the document
type StorageConfig struct {
	Driver string    `json:"driver"`
	Path   string    `json:"path,omitempty"`
	Bin    BinConfig `json:"bin,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type BinConfig struct {
	URL       string `json:"url,omitempty"`
	MasterKey string `json:"master_key,omitempty"`
}

// AuthConfig tunes the login dialog.
//
// VerifyPasswords makes a returning login require the stored password.
// DuplicateLoginPolicy is "first_match" (default) or "reject".
type AuthConfig struct {
	VerifyPasswords      bool   `json:"verify_passwords,omitempty"`
	DuplicateLoginPolicy string `json:"duplicate_login_policy,omitempty"`
}

// BroadcastConfig controls outbound pacing.
// If the whole section is omitted, defaults apply (1 msg/sec, no retries).
type BroadcastConfig struct {
	RatePerSec int `json:"rate_per_sec,omitempty"`
	RetryMax   int `json:"retry_max,omitempty"`
}

// SchedulerConfig controls the periodic broadcast sweep.
//
// Tick is a Go duration string (default "5m"). UTCOffsetHours is the fixed
// target-zone offset used to evaluate operator schedules (default +5).
// Enabled is a pointer so an omitted field defaults to true.
type SchedulerConfig struct {
	Enabled        *bool  `json:"enabled,omitempty"`
	Tick           string `json:"tick,omitempty"`
	UTCOffsetHours *int   `json:"utc_offset_hours,omitempty"`
}
