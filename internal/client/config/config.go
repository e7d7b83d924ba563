package config

import "time"

// Config holds runtime settings for the Vizzy CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST endpoint.
//   - DatabasePath: path to the local sqlite file holding the saved credential.
//   - RequestTimeout: per-request timeout for backend calls.
//   - OpenAIAPIKey: key for the speech-to-text engine; empty disables voice input.
//   - VoiceModel: transcription model name.
//   - VoiceLanguage: optional ISO-639-1 language hint for transcription.
type Config struct {
	ServerBaseURL  string
	DatabasePath   string
	RequestTimeout time.Duration
	OpenAIAPIKey   string
	VoiceModel     string
	VoiceLanguage  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "vizzy.db"
	c.RequestTimeout = 120 * time.Second
	c.VoiceModel = "whisper-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
