package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vizzyhq/vizzy/internal/flagx"
	"github.com/vizzyhq/vizzy/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify timeouts either as strings like "120s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	OpenAIAPIKey   string         `json:"openai_api_key"`
	VoiceModel     string         `json:"voice_model"`
	VoiceLanguage  string         `json:"voice_language"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags. Missing file path means no JSON is loaded. Read or
// unmarshal errors panic; the caller decides whether to recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.OpenAIAPIKey != "" {
		cfg.OpenAIAPIKey = jc.OpenAIAPIKey
	}
	if jc.VoiceModel != "" {
		cfg.VoiceModel = jc.VoiceModel
	}
	if jc.VoiceLanguage != "" {
		cfg.VoiceLanguage = jc.VoiceLanguage
	}
}
