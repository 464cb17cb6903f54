package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all Omnimeet environment variables.
const EnvPrefix = "OMNIMEET_"

// Config holds all application configuration. Secrets (API keys) are loaded
// exclusively from environment variables and never appear in the config file.
type Config struct {
	ListenAddr         string `yaml:"listen_addr"`
	DBPath             string `yaml:"db_path"`
	ExportDir          string `yaml:"export_dir"`
	MeetingTopic       string `yaml:"meeting_topic"`
	TranscriptInterval string `yaml:"transcript_interval"`
	TranslateInterval  string `yaml:"translate_interval"`
	SampleInterval     string `yaml:"sample_interval"`
	VoiceLatency       string `yaml:"voice_latency"`
	OpenAIModel        string `yaml:"openai_model"`

	// Secrets — env vars only, never serialized to YAML.
	OpenAIAPIKey string `yaml:"-"`
}

func defaults() Config {
	return Config{
		ListenAddr:         "127.0.0.1:8385",
		DBPath:             "data/omnimeet.db",
		ExportDir:          "data/exports",
		MeetingTopic:       "React Hooks Workshop",
		TranscriptInterval: "3s",
		TranslateInterval:  "4s",
		SampleInterval:     "5s",
		VoiceLatency:       "2s",
		OpenAIModel:        "gpt-4o-mini",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// ParsedTranscriptInterval returns TranscriptInterval as a time.Duration,
// falling back to 3s if the value is invalid.
func (c *Config) ParsedTranscriptInterval() time.Duration {
	return parseDurationOr(c.TranscriptInterval, 3*time.Second)
}

// ParsedTranslateInterval falls back to 4s if the value is invalid.
func (c *Config) ParsedTranslateInterval() time.Duration {
	return parseDurationOr(c.TranslateInterval, 4*time.Second)
}

// ParsedSampleInterval falls back to 5s if the value is invalid.
func (c *Config) ParsedSampleInterval() time.Duration {
	return parseDurationOr(c.SampleInterval, 5*time.Second)
}

// ParsedVoiceLatency falls back to 2s if the value is invalid.
func (c *Config) ParsedVoiceLatency() time.Duration {
	return parseDurationOr(c.VoiceLatency, 2*time.Second)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv(EnvPrefix + "MEETING_TOPIC"); v != "" {
		cfg.MeetingTopic = v
	}
	if v := os.Getenv(EnvPrefix + "TRANSCRIPT_INTERVAL"); v != "" {
		cfg.TranscriptInterval = v
	}
	if v := os.Getenv(EnvPrefix + "TRANSLATE_INTERVAL"); v != "" {
		cfg.TranslateInterval = v
	}
	if v := os.Getenv(EnvPrefix + "SAMPLE_INTERVAL"); v != "" {
		cfg.SampleInterval = v
	}
	if v := os.Getenv(EnvPrefix + "VOICE_LATENCY"); v != "" {
		cfg.VoiceLatency = v
	}
	if v := os.Getenv(EnvPrefix + "OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
}

func validate(cfg *Config) []string {
	var warnings []string

	if cfg.OpenAIAPIKey == "" {
		warnings = append(warnings, "OpenAI API key not configured — assistant replies use scripted responses. Set "+EnvPrefix+"OPENAI_API_KEY.")
	}
	for name, raw := range map[string]string{
		"transcript_interval": cfg.TranscriptInterval,
		"translate_interval":  cfg.TranslateInterval,
		"sample_interval":     cfg.SampleInterval,
		"voice_latency":       cfg.VoiceLatency,
	} {
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			warnings = append(warnings, fmt.Sprintf("Invalid %s %q — using default.", name, raw))
		}
	}

	return warnings
}
