package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the configuration from:
//  1. built-in defaults
//  2. the given .env files (".env" when none are given; a missing file is fine)
//  3. process environment variables, which win over .env values
//
// Malformed optional values are logged and replaced by their default. Missing
// credentials, an empty whitelist or a non-loopback endpoint fail with an
// error wrapping ErrConfiguration.
func Load(logger *slog.Logger, envFiles ...string) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "config")

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("Env file not found, using environment only", "path", f)
				continue
			}
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrConfiguration, f, err)
		}
		log.Debug("Loaded env file", "path", f)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	r := reader{v: v, log: log}
	cfg := &Config{
		Telegram: TelegramConfig{
			Token:     strings.TrimSpace(v.GetString(KeyTelegramToken)),
			Whitelist: r.whitelist(KeyUserWhitelist),
		},
		LMStudio: LMStudioConfig{
			URL:                strings.TrimRight(strings.TrimSpace(v.GetString(KeyLMStudioURL)), "/"),
			Model:              r.str(KeyLMStudioModel, DefaultLMStudioModel),
			APIKey:             v.GetString(KeyLMStudioAPIKey),
			SystemPrompt:       r.str(KeySystemPrompt, DefaultSystemPrompt),
			MaxTokens:          r.positiveInt(KeyMaxTokens, DefaultMaxTokens),
			Temperature:        r.temperature(KeyTemperature, DefaultTemperature),
			RequestTimeout:     r.seconds(KeyRequestTimeout, DefaultRequestTimeout),
			StatusCheckTimeout: r.seconds(KeyStatusCheckTimeout, DefaultStatusCheckTimeout),
			MaxRetries:         r.nonNegativeInt(KeyMaxRetries, DefaultMaxRetries),
		},
		Conversation: ConversationConfig{
			MaxHistory:       r.nonNegativeInt(KeyMaxHistory, DefaultMaxHistory),
			MaxMessageLength: r.positiveInt(KeyMaxMessageLength, DefaultMaxMessageLength),
		},
		Audit: AuditConfig{
			ChatlogDir:    r.str(KeyChatlogDir, DefaultChatlogDir),
			RetentionDays: r.nonNegativeInt(KeyChatlogRetention, DefaultChatlogRetention),
			DBPath:        strings.TrimSpace(v.GetString(KeyAuditDBPath)),
		},
		Log: LogConfig{
			Level:    r.logLevel(KeyLogLevel),
			Format:   r.logFormat(KeyLogFormat),
			ToFile:   r.boolean(KeyLogToFile, DefaultLogToFile),
			FilePath: r.str(KeyLogFilePath, DefaultLogFilePath),
		},
		Messages: DefaultMessages,
	}

	cfg.Scheduler = SchedulerConfig{
		Tasks: map[string]TaskConfig{
			TaskRateLimitSweep: {
				Enabled:  true,
				Schedule: r.str(KeyRateLimitSweepCron, DefaultRateLimitSweepSchedule),
			},
			TaskAuditRetention: {
				Enabled:  cfg.Audit.RetentionDays > 0,
				Schedule: r.str(KeyAuditRetentionCron, DefaultAuditRetentionSchedule),
			},
			TaskSQLMaintenance: {
				Enabled:  cfg.Audit.DBPath != "",
				Schedule: r.str(KeySQLMaintenanceCron, DefaultSQLMaintenanceSchedule),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("Configuration loaded",
		"lm_studio_url", cfg.LMStudio.URL,
		"model", cfg.LMStudio.Model,
		"whitelisted_users", len(cfg.Telegram.Whitelist),
		"audit_db", cfg.Audit.DBPath != "")
	log.Debug("Detailed configuration",
		"max_tokens", cfg.LMStudio.MaxTokens,
		"temperature", cfg.LMStudio.Temperature,
		"request_timeout", cfg.LMStudio.RequestTimeout,
		"max_retries", cfg.LMStudio.MaxRetries,
		"max_history", cfg.Conversation.MaxHistory,
		"max_message_length", cfg.Conversation.MaxMessageLength,
		"retention_days", cfg.Audit.RetentionDays)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLMStudioURL, DefaultLMStudioURL)
	v.SetDefault(KeyLMStudioModel, DefaultLMStudioModel)
	v.SetDefault(KeySystemPrompt, DefaultSystemPrompt)
	v.SetDefault(KeyMaxTokens, DefaultMaxTokens)
	v.SetDefault(KeyMaxHistory, DefaultMaxHistory)
	v.SetDefault(KeyMaxMessageLength, DefaultMaxMessageLength)
	v.SetDefault(KeyTemperature, DefaultTemperature)
	v.SetDefault(KeyRequestTimeout, int(DefaultRequestTimeout/time.Second))
	v.SetDefault(KeyStatusCheckTimeout, int(DefaultStatusCheckTimeout/time.Second))
	v.SetDefault(KeyMaxRetries, DefaultMaxRetries)
	v.SetDefault(KeyChatlogDir, DefaultChatlogDir)
	v.SetDefault(KeyChatlogRetention, DefaultChatlogRetention)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyLogToFile, DefaultLogToFile)
	v.SetDefault(KeyLogFilePath, DefaultLogFilePath)
}

// reader turns raw values into typed settings, warning and falling back to
// the default whenever a value cannot be used.
type reader struct {
	v   *viper.Viper
	log *slog.Logger
}

func (r reader) raw(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r reader) str(key, def string) string {
	if s := r.raw(key); s != "" {
		return s
	}
	return def
}

func (r reader) integer(key string, def, minimum int) int {
	s := r.raw(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.log.Warn("Invalid integer setting, using default", "key", key, "value", s, "default", def)
		return def
	}
	if n < minimum {
		r.log.Warn("Setting out of range, using default", "key", key, "value", n, "minimum", minimum, "default", def)
		return def
	}
	return n
}

func (r reader) positiveInt(key string, def int) int {
	return r.integer(key, def, 1)
}

func (r reader) nonNegativeInt(key string, def int) int {
	return r.integer(key, def, 0)
}

func (r reader) seconds(key string, def time.Duration) time.Duration {
	return time.Duration(r.positiveInt(key, int(def/time.Second))) * time.Second
}

func (r reader) temperature(key string, def float32) float32 {
	s := r.raw(key)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		r.log.Warn("Invalid temperature, using default", "key", key, "value", s, "default", def)
		return def
	}
	switch {
	case f < MinTemperature:
		r.log.Warn("Temperature below range, clamping", "key", key, "value", f, "clamped", MinTemperature)
		return MinTemperature
	case f > MaxTemperature:
		r.log.Warn("Temperature above range, clamping", "key", key, "value", f, "clamped", MaxTemperature)
		return MaxTemperature
	}
	return float32(f)
}

func (r reader) boolean(key string, def bool) bool {
	s := r.raw(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.log.Warn("Invalid boolean setting, using default", "key", key, "value", s, "default", def)
		return def
	}
	return b
}

func (r reader) logLevel(key string) string {
	level := strings.ToLower(r.raw(key))
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	case "":
		return DefaultLogLevel
	}
	r.log.Warn("Unknown log level, using default", "key", key, "value", level, "default", DefaultLogLevel)
	return DefaultLogLevel
}

func (r reader) logFormat(key string) string {
	format := strings.ToLower(r.raw(key))
	switch format {
	case "text", "json":
		return format
	case "":
		return DefaultLogFormat
	}
	r.log.Warn("Unknown log format, using default", "key", key, "value", format, "default", DefaultLogFormat)
	return DefaultLogFormat
}

// whitelist parses a comma-separated list of numeric user ids. Entries that
// are not integers are skipped with a warning; duplicates are dropped.
func (r reader) whitelist(key string) []int64 {
	raw := r.raw(key)
	if raw == "" {
		return nil
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			r.log.Warn("Skipping invalid whitelist entry", "key", key, "value", part)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
