// Package config loads the relay configuration from the environment (and an
// optional .env file), applies defaults and validates the result. A Config is
// built once at startup and never modified afterwards.
package config

import (
	"errors"
	"slices"
	"time"
)

// ErrConfiguration wraps every startup configuration failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration.
type Config struct {
	Telegram     TelegramConfig
	LMStudio     LMStudioConfig
	Conversation ConversationConfig
	Audit        AuditConfig
	Log          LogConfig
	Scheduler    SchedulerConfig
	Messages     Messages
}

// TelegramConfig holds the bot credential and the users allowed to talk to it.
type TelegramConfig struct {
	Token     string  `validate:"required"`
	Whitelist []int64 `validate:"required,min=1,dive,ne=0"`
}

// Allows reports whether userID is whitelisted.
func (t TelegramConfig) Allows(userID int64) bool {
	return slices.Contains(t.Whitelist, userID)
}

// LMStudioConfig describes the local inference server.
type LMStudioConfig struct {
	URL                string        `validate:"required,loopback"`
	Model              string        `validate:"required"`
	APIKey             string
	SystemPrompt       string        `validate:"required"`
	MaxTokens          int           `validate:"gt=0"`
	Temperature        float32       `validate:"min=0,max=2"`
	RequestTimeout     time.Duration `validate:"min=1s"`
	StatusCheckTimeout time.Duration `validate:"min=1s"`
	MaxRetries         int           `validate:"min=0"`
}

// ConversationConfig bounds the per-user history and inbound messages.
type ConversationConfig struct {
	MaxHistory       int `validate:"min=0"`
	MaxMessageLength int `validate:"gt=0"`
}

// AuditConfig controls where audit entries go and how long they are kept.
type AuditConfig struct {
	ChatlogDir    string `validate:"required"`
	RetentionDays int    `validate:"min=0"` // 0 keeps everything
	DBPath        string // empty disables the database mirror
}

// LogConfig configures the operator log.
type LogConfig struct {
	Level    string `validate:"oneof=debug info warn error"`
	Format   string `validate:"oneof=text json"`
	ToFile   bool
	FilePath string `validate:"required_if=ToFile true"`
}

// SchedulerConfig lists the periodic maintenance tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `validate:"dive"`
}

// TaskConfig configures one scheduled task. Schedule is a cron expression
// with a seconds field.
type TaskConfig struct {
	Enabled  bool
	Schedule string `validate:"required_if=Enabled true"`
}

// Messages are the fixed texts sent to users.
type Messages struct {
	Welcome       string `validate:"required"`
	Help          string `validate:"required"`
	NotAuthorized string `validate:"required"`
	RateLimited   string `validate:"required"`
	InvalidInput  string `validate:"required"`
	// MessageTooLong takes the maximum length as its only verb.
	MessageTooLong  string `validate:"required"`
	Timeout         string `validate:"required"`
	Unavailable     string `validate:"required"`
	ServiceError    string `validate:"required"`
	InvalidResponse string `validate:"required"`
	EmptyResponse   string `validate:"required"`
	ProcessingError string `validate:"required"`
	Unexpected      string `validate:"required"`
	NewSession      string `validate:"required"`
	ContextReset    string `validate:"required"`
	StatusOK        string `validate:"required"`
	StatusDegraded  string `validate:"required"`
	StatusDown      string `validate:"required"`
}
