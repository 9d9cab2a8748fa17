package config

import "time"

// Environment keys.
const (
	KeyTelegramToken      = "TELEGRAM_BOT_TOKEN"
	KeyUserWhitelist      = "USER_WHITELIST"
	KeyLMStudioURL        = "LM_STUDIO_URL"
	KeyLMStudioModel      = "LM_STUDIO_MODEL"
	KeyLMStudioAPIKey     = "LM_STUDIO_API_KEY"
	KeySystemPrompt       = "SYSTEM_PROMPT"
	KeyMaxTokens          = "MAX_TOKENS"
	KeyMaxHistory         = "MAX_CONVERSATION_HISTORY"
	KeyMaxMessageLength   = "MAX_MESSAGE_LENGTH"
	KeyTemperature        = "TEMPERATURE"
	KeyRequestTimeout     = "REQUEST_TIMEOUT"
	KeyStatusCheckTimeout = "STATUS_CHECK_TIMEOUT"
	KeyMaxRetries         = "MAX_RETRIES"
	KeyChatlogDir         = "CHATLOG_DIR"
	KeyChatlogRetention   = "CHATLOG_RETENTION_DAYS"
	KeyAuditDBPath        = "AUDIT_DB_PATH"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFormat          = "LOG_FORMAT"
	KeyLogToFile          = "LOG_TO_FILE"
	KeyLogFilePath        = "LOG_FILE_PATH"
	KeyRateLimitSweepCron = "RATELIMIT_SWEEP_SCHEDULE"
	KeyAuditRetentionCron = "AUDIT_RETENTION_SCHEDULE"
	KeySQLMaintenanceCron = "SQL_MAINTENANCE_SCHEDULE"
)

// Default values for configuration.
const (
	DefaultLMStudioURL        = "http://127.0.0.1:1234"
	DefaultLMStudioModel      = "local-model"
	DefaultSystemPrompt       = "You are a helpful AI assistant. Provide concise and accurate responses."
	DefaultMaxTokens          = 1000
	DefaultMaxHistory         = 10
	DefaultMaxMessageLength   = 2000
	DefaultTemperature        = 0.7
	DefaultRequestTimeout     = 30 * time.Second
	DefaultStatusCheckTimeout = 5 * time.Second
	DefaultMaxRetries         = 2

	DefaultChatlogDir       = "chatlogs"
	DefaultChatlogRetention = 0

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogToFile   = true
	DefaultLogFilePath = "logs/bot.log"

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Scheduled task names and their default cron schedules (seconds first).
const (
	TaskRateLimitSweep = "ratelimit_sweep"
	TaskAuditRetention = "audit_retention"
	TaskSQLMaintenance = "sql_maintenance"

	DefaultRateLimitSweepSchedule = "0 */5 * * * *"
	DefaultAuditRetentionSchedule = "0 30 3 * * *"
	DefaultSQLMaintenanceSchedule = "0 0 4 * * 0"
)

// DefaultMessages are the user-facing texts.
var DefaultMessages = Messages{
	Welcome: "👋 Hello! I'm CARYDES, your personal AI assistant.\n\n" +
		"I can help you with tasks, remind you of things, and have natural conversations. " +
		"Just send me a message!\n\n" +
		"Commands:\n" +
		"/start - Start CARYDES\n" +
		"/help - Show this help message\n" +
		"/new - Start a new conversation (saves previous)\n" +
		"/reset - Clear conversation context\n" +
		"/status - Check AI service status",
	Help: "🤖 Help Guide\n\n" +
		"I'm your personal AI assistant powered by a local AI model.\n\n" +
		"Usage:\n" +
		"Simply send me any message and I'll respond.\n\n" +
		"Commands:\n" +
		"/start - Start CARYDES\n" +
		"/help - Show this help message\n" +
		"/new - Start a new conversation (saves previous context)\n" +
		"/reset - Clear conversation context (no save)\n" +
		"/status - Check AI service status",
	NotAuthorized:   "❌ You are not authorized to use this bot.",
	RateLimited:     "⏳ Too many messages. Please wait a moment.",
	InvalidInput:    "❌ Invalid message.",
	MessageTooLong:  "❌ Message too long. Maximum length is %d characters.",
	Timeout:         "⏱️ Request timed out. The AI might be processing a long response.",
	Unavailable:     "❌ Cannot connect to AI service. Please ensure it's running.",
	ServiceError:    "❌ Error from AI service. Please try again.",
	InvalidResponse: "❌ Invalid response from LM Studio.",
	EmptyResponse:   "❌ Empty response from LM Studio.",
	ProcessingError: "❌ An unexpected error occurred. Please try again.",
	Unexpected:      "⚠️ An unexpected error occurred. Please try again later.",
	NewSession:      "✅ Starting a new conversation. Previous context has been saved.",
	ContextReset:    "✅ Conversation context has been reset.",
	StatusOK:        "✅ LM Studio is running and responding.",
	StatusDegraded:  "⚠️ LM Studio is running but not responding correctly.",
	StatusDown:      "❌ Cannot connect to LM Studio. Please ensure it's running.",
}
