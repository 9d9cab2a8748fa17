// Package relay routes inbound chat text to the inference server and the
// replies back to the chat, enforcing the whitelist, the rate limit and one
// in-flight exchange per user.
package relay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/carydes/internal/audit"
	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/inference"
	"github.com/edgard/carydes/internal/memory"
	"github.com/edgard/carydes/internal/ratelimit"
	"github.com/edgard/carydes/internal/sanitize"
)

// DefaultTypingInterval is how often the typing indicator is refreshed;
// Telegram drops it after about five seconds.
const DefaultTypingInterval = 4 * time.Second

// Sender delivers outbound traffic to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTyping(ctx context.Context, chatID int64) error
}

// Conversation produces the assistant reply for one user message.
type Conversation interface {
	Converse(ctx context.Context, userID int64, message string) (string, error)
}

// Router runs the per-message pipeline.
type Router struct {
	cfg     *config.Config
	limiter *ratelimit.Limiter
	audit   *audit.Logger
	memory  *memory.Store
	llm     Conversation
	sender  Sender
	logger  *slog.Logger

	typingInterval time.Duration

	// One lock per whitelisted user, built once; nobody else gets that far.
	sessions map[int64]*sync.Mutex
}

// Option customizes a Router.
type Option func(*Router)

// WithTypingInterval overrides DefaultTypingInterval.
func WithTypingInterval(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.typingInterval = d
		}
	}
}

// NewRouter wires the pipeline components together.
func NewRouter(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	auditLog *audit.Logger,
	mem *memory.Store,
	llm Conversation,
	sender Sender,
	logger *slog.Logger,
	opts ...Option,
) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sessions := make(map[int64]*sync.Mutex, len(cfg.Telegram.Whitelist))
	for _, id := range cfg.Telegram.Whitelist {
		sessions[id] = &sync.Mutex{}
	}

	r := &Router{
		cfg:            cfg,
		limiter:        limiter,
		audit:          auditLog,
		memory:         mem,
		llm:            llm,
		sender:         sender,
		logger:         logger.With("component", "router"),
		typingInterval: DefaultTypingInterval,
		sessions:       sessions,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Authorized reports whether userID is whitelisted.
func (r *Router) Authorized(userID int64) bool {
	return r.cfg.Telegram.Allows(userID)
}

// HandleMessage runs the full pipeline for one inbound text. It never
// panics; an unexpected failure is answered with a generic reply.
func (r *Router) HandleMessage(ctx context.Context, userID, chatID int64, text string) {
	log := r.logger.With("user_id", userID, "chat_id", chatID, "exchange_id", uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			log.ErrorContext(ctx, "Recovered from panic in message pipeline", "panic", rec, "stack", string(debug.Stack()))
			r.reply(ctx, log, chatID, r.cfg.Messages.Unexpected)
		}
	}()

	if strings.HasPrefix(text, "/") {
		return
	}

	if !r.Authorized(userID) {
		log.WarnContext(ctx, "Unauthorized user attempted to use the bot")
		r.reply(ctx, log, chatID, r.cfg.Messages.NotAuthorized)
		return
	}

	if !r.limiter.Allow(userID) {
		log.InfoContext(ctx, "Rate limit exceeded")
		r.reply(ctx, log, chatID, r.cfg.Messages.RateLimited)
		return
	}

	clean := sanitize.ForDisplay(text, r.cfg.Conversation.MaxMessageLength)
	if clean == "" {
		log.InfoContext(ctx, "Rejected empty message after sanitizing")
		r.reply(ctx, log, chatID, r.cfg.Messages.InvalidInput)
		return
	}

	unlock := r.lockSession(userID)
	defer unlock()

	r.audit.Record(ctx, userID, audit.RoleUser, clean)

	reply, err := r.converse(ctx, log, userID, chatID, clean)
	if err != nil {
		log.ErrorContext(ctx, "Inference failed", "kind", inference.KindOf(err), "error", err)
		reply = r.failureMessage(err)
	}

	r.audit.Record(ctx, userID, audit.RoleAssistant, reply)

	for i, chunk := range sanitize.Chunk(reply, sanitize.TelegramMessageLimit) {
		if err := r.sender.SendText(ctx, chatID, chunk); err != nil {
			log.ErrorContext(ctx, "Failed to send reply chunk", "chunk", i, "error", err)
			return
		}
	}
}

// StartNewSession records a session boundary in the audit log and forgets
// the user's history.
func (r *Router) StartNewSession(ctx context.Context, userID int64) {
	unlock := r.lockSession(userID)
	defer unlock()

	r.audit.Record(ctx, userID, audit.RoleSystem, audit.SessionMarker)
	r.memory.Clear(userID)
}

// ResetContext forgets the user's history without an audit entry.
func (r *Router) ResetContext(userID int64) {
	unlock := r.lockSession(userID)
	defer unlock()

	r.memory.Clear(userID)
}

// converse keeps the typing indicator alive for exactly as long as the
// inference call runs, including when it panics.
func (r *Router) converse(ctx context.Context, log *slog.Logger, userID, chatID int64, message string) (string, error) {
	stopTyping := r.keepTyping(ctx, log, chatID)
	defer stopTyping()

	return r.llm.Converse(ctx, userID, message)
}

func (r *Router) lockSession(userID int64) func() {
	mu, ok := r.sessions[userID]
	if !ok {
		// Unreachable for callers that checked the whitelist first.
		return func() {}
	}
	mu.Lock()
	return mu.Unlock
}

func (r *Router) failureMessage(err error) string {
	msgs := r.cfg.Messages
	switch inference.KindOf(err) {
	case inference.KindTooLong:
		return fmt.Sprintf(msgs.MessageTooLong, r.cfg.Conversation.MaxMessageLength)
	case inference.KindTimeout:
		return msgs.Timeout
	case inference.KindUnavailable:
		return msgs.Unavailable
	case inference.KindServerError, inference.KindRejected:
		return msgs.ServiceError
	case inference.KindInvalidResponse:
		return msgs.InvalidResponse
	case inference.KindEmptyResponse:
		return msgs.EmptyResponse
	default:
		return msgs.ProcessingError
	}
}

func (r *Router) reply(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if err := r.sender.SendText(ctx, chatID, text); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err)
	}
}
