package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/carydes/internal/audit"
	"github.com/edgard/carydes/internal/bot/handlers"
	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/inference"
	"github.com/edgard/carydes/internal/memory"
	"github.com/edgard/carydes/internal/ratelimit"
	"github.com/edgard/carydes/internal/relay"
)

const (
	memberID   int64 = 1001
	strangerID int64 = 6666
)

type fakeSender struct {
	mu    sync.Mutex
	texts []string
}

func (s *fakeSender) SendText(_ context.Context, _ int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *fakeSender) SendTyping(context.Context, int64) error { return nil }

func (s *fakeSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type echoConversation struct {
	mem *memory.Store
}

func (c echoConversation) Converse(_ context.Context, userID int64, message string) (string, error) {
	reply := "echo: " + message
	c.mem.Append(userID, message, reply, 10)
	return reply, nil
}

type fixedProber inference.Status

func (p fixedProber) Probe(context.Context) inference.Status { return inference.Status(p) }

type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *recordingSink) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

type fixture struct {
	deps   handlers.HandlerDeps
	sender *fakeSender
	mem    *memory.Store
	sink   *recordingSink
}

func newFixture(t *testing.T, status inference.Status) *fixture {
	t.Helper()

	cfg := &config.Config{
		Telegram:     config.TelegramConfig{Token: "test", Whitelist: []int64{memberID}},
		Conversation: config.ConversationConfig{MaxHistory: 10, MaxMessageLength: 2000},
		Messages:     config.DefaultMessages,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &fakeSender{}
	mem := memory.New()
	sink := &recordingSink{}
	router := relay.NewRouter(cfg, ratelimit.New(), audit.New(logger, sink), mem, echoConversation{mem: mem}, sender, logger)

	return &fixture{
		deps: handlers.HandlerDeps{
			Logger: logger,
			Config: cfg,
			Sender: sender,
			Router: router,
			Prober: fixedProber(status),
		},
		sender: sender,
		mem:    mem,
		sink:   sink,
	}
}

func textUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: userID},
			Text: text,
		},
	}
}

// dispatch runs a registered command through its middleware chain.
func dispatch(t *testing.T, deps handlers.HandlerDeps, command string, update *models.Update) {
	t.Helper()

	reg, ok := handlers.RegisterAllCommands(deps)[command]
	if !ok {
		t.Fatalf("command %s is not registered", command)
	}
	h := reg.Handler
	for i := len(reg.Middleware) - 1; i >= 0; i-- {
		h = reg.Middleware[i](h)
	}
	h(context.Background(), nil, update)
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t, inference.StatusResponding)
	regs := handlers.RegisterAllCommands(f.deps)

	tests := []struct {
		command   string
		pattern   string
		protected bool
	}{
		{"/start", "start", false},
		{"/help", "help", false},
		{"/new", "new", true},
		{"/reset", "reset", true},
		{"/status", "status", true},
	}

	if len(regs) != len(tests) {
		t.Errorf("registered %d commands, want %d", len(regs), len(tests))
	}
	for _, tt := range tests {
		reg, ok := regs[tt.command]
		if !ok {
			t.Errorf("%s not registered", tt.command)
			continue
		}
		if reg.Pattern != tt.pattern || reg.MatchType != tgbot.MatchTypeCommandStartOnly {
			t.Errorf("%s pattern = %q match = %v", tt.command, reg.Pattern, reg.MatchType)
		}
		if got := len(reg.Middleware) > 0; got != tt.protected {
			t.Errorf("%s protected = %v, want %v", tt.command, got, tt.protected)
		}
	}
}

func TestPublicCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    string
	}{
		{"/start", config.DefaultMessages.Welcome},
		{"/help", config.DefaultMessages.Help},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, inference.StatusResponding)
			dispatch(t, f.deps, tt.command, textUpdate(strangerID, tt.command))

			got := f.sender.sent()
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("sent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProtectedCommands_RejectStrangers(t *testing.T) {
	t.Parallel()

	for _, command := range []string{"/new", "/reset", "/status"} {
		t.Run(command, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, inference.StatusResponding)
			f.mem.Append(strangerID, "q", "a", 10)

			dispatch(t, f.deps, command, textUpdate(strangerID, command))

			got := f.sender.sent()
			if len(got) != 1 || got[0] != config.DefaultMessages.NotAuthorized {
				t.Errorf("sent = %q, want the not-authorized reply", got)
			}
			if h := f.mem.History(strangerID, 10); len(h) != 2 {
				t.Errorf("stranger history changed to %v", h)
			}
		})
	}
}

func TestNewSessionCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, inference.StatusResponding)
	f.mem.Append(memberID, "q", "a", 10)

	dispatch(t, f.deps, "/new", textUpdate(memberID, "/new"))

	if got := f.sender.sent(); len(got) != 1 || got[0] != config.DefaultMessages.NewSession {
		t.Errorf("sent = %q, want the new-session reply", got)
	}
	if h := f.mem.History(memberID, 10); len(h) != 0 {
		t.Errorf("history = %v, want empty", h)
	}
	if len(f.sink.entries) != 1 || f.sink.entries[0].Message != audit.SessionMarker {
		t.Errorf("audit = %+v, want one session marker", f.sink.entries)
	}
}

func TestResetCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, inference.StatusResponding)
	f.mem.Append(memberID, "q", "a", 10)

	dispatch(t, f.deps, "/reset", textUpdate(memberID, "/reset"))

	if got := f.sender.sent(); len(got) != 1 || got[0] != config.DefaultMessages.ContextReset {
		t.Errorf("sent = %q, want the reset reply", got)
	}
	if h := f.mem.History(memberID, 10); len(h) != 0 {
		t.Errorf("history = %v, want empty", h)
	}
	if len(f.sink.entries) != 0 {
		t.Errorf("audit = %+v, want nothing recorded", f.sink.entries)
	}
}

func TestStatusCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status inference.Status
		want   string
	}{
		{inference.StatusResponding, config.DefaultMessages.StatusOK},
		{inference.StatusErroring, config.DefaultMessages.StatusDegraded},
		{inference.StatusUnreachable, config.DefaultMessages.StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.status)
			dispatch(t, f.deps, "/status", textUpdate(memberID, "/status"))

			if got := f.sender.sent(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("sent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageHandler(t *testing.T) {
	t.Parallel()

	f := newFixture(t, inference.StatusResponding)
	h := handlers.NewMessageHandler(f.deps)

	h(context.Background(), nil, textUpdate(memberID, "hello"))
	h(context.Background(), nil, &models.Update{ID: 2})
	h(context.Background(), nil, textUpdate(memberID, ""))

	got := f.sender.sent()
	if len(got) != 1 || got[0] != "echo: hello" {
		t.Errorf("sent = %q, want [echo: hello]", got)
	}
}

func TestHandlers_IgnoreUpdatesWithoutSender(t *testing.T) {
	t.Parallel()

	f := newFixture(t, inference.StatusResponding)
	for command := range handlers.RegisterAllCommands(f.deps) {
		dispatch(t, f.deps, command, &models.Update{ID: 3})
	}

	if got := f.sender.sent(); len(got) != 0 {
		t.Errorf("sent = %q, want nothing", got)
	}
}
