package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// keepTyping shows the typing indicator in chatID until the returned stop
// function is called. stop waits for the refresher to exit, so no indicator
// is sent after the reply.
func (r *Router) keepTyping(ctx context.Context, log *slog.Logger, chatID int64) (stop func()) {
	typingCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Recovered from panic in typing indicator", "panic", rec)
			}
		}()
		r.sendContinuousTyping(typingCtx, log, chatID)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func (r *Router) sendContinuousTyping(ctx context.Context, log *slog.Logger, chatID int64) {
	ticker := time.NewTicker(r.typingInterval)
	defer ticker.Stop()

	if err := r.sender.SendTyping(ctx, chatID); err != nil && ctx.Err() == nil {
		log.Debug("Typing action failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sender.SendTyping(ctx, chatID); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Debug("Typing action failed", "error", err)
			}
		}
	}
}
