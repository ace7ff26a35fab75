// Package bot wires the navigation engine, admission gate, session
// store and channel lifecycle manager into telebot routes.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"gatebot/internal/access"
	"gatebot/internal/config"
	"gatebot/internal/health"
	"gatebot/internal/logger"
	"gatebot/internal/nav"
	"gatebot/internal/session"
	"gatebot/internal/table"
	"gatebot/internal/telegram"
	"gatebot/internal/throttle"
)

// navAction is the callback unique shared by all menu buttons.
const navAction = "nav"

// buttonsPerRow keeps menus compact; the button count per message is
// bounded by the number of distinct child values, no pagination.
const buttonsPerRow = 2

// Deps collects the collaborators the bot handlers need.
type Deps struct {
	Cache    *table.Cache
	Engine   *nav.Engine
	Gate     *throttle.Gate
	Sessions *session.Store
	Access   *access.Manager
	Metrics  *health.Metrics
}

// Bot owns the telebot instance and its route wiring.
type Bot struct {
	cfg  *config.Config
	tb   *tele.Bot
	deps Deps

	ttl     time.Duration
	timeout time.Duration
}

// New registers middleware and routes on tb.
func New(cfg *config.Config, tb *tele.Bot, deps Deps) *Bot {
	b := &Bot{
		cfg:     cfg,
		tb:      tb,
		deps:    deps,
		ttl:     time.Duration(cfg.Dataset.CacheTTLSeconds) * time.Second,
		timeout: time.Duration(cfg.InteractionTimeoutSeconds) * time.Second,
	}

	tb.Use(telegram.RecoverMiddleware)
	tb.Use(telegram.LoggerMiddleware)
	tb.Use(b.gateMiddleware)

	tb.Handle("/start", b.onStart)
	tb.Handle("/restart", b.onRestart)
	tb.Handle(tele.OnText, b.onText)
	tb.Handle(tele.OnCallback, b.onCallback)

	if err := tb.SetCommands([]tele.Command{
		{Text: "/start", Description: "Find your room code"},
		{Text: "/restart", Description: "Reset your session"},
	}); err != nil {
		logger.Bot.Warn("failed to set command menu",
			slog.String("event", "bot.commands"),
			slog.String("err", err.Error()),
		)
	}

	return b
}

// Run starts the bot until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.tb.Start()
		close(done)
	}()

	select {
	case <-ctx.Done():
		b.tb.Stop()
		<-done
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-done:
		return nil
	}
}

// gateMiddleware is the single admission step per interaction: sliding
// window first, then the in-flight flag. Rejected requests are dropped
// with a user message, never queued or retried. Admitted interactions
// get a deadline; on expiry the user is told to retry and the in-flight
// flag is cleared by the deferred Release.
func (b *Bot) gateMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		user := c.Sender()
		if user == nil {
			return next(c)
		}

		switch b.deps.Gate.Admit(user.ID) {
		case throttle.Throttled:
			b.deps.Metrics.Throttled.Inc()
			logger.Bot.Warn("interaction throttled",
				slog.String("event", "bot.throttle"),
				slog.String("status", "rate_limited"),
				slog.Int64("user_id", user.ID),
			)
			return c.Send(msgThrottled)
		case throttle.Busy:
			b.deps.Metrics.Throttled.Inc()
			logger.Bot.Warn("interaction rejected, previous one in flight",
				slog.String("event", "bot.throttle"),
				slog.String("status", "busy"),
				slog.Int64("user_id", user.ID),
			)
			return c.Send(msgBusy)
		}
		defer b.deps.Gate.Release(user.ID)

		b.deps.Metrics.Interactions.WithLabelValues(updateKind(c)).Inc()

		ctx, cancel := context.WithTimeout(telegram.ContextFrom(c), b.timeout)
		defer cancel()
		telegram.StoreContext(c, ctx)

		err := next(c)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Bot.Warn("interaction deadline exceeded",
				slog.String("event", "bot.timeout"),
				slog.Int64("user_id", user.ID),
			)
			return c.Send(msgTimeout)
		}
		return err
	}
}

func updateKind(c tele.Context) string {
	if c.Callback() != nil {
		return "callback"
	}
	return "message"
}
