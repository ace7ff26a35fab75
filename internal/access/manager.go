package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatebot/internal/logger"
)

// Options configure the lifecycle manager.
type Options struct {
	ChannelID   int64
	AdminID     int64
	RevokeDelay time.Duration
	// OnGrant and OnRevoke are optional metric hooks.
	OnGrant  func()
	OnRevoke func()
}

// GrantResult reports the outcome of a terminal selection to the caller
// so it can compose the user-facing status message.
type GrantResult struct {
	Granted       bool
	AlreadyMember bool
	InviteLink    string
	// RevokeScheduled is false for the administrator and when a
	// revocation for this user is already pending.
	RevokeScheduled bool
}

// Manager drives the grant/audit/revoke lifecycle. Revocation tasks are
// detached timers: they outlive the triggering interaction and are lost
// on process restart.
type Manager struct {
	api  ChannelAPI
	opts Options

	// schedule is time.AfterFunc unless replaced in tests.
	schedule func(d time.Duration, f func())

	mu      sync.Mutex
	pending map[int64]struct{}
}

// NewManager creates a lifecycle manager over api.
func NewManager(api ChannelAPI, opts Options) *Manager {
	return &Manager{
		api:      api,
		opts:     opts,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		pending:  make(map[int64]struct{}),
	}
}

// OnTerminal runs the lifecycle for one terminal selection. Platform
// errors are logged and degrade the result; they never propagate as a
// process failure.
func (m *Manager) OnTerminal(ctx context.Context, userID int64, display, terminal string) GrantResult {
	var res GrantResult

	member, err := m.api.MemberStatus(ctx, m.opts.ChannelID, userID)
	if err != nil {
		logger.Access.Warn("membership status check failed",
			slog.String("event", "access.status"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	switch {
	case member:
		// Re-granting an existing member is a success, not a conflict.
		res.Granted = true
		res.AlreadyMember = true
	default:
		if err := m.api.AddMember(ctx, m.opts.ChannelID, userID); err != nil {
			if errors.Is(err, ErrUserUnreachable) {
				res.InviteLink = m.bestEffortInvite(ctx)
			}
			logger.Access.Warn("channel grant failed",
				slog.String("event", "access.grant"),
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		} else {
			res.Granted = true
		}
	}

	if res.Granted && m.opts.OnGrant != nil {
		m.opts.OnGrant()
	}

	m.audit(ctx, display, userID, terminal)

	if res.Granted && userID != m.opts.AdminID {
		res.RevokeScheduled = m.scheduleRevoke(userID)
	}
	if res.Granted {
		logger.Access.Info("channel access granted",
			slog.String("event", "access.grant"),
			slog.String("status", "ok"),
			slog.Int64("user_id", userID),
			slog.Bool("already_member", res.AlreadyMember),
			slog.Bool("revoke_scheduled", res.RevokeScheduled),
		)
	}
	return res
}

func (m *Manager) bestEffortInvite(ctx context.Context) string {
	link, err := m.api.InviteLink(ctx, m.opts.ChannelID)
	if err != nil {
		logger.Access.Warn("invite link creation failed",
			slog.String("event", "access.invite"),
			slog.String("err", err.Error()),
		)
		return ""
	}
	return link
}

func (m *Manager) audit(ctx context.Context, display string, userID int64, terminal string) {
	text := fmt.Sprintf("%s (%d) received code %s", display, userID, terminal)
	if err := m.api.PostMessage(ctx, m.opts.ChannelID, text); err != nil {
		logger.Access.Warn("audit message failed",
			slog.String("event", "access.audit"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// scheduleRevoke arms at most one pending revocation per user for the
// managed channel. Reports whether a new task was armed.
func (m *Manager) scheduleRevoke(userID int64) bool {
	m.mu.Lock()
	if _, dup := m.pending[userID]; dup {
		m.mu.Unlock()
		return false
	}
	m.pending[userID] = struct{}{}
	m.mu.Unlock()

	m.schedule(m.opts.RevokeDelay, func() { m.revoke(userID) })
	return true
}

func (m *Manager) revoke(userID int64) {
	defer func() {
		m.mu.Lock()
		delete(m.pending, userID)
		m.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Removing an already-removed member must be a no-op.
	if member, err := m.api.MemberStatus(ctx, m.opts.ChannelID, userID); err == nil && !member {
		logger.Access.Info("revocation skipped, user already left",
			slog.String("event", "access.revoke"),
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
		)
		return
	}

	if err := m.api.RemoveMember(ctx, m.opts.ChannelID, userID); err != nil {
		logger.Access.Error("revocation failed",
			slog.String("event", "access.revoke"),
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if m.opts.OnRevoke != nil {
		m.opts.OnRevoke()
	}
	logger.Access.Info("channel access revoked",
		slog.String("event", "access.revoke"),
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
}

// PendingRevocations reports how many revocation timers are armed.
func (m *Manager) PendingRevocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
