// Package access manages temporary membership in the restricted group:
// granting on a terminal selection, posting an audit message, and
// revoking after a fixed delay unless the user is the administrator.
package access

import (
	"context"
	"errors"
)

// ErrUserUnreachable marks grant failures where the platform reports the
// user as unknown or having blocked the bot. Callers fall back to a
// best-effort invite link.
var ErrUserUnreachable = errors.New("access: user unreachable")

// ChannelAPI is the platform collaborator. Implementations must make
// RemoveMember a kick, not a ban: the user stays free to rejoin.
type ChannelAPI interface {
	AddMember(ctx context.Context, channelID, userID int64) error
	RemoveMember(ctx context.Context, channelID, userID int64) error
	PostMessage(ctx context.Context, channelID int64, text string) error
	// MemberStatus reports whether the user currently belongs to the channel.
	MemberStatus(ctx context.Context, channelID, userID int64) (bool, error)
	// InviteLink returns a join link for users the bot cannot add directly.
	InviteLink(ctx context.Context, channelID int64) (string, error)
}
