package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"gatebot/internal/access"
)

// Channel adapts the Telegram Bot API to access.ChannelAPI. The Bot API
// carries no per-call context, so the ctx parameters bound only the
// caller's bookkeeping; the underlying HTTP client enforces its own
// timeouts.
type Channel struct {
	bot *tele.Bot
}

// NewChannel wraps bot as a ChannelAPI implementation.
func NewChannel(bot *tele.Bot) *Channel {
	return &Channel{bot: bot}
}

func chatRef(id int64) *tele.Chat {
	return &tele.Chat{ID: id}
}

// AddMember admits the user. Bots cannot forcibly join users to a group;
// lifting any previous kick so the standing invite works is the closest
// the API allows.
func (ch *Channel) AddMember(_ context.Context, channelID, userID int64) error {
	if err := ch.bot.Unban(chatRef(channelID), &tele.User{ID: userID}, true); err != nil {
		if userUnreachable(err) {
			return fmt.Errorf("%w: %v", access.ErrUserUnreachable, err)
		}
		return fmt.Errorf("telegram: add member: %w", err)
	}
	return nil
}

// RemoveMember kicks the user: ban followed by an immediate unban, so
// the user may rejoin later.
func (ch *Channel) RemoveMember(_ context.Context, channelID, userID int64) error {
	chat := chatRef(channelID)
	user := &tele.User{ID: userID}
	if err := ch.bot.Ban(chat, &tele.ChatMember{User: user}); err != nil {
		return fmt.Errorf("telegram: remove member: %w", err)
	}
	if err := ch.bot.Unban(chat, user, true); err != nil {
		return fmt.Errorf("telegram: lift ban after kick: %w", err)
	}
	return nil
}

// PostMessage sends a plain text message to the channel.
func (ch *Channel) PostMessage(_ context.Context, channelID int64, text string) error {
	if _, err := ch.bot.Send(chatRef(channelID), text); err != nil {
		return fmt.Errorf("telegram: post message: %w", err)
	}
	return nil
}

// MemberStatus reports whether the user currently belongs to the channel.
func (ch *Channel) MemberStatus(_ context.Context, channelID, userID int64) (bool, error) {
	m, err := ch.bot.ChatMemberOf(chatRef(channelID), &tele.User{ID: userID})
	if err != nil {
		if userUnreachable(err) {
			return false, nil
		}
		return false, fmt.Errorf("telegram: member status: %w", err)
	}
	switch m.Role {
	case tele.Creator, tele.Administrator, tele.Member, tele.Restricted:
		return true, nil
	}
	return false, nil
}

// InviteLink creates a fresh join link for the channel.
func (ch *Channel) InviteLink(_ context.Context, channelID int64) (string, error) {
	link, err := ch.bot.CreateInviteLink(chatRef(channelID), &tele.ChatInviteLink{})
	if err != nil {
		return "", fmt.Errorf("telegram: create invite link: %w", err)
	}
	return link.InviteLink, nil
}

func userUnreachable(err error) bool {
	var apiErr *tele.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 403 {
		return true
	}
	d := strings.ToLower(apiErr.Description)
	return strings.Contains(d, "user not found") ||
		strings.Contains(d, "participant_id_invalid") ||
		strings.Contains(d, "user is deactivated")
}
