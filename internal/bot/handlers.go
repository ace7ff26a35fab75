package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"gatebot/internal/logger"
	"gatebot/internal/nav"
	"gatebot/internal/telegram"
)

func (b *Bot) onStart(c tele.Context) error {
	user := c.Sender()
	if !b.deps.Sessions.IsWelcomed(user.ID) {
		b.deps.Sessions.MarkWelcomed(user.ID)
		if err := c.Send(msgWelcome); err != nil {
			return err
		}
	}
	return b.sendRootMenu(c)
}

func (b *Bot) onRestart(c tele.Context) error {
	b.deps.Sessions.Reset(c.Sender().ID)
	return c.Send(msgRestartDone)
}

// onText treats any free text as a request for the top-level menu; the
// tree is navigated with buttons only.
func (b *Bot) onText(c tele.Context) error {
	return b.onStart(c)
}

func (b *Bot) onCallback(c tele.Context) error {
	key, payload := telegram.ParseCallback(c.Callback())
	if key != navAction {
		return c.Respond(&tele.CallbackResponse{Text: msgUnsupportedPress})
	}
	// Acknowledge the press so the client stops its spinner.
	_ = c.Respond()

	path, err := nav.Decode(payload)
	if err != nil {
		logger.Nav.Warn("undecodable payload",
			slog.String("event", "nav.decode"),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
		)
		return c.Send(msgNotFound)
	}

	b.deps.Cache.RefreshIfStale(b.ttl)
	res := b.deps.Engine.Advance(b.deps.Cache.Snapshot(), path)

	switch res.Outcome {
	case nav.OutcomeMenu:
		return c.Send(promptFor(path.Level), menuMarkup(res.Choices))
	case nav.OutcomeDeadEnd:
		return c.Send(msgNoInformation)
	case nav.OutcomeNotFound:
		return c.Send(msgNotFound)
	case nav.OutcomeTerminal:
		return b.handleTerminal(c, res.Terminal)
	}
	return c.Send(msgNotFound)
}

// handleTerminal delivers the code and runs the channel lifecycle. The
// reply always completes with a best-effort status, whatever the
// platform does.
func (b *Bot) handleTerminal(c tele.Context, terminal string) error {
	user := c.Sender()
	ctx := telegram.ContextFrom(c)

	res := b.deps.Access.OnTerminal(ctx, user.ID, displayName(user), terminal)

	lines := []string{fmt.Sprintf(msgTerminalFmt, terminal)}
	switch {
	case res.Granted && res.RevokeScheduled:
		lines = append(lines, fmt.Sprintf(msgGrantTempFmt, b.cfg.Channel.RevokeDelayMinutes))
	case res.Granted:
		lines = append(lines, msgGrantKept)
	case res.InviteLink != "":
		lines = append(lines, fmt.Sprintf(msgGrantInviteFmt, res.InviteLink))
	default:
		lines = append(lines, msgGrantFailed)
	}
	return c.Send(strings.Join(lines, "\n"))
}

func (b *Bot) sendRootMenu(c tele.Context) error {
	b.deps.Cache.RefreshIfStale(b.ttl)
	res := b.deps.Engine.Root(b.deps.Cache.Snapshot())
	if res.Outcome != nav.OutcomeMenu {
		return c.Send(msgNoInformation)
	}
	return c.Send(msgChooseKey, menuMarkup(res.Choices))
}

// promptFor returns the prompt for the menu that follows a selection at
// the given level.
func promptFor(selected nav.Level) string {
	switch selected {
	case nav.LevelKey:
		return msgChooseOpt1
	case nav.LevelOpt1:
		return msgChooseOpt2
	}
	return msgChooseKey
}

func menuMarkup(choices []nav.Choice) *tele.ReplyMarkup {
	buttons := make([]telegram.InlineBtn, 0, len(choices))
	for _, ch := range choices {
		buttons = append(buttons, telegram.InlineBtn{
			Text:   ch.Label,
			Unique: navAction,
			Data:   ch.Payload,
		})
	}
	return telegram.InlineButtonsNPerRow(buttons, buttonsPerRow)
}

func displayName(u *tele.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("user %d", u.ID)
}
