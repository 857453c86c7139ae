package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/services/timetable"

	tele "gopkg.in/telebot.v3"
)

const requestTimeout = time.Minute

const welcomeTemplate = `👋 Hi, %s!

I fetch your class schedule from the school e-journal.

📋 What I can do:
• show your schedule for today or tomorrow
• send it automatically every morning
• export a day to an .ics calendar file

⚙️ To get started, configure your journal session cookies with "%s".
The /help command has a step-by-step guide.`

const helpText = `📖 <b>How to use this bot</b>

🔧 <b>Setting up cookies:</b>
1. Open the e-journal in your browser and sign in
2. Open a cookie editor extension (e.g. EditThisCookie)
3. Copy your session cookies as <code>name=value</code> pairs
4. Join them with semicolons: <code>a=1; b=2; c=3</code>
5. Send them to the bot via "` + btnCookies + `"

📚 <b>Buttons:</b>
• "` + btnToday + `" / "` + btnTomorrow + `" show a day's lessons
• "` + btnExport + `" sends today as an .ics file
• "` + btnNotifyOn + `" / "` + btnNotifyOff + `" toggle the morning message

⚠️ <b>Note:</b>
Session cookies expire. If the bot stops finding your schedule, paste
fresh ones.`

const cookieInstructions = `🔧 <b>Cookie setup</b>

Send me your e-journal cookies in this form:

<code>session_id=abc123; auth_token=xyz789</code>

💡 /help has the full walkthrough.`

const noCookiesYet = `❌ Configure your cookies first!
Use the "` + btnCookies + `" button.`

func (b *Bot) registerHandlers() {
	b.tele.Handle("/start", b.onStart)
	b.tele.Handle("/help", b.onHelp)
	b.tele.Handle(tele.OnText, b.onText)
}

func (b *Bot) onStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	name := sender.FirstName
	if name == "" {
		name = "there"
	}
	err := b.store.TouchUser(ctx, sender.ID, name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to record user", "chat_id", sender.ID, "err", err)
	}

	return c.Send(fmt.Sprintf(welcomeTemplate, name, btnCookies), mainKeyboard())
}

func (b *Bot) onHelp(c tele.Context) error {
	return c.Send(helpText)
}

func (b *Bot) onText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil || c.Text() == "" {
		return nil
	}

	if b.isAwaitingCookies(sender.ID) {
		return b.onCookiesInput(c)
	}

	switch c.Text() {
	case btnToday:
		return b.sendSchedule(c, 0)
	case btnTomorrow:
		return b.sendSchedule(c, 1)
	case btnExport:
		return b.sendExport(c)
	case btnCookies:
		b.setAwaitingCookies(sender.ID, true)
		return c.Send(cookieInstructions)
	case btnNotifyOn:
		return b.setNotifications(c, true)
	case btnNotifyOff:
		return b.setNotifications(c, false)
	case btnHelp:
		return b.onHelp(c)
	}

	return c.Send("Use the menu buttons or commands to interact with the bot.")
}

func (b *Bot) onCookiesInput(c tele.Context) error {
	sender := c.Sender()
	raw := strings.TrimSpace(c.Text())

	if len(raw) < 10 {
		return c.Send("❌ That cookie string looks too short. Check it and send it again.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	err := b.store.SetCookies(ctx, sender.ID, raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store cookies", "chat_id", sender.ID, "err", err)
		return c.Send("❌ Something went wrong while saving. Try again in a minute.")
	}
	b.setAwaitingCookies(sender.ID, false)

	if !b.svc.TestConnection(ctx, raw) {
		return c.Send(
			"⚠️ Cookies saved, but the journal did not accept them. "+
				"Double check you copied every session cookie.",
			mainKeyboard(),
		)
	}

	return c.Send(
		"✅ Cookies saved and the journal is reachable!\n"+
			"You can now check your schedule and enable notifications.",
		mainKeyboard(),
	)
}

func (b *Bot) sendSchedule(c tele.Context, offset int) error {
	sender := c.Sender()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	raw, err := b.store.Cookies(ctx, sender.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load cookies", "chat_id", sender.ID, "err", err)
		return c.Send("❌ Something went wrong. Try again in a minute.")
	}
	if raw == "" {
		return c.Send(noCookiesYet)
	}

	var ackErr error
	switch offset {
	case 0:
		ackErr = c.Send("🔄 Fetching today's schedule...")
	case 1:
		ackErr = c.Send("🔄 Fetching tomorrow's schedule...")
	default:
		ackErr = c.Send(fmt.Sprintf("🔄 Fetching the schedule %d days ahead...", offset))
	}
	if ackErr != nil {
		// the notice is cosmetic, the schedule itself is still fetched
		slog.WarnContext(ctx, "failed to send progress notice", "chat_id", sender.ID, "err", ackErr)
	}

	text, err := b.svc.Message(ctx, raw, offset)
	if err != nil {
		return c.Send(failureReply(err))
	}
	return c.Send(text)
}

func (b *Bot) sendExport(c tele.Context) error {
	sender := c.Sender()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	raw, err := b.store.Cookies(ctx, sender.ID)
	if err != nil || raw == "" {
		return c.Send(noCookiesYet)
	}

	day, err := b.svc.Day(ctx, raw, 0)
	if err != nil {
		return c.Send(failureReply(err))
	}
	ics, err := timetable.ExportICS(day)
	if err != nil {
		return c.Send("📅 Nothing to export, the day is empty.")
	}

	document := &tele.Document{
		File:     tele.FromReader(strings.NewReader(ics)),
		FileName: fmt.Sprintf("schedule-%s.ics", day.Date.Format("2006-01-02")),
		MIME:     "text/calendar",
	}
	return c.Send(document)
}

func (b *Bot) setNotifications(c tele.Context, enabled bool) error {
	sender := c.Sender()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if enabled {
		raw, err := b.store.Cookies(ctx, sender.ID)
		if err != nil || raw == "" {
			return c.Send(noCookiesYet)
		}
	}

	err := b.store.SetNotifyEnabled(ctx, sender.ID, enabled)
	if err != nil {
		slog.ErrorContext(ctx, "failed to toggle notifications", "chat_id", sender.ID, "err", err)
		return c.Send("❌ Something went wrong. Try again in a minute.")
	}

	if enabled {
		return c.Send("✅ Notifications enabled! You will get your schedule every morning.")
	}
	return c.Send("🔕 Notifications disabled.")
}

func failureReply(err error) string {
	switch {
	case errors.Is(err, ejournal.ErrPortalUnavailable):
		return "❌ Could not retrieve the schedule.\nYour cookies may have expired, try updating them."
	case errors.Is(err, ejournal.ErrUnrecognizedPage):
		return "❌ The journal answered, but I could not find a schedule on the page.\nIf this keeps happening, the portal layout may have changed."
	default:
		return "❌ Something went wrong while fetching the schedule.\nCheck your settings and try again later."
	}
}
