package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timetablebot-backend/services/timetable"
	"timetablebot-backend/services/userstore"

	tele "gopkg.in/telebot.v3"
)

type Options struct {
	Token string
	// how long a long poll waits, zero means 10 seconds
	PollTimeout time.Duration
}

// Bot is the Telegram front of the timetable service. It owns no schedule
// logic: every button press runs the same pipeline the daily notifier runs.
type Bot struct {
	tele  *tele.Bot
	store userstore.Store
	svc   timetable.Service

	// chats that were asked to paste their cookie string and have not
	// answered yet
	mu              sync.Mutex
	awaitingCookies map[int64]bool
}

func New(opts Options, store userstore.Store, svc timetable.Service) (*Bot, error) {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = time.Second * 10
	}

	teleBot, err := tele.NewBot(tele.Settings{
		Token:     opts.Token,
		Poller:    &tele.LongPoller{Timeout: opts.PollTimeout},
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		tele:            teleBot,
		store:           store,
		svc:             svc,
		awaitingCookies: map[int64]bool{},
	}
	b.registerHandlers()
	return b, nil
}

// Start blocks until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.tele.Stop()
	}()
	slog.InfoContext(ctx, "starting telegram long polling")
	b.tele.Start()
}

// Send implements timetable.Sender for the daily notification batch.
func (b *Bot) Send(_ context.Context, chatID int64, text string) error {
	_, err := b.tele.Send(tele.ChatID(chatID), text)
	return err
}

func (b *Bot) setAwaitingCookies(chatID int64, awaiting bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if awaiting {
		b.awaitingCookies[chatID] = true
	} else {
		delete(b.awaitingCookies, chatID)
	}
}

func (b *Bot) isAwaitingCookies(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.awaitingCookies[chatID]
}
